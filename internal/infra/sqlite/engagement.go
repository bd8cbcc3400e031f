package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/noor-reader/noor/internal/domain"
)

// ─── Streaks ────────────────────────────────────────────────────────────────

type streakRow struct {
	Current       int    `db:"current_streak"`
	Longest       int    `db:"longest_streak"`
	LastActive    string `db:"last_active_date"`
	GuestImported bool   `db:"guest_imported"`
}

func (r streakRow) streak() (domain.Streak, error) {
	last, err := domain.ParseDate(r.LastActive)
	if err != nil {
		return domain.Streak{}, err
	}
	return domain.Streak{CurrentStreak: r.Current, LongestStreak: r.Longest, LastActiveDate: last}, nil
}

// Streak loads the user's streak record. A user with no record gets the
// zero Streak (never active).
func (d *DB) Streak(ctx context.Context, userID string) (domain.Streak, error) {
	var row streakRow
	err := d.db.GetContext(ctx, &row,
		`SELECT current_streak, longest_streak, last_active_date, guest_imported
		 FROM streaks WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Streak{}, nil
	}
	if err != nil {
		return domain.Streak{}, err
	}
	return row.streak()
}

// SwapStreak replaces the user's streak with next only if the stored values
// still equal prev. A missing row counts as the zero Streak.
func (d *DB) SwapStreak(ctx context.Context, userID string, prev, next domain.Streak) (bool, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO streaks (user_id, current_streak, longest_streak, last_active_date)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			current_streak=excluded.current_streak,
			longest_streak=excluded.longest_streak,
			last_active_date=excluded.last_active_date
		 WHERE streaks.current_streak = ?
		   AND streaks.longest_streak = ?
		   AND streaks.last_active_date = ?`,
		userID, next.CurrentStreak, next.LongestStreak, next.LastActiveDate.String(),
		prev.CurrentStreak, prev.LongestStreak, prev.LastActiveDate.String(),
	)
	if err != nil {
		return false, fmt.Errorf("swap streak: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ImportGuestStreak merges the install's guest streak into one account,
// once. merge receives the account and guest streaks and returns the value
// to store. The guest streak is claimed under KeyGuestImportedBy in the same
// transaction, so no second account can import it.
func (d *DB) ImportGuestStreak(ctx context.Context, userID string, merge func(account, guest domain.Streak) domain.Streak) (domain.Streak, error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Streak{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var row streakRow
	err = tx.GetContext(ctx, &row,
		`SELECT current_streak, longest_streak, last_active_date, guest_imported
		 FROM streaks WHERE user_id = ?`, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.Streak{}, err
	}
	if row.GuestImported {
		return domain.Streak{}, domain.ErrGuestAlreadyImported
	}
	current, err := row.streak()
	if err != nil {
		return domain.Streak{}, err
	}

	guest, err := readGuest(ctx, tx)
	if err != nil {
		return domain.Streak{}, fmt.Errorf("read guest streak: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO engagement (key, value) VALUES (?, ?)`,
		KeyGuestImportedBy, userID,
	)
	if err != nil {
		return domain.Streak{}, fmt.Errorf("claim guest streak: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Streak{}, domain.ErrGuestAlreadyImported
	}

	merged := merge(current, guest)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO streaks (user_id, current_streak, longest_streak, last_active_date, guest_imported)
		 VALUES (?, ?, ?, ?, 1)
		 ON CONFLICT(user_id) DO UPDATE SET
			current_streak=excluded.current_streak,
			longest_streak=excluded.longest_streak,
			last_active_date=excluded.last_active_date,
			guest_imported=1`,
		userID, merged.CurrentStreak, merged.LongestStreak, merged.LastActiveDate.String(),
	)
	if err != nil {
		return domain.Streak{}, fmt.Errorf("write merged streak: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Streak{}, fmt.Errorf("commit: %w", err)
	}
	return merged, nil
}

// ─── Achievements ───────────────────────────────────────────────────────────

// AwardBadge records a badge as unlocked and credits its XP in the same
// transaction. INSERT OR IGNORE makes the unlock insert-if-absent, so XP is
// credited only by the caller whose insert actually landed.
func (d *DB) AwardBadge(ctx context.Context, userID, badgeID string, xp int64, at time.Time) (bool, error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO achievements (user_id, badge_id, unlocked_at) VALUES (?, ?, ?)`,
		userID, badgeID, at.Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("insert achievement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil // Already unlocked
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_levels (user_id, xp, level) VALUES (?, ?, 1)
		 ON CONFLICT(user_id) DO UPDATE SET xp=user_levels.xp + excluded.xp`,
		userID, xp,
	); err != nil {
		return false, fmt.Errorf("credit xp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// Achievements returns the user's unlocked badges, oldest first.
func (d *DB) Achievements(ctx context.Context, userID string) ([]domain.Achievement, error) {
	rows, err := d.db.QueryxContext(ctx,
		`SELECT badge_id, unlocked_at FROM achievements
		 WHERE user_id = ? ORDER BY unlocked_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Achievement
	for rows.Next() {
		a := domain.Achievement{UserID: userID}
		var unlockedAt int64
		if err := rows.Scan(&a.BadgeID, &unlockedAt); err != nil {
			return nil, err
		}
		a.UnlockedAt = time.Unix(unlockedAt, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// ─── Levels ─────────────────────────────────────────────────────────────────

// Level returns the user's XP and stored level. Unknown users are {0, 1}.
func (d *DB) Level(ctx context.Context, userID string) (domain.UserLevel, error) {
	ul := domain.UserLevel{Level: 1}
	err := d.db.QueryRowxContext(ctx,
		`SELECT xp, level FROM user_levels WHERE user_id = ?`, userID,
	).Scan(&ul.XP, &ul.Level)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserLevel{Level: 1}, nil
	}
	return ul, err
}

// SetLevel persists the recomputed level. XP never decreases, so the stored
// level only moves up; a stale concurrent write cannot lower it.
func (d *DB) SetLevel(ctx context.Context, userID string, level int) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO user_levels (user_id, xp, level) VALUES (?, 0, ?)
		 ON CONFLICT(user_id) DO UPDATE SET level=MAX(user_levels.level, excluded.level)`,
		userID, level,
	)
	return err
}
