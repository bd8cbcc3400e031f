package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/noor-reader/noor/internal/domain"
)

// Fixed local keys for guest-mode streak state, one per field.
const (
	KeyGuestCurrent  = "guest_streak_current"
	KeyGuestLongest  = "guest_streak_longest"
	KeyGuestLastDate = "guest_streak_last_date"
	// KeyGuestImportedBy holds the account the guest streak was imported into.
	KeyGuestImportedBy = "guest_streak_imported_by"
	KeyInstallID       = "install_id"
)

// GuestStore keeps a single streak in the engagement KV table, scoped to the
// install rather than to a user. The userID argument of its methods is ignored.
type GuestStore struct {
	db *DB
}

// Guest returns the guest-mode streak store backed by d.
func (d *DB) Guest() *GuestStore {
	return &GuestStore{db: d}
}

// Streak reads the guest streak. Missing keys read as the zero Streak.
func (g *GuestStore) Streak(ctx context.Context, _ string) (domain.Streak, error) {
	return readGuest(ctx, g.db.db)
}

// SwapStreak writes next if the stored guest streak still equals prev.
func (g *GuestStore) SwapStreak(ctx context.Context, _ string, prev, next domain.Streak) (bool, error) {
	tx, err := g.db.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	cur, err := readGuest(ctx, tx)
	if err != nil {
		return false, err
	}
	if cur != prev {
		return false, nil
	}

	kv := map[string]string{
		KeyGuestCurrent:  strconv.Itoa(next.CurrentStreak),
		KeyGuestLongest:  strconv.Itoa(next.LongestStreak),
		KeyGuestLastDate: next.LastActiveDate.String(),
	}
	for k, v := range kv {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO engagement (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value=excluded.value`, k, v,
		); err != nil {
			return false, fmt.Errorf("write %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// MarkGuestActivity records a for its day and reports whether it is new.
// Rows older than the previous day are pruned; only today's keys matter.
func (g *GuestStore) MarkGuestActivity(ctx context.Context, a domain.Activity) (bool, error) {
	tx, err := g.db.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM guest_activity WHERE day < ?`, a.Day.AddDays(-1).String(),
	); err != nil {
		return false, fmt.Errorf("prune guest activity: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO guest_activity (kind, unit_id, day) VALUES (?, ?, ?)`,
		string(a.Kind), a.UnitID, a.Day.String(),
	)
	if err != nil {
		return false, fmt.Errorf("mark guest activity: %w", err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return n == 1, nil
}

func readGuest(ctx context.Context, q sqlx.QueryerContext) (domain.Streak, error) {
	get := func(key string) (string, error) {
		var v string
		err := sqlx.GetContext(ctx, q, &v, `SELECT value FROM engagement WHERE key = ?`, key)
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return v, err
	}
	atoi := func(key string) (int, error) {
		v, err := get(key)
		if err != nil || v == "" {
			return 0, err
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("guest key %s: %w", key, err)
		}
		return n, nil
	}

	var s domain.Streak
	var err error
	if s.CurrentStreak, err = atoi(KeyGuestCurrent); err != nil {
		return domain.Streak{}, err
	}
	if s.LongestStreak, err = atoi(KeyGuestLongest); err != nil {
		return domain.Streak{}, err
	}
	last, err := get(KeyGuestLastDate)
	if err != nil {
		return domain.Streak{}, err
	}
	if s.LastActiveDate, err = domain.ParseDate(last); err != nil {
		return domain.Streak{}, err
	}
	return s, nil
}
