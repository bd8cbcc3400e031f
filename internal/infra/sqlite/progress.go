package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noor-reader/noor/internal/domain"
)

// ─── Activity / Progress ────────────────────────────────────────────────────

// RecordActivity applies one activity inside a single transaction.
// The activity_log primary key is the dedup key: a second insert for the
// same (user, kind, unit, day) affects no rows and nothing else is touched.
func (d *DB) RecordActivity(ctx context.Context, a domain.Activity) (bool, error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	// Hadith and dua counters count distinct units over all days.
	firstEver := true
	if a.Kind == domain.KindHadith || a.Kind == domain.KindDua {
		var seen int
		if err := tx.GetContext(ctx, &seen,
			`SELECT COUNT(*) FROM activity_log WHERE user_id = ? AND kind = ? AND unit_id = ?`,
			a.UserID, string(a.Kind), a.UnitID,
		); err != nil {
			return false, fmt.Errorf("check prior activity: %w", err)
		}
		firstEver = seen == 0
	}

	id := a.ID
	if id == "" {
		id = uuid.NewString()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO activity_log (id, user_id, kind, unit_id, day, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, a.UserID, string(a.Kind), a.UnitID, a.Day.String(), a.At.Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("insert activity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil // Already recorded today
	}

	switch a.Kind {
	case domain.KindSurah:
		err = upsertProgress(ctx, tx, a)
	case domain.KindHadith:
		if firstEver {
			err = incrCounters(ctx, tx, a.UserID,
				domain.CounterHadithsRead, domain.HadithCollectionCounter(a.Collection))
		}
	case domain.KindDua:
		if firstEver {
			err = incrCounters(ctx, tx, a.UserID, domain.CounterDuasLearned)
		}
	case domain.KindDhikr:
		err = incrCounters(ctx, tx, a.UserID, domain.CounterMorningDhikr)
	default:
		err = fmt.Errorf("%w: kind %q", domain.ErrInvalidActivity, a.Kind)
	}
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

func upsertProgress(ctx context.Context, tx *sqlx.Tx, a domain.Activity) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO progress_records
			(user_id, unit_id, last_position, furthest_position, pages_read, date_recorded, is_completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, unit_id) DO UPDATE SET
			last_position=excluded.last_position,
			furthest_position=MAX(progress_records.furthest_position, excluded.furthest_position),
			pages_read=progress_records.pages_read + excluded.pages_read,
			date_recorded=excluded.date_recorded,
			is_completed=(progress_records.is_completed OR excluded.is_completed)`,
		a.UserID, a.UnitID, a.Position, a.Position, a.Pages, a.Day.String(), a.Completed,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func incrCounters(ctx context.Context, tx *sqlx.Tx, userID string, names ...string) error {
	for _, name := range names {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO counters (user_id, name, value) VALUES (?, ?, 1)
			 ON CONFLICT(user_id, name) DO UPDATE SET value=counters.value + 1`,
			userID, name,
		)
		if err != nil {
			return fmt.Errorf("increment %s: %w", name, err)
		}
	}
	return nil
}

// ProgressTotals aggregates the user's progress records.
func (d *DB) ProgressTotals(ctx context.Context, userID string) (domain.ProgressTotals, error) {
	var t domain.ProgressTotals
	err := d.db.GetContext(ctx, &t,
		`SELECT
			COALESCE(SUM(furthest_position), 0) AS ayahs_read,
			COUNT(*)                            AS surahs_started,
			COALESCE(SUM(is_completed), 0)      AS surahs_completed,
			COALESCE(SUM(pages_read), 0)        AS pages_read
		 FROM progress_records WHERE user_id = ?`, userID,
	)
	return t, err
}

// Counters returns every counter the user has, keyed by name.
func (d *DB) Counters(ctx context.Context, userID string) (map[string]int64, error) {
	rows, err := d.db.QueryxContext(ctx,
		`SELECT name, value FROM counters WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, rows.Err()
}

type progressRow struct {
	domain.ProgressRecord
	DateRecorded string `db:"date_recorded"`
}

// ListProgress returns the user's progress records, most recent first.
func (d *DB) ListProgress(ctx context.Context, userID string, limit int) ([]domain.ProgressRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	var rows []progressRow
	err := d.db.SelectContext(ctx, &rows,
		`SELECT user_id, unit_id, last_position, furthest_position, pages_read, date_recorded, is_completed
		 FROM progress_records WHERE user_id = ?
		 ORDER BY date_recorded DESC, CAST(unit_id AS INTEGER) ASC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ProgressRecord, 0, len(rows))
	for _, r := range rows {
		rec := r.ProgressRecord
		if rec.DateRecorded, err = domain.ParseDate(r.DateRecorded); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
