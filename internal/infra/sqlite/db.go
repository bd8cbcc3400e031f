// Package sqlite provides SQLite-based persistent storage for noor.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sqlx.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := "file:" + dbPath +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer; one connection also serializes every
	// transaction below, which the dedup and award paths rely on.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// PingContext checks database connectivity, honoring ctx.
func (d *DB) PingContext(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Local key-value state (install id, guest-mode streak fields)
		`CREATE TABLE IF NOT EXISTS engagement (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Guest-mode dedup keys, pruned to the last two days
		`CREATE TABLE IF NOT EXISTS guest_activity (
			kind    TEXT NOT NULL,
			unit_id TEXT NOT NULL,
			day     TEXT NOT NULL,
			PRIMARY KEY (kind, unit_id, day)
		)`,

		// One row per accepted activity; the primary key is the dedup key.
		`CREATE TABLE IF NOT EXISTS activity_log (
			id          TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			kind        TEXT NOT NULL,
			unit_id     TEXT NOT NULL,
			day         TEXT NOT NULL,
			recorded_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, kind, unit_id, day)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_unit ON activity_log(user_id, kind, unit_id)`,

		// One logical record per (user, content unit)
		`CREATE TABLE IF NOT EXISTS progress_records (
			user_id           TEXT NOT NULL,
			unit_id           TEXT NOT NULL,
			last_position     INTEGER NOT NULL DEFAULT 0,
			furthest_position INTEGER NOT NULL DEFAULT 0,
			pages_read        INTEGER NOT NULL DEFAULT 0,
			date_recorded     TEXT NOT NULL,
			is_completed      BOOLEAN NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, unit_id)
		)`,

		// Increment-only counters for hadith / dua / dhikr activity
		`CREATE TABLE IF NOT EXISTS counters (
			user_id TEXT NOT NULL,
			name    TEXT NOT NULL,
			value   INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, name)
		)`,

		`CREATE TABLE IF NOT EXISTS streaks (
			user_id          TEXT PRIMARY KEY,
			current_streak   INTEGER NOT NULL DEFAULT 0,
			longest_streak   INTEGER NOT NULL DEFAULT 0,
			last_active_date TEXT NOT NULL DEFAULT '',
			guest_imported   BOOLEAN NOT NULL DEFAULT 0
		)`,

		// At most one row per (user, badge)
		`CREATE TABLE IF NOT EXISTS achievements (
			user_id     TEXT NOT NULL,
			badge_id    TEXT NOT NULL,
			unlocked_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, badge_id)
		)`,

		`CREATE TABLE IF NOT EXISTS user_levels (
			user_id TEXT PRIMARY KEY,
			xp      INTEGER NOT NULL DEFAULT 0,
			level   INTEGER NOT NULL DEFAULT 1
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Engagement Key-Value ───────────────────────────────────────────────────

// SetEngagement stores an engagement key-value pair.
func (d *DB) SetEngagement(ctx context.Context, key, value string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO engagement (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// GetEngagement retrieves an engagement value by key.
// Returns "" if key not found.
func (d *DB) GetEngagement(ctx context.Context, key string) (string, error) {
	var value string
	err := d.db.GetContext(ctx, &value, `SELECT value FROM engagement WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// InstallID returns the per-install identifier, creating it on first use.
func (d *DB) InstallID(ctx context.Context) (string, error) {
	if _, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO engagement (key, value) VALUES (?, ?)`,
		KeyInstallID, uuid.NewString(),
	); err != nil {
		return "", fmt.Errorf("create install id: %w", err)
	}
	return d.GetEngagement(ctx, KeyInstallID)
}
