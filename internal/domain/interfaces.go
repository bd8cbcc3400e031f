package domain

import (
	"context"
	"time"
)

// ─── Store Interfaces ───────────────────────────────────────────────────────
// Boundaries between the engagement engine and persistence.
// infra/sqlite implements all of them; guest mode implements StreakStore only.

// ActivityStore persists activity events behind the dedup key.
type ActivityStore interface {
	// RecordActivity applies a to the user's progress or counters unless the
	// dedup key was already recorded. Returns false for a duplicate.
	RecordActivity(ctx context.Context, a Activity) (bool, error)
}

// StreakStore loads and conditionally replaces a streak record.
type StreakStore interface {
	Streak(ctx context.Context, userID string) (Streak, error)
	// SwapStreak writes next only if the stored record still equals prev.
	SwapStreak(ctx context.Context, userID string, prev, next Streak) (bool, error)
}

// ProgressReader lists a user's progress records, most recent first.
type ProgressReader interface {
	ListProgress(ctx context.Context, userID string, limit int) ([]ProgressRecord, error)
}

// StatsSource exposes the raw reads the stats aggregator combines.
type StatsSource interface {
	ProgressTotals(ctx context.Context, userID string) (ProgressTotals, error)
	Counters(ctx context.Context, userID string) (map[string]int64, error)
	Streak(ctx context.Context, userID string) (Streak, error)
}

// AchievementStore records unlocks and the XP they carry.
type AchievementStore interface {
	Achievements(ctx context.Context, userID string) ([]Achievement, error)
	// AwardBadge inserts the achievement if absent and, only when it was
	// inserted, adds xp to the user's total. Returns whether it was inserted.
	AwardBadge(ctx context.Context, userID, badgeID string, xp int64, at time.Time) (bool, error)
	Level(ctx context.Context, userID string) (UserLevel, error)
	SetLevel(ctx context.Context, userID string, level int) error
}

// ContentCatalog resolves content units for validation.
type ContentCatalog interface {
	Lookup(kind ActivityKind, unitID string) (ContentUnit, bool)
}

// GuestImportStore performs the one-time guest streak merge into an account.
type GuestImportStore interface {
	// ImportGuestStreak calls merge with the account's current streak and
	// the install's guest streak and stores the result. The guest streak is
	// consumed: a repeat for the same account, or an import into a second
	// account, fails with ErrGuestAlreadyImported.
	ImportGuestStreak(ctx context.Context, userID string, merge func(account, guest Streak) Streak) (Streak, error)
}

// GuestActivityLog dedups guest-mode activity per (kind, unit, day).
type GuestActivityLog interface {
	// MarkGuestActivity returns false if a was already seen on a.Day.
	MarkGuestActivity(ctx context.Context, a Activity) (bool, error)
}
