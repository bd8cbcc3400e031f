// Package domain holds the pure types of the noor engagement engine.
// Streaks, XP levels, badges and the stats snapshot that feeds badge
// predicates. No infrastructure dependency.
package domain

import "time"

// ─── Streak Types ───────────────────────────────────────────────────────────

// Streak tracks consecutive calendar days with at least one activity.
// Invariant: LongestStreak >= CurrentStreak after every update.
type Streak struct {
	CurrentStreak  int  `json:"currentStreak"`
	LongestStreak  int  `json:"longestStreak"`
	LastActiveDate Date `json:"lastActiveDate"`
}

// StreakTransition names which branch of the day-boundary state machine fired.
type StreakTransition string

const (
	StreakStarted   StreakTransition = "started"
	StreakSameDay   StreakTransition = "same_day"
	StreakContinued StreakTransition = "continued"
	StreakReset     StreakTransition = "reset"
)

// Advance applies one activity on day today and returns the next state.
// Calendar adjacency is computed on Dates, so it never drifts across midnight.
func (s Streak) Advance(today Date) (Streak, StreakTransition) {
	next := s
	var tr StreakTransition

	gap := today.DaysSince(s.LastActiveDate)
	switch {
	case s.LastActiveDate.IsZero():
		next.CurrentStreak = 1
		tr = StreakStarted
	case gap <= 0:
		// Same day, or clock skew backwards: a past day cannot extend or
		// break the streak.
		return s, StreakSameDay
	case gap == 1:
		next.CurrentStreak = s.CurrentStreak + 1
		tr = StreakContinued
	default:
		next.CurrentStreak = 1
		tr = StreakReset
	}

	next.LastActiveDate = today
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	return next, tr
}

// ─── Level / XP Types ───────────────────────────────────────────────────────

// XPPerLevel is the flat step: every 1000 XP is one level.
const XPPerLevel = 1000

// UserLevel is the XP/level read contract. Level = XP/1000 + 1.
type UserLevel struct {
	XP    int64 `json:"xp"`
	Level int   `json:"level"`
}

// ─── Badge Types ────────────────────────────────────────────────────────────

// BadgeCategory groups badges by theme.
type BadgeCategory string

const (
	CatQuran   BadgeCategory = "quran"
	CatHadith  BadgeCategory = "hadith"
	CatDua     BadgeCategory = "dua"
	CatStreaks BadgeCategory = "streaks"
	CatMastery BadgeCategory = "mastery"
)

// Rarity tiers a badge for presentation.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// BadgeDef is one catalog entry. Condition must only read cumulative,
// non-decreasing fields of StatsSnapshot.
type BadgeDef struct {
	ID          string
	Name        string
	Names       map[string]string // BCP 47 tag -> localized name
	Description string
	Icon        string
	Category    BadgeCategory
	Rarity      Rarity
	XPReward    int64
	Condition   func(StatsSnapshot) bool
}

// BadgeDisplay is the presentation record derived from a BadgeDef.
type BadgeDisplay struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	LocalizedName string        `json:"localizedName"`
	Description   string        `json:"description"`
	Icon          string        `json:"icon"`
	XPReward      int64         `json:"xpReward"`
	Category      BadgeCategory `json:"category"`
	Rarity        Rarity        `json:"rarity"`
}

// Achievement is the immutable per-user unlock record.
type Achievement struct {
	UserID     string    `json:"userId" db:"user_id"`
	BadgeID    string    `json:"badgeId" db:"badge_id"`
	UnlockedAt time.Time `json:"unlockedAt" db:"-"`
}

// ─── Stats Snapshot ─────────────────────────────────────────────────────────

// StatsSnapshot is the derived, non-persisted input to badge conditions.
// The zero value is the safe default: no condition in the catalog holds for it.
type StatsSnapshot struct {
	AyahsRead           int64            `json:"ayahsRead"`
	SurahsStarted       int              `json:"surahsStarted"`
	SurahsCompleted     int              `json:"surahsCompleted"`
	PagesRead           int64            `json:"pagesRead"`
	HadithsRead         int64            `json:"hadithsRead"`
	HadithsByCollection map[string]int64 `json:"hadithsByCollection"`
	DuasLearned         int64            `json:"duasLearned"`
	MorningDhikr        int64            `json:"morningDhikr"`
	CurrentStreak       int              `json:"currentStreak"`
	LongestStreak       int              `json:"longestStreak"`
}

// Collection returns the hadith count for one collection (0 if absent).
func (s StatsSnapshot) Collection(name string) int64 {
	if s.HadithsByCollection == nil {
		return 0
	}
	return s.HadithsByCollection[name]
}
