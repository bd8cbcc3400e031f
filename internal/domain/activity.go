package domain

import "time"

// ActivityKind selects how an activity event updates persisted state.
type ActivityKind string

const (
	KindSurah  ActivityKind = "surah"
	KindHadith ActivityKind = "hadith"
	KindDua    ActivityKind = "dua"
	KindDhikr  ActivityKind = "dhikr"
)

// Valid reports whether k is one of the known kinds.
func (k ActivityKind) Valid() bool {
	switch k {
	case KindSurah, KindHadith, KindDua, KindDhikr:
		return true
	}
	return false
}

// Activity is one engagement event, already validated and stamped with the
// user's calendar day. (UserID, Kind, UnitID, Day) is the dedup key.
type Activity struct {
	ID         string
	UserID     string
	Kind       ActivityKind
	UnitID     string
	Collection string // hadith collection, empty for other kinds
	Position   int
	Pages      int
	Completed  bool
	Day        Date
	At         time.Time
}

// DedupKey renders the per-(user, unit, day) key.
func (a Activity) DedupKey() string {
	return a.UserID + "|" + string(a.Kind) + ":" + a.UnitID + "|" + a.Day.String()
}

// ProgressRecord is the single logical record per (user, content unit).
type ProgressRecord struct {
	UserID           string `json:"userId" db:"user_id"`
	ContentUnitID    string `json:"contentUnitId" db:"unit_id"`
	LastPosition     int    `json:"lastPositionMarker" db:"last_position"`
	FurthestPosition int    `json:"furthestPosition" db:"furthest_position"`
	PagesRead        int64  `json:"pagesRead" db:"pages_read"`
	DateRecorded     Date   `json:"dateRecorded" db:"-"`
	IsCompleted      bool   `json:"isCompleted" db:"is_completed"`
}

// ProgressTotals aggregates a user's progress records.
type ProgressTotals struct {
	AyahsRead       int64 `db:"ayahs_read"`
	SurahsStarted   int   `db:"surahs_started"`
	SurahsCompleted int   `db:"surahs_completed"`
	PagesRead       int64 `db:"pages_read"`
}

// Counter names maintained by the store for non-surah activity.
const (
	CounterHadithsRead  = "hadiths_read"
	CounterDuasLearned  = "duas_learned"
	CounterMorningDhikr = "morning_dhikr"
)

// HadithCollectionCounter is the per-collection counter name.
func HadithCollectionCounter(collection string) string {
	return CounterHadithsRead + ":" + collection
}

// ContentUnit describes a unit the content catalog knows about.
type ContentUnit struct {
	Kind       ActivityKind
	ID         string
	Collection string
	Markers    int // ayahs in a surah; 0 when positions are not tracked
}

// RecordResult is what the recorder reports to its caller.
type RecordResult struct {
	Success         bool     `json:"success"`
	Duplicate       bool     `json:"duplicate,omitempty"`
	NewAchievements []string `json:"newAchievements,omitempty"`
	Streak          *Streak  `json:"streak,omitempty"`
	Warning         string   `json:"warning,omitempty"`
}
