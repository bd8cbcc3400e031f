package domain

import (
	"encoding/json"
	"testing"
	"time"
)

// ─── Date Tests ─────────────────────────────────────────────────────────────

func TestDateOf_UsesLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// 20:30 UTC on Mar 1 is already Mar 2 in UTC+7.
	ts := time.Date(2025, 3, 1, 20, 30, 0, 0, time.UTC)

	if got := DateOf(ts, time.UTC); got != (Date{2025, time.March, 1}) {
		t.Errorf("UTC date = %v, want 2025-03-01", got)
	}
	if got := DateOf(ts, jakarta); got != (Date{2025, time.March, 2}) {
		t.Errorf("WIB date = %v, want 2025-03-02", got)
	}
}

func TestDate_AddDaysRollsOver(t *testing.T) {
	tests := []struct {
		from Date
		n    int
		want string
	}{
		{Date{2024, time.February, 28}, 1, "2024-02-29"},
		{Date{2025, time.February, 28}, 1, "2025-03-01"},
		{Date{2025, time.December, 31}, 1, "2026-01-01"},
		{Date{2025, time.January, 1}, -1, "2024-12-31"},
	}
	for _, tt := range tests {
		if got := tt.from.AddDays(tt.n).String(); got != tt.want {
			t.Errorf("%v + %d = %s, want %s", tt.from, tt.n, got, tt.want)
		}
	}
}

func TestDate_DaysSince(t *testing.T) {
	tests := []struct {
		d, o Date
		want int
	}{
		{Date{2025, time.July, 10}, Date{2025, time.July, 10}, 0},
		{Date{2025, time.July, 10}, Date{2025, time.July, 9}, 1},
		{Date{2024, time.March, 1}, Date{2024, time.February, 28}, 2},
		{Date{2026, time.January, 1}, Date{2025, time.December, 31}, 1},
		{Date{2025, time.July, 9}, Date{2025, time.July, 10}, -1},
	}
	for _, tt := range tests {
		if got := tt.d.DaysSince(tt.o); got != tt.want {
			t.Errorf("%v.DaysSince(%v) = %d, want %d", tt.d, tt.o, got, tt.want)
		}
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	in := Streak{CurrentStreak: 2, LongestStreak: 5, LastActiveDate: Date{2025, time.July, 4}}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Streak
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestParseDate_Empty(t *testing.T) {
	d, err := ParseDate("")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !d.IsZero() {
		t.Errorf("expected zero date, got %v", d)
	}
	if _, err := ParseDate("2025-13-01"); err == nil {
		t.Error("expected error for month 13")
	}
}

// ─── Streak State Machine ───────────────────────────────────────────────────

func TestStreakAdvance(t *testing.T) {
	d := Date{2025, time.July, 10}

	tests := []struct {
		name     string
		prev     Streak
		wantCur  int
		wantLong int
		wantTr   StreakTransition
	}{
		{"never active", Streak{}, 1, 1, StreakStarted},
		{"same day", Streak{3, 3, d}, 3, 3, StreakSameDay},
		{"yesterday", Streak{6, 6, d.AddDays(-1)}, 7, 7, StreakContinued},
		{"yesterday below longest", Streak{2, 9, d.AddDays(-1)}, 3, 9, StreakContinued},
		{"gap of two", Streak{4, 4, d.AddDays(-2)}, 1, 4, StreakReset},
		{"gap of three", Streak{4, 10, d.AddDays(-3)}, 1, 10, StreakReset},
		{"future last date", Streak{2, 2, d.AddDays(1)}, 2, 2, StreakSameDay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, tr := tt.prev.Advance(d)
			if tr != tt.wantTr {
				t.Errorf("transition = %s, want %s", tr, tt.wantTr)
			}
			if got.CurrentStreak != tt.wantCur || got.LongestStreak != tt.wantLong {
				t.Errorf("got %d/%d, want %d/%d", got.CurrentStreak, got.LongestStreak, tt.wantCur, tt.wantLong)
			}
			if tr != StreakSameDay && !got.LastActiveDate.Equal(d) {
				t.Errorf("LastActiveDate = %v, want %v", got.LastActiveDate, d)
			}
		})
	}
}

func TestStreakAdvance_LongestTracksMaxCurrent(t *testing.T) {
	start := Date{2025, time.January, 1}
	// Active days as offsets from start; gaps force resets.
	offsets := []int{0, 1, 2, 3, 7, 8, 12, 13, 14, 15, 16, 30}

	var s Streak
	maxSeen := 0
	prevLongest := 0
	for _, off := range offsets {
		s, _ = s.Advance(start.AddDays(off))
		if s.CurrentStreak > maxSeen {
			maxSeen = s.CurrentStreak
		}
		if s.LongestStreak < prevLongest {
			t.Fatalf("longest decreased from %d to %d", prevLongest, s.LongestStreak)
		}
		if s.LongestStreak != maxSeen {
			t.Fatalf("longest = %d, want max current %d", s.LongestStreak, maxSeen)
		}
		prevLongest = s.LongestStreak
	}
	if maxSeen != 5 {
		t.Errorf("expected max run of 5, got %d", maxSeen)
	}
}

func TestActivity_DedupKey(t *testing.T) {
	a := Activity{UserID: "u1", Kind: KindSurah, UnitID: "2", Day: Date{2025, time.May, 3}}
	if got := a.DedupKey(); got != "u1|surah:2|2025-05-03" {
		t.Errorf("DedupKey = %q", got)
	}
}
