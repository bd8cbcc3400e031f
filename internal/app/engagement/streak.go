// Package engagement implements the noor engagement engine: activity
// recording, streaks, stats, badge awards and levels.
package engagement

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noor-reader/noor/internal/domain"
	"github.com/noor-reader/noor/internal/infra/metrics"
)

// DefaultStreakRetries bounds the compare-and-swap loop.
const DefaultStreakRetries = 5

// StreakTracker applies the day-boundary rules of domain.Streak.Advance to a
// StreakStore. The same tracker type serves accounts and guest mode; only
// the store differs.
type StreakTracker struct {
	store   domain.StreakStore
	clock   domain.Clock
	loc     *time.Location
	retries int
	log     *zap.Logger
}

// NewStreakTracker creates a streak tracker. Days are computed in loc
// (UTC if nil); log may be nil.
func NewStreakTracker(store domain.StreakStore, clock domain.Clock, loc *time.Location, log *zap.Logger) *StreakTracker {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &StreakTracker{store: store, clock: clock, loc: loc, retries: DefaultStreakRetries, log: log}
}

// SetRetries overrides the compare-and-swap attempt limit.
func (t *StreakTracker) SetRetries(n int) {
	if n > 0 {
		t.retries = n
	}
}

// Today returns the current calendar date in the tracker's timezone.
func (t *StreakTracker) Today() domain.Date {
	return domain.DateOf(t.clock.Now(), t.loc)
}

// Current loads the streak for display.
func (t *StreakTracker) Current(ctx context.Context, userID string) (domain.Streak, error) {
	s, err := t.store.Streak(ctx, userID)
	if err != nil {
		return domain.Streak{}, fmt.Errorf("load streak: %w", err)
	}
	return s, nil
}

// Touch records activity on day today. A same-day call writes nothing.
// The returned streak is what the store holds; on error nothing was written
// and the caller must not display an advanced value.
func (t *StreakTracker) Touch(ctx context.Context, userID string, today domain.Date) (domain.Streak, domain.StreakTransition, error) {
	for attempt := 0; attempt < t.retries; attempt++ {
		prev, err := t.store.Streak(ctx, userID)
		if err != nil {
			return domain.Streak{}, "", fmt.Errorf("load streak: %w", err)
		}

		next, tr := prev.Advance(today)
		if tr == domain.StreakSameDay {
			metrics.StreakTransitions.WithLabelValues(string(tr)).Inc()
			return prev, tr, nil
		}

		ok, err := t.store.SwapStreak(ctx, userID, prev, next)
		if err != nil {
			return domain.Streak{}, "", fmt.Errorf("save streak: %w", err)
		}
		if ok {
			metrics.StreakTransitions.WithLabelValues(string(tr)).Inc()
			t.log.Debug("streak updated",
				zap.String("user_id", userID),
				zap.String("transition", string(tr)),
				zap.Int("current", next.CurrentStreak),
				zap.Int("longest", next.LongestStreak),
			)
			return next, tr, nil
		}
		// Another writer got there first; reload and re-apply.
		metrics.StreakConflicts.Inc()
	}
	return domain.Streak{}, "", domain.ErrStreakContention
}

// TouchToday is Touch for the tracker's current day.
func (t *StreakTracker) TouchToday(ctx context.Context, userID string) (domain.Streak, domain.StreakTransition, error) {
	return t.Touch(ctx, userID, t.Today())
}
