package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noor-reader/noor/internal/domain"
	"github.com/noor-reader/noor/internal/infra/metrics"
)

// StreakWarning is the non-blocking notice shown when the activity was saved
// but the streak could not be updated.
const StreakWarning = "could not update your streak"

// ActivityInput is one raw activity event as received from a caller.
type ActivityInput struct {
	UserID   string              `json:"-"`
	Kind     domain.ActivityKind `json:"kind"`
	UnitID   string              `json:"unitId"`
	Position int                 `json:"position"`
	Pages    int                 `json:"pages"`
}

// Guard is an optional fast-path dedup claim in front of the store.
// The store's dedup key stays authoritative.
type Guard interface {
	// Claim returns false if key was already claimed.
	Claim(ctx context.Context, key string) (bool, error)
	// Confirm keeps a claim whose store write landed.
	Confirm(ctx context.Context, key string) error
	// Release drops a claim whose store write failed.
	Release(ctx context.Context, key string) error
}

// Recorder records activity events and drives the streak and award steps.
type Recorder struct {
	store   domain.ActivityStore
	content domain.ContentCatalog
	streaks *StreakTracker
	awards  *AwardEngine
	guard   Guard
	clock   domain.Clock
	log     *zap.Logger
}

// NewRecorder creates a recorder. guard and log may be nil.
func NewRecorder(store domain.ActivityStore, content domain.ContentCatalog, streaks *StreakTracker, awards *AwardEngine, guard Guard, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		store:   store,
		content: content,
		streaks: streaks,
		awards:  awards,
		guard:   guard,
		clock:   streaks.clock,
		log:     log,
	}
}

// Validate checks in against the content catalog and builds the Activity
// for day. Nothing is written.
func (r *Recorder) Validate(in ActivityInput, day domain.Date) (domain.Activity, error) {
	if in.UserID == "" {
		return domain.Activity{}, fmt.Errorf("%w: missing user", domain.ErrInvalidActivity)
	}
	if !in.Kind.Valid() {
		return domain.Activity{}, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidActivity, in.Kind)
	}
	if in.Pages < 0 {
		return domain.Activity{}, fmt.Errorf("%w: negative page count %d", domain.ErrInvalidActivity, in.Pages)
	}
	if in.Position < 0 {
		return domain.Activity{}, fmt.Errorf("%w: negative position %d", domain.ErrInvalidActivity, in.Position)
	}

	unit, ok := r.content.Lookup(in.Kind, in.UnitID)
	if !ok {
		return domain.Activity{}, fmt.Errorf("%w: %s %q", domain.ErrUnknownContent, in.Kind, in.UnitID)
	}

	a := domain.Activity{
		ID:         uuid.NewString(),
		UserID:     in.UserID,
		Kind:       in.Kind,
		UnitID:     unit.ID,
		Collection: unit.Collection,
		Pages:      in.Pages,
		Day:        day,
		At:         r.clock.Now(),
	}
	if unit.Markers > 0 {
		if in.Position < 1 || in.Position > unit.Markers {
			return domain.Activity{}, fmt.Errorf("%w: position %d outside 1..%d",
				domain.ErrInvalidActivity, in.Position, unit.Markers)
		}
		a.Position = in.Position
		a.Completed = in.Position >= unit.Markers
	}
	return a, nil
}

// RecordActivity records one activity for today.
//
// A repeat of the same (user, kind, unit, day) is a successful no-op. A
// store failure is returned and nothing else runs. Once the store write
// succeeds the activity is durable: streak and award failures only add a
// warning to the result.
func (r *Recorder) RecordActivity(ctx context.Context, in ActivityInput) (domain.RecordResult, error) {
	start := time.Now()
	defer func() { metrics.RecordLatency.Observe(time.Since(start).Seconds()) }()

	today := r.streaks.Today()
	a, err := r.Validate(in, today)
	if err != nil {
		metrics.Activities.WithLabelValues(kindLabel(in.Kind), "invalid").Inc()
		return domain.RecordResult{}, err
	}
	key := a.DedupKey()

	if r.guard != nil {
		claimed, err := r.guard.Claim(ctx, key)
		switch {
		case err != nil:
			r.log.Warn("dedup guard unavailable", zap.String("key", key), zap.Error(err))
		case !claimed:
			metrics.Activities.WithLabelValues(kindLabel(a.Kind), "duplicate").Inc()
			return domain.RecordResult{Success: true, Duplicate: true}, nil
		}
	}

	inserted, err := r.store.RecordActivity(ctx, a)
	if err != nil {
		metrics.Activities.WithLabelValues(kindLabel(a.Kind), "failed").Inc()
		if r.guard != nil {
			if rerr := r.guard.Release(ctx, key); rerr != nil {
				r.log.Warn("dedup release failed", zap.String("key", key), zap.Error(rerr))
			}
		}
		return domain.RecordResult{}, fmt.Errorf("record activity: %w", err)
	}
	if r.guard != nil {
		if cerr := r.guard.Confirm(ctx, key); cerr != nil {
			r.log.Warn("dedup confirm failed", zap.String("key", key), zap.Error(cerr))
		}
	}
	if !inserted {
		metrics.Activities.WithLabelValues(kindLabel(a.Kind), "duplicate").Inc()
		return domain.RecordResult{Success: true, Duplicate: true}, nil
	}
	metrics.Activities.WithLabelValues(kindLabel(a.Kind), "accepted").Inc()

	res := domain.RecordResult{Success: true}

	streak, _, err := r.streaks.Touch(ctx, a.UserID, today)
	if err != nil {
		r.log.Warn("streak update failed", zap.String("user_id", a.UserID), zap.Error(err))
		res.Warning = StreakWarning
	} else {
		res.Streak = &streak
	}

	ids, err := r.awards.CheckAndAward(ctx, a.UserID)
	if err != nil {
		r.log.Warn("award check failed", zap.String("user_id", a.UserID), zap.Error(err))
	}
	res.NewAchievements = ids
	return res, nil
}

// RecordGuest validates in and advances the install-scoped guest streak.
// Guests have no progress records or achievements; seen dedups repeats of
// the same (kind, unit, day).
func (r *Recorder) RecordGuest(ctx context.Context, guest *StreakTracker, seen domain.GuestActivityLog, in ActivityInput) (domain.RecordResult, error) {
	today := guest.Today()
	a, err := r.Validate(in, today)
	if err != nil {
		metrics.Activities.WithLabelValues(kindLabel(in.Kind), "invalid").Inc()
		return domain.RecordResult{}, err
	}

	fresh, err := seen.MarkGuestActivity(ctx, a)
	if err != nil {
		metrics.Activities.WithLabelValues(kindLabel(a.Kind), "failed").Inc()
		return domain.RecordResult{}, fmt.Errorf("guest activity: %w", err)
	}
	if !fresh {
		metrics.Activities.WithLabelValues(kindLabel(a.Kind), "duplicate").Inc()
		s, err := guest.Current(ctx, in.UserID)
		if err != nil {
			r.log.Warn("guest streak read failed", zap.Error(err))
			return domain.RecordResult{Success: true, Duplicate: true}, nil
		}
		return domain.RecordResult{Success: true, Duplicate: true, Streak: &s}, nil
	}

	streak, _, err := guest.Touch(ctx, in.UserID, today)
	if err != nil {
		metrics.Activities.WithLabelValues(kindLabel(a.Kind), "failed").Inc()
		return domain.RecordResult{Warning: StreakWarning}, fmt.Errorf("guest streak: %w", err)
	}
	metrics.Activities.WithLabelValues(kindLabel(a.Kind), "guest").Inc()
	return domain.RecordResult{Success: true, Streak: &streak}, nil
}

// kindLabel bounds the metric label set to the known kinds.
func kindLabel(k domain.ActivityKind) string {
	if !k.Valid() {
		return "unknown"
	}
	return string(k)
}
