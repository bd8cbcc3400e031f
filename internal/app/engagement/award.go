package engagement

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noor-reader/noor/internal/domain"
	"github.com/noor-reader/noor/internal/infra/metrics"
)

// AwardEngine turns a stats snapshot into achievement records and XP.
type AwardEngine struct {
	store   domain.AchievementStore
	stats   *StatsAggregator
	catalog *Catalog
	clock   domain.Clock
	log     *zap.Logger
}

// NewAwardEngine creates an award engine. log may be nil.
func NewAwardEngine(store domain.AchievementStore, stats *StatsAggregator, catalog *Catalog, clock domain.Clock, log *zap.Logger) *AwardEngine {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AwardEngine{store: store, stats: stats, catalog: catalog, clock: clock, log: log}
}

// CheckAndAward awards every badge the user newly qualifies for and returns
// the ids of achievement records this call created, in catalog order.
//
// If the unlocked set or the snapshot cannot be read nothing is awarded.
// A store error on one candidate is logged and the rest still proceed.
// Losing an insert race to a concurrent caller is not an error: that badge
// is just not reported by this call.
func (e *AwardEngine) CheckAndAward(ctx context.Context, userID string) ([]string, error) {
	existing, err := e.store.Achievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}
	unlocked := make(map[string]bool, len(existing))
	for _, a := range existing {
		unlocked[a.BadgeID] = true
	}

	snap, err := e.stats.Snapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}

	var awarded []string
	for _, id := range e.catalog.Evaluate(snap, unlocked) {
		def, _ := e.catalog.Lookup(id)
		inserted, err := e.store.AwardBadge(ctx, userID, id, def.XPReward, e.clock.Now())
		if err != nil {
			metrics.AwardErrors.Inc()
			e.log.Warn("award badge failed",
				zap.String("user_id", userID), zap.String("badge_id", id), zap.Error(err))
			continue
		}
		if !inserted {
			continue
		}
		metrics.BadgesAwarded.WithLabelValues(id).Inc()
		e.log.Info("badge unlocked",
			zap.String("user_id", userID), zap.String("badge_id", id), zap.Int64("xp", def.XPReward))
		awarded = append(awarded, id)
	}

	if err := e.syncLevel(ctx, userID); err != nil {
		e.log.Warn("level recompute failed", zap.String("user_id", userID), zap.Error(err))
	}
	return awarded, nil
}

// syncLevel rewrites the stored level from XP when they disagree.
func (e *AwardEngine) syncLevel(ctx context.Context, userID string) error {
	ul, err := e.store.Level(ctx, userID)
	if err != nil {
		return err
	}
	if want := LevelForXP(ul.XP); want != ul.Level {
		return e.store.SetLevel(ctx, userID, want)
	}
	return nil
}

// Unlocked returns the user's achievements with display metadata.
func (e *AwardEngine) Unlocked(ctx context.Context, userID string, langs ...string) ([]UnlockedBadge, error) {
	achs, err := e.store.Achievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]UnlockedBadge, 0, len(achs))
	for _, a := range achs {
		ub := UnlockedBadge{Achievement: a}
		if d := e.catalog.DisplayIDs([]string{a.BadgeID}, langs...); len(d) == 1 {
			ub.Badge = &d[0]
		}
		out = append(out, ub)
	}
	return out, nil
}

// UnlockedBadge pairs an achievement record with its display record. Badge
// is nil when the id is no longer in the catalog.
type UnlockedBadge struct {
	domain.Achievement
	Badge *domain.BadgeDisplay `json:"badge,omitempty"`
}
