package engagement

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noor-reader/noor/internal/domain"
	"github.com/noor-reader/noor/internal/infra/metrics"
)

// StatsAggregator derives a StatsSnapshot from the store.
type StatsAggregator struct {
	src domain.StatsSource
	log *zap.Logger
}

// NewStatsAggregator creates a stats aggregator. log may be nil.
func NewStatsAggregator(src domain.StatsSource, log *zap.Logger) *StatsAggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatsAggregator{src: src, log: log}
}

// Stats returns the user's snapshot. A failed read is logged and yields the
// zero snapshot, which satisfies no badge condition.
func (a *StatsAggregator) Stats(ctx context.Context, userID string) domain.StatsSnapshot {
	s, err := a.Snapshot(ctx, userID)
	if err != nil {
		return domain.StatsSnapshot{}
	}
	return s
}

// Snapshot is Stats with the read error returned instead of absorbed.
// Failures are still logged and counted.
func (a *StatsAggregator) Snapshot(ctx context.Context, userID string) (domain.StatsSnapshot, error) {
	s, err := a.read(ctx, userID)
	if err != nil {
		metrics.StatsReadFailures.Inc()
		a.log.Warn("stats read failed", zap.String("user_id", userID), zap.Error(err))
		return domain.StatsSnapshot{}, err
	}
	return s, nil
}

func (a *StatsAggregator) read(ctx context.Context, userID string) (domain.StatsSnapshot, error) {
	totals, err := a.src.ProgressTotals(ctx, userID)
	if err != nil {
		return domain.StatsSnapshot{}, fmt.Errorf("progress totals: %w", err)
	}
	counters, err := a.src.Counters(ctx, userID)
	if err != nil {
		return domain.StatsSnapshot{}, fmt.Errorf("counters: %w", err)
	}
	streak, err := a.src.Streak(ctx, userID)
	if err != nil {
		return domain.StatsSnapshot{}, fmt.Errorf("streak: %w", err)
	}

	s := domain.StatsSnapshot{
		AyahsRead:           totals.AyahsRead,
		SurahsStarted:       totals.SurahsStarted,
		SurahsCompleted:     totals.SurahsCompleted,
		PagesRead:           totals.PagesRead,
		HadithsRead:         counters[domain.CounterHadithsRead],
		HadithsByCollection: make(map[string]int64),
		DuasLearned:         counters[domain.CounterDuasLearned],
		MorningDhikr:        counters[domain.CounterMorningDhikr],
		CurrentStreak:       streak.CurrentStreak,
		LongestStreak:       streak.LongestStreak,
	}
	prefix := domain.HadithCollectionCounter("")
	for name, v := range counters {
		if coll, ok := strings.CutPrefix(name, prefix); ok && coll != "" {
			s.HadithsByCollection[coll] = v
		}
	}
	return s, nil
}
