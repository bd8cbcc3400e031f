package engagement

import (
	"context"
	"fmt"

	"github.com/noor-reader/noor/internal/domain"
)

// LevelForXP returns the level for a given XP amount: one level per
// 1000 XP, starting at 1.
func LevelForXP(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/domain.XPPerLevel) + 1
}

// XPForLevel returns the cumulative XP at which level is reached.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(level-1) * domain.XPPerLevel
}

// LevelProgress returns the XP left until the next level and the percent
// progress through the current one.
func LevelProgress(ul domain.UserLevel) (toNext int64, pct float64) {
	level := LevelForXP(ul.XP)
	into := ul.XP - XPForLevel(level)
	return XPForLevel(level+1) - ul.XP, float64(into) / float64(domain.XPPerLevel) * 100
}

// LevelReader is the slice of the achievement store levels need.
type LevelReader interface {
	Level(ctx context.Context, userID string) (domain.UserLevel, error)
}

// LevelService reads XP and derives level progress.
type LevelService struct {
	store LevelReader
}

// NewLevelService creates a level service.
func NewLevelService(store LevelReader) *LevelService {
	return &LevelService{store: store}
}

// CurrentLevel returns the user's XP and level. The level is derived from
// XP so a lagging stored level never shows.
func (l *LevelService) CurrentLevel(ctx context.Context, userID string) (domain.UserLevel, error) {
	ul, err := l.store.Level(ctx, userID)
	if err != nil {
		return domain.UserLevel{}, fmt.Errorf("load level: %w", err)
	}
	ul.Level = LevelForXP(ul.XP)
	return ul, nil
}

// XPToNextLevel returns how much XP is needed to reach the next level.
func (l *LevelService) XPToNextLevel(ctx context.Context, userID string) (int64, error) {
	ul, err := l.CurrentLevel(ctx, userID)
	if err != nil {
		return 0, err
	}
	toNext, _ := LevelProgress(ul)
	return toNext, nil
}

// ProgressPct returns progress toward the next level as 0-100.
func (l *LevelService) ProgressPct(ctx context.Context, userID string) (float64, error) {
	ul, err := l.CurrentLevel(ctx, userID)
	if err != nil {
		return 0, err
	}
	_, pct := LevelProgress(ul)
	return pct, nil
}
