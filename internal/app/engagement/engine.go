package engagement

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noor-reader/noor/internal/domain"
)

// Store is everything the engine needs from account persistence.
type Store interface {
	domain.ActivityStore
	domain.StreakStore
	domain.ProgressReader
	domain.StatsSource
	domain.AchievementStore
	domain.GuestImportStore
}

// GuestStore is the install-scoped persistence behind guest mode.
type GuestStore interface {
	domain.StreakStore
	domain.GuestActivityLog
}

// Options configures New.
type Options struct {
	Content       domain.ContentCatalog
	Guest         GuestStore // nil disables guest mode
	Guard         Guard
	Catalog       *Catalog
	Clock         domain.Clock
	Location      *time.Location
	StreakRetries int
	Logger        *zap.Logger
}

// Engine wires the engagement services over one store.
type Engine struct {
	Catalog  *Catalog
	Stats    *StatsAggregator
	Streaks  *StreakTracker
	Guest    *StreakTracker
	Awards   *AwardEngine
	Levels   *LevelService
	Recorder *Recorder
	Importer *GuestImporter

	progress domain.ProgressReader
	guestLog domain.GuestActivityLog
}

// New builds an Engine over store.
func New(store Store, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	e := &Engine{Catalog: catalog, progress: store}
	e.Stats = NewStatsAggregator(store, log.Named("stats"))
	e.Streaks = NewStreakTracker(store, opts.Clock, opts.Location, log.Named("streak"))
	e.Streaks.SetRetries(opts.StreakRetries)
	e.Awards = NewAwardEngine(store, e.Stats, catalog, opts.Clock, log.Named("award"))
	e.Levels = NewLevelService(store)
	e.Recorder = NewRecorder(store, opts.Content, e.Streaks, e.Awards, opts.Guard, log.Named("recorder"))

	if opts.Guest != nil {
		e.Guest = NewStreakTracker(opts.Guest, opts.Clock, opts.Location, log.Named("guest"))
		e.Guest.SetRetries(opts.StreakRetries)
		e.guestLog = opts.Guest
		e.Importer = NewGuestImporter(store, log.Named("import"))
	}
	return e
}

// RecordGuest records a guest activity. It returns
// domain.ErrUnauthenticated when guest mode is disabled.
func (e *Engine) RecordGuest(ctx context.Context, in ActivityInput) (domain.RecordResult, error) {
	if e.Guest == nil {
		return domain.RecordResult{}, domain.ErrUnauthenticated
	}
	return e.Recorder.RecordGuest(ctx, e.Guest, e.guestLog, in)
}

// ImportGuest merges the guest streak into userID's account.
func (e *Engine) ImportGuest(ctx context.Context, userID string) (domain.Streak, error) {
	if e.Importer == nil {
		return domain.Streak{}, domain.ErrUnauthenticated
	}
	return e.Importer.Import(ctx, userID)
}

// Progress lists the user's progress records, most recent first.
func (e *Engine) Progress(ctx context.Context, userID string, limit int) ([]domain.ProgressRecord, error) {
	return e.progress.ListProgress(ctx, userID, limit)
}
