package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/noor-reader/noor/internal/api"
	"github.com/noor-reader/noor/internal/app/engagement"
	"github.com/noor-reader/noor/internal/content"
	"github.com/noor-reader/noor/internal/health"
	"github.com/noor-reader/noor/internal/infra/dedup"
	"github.com/noor-reader/noor/internal/infra/sqlite"
)

// Daemon is the core noor runtime. It wires together all services.
type Daemon struct {
	Config Config
	Log    *zap.Logger
	DB     *sqlite.DB
	Guard  *dedup.RedisGuard // nil unless the redis dedup backend is on
	Engine *engagement.Engine
	Auth   *api.Authenticator
	Health *health.Checker
	Server *api.Server
	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, _ := cfg.Location()

	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := sqlite.Open(noorHome())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &Daemon{Config: cfg, Log: logger, DB: db}

	var guard engagement.Guard
	var redisPing health.Pinger
	if cfg.Dedup.Backend == "redis" {
		d.Guard = dedup.NewRedisGuard(dedup.Options{
			Addr:     cfg.Dedup.RedisAddr,
			Password: cfg.Dedup.RedisPassword,
			DB:       cfg.Dedup.RedisDB,
			TTL:      parseDuration(cfg.Dedup.TTL, dedup.DefaultTTL),
		})
		guard = d.Guard
		redisPing = health.PingFunc(d.Guard.Ping)
	}

	opts := engagement.Options{
		Content:       content.New(),
		Guard:         guard,
		Clock:         nil, // wall clock
		Location:      loc,
		StreakRetries: cfg.Engagement.StreakRetries,
		Logger:        logger.Named("engagement"),
	}
	if cfg.Engagement.GuestMode {
		opts.Guest = db.Guest()
	}
	d.Engine = engagement.New(db, opts)

	d.Auth = api.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, parseDuration(cfg.Auth.TokenTTL, 0))
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("auth.jwt_secret is empty; authenticated routes will reject every request")
	}

	d.Health = health.NewChecker(db, redisPing)
	d.Health.SetLogger(logger.Named("health"))

	d.Server = api.NewServer(d.Engine, d.Auth, api.Options{
		CORSOrigins:    cfg.API.CORSOrigins,
		RatePerMinute:  cfg.API.RatePerMinute,
		MetricsEnabled: cfg.Telemetry.Prometheus,
		Health:         d.Health,
		Logger:         logger.Named("api"),
	})

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		timeout := parseDuration(d.Config.API.ShutdownTimeout, 15*time.Second)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			d.Log.Warn("http shutdown", zap.Error(err))
		}
	}()

	d.Log.Info("noor serving",
		zap.String("addr", "http://"+addr),
		zap.Bool("metrics", d.Config.Telemetry.Prometheus),
		zap.String("dedup", d.Config.Dedup.Backend),
		zap.String("timezone", d.Config.Engagement.Timezone),
	)

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Guard != nil {
		_ = d.Guard.Close()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
	if d.Log != nil {
		_ = d.Log.Sync()
	}
}
