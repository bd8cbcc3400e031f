// Package api provides the HTTP server for noor: activity recording and the
// streak, level, stats and achievement reads behind bearer auth.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/noor-reader/noor/internal/app/engagement"
	"github.com/noor-reader/noor/internal/health"
)

// HealthReporter exposes the latest health check results.
type HealthReporter interface {
	Statuses() []health.Status
	IsHealthy() bool
}

// Options configures optional server behavior.
type Options struct {
	CORSOrigins    []string
	RatePerMinute  int
	MetricsEnabled bool
	Health         HealthReporter
	Logger         *zap.Logger
}

// Server is the noor HTTP API server.
type Server struct {
	engine  *engagement.Engine
	auth    *Authenticator
	limiter *userLimiter
	opts    Options
	log     *zap.Logger
}

// NewServer creates a new API server.
func NewServer(eng *engagement.Engine, auth *Authenticator, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		engine:  eng,
		auth:    auth,
		limiter: newUserLimiter(opts.RatePerMinute),
		opts:    opts,
		log:     log,
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.corsHandler().Handler)

	r.Get("/health", s.handleHealth)
	r.Get("/api/badges", s.handleBadges)

	if s.opts.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Middleware)

		r.With(s.limiter.Middleware).Post("/api/activity", s.handleRecordActivity)

		r.Route("/api/me", func(r chi.Router) {
			r.Get("/streak", s.handleStreak)
			r.Get("/level", s.handleLevel)
			r.Get("/stats", s.handleStats)
			r.Get("/progress", s.handleProgress)
			r.Get("/achievements", s.handleAchievements)
			r.With(s.limiter.Middleware).Post("/achievements/check", s.handleCheckAchievements)
			r.Post("/guest-import", s.handleGuestImport)
		})
	})

	return r
}

func (s *Server) corsHandler() *cors.Cors {
	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Accept-Language"},
		MaxAge:         600,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.opts.Health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": s.opts.Health.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    http.StatusText(status),
		},
	})
}
