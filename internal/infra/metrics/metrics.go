// Package metrics provides Prometheus metrics for noor.
// Counters for activity recording, streak transitions and badge awards,
// plus the health check gauge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Activity ───────────────────────────────────────────────────────────────

// Activities counts recorded activity events by kind and outcome
// (accepted, duplicate, invalid, failed).
var Activities = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "noor",
	Name:      "activities_total",
	Help:      "Activity events by kind and outcome.",
}, []string{"kind", "outcome"})

// RecordLatency tracks end-to-end RecordActivity duration, award included.
var RecordLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "noor",
	Name:      "record_latency_seconds",
	Help:      "RecordActivity duration in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
})

// ─── Streaks ────────────────────────────────────────────────────────────────

// StreakTransitions counts which branch of the streak state machine fired.
var StreakTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "noor",
	Name:      "streak_transitions_total",
	Help:      "Streak updates by transition (started, same_day, continued, reset).",
}, []string{"transition"})

// StreakConflicts counts lost compare-and-swap attempts.
var StreakConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "noor",
	Name:      "streak_cas_conflicts_total",
	Help:      "Streak compare-and-swap attempts that lost a race.",
})

// ─── Achievements ───────────────────────────────────────────────────────────

// BadgesAwarded counts newly created achievement records per badge.
var BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "noor",
	Name:      "badges_awarded_total",
	Help:      "Achievement records created, per badge.",
}, []string{"badge"})

// AwardErrors counts per-candidate award failures.
var AwardErrors = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "noor",
	Name:      "award_errors_total",
	Help:      "Badge award attempts that failed in the store.",
})

// StatsReadFailures counts stats reads absorbed into a zero snapshot.
var StatsReadFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "noor",
	Name:      "stats_read_failures_total",
	Help:      "Stats aggregation reads that failed.",
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "noor",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
