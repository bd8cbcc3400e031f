package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestActivityMetrics(t *testing.T) {
	Activities.WithLabelValues("surah", "accepted").Inc()
	RecordLatency.Observe(0.02)

	names := gatheredNames(t)
	for _, name := range []string{"noor_activities_total", "noor_record_latency_seconds"} {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestEngagementMetrics(t *testing.T) {
	StreakTransitions.WithLabelValues("started").Inc()
	StreakConflicts.Inc()
	BadgesAwarded.WithLabelValues("first_ayah").Inc()
	AwardErrors.Inc()
	StatsReadFailures.Inc()

	names := gatheredNames(t)
	expected := []string{
		"noor_streak_transitions_total",
		"noor_streak_cas_conflicts_total",
		"noor_badges_awarded_total",
		"noor_award_errors_total",
		"noor_stats_read_failures_total",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestHealthGauge(t *testing.T) {
	HealthCheckStatus.WithLabelValues("sqlite").Set(1)
	if !gatheredNames(t)["noor_health_check_status"] {
		t.Error("noor_health_check_status not found")
	}
}
