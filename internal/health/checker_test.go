package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/noor-reader/noor/internal/infra/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Checker Tests ──────────────────────────────────────────────────────────

func TestNewChecker(t *testing.T) {
	db := newTestDB(t)

	if c := NewChecker(db, nil); len(c.checks) != 1 {
		t.Errorf("checks = %d, want 1", len(c.checks))
	}
	redis := PingFunc(func(context.Context) error { return nil })
	if c := NewChecker(db, redis); len(c.checks) != 2 {
		t.Errorf("checks with redis = %d, want 2", len(c.checks))
	}
}

func TestChecker_RunAllHealthy(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, PingFunc(func(context.Context) error { return nil }))
	c.RunOnce(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 2 {
		t.Fatalf("Statuses() = %d, want 2", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %q should be healthy, got error: %s", s.Name, s.Error)
		}
	}
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true")
	}
}

func TestChecker_FailingDependency(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, PingFunc(func(context.Context) error {
		return errors.New("connection refused")
	}))
	c.RunOnce(context.Background())

	if c.IsHealthy() {
		t.Error("IsHealthy() should be false when redis is down")
	}
	st := c.Statuses()[1]
	if st.Name != "redis" || st.Healthy || st.Error != "connection refused" {
		t.Errorf("redis status = %+v", st)
	}
}

func TestChecker_ClosedDatabase(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	db.Close()

	c := NewChecker(db, nil)
	c.RunOnce(context.Background())
	if c.IsHealthy() {
		t.Error("closed database should be unhealthy")
	}
}

func TestChecker_RunStopsOnCancel(t *testing.T) {
	c := NewChecker(newTestDB(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestChecker_StatusesIsCopy(t *testing.T) {
	c := NewChecker(newTestDB(t), nil)
	c.RunOnce(context.Background())

	s := c.Statuses()
	s[0].Healthy = false
	if !c.IsHealthy() {
		t.Error("mutating Statuses() result changed checker state")
	}
}
