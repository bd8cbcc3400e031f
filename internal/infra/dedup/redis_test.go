package dedup

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// testGuard connects to NOOR_TEST_REDIS_ADDR or skips.
func testGuard(t *testing.T) *RedisGuard {
	t.Helper()
	addr := os.Getenv("NOOR_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("NOOR_TEST_REDIS_ADDR not set")
	}
	g := NewRedisGuard(Options{Addr: addr, Prefix: "noor:test:" + uuid.NewString() + ":", TTL: time.Minute})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := g.Ping(ctx); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestNewGuard_Defaults(t *testing.T) {
	g := NewRedisGuard(Options{Addr: "127.0.0.1:0"})
	defer g.Close()
	if g.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", g.ttl, DefaultTTL)
	}
	if g.prefix != "noor:dedup:" {
		t.Errorf("prefix = %q", g.prefix)
	}
	if g.pending != DefaultPendingTTL {
		t.Errorf("pending = %v, want %v", g.pending, DefaultPendingTTL)
	}

	short := NewRedisGuard(Options{Addr: "127.0.0.1:0", TTL: time.Second, PendingTTL: time.Minute})
	defer short.Close()
	if short.pending != time.Second {
		t.Errorf("pending = %v, want capped at ttl", short.pending)
	}
}

func TestClaim_UnconfirmedExpires(t *testing.T) {
	g := testGuard(t)
	g.pending = time.Second
	ctx := context.Background()

	if ok, _ := g.Claim(ctx, "lost"); !ok {
		t.Fatal("first claim should win")
	}
	if ok, _ := g.Claim(ctx, "kept"); !ok {
		t.Fatal("first claim should win")
	}
	if err := g.Confirm(ctx, "kept"); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	time.Sleep(1500 * time.Millisecond)
	if ok, _ := g.Claim(ctx, "lost"); !ok {
		t.Error("unconfirmed claim should expire and be reclaimable")
	}
	if ok, _ := g.Claim(ctx, "kept"); ok {
		t.Error("confirmed claim should still hold")
	}
}

func TestClaim_OnlyFirstWins(t *testing.T) {
	g := testGuard(t)
	ctx := context.Background()

	ok, err := g.Claim(ctx, "u1|surah:1|2025-01-01")
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, err = g.Claim(ctx, "u1|surah:1|2025-01-01")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if ok {
		t.Error("second claim should lose")
	}
}

func TestRelease_AllowsReclaim(t *testing.T) {
	g := testGuard(t)
	ctx := context.Background()

	g.Claim(ctx, "k")
	if err := g.Release(ctx, "k"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if ok, _ := g.Claim(ctx, "k"); !ok {
		t.Error("claim after release should win")
	}
}

func TestClaim_UnreachableReturnsError(t *testing.T) {
	g := NewRedisGuard(Options{Addr: "127.0.0.1:1"})
	defer g.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := g.Claim(ctx, "k"); err == nil {
		t.Error("expected error from unreachable redis")
	}
}
