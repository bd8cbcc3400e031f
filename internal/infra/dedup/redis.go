// Package dedup provides a Redis-backed fast-path claim for activity dedup
// keys. SQLite remains the authority; a claim only saves a write transaction
// for the obvious repeat.
package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL outlives any calendar day in any timezone.
	DefaultTTL = 36 * time.Hour
	// DefaultPendingTTL bounds how long an unconfirmed claim blocks retries
	// if the process dies before the store write.
	DefaultPendingTTL = 30 * time.Second
)

// Options configures the Redis connection.
type Options struct {
	Addr       string
	Password   string
	DB         int
	Prefix     string
	TTL        time.Duration
	PendingTTL time.Duration
}

// RedisGuard claims dedup keys with SET NX. A claim starts with the short
// pending TTL and is extended to TTL by Confirm once the store write lands.
type RedisGuard struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	pending time.Duration
}

// NewRedisGuard connects to Redis. The connection is not verified here; use
// Ping for that.
func NewRedisGuard(opts Options) *RedisGuard {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	return newGuard(client, opts)
}

func newGuard(client *redis.Client, opts Options) *RedisGuard {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = DefaultPendingTTL
	}
	if opts.PendingTTL > opts.TTL {
		opts.PendingTTL = opts.TTL
	}
	if opts.Prefix == "" {
		opts.Prefix = "noor:dedup:"
	}
	return &RedisGuard{client: client, prefix: opts.Prefix, ttl: opts.TTL, pending: opts.PendingTTL}
}

// Claim returns true if this call is the first to claim key. The claim
// expires after the pending TTL unless confirmed.
func (g *RedisGuard) Claim(ctx context.Context, key string) (bool, error) {
	return g.client.SetNX(ctx, g.prefix+key, time.Now().Unix(), g.pending).Result()
}

// Confirm extends a claim to the full TTL after the store write succeeded.
func (g *RedisGuard) Confirm(ctx context.Context, key string) error {
	return g.client.Expire(ctx, g.prefix+key, g.ttl).Err()
}

// Release drops a claim so a failed write can be retried.
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, g.prefix+key).Err()
}

// Ping checks connectivity.
func (g *RedisGuard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

// Close closes the client.
func (g *RedisGuard) Close() error {
	return g.client.Close()
}
