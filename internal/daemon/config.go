// Package daemon manages the noor daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Config holds all daemon configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Auth       AuthConfig       `toml:"auth"`
	Engagement EngagementConfig `toml:"engagement"`
	Dedup      DedupConfig      `toml:"dedup"`
	Logging    LoggingConfig    `toml:"logging"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host            string   `toml:"host" env:"NOOR_API_HOST"`
	Port            int      `toml:"port" env:"NOOR_API_PORT"`
	CORSOrigins     []string `toml:"cors_origins" env:"NOOR_CORS_ORIGINS"`
	RatePerMinute   int      `toml:"rate_per_minute" env:"NOOR_RATE_PER_MINUTE"`
	ShutdownTimeout string   `toml:"shutdown_timeout"`
}

// AuthConfig controls bearer token verification.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret" env:"NOOR_JWT_SECRET"`
	Issuer    string `toml:"issuer" env:"NOOR_JWT_ISSUER"`
	TokenTTL  string `toml:"token_ttl"`
}

// EngagementConfig controls day boundaries and the streak write loop.
type EngagementConfig struct {
	Timezone      string `toml:"timezone" env:"NOOR_TIMEZONE"`
	StreakRetries int    `toml:"streak_retries"`
	GuestMode     bool   `toml:"guest_mode"`
}

// DedupConfig selects the activity dedup fast path.
type DedupConfig struct {
	Backend       string `toml:"backend" env:"NOOR_DEDUP_BACKEND"` // "sqlite" or "redis"
	RedisAddr     string `toml:"redis_addr" env:"NOOR_REDIS_ADDR"`
	RedisPassword string `toml:"redis_password" env:"NOOR_REDIS_PASSWORD"`
	RedisDB       int    `toml:"redis_db"`
	TTL           string `toml:"ttl"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level      string `toml:"level" env:"NOOR_LOG_LEVEL"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxFiles   int    `toml:"max_files"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// TelemetryConfig controls the metrics endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus" env:"NOOR_PROMETHEUS"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := noorHome()
	return Config{
		API: APIConfig{
			Host:            "127.0.0.1",
			Port:            8470,
			CORSOrigins:     []string{"*"},
			RatePerMinute:   120,
			ShutdownTimeout: "15s",
		},
		Auth: AuthConfig{
			Issuer:   "noor",
			TokenTTL: "720h",
		},
		Engagement: EngagementConfig{
			Timezone:      "UTC",
			StreakRetries: 5,
			GuestMode:     true,
		},
		Dedup: DedupConfig{
			Backend: "sqlite",
			TTL:     "36h",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       filepath.Join(homeDir, "noor.log"),
			MaxSizeMB:  50,
			MaxFiles:   5,
			MaxAgeDays: 14,
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// LoadConfig reads $NOOR_HOME/config.toml over the defaults, then applies
// NOOR_* environment overrides.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(noorHome(), "config.toml")

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the daemon cannot start with.
func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Dedup.Backend {
	case "", "sqlite":
	case "redis":
		if c.Dedup.RedisAddr == "" {
			return fmt.Errorf("dedup backend redis requires redis_addr")
		}
	default:
		return fmt.Errorf("unknown dedup backend %q", c.Dedup.Backend)
	}
	return nil
}

// Location resolves the engagement timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Engagement.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Engagement.Timezone)
	if err != nil {
		return nil, fmt.Errorf("engagement timezone: %w", err)
	}
	return loc, nil
}

// SaveConfig writes the config to $NOOR_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(noorHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// parseDuration parses s, falling back to def when empty or invalid.
func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// noorHome returns the noor data directory.
func noorHome() string {
	if env := os.Getenv("NOOR_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".noor")
}
