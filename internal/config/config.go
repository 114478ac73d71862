// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinJWTSecretLength is the minimum required length for the JWT signing
// secret. HMAC-SHA256 keys shorter than 32 bytes weaken the signature.
const MinJWTSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"EVENTORY_DB_PATH" envDefault:"./data/eventory.db"`
	ServerHost string `env:"EVENTORY_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"EVENTORY_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"EVENTORY_ENV" envDefault:"development"`
	LogLevel   string `env:"EVENTORY_LOG_LEVEL" envDefault:"info"`

	// Auth configuration
	JWTSecret string        `env:"EVENTORY_JWT_SECRET,required"`
	JWTTTL    time.Duration `env:"EVENTORY_JWT_TTL" envDefault:"24h"`

	// Cache configuration
	RedisURL     string        `env:"EVENTORY_REDIS_URL"` // Optional Redis URL for distributed caching
	CachePrefix  string        `env:"EVENTORY_CACHE_PREFIX" envDefault:"eventory:"`
	CacheTTL     time.Duration `env:"EVENTORY_CACHE_TTL" envDefault:"1h"`
	CacheMaxSize int           `env:"EVENTORY_CACHE_MAX_SIZE" envDefault:"10000"`

	// Rate limiting (requests per second per client, with burst)
	RateLimit      float64 `env:"EVENTORY_RATE_LIMIT" envDefault:"20"`
	RateLimitBurst int     `env:"EVENTORY_RATE_LIMIT_BURST" envDefault:"40"`

	// Audit log retention window for the cron pruning job.
	AuditRetention time.Duration `env:"EVENTORY_AUDIT_RETENTION" envDefault:"720h"`

	// Seeding configuration
	DoSeed bool `env:"EVENTORY_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("EVENTORY_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(cfg.JWTSecret))
	}

	return cfg, nil
}
