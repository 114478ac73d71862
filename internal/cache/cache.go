// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides caching infrastructure with in-memory and Redis
// backends. The taxonomy service uses it for descendant closures and the
// category tree; entries are invalidated on every taxonomy mutation so
// cached results always reflect the current taxonomy.
package cache

import (
	"context"
	"time"
)

// Cache is the interface shared by all backends. Implementations must be
// safe for concurrent use. Values are []byte so the same interface serves
// both the in-memory and Redis backends.
type Cache interface {
	// Get retrieves a value. Returns ErrCacheMiss if absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A zero TTL uses the default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// Error is the error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)

// Config selects and tunes the cache backend.
type Config struct {
	// RedisURL selects the Redis backend when non-empty.
	RedisURL string

	// Prefix is prepended to all keys on the Redis backend.
	Prefix string

	// DefaultTTL is the expiration applied when Set receives a zero TTL.
	DefaultTTL time.Duration

	// MaxSize caps the number of in-memory entries (0 = unlimited).
	MaxSize int

	// CleanupInterval is how often the in-memory backend drops expired
	// entries (0 = no background cleanup).
	CleanupInterval time.Duration
}

// New creates a cache from the configuration: Redis when RedisURL is set,
// in-memory otherwise.
func New(cfg Config) (Cache, error) {
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = time.Hour
	}
	if cfg.RedisURL != "" {
		return NewRedisCache(cfg)
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Minute
	}
	return NewMemoryCache(cfg), nil
}
