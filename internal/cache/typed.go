// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TypedCache wraps a Cache with JSON serialization for a concrete type.
type TypedCache[T any] struct {
	cache Cache
}

// NewTypedCache creates a typed view over the given cache.
func NewTypedCache[T any](c Cache) *TypedCache[T] {
	return &TypedCache[T]{cache: c}
}

func (t *TypedCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	data, err := t.cache.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return value, nil
}

func (t *TypedCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for cache: %w", err)
	}
	return t.cache.Set(ctx, key, data, ttl)
}

func (t *TypedCache[T]) Delete(ctx context.Context, key string) error {
	return t.cache.Delete(ctx, key)
}
