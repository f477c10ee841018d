// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// TypedCache wraps a Cache backend with JSON serialization for one value type.
type TypedCache[T any] struct {
	cache      Cache
	defaultTTL time.Duration
}

// NewTypedCache creates a typed view over cache.
func NewTypedCache[T any](cache Cache, defaultTTL time.Duration) *TypedCache[T] {
	return &TypedCache[T]{cache: cache, defaultTTL: defaultTTL}
}

// Get retrieves and decodes the value for key.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		// A decode failure means a stale or foreign payload; drop it.
		_ = c.cache.Delete(ctx, key)
		return zero, ErrCacheMiss
	}
	return value, nil
}

// Set encodes and stores value under key.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, key, data, c.defaultTTL)
}

// Delete removes a key.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, key)
}

// GetOrLoad returns the cached value for key, calling load and caching its
// result on a miss. Load errors are returned without caching.
func (c *TypedCache[T]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	value, err := c.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return value, err
	}

	value, err = load(ctx)
	if err != nil {
		return value, err
	}
	if setErr := c.Set(ctx, key, value); setErr != nil && !errors.Is(setErr, ErrCacheClosed) {
		return value, nil
	}
	return value, nil
}
