// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"time"
)

// Config selects and tunes the cache backend.
type Config struct {
	// Type is "memory" or "redis".
	Type string

	// RedisURL is the connection URL for the redis type.
	RedisURL string

	// Prefix namespaces keys in shared backends.
	Prefix string

	// DefaultTTL applies when Set is called with a zero TTL.
	DefaultTTL time.Duration

	// CleanupInterval is the expired-entry sweep interval for the memory type.
	CleanupInterval time.Duration
}

// DefaultConfig returns the memory backend defaults.
func DefaultConfig() Config {
	return Config{
		Type:            "memory",
		Prefix:          "mocnha:",
		DefaultTTL:      time.Hour,
		CleanupInterval: time.Minute,
	}
}

// NewCache creates a backend from cfg.
func NewCache(cfg Config) (Cache, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryCache(MemoryCacheOptions{
			DefaultTTL:      cfg.DefaultTTL,
			CleanupInterval: cfg.CleanupInterval,
		}), nil
	case "redis":
		opts := DefaultRedisCacheOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}
		return NewRedisCache(opts)
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}
