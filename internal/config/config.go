// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from environment
// variables with the MOCNHA_ prefix.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"MOCNHA_DB_PATH" envDefault:"./data/mocnha.db"`
	ServerHost string `env:"MOCNHA_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"MOCNHA_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"MOCNHA_ENV" envDefault:"development"`
	LogLevel   string `env:"MOCNHA_LOG_LEVEL" envDefault:"info"`

	// Cache configuration
	RedisURL    string `env:"MOCNHA_REDIS_URL"`                        // Optional Redis URL for distributed caching
	CachePrefix string `env:"MOCNHA_CACHE_PREFIX" envDefault:"mocnha:"`
	CacheTTL    int    `env:"MOCNHA_CACHE_TTL" envDefault:"900"` // seconds

	// Translation provider configuration
	AIProvider string `env:"MOCNHA_AI_PROVIDER" envDefault:"openai"` // openai or openai_compat
	AIAPIKey   string `env:"MOCNHA_AI_API_KEY"`
	AIModel    string `env:"MOCNHA_AI_MODEL" envDefault:"gpt-4o-mini"`
	AIBaseURL  string `env:"MOCNHA_AI_BASE_URL"` // for openai_compat, e.g. http://localhost:11434/v1

	// Seeding configuration
	DoSeed        bool   `env:"MOCNHA_DO_SEED" envDefault:"false"`
	AdminEmail    string `env:"MOCNHA_ADMIN_EMAIL" envDefault:"admin@mocnha.vn"`
	AdminPassword string `env:"MOCNHA_ADMIN_PASSWORD"`

	// Scheduler configuration
	StaleRequestMaxAge time.Duration `env:"MOCNHA_STALE_REQUEST_MAX_AGE" envDefault:"30m"`
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

// CacheTTLDuration returns the cache TTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// AIConfigured returns true if a translation provider is usable.
func (c Config) AIConfigured() bool {
	switch c.AIProvider {
	case "openai":
		return c.AIAPIKey != ""
	case "openai_compat":
		return c.AIBaseURL != ""
	}
	return false
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("MOCNHA_SERVER_PORT out of range: %d", cfg.ServerPort)
	}
	if cfg.DoSeed && cfg.AdminPassword == "" {
		return nil, fmt.Errorf("MOCNHA_ADMIN_PASSWORD is required when MOCNHA_DO_SEED is set")
	}

	return cfg, nil
}
