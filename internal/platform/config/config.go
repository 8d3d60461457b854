// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, cache, Kitsu client) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Cache backend selectors accepted in CACHE_BACKEND.
const (
	CacheBackendPostgres = "postgres"
	CacheBackendRedis    = "redis"
)

// # Configuration Schema

// Config holds all runtime configuration for the Kisetsu services.
type Config struct {

	// Server settings (ops API)
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// External catalog API (Kitsu)
	KitsuBaseURL string `env:"KITSU_BASE_URL" envDefault:"https://kitsu.io/api/edge"`

	// Response cache. The Redis URL is only required when CACHE_BACKEND=redis.
	CacheBackend string        `env:"CACHE_BACKEND" envDefault:"postgres"`
	CacheTTL     time.Duration `env:"CACHE_TTL"     envDefault:"168h"`
	RedisURL     string        `env:"REDIS_URL"`

	// Search-engine notification (IndexNow). Both must be set to enable pings.
	SiteHost    string `env:"SITE_HOST"`
	IndexNowKey string `env:"INDEXNOW_KEY"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// Backend-conditional requirements cannot be expressed with struct tags.
	if cfg.CacheBackend != CacheBackendPostgres && cfg.CacheBackend != CacheBackendRedis {
		return nil, fmt.Errorf("config: unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}
	if cfg.CacheBackend == CacheBackendRedis && cfg.RedisURL == "" {
		return nil, fmt.Errorf("config: REDIS_URL is required when CACHE_BACKEND=redis")
	}

	return cfg, nil
}

// NotifyEnabled reports whether search-engine pings are configured.
func (c *Config) NotifyEnabled() bool {
	return c.SiteHost != "" && c.IndexNowKey != ""
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
