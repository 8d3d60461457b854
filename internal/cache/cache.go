// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

/*
Package cache stores raw catalog API page responses with TTL-based expiry.

The cache exists to avoid redundant calls against a rate-limited external
API; it is an optimization, never a correctness requirement. Every operation
therefore degrades gracefully: a backend failure logs and reports a miss (or
a zero count), and the caller falls through to a live fetch.

Two interchangeable backends implement [Store]:

  - PostgresStore: a relational table with a unique cache_key, JSON payload,
    and explicit expires_at column swept by CleanupExpired.
  - RedisStore: native TTL expiry; the periodic sweep is a no-op.
*/
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kisetsu-app/kisetsu/internal/core/season"
	"github.com/kisetsu-app/kisetsu/internal/platform/constants"
)

// # Cache Keys

// Key uniquely identifies one paginated fetch unit.
type Key struct {
	Season season.Season
	Year   int
	Page   int
}

// String serializes the key to its deterministic storage form:
// "kitsu:<season>:<year>:page:<N>".
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%d:page:%d", constants.CacheKeyPrefix, k.Season.KitsuParam(), k.Year, k.Page)
}

// SeasonPrefix returns the common prefix of every page key of one
// season/year, used for pattern invalidation.
func SeasonPrefix(s season.Season, year int) string {
	return fmt.Sprintf("%s:%s:%d:page:", constants.CacheKeyPrefix, s.KitsuParam(), year)
}

// # Cache Service

// Cache is the TTL cache facade over a pluggable [Store].
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger

	// now is injectable for expiry tests.
	now func() time.Time
}

// New constructs a cache with the given backend and entry TTL.
func New(store Store, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}
	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "response_cache")),
		now:    time.Now,
	}
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the cached payload for key, or (nil, false) on miss, expiry,
// or backend failure.
func (c *Cache) Get(ctx context.Context, key Key) (json.RawMessage, bool) {
	entry, err := c.store.Get(ctx, key.String())
	if err != nil {
		c.logger.Warn("cache_get_failed", slog.String("key", key.String()), slog.String("error", err.Error()))
		return nil, false
	}
	if entry == nil || !entry.ExpiresAt.After(c.now()) {
		return nil, false
	}
	return entry.Response, true
}

// Exists reports whether an unexpired entry is present, without returning
// the payload.
func (c *Cache) Exists(ctx context.Context, key Key) bool {
	entry, err := c.store.Get(ctx, key.String())
	if err != nil {
		c.logger.Warn("cache_exists_failed", slog.String("key", key.String()), slog.String("error", err.Error()))
		return false
	}
	return entry != nil && entry.ExpiresAt.After(c.now())
}

// Set upserts the payload under key with expires_at = now + TTL.
// Last write wins. Failures are logged and swallowed: a cache write must
// never fail the fetch it follows.
func (c *Cache) Set(ctx context.Context, key Key, payload json.RawMessage) {
	now := c.now()
	entry := &Entry{
		CacheKey:  key.String(),
		Response:  payload,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	if err := c.store.Set(ctx, entry); err != nil {
		c.logger.Warn("cache_set_failed", slog.String("key", key.String()), slog.String("error", err.Error()))
	}
}

// Invalidate deletes one entry. Reports whether a row was removed.
func (c *Cache) Invalidate(ctx context.Context, key Key) bool {
	deleted, err := c.store.Delete(ctx, key.String())
	if err != nil {
		c.logger.Warn("cache_invalidate_failed", slog.String("key", key.String()), slog.String("error", err.Error()))
		return false
	}
	return deleted
}

// InvalidateSeason deletes every page entry of one season/year and returns
// the number of entries removed.
func (c *Cache) InvalidateSeason(ctx context.Context, s season.Season, year int) int {
	count, err := c.store.DeletePrefix(ctx, SeasonPrefix(s, year))
	if err != nil {
		c.logger.Warn("cache_invalidate_season_failed",
			slog.String("season", s.KitsuParam()),
			slog.Int("year", year),
			slog.String("error", err.Error()),
		)
		return 0
	}
	return count
}

// CleanupExpired removes entries whose expiry has passed and returns the
// count removed. Intended to run out-of-band, not on the fetch hot path.
func (c *Cache) CleanupExpired(ctx context.Context) int {
	count, err := c.store.DeleteExpired(ctx, c.now())
	if err != nil {
		c.logger.Warn("cache_cleanup_failed", slog.String("error", err.Error()))
		return 0
	}
	if count > 0 {
		c.logger.Info("cache_cleanup_done", slog.Int("removed", count))
	}
	return count
}
