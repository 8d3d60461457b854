// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is one cached API page response.
//
// Invariant: ExpiresAt == CreatedAt + TTL at write time.
type Entry struct {
	CacheKey  string          `json:"cache_key"`
	Response  json.RawMessage `json:"response"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Store is the persistence contract for cache entries.
//
// Implementations return (nil, nil) from Get on a plain miss; errors are
// reserved for backend failures. The [Cache] facade owns expiry checks so
// backends stay dumb key-value stores.
type Store interface {
	// Get fetches an entry by exact key, or nil when absent.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set upserts an entry keyed by Entry.CacheKey. Last write wins.
	Set(ctx context.Context, entry *Entry) error

	// Delete removes one entry, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// DeletePrefix removes every entry whose key starts with prefix and
	// returns the count removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// DeleteExpired removes every entry with expires_at <= now and returns
	// the count removed. Backends with native TTL may report 0.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
