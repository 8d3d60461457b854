// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisetsu-app/kisetsu/internal/core/season"
)

// memoryStore is an in-memory Store double. failing flips every call into a
// backend error to exercise the degrade-to-miss policy.
type memoryStore struct {
	entries map[string]*Entry
	failing bool
}

var errBackendDown = errors.New("backend unavailable")

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]*Entry)}
}

func (s *memoryStore) Get(_ context.Context, key string) (*Entry, error) {
	if s.failing {
		return nil, errBackendDown
	}
	return s.entries[key], nil
}

func (s *memoryStore) Set(_ context.Context, entry *Entry) error {
	if s.failing {
		return errBackendDown
	}
	s.entries[entry.CacheKey] = entry
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) (bool, error) {
	if s.failing {
		return false, errBackendDown
	}
	_, existed := s.entries[key]
	delete(s.entries, key)
	return existed, nil
}

func (s *memoryStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	if s.failing {
		return 0, errBackendDown
	}
	count := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			count++
		}
	}
	return count, nil
}

func (s *memoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	if s.failing {
		return 0, errBackendDown
	}
	count := 0
	for key, entry := range s.entries {
		if !entry.ExpiresAt.After(now) {
			delete(s.entries, key)
			count++
		}
	}
	return count, nil
}

func testKey(page int) Key {
	return Key{Season: season.Winter, Year: 2025, Page: page}
}

/*
TestKey_String pins the deterministic key format.
*/
func TestKey_String(t *testing.T) {
	assert.Equal(t, "kitsu:winter:2025:page:3", testKey(3).String())
	assert.Equal(t, "kitsu:fall:1999:page:1", Key{Season: season.Fall, Year: 1999, Page: 1}.String())
	assert.Equal(t, "kitsu:summer:2024:page:", SeasonPrefix(season.Summer, 2024))
}

/*
TestCache_SetGetRoundTrip: set followed by get before TTL returns the exact
payload.
*/
func TestCache_SetGetRoundTrip(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Hour, slog.Default())
	ctx := context.Background()

	payload := json.RawMessage(`{"data": [1, 2, 3]}`)
	c.Set(ctx, testKey(1), payload)

	got, hit := c.Get(ctx, testKey(1))
	require.True(t, hit)
	assert.Equal(t, payload, got)
	assert.True(t, c.Exists(ctx, testKey(1)))
}

/*
TestCache_TTLInvariant: for every stored entry, expires_at - created_at
equals the configured TTL exactly.
*/
func TestCache_TTLInvariant(t *testing.T) {
	store := newMemoryStore()
	ttl := 7 * 24 * time.Hour
	c := New(store, ttl, slog.Default())

	c.Set(context.Background(), testKey(1), json.RawMessage(`{}`))
	c.Set(context.Background(), testKey(2), json.RawMessage(`{}`))

	for _, entry := range store.entries {
		assert.Equal(t, ttl, entry.ExpiresAt.Sub(entry.CreatedAt))
	}
}

/*
TestCache_ExpiryMiss: an entry past its expires_at reads as a miss.
*/
func TestCache_ExpiryMiss(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Hour, slog.Default())
	ctx := context.Background()

	c.Set(ctx, testKey(1), json.RawMessage(`{}`))

	// Advance the cache's clock past the TTL.
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, hit := c.Get(ctx, testKey(1))
	assert.False(t, hit)
	assert.False(t, c.Exists(ctx, testKey(1)))
}

/*
TestCache_BackendFailureDegrades: a failing backend must read as a miss and
never propagate an error.
*/
func TestCache_BackendFailureDegrades(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Hour, slog.Default())
	ctx := context.Background()

	store.failing = true

	_, hit := c.Get(ctx, testKey(1))
	assert.False(t, hit)
	assert.False(t, c.Exists(ctx, testKey(1)))
	assert.False(t, c.Invalidate(ctx, testKey(1)))
	assert.Zero(t, c.InvalidateSeason(ctx, season.Winter, 2025))
	assert.Zero(t, c.CleanupExpired(ctx))

	// Set must swallow the failure silently.
	c.Set(ctx, testKey(1), json.RawMessage(`{}`))
}

/*
TestCache_InvalidateSeason deletes exactly the matching season's pages.
*/
func TestCache_InvalidateSeason(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Hour, slog.Default())
	ctx := context.Background()

	c.Set(ctx, testKey(1), json.RawMessage(`{}`))
	c.Set(ctx, testKey(2), json.RawMessage(`{}`))
	c.Set(ctx, Key{Season: season.Spring, Year: 2025, Page: 1}, json.RawMessage(`{}`))

	removed := c.InvalidateSeason(ctx, season.Winter, 2025)

	assert.Equal(t, 2, removed)
	_, hit := c.Get(ctx, Key{Season: season.Spring, Year: 2025, Page: 1})
	assert.True(t, hit, "other seasons must be untouched")
}

/*
TestCache_CleanupExpired sweeps only stale entries.
*/
func TestCache_CleanupExpired(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Hour, slog.Default())
	ctx := context.Background()

	c.Set(ctx, testKey(1), json.RawMessage(`{}`))
	c.Set(ctx, testKey(2), json.RawMessage(`{}`))

	// Make page 1 stale by rewinding its expiry.
	store.entries[testKey(1).String()].ExpiresAt = time.Now().Add(-time.Minute)

	removed := c.CleanupExpired(ctx)

	assert.Equal(t, 1, removed)
	_, hit := c.Get(ctx, testKey(2))
	assert.True(t, hit)
}
