// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package sync

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisetsu-app/kisetsu/internal/cache"
	"github.com/kisetsu-app/kisetsu/internal/core/season"
	"github.com/kisetsu-app/kisetsu/internal/kitsu"
)

// memoryCacheStore is a minimal in-memory cache.Store for wiring real Cache
// behavior into fetch tests.
type memoryCacheStore struct {
	entries map[string]*cache.Entry
}

func newMemoryCacheStore() *memoryCacheStore {
	return &memoryCacheStore{entries: make(map[string]*cache.Entry)}
}

func (s *memoryCacheStore) Get(_ context.Context, key string) (*cache.Entry, error) {
	return s.entries[key], nil
}

func (s *memoryCacheStore) Set(_ context.Context, entry *cache.Entry) error {
	s.entries[entry.CacheKey] = entry
	return nil
}

func (s *memoryCacheStore) Delete(_ context.Context, key string) (bool, error) {
	_, existed := s.entries[key]
	delete(s.entries, key)
	return existed, nil
}

func (s *memoryCacheStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	count := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			count++
		}
	}
	return count, nil
}

func (s *memoryCacheStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	count := 0
	for key, entry := range s.entries {
		if !entry.ExpiresAt.After(now) {
			delete(s.entries, key)
			count++
		}
	}
	return count, nil
}

// scriptedFetcher serves a fixed page sequence and counts live calls.
type scriptedFetcher struct {
	pages []*kitsu.Document
	calls int
	err   error
}

func (f *scriptedFetcher) FetchPage(_ context.Context, _ season.Filter, page int) (*kitsu.Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if page < 1 || page > len(f.pages) {
		return nil, errors.New("page out of range")
	}
	return f.pages[page-1], nil
}

// twoPageSeason builds a two-page fixture: page 1 advertises a next page,
// page 2 is final.
func twoPageSeason() []*kitsu.Document {
	return []*kitsu.Document{
		{
			Data:  []kitsu.Resource{animeResource("1", `{"slug": "a", "titles": {"en_jp": "A"}}`, nil)},
			Links: kitsu.Links{Next: "page2"},
		},
		{
			Data: []kitsu.Resource{animeResource("2", `{"slug": "b", "titles": {"en_jp": "B"}}`, nil)},
		},
	}
}

func newTestCachedClient(fetcher Fetcher) (*CachedClient, *memoryCacheStore) {
	store := newMemoryCacheStore()
	responseCache := cache.New(store, time.Hour, slog.Default())
	return NewCachedClient(fetcher, responseCache, slog.Default()), store
}

/*
TestCachedClient_ColdThenWarm: a cold fetch hits the live API and populates
the cache; the second run is served entirely from cache.
*/
func TestCachedClient_ColdThenWarm(t *testing.T) {
	fetcher := &scriptedFetcher{pages: twoPageSeason()}
	client, _ := newTestCachedClient(fetcher)
	ctx := context.Background()

	documents, stats, err := client.FetchSeason(ctx, winter2025(), false)
	require.NoError(t, err)
	require.Len(t, documents, 2)
	assert.Equal(t, 2, fetcher.calls)
	assert.Equal(t, FetchStats{TotalPages: 2, CacheHits: 0, CacheMisses: 2, TotalAnime: 2}, *stats)

	documents, stats, err = client.FetchSeason(ctx, winter2025(), false)
	require.NoError(t, err)
	require.Len(t, documents, 2)
	assert.Equal(t, 2, fetcher.calls, "warm run must not touch the live API")
	assert.Equal(t, FetchStats{TotalPages: 2, CacheHits: 2, CacheMisses: 0, TotalAnime: 2}, *stats)
}

/*
TestCachedClient_ForceBypassesReads: force skips cache reads but still writes
fresh responses back through.
*/
func TestCachedClient_ForceBypassesReads(t *testing.T) {
	fetcher := &scriptedFetcher{pages: twoPageSeason()}
	client, store := newTestCachedClient(fetcher)
	ctx := context.Background()

	_, _, err := client.FetchSeason(ctx, winter2025(), false)
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.calls)

	_, stats, err := client.FetchSeason(ctx, winter2025(), true)
	require.NoError(t, err)
	assert.Equal(t, 4, fetcher.calls, "force must re-fetch every page")
	assert.Equal(t, 2, stats.CacheMisses)
	assert.Len(t, store.entries, 2, "forced fetches repopulate the cache")
}

/*
TestCachedClient_CorruptEntryFallsThrough: a cached payload that fails to
decode is treated as a miss and replaced by a live fetch.
*/
func TestCachedClient_CorruptEntryFallsThrough(t *testing.T) {
	fetcher := &scriptedFetcher{pages: twoPageSeason()[1:]}
	client, store := newTestCachedClient(fetcher)
	ctx := context.Background()

	key := cache.Key{Season: season.Winter, Year: 2025, Page: 1}
	store.entries[key.String()] = &cache.Entry{
		CacheKey:  key.String(),
		Response:  []byte(`{not json`),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	document, fromCache, err := client.FetchPage(ctx, winter2025(), 1, false)

	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Len(t, document.Data, 1)
	assert.Equal(t, 1, fetcher.calls)
}

/*
TestCachedClient_PropagatesFetchError: a live fetch failure surfaces with the
stats collected so far.
*/
func TestCachedClient_PropagatesFetchError(t *testing.T) {
	fetcher := &scriptedFetcher{err: errors.New("boom")}
	client, _ := newTestCachedClient(fetcher)

	_, stats, err := client.FetchSeason(context.Background(), winter2025(), false)

	require.Error(t, err)
	assert.Zero(t, stats.TotalPages)
}

/*
TestCachedClient_RefreshSeason: a refresh drops the stale entries, re-fetches
every page live, and leaves the cache repopulated.
*/
func TestCachedClient_RefreshSeason(t *testing.T) {
	fetcher := &scriptedFetcher{pages: twoPageSeason()}
	client, store := newTestCachedClient(fetcher)
	ctx := context.Background()

	_, _, err := client.FetchSeason(ctx, winter2025(), false)
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.calls)

	documents, stats, err := client.RefreshSeason(ctx, winter2025())

	require.NoError(t, err)
	require.Len(t, documents, 2)
	assert.Equal(t, 4, fetcher.calls, "refresh must re-fetch every page")
	assert.Equal(t, 2, stats.CacheMisses)
	assert.Len(t, store.entries, 2, "refresh repopulates the cache")
}

/*
TestCachedClient_InvalidateSeason drops exactly the season's cached pages.
*/
func TestCachedClient_InvalidateSeason(t *testing.T) {
	fetcher := &scriptedFetcher{pages: twoPageSeason()}
	client, store := newTestCachedClient(fetcher)
	ctx := context.Background()

	_, _, err := client.FetchSeason(ctx, winter2025(), false)
	require.NoError(t, err)
	require.Len(t, store.entries, 2)

	removed := client.InvalidateSeason(ctx, winter2025())

	assert.Equal(t, 2, removed)
	assert.Empty(t, store.entries)
}
