// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package sync

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kisetsu-app/kisetsu/internal/cache"
	"github.com/kisetsu-app/kisetsu/internal/core/season"
	"github.com/kisetsu-app/kisetsu/internal/kitsu"
	"github.com/kisetsu-app/kisetsu/internal/platform/constants"
)

// Fetcher is the page-fetching contract the cached client wraps. Satisfied
// by [kitsu.Client]; tests substitute a double.
type Fetcher interface {
	FetchPage(ctx context.Context, filter season.Filter, page int) (*kitsu.Document, error)
}

// FetchStats accounts for one season fetch: how many pages were served from
// cache versus the live API, and the record volume seen.
type FetchStats struct {
	TotalPages  int `json:"total_pages"`
	CacheHits   int `json:"cache_hits"`
	CacheMisses int `json:"cache_misses"`
	TotalAnime  int `json:"total_anime"`
}

// CachedClient layers the response cache in front of the API client.
//
// Reads consult the cache first unless forced; every live fetch writes back
// through, force included, so a forced refresh repopulates rather than
// emptying the cache.
type CachedClient struct {
	fetcher Fetcher
	cache   *cache.Cache
	logger  *slog.Logger
}

// NewCachedClient wraps a fetcher with the response cache.
func NewCachedClient(fetcher Fetcher, responseCache *cache.Cache, logger *slog.Logger) *CachedClient {
	return &CachedClient{
		fetcher: fetcher,
		cache:   responseCache,
		logger:  logger.With(slog.String("component", "cached_client")),
	}
}

// FetchPage returns one page, reporting whether it came from the cache.
// A corrupt cached payload is treated as a miss, not an error.
func (client *CachedClient) FetchPage(ctx context.Context, filter season.Filter, page int, force bool) (*kitsu.Document, bool, error) {
	key := cache.Key{Season: filter.Season, Year: filter.Year, Page: page}

	if !force {
		if payload, hit := client.cache.Get(ctx, key); hit {
			document := &kitsu.Document{}
			if err := json.Unmarshal(payload, document); err == nil {
				return document, true, nil
			}
			client.logger.Warn("cached_page_corrupt", slog.String("key", key.String()))
		}
	}

	document, err := client.fetcher.FetchPage(ctx, filter, page)
	if err != nil {
		return nil, false, err
	}

	if payload, err := json.Marshal(document); err == nil {
		client.cache.Set(ctx, key, payload)
	}
	return document, false, nil
}

// FetchSeason walks every page of one season through the cache, bounded the
// same way as the underlying client's pagination.
func (client *CachedClient) FetchSeason(ctx context.Context, filter season.Filter, force bool) ([]*kitsu.Document, *FetchStats, error) {
	documents := make([]*kitsu.Document, 0, 8)
	stats := &FetchStats{}

	for page := 1; page <= constants.KitsuMaxPages; page++ {
		document, fromCache, err := client.FetchPage(ctx, filter, page, force)
		if err != nil {
			return nil, stats, err
		}

		documents = append(documents, document)
		stats.TotalPages++
		stats.TotalAnime += len(document.Data)
		if fromCache {
			stats.CacheHits++
		} else {
			stats.CacheMisses++
		}

		if !document.HasNextPage() {
			return documents, stats, nil
		}
	}

	client.logger.Warn("season_page_ceiling_reached",
		slog.String("season", filter.Season.KitsuParam()),
		slog.Int("year", filter.Year),
		slog.Int("max_pages", constants.KitsuMaxPages),
	)
	return documents, stats, nil
}

// RefreshSeason invalidates the season's cached pages and re-fetches them
// live, leaving the cache repopulated with fresh entries.
func (client *CachedClient) RefreshSeason(ctx context.Context, filter season.Filter) ([]*kitsu.Document, *FetchStats, error) {
	removed := client.InvalidateSeason(ctx, filter)
	client.logger.Info("season_cache_refreshed",
		slog.String("season", filter.Season.KitsuParam()),
		slog.Int("year", filter.Year),
		slog.Int("invalidated", removed),
	)
	return client.FetchSeason(ctx, filter, true)
}

// InvalidateSeason drops every cached page of one season/year and returns
// the number of entries removed.
func (client *CachedClient) InvalidateSeason(ctx context.Context, filter season.Filter) int {
	return client.cache.InvalidateSeason(ctx, filter.Season, filter.Year)
}

// CleanupExpired sweeps expired cache entries.
func (client *CachedClient) CleanupExpired(ctx context.Context) int {
	return client.cache.CleanupExpired(ctx)
}
