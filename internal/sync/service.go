// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

/*
Package sync orchestrates the seasonal catalog refresh pipeline.

One run per season/year moves through four phases:

	FETCH     pages from the catalog API, cache-first
	TRANSFORM raw documents into normalized catalog records
	PERSIST   idempotent upserts into the database
	REPORT    per-run statistics

Every phase tolerates partial failure where the data allows it: a malformed
record is skipped and counted, a failed upsert is attributed to its record,
and only a whole-fetch failure aborts the run. Runs over multiple seasons
are sequential so the shared API rate budget is never contended.
*/
package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/kisetsu-app/kisetsu/internal/core/catalog"
	"github.com/kisetsu-app/kisetsu/internal/core/season"
	"github.com/kisetsu-app/kisetsu/internal/kitsu"
)

// persister is the catalog write contract. Satisfied by [catalog.Service].
type persister interface {
	PersistBatch(ctx context.Context, batch *catalog.Batch) (*catalog.Outcome, error)
}

// Options tunes one sync run.
type Options struct {
	// ForceRefresh drops the season's cached pages and fetches live. The
	// live responses write back through, so a forced run repopulates the
	// cache rather than leaving it empty.
	ForceRefresh bool
}

// Result reports one season run. A run either fails during fetch (Success
// false, Error set) or completes with exact phase counts.
type Result struct {
	Season  season.Season   `json:"season"`
	Year    int             `json:"year"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Fetch   FetchStats      `json:"fetch"`
	Outcome catalog.Outcome `json:"outcome"`

	// Skipped counts source records dropped during transformation.
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// Service is the sync orchestrator.
type Service struct {
	client *CachedClient
	store  persister
	logger *slog.Logger

	// now is injectable for duration-stable tests.
	now func() time.Time
}

// NewService builds the orchestrator from its two collaborators.
func NewService(client *CachedClient, store persister, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		logger: logger.With(slog.String("component", "sync")),
		now:    time.Now,
	}
}

// SyncSeason runs the full pipeline for one season/year. Pipeline failures
// are reported in the result, not returned: a multi-season run must be able
// to carry on past one bad season.
func (service *Service) SyncSeason(ctx context.Context, filter season.Filter, opts Options) *Result {
	started := service.now()
	result := &Result{Season: filter.Season, Year: filter.Year}

	service.logger.Info("sync_started",
		slog.String("season", filter.Season.KitsuParam()),
		slog.Int("year", filter.Year),
		slog.Bool("force", opts.ForceRefresh),
	)

	var (
		documents []*kitsu.Document
		stats     *FetchStats
		err       error
	)
	if opts.ForceRefresh {
		documents, stats, err = service.client.RefreshSeason(ctx, filter)
	} else {
		documents, stats, err = service.client.FetchSeason(ctx, filter, false)
	}
	if stats != nil {
		result.Fetch = *stats
	}
	if err != nil {
		result.Error = err.Error()
		result.Duration = service.now().Sub(started)
		service.logger.Error("sync_fetch_failed",
			slog.String("season", filter.Season.KitsuParam()),
			slog.Int("year", filter.Year),
			slog.Any("error", err),
		)
		return result
	}

	batch, skipped := Transform(documents, filter)
	result.Skipped = skipped
	if skipped > 0 {
		service.logger.Warn("sync_records_skipped",
			slog.String("season", filter.Season.KitsuParam()),
			slog.Int("year", filter.Year),
			slog.Int("skipped", skipped),
		)
	}

	outcome, err := service.store.PersistBatch(ctx, batch)
	if err != nil {
		result.Error = err.Error()
		result.Duration = service.now().Sub(started)
		service.logger.Error("sync_persist_failed",
			slog.String("season", filter.Season.KitsuParam()),
			slog.Int("year", filter.Year),
			slog.Any("error", err),
		)
		return result
	}

	result.Outcome = *outcome
	result.Success = true
	result.Duration = service.now().Sub(started)

	service.logger.Info("sync_completed",
		slog.String("season", filter.Season.KitsuParam()),
		slog.Int("year", filter.Year),
		slog.Int("pages", result.Fetch.TotalPages),
		slog.Int("cache_hits", result.Fetch.CacheHits),
		slog.Int("anime_upserted", result.Outcome.AnimeUpserted),
		slog.Int("anime_failed", result.Outcome.AnimeFailed),
		slog.Duration("duration", result.Duration),
	)
	return result
}

// SyncSeasons runs multiple season filters sequentially, in the given order.
func (service *Service) SyncSeasons(ctx context.Context, filters []season.Filter, opts Options) []*Result {
	results := make([]*Result, 0, len(filters))
	for _, filter := range filters {
		if ctx.Err() != nil {
			break
		}
		results = append(results, service.SyncSeason(ctx, filter, opts))
	}
	return results
}

// SyncYear runs all four seasons of one year in broadcast order.
func (service *Service) SyncYear(ctx context.Context, year int, opts Options) []*Result {
	return service.SyncSeasons(ctx, season.AllForYear(year), opts)
}

// InvalidateSeason drops the cached pages of one season/year.
func (service *Service) InvalidateSeason(ctx context.Context, filter season.Filter) int {
	return service.client.InvalidateSeason(ctx, filter)
}

// CleanupExpiredCache sweeps expired cache entries.
func (service *Service) CleanupExpiredCache(ctx context.Context) int {
	return service.client.CleanupExpired(ctx)
}
