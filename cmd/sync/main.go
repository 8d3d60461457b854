// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

// Command sync runs the seasonal catalog refresh from the command line.
//
// # Usage
//
//	sync -y 2025                  # all four seasons of 2025
//	sync -s winter -y 2025        # one season
//	sync -s winter -y 2025 -f     # bypass the response cache
//	sync --cleanup                # sweep expired cache entries and exit
//
// The summary is printed even when seasons fail partially; the process exits
// non-zero only when the run was fully fatal (bad flags, startup failure, or
// every requested season failing), so schedulers alert on dead runs without
// re-triggering over a single flaky season.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kisetsu-app/kisetsu/internal/cache"
	"github.com/kisetsu-app/kisetsu/internal/core/catalog"
	"github.com/kisetsu-app/kisetsu/internal/core/season"
	"github.com/kisetsu-app/kisetsu/internal/kitsu"
	"github.com/kisetsu-app/kisetsu/internal/notify"
	"github.com/kisetsu-app/kisetsu/internal/platform/config"
	"github.com/kisetsu-app/kisetsu/internal/platform/constants"
	"github.com/kisetsu-app/kisetsu/internal/platform/migration"
	pgstore "github.com/kisetsu-app/kisetsu/internal/platform/postgres"
	redisstore "github.com/kisetsu-app/kisetsu/internal/platform/redis"
	"github.com/kisetsu-app/kisetsu/internal/sync"
)

// options are the parsed command-line flags.
type options struct {
	season  string
	year    int
	force   bool
	cleanup bool
}

func parseFlags() options {
	opts := options{}

	flag.StringVar(&opts.season, "season", "", "season to sync (winter, spring, summer, fall); empty syncs all four")
	flag.StringVar(&opts.season, "s", "", "shorthand for -season")
	flag.IntVar(&opts.year, "year", 0, "year to sync (required)")
	flag.IntVar(&opts.year, "y", 0, "shorthand for -year")
	flag.BoolVar(&opts.force, "force", false, "bypass the response cache")
	flag.BoolVar(&opts.force, "f", false, "shorthand for -force")
	flag.BoolVar(&opts.cleanup, "cleanup", false, "sweep expired cache entries and exit")
	flag.Parse()

	return opts
}

func main() {
	opts := parseFlags()

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	cfg, err := config.Load()
	must(log, err, "load configuration")

	// Cancel the run cleanly on SIGTERM/SIGINT; a half-finished season is
	// safe because every write is an idempotent upsert.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	startupCtx, startupCancel := context.WithTimeout(ctx, 30*time.Second)
	defer startupCancel()

	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer pool.Close()

	var cacheStore cache.Store
	if cfg.CacheBackend == config.CacheBackendRedis {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() { _ = rdb.Close() }()
		cacheStore = cache.NewRedisStore(rdb)
	} else {
		cacheStore = cache.NewPostgresStore(pool)
	}

	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	responseCache := cache.New(cacheStore, cfg.CacheTTL, log)
	limiter := kitsu.NewLimiter(constants.KitsuMinRequestInterval)
	apiClient := kitsu.NewClient(nil, cfg.KitsuBaseURL, limiter, log)
	cachedClient := sync.NewCachedClient(apiClient, responseCache, log)
	catalogService := catalog.NewService(catalog.NewPostgresRepository(pool), log)
	syncService := sync.NewService(cachedClient, catalogService, log)

	if opts.cleanup {
		removed := syncService.CleanupExpiredCache(ctx)
		fmt.Printf("cache cleanup: removed %d expired entries\n", removed)
		return
	}

	filters, err := resolveFilters(opts)
	must(log, err, "resolve season filters")

	results := syncService.SyncSeasons(ctx, filters, sync.Options{ForceRefresh: opts.force})
	printSummary(results)

	if cfg.NotifyEnabled() {
		pingSearchEngines(ctx, cfg, results, log)
	}

	succeeded := 0
	for _, result := range results {
		if result.Success {
			succeeded++
		}
	}
	if succeeded == 0 {
		os.Exit(1)
	}
}

// resolveFilters expands the flags into one or four season filters.
func resolveFilters(opts options) ([]season.Filter, error) {
	if opts.year == 0 {
		return nil, fmt.Errorf("-year is required")
	}
	if opts.season == "" {
		if opts.year < season.MinYear || opts.year > time.Now().Year()+season.MaxYearsAhead {
			return nil, fmt.Errorf("year %d out of range", opts.year)
		}
		return season.AllForYear(opts.year), nil
	}

	parsed, err := season.Parse(opts.season)
	if err != nil {
		return nil, err
	}
	filter, err := season.NewFilter(parsed, opts.year)
	if err != nil {
		return nil, err
	}
	return []season.Filter{filter}, nil
}

// printSummary writes the human-readable run report to stdout. Structured
// logs go to stderr; stdout stays parseable by eye.
func printSummary(results []*sync.Result) {
	var upserted, failed, pages, hits int

	for _, result := range results {
		status := "ok"
		if !result.Success {
			status = "FAILED: " + result.Error
		}
		fmt.Printf("%-6s %d  pages=%d (cache %d/%d)  anime=%d upserted, %d failed  genres=%d new  links=%d  [%s] %s\n",
			strings.ToLower(string(result.Season)), result.Year,
			result.Fetch.TotalPages, result.Fetch.CacheHits, result.Fetch.TotalPages,
			result.Outcome.AnimeUpserted, result.Outcome.AnimeFailed,
			result.Outcome.GenresCreated, result.Outcome.LinksCreated,
			result.Duration.Round(time.Millisecond), status,
		)

		upserted += result.Outcome.AnimeUpserted
		failed += result.Outcome.AnimeFailed
		pages += result.Fetch.TotalPages
		hits += result.Fetch.CacheHits
	}

	fmt.Printf("total: %d anime upserted, %d failed across %d pages (%d cache hits)\n",
		upserted, failed, pages, hits)
}

// pingSearchEngines submits the refreshed season listing pages to IndexNow.
// Best-effort: failures are logged, never fatal.
func pingSearchEngines(ctx context.Context, cfg *config.Config, results []*sync.Result, log *slog.Logger) {
	urls := make([]string, 0, len(results))
	for _, result := range results {
		if result.Success && result.Outcome.AnimeUpserted > 0 {
			urls = append(urls, fmt.Sprintf("https://%s/season/%d/%s",
				cfg.SiteHost, result.Year, strings.ToLower(string(result.Season))))
		}
	}

	pinger := notify.NewPinger(nil, nil, cfg.SiteHost, cfg.IndexNowKey, log)
	pinger.Ping(ctx, urls)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
