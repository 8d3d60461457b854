// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kisetsu-app/kisetsu/internal/platform/dberr"
)

// Service coordinates catalog writes: upserts, genre dedup, and linking.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a catalog service over the given repository.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With(slog.String("component", "catalog")),
	}
}

// UpsertAnime persists one record keyed by its external id: update in place
// when the id is already known, insert otherwise. A slug collision on insert
// is retried exactly once with the external id appended, which is unique by
// construction.
func (service *Service) UpsertAnime(ctx context.Context, anime *Anime) (int, error) {
	id, found, err := service.repo.FindAnimeIDByKitsuID(ctx, anime.KitsuID)
	if err != nil {
		return 0, fmt.Errorf("catalog: lookup by kitsu id %s failed: %w", anime.KitsuID, err)
	}

	if found {
		if err := service.repo.UpdateAnime(ctx, id, anime); err != nil {
			return 0, fmt.Errorf("catalog: update of anime %d failed: %w", id, err)
		}
		return id, nil
	}

	id, err = service.repo.InsertAnime(ctx, anime)
	if dberr.IsUniqueViolation(err) {
		// Two titles can legitimately slugify identically ("Hunter x Hunter"
		// 1999 vs 2011). The external id disambiguates.
		retry := *anime
		retry.Slug = anime.Slug + "-" + anime.KitsuID
		service.logger.Warn("slug collision, retrying with suffixed slug",
			slog.String("kitsu_id", anime.KitsuID),
			slog.String("slug", retry.Slug),
		)

		id, err = service.repo.InsertAnime(ctx, &retry)
		if err == nil {
			anime.Slug = retry.Slug
		}
	}
	if err != nil {
		return 0, fmt.Errorf("catalog: insert of kitsu id %s failed: %w", anime.KitsuID, err)
	}
	return id, nil
}

// UpsertAnimeList persists records sequentially, attributing failures to the
// individual record and carrying on. Returns internal ids keyed by external
// id for the records that landed, plus the failure count.
func (service *Service) UpsertAnimeList(ctx context.Context, list []*Anime) (map[string]int, int) {
	ids := make(map[string]int, len(list))
	failed := 0

	for _, anime := range list {
		id, err := service.UpsertAnime(ctx, anime)
		if err != nil {
			failed++
			service.logger.Error("anime upsert failed",
				slog.String("kitsu_id", anime.KitsuID),
				slog.String("title", anime.TitleRomaji),
				slog.Any("error", err),
			)
			continue
		}
		ids[anime.KitsuID] = id
	}

	return ids, failed
}

// GetOrCreateGenre resolves a genre row by slug, creating it when absent.
// A unique violation on insert means a concurrent writer won the race, so
// the row is re-fetched instead of failing.
func (service *Service) GetOrCreateGenre(ctx context.Context, genre *Genre) (int, bool, error) {
	existing, err := service.repo.FindGenreBySlug(ctx, genre.Slug)
	if err != nil {
		return 0, false, fmt.Errorf("catalog: genre lookup %q failed: %w", genre.Slug, err)
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	id, err := service.repo.InsertGenre(ctx, genre)
	if dberr.IsUniqueViolation(err) {
		existing, err = service.repo.FindGenreBySlug(ctx, genre.Slug)
		if err != nil {
			return 0, false, fmt.Errorf("catalog: genre re-fetch %q failed: %w", genre.Slug, err)
		}
		if existing == nil {
			return 0, false, fmt.Errorf("catalog: genre %q vanished after conflict", genre.Slug)
		}
		return existing.ID, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("catalog: genre insert %q failed: %w", genre.Slug, err)
	}
	return id, true, nil
}

// PersistBatch lands one transformed batch: genres first, then anime, then
// the association rows that connect them. Each phase tolerates per-record
// failures and the outcome reports exact counts.
func (service *Service) PersistBatch(ctx context.Context, batch *Batch) (*Outcome, error) {
	if batch == nil {
		return &Outcome{}, nil
	}

	outcome := &Outcome{}

	genreIDs := make(map[string]int, len(batch.Genres))
	for _, genre := range batch.Genres {
		id, created, err := service.GetOrCreateGenre(ctx, genre)
		if err != nil {
			outcome.GenresFailed++
			service.logger.Error("genre persist failed",
				slog.String("slug", genre.Slug),
				slog.Any("error", err),
			)
			continue
		}
		genreIDs[genre.Slug] = id
		if created {
			outcome.GenresCreated++
		}
	}

	animeIDs, failed := service.UpsertAnimeList(ctx, batch.Anime)
	outcome.AnimeUpserted = len(animeIDs)
	outcome.AnimeFailed = failed

	for kitsuID, slugs := range batch.GenreSlugsByKitsuID {
		animeID, ok := animeIDs[kitsuID]
		if !ok {
			// The anime itself failed to land; its links go with it.
			continue
		}

		ids := make([]int, 0, len(slugs))
		for _, slug := range slugs {
			if genreID, ok := genreIDs[slug]; ok {
				ids = append(ids, genreID)
			}
		}
		if len(ids) == 0 {
			continue
		}

		created, err := service.repo.LinkAnimeGenres(ctx, animeID, ids)
		if err != nil {
			outcome.LinksFailed += len(ids)
			service.logger.Error("genre linking failed",
				slog.String("kitsu_id", kitsuID),
				slog.Any("error", err),
			)
			continue
		}
		outcome.LinksCreated += created
	}

	service.logger.Info("batch persisted",
		slog.Int("anime_upserted", outcome.AnimeUpserted),
		slog.Int("anime_failed", outcome.AnimeFailed),
		slog.Int("genres_created", outcome.GenresCreated),
		slog.Int("links_created", outcome.LinksCreated),
	)
	return outcome, nil
}
