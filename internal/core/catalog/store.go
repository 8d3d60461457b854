// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package catalog

import "context"

// Repository is the storage contract for the catalog.
//
// Implementations stay dumb: uniqueness races and slug-collision recovery
// are the [Service]'s job, signalled through dberr classification.
type Repository interface {
	// FindAnimeIDByKitsuID resolves an anime's internal id by external id.
	// Returns (0, false, nil) when absent.
	FindAnimeIDByKitsuID(ctx context.Context, kitsuID string) (int, bool, error)

	// InsertAnime inserts a new row and returns its internal id.
	InsertAnime(ctx context.Context, anime *Anime) (int, error)

	// UpdateAnime overwrites the row with the given internal id in place.
	UpdateAnime(ctx context.Context, id int, anime *Anime) error

	// FindGenreBySlug returns the genre with the given slug, or nil.
	FindGenreBySlug(ctx context.Context, slug string) (*Genre, error)

	// InsertGenre inserts a new genre row and returns its internal id.
	InsertGenre(ctx context.Context, genre *Genre) (int, error)

	// LinkAnimeGenres upserts association rows for one anime and returns how
	// many were newly created. Conflicts on (anime_id, genre_id) are ignored,
	// so re-runs are idempotent.
	LinkAnimeGenres(ctx context.Context, animeID int, genreIDs []int) (int, error)
}
