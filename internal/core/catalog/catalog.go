// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

/*
Package catalog owns the persisted anime catalog: anime rows, genre rows,
and the anime↔genre association.

Writes are idempotent upserts keyed by external identity (kitsu_id for
anime, slug for genres), so re-running a season sync never duplicates rows.
Per-record failures are counted, not thrown — a batch is allowed to land
partially and report exactly what it achieved.
*/
package catalog

import (
	"time"

	"github.com/kisetsu-app/kisetsu/internal/core/season"
)

// Format is the normalized broadcast format enum.
type Format string

const (
	FormatTV      Format = "TV"
	FormatMovie   Format = "MOVIE"
	FormatOVA     Format = "OVA"
	FormatONA     Format = "ONA"
	FormatSpecial Format = "SPECIAL"
	FormatMusic   Format = "MUSIC"
)

// Status is the normalized airing status enum.
type Status string

const (
	StatusFinished       Status = "FINISHED"
	StatusReleasing      Status = "RELEASING"
	StatusNotYetReleased Status = "NOT_YET_RELEASED"
	StatusCancelled      Status = "CANCELLED"
	StatusHiatus         Status = "HIATUS"
)

// WorstPopularity is the rank assigned when the source reports none, so
// unranked titles sort last under ascending popularity.
const WorstPopularity = 99999

// Anime is one normalized catalog record.
//
// TitleRomaji is the fallback-of-last-resort and is always set (a literal
// "Unknown" when the source had no usable title). Enum-typed fields are
// either a known enum value or nil, never a raw source string.
type Anime struct {
	ID      int    `json:"id"`
	KitsuID string `json:"kitsu_id"`
	Slug    string `json:"slug"`

	TitleEnglish  *string `json:"title_english"`
	TitleRomaji   string  `json:"title_romaji"`
	TitleJapanese *string `json:"title_japanese"`

	Format        *Format `json:"format"`
	EpisodeCount  *int    `json:"episode_count"`
	EpisodeLength *int    `json:"episode_length"`

	Season     *season.Season `json:"season"`
	SeasonYear *int           `json:"season_year"`
	StartDate  *string        `json:"start_date"`
	EndDate    *string        `json:"end_date"`

	Synopsis   *string  `json:"synopsis"`
	Rating     *float64 `json:"rating"`
	Popularity int      `json:"popularity"`
	Status     *Status  `json:"status"`

	CoverImage  *string `json:"cover_image"`
	BannerImage *string `json:"banner_image"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Genre is one normalized genre record, deduplicated by slug.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Batch is one sync run's worth of transformed records ready to persist.
type Batch struct {
	Anime  []*Anime
	Genres []*Genre

	// GenreSlugsByKitsuID associates each anime (by external id) with the
	// slugs of its genres. Links are only persisted once both sides exist.
	GenreSlugsByKitsuID map[string][]string
}

// Outcome reports what one persisted batch achieved. Partial failure is the
// expected shape, not an error.
type Outcome struct {
	AnimeUpserted int `json:"anime_upserted"`
	AnimeFailed   int `json:"anime_failed"`
	GenresCreated int `json:"genres_created"`
	GenresFailed  int `json:"genres_failed"`
	LinksCreated  int `json:"links_created"`
	LinksFailed   int `json:"links_failed"`
}
