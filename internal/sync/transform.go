// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package sync

import (
	"strconv"

	"github.com/kisetsu-app/kisetsu/internal/core/catalog"
	"github.com/kisetsu-app/kisetsu/internal/core/season"
	"github.com/kisetsu-app/kisetsu/internal/kitsu"
	"github.com/kisetsu-app/kisetsu/pkg/pointer"
	"github.com/kisetsu-app/kisetsu/pkg/slug"
)

// # Transformation
//
// The transformer is a pure function from fetched documents to a persistable
// batch. It performs no I/O, which keeps every normalization rule unit-testable
// without a network or a database.

// unknownTitle is the romaji fallback when the source exposes no usable title.
const unknownTitle = "Unknown"

// Transform normalizes the documents of one season fetch into a single batch.
//
// Malformed records are skipped and counted rather than failing the run.
// Genres and categories are merged into one genre set, deduplicated by slug
// across all pages.
func Transform(documents []*kitsu.Document, filter season.Filter) (*catalog.Batch, int) {
	batch := &catalog.Batch{
		GenreSlugsByKitsuID: make(map[string][]string),
	}
	genresBySlug := make(map[string]*catalog.Genre)
	slugsByIncludedID := make(map[string]string)
	skipped := 0

	// Pass 1: collect every included genre-like resource across all pages, so
	// relationship identifiers can be resolved regardless of which page
	// carried the include.
	for _, document := range documents {
		for _, resource := range document.Included {
			included, err := kitsu.DecodeIncluded(resource)
			if err != nil {
				skipped++
				continue
			}

			var genre *catalog.Genre
			switch typed := included.(type) {
			case kitsu.GenreResource:
				genre = normalizeGenre(typed.Name, typed.Slug)
			case kitsu.CategoryResource:
				genre = normalizeGenre(typed.Title, typed.Slug)
			default:
				continue
			}
			if genre == nil {
				continue
			}

			slugsByIncludedID[includedKey(resource.Type, resource.ID)] = genre.Slug
			if _, seen := genresBySlug[genre.Slug]; !seen {
				genresBySlug[genre.Slug] = genre
				batch.Genres = append(batch.Genres, genre)
			}
		}
	}

	// Pass 2: normalize the anime records and resolve their genre links.
	for _, document := range documents {
		for _, resource := range document.Data {
			anime, err := normalizeAnime(resource, filter)
			if err != nil {
				skipped++
				continue
			}
			batch.Anime = append(batch.Anime, anime)

			slugs := resolveGenreSlugs(resource, slugsByIncludedID)
			if len(slugs) > 0 {
				batch.GenreSlugsByKitsuID[anime.KitsuID] = slugs
			}
		}
	}

	return batch, skipped
}

// normalizeAnime maps one raw resource onto the catalog record shape.
func normalizeAnime(resource kitsu.Resource, filter season.Filter) (*catalog.Anime, error) {
	attrs, err := resource.DecodeAnime()
	if err != nil {
		return nil, err
	}

	romaji := pickRomajiTitle(attrs)

	anime := &catalog.Anime{
		KitsuID:       resource.ID,
		Slug:          pickSlug(attrs, romaji),
		TitleEnglish:  optionalString(attrs.Titles.English),
		TitleRomaji:   romaji,
		TitleJapanese: optionalString(attrs.Titles.Japanese),
		Format:        mapFormat(attrs.Subtype),
		EpisodeCount:  attrs.EpisodeCount,
		EpisodeLength: attrs.EpisodeLength,
		StartDate:     optionalDate(attrs.StartDate),
		EndDate:       optionalDate(attrs.EndDate),
		Synopsis:      optionalString(attrs.Synopsis),
		Rating:        scaleRating(attrs.AverageRating),
		Popularity:    pointer.Fallback(attrs.PopularityRank, catalog.WorstPopularity),
		Status:        mapStatus(attrs.Status),
		CoverImage:    pickImage(attrs.PosterImage),
		BannerImage:   pickImage(attrs.CoverImage),
	}

	anime.Season, anime.SeasonYear = resolveSeason(filter, attrs.StartDate)

	return anime, nil
}

// pickRomajiTitle walks the title fallback chain: romaji, canonical, english,
// then the literal unknown marker.
func pickRomajiTitle(attrs *kitsu.AnimeAttributes) string {
	for _, candidate := range []string{attrs.Titles.Romaji, attrs.CanonicalTitle, attrs.Titles.English} {
		if candidate != "" {
			return candidate
		}
	}
	return unknownTitle
}

// pickSlug prefers the source slug and derives one from the title otherwise.
func pickSlug(attrs *kitsu.AnimeAttributes, romaji string) string {
	if attrs.Slug != "" {
		return slug.From(attrs.Slug)
	}
	return slug.From(romaji)
}

// scaleRating converts Kitsu's 0-100 percentage string to a 0-10 scale with
// two decimals. Absent or non-numeric input yields nil, never a zero score.
func scaleRating(raw *string) *float64 {
	if raw == nil || *raw == "" {
		return nil
	}
	percent, err := strconv.ParseFloat(*raw, 64)
	if err != nil {
		return nil
	}

	// Round to two decimals in integer space to avoid float drift.
	return pointer.To(float64(int(percent*10+0.5)) / 100)
}

// mapFormat translates Kitsu subtypes to the catalog format enum. Unknown
// subtypes map to nil rather than leaking raw source strings.
func mapFormat(subtype string) *catalog.Format {
	var format catalog.Format
	switch subtype {
	case "TV":
		format = catalog.FormatTV
	case "movie":
		format = catalog.FormatMovie
	case "OVA":
		format = catalog.FormatOVA
	case "ONA":
		format = catalog.FormatONA
	case "special":
		format = catalog.FormatSpecial
	case "music":
		format = catalog.FormatMusic
	default:
		return nil
	}
	return &format
}

// mapStatus translates Kitsu airing statuses to the catalog status enum.
func mapStatus(status string) *catalog.Status {
	var mapped catalog.Status
	switch status {
	case "current":
		mapped = catalog.StatusReleasing
	case "finished":
		mapped = catalog.StatusFinished
	case "tba", "unreleased", "upcoming":
		mapped = catalog.StatusNotYetReleased
	default:
		return nil
	}
	return &mapped
}

// resolveSeason prefers the fetch filter, because records were selected by
// it; the start date only decides when no filter was given.
func resolveSeason(filter season.Filter, startDate kitsu.FlexibleDate) (*season.Season, *int) {
	if filter.Season.Valid() && filter.Year > 0 {
		s, y := filter.Season, filter.Year
		return &s, &y
	}

	start, ok := startDate.Time()
	if !ok {
		return nil, nil
	}
	s := season.FromDate(start)
	y := start.Year()
	return &s, &y
}

// optionalString returns nil for the empty string.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// optionalDate returns the ISO form of a date, or nil when absent.
func optionalDate(d kitsu.FlexibleDate) *string {
	if d.IsZero() {
		return nil
	}
	iso := d.String()
	return &iso
}

// pickImage walks the size preference chain: large, medium, original, then
// anything present.
func pickImage(set *kitsu.ImageSet) *string {
	if set == nil {
		return nil
	}
	for _, candidate := range []string{set.Large, set.Medium, set.Original, set.Small, set.Tiny} {
		if candidate != "" {
			return pointer.To(candidate)
		}
	}
	return nil
}

// normalizeGenre builds a genre record, deriving a slug from the name when
// the source omits one. Nameless records are dropped.
func normalizeGenre(name, sourceSlug string) *catalog.Genre {
	if name == "" {
		return nil
	}
	normalized := sourceSlug
	if normalized == "" {
		normalized = name
	}
	return &catalog.Genre{Name: name, Slug: slug.From(normalized)}
}

// resolveGenreSlugs maps an anime's genre and category relationship
// identifiers to the deduplicated genre slugs, dropping dangling references.
func resolveGenreSlugs(resource kitsu.Resource, slugsByIncludedID map[string]string) []string {
	seen := make(map[string]bool)
	slugs := make([]string, 0, 4)

	for _, relationship := range []string{"genres", "categories"} {
		rel, ok := resource.Relationships[relationship]
		if !ok {
			continue
		}
		for _, identifier := range rel.Data {
			genreSlug, ok := slugsByIncludedID[includedKey(identifier.Type, identifier.ID)]
			if !ok || seen[genreSlug] {
				continue
			}
			seen[genreSlug] = true
			slugs = append(slugs, genreSlug)
		}
	}

	return slugs
}

// includedKey namespaces identifiers by resource type, since genre and
// category ids come from different sequences.
func includedKey(resourceType, id string) string {
	return resourceType + ":" + id
}
