// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package sync

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisetsu-app/kisetsu/internal/core/catalog"
	"github.com/kisetsu-app/kisetsu/internal/core/season"
	"github.com/kisetsu-app/kisetsu/internal/kitsu"
)

func winter2025() season.Filter {
	return season.Filter{Season: season.Winter, Year: 2025}
}

// animeResource builds a raw anime resource with the given attribute JSON.
func animeResource(id string, attributes string, relationships map[string]kitsu.Relationship) kitsu.Resource {
	return kitsu.Resource{
		ID:            id,
		Type:          kitsu.ResourceTypeAnime,
		Attributes:    json.RawMessage(attributes),
		Relationships: relationships,
	}
}

func genreIncluded(id, name, slug string) kitsu.Resource {
	return kitsu.Resource{
		ID:         id,
		Type:       kitsu.ResourceTypeGenre,
		Attributes: json.RawMessage(fmt.Sprintf(`{"name": %q, "slug": %q}`, name, slug)),
	}
}

func genreLink(ids ...string) map[string]kitsu.Relationship {
	identifiers := make([]kitsu.ResourceIdentifier, 0, len(ids))
	for _, id := range ids {
		identifiers = append(identifiers, kitsu.ResourceIdentifier{Type: kitsu.ResourceTypeGenre, ID: id})
	}
	return map[string]kitsu.Relationship{"genres": {Data: identifiers}}
}

/*
TestScaleRating: the 0-100 percentage string scales to 0-10 with two
decimals; anything unusable becomes nil.
*/
func TestScaleRating(t *testing.T) {
	cases := []struct {
		name string
		in   *string
		want *float64
	}{
		{"typical", ptr("84.52"), fptr(8.45)},
		{"rounds", ptr("84.56"), fptr(8.46)},
		{"whole_number", ptr("100"), fptr(10.0)},
		{"low_score", ptr("7"), fptr(0.7)},
		{"nil_input", nil, nil},
		{"empty_string", ptr(""), nil},
		{"non_numeric", ptr("n/a"), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := scaleRating(tc.in)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 0.001)
		})
	}
}

func ptr(s string) *string    { return &s }
func fptr(f float64) *float64 { return &f }

/*
TestTransform_TitleFallback: romaji wins, canonical backs it up, and a record
with no titles at all still gets the literal unknown marker.
*/
func TestTransform_TitleFallback(t *testing.T) {
	documents := []*kitsu.Document{{
		Data: []kitsu.Resource{
			animeResource("1", `{"slug": "a", "titles": {"en_jp": "Shingeki no Kyojin", "en": "Attack on Titan"}}`, nil),
			animeResource("2", `{"slug": "b", "titles": {}, "canonicalTitle": "Canonical Only"}`, nil),
			animeResource("3", `{"slug": "c", "titles": {"en": "English Only"}}`, nil),
			animeResource("4", `{"slug": "d", "titles": {}}`, nil),
		},
	}}

	batch, skipped := Transform(documents, winter2025())

	require.Zero(t, skipped)
	require.Len(t, batch.Anime, 4)
	assert.Equal(t, "Shingeki no Kyojin", batch.Anime[0].TitleRomaji)
	assert.Equal(t, "Canonical Only", batch.Anime[1].TitleRomaji)
	assert.Equal(t, "English Only", batch.Anime[2].TitleRomaji)
	assert.Equal(t, "Unknown", batch.Anime[3].TitleRomaji)

	require.NotNil(t, batch.Anime[0].TitleEnglish)
	assert.Equal(t, "Attack on Titan", *batch.Anime[0].TitleEnglish)
	assert.Nil(t, batch.Anime[3].TitleEnglish)
}

/*
TestTransform_PopularityDefault: a missing rank sorts last, never first.
*/
func TestTransform_PopularityDefault(t *testing.T) {
	documents := []*kitsu.Document{{
		Data: []kitsu.Resource{
			animeResource("1", `{"slug": "ranked", "titles": {"en_jp": "A"}, "popularityRank": 12}`, nil),
			animeResource("2", `{"slug": "unranked", "titles": {"en_jp": "B"}}`, nil),
		},
	}}

	batch, _ := Transform(documents, winter2025())

	require.Len(t, batch.Anime, 2)
	assert.Equal(t, 12, batch.Anime[0].Popularity)
	assert.Equal(t, catalog.WorstPopularity, batch.Anime[1].Popularity)
}

/*
TestTransform_FormatAndStatus: known source values map to enums, unknown
values map to nil instead of leaking through.
*/
func TestTransform_FormatAndStatus(t *testing.T) {
	documents := []*kitsu.Document{{
		Data: []kitsu.Resource{
			animeResource("1", `{"slug": "a", "titles": {"en_jp": "A"}, "subtype": "TV", "status": "current"}`, nil),
			animeResource("2", `{"slug": "b", "titles": {"en_jp": "B"}, "subtype": "movie", "status": "finished"}`, nil),
			animeResource("3", `{"slug": "c", "titles": {"en_jp": "C"}, "subtype": "special", "status": "upcoming"}`, nil),
			animeResource("4", `{"slug": "d", "titles": {"en_jp": "D"}, "subtype": "doujin", "status": "weird"}`, nil),
		},
	}}

	batch, _ := Transform(documents, winter2025())
	require.Len(t, batch.Anime, 4)

	require.NotNil(t, batch.Anime[0].Format)
	assert.Equal(t, catalog.FormatTV, *batch.Anime[0].Format)
	require.NotNil(t, batch.Anime[0].Status)
	assert.Equal(t, catalog.StatusReleasing, *batch.Anime[0].Status)

	assert.Equal(t, catalog.FormatMovie, *batch.Anime[1].Format)
	assert.Equal(t, catalog.StatusFinished, *batch.Anime[1].Status)

	assert.Equal(t, catalog.FormatSpecial, *batch.Anime[2].Format)
	assert.Equal(t, catalog.StatusNotYetReleased, *batch.Anime[2].Status)

	assert.Nil(t, batch.Anime[3].Format)
	assert.Nil(t, batch.Anime[3].Status)
}

/*
TestTransform_ImagePreference: large beats medium beats original; an empty
image set yields nil.
*/
func TestTransform_ImagePreference(t *testing.T) {
	documents := []*kitsu.Document{{
		Data: []kitsu.Resource{
			animeResource("1", `{"slug": "a", "titles": {"en_jp": "A"},
				"posterImage": {"large": "l.jpg", "medium": "m.jpg", "original": "o.jpg"}}`, nil),
			animeResource("2", `{"slug": "b", "titles": {"en_jp": "B"},
				"posterImage": {"medium": "m.jpg", "original": "o.jpg"}}`, nil),
			animeResource("3", `{"slug": "c", "titles": {"en_jp": "C"},
				"posterImage": {"tiny": "t.jpg"}}`, nil),
			animeResource("4", `{"slug": "d", "titles": {"en_jp": "D"}}`, nil),
		},
	}}

	batch, _ := Transform(documents, winter2025())
	require.Len(t, batch.Anime, 4)

	assert.Equal(t, "l.jpg", *batch.Anime[0].CoverImage)
	assert.Equal(t, "m.jpg", *batch.Anime[1].CoverImage)
	assert.Equal(t, "t.jpg", *batch.Anime[2].CoverImage)
	assert.Nil(t, batch.Anime[3].CoverImage)
}

/*
TestTransform_GenreDedupeAcrossPages: the same genre included on two pages
collapses to one record while every anime keeps its link.
*/
func TestTransform_GenreDedupeAcrossPages(t *testing.T) {
	pageOne := &kitsu.Document{
		Data: []kitsu.Resource{
			animeResource("1", `{"slug": "a", "titles": {"en_jp": "A"}}`, genreLink("10")),
			animeResource("2", `{"slug": "b", "titles": {"en_jp": "B"}}`, genreLink("10")),
		},
		Included: []kitsu.Resource{genreIncluded("10", "Action", "action")},
		Links:    kitsu.Links{Next: "page2"},
	}
	pageTwo := &kitsu.Document{
		Data: []kitsu.Resource{
			animeResource("3", `{"slug": "c", "titles": {"en_jp": "C"}}`, genreLink("10")),
		},
		Included: []kitsu.Resource{genreIncluded("10", "Action", "action")},
	}

	batch, skipped := Transform([]*kitsu.Document{pageOne, pageTwo}, winter2025())

	require.Zero(t, skipped)
	require.Len(t, batch.Genres, 1)
	assert.Equal(t, "action", batch.Genres[0].Slug)

	assert.Equal(t, []string{"action"}, batch.GenreSlugsByKitsuID["1"])
	assert.Equal(t, []string{"action"}, batch.GenreSlugsByKitsuID["2"])
	assert.Equal(t, []string{"action"}, batch.GenreSlugsByKitsuID["3"])
}

/*
TestTransform_SeasonAssignment: the fetch filter stamps season and year; when
no filter is given the start date decides.
*/
func TestTransform_SeasonAssignment(t *testing.T) {
	documents := []*kitsu.Document{{
		Data: []kitsu.Resource{
			animeResource("1", `{"slug": "a", "titles": {"en_jp": "A"}, "startDate": "2024-07-15"}`, nil),
		},
	}}

	t.Run("filter_wins", func(t *testing.T) {
		batch, _ := Transform(documents, winter2025())
		require.Len(t, batch.Anime, 1)
		assert.Equal(t, season.Winter, *batch.Anime[0].Season)
		assert.Equal(t, 2025, *batch.Anime[0].SeasonYear)
	})

	t.Run("start_date_fallback", func(t *testing.T) {
		batch, _ := Transform(documents, season.Filter{})
		require.Len(t, batch.Anime, 1)
		assert.Equal(t, season.Summer, *batch.Anime[0].Season)
		assert.Equal(t, 2024, *batch.Anime[0].SeasonYear)
	})
}

/*
TestTransform_SkipsMalformed: a record with undecodable attributes is counted
and skipped without sinking the batch.
*/
func TestTransform_SkipsMalformed(t *testing.T) {
	documents := []*kitsu.Document{{
		Data: []kitsu.Resource{
			animeResource("1", `{"slug": "good", "titles": {"en_jp": "Good"}}`, nil),
			animeResource("2", `{"titles": "not-an-object"}`, nil),
		},
	}}

	batch, skipped := Transform(documents, winter2025())

	assert.Equal(t, 1, skipped)
	require.Len(t, batch.Anime, 1)
	assert.Equal(t, "1", batch.Anime[0].KitsuID)
}

/*
TestTransform_RatingAndDates covers the remaining scalar mappings in one
realistic record.
*/
func TestTransform_RatingAndDates(t *testing.T) {
	documents := []*kitsu.Document{{
		Data: []kitsu.Resource{
			animeResource("1", `{
				"slug": "frieren",
				"titles": {"en_jp": "Sousou no Frieren", "en": "Frieren", "ja_jp": "葬送のフリーレン"},
				"averageRating": "84.52",
				"startDate": "2023-09-29",
				"endDate": "2024-03-22",
				"episodeCount": 28,
				"episodeLength": 24,
				"synopsis": "A mage outlives her party."
			}`, nil),
		},
	}}

	batch, _ := Transform(documents, season.Filter{Season: season.Fall, Year: 2023})
	require.Len(t, batch.Anime, 1)
	anime := batch.Anime[0]

	assert.Equal(t, "frieren", anime.Slug)
	assert.InDelta(t, 8.45, *anime.Rating, 0.001)
	assert.Equal(t, "2023-09-29", *anime.StartDate)
	assert.Equal(t, "2024-03-22", *anime.EndDate)
	assert.Equal(t, 28, *anime.EpisodeCount)
	assert.Equal(t, 24, *anime.EpisodeLength)
	assert.Equal(t, "A mage outlives her party.", *anime.Synopsis)
	assert.Equal(t, "葬送のフリーレン", *anime.TitleJapanese)
}
