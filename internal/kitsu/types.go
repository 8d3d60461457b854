// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

/*
Package kitsu implements the low-level client for the Kitsu catalog API
(JSON:API dialect, https://kitsu.io/api/edge).

Responsibilities:

  - Document model: typed decoding of JSON:API pages ('data', 'included',
    'meta.count', 'links').
  - Rate limiting: a shared minimum-interval limiter serializes all outbound
    calls to the API across the process.
  - Retry policy: transient failures (429, 5xx, network errors) are retried
    with capped exponential backoff; other 4xx statuses fail immediately.
  - Pagination: sequential page walking bounded by the absence of a 'next'
    link or a hard safety ceiling.

The package performs no transformation and no persistence; it hands raw
documents to the sync layer.
*/
package kitsu

import (
	"encoding/json"
	"fmt"
)

// # JSON:API Document Model

// Document is one page of a JSON:API collection response.
type Document struct {
	Data     []Resource `json:"data"`
	Included []Resource `json:"included,omitempty"`
	Meta     Meta       `json:"meta"`
	Links    Links      `json:"links"`
}

// Meta carries collection-level metadata.
type Meta struct {
	// Count is the total number of records matching the filter, across all pages.
	Count int `json:"count"`
}

// Links carries the pagination links of a page. The absence of Next signals
// the final page.
type Links struct {
	First string `json:"first,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last,omitempty"`
}

// HasNextPage reports whether the API advertises a further page.
func (d *Document) HasNextPage() bool {
	return d.Links.Next != ""
}

// Resource is a single JSON:API resource object. Attributes stay raw until a
// typed decode is requested, because 'included' mixes resource kinds.
type Resource struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type"`
	Attributes    json.RawMessage         `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// Relationship links a resource to related resources by identifier.
type Relationship struct {
	Data ResourceLinkage `json:"data,omitempty"`
}

// ResourceIdentifier is a {type, id} reference into the 'included' section.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ResourceLinkage is the 'data' member of a relationship. JSON:API allows it
// to be null, a single identifier object, or an array of identifiers; all
// three decode into a flat slice.
type ResourceLinkage []ResourceIdentifier

// UnmarshalJSON implements the null/object/array tri-state decoding.
func (l *ResourceLinkage) UnmarshalJSON(raw []byte) error {
	if string(raw) == "null" {
		*l = nil
		return nil
	}
	if len(raw) > 0 && raw[0] == '{' {
		var single ResourceIdentifier
		if err := json.Unmarshal(raw, &single); err != nil {
			return err
		}
		*l = ResourceLinkage{single}
		return nil
	}
	var many []ResourceIdentifier
	if err := json.Unmarshal(raw, &many); err != nil {
		return err
	}
	*l = ResourceLinkage(many)
	return nil
}

// # Anime Attributes

// Titles holds the localized title variants Kitsu exposes.
type Titles struct {
	English  string `json:"en"`
	Romaji   string `json:"en_jp"`
	Japanese string `json:"ja_jp"`
}

// ImageSet is Kitsu's named-size image variant map. Individual sizes may be
// absent depending on what uploaders provided.
type ImageSet struct {
	Tiny     string `json:"tiny,omitempty"`
	Small    string `json:"small,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Large    string `json:"large,omitempty"`
	Original string `json:"original,omitempty"`
}

// AnimeAttributes is the attribute payload of an 'anime' resource.
type AnimeAttributes struct {
	Slug           string       `json:"slug"`
	Synopsis       string       `json:"synopsis"`
	Titles         Titles       `json:"titles"`
	CanonicalTitle string       `json:"canonicalTitle"`
	AverageRating  *string      `json:"averageRating"`
	UserCount      int          `json:"userCount"`
	PopularityRank *int         `json:"popularityRank"`
	StartDate      FlexibleDate `json:"startDate"`
	EndDate        FlexibleDate `json:"endDate"`
	Status         string       `json:"status"`
	Subtype        string       `json:"subtype"`
	EpisodeCount   *int         `json:"episodeCount"`
	EpisodeLength  *int         `json:"episodeLength"`
	PosterImage    *ImageSet    `json:"posterImage"`
	CoverImage     *ImageSet    `json:"coverImage"`
}

// DecodeAnime decodes the resource's attributes as an anime record.
func (r Resource) DecodeAnime() (*AnimeAttributes, error) {
	if r.Type != ResourceTypeAnime {
		return nil, fmt.Errorf("kitsu: resource %s is %q, not anime", r.ID, r.Type)
	}
	attrs := &AnimeAttributes{}
	if err := json.Unmarshal(r.Attributes, attrs); err != nil {
		return nil, fmt.Errorf("kitsu: decode anime %s attributes: %w", r.ID, err)
	}
	return attrs, nil
}

// # Included Resource Kinds

// Resource type discriminators observed in the 'included' section.
const (
	ResourceTypeAnime      = "anime"
	ResourceTypeGenre      = "genres"
	ResourceTypeCategory   = "categories"
	ResourceTypeProducer   = "producers"
	ResourceTypeStreamer   = "streamingLinks"
	ResourceTypeCharacters = "animeCharacters"
)

// Included is the closed set of decoded included-resource variants.
// Unrecognized kinds decode to [UnknownResource] instead of being silently
// accessed as untyped maps.
type Included interface {
	includedResource()
}

// GenreResource is a decoded 'genres' included resource.
type GenreResource struct {
	ID   string
	Name string
	Slug string
}

// CategoryResource is a decoded 'categories' included resource. Categories
// are Kitsu's richer genre taxonomy; the sync pipeline treats them as
// genre-like.
type CategoryResource struct {
	ID    string
	Title string
	Slug  string
}

// ProducerResource is a decoded 'producers' included resource.
type ProducerResource struct {
	ID   string
	Name string
}

// UnknownResource is the fallback for resource kinds the pipeline does not
// consume. Carrying the raw type keeps diagnostics possible.
type UnknownResource struct {
	ID   string
	Type string
}

func (GenreResource) includedResource()    {}
func (CategoryResource) includedResource() {}
func (ProducerResource) includedResource() {}
func (UnknownResource) includedResource()  {}

// DecodeIncluded decodes one included resource into its typed variant.
func DecodeIncluded(r Resource) (Included, error) {
	switch r.Type {
	case ResourceTypeGenre:
		var attrs struct {
			Name string `json:"name"`
			Slug string `json:"slug"`
		}
		if err := json.Unmarshal(r.Attributes, &attrs); err != nil {
			return nil, fmt.Errorf("kitsu: decode genre %s: %w", r.ID, err)
		}
		return GenreResource{ID: r.ID, Name: attrs.Name, Slug: attrs.Slug}, nil

	case ResourceTypeCategory:
		var attrs struct {
			Title string `json:"title"`
			Slug  string `json:"slug"`
		}
		if err := json.Unmarshal(r.Attributes, &attrs); err != nil {
			return nil, fmt.Errorf("kitsu: decode category %s: %w", r.ID, err)
		}
		return CategoryResource{ID: r.ID, Title: attrs.Title, Slug: attrs.Slug}, nil

	case ResourceTypeProducer:
		var attrs struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(r.Attributes, &attrs); err != nil {
			return nil, fmt.Errorf("kitsu: decode producer %s: %w", r.ID, err)
		}
		return ProducerResource{ID: r.ID, Name: attrs.Name}, nil

	default:
		return UnknownResource{ID: r.ID, Type: r.Type}, nil
	}
}
