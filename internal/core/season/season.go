// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

/*
Package season defines the quarterly anime release window used throughout
the sync pipeline.

An anime "season" is one of four fixed windows (WINTER, SPRING, SUMMER, FALL),
not a calendar season in general usage. A [Filter] pairs a season with a year
and identifies exactly one sync run's scope.
*/
package season

import (
	"fmt"
	"strings"
	"time"
)

// Season is one of the four quarterly release windows.
type Season string

const (
	Winter Season = "WINTER"
	Spring Season = "SPRING"
	Summer Season = "SUMMER"
	Fall   Season = "FALL"
)

// Year bounds accepted by [NewFilter]. The lower bound predates televised
// anime seasons worth syncing; the upper bound tolerates far-future
// announcements without accepting garbage years.
const (
	MinYear       = 1960
	MaxYearsAhead = 10
)

// All returns the four seasons in broadcast order.
func All() []Season {
	return []Season{Winter, Spring, Summer, Fall}
}

// Valid reports whether s is one of the four known seasons.
func (s Season) Valid() bool {
	switch s {
	case Winter, Spring, Summer, Fall:
		return true
	}
	return false
}

// String implements [fmt.Stringer].
func (s Season) String() string { return string(s) }

// KitsuParam returns the lowercase form expected by the Kitsu filter[season]
// query parameter.
func (s Season) KitsuParam() string {
	return strings.ToLower(string(s))
}

// Parse converts user input (any casing) into a [Season].
func Parse(input string) (Season, error) {
	s := Season(strings.ToUpper(strings.TrimSpace(input)))
	if !s.Valid() {
		return "", fmt.Errorf("season: unknown season %q (want winter, spring, summer or fall)", input)
	}
	return s, nil
}

// FromMonth buckets a calendar month into its release window:
// 1–3 WINTER, 4–6 SPRING, 7–9 SUMMER, 10–12 FALL.
func FromMonth(month time.Month) Season {
	switch {
	case month <= time.March:
		return Winter
	case month <= time.June:
		return Spring
	case month <= time.September:
		return Summer
	default:
		return Fall
	}
}

// FromDate returns the window containing the given date.
func FromDate(date time.Time) Season {
	return FromMonth(date.Month())
}

// # Filters

// Filter identifies one season/year sync scope. Immutable value type.
type Filter struct {
	Season Season
	Year   int
}

// NewFilter validates and constructs a [Filter].
//
// The year must fall within [MinYear, currentYear+MaxYearsAhead].
func NewFilter(s Season, year int) (Filter, error) {
	if !s.Valid() {
		return Filter{}, fmt.Errorf("season: invalid season %q", s)
	}
	maxYear := time.Now().Year() + MaxYearsAhead
	if year < MinYear || year > maxYear {
		return Filter{}, fmt.Errorf("season: year %d out of range [%d, %d]", year, MinYear, maxYear)
	}
	return Filter{Season: s, Year: year}, nil
}

// Current returns the filter for the window containing now.
func Current(now time.Time) Filter {
	return Filter{Season: FromDate(now), Year: now.Year()}
}

// AllForYear returns the four filters of one year in broadcast order.
func AllForYear(year int) []Filter {
	filters := make([]Filter, 0, 4)
	for _, s := range All() {
		filters = append(filters, Filter{Season: s, Year: year})
	}
	return filters
}

// String renders the filter as e.g. "WINTER 2025".
func (f Filter) String() string {
	return fmt.Sprintf("%s %d", f.Season, f.Year)
}
