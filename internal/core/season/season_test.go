// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package season_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisetsu-app/kisetsu/internal/core/season"
)

/*
TestFromMonth verifies the month-range bucketing rule.
*/
func TestFromMonth(t *testing.T) {
	tests := []struct {
		name     string
		month    time.Month
		expected season.Season
	}{
		{"january_winter", time.January, season.Winter},
		{"march_winter", time.March, season.Winter},
		{"april_spring", time.April, season.Spring},
		{"june_spring", time.June, season.Spring},
		{"july_summer", time.July, season.Summer},
		{"september_summer", time.September, season.Summer},
		{"october_fall", time.October, season.Fall},
		{"december_fall", time.December, season.Fall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, season.FromMonth(tt.month))
		})
	}
}

/*
TestParse accepts any casing and rejects unknown values.
*/
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    season.Season
		wantErr bool
	}{
		{"lowercase", "winter", season.Winter, false},
		{"uppercase", "FALL", season.Fall, false},
		{"mixed_case", "SpRiNg", season.Spring, false},
		{"surrounding_space", "  summer ", season.Summer, false},
		{"unknown", "autumn", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := season.Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestNewFilter enforces the year validity window.
*/
func TestNewFilter(t *testing.T) {
	currentYear := time.Now().Year()

	tests := []struct {
		name    string
		season  season.Season
		year    int
		wantErr bool
	}{
		{"valid", season.Winter, 2025, false},
		{"min_year", season.Spring, season.MinYear, false},
		{"max_year", season.Fall, currentYear + season.MaxYearsAhead, false},
		{"too_old", season.Winter, season.MinYear - 1, true},
		{"too_far_ahead", season.Summer, currentYear + season.MaxYearsAhead + 1, true},
		{"invalid_season", season.Season("AUTUMN"), 2025, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := season.NewFilter(tt.season, tt.year)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.season, filter.Season)
			assert.Equal(t, tt.year, filter.Year)
		})
	}
}

/*
TestCurrent derives the filter for the containing window.
*/
func TestCurrent(t *testing.T) {
	now := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
	filter := season.Current(now)

	assert.Equal(t, season.Winter, filter.Season)
	assert.Equal(t, 2025, filter.Year)
}

/*
TestAllForYear returns all four windows in broadcast order.
*/
func TestAllForYear(t *testing.T) {
	filters := season.AllForYear(2024)

	require.Len(t, filters, 4)
	assert.Equal(t, season.Winter, filters[0].Season)
	assert.Equal(t, season.Fall, filters[3].Season)
	for _, f := range filters {
		assert.Equal(t, 2024, f.Year)
	}
}

/*
TestKitsuParam lowercases for the filter[season] query parameter.
*/
func TestKitsuParam(t *testing.T) {
	assert.Equal(t, "winter", season.Winter.KitsuParam())
	assert.Equal(t, "fall", season.Fall.KitsuParam())
}
