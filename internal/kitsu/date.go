// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package kitsu

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlexibleDate decodes the date shapes the catalog API has been observed to
// emit for start/end dates:
//
//   - a plain ISO string: "2025-01-07"
//   - a full timestamp: "2025-01-07T00:00:00.000Z" (truncated to the date)
//   - a wrapper object: {"year": 2025, "month": 1, "day": 7}
//   - null / absent
//
// The zero value means "no date".
type FlexibleDate struct {
	value string
}

// dateWrapper is the nested object form.
type dateWrapper struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// UnmarshalJSON implements the string-or-object decoding.
func (d *FlexibleDate) UnmarshalJSON(raw []byte) error {
	if string(raw) == "null" {
		d.value = ""
		return nil
	}

	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		// Truncate timestamps to the date part.
		if len(s) > 10 {
			s = s[:10]
		}
		d.value = s
		return nil
	}

	var w dateWrapper
	if err := json.Unmarshal(raw, &w); err != nil {
		return fmt.Errorf("kitsu: unsupported date shape %s: %w", raw, err)
	}
	if w.Year == 0 {
		d.value = ""
		return nil
	}
	if w.Month == 0 {
		w.Month = 1
	}
	if w.Day == 0 {
		w.Day = 1
	}
	d.value = fmt.Sprintf("%04d-%02d-%02d", w.Year, w.Month, w.Day)
	return nil
}

// MarshalJSON re-emits the ISO form (or null when empty).
func (d FlexibleDate) MarshalJSON() ([]byte, error) {
	if d.value == "" {
		return []byte("null"), nil
	}
	return json.Marshal(d.value)
}

// IsZero reports whether no date is present.
func (d FlexibleDate) IsZero() bool { return d.value == "" }

// String returns the ISO YYYY-MM-DD form, or "" when absent.
func (d FlexibleDate) String() string { return d.value }

// Time parses the date into a [time.Time] (UTC midnight).
// Returns the zero time and false when absent or malformed.
func (d FlexibleDate) Time() (time.Time, bool) {
	if d.value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", d.value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NewDate builds a FlexibleDate from an ISO string. Used by tests and the
// transformer's season derivation.
func NewDate(iso string) FlexibleDate {
	return FlexibleDate{value: iso}
}
