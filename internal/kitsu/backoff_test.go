// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package kitsu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

/*
TestBackoff_Deterministic verifies the exponential growth and clamp with
jitter disabled.
*/
func TestBackoff_Deterministic(t *testing.T) {
	policy := BackoffPolicy{
		BaseDelay: 1 * time.Second,
		MaxDelay:  32 * time.Second,
		Jitter:    0,
	}

	tests := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{"attempt_0", 0, 1 * time.Second},
		{"attempt_1", 1, 2 * time.Second},
		{"attempt_2", 2, 4 * time.Second},
		{"attempt_4", 4, 16 * time.Second},
		{"attempt_5_clamped", 5, 32 * time.Second},
		{"attempt_10_clamped", 10, 32 * time.Second},
		{"attempt_huge_clamped", 500, 32 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Backoff(tt.attempt, policy))
		})
	}
}

/*
TestBackoff_JitterBounds checks that jittered delays always land inside
[d·(1-jitter), d].
*/
func TestBackoff_JitterBounds(t *testing.T) {
	policy := BackoffPolicy{
		BaseDelay: 1 * time.Second,
		MaxDelay:  32 * time.Second,
		Jitter:    0.5,
	}

	for attempt := 0; attempt < 8; attempt++ {
		deterministic := Backoff(attempt, BackoffPolicy{
			BaseDelay: policy.BaseDelay,
			MaxDelay:  policy.MaxDelay,
		})
		for i := 0; i < 50; i++ {
			delay := Backoff(attempt, policy)
			assert.GreaterOrEqual(t, delay, deterministic/2, "attempt %d", attempt)
			assert.LessOrEqual(t, delay, deterministic, "attempt %d", attempt)
		}
	}
}
