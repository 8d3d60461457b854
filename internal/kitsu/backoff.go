// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package kitsu

import (
	"context"
	"math/rand"
	"time"

	"github.com/kisetsu-app/kisetsu/internal/platform/constants"
)

// BackoffPolicy bounds the retry delay computation. It is pure data so the
// delay function stays unit-testable without any I/O or clock mocking.
type BackoffPolicy struct {
	// BaseDelay is the delay before the first retry; doubles per attempt.
	BaseDelay time.Duration
	// MaxDelay caps the exponential growth.
	MaxDelay time.Duration
	// Jitter is the fraction of the computed delay that is randomized
	// (0 = deterministic, 0.5 = delay drawn from [0.5d, d]).
	Jitter float64
}

// DefaultBackoffPolicy returns the policy used against the catalog API.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		BaseDelay: constants.KitsuBaseBackoff,
		MaxDelay:  constants.KitsuMaxBackoff,
		Jitter:    0.5,
	}
}

// Backoff computes the delay before retry number attempt (0-based):
// BaseDelay·2^attempt, clamped to MaxDelay, with equal jitter applied.
//
// With Jitter j, the result is drawn uniformly from [d·(1-j), d] where d is
// the clamped exponential delay. Jitter spreads concurrent retriers apart so
// they do not hammer a recovering upstream in lockstep.
func Backoff(attempt int, policy BackoffPolicy) time.Duration {
	delay := policy.MaxDelay

	// Shift overflows past attempt 62; anything that large is clamped anyway.
	if attempt < 32 {
		exponential := policy.BaseDelay << uint(attempt)
		if exponential < policy.MaxDelay && exponential > 0 {
			delay = exponential
		}
	}

	if policy.Jitter <= 0 {
		return delay
	}

	floor := time.Duration(float64(delay) * (1 - policy.Jitter))
	return floor + time.Duration(rand.Float64()*float64(delay-floor))
}

// sleepContext blocks for the given duration, returning early with the
// context's error if it is cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
