// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package kitsu

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between consecutive outbound calls to
// the catalog API.
//
// # Sharing
//
// One Limiter instance must be shared by every caller of the same API — it
// throttles the aggregate call rate of the process, not a specific actor.
// Construction happens once in the composition root (cmd/) and the instance
// is injected into each client.
//
// Internally this is a token bucket with capacity 1 refilling every
// minInterval, which degenerates to exact minimum spacing. The bucket state
// is mutex-protected by x/time/rate, so concurrent sync runs are safe.
type Limiter struct {
	bucket *rate.Limiter
}

// NewLimiter creates a limiter allowing one call per minInterval.
func NewLimiter(minInterval time.Duration) *Limiter {
	return &Limiter{
		bucket: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// WaitForSlot blocks until the caller may issue the next outbound call, or
// until the context is cancelled.
func (l *Limiter) WaitForSlot(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}
