// Package ratelimit enforces minimum spacing between outbound requests to one upstream.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"solana-token-scanner/internal/observability"
)

// Limiter grants at most one slot per Interval, measured from the previous
// grant. The first slot is granted immediately. Waiters are served one at a time.
type Limiter struct {
	name     string
	interval time.Duration
	limiter  *rate.Limiter

	mu   sync.Mutex
	last time.Time // zero until the first grant
}

// New creates a limiter allowing maxRequests per window.
// Non-positive values disable spacing.
func New(name string, maxRequests int, window time.Duration) *Limiter {
	var interval time.Duration
	if maxRequests > 0 && window > 0 {
		interval = window / time.Duration(maxRequests)
	}

	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &Limiter{
		name:     name,
		interval: interval,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Interval returns the minimum spacing between granted slots.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Wait blocks until the next slot is available.
// It only fails when ctx is done before the slot is granted.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	// rate.Limiter schedules slots on a fixed grid, so a late wake-up lets the
	// next slot come early. Re-check the gap against the actual previous grant.
	if err := l.waitGap(ctx); err != nil {
		return err
	}
	l.last = time.Now()

	observability.RecordRateLimitWait(l.name, time.Since(start).Seconds())
	return nil
}

// LastGrant returns the time of the most recent granted slot.
func (l *Limiter) LastGrant() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

func (l *Limiter) waitGap(ctx context.Context) error {
	if l.interval <= 0 || l.last.IsZero() {
		return nil
	}
	for {
		remaining := l.interval - time.Since(l.last)
		if remaining <= 0 {
			return nil
		}
		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
