package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter paces request-emitting actions. One Limiter belongs to exactly one
// scraper instance; it is not a cross-adapter global.
type Limiter interface {
	// Wait blocks until the minimum delay since the previous gated action has
	// elapsed. It fails only when ctx is cancelled.
	Wait(ctx context.Context) error
	// Gate runs op after Wait. Every session-creating or page-navigating
	// action an adapter performs goes through Gate.
	Gate(ctx context.Context, op func() error) error
	SetDelay(min, max time.Duration)
}

// SiteLimiter enforces a minimum wall-clock gap between the start times of
// successive gated actions. With jitter enabled the gap is stretched by a
// random amount up to maxDelay, which only ever adds to the guaranteed
// minimum.
type SiteLimiter struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	lastAction time.Time
	mu         sync.Mutex
	jitter     bool
}

func NewSiteLimiter(minDelay, maxDelay time.Duration) *SiteLimiter {
	return &SiteLimiter{
		minDelay: minDelay,
		maxDelay: maxDelay,
		jitter:   true,
	}
}

// NewFixedLimiter paces with exactly minDelay and no jitter.
func NewFixedLimiter(minDelay time.Duration) *SiteLimiter {
	return &SiteLimiter{
		minDelay: minDelay,
		maxDelay: minDelay,
	}
}

func (l *SiteLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Zero lastAction means no prior call; elapsed is then large enough that
	// the first action passes without blocking.
	elapsed := time.Since(l.lastAction)
	delay := l.currentDelay()

	if elapsed < delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay - elapsed):
		}
	}

	// Stamp after the wait completes so that back-to-back calls compound
	// instead of drifting below the minimum gap.
	l.lastAction = time.Now()
	return nil
}

func (l *SiteLimiter) Gate(ctx context.Context, op func() error) error {
	if err := l.Wait(ctx); err != nil {
		return err
	}
	return op()
}

func (l *SiteLimiter) SetDelay(min, max time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.minDelay = min
	l.maxDelay = max
}

func (l *SiteLimiter) currentDelay() time.Duration {
	if !l.jitter || l.maxDelay <= l.minDelay {
		return l.minDelay
	}

	delta := l.maxDelay - l.minDelay
	return l.minDelay + time.Duration(rand.Int63n(int64(delta)))
}

// BackoffLimiter widens the pacing window after repeated failures against a
// site and slowly narrows it again while scrapes keep succeeding.
type BackoffLimiter struct {
	*SiteLimiter
	errorCount     int
	successCount   int
	errorThreshold int
	backoffFactor  float64
	floor          time.Duration
	ceiling        time.Duration
}

func NewBackoffLimiter(minDelay, maxDelay time.Duration) *BackoffLimiter {
	return &BackoffLimiter{
		SiteLimiter:    NewSiteLimiter(minDelay, maxDelay),
		errorThreshold: 3,
		backoffFactor:  1.5,
		floor:          time.Second,
		ceiling:        2 * time.Minute,
	}
}

func (b *BackoffLimiter) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successCount++
	b.errorCount = 0

	if b.successCount > 5 {
		newMin := time.Duration(float64(b.minDelay) * 0.9)
		if newMin < b.floor {
			newMin = b.floor
		}
		b.minDelay = newMin
		b.successCount = 0
	}
}

func (b *BackoffLimiter) RecordError() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.errorCount++
	b.successCount = 0

	if b.errorCount >= b.errorThreshold {
		b.minDelay = clampDuration(time.Duration(float64(b.minDelay)*b.backoffFactor), b.ceiling)
		b.maxDelay = clampDuration(time.Duration(float64(b.maxDelay)*b.backoffFactor), 2*b.ceiling)
		b.errorCount = 0
	}
}

func clampDuration(d, max time.Duration) time.Duration {
	if d > max {
		return max
	}
	return d
}
