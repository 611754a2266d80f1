package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket guarding a metered upstream API.
type RateLimiter struct {
	mu             sync.Mutex
	tokens         int
	maxTokens      int
	refillInterval time.Duration
	lastRefill     time.Time
}

// NewRateLimiter allows bursts of maxTokens and adds one token every refillInterval.
func NewRateLimiter(maxTokens int, refillInterval time.Duration) *RateLimiter {
	if maxTokens <= 0 {
		maxTokens = 1
	}
	return &RateLimiter{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
	}
}

// PerMinute spreads n calls evenly across a minute with a burst of n.
func PerMinute(n int) *RateLimiter {
	if n <= 0 {
		n = 60
	}
	return NewRateLimiter(n, time.Minute/time.Duration(n))
}

// Wait blocks until a token is available or ctx is done. A nil limiter never blocks.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return nil
	}
	for {
		r.mu.Lock()
		r.refill()
		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.refillInterval):
		}
	}
}

func (r *RateLimiter) refill() {
	if r.refillInterval <= 0 {
		r.tokens = r.maxTokens
		return
	}
	elapsed := time.Since(r.lastRefill)
	newTokens := int(elapsed / r.refillInterval)
	if newTokens > 0 {
		r.tokens = min(r.tokens+newTokens, r.maxTokens)
		r.lastRefill = r.lastRefill.Add(time.Duration(newTokens) * r.refillInterval)
	}
}
