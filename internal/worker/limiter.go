package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-target rate limiting. Targets are arbitrary
// names, typically one per downstream store or service.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait waits for rate limit clearance for the given target
func (l *Limiter) Wait(ctx context.Context, target string) error {
	return l.getLimiter(target).Wait(ctx)
}

// Allow checks if a request is allowed without waiting
func (l *Limiter) Allow(target string) bool {
	return l.getLimiter(target).Allow()
}

// getLimiter returns the rate limiter for a target
func (l *Limiter) getLimiter(target string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[target]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[target]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[target] = limiter

	return limiter
}

// SetTargetRate sets a custom rate limit for a specific target
func (l *Limiter) SetTargetRate(target string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[target] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}
