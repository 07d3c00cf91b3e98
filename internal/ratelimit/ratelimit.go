package ratelimit

import (
	"sync"

	ratelib "golang.org/x/time/rate"
)

// Limiter manages a collection of token bucket rate limiters sharing one
// rate and burst.
type Limiter struct {
	// mu protects the limiters map.
	mu sync.RWMutex
	// limiters stores rate.Limiter instances, keyed by a string identifier.
	limiters map[string]*ratelib.Limiter

	rps   ratelib.Limit
	burst int
}

// NewLimiter creates a Limiter allowing rps events per second per key with the
// given burst. A non-positive burst is raised to 1.
func NewLimiter(rps float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiters: make(map[string]*ratelib.Limiter),
		rps:      ratelib.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether an event for key may happen now.
func (l *Limiter) Allow(key string) bool {
	l.mu.RLock()
	lim, ok := l.limiters[key]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		// Double-check
		lim, ok = l.limiters[key]
		if !ok {
			lim = ratelib.NewLimiter(l.rps, l.burst)
			l.limiters[key] = lim
		}
		l.mu.Unlock()
	}
	return lim.Allow()
}

// Len returns the number of keys seen so far.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.limiters)
}
