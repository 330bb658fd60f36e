package gateway

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per gateway endpoint.
type RateLimiter struct {
	limiters   map[string]*rate.Limiter
	mu         sync.RWMutex
	rateLimit  rate.Limit
	burstLimit int
}

// NewRateLimiter creates a limiter allowing ratePerSecond requests per
// endpoint with bursts of up to burst.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:   make(map[string]*rate.Limiter),
		rateLimit:  rate.Limit(ratePerSecond),
		burstLimit: burst,
	}
}

// DefaultRateLimiter allows 10 requests/second per endpoint, burst of 20.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(10, 20)
}

// Allow reports whether a request may proceed now, consuming a token if so.
func (r *RateLimiter) Allow(endpoint string) bool {
	return r.limiter(endpoint).Allow()
}

// Wait blocks until a request may proceed. It reports whether the caller
// actually had to wait.
func (r *RateLimiter) Wait(ctx context.Context, endpoint string) (bool, error) {
	l := r.limiter(endpoint)
	waited := l.Tokens() < 1
	return waited, l.Wait(ctx)
}

func (r *RateLimiter) limiter(endpoint string) *rate.Limiter {
	r.mu.RLock()
	l, ok := r.limiters[endpoint]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok = r.limiters[endpoint]; ok {
		return l
	}
	l = rate.NewLimiter(r.rateLimit, r.burstLimit)
	r.limiters[endpoint] = l
	return l
}
