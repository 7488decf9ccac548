package multisource

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// hostLimiter spaces out fetches to the same host. Each host gets its own
// token bucket with a burst of 1.
type hostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

func newHostLimiter(rps float64) *hostLimiter {
	return &hostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until host may be fetched again or ctx is done.
func (h *hostLimiter) Wait(ctx context.Context, host string) error {
	if h.rps <= 0 {
		return ctx.Err()
	}
	h.mu.Lock()
	limiter, ok := h.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(h.rps), 1)
		h.limiters[host] = limiter
	}
	h.mu.Unlock()

	return limiter.Wait(ctx)
}
