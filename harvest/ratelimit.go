package harvest

import (
	"context"
	"net/url"
	"sync"

	"github.com/fwojciec/plansync"
	"golang.org/x/time/rate"
)

var _ plansync.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter provides per-host rate limiting using token buckets.
// Many retailers are served from the same CDR host, so limits apply per
// host rather than per retailer.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a new DomainLimiter with the specified requests per
// second limit and a burst of 1. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the host.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	if d.rps <= 0 {
		return ctx.Err()
	}

	d.mu.Lock()
	limiter, ok := d.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[host] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// wait applies limiter, if any, to the retailer's API host.
func wait(ctx context.Context, limiter plansync.DomainLimiter, r plansync.Retailer) error {
	if limiter == nil {
		return ctx.Err()
	}
	host := r.BaseURL
	if u, err := url.Parse(r.BaseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return limiter.Wait(ctx, host)
}
