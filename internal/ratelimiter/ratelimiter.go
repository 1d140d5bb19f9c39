package ratelimiter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"gitlab.com/gitlab-org/fileroute/metrics"
)

// DefaultBurstSize is the maximum burst allowed by the rate limiter.
const DefaultBurstSize = 100

// Option function to configure a RateLimiter
type Option func(*RateLimiter)

// RateLimiter throttles requests to the whole server with a single token
// bucket. It also holds a now function that can be mocked in unit tests.
type RateLimiter struct {
	now            func() time.Time
	limitPerSecond float64
	burstSize      int
	limiter        *rate.Limiter
	blockedCount   prometheus.Counter
}

// New creates a new RateLimiter with default values that can be configured via Option functions
func New(limitPerSecond float64, opts ...Option) *RateLimiter {
	rl := &RateLimiter{
		now:            time.Now,
		limitPerSecond: limitPerSecond,
		burstSize:      DefaultBurstSize,
		blockedCount:   metrics.RateLimitedRequests,
	}

	for _, opt := range opts {
		opt(rl)
	}

	rl.limiter = rate.NewLimiter(rate.Limit(rl.limitPerSecond), rl.burstSize)

	return rl
}

// WithNow replaces the RateLimiter now function
func WithNow(now func() time.Time) Option {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// WithBurstSize configures the number of requests allowed at once
func WithBurstSize(burst int) Option {
	return func(rl *RateLimiter) {
		rl.burstSize = burst
	}
}

// Allowed reports whether one more request may be served now
func (rl *RateLimiter) Allowed() bool {
	return rl.limiter.AllowN(rl.now(), 1)
}
