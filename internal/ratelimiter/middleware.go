package ratelimiter

import (
	"net/http"

	"gitlab.com/gitlab-org/fileroute/internal/httperrors"
	"gitlab.com/gitlab-org/fileroute/internal/logging"
)

// Middleware answers 429 once the server-wide request rate is exceeded
func (rl *RateLimiter) Middleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allowed() {
			logging.LogRequest(r).WithFields(map[string]interface{}{
				"rate_limiter_limit_per_second": rl.limitPerSecond,
				"rate_limiter_burst_size":       rl.burstSize,
			}).Debug("request hit rate limit")

			rl.blockedCount.Inc()
			httperrors.Serve429(w)
			return
		}

		handler.ServeHTTP(w, r)
	})
}
