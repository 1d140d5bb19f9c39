package healthcheck

import (
	"net/http"

	"gitlab.com/gitlab-org/fileroute/internal/logging"
)

// Check reports whether a dependency needed for serving is available.
type Check func() error

// Handler is serving the application status check. It answers 503 as long
// as any of the checks fails.
func Handler(checks ...Check) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		for _, check := range checks {
			if err := check(); err != nil {
				logging.LogRequest(r).WithError(err).Warn("health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("failure\n"))
				return
			}
		}

		w.Write([]byte("success\n"))
	})
}
