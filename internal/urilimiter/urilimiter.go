package urilimiter

import (
	"net/http"

	"gitlab.com/gitlab-org/fileroute/internal/httperrors"
	"gitlab.com/gitlab-org/fileroute/internal/logging"
)

// NewMiddleware answers 414 when the raw request URI is longer than limit,
// before any route has to walk its segments. A limit of 0 disables the check.
func NewMiddleware(handler http.Handler, limit int) http.Handler {
	if limit <= 0 {
		return handler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.RequestURI) > limit {
			logging.LogRequest(r).WithField("uri_length", len(r.RequestURI)).Debug("request URI too long")
			httperrors.Serve414(w)

			return
		}

		handler.ServeHTTP(w, r)
	})
}
