package rejectmethods

import (
	"net/http"

	"gitlab.com/gitlab-org/fileroute/internal/httperrors"
	"gitlab.com/gitlab-org/fileroute/metrics"
)

var acceptedMethods = map[string]bool{
	http.MethodGet:  true,
	http.MethodHead: true,
}

const allowHeader = "GET, HEAD"

// Any other method is counted as "other" to keep the label set bounded.
var labelledMethods = map[string]bool{
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
	http.MethodConnect: true,
	http.MethodTrace:   true,
}

func methodLabel(method string) string {
	if labelledMethods[method] {
		return method
	}

	return "other"
}

// NewMiddleware answers 405 to every method a file reply cannot serve
func NewMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !acceptedMethods[r.Method] {
			metrics.RejectedMethods.WithLabelValues(methodLabel(r.Method)).Inc()
			w.Header().Set("Allow", allowHeader)
			httperrors.Serve405(w)
			return
		}

		handler.ServeHTTP(w, r)
	})
}
