package handlers

import (
	"net/http"

	"github.com/rs/cors"
)

var corsHandler = cors.New(cors.Options{AllowedMethods: []string{http.MethodGet, http.MethodHead}})

// CorsHandler lets browsers fetch files from other origins unless
// cross-origin requests are disabled. Preflight requests are answered here
// and never reach the routes.
func CorsHandler(disabled bool, handler http.Handler) http.Handler {
	if disabled {
		return handler
	}

	return corsHandler.Handler(handler)
}
