package urilimiter

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "hello")
	})

	tests := map[string]struct {
		limit          int
		url            string
		expectedStatus int
	}{
		"disabled": {
			limit:          0,
			url:            "/static/css/site.css?v=1",
			expectedStatus: http.StatusOK,
		},
		"negative_limit_disables": {
			limit:          -1,
			url:            "/static/css/site.css?v=1",
			expectedStatus: http.StatusOK,
		},
		"length_equal_to_limit": {
			limit:          18,
			url:            "/static/app.js?v=1",
			expectedStatus: http.StatusOK,
		},
		"path_exceeds_limit": {
			limit:          18,
			url:            "/static/app2.js?v=1",
			expectedStatus: http.StatusRequestURITooLong,
		},
		"query_exceeds_limit": {
			limit:          18,
			url:            "/static/app.js?v=12",
			expectedStatus: http.StatusRequestURITooLong,
		},
	}
	for tn, tt := range tests {
		t.Run(tn, func(t *testing.T) {
			middleware := NewMiddleware(handler, tt.limit)

			ww := httptest.NewRecorder()
			rr := httptest.NewRequest(http.MethodGet, tt.url, nil)

			middleware.ServeHTTP(ww, rr)

			res := ww.Result()
			defer res.Body.Close()

			require.Equal(t, tt.expectedStatus, res.StatusCode)
			if tt.expectedStatus == http.StatusOK {
				b, err := io.ReadAll(res.Body)
				require.NoError(t, err)

				require.Equal(t, "hello", string(b))
			}
		})
	}
}
