package customheaders_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/gitlab-org/fileroute/internal/customheaders"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		headerStrings []string
		want          http.Header
		wantErr       bool
	}{
		{
			name:          "single header",
			headerStrings: []string{"X-Test-String: Test"},
			want:          http.Header{"X-Test-String": []string{"Test"}},
		},
		{
			name:          "canonical key",
			headerStrings: []string{"content-security-policy: default-src 'self'"},
			want:          http.Header{"Content-Security-Policy": []string{"default-src 'self'"}},
		},
		{
			name:          "repeated key",
			headerStrings: []string{"Cache-Control: public", "cache-control: max-age=60"},
			want:          http.Header{"Cache-Control": []string{"public", "max-age=60"}},
		},
		{
			name:          "missing colon",
			headerStrings: []string{"X-Test-String Test"},
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := customheaders.Parse(tt.headerStrings)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	t.Run("adds headers", func(t *testing.T) {
		headers := http.Header{"X-Frame-Options": []string{"DENY"}, "Tk": []string{"N"}}

		w := httptest.NewRecorder()
		customheaders.Middleware(headers)(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		require.Equal(t, "N", w.Header().Get("Tk"))
	})

	t.Run("no headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		customheaders.Middleware(nil)(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

		require.Equal(t, http.StatusNotFound, w.Code)
		require.Empty(t, w.Header())
	})
}
