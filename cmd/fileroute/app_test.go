package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"gitlab.com/gitlab-org/fileroute/internal/config"
	"gitlab.com/gitlab-org/fileroute/internal/serving/disk"
	"gitlab.com/gitlab-org/fileroute/metrics"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	require.NoError(t, disk.LoadMIMETypes())

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "static", "css"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static", "hello.txt"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static", "css", "site.css"), []byte("body{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robots.txt"), []byte("User-agent: *"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("secret"), 0644))

	return &config.Config{
		General: config.General{
			StatusPath:    "/-/status",
			CustomHeaders: http.Header{"X-Frame-Options": []string{"DENY"}},
		},
		Log:    config.Log{Format: "json"},
		Stream: config.Stream{BufferChunks: 1},
		Server: config.Server{ShutdownTimeout: time.Second},
		Routes: []config.Route{
			{Kind: config.FileRoute, Pattern: "/robots.txt", Target: filepath.Join(dir, "robots.txt")},
			{Kind: config.DirRoute, Pattern: "/static", Target: filepath.Join(dir, "static")},
		},
	}
}

func serve(t *testing.T, handler http.Handler, method, path string) *http.Response {
	t.Helper()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(method, path, nil))

	return w.Result()
}

func TestBuildHandler(t *testing.T) {
	handler, err := buildHandler(newTestConfig(t))
	require.NoError(t, err)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		expectedBody   string
		expectedType   string
	}{
		{
			name:           "file below directory",
			method:         http.MethodGet,
			path:           "/static/hello.txt",
			expectedStatus: http.StatusOK,
			expectedBody:   "hello",
			expectedType:   "text/plain; charset=utf-8",
		},
		{
			name:           "nested file below directory",
			method:         http.MethodGet,
			path:           "/static/css/site.css",
			expectedStatus: http.StatusOK,
			expectedBody:   "body{}",
			expectedType:   "text/css; charset=utf-8",
		},
		{
			name:           "single file route",
			method:         http.MethodGet,
			path:           "/robots.txt",
			expectedStatus: http.StatusOK,
			expectedBody:   "User-agent: *",
		},
		{
			name:           "head request",
			method:         http.MethodHead,
			path:           "/static/hello.txt",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "traversal is rejected",
			method:         http.MethodGet,
			path:           "/static/../secret.txt",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing file",
			method:         http.MethodGet,
			path:           "/static/missing.txt",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "directory is not a file",
			method:         http.MethodGet,
			path:           "/static/css",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "no route",
			method:         http.MethodGet,
			path:           "/other",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "status page",
			method:         http.MethodGet,
			path:           "/-/status",
			expectedStatus: http.StatusOK,
			expectedBody:   "success\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsp := serve(t, handler, tt.method, tt.path)
			defer rsp.Body.Close()

			require.Equal(t, tt.expectedStatus, rsp.StatusCode)
			require.Equal(t, "DENY", rsp.Header.Get("X-Frame-Options"))

			if tt.expectedType != "" {
				require.Equal(t, tt.expectedType, rsp.Header.Get("Content-Type"))
			}

			if tt.expectedBody != "" {
				b, err := io.ReadAll(rsp.Body)
				require.NoError(t, err)
				require.Equal(t, tt.expectedBody, string(b))
			}
		})
	}
}

func TestBuildHandlerHeadSendsLengthWithoutBody(t *testing.T) {
	handler, err := buildHandler(newTestConfig(t))
	require.NoError(t, err)

	rsp := serve(t, handler, http.MethodHead, "/static/hello.txt")
	defer rsp.Body.Close()

	require.Equal(t, http.StatusOK, rsp.StatusCode)
	require.Equal(t, "5", rsp.Header.Get("Content-Length"))

	b, err := io.ReadAll(rsp.Body)
	require.NoError(t, err)
	require.Empty(t, b)
}

func TestStatusPageFailsWhenTargetIsMissing(t *testing.T) {
	cfg := newTestConfig(t)
	require.NoError(t, os.Remove(cfg.Routes[0].Target))

	handler, err := buildHandler(cfg)
	require.NoError(t, err)

	rsp := serve(t, handler, http.MethodGet, "/-/status")
	defer rsp.Body.Close()

	require.Equal(t, http.StatusServiceUnavailable, rsp.StatusCode)
}

func TestBuildHandlerRateLimit(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.RateLimit = config.RateLimit{LimitPerSecond: 0.001, Burst: 1}

	handler, err := buildHandler(cfg)
	require.NoError(t, err)

	rsp := serve(t, handler, http.MethodGet, "/robots.txt")
	rsp.Body.Close()
	require.Equal(t, http.StatusOK, rsp.StatusCode)

	rsp = serve(t, handler, http.MethodGet, "/robots.txt")
	rsp.Body.Close()
	require.Equal(t, http.StatusTooManyRequests, rsp.StatusCode)
}

func TestBuildHandlerInvalidRoute(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Routes = append(cfg.Routes, config.Route{Kind: config.DirRoute, Pattern: "/{float}", Target: "/srv"})

	_, err := buildHandler(cfg)
	require.Error(t, err)
}

func TestRunServesUntilCancelled(t *testing.T) {
	cfg := newTestConfig(t)
	require.NoError(t, cfg.ListenHTTPStrings.Set("127.0.0.1:0"))

	a, err := newApp(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRunFailsOnInvalidAddress(t *testing.T) {
	cfg := newTestConfig(t)
	require.NoError(t, cfg.ListenHTTPStrings.Set("invalid-address"))

	a, err := newApp(cfg)
	require.NoError(t, err)

	require.Error(t, a.Run(context.Background()))
}

func TestBuildHandlerRejectsRequestsBeforeRouting(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.General.MaxURILength = 20

	handler, err := buildHandler(cfg)
	require.NoError(t, err)

	rsp := serve(t, handler, http.MethodPost, "/static/hello.txt")
	rsp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, rsp.StatusCode)
	require.Equal(t, "GET, HEAD", rsp.Header.Get("Allow"))

	rsp = serve(t, handler, http.MethodGet, "/static/hello.txt?version=2")
	rsp.Body.Close()
	require.Equal(t, http.StatusRequestURITooLong, rsp.StatusCode)
}

func TestRunAcceptsProxyv2Connections(t *testing.T) {
	cfg := newTestConfig(t)
	require.NoError(t, cfg.ListenProxyv2Strings.Set("127.0.0.1:0"))

	a, err := newApp(cfg)
	require.NoError(t, err)

	listeners, err := a.listen()
	require.NoError(t, err)
	require.Len(t, listeners, 1)
	require.Equal(t, "proxyv2", listeners[0].name)

	for _, l := range listeners {
		require.NoError(t, l.Close())
	}
}

func TestBuildHandlerRequestMetricsIgnoreMethod(t *testing.T) {
	metrics.ProcessedRequests.Reset()
	t.Cleanup(metrics.ProcessedRequests.Reset)

	handler, err := buildHandler(newTestConfig(t))
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		rsp := serve(t, handler, fmt.Sprintf("X%d", i), "/robots.txt")
		rsp.Body.Close()
	}

	require.Equal(t, 1, testutil.CollectAndCount(metrics.ProcessedRequests))
	require.Equal(t, float64(100), testutil.ToFloat64(metrics.ProcessedRequests.WithLabelValues("405")))
}

func TestBuildHandlerFileRouteBeforeCatchAllDir(t *testing.T) {
	cfg := newTestConfig(t)
	root := filepath.Dir(cfg.Routes[0].Target)
	robots := filepath.Join(t.TempDir(), "robots.txt")
	require.NoError(t, os.WriteFile(robots, []byte("Disallow: /"), 0644))

	cfg.Routes = []config.Route{
		{Kind: config.FileRoute, Pattern: "/robots.txt", Target: robots},
		{Kind: config.DirRoute, Pattern: "/", Target: root},
	}

	handler, err := buildHandler(cfg)
	require.NoError(t, err)

	for path, expected := range map[string]string{
		"/robots.txt":       "Disallow: /",
		"/static/hello.txt": "hello",
		"/secret.txt":       "secret",
	} {
		rsp := serve(t, handler, http.MethodGet, path)
		b, err := io.ReadAll(rsp.Body)
		rsp.Body.Close()

		require.NoError(t, err)
		require.Equal(t, http.StatusOK, rsp.StatusCode, path)
		require.Equal(t, expected, string(b), path)
	}
}
