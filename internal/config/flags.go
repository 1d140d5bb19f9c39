package config

import (
	"time"

	"github.com/namsral/flag"
)

var (
	metricsAddress         = flag.String("metrics-address", "", "The address to listen on for metrics requests")
	statusPath             = flag.String("status-path", "", "The url path for a status page, e.g., /@status")
	sentryDSN              = flag.String("sentry-dsn", "", "The address for sending sentry crash reporting to")
	sentryEnvironment      = flag.String("sentry-environment", "", "The environment for sentry crash reporting")
	propagateCorrelationID = flag.Bool("propagate-correlation-id", false, "Reuse existing Correlation-ID from the incoming request header `X-Request-ID` if present")
	logFormat              = flag.String("log-format", "json", "The log output format: 'text' or 'json'")
	logVerbose             = flag.Bool("log-verbose", false, "Verbose logging")

	followSymlinks     = flag.Bool("follow-symlinks", false, "Follow symbolic links when opening files under a served directory")
	streamBufferChunks = flag.Int("stream-buffer-chunks", 1, "Number of file chunks that may be read ahead of a slow client")

	maxURILength   = flag.Int("max-uri-length", 1024, "Limit the length of URI, 0 for unlimited.")
	maxConns       = flag.Int("max-conns", 0, "Limit on the number of concurrent connections to the HTTP listeners, 0 for no limit")
	rateLimit      = flag.Float64("rate-limit", 0.0, "Rate limit HTTP requests per second for the whole server, 0 means is disabled")
	rateLimitBurst = flag.Int("rate-limit-burst", 100, "Rate limit HTTP requests, maximum burst allowed per second")

	// HTTP server timeouts
	serverReadTimeout       = flag.Duration("server-read-timeout", 5*time.Second, "ReadTimeout is the maximum duration for reading the entire request, including the body. A zero or negative value means there will be no timeout.")
	serverReadHeaderTimeout = flag.Duration("server-read-header-timeout", time.Second, "ReadHeaderTimeout is the amount of time allowed to read request headers. A zero or negative value means there will be no timeout.")
	serverWriteTimeout      = flag.Duration("server-write-timeout", 0, "WriteTimeout is the maximum duration before timing out writes of the response. A zero or negative value means there will be no timeout.")
	serverShutdownTimeout   = flag.Duration("server-shutdown-timeout", 30*time.Second, "Server shutdown timeout (default: 30s)")

	useHTTP2                   = flag.Bool("use-http2", true, "Accept cleartext HTTP/2 (h2c) connections next to HTTP/1.1")
	disableCrossOriginRequests = flag.Bool("disable-cross-origin-requests", false, "Disable cross-origin requests")

	showVersion = flag.Bool("version", false, "Show version")

	// See initFlags()
	listenHTTP    = MultiStringFlag{separator: ","}
	listenProxyv2 = MultiStringFlag{separator: ","}
	routeFlags    = &routeTable{}
	dirRoutes     = routeFlags.flag(DirRoute)
	fileRoutes    = routeFlags.flag(FileRoute)
	header        = MultiStringFlag{separator: ";;"}
)

// initFlags will be called from LoadConfig
func initFlags() {
	flag.Var(&listenHTTP, "listen-http", "The address(es) to listen on for HTTP requests")
	flag.Var(&listenProxyv2, "listen-proxyv2", "The address(es) to listen on for HTTP requests behind a PROXY protocol v2 load balancer (https://www.haproxy.org/download/1.8/doc/proxy-protocol.txt)")
	flag.Var(&dirRoutes, "dir-route", "A route serving files below a directory, as PATTERN=DIR, e.g. /static/=/srv/www. Routes of both kinds are tried in command line order")
	flag.Var(&fileRoutes, "file-route", "A route serving a single file, as PATTERN=FILE, e.g. /robots.txt=/srv/robots.txt")
	flag.Var(&header, "header", "The additional http header(s) that should be send to the client")

	// read from -config=/path/to/fileroute-config
	flag.String(flag.DefaultConfigFlagname, "", "path to config file")

	flag.Parse()
}
