package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/namsral/flag"
	log "github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/fileroute/internal/customheaders"
	"gitlab.com/gitlab-org/fileroute/internal/route"
)

// Config stores all the config options relevant to the file server.
type Config struct {
	General   General
	Log       Log
	Sentry    Sentry
	Server    Server
	Stream    Stream
	RateLimit RateLimit
	Routes    []Route

	// These fields contain the raw addresses passed with listen-http and
	// listen-proxyv2. Listeners are opened by the application on start.
	ListenHTTPStrings    MultiStringFlag
	ListenProxyv2Strings MultiStringFlag
}

// General groups settings that are general to the server and can not
// be categorized under other head.
type General struct {
	MaxConns               int
	MaxURILength           int
	MetricsAddress         string
	StatusPath             string
	HTTP2                  bool
	PropagateCorrelationID bool
	ShowVersion            bool
	CustomHeaders          http.Header

	DisableCrossOriginRequests bool
}

// Log groups settings related to configuring logging
type Log struct {
	Format  string
	Verbose bool
}

// Sentry groups settings related to configuring Sentry
type Sentry struct {
	DSN         string
	Environment string
}

// Server groups the HTTP server timeouts
type Server struct {
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
}

// Stream groups settings of the file reply pipeline
type Stream struct {
	FollowSymlinks bool
	BufferChunks   int
}

// RateLimit groups settings of the server-wide request limiter
type RateLimit struct {
	LimitPerSecond float64
	Burst          int
}

// RouteKind tells what a Route serves
type RouteKind string

const (
	// DirRoute serves the files below a directory
	DirRoute RouteKind = "dir"
	// FileRoute serves a single file
	FileRoute RouteKind = "file"
)

// Route is one entry of the route table, in command line order.
type Route struct {
	Kind    RouteKind
	Pattern string
	Target  string
}

// Matcher compiles the route into a matcher whose last extracted value is
// the route.File to serve.
func (r Route) Matcher() (route.Matcher, error) {
	prefix, err := route.Pattern(r.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%s-route %q: %w", r.Kind, r.Pattern, err)
	}

	switch r.Kind {
	case DirRoute:
		return route.And(prefix, route.Dir(r.Target)), nil
	case FileRoute:
		return route.And(prefix, route.Index(), route.FileAt(r.Target)), nil
	default:
		return nil, fmt.Errorf("unknown route kind %q", r.Kind)
	}
}

func (r Route) String() string {
	return r.Pattern + "=" + r.Target
}

func parseRoute(kind RouteKind, raw string) (Route, error) {
	pattern, target, ok := strings.Cut(raw, "=")
	if !ok {
		return Route{}, fmt.Errorf("%s-route %q: expected PATTERN=PATH", kind, raw)
	}

	return Route{Kind: kind, Pattern: strings.TrimSpace(pattern), Target: strings.TrimSpace(target)}, nil
}

// routeTable collects the routes of every route flag sharing it, in the
// order they appear on the command line.
type routeTable struct {
	routes []Route
}

func (t *routeTable) flag(kind RouteKind) MultiStringFlag {
	return MultiStringFlag{onSet: func(raw string) error {
		r, err := parseRoute(kind, raw)
		if err != nil {
			return err
		}

		t.routes = append(t.routes, r)
		return nil
	}}
}

func loadConfig() (*Config, error) {
	customHeaders, err := customheaders.Parse(header.Split())
	if err != nil {
		return nil, fmt.Errorf("unable to parse header string: %w", err)
	}

	config := &Config{
		General: General{
			MaxConns:               *maxConns,
			MaxURILength:           *maxURILength,
			MetricsAddress:         *metricsAddress,
			StatusPath:             *statusPath,
			HTTP2:                  *useHTTP2,
			PropagateCorrelationID: *propagateCorrelationID,
			ShowVersion:            *showVersion,
			CustomHeaders:          customHeaders,

			DisableCrossOriginRequests: *disableCrossOriginRequests,
		},
		Log: Log{
			Format:  *logFormat,
			Verbose: *logVerbose,
		},
		Sentry: Sentry{
			DSN:         *sentryDSN,
			Environment: *sentryEnvironment,
		},
		Server: Server{
			ReadTimeout:       *serverReadTimeout,
			ReadHeaderTimeout: *serverReadHeaderTimeout,
			WriteTimeout:      *serverWriteTimeout,
			ShutdownTimeout:   *serverShutdownTimeout,
		},
		Stream: Stream{
			FollowSymlinks: *followSymlinks,
			BufferChunks:   *streamBufferChunks,
		},
		RateLimit: RateLimit{
			LimitPerSecond: *rateLimit,
			Burst:          *rateLimitBurst,
		},
		Routes:               append([]Route(nil), routeFlags.routes...),
		ListenHTTPStrings:    listenHTTP,
		ListenProxyv2Strings: listenProxyv2,
	}

	if config.General.ShowVersion {
		return config, nil
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LogConfig prints the effective configuration at debug level
func LogConfig(config *Config) {
	routes := make([]string, 0, len(config.Routes))
	for _, r := range config.Routes {
		routes = append(routes, string(r.Kind)+":"+r.String())
	}

	log.WithFields(log.Fields{
		"default-config-filename":    flag.DefaultConfigFlagname,
		"listen-http":                config.ListenHTTPStrings.String(),
		"listen-proxyv2":             config.ListenProxyv2Strings.String(),
		"use-http2":                  config.General.HTTP2,
		"disable-cross-origin":       config.General.DisableCrossOriginRequests,
		"log-format":                 config.Log.Format,
		"metrics-address":            config.General.MetricsAddress,
		"status-path":                config.General.StatusPath,
		"propagate-correlation-id":   config.General.PropagateCorrelationID,
		"max-conns":                  config.General.MaxConns,
		"max-uri-length":             config.General.MaxURILength,
		"rate-limit":                 config.RateLimit.LimitPerSecond,
		"rate-limit-burst":           config.RateLimit.Burst,
		"follow-symlinks":            config.Stream.FollowSymlinks,
		"stream-buffer-chunks":       config.Stream.BufferChunks,
		"server-read-timeout":        config.Server.ReadTimeout,
		"server-read-header-timeout": config.Server.ReadHeaderTimeout,
		"server-write-timeout":       config.Server.WriteTimeout,
		"server-shutdown-timeout":    config.Server.ShutdownTimeout,
		"routes":                     routes,
	}).Debug("Start daemon with configuration")
}

// LoadConfig parses configuration settings passed as command line arguments or
// via config file, and populates a Config object with those values
func LoadConfig() (*Config, error) {
	initFlags()

	return loadConfig()
}
