package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-multierror"
	proxyproto "github.com/pires/go-proxyproto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"gitlab.com/gitlab-org/fileroute/internal/config"
	"gitlab.com/gitlab-org/fileroute/internal/customheaders"
	"gitlab.com/gitlab-org/fileroute/internal/handlers"
	"gitlab.com/gitlab-org/fileroute/internal/healthcheck"
	"gitlab.com/gitlab-org/fileroute/internal/logging"
	"gitlab.com/gitlab-org/fileroute/internal/netutil"
	"gitlab.com/gitlab-org/fileroute/internal/ratelimiter"
	"gitlab.com/gitlab-org/fileroute/internal/rejectmethods"
	"gitlab.com/gitlab-org/fileroute/internal/router"
	"gitlab.com/gitlab-org/fileroute/internal/serving/disk"
	"gitlab.com/gitlab-org/fileroute/internal/urilimiter"
	"gitlab.com/gitlab-org/fileroute/internal/vfs"
	"gitlab.com/gitlab-org/fileroute/internal/vfs/local"
	"gitlab.com/gitlab-org/fileroute/metrics"
)

type theApp struct {
	config  *config.Config
	handler http.Handler
}

func newApp(cfg *config.Config) (*theApp, error) {
	handler, err := buildHandler(cfg)
	if err != nil {
		return nil, err
	}

	return &theApp{config: cfg, handler: handler}, nil
}

// buildRoutes registers the configured routes in command line order
func buildRoutes(cfg *config.Config, reader *disk.Reader) (*router.Router, error) {
	rt := router.NewRouter()

	for _, r := range cfg.Routes {
		m, err := r.Matcher()
		if err != nil {
			return nil, err
		}

		rt.Handle(m, reader.ServeFile)
	}

	return rt, nil
}

// targetChecks reports the status page unhealthy while a route target is missing
func targetChecks(routes []config.Route) []healthcheck.Check {
	checks := make([]healthcheck.Check, 0, len(routes))

	for _, r := range routes {
		target := r.Target
		checks = append(checks, func() error {
			if _, err := os.Stat(target); err != nil {
				return fmt.Errorf("route target %q: %w", target, err)
			}
			return nil
		})
	}

	return checks
}

func buildHandler(cfg *config.Config) (http.Handler, error) {
	localFS := local.New(cfg.Stream.FollowSymlinks)
	reader := disk.New(vfs.Instrumented(localFS, localFS.Name()), cfg.Stream.BufferChunks)

	routes, err := buildRoutes(cfg, reader)
	if err != nil {
		return nil, err
	}

	// Traversal segments must reach the directory matcher uncleaned.
	m := mux.NewRouter().SkipClean(true)
	if cfg.General.StatusPath != "" {
		m.Handle(cfg.General.StatusPath, healthcheck.Handler(targetChecks(cfg.Routes)...))
	}
	m.PathPrefix("/").Handler(routes)

	var handler http.Handler = m
	handler = customheaders.Middleware(cfg.General.CustomHeaders)(handler)

	if cfg.RateLimit.LimitPerSecond > 0 {
		handler = ratelimiter.New(cfg.RateLimit.LimitPerSecond,
			ratelimiter.WithBurstSize(cfg.RateLimit.Burst)).Middleware(handler)
	}

	handler = urilimiter.NewMiddleware(handler, cfg.General.MaxURILength)
	handler = rejectmethods.NewMiddleware(handler)
	handler = handlers.CorsHandler(cfg.General.DisableCrossOriginRequests, handler)

	handler, err = logging.BasicAccessLogger(handler, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	var correlationOpts []correlation.InboundHandlerOption
	if cfg.General.PropagateCorrelationID {
		correlationOpts = append(correlationOpts, correlation.WithPropagation())
	}
	handler = correlation.InjectCorrelationID(handler, correlationOpts...)

	handler = promhttp.InstrumentHandlerCounter(metrics.ProcessedRequests, handler)

	handler = ghandlers.RecoveryHandler(
		ghandlers.RecoveryLogger(log.StandardLogger()),
		ghandlers.PrintRecoveryStack(true),
	)(handler)

	return handler, nil
}

func (a *theApp) newServer(handler http.Handler) *http.Server {
	if a.config.General.HTTP2 {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	return &http.Server{
		Handler:           handler,
		ReadTimeout:       a.config.Server.ReadTimeout,
		ReadHeaderTimeout: a.config.Server.ReadHeaderTimeout,
		WriteTimeout:      a.config.Server.WriteTimeout,
	}
}

type listener struct {
	net.Listener
	server *http.Server
	name   string
}

func (a *theApp) listen() ([]listener, error) {
	var listeners []listener

	closeAll := func() {
		for _, l := range listeners {
			l.Close()
		}
	}

	limiter := netutil.NewLimiter(a.config.General.MaxConns)
	for _, addr := range a.config.ListenHTTPStrings.Split() {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to listen on addr %s: %w", addr, err)
		}

		listeners = append(listeners, listener{Listener: limiter.Wrap(l), server: a.newServer(a.handler), name: "http"})
	}

	for _, addr := range a.config.ListenProxyv2Strings.Split() {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to listen on addr %s: %w", addr, err)
		}

		l = &proxyproto.Listener{
			Listener: limiter.Wrap(l),
			Policy: func(upstream net.Addr) (proxyproto.Policy, error) {
				return proxyproto.REQUIRE, nil
			},
		}

		listeners = append(listeners, listener{Listener: l, server: a.newServer(a.handler), name: "proxyv2"})
	}

	if a.config.General.MetricsAddress != "" {
		l, err := net.Listen("tcp", a.config.General.MetricsAddress)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to listen on addr %s: %w", a.config.General.MetricsAddress, err)
		}

		listeners = append(listeners, listener{Listener: l, server: a.newServer(promhttp.Handler()), name: "metrics"})
	}

	return listeners, nil
}

// Run serves every listener until ctx is done, then shuts the servers down
// gracefully within the configured timeout.
func (a *theApp) Run(ctx context.Context) error {
	listeners, err := a.listen()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	for _, l := range listeners {
		l := l
		log.WithFields(log.Fields{"addr": l.Addr().String(), "listener": l.name}).Info("Listening")

		g.Go(func() error {
			if err := l.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", l.name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()

		var result *multierror.Error
		for _, l := range listeners {
			if err := l.server.Shutdown(shutdownCtx); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s server shutdown: %w", l.name, err))
			}
		}

		return result.ErrorOrNil()
	})

	return g.Wait()
}
