package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/fileroute/internal/config"
	"gitlab.com/gitlab-org/fileroute/internal/errortracking"
	"gitlab.com/gitlab-org/fileroute/internal/logging"
	"gitlab.com/gitlab-org/fileroute/internal/serving/disk"
	"gitlab.com/gitlab-org/fileroute/metrics"
)

// VERSION stores the information about the semantic version of application
var VERSION = "dev"

// REVISION stores the information about the git revision of application
var REVISION = "HEAD"

func main() {
	log.SetOutput(os.Stderr)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	if cfg.General.ShowVersion {
		fmt.Printf("fileroute %s (%s)\n", VERSION, REVISION)
		os.Exit(0)
	}

	if err := logging.ConfigureLogging(cfg.Log.Format, cfg.Log.Verbose); err != nil {
		log.WithError(err).Fatal("Failed to initialize logging")
	}

	log.WithFields(log.Fields{
		"version":  VERSION,
		"revision": REVISION,
	}).Print("fileroute")

	config.LogConfig(cfg)

	if err := errortracking.Initialize(cfg.Sentry.DSN, cfg.Sentry.Environment, VERSION); err != nil {
		log.WithError(err).Fatal("Failed to initialize error tracking")
	}

	if err := disk.LoadMIMETypes(); err != nil {
		log.WithError(err).Warn("Loading extended MIME database failed")
	}

	metrics.MustRegister()

	a, err := newApp(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to build routes")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		log.WithError(err).Fatal("Server failed")
	}

	log.Info("Server stopped")
}
