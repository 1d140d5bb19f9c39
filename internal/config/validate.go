package config

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	errNoListener            = errors.New("no listener defined, please specify at least one --listen-http or --listen-proxyv2")
	errNoRoute               = errors.New("no route defined, please specify at least one --dir-route or --file-route")
	errEmptyTarget           = errors.New("route target path must not be empty")
	errInvalidBufferChunks   = errors.New("stream-buffer-chunks must be greater than or equal to 1")
	errNegativeMaxConns      = errors.New("max-conns must not be negative")
	errNegativeRateLimit     = errors.New("rate-limit must not be negative")
	errInvalidRateLimitBurst = errors.New("rate-limit-burst must be greater than or equal to 1 when rate-limit is set")
)

func validateConfig(config *Config) error {
	var result *multierror.Error

	if config.ListenHTTPStrings.Len()+config.ListenProxyv2Strings.Len() == 0 {
		result = multierror.Append(result, errNoListener)
	}

	if err := validateRoutes(config.Routes); err != nil {
		result = multierror.Append(result, err)
	}

	if err := validateLimits(config); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

func validateRoutes(routes []Route) error {
	if len(routes) == 0 {
		return errNoRoute
	}

	var result *multierror.Error
	for _, r := range routes {
		if r.Target == "" {
			result = multierror.Append(result, fmt.Errorf("%s-route %q: %w", r.Kind, r.Pattern, errEmptyTarget))
			continue
		}

		if _, err := r.Matcher(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

func validateLimits(config *Config) error {
	var result *multierror.Error

	if config.Stream.BufferChunks < 1 {
		result = multierror.Append(result, errInvalidBufferChunks)
	}
	if config.General.MaxConns < 0 {
		result = multierror.Append(result, errNegativeMaxConns)
	}
	if config.RateLimit.LimitPerSecond < 0 {
		result = multierror.Append(result, errNegativeRateLimit)
	}
	if config.RateLimit.LimitPerSecond > 0 && config.RateLimit.Burst < 1 {
		result = multierror.Append(result, errInvalidRateLimitBurst)
	}

	return result.ErrorOrNil()
}
