package transport

import (
	"net/http"
	"strings"

	"github.com/yndnr/ecoply-go/internal/telemetry/logger"
	"github.com/yndnr/ecoply-go/internal/telemetry/metric"
)

// Invalidator performs the forced logout.
type Invalidator interface {
	// Expire clears the session and reports whether a token was removed.
	Expire() (bool, error)
}

// Navigator receives the redirect issued after a forced logout.
type Navigator interface {
	Redirect(name string) error
}

// Default API paths that answer bad credentials with 401.
var DefaultExemptPaths = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/signup",
}

type unauthorizedConfig struct {
	loginRoute string
	basePath   string
	exempt     map[string]struct{}
	logger     logger.Logger
	metrics    *metric.Registry
}

// UnauthorizedOption configures UnauthorizedResponder.
type UnauthorizedOption func(*unauthorizedConfig)

// WithLoginRoute sets the route name redirected to. Default "login".
func WithLoginRoute(name string) UnauthorizedOption {
	return func(c *unauthorizedConfig) {
		c.loginRoute = name
	}
}

// WithExemptPaths replaces the exempt path list.
func WithExemptPaths(paths ...string) UnauthorizedOption {
	return func(c *unauthorizedConfig) {
		c.exempt = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			c.exempt[p] = struct{}{}
		}
	}
}

// WithBasePath sets the path prefix of the API base URL, e.g. "/ecoply".
// Exempt paths are matched below it.
func WithBasePath(prefix string) UnauthorizedOption {
	return func(c *unauthorizedConfig) {
		c.basePath = strings.TrimRight(prefix, "/")
	}
}

// WithUnauthorizedLogger sets the logger.
func WithUnauthorizedLogger(l logger.Logger) UnauthorizedOption {
	return func(c *unauthorizedConfig) {
		c.logger = l
	}
}

// WithUnauthorizedMetrics counts forced logouts in r.
func WithUnauthorizedMetrics(r *metric.Registry) UnauthorizedOption {
	return func(c *unauthorizedConfig) {
		c.metrics = r
	}
}

// UnauthorizedResponder handles a delivered 401 by expiring the session
// and redirecting to the login route. The response itself is passed
// through unchanged; the request is not retried.
//
// Transport errors, every other status, and 401s from exempt paths pass
// through without side effects. nav may be nil.
func UnauthorizedResponder(inv Invalidator, nav Navigator, opts ...UnauthorizedOption) ResponseInterceptor {
	cfg := unauthorizedConfig{
		loginRoute: "login",
		logger:     logger.Default(),
	}
	WithExemptPaths(DefaultExemptPaths...)(&cfg)
	for _, opt := range opts {
		opt(&cfg)
	}
	exempt := make(map[string]struct{}, len(cfg.exempt))
	for p := range cfg.exempt {
		exempt[cfg.basePath+p] = struct{}{}
	}
	log := cfg.logger.With("component", "unauthorized")

	return func(req *http.Request, resp *http.Response, err error) (*http.Response, error) {
		if err != nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
			return resp, err
		}
		if _, ok := exempt[req.URL.Path]; ok {
			return resp, err
		}

		l := log.WithContext(req.Context())
		cfg.metrics.ForcedLogout()

		closed, expErr := inv.Expire()
		if expErr != nil {
			l.Error("forced logout failed", "path", req.URL.Path, "error", expErr)
		} else if closed {
			l.Warn("session rejected by server", "path", req.URL.Path)
		}

		if nav != nil {
			if navErr := nav.Redirect(cfg.loginRoute); navErr != nil {
				l.Error("redirect after forced logout failed", "route", cfg.loginRoute, "error", navErr)
			}
		}
		return resp, err
	}
}
