// Package app assembles the client runtime: configuration, logging,
// credential storage, the interceptor pipeline, the router with its auth
// guard, the API services and the session manager.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/yndnr/ecoply-go/internal/api"
	"github.com/yndnr/ecoply-go/internal/cli/config"
	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/infra/buildinfo"
	"github.com/yndnr/ecoply-go/internal/infra/confloader"
	"github.com/yndnr/ecoply-go/internal/infra/shutdown"
	"github.com/yndnr/ecoply-go/internal/navigation"
	"github.com/yndnr/ecoply-go/internal/session"
	"github.com/yndnr/ecoply-go/internal/storage"
	"github.com/yndnr/ecoply-go/internal/telemetry/logger"
	"github.com/yndnr/ecoply-go/internal/telemetry/metric"
	"github.com/yndnr/ecoply-go/internal/transport"
)

// Options selects the configuration sources and test seams.
type Options struct {
	ConfigPath string
	EnvFile    string
	// Overrides are flag values keyed by dotted config path.
	Overrides map[string]any
	// LogOutput receives diagnostic logs. Nil means stderr.
	LogOutput io.Writer
	// Transport replaces the network transport under the pipeline.
	Transport http.RoundTripper
}

// App is a wired client runtime.
type App struct {
	Config     *config.CLIConfig
	ConfigPath string

	Logger    logger.Logger
	Store     storage.Store
	Metrics   *metric.Registry
	Router    *navigation.Router
	Client    *transport.Client
	Session   *session.Manager
	Offers    *api.OffersService
	Purchases *api.PurchasesService

	shutdown *shutdown.Handler
	opts     Options
}

// New loads the configuration and wires every component.
func New(opts Options) (*App, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.Load(config.LoadOptions{
		Path:      path,
		EnvFile:   opts.EnvFile,
		Overrides: opts.Overrides,
	})
	if err != nil {
		return nil, err
	}

	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	l, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: out})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(l)

	a := &App{
		Config:     cfg,
		ConfigPath: path,
		Logger:     l,
		Metrics:    metric.NewRegistry(),
		shutdown:   shutdown.NewHandler(shutdown.DefaultTimeout, l),
		opts:       opts,
	}

	a.Store, err = storage.Open(storage.Config{
		Backend:    cfg.Credential.Backend,
		Path:       cfg.Credential.Path,
		Passphrase: cfg.Credential.Passphrase,
	}, l)
	if err != nil {
		return nil, err
	}
	a.OnShutdown("credential store", func(context.Context) error {
		return a.Store.Close()
	})
	if cfg.Metrics.File != "" {
		a.OnShutdown("metrics", func(context.Context) error {
			return a.Metrics.WriteFile(cfg.Metrics.File)
		})
	}

	if err := a.wire(); err != nil {
		_ = a.Close()
		return nil, err
	}

	l.Debug("runtime ready",
		"server", cfg.Server,
		"backend", cfg.Credential.Backend,
		"version", buildinfo.Get().Version,
	)
	return a, nil
}

func (a *App) wire() error {
	cfg := a.Config

	a.Router = navigation.NewRouter(
		navigation.MustTable(navigation.DefaultRoutes()...),
		navigation.WithRouterLogger(a.Logger),
		navigation.WithRouterMetrics(a.Metrics),
	)
	a.Router.BeforeEach(navigation.AuthGuard(a.Store, navigation.RouteLogin, navigation.RouteDashboard))

	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return err
	}
	tcfg := transport.Config{
		BaseURL:   cfg.Server,
		Timeout:   timeout,
		CAFile:    cfg.Transport.CAFile,
		UserAgent: buildinfo.UserAgent(),
	}

	base := a.opts.Transport
	if base == nil {
		base, err = transport.NewBaseTransport(tcfg)
		if err != nil {
			return err
		}
	}

	pipeline := transport.NewPipeline(base).UseRequest(
		transport.RequestID(),
		transport.Throttle(cfg.Transport.RPS, cfg.Transport.Burst),
		transport.RequestAuthorizer(a.Store),
	)
	a.Client = transport.NewClient(tcfg, pipeline)

	a.Session = session.NewManager(a.Store, api.NewAuthService(a.Client),
		session.WithLogger(a.Logger),
		session.WithMetrics(a.Metrics),
	)
	a.Offers = api.NewOffersService(a.Client)
	a.Purchases = api.NewPurchasesService(a.Client)

	// The responder needs the manager, which needs the client.
	pipeline.UseResponse(
		transport.UnauthorizedResponder(a.Session, a.Router,
			transport.WithBasePath(a.Client.BasePath()),
			transport.WithUnauthorizedLogger(a.Logger),
			transport.WithUnauthorizedMetrics(a.Metrics),
		),
		transport.Metrics(a.Metrics),
		transport.Logging(a.Logger),
	)

	return a.Metrics.Register(metric.NewCollector(a.Session.Session()))
}

// Enter navigates to the screen a command runs on. When the guard sends
// the user elsewhere the command is refused with ErrNavigationBlocked.
func (a *App) Enter(route string, params map[string]string) error {
	loc, err := a.Router.Push(route, params)
	if err != nil {
		return err
	}
	if loc.Name() != route {
		return domain.ErrNavigationBlocked.WithDetails(fmt.Sprintf("%s requires a different session state, redirected to %s", route, loc.Name()))
	}
	return nil
}

// OnShutdown registers a hook run by Close, newest first.
func (a *App) OnShutdown(name string, fn func(context.Context) error) {
	a.shutdown.OnShutdown(name, fn)
}

// Close runs the shutdown hooks once.
func (a *App) Close() error {
	return a.shutdown.Shutdown()
}

// Done is closed once Close has run.
func (a *App) Done() <-chan struct{} {
	return a.shutdown.Done()
}

// WatchConfig reloads log.level whenever the configuration file changes.
// The watcher stops on Close.
func (a *App) WatchConfig() error {
	if err := os.MkdirAll(filepath.Dir(a.ConfigPath), 0700); err != nil {
		return err
	}

	w, err := confloader.Watch(a.ConfigPath, func(string) { a.reloadLogLevel() },
		confloader.WithWatcherLogger(a.Logger))
	if err != nil {
		return err
	}
	a.OnShutdown("config watcher", func(context.Context) error {
		return w.Close()
	})
	return nil
}

func (a *App) reloadLogLevel() {
	cfg, err := config.Load(config.LoadOptions{
		Path:      a.ConfigPath,
		EnvFile:   a.opts.EnvFile,
		Overrides: a.opts.Overrides,
	})
	if err != nil {
		a.Logger.Warn("ignoring invalid configuration change", "error", err)
		return
	}
	before := logger.CurrentLevel()
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		a.Logger.Warn("ignoring invalid log level", "error", err)
		return
	}
	if now := logger.CurrentLevel(); now != before {
		a.Logger.Info("log level changed", "level", now)
	}
}
