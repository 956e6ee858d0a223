package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bkarpinos/shorty/internal/config"
	"github.com/bkarpinos/shorty/internal/metrics"
	"github.com/bkarpinos/shorty/internal/registry"
	"github.com/bkarpinos/shorty/internal/resolver"
	"github.com/bkarpinos/shorty/internal/server"
	"github.com/bkarpinos/shorty/internal/session"
	"github.com/bkarpinos/shorty/internal/shortcode"
	"github.com/bkarpinos/shorty/internal/shortener"
	"github.com/bkarpinos/shorty/internal/storage"
)

// App wires config, storage, the link services and the session.
// The HTTP server is built on demand by NewServer.
type App struct {
	Cfg       *config.Config
	Logger    *zap.Logger
	Store     storage.Store
	Registry  *registry.Registry
	Sessions  *session.Manager
	Shortener *shortener.Service
	Resolver  *resolver.Resolver
	Metrics   *metrics.Metrics

	generator *shortcode.Generator
	now       func() time.Time
}

// Option adjusts how New wires the application
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now in every time-dependent component
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds a fully wired application instance
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := storage.Open(cfg.StorageDriver, cfg.StorageDir, cfg.DatabaseURL, logger.Named("storage"))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	reg := registry.New(store, registry.WithClock(o.now), registry.WithLogger(logger.Named("registry")))
	sessions := session.NewManager(store, cfg.SessionSecret,
		session.WithDelay(cfg.RegistrationDelay),
		session.WithClock(o.now),
		session.WithLogger(logger.Named("session")),
	)
	gen := shortcode.New()
	svc := shortener.New(reg, gen, cfg.BaseURL, logger.Named("shortener"))
	res := resolver.New(reg, o.now, logger.Named("resolver"))
	m := metrics.New()

	return &App{
		Cfg:       cfg,
		Logger:    logger,
		Store:     store,
		Registry:  reg,
		Sessions:  sessions,
		Shortener: svc,
		Resolver:  res,
		Metrics:   m,
		generator: gen,
		now:       o.now,
	}, nil
}

// SetPort overrides the configured port. A base URL derived from the port
// follows it, and the shortener is rebuilt around the same generator.
func (a *App) SetPort(port int) {
	a.Cfg.SetPort(port)
	a.Shortener = shortener.New(a.Registry, a.generator, a.Cfg.BaseURL, a.Logger.Named("shortener"))
}

// NewServer builds the HTTP server from the current config
func (a *App) NewServer() *server.Server {
	return server.NewServer(server.Options{
		Port:          a.Cfg.Port,
		BaseURL:       a.Cfg.BaseURL,
		NotFoundURL:   a.Cfg.NotFoundURL,
		StorageDriver: a.Cfg.StorageDriver,
		Registry:      a.Registry,
		Sessions:      a.Sessions,
		Shortener:     a.Shortener,
		Resolver:      a.Resolver,
		Metrics:       a.Metrics,
		Logger:        a.Logger.Named("http"),
		Now:           a.now,
	})
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}
