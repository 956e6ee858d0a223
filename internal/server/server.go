package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bkarpinos/shorty/internal/metrics"
	"github.com/bkarpinos/shorty/internal/registry"
	"github.com/bkarpinos/shorty/internal/resolver"
	"github.com/bkarpinos/shorty/internal/session"
	"github.com/bkarpinos/shorty/internal/shortener"
)

// Options collects the server's collaborators
type Options struct {
	Port          int
	BaseURL       string
	NotFoundURL   string
	StorageDriver string

	Registry  *registry.Registry
	Sessions  *session.Manager
	Shortener *shortener.Service
	Resolver  *resolver.Resolver
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
}

// Server represents the HTTP server for short links
type Server struct {
	registry  *registry.Registry
	sessions  *session.Manager
	shortener *shortener.Service
	resolver  *resolver.Resolver
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time

	engine   *gin.Engine
	server   *http.Server
	baseURL  string
	notFound string
	driver   string
}

// NewServer creates a new short link HTTP server
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", opts.Port)
	}

	s := &Server{
		registry:  opts.Registry,
		sessions:  opts.Sessions,
		shortener: opts.Shortener,
		resolver:  opts.Resolver,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       opts.Now,
		baseURL:   baseURL,
		notFound:  opts.NotFoundURL,
		driver:    opts.StorageDriver,
	}
	s.engine = s.routes()
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	// Treat all upstreams as untrusted
	if err := r.SetTrustedProxies(nil); err != nil {
		s.logger.Warn("SetTrustedProxies", zap.Error(err))
	}
	r.Use(logMiddleware(s.logger), gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.New("pages").Funcs(templateFuncs).Parse(pages)))

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.GET("/info", s.handleInfo)

	// Browser flow
	r.GET("/", s.handleRootPage)
	r.POST("/register", s.handleRegister)
	r.POST("/logout", s.handleLogout)
	r.POST("/links", s.handleCreate)

	api := r.Group("/api/v1", s.requireToken)
	api.POST("/links", s.apiCreate)
	api.GET("/links", s.apiList)
	api.GET("/links/:shortcode", s.apiGet)

	// Any other single segment is a shortcode
	r.GET("/:shortcode", s.handleRedirect)

	return r
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// BaseURL is the public prefix of every short link
func (s *Server) BaseURL() string {
	return s.baseURL
}

// Start begins serving short links
func (s *Server) Start() error {
	s.logger.Info("server started", zap.String("addr", s.server.Addr), zap.String("base_url", s.baseURL))
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// logMiddleware logs incoming requests
func logMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Call the next handler
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.RequestURI()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
