// Package server exposes the differentiation engine over HTTP.
//
// Routes:
//
//	GET  /health       liveness check
//	GET  /schema       tool schema for agent registration
//	POST /tool         execute a tool call
//	POST /v1/derive    differentiate an expression with a step trace
//	POST /v1/simplify  simplify an expression
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	servertiming "github.com/mitchellh/go-server-timing"

	symdiff "github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/config"
	"github.com/njchilds90/symdiff/internal/observability"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

const shutdownTimeout = 10 * time.Second

// Server holds the HTTP routes around an Engine.
type Server struct {
	engine   *symdiff.Engine
	obs      *observability.Config
	logger   *slog.Logger
	origins  []string
	maxBytes int64
	debug    bool
	router   *gin.Engine
}

// Option is a functional option for configuring a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObservability sets the tracing, metrics and Server-Timing configuration.
// The config must already be initialized.
func WithObservability(cfg *observability.Config) Option {
	return func(s *Server) {
		s.obs = cfg
	}
}

// WithAllowOrigins sets the CORS origins. "*" or an empty list allows any.
func WithAllowOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithMaxBodyBytes caps request bodies. n <= 0 restores DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n <= 0 {
			n = DefaultMaxBodyBytes
		}
		s.maxBytes = n
	}
}

// WithDebug includes panic values in 500 responses.
func WithDebug(debug bool) Option {
	return func(s *Server) {
		s.debug = debug
	}
}

// New creates a Server for en.
func New(en *symdiff.Engine, opts ...Option) *Server {
	s := &Server{
		engine:   en,
		logger:   slog.Default(),
		maxBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.obs == nil {
		s.obs = observability.NewConfig()
	}
	s.router = s.routes()
	return s
}

// FromConfig builds the engine, observability and server described by cfg.
func FromConfig(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := []observability.Option{
		observability.WithServiceName(cfg.Observability.ServiceName),
		observability.WithServiceVersion(cfg.Observability.ServiceVersion),
	}
	if cfg.Server.ServerTiming {
		opts = append(opts, observability.WithServerTiming())
	}
	obs := observability.NewConfig(opts...)
	en := symdiff.New(append(cfg.EngineOptions(), symdiff.WithLogger(logger))...)
	return New(en,
		WithLogger(logger),
		WithObservability(obs),
		WithAllowOrigins(cfg.Server.AllowOrigins...),
		WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		WithDebug(cfg.Server.DebugMode),
	), nil
}

// Router returns the underlying gin engine.
func (s *Server) Router() *gin.Engine { return s.router }

// Handler returns the root handler, wrapped with the Server-Timing middleware
// when it is enabled.
func (s *Server) Handler() http.Handler {
	if s.obs.ServerTimingEnabled() {
		return servertiming.Middleware(s.router, nil)
	}
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), s.requestLogger(), s.recovery())
	r.Use(cors.New(s.corsConfig()))

	r.GET("/health", s.handleHealth)
	r.GET("/schema", s.handleSchema)
	r.POST("/tool", s.handleTool)

	v1 := r.Group("/v1")
	v1.POST("/derive", s.handleDerive)
	v1.POST("/simplify", s.handleSimplify)
	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "If-None-Match", HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", "ETag", "Server-Timing", HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range s.origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(s.origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = s.origins
	return cfg
}

// NewHTTPServer returns an http.Server for h with the configured timeouts.
func NewHTTPServer(cfg config.ServerConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           h,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Serve builds the server described by cfg and runs it until ctx is cancelled.
func Serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	s, err := FromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}
	return Run(ctx, NewHTTPServer(cfg.Server, s.Handler()), logger)
}

// Run serves srv until ctx is cancelled, then shuts it down gracefully.
func Run(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("symdiff server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
