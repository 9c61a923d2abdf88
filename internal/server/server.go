// Package server exposes snapshots and process control over HTTP and serves
// the dashboard build.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	constants "pimonitor/config"
	"pimonitor/internal/access"
	"pimonitor/internal/logger"
	"pimonitor/internal/process"
	"pimonitor/internal/snapshot"
)

// Config holds the HTTP server settings
type Config struct {
	Address         string // host:port; empty host binds every interface
	StaticDir       string
	RateLimit       rate.Limit
	RateBurst       int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Address:         fmt.Sprintf(":%d", constants.DEFAULT_PORT),
		StaticDir:       constants.DEFAULT_STATIC_DIR,
		RateLimit:       rate.Limit(constants.DEFAULT_RATE_LIMIT),
		RateBurst:       constants.DEFAULT_RATE_BURST,
		ReadTimeout:     constants.DEFAULT_READ_TIMEOUT_SECONDS * time.Second,
		WriteTimeout:    constants.DEFAULT_WRITE_TIMEOUT_SECONDS * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: constants.DEFAULT_SHUTDOWN_TIMEOUT_SECONDS * time.Second,
		MetricsEnabled:  true,
	}
}

// Server represents the HTTP server
type Server struct {
	config      *Config
	gate        *access.Gate
	composer    *snapshot.Composer
	httpServer  *http.Server
	rateLimiter *rate.Limiter
}

// New creates a server answering for gate with snapshots from composer
func New(config *Config, gate *access.Gate, composer *snapshot.Composer) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	s := &Server{
		config:      config,
		gate:        gate,
		composer:    composer,
		rateLimiter: rate.NewLimiter(config.RateLimit, config.RateBurst),
	}

	s.httpServer = &http.Server{
		Addr:         config.Address,
		Handler:      s.Handler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

// Handler returns the full route table behind the middleware chain
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+pathLiveSync, s.handleLiveSync)
	mux.HandleFunc("GET "+pathDeadSync, s.handleDeadSync)
	mux.HandleFunc("GET "+pathProcInfo, s.handleProcInfo)
	mux.HandleFunc("GET "+pathKillProc, s.controlHandler(process.ActionKill))
	mux.HandleFunc("GET "+pathTermProc, s.controlHandler(process.ActionTerminate))
	mux.HandleFunc("GET "+pathSuspProc, s.controlHandler(process.ActionSuspend))
	mux.HandleFunc("GET "+pathResmProc, s.controlHandler(process.ActionResume))
	mux.HandleFunc("GET "+pathHealth, s.handleHealth)
	if s.config.MetricsEnabled {
		mux.Handle("GET "+pathMetrics, promhttp.Handler())
	}
	mux.Handle("/", staticHandler(s.config.StaticDir))

	return s.withMiddleware(s.traversalGuard(mux))
}

// Listen binds the configured address
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return ln, nil
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests within the shutdown timeout
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Serving on %s", ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// Run listens and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	logger.Info("Shutting down server...")
	return s.httpServer.Shutdown(shutdownCtx)
}
