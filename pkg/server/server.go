// Package server provides the HTTP API in front of the suggestion pipeline.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"caseflow-hq/polaris/pkg/config"
	"caseflow-hq/polaris/pkg/server/handlers"
	"caseflow-hq/polaris/pkg/server/middleware"
	"caseflow-hq/polaris/pkg/telemetry/health"
	"caseflow-hq/polaris/pkg/telemetry/metrics"
)

// Dependencies carries the collaborators the API routes requests to.
// Suggester, Settings and Registry are required; the rest degrade
// gracefully when nil: no Collector drops the scrape endpoint and all
// metric recording, no Health drops the probe endpoints, no Auditor
// disables audit recording.
type Dependencies struct {
	// Suggester runs the suggestion pipeline and applies provider
	// switches. In production this is the suggest.Orchestrator.
	Suggester handlers.Suggester

	// Settings resolves the active provider selection for listings.
	Settings handlers.ActiveSource

	// Registry reports cached provider health for listings.
	Registry handlers.StatusSource

	// Collector records API metrics and serves the Prometheus endpoint.
	Collector *metrics.Collector

	// Auditor queues one audit record per suggestion request.
	Auditor handlers.Auditor

	// Health serves the liveness and readiness probes.
	Health *health.Checker

	// Logger is the base logger handlers derive theirs from.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// Version, Commit and BuildTime are reported at /version.
	Version   string
	Commit    string
	BuildTime string
}

// Server is the HTTP API server for the suggestion service.
type Server struct {
	config       *config.ServerConfig
	telemetry    *config.TelemetryConfig
	deps         Dependencies
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	stopOnce     sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates an API server around the given collaborators.
func NewServer(cfg *config.ServerConfig, telemetry *config.TelemetryConfig, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:       cfg,
		telemetry:    telemetry,
		deps:         deps,
		logger:       logger.With("component", "server"),
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "address", s.config.ListenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Set up signal handlers
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a blocked Start to shut the server down. Safe to call from any
// goroutine, more than once, and before Start.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.shutdownChan)
	})
}

// Shutdown gracefully shuts down the server. In-flight requests get
// ShutdownTimeout to complete before their connections are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("API server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Create handlers
	suggestionsHandler := handlers.NewSuggestionsHandler(s.deps.Suggester, s.deps.Collector, s.deps.Auditor, s.deps.Logger)
	switchHandler := handlers.NewProviderSwitchHandler(s.deps.Suggester, s.deps.Collector, s.deps.Logger)
	listHandler := handlers.NewProviderListHandler(s.deps.Settings, s.deps.Registry, s.deps.Logger)

	// Register routes
	mux.Handle("/v1/suggestions", suggestionsHandler)
	mux.Handle("/v1/providers/switch", switchHandler)
	mux.Handle("/v1/providers", listHandler)
	mux.Handle("/version", health.VersionHandler(s.deps.Version, s.deps.Commit, s.deps.BuildTime))

	if s.deps.Health != nil {
		mux.Handle(s.telemetry.Health.LivenessPath, s.deps.Health.LivenessHandler())
		mux.Handle(s.telemetry.Health.ReadinessPath, s.deps.Health.ReadinessHandler())
	}

	if s.telemetry.Metrics.Enabled && s.deps.Collector != nil {
		mux.Handle(s.telemetry.Metrics.Path, s.deps.Collector.Handler())
	}

	// Apply middleware chain
	var handler http.Handler = mux

	// CORS middleware
	corsConfig := s.convertCORSConfig()
	handler = middleware.CORSMiddleware(corsConfig)(handler)

	// Logging middleware
	handler = middleware.LoggingMiddleware(handler)

	// Request ID middleware, outside logging so the logged lines carry
	// the ID
	handler = middleware.RequestIDMiddleware(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler without starting a listener.
// Integration tests serve it through httptest.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// convertCORSConfig converts config.CORSConfig to middleware.CORSConfig.
func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	return &middleware.CORSConfig{
		Enabled:        s.config.CORS.Enabled,
		AllowedOrigins: s.config.CORS.AllowedOrigins,
		AllowedMethods: s.config.CORS.AllowedMethods,
		AllowedHeaders: s.config.CORS.AllowedHeaders,
	}
}
