// Package server provides the HTTP API for kari.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/MaterialFill65/Search-kari/internal/config"
	"github.com/MaterialFill65/Search-kari/internal/metrics"
	"github.com/MaterialFill65/Search-kari/internal/search"
)

// Server is the HTTP server for the kari API.
type Server struct {
	engine  *search.Engine
	config  *config.Config
	metrics *metrics.Metrics
	logger  *zap.Logger
	// inflight coalesces identical concurrent queries.
	inflight singleflight.Group
	server   *http.Server
}

// NewServer creates a server with the given dependencies. m may be nil, in
// which case /metrics is not served.
func NewServer(
	engine *search.Engine,
	cfg *config.Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:  engine,
		config:  cfg,
		metrics: m,
		logger:  logger,
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/search", s.handleSearchGet)
		r.Get("/threads/{id}", s.handleGetThread)
		r.Get("/status", s.handleStatus)
		r.Post("/index/reload", s.handleReload)
	})
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
