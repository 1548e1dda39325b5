// Package server provides the HTTP API: CSV upload, artifact download, and
// filtering of the processed table.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/programmers-nightmare/research-helper/internal/config"
	"github.com/programmers-nightmare/research-helper/internal/filter"
	"github.com/programmers-nightmare/research-helper/internal/observability"
	"github.com/programmers-nightmare/research-helper/internal/pipeline"
)

// Server is the HTTP API server.
type Server struct {
	router        chi.Router
	httpServer    *http.Server
	pipeline      *pipeline.Pipeline
	filter        *filter.Service
	paths         config.PathsConfig
	maxUploadSize int64
	uploadLimiter *rate.Limiter
	validate      *validator.Validate
	metrics       *observability.Metrics
	logger        zerolog.Logger
}

// New creates the HTTP server with all dependencies.
func New(
	cfg config.ServerConfig,
	paths config.PathsConfig,
	pipe *pipeline.Pipeline,
	filterSvc *filter.Service,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		pipeline:      pipe,
		filter:        filterSvc,
		paths:         paths,
		maxUploadSize: cfg.MaxUploadBytes,
		uploadLimiter: rate.NewLimiter(rate.Limit(cfg.UploadRateLimit), cfg.UploadRateBurst),
		validate:      validator.New(),
		metrics:       metrics,
		logger:        logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)

	r.Get("/healthz", s.healthHandler)

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)
		r.Post("/upload", s.uploadHandler)
	})

	r.Get("/artifacts/{kind}/{name}", s.artifactHandler)
	r.Post("/filter", s.filterHandler)

	return r
}

// Handler returns the root HTTP handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
