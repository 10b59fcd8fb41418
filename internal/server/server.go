// Package server exposes the netvis pipeline over HTTP.
//
// Routes:
//
//	POST /v1/layout           body: save bytes → renderer feed (JSON)
//	POST /v1/render/{format}  body: save bytes → artifact (json, dot, svg, png)
//	GET  /healthz             liveness and version
//	GET  /metrics             Prometheus exposition, when metrics are enabled
//
// Layout and render settings can be overridden per request with the query
// parameters root_ring, child_radius, shrink, min_radius, seed_step,
// background, hide_labels and refresh.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/netvis/pkg/metrics"
	"github.com/matzehuels/netvis/pkg/pipeline"
)

// DefaultMaxBodyBytes bounds uploaded saves.
const DefaultMaxBodyBytes = 8 << 20

// Config configures a Server.
type Config struct {
	Runner  *pipeline.Runner
	Metrics *metrics.Registry // nil disables /metrics and request metrics
	Logger  *log.Logger

	// Options are the defaults every request starts from.
	Options pipeline.Options

	// MaxBodyBytes bounds request bodies. Zero uses DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// Version is reported by /healthz.
	Version string
}

// Server is the HTTP API. It is an http.Handler.
type Server struct {
	cfg    Config
	router chi.Router
}

// New creates a server. A nil Runner gets an uncached one.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.logRequests)
	if s.cfg.Metrics != nil {
		r.Use(s.recordMetrics)
	}

	r.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(bodyLimit(s.cfg.MaxBodyBytes))
		r.Post("/layout", s.handleLayout)
		r.Post("/render/{format}", s.handleRender)
	})
	return r
}

// ServeHTTP dispatches to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.cfg.Logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
