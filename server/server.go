// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/justapithecus/filebridge/log"
	"github.com/justapithecus/filebridge/metrics"
	"github.com/justapithecus/filebridge/pipeline"
)

// Default server settings.
const (
	DefaultAddr         = ":5000"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 2 * time.Minute
	shutdownTimeout     = 10 * time.Second
	defaultHistoryLimit = 20
)

// Config holds listener settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	return c
}

// Options configures a Server. Pipeline is required.
type Options struct {
	Pipeline *pipeline.Pipeline
	Metrics  *metrics.Collector
	Logger   *log.Logger
	Version  string
}

// Server routes HTTP requests to the pipeline.
type Server struct {
	p        *pipeline.Pipeline
	logger   *log.Logger
	registry *prometheus.Registry
	version  string
	router   chi.Router
}

// New builds the router.
func New(opts Options) (*Server, error) {
	if opts.Pipeline == nil {
		return nil, errors.New("server: pipeline is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNop()
	}
	s := &Server{
		p:        opts.Pipeline,
		logger:   opts.Logger,
		registry: metrics.NewRegistry(opts.Metrics),
		version:  opts.Version,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/contracts", s.handleContracts)
		api.Post("/upload/{endpoint}", s.handleUpload)
		api.Get("/download/{endpoint}", s.handleDownload)
		api.Get("/download/{endpoint}/file", s.handleDownloadFile)
		api.Get("/system/status", s.handleStatus)
		api.Get("/history/{endpoint}", s.handleHistory)
		api.Post("/demo/setup", s.handleDemoSetup)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg Config) error {
	cfg = cfg.withDefaults()
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", map[string]any{
			"addr":   cfg.Addr,
			"source": s.p.Source().Root(),
			"target": s.p.Target().Root(),
			"today":  s.p.Today(),
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down", nil)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request", map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		})
	})
}
