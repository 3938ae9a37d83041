// Package server exposes the partition pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz           build information
//	GET  /v1/palettes       builtin palettes
//	POST /v1/partition      weights + rect → leaves
//	POST /v1/render         pipeline options → one artifact (?format=svg)
//
// Every response carries an X-Request-ID header; errors are JSON bodies
// produced by [httputil.WriteError].
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/treesplit/pkg/httputil"
	"github.com/matzehuels/treesplit/pkg/pipeline"
)

// DefaultAddr is the default listen address.
const DefaultAddr = "127.0.0.1:8080"

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	Addr         string
	MaxBodyBytes int64
	Runner       *pipeline.Runner
	Logger       *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	addr         string
	maxBodyBytes int64
	runner       *pipeline.Runner
	logger       *log.Logger
	router       chi.Router
}

// New creates a server. A nil Runner gets an uncached runner; a nil
// Logger discards output.
func New(cfg Config) *Server {
	s := &Server{
		addr:         cfg.Addr,
		maxBodyBytes: cfg.MaxBodyBytes,
		runner:       cfg.Runner,
		logger:       cfg.Logger,
	}
	if s.addr == "" {
		s.addr = DefaultAddr
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = httputil.DefaultMaxBodyBytes
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(httputil.RequestID)
	r.Use(s.observe)
	r.Use(s.recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, errNotFound(r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorStatus(w, r, http.StatusMethodNotAllowed, errMethod(r.Method, r.URL.Path))
	})

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/palettes", s.handlePalettes)
		r.Post("/partition", s.handlePartition)
		r.Post("/render", s.handleRender)
	})
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.addr }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
