package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/treesplit/pkg/errors"
	"github.com/matzehuels/treesplit/pkg/httputil"
	"github.com/matzehuels/treesplit/pkg/observability"
)

// observe logs each request and reports it to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)

		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", httputil.RequestIDFrom(r.Context()))
	})
}

// recoverer turns handler panics into internal error responses.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				err := errors.New(errors.ErrCodeInternal, "internal error")
				observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, fmt.Errorf("panic: %v", v))
				s.logger.Error("panic", "err", v, "request_id", httputil.RequestIDFrom(r.Context()))
				httputil.WriteError(w, r, err)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// fail reports err to the hooks and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	if errors.HTTPStatus(err) >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err, "request_id", httputil.RequestIDFrom(r.Context()))
	}
	httputil.WriteError(w, r, err)
}

func errNotFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}

func errMethod(method, path string) error {
	return errors.New(errors.ErrCodeUnsupported, "method %s not allowed on %s", method, path)
}
