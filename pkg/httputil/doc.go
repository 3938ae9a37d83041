// Package httputil provides HTTP utilities for the treesplit API server.
//
// # Overview
//
// This package provides the plumbing shared by all API handlers:
//
//   - [RequestID]: Middleware that assigns every request an ID
//   - [WriteJSON] and [WriteError]: Response encoding
//   - [DecodeJSON]: Size-limited request decoding
//
// # Request IDs
//
// [RequestID] honors an incoming X-Request-ID header and otherwise generates
// a random UUID. The ID is echoed in the response header and stored in the
// request context, where [RequestIDFrom] retrieves it:
//
//	r := chi.NewRouter()
//	r.Use(httputil.RequestID)
//	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
//	    id := httputil.RequestIDFrom(r.Context())
//	    ...
//	})
//
// # Errors
//
// [WriteError] renders any error as a JSON body:
//
//	{"code": "INVALID_INPUT", "message": "...", "request_id": "..."}
//
// The status code comes from [errors.HTTPStatus], so handlers return
// code-tagged errors and never pick status codes themselves.
//
// [errors.HTTPStatus]: github.com/matzehuels/treesplit/pkg/errors.HTTPStatus
package httputil
