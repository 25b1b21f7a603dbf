// FILE: logtide-go/middleware.go
package logtide

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// MiddlewareOptions configures the HTTP request-logging middleware
type MiddlewareOptions struct {
	// Service is the service name stamped on every request log
	Service string
	// LogRequests logs each incoming request at info level
	LogRequests bool
	// LogResponses logs each response with a status-dependent level:
	// 5xx error, 4xx warn, otherwise info
	LogResponses bool
	// IncludeHeaders copies request headers into the log metadata
	IncludeHeaders bool
	// SkipPaths lists exact paths that are never logged. /health and
	// /healthz are always skipped unless DisableHealthSkip is set.
	SkipPaths        []string
	DisableHealthSkip bool
}

// HTTPMiddleware returns a net/http middleware that logs requests and
// responses through the client. An X-Trace-ID request header becomes the
// scoped trace id for everything logged during the request, including the
// handler's own logging calls via the request context. Panics are logged and
// re-raised. The middleware is a thin adapter over the core logging entry
// points; it adds no delivery behavior of its own.
func HTTPMiddleware(client *Client, opts MiddlewareOptions) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(opts.SkipPaths)+2)
	for _, p := range opts.SkipPaths {
		skip[p] = true
	}
	if !opts.DisableHealthSkip {
		skip["/health"] = true
		skip["/healthz"] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			if traceID := r.Header.Get("X-Trace-ID"); traceID != "" {
				ctx = WithTraceID(ctx, traceID)
				r = r.WithContext(ctx)
			}

			if opts.LogRequests {
				md := Metadata{
					"method": r.Method,
					"path":   r.URL.Path,
					"ip":     clientIP(r),
				}
				if opts.IncludeHeaders {
					md["headers"] = headerMap(r.Header)
				}
				_ = client.Info(ctx, opts.Service, fmt.Sprintf("%s %s", r.Method, r.URL.Path), md)
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				duration := time.Since(start)
				if p := recover(); p != nil {
					_ = client.Error(ctx, opts.Service,
						fmt.Sprintf("Request panic: %s %s - %v", r.Method, r.URL.Path, p),
						Metadata{
							"method":      r.Method,
							"path":        r.URL.Path,
							"duration_ms": float64(duration.Microseconds()) / 1000.0,
						})
					panic(p)
				}

				if !opts.LogResponses {
					return
				}

				md := Metadata{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status":      rec.status,
					"duration_ms": float64(duration.Microseconds()) / 1000.0,
				}
				message := fmt.Sprintf("%s %s %d (%dms)",
					r.Method, r.URL.Path, rec.status, duration.Milliseconds())

				switch {
				case rec.status >= 500:
					_ = client.Error(ctx, opts.Service, message, md)
				case rec.status >= 400:
					_ = client.Warn(ctx, opts.Service, message, md)
				default:
					_ = client.Info(ctx, opts.Service, message, md)
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// statusRecorder captures the response status code for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if i := strings.IndexByte(forwarded, ','); i >= 0 {
			return strings.TrimSpace(forwarded[:i])
		}
		return strings.TrimSpace(forwarded)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}

func headerMap(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}
