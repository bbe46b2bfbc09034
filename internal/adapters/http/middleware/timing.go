package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"curriculum/internal/adapters/http/perf"
)

// DefaultSlowRequest is the default threshold for slow request warnings.
const DefaultSlowRequest = 200 * time.Millisecond

// requestIDCounter is an atomic counter for request IDs.
var requestIDCounter atomic.Uint64

type routeKey struct{}

// RecordRoute wraps the ServeMux so the matched pattern reaches Timing.
// Middleware in between may clone the request, and ServeMux sets Pattern
// only on the copy it receives.
// PRE: next is the ServeMux, installed innermost
// POST: after next returns, r.Pattern is stored in the slot Timing placed in the context
func RecordRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if slot, ok := r.Context().Value(routeKey{}).(*string); ok && r.Pattern != "" {
			*slot = r.Pattern
		}
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
// PRE: code is a valid HTTP status code
// POST: status stored, header written to underlying ResponseWriter
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// Timing returns middleware that logs request duration. Requests to /static/
// are skipped. Requests slower than threshold log at WARN, others at DEBUG.
// A nil collector disables recording.
func Timing(collector *perf.Collector, threshold time.Duration) func(http.Handler) http.Handler {
	if threshold <= 0 {
		threshold = DefaultSlowRequest
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := requestIDCounter.Add(1)
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			pattern := new(string)
			r = r.WithContext(context.WithValue(r.Context(), routeKey{}, pattern))

			next.ServeHTTP(sw, r)

			elapsed := time.Since(start)
			durationMs := float64(elapsed.Microseconds()) / 1000.0
			// the matched pattern keeps course IDs out of the stats
			route := *pattern
			if route == "" {
				route = r.Pattern
			}
			if route == "" {
				route = r.Method + " " + r.URL.Path
			}
			attrs := []any{"request_id", reqID, "route", route, "status", sw.status, "duration_ms", durationMs}
			if elapsed >= threshold {
				slog.Warn("slow_request", attrs...)
			} else {
				slog.Debug("request", attrs...)
			}

			if collector != nil {
				collector.Record(perf.Entry{
					Kind:       perf.KindRequest,
					Path:       route,
					StatusCode: sw.status,
					DurationMs: durationMs,
					Timestamp:  start,
				})
			}
		})
	}
}
