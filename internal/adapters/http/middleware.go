package httpadapter

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lacura/lacura-api/internal/observability"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestID assigns every request an id and stores it in the context so
// handler logs and error responses can carry it.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := observability.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-Id", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withLogging logs every request and records it in the Prometheus counters.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := metricRoute(r.URL.Path)

		observability.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		observability.HTTPDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		observability.LoggerFromContext(r.Context()).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

// metricRoute keeps label cardinality bounded: anything outside the known
// prefixes collapses into "other".
func metricRoute(path string) string {
	switch {
	case path == "/chat/ask",
		path == "/email/send",
		path == "/ingest",
		path == "/content/generate",
		path == "/healthz",
		path == "/metrics":
		return path
	case strings.HasPrefix(path, "/bookings/"):
		return path
	default:
		return "other"
	}
}

// withCORS adds basic CORS headers to allow calls from a web front-end.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ChainMiddlewares applies multiple middlewares in order.
func ChainMiddlewares(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}

// Middlewares is the standard stack. Request id wraps logging so the log
// lines carry the id; CORS sits outermost to answer preflights early.
func Middlewares() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		withLogging,
		withRequestID,
		withCORS,
	}
}
