package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/metrics"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"
	corsMaxAge      = 600
)

var corsMethods = []string{
	http.MethodDelete, http.MethodGet, http.MethodHead, http.MethodOptions,
	http.MethodPatch, http.MethodPost, http.MethodPut,
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) code() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

// record wraps w unless an outer middleware already did.
func record(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w}
}

// RequestLogger logs one line per request and tags the response with a request id.
//
// Query strings are never logged since the authorize endpoint carries the operator secret.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = shared.GenerateID()
			}
			w.Header().Set(requestIDHeader, id)

			rec := record(w)
			start := time.Now()
			next.ServeHTTP(rec, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.code(),
				"duration", time.Since(start),
				"request_id", id,
			)
		})
	}
}

// Instrument records request counts and latency per registered route pattern.
func Instrument(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := record(w)
			start := time.Now()
			next.ServeHTTP(rec, r)

			route := r.Pattern
			if route == "" || route == "/" {
				route = "unmatched"
			}
			m.HTTPRequest(route, rec.code(), time.Since(start))
		})
	}
}

// RateLimit rejects requests with 429 once the process-wide token bucket is empty.
//
// A non-positive limit disables limiting.
func RateLimit(limit float64, burst int) Middleware {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(limit), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows credentialed cross-origin requests from the listed origins with any method or header.
//
// An origin of "*" allows every origin. The request origin is echoed back either way since
// browsers reject a wildcard together with credentials.
func CORS(origins []string) Middleware {
	opts := cors.Options{
		AllowedOrigins:       origins,
		AllowedMethods:       corsMethods,
		AllowedHeaders:       []string{"*"},
		AllowCredentials:     true,
		MaxAge:               corsMaxAge,
		OptionsSuccessStatus: http.StatusOK,
	}
	if slices.Contains(origins, "*") {
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(string) bool { return true }
	}
	return cors.New(opts).Handler
}
