package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "autosetup",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Auto-setup API requests by route and status code.",
		},
		[]string{"method", "route", "code"},
	)

	apiRequestSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "autosetup",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Auto-setup API request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// unmatchedRoute labels requests chi could not route, so raw paths such as
// entry ids never become label values.
const unmatchedRoute = "unmatched"

// Metrics is a chi middleware that records request counts and latency per
// route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		apiRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		apiRequestSeconds.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
