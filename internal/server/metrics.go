package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and registered against a per-server
// registry so that tests stay hermetic.
type serverMetrics struct {
	// searchRequestsTotal counts completed search requests, partitioned by
	// variant (vector|hybrid|agentic) and outcome ("ok" or "error").
	searchRequestsTotal *prometheus.CounterVec

	// searchDurationSeconds records the wall-clock duration of search
	// requests by variant.
	searchDurationSeconds *prometheus.HistogramVec

	// httpRequestsTotal counts all HTTP requests handled by the router,
	// partitioned by method, path pattern, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg. promauto.With
// keeps each server's metrics in its own registry.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		searchRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memoria",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total number of search requests completed, partitioned by variant and outcome.",
		}, []string{"variant", "outcome"}),

		searchDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "memoria",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of search requests by variant.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}, []string{"variant"}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memoria",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, path, and status code.",
		}, []string{"method", "path", "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "memoria",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// searchVariant maps a request path onto the search variant label, empty
// for non-search endpoints.
func searchVariant(path string) string {
	switch path {
	case "/api/memory/search":
		return "vector"
	case "/api/memory/hybrid-search":
		return "hybrid"
	case "/api/memory/agentic/search":
		return "agentic"
	}
	return ""
}

// instrument is the metrics middleware: it records per-request counters
// and latency, plus the search-specific series for search endpoints.
func (m *serverMetrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start).Seconds()
		code := strconv.Itoa(ww.Status())
		m.httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, code).Inc()
		m.httpDurationSeconds.WithLabelValues(r.Method, r.URL.Path).Observe(elapsed)

		if variant := searchVariant(r.URL.Path); variant != "" {
			outcome := "ok"
			if ww.Status() >= 400 {
				outcome = "error"
			}
			m.searchRequestsTotal.WithLabelValues(variant, outcome).Inc()
			m.searchDurationSeconds.WithLabelValues(variant).Observe(elapsed)
		}
	})
}
