// Package metrics provides Prometheus metrics for the nimbusview server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nimbusview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nimbusview_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Snapshot metrics
	snapshotObjects = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nimbusview_snapshot_objects",
			Help: "Number of objects in the current listing snapshot",
		},
	)

	snapshotBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nimbusview_snapshot_bytes",
			Help: "Total size in bytes of objects in the current listing snapshot",
		},
	)

	snapshotState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nimbusview_snapshot_state",
			Help: "Current snapshot state (1 for the active state, 0 otherwise)",
		},
		[]string{"state"},
	)

	snapshotLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nimbusview_snapshot_load_duration_seconds",
			Help:    "Time to fetch and index the bucket listing",
			Buckets: prometheus.DefBuckets,
		},
	)

	snapshotLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nimbusview_snapshot_loads_total",
			Help: "Total snapshot load attempts",
		},
		[]string{"status"},
	)

	// Source metrics
	sourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nimbusview_source_fetch_duration_seconds",
			Help:    "Listing fetch duration by source kind",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	sourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nimbusview_source_fetches_total",
			Help: "Total listing fetches by source kind",
		},
		[]string{"kind", "status"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetSnapshotObjects sets the object count of the current snapshot.
func SetSnapshotObjects(count int) {
	snapshotObjects.Set(float64(count))
}

// SetSnapshotBytes sets the total byte size of the current snapshot.
func SetSnapshotBytes(bytes int64) {
	snapshotBytes.Set(float64(bytes))
}

// SetSnapshotState marks the given state as active and clears the others.
func SetSnapshotState(state string) {
	for _, s := range []string{"pending", "loaded", "failed"} {
		v := 0.0
		if s == state {
			v = 1.0
		}
		snapshotState.WithLabelValues(s).Set(v)
	}
}

// RecordSnapshotLoad records a snapshot load attempt.
func RecordSnapshotLoad(duration time.Duration, success bool) {
	snapshotLoadDuration.Observe(duration.Seconds())
	status := "success"
	if !success {
		status = "error"
	}
	snapshotLoadsTotal.WithLabelValues(status).Inc()
}

// RecordSourceFetch records a listing fetch against a source.
func RecordSourceFetch(kind string, duration time.Duration, success bool) {
	sourceFetchDuration.WithLabelValues(kind).Observe(duration.Seconds())
	status := "success"
	if !success {
		status = "error"
	}
	sourceFetchesTotal.WithLabelValues(kind, status).Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns HTTP middleware that records request metrics. The path
// label uses the chi route pattern when available so wildcard browse paths
// collapse into a single series.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		RecordHTTPRequest(r.Method, path, rw.statusCode, time.Since(start))
	})
}
