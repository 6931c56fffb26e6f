// Package metrics exposes Prometheus metrics for the checklist-lab service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "checklist_lab"

var registry = prometheus.NewRegistry()

var (
	httpRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	eventsIngested = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_ingested_total",
		Help:      "Total number of behavioral events accepted into the store",
	})

	eventsRejected = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_rejected_total",
		Help:      "Total number of events rejected by schema validation",
	})

	assignments = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "experiment_assignments_total",
		Help:      "New experiment assignments by variant",
	}, []string{"variant"})

	bundleDuration = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analytics_bundle_duration_seconds",
		Help:      "Time spent computing the full analytics bundle",
		Buckets:   prometheus.DefBuckets,
	})
)

// RecordEventIngested counts an accepted event.
func RecordEventIngested() {
	eventsIngested.Inc()
}

// RecordEventRejected counts an event rejected during validation.
func RecordEventRejected() {
	eventsRejected.Inc()
}

// RecordAssignment counts a newly persisted experiment assignment.
func RecordAssignment(variant string) {
	assignments.WithLabelValues(variant).Inc()
}

// ObserveBundleDuration records one analytics bundle computation.
func ObserveBundleDuration(d time.Duration) {
	bundleDuration.Observe(d.Seconds())
}

// Handler serves the registry for Prometheus scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
