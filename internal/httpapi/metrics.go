package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names as constants for consistency.
const (
	MetricHTTPRequestsTotal   = "callboard_http_requests_total"
	MetricHTTPRequestDuration = "callboard_http_request_duration_seconds"
	MetricSavedItemsTotal     = "callboard_saved_items_total"
	MetricDegradedFetchTotal  = "callboard_degraded_fetches_total"
)

// Metrics holds the Prometheus collectors for the HTTP surface. All
// operations are safe for concurrent use.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	savedItems      prometheus.Counter
	degradedFetches prometheus.Counter
}

// NewMetrics creates the collectors and registers them on a private
// registry served by Handler.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequestsTotal,
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPRequestDuration,
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.01, 0.1, 0.5, 1.0, 2.0},
			},
			[]string{"method", "path", "status"},
		),
		savedItems: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricSavedItemsTotal,
				Help: "Total top-level keys written across all document saves",
			},
		),
		degradedFetches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricDegradedFetchTotal,
				Help: "Fetches that served the empty document because the persisted one was unreadable or corrupt",
			},
		),
	}

	m.registry.MustRegister(m.requestsTotal, m.requestDuration, m.savedItems, m.degradedFetches)
	return m
}

// Handler serves the text exposition format for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
