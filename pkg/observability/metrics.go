package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Normalization sources.
const (
	SourceCache    = "cache"
	SourceComputed = "computed"
)

// Metrics groups the collectors recorded by the normalizer and the HTTP service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	normalizations *prometheus.CounterVec
	duration       prometheus.Histogram
	inputBytes     prometheus.Histogram
	cacheErrors    *prometheus.CounterVec
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors on a fresh registry,
// together with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		normalizations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demark_normalize_total",
				Help: "Total number of normalized texts by source",
			},
			[]string{"source"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "demark_normalize_duration_seconds",
				Help:    "Duration of uncached normalizations",
				Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
		),
		inputBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "demark_input_bytes",
				Help:    "Size of texts submitted for normalization",
				Buckets: prometheus.ExponentialBuckets(64, 4, 7),
			},
		),
		cacheErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demark_cache_errors_total",
				Help: "Cache failures by operation",
			},
			[]string{"op"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demark_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "demark_http_request_duration_seconds",
				Help: "Duration of HTTP requests by route",
			},
			[]string{"route"},
		),
	}

	m.registry.MustRegister(
		m.normalizations, m.duration, m.inputBytes, m.cacheErrors, m.requests, m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveNormalize records one normalization of size bytes.
func (m *Metrics) ObserveNormalize(source string, size int, d time.Duration) {
	if m == nil {
		return
	}
	m.normalizations.WithLabelValues(source).Inc()
	m.inputBytes.Observe(float64(size))
	if source == SourceComputed {
		m.duration.Observe(d.Seconds())
	}
}

// CacheError records a failed cache operation ("get" or "set").
func (m *Metrics) CacheError(op string) {
	if m == nil {
		return
	}
	m.cacheErrors.WithLabelValues(op).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(route).Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry for custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
