package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seenimoa/notegraph/internal/graph"
)

// Metrics holds the server's Prometheus collectors. Each Server owns its
// own registry so tests can build many servers in one process.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	markers  *prometheus.CounterVec
	charts   *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notegraph_http_requests_total",
				Help: "HTTP requests by handler, status code and method.",
			},
			[]string{"handler", "code", "method"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "notegraph_http_request_duration_seconds",
				Help:    "HTTP request latency by handler and method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"handler", "method"},
		),
		markers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notegraph_markers_total",
				Help: "Chart markers processed, by outcome.",
			},
			[]string{"outcome"},
		),
		charts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notegraph_charts_total",
				Help: "Single charts rendered, by output format.",
			},
			[]string{"format"},
		),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.markers,
		m.charts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Instrument wraps h with request counting and latency observation under
// the given handler label.
func (m *Metrics) Instrument(name string, h http.HandlerFunc) http.Handler {
	labels := prometheus.Labels{"handler": name}
	return promhttp.InstrumentHandlerDuration(
		m.duration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.requests.MustCurryWith(labels), h),
	)
}

// ObserveStats records the outcome of every marker in one expansion.
func (m *Metrics) ObserveStats(st graph.Stats) {
	if st.Rendered > 0 {
		m.markers.WithLabelValues("rendered").Add(float64(st.Rendered))
	}
	if st.Dropped > 0 {
		m.markers.WithLabelValues("dropped").Add(float64(st.Dropped))
	}
}

// ObserveChart counts one single-chart render.
func (m *Metrics) ObserveChart(format string) {
	m.charts.WithLabelValues(format).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
