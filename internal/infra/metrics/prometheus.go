package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	depCalls   *prometheus.CounterVec
	depLatency *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_manager_http_requests_total",
			Help: "HTTP requests handled, by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "test_manager_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"route", "method"}),
		depCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_manager_dependency_calls_total",
			Help: "Outbound calls to external dependencies, by dependency, operation and outcome.",
		}, []string{"dependency", "op", "outcome"}),
		depLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "test_manager_dependency_call_duration_seconds",
			Help:    "Latency of outbound dependency calls.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"dependency", "op"}),
	}

	reg.MustRegister(
		m.requests, m.latency, m.depCalls, m.depLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one handled HTTP request. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveDependency records one outbound call. Safe on a nil receiver.
func (m *Metrics) ObserveDependency(dep, op string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.depCalls.WithLabelValues(dep, op, outcome).Inc()
	m.depLatency.WithLabelValues(dep, op).Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
