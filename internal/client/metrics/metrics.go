// Package metrics instruments outbound gateway traffic with Prometheus
// collectors registered on a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for the remote gateways.
type Metrics struct {
	registry *prometheus.Registry

	// Request latency by status code and method
	RequestDuration *prometheus.HistogramVec

	// Requests currently waiting for a response
	InFlight prometheus.Gauge

	// Normalised failures by gateway operation and error kind
	Failures *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered on a fresh
// registry, so several instances can coexist (tests, multiple apps).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "countrybook_gateway_request_duration_seconds",
			Help:    "Duration of outbound gateway requests",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"code", "method"}),

		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "countrybook_gateway_requests_in_flight",
			Help: "Outbound gateway requests awaiting a response",
		}),

		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "countrybook_gateway_failures_total",
			Help: "Gateway failures by operation and error kind",
		}, []string{"op", "kind"}),
	}
}

// InstrumentRoundTripper wraps next so every request is counted in flight
// and timed. A nil receiver returns next unchanged.
func (m *Metrics) InstrumentRoundTripper(next http.RoundTripper) http.RoundTripper {
	if m == nil {
		return next
	}
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperInFlight(m.InFlight,
		promhttp.InstrumentRoundTripperDuration(m.RequestDuration, next))
}

// IncrementFailure records a normalised gateway failure.
func (m *Metrics) IncrementFailure(op, kind string) {
	if m != nil {
		m.Failures.WithLabelValues(op, kind).Inc()
	}
}

// Registry exposes the private registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
