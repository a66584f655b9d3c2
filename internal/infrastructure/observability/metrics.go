package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the service. Every method is safe on a
// nil receiver so use cases can run without metrics in tests.
type Metrics struct {
	// Registry is exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	transitions     *prometheus.CounterVec
	securityEvents  *prometheus.CounterVec
	agreedPrices    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers everything in a private registry, so calling it twice (tests)
// does not panic on duplicate collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devis_quote_transitions_total",
				Help: "Quote status transitions attempted, by outcome.",
			},
			[]string{"from", "to", "outcome"},
		),
		securityEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devis_security_events_total",
				Help: "Security events written to the audit log.",
			},
			[]string{"action"},
		),
		agreedPrices: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devis_agreed_prices_total",
				Help: "Agreed prices recorded on claims, by note kind.",
			},
			[]string{"kind"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "devis_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

func (m *Metrics) IncrTransition(from, to, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to, outcome).Inc()
}

func (m *Metrics) IncrSecurityEvent(action string) {
	if m == nil {
		return
	}
	m.securityEvents.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrAgreedPrice(kind string) {
	if m == nil {
		return
	}
	m.agreedPrices.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordRequestDuration(route string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}
