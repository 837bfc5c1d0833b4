// Package metrics exposes Prometheus metrics for the checkpoint: one counter
// per auth decision and a request duration histogram.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Decision labels for the decisions counter.
const (
	DecisionAllowed   = "allowed"
	DecisionRefreshed = "refreshed"
	DecisionDenied    = "denied"
)

// Metrics holds the Prometheus collectors. A fresh registry per instance
// keeps tests isolated from each other and from the default registry.
type Metrics struct {
	registry  *prometheus.Registry
	decisions *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// New creates and registers the collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth_front",
			Name:      "decisions_total",
			Help:      "Authentication decisions by outcome.",
		}, []string{"decision"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "auth_front",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by route and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "code"}),
	}
}

// Decision records one authentication decision.
func (m *Metrics) Decision(decision string) {
	m.decisions.WithLabelValues(decision).Inc()
}

// ObserveRequest records one handled request.
func (m *Metrics) ObserveRequest(route, code string, seconds float64) {
	m.duration.WithLabelValues(route, code).Observe(seconds)
}

// Handler serves the scrape endpoint for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
