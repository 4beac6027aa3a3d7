package authz

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for authorization.
type Metrics struct {
	decisionsTotal *prometheus.CounterVec
	registerer     prometheus.Registerer
}

// NewMetrics creates a new Metrics instance registered with
// prometheus.DefaultRegisterer.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates a new Metrics instance with a custom
// registerer. Useful for tests where a private registry is preferred.
func NewMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "authgate"
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{registerer: registerer}

	m.decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "decisions_total",
			Help:      "Total number of authorization decisions",
		},
		[]string{"requirement", "result"},
	)

	// On duplicate registration reuse the collector already held by
	// the registry so recorded series stay visible.
	m.decisionsTotal = registerOrReuse(m.registerer, m.decisionsTotal)

	return m
}

// registerOrReuse registers the collector, returning the already
// registered collector when one with the same descriptor exists.
func registerOrReuse[C prometheus.Collector](registerer prometheus.Registerer, collector C) C {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return collector
}

// RecordDecision records an authorization decision.
func (m *Metrics) RecordDecision(requirement, result string) {
	m.decisionsTotal.WithLabelValues(requirement, result).Inc()
}
