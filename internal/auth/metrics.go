package auth

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for authentication.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	failuresTotal   *prometheus.CounterVec
	registerer      prometheus.Registerer
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

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "requests_total",
			Help:      "Total number of authentication attempts",
		},
		[]string{"transport", "strategy", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "request_duration_seconds",
			Help:      "Authentication duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"transport", "status"},
	)

	m.failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Total number of authentication failures by kind",
		},
		[]string{"strategy", "kind"},
	)

	// On duplicate registration reuse the collector already held by
	// the registry so recorded series stay visible.
	m.requestsTotal = registerOrReuse(m.registerer, m.requestsTotal)
	m.requestDuration = registerOrReuse(m.registerer, m.requestDuration)
	m.failuresTotal = registerOrReuse(m.registerer, m.failuresTotal)

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

// RecordRequest records an authentication attempt.
func (m *Metrics) RecordRequest(transport, strategy, status string, duration time.Duration) {
	m.requestsTotal.WithLabelValues(transport, strategy, status).Inc()
	m.requestDuration.WithLabelValues(transport, status).Observe(duration.Seconds())
}

// RecordFailure records an authentication failure.
func (m *Metrics) RecordFailure(strategy string, kind Kind) {
	m.failuresTotal.WithLabelValues(strategy, string(kind)).Inc()
}
