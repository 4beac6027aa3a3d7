package apikey

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for API key operations.
type Metrics struct {
	verifyTotal    *prometheus.CounterVec
	verifyDuration *prometheus.HistogramVec
	generateTotal  *prometheus.CounterVec
	revokeTotal    *prometheus.CounterVec
	storeErrors    *prometheus.CounterVec
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

	m.verifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "apikey",
			Name:      "verify_total",
			Help:      "Total number of API key verify operations",
		},
		[]string{"status", "reason"},
	)

	m.verifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "apikey",
			Name:      "verify_duration_seconds",
			Help:      "API key verify duration in seconds",
			Buckets:   []float64{.00001, .0001, .001, .005, .01, .05, .1, .5},
		},
		[]string{"status"},
	)

	m.generateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "apikey",
			Name:      "generate_total",
			Help:      "Total number of API key generate operations",
		},
		[]string{"status"},
	)

	m.revokeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "apikey",
			Name:      "revoke_total",
			Help:      "Total number of API key revoke operations",
		},
		[]string{"status"},
	)

	m.storeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "apikey",
			Name:      "store_errors_total",
			Help:      "Total number of credential store errors",
		},
		[]string{"op"},
	)

	// On duplicate registration reuse the collector already held by
	// the registry so recorded series stay visible.
	m.verifyTotal = registerOrReuse(m.registerer, m.verifyTotal)
	m.verifyDuration = registerOrReuse(m.registerer, m.verifyDuration)
	m.generateTotal = registerOrReuse(m.registerer, m.generateTotal)
	m.revokeTotal = registerOrReuse(m.registerer, m.revokeTotal)
	m.storeErrors = registerOrReuse(m.registerer, m.storeErrors)

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

// RecordVerify records an API key verify operation.
func (m *Metrics) RecordVerify(status, reason string, duration time.Duration) {
	m.verifyTotal.WithLabelValues(status, reason).Inc()
	m.verifyDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordGenerate records an API key generate operation.
func (m *Metrics) RecordGenerate(status string) {
	m.generateTotal.WithLabelValues(status).Inc()
}

// RecordRevoke records an API key revoke operation.
func (m *Metrics) RecordRevoke(status string) {
	m.revokeTotal.WithLabelValues(status).Inc()
}

// RecordStoreError records a credential store error.
func (m *Metrics) RecordStoreError(op string) {
	m.storeErrors.WithLabelValues(op).Inc()
}
