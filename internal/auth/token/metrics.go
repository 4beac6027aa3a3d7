package token

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for token codec operations.
type Metrics struct {
	encodeTotal    *prometheus.CounterVec
	encodeDuration *prometheus.HistogramVec
	decodeTotal    *prometheus.CounterVec
	decodeDuration *prometheus.HistogramVec
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

	m.encodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "encode_total",
			Help:      "Total number of token encode operations",
		},
		[]string{"status"},
	)

	m.encodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "encode_duration_seconds",
			Help:      "Token encode duration in seconds",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		},
		[]string{"status"},
	)

	m.decodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "decode_total",
			Help:      "Total number of token decode operations",
		},
		[]string{"status", "reason"},
	)

	m.decodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "decode_duration_seconds",
			Help:      "Token decode duration in seconds",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		},
		[]string{"status"},
	)

	// On duplicate registration reuse the collector already held by
	// the registry so recorded series stay visible.
	m.encodeTotal = registerOrReuse(m.registerer, m.encodeTotal)
	m.encodeDuration = registerOrReuse(m.registerer, m.encodeDuration)
	m.decodeTotal = registerOrReuse(m.registerer, m.decodeTotal)
	m.decodeDuration = registerOrReuse(m.registerer, m.decodeDuration)

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

// RecordEncode records a token encode operation.
func (m *Metrics) RecordEncode(status string, duration time.Duration) {
	m.encodeTotal.WithLabelValues(status).Inc()
	m.encodeDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordDecode records a token decode operation.
func (m *Metrics) RecordDecode(status, reason string, duration time.Duration) {
	m.decodeTotal.WithLabelValues(status, reason).Inc()
	m.decodeDuration.WithLabelValues(status).Observe(duration.Seconds())
}
