package authz

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m1 := NewMetricsWithRegisterer("test", reg)
	m2 := NewMetricsWithRegisterer("test", reg)

	assert.Same(t, m1.decisionsTotal, m2.decisionsTotal)

	m1.RecordDecision("scope:read:posts", "allowed")
	m2.RecordDecision("scope:read:posts", "allowed")

	count := testutil.ToFloat64(m2.decisionsTotal.WithLabelValues("scope:read:posts", "allowed"))
	assert.Equal(t, float64(2), count)
}
