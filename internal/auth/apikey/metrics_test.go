package apikey

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m1 := NewMetricsWithRegisterer("test", reg)
	m2 := NewMetricsWithRegisterer("test", reg)

	assert.Same(t, m1.verifyTotal, m2.verifyTotal)
	assert.Same(t, m1.storeErrors, m2.storeErrors)

	m1.RecordVerify("error", "revoked", time.Millisecond)
	m2.RecordVerify("error", "revoked", time.Millisecond)

	count := testutil.ToFloat64(m2.verifyTotal.WithLabelValues("error", "revoked"))
	assert.Equal(t, float64(2), count)
}

func TestMetricsRecordGenerate(t *testing.T) {
	t.Parallel()

	m := NewMetricsWithRegisterer("test", prometheus.NewRegistry())
	m.RecordGenerate("success")
	m.RecordRevoke("success")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.generateTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.revokeTotal.WithLabelValues("success")))
}
