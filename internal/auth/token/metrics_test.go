package token

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

	assert.Same(t, m1.encodeTotal, m2.encodeTotal)
	assert.Same(t, m1.decodeTotal, m2.decodeTotal)

	m1.RecordEncode("success", time.Millisecond)
	m2.RecordEncode("success", time.Millisecond)

	count := testutil.ToFloat64(m2.encodeTotal.WithLabelValues("success"))
	assert.Equal(t, float64(2), count)
}

func TestMetricsRecordDecode(t *testing.T) {
	t.Parallel()

	m := NewMetricsWithRegisterer("test", prometheus.NewRegistry())
	m.RecordDecode("error", "expired", time.Millisecond)

	count := testutil.ToFloat64(m.decodeTotal.WithLabelValues("error", "expired"))
	assert.Equal(t, float64(1), count)
}
