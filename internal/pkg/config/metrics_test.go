package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestConfigMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConfigMetricsWith(reg, "test_sync")

	m.RecordLoadTimestamp()
	assert.Greater(t, testutil.ToFloat64(m.LoadTimestamp), float64(0))

	m.RecordValidationError("fetch_timeout")
	m.RecordValidationError("fetch_timeout")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("fetch_timeout")))

	m.RecordFallback("fetch_timeout", "default")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("fetch_timeout", "default")))

	m.SetFallbackActive(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FallbackActive))
	m.SetFallbackActive(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.FallbackActive))

	n, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestNewConfigMetricsWith_DuplicatePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewConfigMetricsWith(reg, "dup")
	assert.Panics(t, func() { NewConfigMetricsWith(reg, "dup") })
}
