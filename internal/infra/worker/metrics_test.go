package worker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerMetricsWith(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkerMetricsWith(reg)

	require.NotNil(t, m.ConfigMetrics)
	assert.NotNil(t, m.JobRunsTotal)
	assert.NotNil(t, m.JobDurationSeconds)
	assert.NotNil(t, m.JobTablesLoadedTotal)
	assert.NotNil(t, m.JobLastSuccessTimestamp)
}

func TestWorkerMetrics_Record(t *testing.T) {
	m := NewWorkerMetricsWith(prometheus.NewRegistry())

	m.RecordJobRun("success")
	m.RecordJobRun("success")
	m.RecordJobRun("failure")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.JobRunsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.JobRunsTotal.WithLabelValues("failure")))

	m.RecordTablesLoaded(3)
	m.RecordTablesLoaded(0)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.JobTablesLoadedTotal))

	m.RecordLastSuccess()
	assert.Greater(t, testutil.ToFloat64(m.JobLastSuccessTimestamp), float64(0))

	m.RecordJobDuration(42)
	assert.Equal(t, 1, testutil.CollectAndCount(m.JobDurationSeconds))
}
