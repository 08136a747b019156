package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sanctions-sync/internal/pkg/config"
)

// WorkerMetrics holds job-level metrics for the sync worker, in both run-once
// and scheduled mode, plus the configuration metrics of the process.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// JobRunsTotal counts runs by status: started, success, failure, skipped.
	JobRunsTotal *prometheus.CounterVec

	JobDurationSeconds prometheus.Histogram

	// JobTablesLoadedTotal counts tables committed across all runs.
	JobTablesLoadedTotal prometheus.Counter

	JobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers the worker metrics with the default registry.
func NewWorkerMetrics() *WorkerMetrics {
	return NewWorkerMetricsWith(prometheus.DefaultRegisterer)
}

func NewWorkerMetricsWith(reg prometheus.Registerer) *WorkerMetrics {
	f := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetricsWith(reg, "sanctions_sync"),

		JobRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sanctions_sync_job_runs_total",
			Help: "Total number of sync job runs by status",
		}, []string{"status"}),

		JobDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sanctions_sync_job_duration_seconds",
			Help:    "Duration of sync job execution in seconds",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 900, 1800},
		}),

		JobTablesLoadedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "sanctions_sync_job_tables_loaded_total",
			Help: "Total number of tables loaded across all sync job runs",
		}),

		JobLastSuccessTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "sanctions_sync_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful sync job run",
		}),
	}
}

func (m *WorkerMetrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

func (m *WorkerMetrics) RecordTablesLoaded(count int) {
	if count > 0 {
		m.JobTablesLoadedTotal.Add(float64(count))
	}
}

func (m *WorkerMetrics) RecordLastSuccess() {
	m.JobLastSuccessTimestamp.SetToCurrentTime()
}
