package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Download metrics track the two sanctions list downloads.
var (
	// DownloadsTotal counts downloads by host and status (success, failure)
	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctions_downloads_total",
			Help: "Total number of sanctions list downloads by status",
		},
		[]string{"host", "status"},
	)

	// DownloadDuration measures download duration in seconds
	DownloadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sanctions_download_duration_seconds",
			Help:    "Duration of sanctions list downloads in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"host"},
	)

	// DownloadSize measures downloaded document size in bytes
	DownloadSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sanctions_download_size_bytes",
			Help:    "Size of downloaded sanctions list documents in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB .. 256MB
		},
		[]string{"host"},
	)
)

// Dataset metrics track parsing and the outcome of each dataset.
var (
	// RecordsParsed reports the record count of the last parse per dataset
	RecordsParsed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sanctions_records_parsed",
			Help: "Number of records extracted by the last parse of each dataset",
		},
		[]string{"dataset"},
	)

	// ParseErrorsTotal counts parse failures by dataset and reason (no_data, malformed)
	ParseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctions_parse_errors_total",
			Help: "Total number of dataset parse failures by reason",
		},
		[]string{"dataset", "reason"},
	)

	// DatasetOutcomesTotal counts dataset outcomes (loaded, empty, failed, skipped)
	DatasetOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctions_dataset_outcomes_total",
			Help: "Total number of dataset sync outcomes",
		},
		[]string{"dataset", "outcome"},
	)
)

// Table metrics track truncate and insert statements.
var (
	// RowsLoadedTotal counts rows committed per table
	RowsLoadedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctions_rows_loaded_total",
			Help: "Total number of rows committed to each sanctions table",
		},
		[]string{"table"},
	)

	// TableOperationsTotal counts table operations (truncate, bulk_insert, replace) by status
	TableOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctions_table_operations_total",
			Help: "Total number of table operations by status",
		},
		[]string{"table", "operation", "status"},
	)

	// TableOperationDuration measures table operation duration in seconds
	TableOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sanctions_table_operation_duration_seconds",
			Help:    "Duration of table operations in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"table", "operation"},
	)
)

// SyncRunDuration measures a full sync run in seconds.
var SyncRunDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "sanctions_sync_run_duration_seconds",
		Help:    "Duration of a full sanctions sync run in seconds",
		Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 1800},
	},
)
