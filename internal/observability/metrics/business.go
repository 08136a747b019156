package metrics

import "time"

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordDownload records a download attempt against host.
// Size is only observed for successful downloads.
func RecordDownload(host string, success bool, duration time.Duration, size int) {
	DownloadsTotal.WithLabelValues(host, statusLabel(success)).Inc()
	DownloadDuration.WithLabelValues(host).Observe(duration.Seconds())
	if success {
		DownloadSize.WithLabelValues(host).Observe(float64(size))
	}
}

// RecordParsed sets the number of records extracted for dataset.
func RecordParsed(dataset string, count int) {
	RecordsParsed.WithLabelValues(dataset).Set(float64(count))
}

// RecordParseError counts a parse failure for dataset.
func RecordParseError(dataset, reason string) {
	ParseErrorsTotal.WithLabelValues(dataset, reason).Inc()
}

// RecordDatasetOutcome counts the final outcome of a dataset in a run.
func RecordDatasetOutcome(dataset, outcome string) {
	DatasetOutcomesTotal.WithLabelValues(dataset, outcome).Inc()
}

// RecordTableOperation records a truncate, bulk_insert, or replace on table.
func RecordTableOperation(table, operation string, success bool, duration time.Duration) {
	TableOperationsTotal.WithLabelValues(table, operation, statusLabel(success)).Inc()
	TableOperationDuration.WithLabelValues(table, operation).Observe(duration.Seconds())
}

// RecordRowsLoaded adds committed rows for table.
func RecordRowsLoaded(table string, rows int) {
	if rows <= 0 {
		return
	}
	RowsLoadedTotal.WithLabelValues(table).Add(float64(rows))
}

// RecordSyncRun observes the duration of a sync run.
func RecordSyncRun(duration time.Duration) {
	SyncRunDuration.Observe(duration.Seconds())
}
