// Package metrics provides the Prometheus collectors of the sanctions sync worker.
//
// Collectors are registered with the default registry through promauto and are
// exposed by the worker's /metrics endpoint when it runs on a schedule.
//
//	start := time.Now()
//	body, err := download(url)
//	metrics.RecordDownload("www.treasury.gov", err == nil, time.Since(start), len(body))
package metrics
