package fetcher

import "time"

// Status is the outcome of a download.
type Status int

const (
	// StatusOK means a 2xx response was read in full.
	StatusOK Status = iota
	// StatusFailed means a network error, timeout, non-2xx status, or oversized body.
	StatusFailed
)

// String returns the status name used in logs and metrics.
func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}
	return "failed"
}

// Result is the outcome of a single download.
// Body is nil unless Status is StatusOK, which lets parsers treat a
// failed download as "no data".
type Result struct {
	URL        string
	Status     Status
	StatusCode int
	Body       []byte
	Err        error
	Duration   time.Duration
}

// OK reports whether the download succeeded.
func (r Result) OK() bool {
	return r.Status == StatusOK
}
