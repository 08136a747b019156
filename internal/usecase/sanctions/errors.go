// Package sanctions orchestrates a sync of the OFAC SDN and UN Consolidated
// sanctions lists into their database tables.
package sanctions

import "errors"

var (
	// ErrDownloadFailed indicates that a source list could not be downloaded.
	ErrDownloadFailed = errors.New("sanctions list download failed")

	// ErrIncompleteRun is returned by Run when at least one dataset failed to
	// download, parse, or load. The returned RunStats describe which.
	ErrIncompleteRun = errors.New("sanctions sync incomplete")
)
