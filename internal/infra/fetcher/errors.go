// Package fetcher downloads the sanctions list documents over HTTP.
package fetcher

import "errors"

// Sentinel errors for download operations.
var (
	// ErrFetchFailed wraps every download failure reported in a Result.
	ErrFetchFailed = errors.New("failed to download document")

	// ErrInvalidURL indicates a URL that is empty, unparsable, or not http/https.
	ErrInvalidURL = errors.New("invalid url")

	// ErrBodyTooLarge indicates a response body larger than Config.MaxBodySize.
	ErrBodyTooLarge = errors.New("response body too large")
)
