// Package parser extracts flat sanctions records from the OFAC SDN and
// UN Security Council Consolidated XML documents.
package parser

import "errors"

// Sentinel errors for parser operations.
var (
	// ErrNoData indicates that there was no document to parse, usually because the download failed.
	ErrNoData = errors.New("no xml data")

	// ErrMalformedXML indicates that the document is not well-formed XML.
	// Records decoded before the syntax error are discarded.
	ErrMalformedXML = errors.New("malformed xml")
)
