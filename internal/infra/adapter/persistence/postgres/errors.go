package postgres

import "errors"

// ErrHeterogeneousRecords indicates a batch whose records do not share one column list.
var ErrHeterogeneousRecords = errors.New("records do not share the same columns")

// ErrInvalidTableName indicates an empty table name or an empty part of a qualified name.
var ErrInvalidTableName = errors.New("invalid table name")
