package repository

import (
	"context"

	"sanctions-sync/internal/domain/entity"
)

// TableLoader replaces the contents of a sanctions table.
type TableLoader interface {
	// Truncate removes every row of table in a single statement.
	Truncate(ctx context.Context, table string) error
	// BulkInsert inserts records in one transaction and returns the number of rows committed.
	BulkInsert(ctx context.Context, table string, records []entity.Record) (int, error)
	// Replace truncates table and inserts records in one transaction.
	Replace(ctx context.Context, table string, records []entity.Record) (int, error)
}
