// Package postgres implements the sanctions table loader on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"sanctions-sync/internal/domain/entity"
	"sanctions-sync/internal/observability/metrics"
	"sanctions-sync/internal/observability/tracing"
	"sanctions-sync/internal/repository"
)

// DB is the subset of *sql.DB the loader needs.
// circuitbreaker.DBCircuitBreaker satisfies it too.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type TableLoader struct{ db DB }

func NewTableLoader(db DB) repository.TableLoader {
	return &TableLoader{db: db}
}

func (l *TableLoader) Truncate(ctx context.Context, table string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "postgres.Truncate", attribute.String("db.table", table))
	start := time.Now()
	defer func() {
		metrics.RecordTableOperation(table, "truncate", err == nil, time.Since(start))
		tracing.EndSpan(span, err)
	}()

	query, err := truncateSQL(table)
	if err != nil {
		return fmt.Errorf("Truncate: %w", err)
	}
	if _, err := l.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("Truncate %s: %w", table, err)
	}
	return nil
}

func (l *TableLoader) BulkInsert(ctx context.Context, table string, records []entity.Record) (n int, err error) {
	ctx, span := tracing.StartSpan(ctx, "postgres.BulkInsert",
		attribute.String("db.table", table), attribute.Int("db.records", len(records)))
	start := time.Now()
	defer func() {
		metrics.RecordTableOperation(table, "bulk_insert", err == nil, time.Since(start))
		tracing.EndSpan(span, err)
	}()

	if len(records) == 0 {
		return 0, nil
	}
	if _, err := commonColumns(records); err != nil {
		return 0, fmt.Errorf("BulkInsert %s: %w", table, err)
	}
	n, err = l.inTx(ctx, func(tx *sql.Tx) (int, error) {
		return insertAll(ctx, tx, table, records)
	})
	if err != nil {
		return 0, fmt.Errorf("BulkInsert %s: %w", table, err)
	}
	metrics.RecordRowsLoaded(table, n)
	return n, nil
}

func (l *TableLoader) Replace(ctx context.Context, table string, records []entity.Record) (n int, err error) {
	ctx, span := tracing.StartSpan(ctx, "postgres.Replace",
		attribute.String("db.table", table), attribute.Int("db.records", len(records)))
	start := time.Now()
	defer func() {
		metrics.RecordTableOperation(table, "replace", err == nil, time.Since(start))
		tracing.EndSpan(span, err)
	}()

	query, err := truncateSQL(table)
	if err != nil {
		return 0, fmt.Errorf("Replace: %w", err)
	}
	// check before TRUNCATE so a bad batch never empties the table
	if _, err := commonColumns(records); err != nil {
		return 0, fmt.Errorf("Replace %s: %w", table, err)
	}

	n, err = l.inTx(ctx, func(tx *sql.Tx) (int, error) {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return 0, fmt.Errorf("truncate: %w", err)
		}
		if len(records) == 0 {
			return 0, nil
		}
		return insertAll(ctx, tx, table, records)
	})
	if err != nil {
		return 0, fmt.Errorf("Replace %s: %w", table, err)
	}
	metrics.RecordRowsLoaded(table, n)
	return n, nil
}

// inTx runs fn in a transaction, committing on success and rolling back on
// every other path.
func (l *TableLoader) inTx(ctx context.Context, fn func(*sql.Tx) (int, error)) (int, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	n, err := fn(tx)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return n, nil
}

// insertAll prepares one parameterized INSERT and executes it per record,
// stopping at the first failure.
func insertAll(ctx context.Context, tx *sql.Tx, table string, records []entity.Record) (int, error) {
	cols, err := commonColumns(records)
	if err != nil {
		return 0, err
	}
	query, err := insertSQL(table, cols)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Values()...); err != nil {
			return i, fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	return len(records), nil
}

// commonColumns returns the column list shared by every record.
func commonColumns(records []entity.Record) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}
	cols := records[0].Columns()
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: record 0 has no columns", ErrHeterogeneousRecords)
	}
	for i, rec := range records[1:] {
		if !entity.SameColumns(cols, rec.Columns()) {
			return nil, fmt.Errorf("%w: record %d has %v, want %v", ErrHeterogeneousRecords, i+1, rec.Columns(), cols)
		}
	}
	return cols, nil
}

// quoteTable quotes a possibly schema-qualified table name.
func quoteTable(table string) (string, error) {
	parts := strings.Split(table, ".")
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidTableName, table)
		}
	}
	return pgx.Identifier(parts).Sanitize(), nil
}

func truncateSQL(table string) (string, error) {
	quoted, err := quoteTable(table)
	if err != nil {
		return "", err
	}
	return "TRUNCATE TABLE " + quoted, nil
}

func insertSQL(table string, cols []string) (string, error) {
	quoted, err := quoteTable(table)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quoted)
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{c}.Sanitize())
	}
	b.WriteString(") VALUES (")
	for i := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("$")
		b.WriteString(strconv.Itoa(i + 1))
	}
	b.WriteString(")")
	return b.String(), nil
}
