package query

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/filterql/filter"
)

// DefaultBatchSize is the number of rows per Arrow record batch.
const DefaultBatchSize = 1024

// Runner executes predicates against a database.
// Safe for concurrent use.
type Runner struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRunner creates a Runner over db. A nil logger uses slog.Default().
func NewRunner(db *sql.DB, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{db: db, logger: logger}
}

// DB returns the underlying database handle.
func (r *Runner) DB() *sql.DB {
	return r.db
}

// Query runs the SELECT for pred. The caller must close the rows.
func (r *Runner) Query(ctx context.Context, pred *filter.Predicate, opts Options) (*sql.Rows, error) {
	b, err := Select(pred, opts)
	if err != nil {
		return nil, err
	}
	stmt, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	r.logger.Debug("Running filter query",
		"entity", pred.Entity.Name(),
		"sql", stmt,
	)

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		r.logger.Error("Filter query failed",
			"entity", pred.Entity.Name(),
			"error", err,
		)
		return nil, fmt.Errorf("query %s: %w", pred.Entity.Name(), err)
	}
	return rows, nil
}

// Reader runs the SELECT for pred and streams the result as Arrow record
// batches. The caller must Release the reader.
func (r *Runner) Reader(ctx context.Context, pred *filter.Predicate, opts Options, mem memory.Allocator, batchSize int) (*RecordReader, error) {
	fields, err := Columns(pred.Entity, opts.Columns)
	if err != nil {
		return nil, err
	}
	rows, err := r.Query(ctx, pred, opts)
	if err != nil {
		return nil, err
	}
	return NewRecordReader(rows, Schema(fields), mem, batchSize), nil
}
