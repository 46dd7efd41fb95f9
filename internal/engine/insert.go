package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/chatql/chatql/internal/changefeed"
	"github.com/chatql/chatql/internal/codec"
	"github.com/chatql/chatql/internal/core"
	"github.com/chatql/chatql/internal/sqlparse"
	"github.com/chatql/chatql/internal/validate"
)

// InsertResult confirms a stored row.
type InsertResult struct {
	// Table is the caller-facing table name.
	Table string

	// Columns are the column names the values were aligned to.
	Columns []string

	// Values are the rendered literals that were stored, in column order.
	Values []string

	// CreatedAt is the record's creation timestamp.
	CreatedAt time.Time
}

// Insert parses a literal list, validates it against the table's schema,
// enforces primary-key uniqueness and appends the encoded record to the
// table's log. Any failure short-circuits before the append.
func (e *Engine) Insert(ctx context.Context, session core.SessionContext, table, valuesText string) (*InsertResult, error) {
	values, err := sqlparse.ParseValues(valuesText)
	if err != nil {
		return nil, err
	}

	schema, tableID, err := e.loadSchema(ctx, session, table)
	if err != nil {
		return nil, err
	}

	if err := validate.Row(values, schema); err != nil {
		return nil, err
	}

	if err := e.checker.Check(ctx, tableID, values, schema); err != nil {
		return nil, err
	}

	createdAt := time.Now().UTC()
	record := codec.Encode(values, schema, createdAt)

	if err := e.records.Append(ctx, tableID, record); err != nil {
		return nil, fmt.Errorf("%w: appending to %s: %v", core.ErrStoreUnavailable, tableID, err)
	}
	e.logger.Info("row inserted", "table", tableID, "columns", len(values))

	e.publish(ctx, tableID, record, createdAt)

	columns := schema.ColumnNames()
	if len(schema) == 0 {
		columns = make([]string, len(values))
		for i := range values {
			columns[i] = fmt.Sprintf("column_%d", i)
		}
	}
	rendered := make([]string, len(values))
	for i, v := range values {
		rendered[i] = v.DisplayText()
	}

	return &InsertResult{
		Table:     table,
		Columns:   columns,
		Values:    rendered,
		CreatedAt: createdAt,
	}, nil
}

// publish pushes the append onto the change feed. The append has already
// succeeded, so feed failures are logged, never surfaced.
func (e *Engine) publish(ctx context.Context, tableID, record string, createdAt time.Time) {
	if e.feed == nil {
		return
	}
	err := e.feed.Enqueue(ctx, &changefeed.Event{
		TableID:   tableID,
		Record:    record,
		Timestamp: createdAt,
	})
	if err != nil {
		e.logger.Warn("change-feed enqueue failed", "table", tableID, "error", err)
	}
}
