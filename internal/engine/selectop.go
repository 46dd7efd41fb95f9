package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/chatql/chatql/internal/codec"
	"github.com/chatql/chatql/internal/core"
	"github.com/chatql/chatql/internal/sqlparse"
)

// ResultSet is the plain-data outcome of a select: headers plus rendered cell
// strings. Presentation markup is a caller concern.
type ResultSet struct {
	// Table is the caller-facing table name.
	Table string

	// Columns are the projected column headers, in request order.
	Columns []string

	// Rows are the displayed rows of rendered cells, oldest first, capped
	// at the display limit.
	Rows [][]string

	// TotalMatches counts every row that passed the filter, including
	// rows beyond the display cap.
	TotalMatches int

	// Distinct records whether duplicate rows were collapsed.
	Distinct bool

	// Filter echoes the WHERE clause that was applied, empty for none.
	Filter string
}

// Truncated reports whether rows beyond the display cap were withheld.
func (r *ResultSet) Truncated() bool { return r.TotalMatches > len(r.Rows) }

// Select reads the table's recent records, filters them by the WHERE clause,
// projects the requested columns and renders a result set. Records that fail
// to decode are skipped rather than failing the query.
func (e *Engine) Select(ctx context.Context, session core.SessionContext, table, columns string, distinct bool, whereClause string) (*ResultSet, error) {
	schema, tableID, err := e.loadSchema(ctx, session, table)
	if err != nil {
		return nil, err
	}

	projection, err := resolveProjection(columns, schema)
	if err != nil {
		return nil, err
	}

	records, err := e.records.ReadRecent(ctx, tableID, e.opts.ReadWindow)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", core.ErrStoreUnavailable, tableID, err)
	}

	var matched []core.Row
	for _, record := range records {
		stored, err := codec.Decode(record, schema)
		if err != nil {
			continue
		}
		if !sqlparse.EvaluateWhere(stored.Values, schema, whereClause) {
			continue
		}
		matched = append(matched, project(stored.Values, schema, projection))
	}

	if distinct {
		matched = dedupe(matched)
	}

	result := &ResultSet{
		Table:        table,
		Columns:      projection,
		TotalMatches: len(matched),
		Distinct:     distinct,
		Filter:       strings.TrimSpace(whereClause),
	}
	limit := e.opts.DisplayLimit
	for i, row := range matched {
		if i >= limit {
			break
		}
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = v.DisplayText()
		}
		result.Rows = append(result.Rows, cells)
	}
	return result, nil
}

// resolveProjection expands "*" against the schema or validates an explicit
// column list. "*" needs a schema to expand from; explicit names must all
// exist when a schema is present.
func resolveProjection(columns string, schema core.Schema) ([]string, error) {
	columns = strings.TrimSpace(columns)

	if columns == "*" {
		if len(schema) == 0 {
			return nil, fmt.Errorf(
				"%w: '*' selection needs a declared schema; name the columns explicitly",
				core.ErrUnknownColumn)
		}
		return schema.ColumnNames(), nil
	}

	var requested []string
	for _, part := range strings.Split(columns, ",") {
		if name := strings.TrimSpace(part); name != "" {
			requested = append(requested, name)
		}
	}
	if len(requested) == 0 {
		return nil, fmt.Errorf(
			"%w: no columns requested; name columns or use '*'", core.ErrUnknownColumn)
	}

	if len(schema) > 0 {
		for _, name := range requested {
			if schema.ColumnIndex(name) < 0 {
				return nil, fmt.Errorf(
					"%w: column %q does not exist (available: %s)",
					core.ErrUnknownColumn, name, strings.Join(schema.ColumnNames(), ", "))
			}
		}
	}
	return requested, nil
}

// project pulls the requested columns out of a row. Without a schema the
// first len(projection) values are returned positionally.
func project(row core.Row, schema core.Schema, projection []string) core.Row {
	if len(schema) == 0 {
		if len(row) > len(projection) {
			return row[:len(projection)]
		}
		return row
	}

	out := make(core.Row, 0, len(projection))
	for _, name := range projection {
		idx := schema.ColumnIndex(name)
		if idx >= 0 && idx < len(row) {
			out = append(out, row[idx])
		} else {
			out = append(out, core.Null())
		}
	}
	return out
}

// dedupe keeps the first occurrence of each structurally equal row.
func dedupe(rows []core.Row) []core.Row {
	seen := make(map[string]bool, len(rows))
	var out []core.Row
	for _, row := range rows {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = v.Literal()
		}
		key := strings.Join(parts, "\x1f")
		if !seen[key] {
			seen[key] = true
			out = append(out, row)
		}
	}
	return out
}
