// Package codec serializes validated rows into the text records kept in a
// table's append-only log, and reconstructs typed rows from them.
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chatql/chatql/internal/core"
)

// A canonical record looks like:
//
//	INSERTED 2023-12-25T14:30:00Z
//	DATA:
//	  id: 1
//	  name: 'John'
//
// One "  <column>: <literal>" line per column, in schema order; tables
// without a schema use positional names column_0, column_1, ...
const (
	timestampPrefix = "INSERTED "
	dataHeader      = "DATA:"
	fieldIndent     = "  "
	fieldSeparator  = ": "
)

// ErrCannotReconstruct is returned when a record cannot be turned back into a
// row aligned with the schema.
var ErrCannotReconstruct = errors.New("cannot reconstruct row from record")

// Encode serializes a validated row into record text. The timestamp is
// rendered in RFC 3339 UTC. The schema supplies column names; with no schema
// the positional column_<i> names are used.
func Encode(row core.Row, schema core.Schema, createdAt time.Time) string {
	var b strings.Builder
	b.WriteString(timestampPrefix)
	b.WriteString(createdAt.UTC().Format(time.RFC3339))
	b.WriteByte('\n')
	b.WriteString(dataHeader)
	b.WriteByte('\n')

	for i, v := range row {
		name := "column_" + strconv.Itoa(i)
		if i < len(schema) {
			name = schema[i].Name
		}
		b.WriteString(fieldIndent)
		b.WriteString(name)
		b.WriteString(fieldSeparator)
		b.WriteString(v.Literal())
		if i < len(row)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Record format versions. The legacy layout predates the DATA: header: field
// lines followed the timestamp directly and carried no indent. The detector
// rewrites legacy records into canonical form so a single parser handles both.
const (
	formatCanonical = iota
	formatLegacy
)

func detectFormat(record string) int {
	for _, line := range strings.Split(record, "\n") {
		if strings.TrimRight(line, " \t") == dataHeader {
			return formatCanonical
		}
	}
	return formatLegacy
}

// normalize rewrites a record into canonical form. Canonical input passes
// through untouched.
func normalize(record string) string {
	if detectFormat(record) == formatCanonical {
		return record
	}

	lines := strings.Split(record, "\n")
	var b strings.Builder
	wroteHeader := false
	for _, line := range lines {
		if strings.HasPrefix(line, timestampPrefix) {
			b.WriteString(line)
			b.WriteByte('\n')
			continue
		}
		if !wroteHeader {
			b.WriteString(dataHeader)
			b.WriteByte('\n')
			wroteHeader = true
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		b.WriteString(fieldIndent)
		b.WriteString(trimmed)
		b.WriteByte('\n')
	}
	if !wroteHeader {
		b.WriteString(dataHeader)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// Decode reconstructs a stored record into a typed row aligned to schema
// order. Records in the legacy layout are normalized first. With a schema,
// every schema column must be present in the record or decoding fails; with
// no schema, fields come back in the order they appear in the record.
func Decode(record string, schema core.Schema) (core.StoredRecord, error) {
	normalized := normalize(record)

	var out core.StoredRecord
	fields := make(map[string]core.SqlValue)
	var order []string

	inData := false
	for _, line := range strings.Split(normalized, "\n") {
		if strings.HasPrefix(line, timestampPrefix) {
			if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(line[len(timestampPrefix):])); err == nil {
				out.CreatedAt = ts
			}
			continue
		}
		if strings.TrimRight(line, " \t") == dataHeader {
			inData = true
			continue
		}
		if !inData || !strings.HasPrefix(line, fieldIndent) {
			continue
		}

		body := line[len(fieldIndent):]
		sep := strings.Index(body, fieldSeparator)
		if sep < 0 {
			continue
		}
		name := strings.TrimSpace(body[:sep])
		literal := strings.TrimSpace(body[sep+len(fieldSeparator):])
		if name == "" {
			continue
		}
		if _, dup := fields[name]; !dup {
			order = append(order, name)
		}
		fields[name] = parseStoredLiteral(literal)
	}

	if len(schema) == 0 {
		out.Values = make(core.Row, 0, len(order))
		for _, name := range order {
			out.Values = append(out.Values, fields[name])
		}
		if len(out.Values) == 0 {
			return core.StoredRecord{}, fmt.Errorf("%w: record has no data fields", ErrCannotReconstruct)
		}
		return out, nil
	}

	out.Values = make(core.Row, len(schema))
	for i, col := range schema {
		v, ok := fields[col.Name]
		if !ok {
			return core.StoredRecord{}, fmt.Errorf(
				"%w: column %q is absent from the record", ErrCannotReconstruct, col.Name)
		}
		out.Values[i] = v
	}
	return out, nil
}

// parseStoredLiteral turns one stored literal back into a typed value.
// Unlike the insert-path literal parser this is total: text that fits no
// other form decodes as a bare string rather than failing, so one malformed
// field never poisons a whole record.
func parseStoredLiteral(literal string) core.SqlValue {
	trimmed := strings.TrimSpace(literal)

	if strings.EqualFold(trimmed, "null") {
		return core.Null()
	}
	if strings.EqualFold(trimmed, "true") {
		return core.Boolean(true)
	}
	if strings.EqualFold(trimmed, "false") {
		return core.Boolean(false)
	}

	if len(trimmed) >= 2 {
		if (trimmed[0] == '\'' && trimmed[len(trimmed)-1] == '\'') ||
			(trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"') {
			inner := trimmed[1 : len(trimmed)-1]
			if trimmed[0] == '\'' {
				inner = strings.ReplaceAll(inner, "''", "'")
			}
			return core.StringValue(inner)
		}
	}

	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return core.Integer(i)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return core.FloatValue(f)
	}
	return core.StringValue(trimmed)
}
