// Package validate checks parsed value rows against table schemas.
package validate

import (
	"fmt"
	"unicode/utf8"

	"github.com/chatql/chatql/internal/core"
)

// Row validates a parsed row against a schema, position by position. An empty
// schema accepts any row shape (schemaless tables). Checks run in order:
// arity, then per column nullability, type and size; the first violation is
// returned and the rest are not inspected.
func Row(values core.Row, schema core.Schema) error {
	if len(schema) == 0 {
		return nil
	}

	if len(values) != len(schema) {
		return fmt.Errorf(
			"%w: expected %d values for columns (%s), got %d (example: %s)",
			core.ErrArityMismatch, len(schema),
			joinNames(schema), len(values), schema.ExampleRow())
	}

	for i, col := range schema {
		if err := value(values[i], col, i+1); err != nil {
			return err
		}
	}
	return nil
}

func joinNames(schema core.Schema) string {
	out := ""
	for i, c := range schema {
		if i > 0 {
			out += ", "
		}
		out += c.Name
	}
	return out
}

func value(v core.SqlValue, col core.ColumnDefinition, position int) error {
	if v.IsNull() {
		if !col.Nullable {
			return fmt.Errorf(
				"%w: column %q (position %d) is declared %s NOT NULL and cannot take NULL",
				core.ErrNullNotAllowed, col.Name, position, col.Type)
		}
		return nil
	}

	switch col.Type {
	case core.TypeInt:
		if v.Kind != core.KindInteger {
			return typeMismatch(col, position, "integer", v, "42")
		}

	case core.TypeVarchar, core.TypeChar:
		if v.Kind != core.KindString {
			return typeMismatch(col, position, "string", v, "'John'")
		}
		if col.Size > 0 {
			if n := utf8.RuneCountInString(v.Str); n > int(col.Size) {
				return fmt.Errorf(
					"%w: column %q (position %d) holds %d characters, maximum is %d; shorten the text or increase the column size",
					core.ErrStringTooLong, col.Name, position, n, col.Size)
			}
		}

	case core.TypeBoolean:
		if v.Kind != core.KindBoolean {
			return typeMismatch(col, position, "boolean", v, "true")
		}

	case core.TypeFloat, core.TypeDouble, core.TypeDecimal:
		// Integers widen implicitly.
		if v.Kind != core.KindFloat && v.Kind != core.KindInteger {
			return typeMismatch(col, position, "number", v, "3.14")
		}

	case core.TypeDate:
		if v.Kind != core.KindString {
			return typeMismatch(col, position, "string (ISO date)", v, "'2023-12-25'")
		}
		if !ValidDate(v.Str) {
			return fmt.Errorf(
				"%w: column %q (position %d) expects a DATE in YYYY-MM-DD form with a real calendar day (example: '2023-12-25'), got %s",
				core.ErrTypeMismatch, col.Name, position, v.Literal())
		}

	case core.TypeTime:
		if v.Kind != core.KindString {
			return typeMismatch(col, position, "string (ISO time)", v, "'14:30:00'")
		}
		if !ValidTime(v.Str) {
			return fmt.Errorf(
				"%w: column %q (position %d) expects a TIME in HH:MM:SS form, optionally with fraction and zone (example: '14:30:00'), got %s",
				core.ErrTypeMismatch, col.Name, position, v.Literal())
		}

	case core.TypeDatetime:
		if v.Kind != core.KindString {
			return typeMismatch(col, position, "string (ISO datetime)", v, "'2023-12-25T14:30:00Z'")
		}
		if !ValidDatetime(v.Str) {
			return fmt.Errorf(
				"%w: column %q (position %d) expects a DATETIME in YYYY-MM-DDTHH:MM:SS form (example: '2023-12-25T14:30:00Z'), got %s",
				core.ErrTypeMismatch, col.Name, position, v.Literal())
		}
	}

	return nil
}

func typeMismatch(col core.ColumnDefinition, position int, expected string, got core.SqlValue, example string) error {
	return fmt.Errorf(
		"%w: column %q (position %d) expects %s, got %s (example: %s instead of %s)",
		core.ErrTypeMismatch, col.Name, position, expected, got.KindName(), example, got.Literal())
}
