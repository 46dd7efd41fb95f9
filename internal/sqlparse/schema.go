// Package sqlparse turns declaration text, literal lists and WHERE clauses
// into typed form. All parsing here is pure and synchronous.
package sqlparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chatql/chatql/internal/core"
)

// Declaration format versions. Legacy declarations separated name and type
// with a colon ("name: type"); the detector rewrites them into the canonical
// whitespace form so one parser handles both.
const (
	declFormatCanonical = iota
	declFormatLegacyColon
)

func detectDeclarationFormat(declaration string) int {
	if strings.Contains(declaration, ": ") {
		return declFormatLegacyColon
	}
	return declFormatCanonical
}

// NormalizeDeclaration rewrites a declaration into canonical form. Canonical
// input passes through untouched.
func NormalizeDeclaration(declaration string) string {
	if detectDeclarationFormat(declaration) == declFormatLegacyColon {
		return strings.ReplaceAll(declaration, ": ", " ")
	}
	return declaration
}

// Size bounds per type family. VARCHAR/CHAR sizes are rune limits, numeric
// sizes are precision digits.
const (
	maxCharSize    = 65535
	maxNumericSize = 65

	defaultVarcharSize = 255
	defaultCharSize    = 1
)

// typeSynonyms maps accepted spellings onto the closed type set.
var typeSynonyms = map[string]core.DataType{
	"int": core.TypeInt, "integer": core.TypeInt,
	"varchar": core.TypeVarchar, "string": core.TypeVarchar, "text": core.TypeVarchar,
	"char": core.TypeChar, "character": core.TypeChar,
	"bool": core.TypeBoolean, "boolean": core.TypeBoolean,
	"float": core.TypeFloat, "real": core.TypeFloat,
	"double":  core.TypeDouble,
	"decimal": core.TypeDecimal, "numeric": core.TypeDecimal,
	"date":     core.TypeDate,
	"time":     core.TypeTime,
	"datetime": core.TypeDatetime, "timestamp": core.TypeDatetime,
}

// ParseSchema parses a comma-separated column-declaration string into an
// ordered column list. Empty input yields an empty schema (schemaless table).
// Legacy colon-separated declarations are normalized first.
//
// Each segment is "name type[(size)] [NOT NULL] [PRIMARY KEY]". Constraint
// keywords are recognized anywhere after the type; other trailing tokens are
// ignored. Duplicate column names are rejected.
func ParseSchema(declaration string) (core.Schema, error) {
	normalized := NormalizeDeclaration(declaration)
	if strings.TrimSpace(normalized) == "" {
		return core.Schema{}, nil
	}

	var schema core.Schema
	seen := make(map[string]bool)

	for _, segment := range strings.Split(normalized, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		col, err := parseColumn(segment)
		if err != nil {
			return nil, err
		}
		if seen[col.Name] {
			return nil, fmt.Errorf("%w: column %q is declared more than once", core.ErrDuplicateColumn, col.Name)
		}
		seen[col.Name] = true
		schema = append(schema, col)
	}

	return schema, nil
}

func parseColumn(segment string) (core.ColumnDefinition, error) {
	parts := strings.Fields(segment)
	if len(parts) < 2 {
		return core.ColumnDefinition{}, fmt.Errorf(
			"%w: invalid column definition %q, expected 'column_name data_type' (example: id INT)",
			core.ErrSchemaSyntax, segment)
	}

	col := core.ColumnDefinition{Name: parts[0], Nullable: true}

	typeToken := parts[1]
	rawType := typeToken
	sizeText := ""
	if open := strings.IndexByte(typeToken, '('); open >= 0 {
		end := strings.IndexByte(typeToken, ')')
		if end < open {
			return core.ColumnDefinition{}, fmt.Errorf(
				"%w: malformed size in %q for column %q (example: name VARCHAR(100))",
				core.ErrSchemaSyntax, typeToken, col.Name)
		}
		rawType = typeToken[:open]
		sizeText = typeToken[open+1 : end]
	}

	dataType, ok := typeSynonyms[strings.ToLower(rawType)]
	if !ok {
		return core.ColumnDefinition{}, fmt.Errorf(
			"%w: %q is not a valid data type for column %q (supported: INT, VARCHAR, CHAR, BOOLEAN, FLOAT, DOUBLE, DECIMAL, DATE, TIME, DATETIME; examples: id INT, name VARCHAR(100), active BOOLEAN)",
			core.ErrSchemaSyntax, rawType, col.Name)
	}
	col.Type = dataType

	size, err := parseSize(col.Name, dataType, sizeText)
	if err != nil {
		return core.ColumnDefinition{}, err
	}
	col.Size = size

	applyConstraints(&col, parts[2:])
	return col, nil
}

// parseSize enforces the per-type size policy: VARCHAR/CHAR take an optional
// rune limit in (0, 65535] and default to 255/1; FLOAT/DOUBLE/DECIMAL take an
// optional precision in (0, 65]; every other type rejects a size outright.
func parseSize(column string, t core.DataType, sizeText string) (uint32, error) {
	if sizeText == "" {
		switch t {
		case core.TypeVarchar:
			return defaultVarcharSize, nil
		case core.TypeChar:
			return defaultCharSize, nil
		}
		return 0, nil
	}

	n, err := strconv.ParseUint(sizeText, 10, 32)
	if err != nil {
		return 0, fmt.Errorf(
			"%w: size %q for column %q is not an unsigned integer (example: name VARCHAR(100))",
			core.ErrSchemaSyntax, sizeText, column)
	}

	switch t {
	case core.TypeVarchar, core.TypeChar:
		if n == 0 || n > maxCharSize {
			return 0, fmt.Errorf(
				"%w: size %d for column %q is out of range, %s size must be between 1 and %d",
				core.ErrSchemaSyntax, n, column, t, maxCharSize)
		}
		return uint32(n), nil
	case core.TypeFloat, core.TypeDouble, core.TypeDecimal:
		if n == 0 || n > maxNumericSize {
			return 0, fmt.Errorf(
				"%w: precision %d for column %q is out of range, %s precision must be between 1 and %d",
				core.ErrSchemaSyntax, n, column, t, maxNumericSize)
		}
		return uint32(n), nil
	default:
		return 0, fmt.Errorf(
			"%w: %s does not take a size, column %q should be declared as %q",
			core.ErrSchemaSyntax, t, column, column+" "+string(t))
	}
}

// applyConstraints scans tokens after the type for the two-word sequences
// NOT NULL and PRIMARY KEY, case-insensitively. Anything else is ignored;
// this is a forgiving keyword scan, not a grammar.
func applyConstraints(col *core.ColumnDefinition, tokens []string) {
	for i := 0; i < len(tokens); i++ {
		switch strings.ToUpper(tokens[i]) {
		case "NOT":
			if i+1 < len(tokens) && strings.EqualFold(tokens[i+1], "NULL") {
				col.Nullable = false
				i++
			}
		case "PRIMARY":
			if i+1 < len(tokens) && strings.EqualFold(tokens[i+1], "KEY") {
				col.PrimaryKey = true
				i++
			}
		}
	}
}
