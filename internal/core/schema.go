package core

import (
	"strconv"
	"strings"
)

// DataType is the closed set of column types the engine understands.
type DataType string

const (
	TypeInt      DataType = "INT"
	TypeVarchar  DataType = "VARCHAR"
	TypeChar     DataType = "CHAR"
	TypeBoolean  DataType = "BOOLEAN"
	TypeFloat    DataType = "FLOAT"
	TypeDouble   DataType = "DOUBLE"
	TypeDecimal  DataType = "DECIMAL"
	TypeDate     DataType = "DATE"
	TypeTime     DataType = "TIME"
	TypeDatetime DataType = "DATETIME"
)

// ValidTypes lists every recognized data type, in declaration-help order.
var ValidTypes = []DataType{
	TypeInt, TypeVarchar, TypeChar, TypeBoolean,
	TypeFloat, TypeDouble, TypeDecimal,
	TypeDate, TypeTime, TypeDatetime,
}

// IsNumeric reports whether the type accepts both FLOAT and INT literals.
func (t DataType) IsNumeric() bool {
	switch t {
	case TypeFloat, TypeDouble, TypeDecimal:
		return true
	}
	return false
}

// ColumnDefinition is one parsed column of a table declaration.
type ColumnDefinition struct {
	// Name is the column identifier, unique within its schema.
	Name string

	// Type is the normalized data type.
	Type DataType

	// Size is the character limit for VARCHAR/CHAR or the precision for
	// FLOAT/DOUBLE/DECIMAL. Zero means no size; INT, BOOLEAN and the
	// date/time types never carry one.
	Size uint32

	// Nullable is true unless the declaration carried NOT NULL.
	Nullable bool

	// PrimaryKey is true when the declaration carried PRIMARY KEY.
	PrimaryKey bool
}

// Render writes the column back in canonical declaration form, e.g.
// "name VARCHAR(255) NOT NULL PRIMARY KEY". Re-parsing the rendered text
// yields an equal definition.
func (c ColumnDefinition) Render() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte(' ')
	b.WriteString(string(c.Type))
	if c.Size > 0 {
		b.WriteByte('(')
		b.WriteString(strconv.FormatUint(uint64(c.Size), 10))
		b.WriteByte(')')
	}
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	return b.String()
}

// ExampleLiteral returns a plausible literal for the column's type, used in
// corrective error messages.
func (c ColumnDefinition) ExampleLiteral() string {
	switch c.Type {
	case TypeInt:
		return "42"
	case TypeVarchar, TypeChar:
		return "'text'"
	case TypeBoolean:
		return "true"
	case TypeFloat, TypeDouble, TypeDecimal:
		return "3.14"
	case TypeDate:
		return "'2023-12-25'"
	case TypeTime:
		return "'14:30:00'"
	case TypeDatetime:
		return "'2023-12-25T14:30:00Z'"
	default:
		return "'value'"
	}
}

// Schema is the ordered column list of one table. Column order defines the
// positional alignment with value rows. An empty schema means the table is
// schemaless and accepts any row shape.
type Schema []ColumnDefinition

// Render writes the schema back as a canonical comma-separated declaration.
func (s Schema) Render() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.Render()
	}
	return strings.Join(parts, ", ")
}

// ColumnIndex returns the position of the named column, or -1. Duplicate
// names are rejected at parse time, so lookups are unambiguous.
func (s Schema) ColumnIndex(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnNames returns the names in declaration order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// PrimaryKeyIndexes returns the positions of all PRIMARY KEY columns, in
// declaration order. An empty result means the table has no primary key.
func (s Schema) PrimaryKeyIndexes() []int {
	var idx []int
	for i, c := range s {
		if c.PrimaryKey {
			idx = append(idx, i)
		}
	}
	return idx
}

// ExampleRow synthesizes an example literal list matching the schema, for
// corrective error messages.
func (s Schema) ExampleRow() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.ExampleLiteral()
	}
	return strings.Join(parts, ", ")
}
