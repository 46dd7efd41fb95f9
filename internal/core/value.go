package core

import (
	"strconv"
	"strings"
)

// ValueKind identifies which variant of SqlValue is populated.
type ValueKind int

const (
	// KindNull is the SQL NULL literal.
	KindNull ValueKind = iota

	// KindInteger is a signed 64-bit integer literal.
	KindInteger

	// KindFloat is a 64-bit floating-point literal.
	KindFloat

	// KindString is a single-quoted string literal.
	KindString

	// KindBoolean is a true/false literal.
	KindBoolean
)

// SqlValue is one parsed literal: a tagged union over the five literal kinds.
// Values are immutable once parsed; only the field matching Kind is meaningful.
type SqlValue struct {
	Kind ValueKind

	Int   int64   // for KindInteger
	Float float64 // for KindFloat
	Str   string  // for KindString
	Bool  bool    // for KindBoolean
}

// Constructors keep call sites from touching the union fields directly.

func Null() SqlValue                { return SqlValue{Kind: KindNull} }
func Integer(i int64) SqlValue      { return SqlValue{Kind: KindInteger, Int: i} }
func FloatValue(f float64) SqlValue { return SqlValue{Kind: KindFloat, Float: f} }
func StringValue(s string) SqlValue { return SqlValue{Kind: KindString, Str: s} }
func Boolean(b bool) SqlValue       { return SqlValue{Kind: KindBoolean, Bool: b} }

// IsNull reports whether the value is the NULL literal.
func (v SqlValue) IsNull() bool { return v.Kind == KindNull }

// Literal renders the value in the canonical re-parseable literal form used
// for stored records: strings are single-quoted with embedded quotes doubled,
// booleans are true/false, NULL is the bare NULL keyword.
func (v SqlValue) Literal() string {
	switch v.Kind {
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindString:
		return "'" + strings.ReplaceAll(v.Str, "'", "''") + "'"
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	default:
		return "NULL"
	}
}

// ComparisonText renders the value for textual WHERE comparison. It matches
// Literal except that embedded quotes are not doubled and NULL renders
// lowercase; the filter compares this text against the raw right-hand side of
// a condition, so the rendering here is part of the query semantics.
func (v SqlValue) ComparisonText() string {
	switch v.Kind {
	case KindString:
		return "'" + v.Str + "'"
	case KindNull:
		return "null"
	default:
		return v.Literal()
	}
}

// DisplayText renders the value for tabular result output.
func (v SqlValue) DisplayText() string {
	switch v.Kind {
	case KindString:
		return "'" + v.Str + "'"
	case KindNull:
		return "NULL"
	default:
		return v.Literal()
	}
}

// KindName returns the human-readable kind name used in error messages.
func (v SqlValue) KindName() string {
	switch v.Kind {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "number"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	default:
		return "null"
	}
}

// Equal reports structural equality between two values. Floats compare by
// epsilon; every other kind compares exactly.
func (v SqlValue) Equal(o SqlValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInteger:
		return v.Int == o.Int
	case KindFloat:
		return floatEq(v.Float, o.Float)
	case KindString:
		return v.Str == o.Str
	case KindBoolean:
		return v.Bool == o.Bool
	default:
		return true
	}
}

// FloatEpsilon is the tolerance used when comparing FLOAT values for
// equality, both here and in the primary-key uniqueness scan.
const FloatEpsilon = 1e-9

func floatEq(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < FloatEpsilon
}

// Row is one ordered sequence of values, positionally aligned to a Schema
// once validated.
type Row []SqlValue

// Equal reports whether two rows are structurally equal, element by element.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if !r[i].Equal(o[i]) {
			return false
		}
	}
	return true
}
