package sqlparse

import (
	"strings"

	"github.com/chatql/chatql/internal/core"
)

// EvaluateWhere evaluates a WHERE clause against one row. Grammar, lowest
// precedence first:
//
//	Or      := And (" OR " And)*
//	And     := Primary (" AND " Primary)*
//	Primary := "(" Or ")" | Condition
//	Condition := column "=" literal-text
//
// OR short-circuits true, AND short-circuits false. A condition compares the
// row value's canonical rendering against the raw right-hand-side text, so
// matching is textual, not typed. Unknown columns and unparseable conditions
// evaluate false (fail-closed). An empty clause passes every row.
func EvaluateWhere(row core.Row, schema core.Schema, clause string) bool {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return true
	}
	return evalOr(row, schema, clause)
}

func evalOr(row core.Row, schema core.Schema, expr string) bool {
	for _, part := range splitTopLevel(expr, " OR ") {
		if evalAnd(row, schema, strings.TrimSpace(part)) {
			return true
		}
	}
	return false
}

func evalAnd(row core.Row, schema core.Schema, expr string) bool {
	for _, part := range splitTopLevel(expr, " AND ") {
		if !evalPrimary(row, schema, strings.TrimSpace(part)) {
			return false
		}
	}
	return true
}

func evalPrimary(row core.Row, schema core.Schema, expr string) bool {
	if strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		return evalOr(row, schema, expr[1:len(expr)-1])
	}
	return evalCondition(row, schema, expr)
}

func evalCondition(row core.Row, schema core.Schema, condition string) bool {
	eq := strings.IndexByte(condition, '=')
	if eq < 0 {
		return false
	}

	column := strings.TrimSpace(condition[:eq])
	expected := strings.TrimSpace(condition[eq+1:])

	idx := schema.ColumnIndex(column)
	if idx < 0 || idx >= len(row) {
		return false
	}
	return row[idx].ComparisonText() == expected
}

// splitTopLevel splits expr at every occurrence of op that sits at
// parenthesis depth zero, so nested groups are never mis-split. When no
// top-level occurrence exists the whole expression is returned as one part.
func splitTopLevel(expr, op string) []string {
	var parts []string
	depth := 0
	start := 0

	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
		default:
			if depth == 0 && strings.HasPrefix(expr[i:], op) {
				if part := expr[start:i]; strings.TrimSpace(part) != "" {
					parts = append(parts, part)
				}
				start = i + len(op)
				i += len(op) - 1
			}
		}
	}

	if rest := expr[start:]; strings.TrimSpace(rest) != "" {
		parts = append(parts, rest)
	}
	if len(parts) == 0 {
		return []string{expr}
	}
	return parts
}
