package sqlparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chatql/chatql/internal/core"
)

// ParseValues parses a comma-separated literal list such as
// "1, 'John''s', true, NULL" into typed values, preserving order.
//
// The scan is a single left-to-right pass with one in-string flag. Inside a
// single-quoted string a doubled quote is an escaped literal quote and a
// backslash escapes the next rune; a lone closing quote ends the string, after
// which the scanner skips ahead to the next top-level comma, silently
// discarding stray trailing characters on the same field. Outside strings,
// commas delimit fields and each trimmed field is classified as NULL, boolean,
// integer or float, in that order.
func ParseValues(input string) (core.Row, error) {
	var (
		values     core.Row
		current    strings.Builder
		inString   bool
		escapeNext bool
	)

	runes := []rune(input)
	flushBare := func() error {
		trimmed := strings.TrimSpace(current.String())
		current.Reset()
		if trimmed == "" {
			return nil
		}
		v, err := classifyBareLiteral(trimmed)
		if err != nil {
			return err
		}
		values = append(values, v)
		return nil
	}

	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if escapeNext {
			current.WriteRune(ch)
			escapeNext = false
			continue
		}

		switch {
		case ch == '\\' && inString:
			escapeNext = true

		case ch == '\'':
			if !inString {
				inString = true
				current.Reset()
				continue
			}
			if i+1 < len(runes) && runes[i+1] == '\'' {
				// Doubled quote: escaped literal quote, not a terminator.
				current.WriteRune('\'')
				i++
				continue
			}
			values = append(values, core.StringValue(current.String()))
			current.Reset()
			inString = false
			// Skip ahead to the delimiting comma; anything between the
			// closing quote and the comma is discarded.
			for i+1 < len(runes) {
				i++
				if runes[i] == ',' {
					break
				}
			}

		case ch == ',' && !inString:
			if err := flushBare(); err != nil {
				return nil, err
			}

		default:
			current.WriteRune(ch)
		}
	}

	if inString {
		return nil, fmt.Errorf(
			"%w: unterminated string, missing closing quote (example: 'John' instead of 'John)",
			core.ErrLiteralSyntax)
	}
	if err := flushBare(); err != nil {
		return nil, err
	}

	if len(values) == 0 {
		return nil, fmt.Errorf(
			"%w: no values provided (examples: 1, 'John', true or 42, 'Alice', false, NULL)",
			core.ErrLiteralSyntax)
	}
	return values, nil
}

// classifyBareLiteral types an unquoted field: NULL, boolean, integer, then
// float, case-insensitively for the keywords.
func classifyBareLiteral(text string) (core.SqlValue, error) {
	if strings.EqualFold(text, "NULL") {
		return core.Null(), nil
	}
	switch strings.ToLower(text) {
	case "true":
		return core.Boolean(true), nil
	case "false":
		return core.Boolean(false), nil
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return core.Integer(i), nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return core.FloatValue(f), nil
	}
	return core.SqlValue{}, fmt.Errorf(
		"%w: invalid value %q (valid forms: numbers 42 or 3.14, booleans true/false, strings 'text', NULL)",
		core.ErrLiteralSyntax, text)
}
