package sqlparse

import (
	"errors"
	"testing"

	"github.com/chatql/chatql/internal/core"
)

func TestParseValuesMixedRow(t *testing.T) {
	row, err := ParseValues("1, 'John', true, NULL, 3.14")
	if err != nil {
		t.Fatalf("ParseValues failed: %v", err)
	}
	want := core.Row{
		core.Integer(1),
		core.StringValue("John"),
		core.Boolean(true),
		core.Null(),
		core.FloatValue(3.14),
	}
	if !row.Equal(want) {
		t.Fatalf("row = %+v, want %+v", row, want)
	}
}

func TestParseValuesDoubledQuoteEscape(t *testing.T) {
	row, err := ParseValues("'John''s book'")
	if err != nil {
		t.Fatalf("ParseValues failed: %v", err)
	}
	if row[0].Str != "John's book" {
		t.Errorf("string = %q, want %q", row[0].Str, "John's book")
	}
}

func TestParseValuesBackslashEscape(t *testing.T) {
	row, err := ParseValues(`'a\'b'`)
	if err != nil {
		t.Fatalf("ParseValues failed: %v", err)
	}
	if row[0].Str != "a'b" {
		t.Errorf("string = %q, want %q", row[0].Str, "a'b")
	}
}

func TestParseValuesCommasInsideStrings(t *testing.T) {
	row, err := ParseValues("'a, b', 2")
	if err != nil {
		t.Fatalf("ParseValues failed: %v", err)
	}
	if len(row) != 2 || row[0].Str != "a, b" || row[1].Int != 2 {
		t.Fatalf("row = %+v", row)
	}
}

func TestParseValuesDiscardsTrailingAfterCloseQuote(t *testing.T) {
	// Characters between a closing quote and the next comma are dropped.
	row, err := ParseValues("'abc'xyz, 5")
	if err != nil {
		t.Fatalf("ParseValues failed: %v", err)
	}
	if len(row) != 2 {
		t.Fatalf("expected 2 values, got %d: %+v", len(row), row)
	}
	if row[0].Str != "abc" {
		t.Errorf("string = %q, want %q", row[0].Str, "abc")
	}
	if row[1].Int != 5 {
		t.Errorf("second value = %+v, want 5", row[1])
	}
}

func TestParseValuesKeywordsCaseInsensitive(t *testing.T) {
	row, err := ParseValues("null, TRUE, False, NuLL")
	if err != nil {
		t.Fatalf("ParseValues failed: %v", err)
	}
	if !row[0].IsNull() || !row[3].IsNull() {
		t.Errorf("expected NULLs at positions 0 and 3: %+v", row)
	}
	if row[1].Bool != true || row[2].Bool != false {
		t.Errorf("booleans = %+v", row)
	}
}

func TestParseValuesNumericClassification(t *testing.T) {
	row, err := ParseValues("-7, 2.5, -0.5, 1e3")
	if err != nil {
		t.Fatalf("ParseValues failed: %v", err)
	}
	if row[0].Kind != core.KindInteger || row[0].Int != -7 {
		t.Errorf("first = %+v, want integer -7", row[0])
	}
	for i := 1; i < 4; i++ {
		if row[i].Kind != core.KindFloat {
			t.Errorf("position %d kind = %v, want float", i, row[i].Kind)
		}
	}
}

func TestParseValuesErrors(t *testing.T) {
	cases := []string{
		"",          // no values at all
		"   ",       // whitespace only
		"'abc",      // unterminated string
		"1, abc, 2", // bare word is not a literal
	}
	for _, input := range cases {
		if _, err := ParseValues(input); !errors.Is(err, core.ErrLiteralSyntax) {
			t.Errorf("ParseValues(%q) error = %v, want ErrLiteralSyntax", input, err)
		}
	}
}

func TestParseValuesEmptyString(t *testing.T) {
	row, err := ParseValues("''")
	if err != nil {
		t.Fatalf("ParseValues failed: %v", err)
	}
	if row[0].Kind != core.KindString || row[0].Str != "" {
		t.Errorf("value = %+v, want empty string", row[0])
	}
}
