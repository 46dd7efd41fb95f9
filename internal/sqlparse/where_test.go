package sqlparse

import (
	"testing"

	"github.com/chatql/chatql/internal/core"
)

func whereFixture(t *testing.T) (core.Row, core.Schema) {
	t.Helper()
	schema, err := ParseSchema("id INT, name VARCHAR(50), active BOOLEAN, score FLOAT, note VARCHAR")
	if err != nil {
		t.Fatalf("ParseSchema failed: %v", err)
	}
	row := core.Row{
		core.Integer(1),
		core.StringValue("John"),
		core.Boolean(true),
		core.FloatValue(2.5),
		core.Null(),
	}
	return row, schema
}

func TestEvaluateWhereConditions(t *testing.T) {
	row, schema := whereFixture(t)

	cases := []struct {
		clause string
		want   bool
	}{
		{"", true},
		{"   ", true},
		{"id = 1", true},
		{"id = 2", false},
		{"name = 'John'", true},
		{"name = 'jane'", false},
		{"active = true", true},
		{"active = false", false},
		{"score = 2.5", true},
		{"note = null", true},
		{"note = NULL", false}, // comparison is textual; NULL renders lowercase
		{"name = John", false}, // unquoted text never matches a string value
		{"ghost = 1", false},   // unknown column fails closed
		{"id 1", false},        // no '=' at all
	}
	for _, tc := range cases {
		if got := EvaluateWhere(row, schema, tc.clause); got != tc.want {
			t.Errorf("EvaluateWhere(%q) = %v, want %v", tc.clause, got, tc.want)
		}
	}
}

func TestEvaluateWherePrecedence(t *testing.T) {
	row, schema := whereFixture(t)

	cases := []struct {
		clause string
		want   bool
	}{
		{"id = 1 AND active = true", true},
		{"id = 1 AND active = false", false},
		{"id = 2 OR name = 'John'", true},
		{"id = 2 OR name = 'jane'", false},
		// AND binds tighter than OR.
		{"id = 2 AND active = true OR name = 'John'", true},
		{"id = 1 OR id = 2 AND name = 'jane'", true},
		// Parentheses override.
		{"(id = 2 OR name = 'John') AND active = true", true},
		{"(id = 2 OR name = 'jane') AND active = true", false},
		{"((id = 1))", true},
	}
	for _, tc := range cases {
		if got := EvaluateWhere(row, schema, tc.clause); got != tc.want {
			t.Errorf("EvaluateWhere(%q) = %v, want %v", tc.clause, got, tc.want)
		}
	}
}

func TestEvaluateWhereNestedGroupsNotMisSplit(t *testing.T) {
	row, schema := whereFixture(t)

	// The OR inside the group must not split the outer AND.
	clause := "active = true AND (id = 5 OR name = 'John')"
	if !EvaluateWhere(row, schema, clause) {
		t.Errorf("EvaluateWhere(%q) = false, want true", clause)
	}
}

func TestSplitTopLevel(t *testing.T) {
	parts := splitTopLevel("a = 1 OR (b = 2 OR c = 3)", " OR ")
	if len(parts) != 2 {
		t.Fatalf("got %d parts %v, want 2", len(parts), parts)
	}

	whole := splitTopLevel("a = 1", " OR ")
	if len(whole) != 1 || whole[0] != "a = 1" {
		t.Fatalf("got %v, want the whole expression", whole)
	}
}
