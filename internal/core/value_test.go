package core

import "testing"

func TestLiteralRendering(t *testing.T) {
	cases := []struct {
		v    SqlValue
		want string
	}{
		{Null(), "NULL"},
		{Integer(-42), "-42"},
		{FloatValue(3.14), "3.14"},
		{Boolean(true), "true"},
		{StringValue("John"), "'John'"},
		{StringValue("it's"), "'it''s'"},
		{StringValue(""), "''"},
	}
	for _, tc := range cases {
		if got := tc.v.Literal(); got != tc.want {
			t.Errorf("Literal(%+v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestComparisonTextDiffersFromLiteral(t *testing.T) {
	// Embedded quotes stay single and NULL renders lowercase; both
	// renderings feed the textual WHERE comparison.
	if got := StringValue("it's").ComparisonText(); got != "'it's'" {
		t.Errorf("ComparisonText = %q, want %q", got, "'it's'")
	}
	if got := Null().ComparisonText(); got != "null" {
		t.Errorf("ComparisonText = %q, want %q", got, "null")
	}
}

func TestValueEqual(t *testing.T) {
	if !Integer(5).Equal(Integer(5)) || Integer(5).Equal(Integer(6)) {
		t.Errorf("integer equality broken")
	}
	if Integer(5).Equal(FloatValue(5)) {
		t.Errorf("values of different kinds must not compare equal")
	}
	if !Null().Equal(Null()) {
		t.Errorf("NULL must equal NULL structurally")
	}
	if !FloatValue(1.25).Equal(FloatValue(1.25 + FloatEpsilon/10)) {
		t.Errorf("floats within epsilon must compare equal")
	}
	if FloatValue(1.25).Equal(FloatValue(1.25 + FloatEpsilon*10)) {
		t.Errorf("floats beyond epsilon must differ")
	}
}

func TestRowEqual(t *testing.T) {
	a := Row{Integer(1), StringValue("x")}
	b := Row{Integer(1), StringValue("x")}
	c := Row{Integer(1)}
	if !a.Equal(b) {
		t.Errorf("identical rows must be equal")
	}
	if a.Equal(c) {
		t.Errorf("rows of different length must differ")
	}
}
