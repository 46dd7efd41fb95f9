package sqlparse

import (
	"errors"
	"testing"

	"github.com/chatql/chatql/internal/core"
)

func TestParseSchemaFullDeclaration(t *testing.T) {
	schema, err := ParseSchema("id INT PRIMARY KEY, name VARCHAR(50) NOT NULL, active BOOLEAN, score FLOAT")
	if err != nil {
		t.Fatalf("ParseSchema failed: %v", err)
	}
	if len(schema) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(schema))
	}

	id := schema[0]
	if id.Name != "id" || id.Type != core.TypeInt || !id.PrimaryKey || !id.Nullable {
		t.Errorf("unexpected id column: %+v", id)
	}
	name := schema[1]
	if name.Name != "name" || name.Type != core.TypeVarchar || name.Size != 50 || name.Nullable {
		t.Errorf("unexpected name column: %+v", name)
	}
	if schema[2].Type != core.TypeBoolean || schema[3].Type != core.TypeFloat {
		t.Errorf("unexpected trailing columns: %+v %+v", schema[2], schema[3])
	}
}

func TestParseSchemaTypeSynonyms(t *testing.T) {
	cases := []struct {
		decl string
		want core.DataType
	}{
		{"c integer", core.TypeInt},
		{"c string", core.TypeVarchar},
		{"c text", core.TypeVarchar},
		{"c character(3)", core.TypeChar},
		{"c bool", core.TypeBoolean},
		{"c real", core.TypeFloat},
		{"c numeric", core.TypeDecimal},
		{"c timestamp", core.TypeDatetime},
	}
	for _, tc := range cases {
		schema, err := ParseSchema(tc.decl)
		if err != nil {
			t.Errorf("ParseSchema(%q) failed: %v", tc.decl, err)
			continue
		}
		if schema[0].Type != tc.want {
			t.Errorf("ParseSchema(%q) type = %s, want %s", tc.decl, schema[0].Type, tc.want)
		}
	}
}

func TestParseSchemaDefaultSizes(t *testing.T) {
	schema, err := ParseSchema("a VARCHAR, b CHAR, c INT")
	if err != nil {
		t.Fatalf("ParseSchema failed: %v", err)
	}
	if schema[0].Size != 255 {
		t.Errorf("VARCHAR default size = %d, want 255", schema[0].Size)
	}
	if schema[1].Size != 1 {
		t.Errorf("CHAR default size = %d, want 1", schema[1].Size)
	}
	if schema[2].Size != 0 {
		t.Errorf("INT size = %d, want 0", schema[2].Size)
	}
}

func TestParseSchemaSizePolicy(t *testing.T) {
	bad := []string{
		"id INT(11)",          // INT takes no size
		"d DATE(8)",           // date types take no size
		"n VARCHAR(0)",        // zero is out of range
		"n VARCHAR(70000)",    // above the 65535 cap
		"f FLOAT(66)",         // precision above 65
		"b BOOLEAN(1)",        // BOOLEAN takes no size
		"n VARCHAR(abc)",      // non-numeric size
		"n VARCHAR(-5)",       // negative size
	}
	for _, decl := range bad {
		if _, err := ParseSchema(decl); !errors.Is(err, core.ErrSchemaSyntax) {
			t.Errorf("ParseSchema(%q) error = %v, want ErrSchemaSyntax", decl, err)
		}
	}

	schema, err := ParseSchema("d DECIMAL(10), v VARCHAR(65535)")
	if err != nil {
		t.Fatalf("ParseSchema failed on in-range sizes: %v", err)
	}
	if schema[0].Size != 10 || schema[1].Size != 65535 {
		t.Errorf("sizes = %d, %d; want 10, 65535", schema[0].Size, schema[1].Size)
	}
}

func TestParseSchemaDuplicateColumn(t *testing.T) {
	_, err := ParseSchema("id INT, name VARCHAR, id BOOLEAN")
	if !errors.Is(err, core.ErrDuplicateColumn) {
		t.Fatalf("error = %v, want ErrDuplicateColumn", err)
	}
}

func TestParseSchemaEmpty(t *testing.T) {
	for _, decl := range []string{"", "   ", "\t\n"} {
		schema, err := ParseSchema(decl)
		if err != nil {
			t.Errorf("ParseSchema(%q) failed: %v", decl, err)
		}
		if len(schema) != 0 {
			t.Errorf("ParseSchema(%q) = %d columns, want 0", decl, len(schema))
		}
	}
}

func TestParseSchemaLegacyColonForm(t *testing.T) {
	schema, err := ParseSchema("id: INT, name: VARCHAR(30)")
	if err != nil {
		t.Fatalf("ParseSchema failed on legacy form: %v", err)
	}
	if len(schema) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(schema))
	}
	if schema[0].Name != "id" || schema[0].Type != core.TypeInt {
		t.Errorf("unexpected first column: %+v", schema[0])
	}
	if schema[1].Name != "name" || schema[1].Size != 30 {
		t.Errorf("unexpected second column: %+v", schema[1])
	}
}

func TestParseSchemaUnknownType(t *testing.T) {
	_, err := ParseSchema("id BIGSERIAL")
	if !errors.Is(err, core.ErrSchemaSyntax) {
		t.Fatalf("error = %v, want ErrSchemaSyntax", err)
	}
}

func TestParseSchemaConstraintScanIsForgiving(t *testing.T) {
	// Unrecognized trailing tokens are ignored; NOT NULL and PRIMARY KEY
	// are picked up anywhere after the type, in any case.
	schema, err := ParseSchema("id INT default 0 primary key, name VARCHAR not null unique")
	if err != nil {
		t.Fatalf("ParseSchema failed: %v", err)
	}
	if !schema[0].PrimaryKey {
		t.Errorf("expected primary key on id")
	}
	if schema[1].Nullable {
		t.Errorf("expected NOT NULL on name")
	}
}

func TestParseSchemaRenderRoundTrip(t *testing.T) {
	decl := "id INT NOT NULL PRIMARY KEY, name VARCHAR(50), note CHAR(10) NOT NULL"
	schema, err := ParseSchema(decl)
	if err != nil {
		t.Fatalf("ParseSchema failed: %v", err)
	}
	again, err := ParseSchema(schema.Render())
	if err != nil {
		t.Fatalf("reparse of rendered schema failed: %v", err)
	}
	if again.Render() != schema.Render() {
		t.Errorf("render not stable: %q vs %q", schema.Render(), again.Render())
	}
}
