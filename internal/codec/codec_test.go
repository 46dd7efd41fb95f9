package codec

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chatql/chatql/internal/core"
	"github.com/chatql/chatql/internal/sqlparse"
)

func mustSchema(t *testing.T, decl string) core.Schema {
	t.Helper()
	schema, err := sqlparse.ParseSchema(decl)
	if err != nil {
		t.Fatalf("ParseSchema(%q) failed: %v", decl, err)
	}
	return schema
}

func TestEncodeCanonicalLayout(t *testing.T) {
	schema := mustSchema(t, "id INT, name VARCHAR")
	createdAt := time.Date(2023, 12, 25, 14, 30, 0, 0, time.UTC)
	row := core.Row{core.Integer(1), core.StringValue("John's")}

	got := Encode(row, schema, createdAt)
	want := "INSERTED 2023-12-25T14:30:00Z\nDATA:\n  id: 1\n  name: 'John''s'"
	if got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	schema := mustSchema(t, "id INT, name VARCHAR, active BOOLEAN, score FLOAT, note VARCHAR")
	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	row := core.Row{
		core.Integer(42),
		core.StringValue("it's a test"),
		core.Boolean(false),
		core.FloatValue(2.5),
		core.Null(),
	}

	stored, err := Decode(Encode(row, schema, createdAt), schema)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !stored.Values.Equal(row) {
		t.Errorf("round trip row = %+v, want %+v", stored.Values, row)
	}
	if !stored.CreatedAt.Equal(createdAt) {
		t.Errorf("round trip timestamp = %v, want %v", stored.CreatedAt, createdAt)
	}
}

func TestDecodeReordersToSchema(t *testing.T) {
	schema := mustSchema(t, "id INT, name VARCHAR")
	record := "INSERTED 2023-12-25T14:30:00Z\nDATA:\n  name: 'John'\n  id: 1"

	stored, err := Decode(record, schema)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if stored.Values[0].Int != 1 || stored.Values[1].Str != "John" {
		t.Errorf("row not in schema order: %+v", stored.Values)
	}
}

func TestDecodeLegacyLayout(t *testing.T) {
	schema := mustSchema(t, "id INT, name VARCHAR")
	// Legacy records had no DATA: header and no indent.
	record := "INSERTED 2023-12-25T14:30:00Z\nid: 1\nname: 'John'"

	stored, err := Decode(record, schema)
	if err != nil {
		t.Fatalf("Decode failed on legacy record: %v", err)
	}
	want := core.Row{core.Integer(1), core.StringValue("John")}
	if !stored.Values.Equal(want) {
		t.Errorf("row = %+v, want %+v", stored.Values, want)
	}
}

func TestDecodeMissingColumnFails(t *testing.T) {
	schema := mustSchema(t, "id INT, name VARCHAR")
	record := "INSERTED 2023-12-25T14:30:00Z\nDATA:\n  id: 1"

	_, err := Decode(record, schema)
	if !errors.Is(err, ErrCannotReconstruct) {
		t.Fatalf("error = %v, want ErrCannotReconstruct", err)
	}
	if !strings.Contains(err.Error(), "name") {
		t.Errorf("error does not name the absent column: %v", err)
	}
}

func TestDecodeSchemalessKeepsRecordOrder(t *testing.T) {
	record := "INSERTED 2023-12-25T14:30:00Z\nDATA:\n  column_0: 'b'\n  column_1: 7"

	stored, err := Decode(record, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(stored.Values) != 2 || stored.Values[0].Str != "b" || stored.Values[1].Int != 7 {
		t.Errorf("row = %+v", stored.Values)
	}
}

func TestEncodeSchemalessUsesPositionalNames(t *testing.T) {
	row := core.Row{core.Integer(1), core.StringValue("x")}
	record := Encode(row, nil, time.Now())
	if !strings.Contains(record, "  column_0: 1") || !strings.Contains(record, "  column_1: 'x'") {
		t.Fatalf("unexpected schemaless record: %q", record)
	}
}

func TestDecodeStoredLiteralFallback(t *testing.T) {
	schema := mustSchema(t, "note VARCHAR")
	// A stored field that is neither quoted, numeric, boolean nor NULL
	// decodes as a bare string rather than failing the record.
	record := "INSERTED 2023-12-25T14:30:00Z\nDATA:\n  note: unquoted text"

	stored, err := Decode(record, schema)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if stored.Values[0].Kind != core.KindString || stored.Values[0].Str != "unquoted text" {
		t.Errorf("value = %+v, want bare string", stored.Values[0])
	}
}

func TestDecodeNoDataFieldsSchemaless(t *testing.T) {
	_, err := Decode("INSERTED 2023-12-25T14:30:00Z\nDATA:", nil)
	if !errors.Is(err, ErrCannotReconstruct) {
		t.Fatalf("error = %v, want ErrCannotReconstruct", err)
	}
}
