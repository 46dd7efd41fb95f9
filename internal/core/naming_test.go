package core

import "testing"

func TestSanitizeTableName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		changed bool
	}{
		{"users", "users", false},
		{"Users", "users", true},
		{"my table", "my_table", true},
		{"order-items!", "order_items", true},
		{"__padded__", "padded", true},
		{"a    b", "a_b", true},
		{"table_1", "table_1", false},
		{"  trimmed  ", "trimmed", false},
		{"***", "", true},
		{"", "", false},
		{"héllo", "h_llo", true},
	}
	for _, tc := range cases {
		got, changed := SanitizeTableName(tc.in)
		if got != tc.want || changed != tc.changed {
			t.Errorf("SanitizeTableName(%q) = %q, %v; want %q, %v",
				tc.in, got, changed, tc.want, tc.changed)
		}
	}
}

func TestSessionContextTableID(t *testing.T) {
	s := SessionContext{TenantID: "acme", UserID: "u1", TableSet: "general"}
	if got := s.TableID("My Table"); got != "acme/general/my_table" {
		t.Errorf("TableID = %q", got)
	}
}
