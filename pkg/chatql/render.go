package chatql

import (
	"fmt"
	"strings"
)

// FormatResultSet renders a result set as an aligned text table with a
// match-count footer, the way the query output is shown to users.
func FormatResultSet(rs *ResultSet) string {
	if rs == nil {
		return ""
	}
	if rs.TotalMatches == 0 {
		return fmt.Sprintf("%s: no matching records", rs.Table)
	}

	widths := make([]int, len(rs.Columns))
	for i, name := range rs.Columns {
		widths[i] = len(name)
	}
	for _, row := range rs.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if pad := widths[i] - len(cell); pad > 0 && i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", pad))
			}
		}
		b.WriteByte('\n')
	}

	writeRow(rs.Columns)
	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteByte('\n')
	for _, row := range rs.Rows {
		writeRow(row)
	}

	if rs.Truncated() {
		fmt.Fprintf(&b, "%d matches, showing first %d", rs.TotalMatches, len(rs.Rows))
	} else {
		fmt.Fprintf(&b, "%d matches", rs.TotalMatches)
	}
	if rs.Distinct {
		b.WriteString(" (distinct)")
	}
	return b.String()
}
