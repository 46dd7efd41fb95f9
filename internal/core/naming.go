package core

import "strings"

// SanitizeTableName normalizes a user-supplied table or table-set name into
// the form used for backing log names: lowercase, spaces and non-alphanumeric
// runes become underscores, runs of underscores collapse, and leading or
// trailing underscores are trimmed. Returns the sanitized name and whether it
// differs from the input.
func SanitizeTableName(name string) (string, bool) {
	original := strings.TrimSpace(name)

	var b strings.Builder
	for _, r := range strings.ToLower(original) {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	sanitized := b.String()
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}
	sanitized = strings.Trim(sanitized, "_")

	return sanitized, sanitized != original
}
