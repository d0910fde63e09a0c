package sqlgen

import "strings"

// TruncateStatement reduces raw model output to one statement: everything
// before the first ';', then everything before the first code fence, trimmed,
// with a single ';' appended. Empty output yields ";".
func TruncateStatement(raw string) string {
	s, _, _ := strings.Cut(raw, ";")
	s, _, _ = strings.Cut(s, "```")
	return strings.TrimSpace(s) + ";"
}
