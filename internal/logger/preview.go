package logger

import "strings"

// Preview flattens s onto a single line and shortens it to limit runes,
// appending an ellipsis when truncated.
func Preview(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
