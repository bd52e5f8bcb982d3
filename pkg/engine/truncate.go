package engine

import "strings"

// Ellipsis is appended to responses cut by Truncate.
const Ellipsis = "..."

// Truncate limits text to limit whitespace-separated words. Longer text is
// re-joined with single spaces and suffixed with Ellipsis; the bool reports
// whether that happened. Text within the limit is returned unchanged.
func Truncate(text string, limit int) (string, bool) {
	if limit <= 0 {
		return text, false
	}

	words := strings.Fields(text)
	if len(words) <= limit {
		return text, false
	}

	return strings.Join(words[:limit], " ") + Ellipsis, true
}
