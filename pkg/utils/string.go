package utils

// Truncate shortens s to at most maxLen runes, appending "..." when
// anything was cut. Counting runes keeps Devanagari text intact.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
