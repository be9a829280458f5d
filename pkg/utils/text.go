package utils

import "strings"

// Ellipsis is appended by Truncate when text is cut.
const Ellipsis = "..."

// Truncate shortens text to at most maxRunes runes, counting the ellipsis.
// Slicing is rune based so multi-byte characters are never split.
func Truncate(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes <= len(Ellipsis) {
		return string(runes[:maxRunes])
	}
	cut := strings.TrimRight(string(runes[:maxRunes-len(Ellipsis)]), " \t\n,.;:")
	return cut + Ellipsis
}

// CollapseWhitespace replaces every run of whitespace with a single space.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
