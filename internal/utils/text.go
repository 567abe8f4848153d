package utils

import (
	"strings"
	"unicode/utf8"
)

// CleanUTF8 removes invalid UTF8 sequences and NUL bytes from a string.
// The boolean reports whether anything had to be removed.
func CleanUTF8(input string) (string, bool) {
	needsCleaning := strings.Contains(input, "\x00") || !utf8.ValidString(input)

	if !needsCleaning {
		return input, false
	}

	cleaned := strings.ToValidUTF8(input, "")
	cleaned = strings.ReplaceAll(cleaned, "\x00", "")

	return cleaned, true
}

// CleanText trims and sanitizes user supplied free text.
func CleanText(input string) string {
	cleaned, _ := CleanUTF8(input)
	return strings.TrimSpace(cleaned)
}

// Truncate shortens input to at most limit runes, appending an ellipsis when
// anything was cut.
func Truncate(input string, limit int) string {
	if utf8.RuneCountInString(input) <= limit {
		return input
	}
	runes := []rune(input)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
