package telegram

import (
	"strings"
	"unicode/utf8"
)

// SplitMessage splits a message into chunks of maxLen characters,
// trying to split at newlines when possible.
func SplitMessage(text string, maxLen int) []string {
	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	for len(text) > 0 {
		if utf8.RuneCountInString(text) <= maxLen {
			parts = append(parts, text)
			break
		}

		runes := []rune(text)
		splitAt := maxLen

		// Prefer a newline in the second half of the chunk
		chunk := string(runes[:maxLen])
		if i := strings.LastIndex(chunk, "\n"); i >= 0 {
			if n := utf8.RuneCountInString(chunk[:i]); n > maxLen/2 {
				splitAt = n + 1
			}
		}

		parts = append(parts, string(runes[:splitAt]))
		text = string(runes[splitAt:])
	}

	return parts
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown escapes legacy Markdown control characters in user-supplied
// text such as titles and URLs.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
