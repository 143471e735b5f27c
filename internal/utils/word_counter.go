package utils

import (
	"strings"
	"unicode"
)

// CountWords counts the words of a markdown body after stripping markdown syntax.
func CountWords(markdown string) int {
	return len(strings.FieldsFunc(CleanMarkdown(markdown), unicode.IsSpace))
}

// CleanMarkdown removes markdown syntax that should not count as words.
func CleanMarkdown(markdown string) string {
	text := removeCodeBlocks(markdown)

	for _, marker := range []string{"`", "**", "*", "__", "_", "~~", "#"} {
		text = strings.ReplaceAll(text, marker, "")
	}

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "+ ")
		// Numbered list markers (e.g., "1. ", "12. ")
		if i := strings.IndexByte(line, '.'); i > 0 && i < 4 && isDigits(line[:i]) {
			line = line[i+1:]
		}
		cleaned = append(cleaned, line)
	}
	text = strings.Join(cleaned, " ")

	text = strings.ReplaceAll(text, ">", "")
	text = strings.ReplaceAll(text, "---", "")

	return text
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// removeCodeBlocks removes ```...``` fenced blocks. An unclosed fence runs
// to the end of the text, as in CommonMark, so closing it later never
// lowers the count.
func removeCodeBlocks(text string) string {
	for {
		start := strings.Index(text, "```")
		if start == -1 {
			return text
		}
		end := strings.Index(text[start+3:], "```")
		if end == -1 {
			return text[:start]
		}
		text = text[:start] + text[start+end+6:]
	}
}
