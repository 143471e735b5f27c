package utils

import (
	"fmt"
	"html"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
)

// Body formats accepted on content writes
const (
	BodyFormatMarkdown = "markdown"
	BodyFormatHTML     = "html"
)

var (
	// ugcPolicy keeps formatting, links and images but drops scripts,
	// event handlers and javascript: URLs.
	ugcPolicy = bluemonday.UGCPolicy()

	// strictPolicy removes every tag and keeps only text
	strictPolicy = bluemonday.StrictPolicy()

	htmlConverter = md.NewConverter("", true, nil)
)

// HTMLToMarkdown sanitizes an HTML fragment and converts what survives to
// markdown. Bodies pasted from rich-text editors arrive this way.
func HTMLToMarkdown(fragment string) (string, error) {
	sanitized := ugcPolicy.Sanitize(fragment)

	markdown, err := htmlConverter.ConvertString(sanitized)
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

// NormalizeBody returns the markdown form of body for the given format.
// An empty format means markdown.
func NormalizeBody(body, format string) (string, error) {
	switch format {
	case "", BodyFormatMarkdown:
		return body, nil
	case BodyFormatHTML:
		return HTMLToMarkdown(body)
	default:
		return "", fmt.Errorf("unknown body format %q", format)
	}
}

// StripHTML removes any inline tags left in a markdown body. Entities the
// sanitizer escapes are decoded again so plain text round-trips unchanged.
func StripHTML(s string) string {
	return html.UnescapeString(strictPolicy.Sanitize(s))
}
