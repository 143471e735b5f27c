package utils

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// RenderFrontmatter writes metadata as a YAML front matter block followed by
// the markdown body:
// ---
// id: 42
// slug: breaking-story
// ---
//
// # Markdown content here
func RenderFrontmatter(metadata any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(frontmatterDelim + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(metadata); err != nil {
		return nil, fmt.Errorf("failed to encode YAML frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML frontmatter: %w", err)
	}

	buf.WriteString(frontmatterDelim + "\n\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// ParseFrontmatter splits a file produced by RenderFrontmatter back into its
// metadata and markdown body. The blank line after the closing delimiter is
// not part of the body.
func ParseFrontmatter(content []byte) (map[string]interface{}, string, error) {
	// Check for frontmatter delimiters
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return nil, "", errors.New("missing frontmatter: file must start with '---'")
	}

	// Find the closing delimiter
	var closingDelim int
	lines := bytes.Split(content, []byte("\n"))

	// Skip the opening "---" line
	for i := 1; i < len(lines); i++ {
		line := bytes.TrimSpace(lines[i])
		if bytes.Equal(line, []byte(frontmatterDelim)) {
			closingDelim = i
			break
		}
	}

	if closingDelim == 0 {
		return nil, "", errors.New("missing closing frontmatter delimiter '---'")
	}

	yamlContent := bytes.Join(lines[1:closingDelim], []byte("\n"))

	var metadata map[string]interface{}
	if err := yaml.Unmarshal(yamlContent, &metadata); err != nil {
		return nil, "", fmt.Errorf("failed to parse YAML frontmatter: %w", err)
	}

	markdownLines := lines[closingDelim+1:]
	if len(markdownLines) > 0 && len(bytes.TrimSpace(markdownLines[0])) == 0 {
		markdownLines = markdownLines[1:]
	}
	markdownContent := string(bytes.Join(markdownLines, []byte("\n")))

	return metadata, markdownContent, nil
}
