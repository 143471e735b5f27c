package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLToMarkdown(t *testing.T) {
	out, err := HTMLToMarkdown(`<h1>عاجل</h1><p>نص <strong>الخبر</strong><script>alert(1)</script></p>`)
	require.NoError(t, err)

	assert.Contains(t, out, "# عاجل")
	assert.Contains(t, out, "**الخبر**")
	assert.NotContains(t, out, "alert")
	assert.NotContains(t, out, "<")
}

func TestHTMLToMarkdown_DropsJavascriptLinks(t *testing.T) {
	out, err := HTMLToMarkdown(`<p><a href="javascript:alert(1)">click</a> <a href="https://example.com/a">read</a></p>`)
	require.NoError(t, err)

	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "[read](https://example.com/a)")
}

func TestNormalizeBody(t *testing.T) {
	body := "# عنوان\n\nنص."

	out, err := NormalizeBody(body, "")
	require.NoError(t, err)
	assert.Equal(t, body, out)

	out, err = NormalizeBody(body, BodyFormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, body, out)

	out, err = NormalizeBody("<p>hello</p>", BodyFormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = NormalizeBody(body, "docx")
	assert.Error(t, err)
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain markdown unchanged", "# عنوان\n\nنص الخبر.\n", "# عنوان\n\nنص الخبر.\n"},
		{"inline tags removed", "a <b>bold</b> word", "a bold word"},
		{"entities survive", "salt & pepper \"quoted\"", "salt & pepper \"quoted\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}
