package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownToHTML(t *testing.T) {
	out, err := MarkdownToHTML("## Intro\n\nHello **world**")
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>Intro</h2>")
	assert.Contains(t, out, "<strong>world</strong>")
}

func TestMarkdownToHTMLHardWraps(t *testing.T) {
	out, err := MarkdownToHTML("line one\nline two")
	require.NoError(t, err)
	assert.Contains(t, out, "<br>")
}

func TestSafeHTMLDropsRawHTML(t *testing.T) {
	out := string(SafeHTML("Narrator: hi <script>alert(1)</script>"))
	assert.NotContains(t, out, "<script>")
}
