package markdown_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chamberlog/internal/platform/markdown"
)

func TestRenderFrontmatterKeepsFieldOrder(t *testing.T) {
	t.Parallel()
	out, err := markdown.RenderFrontmatter([]markdown.Field{
		{Key: "session_id", Value: "12-26"},
		{Key: "alpha", Value: 1},
		{Key: "totals", Value: map[string]string{"tiempo_hipoxia": "00:04:30"}},
	}, "# Report\n")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "session_id"), strings.Index(out, "alpha"))

	meta, body, err := markdown.SplitFrontmatter(out)
	require.NoError(t, err)
	assert.Equal(t, "12-26", meta["session_id"])
	assert.Equal(t, "\n# Report\n", body)
}

func TestSplitFrontmatterWithoutHeader(t *testing.T) {
	t.Parallel()
	meta, body, err := markdown.SplitFrontmatter("plain")
	require.NoError(t, err)
	assert.Empty(t, meta)
	assert.Equal(t, "plain", body)

	_, _, err = markdown.SplitFrontmatter("---\nkey: v\nno-close")
	require.Error(t, err)
}

func TestReplaceManagedBlock(t *testing.T) {
	t.Parallel()
	const start, end = "<!-- s -->", "<!-- e -->"
	first := markdown.ReplaceManagedBlock("", start, end, "one")
	assert.Equal(t, start+"\none\n"+end+"\n", first)

	edited := "notes before\n" + first + "notes after\n"
	second := markdown.ReplaceManagedBlock(edited, start, end, "two\n")
	assert.Equal(t, "notes before\n"+start+"\ntwo\n"+end+"\nnotes after\n", second)

	appended := markdown.ReplaceManagedBlock("text", start, end, "x")
	assert.Equal(t, "text\n\n"+start+"\nx\n"+end+"\n", appended)
}
