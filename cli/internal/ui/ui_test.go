package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	prevOut, prevErr := Out, Err
	Out, Err = &out, &errOut
	t.Cleanup(func() { Out, Err = prevOut, prevErr })
	DisableColor()
	return &out, &errOut
}

func TestMessagesGoToTheirWriters(t *testing.T) {
	out, errOut := capture(t)
	PrintSuccess("expanded %d calls", 3)
	PrintError("boom")
	PrintList([]string{"a", "b"})

	assert.Contains(t, out.String(), "expanded 3 calls")
	assert.Contains(t, out.String(), "  • a\n  • b\n")
	assert.Contains(t, errOut.String(), "boom")
	assert.NotContains(t, out.String(), "boom")
}

func TestPrintTable(t *testing.T) {
	out, _ := capture(t)
	require.NoError(t, PrintTable([]string{"kind", "count"}, [][]string{{"ok", "2"}, {"OutputTooLarge", "1"}}))
	assert.Contains(t, out.String(), "OutputTooLarge")
	assert.Contains(t, out.String(), "count")
}

func TestRenderMarkdownKeepsText(t *testing.T) {
	rendered, err := RenderMarkdown("# Expansion\n\n`1 + 1`\n")
	require.NoError(t, err)
	assert.Contains(t, rendered, "Expansion")
	assert.Contains(t, rendered, "1 + 1")
}
