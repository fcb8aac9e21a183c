package diagnostics

import (
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestExpansionErrorCarriesChain(t *testing.T) {
	err := NewOutputTooLargeError(70000, 65536, NewSpan(0, 3, 0)).WithChain([]string{"inner!", "outer!"})
	assert.Equal(t, "OutputTooLarge", err.Reason())
	assert.Contains(t, err.Error(), "70000")
	assert.Contains(t, err.Error(), "inner! <- outer!")
	assert.Equal(t, []string{"inner!", "outer!"}, err.Chain())
}

func TestPrettyPrintUnderlinesSpan(t *testing.T) {
	text := "fn main() {\n    m!(x);\n}\n"
	start := strings.Index(text, "m!(x)")
	err := NewDefinitionNotFoundError("m", NewSpan(start, start+5, 0))

	var sb strings.Builder
	require.NoError(t, err.PrettyPrint(&sb, "main.rs", text))
	out := sb.String()

	assert.Contains(t, out, "error: Macro definition for `m!` could not be resolved.")
	assert.Contains(t, out, "main.rs:2:5")
	assert.Contains(t, out, " 1 | fn main() {")
	assert.Contains(t, out, " 2 |     m!(x);")
	assert.Contains(t, out, "   |     ^^^^^\n")
}

func TestPrettyPrintEmptySpanAtEnd(t *testing.T) {
	text := "m!"
	var sb strings.Builder
	w := NewExpansionWarning("dangling", NewSpan(10, 12, 0))
	require.NoError(t, w.PrettyPrint(&sb, "f", text))
	assert.Contains(t, sb.String(), "warning: dangling")
	assert.Contains(t, sb.String(), "  ^\n")
}

func TestDiagnosticsCollection(t *testing.T) {
	d := NewDiagnostics()
	assert.NoError(t, d.ToResult())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.PushError(NewReparseFailureError("an expression", NewSpan(0, 1, FileID(i%2))))
		}(i)
	}
	wg.Wait()
	d.PushWarning(NewRecursionLimitWarning(4, NewSpan(0, 1, 1)))

	assert.True(t, d.HasErrors())
	assert.Len(t, d.Errors(), 10)
	assert.EqualError(t, d.ToResult(), "expansion failed with 10 errors")

	one := d.ForFile(1)
	assert.Len(t, one.Errors(), 5)
	assert.Len(t, one.Warnings(), 1)
	assert.Empty(t, d.ForFile(0).Warnings())

	single := NewDiagnostics()
	assert.False(t, single.HasErrors())
	single.PushError(NewReparseFailureError("items", NewSpan(0, 2, 0)))
	single.PushWarning(NewPartialExpansionWarning("m", "no rule", NewSpan(0, 1, 0)))
	assert.Contains(t, single.ToPrettyString("a", "m!()"), "does not parse as items")
	assert.Contains(t, single.WarningsToPrettyString("a", "m!()"), "expanded with errors")
}
