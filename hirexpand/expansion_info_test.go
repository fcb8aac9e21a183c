package hirexpand

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/expand-go/mbe"
)

func TestExpansionInfoMapsTokens(t *testing.T) {
	text := "macro_rules! m { ($x:ident) => { $x + 1 } }\nfn f() { m!(foo); }\n"
	f := newFixture(t, text, Options{})
	call := f.call("m")

	info, ok := f.db.ExpansionInfo(call.File())
	require.True(t, ok)
	assert.Equal(t, "foo + 1", info.Expanded().Value.Text())
	assert.Equal(t, "(foo)", info.Arg().Value.Text())

	argFoo := tokenWithText(info.Arg().Value, "foo")
	require.NotNil(t, argFoo)
	down, ok := info.MapTokenDown(NewInFile(f.file, argFoo))
	require.True(t, ok)
	assert.Equal(t, call.File(), down.File)
	assert.Equal(t, "foo", down.Value.Text())

	up, origin, ok := info.MapTokenUp(down)
	require.True(t, ok)
	assert.Equal(t, mbe.OriginCall, origin)
	assert.Equal(t, f.file, up.File)
	assert.Same(t, argFoo, up.Value)

	one := tokenWithText(info.Expanded().Value, "1")
	require.NotNil(t, one)
	fromDef, origin, ok := info.MapTokenUp(NewInFile(call.File(), one))
	require.True(t, ok)
	assert.Equal(t, mbe.OriginDef, origin)
	assert.Equal(t, f.file, fromDef.File)
	assert.Equal(t, "1", fromDef.Value.Text())
	assert.Equal(t, strings.Index(text, "1 }"), fromDef.Value.TextRange().Start)
}

func TestExpansionInfoRejectsOtherFiles(t *testing.T) {
	f := newFixture(t, "macro_rules! m { ($x:ident) => { $x } }\nfn f() { m!(foo); }\n", Options{})
	_, ok := f.db.ExpansionInfo(f.file)
	assert.False(t, ok)

	call := f.call("m")
	info, ok := f.db.ExpansionInfo(call.File())
	require.True(t, ok)
	// A token of the definition is not part of the call argument.
	_, ok = info.MapTokenDown(NewInFile(f.file, tokenWithText(f.root(), "macro_rules")))
	assert.False(t, ok)
	_, ok = info.MapTokenDown(NewInFile(call.File(), info.Expanded().Value.FirstToken()))
	assert.False(t, ok)
}
