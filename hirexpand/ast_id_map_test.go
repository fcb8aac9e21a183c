package hirexpand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/expand-go/syntax"
)

func TestAstIDMapIsBreadthFirst(t *testing.T) {
	root := syntax.ParseSourceFile("fn a() {}\nstruct S;\nmod m { fn b() {} }\nfoo!();\n").Tree()
	m := NewAstIDMap(root)
	require.Equal(t, 5, m.Len())

	kinds := make([]syntax.SyntaxKind, 0, m.Len())
	for i := 0; i < m.Len(); i++ {
		ptr, ok := m.Get(FileAstID(i))
		require.True(t, ok)
		node := ptr.ToNode(root)
		require.NotNil(t, node)
		assert.Equal(t, ptr.Kind, node.Kind())
		kinds = append(kinds, node.Kind())
	}
	assert.Equal(t, []syntax.SyntaxKind{
		syntax.FnDef, syntax.StructDef, syntax.Module, syntax.MacroCall, syntax.FnDef,
	}, kinds)

	_, ok := m.Get(FileAstID(5))
	assert.False(t, ok)
}

func TestAstIDsSurviveNestedEdits(t *testing.T) {
	before := syntax.ParseSourceFile("fn a() {}\nstruct S;\nmod m {}\n").Tree()
	after := syntax.ParseSourceFile("fn a() { let x = 1; }\nstruct S;\nmod m { fn added() {} }\n").Tree()

	idOf := func(root *syntax.Node, kind syntax.SyntaxKind) FileAstID {
		m := NewAstIDMap(root)
		for _, n := range root.Descendants() {
			if n.Kind() == kind {
				id, ok := m.AstID(n)
				require.True(t, ok)
				return id
			}
		}
		t.Fatalf("no %s", kind)
		return 0
	}
	assert.Equal(t, idOf(before, syntax.StructDef), idOf(after, syntax.StructDef))
	assert.Equal(t, idOf(before, syntax.Module), idOf(after, syntax.Module))
}

func TestAstIDMapOfMissingTree(t *testing.T) {
	m := NewAstIDMap(nil)
	assert.Equal(t, 0, m.Len())
}

func TestSyntaxNodePtrMissesInOtherTree(t *testing.T) {
	root := syntax.ParseSourceFile("struct S;").Tree()
	ptr := NewSyntaxNodePtr(root.Children()[0])
	other := syntax.ParseSourceFile("fn f() {}").Tree()
	assert.Nil(t, ptr.ToNode(other))
	assert.NotNil(t, ptr.ToNode(root))
}
