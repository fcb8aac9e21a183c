package hirexpand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/expand-go/syntax"
)

func TestToFragmentKind(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		parent syntax.SyntaxKind
		want   syntax.FragmentKind
	}{
		{"source file", "m!();", syntax.SourceFile, syntax.FragmentItems},
		{"item list", "mod x { m!(); }", syntax.ItemList, syntax.FragmentItems},
		{"impl body", "impl S { m!(); }", syntax.ItemList, syntax.FragmentItems},
		{"statement", "fn f() { m!(); }", syntax.ExprStmt, syntax.FragmentExpr},
		{"block tail", "fn f() { m!() }", syntax.Block, syntax.FragmentExpr},
		{"let initializer", "fn f() { let x = m!(); }", syntax.LetStmt, syntax.FragmentExpr},
		{"argument", "fn f() { g(m!()); }", syntax.ArgList, syntax.FragmentExpr},
		{"return", "fn f() { return m!(); }", syntax.ReturnExpr, syntax.FragmentExpr},
		{"binary", "fn f() { a + m!() }", syntax.BinExpr, syntax.FragmentExpr},
		{"match arm", "fn f() { match x { _ => m!(), } }", syntax.MatchArm, syntax.FragmentExpr},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parse := syntax.ParseSourceFile(tc.text)
			require.True(t, parse.OK(), "%v", parse.Errors())
			calls := findCalls(parse.Tree(), "m")
			require.Len(t, calls, 1)
			require.Equal(t, tc.parent, calls[0].Parent().Kind())
			assert.Equal(t, tc.want, ToFragmentKind(calls[0]))
		})
	}
}

func TestToFragmentKindWithoutParent(t *testing.T) {
	var b syntax.Builder
	b.StartNode(syntax.MacroCall)
	b.StartNode(syntax.Path)
	b.Token(syntax.Ident, "m")
	b.FinishNode()
	b.Token(syntax.Bang, "!")
	b.StartNode(syntax.TokenTree)
	b.Token(syntax.LParen, "(")
	b.Token(syntax.RParen, ")")
	root, ok := b.Finish()
	require.True(t, ok)
	require.Nil(t, root.Parent())
	assert.Equal(t, syntax.FragmentExpr, ToFragmentKind(root))
}
