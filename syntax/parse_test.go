package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexIsLossless(t *testing.T) {
	inputs := []string{
		"fn main() { let x = 1.5 + 2usize; }",
		"macro_rules! m { ($($e:expr),*) => { 0 } }",
		"a::b::<T>(x) => y ..= z // tail",
		"é ∆ \"unterminated",
	}
	for _, in := range inputs {
		var b strings.Builder
		for _, tok := range Lex(in) {
			b.WriteString(tok.Text)
		}
		assert.Equal(t, in, b.String())
	}
}

func TestLexKinds(t *testing.T) {
	var kinds []SyntaxKind
	for _, tok := range Lex("let x_1 = 1.0 => 'c';") {
		if !tok.Kind.IsTrivia() {
			kinds = append(kinds, tok.Kind)
		}
	}
	assert.Equal(t, []SyntaxKind{LetKw, Ident, Eq, FloatNumber, FatArrow, Char, Semicolon}, kinds)
}

func findAll(root *Node, kind SyntaxKind) []*Node {
	var out []*Node
	for _, n := range root.Descendants() {
		if n.Kind() == kind {
			out = append(out, n)
		}
	}
	return out
}

func TestParseMacroCallPositions(t *testing.T) {
	text := "fn main() { foo!(x); bar!(y) }\nfoo!{ a b c }\n"
	parse := ParseSourceFile(text)
	require.True(t, parse.OK(), "%v", parse.Errors())
	root := parse.Tree()
	assert.Equal(t, text, root.Text())
	assert.Equal(t, SourceFile, root.Kind())

	calls := findAll(root, MacroCall)
	require.Len(t, calls, 3)
	assert.Equal(t, ExprStmt, calls[0].Parent().Kind())
	assert.Equal(t, Block, calls[1].Parent().Kind())
	assert.Equal(t, SourceFile, calls[2].Parent().Kind())
	assert.Equal(t, "(y)", calls[1].Child(TokenTree).Text())
}

func TestParseMacroRulesDefinition(t *testing.T) {
	parse := ParseSourceFile("macro_rules! foo { ($e:expr) => { $e }; }")
	require.True(t, parse.OK(), "%v", parse.Errors())

	call := findAll(parse.Tree(), MacroCall)[0]
	assert.Equal(t, "macro_rules", call.Child(Path).Text())
	assert.Equal(t, "foo", call.Child(Name).Text())
	assert.Equal(t, "{ ($e:expr) => { $e }; }", call.Child(TokenTree).Text())
}

func TestParseItems(t *testing.T) {
	text := `
#[derive(Clone)]
pub struct Foo<T: Clone> { x: T, pub y: (u8, u8) }
enum E { A, B(u32), C { f: bool } }
mod inner { use a::b::{c, d as e}; const N: usize = 3; }
impl<T> Foo<T> { fn get(&self) -> &T { &self.x } }
static S: [u8; 2] = [1, 2];
`
	parse := ParseSourceFile(text)
	require.True(t, parse.OK(), "%v", parse.Errors())
	root := parse.Tree()
	assert.Equal(t, text, root.Text())

	st := root.Child(StructDef)
	require.NotNil(t, st)
	require.NotNil(t, st.Child(Attr))
	assert.Equal(t, "#[derive(Clone)]", st.Child(Attr).Text())
	assert.Equal(t, "Foo", st.Child(Name).Text())
	assert.NotNil(t, st.Child(TypeParamList))
	assert.Len(t, st.Child(RecordFieldDefList).Children(), 2)

	assert.NotNil(t, root.Child(EnumDef))
	assert.NotNil(t, root.Child(Module).Child(ItemList))
	assert.NotNil(t, root.Child(ImplBlock))
	assert.NotNil(t, root.Child(StaticDef))
}

func TestParseExpressions(t *testing.T) {
	text := `fn f() {
    let v = if a < b { x.len() } else { y[0]? };
    match v { Some(n) if n > 0 => n * 2, _ => { 0 } }
    for i in 0..10 { s += i; }
    while let Some(x) = it.next() { break; }
    let p = Point { x: 1, y };
    let c = move |a, b| a + b as i64;
    return (1, 2).0;
}`
	parse := ParseSourceFile(text)
	require.True(t, parse.OK(), "%v", parse.Errors())
	root := parse.Tree()
	assert.Equal(t, text, root.Text())

	assert.NotEmpty(t, findAll(root, IfExpr))
	assert.NotEmpty(t, findAll(root, MatchGuard))
	assert.NotEmpty(t, findAll(root, ForExpr))
	assert.NotEmpty(t, findAll(root, WhileExpr))
	assert.NotEmpty(t, findAll(root, RecordLit))
	assert.NotEmpty(t, findAll(root, LambdaExpr))
	assert.NotEmpty(t, findAll(root, CastExpr))
	assert.NotEmpty(t, findAll(root, MethodCallExpr))
	assert.NotEmpty(t, findAll(root, TryExpr))
	assert.NotEmpty(t, findAll(root, RangeExpr))
}

func TestOperatorPrecedence(t *testing.T) {
	parse, ok := ParseTextFragment("1 + 2 * 3", FragmentExpr)
	require.True(t, ok)
	root := parse.Tree()
	require.Equal(t, BinExpr, root.Kind())
	children := root.Children()
	require.Len(t, children, 2)
	assert.Equal(t, Literal, children[0].Kind())
	assert.Equal(t, BinExpr, children[1].Kind())
	assert.Equal(t, "2 * 3", children[1].Text())
}

func TestParseTextFragment(t *testing.T) {
	tests := []struct {
		text string
		kind FragmentKind
		root SyntaxKind
	}{
		{"bar(a, x);", FragmentExpr, ExprStmt},
		{"a.b", FragmentExpr, FieldExpr},
		{"Vec<u8>", FragmentType, PathType},
		{"Some(_)", FragmentPattern, TupleStructPat},
		{"a::b::c", FragmentPath, Path},
		{"struct S; fn f() {}", FragmentItems, MacroItems},
		{"let a = 1; a", FragmentStatements, MacroStmts},
		{"{ 1 }", FragmentBlock, BlockExpr},
		{"pub(crate)", FragmentVisibility, Visibility},
		{"derive(Clone)", FragmentMetaItem, MetaItem},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			parse, ok := ParseTextFragment(tt.text, tt.kind)
			require.True(t, ok, "%v", parse.Errors())
			assert.Equal(t, tt.root, parse.Tree().Kind())
			assert.Equal(t, tt.text, parse.Tree().Text())
		})
	}
}

func TestParseTextFragmentRejectsLeftovers(t *testing.T) {
	_, ok := ParseTextFragment("1 +", FragmentExpr)
	assert.False(t, ok)

	parse, ok := ParseTextFragment("a b", FragmentExpr)
	assert.False(t, ok)
	assert.Equal(t, "a b", parse.Tree().Text())
}

func TestErrorRecoveryKeepsText(t *testing.T) {
	inputs := []string{
		"fn f( {",
		"} struct",
		"fn f() { let = ; ) }",
		"{ { }",
		"match x { ) }",
	}
	for _, in := range inputs {
		parse := ParseSourceFile(in)
		assert.False(t, parse.OK(), in)
		assert.Equal(t, in, parse.Tree().Text(), in)
	}
}

func TestCoveringElement(t *testing.T) {
	text := "fn main() { foo!(xyz); }"
	root := ParseSourceFile(text).Tree()
	start := strings.Index(text, "xyz")

	el := root.CoveringElement(NewRange(start, start+3))
	tok, ok := el.(*Token)
	require.True(t, ok)
	assert.Equal(t, "xyz", tok.Text())
	assert.Equal(t, TokenTree, tok.Parent().Kind())

	el = root.CoveringElement(NewRange(start, start))
	tok, ok = el.(*Token)
	require.True(t, ok)
	assert.Equal(t, "xyz", tok.Text())
}
