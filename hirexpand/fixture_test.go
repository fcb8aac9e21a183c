package hirexpand

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/expand-go/builtin"
	"github.com/satishbabariya/expand-go/syntax"
)

type fixture struct {
	t    *testing.T
	db   *Database
	file HirFileID
}

func newFixture(t *testing.T, text string, opts Options) *fixture {
	t.Helper()
	db := NewDatabase(opts)
	db.SetFileText(0, text)
	db.SetFilePath(0, "src/main.rs")
	return &fixture{t: t, db: db, file: RealFile(0)}
}

func (f *fixture) root() *syntax.Node {
	root := f.db.ParseOrExpand(f.file)
	require.NotNil(f.t, root)
	return root
}

func macroName(n *syntax.Node) string {
	path := n.Child(syntax.Path)
	if path == nil {
		return ""
	}
	text := path.Text()
	if i := strings.LastIndex(text, "::"); i >= 0 {
		text = text[i+2:]
	}
	return strings.TrimSpace(text)
}

func findCalls(root *syntax.Node, name string) []*syntax.Node {
	var out []*syntax.Node
	for _, n := range root.Descendants() {
		if n.Kind() == syntax.MacroCall && macroName(n) == name {
			out = append(out, n)
		}
	}
	return out
}

func (f *fixture) astID(file HirFileID, n *syntax.Node) AstID {
	f.t.Helper()
	id, ok := f.db.AstIDMap(file).AstID(n)
	require.True(f.t, ok, "node %s has no ast id", n.Kind())
	return AstID{File: file, Local: id}
}

// resolve finds a macro_rules! definition in the real file, falling back to
// builtins.
func (f *fixture) resolve(name string) (MacroDefID, bool) {
	for _, n := range findCalls(f.root(), "macro_rules") {
		if nm := n.Child(syntax.Name); nm != nil && nm.Text() == name {
			id, ok := f.db.AstIDMap(f.file).AstID(n)
			if !ok {
				return MacroDefID{}, false
			}
			return DeclarativeDef(AstID{File: f.file, Local: id}), true
		}
	}
	if b, ok := builtin.Find(name); ok {
		return BuiltinDef(b)
	}
	return MacroDefID{}, false
}

func (f *fixture) def(name string) MacroDefID {
	f.t.Helper()
	def, ok := f.resolve(name)
	require.True(f.t, ok, "macro %s not found", name)
	return def
}

// callIn interns the first call of name inside the tree of file.
func (f *fixture) callIn(file HirFileID, name string) MacroCallID {
	f.t.Helper()
	root := f.db.ParseOrExpand(file)
	require.NotNil(f.t, root)
	calls := findCalls(root, name)
	require.NotEmpty(f.t, calls, "no call of %s", name)
	return f.db.AsLazyMacro(f.def(name), FnLikeCall(f.astID(file, calls[0])))
}

func (f *fixture) call(name string) MacroCallID {
	f.t.Helper()
	return f.callIn(f.file, name)
}

func tokenWithText(root *syntax.Node, text string) *syntax.Token {
	for _, tok := range root.DescendantTokens() {
		if tok.Text() == text {
			return tok
		}
	}
	return nil
}
