package hirexpand

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/expand-go/syntax"
)

func (f *fixture) expandEager(name string) (MacroCallID, error) {
	f.t.Helper()
	calls := findCalls(f.root(), name)
	require.NotEmpty(f.t, calls)
	return f.db.ExpandEagerMacro(NewInFile(f.file, calls[0]), f.def(name), f.resolve)
}

func TestEagerConcat(t *testing.T) {
	f := newFixture(t, "fn f() { let s = concat!(\"a\", 1, stringify!(b c)); }\n", Options{})
	call, err := f.expandEager("concat")
	require.NoError(t, err)

	sub, xerr := f.db.MacroExpand(call)
	require.Nil(t, xerr)
	assert.Equal(t, `"a1b c"`, sub.String())

	parse, perr := f.db.ParseMacro(call)
	require.Nil(t, perr)
	assert.Equal(t, `"a1b c"`, parse.Node.Text())
}

func TestEagerExpandsNestedUserMacro(t *testing.T) {
	f := newFixture(t, "macro_rules! two { () => { 2 } }\nfn f() { let s = concat!(two!(), \"x\"); }\n", Options{})
	call, err := f.expandEager("concat")
	require.NoError(t, err)
	sub, _ := f.db.MacroExpand(call)
	assert.Equal(t, `"2x"`, sub.String())
}

func TestEagerEnv(t *testing.T) {
	f := newFixture(t, "fn f() { let s = env!(\"OUT_DIR\"); let o = option_env!(\"MISSING\"); }\n", Options{})
	f.db.SetEnv(map[string]string{"OUT_DIR": "/tmp/out"})

	call, err := f.expandEager("env")
	require.NoError(t, err)
	sub, _ := f.db.MacroExpand(call)
	assert.Equal(t, `"/tmp/out"`, sub.String())

	call, err = f.expandEager("option_env")
	require.NoError(t, err)
	sub, _ = f.db.MacroExpand(call)
	assert.Equal(t, "std :: option :: Option :: None", sub.String())
	parse, perr := f.db.ParseMacro(call)
	require.Nil(t, perr)
	assert.Equal(t, syntax.PathExpr, parse.Node.Kind())
	assert.Equal(t, "std::option::Option::None", parse.Node.Text())
}

func TestEagerUnresolvedNestedCall(t *testing.T) {
	f := newFixture(t, "fn f() { let s = concat!(nope!(), \"x\"); }\n", Options{})
	_, err := f.expandEager("concat")
	var xerr *ExpandError
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, ArgumentsUnresolvable, xerr.Kind)
	assert.True(t, xerr.Located)
}

func TestEagerRejectsLazyDefinition(t *testing.T) {
	f := newFixture(t, "fn f() { let s = stringify!(a); }\n", Options{})
	calls := findCalls(f.root(), "stringify")
	_, err := f.db.ExpandEagerMacro(NewInFile(f.file, calls[0]), f.def("stringify"), f.resolve)
	var xerr *ExpandError
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, DefinitionNotFound, xerr.Kind)
}

func TestEagerCallRestrictions(t *testing.T) {
	f := newFixture(t, "fn f() { let s = concat!(\"a\", \"b\"); }\n", Options{})
	call, err := f.expandEager("concat")
	require.NoError(t, err)

	again, err := f.expandEager("concat")
	require.NoError(t, err)
	assert.Equal(t, call, again)

	assert.Nil(t, f.db.MacroArg(call))
	assert.Equal(t, syntax.FragmentExpr, f.db.FragmentKind(call))
	_, ok := f.db.CallNode(call.File())
	assert.False(t, ok)
	orig, ok := f.db.OriginalFile(call.File())
	require.True(t, ok)
	assert.Equal(t, FileID(0), orig)

	id, _ := call.Eager()
	loc, ok := f.db.LookupInternEagerExpansion(id)
	require.True(t, ok)
	sub, xerr := f.db.MacroExpand(call)
	require.Nil(t, xerr)
	assert.Same(t, loc.Subtree, sub)

	_, xerr = f.db.macroExpandWithArg(call, &MacroArg{Subtree: sub})
	require.NotNil(t, xerr)
	assert.Equal(t, UnsupportedOnEagerCall, xerr.Kind)

	args := f.root().Descendants()[0]
	_, herr := f.db.ExpandHypothetical(call, args, args.FirstToken())
	var hx *ExpandError
	require.True(t, errors.As(herr, &hx))
	assert.Equal(t, UnsupportedOnEagerCall, hx.Kind)
}
