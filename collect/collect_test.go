package collect

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/expand-go/hirexpand"
	"github.com/satishbabariya/expand-go/syntax"
)

func newDB(t *testing.T, text string) *hirexpand.Database {
	t.Helper()
	db := hirexpand.NewDatabase(hirexpand.Options{Sink: hirexpand.SinkFunc(func(*hirexpand.ExpandError) {})})
	db.SetFileText(0, text)
	db.SetFilePath(0, "src/lib.rs")
	return db
}

func byName(r *Result) map[string][]Outcome {
	out := map[string][]Outcome{}
	for _, o := range r.Outcomes {
		out[o.Name] = append(out[o.Name], o)
	}
	return out
}

func TestExpandAllFollowsNestedCalls(t *testing.T) {
	text := `macro_rules! inner { () => { 40 + 2 } }
macro_rules! outer { () => { fn answer() { inner!() } } }
outer!();
`
	db := newDB(t, text)
	res, err := ExpandAll(context.Background(), db, 0, Options{})
	require.NoError(t, err)

	got := byName(res)
	require.Len(t, got["outer"], 1)
	require.Len(t, got["inner"], 1)

	outer := got["outer"][0]
	assert.True(t, outer.OK())
	assert.Equal(t, syntax.FragmentItems, outer.Fragment)
	assert.Equal(t, 0, outer.Depth)

	inner := got["inner"][0]
	assert.True(t, inner.OK())
	assert.Equal(t, 1, inner.Depth)
	assert.Equal(t, "40 + 2", inner.Expansion.Text())
	assert.Equal(t, outer.ID.File(), inner.Node.File)
	assert.Equal(t, map[string]int{"ok": 2}, res.Counts())
}

func TestExpandAllRespectsDepthBudget(t *testing.T) {
	text := `macro_rules! inner { () => { 1 } }
macro_rules! outer { () => { fn f() { inner!() } } }
outer!();
`
	res, err := ExpandAll(context.Background(), newDB(t, text), 0, Options{MaxDepth: 1})
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, "outer", res.Outcomes[0].Name)
	require.Len(t, res.Truncated, 1)
	assert.Equal(t, "inner", res.Truncated[0].Name)
	assert.Equal(t, 1, res.Truncated[0].Depth)
}

func TestLaterDefinitionsShadowEarlierOnes(t *testing.T) {
	text := `fn before() { m!() }
macro_rules! m { () => { 1 } }
fn first() { m!() }
macro_rules! m { () => { 2 } }
fn second() { m!() }
`
	res, err := ExpandAll(context.Background(), newDB(t, text), 0, Options{})
	require.NoError(t, err)

	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, "m", res.Unresolved[0].Name)

	got := byName(res)["m"]
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Expansion.Text())
	assert.Equal(t, "2", got[1].Expansion.Text())
}

func TestDerivesAndEagerBuiltins(t *testing.T) {
	text := `#[derive(Clone, Unknown, core::fmt::Debug)]
struct Foo;
fn f() { let s = concat!("a", stringify!(b)); }
`
	res, err := ExpandAll(context.Background(), newDB(t, text), 0, Options{Concurrency: 2})
	require.NoError(t, err)

	got := byName(res)
	require.Len(t, got["Clone"], 1)
	assert.Equal(t, Derive, got["Clone"][0].Kind)
	assert.Equal(t, "impl core::clone::Clone for Foo {}", got["Clone"][0].Expansion.Text())
	require.Len(t, got["Debug"], 1)
	assert.Equal(t, "impl core::fmt::Debug for Foo {}", got["Debug"][0].Expansion.Text())

	require.Len(t, got["concat"], 1)
	concat := got["concat"][0]
	assert.Equal(t, Eager, concat.Kind)
	require.True(t, concat.OK())
	_, eager := concat.ID.Eager()
	assert.True(t, eager)
	assert.Equal(t, `"ab"`, concat.Expansion.Text())

	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, "Unknown", res.Unresolved[0].Name)
}

func TestCountsClassifyFailures(t *testing.T) {
	text := `macro_rules! m { (x) => { 1 } }
fn f() { m!(y); nope!(); }
`
	res, err := ExpandAll(context.Background(), newDB(t, text), 0, Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"RuleMatchFailure": 1, "unresolved": 1}, res.Counts())
}

func TestExpandAllHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExpandAll(ctx, newDB(t, "fn f() { line!() }\n"), 0, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeriveNames(t *testing.T) {
	root := syntax.ParseSourceFile("#[derive(A, b::C, D)]\nstruct S;\n").Tree()
	item := root.Children()[0]
	attr := item.Child(syntax.Attr)
	require.NotNil(t, attr)
	assert.Equal(t, []string{"A", "C", "D"}, deriveNames(attr.Child(syntax.TokenTree)))
}

func TestResultDiagnostics(t *testing.T) {
	text := `macro_rules! m { (x) => { 1 } }
macro_rules! deep { () => { fn g() { m!(x) } } }
fn f() { m!(y); nope!(); }
deep!();
`
	db := newDB(t, text)
	res, err := ExpandAll(context.Background(), db, 0, Options{MaxDepth: 1})
	require.NoError(t, err)

	d := res.Diagnostics(db)
	require.Len(t, d.Errors(), 1)
	assert.Equal(t, "DefinitionNotFound", d.Errors()[0].Reason())
	assert.Contains(t, d.Errors()[0].Message(), "nope!")

	warnings := d.Warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0].Message(), "Macro `m!` expanded with errors")
	assert.Contains(t, warnings[1].Message(), "depth 1")
	deep := strings.Index(text, "deep!()")
	assert.Equal(t, deep, warnings[1].Span().Start)
}

func TestFailedEagerSiteIsExpression(t *testing.T) {
	res, err := ExpandAll(context.Background(), newDB(t, "fn f() { let s = concat!(\"a\", nope!()); }\n"), 0, Options{})
	require.NoError(t, err)

	got := byName(res)["concat"]
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Err)
	assert.Equal(t, hirexpand.ArgumentsUnresolvable, got[0].Err.Kind)
	assert.Nil(t, got[0].Expansion)
	assert.Equal(t, syntax.FragmentExpr, got[0].Fragment)
}
