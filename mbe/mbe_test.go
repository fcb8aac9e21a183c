package mbe

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/expand-go/syntax"
	"github.com/satishbabariya/expand-go/tt"
)

func parseRules(t *testing.T, def string) *MacroRules {
	t.Helper()
	sub, _ := ParseToTokenTree(def)
	rules, err := ParseMacroRules(sub)
	require.NoError(t, err)
	return rules
}

func expand(rules *MacroRules, input string) ExpandResult {
	sub, _ := ParseToTokenTree(input)
	return rules.Expand(sub)
}

func TestExpandSimpleRule(t *testing.T) {
	rules := parseRules(t, "{ () => { 1 + 1 } }")
	res := expand(rules, "()")
	require.NoError(t, res.Err)
	assert.Equal(t, "1 + 1", res.Value.String())
	assert.Equal(t, 3, res.Value.Count())
}

func TestExpandTriesRulesInOrder(t *testing.T) {
	rules := parseRules(t, "{ ($e:expr) => { $e * 2 }; () => { 0 } }")

	res := expand(rules, "()")
	require.NoError(t, res.Err)
	assert.Equal(t, "0", res.Value.String())

	res = expand(rules, "(1 + 2)")
	require.NoError(t, res.Err)
	assert.Equal(t, "1 + 2 * 2", res.Value.String())
	// The expression stays grouped: one group plus `*` and `2`.
	require.Len(t, res.Value.TokenTrees, 3)
	group, ok := res.Value.TokenTrees[0].(*tt.Subtree)
	require.True(t, ok)
	assert.Nil(t, group.Delimiter)
}

func TestExpressionCaptureKeepsPrecedence(t *testing.T) {
	rules := parseRules(t, "{ ($e:expr) => { $e * 2 } }")
	res := expand(rules, "(1 + 1)")
	require.NoError(t, res.Err)

	parse, _, err := TokenTreeToSyntaxNode(res.Value, syntax.FragmentExpr)
	require.NoError(t, err)
	root := parse.Tree()
	assert.Equal(t, "1 + 1 * 2", root.Text())
	require.Equal(t, syntax.BinExpr, root.Kind())

	operands := root.Children()
	require.Len(t, operands, 2)
	assert.Equal(t, syntax.BinExpr, operands[0].Kind())
	assert.Equal(t, "1 + 1", operands[0].Text())
	assert.Equal(t, syntax.Literal, operands[1].Kind())
	assert.Equal(t, "2", operands[1].Text())
}

func TestExpressionCaptureInsideItems(t *testing.T) {
	rules := parseRules(t, "{ ($e:expr) => { fn f() { let x = $e * 2; x } } }")
	res := expand(rules, "(a - b)")
	require.NoError(t, res.Err)

	parse, _, err := TokenTreeToSyntaxNode(res.Value, syntax.FragmentItems)
	require.NoError(t, err)
	assert.Equal(t, "fn f() { let x = a - b * 2; x }", parse.Tree().Text())

	var mul *syntax.Node
	for _, n := range parse.Tree().Descendants() {
		if n.Kind() == syntax.BinExpr && n.Parent().Kind() != syntax.BinExpr {
			mul = n
			break
		}
	}
	require.NotNil(t, mul)
	assert.Equal(t, "a - b", mul.Children()[0].Text())
}

func TestExpandRepetitionWithSeparator(t *testing.T) {
	rules := parseRules(t, "{ ($($t:tt),*) => { bar($($t),*); } }")
	res := expand(rules, "(a, x)")
	require.NoError(t, res.Err)
	assert.Equal(t, "bar (a , x) ;", res.Value.String())

	parse, _, err := TokenTreeToSyntaxNode(res.Value, syntax.FragmentStatements)
	require.NoError(t, err)
	assert.Equal(t, "bar(a, x);", parse.Tree().Text())

	res = expand(rules, "()")
	require.NoError(t, res.Err)
	assert.Equal(t, "bar () ;", res.Value.String())
}

func TestExpandIdentSeparator(t *testing.T) {
	rules := parseRules(t, "{ ($($i:ident)and*) => { $($i)or* } }")
	res := expand(rules, "(a and b and c)")
	require.NoError(t, res.Err)
	assert.Equal(t, "a or b or c", res.Value.String())
}

func TestExpandOptionalRepetition(t *testing.T) {
	rules := parseRules(t, "{ ($($x:ident)?) => { $($x)? done } }")

	res := expand(rules, "()")
	require.NoError(t, res.Err)
	assert.Equal(t, "done", res.Value.String())

	res = expand(rules, "(q)")
	require.NoError(t, res.Err)
	assert.Equal(t, "q done", res.Value.String())
}

func TestExpandNestedRepetition(t *testing.T) {
	rules := parseRules(t, "{ ($($k:ident => $($v:literal),*);*) => { $($k [$($v),*])* } }")
	res := expand(rules, "(a => 1, 2; b => 3)")
	require.NoError(t, res.Err)
	assert.Equal(t, "a [1 , 2] b [3]", res.Value.String())
}

func TestExpandOneOrMoreRequiresInput(t *testing.T) {
	rules := parseRules(t, "{ ($($x:ident),+) => { $($x)+ } }")
	res := expand(rules, "()")
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, ErrUnexpectedToken))
}

func TestExpandCrateAndUnboundVariables(t *testing.T) {
	rules := parseRules(t, "{ () => { $crate::f($other) } }")
	res := expand(rules, "()")
	require.NoError(t, res.Err)
	assert.Equal(t, "crate :: f ($ other)", res.Value.String())
}

func TestExpandWithoutMatchingRule(t *testing.T) {
	rules := parseRules(t, "{ (a) => { 1 } }")
	res := expand(rules, "(b)")
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, ErrUnexpectedToken))
	// The closest rule is still transcribed.
	assert.Equal(t, "1", res.Value.String())

	empty := parseRules(t, "{}")
	res = expand(empty, "()")
	assert.True(t, errors.Is(res.Err, ErrNoMatchingRule))
	assert.Equal(t, 0, res.Value.Count())
}

func TestParseMacroRulesErrors(t *testing.T) {
	tests := []struct {
		name string
		def  string
		want error
	}{
		{"empty repetition", "{ ($()*) => {} }", ErrInvalidRepeat},
		{"optional-only repetition", "{ ($($v:vis)*) => {} }", ErrInvalidRepeat},
		{"missing operator", "{ ($($x:ident)) => {} }", ErrInvalidRepeat},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sub, _ := ParseToTokenTree(tc.def)
			_, err := ParseMacroRules(sub)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	for _, def := range []string{"{ (a) }", "{ (a) => x }", "{ ($x) => {} }", "{ (a) => {} (b) => {} }"} {
		sub, _ := ParseToTokenTree(def)
		_, err := ParseMacroRules(sub)
		var perr *ParseError
		assert.True(t, errors.As(err, &perr), "%s: got %v", def, err)
	}
}

func TestShiftSeparatesCallAndDefinitionTokens(t *testing.T) {
	def, _ := ParseToTokenTree("{ ($($t:tt),*) => { bar($($t),*); } }")
	rules, err := ParseMacroRules(def)
	require.NoError(t, err)

	maxID, ok := def.MaxID()
	require.True(t, ok)

	input, _ := ParseToTokenTree("(a, x)")
	x := input.TokenTrees[2].(tt.Ident)

	down := rules.MapIDDown(x.ID)
	assert.Greater(t, uint32(down), uint32(maxID))
	up, origin := rules.MapIDUp(down)
	assert.Equal(t, x.ID, up)
	assert.Equal(t, OriginCall, origin)

	res := rules.Expand(input)
	require.NoError(t, res.Err)
	bar := res.Value.TokenTrees[0].(tt.Ident)
	id, origin := rules.MapIDUp(bar.ID)
	assert.Equal(t, OriginDef, origin)
	assert.Equal(t, bar.ID, id)

	args := res.Value.TokenTrees[1].(*tt.Subtree)
	assert.Equal(t, down, args.TokenTrees[2].(tt.Ident).ID)
}

func TestExpandLargeOutput(t *testing.T) {
	rules := parseRules(t, "{ ($($t:tt)*) => { $($t $t $t)* } }")
	input := "(" + strings.TrimSpace(strings.Repeat("a ", 30000)) + ")"
	res := expand(rules, input)
	require.NoError(t, res.Err)
	assert.Equal(t, 90000, res.Value.Count())
}

func TestRepetitionLimitIsReported(t *testing.T) {
	t.Run("transcribing", func(t *testing.T) {
		// $x is not repeated, so nothing ends the repetition.
		rules := parseRules(t, "{ ($x:ident) => { $($x)* } }")
		res := expand(rules, "(a)")
		require.Error(t, res.Err)
		assert.True(t, errors.Is(res.Err, ErrRepeatLimit))
		assert.Contains(t, res.Err.Error(), "transcribing")
		assert.Equal(t, repeatLimit-1, res.Value.Count())
	})
	t.Run("matching", func(t *testing.T) {
		rules := parseRules(t, "{ ($($t:tt)*) => { x } }")
		input := "(" + strings.TrimSpace(strings.Repeat("a ", repeatLimit)) + ")"
		res := expand(rules, input)
		require.Error(t, res.Err)
		assert.True(t, errors.Is(res.Err, ErrRepeatLimit))
		assert.Contains(t, res.Err.Error(), "matching")
		assert.Equal(t, "x", res.Value.String())
	})
}
