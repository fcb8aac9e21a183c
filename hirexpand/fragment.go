package hirexpand

import (
	"github.com/satishbabariya/expand-go/syntax"
)

// ToFragmentKind infers what an expansion of the call at node must parse
// as, from the kind of the node's parent. Only items and expressions are
// distinguished; statement and pattern positions parse as expressions.
// A call without a parent, at the root of an expansion, is an expression.
func ToFragmentKind(node *syntax.Node) syntax.FragmentKind {
	parent := node.Parent()
	if parent == nil {
		return syntax.FragmentExpr
	}
	switch parent.Kind() {
	case syntax.MacroItems, syntax.SourceFile, syntax.ItemList:
		return syntax.FragmentItems
	case syntax.LetStmt, syntax.ExprStmt, syntax.Block,
		syntax.ArgList, syntax.TryExpr, syntax.TupleExpr, syntax.ParenExpr,
		syntax.ForExpr, syntax.PathExpr, syntax.LambdaExpr, syntax.Condition,
		syntax.BreakExpr, syntax.ReturnExpr, syntax.BlockExpr,
		syntax.MatchExpr, syntax.MatchArm, syntax.MatchGuard,
		syntax.RecordField, syntax.CallExpr, syntax.IndexExpr,
		syntax.MethodCallExpr, syntax.AwaitExpr, syntax.CastExpr,
		syntax.RefExpr, syntax.PrefixExpr, syntax.RangeExpr, syntax.BinExpr:
		return syntax.FragmentExpr
	}
	return syntax.FragmentItems
}
