package hirexpand

import (
	"fmt"

	"github.com/satishbabariya/expand-go/mbe"
	"github.com/satishbabariya/expand-go/syntax"
)

// Hypothetical is the result of expanding a call with substituted
// arguments: the expansion tree and the token the tracked token became.
type Hypothetical struct {
	Node  *syntax.Node
	Token *syntax.Token
}

// ExpandHypothetical expands call as if its argument were args, and follows
// token, which must lie inside args, into the expansion. Nothing computed
// from args is memoized. It fails with ErrNoCorrespondence when token has no
// counterpart in the output.
func (db *Database) ExpandHypothetical(call MacroCallID, args *syntax.Node, token *syntax.Token) (*Hypothetical, error) {
	if _, eager := call.Eager(); eager {
		return nil, db.fail(call, UnsupportedOnEagerCall, "hypothetical macro expansion not implemented for eager macro", nil)
	}

	sub, tmap := mbe.SyntaxNodeToTokenTree(args)
	rng, ok := token.TextRange().CheckedSub(args.TextRange().Start)
	if !ok {
		return nil, fmt.Errorf("token %q is outside the arguments: %w", token.Text(), ErrNoCorrespondence)
	}
	id, ok := tmap.TokenByRange(rng)
	if !ok {
		return nil, fmt.Errorf("token %q: %w", token.Text(), ErrNoCorrespondence)
	}

	def, err := db.expander(call)
	if def == nil {
		return nil, db.fail(call, DefinitionNotFound, "failed to find macro definition", err)
	}
	parse, perr := db.parseMacroWithArg(call, &MacroArg{Subtree: sub, Map: tmap}, false)
	if parse == nil {
		return nil, perr
	}

	id = MapIDDown(def.Expander, id)
	tr, ok := parse.Map.RangeByToken(id)
	if !ok {
		return nil, fmt.Errorf("token %q was not emitted: %w", token.Text(), ErrNoCorrespondence)
	}
	r, ok := tr.ByKind(token.Kind())
	if !ok {
		return nil, fmt.Errorf("token %q: %w", token.Text(), ErrNoCorrespondence)
	}
	out, ok := parse.Node.CoveringElement(r).(*syntax.Token)
	if !ok {
		return nil, fmt.Errorf("token %q was merged into a node: %w", token.Text(), ErrNoCorrespondence)
	}
	return &Hypothetical{Node: parse.Node, Token: out}, nil
}
