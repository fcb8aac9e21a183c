package hirexpand

import (
	"github.com/satishbabariya/expand-go/builtin"
	"github.com/satishbabariya/expand-go/mbe"
	"github.com/satishbabariya/expand-go/tt"
)

// Expander is the behavior bound to a resolved macro definition. The set of
// implementations is closed: RulesExpander, FnLikeExpander and
// DeriveExpander. Eager builtins have no Expander; their output is stored on
// the call id.
type Expander interface {
	isExpander()
}

// RulesExpander interprets a macro_rules! definition.
type RulesExpander struct {
	Rules *mbe.MacroRules
}

// FnLikeExpander runs a builtin function-like macro.
type FnLikeExpander struct {
	Builtin builtin.FnLikeExpander
}

// DeriveExpander runs a builtin derive.
type DeriveExpander struct {
	Builtin builtin.DeriveExpander
}

func (RulesExpander) isExpander()  {}
func (FnLikeExpander) isExpander() {}
func (DeriveExpander) isExpander() {}

// Expand runs e on input.
func Expand(e Expander, site builtin.CallSite, input *tt.Subtree) mbe.ExpandResult {
	switch e := e.(type) {
	case RulesExpander:
		return e.Rules.Expand(input)
	case FnLikeExpander:
		return e.Builtin.Expand(site, input)
	case DeriveExpander:
		return e.Builtin.Expand(site, input)
	}
	return mbe.ExpandResult{Value: &tt.Subtree{}, Err: mbe.ErrNoMatchingRule}
}

// MapIDDown maps an argument token id into the expansion's id space.
func MapIDDown(e Expander, id tt.TokenID) tt.TokenID {
	switch e := e.(type) {
	case RulesExpander:
		return e.Rules.MapIDDown(id)
	case FnLikeExpander:
		return e.Builtin.MapIDDown(id)
	case DeriveExpander:
		return e.Builtin.MapIDDown(id)
	}
	return id
}

// MapIDUp maps an expansion token id back to the call argument or the
// definition.
func MapIDUp(e Expander, id tt.TokenID) (tt.TokenID, mbe.Origin) {
	switch e := e.(type) {
	case RulesExpander:
		return e.Rules.MapIDUp(id)
	case FnLikeExpander:
		return e.Builtin.MapIDUp(id)
	case DeriveExpander:
		return e.Builtin.MapIDUp(id)
	}
	return id, mbe.OriginCall
}
