package hirexpand

import (
	"github.com/satishbabariya/expand-go/mbe"
	"github.com/satishbabariya/expand-go/syntax"
)

// ExpansionInfo relates the tokens of an expansion to the tokens of its
// call argument and macro definition.
type ExpansionInfo struct {
	expanded InFile[*syntax.Node]
	arg      InFile[*syntax.Node]
	def      *InFile[*syntax.Node]

	macroDef *MacroDefinition
	macroArg *MacroArg
	expMap   *mbe.TokenMap
}

// ExpansionInfo returns the mapping information of a lazy macro file.
func (db *Database) ExpansionInfo(file HirFileID) (*ExpansionInfo, bool) {
	call, ok := file.MacroCall()
	if !ok {
		return nil, false
	}
	lazy, ok := call.Lazy()
	if !ok {
		return nil, false
	}
	loc, ok := db.LookupInternMacro(lazy)
	if !ok {
		return nil, false
	}
	arg := db.callArg(loc.Kind)
	if arg == nil {
		return nil, false
	}
	macroDef := db.MacroDef(loc.Def)
	if macroDef == nil {
		return nil, false
	}
	parse, _ := db.ParseMacro(call)
	if parse == nil {
		return nil, false
	}
	macroArg := db.MacroArg(call)
	if macroArg == nil {
		return nil, false
	}

	info := &ExpansionInfo{
		expanded: NewInFile(file, parse.Node),
		arg:      NewInFile(loc.Kind.File(), arg),
		macroDef: macroDef,
		macroArg: macroArg,
		expMap:   parse.Map,
	}
	if loc.Def.HasAST {
		if node := db.AstNode(loc.Def.AstID); node != nil {
			if body := node.Child(syntax.TokenTree); body != nil {
				def := NewInFile(loc.Def.AstID.File, body)
				info.def = &def
			}
		}
	}
	return info, true
}

// Expanded returns the expansion tree.
func (i *ExpansionInfo) Expanded() InFile[*syntax.Node] { return i.expanded }

// Arg returns the argument node of the call.
func (i *ExpansionInfo) Arg() InFile[*syntax.Node] { return i.arg }

// MapTokenDown follows a token of the call argument into the expansion.
func (i *ExpansionInfo) MapTokenDown(token InFile[*syntax.Token]) (InFile[*syntax.Token], bool) {
	if token.File != i.arg.File {
		return InFile[*syntax.Token]{}, false
	}
	rng, ok := token.Value.TextRange().CheckedSub(i.arg.Value.TextRange().Start)
	if !ok {
		return InFile[*syntax.Token]{}, false
	}
	id, ok := i.macroArg.Map.TokenByRange(rng)
	if !ok {
		return InFile[*syntax.Token]{}, false
	}
	id = MapIDDown(i.macroDef.Expander, id)
	tr, ok := i.expMap.RangeByToken(id)
	if !ok {
		return InFile[*syntax.Token]{}, false
	}
	r, ok := tr.ByKind(token.Value.Kind())
	if !ok {
		return InFile[*syntax.Token]{}, false
	}
	tok, ok := i.expanded.Value.CoveringElement(r).(*syntax.Token)
	if !ok {
		return InFile[*syntax.Token]{}, false
	}
	return NewInFile(i.expanded.File, tok), true
}

// MapTokenUp follows a token of the expansion back to the call argument or
// the macro definition it was copied from.
func (i *ExpansionInfo) MapTokenUp(token InFile[*syntax.Token]) (InFile[*syntax.Token], mbe.Origin, bool) {
	id, ok := i.expMap.TokenByRange(token.Value.TextRange())
	if !ok {
		return InFile[*syntax.Token]{}, 0, false
	}
	id, origin := MapIDUp(i.macroDef.Expander, id)

	tmap, tree := i.macroArg.Map, i.arg
	if origin == mbe.OriginDef {
		if i.def == nil {
			return InFile[*syntax.Token]{}, 0, false
		}
		tmap, tree = i.macroDef.Map, *i.def
	}
	tr, ok := tmap.RangeByToken(id)
	if !ok {
		return InFile[*syntax.Token]{}, 0, false
	}
	r, ok := tr.ByKind(token.Value.Kind())
	if !ok {
		return InFile[*syntax.Token]{}, 0, false
	}
	tok, ok := tree.Value.CoveringElement(r.Shift(tree.Value.TextRange().Start)).(*syntax.Token)
	if !ok {
		return InFile[*syntax.Token]{}, 0, false
	}
	return NewInFile(tree.File, tok), origin, true
}
