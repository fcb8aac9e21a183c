package hirexpand

import (
	"fmt"

	"github.com/satishbabariya/expand-go/builtin"
	"github.com/satishbabariya/expand-go/mbe"
	"github.com/satishbabariya/expand-go/syntax"
	"github.com/satishbabariya/expand-go/tt"
)

// Resolver maps the last path segment of a nested call to its definition.
type Resolver func(name string) (MacroDefID, bool)

type eagerExpansion struct {
	db      *Database
	resolve Resolver
	site    builtin.CallSite
	env     builtin.Environment
	call    InFile[*syntax.Node]
}

// ExpandEagerMacro expands the eager builtin call at call, defined by def.
// Macro calls written inside its argument are expanded first, recursively,
// with their names resolved by resolve. The output is interned and the
// eager call id returned.
func (db *Database) ExpandEagerMacro(call InFile[*syntax.Node], def MacroDefID, resolve Resolver) (MacroCallID, error) {
	e := &eagerExpansion{db: db, resolve: resolve, env: db.Env(), call: call}
	if def.Kind != BuiltinEager {
		return MacroCallID{}, e.fail(DefinitionNotFound, fmt.Sprintf("%s is not an eager macro", def), nil)
	}
	args := call.Value.Child(syntax.TokenTree)
	if args == nil {
		return MacroCallID{}, e.fail(ArgumentsUnresolvable, "macro call has no arguments", nil)
	}
	e.site = db.siteOf(call)

	sub, _ := mbe.SyntaxNodeToTokenTree(args)
	sub, err := e.substitute(sub, 0)
	if err != nil {
		return MacroCallID{}, err
	}
	out, xerr := def.Eager.Expand(e.env, sub)
	if xerr != nil {
		return MacroCallID{}, e.fail(RuleMatchFailure, xerr.Error(), xerr)
	}
	if count := out.Count(); count > TokenLimit {
		ee := e.fail(OutputTooLarge, fmt.Sprintf("total tokens count exceed limit: count = %d", count), nil)
		ee.TokenCount = count
		return MacroCallID{}, ee
	}
	id := db.InternEagerExpansion(EagerCallLoc{
		Def:      def,
		Fragment: syntax.FragmentExpr,
		Subtree:  out,
		File:     call.File,
	})
	return EagerCall(id), nil
}

func (e *eagerExpansion) fail(kind ErrorKind, msg string, cause error) *ExpandError {
	ee := &ExpandError{Kind: kind, Message: msg, Err: cause}
	ee.Span, ee.Located = e.db.span(e.call)
	for _, p := range e.db.parents(e.call.File) {
		ee.Chain = append(ee.Chain, p.Value.Text())
	}
	return ee
}

// substitute replaces every `path!(...)` in sub with an invisible group
// holding its expansion.
func (e *eagerExpansion) substitute(sub *tt.Subtree, depth int) (*tt.Subtree, *ExpandError) {
	out := &tt.Subtree{Delimiter: sub.Delimiter}
	trees := sub.TokenTrees
	for i := 0; i < len(trees); i++ {
		if name, n, args, ok := nestedCall(trees[i:]); ok {
			expanded, err := e.expandNested(name, args, depth+1)
			if err != nil {
				return nil, err
			}
			out.TokenTrees = append(out.TokenTrees, expanded)
			i += n - 1
			continue
		}
		if child, ok := trees[i].(*tt.Subtree); ok {
			c, err := e.substitute(child, depth)
			if err != nil {
				return nil, err
			}
			out.TokenTrees = append(out.TokenTrees, c)
			continue
		}
		out.TokenTrees = append(out.TokenTrees, trees[i])
	}
	return out, nil
}

func (e *eagerExpansion) expandNested(name string, args *tt.Subtree, depth int) (*tt.Subtree, *ExpandError) {
	if depth > e.db.opts.MaxCallChainDepth {
		return nil, e.fail(ArgumentsUnresolvable, fmt.Sprintf("nested macro calls deeper than %d", e.db.opts.MaxCallChainDepth), nil)
	}
	def, ok := e.resolve(name)
	if !ok {
		return nil, e.fail(ArgumentsUnresolvable, fmt.Sprintf("unresolved macro %s!", name), nil)
	}

	if def.Kind == BuiltinEager {
		inner, err := e.substitute(args, depth)
		if err != nil {
			return nil, err
		}
		out, xerr := def.Eager.Expand(e.env, inner)
		if xerr != nil {
			return nil, e.fail(RuleMatchFailure, fmt.Sprintf("%s!: %v", name, xerr), xerr)
		}
		return &tt.Subtree{TokenTrees: out.TokenTrees}, nil
	}

	md, derr := e.db.macroDefinition(def)
	if md == nil {
		return nil, e.fail(DefinitionNotFound, fmt.Sprintf("failed to find macro definition of %s!", name), derr)
	}
	res := Expand(md.Expander, e.site, args)
	if res.Err != nil {
		return nil, e.fail(RuleMatchFailure, fmt.Sprintf("%s!: %v", name, res.Err), res.Err)
	}
	if count := res.Value.Count(); count > TokenLimit {
		ee := e.fail(OutputTooLarge, fmt.Sprintf("total tokens count exceed limit: count = %d", count), nil)
		ee.TokenCount = count
		return nil, ee
	}
	return e.substitute(&tt.Subtree{TokenTrees: res.Value.TokenTrees}, depth)
}

// nestedCall recognizes `a::b!(...)` at the start of trees and returns the
// last path segment, the number of trees the call spans and its argument.
func nestedCall(trees []tt.TokenTree) (string, int, *tt.Subtree, bool) {
	ident, ok := trees[0].(tt.Ident)
	if !ok || syntax.IdentKind(ident.Text) != syntax.Ident {
		return "", 0, nil, false
	}
	name, j := ident.Text, 1
	for j+2 < len(trees) && isPunct(trees[j], ':') && isPunct(trees[j+1], ':') {
		next, ok := trees[j+2].(tt.Ident)
		if !ok {
			return "", 0, nil, false
		}
		name = next.Text
		j += 3
	}
	if j+1 >= len(trees) || !isPunct(trees[j], '!') {
		return "", 0, nil, false
	}
	args, ok := trees[j+1].(*tt.Subtree)
	if !ok || args.Delimiter == nil {
		return "", 0, nil, false
	}
	return name, j + 2, args, true
}

func isPunct(tree tt.TokenTree, c rune) bool {
	p, ok := tree.(tt.Punct)
	return ok && p.Char == c
}
