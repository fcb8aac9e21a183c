package mbe

import (
	"github.com/satishbabariya/expand-go/syntax"
	"github.com/satishbabariya/expand-go/tt"
)

// repeatLimit caps the iterations of a single repetition while matching or
// transcribing.
const repeatLimit = 65536

type fragmentKind uint8

const (
	fragmentTokens fragmentKind = iota
	// fragmentAST is a parsed expression, kept as an invisible group.
	fragmentAST
)

type fragment struct {
	kind fragmentKind
	tree tt.TokenTree
}

type bindingKind uint8

const (
	bindingFragment bindingKind = iota
	bindingNested
	bindingEmpty
)

type binding struct {
	kind     bindingKind
	fragment fragment
	nested   []*binding
}

type bindings struct {
	inner map[string]*binding
}

func newBindings() *bindings {
	return &bindings{inner: make(map[string]*binding)}
}

func (b *bindings) insertFragment(name string, f fragment) {
	b.inner[name] = &binding{kind: bindingFragment, fragment: f}
}

func (b *bindings) pushOptional(name string) {
	b.insertFragment(name, fragment{tree: &tt.Subtree{}})
}

func (b *bindings) pushEmpty(name string) {
	b.inner[name] = &binding{kind: bindingEmpty}
}

func (b *bindings) pushNested(idx int, nested *bindings) error {
	for name, value := range nested.inner {
		existing, ok := b.inner[name]
		if !ok {
			existing = &binding{kind: bindingNested}
			b.inner[name] = existing
		}
		if existing.kind != bindingNested {
			return bindingErrorf("could not find binding `%s`", name)
		}
		for len(existing.nested) < idx {
			existing.nested = append(existing.nested, &binding{kind: bindingNested})
		}
		existing.nested = append(existing.nested, value)
	}
	return nil
}

func (b *bindings) contains(name string) bool {
	_, ok := b.inner[name]
	return ok
}

// match is the outcome of matching one rule.
type match struct {
	bindings  *bindings
	unmatched int
	err       error
}

func matchRule(pattern []Op, input *tt.Subtree) match {
	res := match{bindings: newBindings()}
	src := newTTIter(input.TokenTrees)
	err := matchOps(res.bindings, pattern, &src)
	res.unmatched = src.len()
	if err == nil && src.len() > 0 {
		err = matchErrorf("leftover tokens")
	}
	res.err = err
	return res
}

func matchOps(b *bindings, pattern []Op, src *ttIter) error {
	for _, op := range pattern {
		switch op := op.(type) {
		case LeafOp:
			rhs, ok := src.expectLeaf()
			if !ok || !leafEqual(op.Leaf, rhs) {
				return matchErrorf("expected leaf `%s`", leafText(op.Leaf))
			}
		case SubtreeOp:
			rhs, ok := src.expectSubtree()
			if !ok {
				return matchErrorf("expected subtree")
			}
			if !sameDelimiter(op.Delimiter, rhs.Delimiter) {
				return matchErrorf("mismatched delimiter")
			}
			nested := newTTIter(rhs.TokenTrees)
			if err := matchOps(b, op.Ops, &nested); err != nil {
				return err
			}
			if nested.len() > 0 {
				return matchErrorf("leftover tokens")
			}
		case VarOp:
			if op.Kind == "" {
				return ErrUnexpectedToken
			}
			f, present, err := matchMetaVar(op.Kind, src)
			if err != nil {
				return err
			}
			if present {
				b.insertFragment(op.Name, f)
			} else {
				b.pushOptional(op.Name)
			}
		case RepeatOp:
			if err := matchRepeat(b, op, src); err != nil {
				return err
			}
		}
	}
	return nil
}

func matchRepeat(b *bindings, op RepeatOp, src *ttIter) error {
	var (
		counter  int
		limitErr error
	)
	for i := 0; ; i++ {
		fork := *src
		if op.Separator != nil && i != 0 && !eatSeparator(&fork, op.Separator) {
			break
		}
		nested := newBindings()
		if err := matchOps(nested, op.Ops, &fork); err != nil {
			break
		}
		if fork.pos == src.pos {
			// A repetition that consumes nothing would loop forever.
			break
		}
		if counter+1 >= repeatLimit {
			limitErr = repeatLimitErrorf("matching")
			break
		}
		*src = fork
		if err := b.pushNested(counter, nested); err != nil {
			return err
		}
		counter++
		if counter == 1 && op.Kind == ZeroOrOne {
			break
		}
	}

	switch {
	case counter == 0 && op.Kind == OneOrMore:
		return matchErrorf("expected at least one repetition")
	case counter == 0:
		for _, name := range collectVars(op.Ops) {
			b.pushEmpty(name)
		}
	}
	return limitErr
}

func collectVars(ops []Op) []string {
	var out []string
	for _, op := range ops {
		switch op := op.(type) {
		case VarOp:
			out = append(out, op.Name)
		case SubtreeOp:
			out = append(out, collectVars(op.Ops)...)
		case RepeatOp:
			out = append(out, collectVars(op.Ops)...)
		}
	}
	return out
}

func eatSeparator(src *ttIter, sep *Separator) bool {
	switch {
	case sep.Ident != nil:
		ident, ok := src.expectIdent()
		return ok && ident.Text == sep.Ident.Text
	case sep.Literal != nil:
		lit, ok := src.expectLiteral()
		return ok && lit.Text == sep.Literal.Text
	}
	for _, want := range sep.Puncts {
		got, ok := src.expectPunct()
		if !ok || got.Char != want.Char {
			return false
		}
	}
	return true
}

var fragmentKinds = map[string]syntax.FragmentKind{
	"path":  syntax.FragmentPath,
	"expr":  syntax.FragmentExpr,
	"ty":    syntax.FragmentType,
	"pat":   syntax.FragmentPattern,
	"stmt":  syntax.FragmentStatement,
	"block": syntax.FragmentBlock,
	"meta":  syntax.FragmentMetaItem,
	"item":  syntax.FragmentItem,
}

// matchMetaVar matches one metavariable of the given kind. present is false
// for an absent optional fragment.
func matchMetaVar(kind string, src *ttIter) (f fragment, present bool, err error) {
	if fk, ok := fragmentKinds[kind]; ok {
		tree, err := src.expectFragment(fk)
		if err != nil {
			return fragment{}, false, err
		}
		if kind == "expr" {
			return fragment{kind: fragmentAST, tree: tree}, true, nil
		}
		return fragment{tree: tree}, true, nil
	}

	switch kind {
	case "ident":
		ident, ok := src.expectIdent()
		if !ok {
			return fragment{}, false, matchErrorf("expected ident")
		}
		return fragment{tree: ident}, true, nil
	case "tt":
		tree, ok := src.expectTT()
		if !ok {
			return fragment{}, false, matchErrorf("expected token tree")
		}
		return fragment{tree: tree}, true, nil
	case "literal":
		lit, ok := src.expectLiteral()
		if !ok {
			return fragment{}, false, matchErrorf("expected literal")
		}
		return fragment{tree: lit}, true, nil
	case "vis":
		if tree := src.eatVis(); tree != nil {
			return fragment{tree: tree}, true, nil
		}
		return fragment{}, false, nil
	case "lifetime":
		// The language has no lifetimes; nothing can match.
		return fragment{}, false, matchErrorf("expected lifetime")
	}
	return fragment{}, false, ErrUnexpectedToken
}

func leafEqual(a, b tt.Leaf) bool {
	switch a := a.(type) {
	case tt.Ident:
		bi, ok := b.(tt.Ident)
		return ok && a.Text == bi.Text
	case tt.Literal:
		bl, ok := b.(tt.Literal)
		return ok && a.Text == bl.Text
	case tt.Punct:
		bp, ok := b.(tt.Punct)
		return ok && a.Char == bp.Char
	}
	return false
}

func leafText(l tt.Leaf) string {
	switch l := l.(type) {
	case tt.Ident:
		return l.Text
	case tt.Literal:
		return l.Text
	case tt.Punct:
		return string(l.Char)
	}
	return ""
}

func sameDelimiter(a, b *tt.Delimiter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind == b.Kind
}
