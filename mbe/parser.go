package mbe

import (
	"fmt"

	"github.com/satishbabariya/expand-go/tt"
)

// RepeatKind is the repetition operator of a `$(...)` group.
type RepeatKind uint8

const (
	ZeroOrMore RepeatKind = iota // *
	OneOrMore                    // +
	ZeroOrOne                    // ?
)

// Separator separates repetitions: an identifier, a literal, or a run of
// punctuation.
type Separator struct {
	Ident   *tt.Ident
	Literal *tt.Literal
	Puncts  []tt.Punct
}

func (s *Separator) leaves() []tt.TokenTree {
	switch {
	case s.Ident != nil:
		return []tt.TokenTree{*s.Ident}
	case s.Literal != nil:
		return []tt.TokenTree{*s.Literal}
	}
	out := make([]tt.TokenTree, len(s.Puncts))
	for i, p := range s.Puncts {
		out[i] = p
	}
	return out
}

// Op is one element of a matcher or transcriber.
type Op interface {
	isOp()
}

// LeafOp matches or emits a literal token.
type LeafOp struct {
	Leaf tt.Leaf
}

// VarOp is a metavariable. Kind is empty in transcribers.
type VarOp struct {
	Name string
	Kind string
	ID   tt.TokenID
}

// RepeatOp is a `$( ... ) sep? kind` group.
type RepeatOp struct {
	Ops       []Op
	Kind      RepeatKind
	Separator *Separator
}

// SubtreeOp is a delimited group.
type SubtreeOp struct {
	Delimiter *tt.Delimiter
	Ops       []Op
}

func (LeafOp) isOp()    {}
func (VarOp) isOp()     {}
func (RepeatOp) isOp()  {}
func (SubtreeOp) isOp() {}

type parseMode uint8

const (
	modePattern parseMode = iota
	modeTemplate
)

// Rule is a matcher with the transcriber used when it matches.
type Rule struct {
	LHS []Op
	RHS []Op
}

func parseRule(src *ttIter) (Rule, error) {
	lhs, ok := src.expectSubtree()
	if !ok {
		return Rule{}, parseErrorf("expected subtree")
	}
	if !src.expectChar('=') || !src.expectChar('>') {
		return Rule{}, parseErrorf("expected `=>`")
	}
	rhs, ok := src.expectSubtree()
	if !ok {
		return Rule{}, parseErrorf("expected subtree")
	}

	lhsOps, err := parseOps(lhs.TokenTrees, modePattern)
	if err != nil {
		return Rule{}, err
	}
	rhsOps, err := parseOps(rhs.TokenTrees, modeTemplate)
	if err != nil {
		return Rule{}, err
	}
	return Rule{LHS: lhsOps, RHS: rhsOps}, nil
}

func parseOps(trees []tt.TokenTree, mode parseMode) ([]Op, error) {
	src := newTTIter(trees)
	var ops []Op
	for src.len() > 0 {
		op, err := parseOp(&src, mode)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func parseOp(src *ttIter, mode parseMode) (Op, error) {
	first, _ := src.next()
	switch first := first.(type) {
	case *tt.Subtree:
		ops, err := parseOps(first.TokenTrees, mode)
		if err != nil {
			return nil, err
		}
		return SubtreeOp{Delimiter: first.Delimiter, Ops: ops}, nil
	case tt.Punct:
		if first.Char != '$' {
			return LeafOp{Leaf: first}, nil
		}
	default:
		return LeafOp{Leaf: first.(tt.Leaf)}, nil
	}

	dollar := first.(tt.Punct)
	second, ok := src.next()
	if !ok {
		return LeafOp{Leaf: dollar}, nil
	}
	switch second := second.(type) {
	case *tt.Subtree:
		ops, err := parseOps(second.TokenTrees, mode)
		if err != nil {
			return nil, err
		}
		sep, kind, err := parseRepeat(src)
		if err != nil {
			return nil, err
		}
		return RepeatOp{Ops: ops, Kind: kind, Separator: sep}, nil
	case tt.Ident:
		if second.Text == "crate" {
			return LeafOp{Leaf: tt.Ident{Text: "crate", ID: second.ID}}, nil
		}
		kind, err := eatFragmentKind(src, mode)
		if err != nil {
			return nil, err
		}
		return VarOp{Name: second.Text, Kind: kind, ID: second.ID}, nil
	case tt.Literal:
		if second.Text != "true" && second.Text != "false" {
			return nil, parseErrorf("bad metavariable `$%s`", second.Text)
		}
		kind, err := eatFragmentKind(src, mode)
		if err != nil {
			return nil, err
		}
		return VarOp{Name: second.Text, Kind: kind, ID: second.ID}, nil
	case tt.Punct:
		if second.Char != '_' {
			return nil, ErrUnexpectedToken
		}
		kind, err := eatFragmentKind(src, mode)
		if err != nil {
			return nil, err
		}
		return VarOp{Name: "_", Kind: kind, ID: second.ID}, nil
	}
	return nil, ErrUnexpectedToken
}

func eatFragmentKind(src *ttIter, mode parseMode) (string, error) {
	if mode != modePattern {
		return "", nil
	}
	if !src.expectChar(':') {
		return "", parseErrorf("missing fragment specifier")
	}
	ident, ok := src.expectIdent()
	if !ok {
		return "", parseErrorf("bad fragment specifier")
	}
	return ident.Text, nil
}

func repeatKindOf(leaf tt.TokenTree) (RepeatKind, bool) {
	p, ok := leaf.(tt.Punct)
	if !ok {
		return 0, false
	}
	switch p.Char {
	case '*':
		return ZeroOrMore, true
	case '+':
		return OneOrMore, true
	case '?':
		return ZeroOrOne, true
	}
	return 0, false
}

func parseRepeat(src *ttIter) (*Separator, RepeatKind, error) {
	sep := &Separator{}
	hasSep := false
	for {
		tree, ok := src.next()
		if !ok {
			return nil, 0, fmt.Errorf("%w: missing repetition operator", ErrInvalidRepeat)
		}
		switch tree := tree.(type) {
		case tt.Ident:
			if hasSep {
				return nil, 0, ErrInvalidRepeat
			}
			sep.Ident, hasSep = &tree, true
		case tt.Literal:
			if hasSep {
				return nil, 0, ErrInvalidRepeat
			}
			sep.Literal, hasSep = &tree, true
		case tt.Punct:
			if kind, isRepeat := repeatKindOf(tree); isRepeat {
				if !hasSep {
					return nil, kind, nil
				}
				if n := len(sep.Puncts); n > 0 {
					sep.Puncts[n-1].Spacing = tt.Alone
				}
				return sep, kind, nil
			}
			if sep.Ident != nil || sep.Literal != nil || len(sep.Puncts) == 3 {
				return nil, 0, ErrInvalidRepeat
			}
			sep.Puncts, hasSep = append(sep.Puncts, tree), true
		default:
			return nil, 0, ErrInvalidRepeat
		}
	}
}

// validate rejects repetitions without a separator whose contents could
// match no tokens at all.
func validate(ops []Op) error {
	for _, op := range ops {
		switch op := op.(type) {
		case SubtreeOp:
			if err := validate(op.Ops); err != nil {
				return err
			}
		case RepeatOp:
			if op.Separator == nil && canMatchEmpty(op.Ops) {
				return ErrInvalidRepeat
			}
			if err := validate(op.Ops); err != nil {
				return err
			}
		}
	}
	return nil
}

func canMatchEmpty(ops []Op) bool {
	for _, op := range ops {
		switch op := op.(type) {
		case VarOp:
			if op.Kind != "vis" {
				return false
			}
		case RepeatOp:
			if op.Kind == OneOrMore {
				return false
			}
		default:
			return false
		}
	}
	return true
}
