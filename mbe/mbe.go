// Package mbe implements macros by example: conversion between syntax trees
// and token trees, and an interpreter for rule-based macro definitions.
package mbe

import (
	"github.com/satishbabariya/expand-go/tt"
)

// Origin tells where a token of an expansion came from.
type Origin uint8

const (
	// OriginCall marks tokens copied from the macro call's argument.
	OriginCall Origin = iota
	// OriginDef marks tokens written in the macro definition.
	OriginDef
)

func (o Origin) String() string {
	if o == OriginDef {
		return "def"
	}
	return "call"
}

// Shift offsets argument token ids past the ids used by the definition, so
// both kinds of tokens can coexist in one expansion.
type Shift uint32

// NewShift returns the shift for a definition token tree.
func NewShift(def *tt.Subtree) Shift {
	if id, ok := def.MaxID(); ok {
		return Shift(id + 1)
	}
	return 0
}

// Apply shifts id. Unspecified ids stay unspecified.
func (s Shift) Apply(id tt.TokenID) tt.TokenID {
	if id == tt.Unspecified {
		return id
	}
	return id + tt.TokenID(s)
}

// Unapply reverses Apply, failing for ids below the shift.
func (s Shift) Unapply(id tt.TokenID) (tt.TokenID, bool) {
	if id < tt.TokenID(s) {
		return id, false
	}
	return id - tt.TokenID(s), true
}

// All returns a copy of subtree with every id shifted.
func (s Shift) All(subtree *tt.Subtree) *tt.Subtree {
	return subtree.MapIDs(s.Apply)
}

// MacroRules is a parsed rule-based macro definition.
type MacroRules struct {
	rules []Rule
	shift Shift
}

// ParseMacroRules parses the body of a macro definition:
// `(pattern) => {template};` repeated, the last `;` optional.
func ParseMacroRules(def *tt.Subtree) (*MacroRules, error) {
	src := newTTIter(def.TokenTrees)
	var rules []Rule
	for src.len() > 0 {
		rule, err := parseRule(&src)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
		if !src.expectChar(';') {
			if src.len() > 0 {
				return nil, parseErrorf("expected `;`")
			}
			break
		}
	}
	for _, rule := range rules {
		if err := validate(rule.LHS); err != nil {
			return nil, err
		}
	}
	return &MacroRules{rules: rules, shift: NewShift(def)}, nil
}

// Rules returns the parsed rules in definition order.
func (m *MacroRules) Rules() []Rule { return m.rules }

// Expand applies the first rule that matches input without errors. If no
// rule matches cleanly, the closest match is transcribed and its error kept.
func (m *MacroRules) Expand(input *tt.Subtree) ExpandResult {
	shifted := m.shift.All(input)

	var (
		best     match
		bestRule *Rule
	)
	for i := range m.rules {
		rule := &m.rules[i]
		cur := matchRule(rule.LHS, shifted)
		if cur.err == nil {
			res := transcribe(rule.RHS, cur.bindings)
			if res.Err == nil {
				return res
			}
		}
		if bestRule == nil || closer(cur, best) {
			best, bestRule = cur, rule
		}
	}
	if bestRule == nil {
		return ExpandResult{Value: &tt.Subtree{}, Err: ErrNoMatchingRule}
	}
	res := transcribe(bestRule.RHS, best.bindings)
	if best.err != nil {
		res.Err = best.err
	}
	return res
}

func closer(a, b match) bool {
	if a.unmatched != b.unmatched {
		return a.unmatched < b.unmatched
	}
	return errCount(a) < errCount(b)
}

func errCount(m match) int {
	if m.err != nil {
		return 1
	}
	return 0
}

// MapIDDown maps an argument token id into the expansion's id space.
func (m *MacroRules) MapIDDown(id tt.TokenID) tt.TokenID {
	return m.shift.Apply(id)
}

// MapIDUp maps an expansion token id back to the argument or definition.
func (m *MacroRules) MapIDUp(id tt.TokenID) (tt.TokenID, Origin) {
	if orig, ok := m.shift.Unapply(id); ok {
		return orig, OriginCall
	}
	return id, OriginDef
}
