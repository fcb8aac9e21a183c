package hirexpand

import (
	"github.com/satishbabariya/expand-go/syntax"
)

// SyntaxNodePtr finds a node again in a tree parsed from the same text.
type SyntaxNodePtr struct {
	Kind  syntax.SyntaxKind
	Range syntax.TextRange
}

// NewSyntaxNodePtr points at n.
func NewSyntaxNodePtr(n *syntax.Node) SyntaxNodePtr {
	return SyntaxNodePtr{Kind: n.Kind(), Range: n.TextRange()}
}

// ToNode resolves p in the tree rooted at root, or returns nil.
func (p SyntaxNodePtr) ToNode(root *syntax.Node) *syntax.Node {
	cur := root
	for cur != nil && cur.TextRange().ContainsRange(p.Range) {
		if cur.Kind() == p.Kind && cur.TextRange() == p.Range {
			return cur
		}
		var next *syntax.Node
		for _, c := range cur.Children() {
			if c.TextRange().ContainsRange(p.Range) {
				next = c
				break
			}
		}
		cur = next
	}
	return nil
}

// AstIDMap gives a stable index to every item and macro call of a file.
// Indices are assigned breadth first, so adding a nested item leaves the
// ids of enclosing and preceding top-level items unchanged.
type AstIDMap struct {
	arena []SyntaxNodePtr
	index map[SyntaxNodePtr]FileAstID
}

// NewAstIDMap builds the map for the tree rooted at root. A nil root yields
// an empty map.
func NewAstIDMap(root *syntax.Node) *AstIDMap {
	m := &AstIDMap{index: make(map[SyntaxNodePtr]FileAstID)}
	if root == nil {
		return m
	}
	layer := []*syntax.Node{root}
	for len(layer) > 0 {
		var next []*syntax.Node
		for _, n := range layer {
			next = append(next, n.Children()...)
			if addressable(n.Kind()) {
				m.alloc(n)
			}
		}
		layer = next
	}
	return m
}

func addressable(kind syntax.SyntaxKind) bool {
	switch kind {
	case syntax.FnDef, syntax.StructDef, syntax.EnumDef, syntax.Module, syntax.UseItem,
		syntax.ConstDef, syntax.StaticDef, syntax.ImplBlock, syntax.MacroCall:
		return true
	}
	return false
}

func (m *AstIDMap) alloc(n *syntax.Node) {
	ptr := NewSyntaxNodePtr(n)
	if _, ok := m.index[ptr]; ok {
		return
	}
	m.index[ptr] = FileAstID(len(m.arena))
	m.arena = append(m.arena, ptr)
}

// AstID returns the id of n, which must belong to the tree the map was
// built from.
func (m *AstIDMap) AstID(n *syntax.Node) (FileAstID, bool) {
	id, ok := m.index[NewSyntaxNodePtr(n)]
	return id, ok
}

// Get returns the pointer stored under id.
func (m *AstIDMap) Get(id FileAstID) (SyntaxNodePtr, bool) {
	if int(id) >= len(m.arena) {
		return SyntaxNodePtr{}, false
	}
	return m.arena[id], true
}

// Len returns the number of addressed nodes.
func (m *AstIDMap) Len() int { return len(m.arena) }
