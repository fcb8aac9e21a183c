package syntax

import (
	"fmt"
	"strings"
)

// TextRange is a half-open byte range [Start, End).
type TextRange struct {
	Start int
	End   int
}

// NewRange creates a range from start and end offsets.
func NewRange(start, end int) TextRange {
	return TextRange{Start: start, End: end}
}

// Len returns the length of the range in bytes.
func (r TextRange) Len() int { return r.End - r.Start }

// IsEmpty reports whether the range covers no text.
func (r TextRange) IsEmpty() bool { return r.Start == r.End }

// ContainsRange reports whether other lies within r (boundaries included).
func (r TextRange) ContainsRange(other TextRange) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// Shift moves the range right by offset.
func (r TextRange) Shift(offset int) TextRange {
	return TextRange{Start: r.Start + offset, End: r.End + offset}
}

// CheckedSub moves the range left by offset, failing if it would start before zero.
func (r TextRange) CheckedSub(offset int) (TextRange, bool) {
	if offset > r.Start {
		return TextRange{}, false
	}
	return TextRange{Start: r.Start - offset, End: r.End - offset}, true
}

func (r TextRange) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Element is either a *Node or a *Token.
type Element interface {
	Kind() SyntaxKind
	TextRange() TextRange
	Parent() *Node
	isElement()
}

// Node is an immutable interior node of a concrete syntax tree.
type Node struct {
	kind     SyntaxKind
	rng      TextRange
	parent   *Node
	index    int
	children []Element
}

// Token is an immutable leaf of a concrete syntax tree.
type Token struct {
	kind   SyntaxKind
	text   string
	rng    TextRange
	parent *Node
	index  int
}

func (*Node) isElement()  {}
func (*Token) isElement() {}

// Kind returns the node kind.
func (n *Node) Kind() SyntaxKind { return n.kind }

// TextRange returns the absolute range of the node within its tree.
func (n *Node) TextRange() TextRange { return n.rng }

// Parent returns the enclosing node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// ChildrenWithTokens returns all direct children, tokens included.
func (n *Node) ChildrenWithTokens() []Element { return n.children }

// Children returns the direct child nodes.
func (n *Node) Children() []*Node {
	var out []*Node
	for _, c := range n.children {
		if cn, ok := c.(*Node); ok {
			out = append(out, cn)
		}
	}
	return out
}

// Child returns the first direct child node of the given kind.
func (n *Node) Child(kind SyntaxKind) *Node {
	for _, c := range n.children {
		if cn, ok := c.(*Node); ok && cn.kind == kind {
			return cn
		}
	}
	return nil
}

// ChildToken returns the first direct child token of the given kind.
func (n *Node) ChildToken(kind SyntaxKind) *Token {
	for _, c := range n.children {
		if ct, ok := c.(*Token); ok && ct.kind == kind {
			return ct
		}
	}
	return nil
}

// Text returns the source text covered by the node.
func (n *Node) Text() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	for _, c := range n.children {
		switch c := c.(type) {
		case *Node:
			c.writeText(b)
		case *Token:
			b.WriteString(c.text)
		}
	}
}

// Ancestors returns the node and its ancestors, innermost first.
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for cur := n; cur != nil; cur = cur.parent {
		out = append(out, cur)
	}
	return out
}

// Descendants returns the node and all descendant nodes in preorder.
func (n *Node) Descendants() []*Node {
	out := []*Node{n}
	for _, c := range n.children {
		if cn, ok := c.(*Node); ok {
			out = append(out, cn.Descendants()...)
		}
	}
	return out
}

// DescendantTokens returns every token under the node in text order.
func (n *Node) DescendantTokens() []*Token {
	var out []*Token
	for _, c := range n.children {
		switch c := c.(type) {
		case *Node:
			out = append(out, c.DescendantTokens()...)
		case *Token:
			out = append(out, c)
		}
	}
	return out
}

// FirstToken returns the first token under the node.
func (n *Node) FirstToken() *Token {
	for _, c := range n.children {
		switch c := c.(type) {
		case *Token:
			return c
		case *Node:
			if t := c.FirstToken(); t != nil {
				return t
			}
		}
	}
	return nil
}

// LastToken returns the last token under the node.
func (n *Node) LastToken() *Token {
	for i := len(n.children) - 1; i >= 0; i-- {
		switch c := n.children[i].(type) {
		case *Token:
			return c
		case *Node:
			if t := c.LastToken(); t != nil {
				return t
			}
		}
	}
	return nil
}

// NextSibling returns the next sibling node, skipping tokens.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	for _, c := range n.parent.children[n.index+1:] {
		if cn, ok := c.(*Node); ok {
			return cn
		}
	}
	return nil
}

// CoveringElement returns the deepest element whose range contains r. Empty
// ranges at a token boundary resolve to the token on the right.
func (n *Node) CoveringElement(r TextRange) Element {
	if !n.rng.ContainsRange(r) {
		return nil
	}
	var cur Element = n
	for {
		node, ok := cur.(*Node)
		if !ok {
			return cur
		}
		next := Element(nil)
		for _, c := range node.children {
			cr := c.TextRange()
			if !cr.ContainsRange(r) {
				continue
			}
			if r.IsEmpty() && cr.End == r.Start && !cr.IsEmpty() {
				continue
			}
			next = c
			break
		}
		if next == nil {
			return cur
		}
		cur = next
	}
}

// Debug renders the tree as an indented list of kinds and ranges.
func (n *Node) Debug() string {
	var b strings.Builder
	n.debug(&b, 0)
	return b.String()
}

func (n *Node) debug(b *strings.Builder, depth int) {
	fmt.Fprintf(b, "%s%s@%s\n", strings.Repeat("  ", depth), n.kind, n.rng)
	for _, c := range n.children {
		switch c := c.(type) {
		case *Node:
			c.debug(b, depth+1)
		case *Token:
			fmt.Fprintf(b, "%s%s@%s %q\n", strings.Repeat("  ", depth+1), c.kind, c.rng, c.text)
		}
	}
}

// Kind returns the token kind.
func (t *Token) Kind() SyntaxKind { return t.kind }

// Text returns the token text.
func (t *Token) Text() string { return t.text }

// TextRange returns the absolute range of the token.
func (t *Token) TextRange() TextRange { return t.rng }

// Parent returns the node containing the token.
func (t *Token) Parent() *Node { return t.parent }

// NextToken returns the token following t in text order, or nil.
func (t *Token) NextToken() *Token {
	for cur := Element(t); cur != nil; {
		parent := cur.Parent()
		if parent == nil {
			return nil
		}
		idx := indexOf(cur)
		for _, sib := range parent.children[idx+1:] {
			switch sib := sib.(type) {
			case *Token:
				return sib
			case *Node:
				if ft := sib.FirstToken(); ft != nil {
					return ft
				}
			}
		}
		cur = parent
	}
	return nil
}

func indexOf(e Element) int {
	switch e := e.(type) {
	case *Node:
		return e.index
	case *Token:
		return e.index
	}
	return 0
}

// Builder assembles a tree bottom-up from start, token and finish calls.
type Builder struct {
	stack  []*Node
	offset int
	roots  []Element
}

// StartNode opens a node of the given kind at the current offset.
func (b *Builder) StartNode(kind SyntaxKind) {
	b.stack = append(b.stack, &Node{kind: kind, rng: TextRange{Start: b.offset}})
}

// Token appends a token to the innermost open node.
func (b *Builder) Token(kind SyntaxKind, text string) {
	tok := &Token{kind: kind, text: text, rng: TextRange{Start: b.offset, End: b.offset + len(text)}}
	b.offset += len(text)
	b.attach(tok)
}

// FinishNode closes the innermost open node.
func (b *Builder) FinishNode() {
	if len(b.stack) == 0 {
		return
	}
	n := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	n.rng.End = b.offset
	b.attach(n)
}

// Depth returns the number of currently open nodes.
func (b *Builder) Depth() int { return len(b.stack) }

func (b *Builder) attach(e Element) {
	if len(b.stack) == 0 {
		b.roots = append(b.roots, e)
		return
	}
	parent := b.stack[len(b.stack)-1]
	switch e := e.(type) {
	case *Node:
		e.parent, e.index = parent, len(parent.children)
	case *Token:
		e.parent, e.index = parent, len(parent.children)
	}
	parent.children = append(parent.children, e)
}

// Finish returns the single root node. It reports false when the events did
// not describe exactly one root node.
func (b *Builder) Finish() (*Node, bool) {
	for len(b.stack) > 0 {
		b.FinishNode()
	}
	if len(b.roots) != 1 {
		return nil, false
	}
	root, ok := b.roots[0].(*Node)
	return root, ok
}
