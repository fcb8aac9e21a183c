// Package tt defines token trees: delimiter-nested token sequences detached
// from concrete syntax. Macros are matched against and emit token trees.
package tt

import (
	"fmt"
	"math"
	"strings"

	"github.com/zeebo/xxh3"
)

// TokenID identifies a token within one token-tree snapshot.
type TokenID uint32

// Unspecified marks tokens synthesized without a source position.
const Unspecified TokenID = math.MaxUint32

// TokenTree is either a *Subtree or a Leaf.
type TokenTree interface {
	isTokenTree()
}

// Leaf is an Ident, Literal or Punct.
type Leaf interface {
	TokenTree
	LeafID() TokenID
}

// Ident is an identifier or keyword.
type Ident struct {
	Text string
	ID   TokenID
}

// Literal is a number, string, char or boolean literal.
type Literal struct {
	Text string
	ID   TokenID
}

// Spacing tells whether a punct is glued to the following punct.
type Spacing uint8

const (
	Alone Spacing = iota
	Joint
)

// Punct is a single punctuation character. Multi-character operators are
// sequences of Joint puncts.
type Punct struct {
	Char    rune
	Spacing Spacing
	ID      TokenID
}

func (Ident) isTokenTree()    {}
func (Literal) isTokenTree()  {}
func (Punct) isTokenTree()    {}
func (*Subtree) isTokenTree() {}

func (l Ident) LeafID() TokenID   { return l.ID }
func (l Literal) LeafID() TokenID { return l.ID }
func (l Punct) LeafID() TokenID   { return l.ID }

type DelimiterKind uint8

const (
	Parenthesis DelimiterKind = iota
	Brace
	Bracket
)

// Open returns the opening character.
func (k DelimiterKind) Open() rune {
	switch k {
	case Brace:
		return '{'
	case Bracket:
		return '['
	}
	return '('
}

// Close returns the closing character.
func (k DelimiterKind) Close() rune {
	switch k {
	case Brace:
		return '}'
	case Bracket:
		return ']'
	}
	return ')'
}

// DelimiterFromChar maps an opening character to its kind.
func DelimiterFromChar(c rune) (DelimiterKind, bool) {
	switch c {
	case '(':
		return Parenthesis, true
	case '{':
		return Brace, true
	case '[':
		return Bracket, true
	}
	return 0, false
}

type Delimiter struct {
	ID   TokenID
	Kind DelimiterKind
}

// Subtree is a sequence of token trees, optionally wrapped in a delimiter.
// A nil Delimiter means an invisible group.
type Subtree struct {
	Delimiter  *Delimiter
	TokenTrees []TokenTree
}

// Count returns the number of token trees in s, counting nested subtrees
// both as one element of their parent and by their own contents.
func (s *Subtree) Count() int {
	n := len(s.TokenTrees)
	for _, child := range s.TokenTrees {
		if sub, ok := child.(*Subtree); ok {
			n += sub.Count()
		}
	}
	return n
}

// DelimiterKind returns the delimiter kind, or false for an invisible group.
func (s *Subtree) DelimiterKind() (DelimiterKind, bool) {
	if s.Delimiter == nil {
		return 0, false
	}
	return s.Delimiter.Kind, true
}

// String renders the canonical text of s. Tokens are separated by a single
// space except after a Joint punct.
func (s *Subtree) String() string {
	var b strings.Builder
	writeSubtree(&b, s)
	return b.String()
}

func writeSubtree(b *strings.Builder, s *Subtree) {
	if s.Delimiter != nil {
		b.WriteRune(s.Delimiter.Kind.Open())
	}
	for i, child := range s.TokenTrees {
		if i > 0 {
			if p, ok := s.TokenTrees[i-1].(Punct); !ok || p.Spacing != Joint {
				b.WriteByte(' ')
			}
		}
		switch child := child.(type) {
		case *Subtree:
			writeSubtree(b, child)
		case Ident:
			b.WriteString(child.Text)
		case Literal:
			b.WriteString(child.Text)
		case Punct:
			b.WriteRune(child.Char)
		}
	}
	if s.Delimiter != nil {
		b.WriteRune(s.Delimiter.Kind.Close())
	}
}

// Debug renders s with token ids, one token per line.
func (s *Subtree) Debug() string {
	var b strings.Builder
	debugSubtree(&b, s, 0)
	return b.String()
}

func debugSubtree(b *strings.Builder, s *Subtree, depth int) {
	indent := strings.Repeat("  ", depth)
	if s.Delimiter == nil {
		fmt.Fprintf(b, "%sSUBTREE $\n", indent)
	} else {
		fmt.Fprintf(b, "%sSUBTREE %c%c %d\n", indent, s.Delimiter.Kind.Open(), s.Delimiter.Kind.Close(), s.Delimiter.ID)
	}
	for _, child := range s.TokenTrees {
		switch child := child.(type) {
		case *Subtree:
			debugSubtree(b, child, depth+1)
		case Ident:
			fmt.Fprintf(b, "%s  IDENT %s %d\n", indent, child.Text, child.ID)
		case Literal:
			fmt.Fprintf(b, "%s  LITERAL %s %d\n", indent, child.Text, child.ID)
		case Punct:
			spacing := "alone"
			if child.Spacing == Joint {
				spacing = "joint"
			}
			fmt.Fprintf(b, "%s  PUNCH %c [%s] %d\n", indent, child.Char, spacing, child.ID)
		}
	}
}

// Fingerprint hashes the structure of s, token ids included.
func (s *Subtree) Fingerprint() uint64 {
	return xxh3.HashString(s.Debug())
}

// Equal reports whether a and b are structurally identical, ids included.
func Equal(a, b TokenTree) bool {
	switch a := a.(type) {
	case *Subtree:
		bs, ok := b.(*Subtree)
		if !ok || len(a.TokenTrees) != len(bs.TokenTrees) {
			return false
		}
		if (a.Delimiter == nil) != (bs.Delimiter == nil) {
			return false
		}
		if a.Delimiter != nil && *a.Delimiter != *bs.Delimiter {
			return false
		}
		for i := range a.TokenTrees {
			if !Equal(a.TokenTrees[i], bs.TokenTrees[i]) {
				return false
			}
		}
		return true
	case Ident:
		bl, ok := b.(Ident)
		return ok && a == bl
	case Literal:
		bl, ok := b.(Literal)
		return ok && a == bl
	case Punct:
		bl, ok := b.(Punct)
		return ok && a == bl
	}
	return false
}

// MapIDs returns a copy of s with every leaf and delimiter id passed through
// f. Unspecified ids are left alone.
func (s *Subtree) MapIDs(f func(TokenID) TokenID) *Subtree {
	apply := func(id TokenID) TokenID {
		if id == Unspecified {
			return id
		}
		return f(id)
	}
	out := &Subtree{TokenTrees: make([]TokenTree, 0, len(s.TokenTrees))}
	if s.Delimiter != nil {
		out.Delimiter = &Delimiter{ID: apply(s.Delimiter.ID), Kind: s.Delimiter.Kind}
	}
	for _, child := range s.TokenTrees {
		switch child := child.(type) {
		case *Subtree:
			out.TokenTrees = append(out.TokenTrees, child.MapIDs(f))
		case Ident:
			child.ID = apply(child.ID)
			out.TokenTrees = append(out.TokenTrees, child)
		case Literal:
			child.ID = apply(child.ID)
			out.TokenTrees = append(out.TokenTrees, child)
		case Punct:
			child.ID = apply(child.ID)
			out.TokenTrees = append(out.TokenTrees, child)
		}
	}
	return out
}

// MaxID returns the largest specified id in s, and false if there is none.
func (s *Subtree) MaxID() (TokenID, bool) {
	var (
		hi    TokenID
		found bool
	)
	see := func(id TokenID) {
		if id != Unspecified && (!found || id > hi) {
			hi, found = id, true
		}
	}
	if s.Delimiter != nil {
		see(s.Delimiter.ID)
	}
	for _, child := range s.TokenTrees {
		switch child := child.(type) {
		case *Subtree:
			if id, ok := child.MaxID(); ok {
				see(id)
			}
		case Leaf:
			see(child.LeafID())
		}
	}
	return hi, found
}
