package mbe

import (
	"github.com/satishbabariya/expand-go/syntax"
	"github.com/satishbabariya/expand-go/tt"
)

// ttIter walks the token trees of one subtree level. Copying the value forks
// the iterator.
type ttIter struct {
	trees []tt.TokenTree
	pos   int
}

func newTTIter(trees []tt.TokenTree) ttIter {
	return ttIter{trees: trees}
}

func (it *ttIter) len() int { return len(it.trees) - it.pos }

func (it *ttIter) peek(n int) (tt.TokenTree, bool) {
	if it.pos+n >= len(it.trees) {
		return nil, false
	}
	return it.trees[it.pos+n], true
}

func (it *ttIter) next() (tt.TokenTree, bool) {
	tree, ok := it.peek(0)
	if ok {
		it.pos++
	}
	return tree, ok
}

func (it *ttIter) rest() []tt.TokenTree { return it.trees[it.pos:] }

func (it *ttIter) expectLeaf() (tt.Leaf, bool) {
	tree, ok := it.peek(0)
	if !ok {
		return nil, false
	}
	leaf, ok := tree.(tt.Leaf)
	if ok {
		it.pos++
	}
	return leaf, ok
}

func (it *ttIter) expectSubtree() (*tt.Subtree, bool) {
	tree, ok := it.peek(0)
	if !ok {
		return nil, false
	}
	sub, ok := tree.(*tt.Subtree)
	if ok {
		it.pos++
	}
	return sub, ok
}

func (it *ttIter) expectChar(c rune) bool {
	tree, ok := it.peek(0)
	if !ok {
		return false
	}
	if p, ok := tree.(tt.Punct); ok && p.Char == c {
		it.pos++
		return true
	}
	return false
}

func (it *ttIter) expectIdent() (tt.Ident, bool) {
	tree, ok := it.peek(0)
	if !ok {
		return tt.Ident{}, false
	}
	if ident, ok := tree.(tt.Ident); ok && ident.Text != "_" {
		it.pos++
		return ident, true
	}
	return tt.Ident{}, false
}

func (it *ttIter) expectLiteral() (tt.Literal, bool) {
	tree, ok := it.peek(0)
	if !ok {
		return tt.Literal{}, false
	}
	if lit, ok := tree.(tt.Literal); ok {
		it.pos++
		return lit, true
	}
	return tt.Literal{}, false
}

func (it *ttIter) expectPunct() (tt.Punct, bool) {
	tree, ok := it.peek(0)
	if !ok {
		return tt.Punct{}, false
	}
	if p, ok := tree.(tt.Punct); ok {
		it.pos++
		return p, true
	}
	return tt.Punct{}, false
}

// expectTT takes one token tree. Joint punctuation forming a compound
// operator is taken whole, wrapped in an invisible group.
func (it *ttIter) expectTT() (tt.TokenTree, bool) {
	tree, ok := it.peek(0)
	if !ok {
		return nil, false
	}
	if p, isPunct := tree.(tt.Punct); isPunct && p.Spacing == tt.Joint {
		if n := it.compoundLen(); n > 1 {
			group := &tt.Subtree{TokenTrees: append([]tt.TokenTree(nil), it.trees[it.pos:it.pos+n]...)}
			it.pos += n
			return group, true
		}
	}
	it.pos++
	return tree, true
}

func (it *ttIter) compoundLen() int {
	for n := 3; n >= 2; n-- {
		text := ""
		ok := true
		for i := 0; i < n; i++ {
			tree, present := it.peek(i)
			p, isPunct := tree.(tt.Punct)
			if !present || !isPunct || (i < n-1 && p.Spacing != tt.Joint) {
				ok = false
				break
			}
			text += string(p.Char)
		}
		if !ok {
			continue
		}
		if _, found := syntax.PunctFromText(text); found {
			return n
		}
	}
	return 1
}

// countingSink only counts consumed parser tokens.
type countingSink struct {
	consumed int
	failed   bool
}

func (s *countingSink) Token(syntax.SyntaxKind)     { s.consumed++ }
func (s *countingSink) StartNode(syntax.SyntaxKind) {}
func (s *countingSink) FinishNode()                 {}
func (s *countingSink) Error(string)                { s.failed = true }

// expectFragment takes the token trees forming the longest prefix that
// parses as kind. The result is a single tree or an invisible group. The
// prefix must end on a token tree boundary at this level.
func (it *ttIter) expectFragment(kind syntax.FragmentKind) (tt.TokenTree, error) {
	rest := it.rest()
	pieces := flatten(rest)
	src := &subtreeSource{pieces: pieces}
	sink := &countingSink{}
	syntax.ParseFragmentPrefix(src, sink, kind)

	if sink.failed {
		return nil, matchErrorf("expected %s", kind)
	}
	if sink.consumed == 0 {
		return nil, matchErrorf("no tokens consumed for %s", kind)
	}
	last := pieces[sink.consumed-1].top
	if sink.consumed < len(pieces) && pieces[sink.consumed].top == last {
		return nil, matchErrorf("%s ends inside a token tree", kind)
	}
	n := last + 1
	it.pos += n
	if n == 1 {
		return rest[0], nil
	}
	return &tt.Subtree{TokenTrees: append([]tt.TokenTree(nil), rest[:n]...)}, nil
}

// eatVis takes an optional visibility.
func (it *ttIter) eatVis() tt.TokenTree {
	fork := *it
	tree, err := fork.expectFragment(syntax.FragmentVisibility)
	if err != nil {
		return nil
	}
	*it = fork
	return tree
}
