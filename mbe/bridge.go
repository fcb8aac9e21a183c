package mbe

import (
	"fmt"
	"unicode/utf8"

	"github.com/satishbabariya/expand-go/syntax"
	"github.com/satishbabariya/expand-go/tt"
)

// srcToken is a lexed token with its range relative to the converted region.
type srcToken struct {
	kind syntax.SyntaxKind
	text string
	rng  syntax.TextRange
}

// SyntaxNodeToTokenTree converts node into a token tree. Ranges in the
// returned map are relative to the start of node. Conversion never fails:
// unbalanced delimiters degrade to plain punctuation.
func SyntaxNodeToTokenTree(node *syntax.Node) (*tt.Subtree, *TokenMap) {
	base := node.TextRange().Start
	var tokens []srcToken
	for _, tok := range node.DescendantTokens() {
		rng, _ := tok.TextRange().CheckedSub(base)
		tokens = append(tokens, srcToken{kind: tok.Kind(), text: tok.Text(), rng: rng})
	}
	return convert(tokens)
}

// ParseToTokenTree lexes text and converts it into a token tree.
func ParseToTokenTree(text string) (*tt.Subtree, *TokenMap) {
	var tokens []srcToken
	offset := 0
	for _, raw := range syntax.Lex(text) {
		tokens = append(tokens, srcToken{kind: raw.Kind, text: raw.Text, rng: syntax.NewRange(offset, offset+len(raw.Text))})
		offset += len(raw.Text)
	}
	return convert(tokens)
}

type openFrame struct {
	sub     *tt.Subtree
	closing syntax.SyntaxKind
	open    srcToken
	mapIdx  int
}

func delimiterOf(kind syntax.SyntaxKind) (tt.DelimiterKind, syntax.SyntaxKind, bool) {
	switch kind {
	case syntax.LParen:
		return tt.Parenthesis, syntax.RParen, true
	case syntax.LCurly:
		return tt.Brace, syntax.RCurly, true
	case syntax.LBrack:
		return tt.Bracket, syntax.RBrack, true
	}
	return 0, 0, false
}

func convert(tokens []srcToken) (*tt.Subtree, *TokenMap) {
	m := &TokenMap{}
	var nextID tt.TokenID
	alloc := func() tt.TokenID {
		id := nextID
		nextID++
		return id
	}

	root := &tt.Subtree{}
	stack := []*openFrame{{sub: root}}
	for i, tok := range tokens {
		if tok.kind.IsTrivia() {
			continue
		}
		top := stack[len(stack)-1]
		if dk, closing, ok := delimiterOf(tok.kind); ok {
			id := alloc()
			sub := &tt.Subtree{Delimiter: &tt.Delimiter{ID: id, Kind: dk}}
			idx := m.insertDelim(id, tok.rng)
			stack = append(stack, &openFrame{sub: sub, closing: closing, open: tok, mapIdx: idx})
			continue
		}
		if len(stack) > 1 && tok.kind == top.closing {
			m.closeDelim(top.mapIdx, tok.rng)
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.sub.TokenTrees = append(parent.sub.TokenTrees, top.sub)
			continue
		}

		var next *srcToken
		if i+1 < len(tokens) {
			next = &tokens[i+1]
		}
		top.sub.TokenTrees = append(top.sub.TokenTrees, leavesOf(tok, next, m, alloc)...)
	}

	// Unclosed delimiters are spliced into their parent as punctuation.
	for len(stack) > 1 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent := stack[len(stack)-1]
		m.entries[top.mapIdx].rng = TokenTextRange{rng: top.open.rng}
		open, _ := utf8.DecodeRuneInString(top.open.text)
		parent.sub.TokenTrees = append(parent.sub.TokenTrees, tt.Punct{Char: open, Spacing: tt.Alone, ID: top.sub.Delimiter.ID})
		parent.sub.TokenTrees = append(parent.sub.TokenTrees, top.sub.TokenTrees...)
	}

	if len(root.TokenTrees) == 1 {
		if sub, ok := root.TokenTrees[0].(*tt.Subtree); ok {
			return sub, m
		}
	}
	return root, m
}

func leavesOf(tok srcToken, next *srcToken, m *TokenMap, alloc func() tt.TokenID) []tt.TokenTree {
	switch {
	case tok.kind.IsLiteral():
		id := alloc()
		m.insert(id, tok.rng)
		return []tt.TokenTree{tt.Literal{Text: tok.text, ID: id}}
	case tok.kind == syntax.Ident || tok.kind.IsKeyword():
		id := alloc()
		m.insert(id, tok.rng)
		return []tt.TokenTree{tt.Ident{Text: tok.text, ID: id}}
	}

	// Punctuation and unknown characters split into one punct per character.
	lastSpacing := tt.Alone
	if tok.kind.IsPunct() && next != nil && next.kind.IsPunct() {
		if _, _, open := delimiterOf(next.kind); !open {
			lastSpacing = tt.Joint
		}
	}
	var out []tt.TokenTree
	offset := tok.rng.Start
	for i, r := range tok.text {
		size := utf8.RuneLen(r)
		id := alloc()
		m.insert(id, syntax.NewRange(offset, offset+size))
		spacing := tt.Joint
		if i+size == len(tok.text) {
			spacing = lastSpacing
		}
		out = append(out, tt.Punct{Char: r, Spacing: spacing, ID: id})
		offset += size
	}
	return out
}

type partRole uint8

const (
	roleLeaf partRole = iota
	roleOpen
	roleClose
)

type piecePart struct {
	id   tt.TokenID
	text string
	role partRole
}

// piece is one parser token made of one or more token-tree leaves.
type piece struct {
	kind  syntax.SyntaxKind
	text  string
	joint bool
	parts []piecePart
	// top is the index of the top-level token tree holding the last part.
	top int
}

// flatten turns token trees into parser tokens. Invisible groups are bounded
// by LDollar and RDollar so a captured expression stays one operand. Joint
// punctuation is glued into compound operators.
func flatten(trees []tt.TokenTree) []piece {
	var raw []piece
	for i, tree := range trees {
		flattenTree(&raw, tree, i)
	}
	return glue(raw)
}

func flattenTree(out *[]piece, tree tt.TokenTree, top int) {
	switch tree := tree.(type) {
	case *tt.Subtree:
		if tree.Delimiter == nil {
			if len(tree.TokenTrees) == 0 {
				return
			}
			*out = append(*out, piece{kind: syntax.LDollar, top: top})
			for _, child := range tree.TokenTrees {
				flattenTree(out, child, top)
			}
			*out = append(*out, piece{kind: syntax.RDollar, top: top})
			return
		}
		open, closing := string(tree.Delimiter.Kind.Open()), string(tree.Delimiter.Kind.Close())
		openKind, _ := syntax.PunctFromText(open)
		closeKind, _ := syntax.PunctFromText(closing)
		*out = append(*out, piece{kind: openKind, text: open, top: top,
			parts: []piecePart{{id: tree.Delimiter.ID, text: open, role: roleOpen}}})
		for _, child := range tree.TokenTrees {
			flattenTree(out, child, top)
		}
		*out = append(*out, piece{kind: closeKind, text: closing, top: top,
			parts: []piecePart{{id: tree.Delimiter.ID, text: closing, role: roleClose}}})
	case tt.Ident:
		*out = append(*out, piece{kind: syntax.IdentKind(tree.Text), text: tree.Text, top: top,
			parts: []piecePart{{id: tree.ID, text: tree.Text}}})
	case tt.Literal:
		*out = append(*out, piece{kind: syntax.LiteralKind(tree.Text), text: tree.Text, top: top,
			parts: []piecePart{{id: tree.ID, text: tree.Text}}})
	case tt.Punct:
		text := string(tree.Char)
		kind, ok := syntax.PunctFromText(text)
		if !ok {
			kind = syntax.Unknown
		}
		*out = append(*out, piece{kind: kind, text: text, joint: tree.Spacing == tt.Joint, top: top,
			parts: []piecePart{{id: tree.ID, text: text}}})
	}
}

func isPlainPunct(p piece) bool {
	return len(p.parts) == 1 && p.parts[0].role == roleLeaf && p.kind.IsPunct()
}

func glue(raw []piece) []piece {
	out := make([]piece, 0, len(raw))
	for i := 0; i < len(raw); {
		cur := raw[i]
		if isPlainPunct(cur) && cur.joint {
			if n, kind, ok := longestPunct(raw[i:]); ok {
				merged := piece{kind: kind, joint: raw[i+n-1].joint, top: raw[i+n-1].top}
				for _, p := range raw[i : i+n] {
					merged.text += p.text
					merged.parts = append(merged.parts, p.parts...)
				}
				out = append(out, merged)
				i += n
				continue
			}
		}
		out = append(out, cur)
		i++
	}
	return out
}

// longestPunct finds the longest run of joint puncts at the head of ps that
// spells a compound operator.
func longestPunct(ps []piece) (int, syntax.SyntaxKind, bool) {
	for n := 3; n >= 2; n-- {
		if len(ps) < n {
			continue
		}
		text := ""
		ok := true
		for i := 0; i < n; i++ {
			if !isPlainPunct(ps[i]) || (i < n-1 && !ps[i].joint) {
				ok = false
				break
			}
			text += ps[i].text
		}
		if !ok {
			continue
		}
		if kind, found := syntax.PunctFromText(text); found {
			return n, kind, true
		}
	}
	return 0, 0, false
}

// subtreeSource feeds flattened token trees to the parser.
type subtreeSource struct {
	pieces []piece
	pos    int
}

func (s *subtreeSource) Lookahead(n int) syntax.SourceToken {
	i := s.pos + n
	if i >= len(s.pieces) {
		return syntax.SourceToken{Kind: syntax.EOF}
	}
	p := s.pieces[i]
	return syntax.SourceToken{Kind: p.kind, Text: p.text, IsJointToNext: p.joint}
}

func (s *subtreeSource) Bump() {
	if s.pos < len(s.pieces) {
		s.pos++
	}
}

// ttTreeSink builds text and a tree from parser events, recording the output
// range of every leaf and delimiter. Node starts are deferred so inserted
// spaces stay outside the nodes that follow them.
type ttTreeSink struct {
	pieces  []piece
	cursor  int
	prev    *piece
	b       syntax.Builder
	pending []syntax.SyntaxKind
	pos     int
	m       *TokenMap
	opens   []int
	errors  []syntax.SyntaxError
}

func newTTTreeSink(pieces []piece) *ttTreeSink {
	return &ttTreeSink{pieces: pieces, m: &TokenMap{}}
}

func (s *ttTreeSink) StartNode(kind syntax.SyntaxKind) {
	s.pending = append(s.pending, kind)
}

func (s *ttTreeSink) FinishNode() {
	s.flushPending()
	s.b.FinishNode()
}

func (s *ttTreeSink) Error(msg string) {
	s.errors = append(s.errors, syntax.SyntaxError{Message: msg, Offset: s.pos})
}

func (s *ttTreeSink) flushPending() {
	for _, kind := range s.pending {
		s.b.StartNode(kind)
	}
	s.pending = s.pending[:0]
}

func (s *ttTreeSink) Token(kind syntax.SyntaxKind) {
	if s.cursor >= len(s.pieces) {
		return
	}
	p := s.pieces[s.cursor]
	s.cursor++
	if p.kind == syntax.LDollar || p.kind == syntax.RDollar {
		return
	}
	if s.prev != nil && needsSpace(*s.prev, p) {
		s.b.Token(syntax.Whitespace, " ")
		s.pos++
	}
	s.flushPending()

	offset := s.pos
	for _, part := range p.parts {
		r := syntax.NewRange(offset, offset+len(part.text))
		switch part.role {
		case roleLeaf:
			s.m.insert(part.id, r)
		case roleOpen:
			s.opens = append(s.opens, s.m.insertDelim(part.id, r))
		case roleClose:
			if n := len(s.opens); n > 0 {
				s.m.closeDelim(s.opens[n-1], r)
				s.opens = s.opens[:n-1]
			}
		}
		offset += len(part.text)
	}
	s.b.Token(kind, p.text)
	s.pos += len(p.text)
	s.prev = &p
}

func (s *ttTreeSink) finish() (*syntax.Node, bool) {
	s.flushPending()
	return s.b.Finish()
}

func isWord(k syntax.SyntaxKind) bool {
	return k == syntax.Ident || k == syntax.Underscore || k.IsKeyword() || k.IsLiteral()
}

func isSpacedOp(k syntax.SyntaxKind) bool {
	switch k {
	case syntax.Eq, syntax.Eq2, syntax.Neq, syntax.LtEq, syntax.GtEq,
		syntax.Plus, syntax.Minus, syntax.Star, syntax.Slash, syntax.Percent,
		syntax.Amp2, syntax.Pipe2, syntax.PlusEq, syntax.MinusEq, syntax.StarEq,
		syntax.SlashEq, syntax.PercentEq, syntax.FatArrow, syntax.ThinArrow:
		return true
	}
	return false
}

// isSpacedKeyword reports keywords that read as operators rather than path
// segments or values.
func isSpacedKeyword(k syntax.SyntaxKind) bool {
	switch k {
	case syntax.SelfKw, syntax.SuperKw, syntax.CrateKw, syntax.TrueKw, syntax.FalseKw:
		return false
	}
	return k.IsKeyword()
}

// needsSpace decides whether rendered output separates prev from next.
// Spacing is cosmetic: the tree is built from token kinds, never re-lexed.
func needsSpace(prev, next piece) bool {
	if prev.joint && isPlainPunct(prev) && next.kind.IsPunct() {
		return false
	}
	prevWord, nextWord := isWord(prev.kind), isWord(next.kind)
	switch {
	case prevWord && nextWord:
		return true
	case prev.kind == syntax.Comma || prev.kind == syntax.Semicolon:
		return next.kind != syntax.RParen && next.kind != syntax.RBrack && next.kind != syntax.RAngle
	case prev.kind == syntax.LCurly:
		return next.kind != syntax.RCurly
	case next.kind == syntax.RCurly, next.kind == syntax.LCurly:
		return true
	case prev.kind == syntax.Colon, isSpacedOp(prev.kind), isSpacedOp(next.kind):
		return true
	case isSpacedKeyword(prev.kind) && next.kind.IsPunct():
		switch next.kind {
		case syntax.Semicolon, syntax.Comma, syntax.Dot, syntax.Question, syntax.Colon,
			syntax.Colon2, syntax.LAngle, syntax.RParen, syntax.RBrack, syntax.RAngle:
			return false
		}
		return true
	case nextWord:
		switch prev.kind {
		case syntax.RParen, syntax.RBrack, syntax.RAngle, syntax.RCurly:
			return true
		}
	}
	return false
}

// TokenTreeToSyntaxNode parses subtree as a fragment of the given kind. The
// outer delimiter, if any, is part of the parsed stream. It fails with
// ErrConversion when the tokens do not form exactly one such fragment.
func TokenTreeToSyntaxNode(subtree *tt.Subtree, kind syntax.FragmentKind) (*syntax.Parse, *TokenMap, error) {
	trees := subtree.TokenTrees
	if subtree.Delimiter != nil {
		trees = []tt.TokenTree{subtree}
	}
	pieces := flatten(trees)
	src := &subtreeSource{pieces: pieces}
	sink := newTTTreeSink(pieces)
	syntax.ParseFragment(src, sink, kind)

	if len(sink.errors) > 0 {
		return nil, nil, fmt.Errorf("%w: %s: %s", ErrConversion, kind, sink.errors[0].Message)
	}
	if src.pos < len(pieces) {
		return nil, nil, fmt.Errorf("%w: %s: %d tokens left over", ErrConversion, kind, len(pieces)-src.pos)
	}
	root, ok := sink.finish()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s: no syntax produced", ErrConversion, kind)
	}
	return syntax.NewParse(root, nil), sink.m, nil
}
