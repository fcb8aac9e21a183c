package syntax

import "fmt"

// SyntaxError is a parse error anchored at a byte offset.
type SyntaxError struct {
	Message string
	Offset  int
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%d: %s", e.Offset, e.Message)
}

// Parse is the result of parsing text: a lossless tree plus the errors found.
type Parse struct {
	root   *Node
	errors []SyntaxError
}

// NewParse wraps a tree built outside of text parsing.
func NewParse(root *Node, errors []SyntaxError) *Parse {
	return &Parse{root: root, errors: errors}
}

// Tree returns the root node.
func (p *Parse) Tree() *Node { return p.root }

// Errors returns the syntax errors in source order.
func (p *Parse) Errors() []SyntaxError { return p.errors }

// OK reports whether the text parsed without errors.
func (p *Parse) OK() bool { return len(p.errors) == 0 }

// ParseSourceFile parses a whole file. The tree text always equals text.
func ParseSourceFile(text string) *Parse {
	raw := Lex(text)
	src := newTextTokenSource(raw)
	sink := newTextTreeSink(raw)
	p := newParser(src)
	sourceFile(p)
	process(sink, p.events)
	return sink.finish(SourceFile)
}

// ParseTextFragment parses text as a single fragment. It reports false when
// the grammar left input unconsumed or recorded errors.
func ParseTextFragment(text string, kind FragmentKind) (*Parse, bool) {
	raw := Lex(text)
	src := newTextTokenSource(raw)
	sink := newTextTreeSink(raw)
	ParseFragment(src, sink, kind)
	consumed := src.pos >= len(src.significant)
	parse := sink.finish(ErrorNode)
	return parse, consumed && parse.OK()
}

// textTokenSource serves the non-trivia tokens of lexed text.
type textTokenSource struct {
	raw         []RawToken
	significant []int
	pos         int
}

func newTextTokenSource(raw []RawToken) *textTokenSource {
	s := &textTokenSource{raw: raw}
	for i, t := range raw {
		if !t.Kind.IsTrivia() {
			s.significant = append(s.significant, i)
		}
	}
	return s
}

func (s *textTokenSource) Lookahead(n int) SourceToken {
	i := s.pos + n
	if i >= len(s.significant) {
		return SourceToken{Kind: EOF}
	}
	idx := s.significant[i]
	joint := i+1 < len(s.significant) && s.significant[i+1] == idx+1
	t := s.raw[idx]
	return SourceToken{Kind: t.Kind, Text: t.Text, IsJointToNext: joint}
}

func (s *textTokenSource) Bump() {
	if s.pos < len(s.significant) {
		s.pos++
	}
}

// textTreeSink builds a tree from raw tokens, attaching trivia to the
// innermost node open when it is reached.
type textTreeSink struct {
	raw    []RawToken
	pos    int
	offset int
	b      Builder
	errors []SyntaxError
}

func newTextTreeSink(raw []RawToken) *textTreeSink {
	return &textTreeSink{raw: raw}
}

func (s *textTreeSink) Token(kind SyntaxKind) {
	s.flushTrivia()
	if s.pos >= len(s.raw) {
		return
	}
	t := s.raw[s.pos]
	s.b.Token(kind, t.Text)
	s.offset += len(t.Text)
	s.pos++
}

func (s *textTreeSink) StartNode(kind SyntaxKind) {
	if s.b.Depth() > 0 {
		s.flushTrivia()
	}
	s.b.StartNode(kind)
}

func (s *textTreeSink) FinishNode() {
	if s.b.Depth() == 1 {
		s.flushTrivia()
	}
	s.b.FinishNode()
}

func (s *textTreeSink) Error(msg string) {
	s.errors = append(s.errors, SyntaxError{Message: msg, Offset: s.offset})
}

func (s *textTreeSink) flushTrivia() {
	for s.pos < len(s.raw) && s.raw[s.pos].Kind.IsTrivia() {
		t := s.raw[s.pos]
		s.b.Token(t.Kind, t.Text)
		s.offset += len(t.Text)
		s.pos++
	}
}

// finish closes the tree. Input the grammar never reached, and a missing or
// split root, are wrapped under a node of wrapKind.
func (s *textTreeSink) finish(wrapKind SyntaxKind) *Parse {
	root, ok := s.b.Finish()
	if ok && s.pos >= len(s.raw) {
		return &Parse{root: root, errors: s.errors}
	}

	var b Builder
	b.StartNode(wrapKind)
	for _, e := range s.b.roots {
		copyElement(&b, e)
	}
	for _, t := range s.raw[s.pos:] {
		b.Token(t.Kind, t.Text)
	}
	b.FinishNode()
	root, _ = b.Finish()
	return &Parse{root: root, errors: s.errors}
}

func copyElement(b *Builder, e Element) {
	switch e := e.(type) {
	case *Token:
		b.Token(e.kind, e.text)
	case *Node:
		b.StartNode(e.kind)
		for _, c := range e.children {
			copyElement(b, c)
		}
		b.FinishNode()
	}
}
