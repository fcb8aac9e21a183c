package syntax

import "fmt"

// SourceToken is one token as seen by the parser. Trivia never reaches the
// parser.
type SourceToken struct {
	Kind          SyntaxKind
	Text          string
	IsJointToNext bool
}

// TokenSource feeds tokens to the parser. The same grammar runs over lexed
// text and over token trees through this interface.
type TokenSource interface {
	// Lookahead returns the n-th token after the current one; 0 is current.
	Lookahead(n int) SourceToken
	// Bump advances past the current token.
	Bump()
}

// TreeSink receives the parse events in tree order.
type TreeSink interface {
	Token(kind SyntaxKind)
	StartNode(kind SyntaxKind)
	FinishNode()
	Error(msg string)
}

type eventKind uint8

const (
	evStart eventKind = iota
	evFinish
	evToken
	evError
)

type event struct {
	kind          eventKind
	syn           SyntaxKind
	forwardParent int
	msg           string
}

// stepLimit guards against grammar loops that fail to make progress.
const stepLimit = 1_000_000

type parser struct {
	src    TokenSource
	events []event
	steps  int
	stuck  bool
	// tokens counts consumed tokens, for progress checks.
	tokens int
}

func newParser(src TokenSource) *parser {
	return &parser{src: src}
}

func (p *parser) nth(n int) SyntaxKind {
	p.steps++
	if p.steps > stepLimit {
		// Stuck: pretend the input ended so every loop terminates.
		if !p.stuck {
			p.stuck = true
			p.error(fmt.Sprintf("parser made no progress after %d steps", stepLimit))
		}
		return EOF
	}
	return p.src.Lookahead(n).Kind
}

func (p *parser) current() SyntaxKind { return p.nth(0) }

func (p *parser) at(k SyntaxKind) bool { return p.nth(0) == k }

func (p *parser) atAny(ks ...SyntaxKind) bool {
	cur := p.nth(0)
	for _, k := range ks {
		if cur == k {
			return true
		}
	}
	return false
}

// atContextual reports whether the current token is an identifier spelled text.
func (p *parser) atContextual(text string) bool {
	tok := p.src.Lookahead(0)
	return tok.Kind == Ident && tok.Text == text
}

func (p *parser) bump() {
	kind := p.current()
	if kind == EOF {
		return
	}
	p.steps = 0
	p.tokens++
	p.events = append(p.events, event{kind: evToken, syn: kind})
	p.src.Bump()
}

// bumpRemap consumes the current token, recording it under another kind.
func (p *parser) bumpRemap(kind SyntaxKind) {
	if p.current() == EOF {
		return
	}
	p.steps = 0
	p.tokens++
	p.events = append(p.events, event{kind: evToken, syn: kind})
	p.src.Bump()
}

func (p *parser) eat(k SyntaxKind) bool {
	if !p.at(k) {
		return false
	}
	p.bump()
	return true
}

func (p *parser) expect(k SyntaxKind) bool {
	if p.eat(k) {
		return true
	}
	p.error(fmt.Sprintf("expected %s", k))
	return false
}

func (p *parser) error(msg string) {
	p.events = append(p.events, event{kind: evError, msg: msg})
}

// errRecover reports msg and skips one token inside an error node, unless the
// current token belongs to the recovery set or is a brace.
func (p *parser) errRecover(msg string, recovery ...SyntaxKind) {
	if p.atAny(LCurly, RCurly, EOF) || p.atAny(recovery...) {
		p.error(msg)
		return
	}
	m := p.start()
	p.error(msg)
	p.bump()
	m.complete(p, ErrorNode)
}

// ensureProgress wraps the current token in an error node when nothing was
// consumed since before.
func (p *parser) ensureProgress(before int, msg string) {
	if p.tokens != before || p.at(EOF) {
		return
	}
	m := p.start()
	p.error(msg)
	p.bump()
	m.complete(p, ErrorNode)
}

type marker struct {
	pos       int
	completed bool
}

type completedMarker struct {
	pos  int
	kind SyntaxKind
}

// ok reports whether the marker refers to a parsed node.
func (cm completedMarker) ok() bool { return cm.kind != Tombstone }

func (p *parser) start() *marker {
	pos := len(p.events)
	p.events = append(p.events, event{kind: evStart, syn: Tombstone})
	return &marker{pos: pos}
}

func (m *marker) complete(p *parser, kind SyntaxKind) completedMarker {
	m.completed = true
	p.events[m.pos].syn = kind
	p.events = append(p.events, event{kind: evFinish})
	return completedMarker{pos: m.pos, kind: kind}
}

func (m *marker) abandon(p *parser) {
	m.completed = true
	if m.pos == len(p.events)-1 {
		p.events = p.events[:m.pos]
	}
}

// precede opens a new node that will enclose the completed one.
func (cm completedMarker) precede(p *parser) *marker {
	m := p.start()
	p.events[cm.pos].forwardParent = m.pos - cm.pos
	return m
}

// process replays the events into sink, resolving forward parents.
func process(sink TreeSink, events []event) {
	var parents []SyntaxKind
	for i := range events {
		switch ev := events[i]; ev.kind {
		case evStart:
			if ev.syn == Tombstone && ev.forwardParent == 0 {
				continue
			}
			parents = parents[:0]
			idx, fp := i, ev.forwardParent
			parents = append(parents, ev.syn)
			events[i].syn = Tombstone
			events[i].forwardParent = 0
			for fp != 0 {
				idx += fp
				fp = events[idx].forwardParent
				parents = append(parents, events[idx].syn)
				events[idx].syn = Tombstone
				events[idx].forwardParent = 0
			}
			for j := len(parents) - 1; j >= 0; j-- {
				if parents[j] != Tombstone {
					sink.StartNode(parents[j])
				}
			}
		case evFinish:
			sink.FinishNode()
		case evToken:
			sink.Token(ev.syn)
		case evError:
			sink.Error(ev.msg)
		}
	}
}
