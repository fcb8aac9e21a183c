package syntax

// FragmentKind names the grammar entry point used to re-parse a token tree.
type FragmentKind uint8

const (
	// FragmentItems parses a sequence of items into a MacroItems node.
	FragmentItems FragmentKind = iota
	// FragmentExpr parses one expression.
	FragmentExpr
	// FragmentStatements parses a sequence of statements into MacroStmts.
	FragmentStatements
	FragmentStatement
	FragmentPath
	FragmentType
	FragmentPattern
	FragmentItem
	FragmentBlock
	FragmentVisibility
	FragmentMetaItem
)

var fragmentNames = [...]string{
	FragmentItems:      "items",
	FragmentExpr:       "expr",
	FragmentStatements: "statements",
	FragmentStatement:  "statement",
	FragmentPath:       "path",
	FragmentType:       "type",
	FragmentPattern:    "pattern",
	FragmentItem:       "item",
	FragmentBlock:      "block",
	FragmentVisibility: "visibility",
	FragmentMetaItem:   "meta",
}

func (k FragmentKind) String() string {
	if int(k) < len(fragmentNames) {
		return fragmentNames[k]
	}
	return "unknown"
}

func sourceFile(p *parser) {
	m := p.start()
	items(p, false)
	m.complete(p, SourceFile)
}

// fragment runs the grammar entry point for kind. Fragments stop where the
// grammar stops; callers decide whether leftover input is an error. A whole
// fragment owns the entire stream, so an expression may end with `;`.
func fragment(p *parser, kind FragmentKind, whole bool) {
	switch kind {
	case FragmentItems:
		m := p.start()
		items(p, false)
		m.complete(p, MacroItems)
	case FragmentStatements:
		m := p.start()
		statements(p, false)
		m.complete(p, MacroStmts)
	case FragmentExpr:
		cm := expr(p)
		if !cm.ok() {
			p.error("expected an expression")
			return
		}
		// An expression in statement position may carry its `;`.
		if whole && p.at(Semicolon) && p.nth(1) == EOF {
			m := cm.precede(p)
			p.bump()
			m.complete(p, ExprStmt)
		}
	case FragmentStatement:
		statement(p, true)
	case FragmentPath:
		if !atPathStart(p) {
			p.error("expected a path")
			return
		}
		path(p, pathModeType)
	case FragmentType:
		typeRef(p)
	case FragmentPattern:
		pattern(p)
	case FragmentItem:
		if !item(p) {
			p.error("expected an item")
		}
	case FragmentBlock:
		if !p.at(LCurly) {
			p.error("expected a block")
			return
		}
		blockExpr(p)
	case FragmentVisibility:
		visibility(p)
	case FragmentMetaItem:
		m := p.start()
		if atPathStart(p) {
			path(p, pathModeExpr)
		} else {
			p.error("expected a path")
		}
		switch {
		case p.eat(Eq):
			if !expr(p).ok() {
				p.error("expected an expression")
			}
		case p.atAny(LParen, LBrack, LCurly):
			tokenTree(p)
		}
		m.complete(p, MetaItem)
	}
}

// ParseFragment parses src as one complete fragment of the given kind.
func ParseFragment(src TokenSource, sink TreeSink, kind FragmentKind) {
	p := newParser(src)
	fragment(p, kind, true)
	process(sink, p.events)
}

// ParseFragmentPrefix parses the longest prefix of src that forms a fragment
// of the given kind. Macro matchers use it to find where a fragment ends.
func ParseFragmentPrefix(src TokenSource, sink TreeSink, kind FragmentKind) {
	p := newParser(src)
	fragment(p, kind, false)
	process(sink, p.events)
}
