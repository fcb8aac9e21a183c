package syntax

type pathMode uint8

const (
	// pathModeExpr requires `::<` before generic arguments.
	pathModeExpr pathMode = iota
	pathModeType
)

func atPathStart(p *parser) bool {
	switch p.current() {
	case Ident, SelfKw, SuperKw, CrateKw:
		return true
	case Colon2:
		return p.nth(1) == Ident
	}
	return false
}

// path parses a possibly qualified path into a flat Path node.
func path(p *parser, mode pathMode) completedMarker {
	m := p.start()
	p.eat(Colon2)
	for {
		pathSegment(p, mode)
		if !p.at(Colon2) || !pathContinues(p.nth(1)) {
			break
		}
		p.bump()
	}
	return m.complete(p, Path)
}

func pathContinues(next SyntaxKind) bool {
	switch next {
	case Ident, SelfKw, SuperKw, CrateKw:
		return true
	}
	return false
}

func pathSegment(p *parser, mode pathMode) {
	m := p.start()
	switch p.current() {
	case Ident:
		nr := p.start()
		p.bump()
		nr.complete(p, NameRef)
	case SelfKw, SuperKw, CrateKw:
		p.bump()
	default:
		p.errRecover("expected an identifier")
	}
	switch {
	case mode == pathModeType && p.at(LAngle):
		typeArgList(p, false)
	case p.at(Colon2) && p.nth(1) == LAngle:
		typeArgList(p, true)
	}
	m.complete(p, PathSegment)
}

func typeArgList(p *parser, turbofish bool) {
	m := p.start()
	if turbofish {
		p.bump()
	}
	p.bump()
	for !p.atAny(RAngle, EOF) {
		typeRef(p)
		if !p.at(RAngle) && !p.expect(Comma) {
			break
		}
	}
	p.expect(RAngle)
	m.complete(p, TypeArgList)
}

var typeRecovery = []SyntaxKind{Comma, RParen, RBrack, RAngle, Semicolon, Eq}

// typeRef parses a type.
func typeRef(p *parser) {
	switch p.current() {
	case LParen:
		m := p.start()
		p.bump()
		// A parenthesized type is kept as a one-element tuple type.
		for !p.atAny(RParen, EOF) {
			typeRef(p)
			if !p.at(RParen) && !p.expect(Comma) {
				break
			}
		}
		p.expect(RParen)
		m.complete(p, TupleType)
	case Amp:
		m := p.start()
		p.bump()
		p.eat(MutKw)
		typeRef(p)
		m.complete(p, RefType)
	case LBrack:
		m := p.start()
		p.bump()
		typeRef(p)
		if p.eat(Semicolon) {
			if !expr(p).ok() {
				p.error("expected an array length")
			}
			p.expect(RBrack)
			m.complete(p, ArrayType)
			return
		}
		p.expect(RBrack)
		m.complete(p, SliceType)
	case Underscore:
		m := p.start()
		p.bump()
		m.complete(p, PlaceholderType)
	default:
		if atPathStart(p) {
			m := p.start()
			path(p, pathModeType)
			m.complete(p, PathType)
			return
		}
		p.errRecover("expected a type", typeRecovery...)
	}
}

var patternRecovery = []SyntaxKind{Comma, RParen, RBrack, Eq, Colon, FatArrow, Pipe, InKw, IfKw}

// pattern parses a single pattern.
func pattern(p *parser) {
	switch p.current() {
	case Underscore:
		m := p.start()
		p.bump()
		m.complete(p, PlaceholderPat)
	case IntNumber, FloatNumber, String, Char, TrueKw, FalseKw, Minus:
		m := p.start()
		lit := p.start()
		if p.at(Minus) {
			p.bump()
		}
		if !literal(p) {
			p.error("expected a literal")
		}
		lit.complete(p, Literal)
		m.complete(p, LiteralPat)
	case LParen:
		m := p.start()
		patternList(p)
		m.complete(p, TuplePat)
	case Amp:
		m := p.start()
		p.bump()
		p.eat(MutKw)
		pattern(p)
		m.complete(p, RefPat)
	case RefKw, MutKw:
		identPattern(p)
	case Ident:
		switch p.nth(1) {
		case Colon2, LParen, Bang:
			pathPattern(p)
		default:
			identPattern(p)
		}
	default:
		if atPathStart(p) {
			pathPattern(p)
			return
		}
		p.errRecover("expected a pattern", patternRecovery...)
	}
}

func identPattern(p *parser) {
	m := p.start()
	p.eat(RefKw)
	p.eat(MutKw)
	name(p)
	m.complete(p, IdentPat)
}

func pathPattern(p *parser) {
	m := p.start()
	path(p, pathModeExpr)
	if p.at(LParen) {
		patternList(p)
		m.complete(p, TupleStructPat)
		return
	}
	m.complete(p, PathPat)
}

// patternList parses `( pat, ... )` without a wrapping node.
func patternList(p *parser) {
	p.bump()
	for !p.atAny(RParen, EOF) {
		if p.at(Dot2) {
			p.bump()
		} else {
			pattern(p)
		}
		if !p.at(RParen) && !p.expect(Comma) {
			break
		}
	}
	p.expect(RParen)
}

func literal(p *parser) bool {
	if !p.current().IsLiteral() {
		return false
	}
	p.bump()
	return true
}
