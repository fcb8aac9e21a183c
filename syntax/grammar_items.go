package syntax

// itemRecovery is where item-level error recovery stops skipping tokens.
var itemRecovery = []SyntaxKind{FnKw, StructKw, EnumKw, ModKw, UseKw, ConstKw, StaticKw, ImplKw, PubKw, Pound}

// items parses items until EOF, or until a closing brace when nested.
func items(p *parser, nested bool) {
	for !p.at(EOF) {
		if p.at(RCurly) {
			if nested {
				return
			}
			m := p.start()
			p.error("unmatched `}`")
			p.bump()
			m.complete(p, ErrorNode)
			continue
		}
		if p.eat(Semicolon) {
			continue
		}
		before := p.tokens
		if !item(p) {
			p.errRecover("expected an item", itemRecovery...)
		}
		p.ensureProgress(before, "expected an item")
	}
}

// atMacroCall reports whether a path followed by `!` starts here.
func atMacroCall(p *parser) bool {
	n := 0
	if p.nth(0) == Colon2 {
		n++
	}
	for {
		switch p.nth(n) {
		case Ident, SelfKw, SuperKw, CrateKw:
		default:
			return false
		}
		n++
		if p.nth(n) != Colon2 {
			break
		}
		n++
	}
	return p.nth(n) == Bang
}

func atItemStart(p *parser) bool {
	switch p.current() {
	case FnKw, StructKw, EnumKw, ModKw, UseKw, StaticKw, ImplKw, Pound, PubKw:
		return true
	case ConstKw:
		return p.nth(1) != LCurly
	}
	return p.atContextual("macro_rules") && p.nth(1) == Bang
}

// item parses one item. It reports false, consuming nothing, when no item
// starts at the current token.
func item(p *parser) bool {
	m := p.start()
	hasAttrs := attributes(p)
	hasVis := visibility(p)

	switch p.current() {
	case FnKw:
		fnDef(p)
		m.complete(p, FnDef)
	case StructKw:
		structDef(p)
		m.complete(p, StructDef)
	case EnumKw:
		enumDef(p)
		m.complete(p, EnumDef)
	case ModKw:
		moduleDef(p)
		m.complete(p, Module)
	case UseKw:
		useItem(p)
		m.complete(p, UseItem)
	case ConstKw:
		constOrStatic(p)
		m.complete(p, ConstDef)
	case StaticKw:
		constOrStatic(p)
		m.complete(p, StaticDef)
	case ImplKw:
		implBlock(p)
		m.complete(p, ImplBlock)
	default:
		if atMacroCall(p) {
			macroCallBody(p, true)
			m.complete(p, MacroCall)
			return true
		}
		if hasAttrs || hasVis {
			p.error("expected an item after attributes or visibility")
			m.complete(p, ErrorNode)
			return true
		}
		m.abandon(p)
		return false
	}
	return true
}

// macroCallBody parses `path ! name? token_tree` into an already started
// node. It reports whether the token tree is brace-delimited.
func macroCallBody(p *parser, itemPosition bool) bool {
	path(p, pathModeExpr)
	p.expect(Bang)
	if p.at(Ident) {
		nm := p.start()
		p.bump()
		nm.complete(p, Name)
	}
	if !p.atAny(LParen, LBrack, LCurly) {
		p.error("expected a token tree")
		return false
	}
	curly := p.at(LCurly)
	tokenTree(p)
	if itemPosition && !curly {
		p.eat(Semicolon)
	}
	return curly
}

// tokenTree parses a delimited token tree.
func tokenTree(p *parser) {
	m := p.start()
	closing := closingDelim(p.current())
	p.bump()
	for !p.at(closing) {
		switch p.current() {
		case EOF:
			p.error("unclosed delimiter")
			m.complete(p, TokenTree)
			return
		case LParen, LBrack, LCurly:
			tokenTree(p)
		case RParen, RBrack, RCurly:
			p.error("mismatched closing delimiter")
			p.bump()
		default:
			p.bump()
		}
	}
	p.bump()
	m.complete(p, TokenTree)
}

func closingDelim(open SyntaxKind) SyntaxKind {
	switch open {
	case LParen:
		return RParen
	case LBrack:
		return RBrack
	default:
		return RCurly
	}
}

// attributes parses `#[...]` and `#![...]` attributes.
func attributes(p *parser) bool {
	found := false
	for p.at(Pound) {
		found = true
		m := p.start()
		p.bump()
		p.eat(Bang)
		if p.expect(LBrack) {
			path(p, pathModeExpr)
			if p.eat(Eq) {
				if !expr(p).ok() {
					p.error("expected an expression")
				}
			} else if p.atAny(LParen, LBrack, LCurly) {
				tokenTree(p)
			}
			p.expect(RBrack)
		}
		m.complete(p, Attr)
	}
	return found
}

// visibility parses `pub` with an optional restriction.
func visibility(p *parser) bool {
	if !p.at(PubKw) {
		return false
	}
	m := p.start()
	p.bump()
	if p.at(LParen) {
		switch p.nth(1) {
		case CrateKw, SelfKw, SuperKw:
			if p.nth(2) == RParen {
				p.bump()
				p.bump()
				p.bump()
			}
		case InKw:
			p.bump()
			p.bump()
			path(p, pathModeType)
			p.expect(RParen)
		}
	}
	m.complete(p, Visibility)
	return true
}

func name(p *parser) {
	if !p.at(Ident) {
		p.errRecover("expected a name")
		return
	}
	m := p.start()
	p.bump()
	m.complete(p, Name)
}

func fnDef(p *parser) {
	p.bump()
	name(p)
	typeParamList(p)
	if p.at(LParen) {
		paramList(p, LParen, RParen)
	} else {
		p.error("expected function parameters")
	}
	retType(p)
	switch {
	case p.at(LCurly):
		blockExpr(p)
	case p.eat(Semicolon):
	default:
		p.error("expected a function body")
	}
}

func retType(p *parser) {
	if !p.at(ThinArrow) {
		return
	}
	m := p.start()
	p.bump()
	typeRef(p)
	m.complete(p, RetType)
}

// paramList parses fn parameters between `(` `)` or closure parameters
// between `|` `|`.
func paramList(p *parser, open, close SyntaxKind) {
	m := p.start()
	p.bump()
	for !p.atAny(close, EOF) {
		param(p, open == Pipe)
		if !p.at(close) && !p.expect(Comma) {
			break
		}
	}
	p.expect(close)
	m.complete(p, ParamList)
}

func param(p *parser, closure bool) {
	m := p.start()
	switch {
	case p.at(SelfKw):
		p.bump()
	case p.at(Amp) && (p.nth(1) == SelfKw || (p.nth(1) == MutKw && p.nth(2) == SelfKw)):
		p.bump()
		p.eat(MutKw)
		p.bump()
	case p.at(MutKw) && p.nth(1) == SelfKw:
		p.bump()
		p.bump()
	default:
		pattern(p)
		if p.eat(Colon) {
			typeRef(p)
		} else if !closure {
			p.error("expected a parameter type")
		}
	}
	m.complete(p, Param)
}

func typeParamList(p *parser) {
	if !p.at(LAngle) {
		return
	}
	m := p.start()
	p.bump()
	for !p.atAny(RAngle, EOF) {
		tp := p.start()
		name(p)
		if p.eat(Colon) {
			typeBounds(p)
		}
		tp.complete(p, TypeParam)
		if !p.at(RAngle) && !p.expect(Comma) {
			break
		}
	}
	p.expect(RAngle)
	m.complete(p, TypeParamList)
}

func typeBounds(p *parser) {
	m := p.start()
	for {
		path(p, pathModeType)
		if !p.eat(Plus) {
			break
		}
	}
	m.complete(p, TypeBoundList)
}

func structDef(p *parser) {
	p.bump()
	name(p)
	typeParamList(p)
	switch {
	case p.eat(Semicolon):
	case p.at(LCurly):
		recordFieldDefList(p)
	case p.at(LParen):
		tupleFieldDefList(p)
		p.expect(Semicolon)
	default:
		p.error("expected `;`, `{` or `(`")
	}
}

func recordFieldDefList(p *parser) {
	m := p.start()
	p.bump()
	for !p.atAny(RCurly, EOF) {
		before := p.tokens
		f := p.start()
		attributes(p)
		visibility(p)
		if !p.at(Ident) {
			f.abandon(p)
			p.errRecover("expected a field", RCurly, Comma)
			p.eat(Comma)
			p.ensureProgress(before, "expected a field")
			continue
		}
		name(p)
		p.expect(Colon)
		typeRef(p)
		f.complete(p, RecordFieldDef)
		if !p.at(RCurly) && !p.expect(Comma) {
			break
		}
	}
	p.expect(RCurly)
	m.complete(p, RecordFieldDefList)
}

func tupleFieldDefList(p *parser) {
	m := p.start()
	p.bump()
	for !p.atAny(RParen, EOF) {
		f := p.start()
		attributes(p)
		visibility(p)
		typeRef(p)
		f.complete(p, TupleFieldDef)
		if !p.at(RParen) && !p.expect(Comma) {
			break
		}
	}
	p.expect(RParen)
	m.complete(p, TupleFieldDefList)
}

func enumDef(p *parser) {
	p.bump()
	name(p)
	typeParamList(p)
	if !p.at(LCurly) {
		p.error("expected `{`")
		return
	}
	list := p.start()
	p.bump()
	for !p.atAny(RCurly, EOF) {
		before := p.tokens
		v := p.start()
		attributes(p)
		if !p.at(Ident) {
			v.abandon(p)
			p.errRecover("expected an enum variant", RCurly, Comma)
			p.eat(Comma)
			p.ensureProgress(before, "expected an enum variant")
			continue
		}
		name(p)
		switch {
		case p.at(LCurly):
			recordFieldDefList(p)
		case p.at(LParen):
			tupleFieldDefList(p)
		}
		if p.eat(Eq) {
			expr(p)
		}
		v.complete(p, EnumVariant)
		if !p.at(RCurly) && !p.expect(Comma) {
			break
		}
	}
	p.expect(RCurly)
	list.complete(p, EnumVariantList)
}

func moduleDef(p *parser) {
	p.bump()
	name(p)
	switch {
	case p.eat(Semicolon):
	case p.at(LCurly):
		itemList(p)
	default:
		p.error("expected `;` or `{`")
	}
}

func itemList(p *parser) {
	m := p.start()
	p.bump()
	items(p, true)
	p.expect(RCurly)
	m.complete(p, ItemList)
}

func useItem(p *parser) {
	p.bump()
	useTree(p)
	p.expect(Semicolon)
}

func useTree(p *parser) {
	m := p.start()
	switch {
	case p.at(Star):
		p.bump()
	case p.at(LCurly):
		useTreeList(p)
	case p.atAny(Ident, SelfKw, SuperKw, CrateKw, Colon2):
		usePath(p)
		switch {
		case p.at(Colon2) && p.nth(1) == Star:
			p.bump()
			p.bump()
		case p.at(Colon2) && p.nth(1) == LCurly:
			p.bump()
			useTreeList(p)
		case p.at(AsKw):
			p.bump()
			if p.at(Underscore) {
				p.bump()
			} else {
				name(p)
			}
		}
	default:
		m.abandon(p)
		p.errRecover("expected a use tree", Semicolon)
		return
	}
	m.complete(p, UseTree)
}

// usePath parses a path that stops before `::*` and `::{`.
func usePath(p *parser) {
	m := p.start()
	p.eat(Colon2)
	for {
		pathSegment(p, pathModeType)
		if !p.at(Colon2) || p.nth(1) == Star || p.nth(1) == LCurly {
			break
		}
		p.bump()
	}
	m.complete(p, Path)
}

func useTreeList(p *parser) {
	m := p.start()
	p.bump()
	for !p.atAny(RCurly, EOF) {
		useTree(p)
		if !p.at(RCurly) && !p.expect(Comma) {
			break
		}
	}
	p.expect(RCurly)
	m.complete(p, UseTreeList)
}

func constOrStatic(p *parser) {
	p.bump()
	p.eat(MutKw)
	if p.at(Underscore) {
		p.bump()
	} else {
		name(p)
	}
	if p.eat(Colon) {
		typeRef(p)
	} else {
		p.error("expected a type annotation")
	}
	if p.eat(Eq) {
		if !expr(p).ok() {
			p.error("expected an expression")
		}
	}
	p.expect(Semicolon)
}

func implBlock(p *parser) {
	p.bump()
	typeParamList(p)
	typeRef(p)
	if p.eat(ForKw) {
		typeRef(p)
	}
	if p.at(LCurly) {
		itemList(p)
	} else {
		p.error("expected `{`")
	}
}
