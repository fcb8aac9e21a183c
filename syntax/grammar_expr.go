package syntax

func expr(p *parser) completedMarker { return exprBP(p, 1, false) }

// exprNoStruct parses an expression in a position where `{` opens a block,
// such as an `if` condition.
func exprNoStruct(p *parser) completedMarker { return exprBP(p, 1, true) }

func atExprStart(p *parser) bool {
	switch p.current() {
	case IntNumber, FloatNumber, String, Char, TrueKw, FalseKw,
		Ident, SelfKw, SuperKw, CrateKw, Colon2,
		LParen, LBrack, LCurly, Minus, Bang, Star, Amp, Amp2, Pipe, Pipe2, MoveKw,
		IfKw, MatchKw, WhileKw, LoopKw, ForKw, ReturnKw, BreakKw, ContinueKw, Dot2, Dot2Eq, LDollar:
		return true
	}
	return false
}

// infixBP returns the binding power of a binary operator, or 0.
func infixBP(k SyntaxKind) int {
	switch k {
	case Eq, PlusEq, MinusEq, StarEq, SlashEq, PercentEq:
		return 1
	case Dot2, Dot2Eq:
		return 2
	case Pipe2:
		return 3
	case Amp2:
		return 4
	case Eq2, Neq, LAngle, RAngle, LtEq, GtEq:
		return 5
	case Pipe:
		return 6
	case Caret:
		return 7
	case Amp:
		return 8
	case Plus, Minus:
		return 10
	case Star, Slash, Percent:
		return 11
	}
	return 0
}

func isAssign(k SyntaxKind) bool {
	return infixBP(k) == 1
}

func exprBP(p *parser, minBP int, noStructs bool) completedMarker {
	lhs := unaryExpr(p, noStructs)
	if !lhs.ok() {
		return lhs
	}
	return binaryRHS(p, lhs, minBP, noStructs)
}

func binaryRHS(p *parser, lhs completedMarker, minBP int, noStructs bool) completedMarker {
	for {
		if p.at(AsKw) {
			m := lhs.precede(p)
			p.bump()
			typeRef(p)
			lhs = m.complete(p, CastExpr)
			continue
		}
		op := p.current()
		bp := infixBP(op)
		if bp == 0 || bp < minBP {
			return lhs
		}
		m := lhs.precede(p)
		p.bump()
		if op == Dot2 || op == Dot2Eq {
			if atExprStart(p) && !(noStructs && p.at(LCurly)) {
				exprBP(p, bp+1, noStructs)
			}
			lhs = m.complete(p, RangeExpr)
			continue
		}
		next := bp + 1
		if isAssign(op) {
			next = bp
		}
		if !exprBP(p, next, noStructs).ok() {
			p.error("expected an expression")
		}
		lhs = m.complete(p, BinExpr)
	}
}

func unaryExpr(p *parser, noStructs bool) completedMarker {
	switch p.current() {
	case Minus, Bang, Star:
		m := p.start()
		p.bump()
		if !unaryExpr(p, noStructs).ok() {
			p.error("expected an expression")
		}
		return m.complete(p, PrefixExpr)
	case Amp, Amp2:
		m := p.start()
		p.bump()
		p.eat(MutKw)
		if !unaryExpr(p, noStructs).ok() {
			p.error("expected an expression")
		}
		return m.complete(p, RefExpr)
	case Dot2, Dot2Eq:
		m := p.start()
		p.bump()
		if atExprStart(p) && !(noStructs && p.at(LCurly)) {
			exprBP(p, 3, noStructs)
		}
		return m.complete(p, RangeExpr)
	}
	lhs := atom(p, noStructs)
	if !lhs.ok() {
		return lhs
	}
	return postfix(p, lhs)
}

func postfix(p *parser, lhs completedMarker) completedMarker {
	for {
		switch p.current() {
		case LParen:
			m := lhs.precede(p)
			argList(p)
			lhs = m.complete(p, CallExpr)
		case LBrack:
			m := lhs.precede(p)
			p.bump()
			if !expr(p).ok() {
				p.error("expected an index")
			}
			p.expect(RBrack)
			lhs = m.complete(p, IndexExpr)
		case Question:
			m := lhs.precede(p)
			p.bump()
			lhs = m.complete(p, TryExpr)
		case Dot:
			switch p.nth(1) {
			case AwaitKw:
				m := lhs.precede(p)
				p.bump()
				p.bump()
				lhs = m.complete(p, AwaitExpr)
			case Ident:
				m := lhs.precede(p)
				p.bump()
				nr := p.start()
				p.bump()
				nr.complete(p, NameRef)
				if p.at(Colon2) && p.nth(1) == LAngle {
					typeArgList(p, true)
				}
				if p.at(LParen) {
					argList(p)
					lhs = m.complete(p, MethodCallExpr)
				} else {
					lhs = m.complete(p, FieldExpr)
				}
			case IntNumber:
				m := lhs.precede(p)
				p.bump()
				p.bump()
				lhs = m.complete(p, FieldExpr)
			default:
				return lhs
			}
		default:
			return lhs
		}
	}
}

func argList(p *parser) {
	m := p.start()
	p.bump()
	for !p.atAny(RParen, EOF) {
		before := p.tokens
		if !expr(p).ok() {
			p.errRecover("expected an argument", Comma, RParen)
		}
		p.ensureProgress(before, "expected an argument")
		if !p.at(RParen) && !p.expect(Comma) {
			break
		}
	}
	p.expect(RParen)
	m.complete(p, ArgList)
}

func atom(p *parser, noStructs bool) completedMarker {
	switch p.current() {
	case IntNumber, FloatNumber, String, Char, TrueKw, FalseKw:
		m := p.start()
		p.bump()
		return m.complete(p, Literal)
	case LDollar:
		// The group parses as one operand; no node wraps it.
		p.bump()
		inner := expr(p)
		if !inner.ok() {
			p.error("expected an expression")
		}
		p.expect(RDollar)
		return inner
	case LParen:
		return parenOrTupleExpr(p)
	case LBrack:
		return arrayExpr(p)
	case LCurly:
		return blockExpr(p)
	case IfKw:
		return ifExpr(p)
	case MatchKw:
		return matchExpr(p)
	case WhileKw:
		m := p.start()
		p.bump()
		condition(p)
		requireBlock(p)
		return m.complete(p, WhileExpr)
	case LoopKw:
		m := p.start()
		p.bump()
		requireBlock(p)
		return m.complete(p, LoopExpr)
	case ForKw:
		m := p.start()
		p.bump()
		pattern(p)
		p.expect(InKw)
		if !exprNoStruct(p).ok() {
			p.error("expected an expression")
		}
		requireBlock(p)
		return m.complete(p, ForExpr)
	case ReturnKw:
		m := p.start()
		p.bump()
		if atExprStart(p) && !(noStructs && p.at(LCurly)) {
			exprBP(p, 1, noStructs)
		}
		return m.complete(p, ReturnExpr)
	case BreakKw:
		m := p.start()
		p.bump()
		if atExprStart(p) && !(noStructs && p.at(LCurly)) {
			exprBP(p, 1, noStructs)
		}
		return m.complete(p, BreakExpr)
	case ContinueKw:
		m := p.start()
		p.bump()
		return m.complete(p, ContinueExpr)
	case Pipe, Pipe2, MoveKw:
		return lambdaExpr(p)
	}
	if atPathStart(p) {
		return pathOrMacroExpr(p, noStructs)
	}
	return completedMarker{}
}

func parenOrTupleExpr(p *parser) completedMarker {
	m := p.start()
	p.bump()
	if p.eat(RParen) {
		return m.complete(p, TupleExpr)
	}
	if !expr(p).ok() {
		p.errRecover("expected an expression", RParen, Comma)
	}
	if p.eat(RParen) {
		return m.complete(p, ParenExpr)
	}
	for p.eat(Comma) {
		if p.at(RParen) {
			break
		}
		if !expr(p).ok() {
			p.errRecover("expected an expression", RParen, Comma)
			break
		}
	}
	p.expect(RParen)
	return m.complete(p, TupleExpr)
}

func arrayExpr(p *parser) completedMarker {
	m := p.start()
	p.bump()
	if !p.at(RBrack) {
		if !expr(p).ok() {
			p.errRecover("expected an expression", RBrack, Comma, Semicolon)
		}
		if p.eat(Semicolon) {
			if !expr(p).ok() {
				p.error("expected an array length")
			}
		} else {
			for p.eat(Comma) {
				if p.at(RBrack) {
					break
				}
				if !expr(p).ok() {
					p.errRecover("expected an expression", RBrack, Comma)
					break
				}
			}
		}
	}
	p.expect(RBrack)
	return m.complete(p, ArrayExpr)
}

func blockExpr(p *parser) completedMarker {
	m := p.start()
	b := p.start()
	p.expect(LCurly)
	statements(p, true)
	p.expect(RCurly)
	b.complete(p, Block)
	return m.complete(p, BlockExpr)
}

func requireBlock(p *parser) {
	if p.at(LCurly) {
		blockExpr(p)
		return
	}
	p.error("expected a block")
}

func ifExpr(p *parser) completedMarker {
	m := p.start()
	p.bump()
	condition(p)
	requireBlock(p)
	if p.eat(ElseKw) {
		switch {
		case p.at(IfKw):
			ifExpr(p)
		case p.at(LCurly):
			blockExpr(p)
		default:
			p.error("expected `if` or a block")
		}
	}
	return m.complete(p, IfExpr)
}

func condition(p *parser) {
	m := p.start()
	if p.eat(LetKw) {
		pattern(p)
		for p.eat(Pipe) {
			pattern(p)
		}
		p.expect(Eq)
	}
	if !exprNoStruct(p).ok() {
		p.error("expected a condition")
	}
	m.complete(p, Condition)
}

func matchExpr(p *parser) completedMarker {
	m := p.start()
	p.bump()
	if !exprNoStruct(p).ok() {
		p.error("expected an expression")
	}
	if !p.at(LCurly) {
		p.error("expected `{`")
		return m.complete(p, MatchExpr)
	}
	list := p.start()
	p.bump()
	for !p.atAny(RCurly, EOF) {
		before := p.tokens
		matchArm(p)
		p.ensureProgress(before, "expected a match arm")
	}
	p.expect(RCurly)
	list.complete(p, MatchArmList)
	return m.complete(p, MatchExpr)
}

func matchArm(p *parser) {
	m := p.start()
	attributes(p)
	p.eat(Pipe)
	pattern(p)
	for p.eat(Pipe) {
		pattern(p)
	}
	if p.at(IfKw) {
		g := p.start()
		p.bump()
		if !expr(p).ok() {
			p.error("expected a guard expression")
		}
		g.complete(p, MatchGuard)
	}
	p.expect(FatArrow)
	body := expr(p)
	if !body.ok() {
		p.error("expected an expression")
	}
	if !p.eat(Comma) && !p.at(RCurly) && !isBlockLike(body.kind) {
		p.error("expected `,`")
	}
	m.complete(p, MatchArm)
}

func isBlockLike(k SyntaxKind) bool {
	switch k {
	case BlockExpr, IfExpr, MatchExpr, WhileExpr, LoopExpr, ForExpr:
		return true
	}
	return false
}

func lambdaExpr(p *parser) completedMarker {
	m := p.start()
	p.eat(MoveKw)
	switch {
	case p.at(Pipe2):
		pl := p.start()
		p.bump()
		pl.complete(p, ParamList)
	case p.at(Pipe):
		paramList(p, Pipe, Pipe)
	default:
		p.error("expected closure parameters")
	}
	if p.at(ThinArrow) {
		retType(p)
		requireBlock(p)
	} else if !expr(p).ok() {
		p.error("expected a closure body")
	}
	return m.complete(p, LambdaExpr)
}

func pathOrMacroExpr(p *parser, noStructs bool) completedMarker {
	m := p.start()
	if atMacroCall(p) {
		macroCallBody(p, false)
		return m.complete(p, MacroCall)
	}
	path(p, pathModeExpr)
	if p.at(LCurly) && !noStructs {
		recordFieldList(p)
		return m.complete(p, RecordLit)
	}
	return m.complete(p, PathExpr)
}

func recordFieldList(p *parser) {
	m := p.start()
	p.bump()
	for !p.atAny(RCurly, EOF) {
		if p.eat(Dot2) {
			if !expr(p).ok() {
				p.error("expected a base expression")
			}
			break
		}
		f := p.start()
		if !p.atAny(Ident, IntNumber) {
			f.abandon(p)
			p.errRecover("expected a field", RCurly, Comma)
			if !p.eat(Comma) {
				break
			}
			continue
		}
		nr := p.start()
		p.bump()
		nr.complete(p, NameRef)
		if p.eat(Colon) {
			if !expr(p).ok() {
				p.error("expected an expression")
			}
		}
		f.complete(p, RecordField)
		if !p.at(RCurly) && !p.expect(Comma) {
			break
		}
	}
	p.expect(RCurly)
	m.complete(p, RecordFieldList)
}

// statements parses statements until a closing brace or EOF.
func statements(p *parser, nested bool) {
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
		before := p.tokens
		statement(p, false)
		p.ensureProgress(before, "expected a statement")
	}
}

// statement parses one statement. A trailing expression without `;` is left
// unwrapped, as is any expression when single is set and the input ends.
func statement(p *parser, single bool) {
	if p.eat(Semicolon) {
		return
	}
	if p.at(LetKw) {
		letStmt(p, single)
		return
	}
	if atItemStart(p) {
		item(p)
		return
	}

	var cm completedMarker
	blockLike := false
	switch {
	case atMacroCall(p):
		m := p.start()
		curly := macroCallBody(p, false)
		cm = m.complete(p, MacroCall)
		if curly {
			blockLike = true
		} else {
			cm = binaryRHS(p, postfix(p, cm), 1, false)
		}
	case p.atAny(IfKw, MatchKw, WhileKw, LoopKw, ForKw, LCurly):
		cm = atom(p, false)
		blockLike = true
		if p.atAny(Dot, Question) {
			cm = binaryRHS(p, postfix(p, cm), 1, false)
			blockLike = false
		}
	default:
		cm = expr(p)
	}
	if !cm.ok() {
		p.errRecover("expected a statement", Semicolon)
		return
	}

	switch {
	case p.at(Semicolon):
		m := cm.precede(p)
		p.bump()
		m.complete(p, ExprStmt)
	case p.atAny(RCurly, EOF):
	case blockLike:
		m := cm.precede(p)
		m.complete(p, ExprStmt)
	default:
		p.error("expected `;`")
		m := cm.precede(p)
		m.complete(p, ExprStmt)
	}
}

func letStmt(p *parser, single bool) {
	m := p.start()
	p.bump()
	pattern(p)
	if p.eat(Colon) {
		typeRef(p)
	}
	if p.eat(Eq) {
		if !expr(p).ok() {
			p.error("expected an expression")
		}
	}
	if !(single && p.at(EOF)) {
		p.expect(Semicolon)
	}
	m.complete(p, LetStmt)
}
