package parser

import (
	"github.com/vesper-lang/vesper/internal/ast"
	"github.com/vesper-lang/vesper/internal/lexer"
)

// registerExpressionParsers wires the prefix/infix function tables keyed by
// token type (go-dws's Pratt-parsing idiom, generalized to ECMAScript's
// expression grammar).
func (p *Parser) registerExpressionParsers() {
	ident := p.parseIdentifierExpr
	for _, t := range []lexer.TokenType{
		lexer.IDENT, lexer.LET, lexer.STATIC, lexer.ASYNC, lexer.GET, lexer.SET_KW,
		lexer.OF, lexer.AS, lexer.FROM,
	} {
		p.prefixFns[t] = ident
	}
	p.prefixFns[lexer.NUMBER] = p.parseNumberLiteral
	p.prefixFns[lexer.BIGINT] = p.parseBigIntLiteral
	p.prefixFns[lexer.STRING] = p.parseStringLiteral
	p.prefixFns[lexer.TEMPLATE_NO_SUB] = p.parseTemplateLiteral
	p.prefixFns[lexer.TEMPLATE_HEAD] = p.parseTemplateLiteral
	p.prefixFns[lexer.TRUE] = p.parseBooleanLiteral
	p.prefixFns[lexer.FALSE] = p.parseBooleanLiteral
	p.prefixFns[lexer.NULL] = p.parseNullLiteral
	p.prefixFns[lexer.THIS] = p.parseThisExpression
	p.prefixFns[lexer.SUPER] = p.parseSuperExpression
	p.prefixFns[lexer.REGEX] = p.parseRegexLiteral
	p.prefixFns[lexer.PRIVATE_IDENT] = p.parsePrivateIdentifierExpr
	p.prefixFns[lexer.LBRACKET] = p.parseArrayLiteral
	p.prefixFns[lexer.LBRACE] = p.parseObjectLiteral
	p.prefixFns[lexer.LPAREN] = p.parseParenOrArrow
	p.prefixFns[lexer.NOT] = p.parseUnaryExpression
	p.prefixFns[lexer.TILDE] = p.parseUnaryExpression
	p.prefixFns[lexer.PLUS] = p.parseUnaryExpression
	p.prefixFns[lexer.MINUS] = p.parseUnaryExpression
	p.prefixFns[lexer.TYPEOF] = p.parseUnaryExpression
	p.prefixFns[lexer.VOID] = p.parseUnaryExpression
	p.prefixFns[lexer.DELETE] = p.parseUnaryExpression
	p.prefixFns[lexer.PLUSPLUS] = p.parsePrefixUpdate
	p.prefixFns[lexer.MINUSMINUS] = p.parsePrefixUpdate
	p.prefixFns[lexer.AWAIT] = p.parseAwaitExpression
	p.prefixFns[lexer.YIELD] = p.parseYieldExpression
	p.prefixFns[lexer.NEW] = p.parseNewExpression
	p.prefixFns[lexer.FUNCTION] = p.parseFunctionExpression
	p.prefixFns[lexer.CLASS] = p.parseClassExpression

	binOps := map[lexer.TokenType]string{
		lexer.PLUS: "+", lexer.MINUS: "-", lexer.STAR: "*", lexer.SLASH: "/", lexer.PERCENT: "%",
		lexer.STARSTAR: "**", lexer.LT: "<", lexer.GT: ">", lexer.LE: "<=", lexer.GE: ">=",
		lexer.EQ: "==", lexer.NEQ: "!=", lexer.SEQ: "===", lexer.SNEQ: "!==",
		lexer.SHL: "<<", lexer.SHR: ">>", lexer.USHR: ">>>",
		lexer.AND: "&", lexer.OR: "|", lexer.XOR: "^",
		lexer.INSTANCEOF: "instanceof", lexer.IN: "in",
	}
	for t, op := range binOps {
		op := op
		p.infixFns[t] = func(left ast.Expression) ast.Expression { return p.parseBinaryExpression(left, op) }
	}
	logicalOps := map[lexer.TokenType]string{lexer.LOGAND: "&&", lexer.LOGOR: "||", lexer.QQ: "??"}
	for t, op := range logicalOps {
		op := op
		p.infixFns[t] = func(left ast.Expression) ast.Expression { return p.parseLogicalExpression(left, op) }
	}
	assignOps := map[lexer.TokenType]string{
		lexer.ASSIGN: "=", lexer.PLUS_ASSIGN: "+=", lexer.MINUS_ASSIGN: "-=", lexer.STAR_ASSIGN: "*=",
		lexer.SLASH_ASSIGN: "/=", lexer.PERCENT_ASSIGN: "%=", lexer.STARSTAR_ASSIGN: "**=",
		lexer.SHL_ASSIGN: "<<=", lexer.SHR_ASSIGN: ">>=", lexer.USHR_ASSIGN: ">>>=",
		lexer.AND_ASSIGN: "&=", lexer.OR_ASSIGN: "|=", lexer.XOR_ASSIGN: "^=",
		lexer.LOGAND_ASSIGN: "&&=", lexer.LOGOR_ASSIGN: "||=", lexer.QQ_ASSIGN: "??=",
	}
	for t, op := range assignOps {
		op := op
		p.infixFns[t] = func(left ast.Expression) ast.Expression { return p.parseAssignmentExpression(left, op) }
	}
	p.infixFns[lexer.QUESTION] = p.parseConditionalExpression
	p.infixFns[lexer.LPAREN] = p.parseCallExpression
	p.infixFns[lexer.DOT] = p.parseDotMemberExpression
	p.infixFns[lexer.QDOT] = p.parseOptionalMemberExpression
	p.infixFns[lexer.LBRACKET] = p.parseComputedMemberExpression
	p.infixFns[lexer.COMMA] = p.parseSequenceExpression
	p.infixFns[lexer.PLUSPLUS] = p.parsePostfixUpdate
	p.infixFns[lexer.MINUSMINUS] = p.parsePostfixUpdate
}

// parseExpression parses an expression binding at least as tightly as
// precedence (standard Pratt loop).
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		p.errorf("unexpected token %s in expression position", p.cur.Type)
		p.next()
		return &ast.NullLiteral{}
	}
	left := prefix()

	// Prefix parse functions consume eagerly, leaving p.cur on the token
	// immediately following the expression they built — so the token that
	// would continue this expression as an infix/postfix operator is
	// p.cur here, not p.peek.
	for precedence < p.curPrecedence() {
		// Postfix ++/-- is a restricted production: a LineTerminator
		// between the operand and the operator ends the statement instead
		// (the automatic semicolon insertion restrictions).
		if (p.cur.Type == lexer.PLUSPLUS || p.cur.Type == lexer.MINUSMINUS) && p.cur.PrecededByNewline {
			break
		}
		infix, ok := p.infixFns[p.cur.Type]
		if !ok {
			break
		}
		left = infix(left)
	}
	return left
}

// parseAssignExpr is the entry point used wherever the grammar calls for
// AssignmentExpression (the level just above the comma operator).
func (p *Parser) parseAssignExpr() ast.Expression { return p.parseExpression(ASSIGN - 1) }

// parseExpressionAllowComma parses a full Expression (including the comma
// operator), the entry point for statement-position expressions.
func (p *Parser) parseExpressionAllowComma() ast.Expression { return p.parseExpression(LOWEST) }

func (p *Parser) parseIdentifierExpr() ast.Expression {
	tok := p.cur
	p.next()
	return &ast.Identifier{Base: ast.FromToken(tok), Name: tok.Literal}
}

func (p *Parser) parsePrivateIdentifierExpr() ast.Expression {
	tok := p.cur
	if !p.scope.privateNamesInScope[tok.Literal] {
		p.errorf("private name #%s is not declared in this scope", tok.Literal)
	}
	p.next()
	return &ast.PrivateIdentifier{Base: ast.FromToken(tok), Name: tok.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.cur
	p.next()
	v, _ := tok.Value.(float64)
	return &ast.NumberLiteral{Base: ast.FromToken(tok), Value: v}
}

func (p *Parser) parseBigIntLiteral() ast.Expression {
	tok := p.cur
	p.next()
	return &ast.BigIntLiteral{Base: ast.FromToken(tok), Value: tok.Literal}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.cur
	p.next()
	v, _ := tok.Value.(string)
	return &ast.StringLiteral{Base: ast.FromToken(tok), Value: v}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	tok := p.cur
	p.next()
	return &ast.BooleanLiteral{Base: ast.FromToken(tok), Value: tok.Type == lexer.TRUE}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	tok := p.cur
	p.next()
	return &ast.NullLiteral{Base: ast.FromToken(tok)}
}

func (p *Parser) parseThisExpression() ast.Expression {
	tok := p.cur
	p.next()
	return &ast.ThisExpression{Base: ast.FromToken(tok)}
}

func (p *Parser) parseSuperExpression() ast.Expression {
	tok := p.cur
	p.next()
	return &ast.SuperExpression{Base: ast.FromToken(tok)}
}

func (p *Parser) parseRegexLiteral() ast.Expression {
	tok := p.cur
	p.next()
	pattern, flags := splitRegex(tok.Literal)
	return &ast.RegexLiteral{Base: ast.FromToken(tok), Pattern: pattern, Flags: flags}
}

// splitRegex splits a /pattern/flags literal at its closing, unescaped '/'.
func splitRegex(lit string) (pattern, flags string) {
	depth := 0
	for i := 1; i < len(lit); i++ {
		switch lit[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '/':
			if depth == 0 {
				return lit[1:i], lit[i+1:]
			}
		}
	}
	return lit[1:], ""
}

// parseTemplateLiteral consumes a TEMPLATE_NO_SUB (single segment) or a
// TEMPLATE_HEAD followed by Expression/TEMPLATE_MIDDLE pairs terminated by
// TEMPLATE_TAIL (template literal grammar). The lexer's brace
// tracking requires every consumed LBRACE/RBRACE in the substitution to be
// mirrored via EnterBrace/ExitBrace, which parseBlockBody-adjacent helpers do;
// here the substitution is a bare expression so no braces are involved
// beyond what nested object/array literals already balance themselves.
func (p *Parser) parseTemplateLiteral() ast.Expression {
	tok := p.cur
	lit := &ast.TemplateLiteral{Base: ast.FromToken(tok)}
	if tok.Type == lexer.TEMPLATE_NO_SUB {
		lit.Quasis = append(lit.Quasis, ast.TemplateElement{Cooked: tok.Value.(string), Raw: tok.Raw, Tail: true})
		p.next()
		return lit
	}
	lit.Quasis = append(lit.Quasis, ast.TemplateElement{Cooked: tok.Value.(string), Raw: tok.Raw})
	p.next()
	for {
		lit.Expressions = append(lit.Expressions, p.parseExpressionAllowComma())
		if p.cur.Type != lexer.TEMPLATE_MIDDLE && p.cur.Type != lexer.TEMPLATE_TAIL {
			p.errorf("expected continuation of template literal, got %s", p.cur.Type)
			break
		}
		tail := p.cur.Type == lexer.TEMPLATE_TAIL
		lit.Quasis = append(lit.Quasis, ast.TemplateElement{Cooked: p.cur.Value.(string), Raw: p.cur.Raw, Tail: tail})
		p.next()
		if tail {
			break
		}
	}
	return lit
}

// parseArrayLiteral parses `[elem, , ...rest]`; elisions become nil
// Elements entries (an Elision).
func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.cur
	p.next() // consume '['
	lit := &ast.ArrayLiteral{Base: ast.FromToken(tok)}
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.COMMA) {
			lit.Elements = append(lit.Elements, nil)
			p.next()
			continue
		}
		if p.curIs(lexer.ELLIPSIS) {
			spreadTok := p.cur
			p.next()
			lit.Elements = append(lit.Elements, &ast.SpreadElement{Base: ast.FromToken(spreadTok), Argument: p.parseAssignExpr()})
		} else {
			lit.Elements = append(lit.Elements, p.parseAssignExpr())
		}
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	return lit
}

// parseObjectLiteral parses `{a: 1, [b]: 2, ...c, get x() {}, m() {}}`.
func (p *Parser) parseObjectLiteral() ast.Expression {
	tok := p.cur
	p.l.EnterBrace()
	p.next() // consume '{'
	lit := &ast.ObjectLiteral{Base: ast.FromToken(tok)}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		lit.Properties = append(lit.Properties, p.parseObjectProperty())
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.l.ExitBrace()
	p.expect(lexer.RBRACE)
	return lit
}

func (p *Parser) parseObjectProperty() ast.Property {
	if p.curIs(lexer.ELLIPSIS) {
		p.next()
		return ast.Property{Kind: ast.PropertySpread, Value: p.parseAssignExpr()}
	}

	isGet := p.curIs(lexer.GET) && !p.peekStartsPropertyTerminator()
	isSet := p.curIs(lexer.SET_KW) && !p.peekStartsPropertyTerminator()
	isAsync := p.curIs(lexer.ASYNC) && !p.peekStartsPropertyTerminator()
	isGenerator := false
	if isGet || isSet || isAsync {
		p.next()
	}
	if p.curIs(lexer.STAR) {
		isGenerator = true
		p.next()
	}

	computed := false
	var key ast.Expression
	switch {
	case p.curIs(lexer.LBRACKET):
		p.next()
		key = p.parseAssignExpr()
		p.expect(lexer.RBRACKET)
		computed = true
	case p.curIs(lexer.STRING):
		key = p.parseStringLiteral()
	case p.curIs(lexer.NUMBER):
		key = p.parseNumberLiteral()
	default:
		tok := p.cur
		p.next()
		key = &ast.Identifier{Base: ast.FromToken(tok), Name: tok.Literal}
	}

	if isGet || isSet {
		fn := p.parseFunctionTail(false, false)
		kind := ast.PropertyGet
		if isSet {
			kind = ast.PropertySet
		}
		return ast.Property{Key: key, Value: fn, Kind: kind, Computed: computed}
	}
	if p.curIs(lexer.LPAREN) {
		fn := p.parseFunctionTail(isGenerator, isAsync)
		return ast.Property{Key: key, Value: fn, Kind: ast.PropertyMethod, Computed: computed}
	}
	if p.curIs(lexer.COLON) {
		p.next()
		return ast.Property{Key: key, Value: p.parseAssignExpr(), Kind: ast.PropertyInit, Computed: computed}
	}
	// Shorthand `{x}` or `{x = default}` (the latter only valid inside a
	// destructuring cover grammar; codegen rejects it elsewhere).
	ident, ok := key.(*ast.Identifier)
	if !ok {
		p.errorf("invalid shorthand property")
		return ast.Property{Key: key, Value: key, Kind: ast.PropertyInit}
	}
	var value ast.Expression = ident
	if p.curIs(lexer.ASSIGN) {
		p.next()
		value = &ast.AssignmentPattern{Target: ident, Default: p.parseAssignExpr()}
	}
	return ast.Property{Key: key, Value: value, Kind: ast.PropertyInit, Computed: false, Shorthand: true}
}

// peekStartsPropertyTerminator reports whether the token after a contextual
// `get`/`set`/`async` keyword ends the property name itself (meaning the
// keyword is being used as the property's literal name, not a modifier).
func (p *Parser) peekStartsPropertyTerminator() bool {
	switch p.peek.Type {
	case lexer.COLON, lexer.LPAREN, lexer.COMMA, lexer.RBRACE, lexer.ASSIGN:
		return true
	}
	return false
}

// parseParenOrArrow disambiguates a parenthesized expression from an arrow
// function's parameter list by speculatively parsing the parenthesized form
// and backtracking via the lexer's Save/Restore if `=>` doesn't follow
// (go-dws's cursor-based backtracking idiom applied to the cover grammar).
func (p *Parser) parseParenOrArrow() ast.Expression {
	saved := p.l.Save()
	savedCur, savedPeek := p.cur, p.peek

	if params, ok := p.tryParseArrowParams(); ok && p.curIs(lexer.ARROW) {
		arrowTok := p.cur
		p.next() // consume '=>'
		return p.finishArrowFunction(arrowTok, params, false)
	}

	p.l.Restore(saved)
	p.cur, p.peek = savedCur, savedPeek
	return p.parseParenthesizedExpression()
}

func (p *Parser) parseParenthesizedExpression() ast.Expression {
	p.expect(lexer.LPAREN)
	if p.curIs(lexer.RPAREN) {
		p.errorf("unexpected empty parentheses")
		p.next()
		return &ast.NullLiteral{}
	}
	expr := p.parseExpressionAllowComma()
	p.expect(lexer.RPAREN)
	return expr
}

// tryParseArrowParams attempts to parse `(params)` as an arrow function's
// parameter list; the second return value is false if the contents don't
// form a valid parameter list (caller backtracks).
func (p *Parser) tryParseArrowParams() (params []ast.Param, ok bool) {
	if !p.curIs(lexer.LPAREN) {
		return nil, false
	}
	p.next()
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.ELLIPSIS) {
			p.next()
			params = append(params, ast.Param{Target: p.parseBindingTarget(), Rest: true})
			break
		}
		target := p.parseBindingTarget()
		var def ast.Expression
		if p.curIs(lexer.ASSIGN) {
			p.next()
			def = p.parseAssignExpr()
		}
		params = append(params, ast.Param{Target: target, Default: def})
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	if !p.curIs(lexer.RPAREN) {
		return nil, false
	}
	p.next()
	return params, true
}

func (p *Parser) finishArrowFunction(tok lexer.Token, params []ast.Param, isAsync bool) ast.Expression {
	arrow := &ast.ArrowFunction{Base: ast.FromToken(tok), Params: params, IsAsync: isAsync}
	outer := p.scope
	p.scope = scopeFlags{inFunction: true, inAsync: isAsync, privateNamesInScope: outer.privateNamesInScope, inClassBody: outer.inClassBody}
	if p.curIs(lexer.LBRACE) {
		arrow.Block = p.parseFunctionBody()
	} else {
		arrow.ExprBody = p.parseAssignExpr()
	}
	p.scope = outer
	return arrow
}

// parseBindingTarget parses an Identifier, ArrayPattern, or ObjectPattern
// used as a declaration/parameter binding target (a BindingIdentifier
// or a BindingPattern).
func (p *Parser) parseBindingTarget() ast.Expression {
	switch {
	case p.curIs(lexer.LBRACKET):
		return p.parseArrayPattern()
	case p.curIs(lexer.LBRACE):
		return p.parseObjectPattern()
	default:
		tok := p.cur
		p.next()
		return &ast.Identifier{Base: ast.FromToken(tok), Name: tok.Literal}
	}
}

func (p *Parser) parseArrayPattern() ast.Expression {
	tok := p.cur
	p.next() // consume '['
	pat := &ast.ArrayPattern{Base: ast.FromToken(tok)}
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.COMMA) {
			pat.Elements = append(pat.Elements, nil)
			p.next()
			continue
		}
		if p.curIs(lexer.ELLIPSIS) {
			restTok := p.cur
			p.next()
			pat.Elements = append(pat.Elements, &ast.RestElement{Base: ast.FromToken(restTok), Argument: p.parseBindingTarget()})
		} else {
			target := p.parseBindingTarget()
			if p.curIs(lexer.ASSIGN) {
				p.next()
				target = &ast.AssignmentPattern{Target: target, Default: p.parseAssignExpr()}
			}
			pat.Elements = append(pat.Elements, target)
		}
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	return pat
}

func (p *Parser) parseObjectPattern() ast.Expression {
	tok := p.cur
	p.l.EnterBrace()
	p.next() // consume '{'
	pat := &ast.ObjectPattern{Base: ast.FromToken(tok)}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.ELLIPSIS) {
			restTok := p.cur
			p.next()
			ident := p.parseBindingTarget()
			pat.Rest = &ast.RestElement{Base: ast.FromToken(restTok), Argument: ident}
			break
		}
		computed := false
		var key ast.Expression
		if p.curIs(lexer.LBRACKET) {
			p.next()
			key = p.parseAssignExpr()
			p.expect(lexer.RBRACKET)
			computed = true
		} else if p.curIs(lexer.STRING) {
			key = p.parseStringLiteral()
		} else {
			keyTok := p.cur
			p.next()
			key = &ast.Identifier{Base: ast.FromToken(keyTok), Name: keyTok.Literal}
		}
		var value ast.Expression
		if p.curIs(lexer.COLON) {
			p.next()
			value = p.parseBindingTarget()
		} else {
			value = key
		}
		if p.curIs(lexer.ASSIGN) {
			p.next()
			value = &ast.AssignmentPattern{Target: value, Default: p.parseAssignExpr()}
		}
		pat.Properties = append(pat.Properties, ast.Property{Key: key, Value: value, Computed: computed, Shorthand: value == key})
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.l.ExitBrace()
	p.expect(lexer.RBRACE)
	return pat
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.cur
	p.next()
	arg := p.parseExpression(UNARY)
	return &ast.UnaryExpression{Base: ast.FromToken(tok), Operator: tok.Literal, Argument: arg}
}

func (p *Parser) parsePrefixUpdate() ast.Expression {
	tok := p.cur
	p.next()
	arg := p.parseExpression(UNARY)
	return &ast.UpdateExpression{Base: ast.FromToken(tok), Operator: tok.Type.String(), Argument: arg, Prefix: true}
}

func (p *Parser) parsePostfixUpdate(left ast.Expression) ast.Expression {
	tok := p.cur // the '++'/'--' itself; the Pratt loop already advanced cur to it
	p.next()
	return &ast.UpdateExpression{Base: ast.FromToken(tok), Operator: tok.Type.String(), Argument: left, Prefix: false}
}

// parseAwaitExpression handles `await expr`; outside an async context
// `await` parses as a plain identifier reference (the contextual
// gating), matching the lexer's decision to give it a distinct token type
// purely for the parser's convenience.
func (p *Parser) parseAwaitExpression() ast.Expression {
	tok := p.cur
	if !p.scope.inAsync {
		p.next()
		return &ast.Identifier{Base: ast.FromToken(tok), Name: tok.Literal}
	}
	p.next()
	return &ast.AwaitExpression{Base: ast.FromToken(tok), Argument: p.parseExpression(UNARY)}
}

// parseYieldExpression handles `yield`, `yield expr`, `yield* expr`;
// outside a generator body `yield` is a plain identifier.
func (p *Parser) parseYieldExpression() ast.Expression {
	tok := p.cur
	if !p.scope.inGenerator {
		p.next()
		return &ast.Identifier{Base: ast.FromToken(tok), Name: tok.Literal}
	}
	p.next()
	y := &ast.YieldExpression{Base: ast.FromToken(tok)}
	if p.curIs(lexer.STAR) {
		y.Delegate = true
		p.next()
	}
	if !p.yieldArgumentFollows() {
		return y
	}
	y.Argument = p.parseAssignExpr()
	return y
}

// yieldArgumentFollows reports whether the current token can start an
// expression, distinguishing a bare `yield;` from `yield expr`. A
// LineTerminator before the current token also ends a bare yield (ASI-like
// restricted production).
func (p *Parser) yieldArgumentFollows() bool {
	if p.cur.PrecededByNewline {
		return false
	}
	switch p.cur.Type {
	case lexer.SEMI, lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE, lexer.COMMA, lexer.COLON, lexer.EOF:
		return false
	}
	return true
}

// parseNewExpression handles `new.target` and `new Callee(args)`; `new`
// without arguments (`new Callee`) is equivalent to `new Callee()`.
func (p *Parser) parseNewExpression() ast.Expression {
	tok := p.cur
	p.next()
	if p.curIs(lexer.DOT) {
		p.next()
		prop := p.expect(lexer.TARGET)
		return &ast.MetaProperty{Base: ast.FromToken(tok), Meta: "new", Property: prop.Literal}
	}
	callee := p.parseExpression(MEMBER)
	n := &ast.NewExpression{Base: ast.FromToken(tok), Callee: callee}
	if p.curIs(lexer.LPAREN) {
		n.Args = p.parseArguments()
	}
	return n
}

func (p *Parser) parseArguments() []ast.Expression {
	p.expect(lexer.LPAREN)
	var args []ast.Expression
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.ELLIPSIS) {
			spreadTok := p.cur
			p.next()
			args = append(args, &ast.SpreadElement{Base: ast.FromToken(spreadTok), Argument: p.parseAssignExpr()})
		} else {
			args = append(args, p.parseAssignExpr())
		}
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

func (p *Parser) parseBinaryExpression(left ast.Expression, op string) ast.Expression {
	tok := p.cur
	prec := p.curPrecedence()
	p.next()
	// ** is right-associative; everything else here is left-associative.
	if op == "**" {
		prec--
	}
	right := p.parseExpression(prec)
	return &ast.BinaryExpression{Base: ast.FromToken(tok), Operator: op, Left: left, Right: right}
}

func (p *Parser) parseLogicalExpression(left ast.Expression, op string) ast.Expression {
	tok := p.cur
	prec := p.curPrecedence()
	p.next()
	right := p.parseExpression(prec)
	return &ast.LogicalExpression{Base: ast.FromToken(tok), Operator: op, Left: left, Right: right}
}

func (p *Parser) parseAssignmentExpression(left ast.Expression, op string) ast.Expression {
	tok := p.cur
	p.next()
	target := exprToAssignTarget(left)
	value := p.parseExpression(ASSIGN - 1)
	return &ast.AssignmentExpression{Base: ast.FromToken(tok), Operator: op, Target: target, Value: value}
}

// exprToAssignTarget reinterprets an already-parsed ArrayLiteral/
// ObjectLiteral as a destructuring pattern when it turns out to be the
// target of `=` (the cover grammar resolution requires, done
// here post-hoc rather than with a dedicated cover-grammar parser).
func exprToAssignTarget(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.ArrayLiteral:
		pat := &ast.ArrayPattern{}
		for _, el := range e.Elements {
			pat.Elements = append(pat.Elements, arrayElementToPattern(el))
		}
		return pat
	case *ast.ObjectLiteral:
		pat := &ast.ObjectPattern{}
		for _, prop := range e.Properties {
			if prop.Kind == ast.PropertySpread {
				pat.Rest = &ast.RestElement{Argument: exprToAssignTarget(prop.Value)}
				continue
			}
			pat.Properties = append(pat.Properties, ast.Property{
				Key: prop.Key, Value: exprToAssignTarget(prop.Value), Computed: prop.Computed, Shorthand: prop.Shorthand,
			})
		}
		return pat
	default:
		return expr
	}
}

func arrayElementToPattern(el ast.Expression) ast.Expression {
	switch e := el.(type) {
	case nil:
		return nil
	case *ast.SpreadElement:
		return &ast.RestElement{Argument: exprToAssignTarget(e.Argument)}
	case *ast.AssignmentExpression:
		if e.Operator == "=" {
			return &ast.AssignmentPattern{Target: exprToAssignTarget(e.Target), Default: e.Value}
		}
		return exprToAssignTarget(e)
	default:
		return exprToAssignTarget(e)
	}
}

func (p *Parser) parseConditionalExpression(test ast.Expression) ast.Expression {
	tok := p.cur
	p.next() // consume '?'
	cons := p.parseAssignExpr()
	p.expect(lexer.COLON)
	alt := p.parseAssignExpr()
	return &ast.ConditionalExpression{Base: ast.FromToken(tok), Test: test, Consequent: cons, Alternate: alt}
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	tok := p.cur
	args := p.parseArguments()
	return &ast.CallExpression{Base: ast.FromToken(tok), Callee: callee, Args: args}
}

func (p *Parser) parseDotMemberExpression(obj ast.Expression) ast.Expression {
	tok := p.cur
	p.next() // consume '.'
	var prop ast.Expression
	if p.curIs(lexer.PRIVATE_IDENT) {
		prop = p.parsePrivateIdentifierExpr()
	} else {
		propTok := p.cur
		p.next()
		prop = &ast.Identifier{Base: ast.FromToken(propTok), Name: propTok.Literal}
	}
	return &ast.MemberExpression{Base: ast.FromToken(tok), Object: obj, Property: prop, Computed: false}
}

func (p *Parser) parseOptionalMemberExpression(obj ast.Expression) ast.Expression {
	tok := p.cur
	p.next() // consume '?.'
	if p.curIs(lexer.LPAREN) {
		args := p.parseArguments()
		return &ast.CallExpression{Base: ast.FromToken(tok), Callee: obj, Args: args, Optional: true}
	}
	if p.curIs(lexer.LBRACKET) {
		p.next()
		index := p.parseExpressionAllowComma()
		p.expect(lexer.RBRACKET)
		return &ast.MemberExpression{Base: ast.FromToken(tok), Object: obj, Property: index, Computed: true, Optional: true}
	}
	var prop ast.Expression
	if p.curIs(lexer.PRIVATE_IDENT) {
		prop = p.parsePrivateIdentifierExpr()
	} else {
		propTok := p.cur
		p.next()
		prop = &ast.Identifier{Base: ast.FromToken(propTok), Name: propTok.Literal}
	}
	return &ast.MemberExpression{Base: ast.FromToken(tok), Object: obj, Property: prop, Optional: true}
}

func (p *Parser) parseComputedMemberExpression(obj ast.Expression) ast.Expression {
	tok := p.cur
	p.next() // consume '['
	index := p.parseExpressionAllowComma()
	p.expect(lexer.RBRACKET)
	return &ast.MemberExpression{Base: ast.FromToken(tok), Object: obj, Property: index, Computed: true}
}

func (p *Parser) parseSequenceExpression(first ast.Expression) ast.Expression {
	tok := p.cur
	exprs := []ast.Expression{first}
	for p.curIs(lexer.COMMA) {
		p.next()
		exprs = append(exprs, p.parseAssignExpr())
	}
	return &ast.SequenceExpression{Base: ast.FromToken(tok), Expressions: exprs}
}

// parseFunctionExpression and parseClassExpression share their bodies with
// the declaration forms in statements.go/classes.go.
func (p *Parser) parseFunctionExpression() ast.Expression {
	return p.parseFunctionLike(false)
}

func (p *Parser) parseClassExpression() ast.Expression {
	return p.parseClassLike()
}
