package parser

import (
	"github.com/vesper-lang/vesper/internal/ast"
	"github.com/vesper-lang/vesper/internal/lexer"
)

// parseStatement dispatches on the current token to the matching statement
// grammar production (the Statement/Declaration nonterminals).
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.LBRACE:
		return p.parseBlockStatement()
	case lexer.SEMI:
		tok := p.cur
		p.next()
		return &ast.EmptyStatement{Base: ast.FromToken(tok)}
	case lexer.VAR, lexer.CONST:
		return p.parseVariableStatement()
	case lexer.LET:
		if p.letStartsDeclaration() {
			return p.parseVariableStatement()
		}
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.DO:
		return p.parseDoWhileStatement()
	case lexer.BREAK:
		return p.parseBreakStatement()
	case lexer.CONTINUE:
		return p.parseContinueStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.THROW:
		return p.parseThrowStatement()
	case lexer.TRY:
		return p.parseTryStatement()
	case lexer.SWITCH:
		return p.parseSwitchStatement()
	case lexer.DEBUGGER:
		tok := p.cur
		p.next()
		p.consumeSemicolon()
		return &ast.DebuggerStatement{Base: ast.FromToken(tok)}
	case lexer.FUNCTION:
		return p.parseFunctionLike(true).(ast.Statement)
	case lexer.ASYNC:
		if p.peek.Type == lexer.FUNCTION && !p.peek.PrecededByNewline {
			return p.parseFunctionLike(true).(ast.Statement)
		}
	case lexer.CLASS:
		return p.parseClassLike().(ast.Statement)
	case lexer.IMPORT:
		if p.isModule && p.peek.Type != lexer.LPAREN && p.peek.Type != lexer.DOT {
			return p.parseImportDeclaration()
		}
	case lexer.EXPORT:
		return p.parseExportDeclaration()
	}

	// IdentifierReference ':' Statement — a labeled statement.
	if p.cur.Type == lexer.IDENT && p.peek.Type == lexer.COLON {
		if label, ok := p.tryLabeledStatement(); ok {
			return label
		}
	}

	return p.parseExpressionStatement()
}

// letStartsDeclaration disambiguates `let` as a declaration keyword from
// `let` used as an ordinary identifier (the contextual handling:
// `let` only introduces a declaration when followed by a binding target).
func (p *Parser) letStartsDeclaration() bool {
	switch p.peek.Type {
	case lexer.IDENT, lexer.LBRACKET, lexer.LBRACE, lexer.LET, lexer.STATIC, lexer.ASYNC,
		lexer.GET, lexer.SET_KW, lexer.OF, lexer.AS, lexer.FROM:
		return true
	}
	return false
}

func (p *Parser) tryLabeledStatement() (ast.Statement, bool) {
	saved := p.l.Save()
	savedCur, savedPeek := p.cur, p.peek
	tok := p.cur
	label := &ast.Identifier{Base: ast.FromToken(tok), Name: tok.Literal}
	p.next() // identifier
	if !p.curIs(lexer.COLON) {
		p.l.Restore(saved)
		p.cur, p.peek = savedCur, savedPeek
		return nil, false
	}
	p.next() // ':'
	body := p.parseStatement()
	return &ast.LabeledStatement{Base: ast.FromToken(tok), Label: label, Body: body}, true
}

// parseBlockStatement parses `{ stmts... }`. EnterBrace/ExitBrace keep the
// lexer's template-substitution brace tracking correct when a block (an if/
// while/for body, a function body, ...) is nested inside a `${...}`
// substitution; the calls are no-ops outside one.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	tok := p.cur
	p.l.EnterBrace()
	p.next() // consume '{'
	block := &ast.BlockStatement{Base: ast.FromToken(tok)}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		block.Body = append(block.Body, p.parseStatement())
	}
	p.l.ExitBrace()
	p.expect(lexer.RBRACE)
	return block
}

func (p *Parser) declKindFor(t lexer.TokenType) ast.DeclKind {
	switch t {
	case lexer.CONST:
		return ast.DeclConst
	case lexer.LET:
		return ast.DeclLet
	default:
		return ast.DeclVar
	}
}

// parseVariableDeclaration parses `var/let/const a = 1, [b, c] = d;` without
// consuming the trailing semicolon when bare (used standalone by
// parseForStatement to share the declarator-list grammar).
func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	tok := p.cur
	kind := p.declKindFor(p.cur.Type)
	p.next()
	decl := &ast.VariableDeclaration{Base: ast.FromToken(tok), Kind: kind}
	for {
		target := p.parseBindingTarget()
		var init ast.Expression
		if p.curIs(lexer.ASSIGN) {
			p.next()
			init = p.parseAssignExpr()
		}
		decl.Declarations = append(decl.Declarations, ast.VariableDeclarator{Target: target, Init: init})
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	return decl
}

func (p *Parser) parseVariableStatement() ast.Statement {
	decl := p.parseVariableDeclaration()
	p.consumeSemicolon()
	return decl
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.cur
	expr := p.parseExpressionAllowComma()
	p.consumeSemicolon()
	return &ast.ExpressionStatement{Base: ast.FromToken(tok), Expr: expr}
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.cur
	p.next() // 'if'
	p.expect(lexer.LPAREN)
	test := p.parseExpressionAllowComma()
	p.expect(lexer.RPAREN)
	cons := p.parseStatement()
	var alt ast.Statement
	if p.curIs(lexer.ELSE) {
		p.next()
		alt = p.parseStatement()
	}
	return &ast.IfStatement{Base: ast.FromToken(tok), Test: test, Consequent: cons, Alternate: alt}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.cur
	p.next()
	p.expect(lexer.LPAREN)
	test := p.parseExpressionAllowComma()
	p.expect(lexer.RPAREN)
	body := p.parseLoopBody()
	return &ast.WhileStatement{Base: ast.FromToken(tok), Test: test, Body: body}
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	tok := p.cur
	p.next() // 'do'
	body := p.parseLoopBody()
	p.expect(lexer.WHILE)
	p.expect(lexer.LPAREN)
	test := p.parseExpressionAllowComma()
	p.expect(lexer.RPAREN)
	// The trailing ';' after `do...while(test)` is subject to ASI even
	// without a preceding newline (special-case).
	if p.curIs(lexer.SEMI) {
		p.next()
	}
	return &ast.DoWhileStatement{Base: ast.FromToken(tok), Body: body, Test: test}
}

func (p *Parser) parseLoopBody() ast.Statement {
	outer := p.scope.inLoopOrSwitch
	p.scope.inLoopOrSwitch = true
	body := p.parseStatement()
	p.scope.inLoopOrSwitch = outer
	return body
}

// parseForStatement parses the classic, for-in, and for-of forms, including
// `for await (... of ...)` (the top-level-await-adjacent grammar).
func (p *Parser) parseForStatement() ast.Statement {
	tok := p.cur
	p.next() // 'for'
	isAwait := false
	if p.curIs(lexer.AWAIT) {
		isAwait = true
		p.next()
	}
	p.expect(lexer.LPAREN)

	var init ast.Node
	if p.curIs(lexer.SEMI) {
		init = nil
	} else if p.curIs(lexer.VAR) || p.curIs(lexer.CONST) || (p.curIs(lexer.LET) && p.letStartsDeclaration()) {
		declTok := p.cur
		kind := p.declKindFor(p.cur.Type)
		p.next()
		target := p.parseBindingTarget()
		if p.curIs(lexer.IN) || p.curIs(lexer.OF) {
			return p.finishForInOf(tok, &ast.VariableDeclaration{Base: ast.FromToken(declTok), Kind: kind,
				Declarations: []ast.VariableDeclarator{{Target: target}}}, isAwait)
		}
		decl := &ast.VariableDeclaration{Base: ast.FromToken(declTok), Kind: kind}
		var firstInit ast.Expression
		if p.curIs(lexer.ASSIGN) {
			p.next()
			firstInit = p.parseExpression(ASSIGN)
		}
		decl.Declarations = append(decl.Declarations, ast.VariableDeclarator{Target: target, Init: firstInit})
		for p.curIs(lexer.COMMA) {
			p.next()
			t2 := p.parseBindingTarget()
			var i2 ast.Expression
			if p.curIs(lexer.ASSIGN) {
				p.next()
				i2 = p.parseExpression(ASSIGN)
			}
			decl.Declarations = append(decl.Declarations, ast.VariableDeclarator{Target: t2, Init: i2})
		}
		init = decl
	} else {
		expr := p.parseExpression(ASSIGN - 1)
		if p.curIs(lexer.IN) || p.curIs(lexer.OF) {
			return p.finishForInOf(tok, exprToAssignTarget(expr), isAwait)
		}
		for p.curIs(lexer.COMMA) {
			expr = p.parseSequenceExpression(expr)
		}
		init = &ast.ExpressionStatement{Expr: expr}
	}

	p.expect(lexer.SEMI)
	var test ast.Expression
	if !p.curIs(lexer.SEMI) {
		test = p.parseExpressionAllowComma()
	}
	p.expect(lexer.SEMI)
	var update ast.Expression
	if !p.curIs(lexer.RPAREN) {
		update = p.parseExpressionAllowComma()
	}
	p.expect(lexer.RPAREN)
	body := p.parseLoopBody()

	var initStmt ast.Node = init
	if es, ok := init.(*ast.ExpressionStatement); ok {
		initStmt = es.Expr
	}
	return &ast.ForStatement{Base: ast.FromToken(tok), Init: initStmt, Test: test, Update: update, Body: body}
}

func (p *Parser) finishForInOf(tok lexer.Token, left ast.Node, isAwait bool) ast.Statement {
	isOf := p.curIs(lexer.OF)
	p.next() // 'in'/'of'
	var right ast.Expression
	if isOf {
		right = p.parseAssignExpr()
	} else {
		right = p.parseExpressionAllowComma()
	}
	p.expect(lexer.RPAREN)
	body := p.parseLoopBody()
	if isOf {
		return &ast.ForOfStatement{Base: ast.FromToken(tok), Left: left, Right: right, Body: body, IsAwait: isAwait}
	}
	return &ast.ForInStatement{Base: ast.FromToken(tok), Left: left, Right: right, Body: body}
}

func (p *Parser) parseBreakStatement() ast.Statement {
	tok := p.cur
	p.next()
	stmt := &ast.BreakStatement{Base: ast.FromToken(tok)}
	if p.cur.Type == lexer.IDENT && !p.cur.PrecededByNewline {
		labelTok := p.cur
		p.next()
		stmt.Label = &ast.Identifier{Base: ast.FromToken(labelTok), Name: labelTok.Literal}
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseContinueStatement() ast.Statement {
	tok := p.cur
	p.next()
	stmt := &ast.ContinueStatement{Base: ast.FromToken(tok)}
	if p.cur.Type == lexer.IDENT && !p.cur.PrecededByNewline {
		labelTok := p.cur
		p.next()
		stmt.Label = &ast.Identifier{Base: ast.FromToken(labelTok), Name: labelTok.Literal}
	}
	p.consumeSemicolon()
	return stmt
}

// parseReturnStatement implements the restricted production: a
// LineTerminator immediately after `return` forces a bare return
// (automatic semicolon insertion), matching `return\nexpr;` parsing as
// two statements.
func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.cur
	p.next()
	stmt := &ast.ReturnStatement{Base: ast.FromToken(tok)}
	if !p.cur.PrecededByNewline && !p.curIs(lexer.SEMI) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		stmt.Argument = p.parseExpressionAllowComma()
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseThrowStatement() ast.Statement {
	tok := p.cur
	p.next()
	if p.cur.PrecededByNewline {
		p.errorf("illegal newline after 'throw'")
	}
	arg := p.parseExpressionAllowComma()
	p.consumeSemicolon()
	return &ast.ThrowStatement{Base: ast.FromToken(tok), Argument: arg}
}

func (p *Parser) parseTryStatement() ast.Statement {
	tok := p.cur
	p.next() // 'try'
	block := p.parseBlockStatement()
	stmt := &ast.TryStatement{Base: ast.FromToken(tok), Block: block}
	if p.curIs(lexer.CATCH) {
		p.next()
		clause := &ast.CatchClause{}
		if p.curIs(lexer.LPAREN) {
			p.next()
			clause.Param = p.parseBindingTarget()
			p.expect(lexer.RPAREN)
		}
		clause.Body = p.parseBlockStatement()
		stmt.Catch = clause
	}
	if p.curIs(lexer.FINALLY) {
		p.next()
		stmt.Finally = p.parseBlockStatement()
	}
	if stmt.Catch == nil && stmt.Finally == nil {
		p.errorf("missing catch or finally after try block")
	}
	return stmt
}

func (p *Parser) parseSwitchStatement() ast.Statement {
	tok := p.cur
	p.next() // 'switch'
	p.expect(lexer.LPAREN)
	disc := p.parseExpressionAllowComma()
	p.expect(lexer.RPAREN)
	p.l.EnterBrace()
	p.expect(lexer.LBRACE)
	stmt := &ast.SwitchStatement{Base: ast.FromToken(tok), Discriminant: disc}
	outer := p.scope.inLoopOrSwitch
	p.scope.inLoopOrSwitch = true
	sawDefault := false
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		var c ast.SwitchCase
		if p.curIs(lexer.CASE) {
			p.next()
			c.Test = p.parseExpressionAllowComma()
		} else {
			p.expect(lexer.DEFAULT)
			if sawDefault {
				p.errorf("more than one default clause in switch statement")
			}
			sawDefault = true
		}
		p.expect(lexer.COLON)
		for !p.curIs(lexer.CASE) && !p.curIs(lexer.DEFAULT) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			c.Consequent = append(c.Consequent, p.parseStatement())
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	p.scope.inLoopOrSwitch = outer
	p.l.ExitBrace()
	p.expect(lexer.RBRACE)
	return stmt
}
