package parser

import (
	"github.com/vesper-lang/vesper/internal/ast"
	"github.com/vesper-lang/vesper/internal/lexer"
)

// parseFunctionLike parses a function declaration or expression:
// `[async] function [*] [name] (params) { body }`. asStmt
// selects FunctionLiteral's dual statement/expression role.
func (p *Parser) parseFunctionLike(asStmt bool) ast.Node {
	tok := p.cur
	isAsync := false
	if p.curIs(lexer.ASYNC) {
		isAsync = true
		p.next()
	}
	p.expect(lexer.FUNCTION)
	isGenerator := false
	if p.curIs(lexer.STAR) {
		isGenerator = true
		p.next()
	}
	var name *ast.Identifier
	if !p.curIs(lexer.LPAREN) {
		nameTok := p.cur
		p.next()
		name = &ast.Identifier{Base: ast.FromToken(nameTok), Name: nameTok.Literal}
	}
	fn := &ast.FunctionLiteral{Base: ast.FromToken(tok), Name: name, IsGenerator: isGenerator, IsAsync: isAsync}
	fn.Params = p.parseParamList()

	outer := p.scope
	p.scope = scopeFlags{inFunction: true, inGenerator: isGenerator, inAsync: isAsync,
		privateNamesInScope: outer.privateNamesInScope, inClassBody: outer.inClassBody}
	fn.Body = p.parseFunctionBody()
	p.scope = outer
	return fn
}

// parseFunctionTail parses just `(params) { body }`, used for object/class
// method shorthand where the `function` keyword and name are already
// consumed or implicit.
func (p *Parser) parseFunctionTail(isGenerator, isAsync bool) *ast.FunctionLiteral {
	tok := p.cur
	fn := &ast.FunctionLiteral{Base: ast.FromToken(tok), IsGenerator: isGenerator, IsAsync: isAsync}
	fn.Params = p.parseParamList()
	outer := p.scope
	p.scope = scopeFlags{inFunction: true, inGenerator: isGenerator, inAsync: isAsync,
		privateNamesInScope: outer.privateNamesInScope, inClassBody: outer.inClassBody}
	fn.Body = p.parseFunctionBody()
	p.scope = outer
	return fn
}

func (p *Parser) parseParamList() []ast.Param {
	p.expect(lexer.LPAREN)
	var params []ast.Param
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
	p.expect(lexer.RPAREN)
	return params
}

// parseFunctionBody parses `{ stmts... }`. EnterBrace/ExitBrace keep the
// lexer's template-substitution brace tracking correct when a function
// expression (e.g. an IIFE) appears inside a `${...}` substitution.
func (p *Parser) parseFunctionBody() []ast.Statement {
	p.l.EnterBrace()
	p.expect(lexer.LBRACE)
	var body []ast.Statement
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		body = append(body, p.parseStatement())
	}
	p.l.ExitBrace()
	p.expect(lexer.RBRACE)
	return body
}
