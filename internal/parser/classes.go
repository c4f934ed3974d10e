package parser

import (
	"github.com/vesper-lang/vesper/internal/ast"
	"github.com/vesper-lang/vesper/internal/lexer"
)

// parseClassLike parses a class declaration or expression: `class [name]
// [extends Super] { members... }` (a private-field-bearing
// class grammar). Member parsing tracks declared private names in
// scopeFlags.privateNamesInScope so a later `#name` reference elsewhere in
// the class body resolves, and so a reference outside any class body is a
// parse-time error (scenario F).
func (p *Parser) parseClassLike() ast.Node {
	tok := p.cur
	p.next() // 'class'
	var name *ast.Identifier
	if p.cur.Type == lexer.IDENT {
		nameTok := p.cur
		p.next()
		name = &ast.Identifier{Base: ast.FromToken(nameTok), Name: nameTok.Literal}
	}
	cls := &ast.ClassLiteral{Base: ast.FromToken(tok), Name: name}
	if p.curIs(lexer.EXTENDS) {
		p.next()
		cls.SuperClass = p.parseExpression(MEMBER)
	}

	outerScope := p.scope
	privateNames := make(map[string]bool, len(outerScope.privateNamesInScope))
	for k, v := range outerScope.privateNamesInScope {
		privateNames[k] = v
	}
	p.scanPrivateNames(privateNames)
	p.scope = scopeFlags{privateNamesInScope: privateNames, inClassBody: true}

	p.l.EnterBrace()
	p.expect(lexer.LBRACE)
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.SEMI) {
			p.next()
			continue
		}
		cls.Members = append(cls.Members, p.parseClassMember())
	}
	p.l.ExitBrace()
	p.expect(lexer.RBRACE)

	p.scope = outerScope
	return cls
}

// scanPrivateNames does a shallow lookahead scan for `#name` declarations
// directly in this class body (without descending into nested classes or
// function bodies) so forward references (a method using `#x` declared
// later in the same class) resolve. It does not consume any tokens; it
// walks the lexer's saved state and restores it.
func (p *Parser) scanPrivateNames(out map[string]bool) {
	saved := p.l.Save()
	savedCur, savedPeek := p.cur, p.peek
	depth := 0
	for {
		switch p.cur.Type {
		case lexer.EOF:
			goto done
		case lexer.LBRACE:
			depth++
		case lexer.RBRACE:
			depth--
			if depth <= 0 {
				goto done
			}
		case lexer.PRIVATE_IDENT:
			out[p.cur.Literal] = true
		}
		p.next()
	}
done:
	p.l.Restore(saved)
	p.cur, p.peek = savedCur, savedPeek
}

func (p *Parser) parseClassMember() ast.ClassMember {
	static := false
	if p.curIs(lexer.STATIC) && !p.peekEndsMemberName() {
		static = true
		p.next()
		if static && p.curIs(lexer.LBRACE) {
			body := p.parseBlockStatement()
			return ast.ClassMember{Kind: ast.StaticBlock, Static: true, Body: body.Body}
		}
	}

	isAsync := p.curIs(lexer.ASYNC) && !p.peekEndsMemberName()
	if isAsync {
		p.next()
	}
	isGenerator := p.curIs(lexer.STAR)
	if isGenerator {
		p.next()
	}
	isGetter := p.curIs(lexer.GET) && !p.peekEndsMemberName()
	isSetter := p.curIs(lexer.SET_KW) && !p.peekEndsMemberName()
	if isGetter || isSetter {
		p.next()
	}

	private := p.curIs(lexer.PRIVATE_IDENT)
	computed := false
	var key ast.Expression
	switch {
	case private:
		tok := p.cur
		p.next()
		key = &ast.PrivateIdentifier{Base: ast.FromToken(tok), Name: tok.Literal}
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

	if p.curIs(lexer.LPAREN) {
		fn := p.parseFunctionTail(isGenerator, isAsync)
		kind := ast.MethodOrdinary
		switch {
		case isGetter:
			kind = ast.MethodGetter
		case isSetter:
			kind = ast.MethodSetter
		}
		if !static && !private && !computed && kind == ast.MethodOrdinary {
			if id, ok := key.(*ast.Identifier); ok && id.Name == "constructor" {
				kind = ast.MethodConstructor
			}
		}
		return ast.ClassMember{Key: key, Value: fn, Kind: kind, Static: static, Computed: computed, Private: private}
	}

	// Field definition, possibly with an initializer.
	var init ast.Expression
	if p.curIs(lexer.ASSIGN) {
		p.next()
		init = p.parseAssignExpr()
	}
	p.consumeSemicolon()
	return ast.ClassMember{Key: key, Value: init, Kind: ast.FieldDefinition, Static: static, Computed: computed, Private: private}
}

// peekEndsMemberName reports whether the token after a contextual
// `static`/`async`/`get`/`set` modifier ends the member's own name (i.e.
// the modifier keyword is itself being used as the member name).
func (p *Parser) peekEndsMemberName() bool {
	switch p.peek.Type {
	case lexer.LPAREN, lexer.ASSIGN, lexer.SEMI, lexer.RBRACE:
		return true
	}
	return false
}
