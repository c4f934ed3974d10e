package parser

import (
	"github.com/vesper-lang/vesper/internal/ast"
	"github.com/vesper-lang/vesper/internal/lexer"
)

// parseImportDeclaration parses `import defaultName, {a, b as c} from "m";`,
// `import * as ns from "m";`, and the bare side-effect `import "m";`
// (the ImportClause grammar). Dynamic `import(...)` and `import.meta` are
// not parsed: a statement-initial `import` followed by `(` or `.` falls
// through to expression parsing, which has no prefix rule for IMPORT and
// reports a syntax error, and no MetaProperty with Meta "import" is ever
// built.
func (p *Parser) parseImportDeclaration() ast.Statement {
	tok := p.cur
	p.next() // 'import'
	decl := &ast.ImportDeclaration{Base: ast.FromToken(tok)}

	if p.curIs(lexer.STRING) {
		decl.Source = p.cur.Value.(string)
		p.next()
		p.consumeSemicolon()
		return decl
	}

	if p.cur.Type == lexer.IDENT {
		nameTok := p.cur
		p.next()
		decl.Specifiers = append(decl.Specifiers, ast.ImportSpecifier{
			Local: &ast.Identifier{Base: ast.FromToken(nameTok), Name: nameTok.Literal}, Default: true,
		})
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}

	if p.curIs(lexer.STAR) {
		p.next()
		p.expect(lexer.AS)
		nsTok := p.expect(lexer.IDENT)
		decl.Specifiers = append(decl.Specifiers, ast.ImportSpecifier{
			Local: &ast.Identifier{Base: ast.FromToken(nsTok), Name: nsTok.Literal}, Namespace: true,
		})
	} else if p.curIs(lexer.LBRACE) {
		p.l.EnterBrace()
		p.next()
		for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			importedTok := p.cur
			p.next()
			imported := &ast.Identifier{Base: ast.FromToken(importedTok), Name: importedTok.Literal}
			local := imported
			if p.curIs(lexer.AS) {
				p.next()
				localTok := p.cur
				p.next()
				local = &ast.Identifier{Base: ast.FromToken(localTok), Name: localTok.Literal}
			}
			decl.Specifiers = append(decl.Specifiers, ast.ImportSpecifier{Imported: imported, Local: local})
			if p.curIs(lexer.COMMA) {
				p.next()
			} else {
				break
			}
		}
		p.l.ExitBrace()
		p.expect(lexer.RBRACE)
	}

	p.expect(lexer.FROM)
	srcTok := p.expect(lexer.STRING)
	decl.Source, _ = srcTok.Value.(string)
	p.consumeSemicolon()
	return decl
}

// parseExportDeclaration parses `export {a, b as c} [from "m"];`,
// `export * [as ns] from "m";`, `export default expr;`, and
// `export const/let/var/function/class ...;` (the ExportClause
// grammar).
func (p *Parser) parseExportDeclaration() ast.Statement {
	tok := p.cur
	p.next() // 'export'

	if p.curIs(lexer.DEFAULT) {
		p.next()
		var d ast.Node
		switch {
		case p.curIs(lexer.FUNCTION) || (p.curIs(lexer.ASYNC) && p.peek.Type == lexer.FUNCTION):
			d = p.parseFunctionLike(true)
		case p.curIs(lexer.CLASS):
			d = p.parseClassLike()
		default:
			d = p.parseAssignExpr()
			p.consumeSemicolon()
		}
		return &ast.ExportDefaultDeclaration{Base: ast.FromToken(tok), Declaration: d}
	}

	if p.curIs(lexer.STAR) {
		p.next()
		decl := &ast.ExportAllDeclaration{Base: ast.FromToken(tok)}
		if p.curIs(lexer.AS) {
			p.next()
			nsTok := p.cur
			p.next()
			decl.Exported = &ast.Identifier{Base: ast.FromToken(nsTok), Name: nsTok.Literal}
		}
		p.expect(lexer.FROM)
		srcTok := p.expect(lexer.STRING)
		decl.Source, _ = srcTok.Value.(string)
		p.consumeSemicolon()
		return decl
	}

	if p.curIs(lexer.LBRACE) {
		p.l.EnterBrace()
		p.next()
		decl := &ast.ExportNamedDeclaration{Base: ast.FromToken(tok)}
		for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			localTok := p.cur
			p.next()
			local := &ast.Identifier{Base: ast.FromToken(localTok), Name: localTok.Literal}
			exported := local
			if p.curIs(lexer.AS) {
				p.next()
				expTok := p.cur
				p.next()
				exported = &ast.Identifier{Base: ast.FromToken(expTok), Name: expTok.Literal}
			}
			decl.Specifiers = append(decl.Specifiers, ast.ExportSpecifier{Local: local, Exported: exported})
			if p.curIs(lexer.COMMA) {
				p.next()
			} else {
				break
			}
		}
		p.l.ExitBrace()
		p.expect(lexer.RBRACE)
		if p.curIs(lexer.FROM) {
			p.next()
			srcTok := p.expect(lexer.STRING)
			decl.Source, _ = srcTok.Value.(string)
		}
		p.consumeSemicolon()
		return decl
	}

	// export const/let/var/function/class ...
	inner := p.parseStatement()
	return &ast.ExportNamedDeclaration{Base: ast.FromToken(tok), Declaration: inner}
}
