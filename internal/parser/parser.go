// Package parser implements a hand-written recursive-descent/Pratt parser
// (component G, §4.5) producing internal/ast trees from an
// internal/lexer token stream. Grounded on go-dws's parser.go Pratt-parsing
// structure (prefix/infix function tables keyed by token type, a
// precedence table, block-context stack for error recovery), generalized
// to ECMAScript's contextual grammar flags (strict mode, module goal,
// yield/await-as-keyword-or-identifier, for-in/of ambiguity) and its
// destructuring/arrow-function cover grammars.
package parser

import (
	"github.com/vesper-lang/vesper/internal/ast"
	"github.com/vesper-lang/vesper/internal/diag"
	"github.com/vesper-lang/vesper/internal/lexer"
)

// Precedence levels, lowest to highest (the expression grammar).
const (
	_ int = iota
	LOWEST
	COMMA
	ASSIGN
	CONDITIONAL
	NULLISH
	LOGOR
	LOGAND
	BITOR
	BITXOR
	BITAND
	EQUALITY
	RELATIONAL
	SHIFT
	ADDITIVE
	MULTIPLICATIVE
	EXPONENT
	UNARY
	POSTFIX
	CALL
	MEMBER
)

var precedences = map[lexer.TokenType]int{
	lexer.COMMA:      COMMA,
	lexer.ASSIGN:     ASSIGN,
	lexer.PLUS_ASSIGN: ASSIGN, lexer.MINUS_ASSIGN: ASSIGN, lexer.STAR_ASSIGN: ASSIGN,
	lexer.SLASH_ASSIGN: ASSIGN, lexer.PERCENT_ASSIGN: ASSIGN, lexer.STARSTAR_ASSIGN: ASSIGN,
	lexer.SHL_ASSIGN: ASSIGN, lexer.SHR_ASSIGN: ASSIGN, lexer.USHR_ASSIGN: ASSIGN,
	lexer.AND_ASSIGN: ASSIGN, lexer.OR_ASSIGN: ASSIGN, lexer.XOR_ASSIGN: ASSIGN,
	lexer.LOGAND_ASSIGN: ASSIGN, lexer.LOGOR_ASSIGN: ASSIGN, lexer.QQ_ASSIGN: ASSIGN,
	lexer.QUESTION: CONDITIONAL,
	lexer.QQ:       NULLISH,
	lexer.LOGOR:    LOGOR,
	lexer.LOGAND:   LOGAND,
	lexer.OR:       BITOR,
	lexer.XOR:      BITXOR,
	lexer.AND:      BITAND,
	lexer.EQ: EQUALITY, lexer.NEQ: EQUALITY, lexer.SEQ: EQUALITY, lexer.SNEQ: EQUALITY,
	lexer.LT: RELATIONAL, lexer.GT: RELATIONAL, lexer.LE: RELATIONAL, lexer.GE: RELATIONAL,
	lexer.INSTANCEOF: RELATIONAL, lexer.IN: RELATIONAL,
	lexer.SHL: SHIFT, lexer.SHR: SHIFT, lexer.USHR: SHIFT,
	lexer.PLUS: ADDITIVE, lexer.MINUS: ADDITIVE,
	lexer.STAR: MULTIPLICATIVE, lexer.SLASH: MULTIPLICATIVE, lexer.PERCENT: MULTIPLICATIVE,
	lexer.STARSTAR: EXPONENT,
	lexer.LPAREN:    CALL,
	lexer.LBRACKET:  MEMBER,
	lexer.DOT:       MEMBER,
	lexer.QDOT:      MEMBER,
	lexer.PLUSPLUS:  POSTFIX,
	lexer.MINUSMINUS: POSTFIX,
}

type prefixParseFn func() ast.Expression
type infixParseFn func(ast.Expression) ast.Expression

// scopeFlags tracks the contextual grammar parameters threads
// through the recursive descent (In, Yield, Await, and whether the parser
// is inside a function/class body at all, needed to reject `#name`
// references outside one for scenario F).
type scopeFlags struct {
	inFunction bool
	inGenerator bool
	inAsync     bool
	inLoopOrSwitch bool
	inClassBody bool
	privateNamesInScope map[string]bool
}

// Parser scans and parses one program.
type Parser struct {
	l   *lexer.Lexer
	bag *diag.Bag

	cur  lexer.Token
	peek lexer.Token

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn

	scope scopeFlags
	isModule bool
}

func New(l *lexer.Lexer, isModule bool) *Parser {
	p := &Parser{l: l, bag: &diag.Bag{}, isModule: isModule}
	p.prefixFns = make(map[lexer.TokenType]prefixParseFn)
	p.infixFns = make(map[lexer.TokenType]infixParseFn)
	p.registerExpressionParsers()
	p.next()
	p.next()
	return p
}

func (p *Parser) Errors() *diag.Bag { return p.bag }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	if !p.curIs(t) {
		p.errorf("expected %s, got %s (%q)", t, p.cur.Type, p.cur.Literal)
		return p.cur
	}
	tok := p.cur
	p.next()
	return tok
}

func (p *Parser) errorf(format string, args ...any) {
	p.bag.Errorf(diag.Position{Line: p.cur.Pos.Line, Column: p.cur.Pos.Column, Offset: p.cur.Pos.Offset}, "", "", format, args...)
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

// consumeSemicolon implements automatic semicolon insertion:
// an explicit `;` is consumed; otherwise ASI applies when the next token
// is preceded by a newline, is `}`, or is EOF.
func (p *Parser) consumeSemicolon() {
	if p.curIs(lexer.SEMI) {
		p.next()
		return
	}
	if p.curIs(lexer.RBRACE) || p.curIs(lexer.EOF) || p.cur.PrecededByNewline {
		return
	}
	p.errorf("expected ';' (automatic semicolon insertion did not apply), got %s", p.cur.Type)
}

// ParseProgram parses a complete script or module body.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{IsModule: p.isModule}
	for !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Body = append(prog.Body, stmt)
		}
		if p.bag.HasErrors() {
			p.synchronize()
		}
	}
	return prog
}

// synchronize implements panic-mode error recovery: skip tokens until a
// statement boundary (`;`, `}`, or a statement-starting keyword) so one
// syntax error doesn't cascade into spurious follow-on errors.
func (p *Parser) synchronize() {
	for !p.curIs(lexer.EOF) {
		if p.curIs(lexer.SEMI) {
			p.next()
			return
		}
		switch p.cur.Type {
		case lexer.LBRACE, lexer.RBRACE, lexer.VAR, lexer.LET, lexer.CONST, lexer.FUNCTION,
			lexer.CLASS, lexer.IF, lexer.FOR, lexer.WHILE, lexer.RETURN, lexer.TRY:
			return
		}
		p.next()
	}
}
