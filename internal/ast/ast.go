// Package ast defines the Abstract Syntax Tree node types produced by
// internal/parser and consumed by internal/codegen (component G).
package ast

import (
	"bytes"

	"github.com/vesper-lang/vesper/internal/lexer"
)

// Node is the interface every AST node implements.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() lexer.Position
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action without itself being a
// value (though its children may be expressions).
type Statement interface {
	Node
	statementNode()
}

// Program is the root node: a script body or a module body (IsModule
// distinguishes the two parse goals).
type Program struct {
	Body     []Statement
	IsModule bool
}

func (p *Program) TokenLiteral() string {
	if len(p.Body) > 0 {
		return p.Body[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() lexer.Position {
	if len(p.Body) > 0 {
		return p.Body[0].Pos()
	}
	return lexer.Position{}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Body {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// Base embeds a token's literal text and position into every concrete
// node, avoiding repeating the same two fields + two methods everywhere.
type Base struct {
	Literal  string
	Position lexer.Position
}

func (b Base) TokenLiteral() string    { return b.Literal }
func (b Base) Pos() lexer.Position     { return b.Position }

// FromToken builds a Base from a lexer.Token, the constructor internal/parser
// uses when attaching source position to every node it builds.
func FromToken(tok lexer.Token) Base {
	return Base{Literal: tok.Literal, Position: tok.Pos}
}

// Identifier is a BindingIdentifier / IdentifierReference.
type Identifier struct {
	Base
	Name string
}

func (i *Identifier) expressionNode() {}
func (i *Identifier) String() string  { return i.Name }

// PrivateIdentifier is a `#name` reference, used by private class fields.
type PrivateIdentifier struct {
	Base
	Name string
}

func (p *PrivateIdentifier) expressionNode() {}
func (p *PrivateIdentifier) String() string  { return "#" + p.Name }

// NumberLiteral is a numeric literal.
type NumberLiteral struct {
	Base
	Value float64
}

func (n *NumberLiteral) expressionNode() {}
func (n *NumberLiteral) String() string  { return n.Literal }

// BigIntLiteral is a `123n` literal. Value is the decoded digit string;
// codegen converts it to the runtime's bigint representation.
type BigIntLiteral struct {
	Base
	Value string
}

func (n *BigIntLiteral) expressionNode() {}
func (n *BigIntLiteral) String() string  { return n.Value + "n" }

// StringLiteral is a quoted string literal; Value holds the cooked value.
type StringLiteral struct {
	Base
	Value string
}

func (s *StringLiteral) expressionNode() {}
func (s *StringLiteral) String() string  { return s.Literal }

// BooleanLiteral is `true`/`false`.
type BooleanLiteral struct {
	Base
	Value bool
}

func (b *BooleanLiteral) expressionNode() {}
func (b *BooleanLiteral) String() string  { return b.Literal }

// NullLiteral is `null`.
type NullLiteral struct{ Base }

func (n *NullLiteral) expressionNode() {}
func (n *NullLiteral) String() string  { return "null" }

// RegexLiteral is `/pattern/flags`.
type RegexLiteral struct {
	Base
	Pattern string
	Flags   string
}

func (r *RegexLiteral) expressionNode() {}
func (r *RegexLiteral) String() string  { return r.Literal }

// ThisExpression is `this`.
type ThisExpression struct{ Base }

func (t *ThisExpression) expressionNode() {}
func (t *ThisExpression) String() string  { return "this" }

// SuperExpression is the bare `super` used as the callee of a super-call
// or the object of a super-property access.
type SuperExpression struct{ Base }

func (s *SuperExpression) expressionNode() {}
func (s *SuperExpression) String() string  { return "super" }
