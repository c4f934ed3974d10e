package ast

import (
	"testing"

	"github.com/vesper-lang/vesper/internal/lexer"
)

func TestProgramStringJoinsStatements(t *testing.T) {
	prog := &Program{Body: []Statement{
		&ExpressionStatement{Expr: &NumberLiteral{Base: Base{Literal: "1"}, Value: 1}},
		&ExpressionStatement{Expr: &NumberLiteral{Base: Base{Literal: "2"}, Value: 2}},
	}}
	if got := prog.String(); got != "1;\n2;\n" {
		t.Fatalf("got %q", got)
	}
}

func TestIdentifierPosAndLiteral(t *testing.T) {
	id := &Identifier{Base: Base{Literal: "x", Position: lexer.Position{Line: 3, Column: 4}}, Name: "x"}
	if id.TokenLiteral() != "x" {
		t.Fatalf("got %q", id.TokenLiteral())
	}
	if id.Pos().Line != 3 {
		t.Fatalf("got line %d", id.Pos().Line)
	}
	var _ Expression = id
}

func TestMemberExpressionComputedVsDot(t *testing.T) {
	obj := &Identifier{Name: "a"}
	dot := &MemberExpression{Object: obj, Property: &Identifier{Name: "b"}, Computed: false}
	if dot.String() != "a.b" {
		t.Fatalf("got %q", dot.String())
	}
	computed := &MemberExpression{Object: obj, Property: &NumberLiteral{Base: Base{Literal: "0"}, Value: 0}, Computed: true}
	if computed.String() != "a[0]" {
		t.Fatalf("got %q", computed.String())
	}
}

func TestStatementAndExpressionInterfaceSatisfaction(t *testing.T) {
	var stmts []Statement
	stmts = append(stmts,
		&BlockStatement{}, &IfStatement{Test: &BooleanLiteral{Value: true}, Consequent: &EmptyStatement{}},
		&ForStatement{}, &WhileStatement{}, &ReturnStatement{}, &TryStatement{},
		&VariableDeclaration{Kind: DeclLet}, &FunctionLiteral{}, &ClassLiteral{},
		&ImportDeclaration{}, &ExportNamedDeclaration{},
	)
	if len(stmts) == 0 {
		t.Fatal("expected statement list to be populated")
	}

	var exprs []Expression
	exprs = append(exprs,
		&Identifier{}, &NumberLiteral{}, &StringLiteral{}, &BooleanLiteral{}, &NullLiteral{},
		&ArrayLiteral{}, &ObjectLiteral{}, &TemplateLiteral{}, &CallExpression{}, &NewExpression{},
		&MemberExpression{}, &ConditionalExpression{}, &AssignmentExpression{}, &YieldExpression{},
		&AwaitExpression{}, &ArrowFunction{}, &ClassLiteral{}, &FunctionLiteral{},
	)
	if len(exprs) == 0 {
		t.Fatal("expected expression list to be populated")
	}
}
