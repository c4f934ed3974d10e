package parser

import (
	"testing"

	"github.com/vesper-lang/vesper/internal/ast"
	"github.com/vesper-lang/vesper/internal/lexer"
)

func parseProgram(t *testing.T, src string, isModule bool) *ast.Program {
	t.Helper()
	p := New(lexer.New(src), isModule)
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("unexpected parse errors for %q:\n%s", src, p.Errors().Format(false))
	}
	return prog
}

func TestParseVariableDeclarations(t *testing.T) {
	prog := parseProgram(t, "var a = 1; let b; const c = a + 1;", false)
	if len(prog.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Body))
	}
	decl, ok := prog.Body[0].(*ast.VariableDeclaration)
	if !ok || decl.Kind != ast.DeclVar {
		t.Fatalf("expected var declaration, got %#v", prog.Body[0])
	}
	if len(decl.Declarations) != 1 || decl.Declarations[0].Init == nil {
		t.Fatalf("expected initialized declarator")
	}
}

func TestParseDestructuringDeclaration(t *testing.T) {
	prog := parseProgram(t, "let {a, b: [c, ...d] = []} = obj;", false)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	pat, ok := decl.Declarations[0].Target.(*ast.ObjectPattern)
	if !ok {
		t.Fatalf("expected object pattern target, got %#v", decl.Declarations[0].Target)
	}
	if len(pat.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(pat.Properties))
	}
}

func TestParseArrowFunctionDisambiguation(t *testing.T) {
	prog := parseProgram(t, "let f = (a, b = 1, ...rest) => a + b; let g = (1 + 2);", false)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	arrow, ok := decl.Declarations[0].Init.(*ast.ArrowFunction)
	if !ok {
		t.Fatalf("expected arrow function, got %#v", decl.Declarations[0].Init)
	}
	if len(arrow.Params) != 3 || !arrow.Params[2].Rest {
		t.Fatalf("expected 3 params with trailing rest, got %+v", arrow.Params)
	}

	decl2 := prog.Body[1].(*ast.VariableDeclaration)
	if _, ok := decl2.Declarations[0].Init.(*ast.BinaryExpression); !ok {
		t.Fatalf("expected parenthesized binary expression, got %#v", decl2.Declarations[0].Init)
	}
}

func TestParseClassWithPrivateFields(t *testing.T) {
	prog := parseProgram(t, `
		class Counter {
			#count = 0;
			static #instances = 0;
			constructor() { this.#count = 0; Counter.#instances++; }
			increment() { return ++this.#count; }
			get value() { return this.#count; }
		}
	`, false)
	cls, ok := prog.Body[0].(*ast.ClassLiteral)
	if !ok {
		t.Fatalf("expected class literal, got %#v", prog.Body[0])
	}
	if len(cls.Members) != 5 {
		t.Fatalf("expected 5 members, got %d", len(cls.Members))
	}
	foundCtor := false
	for _, m := range cls.Members {
		if m.Kind == ast.MethodConstructor {
			foundCtor = true
		}
	}
	if !foundCtor {
		t.Fatalf("expected a constructor member")
	}
}

func TestParsePrivateFieldOutsideClassIsSyntaxError(t *testing.T) {
	p := New(lexer.New("x.#count;"), false)
	p.ParseProgram()
	if !p.Errors().HasErrors() {
		t.Fatalf("expected a syntax error referencing a private name outside any class body")
	}
}

func TestParseTemplateLiteralWithNestedObject(t *testing.T) {
	prog := parseProgram(t, "let s = `a${ {x: 1}.x }b`;", false)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	tmpl, ok := decl.Declarations[0].Init.(*ast.TemplateLiteral)
	if !ok {
		t.Fatalf("expected template literal, got %#v", decl.Declarations[0].Init)
	}
	if len(tmpl.Quasis) != 2 || len(tmpl.Expressions) != 1 {
		t.Fatalf("expected 2 quasis and 1 expression, got %d/%d", len(tmpl.Quasis), len(tmpl.Expressions))
	}
}

func TestParseForOfAndForIn(t *testing.T) {
	prog := parseProgram(t, "for (const x of xs) { y += x; } for (let k in obj) { z += k; }", false)
	if _, ok := prog.Body[0].(*ast.ForOfStatement); !ok {
		t.Fatalf("expected for-of statement, got %#v", prog.Body[0])
	}
	if _, ok := prog.Body[1].(*ast.ForInStatement); !ok {
		t.Fatalf("expected for-in statement, got %#v", prog.Body[1])
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	prog := parseProgram(t, "try { risky(); } catch (e) { handle(e); } finally { cleanup(); }", false)
	tr, ok := prog.Body[0].(*ast.TryStatement)
	if !ok {
		t.Fatalf("expected try statement, got %#v", prog.Body[0])
	}
	if tr.Catch == nil || tr.Finally == nil {
		t.Fatalf("expected both catch and finally clauses")
	}
}

func TestParseSwitchStatement(t *testing.T) {
	prog := parseProgram(t, "switch (x) { case 1: a(); break; default: b(); }", false)
	sw, ok := prog.Body[0].(*ast.SwitchStatement)
	if !ok {
		t.Fatalf("expected switch statement, got %#v", prog.Body[0])
	}
	if len(sw.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(sw.Cases))
	}
}

func TestParseGeneratorYieldAndAsyncAwait(t *testing.T) {
	prog := parseProgram(t, `
		function* gen() { yield 1; yield* other(); }
		async function f() { await g(); }
	`, false)
	gen, ok := prog.Body[0].(*ast.FunctionLiteral)
	if !ok || !gen.IsGenerator {
		t.Fatalf("expected generator function, got %#v", prog.Body[0])
	}
	yieldStmt, ok := gen.Body[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement")
	}
	if _, ok := yieldStmt.Expr.(*ast.YieldExpression); !ok {
		t.Fatalf("expected yield expression, got %#v", yieldStmt.Expr)
	}

	async, ok := prog.Body[1].(*ast.FunctionLiteral)
	if !ok || !async.IsAsync {
		t.Fatalf("expected async function, got %#v", prog.Body[1])
	}
}

func TestParseOptionalChainingAndNullish(t *testing.T) {
	prog := parseProgram(t, "let v = a?.b?.[c]?.(d) ?? fallback;", false)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	logical, ok := decl.Declarations[0].Init.(*ast.LogicalExpression)
	if !ok || logical.Operator != "??" {
		t.Fatalf("expected top-level ?? logical expression, got %#v", decl.Declarations[0].Init)
	}
}

func TestParseModuleImportExport(t *testing.T) {
	prog := parseProgram(t, `
		import def, { a, b as c } from "./mod.js";
		import * as ns from "./ns.js";
		export { def as theDefault };
		export default function named() {}
		export const z = 1;
	`, true)
	if !prog.IsModule {
		t.Fatalf("expected module program")
	}
	imp, ok := prog.Body[0].(*ast.ImportDeclaration)
	if !ok || len(imp.Specifiers) != 3 {
		t.Fatalf("expected import with 3 specifiers, got %#v", prog.Body[0])
	}
	if _, ok := prog.Body[2].(*ast.ExportNamedDeclaration); !ok {
		t.Fatalf("expected export-named declaration, got %#v", prog.Body[2])
	}
	if _, ok := prog.Body[3].(*ast.ExportDefaultDeclaration); !ok {
		t.Fatalf("expected export-default declaration, got %#v", prog.Body[3])
	}
}

func TestParseLabeledBreakContinue(t *testing.T) {
	prog := parseProgram(t, "outer: for (;;) { if (x) break outer; continue outer; }", false)
	if _, ok := prog.Body[0].(*ast.LabeledStatement); !ok {
		t.Fatalf("expected labeled statement, got %#v", prog.Body[0])
	}
}

func TestSynchronizeRecoversAfterSyntaxError(t *testing.T) {
	p := New(lexer.New("let = ; let y = 2;"), false)
	prog := p.ParseProgram()
	if !p.Errors().HasErrors() {
		t.Fatalf("expected a syntax error on the malformed first statement")
	}
	found := false
	for _, s := range prog.Body {
		if d, ok := s.(*ast.VariableDeclaration); ok && len(d.Declarations) == 1 {
			if id, ok := d.Declarations[0].Target.(*ast.Identifier); ok && id.Name == "y" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected recovery to still parse the second statement")
	}
}
