package codegen

import "github.com/vesper-lang/vesper/internal/ast"

// bindingNames flattens a binding target (Identifier, ArrayPattern,
// ObjectPattern, AssignmentPattern, RestElement) into the list of names it
// declares, used both by var-hoisting and by destructuring-assignment
// codegen to know which bindings a pattern introduces.
func bindingNames(target ast.Expression) []string {
	switch t := target.(type) {
	case *ast.Identifier:
		return []string{t.Name}
	case *ast.AssignmentPattern:
		return bindingNames(t.Target)
	case *ast.RestElement:
		return bindingNames(t.Argument)
	case *ast.ArrayPattern:
		var names []string
		for _, el := range t.Elements {
			if el == nil {
				continue
			}
			names = append(names, bindingNames(el)...)
		}
		return names
	case *ast.ObjectPattern:
		var names []string
		for _, p := range t.Properties {
			names = append(names, bindingNames(p.Value)...)
		}
		if t.Rest != nil {
			names = append(names, bindingNames(t.Rest)...)
		}
		return names
	}
	return nil
}

// hoistVarNames walks stmts recursively, collecting every `var`-declared
// and function-declared name in this function's scope for hoisting,
// descending into nested blocks/control-flow bodies (var is
// function-scoped, not block-scoped) but never into a nested function's
// own body (that function hoists its own vars independently).
func hoistVarNames(stmts []ast.Statement) []string {
	var names []string
	var walk func(s ast.Statement)
	walk = func(s ast.Statement) {
		switch n := s.(type) {
		case *ast.VariableDeclaration:
			if n.Kind == ast.DeclVar {
				for _, d := range n.Declarations {
					names = append(names, bindingNames(d.Target)...)
				}
			}
		case *ast.FunctionLiteral:
			if n.Name != nil {
				names = append(names, n.Name.Name)
			}
		case *ast.BlockStatement:
			for _, inner := range n.Body {
				walk(inner)
			}
		case *ast.IfStatement:
			walk(n.Consequent)
			if n.Alternate != nil {
				walk(n.Alternate)
			}
		case *ast.ForStatement:
			if initStmt, ok := n.Init.(*ast.VariableDeclaration); ok && initStmt.Kind == ast.DeclVar {
				for _, d := range initStmt.Declarations {
					names = append(names, bindingNames(d.Target)...)
				}
			}
			walk(n.Body)
		case *ast.ForInStatement:
			if decl, ok := n.Left.(*ast.VariableDeclaration); ok && decl.Kind == ast.DeclVar {
				for _, d := range decl.Declarations {
					names = append(names, bindingNames(d.Target)...)
				}
			}
			walk(n.Body)
		case *ast.ForOfStatement:
			if decl, ok := n.Left.(*ast.VariableDeclaration); ok && decl.Kind == ast.DeclVar {
				for _, d := range decl.Declarations {
					names = append(names, bindingNames(d.Target)...)
				}
			}
			walk(n.Body)
		case *ast.WhileStatement:
			walk(n.Body)
		case *ast.DoWhileStatement:
			walk(n.Body)
		case *ast.TryStatement:
			for _, inner := range n.Block.Body {
				walk(inner)
			}
			if n.Catch != nil {
				for _, inner := range n.Catch.Body.Body {
					walk(inner)
				}
			}
			if n.Finally != nil {
				for _, inner := range n.Finally.Body {
					walk(inner)
				}
			}
		case *ast.SwitchStatement:
			for _, c := range n.Cases {
				for _, inner := range c.Consequent {
					walk(inner)
				}
			}
		case *ast.LabeledStatement:
			walk(n.Body)
		}
	}
	for _, s := range stmts {
		walk(s)
	}
	return names
}

// lexicalDecl is one let/const/class/function declared directly (not
// through a nested block) in a statement list, the unit blockLexicalDecls
// collects so the compiler can decide whether a block needs its own
// declarative environment. The names are not reserved at block entry:
// OpPushDeclarative pushes an empty environment and each binding comes
// into existence when its OpInitBinding runs, so the temporal dead zone
// is not modeled.
type lexicalDecl struct {
	name string
	kind ast.DeclKind // DeclLet/DeclConst; functions/classes use DeclLet's slot shape
}

// blockLexicalDecls does a SHALLOW scan (no descent into nested blocks or
// functions) of stmts for let/const/class/function-declaration names
// introduced directly in this block.
func blockLexicalDecls(stmts []ast.Statement) []lexicalDecl {
	var decls []lexicalDecl
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.VariableDeclaration:
			if n.Kind != ast.DeclVar {
				for _, d := range n.Declarations {
					for _, name := range bindingNames(d.Target) {
						decls = append(decls, lexicalDecl{name: name, kind: n.Kind})
					}
				}
			}
		case *ast.FunctionLiteral:
			if n.Name != nil {
				decls = append(decls, lexicalDecl{name: n.Name.Name, kind: ast.DeclLet})
			}
		case *ast.ClassLiteral:
			if n.Name != nil {
				decls = append(decls, lexicalDecl{name: n.Name.Name, kind: ast.DeclLet})
			}
		}
	}
	return decls
}
