package ast

// ImportSpecifier is one binding introduced by an import declaration.
// Default imports and namespace imports (`import * as ns`) are represented
// as specifiers with Imported == nil (the ImportClause grammar).
type ImportSpecifier struct {
	Imported *Identifier // external name; nil for default/namespace
	Local    *Identifier
	Default  bool
	Namespace bool
}

// ImportDeclaration is `import ... from "module";` or a bare
// `import "module";` side-effect import.
type ImportDeclaration struct {
	Base
	Specifiers []ImportSpecifier
	Source     string
}

func (i *ImportDeclaration) statementNode() {}
func (i *ImportDeclaration) String() string { return "import ... from \"" + i.Source + "\";" }

// ExportSpecifier is one binding named by an `export { a as b }` clause.
type ExportSpecifier struct {
	Local    *Identifier
	Exported *Identifier
}

// ExportNamedDeclaration covers `export { a, b as c };`,
// `export { a } from "mod";`, and `export const/let/var/function/class ...`
// (Declaration set, Specifiers empty).
type ExportNamedDeclaration struct {
	Base
	Declaration Statement // nil when exporting existing bindings by name
	Specifiers  []ExportSpecifier
	Source      string // non-empty for re-export-from
}

func (e *ExportNamedDeclaration) statementNode() {}
func (e *ExportNamedDeclaration) String() string  { return "export ...;" }

// ExportDefaultDeclaration is `export default expr/decl;`.
type ExportDefaultDeclaration struct {
	Base
	Declaration Node // FunctionLiteral, ClassLiteral, or an Expression
}

func (e *ExportDefaultDeclaration) statementNode() {}
func (e *ExportDefaultDeclaration) String() string  { return "export default ...;" }

// ExportAllDeclaration is `export * from "mod";` or
// `export * as ns from "mod";`.
type ExportAllDeclaration struct {
	Base
	Exported *Identifier // nil for a bare `export *`
	Source   string
}

func (e *ExportAllDeclaration) statementNode() {}
func (e *ExportAllDeclaration) String() string  { return "export * from \"" + e.Source + "\";" }
