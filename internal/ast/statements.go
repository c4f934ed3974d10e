package ast

// ExpressionStatement wraps an expression used for its side effect.
type ExpressionStatement struct {
	Base
	Expr Expression
}

func (e *ExpressionStatement) statementNode() {}
func (e *ExpressionStatement) String() string { return e.Expr.String() + ";" }

// BlockStatement is `{ stmts... }`.
type BlockStatement struct {
	Base
	Body []Statement
}

func (b *BlockStatement) statementNode() {}
func (b *BlockStatement) String() string { return "{ ... }" }

// EmptyStatement is a bare `;`.
type EmptyStatement struct{ Base }

func (e *EmptyStatement) statementNode() {}
func (e *EmptyStatement) String() string { return ";" }

// DeclKind distinguishes var/let/const.
type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclLet
	DeclConst
)

type VariableDeclarator struct {
	Target Expression // Identifier, ArrayPattern, or ObjectPattern
	Init   Expression // nil if uninitialized
}

// VariableDeclaration is `var/let/const a = 1, b;`.
type VariableDeclaration struct {
	Base
	Kind         DeclKind
	Declarations []VariableDeclarator
}

func (v *VariableDeclaration) statementNode() {}
func (v *VariableDeclaration) String() string { return v.Literal }

// IfStatement is `if (test) consequent else alternate`.
type IfStatement struct {
	Base
	Test       Expression
	Consequent Statement
	Alternate  Statement // nil if no else
}

func (i *IfStatement) statementNode() {}
func (i *IfStatement) String() string { return "if (" + i.Test.String() + ") ..." }

// ForStatement is the classic C-style for loop; Init may be a
// VariableDeclaration or an Expression, or nil.
type ForStatement struct {
	Base
	Init   Node
	Test   Expression
	Update Expression
	Body   Statement
}

func (f *ForStatement) statementNode() {}
func (f *ForStatement) String() string { return "for (...) ..." }

// ForInStatement is `for (left in right) body`.
type ForInStatement struct {
	Base
	Left  Node // VariableDeclaration (single declarator) or assignment target Expression
	Right Expression
	Body  Statement
}

func (f *ForInStatement) statementNode() {}
func (f *ForInStatement) String() string { return "for (... in ...) ..." }

// ForOfStatement is `for (left of right) body`; IsAwait marks `for await`.
type ForOfStatement struct {
	Base
	Left    Node
	Right   Expression
	Body    Statement
	IsAwait bool
}

func (f *ForOfStatement) statementNode() {}
func (f *ForOfStatement) String() string { return "for (... of ...) ..." }

// WhileStatement is `while (test) body`.
type WhileStatement struct {
	Base
	Test Expression
	Body Statement
}

func (w *WhileStatement) statementNode() {}
func (w *WhileStatement) String() string { return "while (...) ..." }

// DoWhileStatement is `do body while (test);`.
type DoWhileStatement struct {
	Base
	Body Statement
	Test Expression
}

func (d *DoWhileStatement) statementNode() {}
func (d *DoWhileStatement) String() string { return "do ... while (...)" }

// BreakStatement is `break;` or `break label;`.
type BreakStatement struct {
	Base
	Label *Identifier
}

func (b *BreakStatement) statementNode() {}
func (b *BreakStatement) String() string { return "break;" }

// ContinueStatement is `continue;` or `continue label;`.
type ContinueStatement struct {
	Base
	Label *Identifier
}

func (c *ContinueStatement) statementNode() {}
func (c *ContinueStatement) String() string { return "continue;" }

// ReturnStatement is `return expr;` or bare `return;`.
type ReturnStatement struct {
	Base
	Argument Expression // nil for bare return
}

func (r *ReturnStatement) statementNode() {}
func (r *ReturnStatement) String() string { return "return ...;" }

// ThrowStatement is `throw expr;`.
type ThrowStatement struct {
	Base
	Argument Expression
}

func (t *ThrowStatement) statementNode() {}
func (t *ThrowStatement) String() string { return "throw ...;" }

// CatchClause is the `catch (param) body` part of a TryStatement; Param is
// nil for a parameterless catch.
type CatchClause struct {
	Param Expression // Identifier, ArrayPattern, or ObjectPattern
	Body  *BlockStatement
}

// TryStatement is `try block catch(e) handler finally fin`; Catch and
// Finally are independently optional (but not both absent).
type TryStatement struct {
	Base
	Block   *BlockStatement
	Catch   *CatchClause
	Finally *BlockStatement
}

func (t *TryStatement) statementNode() {}
func (t *TryStatement) String() string { return "try ... " }

// SwitchCase is one `case test:`/`default:` arm.
type SwitchCase struct {
	Test       Expression // nil for default
	Consequent []Statement
}

// SwitchStatement is `switch (disc) { cases... }`.
type SwitchStatement struct {
	Base
	Discriminant Expression
	Cases        []SwitchCase
}

func (s *SwitchStatement) statementNode() {}
func (s *SwitchStatement) String() string { return "switch (...) { ... }" }

// LabeledStatement is `label: statement`.
type LabeledStatement struct {
	Base
	Label *Identifier
	Body  Statement
}

func (l *LabeledStatement) statementNode() {}
func (l *LabeledStatement) String() string { return l.Label.Name + ": ..." }

// DebuggerStatement is `debugger;`. The interpreter treats it as a no-op
// (no host-debugger-hook support is modeled).
type DebuggerStatement struct{ Base }

func (d *DebuggerStatement) statementNode() {}
func (d *DebuggerStatement) String() string { return "debugger;" }
