package codegen

import (
	"github.com/vesper-lang/vesper/internal/ast"
	"github.com/vesper-lang/vesper/internal/bytecode"
)

// compileTopLevel compiles a script or module body directly into c.chunk,
// hoisting var/function declarations first the way a function body does
// (the top level is itself a var-scope).
func (c *Compiler) compileTopLevel(stmts []ast.Statement) {
	c.hoistInto(stmts)
	c.compileStatements(stmts)
}

// hoistInto emits the var/function hoisting prologue for one var-scope
// (a function body or the top level): every hoisted var name becomes an
// uninitialized (undefined-valued) binding before any statement runs, and
// every hoisted function declaration is evaluated and bound immediately
// (hoisting order: functions take priority over same-named
// vars).
func (c *Compiler) hoistInto(stmts []ast.Statement) {
	for _, name := range hoistVarNames(stmts) {
		ref := c.bindingRef(name)
		c.chunk.Emit(bytecode.OpCreateGlobalVar, ref)
	}
	for _, s := range stmts {
		if fn, ok := s.(*ast.FunctionLiteral); ok && fn.Name != nil {
			mark := c.regs.mark()
			fnReg := c.compileFunctionExpr(fn)
			c.chunk.Emit(bytecode.OpInitBinding, fnReg, c.bindingRef(fn.Name.Name))
			c.regs.reset(mark)
		}
	}
}

func (c *Compiler) compileStatements(stmts []ast.Statement) {
	for _, s := range stmts {
		c.compileStatement(s)
	}
}

// compileStatement lowers one statement. Every case resets the register
// stack to its entry mark once done, since statements never leave a
// value behind for a caller to consume.
func (c *Compiler) compileStatement(s ast.Statement) {
	mark := c.regs.mark()
	defer c.regs.reset(mark)

	switch n := s.(type) {
	case *ast.ExpressionStatement:
		c.compileExpression(n.Expr)
	case *ast.EmptyStatement, *ast.DebuggerStatement:
		// no-op
	case *ast.BlockStatement:
		c.compileBlock(n.Body)
	case *ast.VariableDeclaration:
		c.compileVariableDeclaration(n)
	case *ast.FunctionLiteral:
		// Declarations were already bound by hoistInto; a FunctionLiteral
		// reached here as a statement is a no-op re-visit.
	case *ast.ClassLiteral:
		val := c.compileClassLiteral(n)
		if n.Name != nil {
			c.chunk.Emit(bytecode.OpInitBinding, val, c.bindingRef(n.Name.Name))
		}
	case *ast.IfStatement:
		c.compileIfStatement(n)
	case *ast.WhileStatement:
		c.compileWhileStatement(n)
	case *ast.DoWhileStatement:
		c.compileDoWhileStatement(n)
	case *ast.ForStatement:
		c.compileForStatement(n)
	case *ast.ForInStatement:
		c.compileForInStatement(n)
	case *ast.ForOfStatement:
		c.compileForOfStatement(n)
	case *ast.BreakStatement:
		c.compileBreakStatement(n)
	case *ast.ContinueStatement:
		c.compileContinueStatement(n)
	case *ast.ReturnStatement:
		var val uint16
		if n.Argument != nil {
			val = c.compileExpression(n.Argument)
		} else {
			val = c.loadUndefined()
		}
		c.chunk.Emit(bytecode.OpReturn, val)
	case *ast.ThrowStatement:
		val := c.compileExpression(n.Argument)
		c.chunk.Emit(bytecode.OpThrow, val)
	case *ast.TryStatement:
		c.compileTryStatement(n)
	case *ast.SwitchStatement:
		c.compileSwitchStatement(n)
	case *ast.LabeledStatement:
		c.compileLabeledStatement(n)
	case *ast.ImportDeclaration:
		// Import bindings are created directly in the module environment
		// by internal/modules during linking, before this chunk ever
		// runs; nothing to emit here.
	case *ast.ExportNamedDeclaration:
		if n.Declaration != nil {
			c.compileStatement(n.Declaration)
		}
	case *ast.ExportDefaultDeclaration:
		c.compileExportDefault(n)
	case *ast.ExportAllDeclaration:
		// Re-export wiring is resolved by internal/modules' resolve_export
		// walk; no bytecode to emit for the declaration itself.
	default:
		c.fail("codegen: unsupported statement node %T", s)
	}
}

// compileBlock pushes a declarative environment carrying this block's
// lexical (let/const/class/function) names, compiles its body, then pops
// the environment (block scoping).
func (c *Compiler) compileBlock(stmts []ast.Statement) {
	decls := blockLexicalDecls(stmts)
	if len(decls) == 0 {
		c.compileStatements(stmts)
		return
	}
	c.chunk.Emit(bytecode.OpPushDeclarative)
	for _, s := range stmts {
		if fn, ok := s.(*ast.FunctionLiteral); ok && fn.Name != nil {
			mark := c.regs.mark()
			fnReg := c.compileFunctionExpr(fn)
			c.chunk.Emit(bytecode.OpInitBinding, fnReg, c.bindingRef(fn.Name.Name))
			c.regs.reset(mark)
		}
	}
	c.compileStatements(stmts)
	c.chunk.Emit(bytecode.OpPopEnv)
}

func (c *Compiler) compileVariableDeclaration(n *ast.VariableDeclaration) {
	for _, d := range n.Declarations {
		if d.Init == nil {
			if n.Kind == ast.DeclVar {
				continue // already undefined from hoisting
			}
			undef := c.loadUndefined()
			c.bindPattern(d.Target, undef, n.Kind)
			continue
		}
		mark := c.regs.mark()
		val := c.compileExpression(d.Init)
		c.bindPattern(d.Target, val, n.Kind)
		c.regs.reset(mark)
	}
}

// bindPattern initializes every name a declaration's binding target
// introduces; DeclVar uses OpSetBinding (the slot already exists from
// hoisting), let/const use OpInitBinding (first write into a
// freshly-reserved lexical slot).
func (c *Compiler) bindPattern(target ast.Expression, val uint16, kind ast.DeclKind) {
	if id, ok := target.(*ast.Identifier); ok {
		if kind == ast.DeclVar {
			c.chunk.Emit(bytecode.OpSetBinding, val, c.bindingRef(id.Name))
		} else {
			c.chunk.Emit(bytecode.OpInitBinding, val, c.bindingRef(id.Name))
		}
		return
	}
	// Destructuring declarations reuse the assignment-target machinery;
	// each leaf Identifier recurses back through bindPattern via a small
	// adapter so var/let/const initialization semantics still apply.
	c.bindPatternGeneric(target, val, kind)
}

func (c *Compiler) bindPatternGeneric(target ast.Expression, val uint16, kind ast.DeclKind) {
	switch t := target.(type) {
	case *ast.ArrayPattern:
		c.destructureArrayWithKind(t, val, kind)
	case *ast.ObjectPattern:
		c.destructureObjectWithKind(t, val, kind)
	case *ast.AssignmentPattern:
		useDefault := c.emitJump(bytecode.OpJumpIfNullish, val)
		after := c.emitJump(bytecode.OpJump)
		c.patchJumpHere(useDefault)
		def := c.compileExpression(t.Default)
		c.chunk.Emit(bytecode.OpMove, val, def)
		c.patchJumpHere(after)
		c.bindPattern(t.Target, val, kind)
	default:
		c.fail("codegen: unsupported declaration target %T", target)
	}
}

// destructureArrayWithKind/destructureObjectWithKind mirror
// destructureArray/destructureObject but bind leaves via bindPattern
// (var/let/const) instead of compileAssignTo (plain assignment), since a
// declaration's destructuring introduces new bindings rather than storing
// into existing ones.
func (c *Compiler) destructureArrayWithKind(pat *ast.ArrayPattern, srcReg uint16, kind ast.DeclKind) {
	c.withDeclKind(kind, func() { c.destructureArray(pat, srcReg) })
}

func (c *Compiler) destructureObjectWithKind(pat *ast.ObjectPattern, srcReg uint16, kind ast.DeclKind) {
	c.withDeclKind(kind, func() { c.destructureObject(pat, srcReg) })
}

// withDeclKind temporarily switches compileAssignTo's Identifier case to
// emit OpInitBinding/OpSetBinding per kind instead of assuming a plain
// assignment, by pushing kind onto the compiler for the duration of fn.
func (c *Compiler) withDeclKind(kind ast.DeclKind, fn func()) {
	prev := c.declKind
	prevActive := c.declKindActive
	c.declKind = kind
	c.declKindActive = true
	fn()
	c.declKind = prev
	c.declKindActive = prevActive
}

func (c *Compiler) compileIfStatement(n *ast.IfStatement) {
	test := c.compileExpression(n.Test)
	elseJump := c.emitJump(bytecode.OpJumpIfFalse, test)
	c.regs.reset(test)
	c.compileStatement(n.Consequent)
	if n.Alternate == nil {
		c.patchJumpHere(elseJump)
		return
	}
	done := c.emitJump(bytecode.OpJump)
	c.patchJumpHere(elseJump)
	c.compileStatement(n.Alternate)
	c.patchJumpHere(done)
}

func (c *Compiler) compileWhileStatement(n *ast.WhileStatement) {
	lc := c.pushLoop("", false)
	start := len(c.chunk.Code)
	test := c.compileExpression(n.Test)
	exit := c.emitJump(bytecode.OpJumpIfFalse, test)
	c.regs.reset(test)
	c.compileStatement(n.Body)
	back := c.emitJump(bytecode.OpJump)
	c.patchJumpTo(back, start)
	c.patchJumpHere(exit)
	for _, j := range lc.continueJumps {
		c.patchJumpTo(j, start)
	}
	for _, j := range lc.breakJumps {
		c.patchJumpHere(j)
	}
	c.popLoop()
}

func (c *Compiler) compileDoWhileStatement(n *ast.DoWhileStatement) {
	lc := c.pushLoop("", false)
	start := len(c.chunk.Code)
	c.compileStatement(n.Body)
	testStart := len(c.chunk.Code)
	test := c.compileExpression(n.Test)
	back := c.emitJump(bytecode.OpJumpIfTrue, test)
	c.patchJumpTo(back, start)
	for _, j := range lc.continueJumps {
		c.patchJumpTo(j, testStart)
	}
	for _, j := range lc.breakJumps {
		c.patchJumpHere(j)
	}
	c.popLoop()
}

func (c *Compiler) compileForStatement(n *ast.ForStatement) {
	wrapBlock := false
	if decl, ok := n.Init.(*ast.VariableDeclaration); ok && decl.Kind != ast.DeclVar {
		wrapBlock = true
		c.chunk.Emit(bytecode.OpPushDeclarative)
	}
	if n.Init != nil {
		switch init := n.Init.(type) {
		case *ast.VariableDeclaration:
			c.compileVariableDeclaration(init)
		case ast.Expression:
			mark := c.regs.mark()
			c.compileExpression(init)
			c.regs.reset(mark)
		}
	}
	lc := c.pushLoop("", false)
	start := len(c.chunk.Code)
	var exit int
	hasTest := n.Test != nil
	if hasTest {
		mark := c.regs.mark()
		test := c.compileExpression(n.Test)
		exit = c.emitJump(bytecode.OpJumpIfFalse, test)
		c.regs.reset(mark)
	}
	c.compileStatement(n.Body)
	updateStart := len(c.chunk.Code)
	if n.Update != nil {
		mark := c.regs.mark()
		c.compileExpression(n.Update)
		c.regs.reset(mark)
	}
	back := c.emitJump(bytecode.OpJump)
	c.patchJumpTo(back, start)
	if hasTest {
		c.patchJumpHere(exit)
	}
	for _, j := range lc.continueJumps {
		c.patchJumpTo(j, updateStart)
	}
	for _, j := range lc.breakJumps {
		c.patchJumpHere(j)
	}
	c.popLoop()
	if wrapBlock {
		c.chunk.Emit(bytecode.OpPopEnv)
	}
}

// compileForInOfCommon emits the shared skeleton for for-in/for-of:
// obtain an iterator/enumerator over right, loop binding each produced
// value to left, run body.
func (c *Compiler) compileForInOfCommon(left ast.Node, right ast.Expression, body ast.Statement, isOf bool, isAwait bool) {
	rhs := c.compileExpression(right)
	iterReg := c.regs.alloc()
	asyncFlag := uint16(0)
	if isAwait {
		asyncFlag = 1
	}
	if isOf {
		c.chunk.Emit(bytecode.OpGetIterator, iterReg, rhs, asyncFlag)
	} else {
		// for-in enumerates string keys; modeled as GetIterator over the
		// key-enumeration iterable the runtime produces for objects
		// (the [[OwnPropertyKeys]]-driven for-in semantics),
		// keeping one opcode family for both loop forms.
		c.chunk.Emit(bytecode.OpGetIterator, iterReg, rhs, 2)
	}

	lc := c.pushLoop("", false)
	start := len(c.chunk.Code)
	c.chunk.Emit(bytecode.OpIteratorNext, iterReg)
	doneReg := c.regs.alloc()
	c.chunk.Emit(bytecode.OpIteratorDone, doneReg)
	exit := c.emitJump(bytecode.OpJumpIfTrue, doneReg)
	c.regs.reset(doneReg)
	val := c.regs.alloc()
	c.chunk.Emit(bytecode.OpIteratorValue, val)

	wrapBlock := false
	if decl, ok := left.(*ast.VariableDeclaration); ok {
		if decl.Kind != ast.DeclVar {
			wrapBlock = true
			c.chunk.Emit(bytecode.OpPushDeclarative)
		}
		c.bindPattern(decl.Declarations[0].Target, val, decl.Kind)
	} else if expr, ok := left.(ast.Expression); ok {
		c.compileAssignTo(expr, val)
	}

	c.compileStatement(body)
	if wrapBlock {
		c.chunk.Emit(bytecode.OpPopEnv)
	}
	back := c.emitJump(bytecode.OpJump)
	c.patchJumpTo(back, start)
	c.patchJumpHere(exit)
	for _, j := range lc.continueJumps {
		c.patchJumpTo(j, start)
	}
	for _, j := range lc.breakJumps {
		c.patchJumpHere(j)
	}
	c.popLoop()
}

func (c *Compiler) compileForInStatement(n *ast.ForInStatement) {
	c.compileForInOfCommon(n.Left, n.Right, n.Body, false, false)
}

func (c *Compiler) compileForOfStatement(n *ast.ForOfStatement) {
	c.compileForInOfCommon(n.Left, n.Right, n.Body, true, n.IsAwait)
}

func (c *Compiler) compileBreakStatement(n *ast.BreakStatement) {
	label := ""
	if n.Label != nil {
		label = n.Label.Name
	}
	lc := c.findLoop(label, false)
	if lc == nil {
		c.fail("codegen: break outside loop/switch")
	}
	j := c.emitJump(bytecode.OpJump)
	lc.breakJumps = append(lc.breakJumps, j)
}

func (c *Compiler) compileContinueStatement(n *ast.ContinueStatement) {
	label := ""
	if n.Label != nil {
		label = n.Label.Name
	}
	lc := c.findLoop(label, true)
	if lc == nil {
		c.fail("codegen: continue outside loop")
	}
	j := c.emitJump(bytecode.OpJump)
	lc.continueJumps = append(lc.continueJumps, j)
}

// compileTryStatement has no dedicated try-table opcode; codegen instead
// relies on internal/vm scanning, at throw time, the static PC ranges
// recorded in Chunk.TryRanges directly below, mirroring go-dws's
// parallel approach of recording protected ranges rather than inventing
// push/pop-handler opcodes.
func (c *Compiler) compileTryStatement(n *ast.TryStatement) {
	start := len(c.chunk.Code)
	c.compileBlock(n.Block.Body)
	end := len(c.chunk.Code)

	var catchStart int
	var catchReg uint16
	hasCatch := n.Catch != nil
	if hasCatch {
		afterCatch := c.emitJump(bytecode.OpJump)
		catchStart = len(c.chunk.Code)
		catchReg = c.regs.alloc()
		c.chunk.Emit(bytecode.OpPushDeclarative)
		if n.Catch.Param != nil {
			for _, name := range bindingNames(n.Catch.Param) {
				c.bindingRef(name)
			}
			c.bindPattern(n.Catch.Param, catchReg, ast.DeclLet)
		}
		c.compileStatements(n.Catch.Body.Body)
		c.chunk.Emit(bytecode.OpPopEnv)
		c.regs.reset(catchReg)
		c.patchJumpHere(afterCatch)
	}

	var finallyPC, finallyEnd int
	hasFinally := n.Finally != nil
	if hasFinally {
		finallyPC = len(c.chunk.Code)
		c.compileBlock(n.Finally.Body)
		finallyEnd = len(c.chunk.Code)
	}

	c.chunk.TryRanges = append(c.chunk.TryRanges, bytecode.TryRange{
		Start: start, End: end, HandlerPC: catchStart, CatchReg: catchReg, HasCatch: hasCatch,
		FinallyPC: finallyPC, FinallyEnd: finallyEnd, HasFinally: hasFinally,
	})
}

func (c *Compiler) compileSwitchStatement(n *ast.SwitchStatement) {
	disc := c.compileExpression(n.Discriminant)
	lc := c.pushLoop("", true)

	type pendingCase struct {
		jump  int
		stmts []ast.Statement
	}
	var pending []pendingCase
	defaultIndex := -1
	for i, cs := range n.Cases {
		if cs.Test == nil {
			defaultIndex = i
			continue
		}
		mark := c.regs.mark()
		testVal := c.compileExpression(cs.Test)
		eq := c.regs.alloc()
		c.chunk.Emit(bytecode.OpStrictEq, eq, disc, testVal)
		j := c.emitJump(bytecode.OpJumpIfTrue, eq)
		c.regs.reset(mark)
		pending = append(pending, pendingCase{jump: j, stmts: cs.Consequent})
	}
	defaultJump := c.emitJump(bytecode.OpJump)
	if defaultIndex < 0 {
		lc.breakJumps = append(lc.breakJumps, defaultJump)
	}

	bodyStarts := make([]int, len(n.Cases))
	for i, cs := range n.Cases {
		bodyStarts[i] = len(c.chunk.Code)
		c.compileStatements(cs.Consequent)
	}
	for idx, p := range pending {
		i := idx
		if defaultIndex >= 0 && idx >= defaultIndex {
			i = idx + 1
		}
		c.patchJumpTo(p.jump, bodyStarts[i])
	}
	if defaultIndex >= 0 {
		c.patchJumpTo(defaultJump, bodyStarts[defaultIndex])
	}
	for _, j := range lc.breakJumps {
		c.patchJumpHere(j)
	}
	c.popLoop()
}

func (c *Compiler) compileLabeledStatement(n *ast.LabeledStatement) {
	switch body := n.Body.(type) {
	case *ast.WhileStatement, *ast.DoWhileStatement, *ast.ForStatement,
		*ast.ForInStatement, *ast.ForOfStatement:
		c.compileLabeledLoop(n.Label.Name, body)
	default:
		// A label on a non-loop statement only matters to a `break
		// label;` inside it; model it as a zero-iteration "loop" so
		// findLoop can resolve the label.
		lc := c.pushLoop(n.Label.Name, true)
		c.compileStatement(n.Body)
		for _, j := range lc.breakJumps {
			c.patchJumpHere(j)
		}
		c.popLoop()
	}
}

// compileLabeledLoop re-enters the matching loop compiler with the label
// pre-attached, by temporarily recording the pending label so the loop's
// own pushLoop call picks it up instead of using an empty label.
func (c *Compiler) compileLabeledLoop(label string, body ast.Statement) {
	c.pendingLabel = label
	c.compileStatement(body)
	c.pendingLabel = ""
}

func (c *Compiler) compileExportDefault(n *ast.ExportDefaultDeclaration) {
	switch d := n.Declaration.(type) {
	case *ast.FunctionLiteral:
		val := c.compileFunctionExpr(d)
		if d.Name != nil {
			c.chunk.Emit(bytecode.OpInitBinding, val, c.bindingRef(d.Name.Name))
		} else {
			c.chunk.Emit(bytecode.OpInitBinding, val, c.bindingRef("*default*"))
		}
	case *ast.ClassLiteral:
		val := c.compileClassLiteral(d)
		if d.Name != nil {
			c.chunk.Emit(bytecode.OpInitBinding, val, c.bindingRef(d.Name.Name))
		} else {
			c.chunk.Emit(bytecode.OpInitBinding, val, c.bindingRef("*default*"))
		}
	case ast.Expression:
		val := c.compileExpression(d)
		c.chunk.Emit(bytecode.OpInitBinding, val, c.bindingRef("*default*"))
	}
}
