// Package codegen lowers internal/ast trees into internal/bytecode chunks
// (component H, §4.6). Grounded on go-dws's internal/bytecode
// compiler*.go split (compiler_core.go's Compiler/newChildCompiler nesting,
// compiler_expressions.go/compiler_statements.go's per-node-kind dispatch,
// compiler_functions.go's nested-function handling), generalized from
// Pascal's single-pass procedure/statement grammar to ECMAScript's
// expression-oriented one: every expression lowers to "leave the result in
// a newly allocated register", matching the source language's value-
// producing grammar rather than go-dws's statement/expression split.
//
// Named bindings never live in registers: they are resolved through
// internal/envrec at run time via OpGetBinding/OpSetBinding/OpInitBinding
//, so the register file is purely a stack of temporaries for
// expression evaluation (the "simple local-allocation scheme"),
// freed back to a saved mark once an expression's value has been consumed.
//
// Jump operands are relative signed offsets (as int16 bit patterns stored
// in a uint16 word) measured from the instruction immediately following
// the jump, matching internal/bytecode's documented OpJump* semantics.
package codegen

import (
	"fmt"

	"github.com/vesper-lang/vesper/internal/ast"
	"github.com/vesper-lang/vesper/internal/bytecode"
)

// Output is the result of compiling one Program: the entry chunk (index
// MainIndex into Functions) plus every nested function discovered during
// compilation, flattened into one table so OpMakeFunction operands are
// stable table indices (the function-decl-group table idea,
// generalized from per-scope groups to one flat program-wide table since
// ECMAScript function expressions can appear anywhere an expression can).
type Output struct {
	Functions []*bytecode.Function
	MainIndex int
}

// regAlloc is the "stack of temporary registers" calls for:
// alloc() pushes, reset() pops back to a saved mark. Named bindings never
// occupy a register slot, so there is no reuse bookkeeping beyond the
// high-water mark recorded into Chunk.RegNum.
type regAlloc struct {
	top uint16
	max uint16
}

func (r *regAlloc) alloc() uint16 {
	reg := r.top
	r.top++
	if r.top > r.max {
		r.max = r.top
	}
	return reg
}

func (r *regAlloc) mark() uint16      { return r.top }
func (r *regAlloc) reset(mark uint16) { r.top = mark }

// loopContext tracks the break/continue jump-patch lists for one enclosing
// loop or switch, plus an optional label so `break label`/`continue label`
// can unwind past more than one nesting level (the label-stack).
type loopContext struct {
	label         string
	isSwitch      bool // switch bodies accept `break` but not `continue`
	breakJumps    []int
	continueJumps []int
	// continueTarget, once known (loop update/condition re-check position),
	// is patched into every pending continueJumps entry by the statement
	// compiler that owns this loop.
}

// Compiler lowers one function body (or the top-level program) into a
// Chunk, sharing the Output function table with every nested compiler
// created via newChildCompiler for nested function/arrow/class bodies —
// mirrors go-dws's enclosing-chain Compiler nesting in compiler_core.go.
type Compiler struct {
	enclosing *Compiler
	out       *Output

	chunk *bytecode.Chunk
	regs  regAlloc

	loopStack []*loopContext

	// pendingLabel, when non-empty, is consumed by the next pushLoop call
	// so a LabeledStatement wrapping a loop attaches its label to that
	// loop's context instead of synthesizing a separate one.
	pendingLabel string

	// declKindActive/declKind let compileAssignTo's Identifier case emit
	// OpInitBinding instead of OpSetBinding while lowering a destructuring
	// declaration (`let [a, b] = ...`) through the same pattern-walking
	// code a plain destructuring assignment uses.
	declKindActive bool
	declKind       ast.DeclKind

	inFunction  bool
	inGenerator bool
	inAsync     bool
	inClass     bool
}

// CompileError wraps a codegen-time failure (distinct from a parse-time
// diag.Diagnostic: these indicate a malformed or unsupported AST shape
// reaching codegen, not a source-level syntax error, which the parser
// already reports and recovers from before codegen ever runs).
type CompileError struct {
	Msg string
}

func (e *CompileError) Error() string { return e.Msg }

func newRootCompiler() *Compiler {
	c := &Compiler{out: &Output{}, chunk: bytecode.NewChunk()}
	return c
}

func (c *Compiler) newChildCompiler() *Compiler {
	child := &Compiler{
		enclosing:  c,
		out:        c.out,
		chunk:      bytecode.NewChunk(),
		inFunction: true,
	}
	return child
}

// Compile lowers a whole script or module Program into an Output whose
// Functions[MainIndex] is the top-level entry chunk.
func Compile(prog *ast.Program) (out *Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*CompileError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()

	c := newRootCompiler()
	c.compileTopLevel(prog.Body)
	c.chunk.Emit(bytecode.OpReturn, c.loadUndefined())

	main := bytecode.NewFunction("<script>", c.chunk, 0)
	c.chunk.RegNum = int(c.regs.max)
	c.out.Functions = append(c.out.Functions, main)
	c.out.MainIndex = len(c.out.Functions) - 1
	return c.out, nil
}

func (c *Compiler) fail(format string, args ...any) {
	panic(&CompileError{Msg: fmt.Sprintf(format, args...)})
}

// emitJump appends a jump-family instruction with a placeholder offset in
// its last operand slot and returns the instruction's offset for later
// patching via patchJumpHere/patchJumpTo.
func (c *Compiler) emitJump(op bytecode.OpCode, leadingOperands ...uint16) int {
	operands := append(append([]uint16{}, leadingOperands...), 0)
	return c.chunk.Emit(op, operands...)
}

// patchJumpHere patches the jump at instrOffset to target the current end
// of the instruction stream (i.e. "jump to here").
func (c *Compiler) patchJumpHere(instrOffset int) {
	c.patchJumpTo(instrOffset, len(c.chunk.Code))
}

func (c *Compiler) patchJumpTo(instrOffset, target int) {
	op := bytecode.OpCode(c.chunk.Code[instrOffset])
	n := op.NumOperands()
	after := instrOffset + 1 + n
	offset := target - after
	c.chunk.PatchJumpOperand(instrOffset, n-1, uint16(int16(offset)))
}

func (c *Compiler) loadUndefined() uint16 {
	r := c.regs.alloc()
	c.chunk.Emit(bytecode.OpLoadUndefined, r)
	return r
}

func (c *Compiler) bindingRef(name string) uint16 {
	return uint16(c.chunk.AddBinding(name))
}

func (c *Compiler) propRef(key string, computed bool) uint16 {
	return uint16(c.chunk.AddPropRef(key, computed))
}

func (c *Compiler) pushLoop(label string, isSwitch bool) *loopContext {
	if label == "" && c.pendingLabel != "" {
		label = c.pendingLabel
	}
	c.pendingLabel = ""
	lc := &loopContext{label: label, isSwitch: isSwitch}
	c.loopStack = append(c.loopStack, lc)
	return lc
}

func (c *Compiler) popLoop() {
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
}

// findLoop returns the loop/switch context break/continue should target:
// the innermost one when label is empty, or the one carrying the matching
// label (walking outward, since a label can annotate a loop several
// frames up the loopStack from an inner unlabeled switch). forContinue
// excludes switch contexts, since `continue` never targets one.
func (c *Compiler) findLoop(label string, forContinue bool) *loopContext {
	for i := len(c.loopStack) - 1; i >= 0; i-- {
		lc := c.loopStack[i]
		if forContinue && lc.isSwitch {
			continue
		}
		if label == "" || lc.label == label {
			return lc
		}
	}
	return nil
}
