package codegen

import (
	"testing"

	"github.com/vesper-lang/vesper/internal/ast"
	"github.com/vesper-lang/vesper/internal/bytecode"
	"github.com/vesper-lang/vesper/internal/lexer"
	"github.com/vesper-lang/vesper/internal/parser"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src), false)
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("unexpected parse errors for %q:\n%s", src, p.Errors().Format(false))
	}
	return prog
}

func compileSrc(t *testing.T, src string) *Output {
	t.Helper()
	out, err := Compile(parseProgram(t, src))
	if err != nil {
		t.Fatalf("compile error for %q: %v", src, err)
	}
	return out
}

// instr is one decoded instruction: its opcode plus operand words.
type instr struct {
	op       bytecode.OpCode
	operands []uint16
}

func disasm(chunk *bytecode.Chunk) []instr {
	var out []instr
	ip := 0
	for ip < len(chunk.Code) {
		op := bytecode.OpCode(chunk.Code[ip])
		n := op.NumOperands()
		ops := append([]uint16{}, chunk.Code[ip+1:ip+1+n]...)
		out = append(out, instr{op: op, operands: ops})
		ip += 1 + n
	}
	return out
}

func countOp(instrs []instr, op bytecode.OpCode) int {
	n := 0
	for _, in := range instrs {
		if in.op == op {
			n++
		}
	}
	return n
}

func hasOp(instrs []instr, op bytecode.OpCode) bool {
	return countOp(instrs, op) > 0
}

func mainChunk(out *Output) *bytecode.Chunk {
	return out.Functions[out.MainIndex].Chunk
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	out := compileSrc(t, "1 + 2 * 3;")
	instrs := disasm(mainChunk(out))
	mulAt, addAt := -1, -1
	for i, in := range instrs {
		switch in.op {
		case bytecode.OpMul:
			mulAt = i
		case bytecode.OpAdd:
			addAt = i
		}
	}
	if mulAt < 0 || addAt < 0 {
		t.Fatalf("expected both OpMul and OpAdd, got %#v", instrs)
	}
	if mulAt > addAt {
		t.Fatalf("expected multiplication to be compiled before addition (precedence), got mul@%d add@%d", mulAt, addAt)
	}
}

func TestCompileVariableDeclarationAndReassignment(t *testing.T) {
	out := compileSrc(t, "let x = 1; x = x + 1;")
	instrs := disasm(mainChunk(out))
	if !hasOp(instrs, bytecode.OpInitBinding) {
		t.Fatalf("expected OpInitBinding for let declaration, got %#v", instrs)
	}
	if countOp(instrs, bytecode.OpGetBinding) < 1 {
		t.Fatalf("expected at least one OpGetBinding reading x, got %#v", instrs)
	}
	if !hasOp(instrs, bytecode.OpSetBinding) {
		t.Fatalf("expected OpSetBinding for the reassignment, got %#v", instrs)
	}
}

func TestCompileVarHoisting(t *testing.T) {
	out := compileSrc(t, "x = 1; var x;")
	instrs := disasm(mainChunk(out))
	createAt, setAt := -1, -1
	for i, in := range instrs {
		switch in.op {
		case bytecode.OpCreateGlobalVar:
			createAt = i
		case bytecode.OpSetBinding:
			if setAt < 0 {
				setAt = i
			}
		}
	}
	if createAt < 0 {
		t.Fatalf("expected OpCreateGlobalVar from hoisting, got %#v", instrs)
	}
	if setAt < 0 || createAt > setAt {
		t.Fatalf("expected hoisted var creation before the first assignment runs, got create@%d set@%d", createAt, setAt)
	}
}

func TestCompileIfElseBranching(t *testing.T) {
	out := compileSrc(t, "let y; if (x) { y = 1; } else { y = 2; }")
	instrs := disasm(mainChunk(out))
	if countOp(instrs, bytecode.OpJumpIfFalse) != 1 {
		t.Fatalf("expected exactly one OpJumpIfFalse, got %#v", instrs)
	}
	if countOp(instrs, bytecode.OpJump) != 1 {
		t.Fatalf("expected exactly one unconditional jump over the else branch, got %#v", instrs)
	}
}

func TestCompileWhileLoopBreakContinue(t *testing.T) {
	out := compileSrc(t, "while (a) { if (b) { break; } if (c) { continue; } }")
	instrs := disasm(mainChunk(out))
	// Two OpJump from break/continue, plus one more closing the loop body.
	if countOp(instrs, bytecode.OpJump) < 3 {
		t.Fatalf("expected break jump, continue jump, and loop-back jump, got %#v", instrs)
	}
	// The while's own exit test plus the two guarding ifs.
	if countOp(instrs, bytecode.OpJumpIfFalse) != 3 {
		t.Fatalf("expected three OpJumpIfFalse (while test + two ifs), got %#v", instrs)
	}
}

func TestCompileForOfDestructuringUsesIteratorProtocol(t *testing.T) {
	out := compileSrc(t, "for (const [a, b] of pairs) { a; b; }")
	instrs := disasm(mainChunk(out))
	for _, op := range []bytecode.OpCode{
		bytecode.OpGetIterator, bytecode.OpIteratorNext,
		bytecode.OpIteratorDone, bytecode.OpIteratorValue,
	} {
		if !hasOp(instrs, op) {
			t.Fatalf("expected %s in for-of destructuring lowering, got %#v", op, instrs)
		}
	}
	// one GetIterator for the outer for-of loop, one for the inner array
	// destructuring pattern.
	if countOp(instrs, bytecode.OpGetIterator) != 2 {
		t.Fatalf("expected two GetIterator calls (loop + destructure), got %#v", instrs)
	}
}

func TestCompileForInUsesEnumerationMode(t *testing.T) {
	out := compileSrc(t, "for (const k in obj) { k; }")
	instrs := disasm(mainChunk(out))
	for _, in := range instrs {
		if in.op == bytecode.OpGetIterator {
			if in.operands[2] != 2 {
				t.Fatalf("expected for-in's GetIterator to use enumeration mode (operand 2), got %v", in.operands)
			}
			return
		}
	}
	t.Fatalf("expected a GetIterator instruction, got %#v", instrs)
}

func TestCompileFunctionParamsAndPlainCall(t *testing.T) {
	out := compileSrc(t, "function f(a, b = 2, ...rest) { return a + b; } f(1, 2, 3);")
	if len(out.Functions) != 2 {
		t.Fatalf("expected 2 functions (main + f), got %d", len(out.Functions))
	}
	var fn *bytecode.Function
	for _, f := range out.Functions {
		if f.Name == "f" {
			fn = f
		}
	}
	if fn == nil {
		t.Fatalf("expected a function named f in %#v", out.Functions)
	}
	if fn.ParamCount != 2 {
		t.Fatalf("expected 2 non-rest params, got %d", fn.ParamCount)
	}
	if !fn.HasRest {
		t.Fatalf("expected HasRest to be true")
	}
	instrs := disasm(mainChunk(out))
	if !hasOp(instrs, bytecode.OpMakeFunction) {
		t.Fatalf("expected OpMakeFunction for the function declaration, got %#v", instrs)
	}
	if !hasOp(instrs, bytecode.OpCall) {
		t.Fatalf("expected a plain OpCall for f(1, 2, 3), got %#v", instrs)
	}
}

// TestCompileMethodCallBindsReceiver guards against OpCall's hardcoded
// this=undefined being used for obj.method() calls, which would silently
// break every method body that reads `this`.
func TestCompileMethodCallBindsReceiver(t *testing.T) {
	out := compileSrc(t, "obj.method(1, 2);")
	instrs := disasm(mainChunk(out))
	if hasOp(instrs, bytecode.OpCall) {
		t.Fatalf("obj.method() must not lower to plain OpCall (this=undefined), got %#v", instrs)
	}
	found := false
	for _, in := range instrs {
		if in.op == bytecode.OpCallMethod {
			found = true
			if in.operands[4] != 2 {
				t.Fatalf("expected argc 2, got %v", in.operands)
			}
		}
	}
	if !found {
		t.Fatalf("expected an OpCallMethod carrying the receiver, got %#v", instrs)
	}
}

func TestCompileMethodCallWithSpreadBindsReceiver(t *testing.T) {
	out := compileSrc(t, "obj.method(...args);")
	instrs := disasm(mainChunk(out))
	if !hasOp(instrs, bytecode.OpCallMethodSpread) {
		t.Fatalf("expected OpCallMethodSpread for obj.method(...args), got %#v", instrs)
	}
}

func TestCompileOptionalCallShortCircuits(t *testing.T) {
	out := compileSrc(t, "foo?.();")
	instrs := disasm(mainChunk(out))
	if !hasOp(instrs, bytecode.OpJumpIfNullish) {
		t.Fatalf("expected a nullish guard for foo?.(), got %#v", instrs)
	}
	if !hasOp(instrs, bytecode.OpLoadUndefined) {
		t.Fatalf("expected the short-circuit path to load undefined, got %#v", instrs)
	}
}

func TestCompileOptionalMethodCallShortCircuitsOnMethod(t *testing.T) {
	out := compileSrc(t, "obj.method?.();")
	instrs := disasm(mainChunk(out))
	if !hasOp(instrs, bytecode.OpCallMethod) {
		t.Fatalf("expected OpCallMethod even on the optional-method path, got %#v", instrs)
	}
	if !hasOp(instrs, bytecode.OpJumpIfNullish) {
		t.Fatalf("expected a nullish guard on the fetched method, got %#v", instrs)
	}
}

func TestCompileClassWithSuperMethodCall(t *testing.T) {
	src := `
class A {
	greet() { return 1; }
}
class B extends A {
	greet() { return super.greet() + 1; }
}
`
	out := compileSrc(t, src)
	var greetB *bytecode.Function
	for _, f := range out.Functions {
		if f.Name == "<method>" {
			greetB = f
		}
	}
	if greetB == nil {
		t.Fatalf("expected at least one compiled method, got %#v", out.Functions)
	}
	mainInstrs := disasm(mainChunk(out))
	if !hasOp(mainInstrs, bytecode.OpSetProto) {
		t.Fatalf("expected OpSetProto wiring B's inheritance chain, got %#v", mainInstrs)
	}

	found := false
	for _, f := range out.Functions {
		if f.Name != "<method>" {
			continue
		}
		instrs := disasm(f.Chunk)
		if hasOp(instrs, bytecode.OpGetSuperProp) && hasOp(instrs, bytecode.OpCallMethod) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a method body using OpGetSuperProp + OpCallMethod for super.greet()")
	}
}

func TestCompileDefaultDerivedConstructorForwardsArgs(t *testing.T) {
	src := `
class A { constructor(x) { this.x = x; } }
class B extends A {}
`
	out := compileSrc(t, src)
	found := false
	for _, f := range out.Functions {
		instrs := disasm(f.Chunk)
		if hasOp(instrs, bytecode.OpConstructSpread) {
			found = true
			if !f.HasRest {
				t.Fatalf("expected the synthesized default derived constructor to declare a rest parameter")
			}
		}
	}
	if !found {
		t.Fatalf("expected a synthesized default derived constructor using OpConstructSpread")
	}
}

func TestCompileTryCatchFinallyRecordsRanges(t *testing.T) {
	out := compileSrc(t, "try { risky(); } catch (e) { handle(e); } finally { cleanup(); }")
	chunk := mainChunk(out)
	if len(chunk.TryRanges) != 1 {
		t.Fatalf("expected exactly one TryRange, got %d", len(chunk.TryRanges))
	}
	tr := chunk.TryRanges[0]
	if !tr.HasCatch || !tr.HasFinally {
		t.Fatalf("expected both HasCatch and HasFinally set, got %#v", tr)
	}
	if tr.Start >= tr.End {
		t.Fatalf("expected a non-empty protected range, got %#v", tr)
	}
	if tr.HandlerPC < tr.End {
		t.Fatalf("expected the catch handler to start after the protected range, got %#v", tr)
	}
}

func TestCompileSwitchStatementStrictEquality(t *testing.T) {
	src := `
let r;
switch (x) {
case 1: r = "one"; break;
case 2: r = "two"; break;
default: r = "other";
}
`
	out := compileSrc(t, src)
	instrs := disasm(mainChunk(out))
	if countOp(instrs, bytecode.OpStrictEq) != 2 {
		t.Fatalf("expected one OpStrictEq per non-default case, got %#v", instrs)
	}
}

func TestCompileLabeledBreakTargetsOuterLoop(t *testing.T) {
	src := `
outer: for (let i = 0; i < 1; i++) {
	for (let j = 0; j < 1; j++) {
		break outer;
	}
}
`
	out := compileSrc(t, src)
	instrs := disasm(mainChunk(out))
	if countOp(instrs, bytecode.OpJump) < 3 {
		t.Fatalf("expected the labeled break plus both loops' back-edges, got %#v", instrs)
	}
}

func TestCompileGeneratorFunctionEmitsYield(t *testing.T) {
	out := compileSrc(t, "function* gen() { yield 1; yield* other(); }")
	var gen *bytecode.Function
	for _, f := range out.Functions {
		if f.Name == "gen" {
			gen = f
		}
	}
	if gen == nil || !gen.IsGenerator {
		t.Fatalf("expected a generator function named gen, got %#v", out.Functions)
	}
	instrs := disasm(gen.Chunk)
	if !hasOp(instrs, bytecode.OpYield) {
		t.Fatalf("expected OpYield, got %#v", instrs)
	}
	if !hasOp(instrs, bytecode.OpYieldStar) {
		t.Fatalf("expected OpYieldStar for yield*, got %#v", instrs)
	}
}

func TestCompileAsyncFunctionEmitsAwait(t *testing.T) {
	out := compileSrc(t, "async function f() { await g(); }")
	var fn *bytecode.Function
	for _, f := range out.Functions {
		if f.Name == "f" {
			fn = f
		}
	}
	if fn == nil || !fn.IsAsync {
		t.Fatalf("expected an async function named f, got %#v", out.Functions)
	}
	if !hasOp(disasm(fn.Chunk), bytecode.OpAwait) {
		t.Fatalf("expected OpAwait in an async function body")
	}
}

func TestCompileArrayAndObjectSpread(t *testing.T) {
	out := compileSrc(t, "let a = [1, ...mid, 2]; let o = {...src, extra: 1};")
	instrs := disasm(mainChunk(out))
	if !hasOp(instrs, bytecode.OpSpread) {
		t.Fatalf("expected OpSpread for array spread, got %#v", instrs)
	}
	if !hasOp(instrs, bytecode.OpMergeProps) {
		t.Fatalf("expected OpMergeProps for object spread, got %#v", instrs)
	}
}

func TestCompileObjectDestructuringRest(t *testing.T) {
	out := compileSrc(t, "let {a, ...rest} = src;")
	instrs := disasm(mainChunk(out))
	if !hasOp(instrs, bytecode.OpMergeProps) {
		t.Fatalf("expected rest collection to start from OpMergeProps, got %#v", instrs)
	}
	if !hasOp(instrs, bytecode.OpDeleteProp) {
		t.Fatalf("expected the already-destructured key to be deleted from the rest object, got %#v", instrs)
	}
}

func TestCompileLogicalAssignmentShortCircuits(t *testing.T) {
	out := compileSrc(t, "a ??= b;")
	instrs := disasm(mainChunk(out))
	if !hasOp(instrs, bytecode.OpJumpIfNullish) {
		t.Fatalf("expected ??= to guard on nullishness, got %#v", instrs)
	}
	if !hasOp(instrs, bytecode.OpSetBinding) {
		t.Fatalf("expected an assignment back into a, got %#v", instrs)
	}
}

func TestCompileClassFieldInitializer(t *testing.T) {
	out := compileSrc(t, "class Counter { count = 0; bump() { this.count++; } }")
	found := false
	for _, f := range out.Functions {
		if f.Name == "Counter" {
			instrs := disasm(f.Chunk)
			if hasOp(instrs, bytecode.OpGetThis) && hasOp(instrs, bytecode.OpSetProp) {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected the Counter constructor to initialize the count field via this, got %#v", out.Functions)
	}
}
