package vm

import (
	"github.com/vesper-lang/vesper/internal/bytecode"
	"github.com/vesper-lang/vesper/internal/envrec"
	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
)

// Frame is one function activation (the "context": function, code,
// environment, suspended-or-running state). Unlike a Go call stack frame, a
// Frame outlives the Go call that created it whenever its function is a
// generator or async function (the freeze-on-yield/await
// protocol): Execute can return early leaving ip and regs exactly where
// resumption must continue.
type Frame struct {
	Fn    *bytecode.Function
	Chunk *bytecode.Chunk
	Unit  *CompiledUnit

	Regs []value.Value
	ip   int

	// LexEnv is the environment OpGetBinding/OpSetBinding/OpInitBinding/
	// OpPushDeclarative/OpPopEnv operate against; VarEnv is the function's
	// (or realm's) own var-scope, fixed for the frame's lifetime, the
	// target of OpCreateGlobalVar (the var-hoisting target).
	LexEnv envrec.Env
	VarEnv envrec.Env

	HomeObject *object.Object // [[HomeObject]] for super.prop / super()
	NewTarget  value.Value

	// ctor is set only for a derived class's constructor frame: OpSuperCall
	// looks up ctor.GetPrototypeOf() to find the parent constructor to
	// invoke, since the AST carries no separate "is this a derived
	// constructor" flag into the bytecode (the class semantics are
	// recovered at runtime from prototype-chain callability, see construct
	// in calls.go).
	ctor *object.Object

	// currentIterResult holds the IteratorResult most recently produced by
	// OpIteratorNext, consumed by the OpIteratorDone/OpIteratorValue that
	// always immediately follow it in codegen's output (see
	// internal/codegen/statements.go compileForInOfCommon): a single slot
	// suffices because no second OpIteratorNext on a different iterator can
	// execute before the first's Done/Value pair does.
	currentIterResult iteratorResult

	// Suspension bookkeeping for generators/async functions.
	// The resumption value/isThrow flag itself is threaded through
	// Resume's parameters rather than stored here; pendingDst is the only
	// piece that must survive until the matching Resume call writes it.
	pendingDst uint16
	yieldStar  *yieldStarState

	// pendingUnwind records an abrupt completion (throw with no matching
	// catch, or return) that must detour through a try statement's finally
	// block before taking effect; resolved once ip reaches resumeAt, i.e.
	// the finally block has run to completion by ordinary fallthrough
	// (break/continue out of a try-with-finally bypasses this: codegen
	// jumps straight to the loop-exit target, an accepted simplification).
	pendingUnwind *unwindState

	parent *Frame
}

type unwindState struct {
	resumeAt int
	isThrow  bool
	value    value.Value
}

func (vm *VM) newFrame(fn *bytecode.Function, unit *CompiledUnit, env envrec.Env, thisVal, newTarget value.Value, home *object.Object) *Frame {
	f := &Frame{
		Fn:        fn,
		Chunk:     fn.Chunk,
		Unit:      unit,
		Regs:      make([]value.Value, fn.Chunk.RegNum),
		LexEnv:    env,
		VarEnv:    env,
		HomeObject: home,
		NewTarget: newTarget,
	}
	return f
}

func (f *Frame) gcRoots(push func(*gc.Header)) {
	for _, v := range f.Regs {
		pushValueRoot(push, v)
	}
	if f.LexEnv != nil {
		push(f.LexEnv.GCHeader())
	}
	if f.VarEnv != nil && f.VarEnv != f.LexEnv {
		push(f.VarEnv.GCHeader())
	}
	if f.HomeObject != nil {
		push(&f.HomeObject.Header)
	}
	pushValueRoot(push, f.NewTarget)
	pushValueRoot(push, f.currentIterResult.value)
	if f.pendingUnwind != nil {
		pushValueRoot(push, f.pendingUnwind.value)
	}
}

func pushValueRoot(push func(*gc.Header), v value.Value) {
	if v.IsObject() {
		if o, ok := v.Ref().(*object.Object); ok {
			push(&o.Header)
		}
	}
}

type iteratorResult struct {
	value value.Value
	done  bool
}
