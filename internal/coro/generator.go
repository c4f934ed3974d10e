// Package coro implements the generator/async suspension core
// component J, §4.8): the state machine that lets Execute return mid-body
// and resume exactly where it left off, and the driver that turns an
// async function's sequence of awaits into a chain of promise reactions.
//
// internal/vm has no notion of coro at all — it only exposes
// vm.GeneratorHook/vm.AsyncHook (two package-level function variables) and
// the PrepareFrame/RunFrameStep/ResumeFrameStep seam those hooks are built
// from. Install wires this package's implementations into that seam once,
// at runtime construction time, mirroring go-dws's own habit of keeping
// optional subsystems out of the core interpreter's import graph.
//
// Go has no portable stack-switching primitive any library in the
// examples pack supplies, so a generator is not a goroutine paused on a
// channel; it is a frozen internal/vm.Frame that Execute/Resume hands
// back to us instead of blocking, grounded on original_source/rjs_gen.h's
// state-machine-over-a-frozen-frame approach.
package coro

import (
	"github.com/vesper-lang/vesper/internal/bytecode"
	"github.com/vesper-lang/vesper/internal/envrec"
	"github.com/vesper-lang/vesper/internal/jobqueue"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
	"github.com/vesper-lang/vesper/internal/vm"
)

// generatorState is the four-state generator lifecycle.
type generatorState int

const (
	stateSuspendedStart generatorState = iota
	stateSuspendedYield
	stateExecuting
	stateCompleted
)

// generatorData is the NativeData payload a Generator instance carries:
// the frozen frame plus enough bookkeeping to reject a .next()/.return()/
// .throw() sent to the wrong generator or while one is already running
// (the brand check guards against a generator method being torn
// off and called on something else, and against reentrant resumption).
type generatorData struct {
	frame *vm.Frame
	state generatorState
	brand string
}

const generatorBrand = "vesper:generator"

// Install wires this package's generator and async-function
// implementations into internal/vm's hook seam, and sets up the shared
// next/return/throw methods on the Generator intrinsic prototype. Called
// once by internal/runtime while assembling a VM's intrinsics.
func Install(v *vm.VM, jq *jobqueue.Queue) {
	installGeneratorProto(v)
	installPromiseProto(v, jq)
	vm.GeneratorHook = func(vmRef *vm.VM, fn *bytecode.Function, unit *vm.CompiledUnit, env envrec.Env, home *object.Object, thisVal value.Value, args []value.Value) value.Value {
		return newGenerator(vmRef, fn, unit, env, home, thisVal, args)
	}
	vm.AsyncHook = func(vmRef *vm.VM, fn *bytecode.Function, unit *vm.CompiledUnit, env envrec.Env, home *object.Object, thisVal value.Value, args []value.Value, newTarget value.Value) (value.Value, error) {
		return runAsync(vmRef, jq, fn, unit, env, home, thisVal, args, newTarget)
	}
}

// newGenerator builds a Generator instance without running any of fn's
// body (the EvaluateGeneratorBody: calling a generator function
// only ever produces a fresh Generator object in the suspended-start
// state).
func newGenerator(vmRef *vm.VM, fn *bytecode.Function, unit *vm.CompiledUnit, env envrec.Env, home *object.Object, thisVal value.Value, args []value.Value) value.Value {
	frame := vmRef.PrepareFrame(fn, unit, env, home, thisVal, args, value.Undef())
	gd := &generatorData{frame: frame, state: stateSuspendedStart, brand: generatorBrand}
	o := object.New(vmRef.Heap, value.ObjectRef(vmRef.Protos.Generator))
	o.SetClass("Generator")
	o.NativeData = gd
	return value.ObjectRef(o)
}

// installGeneratorProto defines next/return/throw once on the shared
// Generator.prototype intrinsic rather than per instance, the way
// go-dws's runtime installs its builtin method tables on a class's shared
// VMT instead of duplicating them per object.
func installGeneratorProto(v *vm.VM) {
	proto := v.Protos.Generator
	if proto == nil {
		return
	}
	define := func(name string, arity int, fn func(*vm.VM, value.Value, []value.Value) (value.Value, error)) {
		nf := object.NewNativeFunction(v.Heap, value.ObjectRef(v.Protos.Function), name, arity, func(thisVal value.Value, args []value.Value) (value.Value, error) {
			return fn(v, thisVal, args)
		})
		proto.DefineOwnProperty(object.StringKey(name), object.DataDescriptor(value.ObjectRef(nf), true, false, true))
	}
	define("next", 1, genNext)
	define("return", 1, genReturn)
	define("throw", 1, genThrow)
}

// installPromiseProto defines then/catch/finally on the shared Promise
// prototype (the Promise.prototype, narrowed to the three methods
// every await-driven program actually exercises).
func installPromiseProto(v *vm.VM, jq *jobqueue.Queue) {
	proto := v.Protos.Promise
	if proto == nil {
		return
	}
	define := func(name string, arity int, fn object.CallFunc) {
		nf := object.NewNativeFunction(v.Heap, value.ObjectRef(v.Protos.Function), name, arity, fn)
		proto.DefineOwnProperty(object.StringKey(name), object.DataDescriptor(value.ObjectRef(nf), true, false, true))
	}
	define("then", 2, func(thisVal value.Value, args []value.Value) (value.Value, error) {
		return Then(v, jq, thisVal, argOrUndef(args, 0), argOrUndef(args, 1)), nil
	})
	define("catch", 1, func(thisVal value.Value, args []value.Value) (value.Value, error) {
		return Then(v, jq, thisVal, value.Undef(), argOrUndef(args, 0)), nil
	})
	// finally's callback runs on both settlement paths but, unlike the real
	// built-in, always resolves the chained promise with the original
	// value rather than re-rejecting on the rejection path (accepted
	// simplification, see DESIGN.md).
	define("finally", 1, func(thisVal value.Value, args []value.Value) (value.Value, error) {
		onFinally := argOrUndef(args, 0)
		wrap := object.NewNativeFunction(v.Heap, value.ObjectRef(v.Protos.Function), "", 1, func(_ value.Value, cbArgs []value.Value) (value.Value, error) {
			if o, ok := onFinally.Ref().(*object.Object); onFinally.IsObject() && ok && o.Call != nil {
				if _, err := o.Call(value.Undef(), nil); err != nil {
					return value.Value{}, err
				}
			}
			return argOrUndef(cbArgs, 0), nil
		})
		return Then(v, jq, thisVal, value.ObjectRef(wrap), value.ObjectRef(wrap)), nil
	})
}

func generatorOf(vmRef *vm.VM, thisVal value.Value) (*generatorData, error) {
	o, ok := thisVal.Ref().(*object.Object)
	if !thisVal.IsObject() || !ok {
		return nil, &vm.ThrownError{Value: vmRef.NewTypeError("not a generator")}
	}
	gd, ok := o.NativeData.(*generatorData)
	if !ok || gd.brand != generatorBrand {
		return nil, &vm.ThrownError{Value: vmRef.NewTypeError("not a generator")}
	}
	return gd, nil
}

func genNext(vmRef *vm.VM, thisVal value.Value, args []value.Value) (value.Value, error) {
	gd, err := generatorOf(vmRef, thisVal)
	if err != nil {
		return value.Value{}, err
	}
	return resumeGenerator(vmRef, gd, argOrUndef(args, 0), false)
}

func genThrow(vmRef *vm.VM, thisVal value.Value, args []value.Value) (value.Value, error) {
	gd, err := generatorOf(vmRef, thisVal)
	if err != nil {
		return value.Value{}, err
	}
	return resumeGenerator(vmRef, gd, argOrUndef(args, 0), true)
}

// genReturn forcibly completes the generator (the Return
// completion sent into GeneratorResume). It does not run any finally
// block active at the suspension point: internal/vm's Frame only supports
// being resumed with a plain value or an exception, not a distinct
// "return" completion kind that would detour through pendingUnwind the
// way an uncaught throw does, so a try/finally wrapping a live yield
// point is skipped rather than unwound on .return() (accepted
// simplification, see DESIGN.md).
func genReturn(vmRef *vm.VM, thisVal value.Value, args []value.Value) (value.Value, error) {
	gd, err := generatorOf(vmRef, thisVal)
	if err != nil {
		return value.Value{}, err
	}
	gd.state = stateCompleted
	return iterResult(vmRef, argOrUndef(args, 0), true), nil
}

// resumeGenerator is next()/throw()'s shared drive step: a generator still at
// suspended-start has never executed Execute, so a throw() sent before
// the first next() completes the generator immediately without entering
// the body, matching the observable behavior of throwing synchronously
// out of a function that hasn't been called yet.
func resumeGenerator(vmRef *vm.VM, gd *generatorData, sendValue value.Value, isThrow bool) (value.Value, error) {
	switch gd.state {
	case stateCompleted:
		if isThrow {
			return value.Value{}, &vm.ThrownError{Value: sendValue}
		}
		return iterResult(vmRef, value.Undef(), true), nil
	case stateExecuting:
		return value.Value{}, &vm.ThrownError{Value: vmRef.NewTypeError("generator is already running")}
	}

	wasStart := gd.state == stateSuspendedStart
	gd.state = stateExecuting

	if wasStart && isThrow {
		gd.state = stateCompleted
		return value.Value{}, &vm.ThrownError{Value: sendValue}
	}

	var out vm.Outcome
	if wasStart {
		out = vmRef.RunFrameStep(gd.frame)
	} else {
		out = vmRef.ResumeFrameStep(gd.frame, sendValue, isThrow)
	}

	switch out.Kind {
	case vm.OutcomeYield:
		gd.state = stateSuspendedYield
		return iterResult(vmRef, out.Value, false), nil
	case vm.OutcomeReturn:
		gd.state = stateCompleted
		return iterResult(vmRef, out.Value, true), nil
	case vm.OutcomeThrow:
		gd.state = stateCompleted
		return value.Value{}, &vm.ThrownError{Value: out.Value}
	default:
		gd.state = stateCompleted
		return value.Value{}, &vm.ThrownError{Value: vmRef.NewTypeError("'await' is not valid inside a plain generator")}
	}
}

func iterResult(vmRef *vm.VM, v value.Value, done bool) value.Value {
	o := object.New(vmRef.Heap, value.ObjectRef(vmRef.Protos.Object))
	o.DefineOwnProperty(object.StringKey("value"), object.DataDescriptor(v, true, true, true))
	o.DefineOwnProperty(object.StringKey("done"), object.DataDescriptor(value.Bool(done), true, true, true))
	return value.ObjectRef(o)
}

func argOrUndef(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undef()
}
