package vm

import (
	"github.com/vesper-lang/vesper/internal/bytecode"
	"github.com/vesper-lang/vesper/internal/envrec"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
)

// callOrdinary invokes a non-generator, non-async closure as a plain call
// (no `new`). Arrow functions never get their own FunctionEnv: `this`,
// `new.target`, and the super binding all resolve lexically through the
// environment/frame that was active when the arrow was created, so an
// arrow's var-scope is a plain Declarative environment rather
// than a FunctionEnv.
func (vm *VM) callOrdinary(fn *bytecode.Function, unit *CompiledUnit, capturedEnv envrec.Env, home *object.Object, thisVal value.Value, args []value.Value, newTarget value.Value) (value.Value, error) {
	frame := vm.PrepareFrame(fn, unit, capturedEnv, home, thisVal, args, newTarget)
	return vm.runToCompletion(frame)
}

// PrepareFrame builds a ready-to-run frame for fn without executing it:
// internal/coro needs this split because invoking a generator/async
// function function must allocate its frame immediately (so the
// resulting Generator/Promise object exists) while deferring the body's
// first instruction until .next()/the microtask queue actually runs it
//. Ordinary calls just chain this straight into
// runToCompletion (see callOrdinary above).
func (vm *VM) PrepareFrame(fn *bytecode.Function, unit *CompiledUnit, capturedEnv envrec.Env, home *object.Object, thisVal value.Value, args []value.Value, newTarget value.Value) *Frame {
	var frameEnv envrec.Env
	if fn.IsArrow {
		frameEnv = envrec.NewDeclarative(vm.Heap, capturedEnv)
	} else {
		fenv := envrec.NewFunctionEnv(vm.Heap, capturedEnv, nil, envrec.ThisUninitialized)
		_ = fenv.BindThisValue(thisVal)
		frameEnv = fenv
	}

	frame := vm.newFrame(fn, unit, frameEnv, thisVal, newTarget, home)
	bindArgs(vm, frame, fn, args)
	return frame
}

// construct invokes ctorObj's closure as `new ctorObj(args)`.
// A derived class constructor (one whose own [[Prototype]] is itself
// callable, wired by internal/codegen's OpSetProto when a class extends
// another) starts with `this` uninitialized until its body's super() call
// runs; a base constructor gets a freshly allocated instance immediately.
func (vm *VM) construct(ctorObj *object.Object, fn *bytecode.Function, unit *CompiledUnit, capturedEnv envrec.Env, home *object.Object, args []value.Value, newTarget value.Value) (value.Value, error) {
	derived := isCallableObject(ctorObj.GetPrototypeOf())

	var thisVal value.Value
	if !derived {
		protoVal, _ := ctorObj.Get(object.StringKey("prototype"), value.ObjectRef(ctorObj))
		proto := value.ObjectRef(vm.Protos.Object)
		if protoVal.IsObject() {
			proto = protoVal
		}
		instance := object.New(vm.Heap, proto)
		thisVal = value.ObjectRef(instance)
	}

	fenv := envrec.NewFunctionEnv(vm.Heap, capturedEnv, ctorObj, envrec.ThisUninitialized)
	if !derived {
		_ = fenv.BindThisValue(thisVal)
	}

	frame := vm.newFrame(fn, unit, fenv, thisVal, newTarget, home)
	frame.ctor = ctorObj
	bindArgs(vm, frame, fn, args)

	result, err := vm.runToCompletion(frame)
	if err != nil {
		return value.Value{}, err
	}
	if result.IsObject() {
		return result, nil
	}
	bound, berr := fenv.GetThisBinding()
	if berr != nil {
		return value.Value{}, &ThrownError{Value: vm.toThrowable(berr)}
	}
	return bound, nil
}

func isCallableObject(v value.Value) bool {
	if !v.IsObject() {
		return false
	}
	o, ok := v.Ref().(*object.Object)
	return ok && o.IsCallable()
}

// bindArgs realizes the calling convention:
// arguments occupy registers 0..paramCount-1; a trailing rest parameter's
// register is pre-populated with an Array collecting every extra
// positional argument before the callee's first instruction runs.
func bindArgs(vm *VM, frame *Frame, fn *bytecode.Function, args []value.Value) {
	n := fn.ParamCount
	for i := 0; i < n && i < len(args); i++ {
		frame.Regs[i] = args[i]
	}
	if fn.HasRest {
		var extra []value.Value
		if len(args) > n {
			extra = append(extra, args[n:]...)
		}
		arr := object.NewArray(vm.Heap, value.ObjectRef(vm.Protos.Array), extra)
		if n < len(frame.Regs) {
			frame.Regs[n] = value.ObjectRef(arr)
		}
	}
}

// runToCompletion drives a non-generator, non-async frame through Execute
// until it returns or throws; generators/async functions use Execute
// directly so internal/coro can observe Yield/Await outcomes instead.
func (vm *VM) runToCompletion(frame *Frame) (value.Value, error) {
	if len(vm.CallStack) >= vm.stackLimit() {
		return value.Value{}, &ThrownError{Value: vm.NewRangeError("Maximum call stack size exceeded")}
	}
	vm.CallStack = append(vm.CallStack, frame)
	out := vm.Execute(frame)
	vm.CallStack = vm.CallStack[:len(vm.CallStack)-1]

	switch out.Kind {
	case OutcomeReturn:
		return out.Value, nil
	case OutcomeThrow:
		return value.Value{}, &ThrownError{Value: out.Value}
	default:
		return value.Value{}, &ThrownError{Value: vm.NewTypeError("yield/await outside generator/async function")}
	}
}

// RunFrameStep and ResumeFrameStep are runToCompletion's CallStack-
// bookkeeping split out for internal/coro: a generator/async frame is
// only on vm.CallStack while one of its steps is actually running: a
// generator context is invisible to the active context stack
// until resumed") rather than for its entire suspended lifetime.
func (vm *VM) RunFrameStep(frame *Frame) Outcome {
	vm.CallStack = append(vm.CallStack, frame)
	out := vm.Execute(frame)
	vm.CallStack = vm.CallStack[:len(vm.CallStack)-1]
	return out
}

func (vm *VM) ResumeFrameStep(frame *Frame, resumeValue value.Value, isThrow bool) Outcome {
	vm.CallStack = append(vm.CallStack, frame)
	out := vm.Resume(frame, resumeValue, isThrow)
	vm.CallStack = vm.CallStack[:len(vm.CallStack)-1]
	return out
}

func (vm *VM) stackLimit() int {
	if vm.MaxStackDepth <= 0 {
		return defaultMaxStackDepth
	}
	return vm.MaxStackDepth
}

// Call is the host- and opcode-facing entry point for invoking an arbitrary
// value as a function (the Call abstract operation).
func (vm *VM) Call(callee value.Value, thisVal value.Value, args []value.Value) (value.Value, error) {
	o, ok := callee.Ref().(*object.Object)
	if !callee.IsObject() || !ok || o.Call == nil {
		return value.Value{}, &ThrownError{Value: vm.NewTypeError("value is not callable")}
	}
	return o.Call(thisVal, args)
}

// ConstructValue is the Construct abstract operation (the `new`).
func (vm *VM) ConstructValue(callee value.Value, args []value.Value, newTarget value.Value) (value.Value, error) {
	o, ok := callee.Ref().(*object.Object)
	if !callee.IsObject() || !ok || o.Construct == nil {
		return value.Value{}, &ThrownError{Value: vm.NewTypeError("value is not a constructor")}
	}
	return o.Construct(args, newTarget)
}
