package vm

import (
	"github.com/vesper-lang/vesper/internal/bytecode"
	"github.com/vesper-lang/vesper/internal/envrec"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
)

// closureData is the NativeData payload OpMakeFunction attaches to the
// callable object it creates: everything needed to build a fresh Frame on
// each invocation (the closure = code + captured environment).
type closureData struct {
	fn   *bytecode.Function
	unit *CompiledUnit
	env  envrec.Env
	home *object.Object
}

// GeneratorHook and AsyncHook let internal/coro intercept generator/async
// function calls before any frame executes (invoking a
// generator function only ever produces a Generator object; its body does
// not run until .next() is called). internal/vm never imports
// internal/coro — coro imports vm and installs these once, mirroring
// internal/value's ObjectHooks cycle-breaking pattern already used
// elsewhere in this codebase.
var (
	GeneratorHook func(vm *VM, fn *bytecode.Function, unit *CompiledUnit, env envrec.Env, home *object.Object, thisVal value.Value, args []value.Value) value.Value
	AsyncHook     func(vm *VM, fn *bytecode.Function, unit *CompiledUnit, env envrec.Env, home *object.Object, thisVal value.Value, args []value.Value, newTarget value.Value) (value.Value, error)
)

// MakeClosure realizes OpMakeFunction: a new callable object capturing the
// current lexical environment and (for methods) [[HomeObject]]. unit is
// the frame's CompiledUnit, since OpMakeFunction's operand
// indexes into the function table shared by every compiler nested inside
// one compilation (internal/codegen.Output).
func (vm *VM) MakeClosure(idx int, unit *CompiledUnit, env envrec.Env, home *object.Object) value.Value {
	fn := unit.Functions[idx]
	cd := &closureData{fn: fn, unit: unit, env: env, home: home}

	proto := vm.Protos.Function
	o := object.NewNativeFunction(vm.Heap, value.ObjectRef(proto), fn.Name, fn.ParamCount, nil)
	o.SetClass("Function")
	o.NativeData = cd

	o.Call = func(thisVal value.Value, args []value.Value) (value.Value, error) {
		if fn.IsGenerator {
			if GeneratorHook == nil {
				return value.Value{}, &ThrownError{Value: vm.NewTypeError("generator functions are not supported by this build")}
			}
			return GeneratorHook(vm, fn, unit, env, home, thisVal, args), nil
		}
		if fn.IsAsync {
			if AsyncHook == nil {
				return value.Value{}, &ThrownError{Value: vm.NewTypeError("async functions are not supported by this build")}
			}
			return AsyncHook(vm, fn, unit, env, home, thisVal, args, value.Undef())
		}
		return vm.callOrdinary(fn, unit, env, home, thisVal, args, value.Undef())
	}

	if !fn.IsArrow && !fn.IsGenerator && !fn.IsAsync {
		o.Construct = func(args []value.Value, newTarget value.Value) (value.Value, error) {
			return vm.construct(o, fn, unit, env, home, args, newTarget)
		}
		protoObj := object.New(vm.Heap, value.ObjectRef(vm.Protos.Object))
		protoObj.DefineOwnProperty(object.StringKey("constructor"), object.DataDescriptor(value.ObjectRef(o), true, false, true))
		o.DefineOwnProperty(object.StringKey("prototype"), object.DataDescriptor(value.ObjectRef(protoObj), true, false, false))
	}

	return value.ObjectRef(o)
}
