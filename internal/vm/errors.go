package vm

import (
	"github.com/vesper-lang/vesper/internal/envrec"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
)

// newError builds a script-visible Error instance (the ordinary
// object applied to the Error family: errors are
// object.Object instances with an exception brand"): a plain object whose
// prototype identifies the error kind, carrying name/message/stack own
// properties.
func (vm *VM) newError(proto *object.Object, name, message string) value.Value {
	o := object.New(vm.Heap, value.ObjectRef(proto))
	o.SetClass("Error")
	o.DefineOwnProperty(object.StringKey("name"), object.DataDescriptor(value.Str(name), true, false, true))
	o.DefineOwnProperty(object.StringKey("message"), object.DataDescriptor(value.Str(message), true, false, true))
	o.DefineOwnProperty(object.StringKey("stack"), object.DataDescriptor(value.Str(vm.captureStack(name, message)), true, false, true))
	markException(o)
	return value.ObjectRef(o)
}

// exceptionBrandKey is a private-ish own property identifying an object as
// an engine-thrown error rather than an ordinary object that merely shares
// the Error prototype chain.
const exceptionBrandKey = "@@vesperException"

func markException(o *object.Object) {
	o.DefineOwnProperty(object.StringKey(exceptionBrandKey), object.DataDescriptor(value.Bool(true), false, false, false))
}

// IsExceptionObject reports whether v carries the engine's exception brand.
func IsExceptionObject(v value.Value) bool {
	if !v.IsObject() {
		return false
	}
	o, ok := v.Ref().(*object.Object)
	if !ok {
		return false
	}
	_, has := o.GetOwnProperty(object.StringKey(exceptionBrandKey))
	return has
}

func (vm *VM) captureStack(name, message string) string {
	s := name + ": " + message
	for i := len(vm.CallStack) - 1; i >= 0; i-- {
		s += "\n    at " + vm.CallStack[i].Fn.Name
	}
	return s
}

func (vm *VM) NewTypeError(msg string) value.Value  { return vm.newError(vm.Protos.TypeError, "TypeError", msg) }
func (vm *VM) NewRangeError(msg string) value.Value { return vm.newError(vm.Protos.RangeErr, "RangeError", msg) }
func (vm *VM) NewReferenceError(msg string) value.Value {
	return vm.newError(vm.Protos.RefErr, "ReferenceError", msg)
}
func (vm *VM) NewSyntaxError(msg string) value.Value {
	return vm.newError(vm.Protos.SyntaxErr, "SyntaxError", msg)
}

// toThrowable turns a Go error surfaced by internal/value or internal/envrec
// coercion/binding failures into a script-visible thrown value, since those
// packages can't construct internal/object.Object instances themselves
// (doing so would cycle back through this package's dependents).
func (vm *VM) toThrowable(err error) value.Value {
	if be, ok := err.(*envrec.BindingError); ok {
		switch be.Kind {
		case "TypeError":
			return vm.NewTypeError(be.Message)
		default:
			return vm.NewReferenceError(be.Message)
		}
	}
	if kind := value.ScriptErrorKind(err); kind != "" {
		switch kind {
		case "RangeError":
			return vm.NewRangeError(err.Error())
		default:
			return vm.NewTypeError(err.Error())
		}
	}
	return vm.NewTypeError(err.Error())
}
