package runtime

import (
	"github.com/vesper-lang/vesper/internal/envrec"
	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
	"github.com/vesper-lang/vesper/internal/vm"
)

// buildProtos constructs every intrinsic prototype internal/vm's opcodes
// assume exist (vm.Protos) plus the global object they all hang off of.
// The Array/String/Math standard-library method surface is out of scope
// here; this only bootstraps what the core object/closure/error/
// generator/promise machinery itself needs to be self-consistent, the
// way go-dws's interpreter seeds its VMT table before running anything.
func buildProtos(heap *gc.Heap) (vm.Protos, *object.Object) {
	objectProto := object.New(heap, value.Null_())
	objectProto.SetClass("Object")

	functionProto := object.New(heap, value.ObjectRef(objectProto))
	functionProto.SetClass("Function")
	functionProto.Call = func(thisVal value.Value, args []value.Value) (value.Value, error) {
		return value.Undef(), nil
	}

	arrayProto := object.New(heap, value.ObjectRef(objectProto))
	arrayProto.SetClass("Array")
	arrayProto.MakeArray()

	errorProto := object.New(heap, value.ObjectRef(objectProto))
	errorProto.SetClass("Error")
	errorProto.DefineOwnProperty(object.StringKey("name"), object.DataDescriptor(value.Str("Error"), true, false, true))
	errorProto.DefineOwnProperty(object.StringKey("message"), object.DataDescriptor(value.Str(""), true, false, true))

	subError := func(name string) *object.Object {
		p := object.New(heap, value.ObjectRef(errorProto))
		p.SetClass("Error")
		p.DefineOwnProperty(object.StringKey("name"), object.DataDescriptor(value.Str(name), true, false, true))
		return p
	}
	typeErrorProto := subError("TypeError")
	rangeErrProto := subError("RangeError")
	refErrProto := subError("ReferenceError")
	syntaxErrProto := subError("SyntaxError")

	generatorProto := object.New(heap, value.ObjectRef(objectProto))
	generatorProto.SetClass("Generator")

	promiseProto := object.New(heap, value.ObjectRef(objectProto))
	promiseProto.SetClass("Promise")

	protos := vm.Protos{
		Object:    objectProto,
		Array:     arrayProto,
		Function:  functionProto,
		Error:     errorProto,
		TypeError: typeErrorProto,
		RangeErr:  rangeErrProto,
		RefErr:    refErrProto,
		SyntaxErr: syntaxErrProto,
		Generator: generatorProto,
		Promise:   promiseProto,
	}

	global := object.New(heap, value.ObjectRef(objectProto))
	global.SetClass("global")
	return protos, global
}

// installErrorConstructors hangs Error/TypeError/RangeError/ReferenceError/
// SyntaxError on the global object as both callable and constructible
// (the `throw new TypeError("...")` idiom is core language, not
// library surface, unlike Array/String's method tables).
func installErrorConstructors(vmRef *vm.VM, global *object.Object) {
	install := func(name string, proto *object.Object) {
		build := func(args []value.Value) (value.Value, error) {
			msg := ""
			if len(args) > 0 && !args[0].IsUndefined() {
				s, err := value.ToString(args[0])
				if err != nil {
					return value.Value{}, &vm.ThrownError{Value: vmRef.NewTypeError(err.Error())}
				}
				msg = s
			}
			o := object.New(vmRef.Heap, value.ObjectRef(proto))
			o.SetClass("Error")
			o.DefineOwnProperty(object.StringKey("message"), object.DataDescriptor(value.Str(msg), true, false, true))
			o.DefineOwnProperty(object.StringKey("stack"), object.DataDescriptor(value.Str(name+": "+msg), true, false, true))
			return value.ObjectRef(o), nil
		}
		ctor := object.NewNativeFunction(vmRef.Heap, value.ObjectRef(vmRef.Protos.Function), name, 1,
			func(thisVal value.Value, args []value.Value) (value.Value, error) { return build(args) })
		ctor.Construct = func(args []value.Value, newTarget value.Value) (value.Value, error) { return build(args) }
		ctor.DefineOwnProperty(object.StringKey("prototype"), object.DataDescriptor(value.ObjectRef(proto), false, false, false))
		proto.DefineOwnProperty(object.StringKey("constructor"), object.DataDescriptor(value.ObjectRef(ctor), true, false, true))
		global.DefineOwnProperty(object.StringKey(name), object.DataDescriptor(value.ObjectRef(ctor), true, false, true))
	}
	install("Error", vmRef.Protos.Error)
	install("TypeError", vmRef.Protos.TypeError)
	install("RangeError", vmRef.Protos.RangeErr)
	install("ReferenceError", vmRef.Protos.RefErr)
	install("SyntaxError", vmRef.Protos.SyntaxErr)
}

// newGlobalEnv wraps global in the GlobalEnv internal/envrec and internal/vm
// expect as the realm's outermost scope (the global environment
// record combining a declarative record with the global object itself).
func newGlobalEnv(heap *gc.Heap, global *object.Object) *envrec.GlobalEnv {
	return envrec.NewGlobalEnv(heap, global)
}
