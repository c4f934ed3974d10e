// Package vesper is the host-facing embedding API: the
// thin facade a Go program links against to compile and run scripts,
// register native functions, and load ES modules, without reaching into
// any internal/* package directly. Grounded on go-dws's pkg/dwscript
// facade, which wraps internal/interp the same way this wraps
// internal/runtime.
package vesper

import (
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/runtime"
	"github.com/vesper-lang/vesper/internal/value"
)

// Option configures a Runtime at construction time; it is internal/runtime's
// own Option type re-exported so callers never import internal/runtime.
type Option = runtime.Option

var (
	WithLogger                = runtime.WithLogger
	WithMaxMarkStack           = runtime.WithMaxMarkStack
	WithGCThreshold            = runtime.WithGCThreshold
	WithStackLimit             = runtime.WithStackLimit
	WithModuleResolver         = runtime.WithModuleResolver
	WithUnhandledRejectionHook = runtime.WithUnhandledRejectionHook
)

// Runtime is one embeddable realm.
type Runtime struct {
	rt *runtime.Runtime
}

// New builds a Runtime ready to compile and run scripts.
func New(opts ...Option) *Runtime {
	return &Runtime{rt: runtime.New(opts...)}
}

// NativeFunc is the Go function shape RegisterNativeFunction installs as a
// script-callable global.
type NativeFunc func(this Value, args []Value) (Value, error)

// Value is the script-visible value type, re-exported so callers never
// import internal/value directly.
type Value = value.Value

// RegisterNativeFunction installs fn as a global callable under name,
// reporting arity to script code via Function.prototype.length the way
// every other callable in this engine does.
func (r *Runtime) RegisterNativeFunction(name string, arity int, fn NativeFunc) {
	vmRef := r.rt.VM()
	nf := object.NewNativeFunction(vmRef.Heap, value.ObjectRef(vmRef.Protos.Function), name, arity,
		func(thisVal value.Value, args []value.Value) (value.Value, error) {
			return fn(thisVal, args)
		})
	global := vmRef.Global.GlobalObject()
	global.DefineOwnProperty(object.StringKey(name), object.DataDescriptor(value.ObjectRef(nf), true, false, true))
}

// RegisterNativeObject installs obj as a global binding under name, for a
// host that has already built an object.Object-backed value (e.g. a
// collection of RegisterNativeFunction-style methods grouped under a
// namespace, the way JSON is installed by internal/jsonbridge).
func (r *Runtime) RegisterNativeObject(name string, obj Value) {
	vmRef := r.rt.VM()
	global := vmRef.Global.GlobalObject()
	global.DefineOwnProperty(object.StringKey(name), object.DataDescriptor(obj, true, false, true))
}

// DrainJobs runs every pending microtask to completion (async functions
// and promise reactions never run synchronously; a host must call this
// after RunScript to let them finish).
func (r *Runtime) DrainJobs() {
	r.rt.DrainJobs()
}

// Intern hands s to this realm's shared string table.
func (r *Runtime) Intern(s string) uint32 {
	return uint32(r.rt.Intern(s))
}

// Throw constructs a TypeError-shaped script value carrying msg, for a
// native function that needs to signal failure into script code the way a
// thrown Error would (native functions throw by
// returning a *ScriptError-wrapping error").
func (r *Runtime) Throw(msg string) error {
	return &ScriptError{Value: r.rt.VM().NewTypeError(msg)}
}

// Catch unwraps err into the script value it carries, if err originated
// from a script-level throw (via RunScript/LinkAndEvaluateModule or a
// native function returning Throw's result); ok is false for any other Go
// error.
func Catch(err error) (Value, bool) {
	if se, ok := err.(*ScriptError); ok {
		return se.Value, true
	}
	return Value{}, false
}
