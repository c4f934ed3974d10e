// Package vm implements the register-based bytecode interpreter
// component I, §4.6/§4.7): the dispatch loop that executes
// internal/bytecode.Chunk instructions against a per-frame register file,
// threading internal/envrec environments for name resolution and
// internal/object for the meta-protocol. Grounded on go-dws's
// internal/bytecode vm*.go split (vm_exec.go's opcode switch, vm_calls.go's
// call-frame setup, vm_stack.go's explicit operand stack), generalized from
// Pascal's procedure-call model to ECMAScript's closures, generators, and
// async functions.
//
// A VM owns the heap, the realm's global environment, and the small set of
// intrinsic prototypes every object needs (Object.prototype,
// Array.prototype, Function.prototype, the per-kind Error.prototype
// family). internal/runtime is responsible for populating the rest of the
// global object; this package only wires enough to make the core language
// (objects, arrays, functions, classes, errors, iteration) self-consistent.
package vm

import (
	"github.com/vesper-lang/vesper/internal/bytecode"
	"github.com/vesper-lang/vesper/internal/envrec"
	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
)

// Protos collects the intrinsic prototype objects every closure and literal
// needs at creation time (the "every ordinary object has a
// [[Prototype]]").
type Protos struct {
	Object    *object.Object
	Array     *object.Object
	Function  *object.Object
	Error     *object.Object
	TypeError *object.Object
	RangeErr  *object.Object
	RefErr    *object.Object
	SyntaxErr *object.Object
	Generator *object.Object
	Promise   *object.Object
}

// VM is one realm's interpreter state (the "realm" generalized down
// to exactly what the core engine needs: a heap, a global environment, and
// intrinsics). internal/runtime owns the Heap and constructs exactly one VM
// per realm.
type VM struct {
	Heap    *gc.Heap
	Global  *envrec.GlobalEnv
	Protos  Protos
	Symbols Symbols

	// CallStack is the live frame chain, newest last, used for stack-depth
	// limiting and for rendering a script-visible .stack string on thrown
	// errors.
	CallStack []*Frame

	// MaxStackDepth guards against runaway recursion (doesn't
	// mandate a figure; internal/runtime.Options exposes this as
	// WithStackLimit). Zero means "use the package default".
	MaxStackDepth int
}

const defaultMaxStackDepth = 2000

// New creates a VM over an already-constructed heap and global environment.
// internal/runtime builds the global object/environment (it owns the
// host-visible bindings) and passes both in here once.
func New(heap *gc.Heap, global *envrec.GlobalEnv, protos Protos, symbols Symbols) *VM {
	return &VM{Heap: heap, Global: global, Protos: protos, Symbols: symbols, MaxStackDepth: defaultMaxStackDepth}
}

// GCRoots implements gc.RootProvider: the global environment and every live
// frame's registers/environment chain are roots (step 1).
func (vm *VM) GCRoots(push func(*gc.Header)) {
	push(vm.Global.GCHeader())
	for _, f := range vm.CallStack {
		f.gcRoots(push)
	}
}

// Symbols holds the well-known symbol identities the interpreter itself
// consults (iteration protocol, async iteration). internal/runtime may
// expose these same identities to script code as Symbol.iterator etc.;
// this package only needs their identity, not their full Symbol object
// representation, so they are opaque comparison tokens: symbols are
// compared by identity only.
type Symbols struct {
	Iterator      any
	AsyncIterator any
}

// RunProgram executes a freshly compiled unit's entry function to
// completion against the VM's global environment ("the top level
// is itself a var-scope"). Statement completion values are not tracked
// by this minimal engine; RunProgram returns the value passed to the
// implicit OpReturn internal/codegen.Compile emits (undefined for a plain
// script).
func (vm *VM) RunProgram(unit *CompiledUnit) (value.Value, error) {
	return vm.RunProgramIn(unit, vm.Global)
}

// RunProgramIn executes unit's entry function against an arbitrary
// top-level environment rather than the realm's global environment.
// internal/modules uses this to run a module body against its own
// ModuleEnv (the "a module's top level is its own var-scope, not
// the realm global") while still sharing this VM's heap and intrinsics.
func (vm *VM) RunProgramIn(unit *CompiledUnit, topLevel envrec.Env) (value.Value, error) {
	fn := unit.Functions[unit.MainIndex]
	frame := vm.newFrame(fn, unit, topLevel, value.Undef(), value.Undef(), nil)
	out := vm.Execute(frame)
	switch out.Kind {
	case OutcomeReturn:
		return out.Value, nil
	case OutcomeThrow:
		return value.Value{}, &ThrownError{Value: out.Value}
	default:
		return value.Value{}, &ThrownError{Value: vm.NewTypeError("unexpected suspension at top level")}
	}
}

// CompiledUnit is the flat function table internal/codegen.Output produces,
// renamed at this layer's boundary so internal/vm does not need to import
// internal/codegen (which in turn imports internal/ast) — the VM only ever
// needs the already-lowered table.
type CompiledUnit struct {
	Functions []*bytecode.Function
	MainIndex int

	// Module identifies the internal/modules.Record this unit was compiled
	// from, opaque to internal/vm to avoid an import cycle. ImportMetaHook
	// is the only thing that reads it. Nil for a plain script.
	Module any
}

// FromCodegenOutput adapts a codegen.Output-shaped value without importing
// internal/codegen; internal/runtime (which already imports codegen) calls
// this after Compile succeeds.
func FromCodegenOutput(functions []*bytecode.Function, mainIndex int) *CompiledUnit {
	return &CompiledUnit{Functions: functions, MainIndex: mainIndex}
}

// ThrownError wraps a script-level thrown value (the abrupt
// completion) so it can cross a Go error return at the host boundary
// (every script error is an internal/object.Object
// with an exception brand until pkg/vesper rehydrates it as a
// *vesper.ScriptError).
type ThrownError struct {
	Value value.Value
}

func (e *ThrownError) Error() string {
	if e.Value.IsObject() {
		if o, ok := e.Value.Ref().(*object.Object); ok {
			if msg, err := o.Get(object.StringKey("message"), e.Value); err == nil && msg.IsString() {
				if name, err := o.Get(object.StringKey("name"), e.Value); err == nil && name.IsString() {
					return name.AsString() + ": " + msg.AsString()
				}
				return msg.AsString()
			}
		}
	}
	s, err := value.ToString(e.Value)
	if err != nil {
		return "uncatchable thrown value"
	}
	return s
}
