package envrec

import (
	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
)

// Env is the common interface every environment record kind implements
//. resolve_binding (Resolve, below) walks Outer() chains asking
// HasBinding; once it finds a hit, callers dereference via
// GetBindingValue/SetMutableBinding.
type Env interface {
	Outer() Env
	HasBinding(name string) bool
	GetBindingValue(name string, strict bool) (value.Value, error)
	SetMutableBinding(name string, v value.Value, strict bool) error
	CreateMutableBinding(name string, deletable bool) error
	CreateImmutableBinding(name string, strict bool) error
	InitializeBinding(name string, v value.Value) error
	DeleteBinding(name string) bool
	HasThisBinding() bool
	GCHeader() *gc.Header
}

// Declarative is a hash from name to Binding.
type Declarative struct {
	gcHeaderHolder
	outer    Env
	bindings map[string]*Binding
}

var declVTable = &gc.VTable{
	Kind: gc.KindEnvironment,
	Scan: func(owner any, push func(*gc.Header)) {
		e := owner.(*Declarative)
		e.scanBindings(push)
		if e.outer != nil {
			push(e.outer.GCHeader())
		}
	},
}

// NewDeclarative allocates a declarative environment whose outer pointer is
// outer (nil for the outermost scope).
func NewDeclarative(heap *gc.Heap, outer Env) *Declarative {
	e := &Declarative{outer: outer, bindings: make(map[string]*Binding)}
	e.hdr.Init(declVTable, e)
	heap.Register(&e.hdr, 48)
	return e
}

func (e *Declarative) Outer() Env { return e.outer }

func (e *Declarative) HasBinding(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

func (e *Declarative) CreateMutableBinding(name string, deletable bool) error {
	flags := BindingFlag(0)
	if deletable {
		flags |= Deletable
	}
	e.bindings[name] = &Binding{Flags: flags}
	return nil
}

func (e *Declarative) CreateImmutableBinding(name string, strict bool) error {
	flags := Immutable
	if strict {
		flags |= Strict
	}
	e.bindings[name] = &Binding{Flags: flags}
	return nil
}

func (e *Declarative) InitializeBinding(name string, v value.Value) error {
	b, ok := e.bindings[name]
	if !ok {
		return refError(name + " is not declared")
	}
	b.Value = v
	b.Flags |= Initialized
	return nil
}

// GetBindingValue reads a binding's current value: uninitialized
// let/const reads raise a ReferenceError.
func (e *Declarative) GetBindingValue(name string, strict bool) (value.Value, error) {
	b, ok := e.bindings[name]
	if !ok {
		return value.Value{}, refError(name + " is not defined")
	}
	if !b.initialized() {
		return value.Value{}, refError("cannot access '" + name + "' before initialization")
	}
	if b.Flags&Import != 0 {
		if b.ResolveImport == nil {
			return value.Undef(), nil
		}
		return b.ResolveImport(b.SourceModule, b.ExternalName)
	}
	return b.Value, nil
}

func (e *Declarative) SetMutableBinding(name string, v value.Value, strict bool) error {
	b, ok := e.bindings[name]
	if !ok {
		if strict {
			return refError(name + " is not defined")
		}
		e.bindings[name] = &Binding{Flags: Initialized, Value: v}
		return nil
	}
	if !b.initialized() {
		return refError("cannot access '" + name + "' before initialization")
	}
	if b.immutable() {
		return typeError("assignment to constant variable '" + name + "'")
	}
	b.Value = v
	return nil
}

func (e *Declarative) DeleteBinding(name string) bool {
	b, ok := e.bindings[name]
	if !ok {
		return true
	}
	if b.Flags&Deletable == 0 {
		return false
	}
	delete(e.bindings, name)
	return true
}

func (e *Declarative) HasThisBinding() bool { return false }

func (e *Declarative) scanBindings(push func(*gc.Header)) {
	for _, b := range e.bindings {
		if b.Value.IsObject() || b.Value.IsSymbol() || b.Value.IsBigInt() {
			if o, ok := b.Value.Ref().(*object.Object); ok {
				push(&o.Header)
			}
		}
	}
}

// Resolve implements resolve_binding: walk the lexical chain
// from env outward, returning the first environment whose HasBinding
// answers true.
func Resolve(env Env, name string) (Env, bool) {
	for cur := env; cur != nil; cur = cur.Outer() {
		if cur.HasBinding(name) {
			return cur, true
		}
	}
	return nil, false
}

// GetThisEnvironment implements get_this_environment: walk the
// chain until an environment answers HasThisBinding.
func GetThisEnvironment(env Env) Env {
	for cur := env; cur != nil; cur = cur.Outer() {
		if cur.HasThisBinding() {
			return cur
		}
	}
	return nil
}
