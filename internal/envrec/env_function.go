package envrec

import (
	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
)

// ThisStatus tracks a function environment's `this` binding lifecycle
//: arrow functions never bind `this` (lexical), ordinary
// functions start uninitialized until `super()` (derived classes) or the
// call itself (base functions/non-constructors) initializes it.
type ThisStatus uint8

const (
	ThisUninitialized ThisStatus = iota
	ThisInitialized
	ThisLexical
)

// FunctionEnv is a declarative environment plus the function-call-specific
// fields: function, new_target, this_value, this_status.
type FunctionEnv struct {
	Declarative
	Function   *object.Object
	NewTarget  value.Value
	ThisValue  value.Value
	ThisState  ThisStatus
	HomeObject *object.Object // for `super.prop` resolution
}

func NewFunctionEnv(heap *gc.Heap, outer Env, fn *object.Object, status ThisStatus) *FunctionEnv {
	e := &FunctionEnv{Declarative: Declarative{outer: outer, bindings: make(map[string]*Binding)}, Function: fn, ThisState: status}
	e.hdr.Init(funcEnvVTable, e)
	heap.Register(&e.hdr, 80)
	return e
}

var funcEnvVTable = &gc.VTable{
	Kind: gc.KindEnvironment,
	Scan: func(owner any, push func(*gc.Header)) {
		e := owner.(*FunctionEnv)
		e.scanBindings(push)
		if e.outer != nil {
			push(e.outer.GCHeader())
		}
		if e.Function != nil {
			push(&e.Function.Header)
		}
		if e.HomeObject != nil {
			push(&e.HomeObject.Header)
		}
	},
}

func (e *FunctionEnv) HasThisBinding() bool { return e.ThisState != ThisLexical }

// BindThisValue sets the `this` binding exactly once, the way a derived-
// class constructor's `this` is only initialized after super() returns.
func (e *FunctionEnv) BindThisValue(v value.Value) error {
	if e.ThisState == ThisInitialized {
		return refError("super called twice")
	}
	e.ThisValue = v
	e.ThisState = ThisInitialized
	return nil
}

func (e *FunctionEnv) GetThisBinding() (value.Value, error) {
	if e.ThisState == ThisUninitialized {
		return value.Value{}, refError("must call super constructor before accessing 'this'")
	}
	return e.ThisValue, nil
}

// GetSuperBase resolves the [[HomeObject]].[[GetPrototypeOf]]() used by
// super-property access ("super-property").
func (e *FunctionEnv) GetSuperBase() value.Value {
	if e.HomeObject == nil {
		return value.Undef()
	}
	return e.HomeObject.GetPrototypeOf()
}
