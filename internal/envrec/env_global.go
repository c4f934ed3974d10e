package envrec

import (
	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
)

// GlobalEnv is an object environment over the global object plus a
// declarative "var" record, plus the set of names declared lexically at
// top level.
type GlobalEnv struct {
	gcHeaderHolder
	objectRecord *ObjectEnv
	varNames     map[string]bool
	declRecord   *Declarative
	lexNames     map[string]bool
}

var globalEnvVTable = &gc.VTable{
	Kind: gc.KindEnvironment,
	Scan: func(owner any, push func(*gc.Header)) {
		e := owner.(*GlobalEnv)
		push(e.objectRecord.GCHeader())
		push(e.declRecord.GCHeader())
	},
}

func NewGlobalEnv(heap *gc.Heap, globalObject *object.Object) *GlobalEnv {
	e := &GlobalEnv{
		objectRecord: NewObjectEnv(heap, nil, globalObject, false),
		varNames:     make(map[string]bool),
		declRecord:   NewDeclarative(heap, nil),
		lexNames:     make(map[string]bool),
	}
	e.hdr.Init(globalEnvVTable, e)
	heap.Register(&e.hdr, 32)
	return e
}

func (e *GlobalEnv) Outer() Env { return nil }

func (e *GlobalEnv) HasBinding(name string) bool {
	if e.declRecord.HasBinding(name) {
		return true
	}
	return e.objectRecord.HasBinding(name)
}

// HasLexicalDeclaration reports whether name was declared with let/const/
// class at top level (used by the code generator to reject redeclaring a
// lexical name as a var, per scope collection rules).
func (e *GlobalEnv) HasLexicalDeclaration(name string) bool { return e.lexNames[name] }

func (e *GlobalEnv) CreateMutableBinding(name string, deletable bool) error {
	if e.objectRecord.target.HasProperty(object.StringKey(name)) {
		return nil
	}
	return e.objectRecord.CreateMutableBinding(name, deletable)
}

func (e *GlobalEnv) CreateGlobalVarBinding(name string, deletable bool) error {
	if !e.objectRecord.target.HasProperty(object.StringKey(name)) {
		_ = e.objectRecord.CreateMutableBinding(name, deletable)
		_ = e.objectRecord.InitializeBinding(name, value.Undef())
	}
	e.varNames[name] = true
	return nil
}

func (e *GlobalEnv) CreateGlobalLexicalBinding(name string, immutable bool) error {
	if immutable {
		_ = e.declRecord.CreateImmutableBinding(name, true)
	} else {
		_ = e.declRecord.CreateMutableBinding(name, true)
	}
	e.lexNames[name] = true
	return nil
}

func (e *GlobalEnv) CreateImmutableBinding(name string, strict bool) error {
	return e.declRecord.CreateImmutableBinding(name, strict)
}

func (e *GlobalEnv) InitializeBinding(name string, v value.Value) error {
	if e.declRecord.HasBinding(name) {
		return e.declRecord.InitializeBinding(name, v)
	}
	return e.objectRecord.InitializeBinding(name, v)
}

func (e *GlobalEnv) GetBindingValue(name string, strict bool) (value.Value, error) {
	if e.declRecord.HasBinding(name) {
		return e.declRecord.GetBindingValue(name, strict)
	}
	return e.objectRecord.GetBindingValue(name, strict)
}

func (e *GlobalEnv) SetMutableBinding(name string, v value.Value, strict bool) error {
	if e.declRecord.HasBinding(name) {
		return e.declRecord.SetMutableBinding(name, v, strict)
	}
	return e.objectRecord.SetMutableBinding(name, v, strict)
}

func (e *GlobalEnv) DeleteBinding(name string) bool {
	if e.varNames[name] {
		if !e.objectRecord.target.Delete(object.StringKey(name)) {
			return false
		}
		delete(e.varNames, name)
		return true
	}
	if e.declRecord.HasBinding(name) {
		return e.declRecord.DeleteBinding(name)
	}
	return true
}

func (e *GlobalEnv) HasThisBinding() bool { return true }

func (e *GlobalEnv) GetThisBinding() value.Value {
	return value.ObjectRef(e.objectRecord.target)
}

func (e *GlobalEnv) GlobalObject() *object.Object { return e.objectRecord.target }
