package envrec

import (
	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
)

// unscopablesSymbol identifies @@unscopables; internal/runtime installs the
// actual well-known symbol cell and passes it in via SetUnscopablesSymbol so
// this package doesn't need to own symbol allocation.
var unscopablesSymbol object.Key

// SetUnscopablesSymbol wires the @@unscopables well-known symbol used by
// with-statement bindings.
func SetUnscopablesSymbol(k object.Key) { unscopablesSymbol = k }

// ObjectEnv wraps a target object; bindings are its properties.
// IsWith affects name resolution by consulting @@unscopables.
type ObjectEnv struct {
	gcHeaderHolder
	outer  Env
	target *object.Object
	IsWith bool
}

var objEnvVTable = &gc.VTable{
	Kind: gc.KindEnvironment,
	Scan: func(owner any, push func(*gc.Header)) {
		e := owner.(*ObjectEnv)
		push(&e.target.Header)
		if e.outer != nil {
			push(e.outer.GCHeader())
		}
	},
}

func NewObjectEnv(heap *gc.Heap, outer Env, target *object.Object, isWith bool) *ObjectEnv {
	e := &ObjectEnv{outer: outer, target: target, IsWith: isWith}
	e.hdr.Init(objEnvVTable, e)
	heap.Register(&e.hdr, 32)
	return e
}

func (e *ObjectEnv) Outer() Env { return e.outer }

func (e *ObjectEnv) unscopable(name string) bool {
	if !e.IsWith {
		return false
	}
	blockList, err := e.target.Get(unscopablesSymbol, value.ObjectRef(e.target))
	if err != nil || !blockList.IsObject() {
		return false
	}
	bl, ok := blockList.Ref().(*object.Object)
	if !ok {
		return false
	}
	v, err := bl.Get(object.StringKey(name), blockList)
	return err == nil && value.ToBoolean(v)
}

func (e *ObjectEnv) HasBinding(name string) bool {
	if !e.target.HasProperty(object.StringKey(name)) {
		return false
	}
	return !e.unscopable(name)
}

func (e *ObjectEnv) CreateMutableBinding(name string, deletable bool) error {
	e.target.DefineOwnProperty(object.StringKey(name), object.DataDescriptor(value.Undef(), true, true, deletable))
	return nil
}

func (e *ObjectEnv) CreateImmutableBinding(name string, strict bool) error {
	e.target.DefineOwnProperty(object.StringKey(name), object.DataDescriptor(value.Undef(), false, true, false))
	return nil
}

func (e *ObjectEnv) InitializeBinding(name string, v value.Value) error {
	return e.SetMutableBinding(name, v, false)
}

func (e *ObjectEnv) GetBindingValue(name string, strict bool) (value.Value, error) {
	self := value.ObjectRef(e.target)
	if !e.target.HasProperty(object.StringKey(name)) {
		if strict {
			return value.Value{}, refError(name + " is not defined")
		}
		return value.Undef(), nil
	}
	return e.target.Get(object.StringKey(name), self)
}

func (e *ObjectEnv) SetMutableBinding(name string, v value.Value, strict bool) error {
	self := value.ObjectRef(e.target)
	ok, err := e.target.Set(object.StringKey(name), v, self)
	if err != nil {
		return err
	}
	if !ok && strict {
		return typeError("cannot assign to read only property '" + name + "'")
	}
	return nil
}

func (e *ObjectEnv) DeleteBinding(name string) bool {
	return e.target.Delete(object.StringKey(name))
}

func (e *ObjectEnv) HasThisBinding() bool { return false }
