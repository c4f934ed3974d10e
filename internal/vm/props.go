package vm

import (
	"github.com/vesper-lang/vesper/internal/envrec"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
)

// thisValue implements GetThisBinding by walking to the nearest
// this-binding-capable environment (the get_this_environment),
// which for an arrow function's plain Declarative var-scope naturally
// skips past it to the lexically enclosing function/module/global record.
func (vm *VM) thisValue(frame *Frame) (value.Value, error) {
	env := envrec.GetThisEnvironment(frame.LexEnv)
	switch e := env.(type) {
	case *envrec.FunctionEnv:
		v, err := e.GetThisBinding()
		if err != nil {
			return value.Value{}, &ThrownError{Value: vm.toThrowable(err)}
		}
		return v, nil
	case *envrec.GlobalEnv:
		return e.GetThisBinding(), nil
	case *envrec.ModuleEnv:
		return e.GetThisBinding(), nil
	default:
		return value.Undef(), nil
	}
}

func asObject(v value.Value) (*object.Object, bool) {
	if !v.IsObject() {
		return nil, false
	}
	o, ok := v.Ref().(*object.Object)
	return o, ok
}

func (vm *VM) requireObject(v value.Value, what string) (*object.Object, error) {
	o, ok := asObject(v)
	if !ok {
		return nil, &ThrownError{Value: vm.NewTypeError("cannot " + what + " property of a non-object")}
	}
	return o, nil
}

func (vm *VM) getProp(objVal value.Value, key string) (value.Value, error) {
	if objVal.IsNullish() {
		return value.Value{}, &ThrownError{Value: vm.NewTypeError("cannot read properties of " + nullishName(objVal) + " (reading '" + key + "')")}
	}
	o, ok := asObject(objVal)
	if !ok {
		return vm.getPropPrimitive(objVal, key)
	}
	v, err := o.Get(object.StringKey(key), objVal)
	if err != nil {
		return value.Value{}, &ThrownError{Value: vm.toThrowable(err)}
	}
	return v, nil
}

func nullishName(v value.Value) string {
	if v.IsNull() {
		return "null"
	}
	return "undefined"
}

// getPropPrimitive reads a property off a non-object primitive by boxing
// through the matching prototype (GetV on primitives), covering
// string .length/index access and method lookups on numbers/booleans.
func (vm *VM) getPropPrimitive(v value.Value, key string) (value.Value, error) {
	if v.IsString() {
		s := v.AsString()
		if key == "length" {
			return value.Num(float64(len([]rune(s)))), nil
		}
		if idx, ok := parseIndex(key); ok {
			r := []rune(s)
			if idx >= 0 && idx < len(r) {
				return value.Str(string(r[idx])), nil
			}
			return value.Undef(), nil
		}
	}
	proto := vm.protoFor(v)
	if proto == nil {
		return value.Undef(), nil
	}
	return proto.Get(object.StringKey(key), v)
}

func (vm *VM) protoFor(v value.Value) *object.Object {
	switch {
	case v.IsString(), v.IsNumber(), v.IsBoolean():
		return vm.Protos.Object
	default:
		return nil
	}
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func (vm *VM) setProp(objVal value.Value, key string, v value.Value) error {
	o, err := vm.requireObject(objVal, "set")
	if err != nil {
		return err
	}
	if _, err := o.Set(object.StringKey(key), v, objVal); err != nil {
		return &ThrownError{Value: vm.toThrowable(err)}
	}
	return nil
}

func (vm *VM) getPropComputed(objVal, keyVal value.Value) (value.Value, error) {
	key, err := value.ToPropertyKey(keyVal)
	if err != nil {
		return value.Value{}, &ThrownError{Value: vm.toThrowable(err)}
	}
	if key.IsSymbol() {
		if objVal.IsNullish() {
			return value.Value{}, &ThrownError{Value: vm.NewTypeError("cannot read properties of " + nullishName(objVal))}
		}
		o, ok := asObject(objVal)
		if !ok {
			return value.Undef(), nil
		}
		v, err := o.Get(object.SymbolKey(key.Ref()), objVal)
		if err != nil {
			return value.Value{}, &ThrownError{Value: vm.toThrowable(err)}
		}
		return v, nil
	}
	s, _ := value.ToString(key)
	return vm.getProp(objVal, s)
}

func (vm *VM) setPropComputed(objVal, keyVal, v value.Value) error {
	key, err := value.ToPropertyKey(keyVal)
	if err != nil {
		return &ThrownError{Value: vm.toThrowable(err)}
	}
	o, oerr := vm.requireObject(objVal, "set")
	if oerr != nil {
		return oerr
	}
	var pk object.Key
	if key.IsSymbol() {
		pk = object.SymbolKey(key.Ref())
	} else {
		s, _ := value.ToString(key)
		pk = object.StringKey(s)
	}
	if _, err := o.Set(pk, v, objVal); err != nil {
		return &ThrownError{Value: vm.toThrowable(err)}
	}
	return nil
}

func (vm *VM) deleteProp(objVal value.Value, key string) (value.Value, error) {
	o, ok := asObject(objVal)
	if !ok {
		return value.Bool(true), nil
	}
	return value.Bool(o.Delete(object.StringKey(key))), nil
}

func (vm *VM) deletePropComputed(objVal, keyVal value.Value) (value.Value, error) {
	key, err := value.ToPropertyKey(keyVal)
	if err != nil {
		return value.Value{}, &ThrownError{Value: vm.toThrowable(err)}
	}
	o, ok := asObject(objVal)
	if !ok {
		return value.Bool(true), nil
	}
	var pk object.Key
	if key.IsSymbol() {
		pk = object.SymbolKey(key.Ref())
	} else {
		s, _ := value.ToString(key)
		pk = object.StringKey(s)
	}
	return value.Bool(o.Delete(pk)), nil
}

// getSuperProp/setSuperProp implement super.prop access:
// lookup starts at [[HomeObject]].[[GetPrototypeOf]](), the receiver is
// the current frame's `this`, not the super base itself.
func (vm *VM) getSuperProp(frame *Frame, key string) (value.Value, error) {
	this, err := vm.thisValue(frame)
	if err != nil {
		return value.Value{}, err
	}
	if frame.HomeObject == nil {
		return value.Undef(), nil
	}
	base := frame.HomeObject.GetPrototypeOf()
	o, ok := asObject(base)
	if !ok {
		return value.Undef(), nil
	}
	v, err2 := o.Get(object.StringKey(key), this)
	if err2 != nil {
		return value.Value{}, &ThrownError{Value: vm.toThrowable(err2)}
	}
	return v, nil
}

func (vm *VM) setSuperProp(frame *Frame, key string, v value.Value) error {
	this, err := vm.thisValue(frame)
	if err != nil {
		return err
	}
	if frame.HomeObject == nil {
		return nil
	}
	base := frame.HomeObject.GetPrototypeOf()
	o, ok := asObject(base)
	if !ok {
		return nil
	}
	if _, err2 := o.Set(object.StringKey(key), v, this); err2 != nil {
		return &ThrownError{Value: vm.toThrowable(err2)}
	}
	return nil
}

// mergeProps implements object-spread/rest-collection (OpMergeProps):
// copy every own enumerable string-keyed property of src onto dst.
func (vm *VM) mergeProps(dst, src value.Value) error {
	so, ok := asObject(src)
	if !ok {
		return nil
	}
	do, err := vm.requireObject(dst, "merge into")
	if err != nil {
		return err
	}
	for _, k := range so.EnumerableStringKeys() {
		v, gerr := so.Get(k, src)
		if gerr != nil {
			return &ThrownError{Value: vm.toThrowable(gerr)}
		}
		do.DefineOwnProperty(k, object.DataDescriptor(v, true, true, true))
	}
	return nil
}

func (vm *VM) defineAccessor(objVal value.Value, key string, fnVal value.Value, isGetter bool) error {
	o, err := vm.requireObject(objVal, "define accessor on")
	if err != nil {
		return err
	}
	k := object.StringKey(key)
	existing, _ := o.GetOwnProperty(k)
	var get, set value.Value
	if existing.IsAccessor() {
		get, set = existing.Get, existing.Set
	}
	if isGetter {
		get = fnVal
	} else {
		set = fnVal
	}
	o.DefineOwnProperty(k, object.AccessorDescriptor(get, set, true, true))
	return nil
}

func (vm *VM) setProto(objVal, protoVal value.Value) error {
	o, err := vm.requireObject(objVal, "set prototype of")
	if err != nil {
		return err
	}
	if !o.SetPrototypeOf(protoVal) {
		return &ThrownError{Value: vm.NewTypeError("cyclic __proto__ value")}
	}
	return nil
}
