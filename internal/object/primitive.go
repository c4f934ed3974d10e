package object

import "github.com/vesper-lang/vesper/internal/value"

// InstallHooks wires value.ToPrimitive back into this package's
// OrdinaryToPrimitive, breaking the value<->object import cycle described
// in internal/value/conv.go. internal/runtime calls this once at startup.
func InstallHooks() {
	value.InstallObjectHooks(value.ObjectHooks{
		ToPrimitive: func(ref value.Ref, hint string) (value.Value, error) {
			o, ok := ref.(*Object)
			if !ok {
				return value.Undef(), nil
			}
			return OrdinaryToPrimitive(o, hint)
		},
	})
}

// OrdinaryToPrimitive implements OrdinaryToPrimitive: try
// "valueOf" then "toString" (or the reverse when hint is "string"),
// returning the first result that is not itself an object.
func OrdinaryToPrimitive(o *Object, hint string) (value.Value, error) {
	methodNames := []string{"valueOf", "toString"}
	if hint == "string" {
		methodNames = []string{"toString", "valueOf"}
	}
	self := value.ObjectRef(o)
	for _, name := range methodNames {
		fnVal, err := o.Get(StringKey(name), self)
		if err != nil {
			return value.Value{}, err
		}
		fn, ok := fnVal.Ref().(*Object)
		if !fnVal.IsObject() || !ok || fn.Call == nil {
			continue
		}
		result, err := fn.Call(self, nil)
		if err != nil {
			return value.Value{}, err
		}
		if !result.IsObject() {
			return result, nil
		}
	}
	return value.Value{}, newTypeError("cannot convert object to primitive value")
}

func newTypeError(msg string) error { return &metaError{kind: "TypeError", message: msg} }

type metaError struct {
	kind    string
	message string
}

func (e *metaError) Error() string { return e.kind + ": " + e.message }
