// Package object implements the ordinary-object property machinery:
// the three coexisting property stores, the
// descriptor-level meta-operations, and the array length invariant.
package object

import (
	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/value"
)

// propNode is one entry in the named, insertion-ordered property list
// (store 1).
type propNode struct {
	key        Key
	desc       Descriptor
	prev, next *propNode
}

// Object is an ordinary object: a prototype, an extensible bit, and the
// three coexisting property stores: indexed, named, and symbol-keyed.
type Object struct {
	Header gc.Header

	proto      value.Value // object or null
	extensible bool

	namedHead, namedTail *propNode
	strHash              map[string]*propNode
	symHash              map[any]*propNode

	// Indexed array store (store 3).
	rbt         bool // true => sparse (map-backed) representation
	dense       []Descriptor
	sparse      map[uint32]Descriptor
	itemNum     int
	itemMax     uint32
	denseCutoff int // not read; the dense/sparse switch uses sparseThreshold (array.go)

	// Array-specific: when isArray is true, "length" is synthesized rather
	// than stored as an ordinary property.
	isArray     bool
	arrayLength uint32

	class string // diagnostic class tag: "Object", "Array", "Function", ...

	// Callable objects (functions, bound functions, native functions) hang
	// their invocation data here; nil for non-callable objects.
	Call      CallFunc
	Construct ConstructFunc

	// Host-extensible native data ("native object registration").
	NativeData  any
	NativeScan  func(push func(*gc.Header))
	NativeFree  func()
}

// CallFunc invokes a callable object as a function. thisVal is the
// resolved `this` binding; args are already-evaluated argument values.
type CallFunc func(thisVal value.Value, args []value.Value) (value.Value, error)

// ConstructFunc invokes a callable object as a constructor (`new`).
// newTarget distinguishes the originally-invoked constructor under
// inheritance ("new-target load").
type ConstructFunc func(args []value.Value, newTarget value.Value) (value.Value, error)

var objectVTable = &gc.VTable{
	Kind: gc.KindObject,
	Scan: func(owner any, push func(*gc.Header)) {
		o := owner.(*Object)
		o.scan(push)
	},
	Free: func(owner any) {
		o := owner.(*Object)
		if o.NativeFree != nil {
			o.NativeFree()
		}
	},
}

// New allocates a fresh ordinary object with the given prototype (pass
// value.Null_() for no prototype) and registers it on heap.
func New(heap *gc.Heap, proto value.Value) *Object {
	o := &Object{
		proto:      proto,
		extensible: true,
		strHash:    make(map[string]*propNode),
		symHash:    make(map[any]*propNode),
		class:      "Object",
	}
	o.Header.Init(objectVTable, o)
	heap.Register(&o.Header, 96)
	return o
}

// Class returns the internal classification used by Object.prototype.toString
// and similar diagnostics.
func (o *Object) Class() string    { return o.class }
func (o *Object) SetClass(c string) { o.class = c }

func (o *Object) IsCallable() bool { return o.Call != nil }

func (o *Object) pushRef(push func(*gc.Header), v value.Value) {
	if v.IsObject() || v.IsBigInt() || v.IsSymbol() {
		if hdr := headerOf(v.Ref()); hdr != nil {
			push(hdr)
		}
	}
}

// headerOf extracts the gc.Header embedded in a heap ref, if any. Non-Object
// refs (symbols, bigints) are expected to embed their own Header and
// implement this same accessor pattern; objects do so directly.
func headerOf(ref value.Ref) *gc.Header {
	type headerer interface{ GCHeader() *gc.Header }
	if h, ok := ref.(headerer); ok {
		return h.GCHeader()
	}
	if o, ok := ref.(*Object); ok {
		return &o.Header
	}
	return nil
}

// GCHeader lets other packages (gc root scanners) reach this cell's header.
func (o *Object) GCHeader() *gc.Header { return &o.Header }

func (o *Object) scan(push func(*gc.Header)) {
	o.pushRef(push, o.proto)
	for n := o.namedHead; n != nil; n = n.next {
		o.scanDescriptor(push, n.desc)
		if n.key.isSymbol {
			if hdr := headerOf(n.key.sym); hdr != nil {
				push(hdr)
			}
		}
	}
	if o.rbt {
		for _, d := range o.sparse {
			o.scanDescriptor(push, d)
		}
	} else {
		for _, d := range o.dense {
			o.scanDescriptor(push, d)
		}
	}
}

func (o *Object) scanDescriptor(push func(*gc.Header), d Descriptor) {
	o.pushRef(push, d.Value)
	o.pushRef(push, d.Get)
	o.pushRef(push, d.Set)
}

// ---- Meta-protocol ----

func (o *Object) GetPrototypeOf() value.Value   { return o.proto }
func (o *Object) SetPrototypeOf(p value.Value) bool {
	if !o.extensible {
		return value.SameValue(p, o.proto)
	}
	// Reject prototype cycles through the chain being set.
	for cur := p; cur.IsObject(); {
		if other, ok := cur.Ref().(*Object); ok {
			if other == o {
				return false
			}
			cur = other.proto
			continue
		}
		break
	}
	o.proto = p
	return true
}

func (o *Object) IsExtensible() bool    { return o.extensible }
func (o *Object) PreventExtensions()    { o.extensible = false }

// GetOwnProperty looks up a property in exactly one of the three stores
// (invariant 1).
func (o *Object) GetOwnProperty(k Key) (Descriptor, bool) {
	if k.IsArrayIndex() {
		return o.getArrayOwn(k.Index())
	}
	if n := o.lookupNamed(k); n != nil {
		return n.desc, true
	}
	return Descriptor{}, false
}

func (o *Object) lookupNamed(k Key) *propNode {
	if k.isSymbol {
		return o.symHash[k.sym]
	}
	return o.strHash[k.str]
}

// DefineOwnProperty implements OrdinaryDefineOwnProperty via the descriptor
// merge algorithm (testable property 4), plus the array length
// invariant override (§4.3) for array instances.
func (o *Object) DefineOwnProperty(k Key, desc Descriptor) bool {
	if o.isArray && !k.isSymbol && k.str == "length" {
		return o.setArrayLength(desc)
	}
	if k.IsArrayIndex() {
		return o.defineArrayIndex(k.Index(), desc)
	}

	existing, has := o.GetOwnProperty(k)
	var curPtr *Descriptor
	if has {
		curPtr = &existing
	}
	merged, ok := ValidateAndApplyPropertyDescriptor(curPtr, o.extensible, desc)
	if !ok {
		return false
	}

	if n := o.lookupNamed(k); n != nil {
		n.desc = merged
		return true
	}
	node := &propNode{key: k, desc: merged}
	if o.namedTail == nil {
		o.namedHead, o.namedTail = node, node
	} else {
		o.namedTail.next = node
		node.prev = o.namedTail
		o.namedTail = node
	}
	if k.isSymbol {
		o.symHash[k.sym] = node
	} else {
		o.strHash[k.str] = node
	}
	return true
}

// HasProperty walks the prototype chain (style resolution, applied
// to objects rather than environments).
func (o *Object) HasProperty(k Key) bool {
	if _, ok := o.GetOwnProperty(k); ok {
		return true
	}
	if p, ok := o.proto.Ref().(*Object); o.proto.IsObject() && ok {
		return p.HasProperty(k)
	}
	return false
}

// Get implements OrdinaryGet: own property, else delegate up the prototype
// chain; accessor properties invoke their getter with receiver as `this`.
func (o *Object) Get(k Key, receiver value.Value) (value.Value, error) {
	d, ok := o.GetOwnProperty(k)
	if !ok {
		if p, isObj := o.proto.Ref().(*Object); o.proto.IsObject() && isObj {
			return p.Get(k, receiver)
		}
		return value.Undef(), nil
	}
	if d.IsAccessor() {
		if !d.Get.IsObject() {
			return value.Undef(), nil
		}
		fn, _ := d.Get.Ref().(*Object)
		if fn == nil || fn.Call == nil {
			return value.Undef(), nil
		}
		return fn.Call(receiver, nil)
	}
	return d.Value, nil
}

// Set implements OrdinarySet.
func (o *Object) Set(k Key, v value.Value, receiver value.Value) (bool, error) {
	d, ok := o.GetOwnProperty(k)
	if !ok {
		if p, isObj := o.proto.Ref().(*Object); o.proto.IsObject() && isObj {
			return p.Set(k, v, receiver)
		}
		if !o.extensible {
			return false, nil
		}
		return o.DefineOwnProperty(k, DataDescriptor(v, true, true, true)), nil
	}
	if d.IsAccessor() {
		if !d.Set.IsObject() {
			return false, nil
		}
		fn, _ := d.Set.Ref().(*Object)
		if fn == nil || fn.Call == nil {
			return false, nil
		}
		_, err := fn.Call(receiver, []value.Value{v})
		return err == nil, err
	}
	if !d.Writable {
		return false, nil
	}
	recvObj, ok := receiver.Ref().(*Object)
	if receiver.IsObject() && ok && recvObj == o {
		d.Value = v
		return o.DefineOwnProperty(k, Descriptor{Flags: HasValue, Value: v}), nil
	}
	if receiver.IsObject() && ok {
		return recvObj.DefineOwnProperty(k, DataDescriptor(v, true, true, true)), nil
	}
	return false, nil
}

// Delete removes an own property if configurable.
func (o *Object) Delete(k Key) bool {
	if k.IsArrayIndex() {
		return o.deleteArrayIndex(k.Index())
	}
	n := o.lookupNamed(k)
	if n == nil {
		return true
	}
	if !n.desc.Configurable {
		return false
	}
	o.unlinkNamed(n)
	return true
}

func (o *Object) unlinkNamed(n *propNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		o.namedHead = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		o.namedTail = n.prev
	}
	if n.key.isSymbol {
		delete(o.symHash, n.key.sym)
	} else {
		delete(o.strHash, n.key.str)
	}
}

// OwnPropertyKeys implements [[OwnPropertyKeys]] ordering: array-index
// keys ascending, then string keys in insertion order, then symbol keys
// in insertion order.
func (o *Object) OwnPropertyKeys() []Key {
	keys := make([]Key, 0, o.itemNum+len(o.strHash)+len(o.symHash))
	keys = append(keys, o.arrayIndexKeysSorted()...)
	for n := o.namedHead; n != nil; n = n.next {
		if !n.key.isSymbol {
			keys = append(keys, n.key)
		}
	}
	for n := o.namedHead; n != nil; n = n.next {
		if n.key.isSymbol {
			keys = append(keys, n.key)
		}
	}
	return keys
}
