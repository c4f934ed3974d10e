package envrec

import (
	"github.com/vesper-lang/vesper/internal/object"
)

// PrivateKind distinguishes the three private-name binding shapes a class
// body can declare: fields, methods, and accessors each resolve
// differently at a private property reference.
type PrivateKind uint8

const (
	PrivateField PrivateKind = iota
	PrivateMethod
	PrivateGetter
	PrivateSetter
)

// PrivateNameBinding records what a single #name resolves to within one
// class's private environment.
type PrivateNameBinding struct {
	Kind   PrivateKind
	Key    object.Key // brand-checked symbol key used as the actual storage key
	Method *object.Object
}

// PrivateEnv is a flat name -> binding map nested per class (a
// class with private fields pushes a new private environment around its
// body; nested classes chain to the outer class's private environment so
// an inner class's methods can still reference an enclosing class's
// private names when textually nested).
//
// Unlike the other environment kinds, private environments never hold
// interpreted values directly, so there is nothing for GC to trace through
// them beyond the private methods they name; those are reachable anyway
// from the class's own prototype/constructor, so PrivateEnv is not a GC
// root and carries no gc.Header.
type PrivateEnv struct {
	outer   *PrivateEnv
	names   map[string]*PrivateNameBinding
}

func NewPrivateEnv(outer *PrivateEnv) *PrivateEnv {
	return &PrivateEnv{outer: outer, names: make(map[string]*PrivateNameBinding)}
}

func (p *PrivateEnv) Outer() *PrivateEnv { return p.outer }

func (p *PrivateEnv) Declare(name string, b *PrivateNameBinding) {
	p.names[name] = b
}

// Resolve implements resolve_private_identifier: walk outward
// through nested class bodies until a private environment declares name.
func (p *PrivateEnv) Resolve(name string) (*PrivateNameBinding, bool) {
	for cur := p; cur != nil; cur = cur.outer {
		if b, ok := cur.names[name]; ok {
			return b, true
		}
	}
	return nil, false
}
