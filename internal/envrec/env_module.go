package envrec

import (
	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/value"
)

// ModuleEnv is a declarative environment holding a module's top-level
// bindings, including indirect bindings that re-resolve through another
// module's environment on every read (§4.9). The module linker
// (internal/modules) populates Imports via CreateImportBinding once star-
// export ambiguity and cycle resolution have settled.
type ModuleEnv struct {
	Declarative
}

var moduleEnvVTable = &gc.VTable{
	Kind: gc.KindEnvironment,
	Scan: func(owner any, push func(*gc.Header)) {
		e := owner.(*ModuleEnv)
		e.scanBindings(push)
		// Module environments have no outer: resolution never escapes a
		// module's own top level.
	},
}

// NewModuleEnv allocates a module environment record. It has no outer
// environment: free identifier references that aren't found here fall
// through to a ReferenceError, not to an enclosing scope.
func NewModuleEnv(heap *gc.Heap) *ModuleEnv {
	e := &ModuleEnv{Declarative: Declarative{bindings: make(map[string]*Binding)}}
	e.hdr.Init(moduleEnvVTable, e)
	heap.Register(&e.hdr, 48)
	return e
}

// CreateImportBinding installs an indirect binding that resolves through
// sourceModule's environment on every GetBindingValue call: an indirect
// binding means re-exported or imported names must observe the exporting
// module's live value, not a snapshot taken at link time.
func (e *ModuleEnv) CreateImportBinding(localName string, sourceModule any, externalName string, resolve func(module any, name string) (value.Value, error)) {
	e.bindings[localName] = &Binding{
		Flags:         Initialized | Import | Immutable,
		SourceModule:  sourceModule,
		ExternalName:  externalName,
		ResolveImport: resolve,
	}
}

func (e *ModuleEnv) HasThisBinding() bool { return true }

// GetThisBinding always answers undefined for modules (top-level
// `this` inside a module is undefined).
func (e *ModuleEnv) GetThisBinding() value.Value { return value.Undef() }
