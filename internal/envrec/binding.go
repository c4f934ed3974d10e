// Package envrec implements the environment record hierarchy
// component E, §3.6, §4.4): declarative, object, function, module, and
// global environments chained by an outer pointer, plus binding
// resolution. Grounded on internal/interp/environment.go's outer-chain
// Define/Get idiom, generalized from a flat variable map to the five
// record kinds ECMAScript scoping requires.
package envrec

import (
	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/value"
)

// BindingFlag records per-binding metadata.
type BindingFlag uint8

const (
	Immutable BindingFlag = 1 << iota
	Initialized
	Deletable
	Strict
	Import
)

// Binding is one name->value slot inside a declarative environment.
type Binding struct {
	Flags BindingFlag
	Value value.Value

	// Import bindings re-resolve through a source module on every read
	//. SourceModule is an opaque handle into internal/modules;
	// this package never imports internal/modules to avoid a cycle.
	SourceModule any
	ExternalName string
	ResolveImport func(module any, name string) (value.Value, error)
}

func (b *Binding) initialized() bool { return b.Flags&Initialized != 0 }
func (b *Binding) immutable() bool   { return b.Flags&Immutable != 0 }

// ReferenceError / TypeError sentinels raised by binding resolution. The
// interpreter maps these to real script-level error objects at the VM
// boundary (internal/vm owns that translation).
type BindingError struct {
	Kind    string // "ReferenceError" or "TypeError"
	Message string
}

func (e *BindingError) Error() string { return e.Kind + ": " + e.Message }

func refError(msg string) error  { return &BindingError{Kind: "ReferenceError", Message: msg} }
func typeError(msg string) error { return &BindingError{Kind: "TypeError", Message: msg} }

// gcHeaderHolder lets each environment kind expose its cell header for GC
// root-scanning without this package depending on gc.Header directly in
// every struct literal call site.
type gcHeaderHolder struct{ hdr gc.Header }

func (g *gcHeaderHolder) GCHeader() *gc.Header { return &g.hdr }
