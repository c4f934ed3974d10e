// Package gc implements the engine's mark-and-sweep garbage collector
// (component A, §4.1). Every heap-managed value — objects, strings
// backed by non-interned buffers, environment records, script/module units,
// generator contexts — embeds a Header and registers itself on a Heap's
// global cell list at allocation time. There are no reference counts; all
// liveness is decided by tracing from a root set ("Cyclic object
// graphs").
package gc

// Kind identifies what a Cell actually is, mirroring the "known kinds" list
// in (ordinary object, array, function object, environment
// record, script, module, context, ...). The VTable for a Kind supplies the
// Scan/Free behavior; Kind itself is only used for diagnostics.
type Kind byte

const (
	KindObject Kind = iota
	KindArray
	KindFunction
	KindBoundFunction
	KindProxy
	KindTypedArray
	KindArrayBuffer
	KindString
	KindSymbol
	KindBigInt
	KindEnvironment
	KindScript
	KindModule
	KindContext
	KindGenerator
	KindPromise
	KindWeakRef
	KindFinalizationRegistry
	KindASTNode
	KindBindingCell
)

var kindNames = [...]string{
	"object", "array", "function", "bound-function", "proxy", "typed-array",
	"array-buffer", "string", "symbol", "bigint", "environment", "script",
	"module", "context", "generator", "promise", "weak-ref",
	"finalization-registry", "ast-node", "binding-cell",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// VTable is the per-kind operation set every Cell carries a pointer to
// ("a pointer to a per-kind vtable (type, scan(cell), free(cell))").
type VTable struct {
	Kind Kind
	// Scan pushes every Cell this cell directly references onto the
	// collector's mark stack via push. It must not itself recurse.
	Scan func(owner any, push func(*Header))
	// Free releases any non-GC resources (e.g. native handles) the cell
	// holds. Most kinds leave this nil; memory itself is reclaimed by the
	// host language's allocator once the Cell becomes unreachable.
	Free func(owner any)
}

// Flag bits packed into Header.flags, matching the "combined
// pointer-plus-two-flag-bit field".
type flag uint8

const (
	flagMarked flag = 1 << iota
	flagScanned
)

// Header is embedded as the first field of every GC-managed cell. It links
// the cell into its Heap's global list and tracks the two collection flag
// bits.
type Header struct {
	vtable *VTable
	next   *Header
	flags  flag
	owner  any // the concrete cell value (*object.Object, *envrec.Env, ...)
}

// Init wires a freshly allocated cell's header to its vtable and owner; the
// owner is the concrete struct embedding this Header, passed back to
// Scan/Free so they needn't close over it.
func (h *Header) Init(vt *VTable, owner any) {
	h.vtable = vt
	h.owner = owner
}

// Kind reports which VTable.Kind this cell was registered under.
func (h *Header) Kind() Kind {
	if h.vtable == nil {
		return KindObject
	}
	return h.vtable.Kind
}

func (h *Header) marked() bool    { return h.flags&flagMarked != 0 }
func (h *Header) scanned() bool   { return h.flags&flagScanned != 0 }
func (h *Header) setMarked()      { h.flags |= flagMarked }
func (h *Header) setScanned()     { h.flags |= flagScanned }
func (h *Header) clearMarked()    { h.flags &^= flagMarked }
func (h *Header) clearScanned()   { h.flags &^= flagScanned }
