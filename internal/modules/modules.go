// Package modules implements the module linking/evaluation pipeline
// (component K, §4.9): resolving a specifier to source text,
// parsing it, wiring import bindings to the live bindings they name in
// other modules, and evaluating each module exactly once in dependency
// order. Grounded on go-dws's internal/interp unit-loading pass (one file
// loaded, parsed, and registered by name before its body runs) and on
// internal/envrec's ModuleEnv/CreateImportBinding, which already models
// the indirect-binding machinery this package drives.
//
// internal/vm has no notion of a Record: it only exposes
// ModuleNamespaceHook/ImportMetaHook/DynamicImportHook, three
// package-level function variables Install wires up once, mirroring
// internal/coro's GeneratorHook/AsyncHook cycle-breaking pattern. A
// Record is passed across that seam as an opaque `any`.
package modules

import (
	"fmt"

	"github.com/vesper-lang/vesper/internal/ast"
	"github.com/vesper-lang/vesper/internal/envrec"
	"github.com/vesper-lang/vesper/internal/jobqueue"
	"github.com/vesper-lang/vesper/internal/lexer"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/parser"
	"github.com/vesper-lang/vesper/internal/value"
	"github.com/vesper-lang/vesper/internal/vm"
)

// Status is a module record's position in the three-phase
// lifecycle (Load -> Link -> Evaluate), collapsed from the full
// specification's separate "instantiating"/"instantiated" substates since
// this engine links a module's whole dependency graph synchronously.
type Status int

const (
	StatusUnlinked Status = iota
	StatusLinking
	StatusLinked
	StatusEvaluating
	StatusEvaluated
	StatusErrored
)

// Loader resolves a specifier string (relative to an importing module's
// own resolved specifier) to a canonical name, and loads that canonical
// name's source text. internal/runtime supplies the host's actual
// implementation (filesystem, embedded bundle, or a host callback);
// internal/modules has no opinion about where source comes from.
type Loader interface {
	Resolve(specifier, referrer string) (string, error)
	Load(resolved string) (string, error)
}

type importEntry struct {
	localName     string
	importName    string // external name; "" for a namespace import
	moduleRequest string
	namespace     bool
}

type exportEntry struct {
	exportName    string
	localName     string // "" for a re-export
	importName    string // external name looked up on moduleRequest
	moduleRequest string // "" for a local export
	star          bool   // export * from "..."; exportName is "" for a bare star
}

// Record is one loaded module: its parsed source, its compiled unit, its
// environment, and enough of its import/export surface for resolveExport
// to answer "what does this module export N as" without re-parsing.
type Record struct {
	Specifier        string
	Source           string
	Program          *ast.Program
	Unit             *vm.CompiledUnit
	Env              *envrec.ModuleEnv
	Status           Status
	RequestedModules []string
	EvalError        error

	linker   *Linker
	deps     map[string]*Record
	imports  []importEntry
	exports  []exportEntry
	namespace *object.Object
}

// Linker owns one VM's module graph: every Record it has ever loaded,
// keyed by canonical (resolved) specifier, so a module imported from two
// different referrers is parsed and evaluated exactly once (the module
// map that backs this behavior).
type Linker struct {
	vmRef   *vm.VM
	jq      *jobqueue.Queue
	loader  Loader
	records map[string]*Record
}

// NewLinker creates a module graph over vmRef. jq is the job queue a
// dynamic import()'s resulting promise settles through.
func NewLinker(vmRef *vm.VM, jq *jobqueue.Queue, loader Loader) *Linker {
	return &Linker{vmRef: vmRef, jq: jq, loader: loader, records: make(map[string]*Record)}
}

// Install wires this linker's hooks into internal/vm's module opcode seam
// (see internal/vm/modules.go). Called once by internal/runtime while
// assembling a VM's intrinsics, the same way internal/coro.Install wires
// the generator/async seam.
func (l *Linker) Install() {
	vm.ModuleNamespaceHook = func(vmRef *vm.VM, unit *vm.CompiledUnit, moduleRefIdx int) (value.Value, error) {
		rec, ok := unit.Module.(*Record)
		if !ok || rec == nil {
			return value.Value{}, vmRef.NewTypeError("import.meta/module namespace used outside a module")
		}
		target := rec
		if moduleRefIdx >= 0 && moduleRefIdx < len(rec.RequestedModules) {
			target = rec.deps[rec.RequestedModules[moduleRefIdx]]
		}
		ns, err := l.namespaceObject(target)
		if err != nil {
			return value.Value{}, &vm.ThrownError{Value: vmRef.NewTypeError(err.Error())}
		}
		return value.ObjectRef(ns), nil
	}
	vm.ImportMetaHook = func(vmRef *vm.VM, unit *vm.CompiledUnit) value.Value {
		rec, ok := unit.Module.(*Record)
		if !ok || rec == nil {
			return value.Undef()
		}
		o := object.New(vmRef.Heap, value.ObjectRef(vmRef.Protos.Object))
		o.DefineOwnProperty(object.StringKey("url"), object.DataDescriptor(value.Str(rec.Specifier), true, true, true))
		return value.ObjectRef(o)
	}
	vm.DynamicImportHook = func(vmRef *vm.VM, unit *vm.CompiledUnit, specifier value.Value) value.Value {
		referrer := ""
		if rec, ok := unit.Module.(*Record); ok && rec != nil {
			referrer = rec.Specifier
		}
		spec := ""
		if specifier.IsString() {
			spec = specifier.AsString()
		}
		return l.dynamicImport(vmRef, referrer, spec)
	}
}

// Load resolves and parses specifier (relative to referrer) and every
// module it transitively imports, without linking or evaluating any of
// them. Safe to call on a specifier already in the module map: it returns
// the cached Record instead of re-parsing (the module map).
func (l *Linker) Load(specifier, referrer string) (*Record, error) {
	resolved, err := l.loader.Resolve(specifier, referrer)
	if err != nil {
		return nil, fmt.Errorf("resolving %q from %q: %w", specifier, referrer, err)
	}
	if rec, ok := l.records[resolved]; ok {
		return rec, nil
	}

	src, err := l.loader.Load(resolved)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", resolved, err)
	}

	prog := parser.New(lexer.New(src), true).ParseProgram()
	rec := &Record{Specifier: resolved, Source: src, Program: prog, linker: l, deps: make(map[string]*Record)}
	l.records[resolved] = rec
	collectEntries(rec)

	for _, req := range rec.RequestedModules {
		dep, err := l.Load(req, resolved)
		if err != nil {
			return nil, err
		}
		rec.deps[req] = dep
	}
	return rec, nil
}

// LinkAndEvaluate loads, links, and evaluates specifier and its full
// dependency graph, returning the root module's Record once its body has
// run. This is the entry point internal/runtime calls for a top-level
// `import` statement in a host-loaded module.
func (l *Linker) LinkAndEvaluate(specifier string) (*Record, error) {
	root, err := l.Load(specifier, "")
	if err != nil {
		return nil, err
	}
	if err := l.link(root); err != nil {
		return nil, err
	}
	if err := l.evaluate(root); err != nil {
		return nil, err
	}
	return root, nil
}

// collectEntries walks a freshly parsed module's top level for its import
// and export declarations (the ParseModule step 4-5), populating
// RequestedModules, imports, and exports. Declarations nested inside a
// block/function are never module-level imports/exports, so this only
// ever looks at rec.Program.Body directly.
func collectEntries(rec *Record) {
	seen := make(map[string]bool)
	addRequest := func(spec string) {
		if spec == "" || seen[spec] {
			return
		}
		seen[spec] = true
		rec.RequestedModules = append(rec.RequestedModules, spec)
	}

	for _, stmt := range rec.Program.Body {
		switch n := stmt.(type) {
		case *ast.ImportDeclaration:
			addRequest(n.Source)
			for _, spec := range n.Specifiers {
				e := importEntry{localName: spec.Local.Name, moduleRequest: n.Source, namespace: spec.Namespace}
				if spec.Default {
					e.importName = "default"
				} else if !spec.Namespace && spec.Imported != nil {
					e.importName = spec.Imported.Name
				}
				rec.imports = append(rec.imports, e)
			}
		case *ast.ExportNamedDeclaration:
			if n.Source != "" {
				addRequest(n.Source)
				for _, spec := range n.Specifiers {
					rec.exports = append(rec.exports, exportEntry{
						exportName: spec.Exported.Name, importName: spec.Local.Name, moduleRequest: n.Source,
					})
				}
				continue
			}
			if n.Declaration != nil {
				for _, name := range declaredNames(n.Declaration) {
					rec.exports = append(rec.exports, exportEntry{exportName: name, localName: name})
				}
				continue
			}
			for _, spec := range n.Specifiers {
				rec.exports = append(rec.exports, exportEntry{exportName: spec.Exported.Name, localName: spec.Local.Name})
			}
		case *ast.ExportDefaultDeclaration:
			name := "*default*"
			rec.exports = append(rec.exports, exportEntry{exportName: "default", localName: name})
		case *ast.ExportAllDeclaration:
			addRequest(n.Source)
			exported := ""
			if n.Exported != nil {
				exported = n.Exported.Name
			}
			rec.exports = append(rec.exports, exportEntry{exportName: exported, moduleRequest: n.Source, star: exported == ""})
			if exported != "" {
				rec.exports[len(rec.exports)-1].importName = "*namespace*"
			}
		}
	}
}

// declaredNames returns every top-level binding name a var/let/const,
// function, or class declaration introduces, for `export const x = 1;`
// style named exports.
func declaredNames(stmt ast.Statement) []string {
	switch n := stmt.(type) {
	case *ast.VariableDeclaration:
		var names []string
		for _, d := range n.Declarations {
			names = append(names, bindingNames(d.Target)...)
		}
		return names
	case *ast.FunctionLiteral:
		if n.Name != nil {
			return []string{n.Name.Name}
		}
	case *ast.ClassLiteral:
		if n.Name != nil {
			return []string{n.Name.Name}
		}
	}
	return nil
}

func bindingNames(target ast.Expression) []string {
	if id, ok := target.(*ast.Identifier); ok {
		return []string{id.Name}
	}
	// Destructuring export targets are rare enough in practice that this
	// engine does not walk patterns here; such names simply aren't
	// individually exported (accepted simplification, see DESIGN.md).
	return nil
}
