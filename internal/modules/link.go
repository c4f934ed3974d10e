package modules

import (
	"fmt"

	"github.com/vesper-lang/vesper/internal/codegen"
	"github.com/vesper-lang/vesper/internal/envrec"
	"github.com/vesper-lang/vesper/internal/value"
	"github.com/vesper-lang/vesper/internal/vm"
)

// resolution is what resolveExport settles an export name to: the Record
// that actually owns the binding, and the name it's bound under there
// (which may differ from the name the importer asked for, after an
// `export {a as b} from` indirection).
type resolution struct {
	module    *Record
	localName string
}

// ambiguous is resolveExport's sentinel for the "ambiguous star
// export" case: two different `export * from` sources both provide the
// same name with different targets.
var ambiguous = &resolution{}

// resolveExport implements the ResolveExport: follow local
// exports directly, indirect (`export {x} from`) and default exports by
// recursing into the named module, and star re-exports last, with a
// visited set breaking import cycles the way GetExportedNames's own
// resolveSet parameter does.
func resolveExport(rec *Record, name string, visited map[*Record]bool) (*resolution, error) {
	if visited[rec] {
		return nil, nil // cycle with no local resolution: not found, not an error
	}
	visited[rec] = true

	var starResult *resolution
	for _, e := range rec.exports {
		if e.star {
			continue
		}
		if e.exportName != name {
			continue
		}
		if e.moduleRequest == "" {
			return &resolution{module: rec, localName: e.localName}, nil
		}
		dep, ok := rec.deps[e.moduleRequest]
		if !ok {
			return nil, fmt.Errorf("module %q: unresolved re-export source %q", rec.Specifier, e.moduleRequest)
		}
		if e.importName == "*namespace*" {
			return &resolution{module: dep, localName: "*namespace*"}, nil
		}
		return resolveExport(dep, e.importName, visited)
	}

	for _, e := range rec.exports {
		if !e.star {
			continue
		}
		dep, ok := rec.deps[e.moduleRequest]
		if !ok {
			return nil, fmt.Errorf("module %q: unresolved star source %q", rec.Specifier, e.moduleRequest)
		}
		r, err := resolveExport(dep, name, visited)
		if err != nil {
			return nil, err
		}
		if r == nil {
			continue
		}
		if starResult != nil && (r.module != starResult.module || r.localName != starResult.localName) {
			return ambiguous, nil
		}
		starResult = r
	}
	return starResult, nil
}

// exportedNames lists every name rec makes available for `import *`,
// de-duplicated and skipping ambiguous star collisions, used only to
// build a module's namespace object.
func exportedNames(rec *Record, visited map[*Record]bool) []string {
	if visited[rec] {
		return nil
	}
	visited[rec] = true

	seen := make(map[string]bool)
	var names []string
	add := func(n string) {
		if n == "" || n == "default" || seen[n] {
			return
		}
		seen[n] = true
		names = append(names, n)
	}
	for _, e := range rec.exports {
		if e.star {
			dep, ok := rec.deps[e.moduleRequest]
			if !ok {
				continue
			}
			for _, n := range exportedNames(dep, visited) {
				add(n)
			}
			continue
		}
		add(e.exportName)
	}
	return names
}

// link recursively links rec and everything it (transitively) imports
// (the Link concrete method): each module gets its own ModuleEnv
// and compiled unit, and every import specifier becomes an indirect
// binding resolved through resolveExport. A module already Linking is a
// cycle and is left alone; its dependents still link fine since
// CreateImportBinding only needs the *Record*, not a finished Env, to
// construct a resolver closure.
func (l *Linker) link(rec *Record) error {
	if rec.Status == StatusLinked || rec.Status == StatusEvaluated || rec.Status == StatusEvaluating {
		return nil
	}
	if rec.Status == StatusLinking {
		return nil
	}
	rec.Status = StatusLinking

	for _, req := range rec.RequestedModules {
		if err := l.link(rec.deps[req]); err != nil {
			rec.Status = StatusErrored
			return err
		}
	}

	rec.Env = envrec.NewModuleEnv(l.vmRef.Heap)

	for _, imp := range rec.imports {
		dep := rec.deps[imp.moduleRequest]
		if imp.namespace {
			ns, err := l.namespaceObject(dep)
			if err != nil {
				rec.Status = StatusErrored
				return err
			}
			rec.Env.CreateImmutableBinding(imp.localName, false)
			rec.Env.InitializeBinding(imp.localName, value.ObjectRef(ns))
			continue
		}
		name := imp.importName
		rec.Env.CreateImportBinding(imp.localName, dep, name, resolveImportValue)
	}

	out, err := codegen.Compile(rec.Program)
	if err != nil {
		rec.Status = StatusErrored
		return fmt.Errorf("module %q: %w", rec.Specifier, err)
	}
	rec.Unit = vm.FromCodegenOutput(out.Functions, out.MainIndex)
	rec.Unit.Module = rec

	rec.Status = StatusLinked
	return nil
}

// resolveImportValue is the ResolveImport callback every import binding
// this package creates uses (see envrec.Binding.ResolveImport): module is
// always a *Record, kept as `any` at the envrec layer to avoid a cycle.
func resolveImportValue(module any, name string) (value.Value, error) {
	dep := module.(*Record)
	if name == "*namespace*" {
		ns, err := dep.linker.namespaceObject(dep)
		if err != nil {
			return value.Value{}, err
		}
		return value.ObjectRef(ns), nil
	}
	res, err := resolveExport(dep, name, map[*Record]bool{})
	if err != nil {
		return value.Value{}, err
	}
	if res == nil || res == ambiguous {
		return value.Value{}, fmt.Errorf("module %q has no export named %q", dep.Specifier, name)
	}
	return res.module.Env.GetBindingValue(res.localName, false)
}
