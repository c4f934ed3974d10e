package modules

import (
	"fmt"

	"github.com/vesper-lang/vesper/internal/coro"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
	"github.com/vesper-lang/vesper/internal/vm"
)

// evaluate runs rec's dependencies (post-order, so a module never runs
// before something it imports) and then rec's own body exactly once
// (the Evaluate concrete method). A module already Evaluating is
// a live import cycle: its partially-initialized bindings are exactly
// what the importer is supposed to see (TDZ aside), so evaluate just
// returns without re-entering.
func (l *Linker) evaluate(rec *Record) error {
	if rec.Status == StatusEvaluated {
		return rec.EvalError
	}
	if rec.Status == StatusEvaluating {
		return nil
	}
	if rec.Status != StatusLinked {
		return fmt.Errorf("module %q: evaluate called before link", rec.Specifier)
	}
	rec.Status = StatusEvaluating

	for _, req := range rec.RequestedModules {
		if err := l.evaluate(rec.deps[req]); err != nil {
			rec.Status = StatusErrored
			return err
		}
	}

	_, err := l.vmRef.RunProgramIn(rec.Unit, rec.Env)
	rec.EvalError = err
	if err != nil {
		rec.Status = StatusErrored
		return fmt.Errorf("module %q: %w", rec.Specifier, err)
	}
	rec.Status = StatusEvaluated
	return nil
}

// namespaceObject builds (and caches) rec's module namespace object: a
// plain object with one non-configurable accessor per exported name, each
// reading live through resolveExport so a namespace property observes
// updates to the exporting binding the way `import * as ns` must (a
// Module Namespace Exotic Object, simplified here to an ordinary object
// with accessor properties rather than its own exotic [[Get]]).
func (l *Linker) namespaceObject(rec *Record) (*object.Object, error) {
	if rec.namespace != nil {
		return rec.namespace, nil
	}
	ns := object.New(l.vmRef.Heap, value.Null_())
	ns.SetClass("Module")
	rec.namespace = ns // set before populating: a self-referential star export must see this instance

	for _, name := range exportedNames(rec, map[*Record]bool{}) {
		name := name
		getter := object.NewNativeFunction(l.vmRef.Heap, value.ObjectRef(l.vmRef.Protos.Function), "get "+name, 0,
			func(thisVal value.Value, args []value.Value) (value.Value, error) {
				res, err := resolveExport(rec, name, map[*Record]bool{})
				if err != nil || res == nil || res == ambiguous {
					return value.Undef(), nil
				}
				return res.module.Env.GetBindingValue(res.localName, false)
			})
		ns.DefineOwnProperty(object.StringKey(name), object.AccessorDescriptor(value.ObjectRef(getter), value.Undef(), true, false))
	}
	return ns, nil
}

// dynamicImport implements the host-visible effect of an `import()`
// expression (the HostImportModuleDynamically): load, link, and
// evaluate specifier, settling the returned promise with its namespace
// object or with whatever it failed on. Deferred to a job-queue turn even
// on the synchronous-looking success path, since a dynamic import must
// never settle before the microtask checkpoint that scheduled it
// (PerformPromiseThen is never skipped).
//
// internal/codegen never emits OpDynamicImport and the parser has no
// `import()` call form, so no compiled script reaches this path;
// internal/runtime's host-initiated module loading goes through
// LinkAndEvaluate instead.
func (l *Linker) dynamicImport(vmRef *vm.VM, referrer, specifier string) value.Value {
	promise, resolve, reject := coro.NewCapability(vmRef, l.jq)
	l.jq.Enqueue(func() {
		rec, err := l.Load(specifier, referrer)
		if err == nil {
			err = l.link(rec)
		}
		if err == nil {
			err = l.evaluate(rec)
		}
		if err != nil {
			reject(vmRef.NewTypeError(err.Error()))
			return
		}
		ns, err := l.namespaceObject(rec)
		if err != nil {
			reject(vmRef.NewTypeError(err.Error()))
			return
		}
		resolve(value.ObjectRef(ns))
	})
	return promise
}
