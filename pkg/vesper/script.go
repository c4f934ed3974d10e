package vesper

import "github.com/vesper-lang/vesper/internal/vm"

// Script is a compiled, not-yet-run script, kept distinct from
// a bare Value so RunScript can be called more than once against the same
// compiled bytecode without re-lexing/re-parsing/re-codegenning it.
type Script struct {
	unit *vm.CompiledUnit
}

// Compile lexes, parses, and code-generates src as a plain script.
// filename is used only for diagnostic messages.
func (r *Runtime) Compile(src, filename string) (*Script, error) {
	unit, err := r.rt.Compile(src, filename)
	if err != nil {
		return nil, err
	}
	return &Script{unit: unit}, nil
}

// RunScript executes s against this Runtime's global environment. The
// returned value is undefined for a plain script: statement completion
// values are not tracked.
// Pending async/promise work is left on the job queue; call DrainJobs
// afterward to run it to completion.
func (r *Runtime) RunScript(s *Script) (Value, error) {
	v, err := r.rt.RunUnit(s.unit)
	if err != nil {
		return Value{}, wrapThrown(err)
	}
	return v, nil
}

// Module is a loaded, linked, and evaluated ES module.
type Module struct {
	specifier string
}

// Specifier returns the canonical specifier this module was resolved to.
func (m *Module) Specifier() string { return m.specifier }

// CompileModule loads and parses the module at specifier, and every module
// it imports, without linking or evaluating them.
// Most callers want LinkAndEvaluateModule instead; this exists for hosts
// that need to inspect a module's import/export surface before deciding
// whether to run it (mirrors internal/modules.Linker.Load's two-phase
// split).
func (r *Runtime) CompileModule(specifier string) (*Module, error) {
	rec, err := r.rt.ParseModule(specifier)
	if err != nil {
		return nil, wrapThrown(err)
	}
	return &Module{specifier: rec.Specifier}, nil
}

// LinkAndEvaluateModule loads, links, and evaluates specifier and its full
// dependency graph, running each module's top-level body exactly once in
// dependency order.
func (r *Runtime) LinkAndEvaluateModule(specifier string) (*Module, error) {
	rec, err := r.rt.LoadModule(specifier)
	if err != nil {
		return nil, wrapThrown(err)
	}
	return &Module{specifier: rec.Specifier}, nil
}
