// Package runtime assembles one embeddable realm: a heap, the intrinsic
// prototypes and global object internal/vm's opcodes assume exist, the
// generator/async/module/JSON subsystems wired through their hook seams,
// and the job queue that drives promise reactions after a script returns.
// pkg/vesper is the only thing that imports this package directly; it is
// the "internal/interp" layer go-dws's cmd/dwscript builds once and reuses
// across run/compile/lex/parse, generalized from one Pascal program per
// invocation to a realm that can load any number of scripts and modules.
package runtime

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vesper-lang/vesper/internal/codegen"
	"github.com/vesper-lang/vesper/internal/coro"
	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/jobqueue"
	"github.com/vesper-lang/vesper/internal/jsonbridge"
	"github.com/vesper-lang/vesper/internal/lexer"
	"github.com/vesper-lang/vesper/internal/modules"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/parser"
	"github.com/vesper-lang/vesper/internal/strtab"
	"github.com/vesper-lang/vesper/internal/value"
	"github.com/vesper-lang/vesper/internal/vm"
)

// Runtime is one realm: one heap, one VM, one module graph, one job queue.
// Grounded on go-dws's internal/interp.Program, which bundles exactly this
// same cluster (symbol table, VM, loaded units) behind a single handle a
// caller drives through Run/Compile.
type Runtime struct {
	vm      *vm.VM
	heap    *gc.Heap
	jq      *jobqueue.Queue
	linker  *modules.Linker
	strings *strtab.Table
	log     *logrus.Entry
	cfg     config

	pendingRejections []value.Value
}

// New assembles a Runtime: builds the heap and intrinsics, installs the
// object-to-primitive hook (object.InstallHooks), the generator/async seam
// (internal/coro), the JSON bridge (internal/jsonbridge), and the
// module-linking seam (internal/modules), in that order since coro.Install
// must run before the linker's Install populates a
// vm.Protos.Promise-dependent dynamic import path.
func New(opts ...Option) *Runtime {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = logrus.New()
	}
	entry := logger.WithField("component", "runtime")

	object.InstallHooks()
	heap := gc.New(entry)
	protos, global := buildProtos(heap)
	genv := newGlobalEnv(heap, global)

	vmRef := vm.New(heap, genv, protos, vm.Symbols{Iterator: "Symbol.iterator", AsyncIterator: "Symbol.asyncIterator"})
	if cfg.stackLimit > 0 {
		vmRef.MaxStackDepth = cfg.stackLimit
	}
	heap.AddRoot(vmRef)

	jq := jobqueue.New()
	coro.Install(vmRef, jq)
	installErrorConstructors(vmRef, global)
	jsonbridge.Install(vmRef)

	resolver := cfg.resolver
	if resolver == nil {
		resolver = newFSLoader(".")
	}
	linker := modules.NewLinker(vmRef, jq, resolver)
	linker.Install()

	rt := &Runtime{
		vm:      vmRef,
		heap:    heap,
		jq:      jq,
		linker:  linker,
		strings: strtab.New(),
		log:     entry,
		cfg:     cfg,
	}
	if cfg.unhandledRejectionFn != nil {
		coro.SettleHook = func(p *object.Object, rejected bool) {
			if rejected {
				rt.pendingRejections = append(rt.pendingRejections, value.ObjectRef(p))
			}
		}
	}
	return rt
}

// VM exposes the underlying interpreter for internal packages (pkg/vesper,
// cmd/vesper) that need direct access to intrinsics or the call/construct
// abstract operations.
func (r *Runtime) VM() *vm.VM { return r.vm }

// Intern hands s to this realm's shared string table (component
// C), for host callers that want identifier/property-key comparisons to
// share the engine's own interning rather than comparing raw strings.
func (r *Runtime) Intern(s string) strtab.ID { return r.strings.Intern(s) }

// Compile lexes and parses src as a plain script (not a module) and lowers
// it to a CompiledUnit ready for RunUnit, the same two-stage pipeline
// go-dws's cmd/dwscript run command drives by hand.
func (r *Runtime) Compile(src, filename string) (*vm.CompiledUnit, error) {
	p := parser.New(lexer.New(src), false)
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		return nil, fmt.Errorf("%s: %s", filename, p.Errors().Format(false))
	}
	out, err := codegen.Compile(prog)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return vm.FromCodegenOutput(out.Functions, out.MainIndex), nil
}

// RunUnit runs a script-compiled unit against this realm's global
// environment.
func (r *Runtime) RunUnit(unit *vm.CompiledUnit) (value.Value, error) {
	return r.vm.RunProgram(unit)
}

// LoadModule loads, links, and evaluates specifier and its full dependency
// graph against this realm's module map.
func (r *Runtime) LoadModule(specifier string) (*modules.Record, error) {
	return r.linker.LinkAndEvaluate(specifier)
}

// ParseModule loads and parses specifier and everything it transitively
// imports without linking or evaluating any of it, for a host that wants
// to inspect a module's shape before committing to run it.
func (r *Runtime) ParseModule(specifier string) (*modules.Record, error) {
	return r.linker.Load(specifier, "")
}

// DrainJobs runs every pending microtask (the job-queue draining
// a host performs "as soon as possible" after a script returns) and then,
// if WithUnhandledRejectionHook was supplied, reports every promise that
// settled rejected during this drain and never had a reaction attached.
func (r *Runtime) DrainJobs() {
	r.jq.Drain()
	if r.cfg.unhandledRejectionFn == nil || len(r.pendingRejections) == 0 {
		return
	}
	pending := r.pendingRejections
	r.pendingRejections = nil
	for _, v := range pending {
		if !coro.Handled(v) {
			r.cfg.unhandledRejectionFn(v)
		}
	}
}
