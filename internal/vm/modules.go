package vm

import "github.com/vesper-lang/vesper/internal/value"

// ModuleNamespaceHook, ImportMetaHook, and DynamicImportHook let
// internal/modules intercept the three module-bound opcodes the same way
// GeneratorHook/AsyncHook let internal/coro intercept generator/async
// closures (see closure.go): internal/vm never imports internal/modules,
// so these start nil and every module opcode raises a TypeError until
// internal/runtime calls modules.Install to fill them in.
var (
	// ModuleNamespaceHook resolves OpGetModuleNamespace's ModuleRef operand
	// against the currently running unit's Module.
	ModuleNamespaceHook func(vmRef *VM, unit *CompiledUnit, moduleRefIdx int) (value.Value, error)

	// ImportMetaHook builds the import.meta object for the currently
	// running unit's Module.
	ImportMetaHook func(vmRef *VM, unit *CompiledUnit) value.Value

	// DynamicImportHook starts a dynamic import() of specifier relative to
	// the currently running unit's Module and returns the promise given
	// back to script code.
	DynamicImportHook func(vmRef *VM, unit *CompiledUnit, specifier value.Value) value.Value
)
