package vesper

import (
	"github.com/vesper-lang/vesper/internal/value"
	"github.com/vesper-lang/vesper/internal/vm"
)

// Inspect renders v the way an uncaught exception's message prints to a
// host console: ToString's coercion, falling back to a fixed placeholder
// for a value ToString itself can't coerce (a Symbol).
func Inspect(v Value) string {
	s, err := value.ToString(v)
	if err != nil {
		return "<uninspectable value>"
	}
	return s
}

// ScriptError wraps a script-level thrown value in a Go error so that
// RunScript and LinkAndEvaluateModule never leak a *vm.ThrownError
// directly; callers who need to inspect the thrown value use Catch.
// Error() renders the same `Name: message` text an uncaught exception
// prints to a host's console.
type ScriptError struct {
	Value Value
}

func (e *ScriptError) Error() string {
	return (&vm.ThrownError{Value: e.Value}).Error()
}

// wrapThrown converts an internal/vm error return into the host-facing
// error shape: a *vm.ThrownError becomes a *ScriptError carrying its
// script value, anything else (a compile error, a loader I/O error)
// passes through unchanged.
func wrapThrown(err error) error {
	if err == nil {
		return nil
	}
	if te, ok := err.(*vm.ThrownError); ok {
		return &ScriptError{Value: te.Value}
	}
	return err
}
