package coro

import (
	"github.com/vesper-lang/vesper/internal/bytecode"
	"github.com/vesper-lang/vesper/internal/envrec"
	"github.com/vesper-lang/vesper/internal/jobqueue"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
	"github.com/vesper-lang/vesper/internal/vm"
)

// runAsync implements the async function invocation: the body
// runs synchronously up to its first await (or to completion, if it never
// awaits), then driveAsync takes over as a chain of job-queue callbacks —
// modeled as a generator whose yield is await ("Async
// functions are modeled as generators whose yield is await"), except
// there is no script-visible Generator object here, just the promise
// returned to the caller.
func runAsync(vmRef *vm.VM, jq *jobqueue.Queue, fn *bytecode.Function, unit *vm.CompiledUnit, env envrec.Env, home *object.Object, thisVal value.Value, args []value.Value, newTarget value.Value) (value.Value, error) {
	frame := vmRef.PrepareFrame(fn, unit, env, home, thisVal, args, newTarget)
	cap := newCapability(vmRef, jq)

	out := vmRef.RunFrameStep(frame)
	driveAsync(vmRef, jq, frame, cap, out)

	return value.ObjectRef(cap.promise), nil
}

// driveAsync interprets one Execute/Resume outcome for an async frame:
// Return/Throw settle the function's own promise, Await subscribes a
// continuation that re-enters driveAsync once the awaited value settles.
// Yield cannot occur (codegen never emits OpYield inside a plain async
// function, only inside an async generator, which this package does not
// yet support — see DESIGN.md).
func driveAsync(vmRef *vm.VM, jq *jobqueue.Queue, frame *vm.Frame, cap *capability, out vm.Outcome) {
	switch out.Kind {
	case vm.OutcomeReturn:
		cap.resolve(out.Value)
	case vm.OutcomeThrow:
		cap.reject(out.Value)
	case vm.OutcomeAwait:
		awaitValue(jq, out.Value,
			func(v value.Value) { driveAsync(vmRef, jq, frame, cap, vmRef.ResumeFrameStep(frame, v, false)) },
			func(v value.Value) { driveAsync(vmRef, jq, frame, cap, vmRef.ResumeFrameStep(frame, v, true)) },
		)
	default:
		cap.reject(vmRef.NewTypeError("yield is not valid inside an async function"))
	}
}
