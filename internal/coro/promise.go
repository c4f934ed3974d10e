package coro

import (
	"github.com/vesper-lang/vesper/internal/jobqueue"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
	"github.com/vesper-lang/vesper/internal/vm"
)

// promiseState is the three-state promise lifecycle.
type promiseState int

const (
	promisePending promiseState = iota
	promiseFulfilled
	promiseRejected
)

// reaction is one registered .then()-style callback pair, stored as plain
// Go closures rather than script function values: a script-level
// .then()/.catch()/.finally() goes through Then, which wraps the script
// handlers in closures that settle the chained promise themselves, so
// there is no need to carry PromiseReactionJob's full
// resolve/reject-capability machinery here.
type reaction struct {
	onFulfilled func(value.Value)
	onRejected  func(value.Value)
}

// promiseData is the NativeData payload a Promise instance carries.
type promiseData struct {
	state     promiseState
	result    value.Value
	reactions []reaction
	handled   bool // set once any reaction has ever been attached (see SettleHook)
}

// SettleHook, if non-nil, is invoked the moment any of this package's
// promises transitions out of pending (the "host hook for
// tracking unhandled rejections"). internal/runtime installs this to
// drive its WithUnhandledRejectionHook option: a rejected promise that
// still shows Handled()==false once the job queue fully drains never had
// a .then()/.catch() reaction attached.
var SettleHook func(p *object.Object, rejected bool)

// capability bundles a promise with its resolve/reject functions (a
// PromiseCapability record), settlable at most once.
type capability struct {
	promise *object.Object
	settled bool
	resolve func(value.Value)
	reject  func(value.Value)
}

// NewCapability exposes this package's promise-capability constructor to
// internal/modules, whose dynamic import() needs to hand
// script code a real promise without duplicating the settle/subscribe
// machinery above. Returns the script-visible promise plus its
// resolve/reject functions.
func NewCapability(vmRef *vm.VM, jq *jobqueue.Queue) (promise value.Value, resolve, reject func(value.Value)) {
	cap := newCapability(vmRef, jq)
	return value.ObjectRef(cap.promise), cap.resolve, cap.reject
}

func newCapability(vmRef *vm.VM, jq *jobqueue.Queue) *capability {
	pd := &promiseData{}
	p := object.New(vmRef.Heap, value.ObjectRef(vmRef.Protos.Promise))
	p.SetClass("Promise")
	p.NativeData = pd

	cap := &capability{promise: p}
	cap.resolve = func(v value.Value) {
		if cap.settled {
			return
		}
		cap.settled = true
		resolvePromise(vmRef, jq, p, v)
	}
	cap.reject = func(v value.Value) {
		if cap.settled {
			return
		}
		cap.settled = true
		settlePromise(jq, p, promiseRejected, v)
	}
	return cap
}

// resolvePromise implements the ResolvePromise: resolving with
// another one of this engine's own promises chains onto it instead of
// fulfilling immediately. Resolving with a foreign thenable (for example
// one returned from an async function or from a .then() handler) is
// treated as resolving with a plain value: its then method is never
// called.
func resolvePromise(vmRef *vm.VM, jq *jobqueue.Queue, p *object.Object, v value.Value) {
	if o, ok := v.Ref().(*object.Object); v.IsObject() && ok {
		if _, isPromise := o.NativeData.(*promiseData); isPromise {
			subscribe(jq, o,
				func(fv value.Value) { settlePromise(jq, p, promiseFulfilled, fv) },
				func(rv value.Value) { settlePromise(jq, p, promiseRejected, rv) },
			)
			return
		}
	}
	settlePromise(jq, p, promiseFulfilled, v)
}

func settlePromise(jq *jobqueue.Queue, p *object.Object, state promiseState, v value.Value) {
	pd := p.NativeData.(*promiseData)
	if pd.state != promisePending {
		return
	}
	pd.state = state
	pd.result = v
	reactions := pd.reactions
	pd.reactions = nil
	if len(reactions) > 0 {
		pd.handled = true
	}
	if SettleHook != nil {
		SettleHook(p, state == promiseRejected)
	}
	for _, r := range reactions {
		r := r
		jq.Enqueue(func() { runReaction(state, v, r) })
	}
}

// Handled reports whether v (a promise this package created) has ever had
// a reaction attached, live or queued. internal/runtime consults this
// after a rejected promise's SettleHook fires and again once the job
// queue fully drains, since a reaction attached moments after rejection
// (the common "reject then .catch()" ordering) must not be reported as
// unhandled.
func Handled(v value.Value) bool {
	o, ok := v.Ref().(*object.Object)
	if !v.IsObject() || !ok {
		return true
	}
	pd, ok := o.NativeData.(*promiseData)
	if !ok {
		return true
	}
	return pd.handled
}

func runReaction(state promiseState, v value.Value, r reaction) {
	if state == promiseFulfilled {
		if r.onFulfilled != nil {
			r.onFulfilled(v)
		}
		return
	}
	if r.onRejected != nil {
		r.onRejected(v)
	}
}

// subscribe registers onFulfilled/onRejected against p, queuing a job
// immediately if p has already settled (the "a reaction attached
// to an already-settled promise still only ever runs as a job, never
// synchronously").
func subscribe(jq *jobqueue.Queue, p *object.Object, onFulfilled, onRejected func(value.Value)) {
	pd := p.NativeData.(*promiseData)
	pd.handled = true
	switch pd.state {
	case promisePending:
		pd.reactions = append(pd.reactions, reaction{onFulfilled, onRejected})
	case promiseFulfilled:
		v := pd.result
		jq.Enqueue(func() { onFulfilled(v) })
	case promiseRejected:
		v := pd.result
		jq.Enqueue(func() { onRejected(v) })
	}
}

// Then implements the script-visible Promise.prototype.then, simplified:
// no explicit onFulfilled/onRejected identity tracking beyond what
// subscribe already does. Used by installPromiseProto to install
// then/catch/finally on the Promise prototype without duplicating the
// reaction machinery above.
func Then(vmRef *vm.VM, jq *jobqueue.Queue, p value.Value, onFulfilled, onRejected value.Value) value.Value {
	resultPromise, resolve, reject := NewCapability(vmRef, jq)

	run := func(handler value.Value, v value.Value, fallback func(value.Value)) {
		if !handler.IsObject() {
			fallback(v)
			return
		}
		ho, ok := handler.Ref().(*object.Object)
		if !ok || ho.Call == nil {
			fallback(v)
			return
		}
		out, err := ho.Call(value.Undef(), []value.Value{v})
		if err != nil {
			if te, ok := err.(*vm.ThrownError); ok {
				reject(te.Value)
				return
			}
			reject(vmRef.NewTypeError(err.Error()))
			return
		}
		resolve(out)
	}

	o, ok := p.Ref().(*object.Object)
	if !p.IsObject() || !ok {
		reject(vmRef.NewTypeError("Promise.prototype.then called on a non-promise"))
		return resultPromise
	}
	subscribe(jq, o,
		func(v value.Value) { run(onFulfilled, v, resolve) },
		func(v value.Value) { run(onRejected, v, reject) },
	)
	return resultPromise
}

// awaitValue implements the Await: subscribing to v if it is
// already one of this engine's promises, or treating any other value as
// an immediately-fulfilled one scheduled a job-queue turn later (await
// always yields control at least once, even for `await 1`).
func awaitValue(jq *jobqueue.Queue, v value.Value, onFulfilled, onRejected func(value.Value)) {
	if o, ok := v.Ref().(*object.Object); v.IsObject() && ok {
		if _, isPromise := o.NativeData.(*promiseData); isPromise {
			subscribe(jq, o, onFulfilled, onRejected)
			return
		}
	}
	jq.Enqueue(func() { onFulfilled(v) })
}
