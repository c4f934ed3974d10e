// Package jobqueue implements the realm's microtask queue
// component L, §4.10): promise reactions and the async/await driver in
// internal/coro both enqueue here rather than running synchronously, so
// that "await a resolved promise" still yields to every job already
// queued ahead of it.
//
// Grounded on go-dws's internal/bytecode vm_stack.go: a plain slice-backed
// push/pop with no generic container library behind it, since the queue
// is drained once per host turn and throughput here is never the
// bottleneck.
package jobqueue

// Job is a pending promise reaction or async-function continuation (a
// PendingJob). The queue has no visibility into what a job
// does, only that jobs run in enqueue order.
type Job func()

// Queue is strictly FIFO (the ordering requirement).
type Queue struct {
	jobs []Job
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue appends a job to the end of the queue.
func (q *Queue) Enqueue(j Job) {
	q.jobs = append(q.jobs, j)
}

// Len reports how many jobs are currently queued.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Drain runs every queued job to completion, including jobs enqueued by
// earlier jobs during the same drain (a reaction scheduling another
// reaction must still run before Drain returns to its caller), stopping
// once the queue empties out.
func (q *Queue) Drain() {
	for len(q.jobs) > 0 {
		j := q.jobs[0]
		q.jobs = q.jobs[1:]
		j()
	}
}
