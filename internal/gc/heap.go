package gc

import "github.com/sirupsen/logrus"

// RootProvider is implemented by anything the Heap must treat as a GC root:
// the runtime's realms, the context stack, the native value stack, the job
// queue, the symbol registry, modules, finalization registries, and
// host-registered scanners (step 1).
type RootProvider interface {
	GCRoots(push func(*Header))
}

// Allocator is satisfied by any cell-producing subsystem; Heap itself only
// needs to see the Header, so object/environment/etc. packages each declare
// their own NewXxx constructors that call Heap.Register.

// Stats mirrors the bookkeeping that drives the collection trigger
// ("live_size > 4/3 x live_size_after_last_gc and total > 64 KiB").
type Stats struct {
	Cycles          int
	LiveAfterLastGC int
	LiveSize        int
	TotalAllocated  int
	MarkStackGrowth int
}

const gcStartSize = 64 * 1024 // matches original_source rjs_gc.c RJS_GC_START_SIZE

// Heap owns the global cell list and drives mark-and-sweep collection. A
// Heap belongs to exactly one Runtime ("Global mutable state").
type Heap struct {
	head       *Header // intrusive singly linked list of every live-or-dead cell
	roots      []RootProvider
	weakRefs   []weakEntry
	finalizers []finalizerEntry
	markStack  []*Header
	running    bool
	log        *logrus.Entry
	stats      Stats
}

type weakEntry struct {
	target *Header
	notify func(dead bool)
}

type finalizerEntry struct {
	target   *Header
	callback func()
	fired    bool
}

// New creates an empty Heap. log may be nil, in which case GC cycle
// messages are dropped (logrus.New().WithField would still allocate a
// formatter so callers pass a pre-built entry instead).
func New(log *logrus.Entry) *Heap {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Heap{log: log, markStack: make([]*Header, 0, 256)}
}

// AddRoot registers a permanent GC root, e.g. the runtime's realm table or
// the job queue. Roots are scanned every cycle in registration order.
func (h *Heap) AddRoot(r RootProvider) { h.roots = append(h.roots, r) }

// Register links a freshly initialized cell onto the global list. If a
// collection is in progress, the new cell is pre-marked live: new
// allocations during marking are automatically live because they are
// linked onto the global list with MARKED already set.
func (h *Heap) Register(hdr *Header, size int) {
	hdr.next = h.head
	h.head = hdr
	h.stats.TotalAllocated += size
	h.stats.LiveSize += size
	if h.running {
		hdr.setMarked()
	}
	if h.shouldCollect() {
		h.Collect()
	}
}

func (h *Heap) shouldCollect() bool {
	if h.running {
		return false
	}
	if h.stats.TotalAllocated < gcStartSize {
		return false
	}
	threshold := h.stats.LiveAfterLastGC + h.stats.LiveAfterLastGC/3
	return h.stats.LiveSize > threshold
}

// WeakRef registers a weak observer of target; notify(true) fires once
// target is determined dead during a later collection's weak-handling pass
// (step 3).
func (h *Heap) WeakRef(target *Header, notify func(dead bool)) {
	h.weakRefs = append(h.weakRefs, weakEntry{target: target, notify: notify})
}

// Finalize registers a cleanup job to run once target dies, matching
// FinalizationRegistry semantics (supplemented feature).
func (h *Heap) Finalize(target *Header, callback func()) {
	h.finalizers = append(h.finalizers, finalizerEntry{target: target, callback: callback})
}

// push is handed to Scan callbacks and to root providers; it marks a cell
// live and enqueues it for closure unless already marked.
func (h *Heap) push(hdr *Header) {
	if hdr == nil || hdr.marked() {
		return
	}
	hdr.setMarked()
	h.markStack = append(h.markStack, hdr)
}

// Collect runs one full mark-and-sweep cycle.
func (h *Heap) Collect() {
	h.running = true
	h.stats.Cycles++
	h.log.WithField("cycle", h.stats.Cycles).Debug("gc: cycle start")

	// 1. Root scan.
	for _, r := range h.roots {
		r.GCRoots(h.push)
	}

	// 2. Closure over the mark stack, with overflow rescue.
	h.drainMarkStack()

	// 3. Weak handling: decide death for every registered weak target now
	// that closure has settled who is reachable.
	live := h.weakRefs[:0]
	for _, w := range h.weakRefs {
		dead := w.target != nil && !w.target.marked()
		if w.notify != nil {
			w.notify(dead)
		}
		if !dead {
			live = append(live, w)
		}
	}
	h.weakRefs = live

	finLive := h.finalizers[:0]
	for _, f := range h.finalizers {
		if !f.fired && f.target != nil && !f.target.marked() {
			f.fired = true
			if f.callback != nil {
				f.callback()
			}
			continue // drop after firing
		}
		finLive = append(finLive, f)
	}
	h.finalizers = finLive

	// 5. Sweep: free and unlink anything never marked this cycle; clear
	// flags on survivors for the next cycle.
	var prev *Header
	cur := h.head
	liveSize := 0
	for cur != nil {
		next := cur.next
		if !cur.marked() {
			if cur.vtable != nil && cur.vtable.Free != nil {
				cur.vtable.Free(cur.owner)
			}
			if prev == nil {
				h.head = next
			} else {
				prev.next = next
			}
		} else {
			cur.clearMarked()
			cur.clearScanned()
			prev = cur
			liveSize++ // approximate: one unit per surviving cell
		}
		cur = next
	}

	h.stats.LiveAfterLastGC = liveSize
	h.stats.LiveSize = liveSize
	h.running = false
	h.log.WithField("live", liveSize).Debug("gc: cycle end")
}

// drainMarkStack implements step 2, including the "rescan on
// overflow" correctness path: if the mark stack's backing array must grow
// past a soft cap we instead drain what we have and do a full pass over the
// cell list looking for cells flagged MARKED but not SCANNED, repeating
// until no more work is found.
const markStackSoftCap = 1 << 16

func (h *Heap) drainMarkStack() {
	for {
		for len(h.markStack) > 0 {
			if len(h.markStack) > markStackSoftCap {
				h.stats.MarkStackGrowth++
				break
			}
			n := len(h.markStack) - 1
			cur := h.markStack[n]
			h.markStack = h.markStack[:n]
			h.scanOne(cur)
		}
		if !h.rescanUnscanned() {
			return
		}
	}
}

func (h *Heap) scanOne(cur *Header) {
	if cur.scanned() {
		return
	}
	cur.setScanned()
	if cur.vtable != nil && cur.vtable.Scan != nil {
		cur.vtable.Scan(cur.owner, h.push)
	}
}

// rescanUnscanned walks the entire cell list once, scanning any cell that
// is MARKED but not yet SCANNED. Returns true if it found (and processed)
// at least one such cell, meaning the caller should loop again in case that
// scan pushed new work that again overflowed.
func (h *Heap) rescanUnscanned() bool {
	found := false
	for cur := h.head; cur != nil; cur = cur.next {
		if cur.marked() && !cur.scanned() {
			found = true
			h.scanOne(cur)
		}
	}
	return found
}

// Stats returns a snapshot of the heap's bookkeeping counters.
func (h *Heap) Stats() Stats { return h.stats }
