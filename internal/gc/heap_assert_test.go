package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollect_BumpsCycleCountAndLiveAfterLastGC(t *testing.T) {
	h := New(nil)
	roots := &rootSet{}
	h.AddRoot(roots)

	kept := newStub(h, "kept")
	roots.roots = append(roots.roots, kept)
	_ = newStub(h, "garbage")

	before := h.Stats()
	assert.Equal(t, 0, before.Cycles)

	h.Collect()

	after := h.Stats()
	assert.Equal(t, 1, after.Cycles)
	assert.Equal(t, 1, after.LiveAfterLastGC)
}

func TestStats_TotalAllocatedTracksEveryRegistration(t *testing.T) {
	h := New(nil)
	roots := &rootSet{}
	h.AddRoot(roots)

	newStub(h, "one")
	newStub(h, "two")
	newStub(h, "three")

	assert.Equal(t, 3*64, h.Stats().TotalAllocated)
}

func TestAddRoot_ScansEveryRegisteredProviderEachCycle(t *testing.T) {
	h := New(nil)
	r1, r2 := &rootSet{}, &rootSet{}
	h.AddRoot(r1)
	h.AddRoot(r2)

	x := newStub(h, "from-r1")
	y := newStub(h, "from-r2")
	r1.roots = append(r1.roots, x)
	r2.roots = append(r2.roots, y)

	h.Collect()

	assert.Equal(t, 2, countLive(h))
}
