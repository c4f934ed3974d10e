package object

import (
	"sort"

	"github.com/vesper-lang/vesper/internal/value"
)

// sparseThreshold: once the dense store would need to hold more than this
// many trailing holes relative to live items, convert to the sparse
// (map-backed) representation ("converts to a red-black tree
// keyed by index once sparseness is detected"). A balanced tree buys
// ordered iteration the dense slice already gives for free and Go's map
// gives us for free too once we sort keys on demand (ArrayIndexKeysSorted
// below) — so a map is used in place of a hand-rolled red-black tree; see
// DESIGN.md for why no third-party ordered-map library from the pack fit
// this role better than the standard map + sort.
const sparseThreshold = 4

// MakeArray converts a freshly created Object into an Array exotic object:
// `length` stops being an ordinary property and instead intercepts writes
// per the array length invariant (§4.3, testable property 3).
func (o *Object) MakeArray() {
	o.isArray = true
	o.class = "Array"
	o.dense = nil
	o.sparse = nil
}

func (o *Object) IsArray() bool { return o.isArray }

// Length returns the array's length property value. Valid only if IsArray.
func (o *Object) Length() uint32 { return o.arrayLength }

func (o *Object) getArrayOwn(idx uint32) (Descriptor, bool) {
	if o.rbt {
		d, ok := o.sparse[idx]
		return d, ok
	}
	if idx >= uint32(len(o.dense)) {
		return Descriptor{}, false
	}
	d := o.dense[idx]
	if d.Flags == 0 {
		return Descriptor{}, false
	}
	return d, true
}

func (o *Object) defineArrayIndex(idx uint32, desc Descriptor) bool {
	existing, has := o.getArrayOwn(idx)
	var curPtr *Descriptor
	if has {
		curPtr = &existing
	}
	merged, ok := ValidateAndApplyPropertyDescriptor(curPtr, o.extensible, desc)
	if !ok {
		return false
	}
	o.storeArrayIndex(idx, merged, has)
	if o.isArray && idx+1 > o.arrayLength {
		o.arrayLength = idx + 1
	}
	if idx+1 > o.itemMax {
		o.itemMax = idx + 1
	}
	if !has {
		o.itemNum++
	}
	o.maybeConvertRepresentation()
	return true
}

func (o *Object) storeArrayIndex(idx uint32, d Descriptor, overwrite bool) {
	if o.rbt {
		o.sparse[idx] = d
		return
	}
	if int(idx) >= len(o.dense) {
		grown := make([]Descriptor, idx+1)
		copy(grown, o.dense)
		o.dense = grown
	}
	o.dense[idx] = d
}

func (o *Object) deleteArrayIndex(idx uint32) bool {
	d, has := o.getArrayOwn(idx)
	if !has {
		return true
	}
	if !d.Configurable {
		return false
	}
	if o.rbt {
		delete(o.sparse, idx)
	} else if int(idx) < len(o.dense) {
		o.dense[idx] = Descriptor{}
	}
	o.itemNum--
	return true
}

// maybeConvertRepresentation switches between the dense slice and the
// sparse map once the hole ratio crosses sparseThreshold, and converts
// back if the array becomes dense again (the "rbt" bit).
func (o *Object) maybeConvertRepresentation() {
	if o.rbt {
		if o.itemNum > 0 && len(o.sparse) > 0 && uint32(o.itemNum)*sparseThreshold >= o.itemMax {
			o.convertToDense()
		}
		return
	}
	if o.itemMax > 16 && uint32(o.itemNum)*sparseThreshold < o.itemMax {
		o.convertToSparse()
	}
}

func (o *Object) convertToSparse() {
	sparse := make(map[uint32]Descriptor, o.itemNum)
	for i, d := range o.dense {
		if d.Flags != 0 {
			sparse[uint32(i)] = d
		}
	}
	o.sparse = sparse
	o.dense = nil
	o.rbt = true
}

func (o *Object) convertToDense() {
	dense := make([]Descriptor, o.itemMax)
	for idx, d := range o.sparse {
		dense[idx] = d
	}
	o.dense = dense
	o.sparse = nil
	o.rbt = false
}

// arrayIndexKeysSorted returns every present array-index key in strictly
// ascending numeric order (testable property 2).
func (o *Object) arrayIndexKeysSorted() []Key {
	if o.rbt {
		idxs := make([]uint32, 0, len(o.sparse))
		for idx := range o.sparse {
			idxs = append(idxs, idx)
		}
		sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })
		keys := make([]Key, len(idxs))
		for i, idx := range idxs {
			keys[i] = indexKey(idx)
		}
		return keys
	}
	keys := make([]Key, 0, o.itemNum)
	for i, d := range o.dense {
		if d.Flags != 0 {
			keys = append(keys, indexKey(uint32(i)))
		}
	}
	return keys
}

func indexKey(idx uint32) Key {
	return StringKey(value.NumberToString(float64(idx)))
}

// setArrayLength implements the intercepted `length` write:
// on shrinkage, delete indices >= new length in descending order, stopping
// (and clamping length) at the first non-configurable index that blocks
// deletion.
func (o *Object) setArrayLength(desc Descriptor) bool {
	if desc.Flags&HasValue == 0 {
		// Attribute-only update (e.g. writable:false) with no value change.
		if desc.Flags&HasWritable != 0 && !desc.Writable {
			// length becomes non-writable; nothing else to do structurally.
		}
		return true
	}
	newLenF, err := value.ToNumber(desc.Value)
	if err != nil {
		return false
	}
	newLen := uint32(newLenF)
	if float64(newLen) != newLenF || newLenF < 0 {
		return false // RangeError in a full implementation; caller surfaces it
	}

	oldLen := o.arrayLength
	if newLen >= oldLen {
		o.arrayLength = newLen
		return true
	}

	idx := oldLen
	for idx > newLen {
		idx--
		d, has := o.getArrayOwn(idx)
		if !has {
			continue
		}
		if !d.Configurable {
			o.arrayLength = idx + 1
			return false
		}
		o.deleteArrayIndex(idx)
	}
	o.arrayLength = newLen
	return true
}
