// Package strtab implements the interned identifier/string table
// component C). Property keys and binding names are looked up far more often
// than they are created, so the engine interns them once into a small
// integer-tagged cell and compares by identity afterward rather than by byte
// content.
package strtab

import "sync"

// ID is a handle into a Table. The zero ID is never issued by Intern.
type ID uint32

// entry is the interned record for one distinct string. isIndex/index memoize the
// expensive string-to-index classification so repeated property
// lookups on the same key never re-parse it.
type entry struct {
	text    string
	isIndex bool
	index   uint32 // valid iff isIndex
}

// Table interns strings into stable IDs. A Table is owned by one Runtime;
// it is not a process-global ("Global mutable state").
type Table struct {
	mu      sync.Mutex
	byText  map[string]ID
	entries []entry
}

// New creates an empty Table.
func New() *Table {
	return &Table{byText: make(map[string]ID), entries: []entry{{}}} // entries[0] unused so ID zero is invalid
}

// Intern returns the stable ID for s, allocating one on first sight.
func (t *Table) Intern(s string) ID {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.byText[s]; ok {
		return id
	}

	idx, isIdx := StringToIndex(s)
	id := ID(len(t.entries))
	t.entries = append(t.entries, entry{text: s, isIndex: isIdx, index: idx})
	t.byText[s] = id
	return id
}

// Text returns the original string for an interned ID.
func (t *Table) Text(id ID) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(id) >= len(t.entries) {
		return ""
	}
	return t.entries[id].text
}

// IsArrayIndex reports whether the interned string is the canonical decimal
// rendering of a non-negative array index, and returns that index. This
// backs the object model's array-index-string fast path (§3.3).
func (t *Table) IsArrayIndex(id ID) (uint32, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(id) >= len(t.entries) {
		return 0, false
	}
	e := t.entries[id]
	return e.index, e.isIndex
}

// StringToIndex implements the array-index-string fast path: for every
// non-negative integer n <= 2^32-2, StringToIndex(ToString(n)) == (n, true);
// for any other string it reports (_, false). "-0", leading zeros (except
// the literal "0"), and anything non-decimal are rejected.
func StringToIndex(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
		if n > 0xFFFFFFFE { // 2^32 - 2, the largest valid array index
			return 0, false
		}
	}
	return uint32(n), true
}
