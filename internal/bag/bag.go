// Package bag implements the in-memory multiset that backs each relation.
//
// A Bag stores each distinct value once together with its multiplicity.
// Distinct values are kept in a dense slice so traversal order is stable
// between mutations: first-insertion order, except that removing the last
// unit of a value moves the final entry into its slot.
package bag

import (
	"iter"
	"unsafe"
)

type entry[T comparable] struct {
	value T
	count int
}

// Bag is a multiset of comparable values.
//
// INVARIANTS:
//   - Count(v) == inserts(v) - deletes(v) and never drops below zero
//   - Every entry has count > 0; index[entries[i].value] == i
//   - size == sum of all entry counts
//
// A Bag is not safe for concurrent use.
type Bag[T comparable] struct {
	index   map[T]int
	entries []entry[T]
	size    int
}

// New returns an empty bag.
func New[T comparable]() *Bag[T] {
	return &Bag[T]{index: make(map[T]int)}
}

// Insert adds one unit of multiplicity for v.
func (b *Bag[T]) Insert(v T) {
	if i, ok := b.index[v]; ok {
		b.entries[i].count++
	} else {
		b.index[v] = len(b.entries)
		b.entries = append(b.entries, entry[T]{value: v, count: 1})
	}
	b.size++
}

// Erase removes one unit of multiplicity for v and reports whether anything
// was removed. Erasing a value that is not present leaves the bag unchanged.
func (b *Bag[T]) Erase(v T) bool {
	i, ok := b.index[v]
	if !ok {
		return false
	}
	b.size--
	if b.entries[i].count > 1 {
		b.entries[i].count--
		return true
	}

	last := len(b.entries) - 1
	if i != last {
		b.entries[i] = b.entries[last]
		b.index[b.entries[i].value] = i
	}
	// Zero the vacated slot so the backing array does not pin string data.
	b.entries[last] = entry[T]{}
	b.entries = b.entries[:last]
	delete(b.index, v)
	return true
}

// Count returns the multiplicity of v.
func (b *Bag[T]) Count(v T) int {
	if i, ok := b.index[v]; ok {
		return b.entries[i].count
	}
	return 0
}

// Len returns the total multiplicity of the bag.
func (b *Bag[T]) Len() int {
	return b.size
}

// Entries returns the number of distinct values stored.
func (b *Bag[T]) Entries() int {
	return len(b.entries)
}

// All yields every live value once per unit of multiplicity. The sequence
// is lazy and may be ranged over any number of times; the bag must not be
// mutated while a traversal is in progress.
func (b *Bag[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, e := range b.entries {
			for n := 0; n < e.count; n++ {
				if !yield(e.value) {
					return
				}
			}
		}
	}
}

// ForEach calls fn for every live value, once per unit of multiplicity.
func (b *Bag[T]) ForEach(fn func(T)) {
	for v := range b.All() {
		fn(v)
	}
}

// Values returns a snapshot of All.
func (b *Bag[T]) Values() []T {
	out := make([]T, 0, b.size)
	for v := range b.All() {
		out = append(out, v)
	}
	return out
}

// EntrySize estimates the bytes held per distinct value: the slice entry
// plus the index key and slot. Heap data behind strings is not counted.
func (b *Bag[T]) EntrySize() uintptr {
	var zero T
	return unsafe.Sizeof(entry[T]{}) + unsafe.Sizeof(zero) + unsafe.Sizeof(int(0))
}

// FixedSize is the size of the bag header itself.
func (b *Bag[T]) FixedSize() uintptr {
	return unsafe.Sizeof(*b)
}
