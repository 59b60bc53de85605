package view

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"unsafe"

	"github.com/roach88/naiveq22/internal/tuple"
)

// View maps a nation key to its aggregate.
//
// INVARIANTS:
//   - The key set only grows; there is no removal
//   - keys holds every key of values exactly once, in first-seen order
type View struct {
	keys   []int64
	values map[int64]float64
}

// Entry is one (nation key, aggregate) pair.
type Entry struct {
	NationKey int64
	Value     float64
}

// New returns an empty view.
func New() *View {
	return &View{values: make(map[int64]float64)}
}

// Ensure adds nationKey with value zero if it is not tracked yet, and
// reports whether it was added.
func (v *View) Ensure(nationKey int64) bool {
	if _, ok := v.values[nationKey]; ok {
		return false
	}
	v.keys = append(v.keys, nationKey)
	v.values[nationKey] = 0
	return true
}

// Get returns the aggregate for nationKey.
func (v *View) Get(nationKey int64) (float64, bool) {
	val, ok := v.values[nationKey]
	return val, ok
}

// Has reports whether nationKey is tracked.
func (v *View) Has(nationKey int64) bool {
	_, ok := v.values[nationKey]
	return ok
}

// Len returns the number of tracked keys.
func (v *View) Len() int {
	return len(v.keys)
}

// Keys returns the tracked keys in first-seen order.
func (v *View) Keys() []int64 {
	return slices.Clone(v.keys)
}

// Entries returns all pairs sorted by nation key.
func (v *View) Entries() []Entry {
	out := make([]Entry, 0, len(v.keys))
	for _, k := range v.keys {
		out = append(out, Entry{NationKey: k, Value: v.values[k]})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		switch {
		case a.NationKey < b.NationKey:
			return -1
		case a.NationKey > b.NationKey:
			return 1
		}
		return 0
	})
	return out
}

// Snapshot returns a copy of the key/value map.
func (v *View) Snapshot() map[int64]float64 {
	out := make(map[int64]float64, len(v.values))
	for k, val := range v.values {
		out[k] = val
	}
	return out
}

// CanonicalValue returns f for canonical encoding. Canonical JSON has no
// non-finite numbers, so an overflowed aggregate becomes the string "+Inf"
// or "-Inf" (and NaN becomes "NaN").
func CanonicalValue(f float64) any {
	switch {
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return f
}

// Digest is the content hash of the view's canonical form. Two views with
// the same keys and bit-identical values share a digest.
func (v *View) Digest() (string, error) {
	obj := make(map[string]any, len(v.values))
	for k, val := range v.values {
		obj[strconv.FormatInt(k, 10)] = CanonicalValue(val)
	}
	canonical, err := tuple.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("view digest: %w", err)
	}
	return tuple.HashWithDomain(tuple.DomainView, canonical), nil
}

// EntrySize estimates the bytes held per key: map key and value plus the
// ordering slot.
func (v *View) EntrySize() uintptr {
	return 2*unsafe.Sizeof(int64(0)) + unsafe.Sizeof(float64(0))
}

// FixedSize is the size of the view header itself.
func (v *View) FixedSize() uintptr {
	return unsafe.Sizeof(*v)
}
