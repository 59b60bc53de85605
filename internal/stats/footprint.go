package stats

// Footprint estimates the memory held by one structure as a linear function
// of its element count.
type Footprint struct {
	Name       string
	Fixed      uintptr
	PerElement uintptr
	Count      int
}

// Bytes returns Fixed + PerElement*Count.
func (f Footprint) Bytes() uint64 {
	return uint64(f.Fixed) + uint64(f.PerElement)*uint64(f.Count)
}

// Sized is implemented by structures that can report their own overheads.
type Sized interface {
	FixedSize() uintptr
	EntrySize() uintptr
}

// Measure builds the footprint of s holding count elements.
func Measure(name string, s Sized, count int) Footprint {
	return Footprint{
		Name:       name,
		Fixed:      s.FixedSize(),
		PerElement: s.EntrySize(),
		Count:      count,
	}
}
