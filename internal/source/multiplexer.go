package source

import (
	"errors"
	"io"
	"math/rand"

	"github.com/roach88/naiveq22/internal/tuple"
)

const (
	// DefaultSeed seeds the interleaving when none is configured.
	DefaultSeed int64 = 12345

	// DefaultStep is the default maximum burst drawn from one stream.
	DefaultStep = 20
)

// Multiplexer interleaves several sources pseudo-randomly. It picks a live
// source and a burst length in [1, step], drains up to that many events
// from it, then picks again. Exhausted sources are dropped. The same seed
// over the same inputs always yields the same order.
type Multiplexer struct {
	sources   []Source
	rng       *rand.Rand
	step      int
	current   int
	remaining int
}

// NewMultiplexer creates a multiplexer over sources. A step below 1 is
// treated as 1.
func NewMultiplexer(seed int64, step int, sources ...Source) *Multiplexer {
	if step < 1 {
		step = 1
	}
	return &Multiplexer{
		sources: append([]Source(nil), sources...),
		rng:     rand.New(rand.NewSource(seed)),
		step:    step,
	}
}

// Next returns the next event from the current burst.
func (m *Multiplexer) Next() (tuple.Event, error) {
	for len(m.sources) > 0 {
		if m.remaining == 0 {
			m.current = m.rng.Intn(len(m.sources))
			m.remaining = 1 + m.rng.Intn(m.step)
		}
		ev, err := m.sources[m.current].Next()
		if errors.Is(err, io.EOF) {
			m.sources = append(m.sources[:m.current], m.sources[m.current+1:]...)
			m.remaining = 0
			continue
		}
		if err != nil {
			return nil, err
		}
		m.remaining--
		return ev, nil
	}
	return nil, io.EOF
}

// Live returns the number of sources not yet exhausted.
func (m *Multiplexer) Live() int {
	return len(m.sources)
}
