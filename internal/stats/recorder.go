package stats

import (
	"fmt"
	"io"
	"strconv"
	"time"
)

// Recorder accumulates elapsed time per handler name.
//
// Not safe for concurrent use; the engine calls it from its single loop.
type Recorder struct {
	now     func() time.Time
	order   []string
	elapsed map[string]time.Duration
	calls   map[string]int64
	metrics *Metrics
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock replaces time.Now, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// WithMetrics mirrors every measurement into m.
func WithMetrics(m *Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// NewRecorder creates a Recorder with the given handler names registered in
// order. Registration order is the order WriteHandlers emits lines in.
func NewRecorder(handlers []string, opts ...Option) *Recorder {
	r := &Recorder{
		now:     time.Now,
		elapsed: make(map[string]time.Duration, len(handlers)),
		calls:   make(map[string]int64, len(handlers)),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, h := range handlers {
		r.register(h)
	}
	return r
}

func (r *Recorder) register(name string) {
	if _, ok := r.elapsed[name]; ok {
		return
	}
	r.order = append(r.order, name)
	r.elapsed[name] = 0
	r.calls[name] = 0
}

// Start returns the current time from the recorder's clock.
func (r *Recorder) Start() time.Time {
	return r.now()
}

// Track adds the time since start to name. It is meant to be deferred so
// the span is recorded on every exit path:
//
//	defer rec.Track("on_insert_CUSTOMER", rec.Start())
//
// A span from a clock that stepped backwards counts as zero.
func (r *Recorder) Track(name string, start time.Time) {
	d := max(r.now().Sub(start), 0)
	r.register(name)
	r.elapsed[name] += d
	r.calls[name]++
	if r.metrics != nil {
		r.metrics.observeHandler(name, d)
	}
}

// Elapsed returns the cumulative time recorded for name.
func (r *Recorder) Elapsed(name string) time.Duration {
	return r.elapsed[name]
}

// Calls returns how many spans were recorded for name.
func (r *Recorder) Calls(name string) int64 {
	return r.calls[name]
}

// Handlers returns the registered handler names in order.
func (r *Recorder) Handlers() []string {
	return append([]string(nil), r.order...)
}

// WriteHandlers writes one h-line per registered handler.
func (r *Recorder) WriteHandlers(w io.Writer) error {
	for _, name := range r.order {
		if _, err := fmt.Fprintf(w, "h,%s,%s\n", name, FormatSeconds(r.elapsed[name])); err != nil {
			return fmt.Errorf("write handler sample %s: %w", name, err)
		}
	}
	return nil
}

// WriteMemory writes one m-line per footprint, in the order given.
func (r *Recorder) WriteMemory(w io.Writer, footprints ...Footprint) error {
	for _, fp := range footprints {
		if _, err := fmt.Fprintf(w, "m,%s,%d\n", fp.Name, fp.Bytes()); err != nil {
			return fmt.Errorf("write memory sample %s: %w", fp.Name, err)
		}
		if r.metrics != nil {
			r.metrics.observeStructure(fp)
		}
	}
	return nil
}

// FormatSeconds renders d as seconds with microsecond resolution.
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 6, 64)
}
