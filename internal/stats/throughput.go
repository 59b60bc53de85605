package stats

import (
	"log/slog"
	"time"
)

// Throughput tracks how many events were processed and how long they took,
// and reports it in fixed intervals.
type Throughput struct {
	now      func() time.Time
	started  time.Time
	tuples   uint64
	interval int
	span     time.Duration
}

// NewThroughput starts the wall clock at construction time.
func NewThroughput(now func() time.Time) *Throughput {
	if now == nil {
		now = time.Now
	}
	return &Throughput{now: now, started: now()}
}

// Observe records one processed event that took d.
func (t *Throughput) Observe(d time.Duration) {
	t.tuples++
	t.interval++
	t.span += d
}

// Tuples returns the number of events observed.
func (t *Throughput) Tuples() uint64 {
	return t.tuples
}

// Flush logs the current interval and resets it.
func (t *Throughput) Flush(logger *slog.Logger) {
	rate := 0.0
	if t.span > 0 {
		rate = float64(t.interval) / t.span.Seconds()
	}
	logger.Info("throughput",
		"tuples", t.tuples,
		"interval", t.interval,
		"interval_seconds", FormatSeconds(t.span),
		"total_seconds", FormatSeconds(t.now().Sub(t.started)),
		"tuples_per_sec", rate,
	)
	t.interval = 0
	t.span = 0
}
