package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"time"

	"github.com/roach88/naiveq22/internal/source"
	"github.com/roach88/naiveq22/internal/stats"
	"github.com/roach88/naiveq22/internal/tuple"
	"github.com/roach88/naiveq22/internal/view"
)

// DefaultSampleEvery is the default number of events between samples.
const DefaultSampleEvery = 100

// Handler names, as they appear in h-lines of the stats sink.
var (
	HandlerInsertCustomer = tuple.Route{Relation: tuple.RelationCustomer, Op: tuple.OpInsert}.HandlerName()
	HandlerInsertOrder    = tuple.Route{Relation: tuple.RelationOrders, Op: tuple.OpInsert}.HandlerName()
	HandlerDeleteCustomer = tuple.Route{Relation: tuple.RelationCustomer, Op: tuple.OpDelete}.HandlerName()
	HandlerDeleteOrder    = tuple.Route{Relation: tuple.RelationOrders, Op: tuple.OpDelete}.HandlerName()
)

// Checker independently evaluates the query and compares it to the view.
// Implemented by oracle.Oracle.
type Checker interface {
	Check(ctx context.Context, customers iter.Seq[tuple.Customer], orders iter.Seq[tuple.Order], v *view.View) error
}

// Engine applies events to a Database and instruments the cost.
//
// The Engine is the only implementation of tuple.Triggers. Handlers run to
// completion before the next event is pulled.
//
// Not safe for concurrent use: Run and Apply must be called from one
// goroutine.
type Engine struct {
	db      *Database
	clock   *Clock
	now     func() time.Time
	rec     *stats.Recorder
	tput    *stats.Throughput
	metrics *stats.Metrics
	runID   string

	log         *slog.Logger
	statsOut    io.Writer
	sampleEvery int

	checker    Checker
	checkEvery int

	observer Observer
}

// Observer is called after each event is fully applied, before any sample
// or cross-check for that event.
type Observer func(seq int64, ev tuple.Event, db *Database)

var _ tuple.Triggers = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithSampleEvery sets how many events pass between samples. Zero or less
// disables periodic sampling; the shutdown sample is always written.
func WithSampleEvery(n int) Option {
	return func(e *Engine) {
		e.sampleEvery = n
	}
}

// WithStatsWriter sets the stats sink receiving m- and h-lines.
func WithStatsWriter(w io.Writer) Option {
	return func(e *Engine) {
		e.statsOut = w
	}
}

// WithLogger sets the log sink receiving throughput records.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithClock replaces time.Now for handler timing and throughput.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithMetrics mirrors measurements into m.
func WithMetrics(m *stats.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithChecker cross-checks the view with c after every n events and at
// shutdown.
func WithChecker(c Checker, n int) Option {
	return func(e *Engine) {
		e.checker = c
		e.checkEvery = n
	}
}

// WithObserver registers fn to see every applied event.
func WithObserver(fn Observer) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// WithRunID tags the run with an id from gen.
func WithRunID(gen RunIDGenerator) Option {
	return func(e *Engine) {
		e.runID = gen.Generate()
	}
}

// New creates an Engine over an empty Database.
func New(opts ...Option) *Engine {
	e := &Engine{
		db:          NewDatabase(),
		clock:       NewClock(),
		now:         time.Now,
		statsOut:    io.Discard,
		sampleEvery: DefaultSampleEvery,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.runID == "" {
		e.runID = UUIDv7Generator{}.Generate()
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	e.log = e.log.With("run_id", e.runID)

	names := make([]string, 0, 4)
	for _, r := range tuple.Routes() {
		names = append(names, r.HandlerName())
	}
	recOpts := []stats.Option{stats.WithClock(e.now)}
	if e.metrics != nil {
		recOpts = append(recOpts, stats.WithMetrics(e.metrics))
	}
	e.rec = stats.NewRecorder(names, recOpts...)
	e.tput = stats.NewThroughput(e.now)
	return e
}

// Database returns the engine's stores and view.
func (e *Engine) Database() *Database {
	return e.db
}

// Recorder returns the handler time recorder.
func (e *Engine) Recorder() *stats.Recorder {
	return e.rec
}

// RunID returns the id tagging this run.
func (e *Engine) RunID() string {
	return e.runID
}

// Seq returns the number of events applied.
func (e *Engine) Seq() int64 {
	return e.clock.Current()
}

// InsertCustomer adds c and refreshes the view. c's nationkey becomes a
// view key if it is not one already.
func (e *Engine) InsertCustomer(c tuple.Customer) {
	defer e.rec.Track(HandlerInsertCustomer, e.rec.Start())

	e.db.Customers.Insert(c)
	e.db.View.Ensure(c.NationKey)
	e.db.Refresh()
}

// InsertOrder adds o and refreshes the view.
func (e *Engine) InsertOrder(o tuple.Order) {
	defer e.rec.Track(HandlerInsertOrder, e.rec.Start())

	e.db.Orders.Insert(o)
	e.db.Refresh()
}

// DeleteCustomer removes one copy of c, if any, and refreshes the view.
// The view keeps every key it has ever seen.
func (e *Engine) DeleteCustomer(c tuple.Customer) {
	defer e.rec.Track(HandlerDeleteCustomer, e.rec.Start())

	e.db.Customers.Erase(c)
	e.db.Refresh()
}

// DeleteOrder removes one copy of o, if any, and refreshes the view.
func (e *Engine) DeleteOrder(o tuple.Order) {
	defer e.rec.Track(HandlerDeleteOrder, e.rec.Start())

	e.db.Orders.Erase(o)
	e.db.Refresh()
}

// Apply runs one event through its trigger handler and returns its
// sequence number.
func (e *Engine) Apply(ev tuple.Event) int64 {
	start := e.now()
	ev.Dispatch(e)
	e.tput.Observe(e.now().Sub(start))
	if e.metrics != nil {
		e.metrics.AddTuples(1)
	}

	seq := e.clock.Next()
	slog.Debug("event applied",
		"seq", seq,
		"handler", ev.Route().HandlerName(),
		"view_keys", e.db.View.Len(),
	)
	if e.observer != nil {
		e.observer(seq, ev, e.db)
	}
	return seq
}

// Run applies every event from src until it is exhausted or ctx is done.
//
// ctx is checked between events only; an event in progress always
// completes. A source error or failed cross-check stops the loop. The
// shutdown sample is written on every exit path so the sinks hold
// everything measured up to that point.
func (e *Engine) Run(ctx context.Context, src source.Source) error {
	slog.Info("engine starting", "run_id", e.runID, "sample_every", e.sampleEvery)

	err := e.loop(ctx, src)
	if ferr := e.Finish(ctx, err == nil); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil {
		slog.Error("engine stopped", "run_id", e.runID, "seq", e.clock.Current(), "error", err)
		return err
	}

	slog.Info("engine stopped", "run_id", e.runID, "seq", e.clock.Current())
	return nil
}

func (e *Engine) loop(ctx context.Context, src source.Source) error {
	for {
		if err := ctx.Err(); err != nil {
			slog.Info("engine stopping: context cancelled", "seq", e.clock.Current())
			return err
		}

		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &RuntimeError{
				Code:    ErrCodeSource,
				Seq:     e.clock.Current(),
				Message: "read next event",
				Err:     err,
			}
		}

		seq := e.Apply(ev)
		if e.sampleEvery > 0 && seq%int64(e.sampleEvery) == 0 {
			if err := e.sample(false); err != nil {
				return err
			}
		}
		if e.checker != nil && e.checkEvery > 0 && seq%int64(e.checkEvery) == 0 {
			if err := e.check(ctx); err != nil {
				return err
			}
		}
	}
}

// Finish writes the shutdown sample and, when check is set, runs a last
// cross-check.
func (e *Engine) Finish(ctx context.Context, check bool) error {
	if err := e.sample(true); err != nil {
		return err
	}
	if check && e.checker != nil {
		return e.check(ctx)
	}
	return nil
}

// sample writes one throughput record and one set of m/h lines. Periodic
// samples write memory before handlers; the shutdown sample writes
// handlers first.
func (e *Engine) sample(final bool) error {
	e.tput.Flush(e.log)

	fps := e.db.Footprints()
	var err error
	if final {
		err = e.rec.WriteHandlers(e.statsOut)
		if err == nil {
			err = e.rec.WriteMemory(e.statsOut, fps...)
		}
	} else {
		err = e.rec.WriteMemory(e.statsOut, fps...)
		if err == nil {
			err = e.rec.WriteHandlers(e.statsOut)
		}
	}
	if err != nil {
		return &RuntimeError{
			Code:    ErrCodeSink,
			Seq:     e.clock.Current(),
			Message: "write stats sample",
			Err:     err,
		}
	}
	return nil
}

func (e *Engine) check(ctx context.Context) error {
	err := e.checker.Check(ctx, e.db.Customers.All(), e.db.Orders.All(), e.db.View)
	if err != nil {
		return &RuntimeError{
			Code:    ErrCodeCheck,
			Seq:     e.clock.Current(),
			Message: "view disagrees with oracle",
			Err:     err,
		}
	}
	slog.Debug("cross-check passed", "seq", e.clock.Current(), "view_keys", e.db.View.Len())
	return nil
}

// Digest returns the content hash of the current view.
func (e *Engine) Digest() (string, error) {
	d, err := e.db.View.Digest()
	if err != nil {
		return "", fmt.Errorf("digest view: %w", err)
	}
	return d, nil
}
