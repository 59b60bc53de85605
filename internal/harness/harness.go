package harness

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/roach88/naiveq22/internal/engine"
	"github.com/roach88/naiveq22/internal/oracle"
	"github.com/roach88/naiveq22/internal/source"
	"github.com/roach88/naiveq22/internal/testutil"
	"github.com/roach88/naiveq22/internal/tuple"
	"github.com/roach88/naiveq22/internal/view"
)

// ClockStep is how far the harness clock advances per reading. Every
// handler invocation therefore measures exactly one ClockStep.
const ClockStep = time.Millisecond

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh engine and a fresh in-memory oracle.
// Execution flow:
//  1. Convert every step to an event and queue them
//  2. Run the engine over the queue with a step clock and fixed run id
//  3. After each event, record the trace and check the step's expectation
//  4. Cross-check the view against the oracle after each event
//
// An error is returned only when the scenario could not be run at all;
// failed expectations are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	orc, err := oracle.Open(oracle.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle: %w", err)
	}
	defer orc.Close()

	q := source.NewQueue()
	for i, step := range scenario.Steps {
		ev, err := step.Event()
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		q.Push(ev)
	}

	result := NewResult()
	var stats bytes.Buffer
	clock := testutil.NewStepClock(ClockStep)

	opts := []engine.Option{
		engine.WithClock(clock.Now),
		engine.WithRunID(testutil.NewFixedRunID(scenario.RunID)),
		engine.WithStatsWriter(&stats),
		engine.WithChecker(orc, 1),
		engine.WithObserver(func(seq int64, ev tuple.Event, db *engine.Database) {
			observeStep(scenario, result, seq, ev, db)
		}),
	}
	if scenario.SampleEvery > 0 {
		opts = append(opts, engine.WithSampleEvery(scenario.SampleEvery))
	}
	eng := engine.New(opts...)

	if err := eng.Run(context.Background(), q); err != nil {
		if !engine.IsCheckError(err) {
			return nil, fmt.Errorf("run scenario %s: %w", scenario.Name, err)
		}
		result.AddError(fmt.Sprintf("step %d: %v", eng.Seq(), err))
	}

	digest, err := eng.Digest()
	if err != nil {
		return nil, err
	}
	result.Digest = digest
	result.Stats = stats.String()
	return result, nil
}

func observeStep(scenario *Scenario, result *Result, seq int64, ev tuple.Event, db *engine.Database) {
	id, err := tuple.EventID(ev)
	if err != nil {
		result.AddError(fmt.Sprintf("step %d: %v", seq, err))
	}
	result.Trace = append(result.Trace, StepTrace{
		Seq:     seq,
		Handler: ev.Route().HandlerName(),
		EventID: id,
		View:    db.View.Entries(),
	})

	step := scenario.Steps[seq-1]
	if step.Expect == nil {
		return
	}
	for _, msg := range checkExpect(step.Expect, db) {
		result.AddError(fmt.Sprintf("step %d (%s): %s", seq, ev.Route().HandlerName(), msg))
	}
}

// checkExpect returns one message per unmet expectation.
func checkExpect(exp *Expect, db *engine.Database) []string {
	var msgs []string
	if exp.View != nil {
		for _, m := range view.Diff(db.View.Snapshot(), exp.View, view.DefaultTolerance) {
			msgs = append(msgs, m.String())
		}
	}
	if exp.Customers != nil && *exp.Customers != db.Customers.Len() {
		msgs = append(msgs, fmt.Sprintf("customers: got %d, want %d", db.Customers.Len(), *exp.Customers))
	}
	if exp.Orders != nil && *exp.Orders != db.Orders.Len() {
		msgs = append(msgs, fmt.Sprintf("orders: got %d, want %d", db.Orders.Len(), *exp.Orders))
	}
	return msgs
}
