package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/naiveq22/internal/engine"
	"github.com/roach88/naiveq22/internal/oracle"
	"github.com/roach88/naiveq22/internal/sink"
	"github.com/roach88/naiveq22/internal/source"
	"github.com/roach88/naiveq22/internal/stats"
	"github.com/roach88/naiveq22/internal/tuple"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Customers string
	Orders    string
	Seed      int64
	Step      int

	Results string
	Log     string
	Stats   string

	SampleEvery int
	CheckEvery  int
	OracleDB    string
	MetricsFile string

	// RunIDGenerator allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDGenerator engine.RunIDGenerator
}

// RunSummary is what run reports on success.
type RunSummary struct {
	RunID    string `json:"run_id"`
	Events   int64  `json:"events"`
	ViewKeys int    `json:"view_keys"`
	Digest   string `json:"digest"`
	Results  string `json:"results"`
	Stopped  bool   `json:"stopped,omitempty"`
}

func (s RunSummary) String() string {
	var b strings.Builder
	if s.Stopped {
		fmt.Fprintln(&b, "Run interrupted.")
	}
	fmt.Fprintf(&b, "Run %s\n", s.RunID)
	fmt.Fprintf(&b, "  events:    %d\n", s.Events)
	fmt.Fprintf(&b, "  view keys: %d\n", s.ViewKeys)
	fmt.Fprintf(&b, "  digest:    %s\n", s.Digest)
	fmt.Fprintf(&b, "  results:   %s\n", s.Results)
	return b.String()
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Maintain the view over customer and orders streams",
		Long: `Replay a customer stream and an orders stream through the engine.

Both inputs are TPC-H .tbl files ('|'-separated, optional trailing '|').
A record may start with a '+' or '-' field to mark an insert or delete;
unmarked records are inserts. The streams are interleaved pseudo-randomly
from --seed, taking up to --step records from a stream per pick.

After every --sample-every events and once at the end, one set of
m,<structure>,<bytes> and h,<handler>,<seconds> lines is appended to
--stats and a throughput record to --log. The final view is appended to
--results as <nationkey>,<value> lines.

With --check-every N the view is compared against SQLite after every N
events and at the end; a mismatch stops the run.

Example:
  naiveq22 run --customers customer.tbl --orders orders.tbl \
    --results results.csv --log run.log --stats stats.csv
  naiveq22 run --customers c.tbl --orders o.tbl --results r --log l --stats s \
    --check-every 100 --metrics-file metrics.prom`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Customers, "customers", "", "customer .tbl stream (required)")
	cmd.Flags().StringVar(&opts.Orders, "orders", "", "orders .tbl stream (required)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", source.DefaultSeed, "multiplexer seed")
	cmd.Flags().IntVar(&opts.Step, "step", source.DefaultStep, "maximum records taken from one stream per pick")
	cmd.Flags().StringVar(&opts.Results, "results", "", "results sink (required)")
	cmd.Flags().StringVar(&opts.Log, "log", "", "log sink (required)")
	cmd.Flags().StringVar(&opts.Stats, "stats", "", "stats sink (required)")
	cmd.Flags().IntVar(&opts.SampleEvery, "sample-every", engine.DefaultSampleEvery, "events between stats samples (0 = only at the end)")
	cmd.Flags().IntVar(&opts.CheckEvery, "check-every", 0, "events between SQLite cross-checks (0 = off)")
	cmd.Flags().StringVar(&opts.OracleDB, "oracle-db", "", "SQLite database for cross-checks (default in-memory)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics here at the end")
	for _, name := range []string{"customers", "orders", "results", "log", "stats"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runEngine(opts *RunOptions, cmd *cobra.Command) error {
	if opts.Step < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--step must be at least 1, got %d", opts.Step))
	}
	if opts.CheckEvery < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--check-every must not be negative, got %d", opts.CheckEvery))
	}

	customers, err := source.OpenStream(opts.Customers, tuple.RelationCustomer)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open customer stream", err)
	}
	defer customers.Close()
	orders, err := source.OpenStream(opts.Orders, tuple.RelationOrders)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open orders stream", err)
	}
	defer orders.Close()

	sinks, err := sink.OpenSet(sink.Paths{Results: opts.Results, Log: opts.Log, Stats: opts.Stats})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open sinks", err)
	}
	defer func() {
		if closeErr := sinks.Close(); closeErr != nil {
			slog.Error("error closing sinks", "error", closeErr)
		}
	}()

	runIDGen := opts.RunIDGenerator
	if runIDGen == nil {
		runIDGen = engine.UUIDv7Generator{}
	}
	engOpts := []engine.Option{
		engine.WithRunID(runIDGen),
		engine.WithStatsWriter(sinks.Stats),
		engine.WithLogger(sinks.Logger()),
		engine.WithSampleEvery(opts.SampleEvery),
	}

	if opts.CheckEvery > 0 {
		path := opts.OracleDB
		if path == "" {
			path = oracle.MemoryPath
		}
		slog.Info("opening oracle", "path", path, "check_every", opts.CheckEvery)
		orc, err := oracle.Open(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open oracle", err)
		}
		defer func() {
			if closeErr := orc.Close(); closeErr != nil {
				slog.Error("error closing oracle", "error", closeErr)
			}
		}()
		engOpts = append(engOpts, engine.WithChecker(orc, opts.CheckEvery))
	}

	var metrics *stats.Metrics
	if opts.MetricsFile != "" {
		metrics = stats.NewMetrics()
		engOpts = append(engOpts, engine.WithMetrics(metrics))
	}

	eng := engine.New(engOpts...)
	src := source.NewMultiplexer(opts.Seed, opts.Step, customers, orders)

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("run starting",
		"customers", opts.Customers,
		"orders", opts.Orders,
		"seed", opts.Seed,
		"step", opts.Step,
	)

	stopped := false
	if err := eng.Run(ctx, src); err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return WrapExitError(ExitFailure, "engine error", err)
		}
		stopped = true
	}

	if err := sink.WriteResults(sinks.Results, eng.Database().View); err != nil {
		return WrapExitError(ExitFailure, "failed to write results", err)
	}
	digest, err := eng.Digest()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to digest view", err)
	}
	if metrics != nil {
		if err := metrics.WriteTextfile(opts.MetricsFile); err != nil {
			return WrapExitError(ExitFailure, "failed to write metrics", err)
		}
	}
	slog.Info("run finished", "run_id", eng.RunID(), "events", eng.Seq(), "digest", digest)

	return newFormatter(opts.RootOptions, cmd).Success(RunSummary{
		RunID:    eng.RunID(),
		Events:   eng.Seq(),
		ViewKeys: eng.Database().View.Len(),
		Digest:   digest,
		Results:  opts.Results,
		Stopped:  stopped,
	})
}
