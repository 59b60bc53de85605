package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/naiveq22/internal/sink"
	"github.com/roach88/naiveq22/internal/view"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Tolerance float64
}

// VerifyResult is what verify reports on success.
type VerifyResult struct {
	Keys      int     `json:"keys"`
	Tolerance float64 `json:"tolerance"`
}

func (r VerifyResult) String() string {
	return fmt.Sprintf("✓ %d keys match (tolerance %g)\n", r.Keys, r.Tolerance)
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <results> <expected>",
		Short: "Compare a results file with known answers",
		Long: `Compare a results file written by run with an expected-answer file.

Both files hold one <nationkey>,...,<value> line per key: the first field
is the key and the last is the value. Values agree when their difference
is within --tolerance of the larger magnitude. Every key must appear in
both files.

Exit codes:
  0 - Results match
  1 - Results differ
  2 - Command error (unreadable or malformed files)

Example:
  naiveq22 verify results.csv answers/q22.csv
  naiveq22 verify results.csv answers/q22.csv --tolerance 1e-4`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", view.DefaultTolerance, "relative tolerance")

	return cmd
}

func runVerify(opts *VerifyOptions, resultsPath, expectedPath string, cmd *cobra.Command) error {
	if opts.Tolerance < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--tolerance must not be negative, got %g", opts.Tolerance))
	}

	got, err := readResultsFile(resultsPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read results", err)
	}
	want, err := readResultsFile(expectedPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read expected answers", err)
	}

	out := newFormatter(opts.RootOptions, cmd)
	out.VerboseLog("verify: %d result keys, %d expected keys", len(got), len(want))

	mismatches := view.Diff(got, want, opts.Tolerance)
	if len(mismatches) == 0 {
		return out.Success(VerifyResult{Keys: len(want), Tolerance: opts.Tolerance})
	}

	details := make([]string, len(mismatches))
	for i, m := range mismatches {
		details[i] = m.String()
	}
	return out.Fail("E_VERIFY_FAILED", fmt.Sprintf("%d of %d keys differ", len(mismatches), len(want)), details)
}

func readResultsFile(path string) (map[int64]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := sink.ReadResults(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
