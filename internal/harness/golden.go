package harness

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/naiveq22/internal/tuple"
	"github.com/roach88/naiveq22/internal/view"
)

// GoldenDir is where golden snapshots live, relative to the test package.
const GoldenDir = "testdata/golden"

// toCanonicalMap converts a result to a map[string]any for canonical JSON
// serialization.
func toCanonicalMap(name string, r *Result) map[string]any {
	trace := make([]any, len(r.Trace))
	for i, st := range r.Trace {
		entries := make([]any, len(st.View))
		for j, e := range st.View {
			entries[j] = map[string]any{
				"nationkey": e.NationKey,
				"value":     view.CanonicalValue(e.Value),
			}
		}
		trace[i] = map[string]any{
			"seq":      st.Seq,
			"handler":  st.Handler,
			"event_id": st.EventID,
			"view":     entries,
		}
	}

	lines := strings.Split(strings.TrimSuffix(r.Stats, "\n"), "\n")
	stats := make([]any, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			stats = append(stats, l)
		}
	}

	return map[string]any{
		"scenario": name,
		"trace":    trace,
		"digest":   r.Digest,
		"stats":    stats,
	}
}

// Snapshot renders a result as canonical JSON. Identical runs produce
// identical bytes.
func Snapshot(name string, r *Result) ([]byte, error) {
	return tuple.MarshalCanonical(toCanonicalMap(name, r))
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
