package view

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// DefaultTolerance is the relative tolerance used when comparing aggregates
// computed by different evaluators.
const DefaultTolerance = 1e-6

// Mismatch describes one key on which two results disagree. A key missing
// on one side has the corresponding Has flag false.
type Mismatch struct {
	NationKey int64
	Got       float64
	Want      float64
	HasGot    bool
	HasWant   bool
}

func (m Mismatch) String() string {
	switch {
	case !m.HasGot:
		return fmt.Sprintf("nationkey %d: missing, want %g", m.NationKey, m.Want)
	case !m.HasWant:
		return fmt.Sprintf("nationkey %d: got %g, not expected", m.NationKey, m.Got)
	default:
		return fmt.Sprintf("nationkey %d: got %g, want %g", m.NationKey, m.Got, m.Want)
	}
}

// Close reports whether a and b agree within tol, relative to the larger
// magnitude (absolute for magnitudes below 1). Equal infinities agree.
func Close(a, b, tol float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= tol*scale
}

// Diff compares two key→value maps and returns the disagreements sorted by
// key. An empty result means the maps agree.
func Diff(got, want map[int64]float64, tol float64) []Mismatch {
	var out []Mismatch
	for k, w := range want {
		g, ok := got[k]
		if !ok || !Close(g, w, tol) {
			out = append(out, Mismatch{NationKey: k, Got: g, Want: w, HasGot: ok, HasWant: true})
		}
	}
	for k, g := range got {
		if _, ok := want[k]; !ok {
			out = append(out, Mismatch{NationKey: k, Got: g, HasGot: true})
		}
	}
	slices.SortFunc(out, func(a, b Mismatch) int {
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

// MismatchError carries every disagreement found by a comparison.
type MismatchError struct {
	Mismatches []Mismatch
}

func (e *MismatchError) Error() string {
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = m.String()
	}
	return fmt.Sprintf("%d mismatched keys: %s", len(e.Mismatches), strings.Join(parts, "; "))
}

// DiffError returns a *MismatchError if got and want disagree, nil
// otherwise.
func DiffError(got, want map[int64]float64, tol float64) error {
	if ms := Diff(got, want, tol); len(ms) > 0 {
		return &MismatchError{Mismatches: ms}
	}
	return nil
}
