package harness

import "github.com/roach88/naiveq22/internal/view"

// StepTrace records one applied step.
type StepTrace struct {
	Seq     int64        `json:"seq"`
	Handler string       `json:"handler"`
	EventID string       `json:"event_id"`
	View    []view.Entry `json:"view"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and cross-check held.
	Pass bool `json:"pass"`

	// Trace has one entry per applied step, in order.
	Trace []StepTrace `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Digest is the content hash of the final view.
	Digest string `json:"digest"`

	// Stats is everything written to the stats sink.
	Stats string `json:"stats"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepTrace{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
