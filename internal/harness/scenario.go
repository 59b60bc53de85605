package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/naiveq22/internal/tuple"
)

// Scenario is a sequence of events with expected views.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunID is a fixed run id for deterministic log output.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// SampleEvery overrides the sampling interval. Zero keeps the default.
	SampleEvery int `yaml:"sample_every,omitempty"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`
}

// Step is one event plus what should hold after it.
type Step struct {
	// Op is "insert" or "delete".
	Op string `yaml:"op"`

	// Customer or Order is the tuple; exactly one must be set.
	Customer *tuple.Customer `yaml:"customer,omitempty"`
	Order    *tuple.Order    `yaml:"order,omitempty"`

	// Expect is checked after the step is applied. Nil checks nothing.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect lists what a step must leave behind. Fields left unset are not
// checked.
type Expect struct {
	// View is the complete expected view: every tracked key and nothing
	// else.
	View map[int64]float64 `yaml:"view,omitempty"`

	// Customers and Orders are expected store sizes (total multiplicity).
	Customers *int `yaml:"customers,omitempty"`
	Orders    *int `yaml:"orders,omitempty"`
}

// Event converts the step to an engine event.
func (s Step) Event() (tuple.Event, error) {
	op, err := tuple.ParseOp(s.Op)
	if err != nil {
		return nil, err
	}
	switch {
	case s.Customer != nil && s.Order == nil:
		return tuple.CustomerEvent(op, *s.Customer), nil
	case s.Order != nil && s.Customer == nil:
		return tuple.OrderEvent(op, *s.Order), nil
	default:
		return nil, fmt.Errorf("exactly one of customer or order is required")
	}
}

// LoadScenario reads, schema-checks and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(path, data)
}

// ParseScenario is LoadScenario over in-memory data. filename is used in
// error messages only.
func ParseScenario(filename string, data []byte) (*Scenario, error) {
	if err := ValidateSchema(filename, data); err != nil {
		return nil, err
	}

	// Parse YAML with strict field validation (catches typos like "expects:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks what the schema cannot express.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, step := range s.Steps {
		if _, err := step.Event(); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return nil
}
