package harness

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/naiveq22/internal/tuple"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Walkthrough(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/walkthrough.yaml")
	require.NoError(t, err)

	assert.Equal(t, "walkthrough", s.Name)
	assert.Equal(t, "walkthrough-run", s.RunID)
	require.Len(t, s.Steps, 5)

	first := s.Steps[0]
	assert.Equal(t, "insert", first.Op)
	require.NotNil(t, first.Customer)
	assert.Equal(t, tuple.Customer{CustKey: 1, NationKey: 5, AcctBal: 100}, *first.Customer)
	assert.Equal(t, map[int64]float64{5: 0}, first.Expect.View)

	third := s.Steps[2]
	require.NotNil(t, third.Order)
	assert.Equal(t, "1996-01-02", third.Order.OrderDate)
	require.NotNil(t, third.Expect.Orders)
	assert.Equal(t, 1, *third.Expect.Orders)
	assert.Nil(t, third.Expect.Customers)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseScenario_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", `
description: d
steps:
  - op: insert
    customer: {custkey: 1, nationkey: 1, acctbal: 1}
`},
		{"unknown op", `
name: n
description: d
steps:
  - op: upsert
    customer: {custkey: 1, nationkey: 1, acctbal: 1}
`},
		{"unknown field", `
name: n
description: d
steps:
  - op: insert
    customer: {custkey: 1, nationkey: 1, acctbal: 1, balance: 3}
`},
		{"empty steps", `
name: n
description: d
steps: []
`},
		{"bad date", `
name: n
description: d
steps:
  - op: insert
    order: {orderkey: 1, custkey: 1, orderdate: "Jan 2"}
`},
		{"non-numeric view key", `
name: n
description: d
steps:
  - op: insert
    customer: {custkey: 1, nationkey: 1, acctbal: 1}
    expect:
      view: {five: 0}
`},
		{"negative store size", `
name: n
description: d
steps:
  - op: insert
    customer: {custkey: 1, nationkey: 1, acctbal: 1}
    expect:
      customers: -1
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario("scenario.yaml", []byte(tt.content))
			require.Error(t, err)
			var se *SchemaError
			assert.True(t, errors.As(err, &se), "want SchemaError, got %v", err)
		})
	}
}

func TestParseScenario_RequiresExactlyOneTuple(t *testing.T) {
	for name, content := range map[string]string{
		"neither": `
name: n
description: d
steps:
  - op: insert
`,
		"both": `
name: n
description: d
steps:
  - op: insert
    customer: {custkey: 1, nationkey: 1, acctbal: 1}
    order: {orderkey: 1, custkey: 1}
`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenario("scenario.yaml", []byte(content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "exactly one of customer or order")
		})
	}
}

func TestStep_Event(t *testing.T) {
	c := tuple.Customer{CustKey: 1}
	ev, err := Step{Op: "delete", Customer: &c}.Event()
	require.NoError(t, err)
	assert.Equal(t, tuple.CustomerDeleted{Tuple: c}, ev)

	o := tuple.Order{OrderKey: 2}
	ev, err = Step{Op: "+", Order: &o}.Event()
	require.NoError(t, err)
	assert.Equal(t, tuple.OrderInserted{Tuple: o}, ev)

	_, err = Step{Op: "merge", Order: &o}.Event()
	assert.Error(t, err)
}

func TestLoadScenario_FromFile(t *testing.T) {
	path := writeScenario(t, `
name: from-file
description: loads through the filesystem
steps:
  - op: insert
    order: {orderkey: 1, custkey: 1}
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", s.Name)
}
