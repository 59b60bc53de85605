package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/naiveq22/internal/testutil"
)

const testCustomers = `1|Customer#000000001|addr1|5|15-000-000-0001|100.00|BUILDING|first|
2|Customer#000000002|addr2|5|15-000-000-0002|50.00|MACHINERY|second|
3|Customer#000000003|addr3|9|19-000-000-0003|-10.00|HOUSEHOLD|third|
`

const testOrders = `1|1|O|10.00|1996-01-02|1-URGENT|Clerk#000000001|0|only order|
`

type runFiles struct {
	customers, orders string
	results, log      string
	stats             string
	dir               string
}

func writeRunInputs(t *testing.T, customers, orders string) runFiles {
	t.Helper()
	dir := t.TempDir()
	f := runFiles{
		customers: filepath.Join(dir, "customer.tbl"),
		orders:    filepath.Join(dir, "orders.tbl"),
		results:   filepath.Join(dir, "results.csv"),
		log:       filepath.Join(dir, "run.log"),
		stats:     filepath.Join(dir, "stats.csv"),
		dir:       dir,
	}
	require.NoError(t, os.WriteFile(f.customers, []byte(customers), 0644))
	require.NoError(t, os.WriteFile(f.orders, []byte(orders), 0644))
	return f
}

func (f runFiles) args(extra ...string) []string {
	return append([]string{
		"--customers", f.customers,
		"--orders", f.orders,
		"--results", f.results,
		"--log", f.log,
		"--stats", f.stats,
	}, extra...)
}

func newTestRunCommand(format string, buf *bytes.Buffer) *cobra.Command {
	cmd := newRunCommand(&RunOptions{
		RootOptions:    &RootOptions{Format: format},
		RunIDGenerator: testutil.NewFixedRunID("cli-run"),
	})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	return cmd
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunMissingRequiredFlags(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--customers", "c.tbl"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Contains(t, err.Error(), "orders")
}

func TestRunEndToEnd(t *testing.T) {
	f := writeRunInputs(t, testCustomers, testOrders)

	buf := &bytes.Buffer{}
	opts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(f.args())

	require.NoError(t, cmd.Execute())

	// Customer 1 has an order; 2 and 3 fall below the threshold of 150.
	assert.Equal(t, "5,50\n9,-10\n", readFile(t, f.results))
	assert.Contains(t, buf.String(), "events:    4")
	assert.Contains(t, buf.String(), "view keys: 2")

	// Fewer than 100 events: only the shutdown sample, handlers first.
	lines := strings.Split(strings.TrimSuffix(readFile(t, f.stats), "\n"), "\n")
	require.Len(t, lines, 7)
	for i, name := range []string{"on_insert_CUSTOMER", "on_insert_ORDERS", "on_delete_CUSTOMER", "on_delete_ORDERS"} {
		assert.True(t, strings.HasPrefix(lines[i], "h,"+name+","), lines[i])
	}
	assert.True(t, strings.HasPrefix(lines[4], "m,ORDERS,"), lines[4])
	assert.True(t, strings.HasPrefix(lines[5], "m,q,"), lines[5])
	assert.True(t, strings.HasPrefix(lines[6], "m,CUSTOMER,"), lines[6])

	assert.Contains(t, readFile(t, f.log), "throughput")
}

func TestRunDeleteRecords(t *testing.T) {
	orders := testOrders + "-|1|1|O|10.00|1996-01-02|1-URGENT|Clerk#000000001|0|only order|\n"
	f := writeRunInputs(t, testCustomers, orders)

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(f.args())

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "5,150\n9,-10\n", readFile(t, f.results))
}

func TestRunJSONWithFixedRunID(t *testing.T) {
	f := writeRunInputs(t, testCustomers, testOrders)

	buf := &bytes.Buffer{}
	cmd := newTestRunCommand("json", buf)
	cmd.SetArgs(f.args())

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "cli-run", data["run_id"])
	assert.Equal(t, float64(4), data["events"])
	assert.Equal(t, float64(2), data["view_keys"])
	assert.Contains(t, readFile(t, f.log), "run_id=cli-run")
}

func TestRunSeedIsDeterministic(t *testing.T) {
	var customers, orders strings.Builder
	for i := 1; i <= 60; i++ {
		fmt.Fprintf(&customers, "%d|c%d|a|%d|p|%d.50|SEG|x|\n", i, i, i%4, i*7-150)
		if i%3 == 0 {
			fmt.Fprintf(&orders, "%d|%d|O|1.00|1995-03-15|1-URGENT|clerk|0|x|\n", i, i)
		}
	}

	var digests []string
	for range 2 {
		f := writeRunInputs(t, customers.String(), orders.String())
		buf := &bytes.Buffer{}
		cmd := newTestRunCommand("json", buf)
		cmd.SetArgs(f.args("--seed", "7", "--step", "3", "--sample-every", "10"))
		require.NoError(t, cmd.Execute())

		var resp CLIResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		data := resp.Data.(map[string]any)
		digests = append(digests, data["digest"].(string))

		// 80 events at every 10: eight periodic samples plus the shutdown one.
		stats := readFile(t, f.stats)
		assert.Equal(t, 9*3, strings.Count(stats, "m,"))
		assert.Equal(t, 9*4, strings.Count(stats, "h,"))
	}
	assert.Equal(t, digests[0], digests[1])
}

func TestRunWithOracleAndMetrics(t *testing.T) {
	f := writeRunInputs(t, testCustomers, testOrders)
	metricsPath := filepath.Join(f.dir, "metrics.prom")

	buf := &bytes.Buffer{}
	cmd := newTestRunCommand("text", buf)
	cmd.SetArgs(f.args(
		"--check-every", "1",
		"--oracle-db", filepath.Join(f.dir, "oracle.db"),
		"--metrics-file", metricsPath,
	))

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "5,50\n9,-10\n", readFile(t, f.results))

	metrics := readFile(t, metricsPath)
	assert.Contains(t, metrics, "naiveq22_tuples_total 4")
	assert.Contains(t, metrics, `naiveq22_handler_invocations_total{handler="on_insert_CUSTOMER"} 3`)
	assert.Contains(t, metrics, `naiveq22_structure_bytes{structure="q"}`)
}

func TestRunNonExistentStream(t *testing.T) {
	f := writeRunInputs(t, testCustomers, testOrders)
	f.orders = filepath.Join(f.dir, "missing.tbl")

	buf := &bytes.Buffer{}
	cmd := newTestRunCommand("text", buf)
	cmd.SetArgs(f.args())

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open orders stream")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunInvalidStep(t *testing.T) {
	f := writeRunInputs(t, testCustomers, testOrders)

	cmd := newTestRunCommand("text", &bytes.Buffer{})
	cmd.SetArgs(f.args("--step", "0"))

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunMalformedRecordIsFatal(t *testing.T) {
	orders := "1|1|O|10.00|1996-13-45|1-URGENT|Clerk#000000001|0|bad date|\n"
	f := writeRunInputs(t, testCustomers, orders)

	cmd := newTestRunCommand("text", &bytes.Buffer{})
	cmd.SetArgs(f.args())

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine error")
	assert.Contains(t, err.Error(), "BAD_DATE")
	assert.Equal(t, ExitFailure, GetExitCode(err))

	// The shutdown sample is still written.
	assert.Contains(t, readFile(t, f.stats), "m,CUSTOMER,")
}

func TestRunCancelledContext(t *testing.T) {
	f := writeRunInputs(t, testCustomers, testOrders)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	buf := &bytes.Buffer{}
	cmd := newTestRunCommand("text", buf)
	cmd.SetArgs(f.args())

	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.Contains(t, buf.String(), "Run interrupted.")
	assert.Contains(t, buf.String(), "events:    0")
	assert.Empty(t, readFile(t, f.results))
}
