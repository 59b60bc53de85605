package oracle

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/naiveq22/internal/engine"
	"github.com/roach88/naiveq22/internal/source"
	"github.com/roach88/naiveq22/internal/tuple"
	"github.com/roach88/naiveq22/internal/view"
)

var _ engine.Checker = (*Oracle)(nil)

func openTestOracle(t *testing.T) *Oracle {
	t.Helper()
	o, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { o.Close() })
	return o
}

func cust(key, nation int64, bal float64) tuple.Customer {
	return tuple.Customer{CustKey: key, Name: "c", NationKey: nation, AcctBal: bal}
}

func order(key, custKey int64) tuple.Order {
	return tuple.Order{OrderKey: key, CustKey: custKey, OrderDate: "1996-01-02"}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oracle.db")
	o, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, o.Close())

	// Reopening applies the schema idempotently.
	o, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, o.Close())
}

func TestEvaluate_Walkthrough(t *testing.T) {
	o := openTestOracle(t)
	ctx := context.Background()
	c1, c2, c3 := cust(1, 5, 100), cust(2, 5, 50), cust(3, 9, -10)

	eval := func(cs []tuple.Customer, os []tuple.Order) map[int64]float64 {
		require.NoError(t, o.Load(ctx, slices.Values(cs), slices.Values(os)))
		got, err := o.Evaluate(ctx)
		require.NoError(t, err)
		return got
	}

	assert.Empty(t, eval([]tuple.Customer{c1}, nil))
	assert.Equal(t, map[int64]float64{5: 150}, eval([]tuple.Customer{c1, c2}, nil))
	assert.Equal(t, map[int64]float64{5: 50}, eval([]tuple.Customer{c1, c2}, []tuple.Order{order(1, 1)}))
	assert.Equal(t, map[int64]float64{5: 150, 9: -10}, eval([]tuple.Customer{c1, c2, c3}, nil))
}

func TestEvaluate_NoPositiveBalances(t *testing.T) {
	o := openTestOracle(t)
	ctx := context.Background()
	cs := []tuple.Customer{cust(1, 2, -5), cust(2, 2, 0)}
	require.NoError(t, o.Load(ctx, slices.Values(cs), slices.Values([]tuple.Order(nil))))

	// Threshold of an empty sum is 0, so only the negative balance qualifies.
	got, err := o.Evaluate(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{2: -5}, got)
}

func TestEvaluate_Multiplicity(t *testing.T) {
	o := openTestOracle(t)
	ctx := context.Background()
	c := cust(1, 4, 10)
	require.NoError(t, o.Load(ctx, slices.Values([]tuple.Customer{c, c}), slices.Values([]tuple.Order(nil))))

	got, err := o.Evaluate(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{4: 20}, got)
}

func TestCheck_FillsTrackedKeysWithZero(t *testing.T) {
	o := openTestOracle(t)
	v := view.New()
	v.Ensure(7)

	err := o.Check(context.Background(), slices.Values([]tuple.Customer(nil)), slices.Values([]tuple.Order(nil)), v)
	assert.NoError(t, err)
}

func TestCheck_ReportsMismatch(t *testing.T) {
	o := openTestOracle(t)
	cs := []tuple.Customer{cust(1, 5, 100), cust(2, 5, 50)}
	v := view.New()
	v.Ensure(5)

	err := o.Check(context.Background(), slices.Values(cs), slices.Values([]tuple.Order(nil)), v)
	var me *view.MismatchError
	require.True(t, errors.As(err, &me))
	require.Len(t, me.Mismatches, 1)
	assert.Equal(t, int64(5), me.Mismatches[0].NationKey)
	assert.Equal(t, 150.0, me.Mismatches[0].Want)

	view.Refresh(v, slices.Values(cs), slices.Values([]tuple.Order(nil)))
	assert.NoError(t, o.Check(context.Background(), slices.Values(cs), slices.Values([]tuple.Order(nil)), v))
}

func TestEngineAgreesWithOracle(t *testing.T) {
	o := openTestOracle(t)
	rng := rand.New(rand.NewSource(42))

	q := source.NewQueue()
	var live []tuple.Customer
	for range 200 {
		key := int64(rng.Intn(10))
		switch rng.Intn(4) {
		case 0, 1:
			c := cust(key, int64(rng.Intn(5)), float64(rng.Intn(10000))/100-20)
			live = append(live, c)
			q.Push(tuple.CustomerEvent(tuple.OpInsert, c))
		case 2:
			q.Push(tuple.OrderEvent(tuple.OpInsert, order(int64(rng.Intn(3)), key)))
		case 3:
			if len(live) > 0 && rng.Intn(2) == 0 {
				q.Push(tuple.CustomerEvent(tuple.OpDelete, live[rng.Intn(len(live))]))
			} else {
				q.Push(tuple.OrderEvent(tuple.OpDelete, order(int64(rng.Intn(3)), key)))
			}
		}
	}

	e := engine.New(engine.WithChecker(o, 1))
	require.NoError(t, e.Run(context.Background(), q))
	assert.Equal(t, int64(200), e.Seq())
}
