package view

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/naiveq22/internal/tuple"
)

func cust(key, nation int64, bal float64) tuple.Customer {
	return tuple.Customer{CustKey: key, NationKey: nation, AcctBal: bal}
}

func order(key, custKey int64) tuple.Order {
	return tuple.Order{OrderKey: key, CustKey: custKey}
}

func aggregate(cs []tuple.Customer, os []tuple.Order, g int64) float64 {
	return Aggregate(slices.Values(cs), slices.Values(os), g)
}

func TestThresholdSumsPositiveBalances(t *testing.T) {
	cs := []tuple.Customer{cust(1, 5, 100), cust(2, 5, 50), cust(3, 9, -10), cust(4, 9, 0)}
	assert.Equal(t, 150.0, Threshold(slices.Values(cs)))
	assert.Equal(t, 0.0, Threshold(slices.Values([]tuple.Customer(nil))))
}

func TestOrderCount(t *testing.T) {
	os := []tuple.Order{order(1, 1), order(2, 1), order(3, 2)}
	assert.Equal(t, 2, OrderCount(slices.Values(os), 1))
	assert.Equal(t, 1, OrderCount(slices.Values(os), 2))
	assert.Equal(t, 0, OrderCount(slices.Values(os), 3))
}

func TestAggregateWalkthrough(t *testing.T) {
	c1 := cust(1, 5, 100)
	c2 := cust(2, 5, 50)
	c3 := cust(3, 9, -10)
	o1 := order(1, 1)

	// Sole customer: 100 < 100 is false.
	assert.Equal(t, 0.0, aggregate([]tuple.Customer{c1}, nil, 5))

	// Threshold 150: both nation-5 customers qualify.
	assert.Equal(t, 150.0, aggregate([]tuple.Customer{c1, c2}, nil, 5))

	// Customer 1 now has an order and drops out.
	assert.Equal(t, 50.0, aggregate([]tuple.Customer{c1, c2}, []tuple.Order{o1}, 5))

	// Order removed again.
	assert.Equal(t, 150.0, aggregate([]tuple.Customer{c1, c2}, nil, 5))

	// Negative balance does not move the threshold but still qualifies.
	all := []tuple.Customer{c1, c2, c3}
	assert.Equal(t, 150.0, aggregate(all, nil, 5))
	assert.Equal(t, -10.0, aggregate(all, nil, 9))
}

func TestAggregateNegativeOnly(t *testing.T) {
	// No positive balances: threshold is 0 and -10 < 0 qualifies.
	assert.Equal(t, -10.0, aggregate([]tuple.Customer{cust(1, 3, -10)}, nil, 3))
}

func TestAggregateUnknownGroupIsZero(t *testing.T) {
	cs := []tuple.Customer{cust(1, 5, 10), cust(2, 5, 20)}
	assert.Equal(t, 0.0, aggregate(cs, nil, 42))
}

func TestAggregateCountsMultiplicity(t *testing.T) {
	c := cust(1, 5, 10)
	other := cust(2, 6, 100)
	// Threshold counts c twice (120); c contributes twice.
	assert.Equal(t, 20.0, aggregate([]tuple.Customer{c, c, other}, nil, 5))
}

func TestAggregateOrdersMatchOnCustKeyOnly(t *testing.T) {
	cs := []tuple.Customer{cust(1, 5, 10), cust(2, 5, 100)}
	// Order key 2 belongs to customer 1; customer 2 still has no orders.
	os := []tuple.Order{{OrderKey: 2, CustKey: 1, TotalPrice: 3, OrderDate: "1995-01-01"}}
	assert.Equal(t, 100.0, aggregate(cs, os, 5))
}

func TestRefreshOverwritesEveryKey(t *testing.T) {
	v := New()
	v.Ensure(5)
	v.Ensure(9)
	v.Ensure(1)

	cs := []tuple.Customer{cust(1, 5, 100), cust(2, 5, 50), cust(3, 9, -10)}
	Refresh(v, slices.Values(cs), slices.Values([]tuple.Order(nil)))

	assert.Equal(t, map[int64]float64{5: 150, 9: -10, 1: 0}, v.Snapshot())

	Refresh(v, slices.Values([]tuple.Customer(nil)), slices.Values([]tuple.Order(nil)))
	assert.Equal(t, map[int64]float64{5: 0, 9: 0, 1: 0}, v.Snapshot())
	assert.Equal(t, []int64{5, 9, 1}, v.Keys())
}
