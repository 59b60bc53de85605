package view

import (
	"iter"

	"github.com/roach88/naiveq22/internal/tuple"
)

// Threshold is the sum of acctbal over every customer with a positive
// balance. It is independent of the customer and the group being evaluated.
func Threshold(customers iter.Seq[tuple.Customer]) float64 {
	var sum float64
	for c := range customers {
		if 0 < c.AcctBal {
			sum += c.AcctBal
		}
	}
	return sum
}

// OrderCount counts the orders placed by custKey.
func OrderCount(orders iter.Seq[tuple.Order], custKey int64) int {
	n := 0
	for o := range orders {
		if o.CustKey == custKey {
			n++
		}
	}
	return n
}

// Aggregate derives the value of group nationKey from the full contents of
// both relations. It reads nothing else and writes nothing.
//
// For each customer with zero orders the threshold is recomputed from
// scratch, exactly as the reference plan does.
func Aggregate(customers iter.Seq[tuple.Customer], orders iter.Seq[tuple.Order], nationKey int64) float64 {
	var agg float64
	for c1 := range customers {
		if OrderCount(orders, c1.CustKey) != 0 {
			continue
		}
		threshold := Threshold(customers)
		if c1.AcctBal < threshold && c1.NationKey == nationKey {
			agg += c1.AcctBal
		}
	}
	return agg
}

// Refresh recomputes every tracked key of v. All new values are derived
// before any is written, so v never holds a mix of old and new values.
func Refresh(v *View, customers iter.Seq[tuple.Customer], orders iter.Seq[tuple.Order]) {
	fresh := make([]float64, len(v.keys))
	for i, k := range v.keys {
		fresh[i] = Aggregate(customers, orders, k)
	}
	for i, k := range v.keys {
		v.values[k] = fresh[i]
	}
}
