// Package oracle evaluates the Q22 variant in SQLite, independently of the
// in-memory recompute, and compares the two.
//
// The query it runs is:
//
//	SELECT c.nationkey, SUM(c.acctbal)
//	FROM customer c
//	WHERE c.acctbal < (SELECT COALESCE(SUM(c2.acctbal), 0)
//	                   FROM customer c2 WHERE c2.acctbal > 0)
//	  AND NOT EXISTS (SELECT 1 FROM orders o WHERE o.custkey = c.custkey)
//	GROUP BY c.nationkey
//
// Nation keys the view tracks but the query does not return are expected
// to hold zero.
package oracle
