package oracle

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"iter"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/naiveq22/internal/tuple"
	"github.com/roach88/naiveq22/internal/view"
)

//go:embed schema.sql
var schemaSQL string

//go:embed query.sql
var querySQL string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Oracle holds a SQLite database that is reloaded from the stores on
// every check.
type Oracle struct {
	db  *sql.DB
	tol float64
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithTolerance sets the relative tolerance used by Check.
func WithTolerance(tol float64) Option {
	return func(o *Oracle) {
		o.tol = tol
	}
}

// Open creates or opens a SQLite database at path and applies the schema.
// Use MemoryPath for a throwaway database.
func Open(path string, opts ...Option) (*Oracle, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open oracle database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to oracle database: %w", err)
	}

	// One connection: an in-memory database exists per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	o := &Oracle{db: db, tol: view.DefaultTolerance}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Close closes the database connection.
func (o *Oracle) Close() error {
	if o.db == nil {
		return nil
	}
	return o.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = OFF",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Load replaces the contents of both tables with the given tuples, one row
// per unit of multiplicity.
func (o *Oracle) Load(ctx context.Context, customers iter.Seq[tuple.Customer], orders iter.Seq[tuple.Order]) error {
	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"customer", "orders"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insC, err := tx.PrepareContext(ctx, `INSERT INTO customer
		(custkey, name, address, nationkey, phone, acctbal, mktsegment, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare customer insert: %w", err)
	}
	defer insC.Close()
	for c := range customers {
		if _, err := insC.ExecContext(ctx, c.CustKey, c.Name, c.Address, c.NationKey,
			c.Phone, c.AcctBal, c.MktSegment, c.Comment); err != nil {
			return fmt.Errorf("insert customer %d: %w", c.CustKey, err)
		}
	}

	insO, err := tx.PrepareContext(ctx, `INSERT INTO orders
		(orderkey, custkey, orderstatus, totalprice, orderdate, orderpriority, clerk, shippriority, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare order insert: %w", err)
	}
	defer insO.Close()
	for r := range orders {
		if _, err := insO.ExecContext(ctx, r.OrderKey, r.CustKey, r.OrderStatus, r.TotalPrice,
			r.OrderDate, r.OrderPriority, r.Clerk, r.ShipPriority, r.Comment); err != nil {
			return fmt.Errorf("insert order %d: %w", r.OrderKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

// Evaluate runs the query over the loaded tables and returns the groups
// it produces.
func (o *Oracle) Evaluate(ctx context.Context) (map[int64]float64, error) {
	rows, err := o.db.QueryContext(ctx, querySQL)
	if err != nil {
		return nil, fmt.Errorf("evaluate query: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]float64)
	for rows.Next() {
		var (
			nation int64
			sum    float64
		)
		if err := rows.Scan(&nation, &sum); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		out[nation] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}
	return out, nil
}

// Expected loads the stores and returns the value every key of v should
// hold.
func (o *Oracle) Expected(ctx context.Context, customers iter.Seq[tuple.Customer], orders iter.Seq[tuple.Order], v *view.View) (map[int64]float64, error) {
	if err := o.Load(ctx, customers, orders); err != nil {
		return nil, err
	}
	groups, err := o.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	for _, k := range v.Keys() {
		if _, ok := groups[k]; !ok {
			groups[k] = 0
		}
	}
	return groups, nil
}

// Check compares v with the query evaluated over the stores. It returns a
// *view.MismatchError when they disagree.
func (o *Oracle) Check(ctx context.Context, customers iter.Seq[tuple.Customer], orders iter.Seq[tuple.Order], v *view.View) error {
	want, err := o.Expected(ctx, customers, orders, v)
	if err != nil {
		return fmt.Errorf("oracle: %w", err)
	}
	return view.DiffError(v.Snapshot(), want, o.tol)
}
