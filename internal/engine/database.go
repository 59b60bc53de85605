package engine

import (
	"github.com/roach88/naiveq22/internal/bag"
	"github.com/roach88/naiveq22/internal/stats"
	"github.com/roach88/naiveq22/internal/tuple"
	"github.com/roach88/naiveq22/internal/view"
)

// Structure names used in m-lines of the stats sink.
const (
	StructureCustomer = "CUSTOMER"
	StructureOrders   = "ORDERS"
	StructureView     = "q"
)

// Database owns both relation stores and the view. Only the trigger
// handlers mutate it.
type Database struct {
	Customers *bag.Bag[tuple.Customer]
	Orders    *bag.Bag[tuple.Order]
	View      *view.View
}

// NewDatabase creates empty stores and an empty view.
func NewDatabase() *Database {
	return &Database{
		Customers: bag.New[tuple.Customer](),
		Orders:    bag.New[tuple.Order](),
		View:      view.New(),
	}
}

// Refresh recomputes every view key from the current stores.
func (db *Database) Refresh() {
	view.Refresh(db.View, db.Customers.All(), db.Orders.All())
}

// Footprints estimates the memory of each structure, in stats sink order.
func (db *Database) Footprints() []stats.Footprint {
	return []stats.Footprint{
		stats.Measure(StructureOrders, db.Orders, db.Orders.Entries()),
		stats.Measure(StructureView, db.View, db.View.Len()),
		stats.Measure(StructureCustomer, db.Customers, db.Customers.Entries()),
	}
}
