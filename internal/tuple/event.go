package tuple

import "fmt"

// Relation identifies a base relation.
type Relation int

const (
	// RelationCustomer is the CUSTOMER relation.
	RelationCustomer Relation = iota + 1
	// RelationOrders is the ORDERS relation.
	RelationOrders
)

func (r Relation) String() string {
	switch r {
	case RelationCustomer:
		return "CUSTOMER"
	case RelationOrders:
		return "ORDERS"
	default:
		return fmt.Sprintf("Relation(%d)", int(r))
	}
}

// Op is the kind of mutation an event applies.
type Op int

const (
	// OpInsert adds one unit of multiplicity.
	OpInsert Op = iota + 1
	// OpDelete removes one unit of multiplicity if present.
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Route is a (relation, op) pair. Exactly one trigger handler serves each route.
type Route struct {
	Relation Relation
	Op       Op
}

// HandlerName is the name under which the route's handler is instrumented,
// e.g. "on_insert_CUSTOMER".
func (r Route) HandlerName() string {
	return "on_" + r.Op.String() + "_" + r.Relation.String()
}

// Routes returns every route in handler registration order.
func Routes() []Route {
	return []Route{
		{RelationCustomer, OpInsert},
		{RelationOrders, OpInsert},
		{RelationCustomer, OpDelete},
		{RelationOrders, OpDelete},
	}
}

// Triggers receives decoded events, one method per route.
type Triggers interface {
	InsertCustomer(Customer)
	InsertOrder(Order)
	DeleteCustomer(Customer)
	DeleteOrder(Order)
}

// Event is the closed union of mutations. The only implementations are
// CustomerInserted, CustomerDeleted, OrderInserted and OrderDeleted.
type Event interface {
	Route() Route
	// Dispatch invokes the Triggers method matching the event's route.
	Dispatch(t Triggers)
	sealed()
}

// CustomerInserted inserts one Customer value.
type CustomerInserted struct{ Tuple Customer }

// CustomerDeleted deletes one Customer value.
type CustomerDeleted struct{ Tuple Customer }

// OrderInserted inserts one Order value.
type OrderInserted struct{ Tuple Order }

// OrderDeleted deletes one Order value.
type OrderDeleted struct{ Tuple Order }

func (CustomerInserted) Route() Route { return Route{RelationCustomer, OpInsert} }
func (CustomerDeleted) Route() Route  { return Route{RelationCustomer, OpDelete} }
func (OrderInserted) Route() Route    { return Route{RelationOrders, OpInsert} }
func (OrderDeleted) Route() Route     { return Route{RelationOrders, OpDelete} }

func (e CustomerInserted) Dispatch(t Triggers) { t.InsertCustomer(e.Tuple) }
func (e CustomerDeleted) Dispatch(t Triggers)  { t.DeleteCustomer(e.Tuple) }
func (e OrderInserted) Dispatch(t Triggers)    { t.InsertOrder(e.Tuple) }
func (e OrderDeleted) Dispatch(t Triggers)     { t.DeleteOrder(e.Tuple) }

func (CustomerInserted) sealed() {}
func (CustomerDeleted) sealed()  {}
func (OrderInserted) sealed()    {}
func (OrderDeleted) sealed()     {}

// CustomerEvent builds the event for op applied to c.
func CustomerEvent(op Op, c Customer) Event {
	if op == OpDelete {
		return CustomerDeleted{Tuple: c}
	}
	return CustomerInserted{Tuple: c}
}

// OrderEvent builds the event for op applied to o.
func OrderEvent(op Op, o Order) Event {
	if op == OpDelete {
		return OrderDeleted{Tuple: o}
	}
	return OrderInserted{Tuple: o}
}

// ParseOp converts "insert"/"delete" (or "+"/"-") to an Op.
func ParseOp(s string) (Op, error) {
	switch s {
	case "insert", "+":
		return OpInsert, nil
	case "delete", "-":
		return OpDelete, nil
	default:
		return 0, fmt.Errorf("unknown op %q: must be insert or delete", s)
	}
}
