package tuple

// Customer is one row of the TPC-H CUSTOMER relation.
type Customer struct {
	CustKey    int64   `json:"custkey" yaml:"custkey"`
	Name       string  `json:"name" yaml:"name"`
	Address    string  `json:"address" yaml:"address"`
	NationKey  int64   `json:"nationkey" yaml:"nationkey"`
	Phone      string  `json:"phone" yaml:"phone"`
	AcctBal    float64 `json:"acctbal" yaml:"acctbal"`
	MktSegment string  `json:"mktsegment" yaml:"mktsegment"`
	Comment    string  `json:"comment" yaml:"comment"`
}

// Order is one row of the TPC-H ORDERS relation.
// OrderDate is kept in its wire form (YYYY-MM-DD); the decoder validates it.
type Order struct {
	OrderKey      int64   `json:"orderkey" yaml:"orderkey"`
	CustKey       int64   `json:"custkey" yaml:"custkey"`
	OrderStatus   string  `json:"orderstatus" yaml:"orderstatus"`
	TotalPrice    float64 `json:"totalprice" yaml:"totalprice"`
	OrderDate     string  `json:"orderdate" yaml:"orderdate"`
	OrderPriority string  `json:"orderpriority" yaml:"orderpriority"`
	Clerk         string  `json:"clerk" yaml:"clerk"`
	ShipPriority  int32   `json:"shippriority" yaml:"shippriority"`
	Comment       string  `json:"comment" yaml:"comment"`
}

// CustomerFields and OrderFields are the column counts of the wire records.
const (
	CustomerFields = 8
	OrderFields    = 9
)
