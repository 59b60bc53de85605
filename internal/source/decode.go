package source

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/naiveq22/internal/tuple"
)

// DateLayout is the wire format of date fields.
const DateLayout = "2006-01-02"

// SplitRecord splits a .tbl line into its op marker and fields.
func SplitRecord(line string) (tuple.Op, []string) {
	fields := strings.Split(line, "|")
	if n := len(fields); n > 1 && fields[n-1] == "" {
		fields = fields[:n-1]
	}
	if len(fields) > 0 {
		switch fields[0] {
		case "+":
			return tuple.OpInsert, fields[1:]
		case "-":
			return tuple.OpDelete, fields[1:]
		}
	}
	return tuple.OpInsert, fields
}

// fieldReader converts positional fields, remembering the first failure.
type fieldReader struct {
	fields []string
	err    *DecodeError
}

func (r *fieldReader) str(i int) string {
	return norm.NFC.String(r.fields[i])
}

func (r *fieldReader) int64(i int, name string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(r.fields[i]), 10, 64)
	if err != nil && r.err == nil {
		r.err = &DecodeError{Code: ErrCodeBadInt, Field: name, Err: err}
	}
	return v
}

func (r *fieldReader) int32(i int, name string) int32 {
	v, err := strconv.ParseInt(strings.TrimSpace(r.fields[i]), 10, 32)
	if err != nil && r.err == nil {
		r.err = &DecodeError{Code: ErrCodeBadInt, Field: name, Err: err}
	}
	return int32(v)
}

// errNonFinite is reported for NaN and infinite real fields.
var errNonFinite = errors.New("non-finite value")

func (r *fieldReader) float64(i int, name string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.fields[i]), 64)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = errNonFinite
	}
	if err != nil && r.err == nil {
		r.err = &DecodeError{Code: ErrCodeBadFloat, Field: name, Err: err}
	}
	return v
}

func (r *fieldReader) date(i int, name string) string {
	s := strings.TrimSpace(r.fields[i])
	if _, err := time.Parse(DateLayout, s); err != nil && r.err == nil {
		r.err = &DecodeError{Code: ErrCodeBadDate, Field: name, Err: err}
	}
	return s
}

func checkFields(fields []string, want int) *DecodeError {
	if len(fields) != want {
		return &DecodeError{
			Code: ErrCodeFieldCount,
			Err:  fmt.Errorf("got %d fields, want %d", len(fields), want),
		}
	}
	return nil
}

// DecodeCustomer builds a Customer from its 8 fields:
// custkey|name|address|nationkey|phone|acctbal|mktsegment|comment
func DecodeCustomer(fields []string) (tuple.Customer, error) {
	if err := checkFields(fields, tuple.CustomerFields); err != nil {
		return tuple.Customer{}, err
	}
	r := &fieldReader{fields: fields}
	c := tuple.Customer{
		CustKey:    r.int64(0, "custkey"),
		Name:       r.str(1),
		Address:    r.str(2),
		NationKey:  r.int64(3, "nationkey"),
		Phone:      r.str(4),
		AcctBal:    r.float64(5, "acctbal"),
		MktSegment: r.str(6),
		Comment:    r.str(7),
	}
	if r.err != nil {
		return tuple.Customer{}, r.err
	}
	return c, nil
}

// DecodeOrder builds an Order from its 9 fields:
// orderkey|custkey|orderstatus|totalprice|orderdate|orderpriority|clerk|shippriority|comment
func DecodeOrder(fields []string) (tuple.Order, error) {
	if err := checkFields(fields, tuple.OrderFields); err != nil {
		return tuple.Order{}, err
	}
	r := &fieldReader{fields: fields}
	o := tuple.Order{
		OrderKey:      r.int64(0, "orderkey"),
		CustKey:       r.int64(1, "custkey"),
		OrderStatus:   r.str(2),
		TotalPrice:    r.float64(3, "totalprice"),
		OrderDate:     r.date(4, "orderdate"),
		OrderPriority: r.str(5),
		Clerk:         r.str(6),
		ShipPriority:  r.int32(7, "shippriority"),
		Comment:       r.str(8),
	}
	if r.err != nil {
		return tuple.Order{}, r.err
	}
	return o, nil
}

// DecodeEvent decodes one line of a stream of the given relation.
func DecodeEvent(rel tuple.Relation, line string) (tuple.Event, error) {
	op, fields := SplitRecord(line)
	switch rel {
	case tuple.RelationCustomer:
		c, err := DecodeCustomer(fields)
		if err != nil {
			return nil, err
		}
		return tuple.CustomerEvent(op, c), nil
	case tuple.RelationOrders:
		o, err := DecodeOrder(fields)
		if err != nil {
			return nil, err
		}
		return tuple.OrderEvent(op, o), nil
	default:
		return nil, fmt.Errorf("unknown relation %v", rel)
	}
}
