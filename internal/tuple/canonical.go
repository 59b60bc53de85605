package tuple

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 style canonical JSON for hashing and
// golden comparison.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. Floats use the shortest round-trip form; NaN and ±Inf are rejected
//  5. null is rejected
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return writeCanonicalString(buf, val)
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case float64:
		s, err := formatCanonicalFloat(val)
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareUTF16)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	// Encoder appends a newline.
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

// formatCanonicalFloat follows the ECMAScript Number.toString layout:
// plain decimals in [1e-6, 1e21), exponent form outside it.
func formatCanonicalFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("non-finite float %v is forbidden in canonical JSON", f)
	}
	if f == 0 {
		return "0", nil
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return strconv.FormatFloat(f, 'e', -1, 64), nil
}

func compareUTF16(a, b string) int {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	return slices.Compare(ua, ub)
}

// CustomerObject is the canonical object form of a Customer.
func CustomerObject(c Customer) map[string]any {
	return map[string]any{
		"custkey":    c.CustKey,
		"name":       c.Name,
		"address":    c.Address,
		"nationkey":  c.NationKey,
		"phone":      c.Phone,
		"acctbal":    c.AcctBal,
		"mktsegment": c.MktSegment,
		"comment":    c.Comment,
	}
}

// OrderObject is the canonical object form of an Order.
func OrderObject(o Order) map[string]any {
	return map[string]any{
		"orderkey":      o.OrderKey,
		"custkey":       o.CustKey,
		"orderstatus":   o.OrderStatus,
		"totalprice":    o.TotalPrice,
		"orderdate":     o.OrderDate,
		"orderpriority": o.OrderPriority,
		"clerk":         o.Clerk,
		"shippriority":  o.ShipPriority,
		"comment":       o.Comment,
	}
}

// EventObject is the canonical object form of an event: its route plus tuple.
func EventObject(ev Event) map[string]any {
	obj := map[string]any{
		"relation": ev.Route().Relation.String(),
		"op":       ev.Route().Op.String(),
	}
	switch e := ev.(type) {
	case CustomerInserted:
		obj["tuple"] = CustomerObject(e.Tuple)
	case CustomerDeleted:
		obj["tuple"] = CustomerObject(e.Tuple)
	case OrderInserted:
		obj["tuple"] = OrderObject(e.Tuple)
	case OrderDeleted:
		obj["tuple"] = OrderObject(e.Tuple)
	}
	return obj
}
