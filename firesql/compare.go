package firesql

import (
	"fmt"
	"strings"
	"time"
)

// CompareValues compares two document values and returns:
//
//	-1 if left < right
//	 0 if left == right
//	 1 if left > right
//
// It handles the value types a document may carry: string, bool,
// numeric types (with cross-type conversion), and time.Time. Nil is
// less than any non-nil value. Mismatched types compare as -1 so that
// ordered predicates on the wrong type never match.
func CompareValues(left, right interface{}) int {
	if left == nil && right == nil {
		return 0
	}
	if left == nil {
		return -1
	}
	if right == nil {
		return 1
	}

	switch l := left.(type) {
	case int:
		return compareNumeric(int64(l), right)
	case int64:
		return compareNumeric(l, right)
	case float64:
		return compareFloat(l, right)
	case string:
		if r, ok := right.(string); ok {
			return strings.Compare(l, r)
		}
		return -1
	case bool:
		if r, ok := right.(bool); ok {
			if !l && r {
				return -1
			} else if l && !r {
				return 1
			}
			return 0
		}
		return -1
	case time.Time:
		if r, ok := right.(time.Time); ok {
			if l.Before(r) {
				return -1
			} else if l.After(r) {
				return 1
			}
			return 0
		}
		return -1
	}

	return strings.Compare(stringValue(left), stringValue(right))
}

// compareNumeric compares an int64 with another numeric value
func compareNumeric(left int64, right interface{}) int {
	switch r := right.(type) {
	case int:
		return compareInt64s(left, int64(r))
	case int64:
		return compareInt64s(left, r)
	case float64:
		return compareFloats(float64(left), r)
	}
	return -1
}

// compareFloat compares a float64 with another numeric value
func compareFloat(left float64, right interface{}) int {
	switch r := right.(type) {
	case int:
		return compareFloats(left, float64(r))
	case int64:
		return compareFloats(left, float64(r))
	case float64:
		return compareFloats(left, r)
	}
	return -1
}

func compareInt64s(a, b int64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func compareFloats(a, b float64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// ValuesEqual checks structural equality of two document values:
// scalars compare directly (numerics across int/float), timestamps as
// points in time, lists element-wise.
func ValuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if la, ok := a.([]interface{}); ok {
		lb, ok := b.([]interface{})
		if !ok || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !ValuesEqual(la[i], lb[i]) {
				return false
			}
		}
		return true
	}

	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Equal(bv)
		}
		return false
	case int, int64, float64:
		return CompareValues(a, b) == 0
	case string, bool:
		return a == b
	}

	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// ToFloat64 converts a numeric value to float64. Non-numeric values
// return false.
func ToFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// JoinKey renders a value as a hash key for the join engine. Values
// that compare equal under ValuesEqual render to the same key.
func JoinKey(v interface{}) string {
	if v == nil {
		return "<nil>"
	}
	switch val := v.(type) {
	case string:
		return "s:" + val
	case time.Time:
		return "t:" + val.UTC().Format(time.RFC3339Nano)
	case int:
		return fmt.Sprintf("n:%v", float64(val))
	case int64:
		return fmt.Sprintf("n:%v", float64(val))
	case float64:
		return fmt.Sprintf("n:%v", val)
	case bool:
		return fmt.Sprintf("b:%t", val)
	case []interface{}:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = JoinKey(e)
		}
		return "l:[" + strings.Join(parts, "|") + "]"
	default:
		return fmt.Sprintf("v:%v", val)
	}
}

// stringValue converts any value to a string for comparison
func stringValue(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
