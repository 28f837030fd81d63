package rule

import (
	"fmt"
)

// Comparison is the kind of an indexable correlation component.
type Comparison int

const (
	Equal Comparison = iota
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

func (c Comparison) String() string {
	switch c {
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	default:
		return fmt.Sprintf("comparison(%d)", int(c))
	}
}

// Matches reports whether left and right satisfy the comparison. Equality
// kinds use plain interface equality; ordering kinds require both sides to
// be mutually ordered values (integers, unsigned integers, floats or
// strings).
func (c Comparison) Matches(left, right any) (bool, error) {
	switch c {
	case Equal:
		return left == right, nil
	case NotEqual:
		return left != right, nil
	}
	ord, err := compare(left, right)
	if err != nil {
		return false, err
	}
	switch c {
	case LessThan:
		return ord < 0, nil
	case LessThanOrEqual:
		return ord <= 0, nil
	case GreaterThan:
		return ord > 0, nil
	case GreaterThanOrEqual:
		return ord >= 0, nil
	default:
		return false, fmt.Errorf("unknown comparison %d", int(c))
	}
}

func compare(left, right any) (int, error) {
	if li, ok := asInt64(left); ok {
		if ri, ok := asInt64(right); ok {
			return orderOf(li, ri), nil
		}
	}
	if lf, ok := asFloat64(left); ok {
		if rf, ok := asFloat64(right); ok {
			return orderOf(lf, rf), nil
		}
	}
	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			return orderOf(ls, rs), nil
		}
	}
	return 0, fmt.Errorf("values %v (%T) and %v (%T) are not mutually ordered",
		left, left, right, right)
}

func orderOf[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
