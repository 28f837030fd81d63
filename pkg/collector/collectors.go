package collector

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/streamrule/streamrule/pkg/tuple"
)

var decCtx = apd.BaseContext.WithPrecision(50)

// Count counts the rows in the group.
func Count() Collector {
	return New(
		func() any { return int64(0) },
		func(s any, _ tuple.Tuple) any { return s.(int64) + 1 },
		func(s any, _ tuple.Tuple) any { return s.(int64) - 1 },
		func(s any) any { return s.(int64) },
	)
}

// Sum sums an int64 measure over the rows of the group.
func Sum(measure func(tuple.Tuple) int64) Collector {
	return New(
		func() any { return int64(0) },
		func(s any, row tuple.Tuple) any { return s.(int64) + measure(row) },
		func(s any, row tuple.Tuple) any { return s.(int64) - measure(row) },
		func(s any) any { return s.(int64) },
	)
}

// SumDecimal sums an arbitrary-precision decimal measure over the rows of
// the group. No rounding occurs up to 50 significant digits.
func SumDecimal(measure func(tuple.Tuple) *apd.Decimal) Collector {
	return New(
		func() any { return apd.New(0, 0) },
		func(s any, row tuple.Tuple) any {
			sum := new(apd.Decimal)
			decCtx.Add(sum, s.(*apd.Decimal), measure(row)) //nolint:errcheck
			return sum
		},
		func(s any, row tuple.Tuple) any {
			sum := new(apd.Decimal)
			decCtx.Sub(sum, s.(*apd.Decimal), measure(row)) //nolint:errcheck
			return sum
		},
		func(s any) any { return s.(*apd.Decimal) },
	)
}

type avgState struct {
	sum   int64
	count int64
}

// Average averages an int64 measure over the rows of the group. The result
// is a float64; an empty group averages to nil.
func Average(measure func(tuple.Tuple) int64) Collector {
	return New(
		func() any { return avgState{} },
		func(s any, row tuple.Tuple) any {
			st := s.(avgState)
			return avgState{sum: st.sum + measure(row), count: st.count + 1}
		},
		func(s any, row tuple.Tuple) any {
			st := s.(avgState)
			return avgState{sum: st.sum - measure(row), count: st.count - 1}
		},
		func(s any) any {
			st := s.(avgState)
			if st.count == 0 {
				return nil
			}
			return float64(st.sum) / float64(st.count)
		},
	)
}

// ToSlice collects a mapped value from every row of the group, preserving
// duplicates. Order follows row arrival. Retraction removes the first
// matching element.
func ToSlice(mapping func(tuple.Tuple) any) Collector {
	return New(
		func() any { return []any{} },
		func(s any, row tuple.Tuple) any { return append(s.([]any), mapping(row)) },
		func(s any, row tuple.Tuple) any { return removeFirst(s.([]any), mapping(row)) },
		func(s any) any {
			src := s.([]any)
			out := make([]any, len(src))
			copy(out, src)
			return out
		},
	)
}

// Min tracks the minimum of an int64 measure. It has no undo: retracting the
// current minimum would require the full value history, so the engine
// rebuilds the group instead.
func Min(measure func(tuple.Tuple) int64) Collector {
	return extremum(measure, func(v, best int64) bool { return v < best })
}

// Max tracks the maximum of an int64 measure, without undo like Min.
func Max(measure func(tuple.Tuple) int64) Collector {
	return extremum(measure, func(v, best int64) bool { return v > best })
}

type extremumState struct {
	best  int64
	valid bool
}

func extremum(measure func(tuple.Tuple) int64, better func(v, best int64) bool) Collector {
	return New(
		func() any { return extremumState{} },
		func(s any, row tuple.Tuple) any {
			st := s.(extremumState)
			v := measure(row)
			if !st.valid || better(v, st.best) {
				return extremumState{best: v, valid: true}
			}
			return st
		},
		nil,
		func(s any) any {
			st := s.(extremumState)
			if !st.valid {
				return nil
			}
			return st.best
		},
	)
}

func removeFirst(vals []any, v any) []any {
	for i, e := range vals {
		if e == v {
			out := make([]any, 0, len(vals)-1)
			out = append(out, vals[:i]...)
			out = append(out, vals[i+1:]...)
			return out
		}
	}
	return vals
}
