package tuple

import (
	"fmt"
	"strings"
)

// MaxArity is the highest number of live variables a pipeline may carry.
const MaxArity = 4

// Tuple is a fixed-arity row of values. Tuples are plain comparable values:
// two tuples are equal iff they have the same arity and their components are
// equal, which makes them usable as map keys as long as every component is
// comparable.
type Tuple struct {
	arity int
	vals  [MaxArity]any
}

// Of builds a tuple from the given values. The number of values must not
// exceed MaxArity.
func Of(vals ...any) Tuple {
	if len(vals) > MaxArity {
		panic(fmt.Sprintf("tuple: arity %d exceeds maximum %d", len(vals), MaxArity))
	}
	t := Tuple{arity: len(vals)}
	copy(t.vals[:], vals)
	return t
}

// Arity returns the number of components in the tuple.
func (t Tuple) Arity() int { return t.arity }

// At returns the i-th component.
func (t Tuple) At(i int) any {
	if i < 0 || i >= t.arity {
		panic(fmt.Sprintf("tuple: index %d out of range for arity %d", i, t.arity))
	}
	return t.vals[i]
}

// A returns the first component.
func (t Tuple) A() any { return t.At(0) }

// B returns the second component.
func (t Tuple) B() any { return t.At(1) }

// C returns the third component.
func (t Tuple) C() any { return t.At(2) }

// D returns the fourth component.
func (t Tuple) D() any { return t.At(3) }

// Last returns the final component.
func (t Tuple) Last() any { return t.At(t.arity - 1) }

// Append returns a new tuple with v added as the last component.
func (t Tuple) Append(v any) Tuple {
	if t.arity >= MaxArity {
		panic(fmt.Sprintf("tuple: cannot append beyond arity %d", MaxArity))
	}
	r := t
	r.vals[r.arity] = v
	r.arity++
	return r
}

// Values returns the components as a slice.
func (t Tuple) Values() []any {
	vs := make([]any, t.arity)
	copy(vs, t.vals[:t.arity])
	return vs
}

func (t Tuple) String() string {
	parts := make([]string, t.arity)
	for i := 0; i < t.arity; i++ {
		parts[i] = fmt.Sprintf("%v", t.vals[i])
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
