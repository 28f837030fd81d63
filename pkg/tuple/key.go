package tuple

import "fmt"

// Composite keys pack multiple group-by key components into the one key slot
// the grouping primitive accepts. They are plain structural values: equality
// is component-wise, there is no hierarchy, and they are immediately
// decomposed back into separate variables after grouping.

// Pair is a composite key of two components.
type Pair struct {
	A, B any
}

// PairOf builds a Pair.
func PairOf(a, b any) Pair { return Pair{A: a, B: b} }

func (p Pair) String() string { return fmt.Sprintf("(%v, %v)", p.A, p.B) }

// Triple is a composite key of three components.
type Triple struct {
	A, B, C any
}

// TripleOf builds a Triple.
func TripleOf(a, b, c any) Triple { return Triple{A: a, B: b, C: c} }

func (p Triple) String() string { return fmt.Sprintf("(%v, %v, %v)", p.A, p.B, p.C) }

// Quad is a composite key of four components.
type Quad struct {
	A, B, C, D any
}

// QuadOf builds a Quad.
func QuadOf(a, b, c, d any) Quad { return Quad{A: a, B: b, C: c, D: d} }

func (p Quad) String() string { return fmt.Sprintf("(%v, %v, %v, %v)", p.A, p.B, p.C, p.D) }
