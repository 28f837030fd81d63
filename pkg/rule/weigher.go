package rule

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/streamrule/streamrule/pkg/tuple"
)

// Weigher computes the score impact of one matching combination. The union
// is closed: the engine switches on the concrete type so integer weights sum
// on the integer path and decimal weights on the arbitrary-precision path,
// with no implicit rounding anywhere.
type Weigher interface {
	weigher()
}

// IntWeigher weighs a match with a 32-bit integer.
type IntWeigher func(tuple.Tuple) int32

func (IntWeigher) weigher() {}

// Int64Weigher weighs a match with a 64-bit integer.
type Int64Weigher func(tuple.Tuple) int64

func (Int64Weigher) weigher() {}

// DecimalWeigher weighs a match with an arbitrary-precision decimal.
type DecimalWeigher func(tuple.Tuple) *apd.Decimal

func (DecimalWeigher) weigher() {}
