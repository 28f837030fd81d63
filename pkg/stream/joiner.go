package stream

import (
	"fmt"

	"github.com/streamrule/streamrule/pkg/rule"
	"github.com/streamrule/streamrule/pkg/tuple"
)

// LeftExtractor computes a correlation key from the already-live variables.
type LeftExtractor func(tuple.Tuple) any

// CandidateExtractor computes a correlation key from the candidate value on
// the right side of a correlation clause.
type CandidateExtractor func(any) any

// JoinFilter is an arbitrary predicate over the live variables and the
// candidate value. It carries no indexable structure.
type JoinFilter func(left tuple.Tuple, candidate any) bool

// Joiner correlates the live variables with a candidate variable in a join
// or existence clause. The set of joiner kinds is closed: indexable
// comparisons, arbitrary filters, and the never-match pseudo-joiner.
type Joiner interface {
	fmt.Stringer
	joiner()
}

type indexingJoiner struct {
	kind  rule.Comparison
	left  LeftExtractor
	right CandidateExtractor
}

func (j indexingJoiner) joiner() {}
func (j indexingJoiner) String() string {
	return fmt.Sprintf("indexing joiner (key %s key)", j.kind)
}

type filteringJoiner struct {
	filter JoinFilter
}

func (j filteringJoiner) joiner() {}
func (j filteringJoiner) String() string {
	return "filtering joiner"
}

type noneJoiner struct{}

func (j noneJoiner) joiner() {}
func (j noneJoiner) String() string {
	return "never-match joiner"
}

// Equal correlates on equal left and right keys.
func Equal(left LeftExtractor, right CandidateExtractor) Joiner {
	return indexingJoiner{kind: rule.Equal, left: left, right: right}
}

// NotEqual correlates on unequal left and right keys.
func NotEqual(left LeftExtractor, right CandidateExtractor) Joiner {
	return indexingJoiner{kind: rule.NotEqual, left: left, right: right}
}

// LessThan correlates rows whose left key is below the right key.
func LessThan(left LeftExtractor, right CandidateExtractor) Joiner {
	return indexingJoiner{kind: rule.LessThan, left: left, right: right}
}

// LessThanOrEqual correlates rows whose left key is at most the right key.
func LessThanOrEqual(left LeftExtractor, right CandidateExtractor) Joiner {
	return indexingJoiner{kind: rule.LessThanOrEqual, left: left, right: right}
}

// GreaterThan correlates rows whose left key is above the right key.
func GreaterThan(left LeftExtractor, right CandidateExtractor) Joiner {
	return indexingJoiner{kind: rule.GreaterThan, left: left, right: right}
}

// GreaterThanOrEqual correlates rows whose left key is at least the right key.
func GreaterThanOrEqual(left LeftExtractor, right CandidateExtractor) Joiner {
	return indexingJoiner{kind: rule.GreaterThanOrEqual, left: left, right: right}
}

// Filtering correlates by an arbitrary predicate. Filtering joiners cannot
// be indexed and must come after every indexing joiner of the clause.
func Filtering(filter JoinFilter) Joiner {
	return filteringJoiner{filter: filter}
}

// MatchNone never correlates anything. If present it must be the sole joiner
// of its clause.
func MatchNone() Joiner {
	return noneJoiner{}
}

// mergedClause is the outcome of the joiner merge policy for one correlation
// clause: an optional composite probe and an optional merged filter. Both
// may be present, in which case the probe narrows the candidates and the
// filter further restricts them.
type mergedClause struct {
	probe  []rule.ProbeComponent
	filter JoinFilter
	never  bool
}

// mergeJoiners classifies and merges the joiners of one correlation clause.
// Single pass, two states: while accumulating the index every indexable
// joiner grows the composite probe by one column; the first filtering joiner
// switches to filter accumulation and from then on only filtering joiners
// are legal, each ANDed into the merged predicate.
func mergeJoiners(joiners []Joiner) (mergedClause, error) {
	var merged mergedClause
	indexOfFirstFilter := -1
	for i, j := range joiners {
		if j == nil {
			return merged, fmt.Errorf("%w: joiner #%d", ErrNilArgument, i)
		}
		switch joiner := j.(type) {
		case noneJoiner:
			if len(joiners) > 1 {
				return merged, fmt.Errorf("%w: got %d joiners", ErrNoneJoinerMixed, len(joiners))
			}
			merged.never = true
		case indexingJoiner:
			if indexOfFirstFilter >= 0 {
				return merged, fmt.Errorf("%w: %s follows %s at position %d",
					ErrIndexingAfterFiltering, joiner, joiners[indexOfFirstFilter], i)
			}
			merged.probe = append(merged.probe, rule.ProbeComponent{
				Kind:  joiner.kind,
				Left:  joiner.left,
				Right: joiner.right,
			})
		case filteringJoiner:
			if indexOfFirstFilter < 0 {
				indexOfFirstFilter = i
			}
			// Merge all filters into one so the penalty for the lack of
			// indexing is paid at most once per candidate.
			if merged.filter == nil {
				merged.filter = joiner.filter
			} else {
				prev, next := merged.filter, joiner.filter
				merged.filter = func(left tuple.Tuple, candidate any) bool {
					return prev(left, candidate) && next(left, candidate)
				}
			}
		default:
			return merged, fmt.Errorf("unknown joiner type %T", j)
		}
	}
	return merged, nil
}
