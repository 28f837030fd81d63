package stream

import (
	"errors"
	"fmt"
)

// All errors raised by this package are configuration errors: they surface
// eagerly at the builder call that introduces the violation and are never
// retried. Because streams are immutable, a failed call leaves the previous
// builder fully usable.

var (
	// ErrNilArgument marks a required argument that was nil.
	ErrNilArgument = errors.New("required argument is nil")
	// ErrArityExceeded marks an operation that would push the pipeline
	// past the maximum number of live variables.
	ErrArityExceeded = errors.New("pipeline arity limit exceeded")
	// ErrNoneJoinerMixed marks a never-match joiner combined with other
	// joiners in one correlation clause.
	ErrNoneJoinerMixed = errors.New("never-match joiner must be the only joiner in the clause")
	// ErrIndexingAfterFiltering marks an indexable joiner placed after a
	// filtering joiner in one correlation clause.
	ErrIndexingAfterFiltering = errors.New("indexing joiner must not follow a filtering joiner")
	// ErrForeignStream marks a join between streams built by different
	// factories.
	ErrForeignStream = errors.New("joined streams must originate from the same factory")
)

type ErrStream = error

func NewStreamError(err error) ErrStream {
	return fmt.Errorf("invalid stream definition: %w", err)
}

type ErrJoiner = error

func NewJoinerError(err error) ErrJoiner {
	return fmt.Errorf("invalid joiner clause: %w", err)
}

type ErrGroupBy = error

func NewGroupByError(err error) ErrGroupBy {
	return fmt.Errorf("invalid group-by clause: %w", err)
}
