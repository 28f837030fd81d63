package stream

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/streamrule/streamrule/pkg/rule"
)

// Factory creates streams and hands out compilation-unique variable ids.
// Streams built by one factory may be combined freely; the factory itself is
// safe for concurrent use.
type Factory struct {
	log     logr.Logger
	counter atomic.Int64
}

// NewFactory creates a stream factory that logs through the given logger.
func NewFactory(log logr.Logger) *Factory {
	return &Factory{log: log}
}

// From opens an arity-1 stream over every fact of the given type.
func (f *Factory) From(factType reflect.Type) (*Stream, error) {
	if factType == nil {
		return nil, NewStreamError(fmt.Errorf("%w: fact type", ErrNilArgument))
	}
	v := f.newVariable(factType.String())
	return &Stream{factory: f, vars: []*patternVariable{newSourceVariable(v, factType)}}, nil
}

// FactType returns the reflect type selecting facts of type T.
func FactType[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// From opens an arity-1 stream over every fact of type T.
func From[T any](f *Factory) *Stream {
	s, err := f.From(FactType[T]())
	if err != nil {
		// FactType[T]() is never nil.
		panic(err)
	}
	return s
}

func (f *Factory) newVariable(name string) *rule.Variable {
	return rule.NewVariable(int(f.counter.Add(1)), name)
}
