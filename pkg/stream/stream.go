package stream

import (
	"fmt"
	"reflect"

	"github.com/streamrule/streamrule/pkg/rule"
	"github.com/streamrule/streamrule/pkg/tuple"
)

// Stream is one immutable stage of a constraint pipeline holding 1 to 4 live
// variables. Every operation validates its arguments eagerly, returns a new
// stream and never mutates the receiver, so intermediate stages can be
// shared and reused freely.
type Stream struct {
	factory *Factory
	vars    []*patternVariable
}

// Arity returns the number of live variables.
func (s *Stream) Arity() int { return len(s.vars) }

// Filter restricts the live combinations to those satisfying the predicate.
// The predicate receives the live variables as a tuple in introduction
// order. Each call attaches one independent condition; conditions from
// separate calls are never merged.
func (s *Stream) Filter(predicate func(tuple.Tuple) bool) (*Stream, error) {
	if predicate == nil {
		return nil, NewStreamError(fmt.Errorf("%w: filter predicate", ErrNilArgument))
	}
	vars := primaries(s.vars)
	return s.replaceLast(s.last().filter(vars, predicate)), nil
}

// Join correlates the live variables with the single variable of another
// arity-1 stream, extending the arity by one. Joiners run through the merge
// policy: consecutive indexable joiners collapse into one composite probe on
// the new variable's pattern, filtering joiners merge into one trailing
// predicate.
func (s *Stream) Join(other *Stream, joiners ...Joiner) (*Stream, error) {
	if other == nil {
		return nil, NewStreamError(fmt.Errorf("%w: joined stream", ErrNilArgument))
	}
	if other.factory != s.factory {
		return nil, NewStreamError(ErrForeignStream)
	}
	if other.Arity() != 1 {
		return nil, NewStreamError(fmt.Errorf("joined stream must have exactly one live variable, got %d",
			other.Arity()))
	}
	if s.Arity()+1 > tuple.MaxArity {
		return nil, NewStreamError(fmt.Errorf("%w: join would need %d live variables",
			ErrArityExceeded, s.Arity()+1))
	}
	merged, err := mergeJoiners(joiners)
	if err != nil {
		return nil, NewJoinerError(err)
	}

	leftVars := primaries(s.vars)
	newRight := other.vars[0]
	if len(merged.probe) > 0 || merged.never {
		newRight = newRight.withCondition(&rule.Probe{
			LeftVars:   leftVars,
			Var:        newRight.primary,
			Components: merged.probe,
			Never:      merged.never,
		})
	}
	if merged.filter != nil {
		allVars := append(append([]*rule.Variable{}, leftVars...), newRight.primary)
		filter := merged.filter
		newRight = newRight.filter(allVars, func(t tuple.Tuple) bool {
			return filter(tuple.Of(t.Values()[:t.Arity()-1]...), t.Last())
		})
	}

	vars := make([]*patternVariable, 0, len(s.vars)+1)
	vars = append(vars, s.vars...)
	vars = append(vars, newRight)
	return &Stream{factory: s.factory, vars: vars}, nil
}

// IfExists keeps the live combinations for which at least one correlated
// fact of the given type is present. The candidate variable is internal and
// never exposed.
func (s *Stream) IfExists(factType reflect.Type, joiners ...Joiner) (*Stream, error) {
	return s.existsOrNot(factType, joiners, true)
}

// IfNotExists keeps the live combinations for which no correlated fact of
// the given type is present.
func (s *Stream) IfNotExists(factType reflect.Type, joiners ...Joiner) (*Stream, error) {
	return s.existsOrNot(factType, joiners, false)
}

func (s *Stream) existsOrNot(factType reflect.Type, joiners []Joiner, shouldExist bool) (*Stream, error) {
	if factType == nil {
		return nil, NewStreamError(fmt.Errorf("%w: fact type", ErrNilArgument))
	}
	merged, err := mergeJoiners(joiners)
	if err != nil {
		return nil, NewJoinerError(err)
	}
	cond := &rule.Existence{
		Present:  shouldExist,
		Vars:     primaries(s.vars),
		FactType: factType,
		Probe:    merged.probe,
		Filter:   merged.filter,
		Never:    merged.never,
	}
	return s.replaceLast(s.last().withCondition(cond)), nil
}

// Map collapses the stream to a single variable computed from the live
// variables, one output per surviving combination. Duplicate output values
// are kept: the multiplicity of the input combination carries over to the
// output.
func (s *Stream) Map(mapping func(tuple.Tuple) any) (*Stream, error) {
	if mapping == nil {
		return nil, NewStreamError(fmt.Errorf("%w: mapping function", ErrNilArgument))
	}
	mapped := s.factory.newVariable("mapped")
	cond := &rule.Map{InputVars: primaries(s.vars), Var: mapped, Mapping: mapping}
	pv := newDirectVariable(mapped, buildAll(s.vars), []rule.Condition{cond})
	return &Stream{factory: s.factory, vars: []*patternVariable{pv}}, nil
}

// FlattenLast replaces the last variable by one variable binding per element
// of the mapped iterable, keeping the arity. A combination whose iterable is
// empty contributes nothing. The mapping is consulted on every evaluation,
// so element list changes fan out dynamically.
func (s *Stream) FlattenLast(mapping func(last any) []any) (*Stream, error) {
	if mapping == nil {
		return nil, NewStreamError(fmt.Errorf("%w: flatten mapping", ErrNilArgument))
	}
	flattened := s.factory.newVariable("flattened")
	cond := &rule.Flatten{SourceVar: s.last().primary, Var: flattened, Mapping: mapping}
	newLast := newDirectVariable(flattened, buildAll(s.vars), []rule.Condition{cond})

	vars := make([]*patternVariable, 0, len(s.vars))
	for _, pv := range s.vars[:len(s.vars)-1] {
		vars = append(vars, newDetachedVariable(pv.primary))
	}
	vars = append(vars, newLast)
	return &Stream{factory: s.factory, vars: vars}, nil
}

// Terminate compiles the stream into a rule definition weighing every match
// as 1.
func (s *Stream) Terminate(name string) (*rule.Definition, error) {
	return s.terminate(name, nil)
}

// TerminateWithInt compiles the stream into a rule definition with a 32-bit
// integer match weigher.
func (s *Stream) TerminateWithInt(name string, weigher rule.IntWeigher) (*rule.Definition, error) {
	if weigher == nil {
		return nil, NewStreamError(fmt.Errorf("%w: match weigher", ErrNilArgument))
	}
	return s.terminate(name, weigher)
}

// TerminateWithInt64 compiles the stream into a rule definition with a
// 64-bit integer match weigher.
func (s *Stream) TerminateWithInt64(name string, weigher rule.Int64Weigher) (*rule.Definition, error) {
	if weigher == nil {
		return nil, NewStreamError(fmt.Errorf("%w: match weigher", ErrNilArgument))
	}
	return s.terminate(name, weigher)
}

// TerminateWithDecimal compiles the stream into a rule definition with an
// arbitrary-precision decimal match weigher. Decimal precision is preserved
// end to end; no rounding or truncation occurs.
func (s *Stream) TerminateWithDecimal(name string, weigher rule.DecimalWeigher) (*rule.Definition, error) {
	if weigher == nil {
		return nil, NewStreamError(fmt.Errorf("%w: match weigher", ErrNilArgument))
	}
	return s.terminate(name, weigher)
}

func (s *Stream) terminate(name string, weigher rule.Weigher) (*rule.Definition, error) {
	if name == "" {
		return nil, NewStreamError(fmt.Errorf("%w: rule name", ErrNilArgument))
	}
	def := &rule.Definition{
		Name:       name,
		Conditions: buildAll(s.vars),
		Vars:       primaries(s.vars),
		Weigher:    weigher,
	}
	s.factory.log.V(1).Info("rule compiled", "name", name, "definition", def.String())
	return def, nil
}

func (s *Stream) last() *patternVariable { return s.vars[len(s.vars)-1] }

func (s *Stream) replaceLast(pv *patternVariable) *Stream {
	vars := make([]*patternVariable, len(s.vars))
	copy(vars, s.vars)
	vars[len(vars)-1] = pv
	return &Stream{factory: s.factory, vars: vars}
}
