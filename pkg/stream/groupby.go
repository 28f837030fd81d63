package stream

import (
	"fmt"

	"github.com/streamrule/streamrule/pkg/collector"
	"github.com/streamrule/streamrule/pkg/rule"
	"github.com/streamrule/streamrule/pkg/tuple"
)

// KeyMapping computes one grouping key component from the live variables.
type KeyMapping func(tuple.Tuple) any

// GroupBy groups the live combinations and rebinds the stream to one
// variable per key mapping followed by one variable per collector, in
// supplied order. The grouping primitive accepts a single key, so multiple
// key mappings are packed into one composite key and decomposed back into
// independent variables right after grouping; the decomposed components are
// lazy projections of the composite key, never separately materialized.
func (s *Stream) GroupBy(keyMappings []KeyMapping, collectors []collector.Collector) (*Stream, error) {
	total := len(keyMappings) + len(collectors)
	if total == 0 {
		return nil, NewGroupByError(fmt.Errorf("%w: at least one key mapping or collector is required",
			ErrNilArgument))
	}
	if total > tuple.MaxArity {
		return nil, NewGroupByError(fmt.Errorf("%w: group-by would produce %d result variables",
			ErrArityExceeded, total))
	}
	for i, km := range keyMappings {
		if km == nil {
			return nil, NewGroupByError(fmt.Errorf("%w: key mapping #%d", ErrNilArgument, i))
		}
	}
	for i, c := range collectors {
		if c == nil {
			return nil, NewGroupByError(fmt.Errorf("%w: collector #%d", ErrNilArgument, i))
		}
	}

	inputVars := primaries(s.vars)
	keyVar, keyExtractor, keyResultVars, projections := s.compileGroupKey(keyMappings)

	accumulators := make([]*rule.Accumulator, len(collectors))
	resultVars := append([]*rule.Variable{}, keyResultVars...)
	for i, c := range collectors {
		out := s.factory.newVariable("output")
		accumulators[i] = rule.NewAccumulator(inputVars, out, c)
		resultVars = append(resultVars, out)
	}

	groupCond := &rule.GroupBy{
		InputVars:    inputVars,
		Inputs:       buildAll(s.vars),
		KeyVar:       keyVar,
		KeyExtractor: keyExtractor,
		Accumulators: accumulators,
	}

	conditions := make([]rule.Condition, 0, len(projections)+1)
	conditions = append(conditions, groupCond)
	conditions = append(conditions, projections...)

	vars := make([]*patternVariable, 0, len(resultVars))
	for _, v := range resultVars[:len(resultVars)-1] {
		vars = append(vars, newDetachedVariable(v))
	}
	vars = append(vars, newDirectVariable(resultVars[len(resultVars)-1], nil, conditions))
	return &Stream{factory: s.factory, vars: vars}, nil
}

// compileGroupKey turns the key mappings into the single key the grouping
// primitive accepts. With zero mappings everything lands in one group and no
// key variable is bound; with one mapping the key is used directly; with
// more, the mappings combine into a composite key tuple whose components are
// projected back out in original mapping order.
func (s *Stream) compileGroupKey(keyMappings []KeyMapping) (*rule.Variable, func(tuple.Tuple) any,
	[]*rule.Variable, []rule.Condition) {
	switch len(keyMappings) {
	case 0:
		return nil, func(tuple.Tuple) any { return struct{}{} }, nil, nil
	case 1:
		keyVar := s.factory.newVariable("groupKey")
		km := keyMappings[0]
		return keyVar, func(t tuple.Tuple) any { return km(t) }, []*rule.Variable{keyVar}, nil
	case 2:
		kmA, kmB := keyMappings[0], keyMappings[1]
		keyVar := s.factory.newVariable("groupKey")
		extractor := func(t tuple.Tuple) any { return tuple.PairOf(kmA(t), kmB(t)) }
		vars, conds := s.decompose(keyVar,
			func(k any) any { return k.(tuple.Pair).A },
			func(k any) any { return k.(tuple.Pair).B })
		return keyVar, extractor, vars, conds
	case 3:
		kmA, kmB, kmC := keyMappings[0], keyMappings[1], keyMappings[2]
		keyVar := s.factory.newVariable("groupKey")
		extractor := func(t tuple.Tuple) any { return tuple.TripleOf(kmA(t), kmB(t), kmC(t)) }
		vars, conds := s.decompose(keyVar,
			func(k any) any { return k.(tuple.Triple).A },
			func(k any) any { return k.(tuple.Triple).B },
			func(k any) any { return k.(tuple.Triple).C })
		return keyVar, extractor, vars, conds
	default:
		kmA, kmB, kmC, kmD := keyMappings[0], keyMappings[1], keyMappings[2], keyMappings[3]
		keyVar := s.factory.newVariable("groupKey")
		extractor := func(t tuple.Tuple) any { return tuple.QuadOf(kmA(t), kmB(t), kmC(t), kmD(t)) }
		vars, conds := s.decompose(keyVar,
			func(k any) any { return k.(tuple.Quad).A },
			func(k any) any { return k.(tuple.Quad).B },
			func(k any) any { return k.(tuple.Quad).C },
			func(k any) any { return k.(tuple.Quad).D })
		return keyVar, extractor, vars, conds
	}
}

func (s *Stream) decompose(keyVar *rule.Variable, projections ...func(any) any) ([]*rule.Variable,
	[]rule.Condition) {
	names := []string{"newA", "newB", "newC", "newD"}
	vars := make([]*rule.Variable, len(projections))
	conds := make([]rule.Condition, len(projections))
	for i, project := range projections {
		vars[i] = s.factory.newVariable(names[i])
		conds[i] = &rule.Projection{SourceVar: keyVar, Var: vars[i], Project: project}
	}
	return vars, conds
}
