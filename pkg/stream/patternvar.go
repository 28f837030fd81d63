package stream

import (
	"reflect"

	"github.com/streamrule/streamrule/pkg/rule"
	"github.com/streamrule/streamrule/pkg/tuple"
)

// patternVariable is one live slot of a stream: the variable identity plus
// the conditions accumulated around it. Prerequisites come from earlier
// pipeline stages and are carried unmodified and in original order;
// conditions are the variable's own pattern (its source, correlation probes,
// filters and dependent existence sub-conditions). A detached pattern
// variable contributes no conditions of its own: it is defined by a
// condition carried on a sibling variable.
type patternVariable struct {
	primary    *rule.Variable
	prereqs    []rule.Condition
	conditions []rule.Condition
	detached   bool
}

func newSourceVariable(v *rule.Variable, factType reflect.Type) *patternVariable {
	return &patternVariable{
		primary:    v,
		conditions: []rule.Condition{&rule.Source{Var: v, FactType: factType}},
	}
}

func newDirectVariable(v *rule.Variable, prereqs, conditions []rule.Condition) *patternVariable {
	return &patternVariable{primary: v, prereqs: prereqs, conditions: conditions}
}

func newDetachedVariable(v *rule.Variable) *patternVariable {
	return &patternVariable{primary: v, detached: true}
}

// filter returns a copy with a predicate over the given variables appended
// as a dependent condition. The receiver is never mutated.
func (p *patternVariable) filter(vars []*rule.Variable, predicate func(tuple.Tuple) bool) *patternVariable {
	return p.withCondition(&rule.Filter{Vars: vars, Predicate: predicate})
}

// withCondition returns a copy with one more condition appended.
func (p *patternVariable) withCondition(c rule.Condition) *patternVariable {
	conditions := make([]rule.Condition, 0, len(p.conditions)+1)
	conditions = append(conditions, p.conditions...)
	conditions = append(conditions, c)
	return &patternVariable{
		primary:    p.primary,
		prereqs:    p.prereqs,
		conditions: conditions,
		detached:   p.detached,
	}
}

// build returns the full condition list of this variable: prerequisites
// first, own conditions after, both in original order.
func (p *patternVariable) build() []rule.Condition {
	if p.detached {
		return nil
	}
	out := make([]rule.Condition, 0, len(p.prereqs)+len(p.conditions))
	out = append(out, p.prereqs...)
	out = append(out, p.conditions...)
	return out
}

func buildAll(vars []*patternVariable) []rule.Condition {
	var out []rule.Condition
	for _, pv := range vars {
		out = append(out, pv.build()...)
	}
	return out
}

func primaries(vars []*patternVariable) []*rule.Variable {
	out := make([]*rule.Variable, len(vars))
	for i, pv := range vars {
		out[i] = pv.primary
	}
	return out
}
