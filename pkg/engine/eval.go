package engine

import (
	"fmt"

	"github.com/streamrule/streamrule/pkg/rule"
	"github.com/streamrule/streamrule/pkg/tuple"
)

// evalConditions runs an ordered condition list over a Z-set of partial
// matches. Every condition type of the closed set is handled here; an
// unknown type is a hard error, never skipped.
func (s *Session) evalConditions(conds []rule.Condition, input *rowSet) (*rowSet, error) {
	rows := input
	for _, cond := range conds {
		var err error
		switch c := cond.(type) {
		case *rule.Source:
			rows = s.evalSource(c, rows)
		case *rule.Filter:
			rows, err = evalFilter(c, rows)
		case *rule.Probe:
			rows, err = evalProbe(c, rows)
		case *rule.Existence:
			rows, err = s.evalExistence(c, rows)
		case *rule.GroupBy:
			rows, err = s.evalGroupBy(c, rows)
		case *rule.Projection:
			rows, err = evalProjection(c, rows)
		case *rule.Map:
			rows, err = evalMap(c, rows)
		case *rule.Flatten:
			rows, err = evalFlatten(c, rows)
		default:
			return nil, fmt.Errorf("unknown condition type %T", cond)
		}
		if err != nil {
			return nil, fmt.Errorf("condition %s: %w", cond, err)
		}
	}
	return rows, nil
}

// evalSource cross-joins the incoming rows with every fact of the source
// type, multiplicities multiplying.
func (s *Session) evalSource(c *rule.Source, rows *rowSet) *rowSet {
	out := newRowSet()
	fs, ok := s.facts[c.FactType]
	if !ok {
		return out
	}
	for _, e := range rows.entries() {
		for _, fe := range fs.entries() {
			out.add(e.row.with(c.Var, fe.row.vals[0]), e.mult*fe.mult)
		}
	}
	return out
}

func evalFilter(c *rule.Filter, rows *rowSet) (*rowSet, error) {
	out := newRowSet()
	for _, e := range rows.entries() {
		t, err := e.row.tupleOf(c.Vars)
		if err != nil {
			return nil, err
		}
		if c.Predicate(t) {
			out.add(e.row, e.mult)
		}
	}
	return out, nil
}

func evalProbe(c *rule.Probe, rows *rowSet) (*rowSet, error) {
	out := newRowSet()
	if c.Never {
		return out, nil
	}
	for _, e := range rows.entries() {
		left, err := e.row.tupleOf(c.LeftVars)
		if err != nil {
			return nil, err
		}
		candidate, ok := e.row.valueOf(c.Var)
		if !ok {
			return nil, fmt.Errorf("variable %s is not bound", c.Var)
		}
		matched, err := probeMatches(c.Components, left, candidate)
		if err != nil {
			return nil, err
		}
		if matched {
			out.add(e.row, e.mult)
		}
	}
	return out, nil
}

func (s *Session) evalExistence(c *rule.Existence, rows *rowSet) (*rowSet, error) {
	out := newRowSet()
	var candidates []rowEntry
	if fs, ok := s.facts[c.FactType]; ok {
		candidates = fs.entries()
	}
	for _, e := range rows.entries() {
		left, err := e.row.tupleOf(c.Vars)
		if err != nil {
			return nil, err
		}
		found := false
		if !c.Never {
			for _, fe := range candidates {
				candidate := fe.row.vals[0]
				matched, err := probeMatches(c.Probe, left, candidate)
				if err != nil {
					return nil, err
				}
				if matched && (c.Filter == nil || c.Filter(left, candidate)) {
					found = true
					break
				}
			}
		}
		if found == c.Present {
			out.add(e.row, e.mult)
		}
	}
	return out, nil
}

func probeMatches(components []rule.ProbeComponent, left tuple.Tuple, candidate any) (bool, error) {
	for _, comp := range components {
		ok, err := comp.Kind.Matches(comp.Left(left), comp.Right(candidate))
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evalProjection(c *rule.Projection, rows *rowSet) (*rowSet, error) {
	out := newRowSet()
	for _, e := range rows.entries() {
		src, ok := e.row.valueOf(c.SourceVar)
		if !ok {
			return nil, fmt.Errorf("variable %s is not bound", c.SourceVar)
		}
		out.add(e.row.with(c.Var, c.Project(src)), e.mult)
	}
	return out, nil
}

func evalMap(c *rule.Map, rows *rowSet) (*rowSet, error) {
	out := newRowSet()
	for _, e := range rows.entries() {
		t, err := e.row.tupleOf(c.InputVars)
		if err != nil {
			return nil, err
		}
		// The input bindings stay in the row, so two distinct combinations
		// mapping to the same value remain two output tuples.
		out.add(e.row.with(c.Var, c.Mapping(t)), e.mult)
	}
	return out, nil
}

func evalFlatten(c *rule.Flatten, rows *rowSet) (*rowSet, error) {
	out := newRowSet()
	for _, e := range rows.entries() {
		src, ok := e.row.valueOf(c.SourceVar)
		if !ok {
			return nil, fmt.Errorf("variable %s is not bound", c.SourceVar)
		}
		for _, elem := range c.Mapping(src) {
			// One row per element; equal elements of one source merge into
			// a higher multiplicity, which is still one impact per element.
			out.add(e.row.with(c.Var, elem), e.mult)
		}
	}
	return out, nil
}
