package engine

import (
	"fmt"
	"reflect"

	"github.com/cockroachdb/apd/v3"

	"github.com/streamrule/streamrule/pkg/rule"
	"github.com/streamrule/streamrule/pkg/tuple"
)

var decCtx = apd.BaseContext.WithPrecision(50)

// Session is one fact population evaluated against the engine's rules.
// Facts are keyed by identity: pointer facts by pointer, value facts by
// value. Inserting the same identity twice raises its multiplicity, and
// that multiplicity flows through the whole evaluation unchanged.
type Session struct {
	engine *Engine
	facts  map[reflect.Type]*factSet
	groups map[*rule.GroupBy]*groupStage
}

// factSet tracks facts of one type with their multiplicities, in insertion
// order.
type factSet struct {
	order  []any
	counts map[any]int
}

func newFactSet() *factSet {
	return &factSet{counts: map[any]int{}}
}

func (fs *factSet) add(fact any, count int) {
	if _, ok := fs.counts[fact]; !ok {
		fs.order = append(fs.order, fact)
	}
	fs.counts[fact] += count
	if fs.counts[fact] == 0 {
		delete(fs.counts, fact)
	}
}

func (fs *factSet) entries() []rowEntry {
	out := make([]rowEntry, 0, len(fs.counts))
	for _, fact := range fs.order {
		if count, ok := fs.counts[fact]; ok {
			out = append(out, rowEntry{row: binding{vals: []any{fact}}, mult: count})
		}
	}
	return out
}

// Insert adds one fact to the population.
func (s *Session) Insert(fact any) error {
	if fact == nil {
		return NewFactError(fmt.Errorf("inserted fact is nil"))
	}
	t := reflect.TypeOf(fact)
	fs, ok := s.facts[t]
	if !ok {
		fs = newFactSet()
		s.facts[t] = fs
	}
	fs.add(fact, 1)
	s.engine.log.V(2).Info("fact inserted", "type", t.String(), "fact", fmt.Sprintf("%v", fact))
	return nil
}

// Retract removes one fact from the population. The fact must have been
// inserted before.
func (s *Session) Retract(fact any) error {
	if fact == nil {
		return NewFactError(fmt.Errorf("retracted fact is nil"))
	}
	t := reflect.TypeOf(fact)
	fs, ok := s.facts[t]
	if !ok || fs.counts[fact] == 0 {
		return NewFactError(fmt.Errorf("fact %v of type %s is not in the session", fact, t))
	}
	fs.add(fact, -1)
	s.engine.log.V(2).Info("fact retracted", "type", t.String(), "fact", fmt.Sprintf("%v", fact))
	return nil
}

// Update notifies the session that a fact's fields changed. Evaluation
// always reads current field values, so this only validates that the fact
// is known; group states catch up on the next evaluation through their row
// diff.
func (s *Session) Update(fact any) error {
	if fact == nil {
		return NewFactError(fmt.Errorf("updated fact is nil"))
	}
	t := reflect.TypeOf(fact)
	fs, ok := s.facts[t]
	if !ok || fs.counts[fact] == 0 {
		return NewFactError(fmt.Errorf("fact %v of type %s is not in the session", fact, t))
	}
	return nil
}

// Match is one matching combination of a rule with its exact weight.
type Match struct {
	Rule   string
	Tuple  tuple.Tuple
	Weight *apd.Decimal
}

// Result is the outcome of scoring a session: per-match detail, per-rule
// totals and the exact grand total.
type Result struct {
	Total   *apd.Decimal
	PerRule map[string]*apd.Decimal
	Matches []Match
}

// Score evaluates every registered rule against the current population and
// returns the matches with their exact score impacts. Integer and decimal
// weights are combined on the arbitrary-precision path; no rounding occurs
// below 50 significant digits.
func (s *Session) Score() (*Result, error) {
	res := &Result{
		Total:   apd.New(0, 0),
		PerRule: map[string]*apd.Decimal{},
	}
	for _, def := range s.engine.rules {
		matches, err := s.evaluate(def)
		if err != nil {
			return nil, err
		}
		total := apd.New(0, 0)
		for _, m := range matches {
			if _, err := decCtx.Add(total, total, m.Weight); err != nil {
				return nil, NewEvaluationError(fmt.Errorf("score overflow in rule %q: %w", def.Name, err))
			}
		}
		res.PerRule[def.Name] = total
		if _, err := decCtx.Add(res.Total, res.Total, total); err != nil {
			return nil, NewEvaluationError(fmt.Errorf("score overflow: %w", err))
		}
		res.Matches = append(res.Matches, matches...)
	}
	s.engine.log.V(1).Info("session scored", "total", res.Total.String(), "matches", len(res.Matches))
	return res, nil
}

// Matches evaluates a single rule by name.
func (s *Session) Matches(name string) ([]Match, error) {
	for _, def := range s.engine.rules {
		if def.Name == name {
			return s.evaluate(def)
		}
	}
	return nil, NewEvaluationError(fmt.Errorf("unknown rule %q", name))
}

func (s *Session) evaluate(def *rule.Definition) ([]Match, error) {
	rows, err := s.evalConditions(def.Conditions, seedRowSet())
	if err != nil {
		return nil, NewEvaluationError(fmt.Errorf("rule %q: %w", def.Name, err))
	}
	var matches []Match
	for _, e := range rows.entries() {
		if e.mult < 0 {
			return nil, NewEvaluationError(fmt.Errorf("rule %q: negative multiplicity %d", def.Name, e.mult))
		}
		t, err := e.row.tupleOf(def.Vars)
		if err != nil {
			return nil, NewEvaluationError(fmt.Errorf("rule %q: %w", def.Name, err))
		}
		weight, err := s.weightOf(def, t)
		if err != nil {
			return nil, NewEvaluationError(fmt.Errorf("rule %q: %w", def.Name, err))
		}
		// One score impact per live combination: a multiplicity above one
		// is that many separate combinations.
		for i := 0; i < e.mult; i++ {
			matches = append(matches, Match{Rule: def.Name, Tuple: t, Weight: weight})
		}
	}
	return matches, nil
}

func (s *Session) weightOf(def *rule.Definition, t tuple.Tuple) (*apd.Decimal, error) {
	switch w := def.Weigher.(type) {
	case nil:
		return apd.New(1, 0), nil
	case rule.IntWeigher:
		return apd.New(int64(w(t)), 0), nil
	case rule.Int64Weigher:
		return apd.New(w(t), 0), nil
	case rule.DecimalWeigher:
		d := w(t)
		if d == nil {
			return nil, fmt.Errorf("decimal weigher returned nil for %s", t)
		}
		out := new(apd.Decimal)
		out.Set(d)
		return out, nil
	default:
		return nil, fmt.Errorf("unknown weigher type %T", def.Weigher)
	}
}
