package rule

import (
	"github.com/streamrule/streamrule/pkg/collector"
	"github.com/streamrule/streamrule/pkg/tuple"
)

// Accumulator adapts a collector to the engine's per-group aggregate
// contract. It is bound to a snapshot of the input variables live at the
// group-by call, so later pipeline stages never change which variables feed
// the aggregate.
type Accumulator struct {
	InputVars []*Variable
	OutVar    *Variable
	Collector collector.Collector
}

// NewAccumulator binds a collector to the given input variables and output
// variable.
func NewAccumulator(inputVars []*Variable, outVar *Variable, c collector.Collector) *Accumulator {
	vars := make([]*Variable, len(inputVars))
	copy(vars, inputVars)
	return &Accumulator{InputVars: vars, OutVar: outVar, Collector: c}
}

// NewState returns a fresh aggregation state.
func (a *Accumulator) NewState() any { return a.Collector.NewState() }

// Add folds a row entering the group into the state.
func (a *Accumulator) Add(state any, row tuple.Tuple) any {
	return a.Collector.Add(state, row)
}

// Undo retracts a row leaving the group. The second return value is false if
// the collector does not support retraction, in which case the caller must
// rebuild the group state from scratch.
func (a *Accumulator) Undo(state any, row tuple.Tuple) (any, bool) {
	u, ok := a.Collector.(collector.Undoable)
	if !ok {
		return state, false
	}
	return u.Undo(state, row), true
}

// Finish reads the aggregate result out of the state.
func (a *Accumulator) Finish(state any) any { return a.Collector.Finish(state) }
