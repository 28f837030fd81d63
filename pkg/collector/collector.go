// Package collector defines the incremental aggregate contract used by
// group-by stages and a small library of standard collectors. A collector is
// a pure aggregate definition: an initial-state supplier, an add step, an optional
// undo step and a finish step. Undo exists because the underlying fact
// population changes incrementally; whenever a collector defines it, the
// round-trip law finish(undo(add(s, r), r)) == finish(s) must hold.
package collector

import (
	"github.com/streamrule/streamrule/pkg/tuple"
)

// Collector aggregates rows of a group into a single result value.
type Collector interface {
	// NewState returns a fresh, empty aggregation state.
	NewState() any
	// Add folds one row into the state and returns the new state.
	Add(state any, row tuple.Tuple) any
	// Finish computes the aggregate result from the state. It must not
	// modify the state.
	Finish(state any) any
}

// Undoable is implemented by collectors that can retract a previously added
// row. Collectors without undo force the engine to rebuild the group state
// from scratch when a row leaves the group.
type Undoable interface {
	// Undo removes one previously added row from the state and returns the
	// new state.
	Undo(state any, row tuple.Tuple) any
}

type funcCollector struct {
	newState func() any
	add      func(state any, row tuple.Tuple) any
	undo     func(state any, row tuple.Tuple) any
	finish   func(state any) any
}

func (c *funcCollector) NewState() any                    { return c.newState() }
func (c *funcCollector) Add(state any, row tuple.Tuple) any { return c.add(state, row) }
func (c *funcCollector) Finish(state any) any             { return c.finish(state) }

type undoableFuncCollector struct {
	funcCollector
}

func (c *undoableFuncCollector) Undo(state any, row tuple.Tuple) any { return c.undo(state, row) }

// New builds a collector from plain functions. If undo is nil the collector
// does not support retraction.
func New(newState func() any, add func(any, tuple.Tuple) any, undo func(any, tuple.Tuple) any,
	finish func(any) any) Collector {
	c := funcCollector{newState: newState, add: add, undo: undo, finish: finish}
	if undo == nil {
		return &c
	}
	return &undoableFuncCollector{funcCollector: c}
}
