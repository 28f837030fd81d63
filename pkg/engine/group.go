package engine

import (
	"github.com/streamrule/streamrule/pkg/rule"
	"github.com/streamrule/streamrule/pkg/tuple"
)

// groupStage is the per-session state of one group-by condition. It
// persists between evaluations so aggregates are maintained incrementally:
// rows entering a group are fed to the collector's add, rows leaving it to
// undo, and only collectors without undo force a rebuild of their group
// state.
type groupStage struct {
	groups map[string]*group
}

type group struct {
	keyVal any
	rows   map[string]*groupRow
	states []any
}

// groupRow snapshots one input row of a group: the tuple handed to the
// accumulators at add time is the tuple used for undo when the row leaves.
type groupRow struct {
	t    tuple.Tuple
	mult int
}

type groupInput struct {
	keyVal any
	order  []string
	rows   map[string]*groupRow
}

func (s *Session) evalGroupBy(c *rule.GroupBy, incoming *rowSet) (*rowSet, error) {
	inputRows, err := s.evalConditions(c.Inputs, seedRowSet())
	if err != nil {
		return nil, err
	}

	// Partition the input population by group key, in input row order.
	keyOrder := []string{}
	inputs := map[string]*groupInput{}
	for _, e := range inputRows.entries() {
		t, err := e.row.tupleOf(c.InputVars)
		if err != nil {
			return nil, err
		}
		keyVal := c.KeyExtractor(t)
		keyKey := valueKey(keyVal)
		in, ok := inputs[keyKey]
		if !ok {
			in = &groupInput{keyVal: keyVal, rows: map[string]*groupRow{}}
			inputs[keyKey] = in
			keyOrder = append(keyOrder, keyKey)
		}
		rowKey := e.row.key()
		if gr, ok := in.rows[rowKey]; ok {
			gr.mult += e.mult
		} else {
			in.rows[rowKey] = &groupRow{t: t, mult: e.mult}
			in.order = append(in.order, rowKey)
		}
	}

	stage, ok := s.groups[c]
	if !ok {
		stage = &groupStage{groups: map[string]*group{}}
		s.groups[c] = stage
	}

	// Retire groups whose population vanished.
	for keyKey := range stage.groups {
		if _, ok := inputs[keyKey]; !ok {
			delete(stage.groups, keyKey)
		}
	}

	// Bring the surviving and new groups up to date.
	for _, keyKey := range keyOrder {
		in := inputs[keyKey]
		g, ok := stage.groups[keyKey]
		if !ok {
			g = &group{rows: map[string]*groupRow{}, states: make([]any, len(c.Accumulators))}
			for i, acc := range c.Accumulators {
				g.states[i] = acc.NewState()
			}
			stage.groups[keyKey] = g
		}
		updateGroup(g, in, c.Accumulators)
	}

	// Cross the incoming rows with one output row per group: the key
	// variable (when bound) plus one result variable per accumulator.
	out := newRowSet()
	for _, e := range incoming.entries() {
		for _, keyKey := range keyOrder {
			g := stage.groups[keyKey]
			row := e.row
			if c.KeyVar != nil {
				row = row.with(c.KeyVar, g.keyVal)
			}
			for i, acc := range c.Accumulators {
				row = row.with(acc.OutVar, acc.Finish(g.states[i]))
			}
			out.add(row, e.mult)
		}
	}
	return out, nil
}

// updateGroup diffs the group's previous input rows against the current
// ones and feeds the deltas to the accumulators.
func updateGroup(g *group, in *groupInput, accumulators []*rule.Accumulator) {
	leaving := false
	for rowKey, old := range g.rows {
		newMult := 0
		if gr, ok := in.rows[rowKey]; ok {
			newMult = gr.mult
		}
		if newMult < old.mult {
			leaving = true
		}
	}

	for i, acc := range accumulators {
		state := g.states[i]
		rebuilt := false
		if leaving {
			// Try to retract the departed rows; a collector without undo
			// gets its group state rebuilt from scratch instead.
			for rowKey, old := range g.rows {
				newMult := 0
				if gr, ok := in.rows[rowKey]; ok {
					newMult = gr.mult
				}
				for n := newMult; n < old.mult; n++ {
					next, ok := acc.Undo(state, old.t)
					if !ok {
						rebuilt = true
						break
					}
					state = next
				}
				if rebuilt {
					break
				}
			}
		}
		if rebuilt {
			state = acc.NewState()
			for _, rowKey := range in.order {
				gr := in.rows[rowKey]
				for n := 0; n < gr.mult; n++ {
					state = acc.Add(state, gr.t)
				}
			}
		} else {
			for _, rowKey := range in.order {
				gr := in.rows[rowKey]
				oldMult := 0
				if old, ok := g.rows[rowKey]; ok {
					oldMult = old.mult
				}
				for n := oldMult; n < gr.mult; n++ {
					state = acc.Add(state, gr.t)
				}
			}
		}
		g.states[i] = state
	}

	g.keyVal = in.keyVal
	g.rows = in.rows
}
