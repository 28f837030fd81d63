package engine

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/streamrule/streamrule/pkg/rule"
	"github.com/streamrule/streamrule/pkg/tuple"
)

// binding is one partial match: an ordered list of variables with their
// bound values. Bindings are treated as opaque rows with a signed
// multiplicity; their internal structure is only consulted through variable
// lookups.
type binding struct {
	vars []*rule.Variable
	vals []any
}

func emptyBinding() binding { return binding{} }

// with returns a copy of the binding extended by one variable.
func (b binding) with(v *rule.Variable, val any) binding {
	vars := make([]*rule.Variable, 0, len(b.vars)+1)
	vars = append(vars, b.vars...)
	vars = append(vars, v)
	vals := make([]any, 0, len(b.vals)+1)
	vals = append(vals, b.vals...)
	vals = append(vals, val)
	return binding{vars: vars, vals: vals}
}

func (b binding) valueOf(v *rule.Variable) (any, bool) {
	for i, bv := range b.vars {
		if bv == v {
			return b.vals[i], true
		}
	}
	return nil, false
}

// tupleOf projects the binding onto the given variables, in their order.
func (b binding) tupleOf(vars []*rule.Variable) (tuple.Tuple, error) {
	vals := make([]any, len(vars))
	for i, v := range vars {
		val, ok := b.valueOf(v)
		if !ok {
			return tuple.Tuple{}, fmt.Errorf("variable %s is not bound", v)
		}
		vals[i] = val
	}
	return tuple.Of(vals...), nil
}

// key returns the canonical identity of the binding, used as the Z-set map
// key. Pointer values key by identity, everything else by type and value.
func (b binding) key() string {
	var sb strings.Builder
	for i, v := range b.vars {
		fmt.Fprintf(&sb, "#%d=%s;", v.ID(), valueKey(b.vals[i]))
	}
	return sb.String()
}

func valueKey(v any) string {
	if v == nil {
		return "nil"
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return fmt.Sprintf("%p", v)
	}
	return fmt.Sprintf("%T:%v", v, v)
}

type rowEntry struct {
	row  binding
	mult int
}

// rowSet is a Z-set of bindings: a multiset whose multiplicities may be any
// integer. Iteration order follows first insertion so evaluation is
// deterministic.
type rowSet struct {
	order []string
	rows  map[string]*rowEntry
}

func newRowSet() *rowSet {
	return &rowSet{rows: map[string]*rowEntry{}}
}

// seedRowSet returns the evaluation seed: a single empty binding with
// multiplicity one.
func seedRowSet() *rowSet {
	rs := newRowSet()
	rs.add(emptyBinding(), 1)
	return rs
}

// add merges a binding into the Z-set with the given multiplicity. Entries
// whose multiplicity reaches zero disappear.
func (rs *rowSet) add(row binding, mult int) {
	if mult == 0 {
		return
	}
	key := row.key()
	if e, ok := rs.rows[key]; ok {
		e.mult += mult
		if e.mult == 0 {
			delete(rs.rows, key)
		}
		return
	}
	rs.rows[key] = &rowEntry{row: row, mult: mult}
	rs.order = append(rs.order, key)
}

// entries returns the live entries in insertion order.
func (rs *rowSet) entries() []rowEntry {
	out := make([]rowEntry, 0, len(rs.rows))
	for _, key := range rs.order {
		if e, ok := rs.rows[key]; ok {
			out = append(out, *e)
		}
	}
	return out
}

func (rs *rowSet) String() string {
	parts := make([]string, 0, len(rs.rows))
	for _, e := range rs.entries() {
		parts = append(parts, fmt.Sprintf("%v x%d", e.row.vals, e.mult))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
