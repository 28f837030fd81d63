package rule

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/streamrule/streamrule/pkg/tuple"
	"github.com/streamrule/streamrule/pkg/util"
)

// Condition is one entry of a compiled rule's ordered match condition list.
// The set of conditions is closed: the engine matches on the concrete type
// exhaustively, there is no open dispatch.
type Condition interface {
	fmt.Stringer
	condition()
}

// ProbeComponent is one column of a composite correlation probe: the left
// extractor runs over the already-bound variables, the right extractor over
// the candidate value, and the comparison relates the two keys.
type ProbeComponent struct {
	Kind  Comparison
	Left  func(tuple.Tuple) any
	Right func(any) any
}

func (p ProbeComponent) String() string { return fmt.Sprintf("key %s key", p.Kind) }

// Source binds a variable to every fact of a given type.
type Source struct {
	Var      *Variable
	FactType reflect.Type
}

func (c *Source) condition() {}
func (c *Source) String() string {
	return fmt.Sprintf("source(%s: %s)", c.Var, c.FactType)
}

// Filter restricts combinations by a boolean predicate over the given
// variables, evaluated in Vars order.
type Filter struct {
	Vars      []*Variable
	Predicate func(tuple.Tuple) bool
}

func (c *Filter) condition() {}
func (c *Filter) String() string {
	return fmt.Sprintf("filter(%s)", variableList(c.Vars))
}

// Probe is a multi-column indexed correlation of a candidate variable
// against the previously bound variables. Never marks a correlation that can
// never match.
type Probe struct {
	LeftVars   []*Variable
	Var        *Variable
	Components []ProbeComponent
	Never      bool
}

func (c *Probe) condition() {}
func (c *Probe) String() string {
	if c.Never {
		return fmt.Sprintf("probe(%s: never)", c.Var)
	}
	cols := make([]string, len(c.Components))
	for i, comp := range c.Components {
		cols[i] = comp.String()
	}
	return fmt.Sprintf("probe(%s ~ %s: %s)", c.Var, variableList(c.LeftVars),
		strings.Join(cols, " && "))
}

// Existence tests the presence (or absence, when Present is false) of at
// least one fact of FactType correlated to the bound variables. The
// candidate is never exposed as an output variable. Probe narrows the
// candidates, Filter further restricts them; either may be nil.
type Existence struct {
	Present  bool
	Vars     []*Variable
	FactType reflect.Type
	Probe    []ProbeComponent
	Filter   func(left tuple.Tuple, candidate any) bool
	Never    bool
}

func (c *Existence) condition() {}
func (c *Existence) String() string {
	verb := "exists"
	if !c.Present {
		verb = "not-exists"
	}
	return fmt.Sprintf("%s(%s ~ %s)", verb, c.FactType, variableList(c.Vars))
}

// GroupBy applies the engine's single-key grouping primitive: the input
// population is the conjunction of the Inputs condition list, the key
// extractor computes the (possibly composite) group key over InputVars, and
// each accumulator produces one trailing result variable.
type GroupBy struct {
	InputVars    []*Variable
	Inputs       []Condition
	KeyVar       *Variable
	KeyExtractor func(tuple.Tuple) any
	Accumulators []*Accumulator
}

func (c *GroupBy) condition() {}
func (c *GroupBy) String() string {
	outs := make([]string, 0, len(c.Accumulators)+1)
	if c.KeyVar != nil {
		outs = append(outs, c.KeyVar.String())
	}
	for _, acc := range c.Accumulators {
		outs = append(outs, acc.OutVar.String())
	}
	return fmt.Sprintf("groupBy(%s -> %s)", variableList(c.InputVars), strings.Join(outs, ", "))
}

// Projection binds a variable to a lazy field projection of another bound
// variable, used to decompose composite group keys. The projected value is
// computed on demand, never stored.
type Projection struct {
	SourceVar *Variable
	Var       *Variable
	Project   func(any) any
}

func (c *Projection) condition() {}
func (c *Projection) String() string {
	return fmt.Sprintf("project(%s <- %s)", c.Var, c.SourceVar)
}

// Map binds a variable to a mapping of the input variables, one output per
// surviving input combination. Duplicate outputs are kept: multiplicity of
// the input combination is the multiplicity of the output.
type Map struct {
	InputVars []*Variable
	Var       *Variable
	Mapping   func(tuple.Tuple) any
}

func (c *Map) condition() {}
func (c *Map) String() string {
	return fmt.Sprintf("map(%s -> %s)", variableList(c.InputVars), c.Var)
}

// Flatten replaces the source variable by one output variable binding per
// element of the mapped iterable. The mapping is re-read on every
// evaluation, so changes to the source element list fan out dynamically.
type Flatten struct {
	SourceVar *Variable
	Var       *Variable
	Mapping   func(any) []any
}

func (c *Flatten) condition() {}
func (c *Flatten) String() string {
	return fmt.Sprintf("flatten(%s -> %s)", c.SourceVar, c.Var)
}

func variableList(vars []*Variable) string {
	return strings.Join(util.Map(func(v *Variable) string { return v.String() }, vars), ", ")
}
