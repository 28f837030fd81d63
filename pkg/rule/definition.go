package rule

import (
	"fmt"
	"strings"

	"github.com/streamrule/streamrule/pkg/util"
)

// Definition is the terminal artifact of a pipeline: the ordered match
// condition list, the live variable identities in introduction order, and
// the weigher computing the score impact of each match. A nil Weigher
// weighs every match as 1.
type Definition struct {
	Name       string
	Conditions []Condition
	Vars       []*Variable
	Weigher    Weigher
}

func (d *Definition) String() string {
	conds := util.Map(func(c Condition) string { return c.String() }, d.Conditions)
	return fmt.Sprintf("rule %q: [%s] -> (%s)", d.Name, strings.Join(conds, " -> "),
		variableList(d.Vars))
}
