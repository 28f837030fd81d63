package rule

import "fmt"

// Variable is the identity of one tuple slot in a compiled rule. Variables
// are compared by pointer: two variables with the same name created by
// different pipeline stages are distinct slots.
type Variable struct {
	id   int
	name string
}

// NewVariable creates a variable. The id must be unique within one rule
// compilation.
func NewVariable(id int, name string) *Variable {
	return &Variable{id: id, name: name}
}

// ID returns the compilation-unique variable id.
func (v *Variable) ID() int { return v.id }

// Name returns the diagnostic name of the variable.
func (v *Variable) Name() string { return v.name }

func (v *Variable) String() string {
	return fmt.Sprintf("%s#%d", v.name, v.id)
}
