package runtime

import (
	"strings"

	"github.com/voidwyrm-2/Mend/pkg/token"
)

// Parameter is a formal function parameter.
type Parameter struct {
	Name string
}

// Function is a declared Mend function. Body excludes the closing `end`.
type Function struct {
	Name    string
	Params  []Parameter
	Body    []token.Line
	Builtin bool
	Line    int
	// File is the source the function was declared in; empty for the entry script.
	File    string
}

// Arity returns the number of arguments a call must pass.
func (f *Function) Arity() int {
	return len(f.Params)
}

// Signature renders `name(a, b)`.
func (f *Function) Signature() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return f.Name + "(" + strings.Join(names, ", ") + ")"
}

// FunctionValue lets a function travel as a value (argument or binding).
type FunctionValue struct {
	Fn *Function
}

func (v *FunctionValue) Kind() Kind { return KindFunction }
