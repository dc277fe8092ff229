package interpreter

import (
	"strings"

	"github.com/voidwyrm-2/Mend/pkg/diag"
	"github.com/voidwyrm-2/Mend/pkg/runtime"
	"github.com/voidwyrm-2/Mend/pkg/token"
)

// parseCall splits `name(a, [b, c], g(d))` into the callee name and one
// token group per argument. The closing parenthesis must end the group.
func parseCall(toks []token.Token, line int) (string, [][]token.Token, error) {
	name := toks[0].Text
	var (
		args    [][]token.Token
		current []token.Token
		parens  = 1
		bracket = 0
	)
	for idx := 2; idx < len(toks); idx++ {
		t := toks[idx]
		switch t.Kind {
		case token.LPAREN:
			parens++
		case token.RPAREN:
			parens--
		case token.LBRACKET:
			bracket++
		case token.RBRACKET:
			bracket--
			if bracket < 0 {
				return "", nil, diag.Errorf(diag.SyntaxError, line, "unbalanced brackets in call to '%s'", name)
			}
		}
		if parens == 0 {
			if bracket != 0 {
				return "", nil, diag.Errorf(diag.SyntaxError, line, "unbalanced brackets in call to '%s'", name)
			}
			if idx != len(toks)-1 {
				return "", nil, diag.Errorf(diag.SyntaxError, line, "unexpected tokens after call to '%s'", name)
			}
			if len(current) > 0 {
				args = append(args, current)
			} else if len(args) > 0 {
				return "", nil, diag.Errorf(diag.SyntaxError, line, "empty argument in call to '%s'", name)
			}
			return name, args, nil
		}
		if t.Kind == token.COMMA && parens == 1 && bracket == 0 {
			if len(current) == 0 {
				return "", nil, diag.Errorf(diag.SyntaxError, line, "empty argument in call to '%s'", name)
			}
			args = append(args, current)
			current = nil
			continue
		}
		current = append(current, t)
	}
	return "", nil, diag.Errorf(diag.SyntaxError, line, "unbalanced parentheses in call to '%s'", name)
}

// callStatement parses and performs a call, returning its result.
func (i *Interpreter) callStatement(f *frame, toks []token.Token, line int) (runtime.Value, error) {
	name, argToks, err := parseCall(toks, line)
	if err != nil {
		return nil, err
	}
	fn, owner, err := i.resolveCallee(f, name, line)
	if err != nil {
		return nil, err
	}
	if len(argToks) != fn.Arity() {
		return nil, diag.Errorf(diag.ArityError, line, "function '%s' takes %d argument(s) but %d were given", fn.Name, fn.Arity(), len(argToks))
	}
	args := make([]Argument, len(argToks))
	for n, group := range argToks {
		v, err := i.value(f, group, line)
		if err != nil {
			return nil, err
		}
		args[n] = Argument{Name: fn.Params[n].Name, Value: v}
	}
	return i.callFunction(f, fn, owner, args, line)
}

// resolveCallee finds the function named by a call along with the scope
// whose function table the body sees.
func (i *Interpreter) resolveCallee(f *frame, name string, line int) (*runtime.Function, *runtime.Scope, error) {
	owner := f.scope
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		c, ok := f.scope.LookupContainer(name[:dot])
		if !ok {
			return nil, nil, diag.Errorf(diag.NameError, line, "unknown container '%s'", name[:dot])
		}
		owner = c
	}
	if fn, ok := f.scope.LookupFunc(name); ok {
		return fn, owner, nil
	}
	v, ok := f.scope.LookupData(name)
	if !ok {
		return nil, nil, diag.Errorf(diag.NameError, line, "unknown function '%s'", name)
	}
	fv, ok := v.(*runtime.FunctionValue)
	if !ok {
		return nil, nil, diag.Errorf(diag.NameError, line, "'%s' is %s, not a function", name, v.Kind())
	}
	return fv.Fn, owner, nil
}

// callFunction runs fn's body in a fresh scope holding owner's functions,
// fn itself, and one variable per argument.
func (i *Interpreter) callFunction(f *frame, fn *runtime.Function, owner *runtime.Scope, args []Argument, line int) (runtime.Value, error) {
	scope := owner.WithFuncs()
	scope.DefineFunc(fn)
	i.tracef(f, line, "call %s", fn.Signature())
	res, err := i.child(f, line, Invocation{
		Lines: fn.Body,
		Mode:  ModeFunction,
		Args:  args,
		File:  fn.File,
		Scope: scope,
	})
	if err != nil {
		return nil, err
	}
	switch res.Kind {
	case ResultAbort:
		return nil, abortSignal{cause: res.Err}
	case ResultReturn:
		if res.Value == nil {
			return runtime.Null, nil
		}
		return res.Value, nil
	default:
		return runtime.Null, nil
	}
}
