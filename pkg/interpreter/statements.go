package interpreter

import (
	"fmt"

	"github.com/voidwyrm-2/Mend/pkg/diag"
	"github.com/voidwyrm-2/Mend/pkg/runtime"
	"github.com/voidwyrm-2/Mend/pkg/token"
)

// statement is one non-blank line with its debug marker stripped.
type statement struct {
	toks  []token.Token
	line  int
	lines []token.Line
	idx   int
}

func (s *statement) next() int {
	return s.idx + 1
}

func malformed(line int) error {
	return diag.Errorf(diag.SyntaxError, line, "malformed statement")
}

func (i *Interpreter) dispatch(f *frame, st *statement) (int, error) {
	first := st.toks[0]
	switch first.Kind {
	case token.KEYWORD:
		return i.execKeyword(f, st)
	case token.IDENT:
		return i.execIdent(f, st)
	case token.STATELABEL:
		if !shapeLabel.matches(st.toks) {
			return 0, malformed(st.line)
		}
		if first.Text != "ignorewarning" {
			return 0, diag.Errorf(diag.SyntaxError, st.line, "unknown state label '@%s'", first.Text)
		}
		f.pendingSuppress = true
		return st.next(), nil
	default:
		return 0, malformed(st.line)
	}
}

func (i *Interpreter) execKeyword(f *frame, st *statement) (int, error) {
	switch word := st.toks[0].Text; word {
	case "stop":
		if !shapeStop.matches(st.toks) {
			return 0, malformed(st.line)
		}
		return 0, stopSignal{}
	case "log":
		return i.execLog(f, st)
	case "get":
		return i.execGet(f, st)
	case "if":
		return i.execIf(f, st)
	case "else":
		if !shapeElse.matches(st.toks) {
			return 0, malformed(st.line)
		}
		if len(f.openIfs) == 0 {
			return 0, diag.Errorf(diag.SyntaxError, st.line, "'else' outside of 'if'")
		}
		return st.next(), nil
	case "end":
		if !shapeEnd.matches(st.toks) {
			return 0, malformed(st.line)
		}
		if len(f.openIfs) == 0 {
			return 0, diag.Errorf(diag.SyntaxError, st.line, "unmatched 'end'")
		}
		f.openIfs = f.openIfs[:len(f.openIfs)-1]
		return st.next(), nil
	case "mut":
		return i.execDecl(f, st, false)
	case "immut":
		return i.execDecl(f, st, true)
	case "repeat":
		return i.execRepeat(f, st)
	case "func":
		return i.execFunc(f, st)
	case "return":
		return i.execReturn(f, st)
	case "import":
		if !shapeImport.matches(st.toks) {
			return 0, malformed(st.line)
		}
		return st.next(), i.importModule(f, st.toks[1].Text, st.line)
	case "container":
		return i.execContainer(f, st)
	case "del":
		return i.execDel(f, st)
	case "set":
		// reserved
		return st.next(), nil
	default:
		return 0, diag.Errorf(diag.SyntaxError, st.line, "unexpected keyword '%s'", word)
	}
}

// execIdent handles statements led by a name: calls, bare function names
// (called without arguments), and bare values that only produce an
// unused-value warning.
func (i *Interpreter) execIdent(f *frame, st *statement) (int, error) {
	name := st.toks[0].Text
	if shapeCallHead.prefixOf(st.toks) {
		if _, err := i.callStatement(f, st.toks, st.line); err != nil {
			return 0, err
		}
		return st.next(), nil
	}
	if !shapeBareName.matches(st.toks) {
		return 0, malformed(st.line)
	}
	if _, ok := f.scope.LookupData(name); !ok {
		if _, isFunc := f.scope.LookupFunc(name); isFunc {
			call := []token.Token{
				st.toks[0],
				{Kind: token.LPAREN, Text: "("},
				{Kind: token.RPAREN, Text: ")"},
			}
			if _, err := i.callStatement(f, call, st.line); err != nil {
				return 0, err
			}
			return st.next(), nil
		}
	}
	if _, ok := f.scope.Lookup(name); !ok {
		return 0, diag.Errorf(diag.NameError, st.line, "unknown name '%s'", name)
	}
	i.warn(f, diag.Warnf(st.line, "unused value '%s'", name))
	return st.next(), nil
}

func (i *Interpreter) execLog(f *frame, st *statement) (int, error) {
	if shapeLogBlank.matches(st.toks) {
		fmt.Fprintln(i.opts.Output)
		return st.next(), nil
	}
	rest := st.toks[1:]
	if len(rest) == 1 && rest[0].Kind == token.IDENT {
		v, ok := f.scope.Lookup(rest[0].Text)
		if !ok {
			return 0, diag.Errorf(diag.NameError, st.line, "could not log unknown variable '%s'", rest[0].Text)
		}
		fmt.Fprintln(i.opts.Output, runtime.Format(v))
		return st.next(), nil
	}
	v, err := i.value(f, rest, st.line)
	if err != nil {
		return 0, err
	}
	fmt.Fprintln(i.opts.Output, runtime.Format(v))
	return st.next(), nil
}

func (i *Interpreter) execGet(f *frame, st *statement) (int, error) {
	if !shapeGet.matches(st.toks) {
		return 0, malformed(st.line)
	}
	name := st.toks[1].Text
	if f.scope.Consts().Has(name) {
		return 0, diag.Errorf(diag.NameError, st.line, "can't assign to constant '%s'", name)
	}
	text, err := i.opts.Input.ReadLine()
	if err != nil {
		return 0, diag.Errorf(diag.RuntimeError, st.line, "could not read input for '%s': %v", name, err)
	}
	f.scope.SetVar(name, runtime.StringValue{Val: text})
	return st.next(), nil
}

func (i *Interpreter) execIf(f *frame, st *statement) (int, error) {
	if !st.toks[len(st.toks)-1].Is("then") {
		return 0, diag.Errorf(diag.SyntaxError, st.line, "missing 'then' to close 'if'")
	}
	cond := st.toks[1 : len(st.toks)-1]
	if len(cond) == 0 {
		return 0, diag.Errorf(diag.SyntaxError, st.line, "missing condition after 'if'")
	}
	v, err := i.evalCondition(f, cond, st.line)
	if err != nil {
		return 0, err
	}
	i.tracef(f, st.line, "condition is %s (%t)", runtime.Format(v), runtime.Truthy(v))
	f.openIfs = append(f.openIfs, st.line)
	return st.next(), nil
}

func (i *Interpreter) execDecl(f *frame, st *statement, constant bool) (int, error) {
	keyword := st.toks[0].Text
	bare := shapeDeclBare.matches(st.toks)
	if !bare && !(shapeDeclInit.prefixOf(st.toks) && len(st.toks) > len(shapeDeclInit)) {
		return 0, malformedDecl(st.line, fmt.Sprintf("expected '%s name [as value]'", keyword))
	}
	name := st.toks[1].Text
	if constant {
		if f.scope.Consts().Has(name) {
			return 0, diag.Errorf(diag.NameError, st.line, "can't declare constant '%s', already exists", name)
		}
	} else if f.scope.HasVar(name) {
		return 0, diag.Errorf(diag.NameError, st.line, "can't declare variable '%s', already exists", name)
	}

	var v runtime.Value = runtime.Null
	if !bare {
		init := st.toks[len(shapeDeclInit):]
		if len(init) == 1 && init[0].Kind == token.KEYWORD && !init[0].Is("nil") {
			return 0, malformedDecl(st.line, fmt.Sprintf("keyword '%s' is not a value", init[0].Text))
		}
		if !shapeSingleValue.matches(init) && init[0].Kind != token.LBRACKET && !shapeCallHead.prefixOf(init) {
			return 0, malformedDecl(st.line, "invalid initializer '"+render(init)+"'")
		}
		var err error
		if v, err = i.value(f, init, st.line); err != nil {
			return 0, err
		}
	}
	if constant {
		f.scope.Consts().Add(name, v)
	} else {
		f.scope.SetVar(name, v)
	}
	return st.next(), nil
}

func (i *Interpreter) execRepeat(f *frame, st *statement) (int, error) {
	if !shapeRepeat.matches(st.toks) {
		return 0, malformed(st.line)
	}
	count, err := i.repeatCount(f, st.toks[1], st.line)
	if err != nil {
		return 0, err
	}
	body, next, ok := ExtractBlock(st.lines, st.next(), blockOpeners)
	if !ok {
		return 0, diag.Errorf(diag.SyntaxError, st.line, "missing 'end' to close 'repeat'")
	}
	// Every iteration starts empty apart from the enclosing functions.
	for n := int64(0); n < count; n++ {
		res, err := i.child(f, st.line, Invocation{
			Lines:      body,
			Mode:       ModeBlock,
			File:       f.inv.File,
			Scope:      f.scope.WithFuncs(),
			inFunction: f.inFunction(),
		})
		if err != nil {
			return 0, err
		}
		switch res.Kind {
		case ResultStop:
			return next, nil
		case ResultAbort:
			return 0, abortSignal{cause: res.Err}
		case ResultReturn:
			return 0, returnSignal{value: res.Value}
		}
	}
	return next, nil
}

func (i *Interpreter) repeatCount(f *frame, t token.Token, line int) (int64, error) {
	var count int64
	if t.Kind == token.INT {
		count = t.Int
	} else {
		v, ok := f.scope.LookupData(t.Text)
		if !ok {
			return 0, diag.Errorf(diag.NameError, line, "unknown name '%s'", t.Text)
		}
		n, ok := v.(runtime.IntValue)
		if !ok {
			return 0, diag.Errorf(diag.RuntimeError, line, "repeat count '%s' is %s, not int", t.Text, v.Kind())
		}
		count = n.Val
	}
	if count < 0 {
		return 0, diag.Errorf(diag.RuntimeError, line, "repeat count must not be negative, got %d", count)
	}
	return count, nil
}

func (i *Interpreter) execFunc(f *frame, st *statement) (int, error) {
	if !shapeFuncHead.prefixOf(st.toks) {
		return 0, malformed(st.line)
	}
	name := st.toks[1].Text
	params, builtin, err := parseParams(st.toks, len(shapeFuncHead), st.line)
	if err != nil {
		return 0, err
	}
	body, next, ok := ExtractBlock(st.lines, st.next(), blockOpeners)
	if !ok {
		return 0, diag.Errorf(diag.SyntaxError, st.line, "missing 'end' to close 'func'")
	}
	if prev, exists := f.scope.Func(name); exists {
		if prev.Builtin {
			i.warn(f, diag.Warnf(st.line, "overriding builtin function '%s'", name))
		} else {
			i.warn(f, diag.Warnf(st.line, "redeclaring function '%s' (previously declared on line %d)", name, prev.Line))
		}
	}
	f.scope.DefineFunc(&runtime.Function{
		Name:    name,
		Params:  params,
		Body:    body,
		Builtin: builtin,
		Line:    st.line,
		File:    f.inv.File,
	})
	return next, nil
}

// parseParams reads `a, b)` and an optional trailing @builtin label.
func parseParams(toks []token.Token, start, line int) ([]runtime.Parameter, bool, error) {
	bad := func(detail string) error {
		return diag.Errorf(diag.SyntaxError, line, "malformed function declaration: %s", detail)
	}
	var params []runtime.Parameter
	seen := make(map[string]bool)
	idx := start
	for {
		if idx >= len(toks) {
			return nil, false, bad("missing ')'")
		}
		if toks[idx].Kind == token.RPAREN && len(params) == 0 {
			idx++
			break
		}
		if !plainName(toks[idx]) {
			return nil, false, bad(fmt.Sprintf("invalid parameter '%s'", toks[idx].Text))
		}
		name := toks[idx].Text
		if seen[name] {
			return nil, false, bad(fmt.Sprintf("duplicate parameter '%s'", name))
		}
		seen[name] = true
		params = append(params, runtime.Parameter{Name: name})
		idx++
		if idx >= len(toks) {
			return nil, false, bad("missing ')'")
		}
		if toks[idx].Kind == token.RPAREN {
			idx++
			break
		}
		if toks[idx].Kind != token.COMMA {
			return nil, false, bad("expected ',' between parameters")
		}
		idx++
	}
	switch rest := toks[idx:]; {
	case len(rest) == 0:
		return params, false, nil
	case len(rest) == 1 && rest[0].Kind == token.STATELABEL && rest[0].Text == "builtin":
		return params, true, nil
	default:
		return nil, false, bad("unexpected tokens after ')'")
	}
}

func (i *Interpreter) execReturn(f *frame, st *statement) (int, error) {
	if !f.inFunction() {
		return 0, diag.Errorf(diag.SyntaxError, st.line, "'return' outside of a function")
	}
	if shapeReturnBare.matches(st.toks) {
		return 0, returnSignal{value: runtime.Null}
	}
	v, err := i.value(f, st.toks[1:], st.line)
	if err != nil {
		return 0, err
	}
	return 0, returnSignal{value: v}
}

func (i *Interpreter) execContainer(f *frame, st *statement) (int, error) {
	if !shapeContainer.matches(st.toks) {
		return 0, malformed(st.line)
	}
	name := st.toks[1].Text
	body, next, ok := ExtractBlock(st.lines, st.next(), blockOpeners)
	if !ok {
		return 0, diag.Errorf(diag.SyntaxError, st.line, "missing 'end' to close 'container'")
	}
	if _, exists := f.scope.Container(name); exists {
		return 0, diag.Errorf(diag.NameError, st.line, "can't declare container '%s', already exists", name)
	}
	res, err := i.child(f, st.line, Invocation{
		Lines: body,
		Mode:  ModeContainer,
		File:  f.inv.File,
	})
	if err != nil {
		return 0, err
	}
	if res.Kind == ResultAbort {
		return 0, abortSignal{cause: res.Err}
	}
	f.scope.DefineContainer(name, res.Scope)
	return next, nil
}

func (i *Interpreter) execDel(f *frame, st *statement) (int, error) {
	if !shapeDel.matches(st.toks) {
		return 0, malformed(st.line)
	}
	name := st.toks[1].Text
	deleted, isConst := f.scope.Delete(name)
	switch {
	case isConst:
		return 0, diag.Errorf(diag.NameError, st.line, "can't delete constant '%s'", name)
	case !deleted:
		return 0, diag.Errorf(diag.NameError, st.line, "can't delete unknown name '%s'", name)
	}
	return st.next(), nil
}
