package interpreter

import (
	"github.com/voidwyrm-2/Mend/pkg/diag"
	"github.com/voidwyrm-2/Mend/pkg/runtime"
	"github.com/voidwyrm-2/Mend/pkg/token"
)

// operand resolves a single literal or identifier token.
func (i *Interpreter) operand(f *frame, t token.Token, line int) (runtime.Value, error) {
	if v, ok := runtime.FromToken(t); ok {
		return v, nil
	}
	if t.Kind != token.IDENT {
		return nil, diag.Errorf(diag.SyntaxError, line, "'%s' is not a value", t.Text)
	}
	v, ok := f.scope.Lookup(t.Text)
	if !ok {
		return nil, diag.Errorf(diag.NameError, line, "unknown name '%s'", t.Text)
	}
	return runtime.Copy(v), nil
}

// value resolves a whole operand group: a single token, a list literal or
// a call whose result is used (Null when the function returns nothing).
func (i *Interpreter) value(f *frame, toks []token.Token, line int) (runtime.Value, error) {
	switch {
	case len(toks) == 0:
		return nil, diag.Errorf(diag.SyntaxError, line, "missing value")
	case toks[0].Kind == token.LBRACKET:
		list, next, err := ParseList(toks, 0, line)
		if err != nil {
			return nil, err
		}
		if next != len(toks) {
			return nil, malformedDecl(line, "unexpected tokens after list")
		}
		return list, nil
	case shapeCallHead.prefixOf(toks):
		return i.callStatement(f, toks, line)
	case shapeSingleValue.matches(toks):
		return i.operand(f, toks[0], line)
	default:
		return nil, diag.Errorf(diag.SyntaxError, line, "malformed value '%s'", render(toks))
	}
}
