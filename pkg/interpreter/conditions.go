package interpreter

import (
	"math"

	"github.com/voidwyrm-2/Mend/pkg/diag"
	"github.com/voidwyrm-2/Mend/pkg/runtime"
	"github.com/voidwyrm-2/Mend/pkg/token"
)

var conditionOps = token.NewWordSet("is", "isnot", "not", "less", "more", "plus", "minus", "mult", "div", "fdiv")

// isOperator accepts operator words. `is` and `isnot` lex as keywords, the
// rest as identifiers.
func isOperator(t token.Token) bool {
	return (t.Kind == token.KEYWORD || t.Kind == token.IDENT) && conditionOps.Contains(t.Text)
}

// evalCondition evaluates `a op b [and|or c op d]...` left to right. A lone
// clause yields its raw value; joined clauses yield a Bool.
func (i *Interpreter) evalCondition(f *frame, toks []token.Token, line int) (runtime.Value, error) {
	acc, pos, err := i.clause(f, toks, 0, line)
	if err != nil {
		return nil, err
	}
	for pos < len(toks) {
		join := toks[pos]
		if !join.Is("and") && !join.Is("or") {
			return nil, diag.Errorf(diag.SyntaxError, line, "expected 'and' or 'or' in condition, found '%s'", join.Text)
		}
		var rhs runtime.Value
		rhs, pos, err = i.clause(f, toks, pos+1, line)
		if err != nil {
			return nil, err
		}
		if join.Text == "and" {
			acc = runtime.BoolValue{Val: runtime.Truthy(acc) && runtime.Truthy(rhs)}
		} else {
			acc = runtime.BoolValue{Val: runtime.Truthy(acc) || runtime.Truthy(rhs)}
		}
	}
	return acc, nil
}

func (i *Interpreter) clause(f *frame, toks []token.Token, pos, line int) (runtime.Value, int, error) {
	if pos >= len(toks) {
		return nil, 0, diag.Errorf(diag.SyntaxError, line, "incomplete condition")
	}
	left, err := i.operand(f, toks[pos], line)
	if err != nil {
		return nil, 0, err
	}
	pos++
	if pos >= len(toks) || toks[pos].Is("and") || toks[pos].Is("or") {
		return left, pos, nil
	}
	op := toks[pos]
	if !isOperator(op) {
		return nil, 0, diag.Errorf(diag.SyntaxError, line, "unknown operator '%s'", op.Text)
	}
	if pos+1 >= len(toks) {
		return nil, 0, diag.Errorf(diag.SyntaxError, line, "missing operand after '%s'", op.Text)
	}
	right, err := i.operand(f, toks[pos+1], line)
	if err != nil {
		return nil, 0, err
	}
	v, err := applyOperator(op.Text, left, right, line)
	if err != nil {
		return nil, 0, err
	}
	return v, pos + 2, nil
}

func applyOperator(op string, a, b runtime.Value, line int) (runtime.Value, error) {
	unsupported := func() error {
		return diag.Errorf(diag.RuntimeError, line, "unsupported operands for '%s': %s and %s", op, a.Kind(), b.Kind())
	}
	switch op {
	case "is":
		return runtime.BoolValue{Val: runtime.Equal(a, b)}, nil
	case "isnot", "not":
		return runtime.BoolValue{Val: !runtime.Equal(a, b)}, nil
	case "less", "more":
		if as, ok := a.(runtime.StringValue); ok {
			bs, ok := b.(runtime.StringValue)
			if !ok {
				return nil, unsupported()
			}
			if op == "less" {
				return runtime.BoolValue{Val: as.Val < bs.Val}, nil
			}
			return runtime.BoolValue{Val: as.Val > bs.Val}, nil
		}
		x, y, ok := floats(a, b)
		if !ok {
			return nil, unsupported()
		}
		if op == "less" {
			return runtime.BoolValue{Val: x < y}, nil
		}
		return runtime.BoolValue{Val: x > y}, nil
	case "plus":
		if as, ok := a.(runtime.StringValue); ok {
			bs, ok := b.(runtime.StringValue)
			if !ok {
				return nil, unsupported()
			}
			return runtime.StringValue{Val: as.Val + bs.Val}, nil
		}
		return arith(a, b, unsupported, func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y })
	case "minus":
		return arith(a, b, unsupported, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y })
	case "mult":
		return arith(a, b, unsupported, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y })
	case "div":
		x, y, ok := floats(a, b)
		if !ok {
			return nil, unsupported()
		}
		if y == 0 {
			return nil, diag.Errorf(diag.RuntimeError, line, "division by zero")
		}
		return runtime.FloatValue{Val: x / y}, nil
	case "fdiv":
		if ai, ok := a.(runtime.IntValue); ok {
			if bi, ok := b.(runtime.IntValue); ok {
				if bi.Val == 0 {
					return nil, diag.Errorf(diag.RuntimeError, line, "division by zero")
				}
				return runtime.IntValue{Val: floorDiv(ai.Val, bi.Val)}, nil
			}
		}
		x, y, ok := floats(a, b)
		if !ok {
			return nil, unsupported()
		}
		if y == 0 {
			return nil, diag.Errorf(diag.RuntimeError, line, "division by zero")
		}
		return runtime.FloatValue{Val: math.Floor(x / y)}, nil
	default:
		return nil, diag.Errorf(diag.SyntaxError, line, "unknown operator '%s'", op)
	}
}

func floats(a, b runtime.Value) (float64, float64, bool) {
	x, ok := runtime.AsFloat(a)
	if !ok {
		return 0, 0, false
	}
	y, ok := runtime.AsFloat(b)
	if !ok {
		return 0, 0, false
	}
	return x, y, true
}

// arith keeps Int op Int as Int and widens everything else to Float.
func arith(a, b runtime.Value, unsupported func() error, ints func(x, y int64) int64, fl func(x, y float64) float64) (runtime.Value, error) {
	if ai, ok := a.(runtime.IntValue); ok {
		if bi, ok := b.(runtime.IntValue); ok {
			return runtime.IntValue{Val: ints(ai.Val, bi.Val)}, nil
		}
	}
	x, y, ok := floats(a, b)
	if !ok {
		return nil, unsupported()
	}
	return runtime.FloatValue{Val: fl(x, y)}, nil
}

// floorDiv rounds the quotient towards negative infinity.
func floorDiv(x, y int64) int64 {
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return q
}
