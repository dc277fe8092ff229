package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/voidwyrm-2/Mend/pkg/token"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindList
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "nil"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindFunction:
		return "function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type IntValue struct {
	Val int64
}

func (v IntValue) Kind() Kind { return KindInt }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

//-----------------------------------------------------------------------------
// Lists
//-----------------------------------------------------------------------------

type ListValue struct {
	Elements []Value
}

func (v *ListValue) Kind() Kind { return KindList }

// Null is the value of declared-but-unset bindings.
var Null Value = NullValue{}

// FromToken converts a literal token into its runtime value.
func FromToken(t token.Token) (Value, bool) {
	switch t.Kind {
	case token.INT:
		return IntValue{Val: t.Int}, true
	case token.FLOAT:
		return FloatValue{Val: t.Float}, true
	case token.STRING:
		return StringValue{Val: t.Text}, true
	case token.BOOL:
		return BoolValue{Val: t.Bool}, true
	case token.KEYWORD:
		if t.Text == "nil" {
			return Null, true
		}
	}
	return nil, false
}

// Copy returns a value that shares no mutable state with v.
func Copy(v Value) Value {
	list, ok := v.(*ListValue)
	if !ok {
		return v
	}
	out := &ListValue{Elements: make([]Value, len(list.Elements))}
	for i, el := range list.Elements {
		out.Elements[i] = Copy(el)
	}
	return out
}

// Equal compares two values structurally. Ints and floats compare numerically.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, y, ok := numericPair(a, b); ok {
		return x == y
	}
	switch av := a.(type) {
	case NullValue:
		return b.Kind() == KindNull
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.Val == bv.Val
	case *ListValue:
		bv, ok := b.(*ListValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *FunctionValue:
		bv, ok := b.(*FunctionValue)
		return ok && av.Fn == bv.Fn
	default:
		return false
	}
}

func numericPair(a, b Value) (float64, float64, bool) {
	x, ok := AsFloat(a)
	if !ok {
		return 0, 0, false
	}
	y, ok := AsFloat(b)
	if !ok {
		return 0, 0, false
	}
	return x, y, true
}

// AsFloat widens an int or float value.
func AsFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case IntValue:
		return float64(n.Val), true
	case FloatValue:
		return n.Val, true
	default:
		return 0, false
	}
}

// Truthy reports the boolean interpretation of v.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, NullValue:
		return false
	case BoolValue:
		return val.Val
	case IntValue:
		return val.Val != 0
	case FloatValue:
		return val.Val != 0
	case StringValue:
		return val.Val != ""
	case *ListValue:
		return len(val.Elements) > 0
	default:
		return true
	}
}

// Format renders v the way `log` prints it.
func Format(v Value) string {
	switch val := v.(type) {
	case nil, NullValue:
		return "nil"
	case IntValue:
		return strconv.FormatInt(val.Val, 10)
	case FloatValue:
		s := strconv.FormatFloat(val.Val, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	case StringValue:
		return val.Val
	case BoolValue:
		if val.Val {
			return "true"
		}
		return "false"
	case *ListValue:
		parts := make([]string, len(val.Elements))
		for i, el := range val.Elements {
			if s, ok := el.(StringValue); ok {
				parts[i] = strconv.Quote(s.Val)
				continue
			}
			parts[i] = Format(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *FunctionValue:
		return fmt.Sprintf("<func %s>", val.Fn.Name)
	default:
		return fmt.Sprintf("[%s]", v.Kind())
	}
}
