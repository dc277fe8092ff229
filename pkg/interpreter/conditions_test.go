package interpreter

import (
	"strings"
	"testing"

	"github.com/voidwyrm-2/Mend/pkg/diag"
	"github.com/voidwyrm-2/Mend/pkg/runtime"
)

func TestApplyOperator(t *testing.T) {
	i := func(v int64) runtime.Value { return runtime.IntValue{Val: v} }
	f := func(v float64) runtime.Value { return runtime.FloatValue{Val: v} }
	s := func(v string) runtime.Value { return runtime.StringValue{Val: v} }
	b := func(v bool) runtime.Value { return runtime.BoolValue{Val: v} }

	cases := []struct {
		op   string
		a, b runtime.Value
		want runtime.Value
	}{
		{"is", i(1), f(1), b(true)},
		{"is", s("a"), s("b"), b(false)},
		{"isnot", s("a"), s("b"), b(true)},
		{"not", i(2), i(2), b(false)},
		{"less", i(1), f(1.5), b(true)},
		{"more", s("b"), s("a"), b(true)},
		{"plus", i(2), i(3), i(5)},
		{"plus", i(2), f(0.5), f(2.5)},
		{"plus", s("ab"), s("cd"), s("abcd")},
		{"minus", i(2), i(5), i(-3)},
		{"mult", f(1.5), i(2), f(3)},
		{"div", i(7), i(2), f(3.5)},
		{"fdiv", i(7), i(2), i(3)},
		{"fdiv", i(-7), i(2), i(-4)},
		{"fdiv", f(7.5), i(2), f(3)},
	}
	for _, tc := range cases {
		got, err := applyOperator(tc.op, tc.a, tc.b, 1)
		if err != nil {
			t.Fatalf("%s %s %s: %v", runtime.Format(tc.a), tc.op, runtime.Format(tc.b), err)
		}
		if got.Kind() != tc.want.Kind() || !runtime.Equal(got, tc.want) {
			t.Fatalf("%s %s %s: expected %s (%s), got %s (%s)",
				runtime.Format(tc.a), tc.op, runtime.Format(tc.b),
				runtime.Format(tc.want), tc.want.Kind(), runtime.Format(got), got.Kind())
		}
	}
}

func TestApplyOperatorErrors(t *testing.T) {
	cases := []struct {
		op       string
		a, b     runtime.Value
		fragment string
	}{
		{"div", runtime.IntValue{Val: 1}, runtime.IntValue{Val: 0}, "division by zero"},
		{"fdiv", runtime.IntValue{Val: 1}, runtime.IntValue{Val: 0}, "division by zero"},
		{"fdiv", runtime.FloatValue{Val: 1}, runtime.FloatValue{Val: 0}, "division by zero"},
		{"plus", runtime.StringValue{Val: "a"}, runtime.IntValue{Val: 1}, "unsupported operands for 'plus': string and int"},
		{"less", runtime.BoolValue{Val: true}, runtime.IntValue{Val: 1}, "unsupported operands"},
		{"mult", runtime.Null, runtime.IntValue{Val: 1}, "unsupported operands"},
	}
	for _, tc := range cases {
		_, err := applyOperator(tc.op, tc.a, tc.b, 4)
		d, ok := err.(*diag.Diagnostic)
		if !ok || d.Kind != diag.RuntimeError || d.Line != 4 {
			t.Fatalf("%s: unexpected error %v", tc.op, err)
		}
		if !strings.Contains(d.Message, tc.fragment) {
			t.Fatalf("%s: expected %q in %q", tc.op, tc.fragment, d.Message)
		}
	}
}

func TestConditionTraceReportsTruth(t *testing.T) {
	src := strings.Join([]string{
		"mut a as 3",
		"if a more 2 and a less 10 then ?",
		"end",
		"if a is 1 or a is 2 then ?",
		"end",
		"if a plus 1 then ?",
		"end",
		"if \"\" then ?",
		"end",
	}, "\n")
	h, res := runScript(t, src)
	expectClean(t, h, res)
	for _, want := range []string{
		"trace: line 2: condition is true (true)",
		"trace: line 4: condition is false (false)",
		"trace: line 6: condition is 4 (true)",
		"trace: line 8: condition is  (false)",
	} {
		if !strings.Contains(h.trace.String(), want+"\n") {
			t.Fatalf("expected %q in trace:\n%s", want, h.trace.String())
		}
	}
}

func TestConditionErrors(t *testing.T) {
	cases := []struct {
		src      string
		kind     diag.Kind
		fragment string
	}{
		{"if 1 frob 2 then\nend", diag.SyntaxError, "unknown operator 'frob'"},
		{"if 1 is then\nend", diag.SyntaxError, "missing operand after 'is'"},
		{"if ghost is 1 then\nend", diag.NameError, "unknown name 'ghost'"},
		{"if 1 is 1 2 then\nend", diag.SyntaxError, "expected 'and' or 'or'"},
		{"if 1 is 1 and then\nend", diag.SyntaxError, "incomplete condition"},
		{"if 1 div 0 then\nend", diag.RuntimeError, "division by zero"},
	}
	for _, tc := range cases {
		h, res := runScript(t, tc.src)
		expectAbort(t, h, res, tc.kind, 1, tc.fragment)
	}
}
