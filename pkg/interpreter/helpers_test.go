package interpreter

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/voidwyrm-2/Mend/pkg/diag"
	"github.com/voidwyrm-2/Mend/pkg/runtime"
)

type harness struct {
	out    bytes.Buffer
	trace  bytes.Buffer
	diags  diag.Collector
	input  *QueueInput
	interp *Interpreter
}

func newHarness(files fstest.MapFS, input ...string) *harness {
	h := &harness{input: NewQueueInput(input...)}
	opts := Options{
		Input:    h.input,
		Output:   &h.out,
		Reporter: &h.diags,
		Trace:    &h.trace,
	}
	if files != nil {
		opts.Files = files
	}
	h.interp = New(opts)
	return h
}

// memFS builds an in-memory filesystem from path/content pairs.
func memFS(pairs ...string) fstest.MapFS {
	files := fstest.MapFS{}
	for i := 0; i+1 < len(pairs); i += 2 {
		files[pairs[i]] = &fstest.MapFile{Data: []byte(pairs[i+1])}
	}
	return files
}

func runScript(t *testing.T, src string, input ...string) (*harness, Result) {
	t.Helper()
	h := newHarness(nil, input...)
	res := h.interp.RunSource(src, ".")
	return h, res
}

func expectClean(t *testing.T, h *harness, res Result) {
	t.Helper()
	if res.Failed() {
		t.Fatalf("unexpected abort: %v\n%s", res.Err, h.diags.String())
	}
	if len(h.diags.Errors()) != 0 {
		t.Fatalf("unexpected errors:\n%s", h.diags.String())
	}
}

func expectAbort(t *testing.T, h *harness, res Result, kind diag.Kind, line int, fragment string) *diag.Diagnostic {
	t.Helper()
	if res.Kind != ResultAbort {
		t.Fatalf("expected abort, got %s (output %q)", res.Kind, h.out.String())
	}
	errs := h.diags.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected exactly one reported error, got %d:\n%s", len(errs), h.diags.String())
	}
	d := errs[0]
	if d != res.Err {
		t.Fatalf("result error %v differs from reported %v", res.Err, d)
	}
	if d.Kind != kind {
		t.Fatalf("expected %s, got %s: %s", kind, d.Kind, d.Message)
	}
	if line > 0 && d.Line != line {
		t.Fatalf("expected error on line %d, got %d: %s", line, d.Line, d.Message)
	}
	if !strings.Contains(d.Message, fragment) {
		t.Fatalf("expected message containing %q, got %q", fragment, d.Message)
	}
	return d
}

func expectOutput(t *testing.T, h *harness, want string) {
	t.Helper()
	if got := h.out.String(); got != want {
		t.Fatalf("expected output %q, got %q", want, got)
	}
}

func lookup(t *testing.T, scope *runtime.Scope, name string) runtime.Value {
	t.Helper()
	v, ok := scope.Lookup(name)
	if !ok {
		t.Fatalf("expected %s to be bound", name)
	}
	return v
}
