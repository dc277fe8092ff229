package interpreter

import (
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/voidwyrm-2/Mend/pkg/diag"
	"github.com/voidwyrm-2/Mend/pkg/runtime"
)

func TestImportPath(t *testing.T) {
	if got := ImportPath(".", "child"); got != "child.mend" {
		t.Fatalf("expected child.mend, got %q", got)
	}
	if got := ImportPath("lib", "util.mend"); got != filepath.Join("lib", "util.mend") {
		t.Fatalf("expected verbatim dotted name, got %q", got)
	}
	if got := ImportPath("root", "data.txt"); got != filepath.Join("root", "data.txt") {
		t.Fatalf("expected no extension added, got %q", got)
	}
}

func TestImportMergesBindings(t *testing.T) {
	files := memFS("child.mend", strings.Join([]string{
		"mut shared as \"child\"",
		"mut fresh as 2",
		"immut limit as 10",
		"func greet()",
		"log \"hello from child\"",
		"end",
		"container box",
		"mut inside as true",
		"end",
		"log \"loading\"",
	}, "\n"))
	h := newHarness(files)
	res := h.interp.RunSource(strings.Join([]string{
		"mut shared as \"parent\"",
		"import \"child\"",
		"log shared",
		"log fresh",
		"log limit",
		"log box.inside",
		"greet()",
	}, "\n"), ".")
	expectClean(t, h, res)
	expectOutput(t, h, "loading\nparent\n2\n10\ntrue\nhello from child\n")
}

func TestImportByIdentifier(t *testing.T) {
	h := newHarness(memFS("child.mend", "mut v as 1"))
	res := h.interp.RunSource("import child\nlog v", ".")
	expectClean(t, h, res)
	expectOutput(t, h, "1\n")
}

func TestImportMissingFile(t *testing.T) {
	h := newHarness(memFS())
	res := h.interp.RunSource("mut before as 1\nimport \"child\"\nlog \"never\"", ".")
	expectAbort(t, h, res, diag.ImportError, 2, "could not import 'child'")
	if names := res.Scope.VarNames(); len(names) != 1 || names[0] != "before" {
		t.Fatalf("expected nothing new bound, got %v", names)
	}
	expectOutput(t, h, "")
}

func TestImportDirectoryIsWrongPathType(t *testing.T) {
	files := fstest.MapFS{
		"pkg.mend/inner.mend": &fstest.MapFile{Data: []byte("mut x as 1")},
	}
	h := newHarness(files)
	res := h.interp.RunSource("import pkg", ".")
	expectAbort(t, h, res, diag.ImportError, 1, "wrong path type")
}

func TestImportVerbatimDottedPath(t *testing.T) {
	h := newHarness(memFS("lib/util.mend", "immut answer as 42"))
	res := h.interp.RunSource("import \"lib/util.mend\"\nlog answer", ".")
	expectClean(t, h, res)
	expectOutput(t, h, "42\n")
}

func TestImportResolvesAgainstRoot(t *testing.T) {
	h := newHarness(memFS("project/child.mend", "mut v as 5"))
	res := h.interp.RunSource("import child\nlog v", "project")
	expectClean(t, h, res)
	expectOutput(t, h, "5\n")
}

func TestNestedImportsShareRoot(t *testing.T) {
	files := memFS(
		"a.mend", "import b\nmut fromA as 1",
		"b.mend", "mut fromB as 2",
	)
	h := newHarness(files)
	res := h.interp.RunSource("import a\nlog fromA\nlog fromB", ".")
	expectClean(t, h, res)
	expectOutput(t, h, "1\n2\n")
}

func TestImportErrorIsReportedOnceWithFile(t *testing.T) {
	files := memFS("child.mend", "mut ok as 1\nlog nope")
	h := newHarness(files)
	res := h.interp.RunSource("import child\nlog \"never\"", ".")
	d := expectAbort(t, h, res, diag.NameError, 2, "nope")
	if d.File != "child.mend" {
		t.Fatalf("expected error tagged with child.mend, got %q", d.File)
	}
	if _, ok := res.Scope.Lookup("ok"); ok {
		t.Fatalf("expected failed import to bind nothing")
	}
}

func TestStopInsideImportStillMerges(t *testing.T) {
	h := newHarness(memFS("child.mend", "mut early as 1\nstop\nmut late as 2"))
	res := h.interp.RunSource("import child\nlog early", ".")
	expectClean(t, h, res)
	expectOutput(t, h, "1\n")
	if _, ok := res.Scope.Lookup("late"); ok {
		t.Fatalf("expected statements after stop not to run")
	}
}

func TestImportModeReturnsExports(t *testing.T) {
	h := newHarness(nil)
	res := h.interp.Interpret(Invocation{
		Lines: h.interp.opts.Lexer.LexSource("mut x as 1"),
		Mode:  ModeImport,
	})
	if res.Kind != ResultExports {
		t.Fatalf("expected exports, got %s", res.Kind)
	}
	if v := lookup(t, res.Scope, "x"); !runtime.Equal(v, runtime.IntValue{Val: 1}) {
		t.Fatalf("unexpected export %s", runtime.Format(v))
	}
}

func TestRepeatedImportUsesLexCache(t *testing.T) {
	h := newHarness(memFS("tick.mend", "log \"tick\""))
	res := h.interp.RunSource("repeat 3\nimport tick\nend", ".")
	expectClean(t, h, res)
	expectOutput(t, h, "tick\ntick\ntick\n")
	if hits := h.interp.opts.Lexer.Hits(); hits < 2 {
		t.Fatalf("expected cached lexing on repeat imports, got %d hits", hits)
	}
}
