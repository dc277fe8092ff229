package interpreter

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voidwyrm-2/Mend/pkg/diag"
)

func TestReaderInputLines(t *testing.T) {
	in := NewReaderInput(strings.NewReader("first\r\nsecond\nlast"))
	for _, want := range []string{"first", "second", "last"} {
		got, err := in.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
	if _, err := in.ReadLine(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestQueueInputOrder(t *testing.T) {
	q := NewQueueInput("a", "b")
	q.Push("c")
	if q.Len() != 3 {
		t.Fatalf("expected 3 queued lines, got %d", q.Len())
	}
	for _, want := range []string{"a", "b", "c"} {
		got, err := q.ReadLine()
		if err != nil || got != want {
			t.Fatalf("expected %q, got %q %v", want, got, err)
		}
	}
	if _, err := q.ReadLine(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestOSFilesystemImport(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "lib.mend"), []byte("immut greeting as \"hi\""), 0o644); err != nil {
		t.Fatalf("write lib: %v", err)
	}
	if err := os.Mkdir(filepath.Join(root, "dir.mend"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	h := newHarness(nil)
	res := h.interp.RunSource("import lib\nlog greeting", root)
	expectClean(t, h, res)
	expectOutput(t, h, "hi\n")

	h = newHarness(nil)
	res = h.interp.RunSource("import dir", root)
	expectAbort(t, h, res, diag.ImportError, 1, "wrong path type")
}
