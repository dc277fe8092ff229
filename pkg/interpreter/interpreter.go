package interpreter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/voidwyrm-2/Mend/pkg/diag"
	"github.com/voidwyrm-2/Mend/pkg/lexer"
	"github.com/voidwyrm-2/Mend/pkg/runtime"
	"github.com/voidwyrm-2/Mend/pkg/token"
)

// DefaultMaxDepth bounds nested invocations (calls, loop bodies, imports).
const DefaultMaxDepth = 10000

// Options wires the interpreter's collaborators. Zero fields take the
// defaults listed in New.
type Options struct {
	Input    InputProvider
	Files    Filesystem
	Output   io.Writer
	Reporter diag.Reporter
	Trace    io.Writer
	TraceAll bool
	MaxDepth int
	Lexer    *lexer.Cache
}

// Interpreter executes Mend token-lines. It holds no bindings of its own;
// every invocation owns a fresh scope.
type Interpreter struct {
	opts Options
}

// New returns an interpreter. Defaults: stdin input, host filesystem,
// stdout output, coloured diagnostics and traces on stderr.
func New(opts Options) *Interpreter {
	if opts.Input == nil {
		opts.Input = NewReaderInput(os.Stdin)
	}
	if opts.Files == nil {
		opts.Files = OSFilesystem{}
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Reporter == nil {
		opts.Reporter = diag.NewTextReporter(os.Stderr, true)
	}
	if opts.Trace == nil {
		opts.Trace = os.Stderr
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Lexer == nil {
		opts.Lexer = lexer.NewCache()
	}
	return &Interpreter{opts: opts}
}

// Mode says what kind of sub-invocation is running.
type Mode int

const (
	ModeScript Mode = iota
	ModeFunction
	ModeImport
	ModeBlock
	ModeContainer
)

func (m Mode) String() string {
	switch m {
	case ModeScript:
		return "script"
	case ModeFunction:
		return "function"
	case ModeImport:
		return "import"
	case ModeBlock:
		return "block"
	case ModeContainer:
		return "container"
	default:
		return fmt.Sprintf("unknown_mode_%d", int(m))
	}
}

// Argument is a value injected as a fresh variable binding.
type Argument struct {
	Name  string
	Value runtime.Value
}

// Invocation describes one run of the interpreter over a token-line slice.
type Invocation struct {
	Lines []token.Line
	Mode  Mode
	Args  []Argument
	// Root is the folder imports resolve against.
	Root  string
	// File names the source in diagnostics; empty for the entry script.
	File  string
	// Scope seeds the invocation's bindings; nil starts empty.
	Scope *runtime.Scope

	inFunction bool
	depth      int
}

// ResultKind tags how an invocation ended.
type ResultKind int

const (
	ResultNull ResultKind = iota
	ResultStop
	ResultAbort
	ResultReturn
	ResultExports
)

func (k ResultKind) String() string {
	switch k {
	case ResultNull:
		return "null"
	case ResultStop:
		return "stop"
	case ResultAbort:
		return "abort"
	case ResultReturn:
		return "return"
	case ResultExports:
		return "exports"
	default:
		return fmt.Sprintf("unknown_result_%d", int(k))
	}
}

// Result is the tagged outcome of an invocation. Scope always holds the
// invocation's final bindings; Err holds the fatal diagnostic on abort.
type Result struct {
	Kind  ResultKind
	Value runtime.Value
	Scope *runtime.Scope
	Err   *diag.Diagnostic
}

// Failed reports whether the invocation aborted.
func (r Result) Failed() bool {
	return r.Kind == ResultAbort
}

type stopSignal struct{}

func (stopSignal) Error() string { return "stop" }

type returnSignal struct {
	value runtime.Value
}

func (returnSignal) Error() string { return "return" }

// abortSignal unwinds enclosing frames after the cause was reported.
type abortSignal struct {
	cause *diag.Diagnostic
}

func (a abortSignal) Error() string {
	if a.cause == nil {
		return "abort"
	}
	return a.cause.Error()
}

// frame is the state of one invocation.
type frame struct {
	inv   Invocation
	scope *runtime.Scope

	// openIfs holds the line of every `if` still waiting for its `end`.
	openIfs         []int
	pendingSuppress bool
	suppress        bool
	trace           bool
}

func (f *frame) inFunction() bool {
	return f.inv.Mode == ModeFunction || f.inv.inFunction
}

// RunSource lexes src and runs it as a top-level script.
func (i *Interpreter) RunSource(src, root string) Result {
	return i.Interpret(Invocation{
		Lines: i.opts.Lexer.LexSource(src),
		Mode:  ModeScript,
		Root:  root,
	})
}

// RunFile reads path through the configured filesystem and runs it. The
// error is non-nil only when the file cannot be read.
func (i *Interpreter) RunFile(path, root string) (Result, error) {
	data, err := i.opts.Files.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return i.Interpret(Invocation{
		Lines: i.opts.Lexer.LexSource(string(data)),
		Mode:  ModeScript,
		Root:  root,
		File:  path,
	}), nil
}

// Interpret runs one invocation to completion, a return, or a stop/abort
// signal.
func (i *Interpreter) Interpret(inv Invocation) Result {
	scope := inv.Scope
	if scope == nil {
		scope = runtime.NewScope()
	}
	for _, arg := range inv.Args {
		scope.SetVar(arg.Name, runtime.Copy(arg.Value))
	}
	f := &frame{inv: inv, scope: scope}
	err := i.run(f)

	res := Result{Kind: ResultNull, Scope: scope}
	if err == nil {
		if inv.Mode == ModeImport {
			res.Kind = ResultExports
		}
		return res
	}
	var (
		stop  stopSignal
		ret   returnSignal
		abort abortSignal
	)
	switch {
	case errors.As(err, &stop):
		res.Kind = ResultStop
	case errors.As(err, &ret):
		res.Kind = ResultReturn
		res.Value = ret.value
	case errors.As(err, &abort):
		res.Kind = ResultAbort
		res.Err = abort.cause
	default:
		res.Kind = ResultAbort
		res.Err = diag.Errorf(diag.RuntimeError, 0, "%v", err)
		i.opts.Reporter.Report(res.Err)
	}
	return res
}

func (i *Interpreter) run(f *frame) error {
	lines := f.inv.Lines
	for idx := 0; idx < len(lines); {
		line := lines[idx]
		if line.Empty() {
			idx++
			continue
		}
		f.suppress = f.pendingSuppress
		f.pendingSuppress = false

		next, err := i.execLine(f, lines, idx)
		if err != nil {
			var d *diag.Diagnostic
			if errors.As(err, &d) {
				i.raise(f, d)
				return abortSignal{cause: d}
			}
			return err
		}
		idx = next
	}
	if n := len(f.openIfs); n > 0 {
		d := diag.Errorf(diag.SyntaxError, f.openIfs[n-1], "missing 'end' to close 'if'")
		i.raise(f, d)
		return abortSignal{cause: d}
	}
	return nil
}

// execLine validates a line lexically, strips the debug marker and
// dispatches it. It returns the index of the next line to run.
func (i *Interpreter) execLine(f *frame, lines []token.Line, idx int) (int, error) {
	line := lines[idx]
	toks := line.Tokens
	for _, t := range toks {
		if t.Kind == token.ILLEGAL {
			if t.Reason != "" {
				return 0, diag.Errorf(diag.LexicalError, line.Number, "illegal char '%s': %s", t.Text, t.Reason)
			}
			return 0, diag.Errorf(diag.LexicalError, line.Number, "illegal char '%s'", t.Text)
		}
	}
	f.trace = i.opts.TraceAll
	if toks[len(toks)-1].Kind == token.DEBUG {
		toks = toks[:len(toks)-1]
		f.trace = true
	}
	if len(toks) == 0 {
		return idx + 1, nil
	}
	i.tracef(f, line.Number, "%s", render(toks))
	st := &statement{
		toks:  toks,
		line:  line.Number,
		lines: lines,
		idx:   idx,
	}
	return i.dispatch(f, st)
}

// raise reports a fatal diagnostic, tagging it with the current file.
func (i *Interpreter) raise(f *frame, d *diag.Diagnostic) {
	if d.File == "" {
		d.File = f.inv.File
	}
	i.opts.Reporter.Report(d)
}

// warn reports a warning unless the statement runs under @ignorewarning.
func (i *Interpreter) warn(f *frame, d *diag.Diagnostic) {
	if f.suppress {
		i.tracef(f, d.Line, "suppressed warning: %s", d.Message)
		return
	}
	if d.File == "" {
		d.File = f.inv.File
	}
	i.opts.Reporter.Report(d)
}

func (i *Interpreter) tracef(f *frame, line int, format string, args ...any) {
	if !f.trace || i.opts.Trace == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if f.inv.File != "" {
		fmt.Fprintf(i.opts.Trace, "trace: %s: line %d: %s\n", f.inv.File, line, msg)
		return
	}
	fmt.Fprintf(i.opts.Trace, "trace: line %d: %s\n", line, msg)
}

// child runs a nested invocation that inherits root, file and depth.
func (i *Interpreter) child(f *frame, line int, inv Invocation) (Result, error) {
	inv.depth = f.inv.depth + 1
	if inv.depth > i.opts.MaxDepth {
		return Result{}, diag.Errorf(diag.RuntimeError, line, "maximum nesting depth of %d exceeded", i.opts.MaxDepth)
	}
	if inv.Root == "" {
		inv.Root = f.inv.Root
	}
	return i.Interpret(inv), nil
}
