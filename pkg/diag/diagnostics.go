package diag

import (
	"fmt"
	"strings"
)

// Severity separates fatal errors from warnings.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Kind classifies a diagnostic.
type Kind int

const (
	LexicalError Kind = iota
	SyntaxError
	NameError
	ImportError
	ArityError
	RuntimeError
	Warning
)

func (k Kind) String() string {
	switch k {
	case LexicalError:
		return "LexicalError"
	case SyntaxError:
		return "SyntaxError"
	case NameError:
		return "NameError"
	case ImportError:
		return "ImportError"
	case ArityError:
		return "ArityError"
	case RuntimeError:
		return "RuntimeError"
	case Warning:
		return "Warning"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Diagnostic is a line-numbered error or warning. It implements error so
// statement handlers can return it directly.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Line     int
	File     string
	Message  string
}

// Errorf builds an error diagnostic.
func Errorf(kind Kind, line int, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Warnf builds a warning diagnostic.
func Warnf(line int, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityWarning,
		Kind:     Warning,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Fatal reports whether the diagnostic aborts execution.
func (d *Diagnostic) Fatal() bool {
	return d.Severity == SeverityError
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	if d.File != "" {
		b.WriteString(d.File)
		b.WriteString(": ")
	}
	b.WriteString(d.Severity.String())
	b.WriteString(": ")
	b.WriteString(d.Message)
	if d.Line > 0 {
		fmt.Fprintf(&b, " on line %d", d.Line)
	}
	return b.String()
}
