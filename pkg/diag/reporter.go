package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Reporter receives diagnostics as they are raised.
type Reporter interface {
	Report(d *Diagnostic)
}

// TextReporter writes one line per diagnostic, colouring the severity.
type TextReporter struct {
	w       io.Writer
	errCol  *color.Color
	warnCol *color.Color
}

// NewTextReporter returns a reporter writing to w. Colour follows
// color.NoColor unless disabled here.
func NewTextReporter(w io.Writer, useColor bool) *TextReporter {
	errCol := color.New(color.FgRed, color.Bold)
	warnCol := color.New(color.FgYellow)
	if !useColor {
		errCol.DisableColor()
		warnCol.DisableColor()
	}
	return &TextReporter{w: w, errCol: errCol, warnCol: warnCol}
}

// Report implements Reporter.
func (r *TextReporter) Report(d *Diagnostic) {
	col := r.errCol
	if d.Severity == SeverityWarning {
		col = r.warnCol
	}
	var prefix string
	if d.File != "" {
		prefix = d.File + ": "
	}
	body := d.Message
	if d.Line > 0 {
		body = fmt.Sprintf("%s on line %d", d.Message, d.Line)
	}
	fmt.Fprintf(r.w, "%s%s %s\n", prefix, col.Sprint(d.Severity.String()+":"), body)
}

// Collector keeps every diagnostic in order.
type Collector struct {
	Diagnostics []*Diagnostic
}

// Report implements Reporter.
func (c *Collector) Report(d *Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// Errors returns the fatal diagnostics.
func (c *Collector) Errors() []*Diagnostic {
	return c.filter(SeverityError)
}

// Warnings returns the warnings.
func (c *Collector) Warnings() []*Diagnostic {
	return c.filter(SeverityWarning)
}

func (c *Collector) filter(sev Severity) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range c.Diagnostics {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// String joins the diagnostics one per line.
func (c *Collector) String() string {
	lines := make([]string, len(c.Diagnostics))
	for i, d := range c.Diagnostics {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}
