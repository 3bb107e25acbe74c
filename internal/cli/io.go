package cli

import (
	"fmt"
	"io"
)

// IO handles command output. Warnings go to stderr immediately so every
// skipped or dropped row appears in run output even when stdout is piped
// elsewhere; the report itself goes to stdout.
type IO struct {
	out    io.Writer
	errOut io.Writer
	warned int
}

// NewIO creates a new IO instance.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Out returns the stdout writer, for renderers that take an io.Writer.
func (o *IO) Out() io.Writer {
	return o.out
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Warnf reports a recovered problem (a skipped row, a dropped duplicate)
// on stderr. Warnings never abort the run and never change the exit
// code; they exist so nothing is skipped silently.
func (o *IO) Warnf(format string, a ...any) {
	o.warned++

	_, _ = fmt.Fprintf(o.errOut, "warning: "+format+"\n", a...)
}

// WarnCount returns how many warnings were reported.
func (o *IO) WarnCount() int {
	return o.warned
}
