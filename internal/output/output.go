// Package output provides context-aware output for studeval.
// Stdout is used for primary data output (tables, reports, paths).
// Stderr (via log package) is used for diagnostics.
package output

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"
)

type ctxKey struct{}

// Printer writes primary output. Styled text is downsampled to what the
// destination supports, so piping a table into a file yields plain text.
type Printer struct {
	w io.Writer
}

// New creates a Printer writing to w with colors adapted to environ.
func New(w io.Writer, environ []string) *Printer {
	return &Printer{w: colorprofile.NewWriter(w, environ)}
}

// Plain creates a Printer that passes text through unchanged.
func Plain(w io.Writer) *Printer {
	return &Printer{w: w}
}

// WithPrinter attaches a Printer to the context.
func WithPrinter(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext retrieves the Printer from context.
// Returns a Printer on os.Stdout if none is attached.
func FromContext(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout, os.Environ())
}

// Print writes output without a newline.
func (p *Printer) Print(a ...any) {
	fmt.Fprint(p.w, a...)
}

// Printf writes formatted output.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

// Println writes a line of output.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Profile returns the color profile output is downsampled to, or
// colorprofile.TrueColor for a plain printer.
func (p *Printer) Profile() colorprofile.Profile {
	if cw, ok := p.w.(*colorprofile.Writer); ok {
		return cw.Profile
	}
	return colorprofile.TrueColor
}
