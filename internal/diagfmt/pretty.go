package diagfmt

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"provel/internal/diag"
	"provel/internal/source"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan, color.Bold)
	posColor  = color.New(color.Bold)
)

// Pretty renders diagnostics in human-readable form, one per block:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	    <source line>
//	    ^~~~
//
// The bag is expected to be sorted already.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		prettyOne(w, d, fs, opts)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		anchor(d.Primary, fs, opts),
		severity(d.Severity, opts),
		d.Code, d.Message)
	sourceContext(w, d.Primary, fs, opts)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  note: %s: %s\n", anchor(n.Span, fs, opts), n.Msg)
		}
	}
}

func anchor(sp source.Span, fs *source.FileSet, opts PrettyOpts) string {
	if fs == nil || int(sp.File) >= fs.Len() {
		return sp.String()
	}
	f := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)
	p := f.Path
	if opts.PathMode == PathModeBasename {
		p = path.Base(p)
	}
	text := fmt.Sprintf("%s:%d:%d", p, start.Line, start.Col)
	if opts.Color {
		return posColor.Sprint(text)
	}
	return text
}

func severity(sev diag.Severity, opts PrettyOpts) string {
	if !opts.Color {
		return sev.String()
	}
	switch sev {
	case diag.SevError:
		return errColor.Sprint(sev.String())
	case diag.SevWarning:
		return warnColor.Sprint(sev.String())
	default:
		return infoColor.Sprint(sev.String())
	}
}

// sourceContext prints the first line the span covers plus an underline.
func sourceContext(w io.Writer, sp source.Span, fs *source.FileSet, opts PrettyOpts) {
	if fs == nil || int(sp.File) >= fs.Len() {
		return
	}
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	if opts.Width > 0 {
		line = runewidth.Truncate(line, opts.Width, "…")
	}
	fmt.Fprintf(w, "    %s\n", line)

	// Underline within the first line only.
	prefix := line
	if int(start.Col-1) <= len(line) {
		prefix = line[:start.Col-1]
	}
	pad := runewidth.StringWidth(prefix)
	length := 1
	if end.Line == start.Line && end.Col > start.Col {
		covered := line
		if int(end.Col-1) <= len(line) {
			covered = line[start.Col-1 : end.Col-1]
		}
		if lw := runewidth.StringWidth(covered); lw > 0 {
			length = lw
		}
	}
	marker := "^" + strings.Repeat("~", length-1)
	if opts.Color {
		marker = errColor.Sprint(marker)
	}
	fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", pad), marker)
}
