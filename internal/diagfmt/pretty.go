package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"logport/internal/diag"
	"logport/internal/source"
)

type palette struct {
	path    func(a ...interface{}) string
	err     func(a ...interface{}) string
	warn    func(a ...interface{}) string
	info    func(a ...interface{}) string
	gutter  func(a ...interface{}) string
	caret   func(a ...interface{}) string
	removed func(a ...interface{}) string
	added   func(a ...interface{}) string
}

func paint(enabled bool, attrs ...color.Attribute) func(a ...interface{}) string {
	c := color.New(attrs...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.SprintFunc()
}

func newPalette(enabled bool) palette {
	return palette{
		path:    paint(enabled, color.Bold),
		err:     paint(enabled, color.FgRed, color.Bold),
		warn:    paint(enabled, color.FgYellow, color.Bold),
		info:    paint(enabled, color.FgCyan, color.Bold),
		gutter:  paint(enabled, color.FgBlue),
		caret:   paint(enabled, color.FgGreen, color.Bold),
		removed: paint(enabled, color.FgRed),
		added:   paint(enabled, color.FgGreen),
	}
}

func (p palette) severity(sev diag.Severity) func(a ...interface{}) string {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		sev := p.severity(d.Severity)
		fmt.Fprintf(w, "%s: %s: %s\n",
			p.path(location(fs, d.Primary, opts.PathMode)),
			sev(d.Severity.String()+" "+d.Code.ID()),
			d.Message,
		)
		printSnippet(w, fs, d.Primary, p, opts.Context)

		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  %s %s: %s\n", p.info("note:"), location(fs, n.Span, opts.PathMode), n.Msg)
			}
		}
		if opts.ShowFixes {
			for k, f := range d.Fixes {
				printFix(w, fs, k+1, f, p, opts.ShowPreview)
			}
		}
	}
}

func printFix(w io.Writer, fs *source.FileSet, n int, f *diag.Fix, p palette, preview bool) {
	fmt.Fprintf(w, "  fix #%d: %s (%s)\n", n, f.Title, f.Applicability)
	for _, e := range f.Edits {
		fmt.Fprintf(w, "    apply=%s\n", strconv.Quote(e.NewText))
		if !preview {
			continue
		}
		pv, err := buildFixEditPreview(fs, e)
		if err != nil {
			continue
		}
		fmt.Fprintln(w, "    preview:")
		for _, line := range pv.before {
			fmt.Fprintf(w, "      %s\n", p.removed("- "+line))
		}
		for _, line := range pv.after {
			fmt.Fprintf(w, "      %s\n", p.added("+ "+line))
		}
	}
}

func location(fs *source.FileSet, span source.Span, mode PathMode) string {
	f := fs.Get(span.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs, f, mode), start.Line, start.Col)
}

func printSnippet(w io.Writer, fs *source.FileSet, span source.Span, p palette, context int8) {
	f := fs.Get(span.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(span)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}

	first := start.Line
	if context > 0 {
		first = uint32(max(1, int(start.Line)-int(context)))
	}
	width := len(strconv.Itoa(int(start.Line)))

	for l := first; l < start.Line; l++ {
		fmt.Fprintf(w, "%s %s\n", p.gutter(fmt.Sprintf("%*d |", width, l)), f.GetLine(l))
	}
	fmt.Fprintf(w, "%s %s\n", p.gutter(fmt.Sprintf("%*d |", width, start.Line)), line)

	from := min(int(start.Col)-1, len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(max(int(end.Col)-1, from), len(line))
	}
	marks := runewidth.StringWidth(line[from:to])
	if marks < 1 {
		marks = 1
	}
	underline := "^" + strings.Repeat("~", marks-1)
	fmt.Fprintf(w, "%s %s%s\n", p.gutter(fmt.Sprintf("%*s |", width, "")), padFor(line[:from]), p.caret(underline))
}

// padFor returns blanks as wide as prefix, keeping tabs so the caret lines up.
func padFor(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}
