package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"logport/internal/source"
)

// LineOptions controls FormatLines.
type LineOptions struct {
	// PathMode is passed to source.File.FormatPath: "relative", "basename", ...
	PathMode     string
	IncludeNotes bool
	// IncludeFixes adds a "fix" line per edit with the replacement text quoted.
	IncludeFixes bool
}

type line struct {
	kind string // error, warning, info, note, fix
	code string
	path string
	row  uint32
	col  uint32
	text string
}

// FormatLines renders diagnostics one entry per line, sorted by location:
//
//	warning LOG1002 src/a.cpp:3:5 message
//	note LOG1002 src/a.cpp:3:30 first unconsumed argument
//	fix RW2001 src/a.cpp:7:2 "LOG(INFO) << x;"
//
// The output does not depend on diagnostic order, so it is usable in golden tests.
func FormatLines(diags []*Diagnostic, fs *source.FileSet, opts LineOptions) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	var lines []line
	for _, d := range diags {
		lines = appendLines(lines, d, fs, opts)
	}
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		switch {
		case a.path != b.path:
			return a.path < b.path
		case a.row != b.row:
			return a.row < b.row
		case a.col != b.col:
			return a.col < b.col
		case a.kind != b.kind:
			return kindRank(a.kind) < kindRank(b.kind)
		case a.code != b.code:
			return a.code < b.code
		}
		return a.text < b.text
	})

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", l.kind, l.code, l.path, l.row, l.col, l.text)
	}
	return b.String()
}

// FormatGoldenDiagnostics is FormatLines with base names only, so output
// does not depend on temp directories.
func FormatGoldenDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	return FormatLines(diags, fs, LineOptions{PathMode: "basename", IncludeNotes: includeNotes})
}

// FormatShortDiagnostics is FormatLines with paths relative to the FileSet base.
func FormatShortDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	return FormatLines(diags, fs, LineOptions{PathMode: "relative", IncludeNotes: includeNotes})
}

func appendLines(out []line, d *Diagnostic, fs *source.FileSet, opts LineOptions) []line {
	code := d.Code.ID()
	if l, ok := locate(fs, d.Primary, opts.PathMode); ok {
		l.kind, l.code, l.text = severityLabel(d.Severity), code, oneLine(d.Message)
		out = append(out, l)
	}
	if opts.IncludeNotes {
		for _, n := range d.Notes {
			if l, ok := locate(fs, n.Span, opts.PathMode); ok {
				l.kind, l.code, l.text = "note", code, oneLine(n.Msg)
				out = append(out, l)
			}
		}
	}
	if opts.IncludeFixes {
		for _, f := range d.Fixes {
			for _, e := range f.Edits {
				if l, ok := locate(fs, e.Span, opts.PathMode); ok {
					l.kind, l.code, l.text = "fix", code, strconv.Quote(e.NewText)
					out = append(out, l)
				}
			}
		}
	}
	return out
}

func locate(fs *source.FileSet, span source.Span, pathMode string) (line, bool) {
	file := fs.Get(span.File)
	if file == nil {
		return line{}, false
	}
	start, _ := fs.Resolve(span)
	return line{
		path: trimDotSlash(file.FormatPath(pathMode, fs.BaseDir())),
		row:  start.Line,
		col:  start.Col,
	}, true
}

func trimDotSlash(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

// kindRank: сначала сама диагностика, потом заметки и правки
func kindRank(kind string) int {
	switch kind {
	case "error":
		return 0
	case "warning":
		return 1
	case "info":
		return 2
	case "note":
		return 3
	default:
		return 4
	}
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func oneLine(msg string) string {
	msg = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(msg)
	return strings.TrimSpace(msg)
}
