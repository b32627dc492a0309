package diagfmt

import (
	"encoding/json"
	"io"
	"sort"

	"logport/internal/diag"
	"logport/internal/source"
)

// LocationJSON is a span; line/col fields are set only with IncludePositions.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixEditJSON is one replacement. Before/after lines need IncludePreviews.
type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

type FixJSON struct {
	Title         string        `json:"title"`
	Applicability string        `json:"applicability"`
	Edits         []FixEditJSON `json:"edits,omitempty"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// CountsJSON counts every diagnostic in the bag, including truncated ones.
type CountsJSON struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// DiagnosticsOutput is the document written by JSON.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Truncated   int              `json:"truncated,omitempty"`
	Counts      CountsJSON       `json:"counts"`
}

type jsonBuilder struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (b jsonBuilder) location(span source.Span) LocationJSON {
	f := b.fs.Get(span.File)
	if f == nil {
		return LocationJSON{File: "<unknown>", StartByte: span.Start, EndByte: span.End}
	}
	loc := LocationJSON{
		File:      formatPath(b.fs, f, b.opts.PathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if b.opts.IncludePositions {
		start, end := b.fs.Resolve(span)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

func (b jsonBuilder) diagnostic(d *diag.Diagnostic) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Message:  d.Message,
		Location: b.location(d.Primary),
	}
	if b.opts.IncludeNotes && len(d.Notes) > 0 {
		out.Notes = make([]NoteJSON, len(d.Notes))
		for i, n := range d.Notes {
			out.Notes[i] = NoteJSON{Message: n.Msg, Location: b.location(n.Span)}
		}
	}
	if b.opts.IncludeFixes && len(d.Fixes) > 0 {
		out.Fixes = b.fixes(d.Fixes)
	}
	return out
}

// fixes: безопасные правки первыми, затем по заголовку
func (b jsonBuilder) fixes(in []*diag.Fix) []FixJSON {
	sorted := append([]*diag.Fix(nil), in...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Applicability != sorted[j].Applicability {
			return sorted[i].Applicability < sorted[j].Applicability
		}
		return sorted[i].Title < sorted[j].Title
	})

	out := make([]FixJSON, 0, len(sorted))
	for _, f := range sorted {
		fj := FixJSON{Title: f.Title, Applicability: f.Applicability.String()}
		for _, e := range f.Edits {
			fj.Edits = append(fj.Edits, b.edit(e))
		}
		out = append(out, fj)
	}
	return out
}

func (b jsonBuilder) edit(e diag.TextEdit) FixEditJSON {
	out := FixEditJSON{
		Location: b.location(e.Span),
		NewText:  e.NewText,
		OldText:  e.OldText,
	}
	if b.opts.IncludePreviews {
		if pv, err := buildFixEditPreview(b.fs, e); err == nil {
			out.BeforeLines = pv.before
			out.AfterLines = pv.after
		}
	}
	return out
}

// BuildDiagnosticsOutput builds the JSON document without encoding it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) (DiagnosticsOutput, error) {
	items := bag.Items()
	limit := len(items)
	if opts.Max > 0 && opts.Max < limit {
		limit = opts.Max
	}

	b := jsonBuilder{fs: fs, opts: opts}
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, limit)}
	for i, d := range items {
		switch d.Severity {
		case diag.SevError:
			out.Counts.Errors++
		case diag.SevWarning:
			out.Counts.Warnings++
		default:
			out.Counts.Infos++
		}
		if i < limit {
			out.Diagnostics = append(out.Diagnostics, b.diagnostic(d))
		}
	}
	out.Count = len(out.Diagnostics)
	out.Truncated = len(items) - out.Count
	return out, nil
}

// JSON writes the diagnostics as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	output, err := BuildDiagnosticsOutput(bag, fs, opts)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
