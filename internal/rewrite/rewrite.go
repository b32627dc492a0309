// Package rewrite turns legacy `debug(LOG_LEVEL, "fmt", args...)` calls into
// stream logging `LOG(LEVEL) << "lit" << arg` within one file's text.
//
// The rewriter is purely textual: it finds the keyword, enumerates the call's
// arguments with package callsite, expands the format with package placeholder
// and splices the result in place. Calls it cannot rewrite faithfully are left
// untouched and reported; the scan always continues with the next call.
package rewrite

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"logport/internal/callsite"
	"logport/internal/diag"
	"logport/internal/placeholder"
	"logport/internal/source"
)

// Rewrite scans file.Content and returns the rewritten text. file.Content is
// not modified. Problems are reported to r; r may be nil.
func Rewrite(file *source.File, rules Rules, r diag.Reporter) Result {
	if r == nil {
		r = diag.NopReporter{}
	}
	w := &rewriter{
		file:   file,
		rules:  rules,
		rep:    r,
		buf:    file.Content,
		needle: []byte(rules.needle()),
	}
	w.run()
	return Result{
		File:  file.ID,
		Text:  w.buf,
		Calls: w.calls,
		Edits: w.edits,
	}
}

// RewriteBytes is Rewrite for text that does not belong to a FileSet.
func RewriteBytes(text []byte, rules Rules) Result {
	f := &source.File{Path: "<bytes>", Content: text, Flags: source.FileVirtual}
	return Rewrite(f, rules, nil)
}

type rewriter struct {
	file   *source.File
	rules  Rules
	rep    diag.Reporter
	needle []byte

	buf   []byte
	delta int // len(buf) - len(original) for everything before the cursor
	calls []Outcome
	edits []diag.TextEdit
}

// failure aborts one call site.
type failure struct {
	code    diag.Code
	msg     string
	notes   []diag.Note
	fix     string // replacement offered for manual review
	restart int    // cursor after the skip
}

func (w *rewriter) run() {
	cursor := 0
	for cursor < len(w.buf) {
		idx := bytes.Index(w.buf[cursor:], w.needle)
		if idx < 0 {
			return
		}
		start := cursor + idx
		if !w.atBoundary(start) {
			cursor = start + 1
			continue
		}
		cursor = w.call(start)
	}
}

// atBoundary rejects matches that are the tail of a longer identifier (mydebug().
func (w *rewriter) atBoundary(start int) bool {
	if start == 0 || !isIdent(w.rules.Keyword[0]) {
		return true
	}
	return !isIdent(w.buf[start-1])
}

// call rewrites the call starting at start and returns the next cursor.
func (w *rewriter) call(start int) int {
	open := start + len(w.rules.Keyword) - 1
	out := Outcome{}

	end, repl, fail := w.build(start, open, &out)
	if fail != nil {
		w.skip(start, end, &out, fail)
		return fail.restart
	}

	out.Status = StatusSpliced
	out.Replacement = repl
	out.Span = w.span(start, end)
	w.calls = append(w.calls, out)
	w.edits = append(w.edits, diag.TextEdit{
		Span:    out.Span,
		NewText: repl,
		OldText: string(w.buf[start:end]),
	})

	next := make([]byte, 0, len(w.buf)-(end-start)+len(repl))
	next = append(next, w.buf[:start]...)
	next = append(next, repl...)
	next = append(next, w.buf[end:]...)
	w.buf = next
	w.delta += len(repl) - (end - start)

	return start + len(repl)
}

// build produces the replacement for the call at start. end is the offset just
// past the closing parenthesis when it is known, else the end of the keyword.
func (w *rewriter) build(start, open int, out *Outcome) (end int, repl string, fail *failure) {
	end = start + len(w.needle)
	args := callsite.NewArgs(w.buf, open)

	levelItem, err := args.Next()
	if err != nil {
		return end, "", w.unterminated(start, err)
	}
	level := strings.TrimSpace(string(levelItem.Span.Text(w.buf)))
	level = strings.TrimPrefix(level, w.rules.LevelPrefix)
	out.Level = level

	formatItem, err := args.Next()
	if err != nil {
		return end, "", w.unterminated(start, err)
	}
	if formatItem.Final {
		end = formatItem.Span.End
		return end, "", &failure{
			code:    diag.LogMissingFormat,
			msg:     fmt.Sprintf("call to %s has no format argument", strings.TrimSuffix(w.rules.Keyword, "(")),
			restart: end,
		}
	}

	var head strings.Builder
	head.WriteString("LOG(")
	if knownSeverity(level) {
		head.WriteString(level)
		head.WriteString(") << ")
	} else {
		// неизвестный уровень сохраняем литералом, чтобы ничего не потерять
		head.WriteString(defaultSeverity)
		head.WriteString(`) << "`)
		head.WriteString(quote(level))
		head.WriteString(`:" << `)
	}

	sub, err := placeholder.Substitute(w.buf, formatItem.Span, args, placeholder.Options{
		TrimArgs: w.rules.TrimArgs,
		Tidy:     w.rules.Tidy,
	})
	out.Placeholders = sub.Count
	out.Arguments = sub.Count
	switch {
	case errors.Is(err, placeholder.ErrTooFewArguments):
		// Args уже отдал финальный элемент; конец вызова берём из повторного прохода.
		end = w.callEnd(open, end)
		want := placeholder.Count(formatItem.Span.Text(w.buf))
		out.Placeholders = want
		return end, "", &failure{
			code: diag.LogTooFewArguments,
			msg:  fmt.Sprintf("format has %d placeholder(s) but the call passes %d argument(s)", want, sub.Count),
			notes: []diag.Note{{
				Span: w.span(sub.Missing, sub.Missing+placeholder.Match(w.buf, sub.Missing)),
				Msg:  "placeholder without an argument",
			}},
			restart: end,
		}
	case errors.Is(err, placeholder.ErrEmptyArgument):
		end = w.callEnd(open, end)
		out.Placeholders = placeholder.Count(formatItem.Span.Text(w.buf))
		return end, "", &failure{
			code: diag.LogEmptyArgument,
			msg:  fmt.Sprintf("argument %d is empty", sub.Count+1),
			notes: []diag.Note{{
				Span: w.span(sub.Blank-1, sub.Blank),
				Msg:  "blank argument after this comma",
			}},
			restart: end,
		}
	case err != nil:
		return end, "", w.unterminated(start, err)
	}
	head.WriteString(sub.Text)
	repl = head.String()

	extra, final, err := args.Rest()
	if err != nil {
		return end, repl, w.unterminated(start, err)
	}
	end = final.Span.End
	if len(extra) > 0 {
		out.Arguments += len(extra)
		return end, repl, &failure{
			code: diag.LogTooManyArguments,
			msg: fmt.Sprintf("format has %d placeholder(s) but the call passes %d argument(s)",
				sub.Count, sub.Count+len(extra)),
			notes: []diag.Note{{
				Span: w.span(extra[0].Start, extra[0].End),
				Msg:  "first unconsumed argument",
			}},
			fix:     repl,
			restart: end,
		}
	}
	return end, repl, nil
}

// callEnd re-enumerates the call to find the offset past its closing parenthesis.
func (w *rewriter) callEnd(open, fallback int) int {
	_, final, err := callsite.NewArgs(w.buf, open).Rest()
	if err != nil {
		return fallback
	}
	return final.Span.End
}

func (w *rewriter) unterminated(start int, err error) *failure {
	return &failure{
		code:    diag.LogUnterminatedSpan,
		msg:     fmt.Sprintf("argument list is never closed: %v", err),
		restart: start + len(w.needle),
	}
}

func (w *rewriter) skip(start, end int, out *Outcome, f *failure) {
	out.Status = StatusSkipped
	out.Reason = f.code
	out.Replacement = f.fix
	out.Span = w.span(start, end)
	w.calls = append(w.calls, *out)

	sev := diag.SevWarning
	if f.code == diag.LogUnterminatedSpan {
		sev = diag.SevError
	}
	b := diag.NewReportBuilder(w.rep, sev, f.code, out.Span, f.msg)
	for _, n := range f.notes {
		b.WithNote(n.Span, n.Msg)
	}
	if f.fix != "" {
		b.WithFix("rewrite ignoring unconsumed arguments", diag.FixApplicabilityManualReview, diag.TextEdit{
			Span:    out.Span,
			NewText: f.fix,
			OldText: string(w.buf[start:end]),
		})
	}
	b.Emit()
}

// span maps offsets of the current buffer back to the original content.
// Every committed splice lies before start, so a single delta is enough.
func (w *rewriter) span(start, end int) source.Span {
	return source.SpanOf(w.file.ID, start-w.delta, end-w.delta)
}

func quote(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isIdent(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
