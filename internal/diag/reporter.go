package diag

import "logport/internal/source"

// Reporter receives diagnostics from the rewriter. d is handed over and not
// touched again by the caller.
type Reporter interface {
	Report(d *Diagnostic)
}

// BagReporter stores diagnostics in a Bag; overflow is dropped by the Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d *Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(*Diagnostic) {}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d *Diagnostic)

func (f ReporterFunc) Report(d *Diagnostic) { f(d) }

// ReportBuilder accumulates notes and fixes, then emits once.
type ReportBuilder struct {
	reporter Reporter
	diag     *Diagnostic
}

// NewReportBuilder starts a diagnostic bound to r.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: New(sev, code, primary, msg)}
}

// ReportError is NewReportBuilder with SevError.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

// ReportWarning is NewReportBuilder with SevWarning.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b == nil || b.diag == nil {
		return b
	}
	b.diag.WithNote(sp, msg)
	return b
}

func (b *ReportBuilder) WithFix(title string, app FixApplicability, edits ...TextEdit) *ReportBuilder {
	if b == nil || b.diag == nil {
		return b
	}
	b.diag.WithFix(title, app, edits...)
	return b
}

// Emit hands the diagnostic over; later calls are no-ops.
func (b *ReportBuilder) Emit() {
	if b == nil || b.diag == nil {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
	b.diag = nil
}
