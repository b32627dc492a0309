package fix

import (
	"logport/internal/diag"
	"logport/internal/source"
)

// Option mutates fix during construction.
type Option func(*diag.Fix)

// WithApplicability overrides applicability metadata.
func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) {
		f.Applicability = app
	}
}

func applyOptions(f *diag.Fix, opts []Option) *diag.Fix {
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// ReplaceSpan replaces text covered by span with newText. expect guards the edit.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) *diag.Fix {
	fix := &diag.Fix{
		Title:         title,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits: []diag.TextEdit{{
			Span:    span,
			NewText: newText,
			OldText: expect,
		}},
	}
	return applyOptions(fix, opts)
}

// ReplaceSpans groups several edits of one file into a single fix.
func ReplaceSpans(title string, edits []diag.TextEdit, opts ...Option) *diag.Fix {
	copied := make([]diag.TextEdit, len(edits))
	for i, e := range edits {
		copied[i] = copyEdit(e)
	}
	fix := &diag.Fix{
		Title:         title,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         copied,
	}
	return applyOptions(fix, opts)
}
