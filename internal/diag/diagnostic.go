package diag

import (
	"logport/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit replaces Span in the original file content with NewText.
// OldText, when set, guards the edit: the spanned text must match it.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// FixApplicability tells how confident the producer is that a fix is correct.
type FixApplicability uint8

const (
	FixApplicabilityAlwaysSafe FixApplicability = iota
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}

type Fix struct {
	Title         string
	Applicability FixApplicability
	Edits         []TextEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []*Fix
}
