package rewrite

import (
	"logport/internal/diag"
	"logport/internal/source"
)

// Status is the fate of one call site.
type Status uint8

const (
	StatusSpliced Status = iota
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusSpliced:
		return "spliced"
	case StatusSkipped:
		return "skipped"
	}
	return "unknown"
}

// Outcome describes one call site. Span is in original file coordinates.
type Outcome struct {
	Span         source.Span
	Status       Status
	Reason       diag.Code // zero for spliced calls
	Level        string
	Replacement  string // empty when the call could not be built
	Placeholders int
	Arguments    int // substitution arguments after the format
}

// Result is the rewritten text of one file plus what happened to every call site.
type Result struct {
	File  source.FileID
	Text  []byte
	Calls []Outcome
	// Edits reproduce Text from the original content; spans are original coordinates.
	Edits []diag.TextEdit
}

// Changed reports whether at least one call was spliced.
func (r *Result) Changed() bool {
	return len(r.Edits) > 0
}

func (r *Result) Rewritten() int {
	return r.count(StatusSpliced)
}

func (r *Result) Skipped() int {
	return r.count(StatusSkipped)
}

func (r *Result) count(s Status) int {
	n := 0
	for i := range r.Calls {
		if r.Calls[i].Status == s {
			n++
		}
	}
	return n
}
