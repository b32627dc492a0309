package testkit

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"

	"logport/internal/diag"
)

// CheckEditInvariants verifies a rewrite result against its input:
// 1) edits are sorted, non-empty and do not overlap
// 2) every edit lies within original and OldText matches the bytes it covers
// 3) applying the edits to original yields exactly text
func CheckEditInvariants(original, text []byte, edits []diag.TextEdit) error {
	lenOriginal, err := safecast.Conv[uint32](len(original))
	if err != nil {
		return fmt.Errorf("len original overflow: %w", err)
	}

	var out bytes.Buffer
	var prevEnd uint32
	for i, e := range edits {
		// 1) порядок и непересечение
		if e.Span.End <= e.Span.Start {
			return fmt.Errorf("edit %d: empty span %v", i, e.Span)
		}
		if i > 0 && e.Span.Start < prevEnd {
			return fmt.Errorf("edit %d: span %v overlaps previous edit ending at %d", i, e.Span, prevEnd)
		}

		// 2) границы и OldText
		if e.Span.End > lenOriginal {
			return fmt.Errorf("edit %d: span end beyond content: %d > %d", i, e.Span.End, lenOriginal)
		}
		covered := original[e.Span.Start:e.Span.End]
		if string(covered) != e.OldText {
			return fmt.Errorf("edit %d: old text %q does not match %q", i, e.OldText, covered)
		}

		out.Write(original[prevEnd:e.Span.Start])
		out.WriteString(e.NewText)
		prevEnd = e.Span.End
	}
	out.Write(original[prevEnd:])

	// 3) результат воспроизводим
	if !bytes.Equal(out.Bytes(), text) {
		return fmt.Errorf("replayed edits give %q, want %q", out.Bytes(), text)
	}
	return nil
}
