package source

import (
	"testing"
)

func TestSpan_Contains(t *testing.T) {
	s := Span{Start: 3, End: 6}
	for off, want := range map[uint32]bool{2: false, 3: true, 5: true, 6: false} {
		if got := s.Contains(off); got != want {
			t.Errorf("Contains(%d) = %v, want %v", off, got, want)
		}
	}
}

func TestSpanOf(t *testing.T) {
	if got := SpanOf(3, 4, 9); got != (Span{File: 3, Start: 4, End: 9}) {
		t.Errorf("SpanOf = %v", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic on negative offset")
		}
	}()
	SpanOf(0, -1, 2)
}
