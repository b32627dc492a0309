package diag

import (
	"testing"

	"logport/internal/source"
)

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]Severity{"info": SevInfo, "WARNING": SevWarning, " warn ": SevWarning, "Error": SevError} {
		got, err := ParseSeverity(in)
		if err != nil || got != want {
			t.Errorf("ParseSeverity(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Error("ParseSeverity accepted fatal")
	}
}

func TestAtLeastFilter(t *testing.T) {
	bag := NewBag(10)
	bag.Add(New(SevInfo, RwRewritten, source.Span{}, "info"))
	bag.Add(New(SevWarning, LogTooManyArguments, source.Span{}, "warn"))
	bag.Add(NewError(IOWriteError, source.Span{}, "err"))

	bag.Filter(AtLeast(SevWarning))
	if bag.Len() != 2 || bag.Count(RwRewritten) != 0 {
		t.Fatalf("filter kept %d items", bag.Len())
	}
}
