package testkit

import (
	"strings"
	"testing"

	"logport/internal/diag"
	"logport/internal/source"
)

func edit(start, end uint32, oldText, newText string) diag.TextEdit {
	return diag.TextEdit{Span: source.Span{Start: start, End: end}, OldText: oldText, NewText: newText}
}

func TestCheckEditInvariants(t *testing.T) {
	original := []byte("aa XX bb YY")
	tests := []struct {
		name    string
		text    string
		edits   []diag.TextEdit
		wantErr string
	}{
		{name: "no edits", text: "aa XX bb YY"},
		{
			name:  "two edits",
			text:  "aa 1 bb 22",
			edits: []diag.TextEdit{edit(3, 5, "XX", "1"), edit(9, 11, "YY", "22")},
		},
		{
			name:    "overlap",
			text:    "",
			edits:   []diag.TextEdit{edit(3, 5, "XX", "1"), edit(4, 6, "X ", "2")},
			wantErr: "overlaps",
		},
		{
			name:    "stale old text",
			text:    "",
			edits:   []diag.TextEdit{edit(0, 2, "zz", "1")},
			wantErr: "does not match",
		},
		{
			name:    "out of range",
			text:    "",
			edits:   []diag.TextEdit{edit(9, 20, "YY", "1")},
			wantErr: "beyond content",
		},
		{
			name:    "wrong result",
			text:    "aa 1 bb YY!",
			edits:   []diag.TextEdit{edit(3, 5, "XX", "1")},
			wantErr: "replayed edits",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckEditInvariants(original, []byte(tt.text), tt.edits)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
