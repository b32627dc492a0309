package diag

import (
	"testing"

	"logport/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	audio := fs.Add("/workspace/lib/sound/audio.cpp", []byte("a\nb\n"), 0)
	track := fs.Add("/workspace/lib/sound/track.cpp", []byte("x\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevWarning,
			Code:     LogTooManyArguments,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: audio, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: audio, Start: 2, End: 3}, Msg: "extra argument"},
			},
		},
		{
			Severity: SevError,
			Code:     LogUnterminatedSpan,
			Message:  "another",
			Primary:  source.Span{File: track, Start: 0, End: 1},
		},
	}

	expected := "warning LOG1002 audio.cpp:1:1 first line second\n" +
		"note LOG1002 audio.cpp:2:1 extra argument\n" +
		"error LOG1001 track.cpp:1:1 another"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatShortDiagnosticsRelative(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")
	id := fs.Add("/workspace/src/hci.cpp", []byte("debug(LOG_ERROR, \"%s\");\n"), 0)

	diags := []*Diagnostic{NewError(LogTooFewArguments, source.Span{File: id, Start: 0, End: 24}, "1 placeholder, 0 arguments")}

	want := "error LOG1003 src/hci.cpp:1:1 1 placeholder, 0 arguments"
	if got := FormatShortDiagnostics(diags, fs, false); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatLinesWithFixes(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")
	src := "x;\ndebug(LOG_INFO, \"%s\", s);\n"
	id := fs.Add("/workspace/a.cpp", []byte(src), 0)
	call := source.Span{File: id, Start: 3, End: 27}

	d := New(SevInfo, RwRewritten, call, "call can be rewritten")
	d.Fixes = []*Fix{{
		Title: "rewrite",
		Edits: []TextEdit{{Span: call, NewText: "LOG(INFO) << s", OldText: src[3:27]}},
	}}

	want := "info RW2001 a.cpp:2:1 call can be rewritten\n" +
		"fix RW2001 a.cpp:2:1 \"LOG(INFO) << s\""
	got := FormatLines([]*Diagnostic{d}, fs, LineOptions{PathMode: "relative", IncludeFixes: true})
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}
