package fix

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"logport/internal/diag"
	"logport/internal/source"
)

func edit(file source.FileID, content, old, repl string) diag.TextEdit {
	i := strings.Index(content, old)
	return diag.TextEdit{
		Span:    source.SpanOf(file, i, i+len(old)),
		NewText: repl,
		OldText: old,
	}
}

func TestReplay(t *testing.T) {
	content := "abc def ghi"
	edits := []diag.TextEdit{
		edit(0, content, "def", "XY"),
		edit(0, content, "abc", "1"),
		edit(0, content, "ghi", "longer text"),
	}
	out, err := Replay([]byte(content), edits)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(out); got != "1 XY longer text" {
		t.Fatalf("Replay = %q", got)
	}
}

func TestReplayErrors(t *testing.T) {
	content := []byte("abc def ghi")
	tests := []struct {
		name  string
		edits []diag.TextEdit
		want  string
	}{
		{
			name: "overlap",
			edits: []diag.TextEdit{
				{Span: source.Span{Start: 0, End: 5}, NewText: "x"},
				{Span: source.Span{Start: 4, End: 7}, NewText: "y"},
			},
			want: "overlaps",
		},
		{
			name:  "guard mismatch",
			edits: []diag.TextEdit{{Span: source.Span{Start: 0, End: 3}, NewText: "x", OldText: "abd"}},
			want:  "does not match",
		},
		{
			name:  "out of range",
			edits: []diag.TextEdit{{Span: source.Span{Start: 5, End: 40}, NewText: "x"}},
			want:  "out of range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Replay(content, tt.edits)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func loadTemp(t *testing.T, name string, raw []byte, mode os.FileMode) (*source.FileSet, source.FileID, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, raw, mode); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return fs, id, path
}

func TestApplyWritesFile(t *testing.T) {
	content := "debug(LOG_INFO, \"x\");\n"
	fs, id, path := loadTemp(t, "a.cpp", []byte(content), 0o600)

	e := edit(id, content, `debug(LOG_INFO, "x")`, `LOG(INFO) << "x"`)
	res, err := Apply(fs, []Change{{File: id, Edits: []diag.TextEdit{e}, Want: []byte("LOG(INFO) << \"x\";\n")}}, Options{Backup: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Changes) != 1 || len(res.Skipped) != 0 {
		t.Fatalf("result = %+v", res)
	}
	fc := res.Changes[0]
	if !fc.Written || fc.Path != "a.cpp" || fc.EditCount != 1 {
		t.Fatalf("change = %+v", fc)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "LOG(INFO) << \"x\";\n" {
		t.Fatalf("file = %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}

	orig, err := os.ReadFile(path + DefaultBackupSuffix)
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(orig) != content || fc.Backup != path+DefaultBackupSuffix {
		t.Fatalf("backup = %q (%s)", orig, fc.Backup)
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".*tmp-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestApplyRestoresBOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, "old();\n"...)
	fs, id, path := loadTemp(t, "bom.cpp", raw, 0o644)

	e := edit(id, "old();\n", "old", "brand_new")
	if _, err := Apply(fs, []Change{{File: id, Edits: []diag.TextEdit{e}}}, Options{}); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := append([]byte{0xEF, 0xBB, 0xBF}, "brand_new();\n"...)
	if !bytes.Equal(got, want) {
		t.Fatalf("file = %q", got)
	}
}

func TestApplyDryRun(t *testing.T) {
	content := "old();\n"
	fs, id, path := loadTemp(t, "a.cpp", []byte(content), 0o644)

	e := edit(id, content, "old", "new")
	res, err := Apply(fs, []Change{{File: id, Edits: []diag.TextEdit{e}}}, Options{DryRun: true, Backup: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Changes) != 1 || res.Changes[0].Written {
		t.Fatalf("dry run result = %+v", res.Changes)
	}
	got, _ := os.ReadFile(path)
	if string(got) != content {
		t.Fatalf("dry run modified the file: %q", got)
	}
	if _, err := os.Stat(path + DefaultBackupSuffix); !os.IsNotExist(err) {
		t.Fatalf("dry run wrote a backup")
	}
}

func TestApplySkips(t *testing.T) {
	content := "old();\n"

	t.Run("changed on disk", func(t *testing.T) {
		fs, id, path := loadTemp(t, "a.cpp", []byte(content), 0o644)
		if err := os.WriteFile(path, []byte("other();\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		res, err := Apply(fs, []Change{{File: id, Edits: []diag.TextEdit{edit(id, content, "old", "new")}}}, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Skipped) != 1 || res.Skipped[0].Code != diag.IOVerifyError {
			t.Fatalf("skipped = %+v", res.Skipped)
		}
		got, _ := os.ReadFile(path)
		if string(got) != "other();\n" {
			t.Fatalf("file overwritten: %q", got)
		}
	})

	t.Run("want mismatch", func(t *testing.T) {
		fs, id, _ := loadTemp(t, "a.cpp", []byte(content), 0o644)
		ch := Change{File: id, Edits: []diag.TextEdit{edit(id, content, "old", "new")}, Want: []byte("something else")}
		res, err := Apply(fs, []Change{ch}, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Skipped) != 1 || !strings.Contains(res.Skipped[0].Reason, "do not reproduce") {
			t.Fatalf("skipped = %+v", res.Skipped)
		}
	})

	t.Run("virtual", func(t *testing.T) {
		fs := source.NewFileSet()
		id := fs.AddVirtual("<stdin>", []byte(content))
		res, err := Apply(fs, []Change{{File: id, Edits: []diag.TextEdit{edit(id, content, "old", "new")}}}, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Skipped) != 1 || res.Skipped[0].Reason != "target file is virtual" {
			t.Fatalf("skipped = %+v", res.Skipped)
		}
	})
}

func TestApplyNothingToWrite(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.cpp", []byte("x"))
	_, err := Apply(fs, []Change{{File: id}}, Options{})
	if !errors.Is(err, ErrNothingToWrite) {
		t.Fatalf("err = %v", err)
	}
	if _, err := Apply(nil, nil, Options{}); err == nil {
		t.Fatal("nil FileSet must be an error")
	}
}

func TestSpansConflict(t *testing.T) {
	mk := func(s, e uint32) diag.TextEdit { return diag.TextEdit{Span: source.Span{Start: s, End: e}} }
	tests := []struct {
		a, b diag.TextEdit
		want bool
	}{
		{mk(0, 3), mk(3, 5), false},
		{mk(0, 4), mk(3, 5), true},
		{mk(2, 2), mk(2, 2), false},
		{mk(2, 2), mk(0, 3), true},
		{mk(3, 3), mk(0, 3), false},
	}
	for _, tt := range tests {
		if got := spansConflict(tt.a, tt.b); got != tt.want {
			t.Errorf("spansConflict(%v, %v) = %v", tt.a.Span, tt.b.Span, got)
		}
	}
}
