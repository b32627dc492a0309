package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	// Добавляем файл первый раз
	id1 := fs.Add("audio.cpp", []byte("hello world"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}

	// Добавляем тот же файл с новым содержимым
	id2 := fs.Add("audio.cpp", []byte("hello universe"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	latestID, exists := fs.GetLatest("audio.cpp")
	if !exists {
		t.Fatal("Expected file to exist after second Add")
	}
	if latestID != id2 {
		t.Errorf("Expected latest ID to be %d, got %d", id2, latestID)
	}

	// Проверяем, что старый файл все еще доступен
	if got := string(fs.Get(id1).Content); got != "hello world" {
		t.Errorf("Expected first file content to be 'hello world', got %q", got)
	}
	if fs.Len() != 2 {
		t.Errorf("Expected 2 stored versions, got %d", fs.Len())
	}
}

func TestGetUnknownID(t *testing.T) {
	fs := NewFileSet()
	if f := fs.Get(42); f != nil {
		t.Fatalf("expected nil for unknown id, got %+v", f)
	}
}

// TestAddVirtualLineIdx проверяет правильность построения LineIdx для AddVirtual
func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()

	id := fs.AddVirtual("a.cpp", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3} // позиции символов \n
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("Expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("Expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag to be set")
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("track.cpp", []byte("int x;\n  debug(LOG_ERROR, \"x\");\n"))

	tests := []struct {
		name string
		off  uint32
		want LineCol
	}{
		{name: "file start", off: 0, want: LineCol{Line: 1, Col: 1}},
		{name: "newline belongs to its line", off: 6, want: LineCol{Line: 1, Col: 7}},
		{name: "second line start", off: 7, want: LineCol{Line: 2, Col: 1}},
		{name: "call keyword", off: 9, want: LineCol{Line: 2, Col: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
			if start != tt.want {
				t.Fatalf("Resolve(%d) = %+v, want %+v", tt.off, start, tt.want)
			}
		})
	}
}

func TestGetLineStripsCR(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("win.cpp", []byte("first\r\nsecond\r\n"))
	f := fs.Get(id)

	if got := f.GetLine(1); got != "first" {
		t.Errorf("line 1 = %q", got)
	}
	if got := f.GetLine(2); got != "second" {
		t.Errorf("line 2 = %q", got)
	}
	if got := f.GetLine(5); got != "" {
		t.Errorf("line 5 = %q, want empty", got)
	}
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	fs := NewFileSet()
	path := writeTemp(t, "a.cpp", []byte("a\nb\n"))

	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("Expected file content 'a\\nb\\n', got %q", string(file.Content))
	}
	if file.Flags != 0 {
		t.Errorf("Expected no flags, got %b", file.Flags)
	}
}

func TestLoadBOM(t *testing.T) {
	fs := NewFileSet()
	path := writeTemp(t, "bom.cpp", []byte("\xEF\xBB\xBFa\nb\n"))

	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("Expected file content without BOM, got %q", string(file.Content))
	}
	if file.Flags&FileHadBOM == 0 {
		t.Error("Expected FileHadBOM flag to be set")
	}
	if got := string(file.Encoded(file.Content)); got != "\xEF\xBB\xBFa\nb\n" {
		t.Errorf("Encoded should restore BOM, got %q", got)
	}
}

// CRLF сохраняется как есть: кодмод не должен менять окончания строк
func TestLoadCRLFKept(t *testing.T) {
	fs := NewFileSet()
	path := writeTemp(t, "crlf.cpp", []byte("a\r\nb\r\n"))

	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "a\r\nb\r\n" {
		t.Errorf("Expected CRLF to be kept, got %q", string(file.Content))
	}
	if file.Flags&FileHasCRLF == 0 {
		t.Error("Expected FileHasCRLF flag to be set")
	}
}

func TestLoadWindows1252Fallback(t *testing.T) {
	fs := NewFileSet()
	// 0xE9 = 'é' в cp1252, невалидный UTF-8 сам по себе
	path := writeTemp(t, "legacy.cpp", []byte("debug(LOG_INFO, \"caf\xE9\");\n"))

	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "debug(LOG_INFO, \"café\");\n" {
		t.Errorf("unexpected decoded content %q", string(file.Content))
	}
	if file.Flags&FileDecodedCP1252 == 0 {
		t.Error("Expected FileDecodedCP1252 flag to be set")
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "missing.cpp")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if fs.Len() != 0 {
		t.Fatalf("failed load must not add a file, got %d", fs.Len())
	}
}

func TestFormatPath(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("/home/user/project/src/audio.cpp", nil)
	f := fs.Get(id)

	if got := f.FormatPath("basename", ""); got != "audio.cpp" {
		t.Errorf("basename = %q", got)
	}
	if got := f.FormatPath("relative", "/home/user/project"); got != "src/audio.cpp" {
		t.Errorf("relative = %q", got)
	}
	if got := f.FormatPath("auto", ""); got != "/home/user/project/src/audio.cpp" {
		t.Errorf("auto = %q", got)
	}
}
