package driver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestListSources(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.cpp":           "",
		"a.CPP":           "",
		"x.h":             "",
		"lib/c.cpp":       "",
		"lib/c.cpp.orig":  "",
		"vendor/v.cpp":    "",
		"deep/vendor.cpp": "",
	})

	got, err := ListSources([]string{root, filepath.Join(root, "b.cpp")}, []string{".cpp"}, []string{"vendor"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "a.CPP"),
		filepath.Join(root, "b.cpp"),
		filepath.Join(root, "deep", "vendor.cpp"),
		filepath.Join(root, "lib", "c.cpp"),
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestListSourcesExplicitFile(t *testing.T) {
	root := writeTree(t, map[string]string{"main.cc": ""})
	path := filepath.Join(root, "main.cc")
	got, err := ListSources([]string{path}, []string{".cpp"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != path {
		t.Fatalf("explicit files bypass the extension filter, got %v", got)
	}
}

func TestListSourcesMissingRoot(t *testing.T) {
	_, err := ListSources([]string{filepath.Join(t.TempDir(), "nope")}, []string{".cpp"}, nil)
	if !os.IsNotExist(err) {
		t.Fatalf("err = %v", err)
	}
}

func TestListSourcesNothingFound(t *testing.T) {
	root := writeTree(t, map[string]string{"readme.txt": ""})
	_, err := ListSources([]string{root}, []string{".cpp"}, nil)
	if !errors.Is(err, ErrNoSources) {
		t.Fatalf("err = %v, want ErrNoSources", err)
	}
}
