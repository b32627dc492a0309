package dcache

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "logport"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestPutGet(t *testing.T) {
	c := openTemp(t)
	key := sha256.Sum256([]byte("int main() {}\n"))

	var p Payload
	if ok, err := c.Get(key, &p); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	if err := c.Put(key, &Payload{Path: "main.cpp", Clean: true, Rules: 42}); err != nil {
		t.Fatal(err)
	}
	ok, err := c.Get(key, &p)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if p.Path != "main.cpp" || !p.Clean || p.Rules != 42 || p.Schema != schemaVersion {
		t.Fatalf("payload = %+v", p)
	}
}

func TestIsCleanChecksRules(t *testing.T) {
	c := openTemp(t)
	key := sha256.Sum256([]byte("void f();\n"))
	if err := c.MarkClean(key, "f.cpp", 7); err != nil {
		t.Fatal(err)
	}

	if ok, err := c.IsClean(key, 7); err != nil || !ok {
		t.Fatalf("same rules: ok=%v err=%v", ok, err)
	}
	if ok, _ := c.IsClean(key, 8); ok {
		t.Fatal("entry must be stale for other rules")
	}
	other := sha256.Sum256([]byte("void g();\n"))
	if ok, _ := c.IsClean(other, 7); ok {
		t.Fatal("unknown content must miss")
	}
}

func TestCorruptEntry(t *testing.T) {
	c := openTemp(t)
	key := sha256.Sum256([]byte("x"))
	if err := c.MarkClean(key, "x.cpp", 1); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.pathFor(key), []byte("not zstd"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := c.IsClean(key, 1); err == nil {
		t.Fatal("expected an error for a corrupt entry")
	}
}

func TestDropAll(t *testing.T) {
	c := openTemp(t)
	key := sha256.Sum256([]byte("y"))
	if err := c.MarkClean(key, "y.cpp", 1); err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := c.IsClean(key, 1); ok {
		t.Fatal("entry survived DropAll")
	}
	if err := c.MarkClean(key, "y.cpp", 1); err != nil {
		t.Fatalf("cache unusable after DropAll: %v", err)
	}
}

func TestNilCache(t *testing.T) {
	var c *Cache
	if err := c.MarkClean(Digest{}, "a", 1); err != nil {
		t.Fatal(err)
	}
	if ok, err := c.IsClean(Digest{}, 1); ok || err != nil {
		t.Fatalf("nil cache: ok=%v err=%v", ok, err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestConcurrentPut(t *testing.T) {
	c := openTemp(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := sha256.Sum256([]byte{byte(i)})
			if err := c.MarkClean(key, "f.cpp", uint64(i)); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
	for i := 0; i < 16; i++ {
		key := sha256.Sum256([]byte{byte(i)})
		if ok, err := c.IsClean(key, uint64(i)); err != nil || !ok {
			t.Fatalf("entry %d: ok=%v err=%v", i, ok, err)
		}
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := DefaultDir("logport")
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "logport") {
		t.Fatalf("dir = %s", dir)
	}
}
