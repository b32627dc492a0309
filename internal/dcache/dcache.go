// Package dcache remembers, across runs, which file contents had nothing to rewrite.
//
// Entries are keyed by the SHA-256 of the decoded content, encoded with msgpack
// and compressed with zstd. An entry only counts for the rules it was produced
// with; changing the keyword or the output options makes every entry stale.
package dcache

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 1

// Digest is a SHA-256 content hash.
type Digest = [32]byte

// Payload is one cache entry.
type Payload struct {
	Schema uint16
	Path   string // informational; the key is the content hash
	Clean  bool
	Rules  uint64 // rewrite.Rules fingerprint
	Stored int64  // unix seconds
}

// Cache is a directory of compressed payloads. Safe for concurrent use; a nil
// *Cache is a valid cache that never hits.
type Cache struct {
	mu  sync.RWMutex
	dir string
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// DefaultDir returns $XDG_CACHE_HOME/<app> or ~/.cache/<app>.
func DefaultDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// Open prepares a cache rooted at dir, creating it if needed.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &Cache{dir: dir, enc: enc, dec: dec}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Close releases the codec resources.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	c.dec.Close()
	return c.enc.Close()
}

func (c *Cache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// два символа на подкаталог, чтобы не держать тысячи файлов в одном
	return filepath.Join(c.dir, "files", hexKey[:2], hexKey+".mpz")
}

// Put serializes, compresses and atomically writes a payload.
func (c *Cache) Put(key Digest, payload *Payload) error {
	if c == nil {
		return nil
	}
	payload.Schema = schemaVersion
	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode cache payload: %w", err)
	}
	data := c.enc.EncodeAll(raw, nil)

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Get reads a payload. A missing entry or one written by another schema is a miss.
func (c *Cache) Get(key Digest, out *Payload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	data, err := os.ReadFile(c.pathFor(key))
	c.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	raw, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return false, fmt.Errorf("decompress cache entry: %w", err)
	}
	var p Payload
	if err := msgpack.Unmarshal(raw, &p); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	if p.Schema != schemaVersion {
		return false, nil
	}
	*out = p
	return true, nil
}

// IsClean reports whether content with this hash was found clean under rules.
func (c *Cache) IsClean(key Digest, rules uint64) (bool, error) {
	var p Payload
	ok, err := c.Get(key, &p)
	if err != nil || !ok {
		return false, err
	}
	return p.Clean && p.Rules == rules, nil
}

// MarkClean records that content with this hash has nothing to rewrite under rules.
func (c *Cache) MarkClean(key Digest, path string, rules uint64) error {
	return c.Put(key, &Payload{
		Path:   path,
		Clean:  true,
		Rules:  rules,
		Stored: time.Now().Unix(),
	})
}

// DropAll invalidates the cache.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
