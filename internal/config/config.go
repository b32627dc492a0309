// Package config loads logport.toml, the optional per-tree settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"logport/internal/rewrite"
)

// FileName is the settings file looked up from the working directory upward.
const FileName = "logport.toml"

// Config mirrors logport.toml. Zero values mean "not set"; use Defaults and Merge.
type Config struct {
	Scan    ScanConfig    `toml:"scan"`
	Rewrite RewriteConfig `toml:"rewrite"`
	Run     RunConfig     `toml:"run"`
}

type ScanConfig struct {
	Roots      []string `toml:"roots"`
	Extensions []string `toml:"extensions"`
	Exclude    []string `toml:"exclude"`
}

type RewriteConfig struct {
	Keyword     string `toml:"keyword"`
	LevelPrefix string `toml:"level_prefix"`
	Tidy        *bool  `toml:"tidy"`
	TrimArgs    *bool  `toml:"trim_args"`
}

type RunConfig struct {
	Jobs           int  `toml:"jobs"`
	Backup         bool `toml:"backup"`
	Cache          bool `toml:"cache"`
	MaxDiagnostics int  `toml:"max_diagnostics"`
}

// Manifest is a config file found on disk.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	r := rewrite.DefaultRules()
	return Config{
		Scan: ScanConfig{
			Roots:      []string{"."},
			Extensions: []string{".cpp"},
		},
		Rewrite: RewriteConfig{
			Keyword:     r.Keyword,
			LevelPrefix: r.LevelPrefix,
			Tidy:        boolPtr(r.Tidy),
			TrimArgs:    boolPtr(r.TrimArgs),
		},
		Run: RunConfig{
			MaxDiagnostics: 100,
		},
	}
}

// Find walks from startDir to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the nearest config file. ok is false when none exists.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// Load decodes path and applies defaults to keys it leaves unset.
// Relative scan roots are resolved against the file's directory.
func Load(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	root := filepath.Dir(path)
	cfg = Merge(Defaults(), cfg)
	for i, r := range cfg.Scan.Roots {
		if !filepath.IsAbs(r) {
			cfg.Scan.Roots[i] = filepath.Join(root, filepath.FromSlash(r))
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Manifest{Path: path, Root: root, Config: cfg}, nil
}

// Merge overlays the set fields of over onto base.
func Merge(base, over Config) Config {
	out := base
	if len(over.Scan.Roots) > 0 {
		out.Scan.Roots = append([]string(nil), over.Scan.Roots...)
	}
	if len(over.Scan.Extensions) > 0 {
		out.Scan.Extensions = append([]string(nil), over.Scan.Extensions...)
	}
	if len(over.Scan.Exclude) > 0 {
		out.Scan.Exclude = append([]string(nil), over.Scan.Exclude...)
	}
	if over.Rewrite.Keyword != "" {
		out.Rewrite.Keyword = over.Rewrite.Keyword
	}
	if over.Rewrite.LevelPrefix != "" {
		out.Rewrite.LevelPrefix = over.Rewrite.LevelPrefix
	}
	if over.Rewrite.Tidy != nil {
		out.Rewrite.Tidy = boolPtr(*over.Rewrite.Tidy)
	}
	if over.Rewrite.TrimArgs != nil {
		out.Rewrite.TrimArgs = boolPtr(*over.Rewrite.TrimArgs)
	}
	if over.Run.Jobs != 0 {
		out.Run.Jobs = over.Run.Jobs
	}
	out.Run.Backup = base.Run.Backup || over.Run.Backup
	out.Run.Cache = base.Run.Cache || over.Run.Cache
	if over.Run.MaxDiagnostics != 0 {
		out.Run.MaxDiagnostics = over.Run.MaxDiagnostics
	}
	return out
}

// Validate reports settings the driver cannot run with.
func (c Config) Validate() error {
	if c.Run.Jobs < 0 {
		return fmt.Errorf("[run].jobs must be >= 0, got %d", c.Run.Jobs)
	}
	if c.Run.MaxDiagnostics < 0 {
		return fmt.Errorf("[run].max_diagnostics must be >= 0, got %d", c.Run.MaxDiagnostics)
	}
	for _, ext := range c.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("[scan].extensions: %q must start with '.'", ext)
		}
	}
	if err := c.Rules().Validate(); err != nil {
		return fmt.Errorf("[rewrite]: %w", err)
	}
	return nil
}

// Rules converts the [rewrite] table into rewriter rules.
func (c Config) Rules() rewrite.Rules {
	r := rewrite.DefaultRules()
	if c.Rewrite.Keyword != "" {
		r.Keyword = c.Rewrite.Keyword
	}
	if c.Rewrite.LevelPrefix != "" {
		r.LevelPrefix = c.Rewrite.LevelPrefix
	}
	if c.Rewrite.Tidy != nil {
		r.Tidy = *c.Rewrite.Tidy
	}
	if c.Rewrite.TrimArgs != nil {
		r.TrimArgs = *c.Rewrite.TrimArgs
	}
	return r
}

// Write encodes cfg to path, refusing to overwrite an existing file.
func Write(path string, cfg Config) error {
	// #nosec G304 -- path is provided by the caller
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: encode: %w", path, err)
	}
	return f.Close()
}

func boolPtr(b bool) *bool { return &b }
