package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"logport/internal/config"
	"logport/internal/dcache"
	"logport/internal/driver"
	"logport/internal/logx"
	"logport/internal/observ"
)

// settings is logport.toml merged with command-line overrides.
type settings struct {
	cfg        config.Config
	configPath string // пусто, если файл не найден
	baseDir    string
	color      colorMode
	timings    bool
	quiet      bool
}

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on":
		return colorOn, nil
	case "off":
		return colorOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// enabled resolves auto against the stream output goes to.
func (m colorMode) enabled(f *os.File) bool {
	switch m {
	case colorOn:
		return true
	case colorOff:
		return false
	default:
		return isTerminal(f)
	}
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Flags()
	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	colorStr, err := flags.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	color, err := readColorMode(colorStr)
	if err != nil {
		return nil, err
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	s := &settings{cfg: config.Defaults(), baseDir: wd, color: color, timings: timings, quiet: quiet}

	var manifest *config.Manifest
	if configPath != "" {
		manifest, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		manifest, _, err = config.Discover(wd)
		if err != nil {
			return nil, err
		}
	}
	if manifest != nil {
		s.cfg = manifest.Config
		s.configPath = manifest.Path
		s.baseDir = manifest.Root
		logx.New("config").Debug("loaded settings", "path", manifest.Path)
	}

	if maxDiagnostics > 0 {
		s.cfg.Run.MaxDiagnostics = maxDiagnostics
	}
	if err := applyRunFlags(cmd, &s.cfg.Run); err != nil {
		return nil, err
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// applyRunFlags overrides [run] keys with the flags the user actually set.
func applyRunFlags(cmd *cobra.Command, run *config.RunConfig) error {
	flags := cmd.Flags()
	if flags.Lookup("jobs") != nil && flags.Changed("jobs") {
		jobs, err := flags.GetInt("jobs")
		if err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
		run.Jobs = jobs
	}
	if flags.Lookup("backup") != nil && flags.Changed("backup") {
		backup, err := flags.GetBool("backup")
		if err != nil {
			return fmt.Errorf("failed to get backup flag: %w", err)
		}
		run.Backup = backup
	}
	if flags.Lookup("cache") != nil && flags.Changed("cache") {
		cache, err := flags.GetBool("cache")
		if err != nil {
			return fmt.Errorf("failed to get cache flag: %w", err)
		}
		run.Cache = cache
	}
	return nil
}

// sources lists the files to process: explicit arguments win over [scan].roots.
func (s *settings) sources(args []string, timer *observ.Timer) ([]string, error) {
	roots := s.cfg.Scan.Roots
	if len(args) > 0 {
		roots = args
	}
	var files []string
	var err error
	timer.Measure("discover", func() string {
		files, err = driver.ListSources(roots, s.cfg.Scan.Extensions, s.cfg.Scan.Exclude)
		return fmt.Sprintf("%d files", len(files))
	})
	return files, err
}

// openCache returns nil when caching is off or the cache cannot be opened.
func (s *settings) openCache() *dcache.Cache {
	if !s.cfg.Run.Cache {
		return nil
	}
	logger := logx.New("cache")
	dir, err := dcache.DefaultDir("logport")
	if err != nil {
		logger.Warn("cache disabled", "err", err)
		return nil
	}
	cache, err := dcache.Open(dir)
	if err != nil {
		logger.Warn("cache disabled", "dir", dir, "err", err)
		return nil
	}
	return cache
}

func (s *settings) request() driver.Request {
	return driver.Request{
		BaseDir:        s.baseDir,
		Rules:          s.cfg.Rules(),
		Jobs:           s.cfg.Run.Jobs,
		MaxDiagnostics: s.cfg.Run.MaxDiagnostics,
		Backup:         s.cfg.Run.Backup,
	}
}
