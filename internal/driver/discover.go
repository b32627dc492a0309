package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoSources is returned when discovery finds nothing to process.
var ErrNoSources = errors.New("no source files found")

// ListSources returns the sorted, de-duplicated files under roots whose
// extension is in exts. A root that is a file is taken as is. Directories
// whose base name is in exclude are not entered. An empty result is ErrNoSources.
func ListSources(roots, exts, exclude []string) ([]string, error) {
	skipDir := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skipDir[name] = struct{}{}
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root {
					if _, ok := skipDir[d.Name()]; ok {
						return filepath.SkipDir
					}
				}
				return nil
			}
			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			if hasExt(path, exts) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	if len(files) == 0 {
		return nil, ErrNoSources
	}
	return files, nil
}

func hasExt(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
