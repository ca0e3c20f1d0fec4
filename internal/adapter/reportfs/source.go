// Package reportfs reads solution reports from and writes summary tables to
// the local filesystem.
package reportfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source lists the report files in one base folder.
type Source struct {
	dir     string
	pattern string
}

// NewSource creates a Source matching pattern (a filepath.Match glob) in dir.
func NewSource(dir, pattern string) *Source {
	return &Source{dir: dir, pattern: pattern}
}

// ListReports returns the regular files in the folder whose names match the
// pattern, sorted by path. Subdirectories are not searched, and hidden files
// (leading ".") are skipped unless the pattern itself starts with ".".
func (s *Source) ListReports(_ context.Context) ([]string, error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("base folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base folder %s: not a directory", s.dir)
	}

	matches, err := filepath.Glob(filepath.Join(s.dir, s.pattern))
	if err != nil {
		return nil, fmt.Errorf("match %q: %w", s.pattern, err)
	}

	hidden := strings.HasPrefix(s.pattern, ".")
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		if !hidden && strings.HasPrefix(filepath.Base(m), ".") {
			continue
		}
		fi, err := os.Stat(m)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		paths = append(paths, m)
	}
	sort.Strings(paths)
	return paths, nil
}
