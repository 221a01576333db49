// Package discover enumerates files and directories under a root whose
// names match a shell-style wildcard pattern.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

func compile(pattern string) (glob.Glob, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return g, nil
}

// WalkFiles calls fn for every file under root whose base name matches
// pattern, in walk order. Inaccessible entries are skipped.
func WalkFiles(root, pattern string, fn func(path string) error) error {
	g, err := compile(pattern)
	if err != nil {
		return err
	}

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if info.IsDir() || !g.Match(filepath.Base(path)) {
			return nil
		}
		return fn(path)
	})
}

// WalkDirs calls fn once for each directory under root that contains at
// least one file matching pattern.
func WalkDirs(root, pattern string, fn func(dir string) error) error {
	seen := make(map[string]bool)
	return WalkFiles(root, pattern, func(path string) error {
		dir := filepath.Dir(path)
		if seen[dir] {
			return nil
		}
		seen[dir] = true
		return fn(dir)
	})
}

// Files returns all matching file paths under root, sorted.
func Files(root, pattern string) ([]string, error) {
	var results []string
	err := WalkFiles(root, pattern, func(path string) error {
		results = append(results, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(results)
	return results, nil
}

// Dirs returns all directories under root holding a matching file, sorted.
func Dirs(root, pattern string) ([]string, error) {
	var results []string
	err := WalkDirs(root, pattern, func(dir string) error {
		results = append(results, dir)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(results)
	return results, nil
}
