// Package scan lists the files of a source tree and turns the difference
// between the tree and a persisted map into file events.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kamusis/assetmap/internal/assetmap"
)

// Walk returns the regular files under root as normalized relative paths,
// sorted. Entries matching an exclude pattern are skipped; excluded
// directories are not descended into.
func Walk(root string, excludes []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot stat source directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path is not a directory: %s", root)
	}

	var out []string
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if MatchesExclude(rel, excludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		out = append(out, assetmap.NormalizePath(rel))
		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, fmt.Errorf("cannot scan %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}

// MatchesExclude reports whether relPath matches any of the given glob
// patterns. A pattern starting with "/" is anchored to the root and only
// matches the whole relative path; any other pattern also matches the
// basename at every depth.
func MatchesExclude(relPath string, patterns []string) bool {
	name := filepath.Base(relPath)
	slashed := filepath.ToSlash(relPath)
	for _, pattern := range patterns {
		if anchored, ok := strings.CutPrefix(pattern, "/"); ok {
			if matched, _ := path.Match(anchored, slashed); matched {
				return true
			}
			continue
		}
		// Match against the full relative path AND just the basename.
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		if matched, _ := filepath.Match(filepath.FromSlash(pattern), relPath); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, slashed); matched {
			return true
		}
	}
	return false
}

// ExactExclude returns an anchored pattern matching relPath and nothing
// else.
func ExactExclude(relPath string) string {
	return "/" + EscapeGlob(filepath.ToSlash(relPath))
}

// EscapeGlob quotes the glob metacharacters in s.
func EscapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
