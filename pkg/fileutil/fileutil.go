// Package fileutil provides case-insensitive file lookup over real and
// embedded file systems.
package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// matchEntry returns the name of the first non-directory entry equal to
// filename ignoring case.
func matchEntry(entries []fs.DirEntry, filename string) (string, bool) {
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(entry.Name(), filename) {
			return entry.Name(), true
		}
	}
	return "", false
}

// FindFileCaseInsensitive searches dir for filename ignoring case and
// returns the actual path.
//
// Example:
//
//	path, err := FindFileCaseInsensitive("scenarios", "Hangar.YAML")
//	// finds "hangar.yaml", "HANGAR.YAML", ...
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	if name, ok := matchEntry(entries, filename); ok {
		return filepath.Join(dir, name), nil
	}
	return "", fmt.Errorf("file not found: %s (searched in %s)", filename, dir)
}

// FindFileCaseInsensitiveFS is FindFileCaseInsensitive for an fs.FS such as
// embed.FS. Paths use forward slashes.
func FindFileCaseInsensitiveFS(fsys fs.FS, dir, filename string) (string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	if name, ok := matchEntry(entries, filename); ok {
		return path.Join(dir, name), nil
	}
	return "", fmt.Errorf("file not found: %s (searched in %s)", filename, dir)
}

// HasExt reports whether name ends in one of exts, ignoring case.
// Each ext includes the leading dot.
func HasExt(name string, exts ...string) bool {
	ext := path.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// ListFiles returns the names of the files in dir of fsys with one of the
// given extensions, sorted by lowercase name.
func ListFiles(fsys FileSystem, dir string, exts ...string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !HasExt(entry.Name(), exts...) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names, nil
}
