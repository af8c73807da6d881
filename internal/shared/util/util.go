package util

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// NormalizePatternPath brings a path into the slash-separated relative
// form the exclude matchers compare against. "." collapses to "".
func NormalizePatternPath(s string) string {
	p := strings.ReplaceAll(strings.TrimSpace(s), "\\", "/")
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return strings.TrimPrefix(p, "./")
}

// HasPathPrefix reports whether p equals prefix or lives underneath it.
// Both sides are normalized first, so separator style does not matter.
func HasPathPrefix(p, prefix string) bool {
	p = NormalizePatternPath(p)
	prefix = NormalizePatternPath(prefix)
	switch {
	case p == prefix:
		return true
	case p == "" || prefix == "":
		return false
	}
	return strings.HasPrefix(p, prefix+"/")
}

// ContainsPathSeparator reports whether value carries a slash of either
// style, which marks an exclude pattern as path-scoped.
func ContainsPathSeparator(value string) bool {
	return strings.ContainsAny(value, `/\`)
}

// SortedStringKeys returns the map's keys sorted ascending.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteFileWithDirs writes data to path, creating any missing parent
// directories (0755) first.
func WriteFileWithDirs(path string, data []byte, perm fs.FileMode) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, perm)
}

// WriteStringWithDirs is WriteFileWithDirs for string content.
func WriteStringWithDirs(path, content string, perm fs.FileMode) error {
	return WriteFileWithDirs(path, []byte(content), perm)
}
