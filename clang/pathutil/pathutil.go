package pathutil

import (
	"path/filepath"
	"strings"
)

func Canonical(baseDir string, uri string) string {
	if filepath.IsAbs(uri) {
		return filepath.Clean(uri)
	}
	return filepath.Join(baseDir, uri)
}

// Display shortens file to a path relative to baseDir when file lives below
// it, for use in diagnostics.
func Display(baseDir string, file string) string {
	if baseDir == "" || !filepath.IsAbs(file) {
		return file
	}
	rel, err := filepath.Rel(baseDir, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return file
	}
	return rel
}

// SameFile reports whether a and b name the same file once cleaned.
func SameFile(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
