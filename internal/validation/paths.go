package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const maxPathLength = 4096

// CleanPath rejects paths carrying null bytes, control characters or ".."
// components, expands a leading "~/" and returns the absolute, cleaned path.
func CleanPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if len(path) > maxPathLength {
		return "", fmt.Errorf("path too long (max %d characters)", maxPathLength)
	}
	if strings.Contains(path, "\x00") {
		return "", fmt.Errorf("path contains null bytes")
	}
	for _, char := range path {
		if char < 32 && char != '\t' {
			return "", fmt.Errorf("path contains control characters")
		}
	}
	for _, component := range strings.Split(filepath.ToSlash(path), "/") {
		if component == ".." {
			return "", fmt.Errorf("directory traversal not allowed: %s", path)
		}
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	} else if strings.HasPrefix(path, "~") {
		return "", fmt.Errorf("invalid tilde usage: %s", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}
	return filepath.Clean(abs), nil
}

// IndexDir validates a search index location. Bleve indexes are directories,
// so an existing non-directory is rejected; a missing path is fine and will
// be created on open.
func IndexDir(path string) (string, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(clean)
	switch {
	case os.IsNotExist(err):
		return clean, nil
	case err != nil:
		return "", fmt.Errorf("checking index directory: %w", err)
	case !info.IsDir():
		return "", fmt.Errorf("index path exists but is not a directory: %s", clean)
	}
	return clean, nil
}

// DBFile validates a database file location and creates its parent
// directory.
func DBFile(path string) (string, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(clean); statErr == nil && info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", clean)
	}
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return "", fmt.Errorf("creating database directory: %w", err)
	}
	return clean, nil
}
