// Package repo locates the repository whose directories are documented.
package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/labdocs/internal/apperr"
)

// DefaultMarkers identify a repository root: a git checkout, or the editor
// directory that holds the command log.
var DefaultMarkers = []string{".git", ".vscode"}

// FindRoot walks up from start and returns the first directory containing
// any of markers. It fails with apperr.ErrRootNotFound at the filesystem root.
func FindRoot(start string, markers ...string) (string, error) {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("repo: resolve %s: %w", start, err)
	}
	for {
		for _, m := range markers {
			if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("repo: no %v above %s: %w", markers, start, apperr.ErrRootNotFound)
		}
		dir = parent
	}
}

// Resolve returns root made absolute when set, or the detected root above
// the working directory otherwise. The result must be an existing directory.
func Resolve(root string, markers ...string) (string, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("repo: working directory: %w", err)
		}
		return FindRoot(wd, markers...)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("repo: resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("repo: %s is not a directory: %w", abs, apperr.ErrRootNotFound)
	}
	return abs, nil
}
