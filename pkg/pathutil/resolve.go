// Package pathutil resolves the filesystem paths rewritefs takes as CLI
// arguments (source directory, mountpoint) into clean, absolute,
// symlink-resolved form before they're opened, so relative paths and a
// leading "~" behave the way an operator expects regardless of the
// daemon's own working directory.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ResolvePath resolves a path argument to an absolute path. It handles:
//   - ~ expansion to home directory
//   - relative path resolution against cwd
//   - path normalization (cleaning . and ..)
//   - symlink resolution, so the source directory descriptor opened by
//     internal/vfs.NewPassthrough is the real target, not a symlink
//     an operator could later repoint.
//
// For paths that don't exist yet, it resolves the deepest existing ancestor and appends the remaining
// components.
func ResolvePath(path, cwd, home string) string {
	if path == "" {
		return ""
	}

	if path == "~" {
		path = home
	} else if strings.HasPrefix(path, "~/") {
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	path = filepath.Clean(path)

	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return resolveNonExistent(path)
}

// resolveNonExistent resolves the deepest existing ancestor of path and
// reappends the remaining, not-yet-existing components unchanged.
func resolveNonExistent(path string) string {
	current := path
	var remaining []string

	for current != "/" && current != "." {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			for i := len(remaining) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, remaining[i])
			}
			return resolved
		}
		remaining = append(remaining, filepath.Base(current))
		current = filepath.Dir(current)
	}
	return filepath.Clean(path)
}
