package app

import (
	"path/filepath"
	"runtime"
	"strings"
)

// ExpandPath expands and normalizes a path string typed by the user, handling:
// - ~ for the browsing home
// - Relative paths (../, ./), joined with the current directory
// - Absolute paths
// - Windows drive letters (C:, D:, etc.)
func (n *NavigationController) ExpandPath(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return n.CurrentPath()
	}

	// Handle home directory expansion
	if strings.HasPrefix(input, "~") {
		if input == "~" {
			return n.HomePath()
		}
		if strings.HasPrefix(input, "~/") || strings.HasPrefix(input, "~\\") {
			return filepath.Clean(filepath.Join(n.HomePath(), input[2:]))
		}
	}

	if isAbsolutePath(input) {
		return filepath.Clean(input)
	}

	return filepath.Clean(filepath.Join(n.CurrentPath(), input))
}

// isAbsolutePath checks if a path is absolute, handling both Unix and Windows paths.
func isAbsolutePath(path string) bool {
	if len(path) == 0 {
		return false
	}

	// Unix absolute path
	if path[0] == '/' {
		return true
	}

	if runtime.GOOS == "windows" {
		// Drive letter paths: C:\, D:\, C:/, etc.
		if len(path) >= 2 && isLetter(path[0]) && path[1] == ':' {
			return true
		}
		// UNC paths: \\server\share
		if len(path) >= 2 && path[0] == '\\' && path[1] == '\\' {
			return true
		}
	}

	return false
}

// isLetter checks if a byte is an ASCII letter.
func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
