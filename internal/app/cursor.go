package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/justyntemme/dirindex/internal/fs"
)

// PathCursor owns the canonical path being browsed. Home is fixed at
// construction and acts as the floor for GoBack.
type PathCursor struct {
	canonical string
	home      string
}

// NewPathCursor returns a cursor positioned at home.
func NewPathCursor(home string) *PathCursor {
	home = filepath.Clean(home)
	return &PathCursor{canonical: home, home: home}
}

func (c *PathCursor) Path() string { return c.canonical }
func (c *PathCursor) Home() string { return c.home }

// AdvanceInto moves the cursor into a child directory entry.
func (c *PathCursor) AdvanceInto(e fs.Entry) error {
	if !e.IsDir() {
		return fmt.Errorf("%w: %s", fs.ErrNotADirectory, e.Name)
	}
	if e.Name == "" || e.Name == "." || e.Name == ".." || strings.ContainsRune(e.Name, filepath.Separator) {
		return fmt.Errorf("%w: bad entry name %q", ErrInvalidSelection, e.Name)
	}
	c.canonical = filepath.Join(c.canonical, e.Name)
	return nil
}

// AtFloor reports whether GoBack would be a no-op.
func (c *PathCursor) AtFloor() bool {
	return c.canonical == c.home || filepath.Dir(c.canonical) == c.canonical
}

// GoBack drops the last path segment. At the filesystem root or at home it
// does nothing and returns false.
func (c *PathCursor) GoBack() bool {
	if c.AtFloor() {
		return false
	}
	c.canonical = filepath.Dir(c.canonical)
	return true
}

// ResetToHome moves the cursor back to home.
func (c *PathCursor) ResetToHome() {
	c.canonical = c.home
}

func (c *PathCursor) moveTo(path string) {
	c.canonical = filepath.Clean(path)
}
