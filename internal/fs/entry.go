package fs

import (
	"path/filepath"
	"time"
)

// Kind distinguishes directories from everything else in a listing.
type Kind int

const (
	KindFile Kind = iota
	KindDir
)

func (k Kind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// Entry is one child of an enumerated directory. Index is its position in
// the enumeration that produced it and is only meaningful for that Catalog.
type Entry struct {
	Name    string
	Path    string
	Kind    Kind
	Index   int
	Size    int64
	ModTime time.Time
}

// IsDir reports whether the entry is a directory (symlinks are resolved).
func (e Entry) IsDir() bool {
	return e.Kind == KindDir
}

// Catalog is an immutable snapshot of a single directory's children.
type Catalog struct {
	Path    string
	Entries []Entry
}

// Len returns the number of entries; a nil catalog is empty.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}

// At returns the entry at index i.
func (c *Catalog) At(i int) (Entry, bool) {
	if c == nil || i < 0 || i >= len(c.Entries) {
		return Entry{}, false
	}
	return c.Entries[i], true
}

// Describes reports whether the catalog is a listing of path.
func (c *Catalog) Describes(path string) bool {
	return c != nil && c.Path == filepath.Clean(path)
}

// Names returns entry names in catalog order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		names[i] = e.Name
	}
	return names
}
