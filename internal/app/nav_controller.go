package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/justyntemme/dirindex/internal/debug"
	"github.com/justyntemme/dirindex/internal/events"
	"github.com/justyntemme/dirindex/internal/fs"
)

// NavigationController owns the cursor, the catalog of the directory the
// cursor names, and the current selection. It is driven from a single
// goroutine and does no locking of its own.
type NavigationController struct {
	deps   *SharedDeps
	cursor *PathCursor

	catalog  *fs.Catalog
	selected int

	// Enumerate lists one directory; fs.Enumerate unless replaced.
	Enumerate func(path string) (*fs.Catalog, error)
}

// NewNavigationController creates a navigation controller with the given dependencies.
func NewNavigationController(deps *SharedDeps) *NavigationController {
	if deps.Handlers == nil {
		deps.Handlers = NewHandlerRegistry()
	}
	return &NavigationController{
		deps:      deps,
		cursor:    NewPathCursor(deps.HomePath),
		selected:  -1,
		Enumerate: fs.Enumerate,
	}
}

// Open lists path and makes it current. If the navigator was already open a
// failure leaves it where it was; otherwise it stays uninitialized.
func (n *NavigationController) Open(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	debug.Log(debug.NAV, "Open %s", abs)

	cat, err := n.Enumerate(abs)
	if err != nil {
		debug.Log(debug.NAV, "Open %s failed: %v", abs, err)
		n.deps.presenter().ShowError(err)
		return err
	}
	n.cursor.moveTo(abs)
	n.install(cat)
	return nil
}

// ActivateEntry navigates into the directory at index. Activating a file
// changes nothing and returns ErrTargetNotDirectory.
func (n *NavigationController) ActivateEntry(index int) error {
	if n.catalog == nil {
		return ErrNotInitialized
	}
	entry, ok := n.catalog.At(index)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidSelection, index)
	}
	if !entry.IsDir() {
		debug.Log(debug.NAV, "ActivateEntry %d: %s is a file, ignoring", index, entry.Name)
		return fmt.Errorf("%w: %s", ErrTargetNotDirectory, entry.Name)
	}

	return n.transition(func() (bool, error) {
		return true, n.cursor.AdvanceInto(entry)
	})
}

// GoBack navigates to the parent directory. It is a no-op at the
// filesystem root and at home.
func (n *NavigationController) GoBack() error {
	if n.catalog == nil {
		return ErrNotInitialized
	}
	return n.transition(func() (bool, error) {
		return n.cursor.GoBack(), nil
	})
}

// Refresh re-lists the current directory, e.g. after a change notification.
func (n *NavigationController) Refresh() error {
	if n.catalog == nil {
		return ErrNotInitialized
	}
	return n.transition(func() (bool, error) { return true, nil })
}

// SelectIndex marks index as selected and shows its name. Invalid indexes
// are ignored.
func (n *NavigationController) SelectIndex(index int) error {
	if n.catalog == nil {
		return ErrNotInitialized
	}
	entry, ok := n.catalog.At(index)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidSelection, index)
	}
	n.selected = index
	n.deps.presenter().ShowLabel(entry.Name)
	return nil
}

// transition applies move to the cursor and lists the result. On failure
// the cursor goes back to where it was; only if that directory is gone too
// does it fall back to home.
func (n *NavigationController) transition(move func() (bool, error)) error {
	prev := n.cursor.Path()

	moved, err := move()
	if err != nil {
		n.cursor.moveTo(prev)
		return err
	}
	if !moved {
		debug.Log(debug.NAV, "at floor %s, nothing to do", prev)
		return nil
	}

	target := n.cursor.Path()
	cat, err := n.Enumerate(target)
	if err == nil {
		n.install(cat)
		return nil
	}

	debug.Log(debug.NAV, "enumerate %s failed: %v", target, err)
	n.cursor.moveTo(prev)
	if target == prev || !fs.IsDir(prev) {
		n.recoverHome()
	}
	n.deps.presenter().ShowError(err)
	return err
}

// recoverHome is the last resort when the previous directory is no longer
// browsable. If home cannot be listed either the cursor stays put.
func (n *NavigationController) recoverHome() {
	home := n.cursor.Home()
	cat, err := n.Enumerate(home)
	if err != nil {
		debug.Warn(debug.NAV, "home %s not browsable: %v", home, err)
		return
	}
	n.cursor.ResetToHome()
	n.install(cat)
}

// install publishes a new catalog together with the cursor path it
// describes, then rebinds the list handlers to it.
func (n *NavigationController) install(cat *fs.Catalog) {
	if !cat.Describes(n.cursor.Path()) {
		// Enumerate returns the cleaned input path, so this only trips on a
		// misbehaving lister.
		cat = &fs.Catalog{Path: n.cursor.Path(), Entries: cat.Entries}
	}
	n.catalog = cat
	n.selected = -1
	n.bindHandlers(cat)

	if n.deps.Watcher != nil {
		if err := n.deps.Watcher.Follow(cat.Path); err != nil {
			debug.Log(debug.WATCH, "follow %s: %v", cat.Path, err)
		}
	}

	p := n.deps.presenter()
	p.ShowListing(Listing{Path: cat.Path, Entries: cat.Entries})
	p.ShowLabel(cat.Path)
	debug.Log(debug.NAV, "now at %s (%d entries)", cat.Path, cat.Len())
}

func (n *NavigationController) bindHandlers(cat *fs.Catalog) {
	if n.deps.Events == nil {
		return
	}
	bind := func(slot Slot, fn func(int) error) {
		err := n.deps.Handlers.Bind(slot, func() events.Token {
			return n.deps.Events.Subscribe(string(slot), func(i int) {
				if n.catalog != cat {
					debug.Log(debug.NAV, "%s for stale listing of %s dropped", slot, cat.Path)
					return
				}
				if err := fn(i); err != nil && !errors.Is(err, ErrTargetNotDirectory) {
					debug.Log(debug.NAV, "%s(%d): %v", slot, i, err)
				}
			})
		})
		if err != nil {
			debug.Error(debug.NAV, err, "bind %s", slot)
		}
	}
	bind(SlotActivate, n.ActivateEntry)
	bind(SlotSelectionChanged, n.SelectIndex)
}

// Close drops the list handlers and the directory watch and returns the
// navigator to its uninitialized state at home.
func (n *NavigationController) Close() {
	n.deps.Handlers.Revoke(SlotActivate)
	n.deps.Handlers.Revoke(SlotSelectionChanged)
	if n.deps.Watcher != nil {
		n.deps.Watcher.Unwatch()
	}
	n.catalog = nil
	n.selected = -1
	n.cursor.ResetToHome()
}

// Catalog returns the listing of CurrentPath, or nil before Open.
func (n *NavigationController) Catalog() *fs.Catalog {
	return n.catalog
}

// CurrentPath returns the cursor's canonical path.
func (n *NavigationController) CurrentPath() string {
	return n.cursor.Path()
}

// HomePath returns the browsing floor.
func (n *NavigationController) HomePath() string {
	return n.cursor.Home()
}

// Selected returns the selected index, if any.
func (n *NavigationController) Selected() (int, bool) {
	return n.selected, n.selected >= 0
}

// Initialized reports whether a directory has been opened.
func (n *NavigationController) Initialized() bool {
	return n.catalog != nil
}
