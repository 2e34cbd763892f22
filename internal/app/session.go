package app

import (
	"path/filepath"

	"github.com/justyntemme/dirindex/internal/debug"
	"github.com/justyntemme/dirindex/internal/events"
	"github.com/justyntemme/dirindex/internal/store"
)

// SettingsStore remembers small key/value settings between runs.
type SettingsStore interface {
	SaveSetting(key, value string) error
}

// Session is one stretch of browsing: from the browse view opening to it
// closing. Entering again after End starts from home with fresh bindings.
type Session struct {
	deps     *SharedDeps
	Nav      *NavigationController
	Trigger  *IndexingTrigger
	Settings SettingsStore // optional
	active   bool
}

func NewSession(deps *SharedDeps, nav *NavigationController, trigger *IndexingTrigger) *Session {
	return &Session{deps: deps, Nav: nav, Trigger: trigger}
}

// Begin opens the navigator at the cursor's path, falling back to home,
// and binds the index-click slot.
func (s *Session) Begin() error {
	path := s.Nav.CurrentPath()
	debug.Log(debug.APP, "session begin at %s", path)

	if err := s.Nav.Open(path); err != nil {
		home := s.Nav.HomePath()
		if path == home {
			return err
		}
		debug.Log(debug.APP, "retrying at home %s", home)
		if err := s.Nav.Open(home); err != nil {
			return err
		}
	}

	if s.deps.Events != nil {
		err := s.deps.Handlers.Bind(SlotIndexClick, func() events.Token {
			return s.deps.Events.Subscribe(string(SlotIndexClick), func(int) {
				// The cursor is read when the click arrives, not when bound.
				s.Trigger.Start(s.Nav.CurrentPath())
			})
		})
		if err != nil {
			return err
		}
	}
	s.active = true
	return nil
}

// End tears the session down: every slot is revoked and the cursor goes
// back to home.
func (s *Session) End() {
	if !s.active {
		return
	}
	last := s.Nav.CurrentPath()
	s.deps.Handlers.RevokeAll()
	s.Nav.Close()
	s.active = false

	if s.Settings != nil {
		_ = s.Settings.SaveSetting(store.KeyLastPath, last)
	}
	debug.Log(debug.APP, "session end (was at %s)", last)
}

// Active reports whether Begin has run without a matching End.
func (s *Session) Active() bool {
	return s.active
}

// HandleChange refreshes the listing when dir is the directory on screen.
func (s *Session) HandleChange(dir string) {
	if !s.active || filepath.Clean(dir) != s.Nav.CurrentPath() {
		return
	}
	debug.Log(debug.WATCH, "refresh %s", dir)
	_ = s.Nav.Refresh()
}
