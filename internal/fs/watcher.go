package fs

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/justyntemme/dirindex/internal/debug"
)

// DirectoryWatcher follows a single directory and reports debounced change
// notifications for it. Following a new directory drops the previous one.
type DirectoryWatcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	current  string
	notify   chan string
	done     chan struct{}
	debounce time.Duration
	closed   bool
}

// NewDirectoryWatcher starts a watcher goroutine. debounceMs <= 0 uses 200ms.
func NewDirectoryWatcher(debounceMs int) (*DirectoryWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounceMs <= 0 {
		debounceMs = 200
	}

	dw := &DirectoryWatcher{
		watcher:  w,
		notify:   make(chan string, 10),
		done:     make(chan struct{}),
		debounce: time.Duration(debounceMs) * time.Millisecond,
	}

	go dw.run()
	return dw, nil
}

func (dw *DirectoryWatcher) run() {
	var lastEvent time.Time
	pending := ""
	ticker := time.NewTicker(dw.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-dw.done:
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if !(event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Write)) {
				continue
			}

			dw.mu.Lock()
			current := dw.current
			dw.mu.Unlock()

			// Events for the directory itself or one of its children.
			if event.Name == current || filepath.Dir(event.Name) == current {
				pending = current
				lastEvent = time.Now()
				debug.Log(debug.WATCH, "event %s on %s", event.Op, event.Name)
			}

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			debug.Log(debug.WATCH, "fsnotify error: %v", err)

		case <-ticker.C:
			if pending == "" || time.Since(lastEvent) < dw.debounce {
				continue
			}
			select {
			case dw.notify <- pending:
				debug.Log(debug.WATCH, "change notification: %s", pending)
			default:
				// Channel full, a refresh is already queued.
			}
			pending = ""
		}
	}
}

// Follow makes path the only watched directory.
func (dw *DirectoryWatcher) Follow(path string) error {
	path = filepath.Clean(path)

	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.closed {
		return nil
	}
	if dw.current == path {
		return nil
	}
	if dw.current != "" {
		if err := dw.watcher.Remove(dw.current); err != nil {
			// Path may already be gone.
			debug.Log(debug.WATCH, "unwatch %s: %v", dw.current, err)
		}
		dw.current = ""
	}
	if err := dw.watcher.Add(path); err != nil {
		return err
	}
	dw.current = path
	debug.Log(debug.WATCH, "following %s", path)
	return nil
}

// Unwatch stops watching the current directory, if any.
func (dw *DirectoryWatcher) Unwatch() {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.current != "" && !dw.closed {
		_ = dw.watcher.Remove(dw.current)
	}
	dw.current = ""
}

// Watching returns the directory currently followed.
func (dw *DirectoryWatcher) Watching() string {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return dw.current
}

// Notify returns the channel that receives changed directory paths.
func (dw *DirectoryWatcher) Notify() <-chan string {
	return dw.notify
}

// Close shuts down the watcher.
func (dw *DirectoryWatcher) Close() error {
	dw.mu.Lock()
	if dw.closed {
		dw.mu.Unlock()
		return nil
	}
	dw.closed = true
	dw.mu.Unlock()

	close(dw.done)
	return dw.watcher.Close()
}
