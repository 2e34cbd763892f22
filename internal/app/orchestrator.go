package app

import (
	"context"
	"errors"

	"github.com/justyntemme/dirindex/internal/config"
	"github.com/justyntemme/dirindex/internal/debug"
	"github.com/justyntemme/dirindex/internal/events"
	"github.com/justyntemme/dirindex/internal/fs"
	"github.com/justyntemme/dirindex/internal/search"
	"github.com/justyntemme/dirindex/internal/store"
)

// Orchestrator wires the navigator, the indexing trigger and their
// collaborators from a Config, and runs the single goroutine that drives
// navigation.
type Orchestrator struct {
	cfg     *config.Config
	bus     *events.Bus
	deps    *SharedDeps
	store   *store.DB
	watcher *fs.DirectoryWatcher

	Nav     *NavigationController
	Trigger *IndexingTrigger
	Search  *SearchController
	Session *Session
}

// NewOrchestrator builds every component. The store and the watcher are
// optional: failing to open either is logged and the feature is skipped.
func NewOrchestrator(cfg *config.Config, presenter Presenter) (*Orchestrator, error) {
	builder, err := search.NewBuilder(search.BuildOptions{
		MaxFileSize: cfg.Index.MaxFileSize,
		MaxDepth:    cfg.Index.MaxDepth,
		Exclude:     cfg.Index.Exclude,
	})
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{cfg: cfg, bus: events.NewBus()}

	if cfg.Store.Path != "" {
		db, err := store.Open(cfg.Store.Path)
		if err != nil {
			debug.Warn(debug.STORE, "store disabled: %v", err)
		} else {
			o.store = db
		}
	}

	if cfg.Watch.Enabled {
		w, err := fs.NewDirectoryWatcher(cfg.Watch.DebounceMs)
		if err != nil {
			debug.Warn(debug.WATCH, "watcher disabled: %v", err)
		} else {
			o.watcher = w
		}
	}

	o.deps = &SharedDeps{
		Events:    o.bus,
		Presenter: presenter,
		Handlers:  NewHandlerRegistry(),
		HomePath:  cfg.ResolveHome(),
	}
	if o.watcher != nil {
		o.deps.Watcher = o.watcher
	}

	var idxStore IndexStore
	if o.store != nil && cfg.Index.Persist {
		idxStore = o.store
	}

	o.Nav = NewNavigationController(o.deps)
	o.Trigger = NewIndexingTrigger(o.deps, builder, idxStore)
	o.Search = NewSearchController(o.Trigger)
	o.Session = NewSession(o.deps, o.Nav, o.Trigger)
	if o.store != nil {
		o.Session.Settings = o.store
		if ix, err := o.store.LoadIndex(); err != nil {
			debug.Warn(debug.STORE, "load saved index: %v", err)
		} else if o.Trigger.Seed(ix) {
			debug.Log(debug.INDEX, "seeded saved index for %s (%d docs)", ix.Root, ix.DocCount())
		}
	}

	debug.Log(debug.APP, "orchestrator ready home=%s store=%v watch=%v",
		o.deps.HomePath, o.store != nil, o.watcher != nil)
	return o, nil
}

// Store returns the open database, or nil.
func (o *Orchestrator) Store() *store.DB {
	return o.store
}

// LastPath returns the directory the previous session ended in, if known.
func (o *Orchestrator) LastPath() (string, bool) {
	if o.store == nil {
		return "", false
	}
	p, ok, err := o.store.Setting(store.KeyLastPath)
	if err != nil || !ok || !fs.IsDir(p) {
		return "", false
	}
	return p, true
}

// Emit delivers a presentation event to whichever handler holds slot. It
// must be called from the goroutine running Run.
func (o *Orchestrator) Emit(slot Slot, arg int) int {
	debug.Log(debug.UI, "emit %s(%d)", slot, arg)
	return o.bus.Emit(string(slot), arg)
}

// Run begins a session and then serializes actions and change
// notifications onto the calling goroutine until actions is closed or ctx
// is done.
func (o *Orchestrator) Run(ctx context.Context, actions <-chan func()) error {
	if err := o.Session.Begin(); err != nil {
		return err
	}
	defer o.Session.End()

	var notify <-chan string
	if o.watcher != nil {
		notify = o.watcher.Notify()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn, ok := <-actions:
			if !ok {
				return nil
			}
			fn()
		case dir := <-notify:
			o.Session.HandleChange(dir)
		}
	}
}

// Close waits for running index jobs and releases the watcher and store.
func (o *Orchestrator) Close() error {
	o.Trigger.Wait()

	var errs []error
	if o.watcher != nil {
		errs = append(errs, o.watcher.Close())
	}
	if o.store != nil {
		errs = append(errs, o.store.Close())
	}
	return errors.Join(errs...)
}
