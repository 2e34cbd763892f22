package app

import (
	"errors"
	"time"

	"github.com/justyntemme/dirindex/internal/events"
	"github.com/justyntemme/dirindex/internal/fs"
)

var (
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrTargetNotDirectory = errors.New("target is not a directory")
	ErrNotInitialized     = errors.New("navigator not initialized")
	ErrIndexIO            = errors.New("indexing failed")
	ErrUnknownSlot        = errors.New("unknown handler slot")
)

// Subscriber is the presentation layer's event source.
type Subscriber interface {
	Subscribe(slot string, fn func(int)) events.Token
}

// DirFollower keeps a change watch on the directory being browsed.
type DirFollower interface {
	Follow(path string) error
	Unwatch()
}

// Listing is what the presentation layer renders after a transition.
type Listing struct {
	Path    string
	Entries []fs.Entry
}

// JobStatus is the structured outcome reported for an indexing job.
type JobStatus struct {
	ID         string
	Target     string
	State      JobState
	Err        error
	Docs       int
	Files      int64 // files seen so far, updated while pending
	StartedAt  time.Time
	FinishedAt time.Time
}

// Presenter receives structured outcomes from the core. ShowJob is called
// from indexing goroutines; everything else from the caller's goroutine.
type Presenter interface {
	ShowListing(Listing)
	ShowLabel(string)
	ShowError(error)
	ShowJob(JobStatus)
}

type nopPresenter struct{}

func (nopPresenter) ShowListing(Listing) {}
func (nopPresenter) ShowLabel(string)    {}
func (nopPresenter) ShowError(error)     {}
func (nopPresenter) ShowJob(JobStatus)   {}

// SharedDeps holds references to shared dependencies that multiple controllers need.
// All controllers receive a pointer to this struct rather than copying fields.
type SharedDeps struct {
	Events    Subscriber
	Presenter Presenter
	Handlers  *HandlerRegistry
	Watcher   DirFollower // optional
	HomePath  string
}

func (d *SharedDeps) presenter() Presenter {
	if d.Presenter == nil {
		return nopPresenter{}
	}
	return d.Presenter
}
