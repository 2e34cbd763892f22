package main

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/justyntemme/dirindex/internal/app"
	"github.com/justyntemme/dirindex/internal/fs"
	"github.com/justyntemme/dirindex/internal/search"
)

// shellPresenter renders core outcomes as plain text. Job updates arrive
// from indexing goroutines, so every write holds mu.
type shellPresenter struct {
	mu  sync.Mutex
	out io.Writer
}

func newShellPresenter(out io.Writer) *shellPresenter {
	return &shellPresenter{out: out}
}

func (p *shellPresenter) ShowListing(l app.Listing) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(l.Entries) == 0 {
		fmt.Fprintln(p.out, "  (empty)")
		return
	}
	for _, e := range l.Entries {
		fmt.Fprintln(p.out, formatEntry(e))
	}
}

func formatEntry(e fs.Entry) string {
	if e.IsDir() {
		return fmt.Sprintf("%4d  %9s  %s/", e.Index, "-", e.Name)
	}
	return fmt.Sprintf("%4d  %9s  %s", e.Index, humanize.Bytes(uint64(e.Size)), e.Name)
}

func (p *shellPresenter) ShowLabel(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "» %s\n", label)
}

func (p *shellPresenter) ShowError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var enumErr *fs.EnumerationError
	switch {
	case errors.As(err, &enumErr):
		fmt.Fprintf(p.out, "cannot open %s: %v\n", enumErr.Path, enumErr.Kind)
	default:
		fmt.Fprintf(p.out, "error: %v\n", err)
	}
}

func (p *shellPresenter) ShowJob(s app.JobStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, formatJob(s))
}

func formatJob(s app.JobStatus) string {
	id := s.ID
	if len(id) > 8 {
		id = id[:8]
	}
	switch s.State {
	case app.JobDone:
		return fmt.Sprintf("[%s] done    %s: %s files in %s", id, s.Target,
			humanize.Comma(int64(s.Docs)), s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
	case app.JobFailed:
		return fmt.Sprintf("[%s] failed  %s: %v", id, s.Target, s.Err)
	default:
		return fmt.Sprintf("[%s] pending %s (%s files seen, started %s)", id, s.Target,
			humanize.Comma(s.Files), humanize.Time(s.StartedAt))
	}
}

func (p *shellPresenter) printf(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

func (p *shellPresenter) showHits(hits []search.Hit) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(hits) == 0 {
		fmt.Fprintln(p.out, "no matches")
		return
	}
	for _, h := range hits {
		fmt.Fprintf(p.out, "%4d  %9s  %-12s  %s\n", h.Score,
			humanize.Bytes(uint64(h.Doc.Size)), humanize.Time(h.Doc.ModTime), h.Doc.Path)
	}
}
