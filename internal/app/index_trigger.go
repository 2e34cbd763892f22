package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/justyntemme/dirindex/internal/debug"
	"github.com/justyntemme/dirindex/internal/search"
	"github.com/justyntemme/dirindex/internal/store"
	"github.com/puzpuzpuz/xsync/v4"
)

// progressEvery is how many files pass between pending job reports.
const progressEvery = 1000

// JobState is the lifecycle state of an indexing job.
type JobState int

const (
	JobPending JobState = iota
	JobDone
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobDone:
		return "done"
	case JobFailed:
		return "failed"
	default:
		return "pending"
	}
}

// IndexJob tracks one background indexing run. Its result is set at most
// once; later attempts are discarded.
type IndexJob struct {
	ID        string
	Target    string
	StartedAt time.Time

	files      atomic.Int64
	mu         sync.Mutex
	state      JobState
	err        error
	result     *search.Index
	finishedAt time.Time
	done       chan struct{}
}

func newIndexJob(target string) *IndexJob {
	return &IndexJob{
		ID:        uuid.NewString(),
		Target:    target,
		StartedAt: time.Now(),
		done:      make(chan struct{}),
	}
}

// publish stores ix as the job's result. It reports false if the job had
// already finished.
func (j *IndexJob) publish(ix *search.Index) bool {
	return j.finish(JobDone, ix, nil)
}

func (j *IndexJob) fail(err error) bool {
	return j.finish(JobFailed, nil, err)
}

func (j *IndexJob) finish(state JobState, ix *search.Index, err error) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state != JobPending {
		return false
	}
	j.state = state
	j.result = ix
	j.err = err
	j.finishedAt = time.Now()
	close(j.done)
	return true
}

func (j *IndexJob) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Err returns the failure reason of a failed job.
func (j *IndexJob) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Result returns the published index, or nil unless the job is done.
func (j *IndexJob) Result() *search.Index {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// Done is closed once the job has finished either way.
func (j *IndexJob) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes or ctx is done.
func (j *IndexJob) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return j.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status snapshots the job for presentation.
func (j *IndexJob) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobStatus{
		ID:         j.ID,
		Target:     j.Target,
		State:      j.state,
		Err:        j.err,
		Docs:       j.result.DocCount(),
		Files:      j.files.Load(),
		StartedAt:  j.StartedAt,
		FinishedAt: j.finishedAt,
	}
}

// IndexStore persists finished indexes and job outcomes.
type IndexStore interface {
	SaveIndex(*search.Index) error
	RecordJob(store.JobRecord) error
}

// IndexingTrigger runs index builds in the background and exposes the most
// recently published index to readers. A new Start never cancels a running
// job; when two jobs overlap the one that finishes last wins.
type IndexingTrigger struct {
	deps    *SharedDeps
	builder search.Builder
	store   IndexStore // optional

	current   atomic.Pointer[search.Index]
	jobs      *xsync.Map[string, *IndexJob]
	publishMu sync.Mutex
	wg        sync.WaitGroup
}

// NewIndexingTrigger creates a trigger. st may be nil to skip persistence.
func NewIndexingTrigger(deps *SharedDeps, builder search.Builder, st IndexStore) *IndexingTrigger {
	return &IndexingTrigger{
		deps:    deps,
		builder: builder,
		store:   st,
		jobs:    xsync.NewMap[string, *IndexJob](),
	}
}

// Start launches an indexing job for path as it is now and returns
// immediately.
func (t *IndexingTrigger) Start(path string) *IndexJob {
	job := newIndexJob(filepath.Clean(path))
	t.jobs.Store(job.ID, job)
	debug.Log(debug.INDEX, "job %s: start %s", job.ID, job.Target)
	t.deps.presenter().ShowJob(job.Status())

	t.wg.Add(1)
	go t.run(job)
	return job
}

func (t *IndexingTrigger) run(job *IndexJob) {
	defer t.wg.Done()

	ix, err := t.builder.Build(context.Background(), job.Target, t.progress(job))
	if err == nil && ix == nil {
		err = errors.New("builder returned no index")
	}
	if err != nil {
		job.fail(fmt.Errorf("%w: %s: %w", ErrIndexIO, job.Target, err))
		debug.Error(debug.INDEX, err, "job %s: %s", job.ID, job.Target)
		t.record(job)
		t.deps.presenter().ShowJob(job.Status())
		return
	}

	// Publishing and persisting happen under one lock so the stored
	// snapshot always matches the one readers see.
	// Only run finishes a job, so the shared index is swapped before the
	// job's Done channel closes.
	t.publishMu.Lock()
	t.current.Store(ix)
	job.publish(ix)
	debug.Log(debug.INDEX, "job %s: published %s docs=%d terms=%d",
		job.ID, ix.Root, ix.DocCount(), ix.TermCount())
	if t.store != nil {
		if err := t.store.SaveIndex(ix); err != nil {
			debug.Error(debug.INDEX, err, "job %s: persist", job.ID)
		}
	}
	t.publishMu.Unlock()

	t.record(job)
	t.deps.presenter().ShowJob(job.Status())
}

// progress counts files for job and reports a pending status every
// progressEvery files.
func (t *IndexingTrigger) progress(job *IndexJob) search.ProgressFunc {
	return func(files int64) {
		for {
			cur := job.files.Load()
			if files <= cur || job.files.CompareAndSwap(cur, files) {
				break
			}
		}
		if files%progressEvery == 0 && job.State() == JobPending {
			t.deps.presenter().ShowJob(job.Status())
		}
	}
}

func (t *IndexingTrigger) record(job *IndexJob) {
	if t.store == nil {
		return
	}
	st := job.Status()
	rec := store.JobRecord{
		ID:         st.ID,
		Target:     st.Target,
		State:      st.State.String(),
		Docs:       st.Docs,
		StartedAt:  st.StartedAt,
		FinishedAt: st.FinishedAt,
	}
	if st.Err != nil {
		rec.Err = st.Err.Error()
	}
	_ = t.store.RecordJob(rec)
}

// Index returns the last published index, or nil.
func (t *IndexingTrigger) Index() *search.Index {
	return t.current.Load()
}

// IndexFor returns the published index only if it was built for path.
func (t *IndexingTrigger) IndexFor(path string) *search.Index {
	ix := t.current.Load()
	if ix == nil || ix.Root != filepath.Clean(path) {
		return nil
	}
	return ix
}

// Seed installs a previously saved index if nothing has been published yet.
func (t *IndexingTrigger) Seed(ix *search.Index) bool {
	if ix == nil {
		return false
	}
	return t.current.CompareAndSwap(nil, ix)
}

// Job looks up a job by ID.
func (t *IndexingTrigger) Job(id string) (*IndexJob, bool) {
	return t.jobs.Load(id)
}

// Jobs returns every job started by this trigger, oldest first.
func (t *IndexingTrigger) Jobs() []*IndexJob {
	var out []*IndexJob
	t.jobs.Range(func(_ string, job *IndexJob) bool {
		out = append(out, job)
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Wait blocks until every started job has finished.
func (t *IndexingTrigger) Wait() {
	t.wg.Wait()
}
