package search

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/justyntemme/dirindex/internal/debug"
	"github.com/justyntemme/dirindex/internal/fs"
)

// DefaultMaxFileSize bounds how much of a file is read for indexing.
const DefaultMaxFileSize = 10 * 1024 * 1024

const sniffLen = 512

// BuildOptions tunes what gets indexed.
type BuildOptions struct {
	MaxFileSize int64    // files larger than this are indexed by name only
	MaxDepth    int      // 0 = unlimited
	Exclude     []string // glob patterns matched against base name and relative path
}

// ProgressFunc receives the running count of files seen by a build. It may
// be called from several goroutines.
type ProgressFunc func(files int64)

// Builder produces an Index for a directory tree. progress may be nil.
type Builder interface {
	Build(ctx context.Context, root string, progress ProgressFunc) (*Index, error)
}

// FileBuilder indexes file names and text contents below a root.
type FileBuilder struct {
	opts    BuildOptions
	exclude []glob.Glob
	now     func() time.Time
}

// NewBuilder compiles the exclude patterns in opts.
func NewBuilder(opts BuildOptions) (*FileBuilder, error) {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	b := &FileBuilder{opts: opts, now: time.Now}
	for _, pattern := range opts.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		b.exclude = append(b.exclude, g)
	}
	return b, nil
}

// Build is a convenience for NewBuilder(opts) followed by Build.
func Build(ctx context.Context, root string, opts BuildOptions) (*Index, error) {
	b, err := NewBuilder(opts)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, root, nil)
}

func (b *FileBuilder) excluded(root, path, name string) bool {
	if len(b.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, g := range b.exclude {
		if g.Match(name) || g.Match(rel) {
			return true
		}
	}
	return false
}

type collected struct {
	doc   Document
	freqs map[string]int
}

// Build walks root and returns a fresh Index. Unreadable files are skipped;
// only an unreadable root or a cancelled ctx fails the build.
func (b *FileBuilder) Build(ctx context.Context, root string, progress ProgressFunc) (*Index, error) {
	root = filepath.Clean(root)
	start := b.now()
	debug.Log(debug.INDEX, "Build: root=%q", root)

	var mu sync.Mutex
	var files []collected

	walkOpts := fs.WalkOptions{MaxDepth: b.opts.MaxDepth, Progress: progress}
	err := fs.Walk(ctx, root, walkOpts, func(path string, info os.FileInfo) error {
		if b.excluded(root, path, info.Name()) {
			if info.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		freqs := make(map[string]int)
		for _, tok := range Tokenize(info.Name()) {
			freqs[tok]++
		}
		if info.Size() <= b.opts.MaxFileSize {
			if err := tokenizeFile(path, freqs); err != nil {
				debug.Log(debug.INDEX, "Build: skipping contents of %q: %v", path, err)
			}
		}

		total := 0
		for _, n := range freqs {
			total += n
		}

		c := collected{
			doc: Document{
				Path:    path,
				Name:    info.Name(),
				Size:    info.Size(),
				ModTime: info.ModTime(),
				Terms:   total,
			},
			freqs: freqs,
		}
		mu.Lock()
		files = append(files, c)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The walk is concurrent; sort for stable document IDs.
	sort.Slice(files, func(i, j int) bool { return files[i].doc.Path < files[j].doc.Path })

	docs := make([]Document, len(files))
	postings := make(map[string][]Posting)
	for id, c := range files {
		c.doc.ID = id
		docs[id] = c.doc
		for term, n := range c.freqs {
			postings[term] = append(postings[term], Posting{Doc: id, Freq: n})
		}
	}

	ix := NewIndex(root, b.now(), docs, postings)
	debug.Log(debug.INDEX, "Build: root=%q docs=%d terms=%d took=%v",
		root, ix.DocCount(), ix.TermCount(), time.Since(start))
	return ix, nil
}

// tokenizeFile adds the words of a text file to freqs. Files whose first
// block contains a NUL byte are treated as binary and left out.
func tokenizeFile(path string, freqs map[string]int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	head, err := r.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return err
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		for _, tok := range Tokenize(sc.Text()) {
			freqs[tok]++
		}
	}
	return sc.Err()
}
