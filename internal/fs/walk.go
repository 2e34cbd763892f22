package fs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/justyntemme/dirindex/internal/debug"
)

// SkipDir may be returned from a WalkFunc to prune a directory.
var SkipDir = fastwalk.SkipDir

// WalkFunc is called for every regular file and directory below the walk
// root. It may be called concurrently from several goroutines.
type WalkFunc func(path string, info os.FileInfo) error

// WalkOptions tunes Walk.
type WalkOptions struct {
	// MaxDepth limits recursion; direct children of root are depth 1.
	// Zero or negative means unlimited.
	MaxDepth int
	// Progress, if set, is called with the running count of visited files.
	Progress func(files int64)
}

// skipDirRoots contains top-level directories to skip (without trailing slash)
var skipDirRoots = map[string]bool{
	"dev":        true,
	"proc":       true,
	"sys":        true,
	"run":        true,
	"snap":       true,
	"boot":       true,
	"lost+found": true,
}

// shouldSkipPath returns true if path lives under one of the pseudo
// filesystems in skipDirRoots.
func shouldSkipPath(path string) bool {
	if len(path) < 2 || path[0] != '/' {
		return false
	}
	rest := path[1:]
	slashIdx := strings.IndexByte(rest, '/')
	var firstComponent string
	if slashIdx == -1 {
		firstComponent = rest
	} else {
		firstComponent = rest[:slashIdx]
	}
	return skipDirRoots[firstComponent]
}

// Walk recursively visits root without following symlinks. Errors below the
// root are logged and skipped; an unreadable root is returned as an
// *EnumerationError. Walk stops early when ctx is done.
func Walk(ctx context.Context, root string, opts WalkOptions, fn WalkFunc) error {
	root = filepath.Clean(root)
	debug.Log(debug.FS, "Walk: starting root=%q maxDepth=%d", root, opts.MaxDepth)

	if err := checkReadableDir(root); err != nil {
		return err
	}

	var files atomic.Int64

	// Symlinks are not followed so links to a parent cannot loop.
	conf := &fastwalk.Config{
		Follow: false,
	}

	err := fastwalk.Walk(conf, root, func(fullPath string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			debug.Log(debug.FS_WALK, "Walk: error at %q: %v", fullPath, err)
			return nil
		}
		if fullPath == root {
			return nil
		}

		if shouldSkipPath(fullPath) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if opts.MaxDepth > 0 && fastwalk.DirEntryDepth(d) > opts.MaxDepth {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			info, err = os.Lstat(fullPath)
			if err != nil {
				debug.Log(debug.FS_WALK, "Walk: skipping %q: %v", d.Name(), err)
				return nil
			}
		}

		// Devices, sockets, and dangling links carry no content.
		if !info.IsDir() && !info.Mode().IsRegular() {
			return nil
		}

		if !info.IsDir() {
			n := files.Add(1)
			if opts.Progress != nil {
				opts.Progress(n)
			}
		}

		return fn(fullPath, info)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newEnumerationError(root, err)
	}

	debug.Log(debug.FS, "Walk: complete root=%q files=%d", root, files.Load())
	return nil
}
