package fs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/justyntemme/dirindex/internal/debug"
	"golang.org/x/text/unicode/norm"
)

// Enumerate lists the direct children of path. Directories come first, then
// everything else; each group is ordered by normalized, case-folded name with
// the raw name as tie-breaker. Entry.Index is the position in that order.
//
// Children that cannot be stat'ed are skipped. Failing to open path itself
// returns an *EnumerationError.
func Enumerate(path string) (*Catalog, error) {
	path = filepath.Clean(path)
	debug.Log(debug.FS, "Enumerate: reading %q", path)

	if err := checkReadableDir(path); err != nil {
		debug.Log(debug.FS, "Enumerate: %v", err)
		return nil, err
	}

	var result []Entry
	var mu sync.Mutex
	var rootErr error

	conf := &fastwalk.Config{
		Follow: true, // Follow symlinks to get target info
	}

	err := fastwalk.Walk(conf, path, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			if fullPath == path {
				mu.Lock()
				rootErr = err
				mu.Unlock()
				return fastwalk.SkipDir
			}
			debug.Log(debug.FS_WALK, "Enumerate: walk error at %q: %v", fullPath, err)
			return nil
		}

		if fullPath == path {
			return nil
		}

		// Only direct children. Names may contain characters that are
		// separators on other platforms, so compare parents instead.
		if filepath.Dir(fullPath) != path {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			// Broken symlink: report the link itself.
			info, err = os.Lstat(fullPath)
			if err != nil {
				debug.Log(debug.FS_WALK, "Enumerate: skipping %q: %v", d.Name(), err)
				return nil
			}
		}

		kind := KindFile
		if info.IsDir() {
			kind = KindDir
		}

		mu.Lock()
		result = append(result, Entry{
			Name:    d.Name(),
			Path:    fullPath,
			Kind:    kind,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		mu.Unlock()

		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	})
	if err == nil {
		err = rootErr
	}
	if err != nil {
		return nil, newEnumerationError(path, err)
	}

	sortEntries(result)
	for i := range result {
		result[i].Index = i
	}

	debug.Log(debug.FS, "Enumerate: %q has %d entries", path, len(result))
	return &Catalog{Path: path, Entries: result}, nil
}

// IsDir reports whether path exists and is a directory, following symlinks.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Exists reports whether anything exists at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func checkReadableDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return newEnumerationError(path, err)
	}
	if !info.IsDir() {
		return &EnumerationError{Path: path, Kind: ErrNotADirectory}
	}

	f, err := os.Open(path)
	if err != nil {
		return newEnumerationError(path, err)
	}
	defer f.Close()

	if _, err := f.ReadDir(1); err != nil && err != io.EOF {
		return newEnumerationError(path, err)
	}
	return nil
}

func sortEntries(entries []Entry) {
	keys := make(map[string]string, len(entries))
	for _, e := range entries {
		keys[e.Path] = strings.ToLower(norm.NFC.String(e.Name))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Kind != b.Kind {
			return a.Kind == KindDir
		}
		ka, kb := keys[a.Path], keys[b.Path]
		if ka != kb {
			return ka < kb
		}
		return a.Name < b.Name
	})
}
