package search

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"Hello, World!", []string{"hello", "world"}},
		{"a b cd", []string{"cd"}},
		{"snake_case-and.dots", []string{"snake", "case", "and", "dots"}},
		{"Straße", []string{"strasse"}},
		{"café", []string{"café"}},
		{"v2 x86_64", []string{"v2", "x86", "64"}},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Tokenize(tc.input), "Tokenize(%q)", tc.input)
	}
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func hitPaths(root string, hits []Hit) []string {
	var out []string
	for _, h := range hits {
		rel, _ := filepath.Rel(root, h.Doc.Path)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestBuild_IndexesContentsAndNames(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"notes.txt":        "alpha beta beta",
		"docs/readme.md":   "beta gamma",
		"docs/alpha.md":    "nothing here",
		"bin/blob.dat":     "alpha\x00\x00binary",
		"skip/ignored.txt": "alpha alpha alpha",
	})

	ix, err := Build(context.Background(), root, BuildOptions{Exclude: []string{"skip"}})
	require.NoError(t, err)

	assert.Equal(t, filepath.Clean(root), ix.Root)
	assert.Equal(t, 4, ix.DocCount())

	// Contents and file names are both searchable; binaries only by name.
	assert.Equal(t, []string{"docs/alpha.md", "notes.txt"}, hitPaths(root, ix.Search(Parse("alpha"), 0)))
	assert.Equal(t, []string{"notes.txt", "docs/readme.md"}, hitPaths(root, ix.Search(Parse("beta"), 0)))
	assert.Equal(t, []string{"docs/readme.md"}, hitPaths(root, ix.Search(Parse("beta gamma"), 0)))
	assert.Empty(t, ix.Search(Parse("beta missing"), 0))
	assert.Equal(t, []string{"bin/blob.dat"}, hitPaths(root, ix.Search(Parse("blob"), 0)))
}

func TestBuild_FiltersAndLimit(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.go":  "shared",
		"b.go":  "shared shared",
		"c.txt": "shared",
	})

	ix, err := Build(context.Background(), root, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"b.go", "a.go"}, hitPaths(root, ix.Search(Parse("shared ext:go"), 0)))
	assert.Equal(t, []string{"b.go"}, hitPaths(root, ix.Search(Parse("shared"), 1)))
	assert.Equal(t, []string{"c.txt"}, hitPaths(root, ix.Search(Parse("ext:txt"), 0)))
	assert.Nil(t, ix.Search(Parse(""), 0))
}

func TestBuild_MaxFileSizeIndexesNameOnly(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"big.txt": "needle needle needle"})

	ix, err := Build(context.Background(), root, BuildOptions{MaxFileSize: 4})
	require.NoError(t, err)
	assert.Empty(t, ix.Search(Parse("needle"), 0))
	assert.Len(t, ix.Search(Parse("big"), 0), 1)
}

func TestFileBuilder_ReportsProgress(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "a", "b.txt": "b", "sub/c.txt": "c"})

	b, err := NewBuilder(BuildOptions{})
	require.NoError(t, err)

	var calls, max atomic.Int64
	ix, err := b.Build(context.Background(), root, func(files int64) {
		calls.Add(1)
		for {
			cur := max.Load()
			if files <= cur || max.CompareAndSwap(cur, files) {
				return
			}
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ix.DocCount())
	assert.EqualValues(t, 3, calls.Load())
	assert.EqualValues(t, 3, max.Load())
}

func TestBuild_Errors(t *testing.T) {
	_, err := NewBuilder(BuildOptions{Exclude: []string{"[unclosed"}})
	assert.Error(t, err)

	_, err = Build(context.Background(), filepath.Join(t.TempDir(), "missing"), BuildOptions{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"x.txt": "x"})
	_, err = Build(ctx, root, BuildOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewIndex_SortsPostings(t *testing.T) {
	docs := []Document{{ID: 0, Path: "/r/a"}, {ID: 1, Path: "/r/b"}}
	ix := NewIndex("/r/", time.Unix(0, 0), docs, map[string][]Posting{
		"t": {{Doc: 1, Freq: 1}, {Doc: 0, Freq: 3}},
	})

	assert.Equal(t, "/r", ix.Root)
	assert.Equal(t, []Posting{{Doc: 0, Freq: 3}, {Doc: 1, Freq: 1}}, ix.Postings("t"))
	assert.Equal(t, 1, ix.TermCount())

	var terms []string
	require.NoError(t, ix.EachTerm(func(term string, _ []Posting) error {
		terms = append(terms, term)
		return nil
	}))
	assert.Equal(t, []string{"t"}, terms)

	var nilIndex *Index
	assert.Equal(t, 0, nilIndex.DocCount())
	assert.Nil(t, nilIndex.Search(Parse("t"), 0))
}
