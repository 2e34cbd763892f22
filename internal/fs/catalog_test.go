package fs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkTree(t *testing.T, root string, dirs, files []string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("test content"), 0o644))
	}
}

func TestEnumerate_OrderAndIndexes(t *testing.T) {
	tmpDir := t.TempDir()
	mkTree(t, tmpDir,
		[]string{"zeta", "Alpha", ".hidden_dir"},
		[]string{"b.txt", "A.go", ".hidden_file", "zeta/nested.txt"},
	)

	cat, err := Enumerate(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Clean(tmpDir), cat.Path)
	assert.Equal(t, []string{".hidden_dir", "Alpha", "zeta", ".hidden_file", "A.go", "b.txt"}, cat.Names())

	for i, e := range cat.Entries {
		assert.Equal(t, i, e.Index, "index of %s", e.Name)
		assert.Equal(t, filepath.Join(tmpDir, e.Name), e.Path)
	}
	assert.True(t, cat.Entries[0].IsDir())
	assert.False(t, cat.Entries[4].IsDir())
	assert.EqualValues(t, len("test content"), cat.Entries[4].Size)
}

func TestEnumerate_DoesNotRecurse(t *testing.T) {
	tmpDir := t.TempDir()
	mkTree(t, tmpDir, []string{"dir1/sub"}, []string{"dir1/nested.txt", "top.txt"})

	cat, err := Enumerate(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"dir1", "top.txt"}, cat.Names())
}

func TestEnumerate_BackslashInNames(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("backslash is a separator on windows")
	}
	tmpDir := t.TempDir()
	mkTree(t, tmpDir, []string{`x\y`}, []string{`a\b.txt`, "plain.txt", `x\y/inner.txt`})

	cat, err := Enumerate(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{`x\y`, `a\b.txt`, "plain.txt"}, cat.Names())
	assert.True(t, cat.Entries[0].IsDir())
	assert.Equal(t, filepath.Join(tmpDir, `a\b.txt`), cat.Entries[1].Path)
}

func TestEnumerate_EmptyDirectory(t *testing.T) {
	cat, err := Enumerate(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())
	_, ok := cat.At(0)
	assert.False(t, ok)
}

func TestEnumerate_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	testCases := []struct {
		name string
		path string
		kind error
	}{
		{"missing", filepath.Join(tmpDir, "nope"), ErrPathNotFound},
		{"file", file, ErrNotADirectory},
		{"below file", filepath.Join(file, "child"), ErrNotADirectory},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cat, err := Enumerate(tc.path)
			assert.Nil(t, cat)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)

			var enumErr *EnumerationError
			require.True(t, errors.As(err, &enumErr))
			assert.Equal(t, filepath.Clean(tc.path), enumErr.Path)
		})
	}
}

func TestEnumerate_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}
	tmpDir := t.TempDir()
	secret := filepath.Join(tmpDir, "secret")
	require.NoError(t, os.Mkdir(secret, 0o000))
	t.Cleanup(func() { _ = os.Chmod(secret, 0o755) })

	_, err := Enumerate(secret)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestEnumerate_SymlinkHandling(t *testing.T) {
	tmpDir := t.TempDir()
	mkTree(t, tmpDir, []string{"realdir"}, []string{"realfile.txt"})

	if err := os.Symlink(filepath.Join(tmpDir, "realdir"), filepath.Join(tmpDir, "linkdir")); err != nil {
		t.Skipf("cannot create symlinks: %v", err)
	}

	cat, err := Enumerate(tmpDir)
	require.NoError(t, err)

	byName := map[string]Entry{}
	for _, e := range cat.Entries {
		byName[e.Name] = e
	}
	require.Contains(t, byName, "linkdir")
	assert.True(t, byName["linkdir"].IsDir(), "symlink to directory should appear as directory")
	assert.False(t, byName["realfile.txt"].IsDir())
}

func TestCatalog_Describes(t *testing.T) {
	cat := &Catalog{Path: "/home/user"}
	assert.True(t, cat.Describes("/home/user/"))
	assert.False(t, cat.Describes("/home"))

	var nilCat *Catalog
	assert.False(t, nilCat.Describes("/"))
	assert.Equal(t, 0, nilCat.Len())
}

func TestIsDirAndExists(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	assert.True(t, IsDir(tmpDir))
	assert.False(t, IsDir(file))
	assert.True(t, Exists(file))
	assert.False(t, Exists(filepath.Join(tmpDir, "missing")))
}
