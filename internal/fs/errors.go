package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Enumeration error kinds. Match them with errors.Is against any error
// returned from Enumerate or Walk.
var (
	ErrNotADirectory    = errors.New("not a directory")
	ErrPermissionDenied = errors.New("permission denied")
	ErrPathNotFound     = errors.New("path not found")
	ErrAccess           = errors.New("access error")
)

// EnumerationError describes why a directory could not be listed.
type EnumerationError struct {
	Path string
	Kind error // one of the Err* kinds above
	Err  error // underlying OS error, may be nil
}

func (e *EnumerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("enumerate %s: %v: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("enumerate %s: %v", e.Path, e.Kind)
}

func (e *EnumerationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newEnumerationError(path string, err error) *EnumerationError {
	return &EnumerationError{Path: path, Kind: classify(err), Err: err}
}

func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrPathNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, syscall.ENOTDIR):
		return ErrNotADirectory
	default:
		return ErrAccess
	}
}
