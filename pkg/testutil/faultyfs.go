package testutil

import (
	"io/fs"
	"strings"

	"github.com/andisab/mise-en-place/pkg/types"
)

// FaultyFS wraps a filesystem and fails selected operations. Each hook
// returns the error to inject, or nil to let the call through.
type FaultyFS struct {
	types.FS

	RenameFunc     func(oldpath, newpath string) error
	CreateTempFunc func(dir, pattern string) error
	WriteFileFunc  func(name string) error
	MkdirAllFunc   func(path string) error
}

// NewFaultyFS wraps inner with no faults configured
func NewFaultyFS(inner types.FS) *FaultyFS {
	return &FaultyFS{FS: inner}
}

// FailRenamesInto makes every rename whose target is below dir fail
func (f *FaultyFS) FailRenamesInto(dir string, err error) *FaultyFS {
	f.RenameFunc = func(_, newpath string) error {
		if strings.HasPrefix(newpath, dir) {
			return err
		}
		return nil
	}
	return f
}

// FailTempFilesIn makes temp file creation below dir fail
func (f *FaultyFS) FailTempFilesIn(dir string, err error) *FaultyFS {
	f.CreateTempFunc = func(d, _ string) error {
		if strings.HasPrefix(d, dir) {
			return err
		}
		return nil
	}
	return f
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if f.RenameFunc != nil {
		if err := f.RenameFunc(oldpath, newpath); err != nil {
			return &fs.PathError{Op: "rename", Path: newpath, Err: err}
		}
	}
	return f.FS.Rename(oldpath, newpath)
}

func (f *FaultyFS) CreateTemp(dir, pattern string) (types.TempFile, error) {
	if f.CreateTempFunc != nil {
		if err := f.CreateTempFunc(dir, pattern); err != nil {
			return nil, &fs.PathError{Op: "createtemp", Path: dir, Err: err}
		}
	}
	return f.FS.CreateTemp(dir, pattern)
}

func (f *FaultyFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if f.WriteFileFunc != nil {
		if err := f.WriteFileFunc(name); err != nil {
			return &fs.PathError{Op: "write", Path: name, Err: err}
		}
	}
	return f.FS.WriteFile(name, data, perm)
}

func (f *FaultyFS) MkdirAll(path string, perm fs.FileMode) error {
	if f.MkdirAllFunc != nil {
		if err := f.MkdirAllFunc(path); err != nil {
			return &fs.PathError{Op: "mkdir", Path: path, Err: err}
		}
	}
	return f.FS.MkdirAll(path, perm)
}
