package types

import (
	"io"
	"io/fs"
)

// FS abstracts the filesystem operations the sync engine needs
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Chmod(name string, mode fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error

	// CreateTemp creates a new file in dir whose name starts with pattern.
	CreateTemp(dir, pattern string) (TempFile, error)

	// For testing, Lstat can fall back to Stat
	Lstat(name string) (fs.FileInfo, error)
}

// TempFile is the handle returned by FS.CreateTemp
type TempFile interface {
	io.Writer
	Name() string
	Sync() error
	Close() error
}
