package types

import (
	"io/fs"
)

// FS is the filesystem surface used to manage the output root. Source trees
// are read through io/fs.FS instead.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	OpenExclusive(name string, perm fs.FileMode) (WriteCloser, error)

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}

// WriteCloser is the handle OpenExclusive returns
type WriteCloser interface {
	Write(p []byte) (int, error)
	Close() error
}
