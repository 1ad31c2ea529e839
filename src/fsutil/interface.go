package fsutil

import (
	"time"
)

// FileStore provides an interface for file system operations
type FileStore interface {
	// ReadFile reads a file and returns its contents
	ReadFile(path string) ([]byte, error)

	// WriteFile writes contents to a file, creating it if necessary
	WriteFile(path string, data []byte) error

	// MakeDirectory creates a new directory and all necessary parents
	MakeDirectory(path string) error

	// Remove removes a single file; reports whether it existed
	Remove(path string) (bool, error)

	// RemoveAll removes a path and any children it contains
	RemoveAll(path string) error

	// Exists reports whether the path exists
	Exists(path string) bool

	// ListFiles lists the regular files directly under a directory,
	// returning an empty slice when the directory does not exist
	ListFiles(path string) ([]FileInfo, error)
}

// FileInfo describes one regular file in a directory listing
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}
