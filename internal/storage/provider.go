// Package storage defines the content-tree file-system abstraction.
// The writer is its sole mutator during a sync pass.
package storage

import "time"

// FileInfo is lightweight metadata for one content file.
type FileInfo struct {
	Path    string // relative to the content root, slash-separated
	ModTime time.Time
}

// Provider is the interface for content-tree file operations. All paths
// are relative to the content root.
type Provider interface {
	// List walks the tree and returns every recognized content file.
	List() ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parents.
	Write(path string, content []byte) error
	// Delete removes the file at path and prunes now-empty parent
	// directories. A missing file is not an error.
	Delete(path string) error
	// Move renames oldPath to newPath, creating parents.
	Move(oldPath, newPath string) error
	// Exists reports whether a file exists at path.
	Exists(path string) bool
	// Stat returns metadata for a single file.
	Stat(path string) (FileInfo, error)
	// Root returns the absolute content root directory.
	Root() string
}
