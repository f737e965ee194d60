// Package storage defines the file-system abstraction shared by the
// build pipeline (site source) and the writer (output tree).
package storage

import "time"

// FileMeta is a lightweight description of one file under a root.
type FileMeta struct {
	Path     string    `json:"path"`
	Checksum string    `json:"checksum"`
	ModTime  time.Time `json:"mod_time"`
}

// Provider is the interface for rooted file operations.
type Provider interface {
	// List returns metadata for files under dir (relative to root),
	// filtered to the given extensions. No extensions means all files.
	List(dir string, exts ...string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to root).
	Move(oldPath, newPath string) error
}
