// Package storage defines the inbox folder abstraction.
package storage

import (
	"path/filepath"
	"strings"
	"time"
)

// Entry describes one note file waiting in the inbox.
type Entry struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for inbox file operations.
type Provider interface {
	// List returns the note files (.md, .txt) directly inside dir (relative to root).
	List(dir string) ([]Entry, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Move renames oldPath to newPath (both relative to root).
	Move(oldPath, newPath string) error
}

// IsNote reports whether name has an extension the inbox imports. Hidden files,
// including in-flight temp files, are skipped.
func IsNote(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch filepath.Ext(name) {
	case ".md", ".txt":
		return true
	}
	return false
}
