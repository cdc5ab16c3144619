// Package storage defines the repository file-system abstraction used to
// read and rewrite documentation files.
package storage

// Provider is the interface for repository file operations. All paths are
// slash- or OS-separated and relative to the repository root.
type Provider interface {
	// Root returns the absolute repository root.
	Root() string
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content. The parent
	// directory must already exist.
	Write(path string, content []byte) error
	// IsDir reports whether path exists and is a directory.
	IsDir(path string) (bool, error)
}
