// Package storage enumerates and opens the files of a scan root.
package storage

import (
	"context"
	"io"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// WalkOptions filters the files produced by Walk
type WalkOptions struct {
	// ExcludePatterns are matched against paths relative to the root
	ExcludePatterns []string
	// MinSize skips files smaller than this many bytes
	MinSize int64
	// OnError is called for entries that cannot be read; the walk continues.
	// When nil such entries are skipped silently.
	OnError func(path string, err error)
}

// Backend defines the interface for storage operations.
// Backends never modify the files they serve.
type Backend interface {
	// Walk returns a descriptor for every regular file under the root
	Walk(ctx context.Context, opts WalkOptions) ([]*models.FileDescriptor, error)

	// Read opens a file for reading. Relative paths are resolved against the root.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Root returns the absolute root path
	Root() string

	// Close releases any resources held by the backend
	Close() error
}
