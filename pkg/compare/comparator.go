// Package compare confirms duplicate candidates byte by byte.
package compare

import (
	"context"
	"io"
)

// Result represents the outcome of comparing two files
type Result string

const (
	// Same indicates files are identical
	Same Result = "same"
	// Different indicates files differ
	Different Result = "different"
)

// Comparison holds the result of comparing two files
type Comparison struct {
	PathA  string
	PathB  string
	Result Result
	Reason string
	// Offset is the first differing byte, or -1
	Offset int64
}

// Source opens files for reading. storage.Local implements it.
type Source interface {
	Read(ctx context.Context, path string) (io.ReadCloser, error)
}

// ReaderWrapper wraps a reader (e.g., for rate limiting)
type ReaderWrapper func(ctx context.Context, rc io.ReadCloser) io.ReadCloser

// Comparator defines the interface for file comparison algorithms
type Comparator interface {
	// Compare compares two files and returns the result
	Compare(ctx context.Context, pathA, pathB string) (*Comparison, error)

	// Name returns the name of the comparison method
	Name() string
}
