// Package hash computes content fingerprints for file descriptors.
//
// Two strategies produce the same MD5 digest: InProcess streams the file
// through crypto/md5, Native runs a host tool (openssl or md5sum) as a
// subprocess. The strategy is picked once by Detect and wrapped by a Computer,
// which never fails: a file that cannot be hashed gets a random token instead.
package hash

import (
	"context"
	"io"
)

// Strategy computes the raw MD5 digest of a file
type Strategy interface {
	// Digest returns the 16-byte digest of the file content at path
	Digest(ctx context.Context, path string) ([]byte, error)

	// Name returns the strategy name
	Name() string
}

// Source opens files for in-process hashing.
// storage.Backend satisfies it.
type Source interface {
	Read(ctx context.Context, path string) (io.ReadCloser, error)
}

// ReaderWrapper wraps a reader (e.g. for rate limiting)
type ReaderWrapper func(ctx context.Context, rc io.ReadCloser) io.ReadCloser

// DigestSize is the length of an MD5 digest in bytes
const DigestSize = 16
