package models

import (
	"path/filepath"
	"time"
)

// FileDescriptor is a point-in-time snapshot of a regular file.
// All attributes come from a single stat call made by the tree walker and are
// never refreshed afterwards.
type FileDescriptor struct {
	path     string
	size     int64
	created  time.Time
	modified time.Time
	accessed time.Time
}

// NewFileDescriptor creates a descriptor for the file at path.
// Timestamps are truncated to millisecond resolution.
func NewFileDescriptor(path string, size int64, created, modified, accessed time.Time) (*FileDescriptor, error) {
	if path == "" {
		return nil, &ValidationError{Field: "Path", Message: "path is required"}
	}
	if !filepath.IsAbs(path) {
		return nil, &ValidationError{Field: "Path", Message: "path must be absolute: " + path}
	}
	if size < 0 {
		return nil, &ValidationError{Field: "Size", Message: "size must not be negative"}
	}

	return &FileDescriptor{
		path:     path,
		size:     size,
		created:  created.Truncate(time.Millisecond),
		modified: modified.Truncate(time.Millisecond),
		accessed: accessed.Truncate(time.Millisecond),
	}, nil
}

// Path returns the absolute path of the file
func (d *FileDescriptor) Path() string {
	return d.path
}

// Size returns the file size in bytes
func (d *FileDescriptor) Size() int64 {
	return d.size
}

// CreationTime returns the creation (birth) time.
// Platforms without birth time support report the modification time.
func (d *FileDescriptor) CreationTime() time.Time {
	return d.created
}

// LastModifiedTime returns the last modification time
func (d *FileDescriptor) LastModifiedTime() time.Time {
	return d.modified
}

// LastAccessTime returns the last access time
func (d *FileDescriptor) LastAccessTime() time.Time {
	return d.accessed
}

// CreationTimeMillis returns the creation time in Unix milliseconds
func (d *FileDescriptor) CreationTimeMillis() int64 {
	return d.created.UnixMilli()
}

// LastModifiedTimeMillis returns the modification time in Unix milliseconds
func (d *FileDescriptor) LastModifiedTimeMillis() int64 {
	return d.modified.UnixMilli()
}

// LastAccessTimeMillis returns the access time in Unix milliseconds
func (d *FileDescriptor) LastAccessTimeMillis() int64 {
	return d.accessed.UnixMilli()
}

func (d *FileDescriptor) String() string {
	return d.path
}
