package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sdejongh/dupnorris/internal/platform"
	"github.com/sdejongh/dupnorris/pkg/models"
)

// Local is a filesystem-based storage backend
type Local struct {
	rootPath string
}

// NewLocal creates a new local filesystem backend
func NewLocal(rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	// the walk does not descend into symlinks, the root included
	absPath, err = filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{rootPath: absPath}, nil
}

// Root returns the absolute root path
func (l *Local) Root() string {
	return l.rootPath
}

// Walk visits the tree under the root and returns a descriptor for every
// regular file. Directories, symlinks and special files are skipped, so
// symlink loops cannot occur. Each descriptor comes from a single stat call.
//
// An unreadable root fails the walk; unreadable entries below it are
// reported to opts.OnError and skipped.
func (l *Local) Walk(ctx context.Context, opts WalkOptions) ([]*models.FileDescriptor, error) {
	var files []*models.FileDescriptor
	excluder := NewExcluder(opts.ExcludePatterns)

	skip := func(path string, err error) {
		if opts.OnError != nil {
			opts.OnError(path, err)
		}
	}

	err := filepath.WalkDir(l.rootPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == l.rootPath {
				return err
			}
			skip(p, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if p == l.rootPath {
			return nil
		}

		relPath, err := filepath.Rel(l.rootPath, p)
		if err != nil {
			return err
		}

		if excluder.Match(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		st, err := platform.Stat(p)
		if err != nil {
			skip(p, err)
			return nil
		}
		// replaced between readdir and stat
		if !st.Regular || st.Size < opts.MinSize {
			return nil
		}

		fd, err := models.NewFileDescriptor(p, st.Size, st.Created, st.Modified, st.Accessed)
		if err != nil {
			skip(p, err)
			return nil
		}
		files = append(files, fd)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", l.rootPath, err)
	}

	return files, nil
}

func (l *Local) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.rootPath, path)
}

// Read opens a file for reading
func (l *Local) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(l.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}
