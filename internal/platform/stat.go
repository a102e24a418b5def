package platform

import (
	"os"
	"time"
)

// FileStat is the result of one stat call on a path.
// Symlinks are not followed.
type FileStat struct {
	Size     int64
	Regular  bool
	Created  time.Time
	Modified time.Time
	Accessed time.Time
}

// lstat is the portable variant: every timestamp is the modification time
func lstat(path string) (*FileStat, os.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, nil, &StatError{Path: path, Err: err}
	}

	return &FileStat{
		Size:     info.Size(),
		Regular:  info.Mode().IsRegular(),
		Created:  info.ModTime(),
		Modified: info.ModTime(),
		Accessed: info.ModTime(),
	}, info, nil
}

// StatError wraps a failed stat call
type StatError struct {
	Path string
	Err  error
}

func (e *StatError) Error() string {
	return "stat '" + e.Path + "': " + e.Err.Error()
}

func (e *StatError) Unwrap() error {
	return e.Err
}
