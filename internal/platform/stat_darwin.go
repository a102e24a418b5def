package platform

import (
	"syscall"
	"time"
)

// Stat reads the attributes of path with a single lstat call
func Stat(path string) (*FileStat, error) {
	st, info, err := lstat(path)
	if err != nil {
		return nil, err
	}
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		st.Created = time.Unix(sys.Birthtimespec.Unix())
		st.Accessed = time.Unix(sys.Atimespec.Unix())
	}
	return st, nil
}
