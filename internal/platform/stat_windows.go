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
	if sys, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		st.Created = time.Unix(0, sys.CreationTime.Nanoseconds())
		st.Accessed = time.Unix(0, sys.LastAccessTime.Nanoseconds())
	}
	return st, nil
}
