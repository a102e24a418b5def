package platform

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// Stat reads the attributes of path with a single statx call.
// Filesystems that do not report a birth time get the modification time.
func Stat(path string) (*FileStat, error) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW,
		unix.STATX_BASIC_STATS|unix.STATX_BTIME, &stx)
	if errors.Is(err, unix.ENOSYS) {
		// kernels before 4.11
		st, _, err := lstat(path)
		return st, err
	}
	if err != nil {
		return nil, &StatError{Path: path, Err: err}
	}

	st := &FileStat{
		Size:     int64(stx.Size),
		Regular:  stx.Mode&unix.S_IFMT == unix.S_IFREG,
		Modified: statxTime(stx.Mtime),
		Accessed: statxTime(stx.Atime),
	}
	if stx.Mask&unix.STATX_BTIME != 0 {
		st.Created = statxTime(stx.Btime)
	} else {
		st.Created = st.Modified
	}
	return st, nil
}

func statxTime(ts unix.StatxTimestamp) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
}
