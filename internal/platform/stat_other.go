//go:build !linux && !darwin && !windows

package platform

// Stat reads the attributes of path with a single lstat call.
// Creation and access times report the modification time.
func Stat(path string) (*FileStat, error) {
	st, _, err := lstat(path)
	return st, err
}
