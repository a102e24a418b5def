package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DuplicatesFileName is the name of the duplicate list written by a scan
const DuplicatesFileName = "duplicates.log"

// LineSeparator is the platform line separator used in duplicates.log
var LineSeparator = lineSeparator(runtime.GOOS)

func lineSeparator(goos string) string {
	if goos == "windows" {
		return "\r\n"
	}
	return "\n"
}

// DuplicateWriter persists the duplicate paths of a scan, one per line
type DuplicateWriter struct {
	dir string
}

// NewDuplicateWriter creates a writer for dir. An empty dir means the
// process working directory.
func NewDuplicateWriter(dir string) *DuplicateWriter {
	return &DuplicateWriter{dir: dir}
}

// Path returns the file written by Write
func (w *DuplicateWriter) Path() string {
	if w.dir == "" || w.dir == "." {
		return "./" + DuplicatesFileName
	}
	return filepath.Join(w.dir, DuplicatesFileName)
}

// Write replaces duplicates.log with paths, each followed by the line
// separator, and returns the file path. Errors are returned, not retried.
func (w *DuplicateWriter) Write(paths []string) (string, error) {
	path := w.Path()

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	buf := bufio.NewWriter(file)
	for _, p := range paths {
		if _, err := buf.WriteString(p + LineSeparator); err != nil {
			file.Close()
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	if err := buf.Flush(); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	return path, nil
}
