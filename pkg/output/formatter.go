// Package output renders scan progress and results: the duplicates.log list,
// the end-of-run summary and exported reports.
package output

import (
	"io"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// Progress event types
const (
	EventHashStart    = "hash_start"
	EventHashComplete = "hash_complete"
	EventHashError    = "hash_error"
)

// ProgressUpdate represents a progress notification during a scan
type ProgressUpdate struct {
	Type        string // one of the Event* constants
	FilePath    string
	Bytes       int64
	CurrentFile int
	TotalFiles  int
	Error       error
}

// Formatter defines the interface for output formatting.
// Progress may be called from several hashing workers at once.
type Formatter interface {
	// Start is called once the candidate files are known, before hashing
	Start(writer io.Writer, totalFiles int, totalBytes int64) error

	// Progress reports progress during hashing
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays summary
	Complete(report *models.ScanReport) error

	// Error reports an error that stopped the scan
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for format ("human" or "json").
// A human formatter on an interactive terminal shows a progress bar.
func New(format string, w io.Writer, progress bool) Formatter {
	if format == "json" {
		return NewJSONFormatter()
	}
	if progress && IsInteractive(w) {
		return NewProgressFormatter()
	}
	return NewHumanFormatter()
}
