package output

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/sdejongh/dupnorris/pkg/models"
)

const progressTemplate = `{{string . "prefix"}}{{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{speed . "%s files/s"}} {{rtime . "ETA %s"}}`

// getUpdateInterval returns the progress refresh interval.
// Windows terminals are slower with ANSI sequences.
func getUpdateInterval() time.Duration {
	if runtime.GOOS == "windows" {
		return 300 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// IsInteractive reports whether w is a terminal
func IsInteractive(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// ProgressFormatter shows a hashing progress bar, then the human summary
type ProgressFormatter struct {
	mu       sync.Mutex
	writer   io.Writer
	bar      *pb.ProgressBar
	failures int
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{}
}

// Start initializes the bar for totalFiles candidates
func (f *ProgressFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer

	fmt.Fprintf(writer, "Hashing %d candidate files, %s total\n", totalFiles, formatBytes(totalBytes))

	f.bar = pb.ProgressBarTemplate(progressTemplate).New(totalFiles)
	f.bar.SetWriter(writer)
	f.bar.SetRefreshRate(getUpdateInterval())
	f.bar.Set("prefix", "md5 ")
	if width, _, err := termSize(writer); err == nil && width > 0 {
		f.bar.SetWidth(width)
	}
	f.bar.Start()

	return nil
}

func termSize(w io.Writer) (int, int, error) {
	file, ok := w.(*os.File)
	if !ok {
		return 0, 0, fmt.Errorf("not a file")
	}
	return term.GetSize(int(file.Fd()))
}

// Progress advances the bar on every finished file
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar == nil {
		return nil
	}

	switch update.Type {
	case EventHashComplete:
		f.bar.Increment()
	case EventHashError:
		f.failures++
		f.bar.Set("prefix", fmt.Sprintf("md5 (%d failed) ", f.failures))
		f.bar.Increment()
	}

	return nil
}

// Complete stops the bar and displays the summary
func (f *ProgressFormatter) Complete(report *models.ScanReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
	if f.writer == nil {
		f.writer = os.Stdout
	}

	writeSummary(f.writer, report)
	return nil
}

// Error stops the bar and reports the error
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
