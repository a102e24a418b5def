package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	mu         sync.Mutex
	writer     io.Writer
	totalFiles int
	totalBytes int64
	startTime  time.Time
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writer = writer
	f.totalFiles = totalFiles
	f.totalBytes = totalBytes
	f.startTime = time.Now()

	if writer != nil {
		fmt.Fprintf(writer, "Hashing %d candidate files, %s total\n",
			totalFiles, formatBytes(totalBytes))
	}

	return nil
}

// Progress reports files that could not be hashed
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		return nil
	}

	if update.Type == EventHashError {
		fmt.Fprintf(f.writer, "[%d/%d] ✗ %s: %v\n",
			update.CurrentFile, f.totalFiles,
			update.FilePath, update.Error)
	}

	return nil
}

// Complete finalizes output and displays summary
func (f *HumanFormatter) Complete(report *models.ScanReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		f.writer = io.Discard
	}
	writeSummary(f.writer, report)
	return nil
}

// writeSummary prints the run summary shared by the human and progress formatters
func writeSummary(w io.Writer, report *models.ScanReport) {
	s := report.Stats

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Scan completed in %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Scanned:\n")
	fmt.Fprintf(w, "    Files:          %s (%s)\n", humanize.Comma(int64(s.FilesScanned)), formatBytes(s.BytesScanned))
	fmt.Fprintf(w, "    Size groups:    %s\n", humanize.Comma(int64(s.SizeGroups)))
	fmt.Fprintf(w, "    Candidates:     %s\n", humanize.Comma(int64(s.CandidateFiles)))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Hashing:\n")
	fmt.Fprintf(w, "    Method:         %s\n", report.HashMethod)
	fmt.Fprintf(w, "    Files hashed:   %s\n", humanize.Comma(int64(s.FilesHashed)))
	fmt.Fprintf(w, "    Failures:       %s\n", humanize.Comma(int64(s.HashFailures)))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Duplicates:\n")
	fmt.Fprintf(w, "    Groups:         %s\n", humanize.Comma(int64(s.DuplicateGroups)))
	fmt.Fprintf(w, "    Files:          %s\n", humanize.Comma(int64(s.DuplicateFiles)))
	fmt.Fprintf(w, "    Reclaimable:    %s\n", formatBytes(s.ReclaimableBytes))

	if report.OutputPath != "" {
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "Duplicate list: %s\n", report.OutputPath)
	}

	fmt.Fprintf(w, "Status: %s\n", report.Status)

	if len(report.Failures) > 0 {
		fmt.Fprintf(w, "\nHash failures:\n")
		for _, failure := range report.Failures {
			fmt.Fprintf(w, "  %s: %s\n", failure.Path, failure.Error)
		}
	}
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// formatBytes formats bytes in IEC units (1.5 KiB)
func formatBytes(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}
