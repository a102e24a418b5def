package models

import (
	"sort"
	"time"

	"github.com/facette/natsort"
)

// DuplicateGroup is a set of two or more files with identical content
type DuplicateGroup struct {
	Size        int64
	Fingerprint Fingerprint
	Files       []*FileDescriptor
}

// Paths returns the absolute paths of the group members in insertion order
func (g DuplicateGroup) Paths() []string {
	paths := make([]string, len(g.Files))
	for i, f := range g.Files {
		paths[i] = f.Path()
	}
	return paths
}

// ReclaimableBytes is the space held by every copy but one
func (g DuplicateGroup) ReclaimableBytes() int64 {
	if len(g.Files) < 2 {
		return 0
	}
	return g.Size * int64(len(g.Files)-1)
}

// DuplicateReport is the ordered list of duplicate groups found by a run
type DuplicateReport struct {
	Groups []DuplicateGroup
}

// Paths flattens the report, one group's members after another
func (r *DuplicateReport) Paths() []string {
	var paths []string
	for _, g := range r.Groups {
		paths = append(paths, g.Paths()...)
	}
	return paths
}

// FileCount returns the number of files across all groups
func (r *DuplicateReport) FileCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Files)
	}
	return n
}

// Sort orders groups by the natural order of their first path.
// Members inside a group keep their insertion order.
func (r *DuplicateReport) Sort() {
	sort.SliceStable(r.Groups, func(i, j int) bool {
		a, b := r.Groups[i], r.Groups[j]
		if len(a.Files) == 0 || len(b.Files) == 0 {
			return len(a.Files) > len(b.Files)
		}
		return natsort.Compare(a.Files[0].Path(), b.Files[0].Path())
	})
}

// ScanReport represents the results of a scan operation
type ScanReport struct {
	// Operation details
	OperationID string
	RootPath    string
	HashMethod  string

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats Statistics

	// Duplicates found
	Duplicates *DuplicateReport

	// Files that could not be fingerprinted
	Failures []HashFailure

	// OutputPath is where the duplicate list was written
	OutputPath string

	// Overall status
	Status ScanStatus
}

// Statistics holds scan metrics
type Statistics struct {
	FilesScanned     int
	BytesScanned     int64
	SizeGroups       int // distinct sizes seen
	CandidateFiles   int // files sharing their size with at least one other file
	FilesHashed      int
	HashFailures     int
	DuplicateGroups  int
	DuplicateFiles   int
	ReclaimableBytes int64
}

// ScanStatus represents the overall result
type ScanStatus string

const (
	// StatusSuccess indicates every candidate was fingerprinted
	StatusSuccess ScanStatus = "success"
	// StatusPartial indicates some files could not be hashed and were left out
	StatusPartial ScanStatus = "partial"
	// StatusFailed indicates the scan could not complete
	StatusFailed ScanStatus = "failed"
)

// ExitCode returns the process exit code for the status.
// A partial scan still produced a complete report and exits 0.
func (s ScanStatus) ExitCode() int {
	switch s {
	case StatusSuccess, StatusPartial:
		return 0
	case StatusFailed:
		return 2
	default:
		return 2
	}
}
