package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	mu     sync.Mutex
	writer io.Writer
}

// JSONReportData represents the final report data
type JSONReportData struct {
	OperationID string               `json:"operation_id" msgpack:"operation_id"`
	Root        string               `json:"root" msgpack:"root"`
	HashMethod  string               `json:"hash_method" msgpack:"hash_method"`
	Status      string               `json:"status" msgpack:"status"`
	StartTime   string               `json:"start_time" msgpack:"start_time"`
	Duration    string               `json:"duration" msgpack:"duration"`
	DurationMs  int64                `json:"duration_ms" msgpack:"duration_ms"`
	OutputPath  string               `json:"output_path,omitempty" msgpack:"output_path,omitempty"`
	Stats       JSONStatsData        `json:"stats" msgpack:"stats"`
	Groups      []JSONGroupData      `json:"groups" msgpack:"groups"`
	Failures    []models.HashFailure `json:"failures,omitempty" msgpack:"failures,omitempty"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	FilesScanned     int    `json:"files_scanned" msgpack:"files_scanned"`
	BytesScanned     int64  `json:"bytes_scanned" msgpack:"bytes_scanned"`
	SizeGroups       int    `json:"size_groups" msgpack:"size_groups"`
	CandidateFiles   int    `json:"candidate_files" msgpack:"candidate_files"`
	FilesHashed      int    `json:"files_hashed" msgpack:"files_hashed"`
	HashFailures     int    `json:"hash_failures" msgpack:"hash_failures"`
	DuplicateGroups  int    `json:"duplicate_groups" msgpack:"duplicate_groups"`
	DuplicateFiles   int    `json:"duplicate_files" msgpack:"duplicate_files"`
	ReclaimableBytes int64  `json:"reclaimable_bytes" msgpack:"reclaimable_bytes"`
	Reclaimable      string `json:"reclaimable" msgpack:"reclaimable"`
}

// JSONGroupData represents one duplicate group
type JSONGroupData struct {
	Size        int64    `json:"size" msgpack:"size"`
	Fingerprint string   `json:"fingerprint" msgpack:"fingerprint"`
	Paths       []string `json:"paths" msgpack:"paths"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Progress is silent so the output stays a single parseable document
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes the report as one JSON document
func (f *JSONFormatter) Complete(report *models.ScanReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		f.writer = io.Discard
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewJSONReportData(report))
}

// NewJSONReportData converts a scan report to its serialized form
func NewJSONReportData(report *models.ScanReport) JSONReportData {
	s := report.Stats
	data := JSONReportData{
		OperationID: report.OperationID,
		Root:        report.RootPath,
		HashMethod:  report.HashMethod,
		Status:      string(report.Status),
		StartTime:   report.StartTime.Format(time.RFC3339),
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		OutputPath:  report.OutputPath,
		Stats: JSONStatsData{
			FilesScanned:     s.FilesScanned,
			BytesScanned:     s.BytesScanned,
			SizeGroups:       s.SizeGroups,
			CandidateFiles:   s.CandidateFiles,
			FilesHashed:      s.FilesHashed,
			HashFailures:     s.HashFailures,
			DuplicateGroups:  s.DuplicateGroups,
			DuplicateFiles:   s.DuplicateFiles,
			ReclaimableBytes: s.ReclaimableBytes,
			Reclaimable:      formatBytes(s.ReclaimableBytes),
		},
		Groups:   []JSONGroupData{},
		Failures: report.Failures,
	}

	if report.Duplicates != nil {
		for _, g := range report.Duplicates.Groups {
			data.Groups = append(data.Groups, JSONGroupData{
				Size:        g.Size,
				Fingerprint: g.Fingerprint.String(),
				Paths:       g.Paths(),
			})
		}
	}

	return data
}

// Error writes the error as a JSON object
func (f *JSONFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		f.writer = os.Stdout
	}
	return json.NewEncoder(f.writer).Encode(map[string]string{"error": err.Error()})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
