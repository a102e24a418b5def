package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// Report export formats
const (
	ReportHuman   = "human"
	ReportJSON    = "json"
	ReportMsgpack = "msgpack"
)

// WriteReport writes the full scan report (groups, fingerprints and
// failures) to path in the given format: "human", "json" or "msgpack".
func WriteReport(report *models.ScanReport, path string, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	switch format {
	case ReportJSON:
		err = writeReportJSON(report, file)
	case ReportMsgpack:
		err = writeReportMsgpack(report, file)
	case ReportHuman, "":
		err = writeReportHuman(report, file)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return file.Close()
}

// writeReportHuman writes the report in human-readable format
func writeReportHuman(report *models.ScanReport, w io.Writer) error {
	fmt.Fprintf(w, "Duplicates Report\n")
	fmt.Fprintf(w, "=================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Root: %s\n", report.RootPath)
	fmt.Fprintf(w, "Hash: %s\n", report.HashMethod)
	fmt.Fprintf(w, "Status: %s\n\n", report.Status)

	groups := 0
	if report.Duplicates != nil {
		groups = len(report.Duplicates.Groups)
	}
	fmt.Fprintf(w, "Duplicate groups: %d, reclaimable: %s\n\n", groups, formatBytes(report.Stats.ReclaimableBytes))

	if report.Duplicates != nil {
		for i, g := range report.Duplicates.Groups {
			label := fmt.Sprintf("Group %d: %d files x %s", i+1, len(g.Files), formatBytes(g.Size))
			fmt.Fprintf(w, "%s\n", label)
			fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))
			fmt.Fprintf(w, "  md5: %s\n", g.Fingerprint)
			for _, f := range g.Files {
				fmt.Fprintf(w, "  %s  (modified %s)\n", f.Path(), f.LastModifiedTime().Format(time.RFC3339))
			}
			fmt.Fprintf(w, "\n")
		}
	}

	if len(report.Failures) > 0 {
		label := fmt.Sprintf("Hash Failures (%d files)", len(report.Failures))
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))
		for _, failure := range report.Failures {
			fmt.Fprintf(w, "  %s\n", failure.Path)
			fmt.Fprintf(w, "    Error: %s (%s)\n", failure.Error, failure.ErrorClass)
		}
	}

	return nil
}

// writeReportJSON writes the report in JSON format
func writeReportJSON(report *models.ScanReport, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewJSONReportData(report))
}

// writeReportMsgpack writes the report in MessagePack, keyed like the JSON form
func writeReportMsgpack(report *models.ScanReport, w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(NewJSONReportData(report))
}
