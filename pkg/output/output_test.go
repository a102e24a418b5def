package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/sdejongh/dupnorris/pkg/models"
)

func mustDescriptor(t *testing.T, path string, size int64) *models.FileDescriptor {
	t.Helper()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	d, err := models.NewFileDescriptor(path, size, now, now, now)
	if err != nil {
		t.Fatalf("NewFileDescriptor() error = %v", err)
	}
	return d
}

func sampleReport(t *testing.T) *models.ScanReport {
	t.Helper()
	return &models.ScanReport{
		OperationID: "op-1",
		RootPath:    "/x",
		HashMethod:  "md5-inprocess",
		StartTime:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Duration:    1500 * time.Millisecond,
		Stats: models.Statistics{
			FilesScanned:     3,
			BytesScanned:     12,
			SizeGroups:       1,
			CandidateFiles:   3,
			FilesHashed:      3,
			HashFailures:     1,
			DuplicateGroups:  1,
			DuplicateFiles:   2,
			ReclaimableBytes: 4,
		},
		Duplicates: &models.DuplicateReport{Groups: []models.DuplicateGroup{{
			Size:        4,
			Fingerprint: "e2:fc:71:4c:47:27:ee:93:95:f3:24:cd:2e:7f:33:1f",
			Files:       []*models.FileDescriptor{mustDescriptor(t, "/x/a", 4), mustDescriptor(t, "/x/b", 4)},
		}}},
		Failures:   []models.HashFailure{{Path: "/x/c", ErrorClass: "*fs.PathError", Error: "permission denied"}},
		OutputPath: "./duplicates.log",
		Status:     models.StatusPartial,
	}
}

// TestDuplicateWriter tests the duplicates.log writer
func TestDuplicateWriter(t *testing.T) {
	t.Run("WorkingDirectory", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		path, err := NewDuplicateWriter("").Write([]string{"/x/a", "/x/b"})
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if path != "./duplicates.log" {
			t.Errorf("Write() path = %s, want ./duplicates.log", path)
		}

		data, err := os.ReadFile(filepath.Join(dir, DuplicatesFileName))
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		want := "/x/a" + LineSeparator + "/x/b" + LineSeparator
		if string(data) != want {
			t.Errorf("content = %q, want %q", data, want)
		}

		lines := strings.Split(strings.TrimSuffix(string(data), LineSeparator), LineSeparator)
		if len(lines) != 2 || lines[0] != "/x/a" || lines[1] != "/x/b" {
			t.Errorf("lines = %q, want [/x/a /x/b]", lines)
		}
	})

	t.Run("ExplicitDirectory", func(t *testing.T) {
		dir := t.TempDir()

		path, err := NewDuplicateWriter(dir).Write([]string{"/données/é.txt"})
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if path != filepath.Join(dir, DuplicatesFileName) {
			t.Errorf("Write() path = %s", path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(data) != "/données/é.txt"+LineSeparator {
			t.Errorf("content = %q", data)
		}
	})

	t.Run("EmptyReportTruncates", func(t *testing.T) {
		dir := t.TempDir()
		w := NewDuplicateWriter(dir)
		if _, err := w.Write([]string{"/old"}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if _, err := w.Write(nil); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		data, _ := os.ReadFile(w.Path())
		if len(data) != 0 {
			t.Errorf("content = %q, want empty", data)
		}
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		_, err := NewDuplicateWriter(filepath.Join(t.TempDir(), "missing")).Write([]string{"/x/a"})
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Write() error = %v, want ErrNotExist", err)
		}
	})
}

func TestLineSeparator(t *testing.T) {
	if lineSeparator("windows") != "\r\n" {
		t.Error("windows separator should be CRLF")
	}
	if lineSeparator("linux") != "\n" || lineSeparator("darwin") != "\n" {
		t.Error("unix separator should be LF")
	}
}

func TestHumanFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter()

	if err := f.Start(&buf, 3, 12); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	f.Progress(ProgressUpdate{Type: EventHashComplete, FilePath: "/x/a", CurrentFile: 1})
	f.Progress(ProgressUpdate{Type: EventHashError, FilePath: "/x/c", CurrentFile: 3, Error: errors.New("permission denied")})
	if err := f.Complete(sampleReport(t)); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Hashing 3 candidate files, 12 B total",
		"[3/3] ✗ /x/c: permission denied",
		"Scan completed in 1.5s",
		"Groups:         1",
		"Reclaimable:    4 B",
		"Duplicate list: ./duplicates.log",
		"Status: partial",
		"/x/c: permission denied",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "/x/a\n") {
		t.Error("successful files should not be listed")
	}
	if f.Name() != "human" {
		t.Errorf("Name() = %s", f.Name())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter()

	f.Start(&buf, 3, 12)
	f.Progress(ProgressUpdate{Type: EventHashComplete, FilePath: "/x/a"})
	if err := f.Complete(sampleReport(t)); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	var data JSONReportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("output is not a single JSON document: %v", err)
	}
	if data.Status != "partial" || data.DurationMs != 1500 {
		t.Errorf("status/duration = %s/%d", data.Status, data.DurationMs)
	}
	if len(data.Groups) != 1 || len(data.Groups[0].Paths) != 2 || data.Groups[0].Paths[0] != "/x/a" {
		t.Errorf("groups = %+v", data.Groups)
	}
	if len(data.Failures) != 1 || data.Failures[0].Path != "/x/c" {
		t.Errorf("failures = %+v", data.Failures)
	}
	if data.Stats.Reclaimable != "4 B" {
		t.Errorf("reclaimable = %s", data.Stats.Reclaimable)
	}
}

func TestJSONReportDataNoDuplicates(t *testing.T) {
	report := &models.ScanReport{Status: models.StatusSuccess}
	data := NewJSONReportData(report)
	if data.Groups == nil || len(data.Groups) != 0 {
		t.Errorf("Groups = %v, want empty non-nil slice", data.Groups)
	}
}

func TestProgressFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewProgressFormatter()

	if err := f.Start(&buf, 2, 8); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	f.Progress(ProgressUpdate{Type: EventHashComplete})
	f.Progress(ProgressUpdate{Type: EventHashError, Error: errors.New("boom")})
	if err := f.Complete(sampleReport(t)); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Hashing 2 candidate files") {
		t.Errorf("missing header in %q", out)
	}
	if !strings.Contains(out, "Status: partial") {
		t.Errorf("missing summary in %q", out)
	}
	if f.failures != 1 {
		t.Errorf("failures = %d, want 1", f.failures)
	}
}

func TestNewFormatter(t *testing.T) {
	var buf bytes.Buffer
	if New("json", &buf, true).Name() != "json" {
		t.Error("json format should use the JSON formatter")
	}
	// a buffer is never a terminal
	if New("human", &buf, true).Name() != "human" {
		t.Error("non-interactive output should use the human formatter")
	}
	if IsInteractive(&buf) {
		t.Error("IsInteractive(buffer) = true")
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	report := sampleReport(t)

	t.Run("Human", func(t *testing.T) {
		path := filepath.Join(dir, "report.txt")
		if err := WriteReport(report, path, ReportHuman); err != nil {
			t.Fatalf("WriteReport() error = %v", err)
		}
		data, _ := os.ReadFile(path)
		out := string(data)
		for _, want := range []string{"Duplicates Report", "Group 1: 2 files x 4 B", "md5: e2:fc", "  /x/a", "Hash Failures (1 files)"} {
			if !strings.Contains(out, want) {
				t.Errorf("report missing %q", want)
			}
		}
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(dir, "report.json")
		if err := WriteReport(report, path, ReportJSON); err != nil {
			t.Fatalf("WriteReport() error = %v", err)
		}
		data, _ := os.ReadFile(path)
		var decoded JSONReportData
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if decoded.OperationID != "op-1" || len(decoded.Groups) != 1 {
			t.Errorf("decoded = %+v", decoded)
		}
	})

	t.Run("Msgpack", func(t *testing.T) {
		path := filepath.Join(dir, "report.msgpack")
		if err := WriteReport(report, path, ReportMsgpack); err != nil {
			t.Fatalf("WriteReport() error = %v", err)
		}
		data, _ := os.ReadFile(path)
		var decoded map[string]interface{}
		if err := msgpack.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if decoded["root"] != "/x" || decoded["status"] != "partial" {
			t.Errorf("decoded = %v", decoded)
		}
	})

	t.Run("UnsupportedFormat", func(t *testing.T) {
		if err := WriteReport(report, filepath.Join(dir, "report.csv"), "csv"); err == nil {
			t.Error("WriteReport() should fail for csv")
		}
	})
}
