package dedupe

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/output"
	"github.com/sdejongh/dupnorris/pkg/storage"
)

// Engine orchestrates a scan: walk, group, write the duplicate list
type Engine struct {
	backend   storage.Backend
	pipeline  *Pipeline
	writer    *output.DuplicateWriter
	formatter output.Formatter
	out       io.Writer
	logger    logging.Logger
	operation *models.ScanOperation
}

// NewEngine creates a new scan engine. formatter may be nil; when set it
// writes to out.
func NewEngine(
	backend storage.Backend,
	pipeline *Pipeline,
	writer *output.DuplicateWriter,
	formatter output.Formatter,
	out io.Writer,
	logger logging.Logger,
	operation *models.ScanOperation,
) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Engine{
		backend:   backend,
		pipeline:  pipeline,
		writer:    writer,
		formatter: formatter,
		out:       out,
		logger:    logger,
		operation: operation,
	}
}

// Run executes the scan. The returned report is non-nil whenever the walk
// succeeded, even if writing the duplicate list failed.
func (e *Engine) Run(ctx context.Context) (*models.ScanReport, error) {
	report := &models.ScanReport{
		OperationID: e.operation.ID,
		RootPath:    e.backend.Root(),
		HashMethod:  string(e.operation.HashMethod),
		StartTime:   time.Now(),
		Duplicates:  &models.DuplicateReport{},
		Status:      models.StatusSuccess,
	}
	e.logger.Info(ctx, "scan started", logging.Fields{
		"operation_id": e.operation.ID,
		"root":         report.RootPath,
		"hash":         report.HashMethod,
	})

	files, err := e.backend.Walk(ctx, storage.WalkOptions{
		ExcludePatterns: e.operation.ExcludePatterns,
		MinSize:         e.operation.MinSize,
		OnError: func(path string, err error) {
			e.logger.Warn(ctx, "skipping unreadable entry", logging.Fields{
				"path":  path,
				"error": err.Error(),
			})
		},
	})
	if err != nil {
		return e.fail(ctx, report, fmt.Errorf("failed to walk %s: %w", report.RootPath, err))
	}

	report.Stats.FilesScanned = len(files)
	for _, f := range files {
		report.Stats.BytesScanned += f.Size()
	}

	if e.formatter != nil {
		e.pipeline.SetFormatter(e.formatter, e.out)
	}

	result, err := e.pipeline.Run(ctx, files)
	if err != nil {
		return e.fail(ctx, report, err)
	}

	report.Duplicates = result.Report
	report.Failures = result.Failures
	report.Stats.SizeGroups = result.SizeGroups
	report.Stats.CandidateFiles = result.CandidateFiles
	report.Stats.FilesHashed = result.FilesHashed
	report.Stats.HashFailures = len(result.Failures)
	report.Stats.DuplicateGroups = len(result.Report.Groups)
	report.Stats.DuplicateFiles = result.Report.FileCount()
	for _, g := range result.Report.Groups {
		report.Stats.ReclaimableBytes += g.ReclaimableBytes()
	}

	path, err := e.writer.Write(result.Report.Paths())
	if err != nil {
		return e.fail(ctx, report, fmt.Errorf("failed to write duplicate list: %w", err))
	}
	report.OutputPath = path

	if len(report.Failures) > 0 {
		report.Status = models.StatusPartial
	}

	e.logger.Info(ctx, "scan complete", logging.Fields{
		"files":       report.Stats.FilesScanned,
		"groups":      report.Stats.DuplicateGroups,
		"duplicates":  report.Stats.DuplicateFiles,
		"failures":    report.Stats.HashFailures,
		"output_path": path,
	})

	finish(report)
	if e.formatter != nil {
		e.formatter.Complete(report)
	}

	return report, nil
}

func (e *Engine) fail(ctx context.Context, report *models.ScanReport, err error) (*models.ScanReport, error) {
	report.Status = models.StatusFailed
	finish(report)
	e.logger.Error(ctx, "scan failed", err, nil)
	if e.formatter != nil {
		e.formatter.Error(err)
	}
	return report, err
}

func finish(report *models.ScanReport) {
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
}
