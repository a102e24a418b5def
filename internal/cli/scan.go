package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dupnorris/pkg/compare"
	"github.com/sdejongh/dupnorris/pkg/config"
	"github.com/sdejongh/dupnorris/pkg/dedupe"
	"github.com/sdejongh/dupnorris/pkg/hash"
	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/metrics"
	"github.com/sdejongh/dupnorris/pkg/output"
	"github.com/sdejongh/dupnorris/pkg/ratelimit"
	"github.com/sdejongh/dupnorris/pkg/storage"
)

// ScanFlags holds scan command flags
type ScanFlags struct {
	Root         string
	Hash         string
	Parallel     int
	MinSize      string
	Exclude      []string
	QuickCheck   bool
	Verify       bool
	Output       string
	OutputDir    string
	Report       string
	ReportFormat string
	Bandwidth    string
	Metrics      bool
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var scanFlags ScanFlags

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find duplicate files under a directory",
		Long: `Walk a directory tree, group regular files by size, fingerprint the
files that share a size and write every duplicate group to duplicates.log.
Files are never modified.`,
		RunE: runScan,
	}

	// Required flags
	cmd.Flags().StringVarP(&scanFlags.Root, "root", "r", "", "directory to scan (required)")
	cmd.MarkFlagRequired("root")

	// Optional flags
	cmd.Flags().StringVar(&scanFlags.Hash, "hash", "", "hash method: auto, inprocess, openssl, md5sum (default: auto)")
	cmd.Flags().IntVarP(&scanFlags.Parallel, "parallel", "p", 0, "number of parallel hashing workers (default: 5)")
	cmd.Flags().StringVar(&scanFlags.MinSize, "min-size", "", "ignore files smaller than this (e.g., \"1KB\")")
	cmd.Flags().StringSliceVar(&scanFlags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().BoolVar(&scanFlags.QuickCheck, "quick-check", false, "split same-size files by a prefix hash before the full digest")
	cmd.Flags().BoolVar(&scanFlags.Verify, "verify", false, "confirm duplicate groups with a byte-by-byte comparison")
	cmd.Flags().StringVarP(&scanFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&scanFlags.OutputDir, "output-dir", "", "directory receiving duplicates.log (default: working directory)")
	cmd.Flags().StringVar(&scanFlags.Report, "report", "", "write the full scan report to file")
	cmd.Flags().StringVar(&scanFlags.ReportFormat, "report-format", "", "scan report format: human, json, msgpack")
	cmd.Flags().StringVarP(&scanFlags.Bandwidth, "bandwidth", "b", "", "read bandwidth limit for in-process hashing (e.g., \"10M\", \"1G\")")
	cmd.Flags().BoolVar(&scanFlags.Metrics, "metrics", false, "print collector and hashing metrics after the summary")

	// Logging flags
	cmd.Flags().StringVar(&scanFlags.LogFile, "log-file", "", "write logs to file instead of stderr")
	cmd.Flags().StringVar(&scanFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&scanFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate flags
	if err := validateScanFlags(); err != nil {
		return err
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if err := applyFlagsToConfig(cmd, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Create scan operation
	operation, err := createScanOperation(cfg)
	if err != nil {
		return fmt.Errorf("failed to create scan operation: %w", err)
	}

	// Create logger
	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	// Create storage backend
	backend, err := storage.NewLocal(operation.RootPath)
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	defer backend.Close()

	// Select the hashing strategy once
	opts := hash.DetectOptions{
		Source:     backend,
		BufferSize: operation.BufferSize,
	}
	limiter := ratelimit.NewLimiter(operation.BandwidthLimit)
	if limiter != nil {
		opts.ReaderWrapper = limiter.Wrapper()
	}
	strategy, err := hash.Detect(operation.HashMethod, opts)
	if err != nil {
		return fmt.Errorf("failed to select hash method: %w", err)
	}
	logger.Debug(ctx, "hash strategy selected", logging.Fields{"strategy": strategy.Name()})

	registry := metrics.NewRegistry()
	computer, err := hash.NewComputer(strategy, registry, logger)
	if err != nil {
		return err
	}

	pipelineConfig := dedupe.DefaultPipelineConfig()
	pipelineConfig.MaxWorkers = operation.MaxWorkers
	if operation.QuickCheck {
		pipelineConfig.QuickCheck = hash.NewQuickChecker(backend, logger)
	}
	if operation.Verify {
		comparator := compare.NewBinaryComparator(backend, operation.BufferSize)
		if limiter != nil {
			comparator.SetReaderWrapper(limiter.Wrapper())
		}
		pipelineConfig.Verify = comparator
	}
	pipeline, err := dedupe.NewPipeline(computer, registry, logger, pipelineConfig)
	if err != nil {
		return err
	}

	// Create output formatter
	var out io.Writer = os.Stdout
	if cfg.Output.Quiet && cfg.Output.Format != "json" {
		out = io.Discard
	}
	formatter := output.New(cfg.Output.Format, out, cfg.Output.Progress)

	// Create scan engine
	engine := dedupe.NewEngine(backend, pipeline, output.NewDuplicateWriter(operation.OutputDir),
		formatter, out, logger, operation)

	// Run scan
	report, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	// Write the full report if requested
	if scanFlags.Report != "" {
		if err := output.WriteReport(report, scanFlags.Report, cfg.Output.ReportFormat); err != nil {
			return fmt.Errorf("failed to write scan report: %w", err)
		}
	}

	if cfg.Output.Metrics {
		metricsOut := out
		if cfg.Output.Format == "json" {
			metricsOut = os.Stderr
		}
		registry.WriteText(metricsOut)
	}

	logger.Close()

	// Exit with appropriate code
	os.Exit(report.Status.ExitCode())
	return nil
}

// createLogger creates a logger based on configuration. Without a log file,
// entries go to stderr.
func createLogger(cfg *config.Config) (logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NewNullLogger(), nil
	}

	// Parse log format
	var format logging.Format
	switch cfg.Logging.Format {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}
	level := logging.ParseLevel(cfg.Logging.Level)

	if cfg.Logging.File == "" {
		return logging.NewConsoleLogger(os.Stderr, format, level), nil
	}

	// Create file logger
	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.Logging.File,
		Format:     format,
		Level:      level,
		MaxSize:    cfg.LogMaxSizeBytes(),
		MaxBackups: cfg.Logging.MaxBackups,
	})
}
