package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sdejongh/dupnorris/internal/platform"
	"github.com/sdejongh/dupnorris/pkg/config"
	"github.com/sdejongh/dupnorris/pkg/models"
)

// validateScanFlags validates the scan command flags
func validateScanFlags() error {
	if err := platform.ValidatePath(scanFlags.Root); err != nil {
		return err
	}

	// Validate root exists and is a directory
	info, err := os.Stat(scanFlags.Root)
	if os.IsNotExist(err) {
		return fmt.Errorf("root path does not exist: %s", scanFlags.Root)
	} else if err != nil {
		return fmt.Errorf("failed to access root path: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("root path is not a directory: %s", scanFlags.Root)
	}

	// Validate output directory
	if scanFlags.OutputDir != "" {
		if err := platform.ValidatePath(scanFlags.OutputDir); err != nil {
			return err
		}
		info, err := os.Stat(scanFlags.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to access output directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("output path is not a directory: %s", scanFlags.OutputDir)
		}
	}

	if scanFlags.Parallel < 0 {
		return fmt.Errorf("invalid parallel workers: %d", scanFlags.Parallel)
	}

	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config) error {
	// Hash method
	if scanFlags.Hash != "" {
		cfg.Scan.Hash = models.HashMethod(scanFlags.Hash)
	}

	// Sizes are validated with the rest of the config
	if scanFlags.MinSize != "" {
		cfg.Scan.MinSize = scanFlags.MinSize
	}
	if scanFlags.Bandwidth != "" {
		cfg.Performance.BandwidthLimit = scanFlags.Bandwidth
	}

	if cmd.Flags().Changed("quick-check") {
		cfg.Scan.QuickCheck = scanFlags.QuickCheck
	}
	if cmd.Flags().Changed("verify") {
		cfg.Scan.Verify = scanFlags.Verify
	}

	// Parallel workers (default: 5)
	if scanFlags.Parallel > 0 {
		cfg.Performance.MaxWorkers = scanFlags.Parallel
	} else if cfg.Performance.MaxWorkers == 0 {
		cfg.Performance.MaxWorkers = 5
	}

	// Exclude patterns
	if len(scanFlags.Exclude) > 0 {
		cfg.Exclude = scanFlags.Exclude
	}

	// Output
	if scanFlags.Output != "" {
		cfg.Output.Format = scanFlags.Output
	}
	if scanFlags.OutputDir != "" {
		cfg.Output.Dir = scanFlags.OutputDir
	}
	if scanFlags.ReportFormat != "" {
		cfg.Output.ReportFormat = scanFlags.ReportFormat
	}
	if scanFlags.Metrics {
		cfg.Output.Metrics = true
	}

	// Logging
	if scanFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = scanFlags.LogFile
	}
	if scanFlags.LogFormat != "" {
		cfg.Logging.Format = scanFlags.LogFormat
	}
	if scanFlags.LogLevel != "" {
		cfg.Logging.Level = scanFlags.LogLevel
	} else if globalFlags.Verbose {
		cfg.Logging.Level = "info"
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// Enable progress in verbose mode
	if globalFlags.Verbose {
		cfg.Output.Progress = true
	}

	if globalFlags.Quiet && globalFlags.Verbose {
		return fmt.Errorf("--quiet and --verbose cannot be used together")
	}

	return nil
}

// createScanOperation creates a scan operation from configuration
func createScanOperation(cfg *config.Config) (*models.ScanOperation, error) {
	root, err := filepath.Abs(platform.NormalizePath(scanFlags.Root))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	operation := &models.ScanOperation{
		ID:              uuid.New().String(),
		RootPath:        root,
		HashMethod:      cfg.Scan.Hash,
		ExcludePatterns: cfg.Exclude,
		MinSize:         cfg.MinSizeBytes(),
		QuickCheck:      cfg.Scan.QuickCheck,
		Verify:          cfg.Scan.Verify,
		MaxWorkers:      cfg.Performance.MaxWorkers,
		BandwidthLimit:  cfg.BandwidthBytes(),
		BufferSize:      cfg.Performance.BufferSize,
		OutputDir:       cfg.Output.Dir,
		CreatedAt:       time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}
