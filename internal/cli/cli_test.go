package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdejongh/dupnorris/pkg/config"
	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/models"
)

// resetFlags restores package flag state after a test
func resetFlags(t *testing.T) {
	t.Helper()
	scanFlags = ScanFlags{}
	globalFlags = GlobalFlags{}
	t.Cleanup(func() {
		scanFlags = ScanFlags{}
		globalFlags = GlobalFlags{}
	})
}

func TestValidateScanFlags(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		root      string
		outputDir string
		parallel  int
		wantErr   bool
	}{
		{"ValidRoot", dir, "", 0, false},
		{"ValidOutputDir", dir, dir, 4, false},
		{"MissingRoot", filepath.Join(dir, "missing"), "", 0, true},
		{"RootIsFile", file, "", 0, true},
		{"EmptyRoot", "", "", 0, true},
		{"OutputDirIsFile", dir, file, 0, true},
		{"NegativeParallel", dir, "", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			scanFlags.Root = tt.root
			scanFlags.OutputDir = tt.outputDir
			scanFlags.Parallel = tt.parallel

			err := validateScanFlags()
			if (err != nil) != tt.wantErr {
				t.Errorf("validateScanFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyFlagsToConfig(t *testing.T) {
	t.Run("FlagsOverrideConfig", func(t *testing.T) {
		resetFlags(t)
		cmd := NewScanCommand()
		if err := cmd.Flags().Parse([]string{
			"--root", ".", "--hash", "inprocess", "-p", "8", "--min-size", "1KB",
			"--quick-check", "--verify", "--exclude", "*.tmp", "-o", "json", "--report-format", "msgpack",
			"-b", "10MB", "--metrics", "--log-level", "debug",
		}); err != nil {
			t.Fatal(err)
		}

		cfg := config.Default()
		if err := applyFlagsToConfig(cmd, cfg); err != nil {
			t.Fatalf("applyFlagsToConfig() error = %v", err)
		}

		if cfg.Scan.Hash != models.HashInProcess {
			t.Errorf("Hash = %s, want inprocess", cfg.Scan.Hash)
		}
		if cfg.Performance.MaxWorkers != 8 {
			t.Errorf("MaxWorkers = %d, want 8", cfg.Performance.MaxWorkers)
		}
		if cfg.MinSizeBytes() != 1000 {
			t.Errorf("MinSizeBytes() = %d, want 1000", cfg.MinSizeBytes())
		}
		if !cfg.Scan.QuickCheck || !cfg.Scan.Verify {
			t.Errorf("Scan = %+v, want quick check and verify enabled", cfg.Scan)
		}
		if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "*.tmp" {
			t.Errorf("Exclude = %v, want [*.tmp]", cfg.Exclude)
		}
		if cfg.Output.Format != "json" || cfg.Output.ReportFormat != "msgpack" || !cfg.Output.Metrics {
			t.Errorf("Output = %+v", cfg.Output)
		}
		if cfg.BandwidthBytes() != 10*1000*1000 {
			t.Errorf("BandwidthBytes() = %d, want 10000000", cfg.BandwidthBytes())
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
		}
	})

	t.Run("ConfigKeptWithoutFlags", func(t *testing.T) {
		resetFlags(t)
		cmd := NewScanCommand()

		cfg := config.Default()
		cfg.Scan.QuickCheck = true
		cfg.Exclude = []string{"vendor/"}
		if err := applyFlagsToConfig(cmd, cfg); err != nil {
			t.Fatalf("applyFlagsToConfig() error = %v", err)
		}

		if !cfg.Scan.QuickCheck {
			t.Error("QuickCheck from config should be kept")
		}
		if cfg.Exclude[0] != "vendor/" {
			t.Errorf("Exclude = %v, want [vendor/]", cfg.Exclude)
		}
		if cfg.Scan.Hash != models.HashAuto {
			t.Errorf("Hash = %s, want auto", cfg.Scan.Hash)
		}
	})

	t.Run("QuietDisablesProgress", func(t *testing.T) {
		resetFlags(t)
		globalFlags.Quiet = true

		cfg := config.Default()
		if err := applyFlagsToConfig(NewScanCommand(), cfg); err != nil {
			t.Fatalf("applyFlagsToConfig() error = %v", err)
		}
		if cfg.Output.Progress || !cfg.Output.Quiet {
			t.Errorf("Output = %+v, want quiet without progress", cfg.Output)
		}
	})

	t.Run("VerboseRaisesLogLevel", func(t *testing.T) {
		resetFlags(t)
		globalFlags.Verbose = true

		cfg := config.Default()
		if err := applyFlagsToConfig(NewScanCommand(), cfg); err != nil {
			t.Fatalf("applyFlagsToConfig() error = %v", err)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("Logging.Level = %s, want info", cfg.Logging.Level)
		}
	})

	t.Run("QuietAndVerbose", func(t *testing.T) {
		resetFlags(t)
		globalFlags.Quiet = true
		globalFlags.Verbose = true

		if err := applyFlagsToConfig(NewScanCommand(), config.Default()); err == nil {
			t.Error("applyFlagsToConfig() should reject --quiet with --verbose")
		}
	})
}

func TestCreateScanOperation(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	scanFlags.Root = dir

	cfg := config.Default()
	cfg.Scan.MinSize = "2KiB"
	cfg.Output.Dir = dir

	op, err := createScanOperation(cfg)
	if err != nil {
		t.Fatalf("createScanOperation() error = %v", err)
	}

	if op.ID == "" {
		t.Error("operation ID should be set")
	}
	if !filepath.IsAbs(op.RootPath) {
		t.Errorf("RootPath = %s, want absolute", op.RootPath)
	}
	if op.MinSize != 2048 {
		t.Errorf("MinSize = %d, want 2048", op.MinSize)
	}
	if op.MaxWorkers != 5 || op.BufferSize != 65536 {
		t.Errorf("MaxWorkers = %d, BufferSize = %d", op.MaxWorkers, op.BufferSize)
	}
	if op.OutputDir != dir {
		t.Errorf("OutputDir = %s, want %s", op.OutputDir, dir)
	}

	other, err := createScanOperation(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if other.ID == op.ID {
		t.Error("operation IDs should be unique")
	}
}

func TestCreateLogger(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		cfg := config.Default()
		cfg.Logging.Enabled = false

		logger, err := createLogger(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := logger.(*logging.NullLogger); !ok {
			t.Errorf("logger = %T, want *logging.NullLogger", logger)
		}
	})

	t.Run("Console", func(t *testing.T) {
		logger, err := createLogger(config.Default())
		if err != nil {
			t.Fatal(err)
		}
		defer logger.Close()
		if _, ok := logger.(*logging.LogrusLogger); !ok {
			t.Errorf("logger = %T, want *logging.LogrusLogger", logger)
		}
	})

	t.Run("File", func(t *testing.T) {
		cfg := config.Default()
		cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "scan.log")
		cfg.Logging.Format = "json"

		logger, err := createLogger(cfg)
		if err != nil {
			t.Fatal(err)
		}
		logger.Warn(t.Context(), "skipping unreadable entry", logging.Fields{"path": "/x"})
		if err := logger.Close(); err != nil {
			t.Fatal(err)
		}

		data, err := os.ReadFile(cfg.Logging.File)
		if err != nil {
			t.Fatal(err)
		}
		if len(data) == 0 {
			t.Error("log file should not be empty")
		}
	})
}

func TestRootCommand(t *testing.T) {
	resetFlags(t)
	root := NewRootCommand()

	for _, name := range []string{"scan", "config", "version"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("Find(%s) = %v, %v", name, cmd, err)
		}
	}
	for _, flag := range []string{"config", "verbose", "quiet"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing global flag --%s", flag)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	resetFlags(t)
	root := NewRootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.HasPrefix(out.String(), "dupnorris "+Version) {
		t.Errorf("output = %q, want dupnorris %s first", out.String(), Version)
	}
	for _, tool := range []string{"openssl:", "md5sum:"} {
		if !strings.Contains(out.String(), tool) {
			t.Errorf("output should list %s", tool)
		}
	}
}

func TestConfigInitCommand(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "dupnorris", "config.yaml")

	run := func(args ...string) error {
		root := NewRootCommand()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs(append([]string{"--config", path, "config", "init"}, args...))
		return root.Execute()
	}

	if err := run(); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Scan.Hash != models.HashAuto {
		t.Errorf("Hash = %s, want auto", cfg.Scan.Hash)
	}

	if err := run(); err == nil {
		t.Error("config init should refuse to overwrite")
	}
	if err := run("--force"); err != nil {
		t.Errorf("config init --force error = %v", err)
	}
}
