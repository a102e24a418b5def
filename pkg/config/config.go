// Package config loads and validates the dupnorris YAML configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Scan        ScanConfig        `yaml:"scan"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Exclude     []string          `yaml:"exclude"`
}

// ScanConfig holds duplicate detection settings
type ScanConfig struct {
	Hash       models.HashMethod `yaml:"hash"`        // auto, inprocess, openssl, md5sum
	MinSize    string            `yaml:"min_size"`    // e.g. "1KB"; empty or "0" keeps every file
	QuickCheck bool              `yaml:"quick_check"` // split size groups by a prefix hash first
	Verify     bool              `yaml:"verify"`      // confirm fingerprint groups byte by byte
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers     int    `yaml:"max_workers"`
	BufferSize     int    `yaml:"buffer_size"`
	BandwidthLimit string `yaml:"bandwidth_limit"` // e.g. "50MB"; empty or "0" = unlimited
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format       string `yaml:"format"`        // "human" or "json"
	Dir          string `yaml:"dir"`           // where duplicates.log is written; empty = working directory
	Progress     bool   `yaml:"progress"`      // Show progress bars
	Quiet        bool   `yaml:"quiet"`         // Suppress non-error output
	Metrics      bool   `yaml:"metrics"`       // Print collected metrics after the summary
	ReportFormat string `yaml:"report_format"` // "human", "json" or "msgpack"
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Format     string `yaml:"format"`      // "json" or "text"
	Level      string `yaml:"level"`       // "debug", "info", "warn", "error"
	File       string `yaml:"file"`        // Log file path (empty = stderr)
	MaxSize    string `yaml:"max_size"`    // rotate the log file past this size (empty = never)
	MaxBackups int    `yaml:"max_backups"` // rotated files kept
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Hash:       models.HashAuto,
			MinSize:    "0",
			QuickCheck: false,
		},
		Performance: PerformanceConfig{
			MaxWorkers:     5,
			BufferSize:     65536,
			BandwidthLimit: "0",
		},
		Output: OutputConfig{
			Format:       "human",
			Progress:     true,
			ReportFormat: "human",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Format:     "text",
			Level:      "warn",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
		Exclude: []string{
			".git/",
		},
	}
}

// ParseSize parses a human size such as "64KB", "1.5 GiB" or "1024".
// An empty string is zero.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// MinSizeBytes returns scan.min_size in bytes
func (c *Config) MinSizeBytes() int64 {
	n, _ := ParseSize(c.Scan.MinSize)
	return n
}

// BandwidthBytes returns performance.bandwidth_limit in bytes per second
func (c *Config) BandwidthBytes() int64 {
	n, _ := ParseSize(c.Performance.BandwidthLimit)
	return n
}

// LogMaxSizeBytes returns logging.max_size in bytes
func (c *Config) LogMaxSizeBytes() int64 {
	n, _ := ParseSize(c.Logging.MaxSize)
	return n
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validHash := map[models.HashMethod]bool{
		models.HashAuto: true, models.HashInProcess: true,
		models.HashOpenSSL: true, models.HashMD5Sum: true,
	}
	if !validHash[c.Scan.Hash] {
		return &models.ValidationError{
			Field:   "scan.hash",
			Message: "must be 'auto', 'inprocess', 'openssl', or 'md5sum'",
		}
	}

	sizes := []struct {
		field string
		value string
	}{
		{"scan.min_size", c.Scan.MinSize},
		{"performance.bandwidth_limit", c.Performance.BandwidthLimit},
		{"logging.max_size", c.Logging.MaxSize},
	}
	for _, s := range sizes {
		if _, err := ParseSize(s.value); err != nil {
			return &models.ValidationError{
				Field:   s.field,
				Message: fmt.Sprintf("invalid size %q", s.value),
			}
		}
	}

	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validReportFormats := map[string]bool{"human": true, "json": true, "msgpack": true}
	if !validReportFormats[c.Output.ReportFormat] {
		return &models.ValidationError{
			Field:   "output.report_format",
			Message: "must be 'human', 'json', or 'msgpack'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_backups",
			Message: "must not be negative",
		}
	}

	return nil
}
