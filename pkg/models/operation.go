package models

import (
	"time"
)

// HashMethod selects how content fingerprints are computed
type HashMethod string

const (
	// HashAuto checks the host for a supported external tool and falls back to in-process hashing
	HashAuto HashMethod = "auto"
	// HashInProcess always hashes inside the process
	HashInProcess HashMethod = "inprocess"
	// HashOpenSSL runs "openssl md5 <path>"
	HashOpenSSL HashMethod = "openssl"
	// HashMD5Sum runs "md5sum <path>"
	HashMD5Sum HashMethod = "md5sum"
)

// ScanOperation represents a duplicate scan configuration
type ScanOperation struct {
	ID              string
	RootPath        string
	HashMethod      HashMethod
	ExcludePatterns []string
	MinSize         int64 // files smaller than this are ignored, 0 = keep all
	QuickCheck      bool  // pre-filter same-size files on a prefix hash
	Verify          bool  // confirm fingerprint groups byte by byte
	MaxWorkers      int
	BandwidthLimit  int64 // bytes per second for in-process hashing, 0 = unlimited
	BufferSize      int
	OutputDir       string // directory receiving duplicates.log
	CreatedAt       time.Time
}

// Validate checks if the operation configuration is valid
func (op *ScanOperation) Validate() error {
	if op.RootPath == "" {
		return &ValidationError{Field: "RootPath", Message: "root path is required"}
	}
	if op.HashMethod == "" {
		return &ValidationError{Field: "HashMethod", Message: "hash method is required"}
	}
	if op.MinSize < 0 {
		return &ValidationError{Field: "MinSize", Message: "min size must not be negative"}
	}
	if op.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "max workers must be at least 1"}
	}
	if op.BandwidthLimit < 0 {
		return &ValidationError{Field: "BandwidthLimit", Message: "bandwidth limit must not be negative"}
	}
	if op.BufferSize < 1024 {
		return &ValidationError{Field: "BufferSize", Message: "buffer size must be at least 1024 bytes"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
