package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
}

// NewFileLogger creates a logger appending to config.Path, rotating the file
// once it reaches config.MaxSize.
func NewFileLogger(config FileLoggerConfig) (*LogrusLogger, error) {
	w, err := newRotatingWriter(config.Path, config.MaxSize, config.MaxBackups)
	if err != nil {
		return nil, err
	}
	return newLogrusLogger(w, w, config.Format, config.Level), nil
}

// rotatingWriter is an append-only file that is renamed to path.1 (shifting
// older backups) when it grows past maxSize.
type rotatingWriter struct {
	mu          sync.Mutex
	path        string
	maxSize     int64
	maxBackups  int
	file        *os.File
	currentSize int64
}

func newRotatingWriter(path string, maxSize int64, maxBackups int) (*rotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &rotatingWriter{path: path, maxSize: maxSize, maxBackups: maxBackups}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *rotatingWriter) open() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = file
	w.currentSize = info.Size()
	return nil
}

// Write appends p, rotating first if the file is full
func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}

	if w.maxSize > 0 && w.currentSize >= w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.currentSize += int64(n)
	return n, err
}

// rotate must be called with the lock held
func (w *rotatingWriter) rotate() error {
	w.file.Close()
	w.file = nil

	for i := w.maxBackups - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", w.path, i), fmt.Sprintf("%s.%d", w.path, i+1))
	}
	if w.maxBackups > 0 {
		os.Rename(w.path, w.path+".1")
		os.Remove(fmt.Sprintf("%s.%d", w.path, w.maxBackups+1))
	} else {
		os.Remove(w.path)
	}

	return w.open()
}

// Close closes the current file
func (w *rotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
