package hash

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"sync"
)

// InProcess hashes files with crypto/md5 in the calling goroutine
type InProcess struct {
	source        Source
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper // Optional reader wrapper (e.g., for rate limiting)
}

// NewInProcess creates an in-process strategy reading files through source
func NewInProcess(source Source, bufferSize int) *InProcess {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &InProcess{
		source: source,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// SetReaderWrapper sets a function to wrap readers (e.g., for rate limiting)
func (s *InProcess) SetReaderWrapper(wrapper ReaderWrapper) {
	s.readerWrapper = wrapper
}

// Digest streams the whole file through MD5
func (s *InProcess) Digest(ctx context.Context, path string) ([]byte, error) {
	reader, err := s.source.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	if s.readerWrapper != nil {
		reader = s.readerWrapper(ctx, reader)
	}

	h := md5.New()
	bufPtr := s.bufferPool.Get().(*[]byte)
	defer s.bufferPool.Put(bufPtr)

	if _, err := io.CopyBuffer(h, reader, *bufPtr); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return h.Sum(nil), nil
}

// Name returns the strategy name
func (s *InProcess) Name() string {
	return "md5-inprocess"
}
