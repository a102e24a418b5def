package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// BinaryComparator compares files byte-by-byte.
// It is the slowest method but does not rely on any digest.
type BinaryComparator struct {
	source        Source
	bufferSize    int
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper // Optional reader wrapper (e.g., for rate limiting)
}

// NewBinaryComparator creates a new byte-by-byte comparator reading through source
func NewBinaryComparator(source Source, bufferSize int) *BinaryComparator {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &BinaryComparator{
		source:     source,
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// SetReaderWrapper sets a function to wrap readers (e.g., for rate limiting)
func (c *BinaryComparator) SetReaderWrapper(wrapper ReaderWrapper) {
	c.readerWrapper = wrapper
}

// ReadError reports which side of a comparison could not be read
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func (c *BinaryComparator) open(ctx context.Context, path string) (io.ReadCloser, error) {
	rc, err := c.source.Read(ctx, path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if c.readerWrapper != nil {
		rc = c.readerWrapper(ctx, rc)
	}
	return rc, nil
}

// Compare compares two files byte-by-byte. Read errors are returned; a
// length mismatch is reported as Different.
func (c *BinaryComparator) Compare(ctx context.Context, pathA, pathB string) (*Comparison, error) {
	readerA, err := c.open(ctx, pathA)
	if err != nil {
		return nil, err
	}
	defer readerA.Close()

	readerB, err := c.open(ctx, pathB)
	if err != nil {
		return nil, err
	}
	defer readerB.Close()

	bufPtrA := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtrA)
	bufA := *bufPtrA

	bufPtrB := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtrB)
	bufB := *bufPtrB

	result := &Comparison{PathA: pathA, PathB: pathB, Offset: -1}
	var compared int64

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// ReadFull keeps both sides aligned on short reads
		nA, errA := io.ReadFull(readerA, bufA)
		nB, errB := io.ReadFull(readerB, bufB)
		if errA != nil && !isEOF(errA) {
			return nil, &ReadError{Path: pathA, Err: errA}
		}
		if errB != nil && !isEOF(errB) {
			return nil, &ReadError{Path: pathB, Err: errB}
		}

		n := min(nA, nB)
		if !bytes.Equal(bufA[:n], bufB[:n]) {
			for i := 0; i < n; i++ {
				if bufA[i] != bufB[i] {
					result.Offset = compared + int64(i)
					break
				}
			}
			result.Result = Different
			result.Reason = fmt.Sprintf("content differs at byte offset %d", result.Offset)
			return result, nil
		}
		compared += int64(n)

		if nA != nB {
			result.Offset = compared
			result.Result = Different
			result.Reason = fmt.Sprintf("length differs after %d bytes", compared)
			return result, nil
		}

		if errA != nil || errB != nil {
			break
		}
	}

	result.Result = Same
	result.Reason = fmt.Sprintf("binary content matches (%d bytes)", compared)
	return result, nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// Name returns the comparator name
func (c *BinaryComparator) Name() string {
	return "binary"
}
