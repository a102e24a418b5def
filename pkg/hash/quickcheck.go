package hash

import (
	"context"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/models"
)

// QuickCheckSize is the prefix length hashed by QuickChecker (256KB)
const QuickCheckSize = 256 * 1024

// QuickChecker computes a cheap xxhash64 token over the first 256KB of a file.
// Files with different tokens cannot be duplicates, so it can split a size
// group before the full digest is paid for.
type QuickChecker struct {
	source Source
	logger logging.Logger
}

// NewQuickChecker creates a quick checker reading through source
func NewQuickChecker(source Source, logger logging.Logger) *QuickChecker {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &QuickChecker{source: source, logger: logger}
}

// Token returns the prefix token of the file. A read failure yields a random
// token so the file falls out of its group.
func (q *QuickChecker) Token(ctx context.Context, file *models.FileDescriptor) string {
	sum, err := q.sum(ctx, file.Path())
	if err != nil {
		q.logger.Warn(ctx, "quick check failed", logging.Fields{
			"path":  file.Path(),
			"error": err.Error(),
		})
		return string(FailureToken())
	}
	return fmt.Sprintf("%016x", sum)
}

func (q *QuickChecker) sum(ctx context.Context, path string) (uint64, error) {
	reader, err := q.source.Read(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	d := xxhash.New()
	if _, err := io.Copy(d, io.LimitReader(reader, QuickCheckSize)); err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}
	return d.Sum64(), nil
}
