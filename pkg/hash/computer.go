package hash

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/metrics"
	"github.com/sdejongh/dupnorris/pkg/models"
)

// TimerName is the metric timing every Compute call
const TimerName = "md5.timer"

// Computer turns a Strategy into a total fingerprint function.
// It is safe for concurrent use if the strategy is.
type Computer struct {
	strategy  Strategy
	registry  *metrics.Registry
	logger    logging.Logger
	onFailure func(models.HashFailure) // Optional failure callback
}

// NewComputer creates a computer around strategy. A nil logger discards output.
func NewComputer(strategy Strategy, registry *metrics.Registry, logger logging.Logger) (*Computer, error) {
	if strategy == nil {
		return nil, fmt.Errorf("hash: nil strategy")
	}
	if registry == nil {
		return nil, fmt.Errorf("hash: nil metrics registry")
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Computer{
		strategy: strategy,
		registry: registry,
		logger:   logger,
	}, nil
}

// SetFailureHandler sets the callback notified for every file that could not be hashed
func (c *Computer) SetFailureHandler(handler func(models.HashFailure)) {
	c.onFailure = handler
}

// Strategy returns the wrapped strategy
func (c *Computer) Strategy() Strategy {
	return c.strategy
}

// Compute returns the content fingerprint of the file.
//
// Compute never fails. When the strategy returns an error the failure is
// logged and a random token is returned, so the file cannot join any
// duplicate group.
func (c *Computer) Compute(ctx context.Context, file *models.FileDescriptor) models.Fingerprint {
	if file == nil {
		panic("hash: Compute called with nil descriptor")
	}

	stop := c.registry.Time(TimerName)
	digest, err := c.strategy.Digest(ctx, file.Path())
	stop()

	if err != nil {
		failure := models.HashFailure{
			Path:       file.Path(),
			ErrorClass: fmt.Sprintf("%T", err),
			Error:      err.Error(),
		}
		c.logger.Error(ctx, "failed to compute fingerprint", err, logging.Fields{
			"path":        failure.Path,
			"error_class": failure.ErrorClass,
			"strategy":    c.strategy.Name(),
		})
		if c.onFailure != nil {
			c.onFailure(failure)
		}
		return FailureToken()
	}

	return models.FingerprintFromDigest(digest)
}

// FailureToken returns a fresh random fingerprint. It never equals a content
// fingerprint, which is colon-delimited hex.
func FailureToken() models.Fingerprint {
	return models.Fingerprint(uuid.New().String())
}
