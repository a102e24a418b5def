package hash

import (
	"fmt"
	"os/exec"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// DetectOptions configures strategy detection
type DetectOptions struct {
	// Source opens files for the in-process strategy
	Source Source
	// BufferSize is the in-process read buffer size
	BufferSize int
	// ReaderWrapper is applied to in-process reads (optional)
	ReaderWrapper ReaderWrapper
}

// lookPath is replaced in tests
var lookPath = exec.LookPath

// Detect selects the hashing strategy once, at startup.
//
// HashAuto checks the host for a supported tool in preference order and falls
// back to in-process hashing. HashInProcess forces in-process hashing. Any
// other method names a tool, which must be supported and installed.
func Detect(method models.HashMethod, opts DetectOptions) (Strategy, error) {
	switch method {
	case models.HashAuto, "":
		for _, name := range detectOrder {
			if command, err := lookPath(name); err == nil {
				return NewNative(name, command)
			}
		}
		return newInProcess(opts), nil

	case models.HashInProcess:
		return newInProcess(opts), nil

	default:
		name := string(method)
		if _, ok := tools[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedTool, name)
		}
		command, err := lookPath(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrToolNotFound, name, err)
		}
		return NewNative(name, command)
	}
}

func newInProcess(opts DetectOptions) *InProcess {
	s := NewInProcess(opts.Source, opts.BufferSize)
	if opts.ReaderWrapper != nil {
		s.SetReaderWrapper(opts.ReaderWrapper)
	}
	return s
}

// Available reports, for every supported tool in detection order, the command
// found on the host or "" when it is missing.
func Available() map[string]string {
	found := make(map[string]string, len(detectOrder))
	for _, name := range detectOrder {
		if command, err := lookPath(name); err == nil {
			found[name] = command
		} else {
			found[name] = ""
		}
	}
	return found
}
