package hash

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrUnsupportedTool is returned when a hashing tool name is not recognized
	ErrUnsupportedTool = errors.New("unsupported hashing tool")
	// ErrToolNotFound is returned when a supported tool is not installed
	ErrToolNotFound = errors.New("hashing tool not found")
	// ErrUnexpectedOutput is returned when a tool's output has no digest token
	ErrUnexpectedOutput = errors.New("unexpected tool output")
)

// tool describes how to invoke a native MD5 utility and read its output
type tool struct {
	args  func(path string) []string
	token func(fields []string) string
}

var tools = map[string]tool{
	// MD5(<path>)= <hex>
	"openssl": {
		args:  func(path string) []string { return []string{"md5", path} },
		token: func(fields []string) string { return fields[len(fields)-1] },
	},
	// <hex>  <path>, or \<hex>  <escaped path> when the name holds \ or a newline
	"md5sum": {
		args:  func(path string) []string { return []string{path} },
		token: func(fields []string) string { return strings.TrimPrefix(fields[0], `\`) },
	},
}

// detectOrder is the preference order used by auto detection
var detectOrder = []string{"openssl", "md5sum"}

// Runner executes a command and returns its standard output
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Native hashes files by running an external MD5 tool, one subprocess per file
type Native struct {
	name    string
	command string
	tool    tool
	run     Runner
}

// NewNative creates a native strategy for a supported tool found at command
func NewNative(name, command string) (*Native, error) {
	t, ok := tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTool, name)
	}
	return &Native{
		name:    name,
		command: command,
		tool:    t,
		run:     execRunner,
	}, nil
}

// SetRunner replaces the subprocess runner
func (s *Native) SetRunner(run Runner) {
	s.run = run
}

// Digest runs the tool against path and decodes the digest token.
// Failures are returned as-is; there is no retry and no fallback.
func (s *Native) Digest(ctx context.Context, path string) ([]byte, error) {
	out, err := s.run(ctx, s.command, s.tool.args(path)...)
	if err != nil {
		return nil, err
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty output from %s", ErrUnexpectedOutput, s.name)
	}

	digest, err := hex.DecodeString(strings.ToLower(s.tool.token(fields)))
	if err != nil || len(digest) != DigestSize {
		return nil, fmt.Errorf("%w: no md5 digest in %s output", ErrUnexpectedOutput, s.name)
	}
	return digest, nil
}

// Tool returns the tool name
func (s *Native) Tool() string {
	return s.name
}

// Name returns the strategy name
func (s *Native) Name() string {
	return "md5-native"
}

// SupportedTools returns the tool names accepted by NewNative, in detection order
func SupportedTools() []string {
	names := make([]string, len(detectOrder))
	copy(names, detectOrder)
	return names
}
