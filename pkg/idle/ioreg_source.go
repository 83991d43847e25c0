package idle

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// IORegSource reads HIDIdleTime from the macOS I/O registry.
type IORegSource struct {
	cmdExecutor func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewIORegSource creates an ioreg-backed source.
func NewIORegSource() *IORegSource {
	return &IORegSource{cmdExecutor: defaultCmdExecutor}
}

// Idle returns the HID system idle time.
func (s *IORegSource) Idle(ctx context.Context) (time.Duration, error) {
	output, err := s.cmdExecutor(ctx, "ioreg", "-c", "IOHIDSystem", "-d", "4")
	if err != nil {
		return 0, unavailable("ioreg", errors.Wrap(err, "failed to execute ioreg"))
	}

	nanos, err := parseHIDIdleTime(output)
	if err != nil {
		return 0, unavailable("ioreg", err)
	}

	return time.Duration(nanos), nil
}

// parseHIDIdleTime extracts the nanosecond counter from lines like
// `"HIDIdleTime" = 123456789`.
func parseHIDIdleTime(output []byte) (int64, error) {
	for _, line := range bytes.Split(output, []byte("\n")) {
		lineStr := string(bytes.TrimSpace(line))
		if !strings.Contains(lineStr, "HIDIdleTime") {
			continue
		}

		parts := strings.Split(lineStr, "=")
		if len(parts) != 2 {
			continue
		}

		valueStr := strings.TrimSpace(strings.Trim(strings.TrimSpace(parts[1]), "\""))
		value, err := strconv.ParseInt(valueStr, 10, 64)
		if err != nil {
			return 0, errors.Wrap(err, "failed to parse idle time value")
		}

		return value, nil
	}

	return 0, errors.New("HIDIdleTime not found in ioreg output")
}

// IsAvailable checks if ioreg is on PATH.
func (s *IORegSource) IsAvailable(ctx context.Context) bool {
	_, err := s.cmdExecutor(ctx, "which", "ioreg")
	return err == nil
}
