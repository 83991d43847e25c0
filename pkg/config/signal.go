package config

import (
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// maxSignal bounds numeric signals, covering Linux real-time signals.
const maxSignal = 64

// ParseSignal accepts a signal number ("15") or name ("TERM", "SIGTERM",
// case-insensitive).
func ParseSignal(value string) (syscall.Signal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("empty signal")
	}

	if n, err := strconv.Atoi(value); err == nil {
		if n <= 0 || n > maxSignal {
			return 0, errors.Errorf("signal number %d out of range", n)
		}
		return syscall.Signal(n), nil
	}

	name := strings.ToUpper(value)
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	if sig := unix.SignalNum(name); sig != 0 {
		return sig, nil
	}
	return 0, errors.Errorf("unknown signal %q", value)
}
