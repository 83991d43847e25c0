package process

import (
	"fmt"
	"syscall"
)

// ExitStatus is the reaped status of a child process.
type ExitStatus struct {
	// Code is the exit code when the child exited normally.
	Code int
	// Signaled is set when the child was terminated by Signal.
	Signaled bool
	Signal   syscall.Signal
}

// FromWaitStatus decodes a raw wait status.
func FromWaitStatus(ws syscall.WaitStatus) ExitStatus {
	if ws.Signaled() {
		return ExitStatus{Signaled: true, Signal: ws.Signal()}
	}
	return ExitStatus{Code: ws.ExitStatus()}
}

// ShellCode encodes the status the way POSIX shells report it in $?:
// the exit code, or 128 plus the signal number.
func (s ExitStatus) ShellCode() int {
	if s.Signaled {
		return 128 + int(s.Signal)
	}
	return s.Code
}

// Success reports a normal exit with code 0.
func (s ExitStatus) Success() bool {
	return !s.Signaled && s.Code == 0
}

func (s ExitStatus) String() string {
	if s.Signaled {
		return fmt.Sprintf("killed by signal %d (%s)", int(s.Signal), s.Signal)
	}
	return fmt.Sprintf("exit status %d", s.Code)
}

// ExitedStatus builds the raw wait status of a normal exit with code.
func ExitedStatus(code int) syscall.WaitStatus {
	return syscall.WaitStatus(code&0xff) << 8
}

// SignaledStatus builds the raw wait status of a termination by sig.
func SignaledStatus(sig syscall.Signal) syscall.WaitStatus {
	return syscall.WaitStatus(sig & 0x7f)
}
