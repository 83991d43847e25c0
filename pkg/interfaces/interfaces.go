// Package interfaces defines the core interfaces used throughout the application.
package interfaces

import (
	"context"
	"syscall"
	"time"
)

// IdleSource reports how long the active session has gone without user input.
type IdleSource interface {
	Idle(ctx context.Context) (time.Duration, error)
}

// Child is a spawned process owned by exactly one supervisor.
type Child interface {
	Pid() int
	// Signal delivers sig unless the process has already exited, in which
	// case it returns os.ErrProcessDone.
	Signal(sig syscall.Signal) error
	// Wait blocks until the process exits and returns its reaped status.
	Wait() (syscall.WaitStatus, error)
}

// Spawner starts a child process from an argv vector.
type Spawner interface {
	Spawn(argv []string) (Child, error)
}
