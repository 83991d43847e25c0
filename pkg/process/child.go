package process

import (
	"os"
	"sync"
	"syscall"

	"github.com/Veraticus/inactive/pkg/interfaces"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// child is a process started by a spawner and addressed by raw pid.
// Signals are only sent while the pid is known to belong to our child.
type child struct {
	pid int

	mu     sync.Mutex
	exited bool
}

var _ interfaces.Child = (*child)(nil)

func newChild(pid int) *child {
	return &child{pid: pid}
}

func (c *child) Pid() int {
	return c.pid
}

// Signal delivers sig to the child. Once the child has exited it returns
// os.ErrProcessDone without touching the pid, which may be reused after
// the child is reaped.
func (c *child) Signal(sig syscall.Signal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exited {
		return os.ErrProcessDone
	}
	if err := unix.Kill(c.pid, sig); err != nil {
		if err == unix.ESRCH {
			return os.ErrProcessDone
		}
		return errors.Wrapf(err, "failed to signal pid %d", c.pid)
	}
	return nil
}

// Wait blocks until the child exits and reaps it.
func (c *child) Wait() (syscall.WaitStatus, error) {
	// Observe the exit without releasing the zombie, then close the signal
	// window before the pid is freed.
	observed, err := waitExited(c.pid)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to wait for pid %d", c.pid)
	}
	if observed {
		c.markExited()
	}

	ws, err := reap(c.pid)
	c.markExited()
	if err != nil {
		return 0, errors.Wrapf(err, "failed to reap pid %d", c.pid)
	}
	return ws, nil
}

func (c *child) markExited() {
	c.mu.Lock()
	c.exited = true
	c.mu.Unlock()
}

// reap collects the exit status, retrying when the wait is interrupted.
func reap(pid int) (syscall.WaitStatus, error) {
	for {
		var ws unix.WaitStatus
		_, err := unix.Wait4(pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		return syscall.WaitStatus(ws), nil
	}
}
