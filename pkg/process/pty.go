package process

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Veraticus/inactive/pkg/interfaces"
	"github.com/Veraticus/inactive/pkg/log"
	"github.com/creack/pty"
	"golang.org/x/term"
)

// outputDrainTimeout bounds how long Wait keeps copying PTY output after the
// child exits. Grandchildren holding the terminal open would otherwise block
// it forever.
const outputDrainTimeout = 250 * time.Millisecond

// PTYSpawner starts children on a pseudo-terminal and relays the caller's
// terminal to it. Use it only when Stdin is a terminal.
type PTYSpawner struct {
	Stdin  *os.File
	Stdout io.Writer
	Env    []string
}

var _ interfaces.Spawner = (*PTYSpawner)(nil)

// NewPTYSpawner returns a spawner relaying the process's own terminal.
func NewPTYSpawner() *PTYSpawner {
	return &PTYSpawner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}
}

// Spawn starts argv on a new PTY.
func (s *PTYSpawner) Spawn(argv []string) (interfaces.Child, error) {
	cmd, err := command(argv)
	if err != nil {
		return nil, err
	}
	cmd.Env = s.Env

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, &SpawnError{Command: argv[0], Err: err}
	}

	pid := cmd.Process.Pid
	_ = cmd.Process.Release()

	c := &ptyChild{
		child:    newChild(pid),
		pty:      ptmx,
		stdin:    s.Stdin,
		stopChan: make(chan struct{}),
		output:   make(chan struct{}),
	}
	c.start(s.Stdout)

	log.Debug("spawned child on pty", "pid", pid, "argv", argv, "pty", ptmx.Name())
	return c, nil
}

// ptyChild owns the PTY master and the terminal state of one child.
type ptyChild struct {
	*child

	pty      *os.File
	stdin    *os.File
	mu       sync.Mutex
	restore  func()
	stopChan chan struct{}
	output   chan struct{}
	wg       sync.WaitGroup
}

func (c *ptyChild) start(stdout io.Writer) {
	if c.stdin != nil {
		if err := c.copyTerminalSize(); err != nil {
			log.Debug("failed to copy terminal size", "error", err)
		}

		fd := int(c.stdin.Fd())
		if state, err := term.MakeRaw(fd); err == nil {
			c.restore = func() { _ = term.Restore(fd, state) }
		} else {
			log.Debug("failed to set raw mode", "error", err)
		}

		c.wg.Add(1)
		go c.monitorTerminalSize()

		// Blocks on stdin reads until the process exits.
		go func() { _, _ = io.Copy(c.pty, c.stdin) }()
	}

	go func() {
		defer close(c.output)
		// Reading the master fails with EIO once every slave fd is closed.
		_, _ = io.Copy(stdout, c.pty)
	}()
}

// Wait reaps the child, then drains remaining output and restores the
// caller's terminal.
func (c *ptyChild) Wait() (syscall.WaitStatus, error) {
	ws, err := c.child.Wait()

	select {
	case <-c.output:
	case <-time.After(outputDrainTimeout):
	}

	close(c.stopChan)
	c.wg.Wait()

	c.mu.Lock()
	_ = c.pty.Close()
	if c.restore != nil {
		c.restore()
		c.restore = nil
	}
	c.mu.Unlock()

	return ws, err
}

func (c *ptyChild) copyTerminalSize() error {
	size, err := pty.GetsizeFull(c.stdin)
	if err != nil {
		return err
	}
	return pty.Setsize(c.pty, size)
}

func (c *ptyChild) monitorTerminalSize() {
	defer c.wg.Done()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGWINCH)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			c.mu.Lock()
			if err := c.copyTerminalSize(); err != nil {
				log.Debug("failed to resize pty", "error", err)
			}
			c.mu.Unlock()
		case <-c.stopChan:
			return
		}
	}
}
