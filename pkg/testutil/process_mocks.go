package testutil

import (
	"os"
	"sync"
	"syscall"

	"github.com/Veraticus/inactive/pkg/interfaces"
	"github.com/Veraticus/inactive/pkg/process"
)

// MockChild is a fake child process. It exits when Exit is called or, with
// ExitOnSignal, when it receives a signal.
type MockChild struct {
	mu           sync.Mutex
	pid          int
	signals      []syscall.Signal
	status       syscall.WaitStatus
	exited       chan struct{}
	isExited     bool
	exitOnSignal bool
}

var _ interfaces.Child = (*MockChild)(nil)

// NewMockChild creates a running fake child.
func NewMockChild(pid int) *MockChild {
	return &MockChild{
		pid:    pid,
		exited: make(chan struct{}),
	}
}

// ExitOnSignal makes the child terminate with the first delivered signal.
func (m *MockChild) ExitOnSignal() *MockChild {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exitOnSignal = true
	return m
}

// Pid implements interfaces.Child.
func (m *MockChild) Pid() int {
	return m.pid
}

// Signal implements interfaces.Child.
func (m *MockChild) Signal(sig syscall.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isExited {
		return os.ErrProcessDone
	}
	m.signals = append(m.signals, sig)
	if m.exitOnSignal {
		m.exitLocked(process.SignaledStatus(sig))
	}
	return nil
}

// Wait implements interfaces.Child.
func (m *MockChild) Wait() (syscall.WaitStatus, error) {
	<-m.exited

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status, nil
}

// Exit terminates the child with status. Later calls are ignored.
func (m *MockChild) Exit(status syscall.WaitStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exitLocked(status)
}

func (m *MockChild) exitLocked(status syscall.WaitStatus) {
	if m.isExited {
		return
	}
	m.isExited = true
	m.status = status
	close(m.exited)
}

// Signals returns a copy of the delivered signals.
func (m *MockChild) Signals() []syscall.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]syscall.Signal, len(m.signals))
	copy(result, m.signals)
	return result
}

// MockSpawner hands out a prepared child or fails with a prepared error.
type MockSpawner struct {
	mu    sync.Mutex
	child *MockChild
	err   error
	argvs [][]string
}

var _ interfaces.Spawner = (*MockSpawner)(nil)

// NewMockSpawner creates a spawner returning child.
func NewMockSpawner(child *MockChild) *MockSpawner {
	return &MockSpawner{child: child}
}

// SetError makes Spawn fail with err.
func (m *MockSpawner) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Spawn implements interfaces.Spawner.
func (m *MockSpawner) Spawn(argv []string) (interfaces.Child, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.argvs = append(m.argvs, append([]string(nil), argv...))
	if m.err != nil {
		return nil, m.err
	}
	return m.child, nil
}

// Calls returns every argv passed to Spawn.
func (m *MockSpawner) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([][]string, len(m.argvs))
	copy(result, m.argvs)
	return result
}
