// Package supervisor runs a command and signals it once the user has been
// idle for a target number of seconds.
package supervisor

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Veraticus/inactive/pkg/interfaces"
	"github.com/Veraticus/inactive/pkg/log"
	"github.com/Veraticus/inactive/pkg/process"
	"github.com/Veraticus/inactive/pkg/waiter"
	"github.com/pkg/errors"
	"k8s.io/utils/clock"
)

// DefaultSignal is delivered when the caller does not choose one.
const DefaultSignal = syscall.SIGTERM

// State is a step of a supervised run.
type State int

// Run states, in the order a run normally passes through them.
const (
	StateIdle State = iota
	StateAlreadyIdle
	StateSpawned
	StateArmed
	StateSignaled
	StateForwarded
	StateReaped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAlreadyIdle:
		return "already-idle"
	case StateSpawned:
		return "spawned"
	case StateArmed:
		return "armed"
	case StateSignaled:
		return "signaled"
	case StateForwarded:
		return "forwarded"
	case StateReaped:
		return "reaped"
	}
	return "unknown"
}

// Event reports a state transition to an observer.
type Event struct {
	State State
	// Remaining is the armed delay in seconds for StateArmed.
	Remaining int64
	// Signal is the delivered signal for StateSignaled and StateForwarded.
	Signal syscall.Signal
	Pid    int
}

// Supervisor owns at most one child at a time.
type Supervisor struct {
	waiter   *waiter.Waiter
	spawner  interfaces.Spawner
	clock    clock.Clock
	forward  []os.Signal
	notify   func(c chan<- os.Signal, sigs ...os.Signal)
	stop     func(c chan<- os.Signal)
	observer func(Event)
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithClock sets the clock used for deadlines and idle computation.
func WithClock(clk clock.Clock) Option {
	return func(s *Supervisor) {
		s.clock = clk
	}
}

// WithForwardedSignals relays the given signals, received by this process
// during a run, to the child.
func WithForwardedSignals(sigs ...os.Signal) Option {
	return func(s *Supervisor) {
		s.forward = sigs
	}
}

// WithSignalNotifier replaces signal.Notify and signal.Stop.
func WithSignalNotifier(notify func(c chan<- os.Signal, sigs ...os.Signal), stop func(c chan<- os.Signal)) Option {
	return func(s *Supervisor) {
		s.notify = notify
		s.stop = stop
	}
}

// WithObserver registers a callback invoked synchronously on every state
// transition.
func WithObserver(fn func(Event)) Option {
	return func(s *Supervisor) {
		s.observer = fn
	}
}

// New creates a supervisor reading idle time from source and starting
// children with spawner.
func New(source interfaces.IdleSource, spawner interfaces.Spawner, opts ...Option) *Supervisor {
	s := &Supervisor{
		spawner: spawner,
		clock:   clock.RealClock{},
		notify:  signal.Notify,
		stop:    signal.Stop,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.waiter = waiter.NewWithClock(source, s.clock)
	return s
}

type waitResult struct {
	status syscall.WaitStatus
	err    error
}

// Run starts argv and delivers sig to it once the user has been idle for
// target seconds, then returns the child's exit status.
//
// If the user is already idle long enough, no child is started and a
// successful status is returned. Each deadline expiry re-reads the idle
// time: input since arming pushes the deadline out instead of signaling.
// The signal is delivered at most once.
//
// SIGINT is caught for the duration of the run so that an interrupt meant
// for the child does not also end the supervisor. If the idle source fails
// mid-run the error is returned and the child is left running.
func (s *Supervisor) Run(ctx context.Context, target int64, sig syscall.Signal, argv []string) (process.ExitStatus, error) {
	remaining, err := s.waiter.Remaining(ctx, target)
	if err != nil {
		return process.ExitStatus{}, err
	}
	if remaining <= 0 {
		log.Debug("already idle, not starting command", "target", target)
		s.emit(Event{State: StateAlreadyIdle})
		return process.ExitStatus{}, nil
	}

	sigCh := make(chan os.Signal, 4)
	s.notify(sigCh, append([]os.Signal{os.Interrupt}, s.forward...)...)
	defer s.stop(sigCh)

	child, err := s.spawner.Spawn(argv)
	if err != nil {
		return process.ExitStatus{}, err
	}
	logger := log.With("pid", child.Pid())
	s.emit(Event{State: StateSpawned, Pid: child.Pid()})

	deadline := NewDeadline(s.clock)
	defer deadline.Disarm()
	s.arm(deadline, remaining, child.Pid())

	exited := make(chan waitResult, 1)
	go func() {
		ws, err := child.Wait()
		exited <- waitResult{status: ws, err: err}
	}()

	for {
		select {
		case res := <-exited:
			// Disarm before returning so a late expiry can never reach a
			// reaped, possibly reused, pid.
			deadline.Disarm()
			if res.err != nil {
				return process.ExitStatus{}, errors.Wrap(res.err, "failed to wait for command")
			}
			status := process.FromWaitStatus(res.status)
			logger.Debug("command finished", "status", status.String())
			s.emit(Event{State: StateReaped, Pid: child.Pid()})
			return status, nil

		case <-deadline.C():
			deadline.Fired()

			remaining, err := s.waiter.Remaining(ctx, target)
			if err != nil {
				logger.Error("idle source failed, leaving command running", "error", err)
				return process.ExitStatus{}, err
			}
			if remaining > 0 {
				s.arm(deadline, remaining, child.Pid())
				continue
			}

			if err := child.Signal(sig); err != nil {
				if errors.Is(err, os.ErrProcessDone) {
					continue
				}
				logger.Warn("failed to signal command", "signal", int(sig), "error", err)
				continue
			}
			logger.Debug("idle target reached, signaled command", "signal", int(sig))
			s.emit(Event{State: StateSignaled, Signal: sig, Pid: child.Pid()})

		case received := <-sigCh:
			if received == os.Interrupt {
				logger.Debug("ignoring interrupt while supervising")
				continue
			}
			fwd, ok := received.(syscall.Signal)
			if !ok {
				continue
			}
			if err := child.Signal(fwd); err != nil && !errors.Is(err, os.ErrProcessDone) {
				logger.Warn("failed to forward signal", "signal", int(fwd), "error", err)
				continue
			}
			logger.Debug("forwarded signal", "signal", int(fwd))
			s.emit(Event{State: StateForwarded, Signal: fwd, Pid: child.Pid()})

		case <-ctx.Done():
			return process.ExitStatus{}, ctx.Err()
		}
	}
}

func (s *Supervisor) arm(deadline *Deadline, remaining int64, pid int) {
	deadline.Arm(time.Duration(remaining) * time.Second)
	log.Debug("deadline armed", "pid", pid, "remaining", remaining)
	s.emit(Event{State: StateArmed, Remaining: remaining, Pid: pid})
}

func (s *Supervisor) emit(ev Event) {
	if s.observer != nil {
		s.observer(ev)
	}
}
