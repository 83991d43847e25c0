package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/Veraticus/inactive/pkg/config"
	"github.com/Veraticus/inactive/pkg/idle"
	"github.com/Veraticus/inactive/pkg/interfaces"
	"github.com/Veraticus/inactive/pkg/log"
	"github.com/Veraticus/inactive/pkg/process"
	"github.com/Veraticus/inactive/pkg/supervisor"
	"github.com/Veraticus/inactive/pkg/waiter"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

// openSource is a variable so tests can substitute a fake idle source.
var openSource = idle.NewSource

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config     *config.Config
	Source     interfaces.IdleSource
	Waiter     *waiter.Waiter
	Spawner    interfaces.Spawner
	Supervisor *supervisor.Supervisor
}

// NewDependencies opens the idle source and builds the components on top of
// it.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	backend, err := cfg.IdleBackend()
	if err != nil {
		return nil, err
	}

	source, err := openSource(ctx, backend, cfg.Display)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Config:  cfg,
		Source:  source,
		Waiter:  waiter.New(source),
		Spawner: newSpawner(cfg),
	}

	var opts []supervisor.Option
	if cfg.ForwardSignals {
		opts = append(opts, supervisor.WithForwardedSignals(syscall.SIGTERM, syscall.SIGHUP))
	}
	deps.Supervisor = supervisor.New(source, deps.Spawner, opts...)

	return deps, nil
}

// newSpawner picks the PTY spawner only when asked to and stdin is a
// terminal; there is nothing to relay otherwise.
func newSpawner(cfg *config.Config) interfaces.Spawner {
	if cfg.PTY && isTerminal(os.Stdin) {
		return process.NewPTYSpawner()
	}
	return process.NewExecSpawner()
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Close releases the idle source.
func (d *Dependencies) Close() {
	if d.Source == nil {
		return
	}
	if err := idle.Close(d.Source); err != nil {
		log.Debug("failed to close idle source", "error", err)
	}
}

// Application runs one invocation against its dependencies.
type Application struct {
	deps   *Dependencies
	stdout io.Writer
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies, stdout io.Writer) *Application {
	return &Application{
		deps:   deps,
		stdout: stdout,
	}
}

// Run executes inv and returns the process exit code. A non-nil error is
// always paired with the exit code it maps to.
func (a *Application) Run(ctx context.Context, inv *invocation) (int, error) {
	switch inv.mode {
	case modeShow:
		return a.show(ctx)
	case modeNoblock:
		return a.noblock(ctx, inv.target)
	case modeRun:
		return a.supervise(ctx, inv.target, inv.argv)
	default:
		return a.wait(ctx, inv.target)
	}
}

func (a *Application) show(ctx context.Context) (int, error) {
	secs, err := a.deps.Waiter.Idle(ctx)
	if err != nil {
		return exitCode(err), err
	}
	_, _ = fmt.Fprintln(a.stdout, secs)
	return 0, nil
}

func (a *Application) wait(ctx context.Context, target int64) (int, error) {
	if err := a.deps.Waiter.WaitUntilIdle(ctx, target); err != nil {
		return exitCode(err), err
	}
	return 0, nil
}

// noblock exits 0 when the user is already idle and 1 when active.
func (a *Application) noblock(ctx context.Context, target int64) (int, error) {
	idleEnough, err := a.deps.Waiter.IsIdleAtLeast(ctx, target)
	if err != nil {
		return exitCode(err), err
	}
	if idleEnough {
		return 0, nil
	}
	return 1, nil
}

func (a *Application) supervise(ctx context.Context, target int64, argv []string) (int, error) {
	sig, err := a.deps.Config.SignalNumber()
	if err != nil {
		return exitCode(err), err
	}

	status, err := a.deps.Supervisor.Run(ctx, target, sig, argv)
	if err != nil {
		return exitCode(err), err
	}
	return status.ShellCode(), nil
}

// exitCode maps an error to the status the process exits with.
func exitCode(err error) int {
	var unavailable *idle.UnavailableError
	if errors.As(err, &unavailable) {
		return 2
	}

	var spawnErr *process.SpawnError
	if errors.As(err, &spawnErr) {
		if spawnErr.NotFound() {
			return 127
		}
		return 126
	}

	return 1
}
