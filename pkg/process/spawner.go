// Package process starts, signals and reaps the supervised child.
package process

import (
	"os"
	"os/exec"

	"github.com/Veraticus/inactive/pkg/interfaces"
	"github.com/Veraticus/inactive/pkg/log"
	"github.com/pkg/errors"
)

// ExecSpawner starts children that share the caller's terminal and stdio.
type ExecSpawner struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
	// Env is the child environment; nil inherits ours.
	Env []string
}

var _ interfaces.Spawner = (*ExecSpawner)(nil)

// NewExecSpawner returns a spawner wired to the process's own stdio.
func NewExecSpawner() *ExecSpawner {
	return &ExecSpawner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Spawn starts argv[0] with argv[1:], searching PATH like execvp.
func (s *ExecSpawner) Spawn(argv []string) (interfaces.Child, error) {
	cmd, err := command(argv)
	if err != nil {
		return nil, err
	}
	cmd.Env = s.Env
	// Only *os.File streams: anything else would make exec.Cmd start copy
	// goroutines that need cmd.Wait, and we reap by pid instead.
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: argv[0], Err: err}
	}

	pid := cmd.Process.Pid
	// The process handle is not used again; the child is waited for by pid.
	_ = cmd.Process.Release()

	log.Debug("spawned child", "pid", pid, "argv", argv)
	return newChild(pid), nil
}

func command(argv []string) (*exec.Cmd, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, &SpawnError{Command: "", Err: errors.New("empty command")}
	}
	return exec.Command(argv[0], argv[1:]...), nil // #nosec G204 -- running the user's command is the point
}
