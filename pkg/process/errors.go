package process

import (
	"fmt"
	"io/fs"
	"os/exec"

	"github.com/pkg/errors"
)

// SpawnError reports that a child process could not be started.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the executable does not exist.
func (e *SpawnError) NotFound() bool {
	return errors.Is(e.Err, exec.ErrNotFound) || errors.Is(e.Err, fs.ErrNotExist)
}

// Permission reports whether the executable could not be run for lack of
// permission.
func (e *SpawnError) Permission() bool {
	return errors.Is(e.Err, fs.ErrPermission)
}
