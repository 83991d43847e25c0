package idle

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// TmuxSource derives idle time from the most recent client activity of a
// tmux session. It is the only source available over plain SSH.
type TmuxSource struct {
	sessionName string
	cmdExecutor func(ctx context.Context, name string, args ...string) ([]byte, error)
	now         func() time.Time
}

// NewTmuxSource creates a tmux source.
// If sessionName is empty, the current session is detected on each query.
func NewTmuxSource(sessionName string) *TmuxSource {
	return &TmuxSource{
		sessionName: sessionName,
		cmdExecutor: defaultCmdExecutor,
		now:         time.Now,
	}
}

func defaultCmdExecutor(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

// Idle returns the time since the most active client of the session last
// sent input.
func (s *TmuxSource) Idle(ctx context.Context) (time.Duration, error) {
	if !s.isInTmux() {
		return 0, unavailable("tmux", errors.New("not in a tmux session"))
	}

	sessionName := s.sessionName
	if sessionName == "" {
		name, err := s.currentSessionName(ctx)
		if err != nil {
			return 0, unavailable("tmux", errors.Wrap(err, "failed to get current session name"))
		}
		sessionName = name
	}

	idleTime, err := s.sessionIdleTime(ctx, sessionName)
	if err != nil {
		return 0, unavailable("tmux", errors.Wrap(err, "failed to get session idle time"))
	}

	return idleTime, nil
}

func (s *TmuxSource) isInTmux() bool {
	return os.Getenv("TMUX") != ""
}

func (s *TmuxSource) currentSessionName(ctx context.Context) (string, error) {
	output, err := s.cmdExecutor(ctx, "tmux", "display-message", "-p", "#{session_name}")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(output)), nil
}

// sessionIdleTime returns the minimum idle time across all clients.
func (s *TmuxSource) sessionIdleTime(ctx context.Context, sessionName string) (time.Duration, error) {
	output, err := s.cmdExecutor(ctx, "tmux", "list-clients", "-t", sessionName, "-F", "#{client_activity}")
	if err != nil {
		return 0, err
	}

	var mostRecent time.Time
	for _, line := range bytes.Split(bytes.TrimSpace(output), []byte("\n")) {
		if len(line) == 0 {
			continue
		}

		// client_activity is seconds since epoch
		secs, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			continue
		}

		activity := time.Unix(secs, 0)
		if mostRecent.IsZero() || activity.After(mostRecent) {
			mostRecent = activity
		}
	}

	if mostRecent.IsZero() {
		return 0, errors.Errorf("no client activity for session %s", sessionName)
	}

	idleTime := s.now().Sub(mostRecent)
	if idleTime < 0 {
		// clock skew
		idleTime = 0
	}

	return idleTime, nil
}

// IsAvailable reports whether we're inside tmux and the tmux binary runs.
func (s *TmuxSource) IsAvailable(ctx context.Context) bool {
	if !s.isInTmux() {
		return false
	}

	_, err := s.cmdExecutor(ctx, "tmux", "-V")
	return err == nil
}
