package idle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

var tmuxNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestTmuxSource(session string, exec func(name string, args ...string) ([]byte, error)) *TmuxSource {
	s := NewTmuxSource(session)
	s.now = func() time.Time { return tmuxNow }
	s.cmdExecutor = func(_ context.Context, name string, args ...string) ([]byte, error) {
		return exec(name, args...)
	}
	return s
}

func TestNewTmuxSource(t *testing.T) {
	s := NewTmuxSource("main")

	if s.sessionName != "main" {
		t.Errorf("sessionName = %v, want main", s.sessionName)
	}
	if s.cmdExecutor == nil {
		t.Error("cmdExecutor should not be nil")
	}
	if s.now == nil {
		t.Error("now should not be nil")
	}
}

func TestTmuxSource_isInTmux(t *testing.T) {
	tests := []struct {
		name     string
		tmuxEnv  string
		expected bool
	}{
		{name: "In tmux session", tmuxEnv: "/tmp/tmux-1000/default,12345,0", expected: true},
		{name: "Not in tmux session", tmuxEnv: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TMUX", tt.tmuxEnv)

			if got := NewTmuxSource("").isInTmux(); got != tt.expected {
				t.Errorf("isInTmux() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTmuxSource_currentSessionName(t *testing.T) {
	tests := []struct {
		name          string
		mockOutput    []byte
		mockError     error
		expectedName  string
		expectedError bool
	}{
		{name: "Success", mockOutput: []byte("main\n"), expectedName: "main"},
		{name: "Success with trailing spaces", mockOutput: []byte("  session-1  \n"), expectedName: "session-1"},
		{name: "Command error", mockError: fmt.Errorf("tmux not found"), expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestTmuxSource("", func(name string, _ ...string) ([]byte, error) {
				if name != "tmux" {
					t.Errorf("unexpected command: %s", name)
				}
				return tt.mockOutput, tt.mockError
			})

			name, err := s.currentSessionName(context.Background())

			if (err != nil) != tt.expectedError {
				t.Errorf("currentSessionName() error = %v, expectedError %v", err, tt.expectedError)
			}
			if name != tt.expectedName {
				t.Errorf("currentSessionName() = %v, want %v", name, tt.expectedName)
			}
		})
	}
}

func TestTmuxSource_sessionIdleTime(t *testing.T) {
	tests := []struct {
		name          string
		mockOutput    []byte
		mockError     error
		expected      time.Duration
		expectedError bool
	}{
		{
			name:       "Single client",
			mockOutput: []byte(fmt.Sprintf("%d\n", tmuxNow.Add(-5*time.Minute).Unix())),
			expected:   5 * time.Minute,
		},
		{
			name: "Multiple clients - most recent wins",
			mockOutput: []byte(fmt.Sprintf("%d\n%d\n%d\n",
				tmuxNow.Add(-10*time.Minute).Unix(),
				tmuxNow.Add(-2*time.Minute).Unix(),
				tmuxNow.Add(-5*time.Minute).Unix())),
			expected: 2 * time.Minute,
		},
		{
			name: "Garbage lines are skipped",
			mockOutput: []byte(fmt.Sprintf("junk\n\n%d\n",
				tmuxNow.Add(-30*time.Second).Unix())),
			expected: 30 * time.Second,
		},
		{name: "Empty output", mockOutput: []byte(""), expectedError: true},
		{name: "Invalid timestamp", mockOutput: []byte("invalid\n"), expectedError: true},
		{name: "Command error", mockError: fmt.Errorf("session not found"), expectedError: true},
		{
			name:       "Future timestamp (clock skew)",
			mockOutput: []byte(fmt.Sprintf("%d\n", tmuxNow.Add(time.Hour).Unix())),
			expected:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotArgs []string
			s := newTestTmuxSource("", func(_ string, args ...string) ([]byte, error) {
				gotArgs = args
				return tt.mockOutput, tt.mockError
			})

			idleTime, err := s.sessionIdleTime(context.Background(), "main")

			if (err != nil) != tt.expectedError {
				t.Fatalf("sessionIdleTime() error = %v, expectedError %v", err, tt.expectedError)
			}
			if len(gotArgs) < 3 || gotArgs[0] != "list-clients" || gotArgs[2] != "main" {
				t.Errorf("unexpected tmux args: %v", gotArgs)
			}
			if !tt.expectedError && idleTime != tt.expected {
				t.Errorf("sessionIdleTime() = %v, want %v", idleTime, tt.expected)
			}
		})
	}
}

func TestTmuxSource_Idle(t *testing.T) {
	t.Run("Not in tmux", func(t *testing.T) {
		t.Setenv("TMUX", "")
		s := newTestTmuxSource("", func(string, ...string) ([]byte, error) {
			t.Error("tmux should not be executed outside a session")
			return nil, nil
		})

		_, err := s.Idle(context.Background())

		var unavailable *UnavailableError
		if !errors.As(err, &unavailable) {
			t.Fatalf("expected *UnavailableError, got %v", err)
		}
		if unavailable.Source != "tmux" {
			t.Errorf("Source = %q, want tmux", unavailable.Source)
		}
	})

	t.Run("Detects current session", func(t *testing.T) {
		t.Setenv("TMUX", "/tmp/tmux-1000/default,12345,0")
		s := newTestTmuxSource("", func(_ string, args ...string) ([]byte, error) {
			if len(args) > 0 && args[0] == "display-message" {
				return []byte("work\n"), nil
			}
			if args[2] != "work" {
				t.Errorf("queried session %q, want work", args[2])
			}
			return []byte(fmt.Sprintf("%d\n", tmuxNow.Add(-90*time.Second).Unix())), nil
		})

		idleTime, err := s.Idle(context.Background())

		if err != nil {
			t.Fatalf("Idle() error = %v", err)
		}
		if idleTime != 90*time.Second {
			t.Errorf("Idle() = %v, want 90s", idleTime)
		}
	})

	t.Run("Query failure is unavailable", func(t *testing.T) {
		t.Setenv("TMUX", "/tmp/tmux-1000/default,12345,0")
		s := newTestTmuxSource("main", func(string, ...string) ([]byte, error) {
			return nil, fmt.Errorf("no server running")
		})

		_, err := s.Idle(context.Background())

		var unavailable *UnavailableError
		if !errors.As(err, &unavailable) {
			t.Errorf("expected *UnavailableError, got %v", err)
		}
	})
}

func TestTmuxSource_IsAvailable(t *testing.T) {
	tests := []struct {
		name         string
		inTmux       bool
		tmuxCmdError error
		expected     bool
	}{
		{name: "In tmux with tmux available", inTmux: true, expected: true},
		{name: "In tmux but tmux command fails", inTmux: true, tmuxCmdError: fmt.Errorf("command not found"), expected: false},
		{name: "Not in tmux", inTmux: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.inTmux {
				t.Setenv("TMUX", "/tmp/tmux-1000/default,12345,0")
			} else {
				t.Setenv("TMUX", "")
			}

			s := newTestTmuxSource("", func(name string, args ...string) ([]byte, error) {
				if name == "tmux" && len(args) > 0 && args[0] == "-V" {
					if tt.tmuxCmdError != nil {
						return nil, tt.tmuxCmdError
					}
					return []byte("tmux 3.2a\n"), nil
				}
				return nil, fmt.Errorf("unexpected command")
			})

			if got := s.IsAvailable(context.Background()); got != tt.expected {
				t.Errorf("IsAvailable() = %v, want %v", got, tt.expected)
			}
		})
	}
}
