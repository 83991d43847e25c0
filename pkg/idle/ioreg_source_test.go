package idle

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParseHIDIdleTime(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedNanos int64
		expectError   bool
	}{
		{
			name: "Valid HIDIdleTime",
			input: `    | |   |   +-o IOHIDSystem  <class IOHIDSystem, id 0x1000002d0, registered, matched, active, busy 0 (0 ms), retain 22>
    | |   |     {
    | |   |       "HIDIdleTime" = 3456789012
    | |   |       "IOClass" = "IOHIDSystem"
    | |   |     }`,
			expectedNanos: 3456789012,
		},
		{
			name: "HIDIdleTime with quotes",
			input: `    | |   |       "HIDIdleTime" = "1234567890"
    | |   |       "IOClass" = "IOHIDSystem"`,
			expectedNanos: 1234567890,
		},
		{
			name:          "Zero HIDIdleTime",
			input:         `    | |   |       "HIDIdleTime" = 0`,
			expectedNanos: 0,
		},
		{
			name:        "Missing HIDIdleTime",
			input:       `"IOClass" = "IOHIDSystem"`,
			expectError: true,
		},
		{
			name:        "Invalid HIDIdleTime format",
			input:       `    | |   |       "HIDIdleTime" = "not-a-number"`,
			expectError: true,
		},
		{
			name: "HIDIdleTime without equals",
			input: `    | |   |       "HIDIdleTime" 3456789012
    | |   |       "IOClass" = "IOHIDSystem"`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nanos, err := parseHIDIdleTime([]byte(tt.input))

			if (err != nil) != tt.expectError {
				t.Errorf("parseHIDIdleTime() error = %v, expectError %v", err, tt.expectError)
			}
			if !tt.expectError && nanos != tt.expectedNanos {
				t.Errorf("parseHIDIdleTime() = %v, want %v", nanos, tt.expectedNanos)
			}
		})
	}
}

func TestIORegSource_Idle(t *testing.T) {
	s := &IORegSource{
		cmdExecutor: func(_ context.Context, name string, args ...string) ([]byte, error) {
			if name != "ioreg" {
				t.Errorf("unexpected command: %s", name)
			}
			return []byte(`"HIDIdleTime" = 2500000000`), nil
		},
	}

	d, err := s.Idle(context.Background())
	if err != nil {
		t.Fatalf("Idle() error = %v", err)
	}
	if d != 2500*time.Millisecond {
		t.Errorf("Idle() = %v, want 2.5s", d)
	}
	if Seconds(d) != 2 {
		t.Errorf("Seconds(%v) = %d, want 2", d, Seconds(d))
	}
}

func TestIORegSource_IdleFailure(t *testing.T) {
	s := &IORegSource{
		cmdExecutor: func(context.Context, string, ...string) ([]byte, error) {
			return nil, errors.New("exec: \"ioreg\": executable file not found in $PATH")
		},
	}

	_, err := s.Idle(context.Background())

	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) || unavailable.Source != "ioreg" {
		t.Errorf("expected ioreg UnavailableError, got %v", err)
	}
}
