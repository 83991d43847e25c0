package idle

import (
	"errors"
	"testing"
	"time"
)

func TestSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int64
	}{
		{0, 0},
		{999 * time.Millisecond, 0},
		{time.Second, 1},
		{4*time.Second + 999*time.Millisecond, 4},
		{time.Hour, 3600},
		{-time.Second, 0},
	}
	for _, tt := range tests {
		if got := Seconds(tt.in); got != tt.want {
			t.Errorf("Seconds(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestUnavailableError(t *testing.T) {
	cause := errors.New("cannot open display :0")
	err := unavailable("x11", cause)

	if got, want := err.Error(), "idle source x11 unavailable: cannot open display :0"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("UnavailableError should unwrap to its cause")
	}

	bare := &UnavailableError{Source: "dbus"}
	if got, want := bare.Error(), "idle source dbus unavailable"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
