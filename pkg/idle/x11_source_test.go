package idle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
)

func TestNewX11Source_NoDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")

	_, err := NewX11Source("")

	var unavailableErr *UnavailableError
	if !errors.As(err, &unavailableErr) {
		t.Fatalf("expected *UnavailableError, got %v", err)
	}
	if unavailableErr.Source != "x11" {
		t.Errorf("Source = %q, want x11", unavailableErr.Source)
	}
}

func TestX11Source_ClosedConnection(t *testing.T) {
	s := &X11Source{}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := s.Idle(context.Background()); err == nil {
		t.Error("Idle() on a closed source should fail")
	}
}

func TestDBusProbes_Decode(t *testing.T) {
	tests := []struct {
		probe string
		body  []interface{}
		want  time.Duration
	}{
		{probe: "mutter", body: []interface{}{uint64(1500)}, want: 1500 * time.Millisecond},
		{probe: "screensaver", body: []interface{}{uint32(42)}, want: 42 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.probe, func(t *testing.T) {
			var probe *dbusProbe
			for i := range dbusProbes {
				if dbusProbes[i].name == tt.probe {
					probe = &dbusProbes[i]
				}
			}
			if probe == nil {
				t.Fatalf("probe %s not registered", tt.probe)
			}

			got, err := probe.decode(&dbus.Call{Body: tt.body})
			if err != nil {
				t.Fatalf("decode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("decode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDBusProbes_DecodeWrongType(t *testing.T) {
	_, err := dbusProbes[0].decode(&dbus.Call{Body: []interface{}{"soon"}})
	if err == nil {
		t.Error("decode() should reject a non-numeric reply")
	}
}
