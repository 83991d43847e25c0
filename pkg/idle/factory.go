// Package idle provides idle-time sources for the active user session.
package idle

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/inactive/pkg/interfaces"
	"github.com/pkg/errors"
)

// Backend names an idle source implementation.
type Backend string

// Supported backends.
const (
	BackendAuto  Backend = "auto"
	BackendX11   Backend = "x11"
	BackendDBus  Backend = "dbus"
	BackendTmux  Backend = "tmux"
	BackendIOReg Backend = "ioreg"
)

// ParseBackend validates a backend name. The empty string means auto.
func ParseBackend(name string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	if b == "" {
		return BackendAuto, nil
	}
	switch b {
	case BackendAuto, BackendX11, BackendDBus, BackendTmux, BackendIOReg:
		return b, nil
	}
	return "", fmt.Errorf("unknown idle backend %q (want auto, x11, dbus, tmux or ioreg)", name)
}

type opener func(ctx context.Context, display string) (interfaces.IdleSource, error)

// openers is a variable so tests can stub the platform bindings.
var openers = map[Backend]opener{
	BackendX11: func(_ context.Context, display string) (interfaces.IdleSource, error) {
		return NewX11Source(display)
	},
	BackendDBus: func(ctx context.Context, _ string) (interfaces.IdleSource, error) {
		return NewDBusSource(ctx)
	},
	BackendTmux: func(ctx context.Context, _ string) (interfaces.IdleSource, error) {
		s := NewTmuxSource("")
		if !s.IsAvailable(ctx) {
			return nil, unavailable("tmux", errors.New("not in a tmux session"))
		}
		return s, nil
	},
	BackendIOReg: func(ctx context.Context, _ string) (interfaces.IdleSource, error) {
		s := NewIORegSource()
		if !s.IsAvailable(ctx) {
			return nil, unavailable("ioreg", errors.New("ioreg not found"))
		}
		return s, nil
	},
}

// NewSource opens the requested backend. With BackendAuto it tries the
// platform's preferred backends in order and returns the first that opens.
// display overrides the DISPLAY environment variable for the x11 backend.
func NewSource(ctx context.Context, backend Backend, display string) (interfaces.IdleSource, error) {
	if backend == "" || backend == BackendAuto {
		return openFirst(ctx, platformBackends(), display)
	}

	open, ok := openers[backend]
	if !ok {
		return nil, unavailable(string(backend), errors.New("unsupported backend"))
	}
	return open(ctx, display)
}

func openFirst(ctx context.Context, backends []Backend, display string) (interfaces.IdleSource, error) {
	var reasons []string
	for _, b := range backends {
		open, ok := openers[b]
		if !ok {
			continue
		}
		src, err := open(ctx, display)
		if err == nil {
			return src, nil
		}
		reasons = append(reasons, err.Error())
	}

	return nil, unavailable("auto", errors.Errorf("no usable idle backend: %s", strings.Join(reasons, "; ")))
}

// Close releases src if it holds resources.
func Close(src interfaces.IdleSource) error {
	if c, ok := src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
