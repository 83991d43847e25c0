package idle

import (
	"context"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

// dbusProbe describes one session-bus service able to report idle time.
type dbusProbe struct {
	name   string
	dest   string
	path   dbus.ObjectPath
	method string
	// decode converts the method's single return value to a duration.
	decode func(call *dbus.Call) (time.Duration, error)
}

var dbusProbes = []dbusProbe{
	{
		name:   "mutter",
		dest:   "org.gnome.Mutter.IdleMonitor",
		path:   "/org/gnome/Mutter/IdleMonitor/Core",
		method: "org.gnome.Mutter.IdleMonitor.GetIdletime",
		decode: func(call *dbus.Call) (time.Duration, error) {
			var ms uint64
			if err := call.Store(&ms); err != nil {
				return 0, err
			}
			return time.Duration(ms) * time.Millisecond, nil
		},
	},
	{
		name:   "screensaver",
		dest:   "org.freedesktop.ScreenSaver",
		path:   "/org/freedesktop/ScreenSaver",
		method: "org.freedesktop.ScreenSaver.GetSessionIdleTime",
		decode: func(call *dbus.Call) (time.Duration, error) {
			var seconds uint32
			if err := call.Store(&seconds); err != nil {
				return 0, err
			}
			return time.Duration(seconds) * time.Second, nil
		},
	},
}

// DBusSource asks the desktop's idle monitor over the session bus. It is the
// usual route on Wayland sessions, where the X screensaver extension only
// sees XWayland clients.
type DBusSource struct {
	conn  *dbus.Conn
	probe dbusProbe
}

// NewDBusSource connects to the session bus and keeps the first probe that
// answers.
func NewDBusSource(ctx context.Context) (*DBusSource, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, unavailable("dbus", errors.Wrap(err, "failed to connect to session bus"))
	}

	var lastErr error
	for _, probe := range dbusProbes {
		s := &DBusSource{conn: conn, probe: probe}
		if _, err := s.query(ctx); err != nil {
			lastErr = err
			continue
		}
		return s, nil
	}

	_ = conn.Close()
	return nil, unavailable("dbus", errors.Wrap(lastErr, "no idle monitor on session bus"))
}

// Idle returns the idle time reported by the selected service.
func (s *DBusSource) Idle(ctx context.Context) (time.Duration, error) {
	d, err := s.query(ctx)
	if err != nil {
		return 0, unavailable("dbus", err)
	}
	return d, nil
}

func (s *DBusSource) query(ctx context.Context) (time.Duration, error) {
	obj := s.conn.Object(s.probe.dest, s.probe.path)
	call := obj.CallWithContext(ctx, s.probe.method, 0)
	if call.Err != nil {
		return 0, errors.Wrapf(call.Err, "%s call failed", s.probe.name)
	}
	return s.probe.decode(call)
}

// Service names the bus service in use.
func (s *DBusSource) Service() string {
	return s.probe.dest
}

// Close closes the bus connection.
func (s *DBusSource) Close() error {
	return s.conn.Close()
}
