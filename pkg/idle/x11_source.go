package idle

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/screensaver"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

// X11Source queries the MIT-SCREEN-SAVER extension of an X server for the
// time since the last keyboard or pointer event.
type X11Source struct {
	mu   sync.Mutex
	conn *xgb.Conn
	root xproto.Window
}

// NewX11Source connects to display. An empty display falls back to the
// DISPLAY environment variable.
func NewX11Source(display string) (*X11Source, error) {
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	if display == "" {
		return nil, unavailable("x11", errors.New("DISPLAY is not set"))
	}

	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, unavailable("x11", errors.Wrapf(err, "failed to open display %q", display))
	}

	if err := screensaver.Init(conn); err != nil {
		conn.Close()
		return nil, unavailable("x11", errors.Wrap(err, "MIT-SCREEN-SAVER extension missing"))
	}

	setup := xproto.Setup(conn)
	return &X11Source{
		conn: conn,
		root: setup.DefaultScreen(conn).Root,
	}, nil
}

// Idle returns the server's MsSinceUserInput counter.
func (s *X11Source) Idle(_ context.Context) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return 0, unavailable("x11", errors.New("connection closed"))
	}

	reply, err := screensaver.QueryInfo(s.conn, xproto.Drawable(s.root)).Reply()
	if err != nil {
		return 0, unavailable("x11", errors.Wrap(err, "screensaver query failed"))
	}

	return time.Duration(reply.MsSinceUserInput) * time.Millisecond, nil
}

// Close releases the X connection.
func (s *X11Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	return nil
}
