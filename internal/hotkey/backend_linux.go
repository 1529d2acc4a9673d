//go:build linux

package hotkey

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

type x11Backend struct {
	conn     *xgb.Conn
	root     xproto.Window
	keycodes x11Keycodes
	fired    chan int

	mu    sync.Mutex
	grabs map[x11Grab]int // grab → logical id
}

// Supported reports whether an X display is reachable. DISPLAY must be set
// and a connection must succeed.
func Supported() bool {
	if os.Getenv("DISPLAY") == "" {
		return false
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Open connects to the X server named by $DISPLAY and starts reading key
// press events from the root window.
func Open() (Backend, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, ErrUnsupported
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("%w: x11 connect: %v", ErrUnsupported, err)
	}
	setup := xproto.Setup(conn)
	count := int(setup.MaxKeycode) - int(setup.MinKeycode) + 1
	mapping, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, byte(count)).Reply()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("x11 keyboard mapping: %w", err)
	}
	keysyms := make([]uint32, len(mapping.Keysyms))
	for i, ks := range mapping.Keysyms {
		keysyms[i] = uint32(ks)
	}

	b := &x11Backend{
		conn:     conn,
		root:     setup.DefaultScreen(conn).Root,
		keycodes: newX11Keycodes(byte(setup.MinKeycode), int(mapping.KeysymsPerKeycode), keysyms),
		fired:    make(chan int, firedBuffer),
		grabs:    make(map[x11Grab]int),
	}
	go b.readEvents()
	return b, nil
}

func (b *x11Backend) Name() string { return "X11 XGrabKey" }

func (b *x11Backend) Register(id int, c Combination) error {
	grabs, err := x11Grabs(c, b.keycodes)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, g := range grabs {
		err := xproto.GrabKeyChecked(b.conn, true, b.root, g.mask, xproto.Keycode(g.keycode),
			xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
		if err != nil {
			// Roll back the variants already grabbed so the table stays
			// symmetric with the server.
			for _, done := range grabs[:i] {
				_ = xproto.UngrabKeyChecked(b.conn, xproto.Keycode(done.keycode), b.root, done.mask).Check()
				delete(b.grabs, done)
			}
			return fmt.Errorf("XGrabKey %s (keycode %d, mask 0x%x): %w", c, g.keycode, g.mask, err)
		}
		b.grabs[g] = id
	}
	return nil
}

func (b *x11Backend) Unregister(id int, c Combination) error {
	grabs, err := x11Grabs(c, b.keycodes)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var firstErr error
	for _, g := range grabs {
		if owner, ok := b.grabs[g]; !ok || owner != id {
			continue
		}
		delete(b.grabs, g)
		err := xproto.UngrabKeyChecked(b.conn, xproto.Keycode(g.keycode), b.root, g.mask).Check()
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("XUngrabKey %s: %w", c, err)
		}
	}
	return firstErr
}

func (b *x11Backend) Fired() <-chan int { return b.fired }

func (b *x11Backend) Close() error {
	b.mu.Lock()
	for g := range b.grabs {
		_ = xproto.UngrabKeyChecked(b.conn, xproto.Keycode(g.keycode), b.root, g.mask).Check()
	}
	clear(b.grabs)
	b.mu.Unlock()
	b.conn.Close()
	return nil
}

func (b *x11Backend) readEvents() {
	for {
		ev, err := b.conn.WaitForEvent()
		if ev == nil && err == nil {
			slog.Debug("x11 connection closed, hotkey reader exiting")
			return
		}
		if err != nil {
			slog.Debug("x11 event error", "err", err)
			continue
		}
		kp, ok := ev.(xproto.KeyPressEvent)
		if !ok {
			continue
		}
		g := x11PressGrab(byte(kp.Detail), kp.State)
		b.mu.Lock()
		id, ok := b.grabs[g]
		b.mu.Unlock()
		if ok {
			deliver(b.fired, id)
		}
	}
}
