// Package ipc carries the local control channel between the xclipy daemon and
// its CLI subcommands.
//
// The daemon listens on a Unix domain socket (AF_UNIX is also available on
// Windows 10 and later). Messages use the newline-delimited JSON framing of
// package wire.
package ipc

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	socketName  = "xclipy.sock"
	dialTimeout = 2 * time.Second
)

// SocketPath returns the IPC socket path: $XCLIPY_SOCKET, else
// $XDG_RUNTIME_DIR/xclipy.sock, else xclipy.sock in the temp dir.
func SocketPath() string {
	if s := os.Getenv("XCLIPY_SOCKET"); s != "" {
		return s
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, socketName)
	}
	return filepath.Join(os.TempDir(), socketName)
}

// IsRunning reports whether a daemon appears to be listening on path. It does
// a cheap dial-and-close; no data is exchanged.
func IsRunning(path string) bool {
	c, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on path. A stale socket from a crashed run is
// removed first; a live one is an error.
func Listen(path string) (net.Listener, error) {
	if IsRunning(path) {
		return nil, fmt.Errorf("another xclipy daemon is listening on %s", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("removing stale socket: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("socket dir: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	_ = os.Chmod(path, 0o600)
	return ln, nil
}

// Dial connects to the daemon socket at path.
func Dial(path string) (net.Conn, error) {
	c, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("xclipy daemon not reachable at %s: %w", path, err)
	}
	return c, nil
}
