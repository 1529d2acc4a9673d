// Package hotkey registers system-wide keyboard shortcuts. Build constraints
// select one native backend per platform:
//
//	backend_darwin.go  — Carbon hot keys via golang.design/x/hotkey
//	backend_windows.go — RegisterHotKey on a thread-locked message loop
//	backend_linux.go   — XGrabKey on the X11 root window via jezek/xgb
//	backend_other.go   — unsupported stub
//
// A Registry multiplexes logical binding ids onto whichever backend is built.
package hotkey

import (
	"errors"
	"log/slog"
)

// ErrUnsupported is returned by Open on platforms without a hotkey backend
// or without a usable display.
var ErrUnsupported = errors.New("global hotkeys not supported on this platform")

// firedBuffer bounds the number of undelivered presses a backend queues.
const firedBuffer = 16

// Backend is the contract every native hotkey implementation satisfies.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Register installs a native registration for c under logical id.
	// The id must not already be registered.
	Register(id int, c Combination) error

	// Unregister releases the native registration for id. c is the
	// combination id was registered with.
	Unregister(id int, c Combination) error

	// Fired returns a channel receiving the logical id of every press of a
	// registered combination. The channel is never closed.
	Fired() <-chan int

	// Close releases every registration and the native handles.
	Close() error
}

// deliver hands a press to the fired channel without blocking the native
// event loop. Presses are dropped only when the consumer has stalled.
func deliver(ch chan<- int, id int) {
	select {
	case ch <- id:
	default:
		slog.Warn("hotkey event channel full, dropping", "id", id)
	}
}
