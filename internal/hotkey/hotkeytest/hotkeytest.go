// Package hotkeytest provides an in-memory hotkey.Backend for tests.
package hotkeytest

import (
	"errors"
	"sync"

	"go.klb.dev/xclipy/internal/hotkey"
)

// ErrGrabbed is returned by Register for a combination marked with Grab.
var ErrGrabbed = errors.New("combination grabbed by another client")

// Backend records active registrations the way the OS would see them.
type Backend struct {
	mu      sync.Mutex
	active  map[int]hotkey.Combination
	grabbed map[hotkey.Combination]bool
	fired   chan int
	closed  bool
}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{
		active:  make(map[int]hotkey.Combination),
		grabbed: make(map[hotkey.Combination]bool),
		fired:   make(chan int, 8),
	}
}

// Grab makes later registrations of c fail, as if another client owned it.
func (b *Backend) Grab(c hotkey.Combination) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.grabbed[c] = true
}

// Press simulates a physical key press for logical id.
func (b *Backend) Press(id int) { b.fired <- id }

// Active returns the combination registered for id.
func (b *Backend) Active(id int) (hotkey.Combination, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.active[id]
	return c, ok
}

// Count returns the number of active registrations.
func (b *Backend) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.active)
}

// Closed reports whether Close was called.
func (b *Backend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *Backend) Name() string { return "in-memory" }

func (b *Backend) Register(id int, c hotkey.Combination) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.grabbed[c] {
		return ErrGrabbed
	}
	if _, dup := b.active[id]; dup {
		return errors.New("id already registered")
	}
	b.active[id] = c
	return nil
}

func (b *Backend) Unregister(id int, c hotkey.Combination) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.active[id]; !ok || cur != c {
		return errors.New("unregister with mismatched combination")
	}
	delete(b.active, id)
	return nil
}

func (b *Backend) Fired() <-chan int { return b.fired }

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
