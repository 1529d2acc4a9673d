//go:build darwin

package hotkey

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

// carbonBackend wraps golang.design/x/hotkey, which installs one Carbon
// event handler and tags each RegisterEventHotKey with a signature+id pair.
// Each logical id owns one hotkey handle and a forwarding goroutine.
//
// The process must run its main function through
// golang.design/x/hotkey/mainthread.Init so the Cocoa event loop owns the
// main thread.
type carbonBackend struct {
	fired chan int

	mu   sync.Mutex
	keys map[int]*carbonKey
}

type carbonKey struct {
	hk   *hotkey.Hotkey
	stop chan struct{}
}

// Supported always reports true; Carbon hot keys need no extra setup.
func Supported() bool { return true }

// Open returns the macOS backend.
func Open() (Backend, error) {
	return &carbonBackend{
		fired: make(chan int, firedBuffer),
		keys:  make(map[int]*carbonKey),
	}, nil
}

func (b *carbonBackend) Name() string { return "macOS Carbon hot keys" }

func (b *carbonBackend) Register(id int, c Combination) error {
	code, err := carbonKeyCode(c.Key)
	if err != nil {
		return err
	}
	hk := hotkey.New(carbonModifiers(c.Mods), hotkey.Key(code))
	if err := hk.Register(); err != nil {
		return fmt.Errorf("RegisterEventHotKey %s: %w", c, err)
	}
	k := &carbonKey{hk: hk, stop: make(chan struct{})}

	b.mu.Lock()
	b.keys[id] = k
	b.mu.Unlock()

	go b.forward(id, k)
	return nil
}

func (b *carbonBackend) Unregister(id int, _ Combination) error {
	b.mu.Lock()
	k, ok := b.keys[id]
	delete(b.keys, id)
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("no hotkey registered for id %d", id)
	}
	close(k.stop)
	return k.hk.Unregister()
}

func (b *carbonBackend) Fired() <-chan int { return b.fired }

func (b *carbonBackend) Close() error {
	b.mu.Lock()
	keys := b.keys
	b.keys = make(map[int]*carbonKey)
	b.mu.Unlock()

	var firstErr error
	for _, k := range keys {
		close(k.stop)
		if err := k.hk.Unregister(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (b *carbonBackend) forward(id int, k *carbonKey) {
	for {
		select {
		case <-k.stop:
			return
		case _, ok := <-k.hk.Keydown():
			if !ok {
				return
			}
			deliver(b.fired, id)
		}
	}
}

func carbonModifiers(m Modifier) []hotkey.Modifier {
	var mods []hotkey.Modifier
	if m&ModCtrl != 0 {
		mods = append(mods, hotkey.ModCtrl)
	}
	if m&ModAlt != 0 {
		mods = append(mods, hotkey.ModOption)
	}
	if m&ModShift != 0 {
		mods = append(mods, hotkey.ModShift)
	}
	if m&ModMeta != 0 {
		mods = append(mods, hotkey.ModCmd)
	}
	return mods
}
