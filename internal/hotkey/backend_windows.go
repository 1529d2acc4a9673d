//go:build windows

package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procRegisterHotKey   = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey = user32.NewProc("UnregisterHotKey")
	procPeekMessageW     = user32.NewProc("PeekMessageW")
)

const (
	wmHotkey = 0x0312
	pmRemove = 0x0001

	pumpInterval = 20 * time.Millisecond
)

type winMsg struct {
	hwnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	ptX, ptY int32
	lPrivate uint32
}

type winOp int

const (
	opRegister winOp = iota
	opUnregister
	opClose
)

type winRequest struct {
	op    winOp
	id    int
	combo Combination
	reply chan error
}

// win32Backend owns a goroutine locked to one OS thread. RegisterHotKey with
// a NULL window posts WM_HOTKEY to the registering thread's queue, so every
// register, unregister and message pump happens on that thread.
type win32Backend struct {
	reqs  chan winRequest
	fired chan int
	done  chan struct{}
}

// Supported always reports true; user32 is present on every Windows desktop.
func Supported() bool { return true }

// Open starts the message loop thread.
func Open() (Backend, error) {
	if err := procRegisterHotKey.Find(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	b := &win32Backend{
		reqs:  make(chan winRequest),
		fired: make(chan int, firedBuffer),
		done:  make(chan struct{}),
	}
	go b.loop()
	return b, nil
}

func (b *win32Backend) Name() string { return "Win32 RegisterHotKey" }

func (b *win32Backend) Register(id int, c Combination) error {
	return b.call(winRequest{op: opRegister, id: id, combo: c})
}

func (b *win32Backend) Unregister(id int, c Combination) error {
	return b.call(winRequest{op: opUnregister, id: id, combo: c})
}

func (b *win32Backend) Fired() <-chan int { return b.fired }

func (b *win32Backend) Close() error {
	err := b.call(winRequest{op: opClose})
	<-b.done
	return err
}

func (b *win32Backend) call(req winRequest) error {
	req.reply = make(chan error, 1)
	select {
	case b.reqs <- req:
	case <-b.done:
		return errors.New("hotkey message loop stopped")
	}
	return <-req.reply
}

func (b *win32Backend) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(b.done)

	ids := newNativeIDs()
	t := time.NewTicker(pumpInterval)
	defer t.Stop()

	for {
		select {
		case req := <-b.reqs:
			switch req.op {
			case opRegister:
				req.reply <- registerNative(ids, req.id, req.combo)
			case opUnregister:
				req.reply <- unregisterNative(ids, req.id)
			case opClose:
				for _, native := range ids.all() {
					procUnregisterHotKey.Call(0, uintptr(native))
				}
				req.reply <- nil
				return
			}
		case <-t.C:
			b.pump(ids)
		}
	}
}

func (b *win32Backend) pump(ids *nativeIDs) {
	var m winMsg
	for {
		r, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
		if r == 0 {
			return
		}
		if m.message != wmHotkey {
			continue
		}
		if logical, ok := ids.logical(int(m.wParam)); ok {
			deliver(b.fired, logical)
		} else {
			slog.Debug("WM_HOTKEY for unknown native id", "native", m.wParam)
		}
	}
}

func registerNative(ids *nativeIDs, id int, c Combination) error {
	vk, err := win32VirtualKey(c.Key)
	if err != nil {
		return err
	}
	native := ids.allocate(id)
	r, _, callErr := procRegisterHotKey.Call(0, uintptr(native), uintptr(win32Modifiers(c.Mods)), uintptr(vk))
	if r == 0 {
		ids.release(id)
		return fmt.Errorf("RegisterHotKey %s: %w", c, callErr)
	}
	return nil
}

func unregisterNative(ids *nativeIDs, id int) error {
	native, ok := ids.release(id)
	if !ok {
		return fmt.Errorf("no native hotkey for id %d", id)
	}
	r, _, callErr := procUnregisterHotKey.Call(0, uintptr(native))
	if r == 0 {
		return fmt.Errorf("UnregisterHotKey %d: %w", native, callErr)
	}
	return nil
}
