package hotkey

import "fmt"

// RegisterHotKey fsModifiers (winuser.h).
const (
	win32ModAlt     uint32 = 0x0001
	win32ModControl uint32 = 0x0002
	win32ModShift   uint32 = 0x0004
	win32ModWin     uint32 = 0x0008
)

func win32Modifiers(m Modifier) uint32 {
	var mods uint32
	if m&ModAlt != 0 {
		mods |= win32ModAlt
	}
	if m&ModCtrl != 0 {
		mods |= win32ModControl
	}
	if m&ModShift != 0 {
		mods |= win32ModShift
	}
	if m&ModMeta != 0 {
		mods |= win32ModWin
	}
	return mods
}

func win32VirtualKey(k Key) (uint32, error) {
	codes, ok := codesFor(k)
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownKey, k)
	}
	return codes.vk, nil
}

// nativeIDs hands out Win32 hotkey ids. Ids are allocated monotonically and
// never reused within one backend; the reverse map routes WM_HOTKEY back to
// the logical id that owns it.
type nativeIDs struct {
	next      int
	byLogical map[int]int
	byNative  map[int]int
}

func newNativeIDs() *nativeIDs {
	return &nativeIDs{
		next:      1,
		byLogical: make(map[int]int),
		byNative:  make(map[int]int),
	}
}

// allocate assigns a fresh native id to logical.
func (n *nativeIDs) allocate(logical int) int {
	id := n.next
	n.next++
	n.byLogical[logical] = id
	n.byNative[id] = logical
	return id
}

// native returns the native id currently assigned to logical.
func (n *nativeIDs) native(logical int) (int, bool) {
	id, ok := n.byLogical[logical]
	return id, ok
}

// logical returns the logical id that owns native.
func (n *nativeIDs) logical(native int) (int, bool) {
	id, ok := n.byNative[native]
	return id, ok
}

// release forgets the mapping for logical and returns its native id.
func (n *nativeIDs) release(logical int) (int, bool) {
	id, ok := n.byLogical[logical]
	if !ok {
		return 0, false
	}
	delete(n.byLogical, logical)
	delete(n.byNative, id)
	return id, true
}

// all returns every live native id.
func (n *nativeIDs) all() []int {
	out := make([]int, 0, len(n.byNative))
	for id := range n.byNative {
		out = append(out, id)
	}
	return out
}
