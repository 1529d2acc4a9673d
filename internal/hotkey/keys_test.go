package hotkey

import (
	"slices"
	"testing"
)

func TestKeyTableComplete(t *testing.T) {
	seenVK := make(map[uint32]Key)
	for k, c := range keyTable {
		if c.x11 == 0 {
			t.Errorf("%s: missing X11 keysym", k)
		}
		if c.vk == 0 {
			t.Errorf("%s: missing Win32 virtual key", k)
		}
		if other, dup := seenVK[c.vk]; dup {
			t.Errorf("%s and %s share virtual key 0x%02x", k, other, c.vk)
		}
		seenVK[c.vk] = k
		if got, ok := LookupKey(string(k)); !ok || got != k {
			t.Errorf("LookupKey(%q) = %q, %v", k, got, ok)
		}
	}
}

func TestCarbonKeyCode(t *testing.T) {
	if code, err := carbonKeyCode("V"); err != nil || code != 0x09 {
		t.Errorf("carbonKeyCode(V) = 0x%02x, %v", code, err)
	}
	if _, err := carbonKeyCode("Insert"); err == nil {
		t.Error("carbonKeyCode(Insert) succeeded, macOS has no Insert key")
	}
	if _, err := carbonKeyCode("Nope"); err == nil {
		t.Error("carbonKeyCode(Nope) succeeded")
	}
}

func TestWin32Translation(t *testing.T) {
	c := MustParseCombination("Ctrl+Shift+V")
	if got := win32Modifiers(c.Mods); got != win32ModControl|win32ModShift {
		t.Errorf("win32Modifiers = 0x%x", got)
	}
	if vk, err := win32VirtualKey(c.Key); err != nil || vk != 'V' {
		t.Errorf("win32VirtualKey(V) = 0x%x, %v", vk, err)
	}
	if got := win32Modifiers(ModAlt | ModMeta); got != win32ModAlt|win32ModWin {
		t.Errorf("win32Modifiers(Alt|Meta) = 0x%x", got)
	}
}

func TestNativeIDs_MonotonicAndReverse(t *testing.T) {
	ids := newNativeIDs()

	first := ids.allocate(0)
	second := ids.allocate(7)
	if first != 1 || second != 2 {
		t.Fatalf("allocate = %d, %d; want 1, 2", first, second)
	}
	if logical, ok := ids.logical(second); !ok || logical != 7 {
		t.Errorf("logical(%d) = %d, %v; want 7", second, logical, ok)
	}

	native, ok := ids.release(0)
	if !ok || native != first {
		t.Fatalf("release(0) = %d, %v", native, ok)
	}
	if _, ok := ids.logical(first); ok {
		t.Error("released native id still routes")
	}

	// Re-registering logical 0 gets a fresh id; old ids are never reused.
	if again := ids.allocate(0); again != 3 {
		t.Errorf("allocate after release = %d, want 3", again)
	}
	if n, ok := ids.native(0); !ok || n != 3 {
		t.Errorf("native(0) = %d, %v", n, ok)
	}
	if _, ok := ids.release(42); ok {
		t.Error("release of unknown logical id reported ok")
	}
	all := ids.all()
	slices.Sort(all)
	if !slices.Equal(all, []int{2, 3}) {
		t.Errorf("all() = %v, want [2 3]", all)
	}
}

func testKeycodes() x11Keycodes {
	// Two keysyms per keycode starting at 8, like a tiny US keymap:
	// 8: v V, 9: F1, 10: space, 11: a second keycode also producing v.
	return newX11Keycodes(8, 2, []uint32{
		'v', 'V',
		0xFFBE, 0,
		0x0020, 0,
		'v', 0,
	})
}

func TestNewX11Keycodes_LowestKeycodeWins(t *testing.T) {
	kc := testKeycodes()
	if kc['v'] != 8 {
		t.Errorf("keycode for v = %d, want 8", kc['v'])
	}
	if kc[0xFFBE] != 9 {
		t.Errorf("keycode for F1 = %d, want 9", kc[0xFFBE])
	}
	if _, ok := kc[0]; ok {
		t.Error("NoSymbol entries must not be mapped")
	}
	if len(newX11Keycodes(8, 0, []uint32{1, 2})) != 0 {
		t.Error("zero keysyms per keycode should yield an empty table")
	}
}

func TestX11Grabs_Symmetric(t *testing.T) {
	kc := testKeycodes()
	c := MustParseCombination("Ctrl+Shift+V")

	reg, err := x11Grabs(c, kc)
	if err != nil {
		t.Fatalf("x11Grabs: %v", err)
	}
	unreg, err := x11Grabs(c, kc)
	if err != nil {
		t.Fatalf("x11Grabs: %v", err)
	}
	if !slices.Equal(reg, unreg) {
		t.Errorf("register and unregister grabs differ: %v vs %v", reg, unreg)
	}

	base := x11ControlMask | x11ShiftMask
	want := []x11Grab{
		{8, base},
		{8, base | x11LockMask},
		{8, base | x11Mod2Mask},
		{8, base | x11LockMask | x11Mod2Mask},
	}
	if !slices.Equal(reg, want) {
		t.Errorf("x11Grabs = %v, want %v", reg, want)
	}
	for _, g := range reg {
		if g.mask&^x11IgnoredMask != base {
			t.Errorf("grab mask 0x%x does not reduce to base 0x%x", g.mask, base)
		}
	}
}

func TestX11Grabs_MissingKeycode(t *testing.T) {
	if _, err := x11Grabs(MustParseCombination("Ctrl+F12"), testKeycodes()); err == nil {
		t.Error("x11Grabs succeeded for a keysym absent from the keymap")
	}
}

func TestX11Modifiers(t *testing.T) {
	if got := x11Modifiers(ModAlt | ModMeta); got != x11Mod1Mask|x11Mod4Mask {
		t.Errorf("x11Modifiers(Alt|Meta) = 0x%x", got)
	}
}

func TestX11PressGrab(t *testing.T) {
	const kc = 55
	want := x11Grab{keycode: kc, mask: x11ControlMask | x11ShiftMask}
	tests := []struct {
		name  string
		state uint16
	}{
		{"plain", x11ControlMask | x11ShiftMask},
		{"caps and num lock", x11ControlMask | x11ShiftMask | x11LockMask | x11Mod2Mask},
		{"button 1 held", x11ControlMask | x11ShiftMask | 1<<8},
		{"buttons and group", x11ControlMask | x11ShiftMask | 1<<10 | 1<<12 | 1<<13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := x11PressGrab(kc, tt.state); got != want {
				t.Errorf("x11PressGrab(0x%x) = %+v, want %+v", tt.state, got, want)
			}
		})
	}
	if got := x11PressGrab(kc, x11ControlMask|x11Mod1Mask); got == want {
		t.Error("Ctrl+Alt matched Ctrl+Shift")
	}
}
