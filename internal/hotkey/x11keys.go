package hotkey

import "fmt"

// X11 core modifier masks (X.h).
const (
	x11ShiftMask   uint16 = 1 << 0
	x11LockMask    uint16 = 1 << 1
	x11ControlMask uint16 = 1 << 2
	x11Mod1Mask    uint16 = 1 << 3 // Alt
	x11Mod2Mask    uint16 = 1 << 4 // NumLock on virtually every keymap
	x11Mod4Mask    uint16 = 1 << 6 // Super
)

// x11IgnoredMask is stripped from key press state before matching, so that
// CapsLock and NumLock do not change which binding fires.
const x11IgnoredMask = x11LockMask | x11Mod2Mask

// x11ModifierBits covers Shift through Mod5. Key press state also carries
// pointer button and keyboard group bits above these.
const x11ModifierBits uint16 = 0xFF

// x11Grab is one (keycode, modifier mask) pair passed to XGrabKey.
type x11Grab struct {
	keycode byte
	mask    uint16
}

// x11PressGrab returns the grab a key press with the given state matches.
func x11PressGrab(keycode byte, state uint16) x11Grab {
	return x11Grab{keycode: keycode, mask: state & x11ModifierBits &^ x11IgnoredMask}
}

func x11Modifiers(m Modifier) uint16 {
	var mask uint16
	if m&ModCtrl != 0 {
		mask |= x11ControlMask
	}
	if m&ModShift != 0 {
		mask |= x11ShiftMask
	}
	if m&ModAlt != 0 {
		mask |= x11Mod1Mask
	}
	if m&ModMeta != 0 {
		mask |= x11Mod4Mask
	}
	return mask
}

// x11Keycodes maps keysyms to the lowest keycode producing them.
type x11Keycodes map[uint32]byte

// newX11Keycodes builds the table from a GetKeyboardMapping reply: keysyms
// holds perKeycode entries for each keycode starting at minKeycode.
func newX11Keycodes(minKeycode byte, perKeycode int, keysyms []uint32) x11Keycodes {
	t := make(x11Keycodes)
	if perKeycode <= 0 {
		return t
	}
	for i := 0; i*perKeycode < len(keysyms); i++ {
		kc := int(minKeycode) + i
		if kc > 255 {
			break
		}
		row := keysyms[i*perKeycode : min((i+1)*perKeycode, len(keysyms))]
		for _, ks := range row {
			if ks == 0 {
				continue
			}
			if _, seen := t[ks]; !seen {
				t[ks] = byte(kc)
			}
		}
	}
	return t
}

// x11Grabs returns every grab needed for c: the base mask plus each
// Lock/NumLock variant. The result depends only on c and the keycode table,
// so register and unregister always compute the same pairs.
func x11Grabs(c Combination, keycodes x11Keycodes) ([]x11Grab, error) {
	codes, ok := codesFor(c.Key)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKey, c.Key)
	}
	kc, ok := keycodes[codes.x11]
	if !ok {
		return nil, fmt.Errorf("no keycode for keysym 0x%04x (%s) in current keymap", codes.x11, c.Key)
	}
	base := x11Modifiers(c.Mods)
	masks := []uint16{base, base | x11LockMask, base | x11Mod2Mask, base | x11LockMask | x11Mod2Mask}
	grabs := make([]x11Grab, 0, len(masks))
	for _, m := range masks {
		grabs = append(grabs, x11Grab{keycode: kc, mask: m})
	}
	return grabs, nil
}
