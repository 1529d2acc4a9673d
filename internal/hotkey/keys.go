package hotkey

import "strings"

// Key is the canonical, platform-neutral name of a non-modifier key.
type Key string

// keyCodes carries the native code of a key on each backend. Carbon has no
// Insert key; noCarbonKey marks such gaps.
type keyCodes struct {
	x11    uint32 // X keysym
	vk     uint32 // Win32 virtual-key code
	carbon uint16 // macOS kVK_* virtual key code
}

const noCarbonKey = 0xFFFF

var keyTable = map[Key]keyCodes{
	"A": {'a', 'A', 0x00}, "B": {'b', 'B', 0x0B}, "C": {'c', 'C', 0x08},
	"D": {'d', 'D', 0x02}, "E": {'e', 'E', 0x0E}, "F": {'f', 'F', 0x03},
	"G": {'g', 'G', 0x05}, "H": {'h', 'H', 0x04}, "I": {'i', 'I', 0x22},
	"J": {'j', 'J', 0x26}, "K": {'k', 'K', 0x28}, "L": {'l', 'L', 0x25},
	"M": {'m', 'M', 0x2E}, "N": {'n', 'N', 0x2D}, "O": {'o', 'O', 0x1F},
	"P": {'p', 'P', 0x23}, "Q": {'q', 'Q', 0x0C}, "R": {'r', 'R', 0x0F},
	"S": {'s', 'S', 0x01}, "T": {'t', 'T', 0x11}, "U": {'u', 'U', 0x20},
	"V": {'v', 'V', 0x09}, "W": {'w', 'W', 0x0D}, "X": {'x', 'X', 0x07},
	"Y": {'y', 'Y', 0x10}, "Z": {'z', 'Z', 0x06},

	"0": {'0', '0', 0x1D}, "1": {'1', '1', 0x12}, "2": {'2', '2', 0x13},
	"3": {'3', '3', 0x14}, "4": {'4', '4', 0x15}, "5": {'5', '5', 0x17},
	"6": {'6', '6', 0x16}, "7": {'7', '7', 0x1A}, "8": {'8', '8', 0x1C},
	"9": {'9', '9', 0x19},

	"F1": {0xFFBE, 0x70, 0x7A}, "F2": {0xFFBF, 0x71, 0x78},
	"F3": {0xFFC0, 0x72, 0x63}, "F4": {0xFFC1, 0x73, 0x76},
	"F5": {0xFFC2, 0x74, 0x60}, "F6": {0xFFC3, 0x75, 0x61},
	"F7": {0xFFC4, 0x76, 0x62}, "F8": {0xFFC5, 0x77, 0x64},
	"F9": {0xFFC6, 0x78, 0x65}, "F10": {0xFFC7, 0x79, 0x6D},
	"F11": {0xFFC8, 0x7A, 0x67}, "F12": {0xFFC9, 0x7B, 0x6F},

	"Space":     {0x0020, 0x20, 0x31},
	"Return":    {0xFF0D, 0x0D, 0x24},
	"Escape":    {0xFF1B, 0x1B, 0x35},
	"Tab":       {0xFF09, 0x09, 0x30},
	"Backspace": {0xFF08, 0x08, 0x33},
	"Delete":    {0xFFFF, 0x2E, 0x75},
	"Insert":    {0xFF63, 0x2D, noCarbonKey},
	"Home":      {0xFF50, 0x24, 0x73},
	"End":       {0xFF57, 0x23, 0x77},
	"PageUp":    {0xFF55, 0x21, 0x74},
	"PageDown":  {0xFF56, 0x22, 0x79},
	"Left":      {0xFF51, 0x25, 0x7B},
	"Up":        {0xFF52, 0x26, 0x7E},
	"Right":     {0xFF53, 0x27, 0x7C},
	"Down":      {0xFF54, 0x28, 0x7D},
}

var keyAliases = map[string]Key{
	"enter":  "Return",
	"esc":    "Escape",
	"del":    "Delete",
	"ins":    "Insert",
	"pgup":   "PageUp",
	"pgdown": "PageDown",
	"pgdn":   "PageDown",
}

var keysByLower = func() map[string]Key {
	m := make(map[string]Key, len(keyTable)+len(keyAliases))
	for k := range keyTable {
		m[strings.ToLower(string(k))] = k
	}
	for alias, k := range keyAliases {
		m[alias] = k
	}
	return m
}()

// LookupKey resolves a case-insensitive key name or alias to its canonical Key.
func LookupKey(name string) (Key, bool) {
	k, ok := keysByLower[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

func codesFor(k Key) (keyCodes, bool) {
	c, ok := keyTable[k]
	return c, ok
}
