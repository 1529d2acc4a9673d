package hotkey

import "fmt"

// carbonKeyCode returns the macOS virtual key code for k.
func carbonKeyCode(k Key) (uint16, error) {
	codes, ok := codesFor(k)
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownKey, k)
	}
	if codes.carbon == noCarbonKey {
		return 0, fmt.Errorf("key %s has no macOS equivalent", k)
	}
	return codes.carbon, nil
}
