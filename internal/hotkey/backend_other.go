//go:build !darwin && !windows && !linux

package hotkey

// Supported reports false: no native backend exists for this platform.
func Supported() bool { return false }

// Open always fails with ErrUnsupported.
func Open() (Backend, error) { return nil, ErrUnsupported }
