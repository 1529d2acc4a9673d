//go:build !linux && !darwin && !windows

package autostart

func enable(Item) error { return ErrUnsupported }

func disable() error { return ErrUnsupported }

func isEnabled() bool { return false }
