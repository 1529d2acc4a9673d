package manager

import (
	"errors"
	"fmt"
	"strconv"

	"go.klb.dev/xclipy/internal/settings"
)

// ErrUnknownSetting is returned by Apply for a key it does not recognise.
var ErrUnknownSetting = errors.New("unknown setting")

// Apply sets one setting from its string form, using the persisted key names.
func (m *Manager) Apply(key, value string) error {
	switch key {
	case settings.KeyMaxHistorySize:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, ErrInvalidHistorySize)
		}
		return m.SetMaxHistorySize(n)
	case settings.KeyAutoStart:
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		m.SetAutoStart(b)
	case settings.KeyShowTrayIcon:
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		m.SetShowTrayIcon(b)
	case settings.KeyHotkey:
		return m.SetHotkey(value)
	case settings.KeyHotkeyEnabled:
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		m.SetHotkeyEnabled(b)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSetting, key)
	}
	return nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: expected true or false, got %q", key, value)
	}
	return b, nil
}
