package autostart

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"
)

const runKey = `Software\Microsoft\Windows\CurrentVersion\Run`

func enable(it Item) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening Run key: %w", err)
	}
	defer key.Close()
	if err := key.SetStringValue(appName, runValue(it)); err != nil {
		return fmt.Errorf("setting Run value: %w", err)
	}
	return nil
}

func disable() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening Run key: %w", err)
	}
	defer key.Close()
	if err := key.DeleteValue(appName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("deleting Run value: %w", err)
	}
	return nil
}

func isEnabled() bool {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer key.Close()
	_, _, err = key.GetStringValue(appName)
	return err == nil
}

// runValue quotes every element the way cmd.exe expects; backslashes in paths
// are left alone.
func runValue(it Item) string {
	parts := make([]string, 0, 1+len(it.Args))
	for _, a := range append([]string{it.Exe}, it.Args...) {
		parts = append(parts, `"`+a+`"`)
	}
	return strings.Join(parts, " ")
}
