package autostart

import (
	"os"
	"path/filepath"
)

// desktopPath honours $XDG_CONFIG_HOME, falling back to ~/.config.
func desktopPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "autostart", appName+".desktop")
}

func enable(it Item) error { return writeFile(desktopPath(), desktopEntry(it)) }

func disable() error { return removeFile(desktopPath()) }

func isEnabled() bool { return exists(desktopPath()) }
