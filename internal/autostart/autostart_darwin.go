package autostart

import (
	"os"
	"path/filepath"
)

func plistPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "LaunchAgents", LaunchAgentLabel+".plist")
}

func enable(it Item) error { return writeFile(plistPath(), launchAgentPlist(it)) }

func disable() error { return removeFile(plistPath()) }

func isEnabled() bool { return exists(plistPath()) }
