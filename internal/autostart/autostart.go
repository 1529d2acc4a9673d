// Package autostart installs and removes the login item that starts the
// xclipy daemon when the user logs in.
package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	appName = "xclipy"
	// LaunchAgentLabel identifies the macOS LaunchAgent.
	LaunchAgentLabel = "dev.klb.xclipy"
)

// ErrUnsupported is returned on platforms without a login-item mechanism.
var ErrUnsupported = errors.New("autostart not supported on this platform")

// Item describes the command launched at login.
type Item struct {
	Exe  string
	Args []string
}

// Default returns an Item that runs the current executable as a daemon.
func Default() (Item, error) {
	exe, err := os.Executable()
	if err != nil {
		return Item{}, fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return Item{Exe: exe, Args: []string{"daemon"}}, nil
}

// Set installs the login item when enabled is true and removes it otherwise.
// Removing an item that is not installed is not an error.
func (it Item) Set(enabled bool) error {
	if enabled {
		return enable(it)
	}
	return disable()
}

// Enabled reports whether the login item is currently installed.
func (it Item) Enabled() bool { return isEnabled() }

// commandLine quotes exe and args for a desktop entry Exec key.
func (it Item) commandLine() string {
	parts := make([]string, 0, 1+len(it.Args))
	parts = append(parts, quote(it.Exe))
	for _, a := range it.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"'\\$`") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(s) + `"`
}

// desktopEntry renders an XDG autostart .desktop file.
func desktopEntry(it Item) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=xclipy\n")
	b.WriteString("Comment=Clipboard history\n")
	fmt.Fprintf(&b, "Exec=%s\n", it.commandLine())
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}

// launchAgentPlist renders a macOS LaunchAgent property list.
func launchAgentPlist(it Item) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>` + LaunchAgentLabel + `</string>
	<key>ProgramArguments</key>
	<array>
`)
	for _, a := range append([]string{it.Exe}, it.Args...) {
		fmt.Fprintf(&b, "\t\t<string>%s</string>\n", xmlEscape(a))
	}
	b.WriteString(`	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`)
	return b.String()
}

func xmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// writeFile writes content to path, creating parent directories.
func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// removeFile deletes path, treating a missing file as success.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
