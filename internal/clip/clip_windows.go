//go:build windows

package clip

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.design/x/clipboard"
)

const psTimeout = 5 * time.Second

// System.Windows.Forms reads and writes CF_HDROP without cgo. The clipboard
// APIs require an STA thread, hence -STA.
const (
	psReadFiles = `Add-Type -AssemblyName System.Windows.Forms; ` +
		`$f = [System.Windows.Forms.Clipboard]::GetFileDropList(); ` +
		`if ($f -and $f.Count -gt 0) { $f -join [char]10 }`
	psWriteFiles = `Add-Type -AssemblyName System.Windows.Forms; ` +
		`$c = New-Object System.Collections.Specialized.StringCollection; ` +
		`foreach ($p in ($env:XCLIPY_FILES -split [char]10)) { if ($p) { [void]$c.Add($p) } }; ` +
		`[System.Windows.Forms.Clipboard]::SetFileDropList($c)`
)

type windowsBackend struct{}

// New returns the Windows clipboard backend.
// clipboard.Init is called here rather than in init() so that CLI sub-commands
// that never construct a Backend don't log spurious warnings.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard init failed, running headless", "err", err)
		return headlessBackend{}
	}
	return windowsBackend{}
}

func (windowsBackend) Name() string { return "Windows Clipboard" }

func (windowsBackend) ReadText() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (windowsBackend) ReadFiles() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), psTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx,
		"powershell", "-NoProfile", "-NonInteractive", "-STA", "-Command", psReadFiles,
	).Output()
	if err != nil {
		return nil, fmt.Errorf("powershell GetFileDropList: %w", err)
	}
	var paths []string
	for _, p := range strings.Split(string(out), "\n") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func (windowsBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (windowsBackend) WriteFiles(paths []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), psTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx,
		"powershell", "-NoProfile", "-NonInteractive", "-STA", "-Command", psWriteFiles,
	)
	cmd.Env = append(os.Environ(), "XCLIPY_FILES="+strings.Join(paths, "\n"))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("powershell SetFileDropList: %w", err)
	}
	return nil
}

func (windowsBackend) Close() {}
