//go:build linux

package clip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.design/x/clipboard"
)

const (
	uriListTarget = "text/uri-list"
	toolTimeout   = 2 * time.Second
)

// linuxBackend reads and writes text through golang.design/x/clipboard.
// That library only speaks text and images, so file lists go through the
// text/uri-list target of whichever selection tool is installed.
type linuxBackend struct {
	tool fileTool
}

// fileTool holds the argv used to read and write the uri-list target.
type fileTool struct {
	name  string
	read  []string
	write []string
}

// New returns the Linux clipboard backend, or a headless no-op backend if
// the display environment is unavailable (e.g. a headless server without X11
// or Wayland). clipboard.Init is called here rather than in init() so that
// CLI sub-commands that never construct a Backend don't trigger the warning.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return headlessBackend{}
	}
	b := &linuxBackend{tool: detectFileTool()}
	if b.tool.name == "" {
		slog.Warn("neither wl-clipboard nor xclip found, file lists disabled")
	}
	return b
}

func detectFileTool() fileTool {
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		if _, err := exec.LookPath("wl-paste"); err == nil {
			return fileTool{
				name:  "wl-clipboard",
				read:  []string{"wl-paste", "--no-newline", "--type", uriListTarget},
				write: []string{"wl-copy", "--type", uriListTarget},
			}
		}
	}
	if _, err := exec.LookPath("xclip"); err == nil {
		return fileTool{
			name:  "xclip",
			read:  []string{"xclip", "-selection", "clipboard", "-t", uriListTarget, "-o"},
			write: []string{"xclip", "-selection", "clipboard", "-t", uriListTarget, "-i"},
		}
	}
	return fileTool{}
}

func (b *linuxBackend) Name() string {
	if b.tool.name == "" {
		return "Linux clipboard (text only)"
	}
	return "Linux clipboard (" + b.tool.name + ")"
}

func (b *linuxBackend) ReadText() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (b *linuxBackend) ReadFiles() ([]string, error) {
	if b.tool.name == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, b.tool.read[0], b.tool.read[1:]...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Both tools exit non-zero when the target is simply absent.
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", b.tool.name, err)
	}
	return ParseURIList(string(out)), nil
}

func (b *linuxBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *linuxBackend) WriteFiles(paths []string) error {
	if b.tool.name == "" {
		return errors.New("no uri-list capable clipboard tool installed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, b.tool.write[0], b.tool.write[1:]...)
	cmd.Stdin = strings.NewReader(FormatURIList(paths))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s write: %w", b.tool.name, err)
	}
	return nil
}

func (b *linuxBackend) Close() {}
