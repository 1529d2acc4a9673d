// Package clip provides a unified interface to the system clipboard across
// platforms. Build constraints select the appropriate implementation:
//
//	clip_darwin.go   — macOS via golang.design/x/clipboard + cgo NSPasteboard file URLs
//	clip_windows.go  — Windows via golang.design/x/clipboard + PowerShell file drop lists
//	clip_linux.go    — Linux via golang.design/x/clipboard + xclip/wl-clipboard uri lists
//	clip_other.go    — headless / container stub
//
// Text and file lists are read separately; a clipboard may carry both.
package clip

import (
	"net/url"
	"strings"
)

// Backend is the interface that all platform clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadText returns the clipboard's plain text, or "" when it has none.
	ReadText() (string, error)

	// ReadFiles returns the absolute local paths on the clipboard, or nil
	// when it carries no file list.
	ReadFiles() ([]string, error)

	// WriteText replaces the clipboard contents with text.
	WriteText(text string) error

	// WriteFiles replaces the clipboard contents with a file list.
	WriteFiles(paths []string) error

	// Close releases any resources held by the backend.
	Close()
}

// ParseURIList extracts local paths from a text/uri-list payload (RFC 2483).
// Comment lines and non-file URIs are skipped.
func ParseURIList(data string) []string {
	var paths []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		u, err := url.Parse(line)
		if err != nil || u.Scheme != "file" || u.Path == "" {
			continue
		}
		if u.Host != "" && u.Host != "localhost" {
			continue
		}
		paths = append(paths, u.Path)
	}
	return paths
}

// FormatURIList renders paths as a text/uri-list payload.
func FormatURIList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString((&url.URL{Scheme: "file", Path: p}).String())
		b.WriteString("\r\n")
	}
	return b.String()
}
