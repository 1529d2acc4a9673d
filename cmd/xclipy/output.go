package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"go.klb.dev/xclipy/internal/history"
	"go.klb.dev/xclipy/internal/logging"
	"go.klb.dev/xclipy/internal/manager"
	"go.klb.dev/xclipy/internal/message"
	"go.klb.dev/xclipy/internal/settings"
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(s); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// historyItem is one entry in structured history output.
type historyItem struct {
	Index int      `json:"index"           yaml:"index"`
	Kind  string   `json:"kind"            yaml:"kind"`
	Text  string   `json:"text,omitempty"  yaml:"text,omitempty"`
	Files []string `json:"files,omitempty" yaml:"files,omitempty"`
}

type historyResult struct {
	Entries []historyItem `json:"entries" yaml:"entries"`
}

// statusResult is the structured output of `settings`.
type statusResult struct {
	Settings           settings.Settings `json:"settings"            yaml:"settings"`
	Entries            int               `json:"entries"             yaml:"entries"`
	HotkeySupported    bool              `json:"hotkey_supported"    yaml:"hotkey_supported"`
	HotkeyRegistered   bool              `json:"hotkey_registered"   yaml:"hotkey_registered"`
	AutoStartInstalled bool              `json:"autostart_installed" yaml:"autostart_installed"`
}

// matchHistory returns the indices of entries containing search, ignoring
// case. An empty search matches everything.
func matchHistory(entries []string, search string) []int {
	needle := strings.ToLower(search)
	out := make([]int, 0, len(entries))
	for i, key := range entries {
		if needle == "" || strings.Contains(strings.ToLower(key), needle) {
			out = append(out, i)
		}
	}
	return out
}

func newHistoryResult(entries []string, search string) historyResult {
	idx := matchHistory(entries, search)
	out := historyResult{Entries: make([]historyItem, 0, len(idx))}
	for _, i := range idx {
		e := history.ParseEntry(entries[i])
		item := historyItem{Index: i, Kind: "text", Text: e.Text}
		if e.IsFiles() {
			item.Kind, item.Text, item.Files = "files", "", e.Files
		}
		out.Entries = append(out.Entries, item)
	}
	return out
}

// printStructured writes v as JSON or YAML.
func printStructured(w io.Writer, format outputFormat, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
		return nil
	case formatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q is not structured", format)
	}
}

// printHistoryText lists entries matching search one per line with their
// index. Multi-line entries are folded and long ones truncated.
func printHistoryText(w io.Writer, entries []string, search string) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "History is empty.")
		return err
	}
	idx := matchHistory(entries, search)
	if len(idx) == 0 {
		_, err := fmt.Fprintf(w, "No entries match %q.\n", search)
		return err
	}
	tw := tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
	for _, i := range idx {
		key := entries[i]
		kind := "text"
		if history.ParseEntry(key).IsFiles() {
			kind = "files"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", i, kind, logging.Preview(key))
	}
	return tw.Flush()
}

func printStatusText(w io.Writer, resp *message.Message) error {
	tw := tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
	st := settings.Defaults()
	if resp.Settings != nil {
		st = *resp.Settings
	}
	hk := "unsupported"
	switch {
	case resp.HotkeyRegistered:
		hk = "registered"
	case resp.HotkeySupported && st.HotkeyEnabled:
		hk = "registration failed"
	case resp.HotkeySupported:
		hk = "disabled"
	}
	_, _ = fmt.Fprintf(tw, "%s:\t%d\n", settings.KeyMaxHistorySize, st.MaxHistorySize)
	_, _ = fmt.Fprintf(tw, "%s:\t%t\n", settings.KeyAutoStart, st.AutoStart)
	_, _ = fmt.Fprintf(tw, "%s:\t%t\n", settings.KeyShowTrayIcon, st.ShowTrayIcon)
	_, _ = fmt.Fprintf(tw, "%s:\t%s\n", settings.KeyHotkey, st.Hotkey)
	_, _ = fmt.Fprintf(tw, "%s:\t%t\n", settings.KeyHotkeyEnabled, st.HotkeyEnabled)
	login := "not installed"
	if resp.AutoStartInstalled {
		login = "installed"
	}
	_, _ = fmt.Fprintf(tw, "\t\n")
	_, _ = fmt.Fprintf(tw, "Hotkey:\t%s\n", hk)
	_, _ = fmt.Fprintf(tw, "Login item:\t%s\n", login)
	_, _ = fmt.Fprintf(tw, "Entries:\t%d\n", len(resp.History))
	return tw.Flush()
}

func printEventText(w io.Writer, ev *message.Message) error {
	switch ev.Event {
	case string(manager.EventHistoryChanged):
		h := ev.HistoryOf()
		if len(h) == 0 {
			_, err := fmt.Fprintln(w, "history changed: empty")
			return err
		}
		_, err := fmt.Fprintf(w, "history changed: %d entries, latest %s\n", len(h), logging.Preview(h[0]))
		return err
	case string(manager.EventToggleHistory):
		_, err := fmt.Fprintln(w, "toggle history")
		return err
	default:
		_, err := fmt.Fprintf(w, "event %s\n", ev.Event)
		return err
	}
}
