// Package manager coordinates the clipboard watcher, the history store, the
// global hotkey and persistence.
//
// One goroutine runs Run and owns the poll ticker and the hotkey channel.
// Every public method may be called from other goroutines (IPC handlers);
// a single mutex serializes them against the loop. Events are queued while
// the mutex is held and delivered after it is released, in mutation order.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.klb.dev/xclipy/internal/clip"
	"go.klb.dev/xclipy/internal/history"
	"go.klb.dev/xclipy/internal/hotkey"
	"go.klb.dev/xclipy/internal/logging"
	"go.klb.dev/xclipy/internal/settings"
	"go.klb.dev/xclipy/internal/watcher"
)

// ToggleHistoryID is the logical hotkey id that toggles the history viewer.
const ToggleHistoryID = 0

var (
	// ErrInvalidHistorySize is returned for a non-positive history bound.
	ErrInvalidHistorySize = fmt.Errorf("invalid history size: %w", history.ErrInvalidSize)
	// ErrNoFiles is returned by WriteFiles for an empty path list.
	ErrNoFiles = errors.New("no files to write")
	// ErrNoSuchEntry is returned for a history index out of range.
	ErrNoSuchEntry = errors.New("no such history entry")
)

// Persister stores settings and history. *settings.Store implements it.
type Persister interface {
	SaveSettings(settings.Settings) error
	SaveHistory(entries []string) error
}

// LoginItem applies the autostart preference. autostart.Item implements it.
type LoginItem interface {
	Set(enabled bool) error
	// Enabled reports whether the login item is installed right now.
	Enabled() bool
}

// Config holds the collaborators and initial state for New.
type Config struct {
	Clipboard clip.Backend
	// Hotkeys is nil when global hotkeys are unsupported; hotkey
	// operations then only update the stored preference.
	Hotkeys  *hotkey.Registry
	Store    Persister
	Login    LoginItem
	Settings settings.Settings
	History  []string
	// PollInterval overrides watcher.DefaultInterval when positive.
	PollInterval time.Duration
}

// Snapshot is the manager state reported to status callers.
type Snapshot struct {
	Settings         settings.Settings `json:"settings" yaml:"settings"`
	History          []string          `json:"history" yaml:"history"`
	HotkeySupported  bool              `json:"hotkeySupported" yaml:"hotkeySupported"`
	HotkeyRegistered bool              `json:"hotkeyRegistered" yaml:"hotkeyRegistered"`
	// AutoStartInstalled reflects the login item on disk, which can differ
	// from the stored preference if installing it failed.
	AutoStartInstalled bool `json:"autoStartInstalled" yaml:"autoStartInstalled"`
}

// Manager owns the clipboard history and its settings.
type Manager struct {
	mu       sync.Mutex
	clip     clip.Backend
	store    *history.Store
	watcher  *watcher.Watcher
	hotkeys  *hotkey.Registry
	persist  Persister
	login    LoginItem
	settings settings.Settings
	combo    hotkey.Combination

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int
	pending   []Event
	draining  bool
}

// New builds a Manager and registers the toggle hotkey if it is enabled.
func New(cfg Config) *Manager {
	st := cfg.Settings
	if st.MaxHistorySize <= 0 {
		st.MaxHistorySize = history.DefaultMaxSize
	}
	combo, err := hotkey.ParseCombination(st.Hotkey)
	if err != nil {
		slog.Warn("stored hotkey invalid, using default", "hotkey", st.Hotkey, "err", err)
		combo = hotkey.MustParseCombination(settings.DefaultHotkey)
	}
	st.Hotkey = combo.String()

	m := &Manager{
		clip:      cfg.Clipboard,
		hotkeys:   cfg.Hotkeys,
		persist:   cfg.Store,
		login:     cfg.Login,
		settings:  st,
		combo:     combo,
		listeners: make(map[int]Listener),
	}
	if m.persist == nil {
		m.persist = nopPersister{}
	}
	m.store = history.New(st.MaxHistorySize, cfg.History)
	m.watcher = watcher.New(cfg.Clipboard, m.store, watcher.WithInterval(cfg.PollInterval))

	if m.hotkeys == nil {
		slog.Warn("global hotkeys not supported on this platform")
	} else if st.HotkeyEnabled {
		m.registerToggle()
	}
	return m
}

// Run polls the clipboard and dispatches hotkey presses until ctx is done.
// On exit it unregisters every hotkey and saves settings and history.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.watcher.Interval())
	defer ticker.Stop()

	var fired <-chan int
	if m.hotkeys != nil {
		fired = m.hotkeys.Fired()
	}
	slog.Info("clipboard manager running", "interval", m.watcher.Interval(), "history", m.HistoryLen())

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return nil
		case <-ticker.C:
			m.Poll()
		case id, ok := <-fired:
			if !ok {
				fired = nil
				continue
			}
			m.onHotkeyFired(id)
		}
	}
}

// Poll runs one watcher tick and records any qualifying change.
func (m *Manager) Poll() {
	m.mu.Lock()
	changed := false
	for _, e := range m.watcher.Tick() {
		if m.store.Append(e.Key()) {
			changed = true
		}
	}
	if changed {
		m.saveHistory()
		m.enqueue(Event{Kind: EventHistoryChanged, History: m.store.Entries()})
	}
	m.mu.Unlock()
	m.flush()
}

func (m *Manager) onHotkeyFired(id int) {
	if id != ToggleHistoryID {
		slog.Debug("ignoring unknown hotkey id", "id", id)
		return
	}
	slog.Debug("global hotkey pressed, toggling history")
	m.enqueue(Event{Kind: EventToggleHistory})
	m.flush()
}

func (m *Manager) shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hotkeys != nil {
		m.hotkeys.UnregisterAll()
	}
	m.saveSettings()
	m.saveHistory()
	slog.Info("clipboard manager stopped")
}

// WriteText places text on the clipboard without recording it as a new
// history entry.
func (m *Manager) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeText(text)
}

// WriteFiles places a file list on the clipboard without recording it as a
// new history entry.
func (m *Manager) WriteFiles(paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeFiles(paths)
}

// CopyMode selects how CopyEntry writes a history entry.
type CopyMode string

const (
	// CopyAuto writes a file list when every line names an existing path.
	CopyAuto CopyMode = "auto"
	// CopyText always writes the entry as text.
	CopyText CopyMode = "text"
	// CopyFiles writes the entry as a file list, falling back to text when
	// its lines are not existing paths.
	CopyFiles CopyMode = "files"
)

// ErrInvalidCopyMode is returned by ParseCopyMode.
var ErrInvalidCopyMode = errors.New("copy mode must be auto, text or files")

// ParseCopyMode parses a CopyMode; "" means CopyAuto.
func ParseCopyMode(s string) (CopyMode, error) {
	switch m := CopyMode(s); m {
	case "":
		return CopyAuto, nil
	case CopyAuto, CopyText, CopyFiles:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCopyMode, s)
	}
}

// CopyEntry writes history entry i (0 = most recent) back to the clipboard
// the way mode says.
func (m *Manager) CopyEntry(i int, mode CopyMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.store.At(i)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchEntry, i)
	}
	switch mode {
	case CopyText:
		return m.writeText(key)
	case CopyAuto, CopyFiles, "":
		if e := history.ParseEntry(key); e.IsFiles() {
			return m.writeFiles(e.Files)
		}
		if mode == CopyFiles {
			slog.Debug("entry is not a file list, copying as text", "index", i)
		}
		return m.writeText(key)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCopyMode, mode)
	}
}

func (m *Manager) writeText(text string) error {
	m.watcher.Suppress()
	if err := m.clip.WriteText(text); err != nil {
		m.watcher.Unsuppress()
		return fmt.Errorf("writing clipboard text: %w", err)
	}
	m.watcher.ObserveText(text)
	slog.Debug("wrote clipboard text", "preview", logging.Preview(text))
	return nil
}

func (m *Manager) writeFiles(paths []string) error {
	if len(paths) == 0 {
		return ErrNoFiles
	}
	m.watcher.Suppress()
	if err := m.clip.WriteFiles(paths); err != nil {
		m.watcher.Unsuppress()
		return fmt.Errorf("writing clipboard files: %w", err)
	}
	m.watcher.ObserveFiles(paths)
	slog.Debug("wrote clipboard files", "count", len(paths))
	return nil
}

// History returns the entries, most recent first.
func (m *Manager) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Entries()
}

// HistoryLen returns the number of entries.
func (m *Manager) HistoryLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Len()
}

// RemoveEntry deletes every entry equal to text. It reports whether anything
// was removed; listeners are only notified in that case.
func (m *Manager) RemoveEntry(text string) bool {
	m.mu.Lock()
	removed := m.store.Remove(text)
	if removed {
		m.saveHistory()
		m.enqueue(Event{Kind: EventHistoryChanged, History: m.store.Entries()})
	}
	m.mu.Unlock()
	m.flush()
	return removed
}

// RemoveAt deletes entry i (0 = most recent).
func (m *Manager) RemoveAt(i int) error {
	m.mu.Lock()
	key, ok := m.store.At(i)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNoSuchEntry, i)
	}
	m.store.Remove(key)
	m.saveHistory()
	m.enqueue(Event{Kind: EventHistoryChanged, History: m.store.Entries()})
	m.mu.Unlock()
	m.flush()
	return nil
}

// ClearHistory empties the history and always notifies listeners once.
func (m *Manager) ClearHistory() {
	m.mu.Lock()
	m.store.Clear()
	m.saveHistory()
	m.enqueue(Event{Kind: EventHistoryChanged, History: []string{}})
	m.mu.Unlock()
	m.flush()
}

// Settings returns the current settings.
func (m *Manager) Settings() settings.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Snapshot returns settings and history together.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{
		Settings:        m.settings,
		History:         m.store.Entries(),
		HotkeySupported: m.hotkeys != nil,
	}
	if m.hotkeys != nil {
		if b, ok := m.hotkeys.Binding(ToggleHistoryID); ok {
			s.HotkeyRegistered = b.Registered
		}
	}
	if m.login != nil {
		s.AutoStartInstalled = m.login.Enabled()
	}
	return s
}

// MaxHistorySize returns the history bound.
func (m *Manager) MaxHistorySize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.MaxHistorySize
}

// SetMaxHistorySize changes the history bound, trimming the oldest entries.
// A non-positive n returns ErrInvalidHistorySize and keeps the prior bound.
func (m *Manager) SetMaxHistorySize(n int) error {
	m.mu.Lock()
	changed, err := m.store.SetMaxSize(n)
	if err != nil {
		m.mu.Unlock()
		return ErrInvalidHistorySize
	}
	if changed {
		m.settings.MaxHistorySize = n
		m.saveHistory()
		m.saveSettings()
		m.enqueue(Event{Kind: EventHistoryChanged, History: m.store.Entries()})
	}
	m.mu.Unlock()
	m.flush()
	return nil
}

// AutoStart reports whether the login item is requested.
func (m *Manager) AutoStart() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.AutoStart
}

// SetAutoStart stores the preference and installs or removes the login item.
// A login-item failure is logged; the preference is stored regardless.
func (m *Manager) SetAutoStart(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.AutoStart = enabled
	if m.login != nil {
		if err := m.login.Set(enabled); err != nil {
			slog.Warn("updating login item failed", "enabled", enabled, "err", err)
		}
	}
	m.saveSettings()
}

// ShowTrayIcon reports the tray icon preference.
func (m *Manager) ShowTrayIcon() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.ShowTrayIcon
}

// SetShowTrayIcon stores the tray icon preference.
func (m *Manager) SetShowTrayIcon(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.ShowTrayIcon = enabled
	m.saveSettings()
}

// Hotkey returns the toggle combination in canonical form.
func (m *Manager) Hotkey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.Hotkey
}

// SetHotkey changes the toggle combination. When hotkeys are enabled the new
// combination replaces the old registration.
func (m *Manager) SetHotkey(s string) error {
	combo, err := hotkey.ParseCombination(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if combo == m.combo {
		return nil
	}
	m.combo = combo
	m.settings.Hotkey = combo.String()
	if m.settings.HotkeyEnabled {
		m.registerToggle()
	}
	m.saveSettings()
	return nil
}

// HotkeyEnabled reports whether the toggle hotkey is enabled.
func (m *Manager) HotkeyEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.HotkeyEnabled
}

// SetHotkeyEnabled registers or unregisters the toggle hotkey.
func (m *Manager) SetHotkeyEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings.HotkeyEnabled == enabled {
		return
	}
	m.settings.HotkeyEnabled = enabled
	if m.hotkeys != nil {
		if enabled {
			m.registerToggle()
		} else {
			m.hotkeys.UnregisterBinding(ToggleHistoryID)
		}
	}
	m.saveSettings()
}

func (m *Manager) registerToggle() {
	if m.hotkeys == nil {
		return
	}
	if m.hotkeys.RegisterBinding(ToggleHistoryID, m.combo) {
		slog.Info("global hotkey registered", "hotkey", m.combo.String())
	}
}

func (m *Manager) saveSettings() {
	if err := m.persist.SaveSettings(m.settings); err != nil {
		slog.Warn("saving settings failed", "err", err)
	}
}

func (m *Manager) saveHistory() {
	if err := m.persist.SaveHistory(m.store.Entries()); err != nil {
		slog.Warn("saving history failed", "err", err)
	}
}

type nopPersister struct{}

func (nopPersister) SaveSettings(settings.Settings) error { return nil }
func (nopPersister) SaveHistory([]string) error           { return nil }
