// Package settings persists xclipy's preferences and clipboard history.
//
// Preferences live in a TOML file managed by viper; history lives in a small
// SQLite database so large entries do not bloat the config file.
package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	_ "modernc.org/sqlite"

	"go.klb.dev/xclipy/internal/history"
)

const (
	ConfigFile  = "xclipy.toml"
	HistoryFile = "history.db"

	DefaultHotkey = "Ctrl+Shift+V"
)

// Keys as stored in the config file.
const (
	KeyMaxHistorySize = "maxHistorySize"
	KeyAutoStart      = "autoStart"
	KeyShowTrayIcon   = "showTrayIcon"
	KeyHotkey         = "globalHotkey"
	KeyHotkeyEnabled  = "globalHotkeyEnabled"
)

// Settings mirrors the persisted preferences.
type Settings struct {
	MaxHistorySize int    `json:"maxHistorySize" yaml:"maxHistorySize"`
	AutoStart      bool   `json:"autoStart" yaml:"autoStart"`
	ShowTrayIcon   bool   `json:"showTrayIcon" yaml:"showTrayIcon"`
	Hotkey         string `json:"globalHotkey" yaml:"globalHotkey"`
	HotkeyEnabled  bool   `json:"globalHotkeyEnabled" yaml:"globalHotkeyEnabled"`
}

// Defaults returns the settings used when nothing is stored.
func Defaults() Settings {
	return Settings{
		MaxHistorySize: history.DefaultMaxSize,
		ShowTrayIcon:   true,
		Hotkey:         DefaultHotkey,
		HotkeyEnabled:  true,
	}
}

// DefaultDir returns $HOME/.config/xclipy, or the working directory if the
// home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "xclipy")
}

// Store reads and writes settings and history under one directory.
type Store struct {
	dir string
	v   *viper.Viper
	db  *sql.DB
}

// Open prepares dir, reads the config file if present and opens the history
// database, creating its table on first use.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("settings dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, ConfigFile))
	v.SetConfigType("toml")
	d := Defaults()
	v.SetDefault(KeyMaxHistorySize, d.MaxHistorySize)
	v.SetDefault(KeyAutoStart, d.AutoStart)
	v.SetDefault(KeyShowTrayIcon, d.ShowTrayIcon)
	v.SetDefault(KeyHotkey, d.Hotkey)
	v.SetDefault(KeyHotkeyEnabled, d.HotkeyEnabled)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, HistoryFile))
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS history (
		position INTEGER PRIMARY KEY,
		content  TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}

	return &Store{dir: dir, v: v, db: db}, nil
}

// Settings returns the stored preferences. A non-positive history size or an
// empty hotkey falls back to the default.
func (s *Store) Settings() Settings {
	st := Settings{
		MaxHistorySize: s.v.GetInt(KeyMaxHistorySize),
		AutoStart:      s.v.GetBool(KeyAutoStart),
		ShowTrayIcon:   s.v.GetBool(KeyShowTrayIcon),
		Hotkey:         s.v.GetString(KeyHotkey),
		HotkeyEnabled:  s.v.GetBool(KeyHotkeyEnabled),
	}
	if st.MaxHistorySize <= 0 {
		slog.Warn("stored history size invalid, using default", "value", st.MaxHistorySize)
		st.MaxHistorySize = history.DefaultMaxSize
	}
	if st.Hotkey == "" {
		st.Hotkey = DefaultHotkey
	}
	return st
}

// History returns the stored entries, most recent first.
func (s *Store) History() ([]string, error) {
	rows, err := s.db.Query(`SELECT content FROM history ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries := []string{}
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveSettings writes st to the config file. Setting keys are written in
// their documented camelCase; viper folds every key to lower case, so the
// file is encoded here rather than with WriteConfigAs. Other keys in the
// file are kept.
func (s *Store) SaveSettings(st Settings) error {
	values := map[string]any{
		KeyMaxHistorySize: st.MaxHistorySize,
		KeyAutoStart:      st.AutoStart,
		KeyShowTrayIcon:   st.ShowTrayIcon,
		KeyHotkey:         st.Hotkey,
		KeyHotkeyEnabled:  st.HotkeyEnabled,
	}
	out := s.v.AllSettings()
	for k, val := range values {
		s.v.Set(k, val)
		delete(out, strings.ToLower(k))
		out[k] = val
	}

	b, err := toml.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, ConfigFile), b, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SaveHistory replaces the stored history with entries in one transaction.
func (s *Store) SaveHistory(entries []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM history`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO history (position, content) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()
	for i, e := range entries {
		if _, err := stmt.Exec(i, e); err != nil {
			return fmt.Errorf("inserting entry %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Close releases the history database.
func (s *Store) Close() error { return s.db.Close() }
