// Package history holds the bounded, deduplicated clipboard history.
//
// The store is a plain ordered slice, most recent first. It carries no lock
// and fires no events: its owner (the manager) serializes access and decides
// when to persist and notify.
package history

import (
	"errors"
	"os"
	"slices"
	"strings"
)

// DefaultMaxSize is the history bound used when no setting is stored.
const DefaultMaxSize = 50

// FileSeparator joins the paths of a file-list entry into one string so the
// whole group dedups and removes as a unit.
const FileSeparator = "\n"

// ErrInvalidSize is returned by SetMaxSize for a non-positive bound.
var ErrInvalidSize = errors.New("history size must be positive")

// Entry is one clipboard snapshot: either a text blob or a non-empty list of
// absolute file/directory paths.
type Entry struct {
	Text  string
	Files []string
}

// TextEntry returns a text entry.
func TextEntry(text string) Entry { return Entry{Text: text} }

// FilesEntry returns a file-list entry. paths must be non-empty.
func FilesEntry(paths []string) Entry { return Entry{Files: slices.Clone(paths)} }

// IsFiles reports whether e is a file-list entry.
func (e Entry) IsFiles() bool { return len(e.Files) > 0 }

// Key returns the serialized form used for identity and storage.
func (e Entry) Key() string {
	if e.IsFiles() {
		return strings.Join(e.Files, FileSeparator)
	}
	return e.Text
}

// SplitFiles splits a stored key into its non-empty, trimmed lines.
func SplitFiles(key string) []string {
	var paths []string
	for line := range strings.SplitSeq(key, FileSeparator) {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}

// ParseEntry recovers an Entry from its stored key. The key is a file-list
// entry when every line names a path that exists on disk; otherwise it is
// text.
func ParseEntry(key string) Entry {
	paths := SplitFiles(key)
	if len(paths) == 0 {
		return TextEntry(key)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return TextEntry(key)
		}
	}
	return Entry{Files: paths}
}

// Store is the ordered history sequence. The zero value is not usable; call New.
type Store struct {
	entries []string
	maxSize int
}

// New returns a store bounded by maxSize, seeded with entries (most recent
// first). Duplicates in entries are dropped (first occurrence wins) and the
// tail is trimmed to the bound. A non-positive maxSize falls back to
// DefaultMaxSize.
func New(maxSize int, entries []string) *Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	s := &Store{maxSize: maxSize}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		s.entries = append(s.entries, e)
	}
	s.trim()
	return s
}

// Append inserts entry at the front unless an equal entry is already present.
// Reports whether the sequence changed.
func (s *Store) Append(entry string) bool {
	if s.Contains(entry) {
		return false
	}
	s.entries = slices.Insert(s.entries, 0, entry)
	s.trim()
	return true
}

// Remove deletes every entry equal to entry and reports whether any was found.
func (s *Store) Remove(entry string) bool {
	n := len(s.entries)
	s.entries = slices.DeleteFunc(s.entries, func(e string) bool { return e == entry })
	return len(s.entries) != n
}

// Clear empties the history.
func (s *Store) Clear() { s.entries = nil }

// SetMaxSize changes the bound, evicting the oldest entries if needed.
// Reports whether the bound changed.
func (s *Store) SetMaxSize(n int) (bool, error) {
	if n <= 0 {
		return false, ErrInvalidSize
	}
	if n == s.maxSize {
		return false, nil
	}
	s.maxSize = n
	s.trim()
	return true, nil
}

// MaxSize returns the current bound.
func (s *Store) MaxSize() int { return s.maxSize }

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Contains reports whether an entry equal to entry is present.
func (s *Store) Contains(entry string) bool { return slices.Contains(s.entries, entry) }

// At returns the entry at index i (0 = most recent).
func (s *Store) At(i int) (string, bool) {
	if i < 0 || i >= len(s.entries) {
		return "", false
	}
	return s.entries[i], true
}

// Entries returns a copy of the history, most recent first. Never nil.
func (s *Store) Entries() []string {
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) trim() {
	if len(s.entries) > s.maxSize {
		s.entries = s.entries[:s.maxSize]
	}
}
