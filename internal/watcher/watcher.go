// Package watcher polls the system clipboard and reports external changes.
//
// A Watcher holds no lock. Tick, Suppress and Observe* must be serialized by
// the caller; the manager calls them with its own mutex held.
package watcher

import (
	"log/slog"
	"slices"
	"time"

	"go.klb.dev/xclipy/internal/clip"
	"go.klb.dev/xclipy/internal/history"
	"go.klb.dev/xclipy/internal/logging"
)

// DefaultInterval is the clipboard poll cadence.
const DefaultInterval = 500 * time.Millisecond

// Known answers whether an entry key is already in history.
type Known interface {
	Contains(entry string) bool
}

// Watcher diffs successive clipboard reads.
type Watcher struct {
	backend  clip.Backend
	known    Known
	interval time.Duration

	lastText     string
	lastFiles    []string
	suppressNext bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval overrides the poll cadence. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// New returns a Watcher reading from backend and checking history through known.
func New(backend clip.Backend, known Known, opts ...Option) *Watcher {
	w := &Watcher{
		backend:  backend,
		known:    known,
		interval: DefaultInterval,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Interval returns the poll cadence.
func (w *Watcher) Interval() time.Duration { return w.interval }

// Suppress makes the next Tick report nothing. Arming twice before a tick
// still suppresses exactly one tick.
func (w *Watcher) Suppress() { w.suppressNext = true }

// Unsuppress disarms a pending suppression.
func (w *Watcher) Unsuppress() { w.suppressNext = false }

// ObserveText records text as already seen without reporting it.
func (w *Watcher) ObserveText(text string) { w.lastText = text }

// ObserveFiles records paths as already seen without reporting them.
func (w *Watcher) ObserveFiles(paths []string) { w.lastFiles = slices.Clone(paths) }

// Tick reads the clipboard once and returns the qualifying changes: at most
// one text entry and one file-list entry, text first. Read failures count as
// no change.
func (w *Watcher) Tick() []history.Entry {
	text, err := w.backend.ReadText()
	if err != nil {
		slog.Debug("clipboard text read failed", "err", err)
		text = ""
	}
	files, err := w.backend.ReadFiles()
	if err != nil {
		slog.Debug("clipboard file list read failed", "err", err)
		files = nil
	}

	if w.suppressNext {
		w.suppressNext = false
		slog.Debug("clipboard poll suppressed after self-copy")
		return nil
	}

	var changes []history.Entry
	if text != "" && text != w.lastText && !w.known.Contains(text) {
		w.lastText = text
		changes = append(changes, history.TextEntry(text))
		slog.Debug("clipboard changed", "kind", "text", "preview", logging.Preview(text))
	}
	if len(files) > 0 && !slices.Equal(files, w.lastFiles) {
		w.lastFiles = slices.Clone(files)
		e := history.FilesEntry(files)
		if !w.known.Contains(e.Key()) {
			changes = append(changes, e)
			slog.Debug("clipboard changed", "kind", "files", "count", len(files))
		}
	}
	return changes
}
