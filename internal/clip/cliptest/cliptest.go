// Package cliptest provides an in-memory clip.Backend for tests.
package cliptest

import (
	"errors"
	"slices"
	"sync"
)

// ErrReadFailed is returned by reads while Fail is set.
var ErrReadFailed = errors.New("clipboard unreadable")

// Clipboard is an in-memory clipboard. Set simulates an external copy;
// WriteText/WriteFiles are what the program under test calls.
type Clipboard struct {
	mu        sync.Mutex
	text      string
	files     []string
	fail      bool
	failWrite bool
	writes    int
}

// New returns an empty clipboard.
func New() *Clipboard { return &Clipboard{} }

// SetText simulates another application copying text.
func (c *Clipboard) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text, c.files = text, nil
}

// SetFiles simulates a file manager copying paths. text is what the OS
// exposes as the plain-text flavour, often the same paths.
func (c *Clipboard) SetFiles(paths []string, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files, c.text = slices.Clone(paths), text
}

// Fail makes subsequent reads return ErrReadFailed until called with false.
func (c *Clipboard) Fail(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = fail
}

// FailWrites makes subsequent writes fail until called with false.
func (c *Clipboard) FailWrites(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWrite = fail
}

// Writes returns the number of successful writes.
func (c *Clipboard) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

// Text returns the current text flavour.
func (c *Clipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Files returns the current file list.
func (c *Clipboard) Files() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.files)
}

func (c *Clipboard) Name() string { return "in-memory" }

func (c *Clipboard) ReadText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return "", ErrReadFailed
	}
	return c.text, nil
}

func (c *Clipboard) ReadFiles() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return nil, ErrReadFailed
	}
	return slices.Clone(c.files), nil
}

func (c *Clipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrite {
		return errors.New("clipboard write refused")
	}
	c.text, c.files = text, nil
	c.writes++
	return nil
}

func (c *Clipboard) WriteFiles(paths []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrite {
		return errors.New("clipboard write refused")
	}
	c.files = slices.Clone(paths)
	c.text = ""
	c.writes++
	return nil
}

func (c *Clipboard) Close() {}
