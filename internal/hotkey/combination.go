package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

// Modifier is a platform-neutral modifier bit set.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModMeta
)

var modifierOrder = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "Ctrl"},
	{ModAlt, "Alt"},
	{ModShift, "Shift"},
	{ModMeta, "Meta"},
}

var modifierAliases = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
	"meta":    ModMeta,
	"cmd":     ModMeta,
	"command": ModMeta,
	"super":   ModMeta,
	"win":     ModMeta,
}

var (
	ErrEmptyCombination = errors.New("empty key combination")
	ErrUnknownKey       = errors.New("unknown key")
	ErrUnknownModifier  = errors.New("unknown modifier")
)

// Combination is a modifier set plus one key, e.g. Ctrl+Shift+V.
type Combination struct {
	Mods Modifier
	Key  Key
}

// ParseCombination parses strings like "Ctrl+Shift+V" or "cmd+option+f12".
// Modifier and key names are case-insensitive; the last element is the key.
func ParseCombination(s string) (Combination, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Combination{}, ErrEmptyCombination
	}
	parts := strings.Split(s, "+")
	// "Ctrl++" means the plus key, which we do not support; an empty element
	// anywhere is a malformed combination.
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return Combination{}, fmt.Errorf("malformed key combination %q", s)
		}
	}

	var c Combination
	for _, p := range parts[:len(parts)-1] {
		m, ok := modifierAliases[strings.ToLower(strings.TrimSpace(p))]
		if !ok {
			return Combination{}, fmt.Errorf("%w %q in %q", ErrUnknownModifier, p, s)
		}
		c.Mods |= m
	}
	k, ok := LookupKey(parts[len(parts)-1])
	if !ok {
		return Combination{}, fmt.Errorf("%w %q in %q", ErrUnknownKey, parts[len(parts)-1], s)
	}
	c.Key = k
	return c, nil
}

// MustParseCombination is ParseCombination for compile-time constants.
func MustParseCombination(s string) Combination {
	c, err := ParseCombination(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the canonical form: modifiers in Ctrl, Alt, Shift, Meta
// order followed by the key name.
func (c Combination) String() string {
	var b strings.Builder
	for _, m := range modifierOrder {
		if c.Mods&m.mod != 0 {
			b.WriteString(m.name)
			b.WriteByte('+')
		}
	}
	b.WriteString(string(c.Key))
	return b.String()
}
