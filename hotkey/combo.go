// Package hotkey registers global keyboard shortcuts.
package hotkey

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnsupported is returned by Start in builds without cgo.
var ErrUnsupported = errors.New("hotkey: global hotkeys not supported in this build")

var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"opt":     "alt",
	"option":  "alt",
	"shift":   "shift",
	"cmd":     "cmd",
	"command": "cmd",
	"super":   "cmd",
	"meta":    "cmd",
	"win":     "cmd",
}

var namedKeys = []string{
	"space", "enter", "tab", "esc", "backspace", "delete",
	"up", "down", "left", "right", "home", "end", "pageup", "pagedown",
	"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12",
}

// Combo is a parsed key combination: one key plus at least one modifier.
type Combo struct {
	Key       string
	Modifiers []string // sorted, deduplicated
}

// Keys returns the combination in the order gohook expects: key first.
func (c Combo) Keys() []string {
	return append([]string{c.Key}, c.Modifiers...)
}

func (c Combo) String() string {
	return strings.Join(append(slices.Clone(c.Modifiers), c.Key), "+")
}

// ParseCombo parses a combination such as "ctrl+alt+d". Modifier aliases
// (control, option, command, super) are normalized.
func ParseCombo(s string) (Combo, error) {
	var c Combo
	for part := range strings.SplitSeq(strings.ToLower(s), "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			return Combo{}, fmt.Errorf("invalid hotkey %q: empty key", s)
		}
		if mod, ok := modifierAliases[part]; ok {
			if !slices.Contains(c.Modifiers, mod) {
				c.Modifiers = append(c.Modifiers, mod)
			}
			continue
		}
		if c.Key != "" {
			return Combo{}, fmt.Errorf("invalid hotkey %q: more than one key", s)
		}
		if !validKey(part) {
			return Combo{}, fmt.Errorf("invalid hotkey %q: unknown key %q", s, part)
		}
		c.Key = part
	}

	if c.Key == "" {
		return Combo{}, fmt.Errorf("invalid hotkey %q: no key", s)
	}
	if len(c.Modifiers) == 0 {
		return Combo{}, fmt.Errorf("invalid hotkey %q: needs a modifier", s)
	}
	slices.Sort(c.Modifiers)
	return c, nil
}

func validKey(k string) bool {
	if len(k) == 1 {
		b := k[0]
		return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
	}
	return slices.Contains(namedKeys, k)
}

// Binding ties a combination to the function it triggers.
type Binding struct {
	Combo  string
	Action func()
}
