// Package keys maps key combinations to actions.
package keys

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/stackwm/internal/action"
	"github.com/BurntSushi/xgb/xproto"
)

// ErrDuplicateBinding is returned when a combination is bound twice.
var ErrDuplicateBinding = errors.New("key combination already bound")

// Modifiers is an X11 modifier mask.
type Modifiers uint16

const (
	Shift   = Modifiers(xproto.ModMaskShift)
	Lock    = Modifiers(xproto.ModMaskLock)
	Control = Modifiers(xproto.ModMaskControl)
	Mod1    = Modifiers(xproto.ModMask1)
	Mod2    = Modifiers(xproto.ModMask2)
	Mod3    = Modifiers(xproto.ModMask3)
	Mod4    = Modifiers(xproto.ModMask4)
	Mod5    = Modifiers(xproto.ModMask5)
)

var modifierNames = map[string]Modifiers{
	"shift":   Shift,
	"lock":    Lock,
	"control": Control,
	"ctrl":    Control,
	"mod1":    Mod1,
	"alt":     Mod1,
	"mod2":    Mod2,
	"mod3":    Mod3,
	"mod4":    Mod4,
	"super":   Mod4,
	"win":     Mod4,
	"mod5":    Mod5,
}

// canonical order and spelling, as understood by xgbutil's keybind parser
var canonical = []struct {
	mod  Modifiers
	name string
}{
	{Mod4, "Mod4"},
	{Mod1, "Mod1"},
	{Control, "Control"},
	{Shift, "Shift"},
	{Mod3, "Mod3"},
	{Mod5, "Mod5"},
	{Mod2, "Mod2"},
	{Lock, "Lock"},
}

func (m Modifiers) String() string {
	var parts []string
	for _, c := range canonical {
		if m&c.mod != 0 {
			parts = append(parts, c.name)
		}
	}
	return strings.Join(parts, "-")
}

// ParseModifiers parses a dash-separated list of modifier names, such as
// "Mod4-shift". The empty string means no modifiers.
func ParseModifiers(s string) (Modifiers, error) {
	var mods Modifiers
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	for _, part := range strings.Split(s, "-") {
		m, ok := modifierNames[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return 0, fmt.Errorf("unknown modifier %q", part)
		}
		mods |= m
	}
	return mods, nil
}

// Combo is a modifier set plus a keysym name.
type Combo struct {
	Mods Modifiers
	Key  string
}

// ParseCombo parses strings such as "Mod4-shift-j" or "Mod1-Return". The
// last dash-separated part is the keysym name; the rest are modifiers.
func ParseCombo(s string) (Combo, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Combo{}, fmt.Errorf("empty key combination")
	}
	// "Mod4-minus" is the way to bind the minus key; a trailing dash is not.
	if strings.HasSuffix(s, "-") {
		return Combo{}, fmt.Errorf("key combination %q has no key", s)
	}
	i := strings.LastIndex(s, "-")
	key := s[i+1:]
	mods, err := ParseModifiers(s[:max(i, 0)])
	if err != nil {
		return Combo{}, fmt.Errorf("key combination %q: %w", s, err)
	}
	if _, isMod := modifierNames[strings.ToLower(key)]; isMod {
		return Combo{}, fmt.Errorf("key combination %q has no key", s)
	}
	return Combo{Mods: mods, Key: key}, nil
}

// String returns the combination in the form xgbutil's keybind accepts.
func (c Combo) String() string {
	if c.Mods == 0 {
		return c.Key
	}
	return c.Mods.String() + "-" + c.Key
}

type comboKey struct {
	mods Modifiers
	key  string
}

func (c Combo) index() comboKey {
	return comboKey{mods: c.Mods, key: strings.ToLower(c.Key)}
}

// Binding pairs a combination with its action.
type Binding struct {
	Combo  Combo
	Action action.Action
}

// Table is the key binding table. It is filled once at start-up and only
// read afterwards.
type Table struct {
	bindings map[comboKey]Binding
}

// NewTable builds a table, failing on the first duplicate combination.
func NewTable(bindings ...Binding) (*Table, error) {
	t := &Table{bindings: make(map[comboKey]Binding, len(bindings))}
	for _, b := range bindings {
		if err := t.Bind(b.Combo, b.Action); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Bind adds a binding.
func (t *Table) Bind(c Combo, a action.Action) error {
	if t.bindings == nil {
		t.bindings = make(map[comboKey]Binding)
	}
	k := c.index()
	if _, exists := t.bindings[k]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBinding, c)
	}
	t.bindings[k] = Binding{Combo: c, Action: a}
	return nil
}

// Lookup returns the action bound to mods+key.
func (t *Table) Lookup(mods uint16, key string) (action.Action, bool) {
	b, ok := t.bindings[comboKey{mods: Modifiers(mods), key: strings.ToLower(key)}]
	return b.Action, ok
}

// Len returns the number of bindings.
func (t *Table) Len() int { return len(t.bindings) }

// Bindings returns every binding sorted by combination.
func (t *Table) Bindings() []Binding {
	out := make([]Binding, 0, len(t.bindings))
	for _, b := range t.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Combo.String() < out[j].Combo.String()
	})
	return out
}

// Combos returns every bound combination, sorted.
func (t *Table) Combos() []Combo {
	bindings := t.Bindings()
	out := make([]Combo, len(bindings))
	for i, b := range bindings {
		out[i] = b.Combo
	}
	return out
}
