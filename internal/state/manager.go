// Package state holds the window manager's authoritative model: the window
// registry and the ordered groups, exactly one of which is active.
//
// Manager methods keep the registry and the group stacks consistent with
// each other; Check verifies that after the fact.
package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/stackwm/internal/display"
	"github.com/1broseidon/stackwm/internal/group"
)

var (
	ErrNoSuchGroup     = errors.New("no such group")
	ErrNoFocusedWindow = errors.New("no focused window")
	ErrAlreadyManaged  = errors.New("window already managed")
)

// Manager is the root aggregate: groups, the active group and the registry.
type Manager struct {
	groups   []*group.Group
	active   int
	registry *Registry
}

// NewManager creates a manager over groups with the first one active.
func NewManager(groups ...*group.Group) (*Manager, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("at least one group is required")
	}
	return &Manager{
		groups:   append([]*group.Group(nil), groups...),
		registry: NewRegistry(),
	}, nil
}

func (m *Manager) Registry() *Registry { return m.registry }

func (m *Manager) Groups() []*group.Group { return m.groups }

func (m *Manager) Active() int { return m.active }

func (m *Manager) ActiveGroup() *group.Group { return m.groups[m.active] }

// Group returns the group at index n.
func (m *Manager) Group(n int) (*group.Group, error) {
	if n < 0 || n >= len(m.groups) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrNoSuchGroup, n, len(m.groups))
	}
	return m.groups[n], nil
}

// GroupNames returns group names in order.
func (m *Manager) GroupNames() []string {
	out := make([]string, len(m.groups))
	for i, g := range m.groups {
		out[i] = g.Name()
	}
	return out
}

// Focused returns the focused window of the active group.
func (m *Manager) Focused() (display.WindowID, bool) {
	return m.ActiveGroup().Stack().Focused()
}

// Manage registers id in the active group and focuses it.
func (m *Manager) Manage(id display.WindowID, geometry display.Rect) (*Window, error) {
	if m.registry.Contains(id) {
		return nil, fmt.Errorf("%w: %d", ErrAlreadyManaged, id)
	}
	w := &Window{ID: id, Geometry: geometry, Group: m.active}
	m.registry.put(w)
	m.ActiveGroup().Stack().Insert(id)
	return w, nil
}

// Unmanage removes id from its group and the registry. It returns the
// index of the group that held it; ok is false if id was unknown.
func (m *Manager) Unmanage(id display.WindowID) (groupIndex int, ok bool) {
	w, ok := m.registry.Get(id)
	if !ok {
		return 0, false
	}
	m.groups[w.Group].Stack().Remove(id)
	m.registry.delete(id)
	return w.Group, true
}

// Activate makes group n active. It reports false when n already was.
func (m *Manager) Activate(n int) (changed bool, err error) {
	if _, err := m.Group(n); err != nil {
		return false, err
	}
	if n == m.active {
		return false, nil
	}
	m.active = n
	return true, nil
}

// MoveFocused moves the active group's focused window to group n. It
// returns the moved window; moved is false when n is the active group.
func (m *Manager) MoveFocused(n int) (id display.WindowID, moved bool, err error) {
	target, err := m.Group(n)
	if err != nil {
		return display.NoWindow, false, err
	}
	id, ok := m.Focused()
	if !ok {
		return display.NoWindow, false, ErrNoFocusedWindow
	}
	if n == m.active {
		return id, false, nil
	}
	m.ActiveGroup().Stack().Remove(id)
	target.Stack().Insert(id)
	w, _ := m.registry.Get(id)
	w.Group = n
	return id, true, nil
}

// Focus focuses id if it belongs to the active group.
func (m *Manager) Focus(id display.WindowID) bool {
	w, ok := m.registry.Get(id)
	if !ok || w.Group != m.active {
		return false
	}
	return m.ActiveGroup().Stack().Focus(id)
}

// InvariantError lists every consistency violation found by Check.
type InvariantError struct {
	Violations []string
}

func (e *InvariantError) Error() string {
	return "state invariant violated: " + strings.Join(e.Violations, "; ")
}

// Check verifies the model: the active index and every focus cursor are
// valid, each stacked id is registered to the group that stacks it, no id
// is stacked twice, and every registered window is stacked.
func (m *Manager) Check() error {
	var v []string
	if m.active < 0 || m.active >= len(m.groups) {
		v = append(v, fmt.Sprintf("active group %d out of range", m.active))
	}

	stacked := make(map[display.WindowID]int)
	for gi, g := range m.groups {
		s := g.Stack()
		if !s.Valid() {
			v = append(v, fmt.Sprintf("group %q focus index %d invalid for %d windows", g.Name(), s.FocusedIndex(), s.Len()))
		}
		for _, id := range s.Items() {
			if prev, dup := stacked[id]; dup {
				v = append(v, fmt.Sprintf("window %d in groups %d and %d", id, prev, gi))
				continue
			}
			stacked[id] = gi
			w, ok := m.registry.Get(id)
			switch {
			case !ok:
				v = append(v, fmt.Sprintf("window %d in group %q but not registered", id, g.Name()))
			case w.Group != gi:
				v = append(v, fmt.Sprintf("window %d in group %d but registered to group %d", id, gi, w.Group))
			}
		}
	}
	for _, id := range m.registry.IDs() {
		if _, ok := stacked[id]; !ok {
			v = append(v, fmt.Sprintf("window %d registered but in no group", id))
		}
	}

	if len(v) > 0 {
		return &InvariantError{Violations: v}
	}
	return nil
}
