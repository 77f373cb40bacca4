// Package group implements a named workspace: a window stack plus the
// layouts it can be arranged with.
package group

import (
	"github.com/1broseidon/stackwm/internal/display"
	"github.com/1broseidon/stackwm/internal/stack"
	"github.com/1broseidon/stackwm/internal/tiling"
)

// Group owns one window stack and a non-empty list of layouts.
type Group struct {
	name    string
	windows *stack.Stack[display.WindowID]
	layouts []tiling.Layout
	active  int
}

// New creates an empty group. It panics if layouts is empty, since a group
// without a layout cannot arrange anything.
func New(name string, layouts ...tiling.Layout) *Group {
	if len(layouts) == 0 {
		panic("group " + name + ": at least one layout is required")
	}
	return &Group{
		name:    name,
		windows: stack.New[display.WindowID](),
		layouts: append([]tiling.Layout(nil), layouts...),
	}
}

func (g *Group) Name() string { return g.name }

// Stack exposes the window stack for mutation by the group manager.
func (g *Group) Stack() *stack.Stack[display.WindowID] { return g.windows }

// Windows returns the window ids in stack order.
func (g *Group) Windows() []display.WindowID { return g.windows.Items() }

// Focused returns the focused window, or NoWindow.
func (g *Group) Focused() display.WindowID {
	id, _ := g.windows.Focused()
	return id
}

// Layout returns the active layout.
func (g *Group) Layout() tiling.Layout { return g.layouts[g.active] }

// Layouts returns the names of the available layouts.
func (g *Group) Layouts() []string {
	out := make([]string, len(g.layouts))
	for i, l := range g.layouts {
		out[i] = l.Name()
	}
	return out
}

// CycleLayout moves the active layout by delta, wrapping in both
// directions, and reports whether it changed.
func (g *Group) CycleLayout(delta int) bool {
	n := len(g.layouts)
	next := ((g.active+delta)%n + n) % n
	if next == g.active {
		return false
	}
	g.active = next
	return true
}

// Arrange runs the active layout over the group's windows.
func (g *Group) Arrange(screen display.Rect) map[display.WindowID]display.Rect {
	return g.Layout().Compute(g.windows.Items(), g.Focused(), screen)
}
