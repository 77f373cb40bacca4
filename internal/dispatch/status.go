package dispatch

import (
	"time"

	"github.com/1broseidon/stackwm/internal/display"
)

// GroupStatus describes one group.
type GroupStatus struct {
	Name    string             `json:"name"`
	Active  bool               `json:"active"`
	Layout  string             `json:"layout"`
	Layouts []string           `json:"layouts"`
	Windows []display.WindowID `json:"windows"`
	Focused display.WindowID   `json:"focused,omitempty"`
}

// Status is a snapshot of the window manager for the control surfaces.
type Status struct {
	ActiveGroup int                `json:"active_group"`
	Groups      []GroupStatus      `json:"groups"`
	Screen      display.Rect       `json:"screen"`
	Viewport    display.Rect       `json:"viewport"`
	Managed     int                `json:"managed"`
	Docks       int                `json:"docks"`
	Urgent      []display.WindowID `json:"urgent,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
}

// Status returns a snapshot of the current state.
func (d *Dispatcher) Status() Status {
	st := Status{
		ActiveGroup: d.state.Active(),
		Screen:      d.screen,
		Viewport:    d.viewport(),
		Managed:     d.state.Registry().Len(),
		Docks:       len(d.docks),
		Urgent:      d.state.Registry().Urgent(),
		StartedAt:   d.started,
	}
	for i, g := range d.state.Groups() {
		st.Groups = append(st.Groups, GroupStatus{
			Name:    g.Name(),
			Active:  i == d.state.Active(),
			Layout:  g.Layout().Name(),
			Layouts: g.Layouts(),
			Windows: g.Windows(),
			Focused: g.Focused(),
		})
	}
	return st
}
