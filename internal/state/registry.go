package state

import (
	"sort"

	"github.com/1broseidon/stackwm/internal/display"
)

// Window is the registry record for a managed client window.
type Window struct {
	ID display.WindowID
	// Geometry is the rectangle last sent to the display server.
	Geometry display.Rect
	Mapped   bool
	Urgent   bool
	// Group is the index of the owning group.
	Group int
}

// Registry maps window ids to their records. It is the only owner of
// Window values; groups refer to windows by id.
type Registry struct {
	windows map[display.WindowID]*Window
}

func NewRegistry() *Registry {
	return &Registry{windows: make(map[display.WindowID]*Window)}
}

func (r *Registry) Get(id display.WindowID) (*Window, bool) {
	w, ok := r.windows[id]
	return w, ok
}

func (r *Registry) Contains(id display.WindowID) bool {
	_, ok := r.windows[id]
	return ok
}

func (r *Registry) put(w *Window) { r.windows[w.ID] = w }

func (r *Registry) delete(id display.WindowID) { delete(r.windows, id) }

func (r *Registry) Len() int { return len(r.windows) }

// IDs returns every registered id in ascending order.
func (r *Registry) IDs() []display.WindowID {
	out := make([]display.WindowID, 0, len(r.windows))
	for id := range r.windows {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Urgent returns the ids of windows with the urgency hint set, ascending.
func (r *Registry) Urgent() []display.WindowID {
	var out []display.WindowID
	for _, id := range r.IDs() {
		if r.windows[id].Urgent {
			out = append(out, id)
		}
	}
	return out
}
