// Package display describes the boundary between the window manager core and
// the display server: the identifiers and geometry it shares, the events the
// server reports, and the commands the core sends back.
package display

import "fmt"

// WindowID is a display-server window identifier.
type WindowID uint32

// NoWindow is the zero WindowID. X11 uses it for "None".
const NoWindow WindowID = 0

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Inset shrinks r by n on every side, never below 1x1.
func (r Rect) Inset(n int) Rect {
	if n <= 0 {
		return r
	}
	out := Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}
	if out.Width < 1 {
		out.Width = 1
	}
	if out.Height < 1 {
		out.Height = 1
	}
	return out
}

// Strut is the space a dock reserves along each screen edge.
type Strut struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// IsZero reports whether the strut reserves nothing.
func (s Strut) IsZero() bool {
	return s.Left == 0 && s.Right == 0 && s.Top == 0 && s.Bottom == 0
}

// WindowKind classifies a new top-level window.
type WindowKind int

const (
	KindNormal WindowKind = iota
	KindDock
)

func (k WindowKind) String() string {
	switch k {
	case KindDock:
		return "dock"
	default:
		return "normal"
	}
}

// Connection is the display server as seen by the event loop. Events are
// delivered in arrival order on the channel returned by Events, which is
// closed when the connection ends. Apply sends a batch of commands without
// waiting for the server to acknowledge them; errors the server reports
// later come back as CommandFailed events.
type Connection interface {
	Events() <-chan Event
	Apply(cmds []Command) error
	Close()
}
