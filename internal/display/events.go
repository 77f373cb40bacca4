package display

import "fmt"

// Event is a discrete notification from the display server (or from a
// component standing in for it, such as the reconciler).
type Event interface {
	fmt.Stringer
	event()
}

// NewWindow reports a top-level window asking to be shown.
type NewWindow struct {
	ID       WindowID
	Geometry Rect
	Kind     WindowKind
	Strut    Strut
}

// WindowGone reports a window that was destroyed or withdrawn by its client.
type WindowGone struct {
	ID WindowID
}

// ConfigureRequest reports a client asking for a new geometry.
type ConfigureRequest struct {
	ID       WindowID
	Geometry Rect
}

// ScreenGeometryChanged reports a new screen region.
type ScreenGeometryChanged struct {
	Region Rect
}

// KeyPress reports a grabbed key combination. Key is the keysym name.
type KeyPress struct {
	Modifiers uint16
	Key       string
}

// FocusRequest reports that a window should receive focus, either because
// the pointer entered it or because a client asked for it to be activated.
type FocusRequest struct {
	ID WindowID
}

// UrgencyChanged reports a change of the window's urgency hint.
type UrgencyChanged struct {
	ID     WindowID
	Urgent bool
}

// CommandFailed reports an asynchronous error for a command that targeted
// a window, usually because the window no longer exists.
type CommandFailed struct {
	ID  WindowID
	Err error
}

// WindowSnapshot lists every top-level window the server had when the
// snapshot was taken. Generation is the dispatcher's manage generation read
// before the list was queried; windows adopted after it are not judged.
type WindowSnapshot struct {
	IDs        []WindowID
	Generation uint64
}

func (NewWindow) event()             {}
func (WindowGone) event()            {}
func (ConfigureRequest) event()      {}
func (ScreenGeometryChanged) event() {}
func (KeyPress) event()              {}
func (FocusRequest) event()          {}
func (UrgencyChanged) event()        {}
func (CommandFailed) event()         {}
func (WindowSnapshot) event()        {}

func (e NewWindow) String() string {
	return fmt.Sprintf("NewWindow(%d %s %s)", e.ID, e.Kind, e.Geometry)
}
func (e WindowGone) String() string { return fmt.Sprintf("WindowGone(%d)", e.ID) }
func (e ConfigureRequest) String() string {
	return fmt.Sprintf("ConfigureRequest(%d %s)", e.ID, e.Geometry)
}
func (e ScreenGeometryChanged) String() string {
	return fmt.Sprintf("ScreenGeometryChanged(%s)", e.Region)
}
func (e KeyPress) String() string {
	return fmt.Sprintf("KeyPress(mods=%#x key=%s)", e.Modifiers, e.Key)
}
func (e FocusRequest) String() string { return fmt.Sprintf("FocusRequest(%d)", e.ID) }
func (e UrgencyChanged) String() string {
	return fmt.Sprintf("UrgencyChanged(%d %v)", e.ID, e.Urgent)
}
func (e CommandFailed) String() string {
	return fmt.Sprintf("CommandFailed(%d: %v)", e.ID, e.Err)
}
func (e WindowSnapshot) String() string {
	return fmt.Sprintf("WindowSnapshot(%d windows, generation %d)", len(e.IDs), e.Generation)
}
