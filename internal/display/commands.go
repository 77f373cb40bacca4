package display

import "fmt"

// Command is a request sent to the display server. Commands are
// fire-and-forget; applying the same command twice is harmless.
type Command interface {
	fmt.Stringer
	// Target is the window the command addresses, or NoWindow for the root.
	Target() WindowID
}

type MapWindow struct{ ID WindowID }

type UnmapWindow struct{ ID WindowID }

type ConfigureWindow struct {
	ID   WindowID
	Rect Rect
}

type RaiseWindow struct{ ID WindowID }

type SetInputFocus struct{ ID WindowID }

// CloseWindow asks the client to close politely, or kills it if it does not
// support WM_DELETE_WINDOW.
type CloseWindow struct{ ID WindowID }

// Hint names a window-management convention advertised to clients.
type Hint int

const (
	// HintDesktop sets the desktop (group index) a window lives on.
	HintDesktop Hint = iota + 1
	// HintClientList sets the list of managed windows on the root.
	HintClientList
	// HintCurrentDesktop sets the active group index on the root.
	HintCurrentDesktop
	// HintDesktopNames sets group names (and their count) on the root.
	HintDesktopNames
	// HintActiveWindow sets the focused window on the root.
	HintActiveWindow
)

func (h Hint) String() string {
	switch h {
	case HintDesktop:
		return "desktop"
	case HintClientList:
		return "client-list"
	case HintCurrentDesktop:
		return "current-desktop"
	case HintDesktopNames:
		return "desktop-names"
	case HintActiveWindow:
		return "active-window"
	default:
		return fmt.Sprintf("hint(%d)", int(h))
	}
}

// SetWindowProperty advertises a hint. Only the field matching Hint is used.
type SetWindowProperty struct {
	ID      WindowID
	Hint    Hint
	Value   int
	Names   []string
	Windows []WindowID
}

func (c MapWindow) Target() WindowID         { return c.ID }
func (c UnmapWindow) Target() WindowID       { return c.ID }
func (c ConfigureWindow) Target() WindowID   { return c.ID }
func (c RaiseWindow) Target() WindowID       { return c.ID }
func (c SetInputFocus) Target() WindowID     { return c.ID }
func (c CloseWindow) Target() WindowID       { return c.ID }
func (c SetWindowProperty) Target() WindowID { return c.ID }

func (c MapWindow) String() string   { return fmt.Sprintf("map(%d)", c.ID) }
func (c UnmapWindow) String() string { return fmt.Sprintf("unmap(%d)", c.ID) }
func (c ConfigureWindow) String() string {
	return fmt.Sprintf("configure(%d %s)", c.ID, c.Rect)
}
func (c RaiseWindow) String() string   { return fmt.Sprintf("raise(%d)", c.ID) }
func (c SetInputFocus) String() string { return fmt.Sprintf("focus(%d)", c.ID) }
func (c CloseWindow) String() string   { return fmt.Sprintf("close(%d)", c.ID) }
func (c SetWindowProperty) String() string {
	return fmt.Sprintf("property(%d %s)", c.ID, c.Hint)
}
