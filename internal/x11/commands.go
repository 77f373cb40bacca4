package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/stackwm/internal/display"
)

// Apply sends a command batch in order. Requests are unchecked: failures
// come back later through the event stream as CommandFailed.
func (c *Connection) Apply(cmds []display.Command) error {
	if c.opts.FocusFollowsMouse && movesWindows(cmds) {
		c.crossings.begin()
		defer c.settle()
	}
	var errs []error
	for _, cmd := range cmds {
		if err := c.apply(cmd); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cmd, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Connection) apply(cmd display.Command) error {
	win := xproto.Window(cmd.Target())
	xwin := xwindow.New(c.XUtil, win)

	switch cmd := cmd.(type) {
	case display.MapWindow:
		xwin.Map()
	case display.UnmapWindow:
		c.expectUnmap(win)
		xwin.Unmap()
	case display.ConfigureWindow:
		r := cmd.Rect
		xwin.MoveResize(r.X, r.Y, max(r.Width, 1), max(r.Height, 1))
	case display.RaiseWindow:
		xwin.Stack(xproto.StackModeAbove)
	case display.SetInputFocus:
		if win == 0 {
			win = c.Root
		}
		xproto.SetInputFocus(c.XUtil.Conn(), xproto.InputFocusPointerRoot, win, xproto.TimeCurrentTime)
	case display.CloseWindow:
		return c.closeWindow(win)
	case display.SetWindowProperty:
		return c.setProperty(cmd)
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
	return nil
}

const configureMask = xproto.ConfigWindowX | xproto.ConfigWindowY |
	xproto.ConfigWindowWidth | xproto.ConfigWindowHeight

// settle waits for the server to process everything sent so far and marks
// crossings sequenced before that point as self-inflicted.
func (c *Connection) settle() {
	reply, err := xproto.GetInputFocus(c.XUtil.Conn()).Reply()
	if err != nil {
		c.crossings.end(0, false)
		return
	}
	c.crossings.end(reply.Sequence, true)
}

// movesWindows reports whether cmds can change which window is under the
// pointer.
func movesWindows(cmds []display.Command) bool {
	for _, cmd := range cmds {
		switch cmd.(type) {
		case display.MapWindow, display.UnmapWindow, display.ConfigureWindow, display.RaiseWindow:
			return true
		}
	}
	return false
}
