package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/stackwm/internal/display"
)

// newWindow describes a window asking to be shown and starts listening to
// the client events the window manager cares about.
func (c *Connection) newWindow(win xproto.Window) display.NewWindow {
	ev := display.NewWindow{
		ID:       display.WindowID(win),
		Geometry: c.geometry(win),
		Kind:     c.kind(win),
	}
	if ev.Kind == display.KindDock {
		ev.Strut = c.readStrut(win)
	}

	mask := uint32(xproto.EventMaskPropertyChange)
	if c.opts.FocusFollowsMouse && ev.Kind == display.KindNormal {
		mask |= xproto.EventMaskEnterWindow
	}
	xproto.ChangeWindowAttributes(c.XUtil.Conn(), win, xproto.CwEventMask, []uint32{mask})
	return ev
}

func (c *Connection) kind(win xproto.Window) display.WindowKind {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return display.KindNormal
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return display.KindDock
		}
	}
	return display.KindNormal
}

func (c *Connection) geometry(win xproto.Window) display.Rect {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return display.Rect{}
	}
	return display.Rect{X: int(geom.X), Y: int(geom.Y), Width: int(geom.Width), Height: int(geom.Height)}
}

func (c *Connection) urgent(win xproto.Window) bool {
	hints, err := icccm.WmHintsGet(c.XUtil, win)
	if err != nil {
		return false
	}
	return hints.Flags&icccm.HintUrgency != 0
}

// children lists the root's top-level windows that are not override-redirect.
// With viewableOnly set, windows that are not currently mapped are skipped.
func (c *Connection) children(viewableOnly bool) ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, err
	}
	var out []xproto.Window
	for _, win := range tree.Children {
		if win == c.wmCheck {
			continue
		}
		attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
		if err != nil || attrs.OverrideRedirect {
			continue
		}
		if viewableOnly && attrs.MapState != xproto.MapStateViewable {
			continue
		}
		out = append(out, win)
	}
	return out, nil
}

// scan reports the windows that were already visible when the window
// manager started.
func (c *Connection) scan() []display.Event {
	wins, err := c.children(true)
	if err != nil {
		c.logger.Warn("failed to query existing windows", "error", err)
		return nil
	}
	events := make([]display.Event, 0, len(wins))
	for _, win := range wins {
		events = append(events, c.newWindow(win))
		if c.urgent(win) {
			events = append(events, display.UrgencyChanged{ID: display.WindowID(win), Urgent: true})
		}
	}
	c.logger.Info("adopted existing windows", "count", len(wins))
	return events
}

// Snapshot lists every top-level window the server has, mapped or not.
func (c *Connection) Snapshot() ([]display.WindowID, error) {
	wins, err := c.children(false)
	if err != nil {
		return nil, err
	}
	ids := make([]display.WindowID, len(wins))
	for i, win := range wins {
		ids[i] = display.WindowID(win)
	}
	return ids, nil
}
