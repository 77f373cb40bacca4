package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/stackwm/internal/display"
)

// translate turns one X event into a display event, or nil when the event
// is of no interest to the core.
func (c *Connection) translate(ev xgb.Event) display.Event {
	switch e := ev.(type) {
	case xproto.MapRequestEvent:
		return c.newWindow(e.Window)

	case xproto.UnmapNotifyEvent:
		if c.consumeUnmap(e.Window) {
			return nil
		}
		return display.WindowGone{ID: display.WindowID(e.Window)}

	case xproto.DestroyNotifyEvent:
		c.forget(e.Window)
		return display.WindowGone{ID: display.WindowID(e.Window)}

	case xproto.ConfigureRequestEvent:
		return display.ConfigureRequest{
			ID:       display.WindowID(e.Window),
			Geometry: c.requestedGeometry(e),
		}

	case xproto.KeyPressEvent:
		combo, ok := c.lookupKey(e.State, e.Detail)
		if !ok {
			c.logger.Debug("key press without binding", "state", e.State, "keycode", e.Detail)
			return nil
		}
		return display.KeyPress{Modifiers: uint16(combo.Mods), Key: combo.Key}

	case xproto.EnterNotifyEvent:
		if !c.opts.FocusFollowsMouse || e.Mode != xproto.NotifyModeNormal {
			return nil
		}
		if c.crossings.drop(e.Sequence) {
			c.logger.Debug("ignored crossing caused by layout", "window", e.Event)
			return nil
		}
		return display.FocusRequest{ID: display.WindowID(e.Event)}

	case xproto.ClientMessageEvent:
		name, err := xprop.AtomName(c.XUtil, e.Type)
		if err != nil {
			return nil
		}
		switch name {
		case "_NET_ACTIVE_WINDOW":
			return display.FocusRequest{ID: display.WindowID(e.Window)}
		}
		c.logger.Debug("ignored client message", "type", name, "window", e.Window)
		return nil

	case xproto.PropertyNotifyEvent:
		if e.Atom != xproto.AtomWmHints || e.Window == c.Root {
			return nil
		}
		return display.UrgencyChanged{ID: display.WindowID(e.Window), Urgent: c.urgent(e.Window)}

	case xproto.MappingNotifyEvent:
		if e.Request == xproto.MappingKeyboard || e.Request == xproto.MappingModifier {
			c.regrabKeys()
		}
		return nil

	case randr.ScreenChangeNotifyEvent:
		return c.screenChanged(e)
	}
	return nil
}

// requestedGeometry fills the fields a ConfigureRequest leaves out with the
// window's current geometry.
func (c *Connection) requestedGeometry(e xproto.ConfigureRequestEvent) display.Rect {
	var current display.Rect
	if e.ValueMask&configureMask != configureMask {
		current = c.geometry(e.Window)
	}
	return mergeGeometry(current, e)
}

func mergeGeometry(current display.Rect, e xproto.ConfigureRequestEvent) display.Rect {
	r := current
	if e.ValueMask&xproto.ConfigWindowX != 0 {
		r.X = int(e.X)
	}
	if e.ValueMask&xproto.ConfigWindowY != 0 {
		r.Y = int(e.Y)
	}
	if e.ValueMask&xproto.ConfigWindowWidth != 0 {
		r.Width = int(e.Width)
	}
	if e.ValueMask&xproto.ConfigWindowHeight != 0 {
		r.Height = int(e.Height)
	}
	return r
}
