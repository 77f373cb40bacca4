package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/stackwm/internal/display"
)

// wmName is published on the supporting window so pagers and panels can
// tell which window manager is running.
const wmName = "stackwm"

var supported = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_CLIENT_LIST",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_DESKTOP_NAMES",
	"_NET_CURRENT_DESKTOP",
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_DESKTOP",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_WM_STRUT",
	"_NET_WM_STRUT_PARTIAL",
}

// advertise publishes the EWMH supporting window and supported hints.
func (c *Connection) advertise() error {
	c.wmCheck = c.XUtil.Dummy()
	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, c.wmCheck); err != nil {
		return err
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.wmCheck, c.wmCheck); err != nil {
		return err
	}
	if err := ewmh.WmNameSet(c.XUtil, c.wmCheck, wmName); err != nil {
		return err
	}
	return ewmh.SupportedSet(c.XUtil, supported)
}

func (c *Connection) setProperty(p display.SetWindowProperty) error {
	switch p.Hint {
	case display.HintDesktop:
		return ewmh.WmDesktopSet(c.XUtil, xproto.Window(p.ID), uint(p.Value))
	case display.HintClientList:
		return ewmh.ClientListSet(c.XUtil, windows(p.Windows))
	case display.HintCurrentDesktop:
		return ewmh.CurrentDesktopSet(c.XUtil, uint(p.Value))
	case display.HintDesktopNames:
		if err := ewmh.NumberOfDesktopsSet(c.XUtil, uint(len(p.Names))); err != nil {
			return err
		}
		return ewmh.DesktopNamesSet(c.XUtil, p.Names)
	case display.HintActiveWindow:
		var active xproto.Window
		if len(p.Windows) > 0 {
			active = xproto.Window(p.Windows[0])
		}
		return ewmh.ActiveWindowSet(c.XUtil, active)
	default:
		return fmt.Errorf("unknown hint %s", p.Hint)
	}
}

func windows(ids []display.WindowID) []xproto.Window {
	out := make([]xproto.Window, len(ids))
	for i, id := range ids {
		out[i] = xproto.Window(id)
	}
	return out
}

// closeWindow asks the client to close win through WM_DELETE_WINDOW when it
// takes part in that protocol, and disconnects the client otherwise.
func (c *Connection) closeWindow(win xproto.Window) error {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, win)
	if err != nil || !slices.Contains(protocols, "WM_DELETE_WINDOW") {
		xproto.KillClient(c.XUtil.Conn(), uint32(win))
		return nil
	}

	deleteAtom, err := xprop.Atm(c.XUtil, "WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	protocolsAtom, err := xprop.Atm(c.XUtil, "WM_PROTOCOLS")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   protocolsAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteAtom), xproto.TimeCurrentTime, 0, 0, 0}),
	}

	xproto.SendEvent(c.XUtil.Conn(), false, win, xproto.EventMaskNoEvent, string(ev.Bytes()))
	return nil
}
