package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/stackwm/internal/display"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	Rect   display.Rect
	Output randr.Output
}

// Monitors retrieves all active monitors using XRandR
func (c *Connection) Monitors() ([]Monitor, error) {
	if !c.randr {
		return nil, fmt.Errorf("randr extension not initialized")
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			name = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			Output: crtcInfo.Outputs[0],
			Rect: display.Rect{
				X:      int(crtcInfo.X),
				Y:      int(crtcInfo.Y),
				Width:  int(crtcInfo.Width),
				Height: int(crtcInfo.Height),
			},
		})
	}

	return monitors, nil
}

// detectScreen picks the region windows are tiled in: the configured
// override, else the primary monitor, else the first monitor, else the
// whole root window.
func (c *Connection) detectScreen() display.Rect {
	if c.opts.Screen != nil {
		return *c.opts.Screen
	}
	if monitors, err := c.Monitors(); err == nil && len(monitors) > 0 {
		var primary randr.Output
		if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
			primary = reply.Output
		}
		for _, m := range monitors {
			if primary != 0 && m.Output == primary {
				return m.Rect
			}
		}
		return monitors[0].Rect
	} else if err != nil {
		c.logger.Debug("monitor detection failed, using root geometry", "error", err)
	}
	return c.rootRect()
}

func (c *Connection) rootRect() display.Rect {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		s := c.XUtil.Screen()
		return display.Rect{Width: int(s.WidthInPixels), Height: int(s.HeightInPixels)}
	}
	return display.Rect{Width: int(geom.Width), Height: int(geom.Height)}
}

// screenChanged re-detects the screen after a RandR notification.
func (c *Connection) screenChanged(ev randr.ScreenChangeNotifyEvent) display.Event {
	if c.opts.Screen != nil {
		return nil
	}
	region := c.detectScreen()
	if region.Empty() {
		region = display.Rect{Width: int(ev.Width), Height: int(ev.Height)}
	}
	if !c.setScreen(region) {
		return nil
	}
	return display.ScreenGeometryChanged{Region: region}
}

// setScreen stores region and reports whether it differs from the previous
// one. Screen may be called from other goroutines meanwhile.
func (c *Connection) setScreen(region display.Rect) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := region != c.screen
	c.screen = region
	return changed
}

// readStrut returns the space a dock reserves on the screen. Partial struts
// only count where their range overlaps the screen.
func (c *Connection) readStrut(win xproto.Window) display.Strut {
	root := c.rootRect()
	if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
		return strutOnScreen(sp, root, c.Screen())
	}
	// Some docks only set _NET_WM_STRUT (no partial ranges).
	if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
		return strutOnScreen(fullStrut(s, root), root, c.Screen())
	}
	return display.Strut{}
}

func fullStrut(s *ewmh.WmStrut, root display.Rect) *ewmh.WmStrutPartial {
	return &ewmh.WmStrutPartial{
		Left:       s.Left,
		Right:      s.Right,
		Top:        s.Top,
		Bottom:     s.Bottom,
		LeftEndY:   uint(max(root.Height-1, 0)),
		RightEndY:  uint(max(root.Height-1, 0)),
		TopEndX:    uint(max(root.Width-1, 0)),
		BottomEndX: uint(max(root.Width-1, 0)),
	}
}

// strutOnScreen converts root-relative strut sizes into how far each
// reservation reaches into screen.
func strutOnScreen(sp *ewmh.WmStrutPartial, root, screen display.Rect) display.Strut {
	var out display.Strut

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		r := intersect(screen, span(int(sp.TopStartX), int(sp.TopEndX), 0, int(sp.Top)))
		out.Top = r.Height
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		r := intersect(screen, span(int(sp.BottomStartX), int(sp.BottomEndX), root.Height-int(sp.Bottom), root.Height))
		out.Bottom = r.Height
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		r := intersect(screen, display.Rect{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY) - int(sp.LeftStartY) + 1})
		out.Left = r.Width
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		r := intersect(screen, display.Rect{X: root.Width - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY) - int(sp.RightStartY) + 1})
		out.Right = r.Width
	}
	return out
}

// span builds the rectangle covering x in [x1,x2] and y in [y1,y2).
func span(x1, x2, y1, y2 int) display.Rect {
	return display.Rect{X: x1, Y: y1, Width: x2 - x1 + 1, Height: y2 - y1}
}

func intersect(a, b display.Rect) display.Rect {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)

	if x2 <= x1 || y2 <= y1 {
		return display.Rect{}
	}
	return display.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
