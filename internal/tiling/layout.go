// Package tiling computes window geometry. Every layout is a pure function
// of the window order, the focused window and the screen region.
package tiling

import (
	"fmt"
	"math"

	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/display"
)

// Layout computes a rectangle for every window in ids. Implementations
// keep no state between calls. An empty ids yields an empty map.
type Layout interface {
	Name() string
	Compute(ids []display.WindowID, focused display.WindowID, screen display.Rect) map[display.WindowID]display.Rect
}

// New builds the layout described by a config entry.
func New(name string, l config.Layout) (Layout, error) {
	base := base{name: name, region: l.TileRegion, padding: l.Padding}
	switch l.Mode {
	case config.LayoutModeMaximize:
		return Maximize{base}, nil
	case config.LayoutModeVertical:
		return Tiled{base}, nil
	case config.LayoutModeHorizontal:
		return Columns{base}, nil
	case config.LayoutModeAuto:
		return Grid{base}, nil
	case config.LayoutModeMasterStack:
		pct := l.MasterWidthPercent
		if pct == 0 {
			pct = 50
		}
		return MasterStack{base: base, MasterPercent: pct}, nil
	default:
		return nil, fmt.Errorf("unsupported layout mode: %q", l.Mode)
	}
}

type base struct {
	name    string
	region  config.TileRegion
	padding int
}

func (b base) Name() string { return b.name }

func (b base) area(screen display.Rect) display.Rect {
	if b.region.Type == "" {
		return screen
	}
	return ApplyRegion(screen, b.region)
}

// Maximize gives every window the whole area. Only the focused window is
// visible because it is raised above the others.
type Maximize struct{ base }

func (l Maximize) Compute(ids []display.WindowID, _ display.WindowID, screen display.Rect) map[display.WindowID]display.Rect {
	out := make(map[display.WindowID]display.Rect, len(ids))
	r := l.area(screen).Inset(l.padding)
	for _, id := range ids {
		out[id] = r
	}
	return out
}

// Tiled stacks windows in equal-height bands, top to bottom.
type Tiled struct{ base }

func (l Tiled) Compute(ids []display.WindowID, _ display.WindowID, screen display.Rect) map[display.WindowID]display.Rect {
	out := make(map[display.WindowID]display.Rect, len(ids))
	for i, r := range bands(l.area(screen), len(ids), true) {
		out[ids[i]] = r.Inset(l.padding)
	}
	return out
}

// Columns places windows side by side in equal-width columns.
type Columns struct{ base }

func (l Columns) Compute(ids []display.WindowID, _ display.WindowID, screen display.Rect) map[display.WindowID]display.Rect {
	out := make(map[display.WindowID]display.Rect, len(ids))
	for i, r := range bands(l.area(screen), len(ids), false) {
		out[ids[i]] = r.Inset(l.padding)
	}
	return out
}

// Grid arranges windows in a near-square grid. Windows in a short last row
// stretch to fill its width.
type Grid struct{ base }

func (l Grid) Compute(ids []display.WindowID, _ display.WindowID, screen display.Rect) map[display.WindowID]display.Rect {
	out := make(map[display.WindowID]display.Rect, len(ids))
	if len(ids) == 0 {
		return out
	}
	rows, cols := CalculateGrid(len(ids))
	area := l.area(screen)
	i := 0
	for row, rowRect := range bands(area, rows, true) {
		n := cols
		if row == rows-1 {
			n = len(ids) - i
		}
		for _, cell := range bands(rowRect, n, false) {
			out[ids[i]] = cell.Inset(l.padding)
			i++
		}
	}
	return out
}

// MasterStack gives the first window the left MasterPercent of the width
// and stacks the rest in bands on the right.
type MasterStack struct {
	base
	MasterPercent int
}

func (l MasterStack) Compute(ids []display.WindowID, _ display.WindowID, screen display.Rect) map[display.WindowID]display.Rect {
	out := make(map[display.WindowID]display.Rect, len(ids))
	area := l.area(screen)
	switch len(ids) {
	case 0:
		return out
	case 1:
		out[ids[0]] = area.Inset(l.padding)
		return out
	}

	masterWidth := area.Width * l.MasterPercent / 100
	master := display.Rect{X: area.X, Y: area.Y, Width: masterWidth, Height: area.Height}
	rest := display.Rect{X: area.X + masterWidth, Y: area.Y, Width: area.Width - masterWidth, Height: area.Height}

	out[ids[0]] = master.Inset(l.padding)
	for i, r := range bands(rest, len(ids)-1, true) {
		out[ids[i+1]] = r.Inset(l.padding)
	}
	return out
}

// bands splits area into n equal slices, stacked vertically when vertical
// is set and side by side otherwise. The remainder of the division goes to
// the last slice so the slices cover area exactly. An area narrower than n
// pixels holds one slice per pixel; the windows beyond that share the last
// slice.
func bands(area display.Rect, n int, vertical bool) []display.Rect {
	if n <= 0 {
		return nil
	}
	out := make([]display.Rect, n)
	total := area.Width
	if vertical {
		total = area.Height
	}
	slots := min(n, max(total, 1))
	size := total / slots
	for i := 0; i < slots; i++ {
		length := size
		if i == slots-1 {
			length = total - size*(slots-1)
		}
		if vertical {
			out[i] = display.Rect{X: area.X, Y: area.Y + i*size, Width: area.Width, Height: length}
		} else {
			out[i] = display.Rect{X: area.X + i*size, Y: area.Y, Width: length, Height: area.Height}
		}
	}
	for i := slots; i < n; i++ {
		out[i] = out[slots-1]
	}
	return out
}

// CalculateGrid determines the optimal grid dimensions for the given number of windows
func CalculateGrid(numWindows int) (rows, cols int) {
	if numWindows == 0 {
		return 0, 0
	}

	// Calculate columns first (ceiling of square root)
	cols = int(math.Ceil(math.Sqrt(float64(numWindows))))

	// Calculate rows needed
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))

	return rows, cols
}

// ApplyRegion applies the tile region to a screen, returning adjusted bounds
func ApplyRegion(screen display.Rect, region config.TileRegion) display.Rect {
	adjusted := screen

	switch region.Type {
	case config.RegionFull:
		// No change

	case config.RegionLeftHalf:
		adjusted.Width = screen.Width / 2

	case config.RegionRightHalf:
		adjusted.X = screen.X + screen.Width/2
		adjusted.Width = screen.Width - screen.Width/2

	case config.RegionTopHalf:
		adjusted.Height = screen.Height / 2

	case config.RegionBottomHalf:
		adjusted.Y = screen.Y + screen.Height/2
		adjusted.Height = screen.Height - screen.Height/2

	case config.RegionCustom:
		adjusted.X = screen.X + (screen.Width * region.XPercent / 100)
		adjusted.Y = screen.Y + (screen.Height * region.YPercent / 100)
		adjusted.Width = screen.Width * region.WidthPercent / 100
		adjusted.Height = screen.Height * region.HeightPercent / 100
	}

	if adjusted.Width < 1 {
		adjusted.Width = 1
	}
	if adjusted.Height < 1 {
		adjusted.Height = 1
	}

	return adjusted
}

// Viewport shrinks screen by the largest strut reserved on each edge.
func Viewport(screen display.Rect, struts []display.Strut) display.Rect {
	var m display.Strut
	for _, s := range struts {
		m.Left = max(m.Left, s.Left)
		m.Right = max(m.Right, s.Right)
		m.Top = max(m.Top, s.Top)
		m.Bottom = max(m.Bottom, s.Bottom)
	}
	out := display.Rect{
		X:      screen.X + m.Left,
		Y:      screen.Y + m.Top,
		Width:  screen.Width - m.Left - m.Right,
		Height: screen.Height - m.Top - m.Bottom,
	}
	if out.Width < 1 {
		out.Width = 1
	}
	if out.Height < 1 {
		out.Height = 1
	}
	return out
}
