package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/1broseidon/stackwm/internal/action"
	"github.com/1broseidon/stackwm/internal/keys"
)

// LayoutMode defines how a group's windows are arranged.
type LayoutMode string

const (
	LayoutModeMaximize    LayoutMode = "maximize"     // Every window full size, focused on top.
	LayoutModeVertical    LayoutMode = "vertical"     // Equal-height bands, top to bottom.
	LayoutModeHorizontal  LayoutMode = "horizontal"   // Equal-width columns, left to right.
	LayoutModeAuto        LayoutMode = "auto"         // Dynamic grid based on count.
	LayoutModeMasterStack LayoutMode = "master-stack" // Master pane left, stack right.
)

// RegionType defines tile region presets.
type RegionType string

const (
	RegionFull       RegionType = "full"
	RegionLeftHalf   RegionType = "left-half"
	RegionRightHalf  RegionType = "right-half"
	RegionTopHalf    RegionType = "top-half"
	RegionBottomHalf RegionType = "bottom-half"
	RegionCustom     RegionType = "custom"
)

// TileRegion restricts a layout to part of the usable screen.
type TileRegion struct {
	Type          RegionType `yaml:"type"`
	XPercent      int        `yaml:"x_percent,omitempty"`      // 0-100
	YPercent      int        `yaml:"y_percent,omitempty"`      // 0-100
	WidthPercent  int        `yaml:"width_percent,omitempty"`  // 0-100
	HeightPercent int        `yaml:"height_percent,omitempty"` // 0-100
}

// Layout defines a tiling strategy.
type Layout struct {
	Mode       LayoutMode `yaml:"mode"`
	TileRegion TileRegion `yaml:"tile_region,omitempty"`
	// Padding is the space in pixels left around each window.
	Padding int `yaml:"padding,omitempty"`
	// MasterWidthPercent is the master pane width for master-stack (10-90).
	MasterWidthPercent int `yaml:"master_width_percent,omitempty"`
}

// Region is a fixed screen rectangle.
type Region struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Group is a workspace declared at start-up.
type Group struct {
	Name string `yaml:"name"`
	// Layouts lists layout names; the first is active initially.
	Layouts []string `yaml:"layouts"`
	// Key is the keysym combined with the group switch/move modifiers.
	Key string `yaml:"key,omitempty"`
}

// KeyBinding binds a key combination to an action.
type KeyBinding struct {
	Key    string `yaml:"key"`
	Action string `yaml:"action"`
	// Group names the target of switch-group and move-to-group, by name or
	// one-based number.
	Group   string   `yaml:"group,omitempty"`
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// Config is the effective configuration.
type Config struct {
	LogLevel          string `yaml:"log_level"`
	LogFile           string `yaml:"log_file,omitempty"`
	FocusFollowsMouse bool   `yaml:"focus_follows_mouse"`
	// Strict turns invariant violations into panics.
	Strict bool `yaml:"strict"`
	// Screen overrides the screen geometry reported by the X server.
	Screen *Region `yaml:"screen,omitempty"`
	// ReconcileIntervalSeconds is how often the window list is compared
	// against the server. 0 disables reconciliation.
	ReconcileIntervalSeconds int `yaml:"reconcile_interval_seconds"`

	Layouts             map[string]Layout `yaml:"layouts"`
	Groups              []Group           `yaml:"groups"`
	GroupSwitchModifier string            `yaml:"group_switch_modifier"`
	GroupMoveModifier   string            `yaml:"group_move_modifier"`
	Keys                []KeyBinding      `yaml:"keys"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	groups := make([]Group, 0, 9)
	for i := 1; i <= 9; i++ {
		n := strconv.Itoa(i)
		groups = append(groups, Group{Name: n, Layouts: []string{"maximize", "tiled"}, Key: n})
	}
	return &Config{
		LogLevel:                 "info",
		ReconcileIntervalSeconds: 30,
		Layouts:                  BuiltinLayouts(),
		Groups:                   groups,
		GroupSwitchModifier:      "Mod4",
		GroupMoveModifier:        "Mod4-Shift",
		Keys: []KeyBinding{
			{Key: "Mod4-j", Action: "focus-next"},
			{Key: "Mod4-k", Action: "focus-previous"},
			{Key: "Mod4-Shift-j", Action: "shuffle-down"},
			{Key: "Mod4-Shift-k", Action: "shuffle-up"},
			{Key: "Mod4-space", Action: "cycle-layout"},
			{Key: "Mod4-Shift-space", Action: "previous-layout"},
			{Key: "Mod4-q", Action: "close-window"},
			{Key: "Mod4-Return", Action: "spawn", Command: "xterm"},
			{Key: "Mod4-Shift-q", Action: "quit"},
		},
	}
}

// Layout retrieves a layout by name with validation.
func (c *Config) Layout(name string) (Layout, error) {
	layout, ok := c.Layouts[name]
	if !ok {
		return Layout{}, fmt.Errorf("layout %q not found", name)
	}
	if err := validateLayout(&layout); err != nil {
		return Layout{}, fmt.Errorf("invalid layout %q: %w", name, err)
	}
	return layout, nil
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GroupIndex resolves a group reference (name, or one-based number) to a
// zero-based index.
func (c *Config) GroupIndex(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	for i, g := range c.Groups {
		if g.Name == ref {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(c.Groups) {
		return n - 1, nil
	}
	return 0, fmt.Errorf("group %q not found", ref)
}

// Bindings expands the configuration into key bindings: the explicit keys
// list followed by the generated per-group switch and move bindings.
func (c *Config) Bindings() ([]keys.Binding, error) {
	var out []keys.Binding
	for i, kb := range c.Keys {
		path := fmt.Sprintf("keys[%d]", i)
		combo, err := keys.ParseCombo(kb.Key)
		if err != nil {
			return nil, &ValidationError{Path: path + ".key", Err: err}
		}
		group := 0
		if name := strings.ToLower(kb.Action); name == "switch-group" || name == "move-to-group" {
			if group, err = c.GroupIndex(kb.Group); err != nil {
				return nil, &ValidationError{Path: path + ".group", Err: err}
			}
		}
		a, err := action.Parse(kb.Action, group, kb.Command, kb.Args)
		if err != nil {
			return nil, &ValidationError{Path: path + ".action", Err: err}
		}
		out = append(out, keys.Binding{Combo: combo, Action: a})
	}

	switchMods, err := keys.ParseModifiers(c.GroupSwitchModifier)
	if err != nil {
		return nil, &ValidationError{Path: "group_switch_modifier", Err: err}
	}
	moveMods, err := keys.ParseModifiers(c.GroupMoveModifier)
	if err != nil {
		return nil, &ValidationError{Path: "group_move_modifier", Err: err}
	}
	for i, g := range c.Groups {
		if strings.TrimSpace(g.Key) == "" {
			continue
		}
		out = append(out,
			keys.Binding{
				Combo:  keys.Combo{Mods: switchMods, Key: g.Key},
				Action: action.Action{Kind: action.SwitchGroup, Group: i},
			},
			keys.Binding{
				Combo:  keys.Combo{Mods: moveMods, Key: g.Key},
				Action: action.Action{Kind: action.MoveFocusedToGroup, Group: i},
			},
		)
	}
	return out, nil
}

// KeyTable builds the key binding table.
func (c *Config) KeyTable() (*keys.Table, error) {
	bindings, err := c.Bindings()
	if err != nil {
		return nil, err
	}
	table, err := keys.NewTable(bindings...)
	if err != nil {
		return nil, &ValidationError{Path: "keys", Err: err}
	}
	return table, nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.ReconcileIntervalSeconds < 0 {
		return &ValidationError{Path: "reconcile_interval_seconds", Err: fmt.Errorf("reconcile_interval_seconds must be >= 0")}
	}
	if c.Screen != nil && (c.Screen.Width <= 0 || c.Screen.Height <= 0) {
		return &ValidationError{Path: "screen", Err: fmt.Errorf("screen width and height must be positive")}
	}

	for name, layout := range c.Layouts {
		layout := layout
		if err := validateLayout(&layout); err != nil {
			return &ValidationError{Path: "layouts." + name, Err: err}
		}
	}

	if len(c.Groups) == 0 {
		return &ValidationError{Path: "groups", Err: fmt.Errorf("at least one group is required")}
	}
	seen := make(map[string]struct{}, len(c.Groups))
	for i, g := range c.Groups {
		path := fmt.Sprintf("groups[%d]", i)
		if strings.TrimSpace(g.Name) == "" {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("group name is required")}
		}
		if _, dup := seen[g.Name]; dup {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("duplicate group name %q", g.Name)}
		}
		seen[g.Name] = struct{}{}
		if len(g.Layouts) == 0 {
			return &ValidationError{Path: path + ".layouts", Err: fmt.Errorf("group %q needs at least one layout", g.Name)}
		}
		for _, name := range g.Layouts {
			if _, ok := c.Layouts[name]; !ok {
				return &ValidationError{Path: path + ".layouts", Err: fmt.Errorf("layout %q not found in layouts", name)}
			}
		}
	}

	if _, err := c.KeyTable(); err != nil {
		return err
	}
	return nil
}

// validateLayout checks if a layout configuration is valid.
func validateLayout(layout *Layout) error {
	switch layout.Mode {
	case LayoutModeMaximize, LayoutModeVertical, LayoutModeHorizontal, LayoutModeAuto, LayoutModeMasterStack:
	default:
		return fmt.Errorf("invalid mode %q", layout.Mode)
	}

	if layout.Mode == LayoutModeMasterStack {
		if layout.MasterWidthPercent < 10 || layout.MasterWidthPercent > 90 {
			return fmt.Errorf("master_width_percent must be between 10 and 90")
		}
	}

	if layout.Padding < 0 {
		return fmt.Errorf("padding must be >= 0")
	}

	switch layout.TileRegion.Type {
	case "", RegionFull, RegionLeftHalf, RegionRightHalf, RegionTopHalf, RegionBottomHalf:
		// ok
	case RegionCustom:
		if layout.TileRegion.XPercent < 0 || layout.TileRegion.XPercent > 100 {
			return fmt.Errorf("x_percent must be between 0 and 100")
		}
		if layout.TileRegion.YPercent < 0 || layout.TileRegion.YPercent > 100 {
			return fmt.Errorf("y_percent must be between 0 and 100")
		}
		if layout.TileRegion.WidthPercent <= 0 || layout.TileRegion.WidthPercent > 100 {
			return fmt.Errorf("width_percent must be between 1 and 100")
		}
		if layout.TileRegion.HeightPercent <= 0 || layout.TileRegion.HeightPercent > 100 {
			return fmt.Errorf("height_percent must be between 1 and 100")
		}
		if layout.TileRegion.XPercent+layout.TileRegion.WidthPercent > 100 {
			return fmt.Errorf("x_percent + width_percent must be <= 100")
		}
		if layout.TileRegion.YPercent+layout.TileRegion.HeightPercent > 100 {
			return fmt.Errorf("y_percent + height_percent must be <= 100")
		}
	default:
		return fmt.Errorf("invalid region type %q", layout.TileRegion.Type)
	}

	return nil
}
