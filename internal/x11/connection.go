// Package x11 connects the window manager core to an X server. It owns the
// read loop that turns X events into display events and applies display
// commands as X requests.
package x11

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"

	"github.com/1broseidon/stackwm/internal/display"
	"github.com/1broseidon/stackwm/internal/keys"
)

// ErrOtherWM is returned by Open when another window manager already holds
// substructure redirection on the root window.
var ErrOtherWM = errors.New("another window manager is already running")

const eventBuffer = 1024

// Options configures Open.
type Options struct {
	// Display overrides $DISPLAY when non-empty.
	Display string
	// Keys are grabbed on the root window.
	Keys []keys.Combo
	// FocusFollowsMouse reports pointer entry as a focus request.
	FocusFollowsMouse bool
	// Screen overrides the detected screen geometry.
	Screen *display.Rect
	Logger *slog.Logger
}

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	logger *slog.Logger
	opts   Options
	screen display.Rect
	randr  bool

	events chan display.Event
	done   chan struct{}
	once   sync.Once

	// grabs maps a grabbed (mods, keycode) pair back to its combination.
	// Only the read loop touches it after Open returns.
	grabs map[grabKey]keys.Combo

	mu      sync.Mutex
	unmaps  map[xproto.Window]int
	wmCheck xproto.Window

	crossings crossings
}

// Open connects to the X server, takes over window management on the root
// window, grabs the configured keys and starts reading events. Windows that
// are already visible are reported as NewWindow events before anything else.
func Open(opts Options) (*Connection, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		xu  *xgbutil.XUtil
		err error
	)
	if opts.Display != "" {
		xu, err = xgbutil.NewConnDisplay(opts.Display)
	} else {
		xu, err = xgbutil.NewConn()
	}
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)

	c := &Connection{
		XUtil:  xu,
		Root:   xu.RootWin(),
		logger: logger,
		opts:   opts,
		events: make(chan display.Event, eventBuffer),
		done:   make(chan struct{}),
		grabs:  make(map[grabKey]keys.Combo),
		unmaps: make(map[xproto.Window]int),
	}

	if err := c.becomeWM(); err != nil {
		xu.Conn().Close()
		return nil, err
	}

	if err := randr.Init(xu.Conn()); err != nil {
		logger.Warn("randr unavailable, screen changes will not be tracked", "error", err)
	} else {
		c.randr = true
		randr.SelectInput(xu.Conn(), c.Root, randr.NotifyMaskScreenChange)
	}

	c.screen = c.detectScreen()
	configureIgnoreMods(xu)
	c.grabKeys()

	if err := c.advertise(); err != nil {
		logger.Warn("failed to advertise EWMH support", "error", err)
	}

	initial := c.scan()
	go c.readLoop(initial)
	return c, nil
}

// becomeWM selects substructure redirection on the root. The X server
// allows a single client to do so; an Access error means someone else has.
func (c *Connection) becomeWM() error {
	mask := uint32(xproto.EventMaskSubstructureRedirect |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskStructureNotify |
		xproto.EventMaskPropertyChange)
	err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.Root,
		xproto.CwEventMask, []uint32{mask}).Check()
	if err == nil {
		return nil
	}
	var access xproto.AccessError
	if errors.As(err, &access) {
		return ErrOtherWM
	}
	return fmt.Errorf("select root events: %w", err)
}

// Screen returns the current screen region, or the override.
func (c *Connection) Screen() display.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// Events returns the event stream. It is closed when the connection ends.
func (c *Connection) Events() <-chan display.Event {
	return c.events
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.once.Do(func() {
		close(c.done)
		c.XUtil.Conn().Close()
	})
}

func (c *Connection) readLoop(initial []display.Event) {
	defer close(c.events)
	for _, ev := range initial {
		if !c.send(ev) {
			return
		}
	}
	for {
		ev, xerr := c.XUtil.Conn().WaitForEvent()
		if ev == nil && xerr == nil {
			c.logger.Debug("x connection closed")
			return
		}
		var out display.Event
		if xerr != nil {
			out = c.translateError(xerr)
		} else {
			out = c.translate(ev)
		}
		if out == nil {
			continue
		}
		if !c.send(out) {
			return
		}
	}
}

func (c *Connection) send(ev display.Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

func (c *Connection) translateError(xerr xgb.Error) display.Event {
	c.logger.Debug("x error", "error", xerr)
	return display.CommandFailed{ID: display.WindowID(xerr.BadId()), Err: xerr}
}

// expectUnmap records an unmap issued by the window manager so the
// resulting UnmapNotify is not mistaken for the client withdrawing.
func (c *Connection) expectUnmap(win xproto.Window) {
	c.mu.Lock()
	c.unmaps[win]++
	c.mu.Unlock()
}

// consumeUnmap reports whether an UnmapNotify for win was expected.
func (c *Connection) consumeUnmap(win xproto.Window) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unmaps[win] == 0 {
		return false
	}
	c.unmaps[win]--
	if c.unmaps[win] == 0 {
		delete(c.unmaps, win)
	}
	return true
}

func (c *Connection) forget(win xproto.Window) {
	c.mu.Lock()
	delete(c.unmaps, win)
	c.mu.Unlock()
}
