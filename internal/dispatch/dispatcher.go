// Package dispatch turns display events and actions into state mutations
// and the display commands that bring the screen in line with the new
// state. It is the only code that emits display commands.
//
// A Dispatcher is not safe for concurrent use. The daemon's event loop owns
// it and calls it for one event at a time.
package dispatch

import (
	"errors"
	"log/slog"
	"time"

	"github.com/1broseidon/stackwm/internal/action"
	"github.com/1broseidon/stackwm/internal/display"
	"github.com/1broseidon/stackwm/internal/keys"
	"github.com/1broseidon/stackwm/internal/state"
	"github.com/1broseidon/stackwm/internal/tiling"
)

// Launcher starts external programs without waiting for them.
type Launcher interface {
	Spawn(command string, args []string) error
}

// Options configures a Dispatcher.
type Options struct {
	Screen   display.Rect
	Keys     *keys.Table
	Launcher Launcher
	Logger   *slog.Logger
	// Strict panics on invariant violations instead of logging them.
	Strict bool
}

// Dispatcher applies events to a state.Manager.
type Dispatcher struct {
	state    *state.Manager
	keys     *keys.Table
	launcher Launcher
	logger   *slog.Logger
	strict   bool

	screen  display.Rect
	docks   map[display.WindowID]display.Strut
	// adopted records the generation at which each managed window or dock
	// was taken on; gen counts adoptions.
	adopted map[display.WindowID]uint64
	gen     uint64
	quit    bool
	started time.Time

	// batch collects the commands of the event being handled.
	batch []display.Command
}

// New creates a dispatcher over m.
func New(m *state.Manager, opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Keys == nil {
		opts.Keys = &keys.Table{}
	}
	return &Dispatcher{
		state:    m,
		keys:     opts.Keys,
		launcher: opts.Launcher,
		logger:   opts.Logger,
		strict:   opts.Strict,
		screen:   opts.Screen,
		docks:    make(map[display.WindowID]display.Strut),
		adopted:  make(map[display.WindowID]uint64),
		started:  time.Now(),
	}
}

// State returns the managed model. Callers must not mutate it.
func (d *Dispatcher) State() *state.Manager { return d.state }

// Generation returns the number of windows and docks adopted so far. A
// WindowSnapshot carrying it only judges windows adopted up to that point.
func (d *Dispatcher) Generation() uint64 { return d.gen }

// Quitting reports whether a Quit action has been applied.
func (d *Dispatcher) Quitting() bool { return d.quit }

// Start returns the commands that advertise the groups to clients. It is
// called once before the first event.
func (d *Dispatcher) Start() []display.Command {
	d.batch = nil
	d.emit(display.SetWindowProperty{Hint: display.HintDesktopNames, Names: d.state.GroupNames()})
	d.emit(display.SetWindowProperty{Hint: display.HintCurrentDesktop, Value: d.state.Active()})
	d.advertiseClients()
	return d.finish()
}

// Handle processes one event and returns the commands it produced.
func (d *Dispatcher) Handle(ev display.Event) []display.Command {
	d.batch = nil
	d.logger.Debug("event", "event", ev.String())

	switch ev := ev.(type) {
	case display.NewWindow:
		d.newWindow(ev)
	case display.WindowGone:
		d.windowGone(ev.ID)
	case display.ConfigureRequest:
		d.configureRequest(ev)
	case display.ScreenGeometryChanged:
		d.logger.Info("screen geometry changed", "region", ev.Region.String())
		d.screen = ev.Region
		d.arrange(true)
	case display.KeyPress:
		a, ok := d.keys.Lookup(ev.Modifiers, ev.Key)
		if !ok {
			d.logger.Debug("unbound key", "mods", ev.Modifiers, "key", ev.Key)
			break
		}
		d.apply(a)
	case display.FocusRequest:
		d.focusRequest(ev.ID)
	case display.UrgencyChanged:
		if w, ok := d.state.Registry().Get(ev.ID); ok {
			w.Urgent = ev.Urgent
		}
	case display.CommandFailed:
		d.logger.Debug("display rejected command", "window", ev.ID, "err", ev.Err)
		d.windowGone(ev.ID)
	case display.WindowSnapshot:
		d.reconcile(ev)
	default:
		d.logger.Warn("ignoring unknown event", "event", ev.String())
	}

	return d.finish()
}

// Do applies an action requested by a control surface.
func (d *Dispatcher) Do(a action.Action) []display.Command {
	d.batch = nil
	d.logger.Debug("action", "action", a.String())
	d.apply(a)
	return d.finish()
}

func (d *Dispatcher) emit(cmd display.Command) {
	d.batch = append(d.batch, cmd)
}

func (d *Dispatcher) finish() []display.Command {
	d.verify()
	out := d.batch
	d.batch = nil
	if len(out) > 0 {
		d.logger.Debug("commands", "count", len(out))
	}
	return out
}

// verify checks the model after every batch.
func (d *Dispatcher) verify() {
	err := d.state.Check()
	if err == nil {
		return
	}
	if d.strict {
		panic(err)
	}
	d.logger.Error("state invariant violated", "err", err)
}

func (d *Dispatcher) viewport() display.Rect {
	struts := make([]display.Strut, 0, len(d.docks))
	for _, s := range d.docks {
		struts = append(struts, s)
	}
	return tiling.Viewport(d.screen, struts)
}

func (d *Dispatcher) newWindow(ev display.NewWindow) {
	if ev.Kind == display.KindDock {
		if _, known := d.docks[ev.ID]; known {
			return
		}
		before := d.viewport()
		d.docks[ev.ID] = ev.Strut
		d.adopt(ev.ID)
		d.emit(display.MapWindow{ID: ev.ID})
		d.logger.Info("dock mapped", "window", ev.ID)
		if d.viewport() != before {
			d.arrange(false)
		}
		return
	}

	if w, ok := d.state.Registry().Get(ev.ID); ok {
		// A managed window asked to be shown again.
		if w.Group == d.state.Active() {
			d.state.Focus(ev.ID)
			d.arrange(false)
		}
		return
	}

	w, err := d.state.Manage(ev.ID, ev.Geometry)
	if err != nil {
		d.logger.Warn("manage failed", "window", ev.ID, "err", err)
		return
	}
	d.adopt(ev.ID)
	d.logger.Info("managing window", "window", ev.ID, "group", d.state.ActiveGroup().Name())
	d.emit(display.SetWindowProperty{ID: ev.ID, Hint: display.HintDesktop, Value: w.Group})
	d.advertiseClients()
	d.arrange(false)
}

func (d *Dispatcher) windowGone(id display.WindowID) {
	if _, ok := d.docks[id]; ok {
		before := d.viewport()
		delete(d.docks, id)
		delete(d.adopted, id)
		d.logger.Info("dock gone", "window", id)
		if d.viewport() != before {
			d.arrange(false)
		}
		return
	}

	gi, ok := d.state.Unmanage(id)
	if !ok {
		return
	}
	delete(d.adopted, id)
	d.logger.Info("window gone", "window", id, "group", d.state.Groups()[gi].Name())
	d.advertiseClients()
	if gi == d.state.Active() {
		d.arrange(false)
	}
}

func (d *Dispatcher) configureRequest(ev display.ConfigureRequest) {
	if w, ok := d.state.Registry().Get(ev.ID); ok {
		// Managed windows keep the geometry the layout gave them.
		d.emit(display.ConfigureWindow{ID: ev.ID, Rect: w.Geometry})
		return
	}
	d.emit(display.ConfigureWindow{ID: ev.ID, Rect: ev.Geometry})
}

func (d *Dispatcher) focusRequest(id display.WindowID) {
	if cur, ok := d.state.Focused(); ok && cur == id {
		return
	}
	if !d.state.Focus(id) {
		return
	}
	d.arrange(false)
}

func (d *Dispatcher) adopt(id display.WindowID) {
	d.gen++
	d.adopted[id] = d.gen
}

// reconcile drops every window the server no longer has. Windows adopted
// after the snapshot's generation may postdate the list and are kept.
func (d *Dispatcher) reconcile(snap display.WindowSnapshot) {
	alive := make(map[display.WindowID]struct{}, len(snap.IDs))
	for _, id := range snap.IDs {
		alive[id] = struct{}{}
	}
	gone := func(id display.WindowID) bool {
		if _, ok := alive[id]; ok {
			return false
		}
		return d.adopted[id] <= snap.Generation
	}
	var stale []display.WindowID
	for _, id := range d.state.Registry().IDs() {
		if gone(id) {
			stale = append(stale, id)
		}
	}
	for id := range d.docks {
		if gone(id) {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		d.logger.Info("reconcile: dropping stale window", "window", id)
		d.windowGone(id)
	}
}

func (d *Dispatcher) advertiseClients() {
	d.emit(display.SetWindowProperty{Hint: display.HintClientList, Windows: d.state.Registry().IDs()})
}

// arrange lays out the active group and emits the commands that apply the
// result: configure for changed (or, when force is set, all) rectangles,
// map for hidden windows, then raise and focus for the focused window.
func (d *Dispatcher) arrange(force bool) {
	g := d.state.ActiveGroup()
	rects := g.Arrange(d.viewport())
	reg := d.state.Registry()

	for _, id := range g.Windows() {
		w, ok := reg.Get(id)
		if !ok {
			continue
		}
		r := rects[id]
		if force || !w.Mapped || r != w.Geometry {
			d.emit(display.ConfigureWindow{ID: id, Rect: r})
			w.Geometry = r
		}
		if !w.Mapped {
			d.emit(display.MapWindow{ID: id})
			w.Mapped = true
		}
	}

	focused, ok := g.Stack().Focused()
	if !ok {
		d.emit(display.SetInputFocus{ID: display.NoWindow})
		d.emit(display.SetWindowProperty{Hint: display.HintActiveWindow})
		return
	}
	d.emit(display.RaiseWindow{ID: focused})
	d.emit(display.SetInputFocus{ID: focused})
	d.emit(display.SetWindowProperty{Hint: display.HintActiveWindow, Windows: []display.WindowID{focused}})
}

// hide unmaps every mapped window of group gi.
func (d *Dispatcher) hide(gi int) {
	g, err := d.state.Group(gi)
	if err != nil {
		return
	}
	for _, id := range g.Windows() {
		if w, ok := d.state.Registry().Get(id); ok && w.Mapped {
			d.emit(display.UnmapWindow{ID: id})
			w.Mapped = false
		}
	}
}

func (d *Dispatcher) apply(a action.Action) {
	switch a.Kind {
	case action.SwitchGroup:
		d.switchGroup(a.Group)

	case action.MoveFocusedToGroup:
		d.moveFocused(a.Group)

	case action.FocusNext, action.FocusPrevious:
		s := d.state.ActiveGroup().Stack()
		before, _ := s.Focused()
		if a.Kind == action.FocusNext {
			s.FocusNext()
		} else {
			s.FocusPrevious()
		}
		if after, _ := s.Focused(); after != before {
			d.arrange(false)
		}

	case action.ShuffleUp, action.ShuffleDown:
		s := d.state.ActiveGroup().Stack()
		var moved bool
		if a.Kind == action.ShuffleUp {
			moved = s.ShuffleUp()
		} else {
			moved = s.ShuffleDown()
		}
		if moved {
			d.arrange(false)
		}

	case action.CycleLayout, action.PreviousLayout:
		delta := 1
		if a.Kind == action.PreviousLayout {
			delta = -1
		}
		g := d.state.ActiveGroup()
		if g.CycleLayout(delta) {
			d.logger.Info("layout changed", "group", g.Name(), "layout", g.Layout().Name())
			d.arrange(false)
		}

	case action.CloseFocused:
		id, ok := d.state.Focused()
		if !ok {
			d.logger.Debug("close: no focused window")
			return
		}
		d.emit(display.CloseWindow{ID: id})

	case action.Spawn:
		if d.launcher == nil {
			d.logger.Warn("spawn: no launcher configured", "command", a.Command)
			return
		}
		if err := d.launcher.Spawn(a.Command, a.Args); err != nil {
			d.logger.Warn("spawn failed", "command", a.Command, "err", err)
		}

	case action.Quit:
		d.logger.Info("quit requested")
		d.quit = true

	case action.Custom:
		if a.Handler != nil {
			a.Handler(controller{d})
		}

	default:
		d.logger.Warn("ignoring unknown action", "action", a.String())
	}
}

func (d *Dispatcher) switchGroup(n int) {
	prev := d.state.Active()
	changed, err := d.state.Activate(n)
	if err != nil {
		d.logger.Warn("switch group", "err", err)
		return
	}
	if !changed {
		return
	}
	d.logger.Info("switched group", "from", d.state.Groups()[prev].Name(), "to", d.state.ActiveGroup().Name())
	d.hide(prev)
	d.arrange(true)
	d.emit(display.SetWindowProperty{Hint: display.HintCurrentDesktop, Value: n})
}

func (d *Dispatcher) moveFocused(n int) {
	id, moved, err := d.state.MoveFocused(n)
	switch {
	case errors.Is(err, state.ErrNoFocusedWindow):
		d.logger.Debug("move to group: no focused window")
		return
	case err != nil:
		d.logger.Warn("move to group", "err", err)
		return
	case !moved:
		return
	}
	d.logger.Info("moved window", "window", id, "group", d.state.Groups()[n].Name())
	if w, ok := d.state.Registry().Get(id); ok && w.Mapped {
		d.emit(display.UnmapWindow{ID: id})
		w.Mapped = false
	}
	d.emit(display.SetWindowProperty{ID: id, Hint: display.HintDesktop, Value: n})
	d.arrange(false)
}

// controller is the view of the dispatcher handed to Custom actions.
type controller struct{ d *Dispatcher }

func (c controller) Do(a action.Action) { c.d.apply(a) }

func (c controller) ActiveGroup() int { return c.d.state.Active() }

func (c controller) Focused() (display.WindowID, bool) { return c.d.state.Focused() }
