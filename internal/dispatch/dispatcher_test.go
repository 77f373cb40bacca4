package dispatch

import (
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"reflect"
	"testing"

	"github.com/1broseidon/stackwm/internal/action"
	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/display"
	"github.com/1broseidon/stackwm/internal/group"
	"github.com/1broseidon/stackwm/internal/keys"
	"github.com/1broseidon/stackwm/internal/state"
	"github.com/1broseidon/stackwm/internal/tiling"
)

var screen = display.Rect{Width: 1200, Height: 900}

type fakeLauncher struct {
	calls []string
	err   error
}

func (f *fakeLauncher) Spawn(command string, args []string) error {
	f.calls = append(f.calls, command)
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testKeys(t *testing.T) *keys.Table {
	t.Helper()
	bind := func(s string, a action.Action) keys.Binding {
		c, err := keys.ParseCombo(s)
		if err != nil {
			t.Fatalf("ParseCombo(%q): %v", s, err)
		}
		return keys.Binding{Combo: c, Action: a}
	}
	table, err := keys.NewTable(
		bind("Mod4-j", action.Action{Kind: action.FocusNext}),
		bind("Mod4-Shift-k", action.Action{Kind: action.ShuffleUp}),
		bind("Mod4-2", action.Action{Kind: action.SwitchGroup, Group: 1}),
		bind("Mod4-Return", action.Action{Kind: action.Spawn, Command: "xterm"}),
	)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

// newTestDispatcher builds groups named by names, each with the tiled and
// maximize layouts, and strict invariant checking.
func newTestDispatcher(t *testing.T, names ...string) (*Dispatcher, *fakeLauncher) {
	t.Helper()
	builtin := config.BuiltinLayouts()
	groups := make([]*group.Group, len(names))
	for i, n := range names {
		tiled, err := tiling.New("tiled", builtin["tiled"])
		if err != nil {
			t.Fatalf("tiled: %v", err)
		}
		maximize, err := tiling.New("maximize", builtin["maximize"])
		if err != nil {
			t.Fatalf("maximize: %v", err)
		}
		groups[i] = group.New(n, tiled, maximize)
	}
	m, err := state.NewManager(groups...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	launcher := &fakeLauncher{}
	d := New(m, Options{
		Screen:   screen,
		Keys:     testKeys(t),
		Launcher: launcher,
		Logger:   discardLogger(),
		Strict:   true,
	})
	return d, launcher
}

func newWindows(d *Dispatcher, ids ...display.WindowID) {
	for _, id := range ids {
		d.Handle(display.NewWindow{ID: id, Geometry: display.Rect{Width: 100, Height: 100}})
	}
}

func contains(cmds []display.Command, want display.Command) bool {
	return indexOf(cmds, want) >= 0
}

func indexOf(cmds []display.Command, want display.Command) int {
	for i, c := range cmds {
		if reflect.DeepEqual(c, want) {
			return i
		}
	}
	return -1
}

func countType[T display.Command](cmds []display.Command) int {
	n := 0
	for _, c := range cmds {
		if _, ok := c.(T); ok {
			n++
		}
	}
	return n
}

func geometry(t *testing.T, d *Dispatcher, id display.WindowID) display.Rect {
	t.Helper()
	w, ok := d.State().Registry().Get(id)
	if !ok {
		t.Fatalf("window %d not registered", id)
	}
	return w.Geometry
}

func TestStartAdvertisesGroups(t *testing.T) {
	d, _ := newTestDispatcher(t, "A", "B")
	cmds := d.Start()
	if !contains(cmds, display.SetWindowProperty{Hint: display.HintDesktopNames, Names: []string{"A", "B"}}) {
		t.Fatalf("desktop names not advertised: %v", cmds)
	}
	if !contains(cmds, display.SetWindowProperty{Hint: display.HintCurrentDesktop, Value: 0}) {
		t.Fatalf("current desktop not advertised: %v", cmds)
	}
}

func TestNewWindowIsManagedMappedAndFocused(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	cmds := d.Handle(display.NewWindow{ID: 1, Geometry: display.Rect{Width: 100, Height: 100}})

	want := []display.Command{
		display.SetWindowProperty{ID: 1, Hint: display.HintDesktop, Value: 0},
		display.SetWindowProperty{Hint: display.HintClientList, Windows: []display.WindowID{1}},
		display.ConfigureWindow{ID: 1, Rect: screen},
		display.MapWindow{ID: 1},
		display.RaiseWindow{ID: 1},
		display.SetInputFocus{ID: 1},
		display.SetWindowProperty{Hint: display.HintActiveWindow, Windows: []display.WindowID{1}},
	}
	if !reflect.DeepEqual(cmds, want) {
		t.Fatalf("commands =\n%v\nwant\n%v", cmds, want)
	}
	w, _ := d.State().Registry().Get(1)
	if !w.Mapped || w.Group != 0 {
		t.Fatalf("window record = %+v", w)
	}
}

func TestTiledScenarioThreeWindows(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1, 2, 3)
	want := map[display.WindowID]display.Rect{
		1: {X: 0, Y: 0, Width: 1200, Height: 300},
		2: {X: 0, Y: 300, Width: 1200, Height: 300},
		3: {X: 0, Y: 600, Width: 1200, Height: 300},
	}
	for id, r := range want {
		if got := geometry(t, d, id); got != r {
			t.Fatalf("window %d geometry = %v, want %v", id, got, r)
		}
	}
}

func TestArrangeOnlyConfiguresChangedWindows(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1)
	cmds := d.Handle(display.NewWindow{ID: 2})
	if contains(cmds, display.MapWindow{ID: 1}) {
		t.Fatalf("window 1 was mapped again: %v", cmds)
	}
	if !contains(cmds, display.ConfigureWindow{ID: 1, Rect: display.Rect{Width: 1200, Height: 450}}) {
		t.Fatalf("window 1 not shrunk: %v", cmds)
	}

	// Focus change alone leaves geometry untouched.
	cmds = d.Handle(display.KeyPress{Modifiers: uint16(keys.Mod4), Key: "j"})
	if n := countType[display.ConfigureWindow](cmds); n != 0 {
		t.Fatalf("focus change emitted %d configure commands: %v", n, cmds)
	}
	if !contains(cmds, display.SetInputFocus{ID: 1}) || !contains(cmds, display.RaiseWindow{ID: 1}) {
		t.Fatalf("focus change did not raise and focus window 1: %v", cmds)
	}
}

func TestSwitchGroupScenario(t *testing.T) {
	d, _ := newTestDispatcher(t, "A", "B")
	newWindows(d, 3)
	d.Do(action.Action{Kind: action.MoveFocusedToGroup, Group: 1})
	newWindows(d, 1, 2)

	cmds := d.Do(action.Action{Kind: action.SwitchGroup, Group: 1})

	for _, want := range []display.Command{
		display.UnmapWindow{ID: 1},
		display.UnmapWindow{ID: 2},
		display.ConfigureWindow{ID: 3, Rect: screen},
		display.MapWindow{ID: 3},
		display.RaiseWindow{ID: 3},
		display.SetInputFocus{ID: 3},
		display.SetWindowProperty{Hint: display.HintCurrentDesktop, Value: 1},
	} {
		if !contains(cmds, want) {
			t.Fatalf("missing %v in %v", want, cmds)
		}
	}
	if indexOf(cmds, display.UnmapWindow{ID: 2}) > indexOf(cmds, display.MapWindow{ID: 3}) {
		t.Fatalf("old group must be hidden before the new one is shown: %v", cmds)
	}
	if d.State().ActiveGroup().Name() != "B" {
		t.Fatalf("active group = %q, want B", d.State().ActiveGroup().Name())
	}
	for _, id := range []display.WindowID{1, 2} {
		if w, _ := d.State().Registry().Get(id); w.Mapped {
			t.Fatalf("window %d still marked mapped", id)
		}
	}
}

func TestSwitchToActiveGroupIsNoop(t *testing.T) {
	d, _ := newTestDispatcher(t, "A", "B")
	newWindows(d, 1, 2)
	if cmds := d.Do(action.Action{Kind: action.SwitchGroup, Group: 0}); len(cmds) != 0 {
		t.Fatalf("expected no commands, got %v", cmds)
	}
}

func TestSwitchToMissingGroupIsNoop(t *testing.T) {
	d, _ := newTestDispatcher(t, "A", "B")
	newWindows(d, 1)
	if cmds := d.Do(action.Action{Kind: action.SwitchGroup, Group: 7}); len(cmds) != 0 {
		t.Fatalf("expected no commands, got %v", cmds)
	}
	if d.State().Active() != 0 {
		t.Fatalf("active group changed")
	}
}

func TestMoveFocusedToOwnGroupIsNoop(t *testing.T) {
	d, _ := newTestDispatcher(t, "A", "B")
	newWindows(d, 1, 2)
	before := d.Status()
	if cmds := d.Do(action.Action{Kind: action.MoveFocusedToGroup, Group: 0}); len(cmds) != 0 {
		t.Fatalf("expected no commands, got %v", cmds)
	}
	if !reflect.DeepEqual(before, d.Status()) {
		t.Fatalf("state changed:\n%+v\n%+v", before, d.Status())
	}
}

func TestMoveFocusedHidesWindow(t *testing.T) {
	d, _ := newTestDispatcher(t, "A", "B")
	newWindows(d, 1, 2)
	cmds := d.Do(action.Action{Kind: action.MoveFocusedToGroup, Group: 1})
	if !contains(cmds, display.UnmapWindow{ID: 2}) {
		t.Fatalf("moved window not unmapped: %v", cmds)
	}
	if !contains(cmds, display.SetWindowProperty{ID: 2, Hint: display.HintDesktop, Value: 1}) {
		t.Fatalf("desktop property not updated: %v", cmds)
	}
	if !contains(cmds, display.ConfigureWindow{ID: 1, Rect: screen}) || !contains(cmds, display.SetInputFocus{ID: 1}) {
		t.Fatalf("remaining window not re-laid out and focused: %v", cmds)
	}
	w, _ := d.State().Registry().Get(2)
	if w.Group != 1 || w.Mapped {
		t.Fatalf("moved window record = %+v", w)
	}
}

func TestShuffleUpKeyScenario(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1, 2, 3)
	d.Handle(display.FocusRequest{ID: 2})

	cmds := d.Handle(display.KeyPress{Modifiers: uint16(keys.Mod4 | keys.Shift), Key: "k"})

	g := d.State().ActiveGroup()
	if got := g.Windows(); !reflect.DeepEqual(got, []display.WindowID{2, 1, 3}) {
		t.Fatalf("stack = %v, want [2 1 3]", got)
	}
	if g.Focused() != 2 || g.Stack().FocusedIndex() != 0 {
		t.Fatalf("focus = %d at %d, want 2 at 0", g.Focused(), g.Stack().FocusedIndex())
	}
	if !contains(cmds, display.ConfigureWindow{ID: 2, Rect: display.Rect{Width: 1200, Height: 300}}) {
		t.Fatalf("window 2 not moved to the top band: %v", cmds)
	}
}

func TestUnboundKeyIsNoop(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1)
	if cmds := d.Handle(display.KeyPress{Modifiers: 0, Key: "x"}); len(cmds) != 0 {
		t.Fatalf("expected no commands, got %v", cmds)
	}
}

func TestWindowGoneUnknownIsIgnored(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1, 2)
	before := d.Status()
	if cmds := d.Handle(display.WindowGone{ID: 99}); len(cmds) != 0 {
		t.Fatalf("expected no commands, got %v", cmds)
	}
	if !reflect.DeepEqual(before, d.Status()) {
		t.Fatalf("state changed")
	}
}

func TestWindowGoneRelayoutsActiveGroup(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1, 2, 3)
	cmds := d.Handle(display.WindowGone{ID: 3})
	if d.State().Registry().Contains(3) {
		t.Fatalf("window 3 still registered")
	}
	if !contains(cmds, display.ConfigureWindow{ID: 2, Rect: display.Rect{Y: 450, Width: 1200, Height: 450}}) {
		t.Fatalf("remaining windows not re-laid out: %v", cmds)
	}
	if !contains(cmds, display.SetInputFocus{ID: 2}) {
		t.Fatalf("focus did not move to the new last window: %v", cmds)
	}
}

func TestWindowGoneInBackgroundGroup(t *testing.T) {
	d, _ := newTestDispatcher(t, "A", "B")
	newWindows(d, 1, 2)
	d.Do(action.Action{Kind: action.MoveFocusedToGroup, Group: 1})

	cmds := d.Handle(display.WindowGone{ID: 2})
	if d.State().Registry().Contains(2) {
		t.Fatalf("window 2 still registered")
	}
	if len(d.State().Groups()[1].Windows()) != 0 {
		t.Fatalf("window 2 still stacked in group B")
	}
	if countType[display.ConfigureWindow](cmds) != 0 || countType[display.SetInputFocus](cmds) != 0 {
		t.Fatalf("background removal re-laid out the active group: %v", cmds)
	}
}

func TestCommandFailedRemovesWindow(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1, 2)
	d.Handle(display.CommandFailed{ID: 2, Err: errors.New("BadWindow")})
	if d.State().Registry().Contains(2) {
		t.Fatalf("stale window still registered")
	}
	if cmds := d.Handle(display.CommandFailed{ID: 2, Err: errors.New("BadWindow")}); len(cmds) != 0 {
		t.Fatalf("second failure for the same window emitted %v", cmds)
	}
}

func TestWindowSnapshotDropsStaleWindows(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1, 2, 3)
	d.Handle(display.WindowSnapshot{IDs: []display.WindowID{1, 3, 40}, Generation: d.Generation()})
	if got := d.State().Registry().IDs(); !reflect.DeepEqual(got, []display.WindowID{1, 3}) {
		t.Fatalf("registry = %v, want [1 3]", got)
	}
}

func TestWindowSnapshotKeepsWindowsAdoptedAfterIt(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1)

	// The list was read before window 2 and the dock appeared.
	gen := d.Generation()
	newWindows(d, 2)
	d.Handle(display.NewWindow{ID: 50, Kind: display.KindDock, Strut: display.Strut{Top: 30}})

	d.Handle(display.WindowSnapshot{Generation: gen})
	if got := d.State().Registry().IDs(); !reflect.DeepEqual(got, []display.WindowID{2}) {
		t.Fatalf("registry = %v, want [2]", got)
	}
	if got := d.State().ActiveGroup().Windows(); !reflect.DeepEqual(got, []display.WindowID{2}) {
		t.Fatalf("group windows = %v, want [2]", got)
	}
	if got := d.Status().Docks; got != 1 {
		t.Fatalf("docks = %d, want 1", got)
	}

	// A later snapshot that still lacks window 2 removes it.
	d.Handle(display.WindowSnapshot{Generation: d.Generation()})
	if d.State().Registry().Len() != 0 || d.Status().Docks != 0 {
		t.Fatalf("stale windows survived a current snapshot: %+v", d.Status())
	}
}

func TestDockShrinksViewport(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1)
	cmds := d.Handle(display.NewWindow{ID: 50, Kind: display.KindDock, Strut: display.Strut{Top: 30}})
	if !contains(cmds, display.MapWindow{ID: 50}) {
		t.Fatalf("dock not mapped: %v", cmds)
	}
	if d.State().Registry().Contains(50) {
		t.Fatalf("dock entered the registry")
	}
	if got := geometry(t, d, 1); got != (display.Rect{Y: 30, Width: 1200, Height: 870}) {
		t.Fatalf("window 1 = %v, want below the dock", got)
	}

	d.Handle(display.WindowGone{ID: 50})
	if got := geometry(t, d, 1); got != screen {
		t.Fatalf("window 1 = %v after dock left, want %v", got, screen)
	}
}

func TestConfigureRequest(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1)
	cmds := d.Handle(display.ConfigureRequest{ID: 1, Geometry: display.Rect{Width: 10, Height: 10}})
	if !reflect.DeepEqual(cmds, []display.Command{display.ConfigureWindow{ID: 1, Rect: screen}}) {
		t.Fatalf("managed window should keep its layout geometry, got %v", cmds)
	}

	req := display.Rect{X: 5, Y: 5, Width: 300, Height: 200}
	cmds = d.Handle(display.ConfigureRequest{ID: 9, Geometry: req})
	if !reflect.DeepEqual(cmds, []display.Command{display.ConfigureWindow{ID: 9, Rect: req}}) {
		t.Fatalf("unmanaged window should get its request, got %v", cmds)
	}
}

func TestScreenChangeForcesRelayout(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1, 2)
	region := display.Rect{Width: 800, Height: 600}
	cmds := d.Handle(display.ScreenGeometryChanged{Region: region})
	if countType[display.ConfigureWindow](cmds) != 2 {
		t.Fatalf("expected both windows configured, got %v", cmds)
	}
	if got := geometry(t, d, 2); got != (display.Rect{Y: 300, Width: 800, Height: 300}) {
		t.Fatalf("window 2 = %v", got)
	}
	if d.Status().Screen != region {
		t.Fatalf("screen not stored")
	}
}

func TestCycleLayout(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1, 2)
	d.Do(action.Action{Kind: action.CycleLayout})
	if d.State().ActiveGroup().Layout().Name() != "maximize" {
		t.Fatalf("layout = %q", d.State().ActiveGroup().Layout().Name())
	}
	for _, id := range []display.WindowID{1, 2} {
		if got := geometry(t, d, id); got != screen {
			t.Fatalf("window %d = %v under maximize", id, got)
		}
	}
	d.Do(action.Action{Kind: action.PreviousLayout})
	if d.State().ActiveGroup().Layout().Name() != "tiled" {
		t.Fatalf("previous layout = %q", d.State().ActiveGroup().Layout().Name())
	}
}

func TestSpawn(t *testing.T) {
	d, launcher := newTestDispatcher(t, "A")
	if cmds := d.Handle(display.KeyPress{Modifiers: uint16(keys.Mod4), Key: "Return"}); len(cmds) != 0 {
		t.Fatalf("spawn emitted commands: %v", cmds)
	}
	if !reflect.DeepEqual(launcher.calls, []string{"xterm"}) {
		t.Fatalf("launcher calls = %v", launcher.calls)
	}

	launcher.err = errors.New("not found")
	if cmds := d.Do(action.Action{Kind: action.Spawn, Command: "nope"}); len(cmds) != 0 {
		t.Fatalf("failed spawn emitted commands: %v", cmds)
	}
}

func TestCloseFocused(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	if cmds := d.Do(action.Action{Kind: action.CloseFocused}); len(cmds) != 0 {
		t.Fatalf("close with no windows emitted %v", cmds)
	}
	newWindows(d, 1, 2)
	cmds := d.Do(action.Action{Kind: action.CloseFocused})
	if !reflect.DeepEqual(cmds, []display.Command{display.CloseWindow{ID: 2}}) {
		t.Fatalf("commands = %v", cmds)
	}
	if !d.State().Registry().Contains(2) {
		t.Fatalf("window must stay managed until the server reports it gone")
	}
}

func TestQuit(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	d.Do(action.Action{Kind: action.Quit})
	if !d.Quitting() {
		t.Fatalf("expected Quitting after quit action")
	}
}

func TestCustomAction(t *testing.T) {
	d, _ := newTestDispatcher(t, "A", "B")
	newWindows(d, 1)
	var sawGroup int
	cmds := d.Do(action.Action{Kind: action.Custom, Handler: func(c action.Controller) {
		sawGroup = c.ActiveGroup()
		if id, ok := c.Focused(); !ok || id != 1 {
			t.Errorf("Focused() = %d,%v", id, ok)
		}
		c.Do(action.Action{Kind: action.SwitchGroup, Group: 1})
	}})
	if sawGroup != 0 {
		t.Fatalf("handler saw group %d", sawGroup)
	}
	if !contains(cmds, display.UnmapWindow{ID: 1}) {
		t.Fatalf("nested action commands missing: %v", cmds)
	}
}

func TestFocusRequest(t *testing.T) {
	d, _ := newTestDispatcher(t, "A", "B")
	newWindows(d, 1, 2)
	if cmds := d.Handle(display.FocusRequest{ID: 2}); len(cmds) != 0 {
		t.Fatalf("focusing the focused window emitted %v", cmds)
	}
	cmds := d.Handle(display.FocusRequest{ID: 1})
	if !contains(cmds, display.SetInputFocus{ID: 1}) {
		t.Fatalf("focus request not honoured: %v", cmds)
	}
	d.Do(action.Action{Kind: action.MoveFocusedToGroup, Group: 1})
	if cmds := d.Handle(display.FocusRequest{ID: 1}); len(cmds) != 0 {
		t.Fatalf("focus request for background window emitted %v", cmds)
	}
}

func TestRemapOfManagedWindowFocusesIt(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1, 2)
	cmds := d.Handle(display.NewWindow{ID: 1})
	if !contains(cmds, display.SetInputFocus{ID: 1}) {
		t.Fatalf("re-mapped window not focused: %v", cmds)
	}
	if d.State().Registry().Len() != 2 {
		t.Fatalf("window registered twice")
	}
}

func TestUrgency(t *testing.T) {
	d, _ := newTestDispatcher(t, "A")
	newWindows(d, 1, 2)
	d.Handle(display.UrgencyChanged{ID: 1, Urgent: true})
	if got := d.Status().Urgent; !reflect.DeepEqual(got, []display.WindowID{1}) {
		t.Fatalf("urgent = %v", got)
	}
	d.Handle(display.UrgencyChanged{ID: 1, Urgent: false})
	if len(d.Status().Urgent) != 0 {
		t.Fatalf("urgency not cleared")
	}
}

func TestStrictModePanicsOnInvariantViolation(t *testing.T) {
	d, _ := newTestDispatcher(t, "A", "B")
	newWindows(d, 1)
	d.State().Groups()[1].Stack().Insert(1)
	defer func() {
		r := recover()
		var inv *state.InvariantError
		err, _ := r.(error)
		if !errors.As(err, &inv) {
			t.Fatalf("expected InvariantError panic, got %v", r)
		}
	}()
	d.Handle(display.WindowGone{ID: 99})
}

func TestLenientModeKeepsRunning(t *testing.T) {
	d, _ := newTestDispatcher(t, "A", "B")
	d.strict = false
	newWindows(d, 1)
	d.State().Groups()[1].Stack().Insert(1)
	d.Handle(display.WindowGone{ID: 99})
}

func TestStatus(t *testing.T) {
	d, _ := newTestDispatcher(t, "A", "B")
	newWindows(d, 1, 2)
	st := d.Status()
	if st.ActiveGroup != 0 || len(st.Groups) != 2 || st.Managed != 2 {
		t.Fatalf("status = %+v", st)
	}
	a := st.Groups[0]
	if !a.Active || a.Layout != "tiled" || a.Focused != 2 || !reflect.DeepEqual(a.Windows, []display.WindowID{1, 2}) {
		t.Fatalf("group A status = %+v", a)
	}
	if !reflect.DeepEqual(a.Layouts, []string{"tiled", "maximize"}) {
		t.Fatalf("layouts = %v", a.Layouts)
	}
}

func TestRandomEventsKeepStateConsistent(t *testing.T) {
	d, _ := newTestDispatcher(t, "A", "B", "C")
	rng := rand.New(rand.NewSource(42))
	kinds := []action.Kind{
		action.SwitchGroup, action.MoveFocusedToGroup, action.FocusNext, action.FocusPrevious,
		action.ShuffleUp, action.ShuffleDown, action.CycleLayout, action.PreviousLayout, action.CloseFocused,
	}
	for i := 0; i < 4000; i++ {
		id := display.WindowID(rng.Intn(15) + 1)
		switch rng.Intn(8) {
		case 0, 1:
			d.Handle(display.NewWindow{ID: id})
		case 2:
			d.Handle(display.WindowGone{ID: id})
		case 3:
			d.Handle(display.CommandFailed{ID: id})
		case 4:
			d.Handle(display.FocusRequest{ID: id})
		default:
			d.Do(action.Action{Kind: kinds[rng.Intn(len(kinds))], Group: rng.Intn(4)})
		}
		// Every window of the active group is mapped; every other one is not.
		for gi, g := range d.State().Groups() {
			for _, wid := range g.Windows() {
				w, _ := d.State().Registry().Get(wid)
				if w.Mapped != (gi == d.State().Active()) {
					t.Fatalf("step %d: window %d in group %d mapped=%v, active=%d", i, wid, gi, w.Mapped, d.State().Active())
				}
			}
		}
	}
}
