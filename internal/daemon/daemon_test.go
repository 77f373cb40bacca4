package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/dispatch"
	"github.com/1broseidon/stackwm/internal/display"
	"github.com/1broseidon/stackwm/internal/group"
	"github.com/1broseidon/stackwm/internal/state"
	"github.com/1broseidon/stackwm/internal/tiling"
)

type fakeConn struct {
	events chan display.Event

	mu      sync.Mutex
	batches [][]display.Command
}

func newFakeConn() *fakeConn {
	// Unbuffered so that a send returns only once the loop has taken the
	// event; the next request is then handled after it.
	return &fakeConn{events: make(chan display.Event)}
}

func (c *fakeConn) Events() <-chan display.Event { return c.events }

func (c *fakeConn) Apply(cmds []display.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, cmds)
	return nil
}

func (c *fakeConn) Close() {}

func (c *fakeConn) applied() [][]display.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]display.Command(nil), c.batches...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDaemon(t *testing.T, names ...string) (*Daemon, *fakeConn) {
	t.Helper()
	builtin := config.BuiltinLayouts()
	groups := make([]*group.Group, len(names))
	for i, n := range names {
		tiled, err := tiling.New("tiled", builtin["tiled"])
		if err != nil {
			t.Fatalf("tiled: %v", err)
		}
		groups[i] = group.New(n, tiled)
	}
	m, err := state.NewManager(groups...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	disp := dispatch.New(m, dispatch.Options{
		Screen: display.Rect{Width: 1200, Height: 900},
		Logger: discardLogger(),
		Strict: true,
	})
	conn := newFakeConn()
	return New(conn, disp, discardLogger()), conn
}

func run(t *testing.T, d *Daemon, ctx context.Context) <-chan error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()
	return errc
}

func wait(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestRunHandlesEventsAndRequests(t *testing.T) {
	d, conn := newTestDaemon(t, "web", "code")
	ctx := context.Background()
	errc := run(t, d, ctx)

	conn.events <- display.NewWindow{ID: 1}
	conn.events <- display.NewWindow{ID: 2}

	st, err := d.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Managed != 2 || st.ActiveGroup != 0 {
		t.Fatalf("unexpected status: %+v", st)
	}
	if got := st.Groups[0].Windows; !reflect.DeepEqual(got, []display.WindowID{1, 2}) {
		t.Fatalf("group windows = %v", got)
	}
	if st.Groups[0].Focused != 2 {
		t.Fatalf("focused = %d, want 2", st.Groups[0].Focused)
	}

	if err := d.Action(ctx, []string{"switch-group", "2"}); err != nil {
		t.Fatalf("switch-group: %v", err)
	}
	st, _ = d.Status(ctx)
	if st.ActiveGroup != 1 {
		t.Fatalf("active group = %d, want 1", st.ActiveGroup)
	}

	if err := d.Action(ctx, []string{"quit"}); err != nil {
		t.Fatalf("quit: %v", err)
	}
	if err := wait(t, errc); err != nil {
		t.Fatalf("Run returned %v after quit", err)
	}

	batches := conn.applied()
	if len(batches) < 4 {
		t.Fatalf("expected start, two manage and one switch batch, got %d", len(batches))
	}
	if _, ok := batches[0][0].(display.SetWindowProperty); !ok {
		t.Fatalf("first batch should advertise groups, got %v", batches[0])
	}
}

func TestActionErrors(t *testing.T) {
	d, _ := newTestDaemon(t, "web", "code")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	run(t, d, ctx)

	if err := d.Action(ctx, []string{"switch-group", "5"}); !errors.Is(err, state.ErrNoSuchGroup) {
		t.Fatalf("expected ErrNoSuchGroup, got %v", err)
	}
	if err := d.Action(ctx, []string{"move-to-group", "2"}); !errors.Is(err, state.ErrNoFocusedWindow) {
		t.Fatalf("expected ErrNoFocusedWindow, got %v", err)
	}
	if err := d.Action(ctx, []string{"close-window"}); !errors.Is(err, state.ErrNoFocusedWindow) {
		t.Fatalf("expected ErrNoFocusedWindow, got %v", err)
	}
	if err := d.Action(ctx, []string{"no-such-action"}); err == nil {
		t.Fatal("expected error for unknown action")
	}
	if err := d.Action(ctx, nil); err == nil {
		t.Fatal("expected error for empty action")
	}
	// Nothing is focused, so focus-next is a successful no-op.
	if err := d.Action(ctx, []string{"focus-next"}); err != nil {
		t.Fatalf("focus-next: %v", err)
	}
}

func TestRunConnectionClosed(t *testing.T) {
	d, conn := newTestDaemon(t, "web")
	errc := run(t, d, context.Background())

	close(conn.events)
	if err := wait(t, errc); !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("expected ErrConnectionClosed, got %v", err)
	}
	if _, err := d.Status(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after the loop ended, got %v", err)
	}
	if err := d.Post(context.Background(), display.WindowSnapshot{}); !errors.Is(err, ErrStopped) && err != nil {
		t.Fatalf("unexpected Post error: %v", err)
	}
}

func TestRunContextCancelled(t *testing.T) {
	d, _ := newTestDaemon(t, "web")
	ctx, cancel := context.WithCancel(context.Background())
	errc := run(t, d, ctx)

	cancel()
	if err := wait(t, errc); err != nil {
		t.Fatalf("expected nil on cancellation, got %v", err)
	}
}

func TestRequestContextExpires(t *testing.T) {
	d, _ := newTestDaemon(t, "web")
	// The loop is never started, so the request cannot be delivered.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := d.Status(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestPostedSnapshotRemovesStaleWindows(t *testing.T) {
	d, conn := newTestDaemon(t, "web")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	run(t, d, ctx)

	conn.events <- display.NewWindow{ID: 1}
	conn.events <- display.NewWindow{ID: 2}

	gen, err := d.Generation(ctx)
	if err != nil {
		t.Fatalf("Generation: %v", err)
	}
	if err := d.Post(ctx, display.WindowSnapshot{IDs: []display.WindowID{2}, Generation: gen}); err != nil {
		t.Fatalf("Post: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		st, err := d.Status(ctx)
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if st.Managed == 1 {
			if got := st.Groups[0].Windows; !reflect.DeepEqual(got, []display.WindowID{2}) {
				t.Fatalf("windows after snapshot = %v", got)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("snapshot was not applied, status %+v", st)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSnapshotOlderThanWindowKeepsIt(t *testing.T) {
	d, conn := newTestDaemon(t, "web")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	run(t, d, ctx)

	// The window list is read while nothing is managed yet.
	gen, err := d.Generation(ctx)
	if err != nil {
		t.Fatalf("Generation: %v", err)
	}
	conn.events <- display.NewWindow{ID: 7}
	if err := d.Post(ctx, display.WindowSnapshot{Generation: gen}); err != nil {
		t.Fatalf("Post: %v", err)
	}

	conn.events <- display.NewWindow{ID: 8}

	// Once the snapshot has left the queue, the next request is answered
	// after it has been handled.
	deadline := time.Now().Add(5 * time.Second)
	for len(d.posted) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("snapshot was not taken by the loop")
		}
		time.Sleep(time.Millisecond)
	}
	st, err := d.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Managed != 2 {
		t.Fatalf("managed after stale snapshot = %d, want 2", st.Managed)
	}
	if got := st.Groups[0].Windows; !reflect.DeepEqual(got, []display.WindowID{7, 8}) {
		t.Fatalf("windows after stale snapshot = %v, want [7 8]", got)
	}
}

func TestSubmitReportsSuccessOnceAccepted(t *testing.T) {
	d, _ := newTestDaemon(t, "web")
	loopCtx, stop := context.WithCancel(context.Background())
	defer stop()
	run(t, d, loopCtx)

	ctx, cancel := context.WithCancel(context.Background())
	ran := false
	err := d.submit(ctx, func() {
		// The caller gives up while the request is being handled.
		cancel()
		time.Sleep(10 * time.Millisecond)
		ran = true
	})
	if err != nil {
		t.Fatalf("submit = %v, want nil for a request that ran", err)
	}
	if !ran {
		t.Fatal("request did not run")
	}
}
