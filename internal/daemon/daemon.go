// Package daemon runs the window manager's event loop. One goroutine owns
// the dispatcher: display events, reconciler snapshots and control requests
// all reach it through channels and are handled one at a time.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/stackwm/internal/action"
	"github.com/1broseidon/stackwm/internal/dispatch"
	"github.com/1broseidon/stackwm/internal/display"
	"github.com/1broseidon/stackwm/internal/state"
)

var (
	// ErrConnectionClosed is returned by Run when the display connection
	// ends before a quit was requested.
	ErrConnectionClosed = errors.New("display connection closed")
	// ErrStopped is returned to callers whose request arrives after the
	// event loop has returned.
	ErrStopped = errors.New("event loop stopped")
)

type request struct {
	run  func()
	done chan struct{}
}

// Daemon feeds a dispatcher from a display connection.
type Daemon struct {
	conn   display.Connection
	disp   *dispatch.Dispatcher
	logger *slog.Logger

	requests chan request
	posted   chan display.Event
	stopped  chan struct{}
}

// New creates a daemon. Run must be called to start handling events.
func New(conn display.Connection, disp *dispatch.Dispatcher, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		conn:     conn,
		disp:     disp,
		logger:   logger,
		requests: make(chan request),
		posted:   make(chan display.Event, 16),
		stopped:  make(chan struct{}),
	}
}

// Run handles events until a Quit action is applied, the connection closes
// or ctx is cancelled. A quit or cancellation returns nil.
func (d *Daemon) Run(ctx context.Context) error {
	defer close(d.stopped)

	d.apply(d.disp.Start())
	events := d.conn.Events()
	d.logger.Info("event loop started")

	for !d.disp.Quitting() {
		select {
		case <-ctx.Done():
			d.logger.Info("event loop stopped", "reason", context.Cause(ctx))
			return nil
		case ev, ok := <-events:
			if !ok {
				return ErrConnectionClosed
			}
			d.handle(ev)
		case ev := <-d.posted:
			d.handle(ev)
		case req := <-d.requests:
			req.run()
			close(req.done)
		}
	}
	d.logger.Info("quit requested")
	return nil
}

func (d *Daemon) handle(ev display.Event) {
	d.logger.Debug("event", "event", ev.String())
	d.apply(d.disp.Handle(ev))
}

func (d *Daemon) apply(cmds []display.Command) {
	if len(cmds) == 0 {
		return
	}
	d.logger.Debug("applying commands", "count", len(cmds))
	if err := d.conn.Apply(cmds); err != nil {
		d.logger.Error("failed to apply commands", "error", err)
	}
}

// submit runs fn inside the event loop and waits for it to finish. ctx
// bounds the wait for the loop to accept the request.
func (d *Daemon) submit(ctx context.Context, fn func()) error {
	req := request{run: fn, done: make(chan struct{})}
	select {
	case d.requests <- req:
	case <-d.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// The loop has taken the request and will finish it; only the loop
	// ending can cut the wait short.
	select {
	case <-req.done:
		return nil
	case <-d.stopped:
		return ErrStopped
	}
}

// Post queues an event as if it came from the display connection.
func (d *Daemon) Post(ctx context.Context, ev display.Event) error {
	select {
	case d.posted <- ev:
		return nil
	case <-d.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do applies a within the event loop. Group references are checked against
// the configured groups and focus-dependent actions need a focused window.
func (d *Daemon) Do(ctx context.Context, a action.Action) error {
	var runErr error
	err := d.submit(ctx, func() {
		if runErr = d.check(a); runErr != nil {
			return
		}
		d.apply(d.disp.Do(a))
	})
	if err != nil {
		return err
	}
	return runErr
}

func (d *Daemon) check(a action.Action) error {
	m := d.disp.State()
	switch a.Kind {
	case action.SwitchGroup, action.MoveFocusedToGroup:
		if a.Group < 0 || a.Group >= len(m.Groups()) {
			return fmt.Errorf("%w: %d (have %d)", state.ErrNoSuchGroup, a.Group+1, len(m.Groups()))
		}
	}
	switch a.Kind {
	case action.MoveFocusedToGroup, action.CloseFocused:
		if _, ok := m.Focused(); !ok {
			return state.ErrNoFocusedWindow
		}
	}
	return nil
}

// Action parses argv (for example "switch-group 2") and applies it.
func (d *Daemon) Action(ctx context.Context, argv []string) error {
	a, err := action.ParseArgs(argv)
	if err != nil {
		return err
	}
	return d.Do(ctx, a)
}

// Status returns a snapshot taken inside the event loop.
func (d *Daemon) Status(ctx context.Context) (dispatch.Status, error) {
	var st dispatch.Status
	err := d.submit(ctx, func() { st = d.disp.Status() })
	return st, err
}

// Generation returns the dispatcher's adoption generation, read inside the
// event loop.
func (d *Daemon) Generation(ctx context.Context) (uint64, error) {
	var gen uint64
	err := d.submit(ctx, func() { gen = d.disp.Generation() })
	return gen, err
}
