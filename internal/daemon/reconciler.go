package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/stackwm/internal/display"
)

// Snapshotter lists the top-level windows the display server has.
type Snapshotter interface {
	Snapshot() ([]display.WindowID, error)
}

// Loop is the event loop a reconciler reports to. *Daemon implements it.
type Loop interface {
	// Generation returns the adoption generation of the dispatcher.
	Generation(ctx context.Context) (uint64, error)
	// Post queues an event into the loop.
	Post(ctx context.Context, ev display.Event) error
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks for state drift and corrects it. Windows
// that vanished without a notification are found by comparing the server's
// window list with the registry inside the event loop.
type Reconciler struct {
	interval time.Duration
	source   Snapshotter
	loop     Loop
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, source Snapshotter, loop Loop) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		source:   source,
		loop:     loop,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile(ctx context.Context) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	// The generation is read first: anything adopted after it may be newer
	// than the window list and is left alone.
	gen, err := r.loop.Generation(ctx)
	if err != nil {
		r.logger.Debug("reconciler: event loop unavailable", "error", err)
		return
	}

	ids, err := r.source.Snapshot()
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return
	}

	if err := r.loop.Post(ctx, display.WindowSnapshot{IDs: ids, Generation: gen}); err != nil {
		r.logger.Debug("reconciler: snapshot not delivered", "error", err)
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) {
	r.reconcile(ctx)
}
