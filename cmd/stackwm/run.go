package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/daemon"
	"github.com/1broseidon/stackwm/internal/dispatch"
	"github.com/1broseidon/stackwm/internal/display"
	"github.com/1broseidon/stackwm/internal/group"
	"github.com/1broseidon/stackwm/internal/ipc"
	"github.com/1broseidon/stackwm/internal/launcher"
	"github.com/1broseidon/stackwm/internal/runtimepath"
	"github.com/1broseidon/stackwm/internal/state"
	"github.com/1broseidon/stackwm/internal/tiling"
	"github.com/1broseidon/stackwm/internal/x11"
)

const strictEnv = "STACKWM_STRICT"

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/stackwm/config.yaml)")
	strict := fs.Bool("strict", false, "Panic on state invariant violations")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: stackwm run [--config PATH] [--strict]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the window manager in the foreground until quit, SIGINT or SIGTERM.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config
	if *strict || os.Getenv(strictEnv) == "1" {
		cfg.Strict = true
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeLog()
	slog.SetDefault(logger)

	if res.File != "" {
		logger.Info("configuration loaded", "file", res.File, "groups", len(cfg.Groups))
	} else {
		logger.Info("no configuration file, using defaults", "groups", len(cfg.Groups))
	}

	if err := serve(cfg, logger); err != nil {
		logger.Error("window manager stopped", "error", err)
		return 1
	}
	return 0
}

// serve runs the window manager until it quits or is signalled.
func serve(cfg *config.Config, logger *slog.Logger) error {
	manager, err := buildManager(cfg)
	if err != nil {
		return err
	}
	table, err := cfg.KeyTable()
	if err != nil {
		return err
	}

	conn, err := x11.Open(x11.Options{
		Keys:              table.Combos(),
		FocusFollowsMouse: cfg.FocusFollowsMouse,
		Screen:            screenOverride(cfg.Screen),
		Logger:            logger.With("component", "x11"),
	})
	if errors.Is(err, x11.ErrOtherWM) {
		return fmt.Errorf("cannot start: %w", err)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return err
	}

	disp := dispatch.New(manager, dispatch.Options{
		Screen:   conn.Screen(),
		Keys:     table,
		Launcher: launcher.New(logger.With("component", "launcher"), runtimepath.SocketEnv+"="+socketPath),
		Logger:   logger.With("component", "dispatch"),
		Strict:   cfg.Strict,
	})
	d := daemon.New(conn, disp, logger.With("component", "daemon"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-hup:
				logger.Info("SIGHUP ignored, configuration is only read at start-up")
			case <-ctx.Done():
				return
			}
		}
	}()

	server := ipc.NewServer(socketPath, d, logger.With("component", "ipc"))
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	if cfg.ReconcileIntervalSeconds > 0 {
		reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
			Interval: time.Duration(cfg.ReconcileIntervalSeconds) * time.Second,
			Logger:   logger.With("component", "reconciler"),
		}, conn, d)
		go reconciler.Run(ctx)
	}

	logger.Info("stackwm started", "screen", conn.Screen(), "socket", socketPath)
	err = d.Run(ctx)
	logger.Info("stackwm stopping")
	return err
}

// buildManager creates the configured groups, each with its layouts in
// declaration order.
func buildManager(cfg *config.Config) (*state.Manager, error) {
	groups := make([]*group.Group, 0, len(cfg.Groups))
	for _, g := range cfg.Groups {
		layouts := make([]tiling.Layout, 0, len(g.Layouts))
		for _, name := range g.Layouts {
			def, err := cfg.Layout(name)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", g.Name, err)
			}
			l, err := tiling.New(name, def)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", g.Name, err)
			}
			layouts = append(layouts, l)
		}
		groups = append(groups, group.New(g.Name, layouts...))
	}
	return state.NewManager(groups...)
}

func screenOverride(r *config.Region) *display.Rect {
	if r == nil {
		return nil
	}
	return &display.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// newLogger writes text logs to stderr and, when log_file is set, appends
// them to that file too.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	var out io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
		closeFn = func() { f.Close() }
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	return slog.New(handler), closeFn, nil
}
