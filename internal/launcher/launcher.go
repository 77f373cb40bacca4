// Package launcher starts external programs on behalf of the window manager.
package launcher

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// LaunchError reports a program that could not be started.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %q: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Launcher starts processes in their own session so they outlive the
// window manager. It never waits for them beyond reaping.
type Launcher struct {
	logger *slog.Logger
	env    []string
}

// New creates a launcher. env is appended to the inherited environment.
func New(logger *slog.Logger, env ...string) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{logger: logger, env: env}
}

// Spawn starts command with args. When args is empty, command is split on
// whitespace so "xterm -e top" works as a single config string.
func (l *Launcher) Spawn(command string, args []string) error {
	argv := append([]string{command}, args...)
	if len(args) == 0 {
		argv = strings.Fields(command)
	}
	if len(argv) == 0 || argv[0] == "" {
		return &LaunchError{Command: command, Err: fmt.Errorf("empty command")}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if len(l.env) > 0 {
		cmd.Env = append(os.Environ(), l.env...)
	}

	if err := cmd.Start(); err != nil {
		return &LaunchError{Command: command, Err: err}
	}
	l.logger.Info("spawned", "command", argv[0], "pid", cmd.Process.Pid)

	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.Debug("spawned process exited", "command", argv[0], "err", err)
		}
	}()
	return nil
}
