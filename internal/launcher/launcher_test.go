package launcher

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSpawnMissingExecutable(t *testing.T) {
	l := New(quietLogger())
	err := l.Spawn("/nonexistent/stackwm-test-binary", nil)
	var le *LaunchError
	if !errors.As(err, &le) {
		t.Fatalf("expected LaunchError, got %v", err)
	}
	if le.Command != "/nonexistent/stackwm-test-binary" {
		t.Fatalf("unexpected command %q", le.Command)
	}
}

func TestSpawnEmptyCommand(t *testing.T) {
	if err := New(quietLogger()).Spawn("   ", nil); err == nil {
		t.Fatalf("expected error for empty command")
	}
}

func TestSpawnRunsWithoutWaiting(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	marker := filepath.Join(t.TempDir(), "ran")
	l := New(quietLogger(), "STACKWM_MARKER="+marker)
	if err := l.Spawn("sh", []string{"-c", `touch "$STACKWM_MARKER"`}); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(marker); err == nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("spawned process never ran")
}
