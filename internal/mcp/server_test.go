package mcp

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/1broseidon/stackwm/internal/dispatch"
	"github.com/1broseidon/stackwm/internal/display"
)

type fakeController struct {
	calls  [][]string
	err    error
	status *dispatch.Status
}

func (f *fakeController) Action(args ...string) error {
	f.calls = append(f.calls, args)
	return f.err
}

func (f *fakeController) GetStatus() (*dispatch.Status, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.status, nil
}

func TestNewServerRegistersTools(t *testing.T) {
	if s := NewServer(&fakeController{}); s.mcpServer == nil {
		t.Fatal("expected an MCP server")
	}
}

func TestDirectionArgs(t *testing.T) {
	tests := []struct {
		direction string
		want      []string
		wantErr   bool
	}{
		{"", []string{"focus-next"}, false},
		{"next", []string{"focus-next"}, false},
		{"Previous", []string{"focus-previous"}, false},
		{"up", []string{"focus-previous"}, false},
		{"down", []string{"focus-next"}, false},
		{"sideways", nil, true},
	}
	for _, tt := range tests {
		got, err := directionArgs("focus-next", "focus-previous", tt.direction)
		if (err != nil) != tt.wantErr {
			t.Fatalf("directionArgs(%q) error = %v, wantErr %v", tt.direction, err, tt.wantErr)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("directionArgs(%q) = %v, want %v", tt.direction, got, tt.want)
		}
	}
}

func TestToolsForwardActions(t *testing.T) {
	ctx := context.Background()
	ctl := &fakeController{}
	s := NewServer(ctl)

	steps := []struct {
		name string
		call func() (ActionOutput, error)
		want []string
	}{
		{"switch_group", func() (ActionOutput, error) {
			_, out, err := s.handleSwitchGroup(ctx, nil, GroupInput{Group: 3})
			return out, err
		}, []string{"switch-group", "3"}},
		{"move_window_to_group", func() (ActionOutput, error) {
			_, out, err := s.handleMoveWindowToGroup(ctx, nil, GroupInput{Group: 1})
			return out, err
		}, []string{"move-to-group", "1"}},
		{"focus", func() (ActionOutput, error) {
			_, out, err := s.handleFocus(ctx, nil, DirectionInput{Direction: "previous"})
			return out, err
		}, []string{"focus-previous"}},
		{"shuffle", func() (ActionOutput, error) {
			_, out, err := s.handleShuffle(ctx, nil, DirectionInput{Direction: "up"})
			return out, err
		}, []string{"shuffle-up"}},
		{"cycle_layout", func() (ActionOutput, error) {
			_, out, err := s.handleCycleLayout(ctx, nil, DirectionInput{})
			return out, err
		}, []string{"cycle-layout"}},
		{"close_window", func() (ActionOutput, error) {
			_, out, err := s.handleCloseWindow(ctx, nil, CloseWindowInput{})
			return out, err
		}, []string{"close-window"}},
		{"spawn", func() (ActionOutput, error) {
			_, out, err := s.handleSpawn(ctx, nil, SpawnInput{Command: "xterm", Args: []string{"-e", "top"}})
			return out, err
		}, []string{"spawn", "xterm", "-e", "top"}},
	}

	for i, step := range steps {
		out, err := step.call()
		if err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if !reflect.DeepEqual(ctl.calls[i], step.want) {
			t.Fatalf("%s forwarded %v, want %v", step.name, ctl.calls[i], step.want)
		}
		if out.Action == "" {
			t.Fatalf("%s: empty action output", step.name)
		}
	}
}

func TestToolsRejectBadInput(t *testing.T) {
	ctx := context.Background()
	ctl := &fakeController{}
	s := NewServer(ctl)

	if _, _, err := s.handleSwitchGroup(ctx, nil, GroupInput{Group: 0}); err == nil {
		t.Fatal("expected error for group 0")
	}
	if _, _, err := s.handleSpawn(ctx, nil, SpawnInput{Command: "  "}); err == nil {
		t.Fatal("expected error for empty command")
	}
	if _, _, err := s.handleFocus(ctx, nil, DirectionInput{Direction: "left"}); err == nil {
		t.Fatal("expected error for unknown direction")
	}
	if len(ctl.calls) != 0 {
		t.Fatalf("invalid input reached the window manager: %v", ctl.calls)
	}
}

func TestToolsReportControllerErrors(t *testing.T) {
	ctl := &fakeController{err: errors.New("failed to connect to daemon")}
	s := NewServer(ctl)

	if _, _, err := s.handleCloseWindow(context.Background(), nil, CloseWindowInput{}); err == nil {
		t.Fatal("expected controller error")
	}
	if _, _, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{}); err == nil {
		t.Fatal("expected controller error from get_status")
	}
}

func TestStatusOutput(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	st := &dispatch.Status{
		ActiveGroup: 1,
		Managed:     3,
		Viewport:    display.Rect{Y: 24, Width: 1200, Height: 876},
		Urgent:      []display.WindowID{4},
		StartedAt:   started,
		Groups: []dispatch.GroupStatus{
			{Name: "web", Layout: "tiled", Windows: []display.WindowID{4}, Focused: 4},
			{Name: "code", Active: true, Layout: "maximize", Windows: []display.WindowID{7, 9}, Focused: 9},
		},
	}

	out := statusOutput(st, started.Add(90*time.Second))
	if out.ActiveGroup != 2 || out.Managed != 3 || out.UptimeSeconds != 90 {
		t.Fatalf("unexpected summary: %+v", out)
	}
	if out.ViewportWidth != 1200 || out.ViewportHeight != 876 {
		t.Fatalf("unexpected viewport: %+v", out)
	}
	if !reflect.DeepEqual(out.Urgent, []uint32{4}) {
		t.Fatalf("urgent = %v", out.Urgent)
	}
	want := GroupInfo{Number: 2, Name: "code", Active: true, Layout: "maximize", Windows: []uint32{7, 9}, Focused: 9}
	if !reflect.DeepEqual(out.Groups[1], want) {
		t.Fatalf("group = %+v, want %+v", out.Groups[1], want)
	}
}
