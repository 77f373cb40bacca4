package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/stackwm/internal/dispatch"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	st, err := s.control.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, statusOutput(st, time.Now()), nil
}

func statusOutput(st *dispatch.Status, now time.Time) GetStatusOutput {
	out := GetStatusOutput{
		ActiveGroup:    st.ActiveGroup + 1,
		Managed:        st.Managed,
		ViewportWidth:  st.Viewport.Width,
		ViewportHeight: st.Viewport.Height,
		Groups:         make([]GroupInfo, 0, len(st.Groups)),
	}
	if !st.StartedAt.IsZero() {
		out.UptimeSeconds = int64(now.Sub(st.StartedAt).Seconds())
	}
	for _, id := range st.Urgent {
		out.Urgent = append(out.Urgent, uint32(id))
	}
	for i, g := range st.Groups {
		info := GroupInfo{
			Number:  i + 1,
			Name:    g.Name,
			Active:  g.Active,
			Layout:  g.Layout,
			Windows: make([]uint32, 0, len(g.Windows)),
			Focused: uint32(g.Focused),
		}
		for _, id := range g.Windows {
			info.Windows = append(info.Windows, uint32(id))
		}
		out.Groups = append(out.Groups, info)
	}
	return out
}

func (s *Server) handleSwitchGroup(_ context.Context, _ *mcpsdk.CallToolRequest, args GroupInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.run(groupArgs("switch-group", args.Group))
}

func (s *Server) handleMoveWindowToGroup(_ context.Context, _ *mcpsdk.CallToolRequest, args GroupInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.run(groupArgs("move-to-group", args.Group))
}

func (s *Server) handleFocus(_ context.Context, _ *mcpsdk.CallToolRequest, args DirectionInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.run(directionArgs("focus-next", "focus-previous", args.Direction))
}

func (s *Server) handleShuffle(_ context.Context, _ *mcpsdk.CallToolRequest, args DirectionInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.run(directionArgs("shuffle-down", "shuffle-up", args.Direction))
}

func (s *Server) handleCycleLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args DirectionInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.run(directionArgs("cycle-layout", "previous-layout", args.Direction))
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, _ CloseWindowInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	return s.run([]string{"close-window"}, nil)
}

func (s *Server) handleSpawn(_ context.Context, _ *mcpsdk.CallToolRequest, args SpawnInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	command := strings.TrimSpace(args.Command)
	if command == "" {
		return s.run(nil, fmt.Errorf("command is required"))
	}
	return s.run(append([]string{"spawn", command}, args.Args...), nil)
}

// run forwards argv to the window manager.
func (s *Server) run(argv []string, err error) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err != nil {
		return nil, ActionOutput{}, err
	}
	if err := s.control.Action(argv...); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{Action: strings.Join(argv, " ")}, nil
}

func groupArgs(name string, group int) ([]string, error) {
	if group < 1 {
		return nil, fmt.Errorf("group must be a positive number, got %d", group)
	}
	return []string{name, strconv.Itoa(group)}, nil
}

// directionArgs picks forward for "next"/"down" (and the default) and
// backward for "previous"/"up".
func directionArgs(forward, backward, direction string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "next", "down":
		return []string{forward}, nil
	case "previous", "prev", "up":
		return []string{backward}, nil
	default:
		return nil, fmt.Errorf("unknown direction %q (want next or previous)", direction)
	}
}
