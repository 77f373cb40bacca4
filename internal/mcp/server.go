// Package mcp exposes the window manager's control surface as Model
// Context Protocol tools. Every tool is forwarded to the running window
// manager over IPC.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/stackwm/internal/dispatch"
)

const (
	ServerName    = "stackwm"
	ServerVersion = "0.1.0"
)

// Controller is the running window manager. *ipc.Client implements it.
type Controller interface {
	Action(args ...string) error
	GetStatus() (*dispatch.Status, error)
}

// Server is the MCP server for window manager control.
type Server struct {
	mcpServer *mcpsdk.Server
	control   Controller
}

// NewServer creates an MCP server that forwards tools to control.
func NewServer(control Controller) *Server {
	s := &Server{control: control}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the window manager's groups, their layouts and windows, the focused window of each group, and which group is visible.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_group",
		Description: "Show another group. Windows of the current group are hidden and the target group is arranged with its active layout.",
	}, s.handleSwitchGroup)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window_to_group",
		Description: "Move the focused window of the visible group to another group. The window is hidden until that group is shown.",
	}, s.handleMoveWindowToGroup)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus",
		Description: "Move focus to the next or previous window of the visible group, wrapping around.",
	}, s.handleFocus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "shuffle",
		Description: "Swap the focused window with its neighbour in the stack (up or down). Focus follows the window.",
	}, s.handleShuffle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cycle_layout",
		Description: "Switch the visible group to its next or previous layout.",
	}, s.handleCycleLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Ask the focused window to close. Clients that do not support WM_DELETE_WINDOW are disconnected.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "spawn",
		Description: "Start a program detached from the window manager. New windows join the visible group.",
	}, s.handleSpawn)
}
