package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GroupInfo describes one group in get_status output.
type GroupInfo struct {
	Number  int      `json:"number" jsonschema:"One-based group number, as used by switch_group"`
	Name    string   `json:"name"`
	Active  bool     `json:"active"`
	Layout  string   `json:"layout" jsonschema:"Name of the layout currently arranging the group"`
	Windows []uint32 `json:"windows" jsonschema:"Window IDs in stack order"`
	Focused uint32   `json:"focused,omitempty" jsonschema:"Focused window ID, omitted when the group is empty"`
}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	ActiveGroup    int         `json:"active_group" jsonschema:"One-based number of the visible group"`
	Groups         []GroupInfo `json:"groups"`
	Managed        int         `json:"managed" jsonschema:"Number of managed windows across all groups"`
	Urgent         []uint32    `json:"urgent,omitempty" jsonschema:"Windows with the urgency hint set"`
	ViewportWidth  int         `json:"viewport_width"`
	ViewportHeight int         `json:"viewport_height"`
	UptimeSeconds  int64       `json:"uptime_seconds"`
}

// GroupInput selects a group by its one-based number.
type GroupInput struct {
	Group int `json:"group" jsonschema:"One-based group number"`
}

// DirectionInput is the input for tools that move through a sequence.
type DirectionInput struct {
	Direction string `json:"direction,omitempty" jsonschema:"next or previous (default: next); shuffle also accepts up or down"`
}

// CloseWindowInput is the input for the close_window tool.
type CloseWindowInput struct{}

// SpawnInput is the input for the spawn tool.
type SpawnInput struct {
	Command string   `json:"command" jsonschema:"Program to start, looked up in PATH"`
	Args    []string `json:"args,omitempty" jsonschema:"Arguments passed to the program"`
}

// ActionOutput reports the action that was applied.
type ActionOutput struct {
	Action string `json:"action" jsonschema:"The action in command-line form"`
}
