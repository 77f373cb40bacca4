// Package action defines the closed set of operations that key bindings and
// the control surfaces can request of the window manager.
package action

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/stackwm/internal/display"
)

// Kind identifies an action.
type Kind int

const (
	SwitchGroup Kind = iota + 1
	MoveFocusedToGroup
	FocusNext
	FocusPrevious
	ShuffleUp
	ShuffleDown
	CycleLayout
	PreviousLayout
	CloseFocused
	Spawn
	Quit
	Custom
)

var names = map[Kind]string{
	SwitchGroup:        "switch-group",
	MoveFocusedToGroup: "move-to-group",
	FocusNext:          "focus-next",
	FocusPrevious:      "focus-previous",
	ShuffleUp:          "shuffle-up",
	ShuffleDown:        "shuffle-down",
	CycleLayout:        "cycle-layout",
	PreviousLayout:     "previous-layout",
	CloseFocused:       "close-window",
	Spawn:              "spawn",
	Quit:               "quit",
	Custom:             "custom",
}

func (k Kind) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Controller is what a Custom handler sees of the running window manager.
// Handlers run on the event loop and must not block.
type Controller interface {
	// Do applies another action as part of the same batch.
	Do(a Action)
	ActiveGroup() int
	Focused() (display.WindowID, bool)
}

// Action is one requested operation. Group is a zero-based group index and
// is used by SwitchGroup and MoveFocusedToGroup. Command and Args are used
// by Spawn. Handler is used by Custom.
type Action struct {
	Kind    Kind
	Group   int
	Command string
	Args    []string
	Handler func(Controller)
}

func (a Action) String() string {
	switch a.Kind {
	case SwitchGroup, MoveFocusedToGroup:
		return fmt.Sprintf("%s %d", a.Kind, a.Group+1)
	case Spawn:
		return strings.TrimSpace(fmt.Sprintf("%s %s %s", a.Kind, a.Command, strings.Join(a.Args, " ")))
	default:
		return a.Kind.String()
	}
}

// Names returns every action name Parse accepts, in declaration order.
func Names() []string {
	out := make([]string, 0, len(names))
	for k := SwitchGroup; k <= Quit; k++ {
		out = append(out, names[k])
	}
	return out
}

// Parse builds an action from its name. Group is the zero-based group
// index for group actions; command and args are used by spawn.
func Parse(name string, group int, command string, args []string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range names {
		if n != name || kind == Custom {
			continue
		}
		a := Action{Kind: kind}
		switch kind {
		case SwitchGroup, MoveFocusedToGroup:
			if group < 0 {
				return Action{}, fmt.Errorf("%s: group index must be >= 0, got %d", name, group)
			}
			a.Group = group
		case Spawn:
			if strings.TrimSpace(command) == "" {
				return Action{}, fmt.Errorf("spawn: command is required")
			}
			a.Command = command
			a.Args = append([]string(nil), args...)
		}
		return a, nil
	}
	return Action{}, fmt.Errorf("unknown action %q", name)
}

// ParseArgs builds an action from a command-line style argument list, such
// as "switch-group 2" or "spawn xterm -e top". Group numbers are one-based.
func ParseArgs(argv []string) (Action, error) {
	if len(argv) == 0 {
		return Action{}, fmt.Errorf("action name is required")
	}
	name := strings.ToLower(argv[0])
	rest := argv[1:]
	switch name {
	case names[SwitchGroup], names[MoveFocusedToGroup]:
		if len(rest) != 1 {
			return Action{}, fmt.Errorf("%s requires a group number", name)
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil || n < 1 {
			return Action{}, fmt.Errorf("%s: invalid group number %q", name, rest[0])
		}
		return Parse(name, n-1, "", nil)
	case names[Spawn]:
		if len(rest) == 0 {
			return Action{}, fmt.Errorf("spawn requires a command")
		}
		return Parse(name, 0, rest[0], rest[1:])
	default:
		if len(rest) != 0 {
			return Action{}, fmt.Errorf("%s takes no arguments", name)
		}
		return Parse(name, 0, "", nil)
	}
}
