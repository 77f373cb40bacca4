package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/1broseidon/stackwm/internal/action"
	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/dispatch"
	"github.com/1broseidon/stackwm/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "action":
		os.Exit(runAction(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: stackwm <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Run the window manager (foreground)")
	fmt.Fprintln(w, "  status              Show window manager status")
	fmt.Fprintln(w, "  action <name>       Perform an action in the running window manager")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'stackwm <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: stackwm status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show window manager status via IPC. JSON is printed when --json is")
		fmt.Fprintln(os.Stderr, "given or stdout is not a terminal.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	printStatus(os.Stdout, status, time.Now())
	return 0
}

func printStatus(w io.Writer, st *dispatch.Status, now time.Time) {
	fmt.Fprintf(w, "screen:         %s\n", st.Screen)
	fmt.Fprintf(w, "viewport:       %s\n", st.Viewport)
	fmt.Fprintf(w, "managed:        %d\n", st.Managed)
	fmt.Fprintf(w, "docks:          %d\n", st.Docks)
	if !st.StartedAt.IsZero() {
		fmt.Fprintf(w, "uptime_seconds: %d\n", int64(now.Sub(st.StartedAt).Seconds()))
	}
	fmt.Fprintln(w, "groups:")
	for i, g := range st.Groups {
		marker := " "
		if g.Active {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %d %-10s %-12s windows=%d", marker, i+1, g.Name, g.Layout, len(g.Windows))
		if g.Focused != 0 {
			fmt.Fprintf(w, " focused=%#x", uint32(g.Focused))
		}
		fmt.Fprintln(w)
	}
	if len(st.Urgent) > 0 {
		ids := make([]string, len(st.Urgent))
		for i, id := range st.Urgent {
			ids[i] = fmt.Sprintf("%#x", uint32(id))
		}
		fmt.Fprintf(w, "urgent:         %s\n", strings.Join(ids, " "))
	}
}

func printActionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: stackwm action <name> [args...]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Actions:")
	for _, name := range action.Names() {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  stackwm action switch-group 2")
	fmt.Fprintln(w, "  stackwm action spawn xterm -e top")
}

func runAction(args []string) int {
	if len(args) == 0 {
		printActionUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printActionUsage(os.Stdout)
		return 0
	}
	// Parse locally first so typos do not need a running daemon to report.
	if _, err := action.ParseArgs(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := ipc.NewClient().Action(args...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  stackwm config validate [--config PATH]")
		fmt.Fprintln(os.Stderr, "  stackwm config print [--config PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("config", "", "Config file path (default: ~/.config/stackwm/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if _, err := res.Config.KeyTable(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if res.File == "" {
			fmt.Println("config: ok (defaults)")
		} else {
			fmt.Printf("config: ok (%s)\n", res.File)
		}
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("config", "", "Config file path (default: ~/.config/stackwm/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			if res.File != "" {
				fmt.Printf("# source: %s\n", res.File)
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

// loadConfig reads path, or the default location when path is empty.
func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return nil, err
	}
	return res, nil
}
