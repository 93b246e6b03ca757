package control

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/saylesss88/persway/internal/layout"
)

// Command kinds accepted on the control socket.
const (
	CmdChangeLayout        = "change-layout"
	CmdStackFocusNext      = "stack-focus-next"
	CmdStackFocusPrev      = "stack-focus-prev"
	CmdStackMainRotateNext = "stack-main-rotate-next"
	CmdStackMainRotatePrev = "stack-main-rotate-prev"
	CmdStackSwapMain       = "stack-swap-main"
	// CmdDaemon starts the daemon when given on the command line. It parses
	// like any other subcommand but the dispatcher rejects it: a running
	// daemon cannot be asked to become a daemon.
	CmdDaemon = "daemon"
)

// DefaultStackMainSize is the main area percentage applied when
// change-layout stack-main is not given an explicit --size.
const DefaultStackMainSize = 70

// DefaultArrangement is the stack arrangement used when none is requested.
const DefaultArrangement = layout.ArrangementStacked

// Command is one parsed control invocation. Policy is only set for
// change-layout.
type Command struct {
	Kind   string
	Policy layout.Policy
}

// ErrInvalid is the parse failure surfaced to control clients. The reply
// text is fixed by the protocol.
var ErrInvalid = fmt.Errorf("invalid command")

// ParseCommand parses one control line: the full command invocation as it
// would be typed, space-separated. A leading program token and global
// -s/--socket-path flags are tolerated so clients can forward their argv
// verbatim.
func ParseCommand(line string) (Command, error) {
	tokens := stripGlobal(strings.Fields(line))
	if len(tokens) == 0 {
		return Command{}, ErrInvalid
	}
	name, rest := tokens[0], tokens[1:]
	switch name {
	case CmdStackFocusNext, CmdStackFocusPrev, CmdStackMainRotateNext,
		CmdStackMainRotatePrev, CmdStackSwapMain:
		if len(rest) != 0 {
			return Command{}, ErrInvalid
		}
		return Command{Kind: name}, nil
	case CmdChangeLayout:
		policy, err := parseLayoutArgs(rest)
		if err != nil {
			return Command{}, ErrInvalid
		}
		return Command{Kind: name, Policy: policy}, nil
	case CmdDaemon:
		// Daemon flags are irrelevant here; the dispatcher refuses the
		// command regardless.
		return Command{Kind: name}, nil
	}
	return Command{}, ErrInvalid
}

func stripGlobal(tokens []string) []string {
	if len(tokens) > 0 {
		switch tokens[0] {
		case CmdChangeLayout, CmdStackFocusNext, CmdStackFocusPrev,
			CmdStackMainRotateNext, CmdStackMainRotatePrev,
			CmdStackSwapMain, CmdDaemon:
		default:
			// Program name from a forwarded argv.
			tokens = tokens[1:]
		}
	}
	for len(tokens) >= 2 && (tokens[0] == "-s" || tokens[0] == "--socket-path") {
		tokens = tokens[2:]
	}
	return tokens
}

func parseLayoutArgs(args []string) (layout.Policy, error) {
	if len(args) == 0 {
		return layout.Policy{}, fmt.Errorf("missing layout")
	}
	switch layout.Kind(args[0]) {
	case layout.KindSpiral:
		if len(args) != 1 {
			return layout.Policy{}, fmt.Errorf("spiral takes no options")
		}
		return layout.Spiral(), nil
	case layout.KindManual:
		if len(args) != 1 {
			return layout.Policy{}, fmt.Errorf("manual takes no options")
		}
		return layout.Manual(), nil
	case layout.KindStackMain:
		fs := flag.NewFlagSet(CmdChangeLayout, flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		size := fs.Int("size", DefaultStackMainSize, "main area size in percent")
		stack := fs.String("stack-layout", string(DefaultArrangement), "stack arrangement")
		if err := fs.Parse(args[1:]); err != nil {
			return layout.Policy{}, err
		}
		if fs.NArg() != 0 {
			return layout.Policy{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
		}
		arrangement, err := layout.ParseArrangement(*stack)
		if err != nil {
			return layout.Policy{}, err
		}
		policy := layout.StackMain(*size, arrangement)
		if err := policy.Validate(); err != nil {
			return layout.Policy{}, err
		}
		return policy, nil
	}
	return layout.Policy{}, fmt.Errorf("unknown layout %q", args[0])
}

// DefaultSocketPath derives the control socket location from the runtime
// directory and the compositor display, with conservative fallbacks when
// either variable is missing. PERSWAY_SOCKET overrides both.
func DefaultSocketPath() string {
	if env := os.Getenv("PERSWAY_SOCKET"); env != "" {
		return env
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = "/tmp"
	}
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = "unknown"
	}
	return filepath.Join(runtimeDir, fmt.Sprintf("persway-%s.sock", display))
}
