package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/inactive/pkg/config"
	"github.com/Veraticus/inactive/pkg/idle"
	flag "github.com/spf13/pflag"
)

type mode int

const (
	modeWait mode = iota
	modeShow
	modeNoblock
	modeRun
	modeHelp
	modeVersion
)

func (m mode) String() string {
	switch m {
	case modeWait:
		return "wait"
	case modeShow:
		return "show"
	case modeNoblock:
		return "noblock"
	case modeRun:
		return "run"
	case modeHelp:
		return "help"
	case modeVersion:
		return "version"
	}
	return "unknown"
}

// ArgumentError is a command line the program cannot act on.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string {
	return e.Msg
}

func argErrorf(format string, args ...any) error {
	return &ArgumentError{Msg: fmt.Sprintf(format, args...)}
}

// invocation is a parsed command line.
type invocation struct {
	mode   mode
	target int64
	argv   []string

	// signal is the raw --signal value; empty when not given.
	signal string

	configPath string
	backend    string
	verbose    bool
	pty        bool
}

func newFlagSet(inv *invocation, help, version, show, noblock *bool) *flag.FlagSet {
	fs := flag.NewFlagSet("inactive", flag.ContinueOnError)
	// Stop at the first positional so the command's own flags reach it.
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.BoolVarP(help, "help", "h", false, "show this help and exit")
	fs.BoolVarP(version, "version", "V", false, "print the version and exit")
	fs.BoolVarP(show, "show", "S", false, "print the current idle time in seconds")
	fs.BoolVarP(noblock, "noblock", "n", false, "exit 0 if idle for TIME already, 1 otherwise")
	fs.StringVarP(&inv.signal, "signal", "s", "", "signal sent to CMD once idle for TIME (default 15)")
	fs.StringVar(&inv.configPath, "config", "", "path to config file")
	fs.StringVar(&inv.backend, "backend", "", "idle source: auto, x11, dbus, tmux or ioreg")
	fs.BoolVar(&inv.verbose, "verbose", false, "log state changes to stderr")
	fs.BoolVar(&inv.pty, "pty", false, "run CMD on a pseudo-terminal")
	return fs
}

// parseArgs turns args (without the program name) into an invocation.
func parseArgs(args []string) (*invocation, error) {
	inv := &invocation{}
	var help, version, show, noblock bool

	fs := newFlagSet(inv, &help, &version, &show, &noblock)
	if err := fs.Parse(args); err != nil {
		return nil, argErrorf("%v", err)
	}

	exclusive := 0
	for _, name := range []string{"help", "version", "show", "noblock", "signal"} {
		if fs.Changed(name) {
			exclusive++
		}
	}
	if exclusive > 1 {
		return nil, argErrorf("options -h, -V, -S, -n and -s are mutually exclusive")
	}

	if inv.backend != "" {
		if _, err := idle.ParseBackend(inv.backend); err != nil {
			return nil, argErrorf("%v", err)
		}
	}
	if fs.Changed("signal") {
		if _, err := config.ParseSignal(inv.signal); err != nil {
			return nil, argErrorf("invalid signal: %v", err)
		}
	}

	rest := fs.Args()
	switch {
	case help:
		inv.mode = modeHelp
		return inv, nil
	case version:
		inv.mode = modeVersion
		return inv, nil
	case show:
		if len(rest) > 0 {
			return nil, argErrorf("--show takes no arguments")
		}
		inv.mode = modeShow
		return inv, nil
	}

	if len(rest) == 0 {
		return nil, argErrorf("missing TIME")
	}
	target, err := parseTarget(rest[0])
	if err != nil {
		return nil, err
	}
	inv.target = target
	inv.argv = rest[1:]

	switch {
	case noblock:
		if len(inv.argv) > 0 {
			return nil, argErrorf("--noblock does not run a command")
		}
		inv.mode = modeNoblock
	case len(inv.argv) > 0:
		inv.mode = modeRun
	case fs.Changed("signal"):
		return nil, argErrorf("--signal requires a command")
	default:
		inv.mode = modeWait
	}
	return inv, nil
}

// parseTarget reads TIME as whole seconds or a Go duration such as "90s" or
// "5m". Durations are truncated to whole seconds.
func parseTarget(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, argErrorf("invalid TIME %q: want seconds or a duration like 90s", value)
	}
	return int64(d / time.Second), nil
}

const usageHeader = `Usage:
  inactive -h|--help
  inactive -V|--version
  inactive -S|--show
  inactive [-n|--noblock] TIME
  inactive [-s N|--signal=N] TIME CMD [ARGS...]

Waits until the user has been idle for TIME seconds. With CMD, runs it and
sends it signal N (default 15) once the user has been idle for TIME.

Options:
`

const usageFooter = `
Environment Variables:
  INACTIVE_CONFIG           Path to config file
  INACTIVE_BACKEND          Idle source (auto, x11, dbus, tmux, ioreg)
  INACTIVE_DISPLAY          X display for the x11 source
  INACTIVE_SIGNAL           Default signal for supervised commands
  INACTIVE_PTY              Run commands on a pseudo-terminal (true/false)
  INACTIVE_FORWARD_SIGNALS  Relay SIGTERM and SIGHUP to the command (true/false)
  INACTIVE_DEBUG            Verbose logging (true/false)
  INACTIVE_LOG_FORMAT       Log format (text/json)

Configuration file: ~/.config/inactive/config.yaml

Exit status: 0 when idle (or CMD's own status), 1 on usage errors or when
--noblock finds the user active, 2 when no idle source is available,
126/127 when CMD cannot be started.
`

func printUsage(w io.Writer) {
	var inv invocation
	var help, version, show, noblock bool
	fs := newFlagSet(&inv, &help, &version, &show, &noblock)

	_, _ = io.WriteString(w, usageHeader)
	_, _ = io.WriteString(w, fs.FlagUsages())
	_, _ = io.WriteString(w, usageFooter)
}
