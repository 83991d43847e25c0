package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/inactive/pkg/config"
	"github.com/Veraticus/inactive/pkg/log"
	"github.com/pkg/errors"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	inv, err := parseArgs(args)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "inactive: %v\n\n", err)
		printUsage(stderr)
		return 1
	}

	switch inv.mode {
	case modeHelp:
		printUsage(stdout)
		return 0
	case modeVersion:
		_, _ = fmt.Fprintf(stdout, "inactive %s\n", version)
		return 0
	}

	cfg, err := loadConfig(inv)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	log.Init(log.Options{
		Verbose:    cfg.Log.Verbose,
		JSONFormat: log.IsJSONFormat(cfg.Log.Format),
		Stderr:     stderr,
	})
	log.Debug("starting", "mode", inv.mode, "target", inv.target, "backend", cfg.Backend)

	deps, err := NewDependencies(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "inactive: %v\n", err)
		return exitCode(err)
	}
	defer deps.Close()

	code, err := NewApplication(deps, stdout).Run(ctx, inv)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "inactive: %v\n", err)
	}
	return code
}

// loadConfig reads the config file and environment, then applies the
// command-line overrides.
func loadConfig(inv *invocation) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if inv.configPath != "" {
		cfg, err = config.LoadFile(inv.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if inv.backend != "" {
		cfg.Backend = inv.backend
	}
	if inv.verbose {
		cfg.Log.Verbose = true
	}
	if inv.pty {
		cfg.PTY = true
	}
	if inv.signal != "" {
		cfg.Signal = inv.signal
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
