// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
tstool checks, formats and converts Qt Linguist translation sources (.ts files).

Usage:

	tstool [-config path] <command> [flags] files...

Run "tstool help" for the list of commands.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/tstool/config"
	"codeberg.org/pixivfe/tstool/core/audit"
)

// Exit statuses besides 0 and log.Fatal's 1.
const (
	exitFailed = 1
	exitUsage  = 2
)

var (
	// errFailed means the command ran and reported its findings, but they
	// fail the run (validation errors, orphaned overlay entries).
	errFailed = errors.New("check failed")
	// errUsage means the command line could not be understood.
	errUsage = errors.New("invalid usage")
)

// main is the entry point of the application.
func main() {
	audit.SetDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errFailed):
		os.Exit(exitFailed)
	case errors.Is(err, errUsage):
		os.Exit(exitUsage)
	default:
		log.Fatal().Err(err).Msg("tstool failed")
	}
}

// run parses the global flags, loads the configuration and dispatches to
// the named command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tstool", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", config.DefaultConfigFile, "Path to a tstool configuration file in YAML format.")
	showVersion := fs.Bool("version", false, "Print the version and exit.")

	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}

	configFlagSet := false

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configFlagSet = true
		}
	})

	if *showVersion {
		config.Global.Build.Load()
		fmt.Fprintln(stdout, "tstool", config.Global.Build.Version())

		return nil
	}

	if fs.NArg() == 0 {
		fmt.Fprintf(stderr, "No command given. Command can be one of: %v\n\n", commandNames())
		printUsage(stderr, fs)

		return errUsage
	}

	cmd, ok := lookupCommand(fs.Arg(0))
	if !ok {
		fmt.Fprintf(stderr, "Command '%s' not recognised. Command must be one of: %v\n\n", fs.Arg(0), commandNames())
		printUsage(stderr, fs)

		return errUsage
	}

	a := &app{cfg: &config.Global, stdout: stdout, stderr: stderr}

	// Help works without a valid configuration.
	if cmd.name == cmdHelp {
		a.cfg.SetDefaults()

		return cmd.run(ctx, a, fs.Args()[1:])
	}

	if err := config.Global.LoadConfig(*configPath, configFlagSet); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	return cmd.run(ctx, a, fs.Args()[1:])
}

func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}

	return fmt.Errorf("%w: %w", errUsage, err)
}
