// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"codeberg.org/pixivfe/tstool/config"
)

const (
	cmdHelp     = "help"
	cmdValidate = "validate"
	cmdStats    = "stats"
	cmdFmt      = "fmt"
	cmdExport   = "export"
	cmdOverlay  = "overlay"
	cmdTM       = "tm"
	cmdWatch    = "watch"
)

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name    string
	args    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

// commands is populated in init to break the cycle through runHelp.
var commands []command

//nolint:gochecknoinits // the table refers to runHelp, which reads the table
func init() {
	commands = []command{
		{cmdValidate, "[-strict] [-j n] files...", "check files for structural errors and translation issues", runValidate},
		{cmdStats, "[-format console|yaml|json] files...", "count finished, unfinished and obsolete messages", runStats},
		{cmdFmt, "[-w] [-l] [-merge] [-drop-obsolete] files...", "rewrite files in canonical Qt Linguist layout", runFmt},
		{cmdExport, "[-o out.po] [-project name] [-drop-obsolete] file.ts", "convert a file to a gettext PO catalogue", runExport},
		{cmdOverlay, "-base file.ts fixup.ts...", "list fix-up overlay entries that no longer match the base file", runOverlay},
		{cmdTM, "import|lookup [flags] args...", "manage the translation memory", runTM},
		{cmdWatch, "[-strict] files...", "validate files again whenever they change", runWatch},
		{cmdHelp, "[command]", "show help for a command", runHelp},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}

	return command{}, false
}

func commandNames() string {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.name)
	}

	return strings.Join(names, ", ")
}

// flagSet returns a flag set for a command that reports errors instead of
// exiting.
func (a *app) flagSet(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: tstool %s %s\n", name, args)
		fs.PrintDefaults()
	}

	return fs
}

// parse parses args and requires at least minArgs positional arguments.
func (a *app) parse(fs *flag.FlagSet, args []string, minArgs int) error {
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}

	if fs.NArg() < minArgs {
		fs.Usage()

		return fmt.Errorf("%w: %s needs at least %d argument(s)", errUsage, fs.Name(), minArgs)
	}

	return nil
}

func printUsage(w io.Writer, global *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: tstool [-config path] <command> [flags] files...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")

	global.SetOutput(w)
	global.PrintDefaults()
}

// runHelp prints the command list, or the flags of one command.
func runHelp(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		global := flag.NewFlagSet("tstool", flag.ContinueOnError)
		global.String("config", config.DefaultConfigFile, "Path to a tstool configuration file in YAML format.")
		global.Bool("version", false, "Print the version and exit.")
		printUsage(a.stdout, global)

		return nil
	}

	cmd, ok := lookupCommand(args[0])
	if !ok || cmd.name == cmdHelp {
		fmt.Fprintf(a.stderr, "Unknown command '%s'. Command must be one of: %v\n", args[0], commandNames())

		return errUsage
	}

	fmt.Fprintf(a.stdout, "tstool %s: %s\n\n", cmd.name, cmd.summary)

	// Every command prints its flags and stops on -h.
	help := *a
	help.stderr = a.stdout

	if err := cmd.run(ctx, &help, []string{"-h"}); !errors.Is(err, flag.ErrHelp) {
		return err
	}

	return nil
}
