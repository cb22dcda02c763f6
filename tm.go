// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"codeberg.org/pixivfe/tstool/core/tm"
	"codeberg.org/pixivfe/tstool/core/ts"
)

const tmUsage = "import|lookup [flags] args..."

func runTM(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "-help" || args[0] == "--help" {
		fmt.Fprintf(a.stderr, "Usage: tstool %s %s\n\n", cmdTM, tmUsage)
		fmt.Fprintln(a.stderr, "  import [-db path] files...        store finished translations")
		fmt.Fprintln(a.stderr, "  lookup [-db path] -lang xx text   print stored translations of text")

		if len(args) == 0 {
			return errUsage
		}

		return flag.ErrHelp
	}

	switch args[0] {
	case "import":
		return runTMImport(ctx, a, args[1:])
	case "lookup":
		return runTMLookup(ctx, a, args[1:])
	default:
		return fmt.Errorf("%w: unknown tm command %q", errUsage, args[0])
	}
}

func runTMImport(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet(cmdTM+" import", "[-db path] files...")
	db := fs.String("db", a.cfg.Memory.Database, "Translation memory database.")

	if err := a.parse(fs, args, 1); err != nil {
		return err
	}

	m, err := tm.Open(ctx, *db)
	if err != nil {
		return err
	}
	defer m.Close()

	for _, path := range fs.Args() {
		f, err := ts.DecodeFile(path)
		if err != nil {
			return err
		}

		n, err := m.Import(ctx, f, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		fmt.Fprintf(a.stdout, "%s: %d translation(s) stored\n", path, n)
	}

	return nil
}

func runTMLookup(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet(cmdTM+" lookup", "[-db path] -lang xx text")
	db := fs.String("db", a.cfg.Memory.Database, "Translation memory database.")
	lang := fs.String("lang", "", "Target language, e.g. es or es_ES.")

	if err := a.parse(fs, args, 1); err != nil {
		return err
	}

	if *lang == "" {
		fs.Usage()

		return fmt.Errorf("%w: -lang is required", errUsage)
	}

	m, err := tm.Open(ctx, *db)
	if err != nil {
		return err
	}
	defer m.Close()

	source := strings.Join(fs.Args(), " ")

	matches, err := m.Lookup(ctx, *lang, source)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Fprintf(a.stderr, "No translation of %q into %s\n", source, *lang)

		return errFailed
	}

	for _, match := range matches {
		key := ts.Key{Context: match.Context, Source: match.Source, Comment: match.Comment}
		fmt.Fprintf(a.stdout, "%s\t%s\t%s\n", match.Language, key, strings.Join(match.Texts, " | "))
	}

	return nil
}
