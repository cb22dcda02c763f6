// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"

	"codeberg.org/pixivfe/tstool/core/stats"
	"codeberg.org/pixivfe/tstool/core/ts"
)

var errUnknownFormat = errors.New("unknown output format")

// statsDocument is the yaml/json form of the statistics.
type statsDocument struct {
	Files []stats.Counts `json:"files" yaml:"files"`
	Total stats.Counts   `json:"total" yaml:"total"`
}

func runStats(_ context.Context, a *app, args []string) error {
	fs := a.flagSet(cmdStats, "[-format console|yaml|json] files...")
	format := fs.String("format", "console", "Output format: console, yaml or json.")

	if err := a.parse(fs, args, 1); err != nil {
		return err
	}

	all := make([]stats.Counts, 0, fs.NArg())

	for _, path := range fs.Args() {
		f, err := ts.DecodeFile(path)
		if err != nil {
			return err
		}

		all = append(all, stats.Count(path, f))
	}

	total := stats.Total(all)
	total.File = "total"

	switch *format {
	case "console":
		if err := stats.WriteTable(a.stdout, all); err != nil {
			return err
		}

		fmt.Fprintln(a.stdout)

		for _, c := range all {
			fmt.Fprintf(a.stdout, "%s: %s\n", c.File, c.Summary())
		}
	case "yaml":
		out, err := yaml.MarshalWithOptions(statsDocument{Files: all, Total: total}, yaml.Indent(2))
		if err != nil {
			return fmt.Errorf("failed to encode statistics: %w", err)
		}

		if _, err := a.stdout.Write(out); err != nil {
			return fmt.Errorf("failed to write statistics: %w", err)
		}
	case "json":
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")

		if err := enc.Encode(statsDocument{Files: all, Total: total}); err != nil {
			return fmt.Errorf("failed to write statistics: %w", err)
		}
	default:
		return fmt.Errorf("%w: %w %q", errUsage, errUnknownFormat, *format)
	}

	return nil
}
