// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/tstool/core/ts"
)

type formatOptions struct {
	mergeContexts bool
	dropObsolete  bool
}

func runFmt(_ context.Context, a *app, args []string) error {
	fs := a.flagSet(cmdFmt, "[-w] [-l] [-merge] [-drop-obsolete] files...")
	write := fs.Bool("w", false, "Write the result back to the source file instead of stdout.")
	list := fs.Bool("l", false, "List files whose formatting differs instead of printing them.")
	merge := fs.Bool("merge", a.cfg.Format.MergeContexts, "Merge repeated contexts into their first occurrence.")
	drop := fs.Bool("drop-obsolete", a.cfg.Format.DropObsolete, "Remove obsolete and vanished messages.")

	if err := a.parse(fs, args, 1); err != nil {
		return err
	}

	opts := formatOptions{mergeContexts: *merge, dropObsolete: *drop}

	for _, path := range fs.Args() {
		original, formatted, err := formatFile(path, opts)
		if err != nil {
			return err
		}

		changed := !bytes.Equal(original, formatted)

		switch {
		case *list:
			if changed {
				fmt.Fprintln(a.stdout, path)
			}
		case *write:
			if !changed {
				continue
			}

			if err := replaceFile(path, func(w io.Writer) error {
				_, err := w.Write(formatted)

				return err
			}); err != nil {
				return err
			}

			log.Info().Str("path", path).Msg("Reformatted")
		default:
			if _, err := a.stdout.Write(formatted); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}

	return nil
}

// formatFile returns the current content of path and its canonical form.
func formatFile(path string, opts formatOptions) (original, formatted []byte, err error) {
	original, err = os.ReadFile(path) // #nosec G304 -- paths come from the command line
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	f, err := ts.Decode(bytes.NewReader(original), path)
	if err != nil {
		return nil, nil, err
	}

	if opts.mergeContexts {
		f.MergeContexts()
	}

	if opts.dropObsolete {
		if n := f.DropObsolete(); n > 0 {
			log.Debug().Str("path", path).Int("count", n).Msg("Dropped obsolete messages")
		}
	}

	formatted, err = ts.Marshal(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s: %w", path, err)
	}

	return original, formatted, nil
}
