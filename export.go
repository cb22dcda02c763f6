// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/tstool/core/export"
	"codeberg.org/pixivfe/tstool/core/ts"
)

func runExport(_ context.Context, a *app, args []string) error {
	fs := a.flagSet(cmdExport, "[-o out.po] [-project name] [-drop-obsolete] file.ts")
	out := fs.String("o", "", "Write the catalogue to this file instead of stdout.")
	project := fs.String("project", a.cfg.Export.Project, "Project-Id-Version written to the PO header.")
	drop := fs.Bool("drop-obsolete", a.cfg.Format.DropObsolete, "Leave obsolete and vanished messages out.")

	if err := a.parse(fs, args, 1); err != nil {
		return err
	}

	f, err := ts.DecodeFile(fs.Arg(0))
	if err != nil {
		return err
	}

	opts := export.Options{Project: *project, DropObsolete: *drop}

	if *out == "" {
		return export.ToPO(a.stdout, f, opts)
	}

	if err := replaceFile(*out, func(w io.Writer) error {
		return export.ToPO(w, f, opts)
	}); err != nil {
		return err
	}

	log.Info().Str("source", fs.Arg(0)).Str("path", *out).Msg("Exported PO catalogue")

	return nil
}
