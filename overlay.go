// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"fmt"

	"codeberg.org/pixivfe/tstool/core/overlay"
	"codeberg.org/pixivfe/tstool/core/ts"
)

func runOverlay(_ context.Context, a *app, args []string) error {
	fs := a.flagSet(cmdOverlay, "-base file.ts fixup.ts...")
	basePath := fs.String("base", "", "Current translation file whose messages the overlay must match.")

	if err := a.parse(fs, args, 1); err != nil {
		return err
	}

	if *basePath == "" {
		fs.Usage()

		return fmt.Errorf("%w: -base is required", errUsage)
	}

	base, err := ts.DecodeFile(*basePath)
	if err != nil {
		return err
	}

	orphaned := 0

	for _, path := range fs.Args() {
		fixup, err := ts.DecodeFile(path)
		if err != nil {
			return err
		}

		orphans, err := overlay.Orphans(base, fixup)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		for _, o := range orphans {
			fmt.Fprintf(a.stdout, "%s:%d: %s: not in %s\n", path, o.Line, o.Key, *basePath)
		}

		orphaned += len(orphans)
	}

	if orphaned > 0 {
		return fmt.Errorf("%w: %d orphaned overlay message(s)", errFailed, orphaned)
	}

	return nil
}
