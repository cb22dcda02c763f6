// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/tstool/core/reportcache"
	"codeberg.org/pixivfe/tstool/core/watch"
)

func runWatch(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet(cmdWatch, "[-strict] files...")
	strict := fs.Bool("strict", a.cfg.Check.Strict, "Treat warnings as errors.")

	if err := a.parse(fs, args, 1); err != nil {
		return err
	}

	cache, err := reportcache.New(a.cfg.Watch.CacheSize)
	if err != nil {
		return err
	}

	opts := a.cfg.CheckOptions()

	results, err := validateFiles(ctx, fs.Args(), opts, *strict, a.cfg.Check.Concurrency, cache)
	if err != nil {
		return err
	}

	for _, v := range results {
		a.printValidation(v, *strict)
	}

	w := watch.Watcher{
		Debounce: a.cfg.Watch.Debounce,
		Logger:   log.With().Str("sys", "watch").Logger(),
	}

	// The watcher reports absolute paths; print the names as given.
	names := make(map[string]string, fs.NArg())

	for _, arg := range fs.Args() {
		if abs, err := filepath.Abs(arg); err == nil {
			names[abs] = arg
		}
	}

	return w.Watch(ctx, fs.Args(), func(path string) {
		if name, ok := names[path]; ok {
			path = name
		}

		report, err := validateFile(path, opts, *strict, cache)
		a.printValidation(validation{path: path, report: report, err: err}, *strict)
	})
}
