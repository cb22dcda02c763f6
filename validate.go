// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/pixivfe/tstool/core/check"
	"codeberg.org/pixivfe/tstool/core/reportcache"
	"codeberg.org/pixivfe/tstool/core/ts"
)

// validation is the outcome of validating one file: a report, or the error
// that prevented reading or decoding it.
type validation struct {
	path   string
	report *check.Report
	err    error
}

func (v validation) passed(strict bool) bool {
	return v.err == nil && v.report.Passed(strict)
}

func runValidate(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet(cmdValidate, "[-strict] [-j n] files...")
	strict := fs.Bool("strict", a.cfg.Check.Strict, "Treat warnings as errors.")
	jobs := fs.Int("j", a.cfg.Check.Concurrency, "Number of files checked at once (0: one per CPU).")

	if err := a.parse(fs, args, 1); err != nil {
		return err
	}

	results, err := validateFiles(ctx, fs.Args(), a.cfg.CheckOptions(), *strict, *jobs, nil)
	if err != nil {
		return err
	}

	failed := 0

	for _, v := range results {
		a.printValidation(v, *strict)

		if !v.passed(*strict) {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d file(s) did not pass", errFailed, failed, len(results))
	}

	return nil
}

// validateFiles checks paths concurrently, at most jobs at a time, and
// returns the results in input order. Per-file failures are part of the
// results; the error is only set when ctx is cancelled.
func validateFiles(
	ctx context.Context,
	paths []string,
	opts check.Options,
	strict bool,
	jobs int,
	cache *reportcache.Cache,
) ([]validation, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]validation, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			report, err := validateFile(path, opts, strict, cache)
			results[i] = validation{path: path, report: report, err: err}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("validation interrupted: %w", err)
	}

	return results, nil
}

// validateFile decodes and checks one file. When cache is set, reports for
// content already seen are reused.
func validateFile(path string, opts check.Options, strict bool, cache *reportcache.Cache) (*check.Report, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- paths come from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var key string

	if cache != nil {
		key = reportcache.Key(path, data, opts, strict)
		if r, ok := cache.Get(key); ok {
			log.Debug().Str("sys", "validate").Str("path", path).Msg("Report served from cache")

			return r, nil
		}
	}

	f, err := ts.Decode(bytes.NewReader(data), path)
	if err != nil {
		return nil, err
	}

	r := check.Check(path, f, opts)

	if cache != nil {
		if _, err := cache.Add(key, r); err != nil {
			log.Warn().Str("sys", "validate").Err(err).Str("path", path).Msg("Failed to cache report")
		}
	}

	return r, nil
}

func (a *app) printValidation(v validation, strict bool) {
	if v.err != nil {
		fmt.Fprintf(a.stdout, "%v\n", v.err)

		return
	}

	for _, f := range v.report.Findings {
		fmt.Fprintf(a.stdout, "%s: %s\n", v.path, f)
	}

	status := "ok"
	if !v.report.Passed(strict) {
		status = "FAILED"
	}

	fmt.Fprintf(a.stdout, "%s: %s (%d error(s), %d warning(s))\n",
		v.path, status, v.report.Errors(), v.report.Warnings())
}
