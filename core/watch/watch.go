// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package watch reports changes to a set of files.

Parent directories are watched rather than the files themselves, so files
replaced by rename (as editors and renameio do) keep being tracked.
Bursts of events are coalesced: the callback runs once per changed path
after no event has arrived for the debounce interval.
*/
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce is the quiet period used by Watch.
const DefaultDebounce = 300 * time.Millisecond

// ErrNoPaths is returned when there is nothing to watch.
var ErrNoPaths = errors.New("no paths to watch")

// Watcher watches files with a configurable debounce interval.
type Watcher struct {
	Debounce time.Duration
	Logger   zerolog.Logger
}

// Watch uses a Watcher with DefaultDebounce and the global logger.
func Watch(ctx context.Context, paths []string, fn func(path string)) error {
	w := Watcher{
		Debounce: DefaultDebounce,
		Logger:   log.With().Str("sys", "watch").Logger(),
	}

	return w.Watch(ctx, paths, fn)
}

// Watch calls fn for every path in paths that is written or created, until
// ctx is done. fn runs on the calling goroutine, in path order for changes
// that settle together.
func (w Watcher) Watch(ctx context.Context, paths []string, fn func(path string)) error {
	if len(paths) == 0 {
		return ErrNoPaths
	}

	watched := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}

		watched[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.Logger.Info().Int("files", len(watched)).Int("directories", len(dirs)).Msg("Watching for changes")

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			w.Logger.Debug().Msg("Watcher stopped")

			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			name := filepath.Clean(event.Name)
			if _, ok := watched[name]; !ok {
				continue
			}

			w.Logger.Debug().Str("path", name).Str("op", event.Op.String()).Msg("File changed")

			pending[name] = struct{}{}

			timer.Reset(debounce)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}

			clear(pending)
			slices.Sort(changed)

			for _, p := range changed {
				fn(p)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}

			w.Logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}
