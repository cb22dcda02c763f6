// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "time"

const (
	// Default watch debounce in milliseconds.
	defaultWatchDebounceMs = 300
	// Default number of cached validation reports.
	defaultWatchCacheSize = 256
)

// SetDefaults populates the configuration with default values.
func (cfg *Config) SetDefaults() {
	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"

	cfg.Check.Placeholders = true
	cfg.Check.Accelerators = true
	cfg.Check.Punctuation = true
	cfg.Check.Whitespace = true
	cfg.Check.SkipNumerus = false
	cfg.Check.Strict = false
	cfg.Check.Concurrency = 0

	cfg.Format.MergeContexts = false
	cfg.Format.DropObsolete = false

	cfg.Export.Project = "tstool"

	cfg.Memory.Database = "./tstool-memory.sqlite"

	cfg.Watch.Debounce = defaultWatchDebounceMs * time.Millisecond
	cfg.Watch.CacheSize = defaultWatchCacheSize
}
