// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"slices"
)

// validation errors.
var (
	errInvalidLogLevel    = errors.New("invalid Log.Level value")
	errInvalidLogFormat   = errors.New("invalid Log.Format value")
	errInvalidConcurrency = errors.New("Check.Concurrency cannot be negative")
	errEmptyDatabase      = errors.New("Memory.Database cannot be empty")
	errInvalidDebounce    = errors.New("Watch.Debounce must be positive")
	errInvalidCacheSize   = errors.New("Watch.CacheSize must be positive")
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"console", "json"}
)

// validate checks the configuration for values the commands cannot use.
func (cfg *Config) validate() error {
	if !slices.Contains(validLogLevels, cfg.Log.Level) {
		return fmt.Errorf("%w: %q (expected one of %v)", errInvalidLogLevel, cfg.Log.Level, validLogLevels)
	}

	if !slices.Contains(validLogFormats, cfg.Log.Format) {
		return fmt.Errorf("%w: %q (expected one of %v)", errInvalidLogFormat, cfg.Log.Format, validLogFormats)
	}

	if cfg.Check.Concurrency < 0 {
		return fmt.Errorf("%w: %d", errInvalidConcurrency, cfg.Check.Concurrency)
	}

	if cfg.Memory.Database == "" {
		return errEmptyDatabase
	}

	if cfg.Watch.Debounce <= 0 {
		return fmt.Errorf("%w: %s", errInvalidDebounce, cfg.Watch.Debounce)
	}

	if cfg.Watch.CacheSize <= 0 {
		return fmt.Errorf("%w: %d", errInvalidCacheSize, cfg.Watch.CacheSize)
	}

	return nil
}
