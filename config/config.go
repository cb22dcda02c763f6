// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"codeberg.org/pixivfe/tstool/core/check"
)

// Global exposes the tool configuration.
var Global Config

// Default configuration file locations, tried in order.
const (
	DefaultConfigFile    = "./tstool.yaml"
	fallbackConfigFile   = "./tstool.yml"
	configFileEnvVarName = "TSTOOL_CONFIGFILE"
)

// Config holds the application configuration.
type Config struct {
	Build buildInfo `yaml:"-"`

	Log struct {
		Level   string   `env:"TSTOOL_LOG_LEVEL,overwrite" yaml:"logLevel"`
		Outputs []string `env:"TSTOOL_LOG_OUTPUTS,overwrite" yaml:"logOutputs"`
		Format  string   `env:"TSTOOL_LOG_FORMAT,overwrite" yaml:"logFormat"`
	} `yaml:"log"`

	Check struct {
		Placeholders bool `env:"TSTOOL_CHECK_PLACEHOLDERS,overwrite" yaml:"placeholders"`
		Accelerators bool `env:"TSTOOL_CHECK_ACCELERATORS,overwrite" yaml:"accelerators"`
		Punctuation  bool `env:"TSTOOL_CHECK_PUNCTUATION,overwrite" yaml:"punctuation"`
		Whitespace   bool `env:"TSTOOL_CHECK_WHITESPACE,overwrite" yaml:"whitespace"`
		SkipNumerus  bool `env:"TSTOOL_CHECK_SKIP_NUMERUS,overwrite" yaml:"skipNumerus"`
		// Strict makes warnings fail validation.
		Strict bool `env:"TSTOOL_CHECK_STRICT,overwrite" yaml:"strict"`
		// Concurrency bounds the number of files checked at once; 0 means one per CPU.
		Concurrency int `env:"TSTOOL_CHECK_CONCURRENCY,overwrite" yaml:"concurrency"`
	} `yaml:"check"`

	Format struct {
		MergeContexts bool `env:"TSTOOL_FORMAT_MERGE_CONTEXTS,overwrite" yaml:"mergeContexts"`
		DropObsolete  bool `env:"TSTOOL_FORMAT_DROP_OBSOLETE,overwrite" yaml:"dropObsolete"`
	} `yaml:"format"`

	Export struct {
		Project string `env:"TSTOOL_EXPORT_PROJECT,overwrite" yaml:"project"`
	} `yaml:"export"`

	Memory struct {
		Database string `env:"TSTOOL_MEMORY_DATABASE,overwrite" yaml:"database"`
	} `yaml:"memory"`

	Watch struct {
		Debounce  time.Duration `env:"TSTOOL_WATCH_DEBOUNCE,overwrite" yaml:"debounce"`
		CacheSize int           `env:"TSTOOL_WATCH_CACHE_SIZE,overwrite" yaml:"cacheSize"`
	} `yaml:"watch"`
}

// LoadConfig loads the configuration from various sources.
//
// The file is chosen with the following precedence:
//  1. configFlag, when the -config flag was set explicitly
//  2. the TSTOOL_CONFIGFILE environment variable
//  3. ./tstool.yaml, falling back to ./tstool.yml
//
// Values from .env files and TSTOOL_* environment variables override the file.
func (cfg *Config) LoadConfig(configFlag string, configFlagSet bool) error {
	var configFilePath string

	switch {
	case configFlagSet:
		configFilePath = configFlag
	case os.Getenv(configFileEnvVarName) != "":
		configFilePath = os.Getenv(configFileEnvVarName)
	default:
		configFilePath = DefaultConfigFile
		if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
			if _, statErr := os.Stat(fallbackConfigFile); statErr == nil {
				configFilePath = fallbackConfigFile
			}
		}
	}

	cfg.SetDefaults()

	cfg.Build.Load()

	if err := cfg.readYAML(configFilePath, configFlagSet); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	cfg.setupAudit()

	cfg.print()

	return nil
}

// CheckOptions returns the validation heuristics selected by the configuration.
func (cfg *Config) CheckOptions() check.Options {
	return check.Options{
		Placeholders: cfg.Check.Placeholders,
		Accelerators: cfg.Check.Accelerators,
		Punctuation:  cfg.Check.Punctuation,
		Whitespace:   cfg.Check.Whitespace,
		SkipNumerus:  cfg.Check.SkipNumerus,
	}
}

// GetDurationEncoderOption returns a YAML encoder option that marshals
// time.Duration into a human-readable string format (e.g., "300ms", "1m0s").
func GetDurationEncoderOption() yaml.EncodeOption {
	return yaml.CustomMarshaler[time.Duration](
		func(d time.Duration) ([]byte, error) {
			return yaml.Marshal(d.String())
		},
	)
}
