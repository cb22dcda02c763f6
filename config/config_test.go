// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/tstool/core/check"
)

// The tests below use t.Setenv and therefore cannot run in parallel.

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tstool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig(t *testing.T) {
	yamlFile := writeConfigFile(t, `
log:
  logLevel: warn
check:
  punctuation: false
  strict: true
watch:
  debounce: 1s
memory:
  database: /var/lib/tstool/memory.sqlite
`)

	tests := []struct {
		name    string            // Description of the test case
		flag    string            // Value of -config, when set
		env     map[string]string // Environment variables to set
		wantErr bool              // Whether an error is expected
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "Defaults without a configuration file",
			env:  map[string]string{"TSTOOL_CONFIGFILE": filepath.Join(t.TempDir(), "absent.yaml")},
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, check.DefaultOptions(), cfg.CheckOptions())
				assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
				assert.Equal(t, "./tstool-memory.sqlite", cfg.Memory.Database)
				assert.False(t, cfg.Check.Strict)
			},
		},
		{
			name: "YAML file from the environment",
			env:  map[string]string{"TSTOOL_CONFIGFILE": yamlFile},
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "warn", cfg.Log.Level)
				assert.False(t, cfg.Check.Punctuation)
				assert.True(t, cfg.Check.Accelerators, "unset keys keep their defaults")
				assert.True(t, cfg.Check.Strict)
				assert.Equal(t, time.Second, cfg.Watch.Debounce)
				assert.Equal(t, "/var/lib/tstool/memory.sqlite", cfg.Memory.Database)
			},
		},
		{
			name: "Environment variables override the file",
			flag: yamlFile,
			env: map[string]string{
				"TSTOOL_CHECK_PUNCTUATION": "true",
				"TSTOOL_WATCH_DEBOUNCE":    "50ms",
				"TSTOOL_LOG_OUTPUTS":       "/dev/stderr, /dev/stdout",
			},
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.True(t, cfg.Check.Punctuation)
				assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce)
				assert.Equal(t, []string{"/dev/stderr", "/dev/stdout"}, cfg.Log.Outputs)
			},
		},
		{
			name:    "Explicit configuration file must exist",
			flag:    filepath.Join(t.TempDir(), "missing.yaml"),
			wantErr: true,
		},
		{
			name: "Invalid TSTOOL_LOG_LEVEL",
			env: map[string]string{
				"TSTOOL_CONFIGFILE": yamlFile,
				"TSTOOL_LOG_LEVEL":  "verbose",
			},
			wantErr: true,
		},
		{
			name: "Invalid TSTOOL_WATCH_DEBOUNCE",
			env: map[string]string{
				"TSTOOL_CONFIGFILE":     yamlFile,
				"TSTOOL_WATCH_DEBOUNCE": "soon",
			},
			wantErr: true,
		},
		{
			name: "Negative TSTOOL_CHECK_CONCURRENCY",
			env: map[string]string{
				"TSTOOL_CONFIGFILE":        yamlFile,
				"TSTOOL_CHECK_CONCURRENCY": "-1",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := &Config{}
			err := cfg.LoadConfig(tt.flag, tt.flag != "")

			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestTryLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`# comment
TSTOOL_EXPORT_PROJECT="Qt Creator"
export TSTOOL_FORMAT_DROP_OBSOLETE=true
TSTOOL_LOG_FORMAT=json
not a pair
`), 0o600))

	t.Setenv("TSTOOL_LOG_FORMAT", "console")
	// Registered for cleanup only; the loader sets them through os.Setenv.
	t.Setenv("TSTOOL_EXPORT_PROJECT", "")
	t.Setenv("TSTOOL_FORMAT_DROP_OBSOLETE", "")
	os.Unsetenv("TSTOOL_EXPORT_PROJECT")
	os.Unsetenv("TSTOOL_FORMAT_DROP_OBSOLETE")

	loaded, err := tryLoadDotEnv(path)
	require.NoError(t, err)
	assert.True(t, loaded)

	assert.Equal(t, "Qt Creator", os.Getenv("TSTOOL_EXPORT_PROJECT"))
	assert.Equal(t, "true", os.Getenv("TSTOOL_FORMAT_DROP_OBSOLETE"))
	assert.Equal(t, "console", os.Getenv("TSTOOL_LOG_FORMAT"), "existing variables win")

	loaded, err = tryLoadDotEnv(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.False(t, loaded)
}

func TestReadEnvRejectsNonPointer(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, readEnv(Config{}), errExpectedPointerToStruct)
}

func TestRevision(t *testing.T) {
	t.Parallel()

	b := buildInfo{}
	assert.Equal(t, "unknown", b.Revision())

	b = buildInfo{VcsRevision: "0123456789abcdef", VcsTime: "2025-02-14T10:00:00Z", VcsModified: true}
	assert.Equal(t, "2025-02-14-01234567+dirty", b.Revision())
}
