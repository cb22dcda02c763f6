// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package reportcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/tstool/core/check"
)

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	c, err := New(8)
	require.NoError(t, err)

	report := &check.Report{File: "app_de.ts", Findings: []check.Finding{{
		Severity: check.SeverityWarning,
		Code:     check.CodePunctuation,
		Context:  "MainWindow",
		Source:   "Quit.",
		Line:     12,
		Message:  "translation does not end with \".\"",
	}}}

	key := Key("app_de.ts", []byte("<TS/>"), check.DefaultOptions(), false)

	_, ok := c.Get(key)
	assert.False(t, ok)

	evicted, err := c.Add(key, report)
	require.NoError(t, err)
	assert.False(t, evicted)

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, report, got)
	assert.NotSame(t, report, got)
	assert.Equal(t, 1, c.Len())
}

func TestKey(t *testing.T) {
	t.Parallel()

	content := []byte(`<TS version="2.1" language="de"/>`)
	opts := check.DefaultOptions()
	base := Key("de.ts", content, opts, false)

	assert.Len(t, base, 64)
	assert.Equal(t, base, Key("de.ts", content, opts, false))
	assert.NotEqual(t, base, Key("fr.ts", content, opts, false))
	assert.NotEqual(t, base, Key("de.ts", append(content, '\n'), opts, false))
	assert.NotEqual(t, base, Key("de.ts", content, opts, true))

	opts.Punctuation = false
	assert.NotEqual(t, base, Key("de.ts", content, opts, false))
}

func TestNewInvalidSize(t *testing.T) {
	t.Parallel()

	_, err := New(0)
	require.ErrorIs(t, err, ErrInvalidSize)
}
