// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package tm

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/tstool/core/ts"
)

func openMemory(t *testing.T) (*Memory, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tm.sqlite")

	m, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	return m, path
}

func TestImportSkipsUnfinishedAndObsolete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := openMemory(t)

	f, err := ts.DecodeFile("../ts/testdata/qtcreator_es.ts")
	require.NoError(t, err)

	n, err := m.Import(ctx, f, "qtcreator_es.ts")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	total, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, total)

	matches, err := m.Lookup(ctx, "es_ES", "Cleaning")
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = m.Lookup(ctx, "es_ES", "Don't show again")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := openMemory(t)

	f, err := ts.DecodeFile("../ts/testdata/qtcreator_es.ts")
	require.NoError(t, err)

	_, err = m.Import(ctx, f, "qtcreator_es.ts")
	require.NoError(t, err)

	matches, err := m.Lookup(ctx, "es_ES", "Finished %n of %1 steps")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	got := matches[0]
	assert.Equal(t, "es-ES", got.Language)
	assert.Equal(t, "ProjectExplorer::BuildManager", got.Context)
	assert.True(t, got.Numerus)
	assert.Equal(t, []string{"Finalizado %n de %1 paso", "Finalizados %n de %1 pasos"}, got.Texts)
	assert.Equal(t, "qtcreator_es.ts", got.Origin)

	matches, err = m.Lookup(ctx, "es", "Exit")
	require.NoError(t, err, "a bare language matches its regional variants")
	require.Len(t, matches, 1)
	assert.Equal(t, "menu entry", matches[0].Comment)
	assert.Equal(t, []string{"Salir"}, matches[0].Texts)

	matches, err = m.Lookup(ctx, "es_MX", "Exit")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestLookupNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := openMemory(t)

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	file := func(ctxName, text string) *ts.File {
		return &ts.File{Language: "de", Contexts: []*ts.Context{{Name: ctxName, Messages: []*ts.Message{
			{Source: "Save", Translation: ts.Translation{Text: text}},
		}}}}
	}

	_, err := m.Import(ctx, file("Editor", "Sichern"), "old.ts")
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	_, err = m.Import(ctx, file("Dialog", "Speichern"), "new.ts")
	require.NoError(t, err)

	matches, err := m.Lookup(ctx, "de", "Save")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Dialog", matches[0].Context)
	assert.Equal(t, "Editor", matches[1].Context)
	assert.True(t, matches[0].Updated.Equal(clock))

	// Reimporting a key replaces its translation.
	clock = clock.Add(time.Hour)
	_, err = m.Import(ctx, file("Editor", "Speichern"), "fixed.ts")
	require.NoError(t, err)

	matches, err = m.Lookup(ctx, "de", "Save")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Editor", matches[0].Context)
	assert.Equal(t, []string{"Speichern"}, matches[0].Texts)
	assert.Equal(t, "fixed.ts", matches[0].Origin)
}

func TestImportRequiresLanguage(t *testing.T) {
	t.Parallel()

	m, _ := openMemory(t)

	_, err := m.Import(context.Background(), &ts.File{}, "x.ts")
	require.ErrorIs(t, err, ErrNoLanguage)
}

func TestReopenKeepsSchema(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tm.sqlite")

	m, err := Open(ctx, path)
	require.NoError(t, err)

	_, err = m.Import(ctx, &ts.File{Language: "fr", Contexts: []*ts.Context{{Name: "C", Messages: []*ts.Message{
		{Source: "Yes", Translation: ts.Translation{Text: "Oui"}},
	}}}}, "fr.ts")
	require.NoError(t, err)
	require.NoError(t, m.Close())

	m, err = Open(ctx, path)
	require.NoError(t, err)
	defer m.Close()

	version, err := m.migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
