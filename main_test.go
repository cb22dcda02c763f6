// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/tstool/config"
	"codeberg.org/pixivfe/tstool/core/ts"
)

const (
	spanishFile = "core/ts/testdata/qtcreator_es.ts"
	overlayFile = "core/ts/testdata/qtcreator_en.ts"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.Memory.Database = filepath.Join(t.TempDir(), "memory.sqlite")

	var stdout, stderr bytes.Buffer

	return &app{cfg: cfg, stdout: &stdout, stderr: &stderr}, &stdout, &stderr
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

const brokenFile = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE TS>
<TS version="2.1" language="de">
<context>
    <name>Dialog</name>
    <message>
        <source>Save</source>
        <translation></translation>
    </message>
</context>
</TS>
`

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("Passing file", func(t *testing.T) {
		t.Parallel()

		a, stdout, _ := newTestApp(t)
		require.NoError(t, runValidate(context.Background(), a, []string{spanishFile}))
		assert.Contains(t, stdout.String(), spanishFile+": ok (0 error(s), 0 warning(s))")
	})

	t.Run("Finished message without translation", func(t *testing.T) {
		t.Parallel()

		a, stdout, _ := newTestApp(t)
		broken := writeTemp(t, "app_de.ts", brokenFile)

		err := runValidate(context.Background(), a, []string{"-j", "2", spanishFile, broken})
		require.ErrorIs(t, err, errFailed)
		assert.Contains(t, err.Error(), "1 of 2 file(s)")
		assert.Contains(t, stdout.String(), broken+": line 6: error [empty-finished] Dialog / \"Save\"")
		assert.Contains(t, stdout.String(), broken+": FAILED")
	})

	t.Run("Malformed file", func(t *testing.T) {
		t.Parallel()

		a, stdout, _ := newTestApp(t)
		bad := writeTemp(t, "bad.ts", "<TS version=\"2.1\">\n<context>\n</TS>\n")

		err := runValidate(context.Background(), a, []string{bad})
		require.ErrorIs(t, err, errFailed)
		assert.Contains(t, stdout.String(), bad+":3:")
	})

	t.Run("No files", func(t *testing.T) {
		t.Parallel()

		a, _, stderr := newTestApp(t)
		require.ErrorIs(t, runValidate(context.Background(), a, nil), errUsage)
		assert.Contains(t, stderr.String(), "Usage: tstool validate")
	})
}

func TestFmt(t *testing.T) {
	t.Parallel()

	golden, err := os.ReadFile(spanishFile)
	require.NoError(t, err)

	t.Run("Canonical file is left alone", func(t *testing.T) {
		t.Parallel()

		a, stdout, _ := newTestApp(t)
		require.NoError(t, runFmt(context.Background(), a, []string{"-l", spanishFile}))
		assert.Empty(t, stdout.String())

		require.NoError(t, runFmt(context.Background(), a, []string{spanishFile}))
		assert.Equal(t, string(golden), stdout.String())
	})

	t.Run("Rewrite in place", func(t *testing.T) {
		t.Parallel()

		a, stdout, _ := newTestApp(t)
		messy := writeTemp(t, "app_de.ts",
			`<TS version="2.1" language="de"><context><name>Dialog</name>`+
				`<message><source>Save</source><translation>Speichern</translation></message>`+
				`</context><context><name>Dialog</name>`+
				`<message><source>Old</source><translation type="obsolete">Alt</translation></message>`+
				`</context></TS>`)

		require.NoError(t, runFmt(context.Background(), a, []string{"-l", messy}))
		assert.Equal(t, messy+"\n", stdout.String())

		require.NoError(t, runFmt(context.Background(), a, []string{"-w", "-merge", "-drop-obsolete", messy}))

		f, err := ts.DecodeFile(messy)
		require.NoError(t, err)
		require.Len(t, f.Contexts, 1)
		require.Len(t, f.Contexts[0].Messages, 1)
		assert.Equal(t, "Speichern", f.Contexts[0].Messages[0].Translation.Text)

		info, err := os.Stat(messy)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	})
}

func TestStats(t *testing.T) {
	t.Parallel()

	a, stdout, _ := newTestApp(t)
	require.NoError(t, runStats(context.Background(), a, []string{"-format", "json", spanishFile}))

	var doc statsDocument
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
	require.Len(t, doc.Files, 1)
	assert.Equal(t, 7, doc.Files[0].Finished)
	assert.Equal(t, 7, doc.Total.Finished)
	assert.Equal(t, "total", doc.Total.File)

	stdout.Reset()
	require.NoError(t, runStats(context.Background(), a, []string{"-format", "yaml", spanishFile}))
	assert.Contains(t, stdout.String(), "finished: 7")

	stdout.Reset()
	require.NoError(t, runStats(context.Background(), a, []string{spanishFile}))
	assert.Contains(t, stdout.String(), "ignored 1 untranslated source text(s)")

	require.ErrorIs(t, runStats(context.Background(), a, []string{"-format", "xml", spanishFile}), errUsage)
}

func TestExport(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestApp(t)
	out := filepath.Join(t.TempDir(), "es.po")

	require.NoError(t, runExport(context.Background(), a, []string{"-o", out, "-project", "Qt Creator", spanishFile}))

	po, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(po), `"Project-Id-Version: Qt Creator\n"`)
	assert.Contains(t, string(po), `msgctxt "Core::Internal::MainWindow|menu entry"`)
}

func TestOverlay(t *testing.T) {
	t.Parallel()

	a, stdout, _ := newTestApp(t)

	err := runOverlay(context.Background(), a, []string{"-base", spanishFile, overlayFile})
	require.ErrorIs(t, err, errFailed)
	assert.Equal(t,
		overlayFile+":13: ProjectExplorer::BuildManager / Compile Output: not in "+spanishFile+"\n",
		stdout.String())

	require.ErrorIs(t, runOverlay(context.Background(), a, []string{overlayFile}), errUsage)
}

func TestTranslationMemory(t *testing.T) {
	t.Parallel()

	a, stdout, stderr := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, runTM(ctx, a, []string{"import", spanishFile}))
	assert.Equal(t, spanishFile+": 7 translation(s) stored\n", stdout.String())

	stdout.Reset()
	require.NoError(t, runTM(ctx, a, []string{"lookup", "-lang", "es", "Build", "Settings"}))
	assert.Equal(t,
		"es-ES\tProjectExplorer::BuildManager / Build Settings\tConfiguración de compilación\u009cCompilación\n",
		stdout.String())

	require.ErrorIs(t, runTM(ctx, a, []string{"lookup", "-lang", "fr", "Exit"}), errFailed)
	assert.Contains(t, stderr.String(), `No translation of "Exit" into fr`)

	require.ErrorIs(t, runTM(ctx, a, []string{"export"}), errUsage)
}

func TestHelp(t *testing.T) {
	t.Parallel()

	a, stdout, _ := newTestApp(t)

	require.NoError(t, runHelp(context.Background(), a, nil))
	assert.Contains(t, stdout.String(), "validate")
	assert.Contains(t, stdout.String(), "-config")

	stdout.Reset()
	require.NoError(t, runHelp(context.Background(), a, []string{cmdFmt}))
	assert.Contains(t, stdout.String(), "-drop-obsolete")

	stdout.Reset()
	require.NoError(t, runHelp(context.Background(), a, []string{cmdTM}))
	assert.Contains(t, stdout.String(), "lookup")

	require.ErrorIs(t, runHelp(context.Background(), a, []string{"bogus"}), errUsage)
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"translate"}, &stdout, &stderr)
	require.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), "Command 'translate' not recognised")

	err = run(context.Background(), []string{"-h"}, &stdout, &stderr)
	require.ErrorIs(t, err, flag.ErrHelp)
}
