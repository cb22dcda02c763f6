// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package ts

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFile(t *testing.T) {
	t.Parallel()

	f, err := DecodeFile("testdata/qtcreator_es.ts")
	require.NoError(t, err)

	assert.Equal(t, "2.1", f.Version)
	assert.Equal(t, "es_ES", f.Language)
	require.Len(t, f.Contexts, 3)

	main := f.Contexts[0]
	assert.Equal(t, "Core::Internal::MainWindow", main.Name)
	require.Len(t, main.Messages, 4)

	file := main.Messages[0]
	assert.Equal(t, "&File", file.Source)
	assert.Equal(t, "&Archivo", file.Translation.Text)
	assert.Equal(t, Finished, file.Translation.Type)
	assert.Equal(t, []Location{{Filename: "../../src/plugins/coreplugin/mainwindow.cpp", Line: "412"}}, file.Locations)
	assert.Equal(t, 6, file.Line)

	assert.Equal(t, `Open File "%1"?`, main.Messages[1].Source)
	assert.Equal(t, "+6", main.Messages[1].Locations[0].Line)

	exit := main.Messages[2]
	assert.Equal(t, "menu entry", exit.Comment)
	assert.Equal(t, "Shown in the File menu.", exit.ExtraComment)
	assert.Equal(t, "Use the imperative.", exit.TranslatorComment)

	unfinished := main.Messages[3]
	assert.Equal(t, "Don't show again", unfinished.Source)
	assert.Equal(t, Unfinished, unfinished.Translation.Type)
	assert.True(t, unfinished.Translation.Empty())

	build := f.Contexts[1]
	numerus := build.Messages[0]
	assert.True(t, numerus.Numerus)
	assert.Equal(t, []string{"Finalizado %n de %1 paso", "Finalizados %n de %1 pasos"}, numerus.Translation.Forms)
	assert.Equal(t, numerus.Translation.Forms, numerus.Texts())

	assert.Equal(t, "Tab\x1bEscape", build.Messages[1].Source)
	assert.Equal(t, "Configuración de compilación"+VariantSeparator+"Compilación", build.Messages[2].Translation.Text)
	assert.Equal(t, Obsolete, build.Messages[3].Translation.Type)
}

func TestDecodeMessageTypeAttribute(t *testing.T) {
	t.Parallel()

	const doc = `<TS version="1.1" language="es">
<context><name>C</name>
<message type="unfinished"><source>a</source><translation>b</translation></message>
<message type="unfinished"><source>c</source><translation type="obsolete">d</translation></message>
</context></TS>`

	f, err := Decode(strings.NewReader(doc), "inline.ts")
	require.NoError(t, err)

	msgs := f.Contexts[0].Messages
	assert.Equal(t, Unfinished, msgs[0].Translation.Type)
	assert.Equal(t, Obsolete, msgs[1].Translation.Type)
}

func TestDecodeDependenciesAndExtras(t *testing.T) {
	t.Parallel()

	const doc = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE TS>
<TS version="2.1" language="de" sourcelanguage="en">
<dependencies>
<dependency catalog="qtbase_de"/>
</dependencies>
<context>
    <name>C</name>
    <comment>context note</comment>
    <message id="core.open">
        <source>Open</source>
        <oldsource>Open...</oldsource>
        <translation>Öffnen</translation>
        <userdata>42</userdata>
        <extra-po-flags>c-format</extra-po-flags>
    </message>
</context>
</TS>`

	f, err := Decode(strings.NewReader(doc), "extras.ts")
	require.NoError(t, err)

	assert.Equal(t, "en", f.SourceLanguage)
	assert.Equal(t, []string{"qtbase_de"}, f.Dependencies)
	assert.Equal(t, "context note", f.Contexts[0].Comment)

	m := f.Contexts[0].Messages[0]
	assert.Equal(t, "core.open", m.ID)
	assert.Equal(t, "Open...", m.OldSource)
	assert.Equal(t, "42", m.UserData)
	assert.Equal(t, []Extra{{Name: "po-flags", Value: "c-format"}}, m.Extras)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		doc      string
		wantErr  error
		wantLine int
	}{
		{
			name:     "not a TS document",
			doc:      "<xliff version=\"1.2\"/>",
			wantErr:  ErrNotTS,
			wantLine: 1,
		},
		{
			name:     "empty document",
			doc:      "  \n",
			wantErr:  ErrEmptyDocument,
			wantLine: 2,
		},
		{
			name:     "mismatched tag",
			doc:      "<TS>\n<context>\n<name>C</nam>\n</context>\n</TS>",
			wantErr:  ErrMalformed,
			wantLine: 3,
		},
		{
			name:     "unknown element",
			doc:      "<TS>\n<context>\n<bogus/>\n</context>\n</TS>",
			wantErr:  ErrUnexpectedElement,
			wantLine: 3,
		},
		{
			name:     "stray text",
			doc:      "<TS>\n<context>hello<name>C</name></context></TS>",
			wantErr:  ErrUnexpectedText,
			wantLine: 2,
		},
		{
			name:     "message without source",
			doc:      "<TS>\n<context><name>C</name>\n<message><translation>x</translation></message></context></TS>",
			wantErr:  ErrMissingSource,
			wantLine: 3,
		},
		{
			name:     "invalid type",
			doc:      "<TS>\n<context><name>C</name>\n<message><source>a</source><translation type=\"done\">x</translation></message></context></TS>",
			wantErr:  ErrBadTranslationType,
			wantLine: 3,
		},
		{
			name:     "bad byte value",
			doc:      "<TS>\n<context><name>C</name>\n<message><source>a<byte value=\"xzz\"/></source></message></context></TS>",
			wantErr:  ErrBadByteValue,
			wantLine: 3,
		},
		{
			name:     "byte value is a surrogate",
			doc:      "<TS>\n<context><name>C</name>\n<message><source>a<byte value=\"xd800\"/></source></message></context></TS>",
			wantErr:  ErrBadByteValue,
			wantLine: 3,
		},
		{
			name:     "byte value is a noncharacter",
			doc:      "<TS>\n<context><name>C</name>\n<message><source>a<byte value=\"xfffe\"/></source></message></context></TS>",
			wantErr:  ErrBadByteValue,
			wantLine: 3,
		},
		{
			name:     "byte value is U+FFFF in decimal",
			doc:      "<TS>\n<context><name>C</name>\n<message><source>a<byte value=\"65535\"/></source></message></context></TS>",
			wantErr:  ErrBadByteValue,
			wantLine: 3,
		},
		{
			name:     "byte value past the Unicode range",
			doc:      "<TS>\n<context><name>C</name>\n<message><source>a<byte value=\"x110000\"/></source></message></context></TS>",
			wantErr:  ErrBadByteValue,
			wantLine: 3,
		},
		{
			name:     "invalid message type next to a translation type",
			doc:      "<TS>\n<context><name>C</name>\n<message type=\"bogus\"><source>a</source><translation type=\"unfinished\"/></message></context></TS>",
			wantErr:  ErrBadTranslationType,
			wantLine: 3,
		},
		{
			name:     "undefined entity",
			doc:      "<TS>\n<context><name>&nbsp;</name></context></TS>",
			wantErr:  ErrMalformed,
			wantLine: 2,
		},
		{
			name:     "truncated",
			doc:      "<TS>\n<context><name>C</name>\n",
			wantErr:  ErrMalformed,
			wantLine: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode(strings.NewReader(tt.doc), "bad.ts")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "error %v is not a ParseError", err)
			assert.Equal(t, "bad.ts", pe.File)
			assert.Equal(t, tt.wantLine, pe.Line)
			assert.Positive(t, pe.Column)
			assert.True(t, strings.HasPrefix(err.Error(), "bad.ts:"), err.Error())
		})
	}
}

func TestDecodeFileMissing(t *testing.T) {
	t.Parallel()

	_, err := DecodeFile("testdata/does-not-exist.ts")
	require.Error(t, err)

	var pe *ParseError
	assert.False(t, errors.As(err, &pe))
}
