// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package ts

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"
)

const indentUnit = "    "

// encoder writes a document and remembers the first write error.
type encoder struct {
	w   *bufio.Writer
	err error
}

// Encode writes f to w in the layout Qt Linguist produces.
func Encode(w io.Writer, f *File) error {
	e := &encoder{w: bufio.NewWriter(w)}

	version := f.Version
	if version == "" {
		version = DefaultVersion
	}

	e.line(0, `<?xml version="1.0" encoding="utf-8"?>`)
	e.line(0, `<!DOCTYPE TS>`)

	open := `<TS version="` + escapeAttr(version) + `"`
	if f.Language != "" {
		open += ` language="` + escapeAttr(f.Language) + `"`
	}

	if f.SourceLanguage != "" {
		open += ` sourcelanguage="` + escapeAttr(f.SourceLanguage) + `"`
	}

	e.line(0, open+">")

	if len(f.Dependencies) > 0 {
		e.line(0, "<dependencies>")

		for _, dep := range f.Dependencies {
			e.line(0, `<dependency catalog="`+escapeAttr(dep)+`"/>`)
		}

		e.line(0, "</dependencies>")
	}

	for _, c := range f.Contexts {
		e.context(c)
	}

	e.line(0, "</TS>")

	if e.err != nil {
		return fmt.Errorf("failed to write translation file: %w", e.err)
	}

	if err := e.w.Flush(); err != nil {
		return fmt.Errorf("failed to write translation file: %w", err)
	}

	return nil
}

// Marshal returns the encoded form of f.
func Marshal(f *File) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *encoder) context(c *Context) {
	e.line(0, "<context>")
	e.element(1, "name", c.Name)

	if c.Comment != "" {
		e.element(1, "comment", c.Comment)
	}

	for _, m := range c.Messages {
		e.message(m)
	}

	e.line(0, "</context>")
}

func (e *encoder) message(m *Message) {
	open := "<message"
	if m.ID != "" {
		open += ` id="` + escapeAttr(m.ID) + `"`
	}

	if m.Numerus {
		open += ` numerus="yes"`
	}

	e.line(1, open+">")

	for _, loc := range m.Locations {
		s := `<location`
		if loc.Filename != "" {
			s += ` filename="` + escapeAttr(loc.Filename) + `"`
		}

		if loc.Line != "" {
			s += ` line="` + escapeAttr(loc.Line) + `"`
		}

		e.line(2, s+"/>")
	}

	e.element(2, "source", m.Source)
	e.optional(2, "oldsource", m.OldSource)
	e.optional(2, "comment", m.Comment)
	e.optional(2, "oldcomment", m.OldComment)
	e.optional(2, "extracomment", m.ExtraComment)
	e.optional(2, "translatorcomment", m.TranslatorComment)
	e.translation(m)
	e.optional(2, "userdata", m.UserData)

	for _, x := range m.Extras {
		e.element(2, "extra-"+x.Name, x.Value)
	}

	e.line(1, "</message>")
}

func (e *encoder) translation(m *Message) {
	open := "<translation"
	if m.Translation.Type != Finished {
		open += ` type="` + string(m.Translation.Type) + `"`
	}

	if !m.Numerus {
		e.variants(2, open, "translation", m.Translation.Text)

		return
	}

	e.line(2, open+">")

	for _, form := range m.Translation.Forms {
		e.variants(3, "<numerusform", "numerusform", form)
	}

	e.line(2, "</translation>")
}

// variants writes a text element whose value may hold several length
// variants. open is the start tag without its closing '>'.
func (e *encoder) variants(depth int, open, name, text string) {
	if !strings.Contains(text, VariantSeparator) {
		e.line(depth, open+">"+escapeText(text)+"</"+name+">")

		return
	}

	e.line(depth, open+` variants="yes">`)

	for v := range strings.SplitSeq(text, VariantSeparator) {
		e.line(depth+1, "<lengthvariant>"+escapeText(v)+"</lengthvariant>")
	}

	e.line(depth, "</"+name+">")
}

func (e *encoder) element(depth int, name, text string) {
	e.line(depth, "<"+name+">"+escapeText(text)+"</"+name+">")
}

func (e *encoder) optional(depth int, name, text string) {
	if text != "" {
		e.element(depth, name, text)
	}
}

func (e *encoder) line(depth int, s string) {
	if e.err != nil {
		return
	}

	for range depth {
		if _, e.err = e.w.WriteString(indentUnit); e.err != nil {
			return
		}
	}

	if _, e.err = e.w.WriteString(s); e.err != nil {
		return
	}

	e.err = e.w.WriteByte('\n')
}

// escapeText escapes s for use as element content. Control characters other
// than tab and newline cannot be represented in XML 1.0 text and are written
// as <byte/> elements. U+FFFE and U+FFFF have no XML form and become U+FFFD.
func escapeText(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch {
		case r == '&':
			b.WriteString("&amp;")
		case r == '<':
			b.WriteString("&lt;")
		case r == '>':
			b.WriteString("&gt;")
		case r == '"':
			b.WriteString("&quot;")
		case r == '\'':
			b.WriteString("&apos;")
		case needsByteEscape(r):
			fmt.Fprintf(&b, `<byte value="x%x"/>`, r)
		case r == 0xfffe, r == 0xffff:
			b.WriteRune(unicode.ReplacementChar)
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// escapeAttr escapes s for use inside a double-quoted attribute.
func escapeAttr(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch {
		case r == '&':
			b.WriteString("&amp;")
		case r == '<':
			b.WriteString("&lt;")
		case r == '>':
			b.WriteString("&gt;")
		case r == '"':
			b.WriteString("&quot;")
		case r == '\'':
			b.WriteString("&apos;")
		case r == '\n', r == '\t', r == '\r':
			fmt.Fprintf(&b, "&#x%x;", r)
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

func needsByteEscape(r rune) bool {
	if r == '\n' || r == '\t' {
		return false
	}

	return r < 0x20 || (r >= 0x7f && r <= 0x9f && unicode.IsControl(r))
}
