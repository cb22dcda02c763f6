// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package export converts translation files to GNU gettext PO catalogues.

The mapping follows lconvert: the context name becomes msgctxt, joined with
the disambiguation comment by "|" when one is present; numerus messages use
the source as both msgid and msgid_plural; unfinished translations are
marked fuzzy; obsolete and vanished messages are written as "#~" entries.
Only the first (longest) length variant of a text is exported.
*/
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/tstool/core/numerus"
	"codeberg.org/pixivfe/tstool/core/ts"
)

// ContextSeparator joins context name and disambiguation comment in msgctxt.
const ContextSeparator = "|"

// Options tweaks the PO output.
type Options struct {
	// Project is written to the Project-Id-Version header.
	Project string
	// DropObsolete skips obsolete and vanished messages.
	DropObsolete bool
}

type poWriter struct {
	w   *bufio.Writer
	err error
}

func (p *poWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}

	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// ToPO writes f as a PO catalogue.
func ToPO(w io.Writer, f *ts.File, opts Options) error {
	p := &poWriter{w: bufio.NewWriter(w)}

	rule, err := numerus.ForLanguage(f.Language)
	if err != nil {
		// Plural-Forms then describes the two-form English rule.
		log.Warn().
			Str("sys", "export").
			Err(err).
			Str("language", f.Language).
			Msg("Unknown language, writing English plural forms")

		rule, _ = numerus.ForLanguage("en")
	}

	project := opts.Project
	if project == "" {
		project = "tstool"
	}

	p.printf("msgid \"\"\nmsgstr \"\"\n")
	p.printf("%s\n", quote("Project-Id-Version: "+project+"\n"))
	p.printf("%s\n", quote("Language: "+f.Language+"\n"))
	p.printf("%s\n", quote("MIME-Version: 1.0\n"))
	p.printf("%s\n", quote("Content-Type: text/plain; charset=UTF-8\n"))
	p.printf("%s\n", quote("Content-Transfer-Encoding: 8bit\n"))
	p.printf("%s\n", quote("Plural-Forms: "+rule.PluralForms()+"\n"))
	p.printf("%s\n", quote("X-Qt-Contexts: true\n"))

	for c, m := range f.All() {
		obsolete := !m.Translation.Type.Live()
		if obsolete && opts.DropObsolete {
			continue
		}

		p.printf("\n")
		p.entry(c, m, rule.Count(), obsolete)
	}

	if p.err != nil {
		return fmt.Errorf("failed to write PO file: %w", p.err)
	}

	if err := p.w.Flush(); err != nil {
		return fmt.Errorf("failed to write PO file: %w", err)
	}

	return nil
}

func (p *poWriter) entry(c *ts.Context, m *ts.Message, forms int, obsolete bool) {
	for line := range strings.SplitSeq(m.ExtraComment, "\n") {
		if line != "" {
			p.printf("#. %s\n", line)
		}
	}

	for line := range strings.SplitSeq(m.TranslatorComment, "\n") {
		if line != "" {
			p.printf("# %s\n", line)
		}
	}

	for _, loc := range m.Locations {
		// Relative lines only make sense next to the previous location.
		if loc.Line == "" || strings.HasPrefix(loc.Line, "+") || strings.HasPrefix(loc.Line, "-") {
			p.printf("#: %s\n", loc.Filename)
		} else {
			p.printf("#: %s:%s\n", loc.Filename, loc.Line)
		}
	}

	flags := []string{"qt-format"}
	if m.Translation.Type == ts.Unfinished && !m.Translation.Empty() {
		flags = append([]string{"fuzzy"}, flags...)
	}

	p.printf("#, %s\n", strings.Join(flags, ", "))

	prefix := ""
	if obsolete {
		prefix = "#~ "
	}

	msgctxt := c.Name
	if m.Comment != "" {
		msgctxt += ContextSeparator + m.Comment
	}

	p.field(prefix, "msgctxt", msgctxt)
	p.field(prefix, "msgid", m.Source)

	if !m.Numerus {
		p.field(prefix, "msgstr", firstVariant(m.Translation.Text))

		return
	}

	p.field(prefix, "msgid_plural", m.Source)

	for i := range max(forms, len(m.Translation.Forms)) {
		text := ""
		if i < len(m.Translation.Forms) {
			text = firstVariant(m.Translation.Forms[i])
		}

		p.field(prefix, fmt.Sprintf("msgstr[%d]", i), text)
	}
}

// field writes a keyword with its quoted value, splitting multi-line values
// after each newline the way msgcat does.
func (p *poWriter) field(prefix, keyword, value string) {
	lines := strings.SplitAfter(value, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	if len(lines) == 1 {
		p.printf("%s%s %s\n", prefix, keyword, quote(value))

		return
	}

	p.printf("%s%s \"\"\n", prefix, keyword)

	for _, l := range lines {
		p.printf("%s%s\n", prefix, quote(l))
	}
}

func firstVariant(s string) string {
	first, _, _ := strings.Cut(s, ts.VariantSeparator)

	return first
}

// quote returns s as a PO string literal.
func quote(s string) string {
	var b strings.Builder

	b.WriteByte('"')

	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\%03o`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}

	b.WriteByte('"')

	return b.String()
}
