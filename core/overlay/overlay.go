// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package overlay checks source-language fix-up files.

A fix-up overlay is a .ts file in the source language whose translations
correct the original English text (typos, plural forms) without touching
the source strings, so existing translations stay valid. Overlay entries
only take effect while their key still exists in the application, so an
overlay must be re-checked against a current translation file after every
string extraction.
*/
package overlay

import (
	"errors"
	"fmt"
	"strings"

	"codeberg.org/pixivfe/tstool/core/numerus"
	"codeberg.org/pixivfe/tstool/core/ts"
)

// ErrLanguageMismatch is returned when the overlay is not written in the
// source language of the base file.
var ErrLanguageMismatch = errors.New("overlay language does not match source language")

// Entry is an overlay message that no longer matches a live base message.
type Entry struct {
	Key  ts.Key
	Line int
}

// Orphans lists the live overlay messages whose key does not exist among
// the live messages of base, in overlay order.
//
// When base declares a source language, the overlay language must share its
// base language subtag, e.g. "en_US" for "en".
func Orphans(base, fixup *ts.File) ([]Entry, error) {
	if err := matchLanguage(base.SourceLanguage, fixup.Language); err != nil {
		return nil, err
	}

	live := make(map[ts.Key]struct{})

	for c, m := range base.All() {
		if m.Translation.Type.Live() {
			live[m.Key(c.Name)] = struct{}{}
		}
	}

	var out []Entry

	for c, m := range fixup.All() {
		if !m.Translation.Type.Live() {
			continue
		}

		k := m.Key(c.Name)
		if _, ok := live[k]; !ok {
			out = append(out, Entry{Key: k, Line: m.Line})
		}
	}

	return out, nil
}

func matchLanguage(source, overlay string) error {
	if source == "" {
		return nil
	}

	want, err := numerus.ParseLanguage(source)
	if err != nil {
		return fmt.Errorf("base file: %w", err)
	}

	got, err := numerus.ParseLanguage(overlay)
	if err != nil {
		return fmt.Errorf("overlay file: %w", err)
	}

	wb, _ := want.Base()
	gb, _ := got.Base()

	if !strings.EqualFold(wb.String(), gb.String()) {
		return fmt.Errorf("%w: overlay is %q, base source is %q", ErrLanguageMismatch, overlay, source)
	}

	return nil
}
