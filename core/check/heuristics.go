// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package check

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"codeberg.org/pixivfe/tstool/core/ts"
)

// placeMarkerRegexp matches Qt place markers: %1..%99, localized %L1, and %n.
var placeMarkerRegexp = regexp.MustCompile(`%L?([1-9][0-9]?|n)`)

// fullWidth maps CJK punctuation onto its ASCII counterpart.
var fullWidth = map[rune]rune{
	'。': '.',
	'．': '.',
	'：': ':',
	'？': '?',
	'！': '!',
}

func checkHeuristics(r *Report, opts Options, c *ts.Context, m *ts.Message) {
	for form, text := range m.Texts() {
		for variant := range strings.SplitSeq(text, ts.VariantSeparator) {
			if variant == "" {
				continue
			}

			if opts.Placeholders {
				checkPlaceMarkers(r, c, m, variant, form)
			}

			if opts.Accelerators && hasAccelerator(m.Source) != hasAccelerator(variant) {
				r.add(SeverityWarning, CodeAccelerator, c, m, "accelerator mismatch in %q", variant)
			}

			if opts.Punctuation && endPunctuation(m.Source) != endPunctuation(variant) {
				r.add(SeverityWarning, CodePunctuation, c, m, "ending punctuation differs in %q", variant)
			}

			if opts.Whitespace && !sameSurroundingSpace(m.Source, variant) {
				r.add(SeverityWarning, CodeWhitespace, c, m, "leading or trailing whitespace differs in %q", variant)
			}
		}
	}
}

func checkPlaceMarkers(r *Report, c *ts.Context, m *ts.Message, text string, form int) {
	want := placeMarkers(m.Source)
	got := placeMarkers(text)

	// A numerus form may spell out its count ("un archivo").
	if m.Numerus && !slices.Contains(got, "n") {
		want = slices.DeleteFunc(want, func(s string) bool { return s == "n" })
	}

	if !slices.Equal(want, got) {
		r.add(SeverityWarning, CodePlaceholder, c, m, "form %d place markers %v do not match source %v", form, got, want)
	}
}

// placeMarkers returns the sorted, de-duplicated marker names in s.
func placeMarkers(s string) []string {
	var out []string

	for _, sub := range placeMarkerRegexp.FindAllStringSubmatch(s, -1) {
		out = append(out, sub[1])
	}

	slices.Sort(out)

	return slices.Compact(out)
}

// hasAccelerator reports whether s marks a keyboard accelerator with '&'.
// "&&" is a literal ampersand.
func hasAccelerator(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			continue
		}

		if i+1 >= len(s) {
			return false
		}

		if s[i+1] == '&' {
			i++

			continue
		}

		next, _ := utf8.DecodeRuneInString(s[i+1:])
		if !unicode.IsSpace(next) {
			return true
		}
	}

	return false
}

// endPunctuation returns the normalised sentence-ending punctuation of s,
// or "" when s does not end in punctuation.
func endPunctuation(s string) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)

	if strings.HasSuffix(s, "...") || strings.HasSuffix(s, "…") {
		return "…"
	}

	last, _ := utf8.DecodeLastRuneInString(s)
	if fw, ok := fullWidth[last]; ok {
		last = fw
	}

	switch last {
	case '.', ':', '?', '!':
		return string(last)
	}

	return ""
}

func sameSurroundingSpace(a, b string) bool {
	leading := func(s string) bool { return s != strings.TrimLeftFunc(s, unicode.IsSpace) }
	trailing := func(s string) bool { return s != strings.TrimRightFunc(s, unicode.IsSpace) }

	return leading(a) == leading(b) && trailing(a) == trailing(b)
}
