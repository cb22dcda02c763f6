// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package stats counts the translation state of .ts files.
package stats

import (
	"fmt"
	"io"
	"text/tabwriter"

	"codeberg.org/pixivfe/tstool/core/ts"
)

// Counts summarises one file, or several when aggregated.
type Counts struct {
	File         string `json:"file"         yaml:"file"`
	Language     string `json:"language"     yaml:"language,omitempty"`
	Contexts     int    `json:"contexts"     yaml:"contexts"`
	Finished     int    `json:"finished"     yaml:"finished"`
	Unfinished   int    `json:"unfinished"   yaml:"unfinished"`
	Untranslated int    `json:"untranslated" yaml:"untranslated"`
	Obsolete     int    `json:"obsolete"     yaml:"obsolete"`
	Vanished     int    `json:"vanished"     yaml:"vanished"`
	Numerus      int    `json:"numerus"      yaml:"numerus"`
}

// Live returns the number of messages still used by the application.
func (c Counts) Live() int {
	return c.Finished + c.Unfinished
}

// Percent returns the share of live messages that are finished.
func (c Counts) Percent() float64 {
	if c.Live() == 0 {
		return 100
	}

	return float64(c.Finished) * 100 / float64(c.Live())
}

// Summary renders the counts the way lrelease reports them.
func (c Counts) Summary() string {
	s := fmt.Sprintf("%d translation(s) (%d finished and %d unfinished)", c.Live()-c.Untranslated, c.Finished, c.Unfinished-c.Untranslated)
	if c.Untranslated > 0 {
		s += fmt.Sprintf(", ignored %d untranslated source text(s)", c.Untranslated)
	}

	return s
}

// Count computes the counts for f.
func Count(name string, f *ts.File) Counts {
	c := Counts{File: name, Language: f.Language}
	names := make(map[string]struct{})

	for ctx, m := range f.All() {
		names[ctx.Name] = struct{}{}

		if m.Numerus {
			c.Numerus++
		}

		switch m.Translation.Type {
		case ts.Finished:
			c.Finished++
		case ts.Unfinished:
			c.Unfinished++

			if m.Translation.Empty() {
				c.Untranslated++
			}
		case ts.Obsolete:
			c.Obsolete++
		case ts.Vanished:
			c.Vanished++
		}
	}

	// Contexts without messages still count.
	for _, ctx := range f.Contexts {
		names[ctx.Name] = struct{}{}
	}

	c.Contexts = len(names)

	return c
}

// Total adds up several counts. File and Language are left empty.
func Total(all []Counts) Counts {
	var t Counts

	for _, c := range all {
		t.Contexts += c.Contexts
		t.Finished += c.Finished
		t.Unfinished += c.Unfinished
		t.Untranslated += c.Untranslated
		t.Obsolete += c.Obsolete
		t.Vanished += c.Vanished
		t.Numerus += c.Numerus
	}

	return t
}

// WriteTable prints counts as an aligned table followed by a total row.
func WriteTable(w io.Writer, all []Counts) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, "file\tlanguage\tcontexts\tfinished\tunfinished\tuntranslated\tobsolete\tdone\t")

	row := func(c Counts) {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%.1f%%\t\n",
			c.File, c.Language, c.Contexts, c.Finished, c.Unfinished, c.Untranslated, c.Obsolete+c.Vanished, c.Percent())
	}

	for _, c := range all {
		row(c)
	}

	if len(all) > 1 {
		total := Total(all)
		total.File = "total"
		row(total)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write statistics: %w", err)
	}

	return nil
}
