// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package check validates decoded translation files.

Structural findings (duplicate keys, wrong numerus form counts, finished
messages without text) are errors. The heuristics Qt Linguist offers to
translators (place markers, accelerators, ending punctuation, surrounding
whitespace) are warnings and can be switched off through [Options].
*/
package check

import (
	"errors"
	"fmt"

	"codeberg.org/pixivfe/tstool/core/numerus"
	"codeberg.org/pixivfe/tstool/core/ts"
)

// Severity of a finding.
type Severity string

// Possible values for Severity.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code names the kind of a finding.
type Code string

// Finding codes.
const (
	CodeBadVersion      Code = "bad-version"
	CodeUnknownLanguage Code = "unknown-language"
	CodeDuplicateKey    Code = "duplicate-key"
	CodeNumerusMissing  Code = "numerus-missing"
	CodeNumerusCount    Code = "numerus-count"
	CodeEmptyFinished   Code = "empty-finished"
	CodePlaceholder     Code = "placeholder"
	CodeAccelerator     Code = "accelerator"
	CodePunctuation     Code = "punctuation"
	CodeWhitespace      Code = "whitespace"
)

// Options selects the optional heuristics.
type Options struct {
	Placeholders bool
	Accelerators bool
	Punctuation  bool
	Whitespace   bool
	// SkipNumerus disables numerus form counting. Source language overlays
	// are often checked this way.
	SkipNumerus bool
}

// DefaultOptions enables every heuristic.
func DefaultOptions() Options {
	return Options{
		Placeholders: true,
		Accelerators: true,
		Punctuation:  true,
		Whitespace:   true,
	}
}

// Finding is a single problem found in a file.
type Finding struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Code     Code     `json:"code"     yaml:"code"`
	Context  string   `json:"context"  yaml:"context,omitempty"`
	Source   string   `json:"source"   yaml:"source,omitempty"`
	Line     int      `json:"line"     yaml:"line,omitempty"`
	Message  string   `json:"message"  yaml:"message"`
}

func (f Finding) String() string {
	loc := ""
	if f.Line > 0 {
		loc = fmt.Sprintf("line %d: ", f.Line)
	}

	if f.Context == "" {
		return fmt.Sprintf("%s%s [%s]: %s", loc, f.Severity, f.Code, f.Message)
	}

	return fmt.Sprintf("%s%s [%s] %s / %q: %s", loc, f.Severity, f.Code, f.Context, f.Source, f.Message)
}

// Report collects the findings for one file.
type Report struct {
	File     string    `json:"file"     yaml:"file"`
	Findings []Finding `json:"findings" yaml:"findings"`
}

// ErrFailed is returned by Report.Err when a file has errors.
var ErrFailed = errors.New("validation failed")

// Errors returns the number of error findings.
func (r *Report) Errors() int {
	return r.count(SeverityError)
}

// Warnings returns the number of warning findings.
func (r *Report) Warnings() int {
	return r.count(SeverityWarning)
}

// Passed reports whether the file has no errors. In strict mode warnings
// also fail the file.
func (r *Report) Passed(strict bool) bool {
	if strict {
		return len(r.Findings) == 0
	}

	return r.Errors() == 0
}

// Err summarises a failed report as an error wrapping ErrFailed.
func (r *Report) Err(strict bool) error {
	if r.Passed(strict) {
		return nil
	}

	return fmt.Errorf("%w: %s: %d error(s), %d warning(s)", ErrFailed, r.File, r.Errors(), r.Warnings())
}

func (r *Report) count(s Severity) int {
	n := 0

	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}

	return n
}

func (r *Report) add(sev Severity, code Code, c *ts.Context, m *ts.Message, format string, args ...any) {
	f := Finding{Severity: sev, Code: code, Message: fmt.Sprintf(format, args...)}

	if c != nil {
		f.Context = c.Name
	}

	if m != nil {
		f.Source = m.Source
		f.Line = m.Line
	}

	r.Findings = append(r.Findings, f)
}

// Check validates f. The name is recorded in the report.
func Check(name string, f *ts.File, opts Options) *Report {
	r := &Report{File: name}

	switch f.Version {
	case "1.1", "2.0", "2.1":
	default:
		r.add(SeverityError, CodeBadVersion, nil, nil, "unsupported TS version %q", f.Version)
	}

	var rule *numerus.Rule

	if !opts.SkipNumerus {
		if nr, err := numerus.ForLanguage(f.Language); err != nil {
			r.add(SeverityWarning, CodeUnknownLanguage, nil, nil, "numerus forms not checked: %v", err)
		} else {
			rule = &nr
		}
	}

	seen := make(map[ts.Key]int)

	for c, m := range f.All() {
		if !m.Translation.Type.Live() {
			continue
		}

		k := m.Key(c.Name)
		if first, dup := seen[k]; dup {
			r.add(SeverityError, CodeDuplicateKey, c, m, "duplicate of message at line %d", first)
		} else {
			seen[k] = m.Line
		}

		if m.Numerus {
			checkNumerus(r, rule, c, m)
		}

		if m.Translation.Type == ts.Finished && m.Translation.Empty() {
			r.add(SeverityError, CodeEmptyFinished, c, m, "finished message has no translation")

			continue
		}

		checkHeuristics(r, opts, c, m)
	}

	return r
}

func checkNumerus(r *Report, rule *numerus.Rule, c *ts.Context, m *ts.Message) {
	forms := len(m.Translation.Forms)
	if forms == 0 {
		if m.Translation.Type == ts.Finished {
			r.add(SeverityError, CodeNumerusMissing, c, m, "numerus message has no numerusform entries")
		}

		return
	}

	// A fully empty translation is reported once by the caller.
	if m.Translation.Type == ts.Finished && !m.Translation.Empty() {
		for i, form := range m.Translation.Forms {
			if form == "" {
				r.add(SeverityError, CodeEmptyFinished, c, m, "numerus form %d is empty", i)
			}
		}
	}

	if rule == nil || forms == rule.Count() {
		return
	}

	sev := SeverityError
	if m.Translation.Type == ts.Unfinished {
		sev = SeverityWarning
	}

	r.add(sev, CodeNumerusCount, c, m, "has %d numerus form(s), language needs %d (counts %v)", forms, rule.Count(), rule.Examples())
}
