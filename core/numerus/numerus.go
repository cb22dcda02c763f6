// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package numerus knows how many plural forms ("numerus forms") a language
uses in Qt translation files and which form a count selects.

The rules follow Qt Linguist's numerus table and are stored as gettext
plural expressions so that they can also be written to PO headers.
*/
package numerus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leonelquinteros/gotext/plurals"
	"golang.org/x/text/language"
)

// ErrUnknownLanguage is returned for languages without a known rule.
var ErrUnknownLanguage = errors.New("no plural rule for language")

// exampleLimit bounds the search for example counts.
const exampleLimit = 1000

// Rule is the plural rule of one language.
type Rule struct {
	// Forms is the number of numerus forms a translation must supply.
	Forms int
	// Expr is the gettext plural expression selecting a form for n.
	Expr string

	compiled plurals.Expression
}

// Count returns the number of plural forms.
func (r Rule) Count() int {
	return r.Forms
}

// Form returns the index of the form used for n.
func (r Rule) Form(n int) int {
	if n < 0 {
		n = -n
	}

	return r.compiled.Eval(uint32(n)) // #nosec G115 -- n is non-negative
}

// PluralForms returns the rule as a gettext Plural-Forms header value.
func (r Rule) PluralForms() string {
	return fmt.Sprintf("nplurals=%d; plural=%s;", r.Forms, r.Expr)
}

// Examples returns, for each form, the smallest non-negative count that
// selects it, or -1 when none below an internal limit does.
func (r Rule) Examples() []int {
	out := make([]int, r.Forms)
	for i := range out {
		out[i] = -1
	}

	missing := r.Forms

	for n := 0; n < exampleLimit && missing > 0; n++ {
		f := r.Form(n)
		if f >= 0 && f < r.Forms && out[f] == -1 {
			out[f] = n
			missing--
		}
	}

	return out
}

var (
	ruleUniversal  = rule(1, "0")
	ruleEnglish    = rule(2, "(n != 1)")
	ruleFrench     = rule(2, "(n > 1)")
	ruleIcelandic  = rule(2, "(n%10 != 1 || n%100 == 11)")
	ruleMacedonian = rule(2, "(n%10 == 1 && n%100 != 11) ? 0 : 1")
	ruleSlavic     = rule(3, "(n%10 == 1 && n%100 != 11) ? 0 : (n%10 >= 2 && n%10 <= 4 && (n%100 < 10 || n%100 >= 20)) ? 1 : 2")
	ruleCzech      = rule(3, "(n == 1) ? 0 : (n >= 2 && n <= 4) ? 1 : 2")
	rulePolish     = rule(3, "(n == 1) ? 0 : (n%10 >= 2 && n%10 <= 4 && (n%100 < 10 || n%100 >= 20)) ? 1 : 2")
	ruleLithuanian = rule(3, "(n%10 == 1 && n%100 != 11) ? 0 : (n%10 >= 2 && (n%100 < 10 || n%100 >= 20)) ? 1 : 2")
	ruleLatvian    = rule(3, "(n%10 == 1 && n%100 != 11) ? 0 : (n != 0) ? 1 : 2")
	ruleRomanian   = rule(3, "(n == 1) ? 0 : (n == 0 || (n%100 > 0 && n%100 < 20)) ? 1 : 2")
	ruleSlovenian  = rule(4, "(n%100 == 1) ? 0 : (n%100 == 2) ? 1 : (n%100 == 3 || n%100 == 4) ? 2 : 3")
	ruleMaltese    = rule(4, "(n == 1) ? 0 : (n == 0 || (n%100 > 1 && n%100 < 11)) ? 1 : (n%100 > 10 && n%100 < 20) ? 2 : 3")
	ruleWelsh      = rule(4, "(n == 1) ? 0 : (n == 2) ? 1 : (n != 8 && n != 11) ? 2 : 3")
	ruleIrish      = rule(5, "(n == 1) ? 0 : (n == 2) ? 1 : (n >= 3 && n <= 6) ? 2 : (n >= 7 && n <= 10) ? 3 : 4")
	ruleArabic     = rule(6, "(n == 0) ? 0 : (n == 1) ? 1 : (n == 2) ? 2 : (n%100 >= 3 && n%100 <= 10) ? 3 : (n%100 >= 11) ? 4 : 5")
)

// rules maps BCP 47 strings to rules. Region-specific entries take
// precedence over the base language.
var rules = map[string]Rule{}

//nolint:gochecknoinits // the table is static and validated once
func init() {
	register(ruleUniversal, "ja", "zh", "ko", "vi", "th", "id", "ms", "lo", "km", "my", "tr", "ka", "fa", "bo", "dz", "jv", "su", "hu", "yo")
	register(ruleEnglish,
		"en", "de", "nl", "sv", "da", "no", "nb", "nn", "fo", "fi", "et", "it", "es", "pt", "ca", "gl", "eu",
		"el", "bg", "he", "eo", "af", "sq", "az", "bn", "hi", "ur", "ta", "te", "ml", "kn", "mr",
		"gu", "pa", "ne", "si", "sw", "kk", "ky", "mn", "uz", "tk", "ps", "so", "zu", "xh", "fy", "lb",
		"rm", "la", "ia", "ast", "kw", "se",
	)
	register(ruleFrench, "fr", "br", "oc", "fil", "tl", "ln", "mg", "ti", "wa", "pt-BR", "am", "hy")
	register(ruleIcelandic, "is")
	register(ruleMacedonian, "mk")
	register(ruleSlavic, "ru", "uk", "be", "sr", "hr", "bs", "sh")
	register(ruleCzech, "cs", "sk")
	register(rulePolish, "pl")
	register(ruleLithuanian, "lt")
	register(ruleLatvian, "lv")
	register(ruleRomanian, "ro", "mo")
	register(ruleSlovenian, "sl")
	register(ruleMaltese, "mt")
	register(ruleWelsh, "cy")
	register(ruleIrish, "ga")
	register(ruleArabic, "ar")
}

func rule(forms int, expr string) Rule {
	compiled, err := plurals.Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("numerus: invalid plural expression %q: %v", expr, err))
	}

	return Rule{Forms: forms, Expr: expr, compiled: compiled}
}

func register(r Rule, tags ...string) {
	for _, t := range tags {
		rules[t] = r
	}
}

// ParseLanguage parses a Qt language code such as "es_ES", "pt_BR" or
// "sr@latin" into a language tag.
func ParseLanguage(code string) (language.Tag, error) {
	code, _, _ = strings.Cut(code, "@")
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")

	if code == "" {
		return language.Und, fmt.Errorf("%w: empty language code", ErrUnknownLanguage)
	}

	t, err := language.Parse(code)
	if err != nil {
		return language.Und, fmt.Errorf("invalid language code %q: %w", code, err)
	}

	return t, nil
}

// ForLanguage returns the rule for a Qt language code. The full tag is
// tried first, then language and region, then the base language alone.
func ForLanguage(code string) (Rule, error) {
	t, err := ParseLanguage(code)
	if err != nil {
		return Rule{}, err
	}

	if r, ok := rules[t.String()]; ok {
		return r, nil
	}

	base, _ := t.Base()
	region, conf := t.Region()

	// Only an explicit region counts; "pt" must not be inferred as "pt-BR".
	if conf == language.Exact {
		if r, ok := rules[base.String()+"-"+region.String()]; ok {
			return r, nil
		}
	}

	if r, ok := rules[base.String()]; ok {
		return r, nil
	}

	return Rule{}, fmt.Errorf("%w %q", ErrUnknownLanguage, code)
}
