// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package ts

import (
	"iter"
	"strings"
)

// VariantSeparator joins the length variants of a single text, the same way
// Qt stores them internally. The longest variant comes first.
const VariantSeparator = "\u009c"

// DefaultVersion is written when a File has no version set.
const DefaultVersion = "2.1"

// TranslationType is the value of the type attribute on <translation>.
type TranslationType string

// Possible values for TranslationType.
const (
	Finished   TranslationType = ""
	Unfinished TranslationType = "unfinished"
	Obsolete   TranslationType = "obsolete"
	Vanished   TranslationType = "vanished"
)

// Live reports whether messages of this type are still in use by the
// application, i.e. they are neither obsolete nor vanished.
func (t TranslationType) Live() bool {
	return t == Finished || t == Unfinished
}

func (t TranslationType) valid() bool {
	switch t {
	case Finished, Unfinished, Obsolete, Vanished:
		return true
	}

	return false
}

// File is a decoded translation file.
type File struct {
	Version        string
	Language       string
	SourceLanguage string
	Dependencies   []string
	Contexts       []*Context
}

// Context groups the messages of one UI class.
type Context struct {
	Name     string
	Comment  string
	Messages []*Message
}

// Location is a reference to the source code a message was extracted from.
// Line is kept verbatim since lupdate may write relative lines such as "+3".
type Location struct {
	Filename string
	Line     string
}

// Extra is an <extra-NAME> element carried through unchanged.
type Extra struct {
	Name  string
	Value string
}

// Message is one translatable string.
type Message struct {
	ID                string
	Source            string
	OldSource         string
	Comment           string
	OldComment        string
	ExtraComment      string
	TranslatorComment string
	UserData          string
	Locations         []Location
	Numerus           bool
	Translation       Translation
	Extras            []Extra

	// Line is the line of the <message> start tag in the decoded input.
	// It is zero for messages that were not decoded.
	Line int
}

// Translation holds the translated text of a message.
//
// Singular messages use Text. Numerus messages use Forms, one entry per
// plural form of the target language.
type Translation struct {
	Type  TranslationType
	Text  string
	Forms []string
}

// Empty reports whether the translation carries no text at all.
func (t Translation) Empty() bool {
	if t.Text != "" {
		return false
	}

	for _, f := range t.Forms {
		if f != "" {
			return false
		}
	}

	return true
}

// Texts returns the translated strings of the message: Forms for numerus
// messages, otherwise a single-element slice holding Text.
func (m *Message) Texts() []string {
	if m.Numerus {
		return m.Translation.Forms
	}

	return []string{m.Translation.Text}
}

// Key identifies a message for translation lookup.
type Key struct {
	Context string
	Source  string
	Comment string
}

func (k Key) String() string {
	var b strings.Builder

	b.WriteString(k.Context)
	b.WriteString(" / ")
	b.WriteString(k.Source)

	if k.Comment != "" {
		b.WriteString(" (")
		b.WriteString(k.Comment)
		b.WriteString(")")
	}

	return b.String()
}

// Key returns the lookup key of m within a context named ctxName.
func (m *Message) Key(ctxName string) Key {
	return Key{Context: ctxName, Source: m.Source, Comment: m.Comment}
}

// All yields every message of f together with its context, in file order.
func (f *File) All() iter.Seq2[*Context, *Message] {
	return func(yield func(*Context, *Message) bool) {
		for _, c := range f.Contexts {
			for _, m := range c.Messages {
				if !yield(c, m) {
					return
				}
			}
		}
	}
}

// Lookup finds the message with the given key. Repeated contexts with the
// same name are searched as one.
func (f *File) Lookup(ctxName, source, comment string) (*Message, bool) {
	for c, m := range f.All() {
		if c.Name == ctxName && m.Source == source && m.Comment == comment {
			return m, true
		}
	}

	return nil, false
}

// Index builds a key to message map over f. When a key repeats, the first
// message wins.
func (f *File) Index() map[Key]*Message {
	idx := make(map[Key]*Message)

	for c, m := range f.All() {
		k := m.Key(c.Name)
		if _, ok := idx[k]; !ok {
			idx[k] = m
		}
	}

	return idx
}

// MergeContexts folds contexts sharing a name into the first one of that
// name. Messages keep their relative order.
func (f *File) MergeContexts() {
	byName := make(map[string]*Context, len(f.Contexts))
	merged := f.Contexts[:0]

	for _, c := range f.Contexts {
		if first, ok := byName[c.Name]; ok {
			first.Messages = append(first.Messages, c.Messages...)

			if first.Comment == "" {
				first.Comment = c.Comment
			}

			continue
		}

		byName[c.Name] = c
		merged = append(merged, c)
	}

	clear(f.Contexts[len(merged):])
	f.Contexts = merged
}

// DropObsolete removes obsolete and vanished messages, along with any
// context left without messages. It returns the number of messages removed.
func (f *File) DropObsolete() int {
	removed := 0
	contexts := f.Contexts[:0]

	for _, c := range f.Contexts {
		live := c.Messages[:0]

		for _, m := range c.Messages {
			if m.Translation.Type.Live() {
				live = append(live, m)
			} else {
				removed++
			}
		}

		clear(c.Messages[len(live):])
		c.Messages = live

		if len(c.Messages) > 0 {
			contexts = append(contexts, c)
		}
	}

	clear(f.Contexts[len(contexts):])
	f.Contexts = contexts

	return removed
}
