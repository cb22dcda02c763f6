// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package ts

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// ErrMalformed wraps XML well-formedness errors.
var ErrMalformed = errors.New("malformed XML")

// decoder walks the token stream of a single document.
type decoder struct {
	x    *xml.Decoder
	name string
}

// Decode reads a .ts document from r. The name is only used in errors.
func Decode(r io.Reader, name string) (*File, error) {
	x := xml.NewDecoder(r)
	x.Strict = true
	// Old TS 1.1 files sometimes declare a legacy encoding.
	x.CharsetReader = charset.NewReaderLabel

	d := &decoder{x: x, name: name}

	return d.document()
}

// DecodeFile reads and decodes the .ts file at path.
func DecodeFile(path string) (*File, error) {
	fh, err := os.Open(path) // #nosec G304 -- path is supplied by the user on purpose
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fh.Close()

	return Decode(fh, path)
}

// fail builds a ParseError at the current input position.
func (d *decoder) fail(err error) error {
	line, col := d.x.InputPos()

	return &ParseError{File: d.name, Line: line, Column: col, Err: err}
}

func (d *decoder) failf(err error, format string, args ...any) error {
	return d.fail(fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...)))
}

// token returns the next token, converting read errors to ParseErrors.
// The returned token is only valid until the next call.
func (d *decoder) token() (xml.Token, error) {
	tok, err := d.x.Token()
	if err == nil {
		return tok, nil
	}

	if errors.Is(err, io.EOF) {
		return nil, err
	}

	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return nil, &ParseError{File: d.name, Line: se.Line, Column: d.column(), Err: fmt.Errorf("%w: %s", ErrMalformed, se.Msg)}
	}

	return nil, d.fail(err)
}

// skip consumes the rest of the element whose start was just read.
func (d *decoder) skip() error {
	for depth := 1; depth > 0; {
		tok, err := d.token()
		if errors.Is(err, io.EOF) {
			return d.failf(ErrMalformed, "unexpected EOF")
		}

		if err != nil {
			return err
		}

		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}

	return nil
}

func (d *decoder) column() int {
	_, col := d.x.InputPos()

	return col
}

func (d *decoder) document() (*File, error) {
	for {
		tok, err := d.token()
		if errors.Is(err, io.EOF) {
			return nil, d.fail(ErrEmptyDocument)
		}

		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "TS" {
				return nil, d.failf(ErrNotTS, "found <%s>", t.Name.Local)
			}

			f, err := d.ts(t)
			if err != nil {
				return nil, err
			}

			return f, d.trailer()
		case xml.CharData:
			if !isSpace(t) {
				return nil, d.fail(ErrUnexpectedText)
			}
		}
		// Prolog, DOCTYPE and comments are skipped.
	}
}

// trailer makes sure nothing but whitespace, comments and processing
// instructions follow the root element.
func (d *decoder) trailer() error {
	for {
		tok, err := d.token()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return d.failf(ErrUnexpectedElement, "<%s> after </TS>", t.Name.Local)
		case xml.CharData:
			if !isSpace(t) {
				return d.fail(ErrUnexpectedText)
			}
		}
	}
}

func (d *decoder) ts(start xml.StartElement) (*File, error) {
	f := &File{
		Version:        attr(start, "version"),
		Language:       attr(start, "language"),
		SourceLanguage: attr(start, "sourcelanguage"),
	}

	err := d.children(start, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "context":
			c, err := d.context(child)
			if err != nil {
				return err
			}

			f.Contexts = append(f.Contexts, c)
		case "dependencies":
			return d.dependencies(child, f)
		case "defaultcodec":
			// TS 1.1 only; the codec is always UTF-8 nowadays.
			_, err := d.text(child, false)

			return err
		default:
			return d.failf(ErrUnexpectedElement, "<%s> in <TS>", child.Name.Local)
		}

		return nil
	})

	return f, err
}

func (d *decoder) dependencies(start xml.StartElement, f *File) error {
	return d.children(start, func(child xml.StartElement) error {
		if child.Name.Local != "dependency" {
			return d.failf(ErrUnexpectedElement, "<%s> in <dependencies>", child.Name.Local)
		}

		f.Dependencies = append(f.Dependencies, attr(child, "catalog"))

		return d.skip()
	})
}

func (d *decoder) context(start xml.StartElement) (*Context, error) {
	c := &Context{}

	err := d.children(start, func(child xml.StartElement) error {
		var err error

		switch child.Name.Local {
		case "name":
			c.Name, err = d.text(child, false)
		case "comment":
			c.Comment, err = d.text(child, false)
		case "message":
			var m *Message

			m, err = d.message(child)
			if err == nil {
				c.Messages = append(c.Messages, m)
			}
		default:
			err = d.failf(ErrUnexpectedElement, "<%s> in <context>", child.Name.Local)
		}

		return err
	})

	return c, err
}

func (d *decoder) message(start xml.StartElement) (*Message, error) {
	line, _ := d.x.InputPos()

	m := &Message{
		ID:      attr(start, "id"),
		Numerus: attr(start, "numerus") == "yes",
		Line:    line,
	}

	// Older files put the type on <message>; <translation> wins if both are set.
	msgType := TranslationType(attr(start, "type"))
	if !msgType.valid() {
		return nil, d.failf(ErrBadTranslationType, "%q", msgType)
	}

	hasSource := false

	err := d.children(start, func(child xml.StartElement) error {
		var err error

		switch name := child.Name.Local; name {
		case "location":
			m.Locations = append(m.Locations, Location{
				Filename: attr(child, "filename"),
				Line:     attr(child, "line"),
			})
			err = d.skip()
		case "source":
			hasSource = true
			m.Source, err = d.text(child, false)
		case "oldsource":
			m.OldSource, err = d.text(child, false)
		case "comment":
			m.Comment, err = d.text(child, false)
		case "oldcomment":
			m.OldComment, err = d.text(child, false)
		case "extracomment":
			m.ExtraComment, err = d.text(child, false)
		case "translatorcomment":
			m.TranslatorComment, err = d.text(child, false)
		case "userdata":
			m.UserData, err = d.text(child, false)
		case "translation":
			err = d.translation(child, m)
		default:
			if !strings.HasPrefix(name, "extra-") {
				return d.failf(ErrUnexpectedElement, "<%s> in <message>", name)
			}

			var v string

			v, err = d.text(child, false)
			m.Extras = append(m.Extras, Extra{Name: strings.TrimPrefix(name, "extra-"), Value: v})
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	if !hasSource && m.ID == "" {
		return nil, &ParseError{File: d.name, Line: line, Column: 1, Err: ErrMissingSource}
	}

	if m.Translation.Type == Finished {
		m.Translation.Type = msgType
	}

	return m, nil
}

func (d *decoder) translation(start xml.StartElement, m *Message) error {
	t := TranslationType(attr(start, "type"))
	if !t.valid() {
		return d.failf(ErrBadTranslationType, "%q", t)
	}

	m.Translation.Type = t
	variants := attr(start, "variants") == "yes"

	if !m.Numerus {
		text, err := d.text(start, variants)
		m.Translation.Text = text

		return err
	}

	return d.children(start, func(child xml.StartElement) error {
		if child.Name.Local != "numerusform" {
			return d.failf(ErrUnexpectedElement, "<%s> in numerus <translation>", child.Name.Local)
		}

		form, err := d.text(child, attr(child, "variants") == "yes")
		if err != nil {
			return err
		}

		m.Translation.Forms = append(m.Translation.Forms, form)

		return nil
	})
}

// children calls fn for every child element of start and consumes the
// matching end element. fn must consume the child it is given.
// Character data between children must be whitespace.
func (d *decoder) children(start xml.StartElement, fn func(xml.StartElement) error) error {
	for {
		tok, err := d.token()
		if errors.Is(err, io.EOF) {
			return d.failf(ErrMalformed, "unexpected EOF in <%s>", start.Name.Local)
		}

		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := fn(t.Copy()); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		case xml.CharData:
			if !isSpace(t) {
				return d.failf(ErrUnexpectedText, "in <%s>", start.Name.Local)
			}
		}
	}
}

// text reads the character content of start up to its end element,
// resolving <byte/> escapes. With variants set, the content is a list of
// <lengthvariant> elements which are joined with VariantSeparator.
func (d *decoder) text(start xml.StartElement, variants bool) (string, error) {
	if variants {
		var parts []string

		err := d.children(start, func(child xml.StartElement) error {
			if child.Name.Local != "lengthvariant" {
				return d.failf(ErrUnexpectedElement, "<%s> in <%s>", child.Name.Local, start.Name.Local)
			}

			s, err := d.text(child, false)
			parts = append(parts, s)

			return err
		})

		return strings.Join(parts, VariantSeparator), err
	}

	var b strings.Builder

	for {
		tok, err := d.token()
		if errors.Is(err, io.EOF) {
			return "", d.failf(ErrMalformed, "unexpected EOF in <%s>", start.Name.Local)
		}

		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			return b.String(), nil
		case xml.StartElement:
			if t.Name.Local != "byte" {
				return "", d.failf(ErrUnexpectedElement, "<%s> in <%s>", t.Name.Local, start.Name.Local)
			}

			r, err := byteValue(attr(t, "value"))
			if err != nil {
				return "", d.failf(ErrBadByteValue, "%q", attr(t, "value"))
			}

			b.WriteRune(r)

			if err := d.skip(); err != nil {
				return "", err
			}
		}
	}
}

// errIllegalChar is returned by byteValue for code points XML 1.0 cannot
// carry at all.
var errIllegalChar = errors.New("not a legal XML character")

// byteValue parses the value attribute of <byte>: "x1b" is hexadecimal,
// anything else decimal. Control characters are allowed since escaping them
// is the point of <byte>; surrogates, U+FFFE, U+FFFF and values past
// U+10FFFF are not.
func byteValue(v string) (rune, error) {
	base := 10

	if rest, ok := strings.CutPrefix(v, "x"); ok {
		v, base = rest, 16
	}

	n, err := strconv.ParseUint(v, base, 32)
	if err != nil {
		return 0, err
	}

	r := rune(n)
	if !utf8.ValidRune(r) || r == 0xfffe || r == 0xffff {
		return 0, errIllegalChar
	}

	return r, nil
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name && a.Name.Space == "" {
			return a.Value
		}
	}

	return ""
}

func isSpace(b []byte) bool {
	return strings.TrimSpace(string(b)) == ""
}
