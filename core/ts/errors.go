// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package ts

import (
	"errors"
	"fmt"
)

// decoding errors.
var (
	ErrNotTS              = errors.New("root element is not <TS>")
	ErrUnexpectedElement  = errors.New("unexpected element")
	ErrUnexpectedText     = errors.New("unexpected text")
	ErrMissingSource      = errors.New("message has neither <source> nor id")
	ErrBadByteValue       = errors.New("invalid <byte> value")
	ErrBadTranslationType = errors.New("invalid translation type")
	ErrEmptyDocument      = errors.New("document has no root element")
)

// ParseError reports where decoding failed.
type ParseError struct {
	File   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	name := e.File
	if name == "" {
		name = "<input>"
	}

	return fmt.Sprintf("%s:%d:%d: %v", name, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
