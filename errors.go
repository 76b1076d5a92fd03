// Copyright (c) 2021 Tailscale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsonmin

import "go.jacobcolvin.com/jsonmin/jerr"

// Kind identifies the category of a [MinifyError], independent of the
// byte position at which it was detected. It is an alias of
// jerr.Kind: the taxonomy lives in package jerr so that internal
// packages (state, validate, turbo) can construct and
// compare errors without importing this top-level package, which
// would create an import cycle.
type Kind = jerr.Kind

const (
	KindInvalidJSON               = jerr.KindInvalidJSON
	KindUnexpectedEndOfInput      = jerr.KindUnexpectedEndOfInput
	KindInvalidEscapeSequence     = jerr.KindInvalidEscapeSequence
	KindInvalidNumber             = jerr.KindInvalidNumber
	KindInvalidUnicodeEscape      = jerr.KindInvalidUnicodeEscape
	KindNestingTooDeep            = jerr.KindNestingTooDeep
	KindUnescapedControlCharacter = jerr.KindUnescapedControlCharacter
	KindOutOfMemory               = jerr.KindOutOfMemory
	KindTimeout                   = jerr.KindTimeout
)

// MinifyError reports why minification or validation failed. It is an
// alias of jerr.MinifyError; see that package for field documentation.
type MinifyError = jerr.MinifyError

// Sentinel values for errors.Is comparisons against a Kind, independent
// of position.
var (
	ErrInvalidJSON               = jerr.ErrInvalidJSON
	ErrUnexpectedEndOfInput      = jerr.ErrUnexpectedEndOfInput
	ErrInvalidEscapeSequence     = jerr.ErrInvalidEscapeSequence
	ErrInvalidNumber             = jerr.ErrInvalidNumber
	ErrInvalidUnicodeEscape      = jerr.ErrInvalidUnicodeEscape
	ErrNestingTooDeep            = jerr.ErrNestingTooDeep
	ErrUnescapedControlCharacter = jerr.ErrUnescapedControlCharacter
	ErrOutOfMemory               = jerr.ErrOutOfMemory
	ErrTimeout                   = jerr.ErrTimeout
)
