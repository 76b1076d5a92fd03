// Copyright (c) 2021 Tailscale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jsonmin minifies JSON: given a byte sequence containing a
// JSON document, it produces the semantically-equivalent byte
// sequence with all insignificant whitespace removed. Whitespace
// inside string literals is preserved verbatim; escape sequences are
// passed through unescaped.
//
// Three execution strategies trade memory for throughput: ECO streams
// with O(1) working memory, SPORT vectorizes whitespace elision over
// a validated document, and TURBO splits large documents into chunks
// minified in parallel. Minify and MinifyToWriter pick a strategy
// automatically via ProcessingMode; callers that already know their
// workload can force one.
package jsonmin

import (
	"bytes"
	"io"
	"runtime"

	"go.jacobcolvin.com/jsonmin/config"
	"go.jacobcolvin.com/jsonmin/dispatch"
	"go.jacobcolvin.com/jsonmin/eco"
	"go.jacobcolvin.com/jsonmin/sport"
	"go.jacobcolvin.com/jsonmin/state"
	"go.jacobcolvin.com/jsonmin/turbo"
	"go.jacobcolvin.com/jsonmin/validate"
)

// ProcessingMode selects an execution strategy. The zero value,
// ModeAuto, asks Minify/MinifyToWriter to pick one via dispatch.SelectMode.
type ProcessingMode int

const (
	ModeAuto ProcessingMode = iota
	ModeEco
	ModeSport
	ModeTurbo
)

func (m ProcessingMode) String() string {
	switch m {
	case ModeEco:
		return "eco"
	case ModeSport:
		return "sport"
	case ModeTurbo:
		return "turbo"
	default:
		return "auto"
	}
}

func (m ProcessingMode) resolve(inputSize int) dispatch.Mode {
	switch m {
	case ModeEco:
		return dispatch.Eco
	case ModeSport:
		return dispatch.Sport
	case ModeTurbo:
		return dispatch.Turbo
	default:
		return dispatch.Select(int64(inputSize), 0, runtime.GOMAXPROCS(0))
	}
}

// Minify returns the minified form of input. mode is optional; pass
// ModeAuto (the zero value) to let the dispatcher choose.
func Minify(input []byte, mode ...ProcessingMode) ([]byte, error) {
	m := pickMode(mode)
	switch m.resolve(len(input)) {
	case dispatch.Turbo:
		return turbo.Minify(input)
	case dispatch.Sport:
		return sport.Minify(input)
	default:
		return eco.Minify(input)
	}
}

// MinifyToWriter minifies input, writing the result directly to w.
func MinifyToWriter(input []byte, w io.Writer, mode ...ProcessingMode) error {
	m := pickMode(mode)
	switch m.resolve(len(input)) {
	case dispatch.Turbo:
		return turbo.MinifyToWriter(input, w)
	case dispatch.Sport:
		return sport.MinifyToWriter(input, w, false)
	default:
		return eco.MinifyToWriter(input, w)
	}
}

func pickMode(mode []ProcessingMode) ProcessingMode {
	if len(mode) == 0 {
		return ModeAuto
	}
	return mode[0]
}

// MinifyWithConfig minifies input using the explicit strategy and
// tunables named by cfg (see package config), bypassing automatic
// mode selection entirely.
func MinifyWithConfig(input []byte, cfg config.Config) ([]byte, error) {
	var out bytes.Buffer
	if err := MinifyToWriterWithConfig(input, &out, cfg); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// MinifyToWriterWithConfig behaves like MinifyWithConfig, writing
// directly to w.
func MinifyToWriterWithConfig(input []byte, w io.Writer, cfg config.Config) error {
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = state.DefaultMaxDepth
	}
	switch cfg.Mode {
	case dispatch.Turbo:
		return turbo.MinifyToWriter(input, w,
			turbo.WithWorkers(cfg.Workers),
			turbo.WithChunkSize(cfg.ChunkSize),
			turbo.WithLenient(cfg.Lenient),
			turbo.WithTimeout(cfg.Deadline),
			turbo.WithMaxDepth(maxDepth),
		)
	case dispatch.Sport:
		return sport.MinifyToWriterWithDepth(input, w, cfg.Lenient, maxDepth)
	default:
		return eco.MinifyToWriterWithDepth(input, w, maxDepth)
	}
}

// Validate reports whether input is a strictly well-formed JSON
// document, without producing minified output. It is the same DFA
// pass SPORT and TURBO run as their pre-validation step.
func Validate(input []byte) error {
	return validate.Validate(input)
}

// EstimateMinifiedSize returns an upper bound on the minified size of
// input: the no-expansion property (spec testable property) makes the
// input length itself a tight, O(1) bound.
func EstimateMinifiedSize(input []byte) int {
	return len(input)
}

// StreamingMinifier is an incremental, push-fed minifier backed by
// ECO's streaming DFA: constant working memory independent of how
// much has been fed so far.
type StreamingMinifier struct {
	h *eco.Minifier
}

// NewStreamingMinifier constructs a StreamingMinifier writing to w
// with the default output buffer capacity.
func NewStreamingMinifier(w io.Writer) *StreamingMinifier {
	return &StreamingMinifier{h: eco.New(w, 0)}
}

// Feed advances the minifier by p. Minified output is buffered and
// reaches the underlying writer when the buffer fills or on Flush; a
// write to the writer may end in the middle of a token.
func (s *StreamingMinifier) Feed(p []byte) error { return s.h.Feed(p) }

// Flush signals end of input, validating document completeness and
// draining any buffered output.
func (s *StreamingMinifier) Flush() error { return s.h.Flush() }

// Stats reports metadata about a completed MinifyWithStats call, an
// addition in the spirit of the teacher CLI's diagnostic flags: useful
// for --verbose logging, not required by the core minify contract.
type Stats struct {
	Mode         ProcessingMode
	BytesRead    int
	BytesWritten int
}

// MinifyWithStats behaves like Minify but also reports which mode ran
// and the input/output byte counts.
func MinifyWithStats(input []byte, mode ...ProcessingMode) ([]byte, Stats, error) {
	m := pickMode(mode)
	resolved := m.resolve(len(input))
	var out []byte
	var err error
	switch resolved {
	case dispatch.Turbo:
		out, err = turbo.Minify(input)
	case dispatch.Sport:
		out, err = sport.Minify(input)
	default:
		out, err = eco.Minify(input)
	}
	stats := Stats{BytesRead: len(input)}
	switch resolved {
	case dispatch.Turbo:
		stats.Mode = ModeTurbo
	case dispatch.Sport:
		stats.Mode = ModeSport
	default:
		stats.Mode = ModeEco
	}
	if err != nil {
		return nil, stats, err
	}
	stats.BytesWritten = len(out)
	return out, stats, nil
}
