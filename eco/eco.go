// Package eco implements the ECO execution strategy (spec component
// C4): a streaming minifier with O(1) working memory, built directly
// from the state machine (package state) and the output buffer
// (package buffer). ECO is the strategy every other mode must agree
// with byte-for-byte.
package eco

import (
	"bytes"
	"io"

	"go.jacobcolvin.com/jsonmin/buffer"
	"go.jacobcolvin.com/jsonmin/state"
)

// Minifier is an incremental, push-fed minifier. Working memory is
// the output buffer's capacity plus the state machine's bounded
// context stack and scalar fields — independent of input size.
type Minifier struct {
	buf *buffer.Buffer
	m   *state.Machine
}

// New constructs a Minifier writing to w with the given output buffer
// capacity (0 selects buffer.DefaultCapacity).
func New(w io.Writer, bufferCapacity int) *Minifier {
	return NewWithDepth(w, bufferCapacity, state.DefaultMaxDepth)
}

// NewWithDepth constructs a Minifier with an explicit context-stack
// depth limit, used when a caller supplies config.Config.MaxDepth.
func NewWithDepth(w io.Writer, bufferCapacity, maxDepth int) *Minifier {
	buf := buffer.New(w, bufferCapacity)
	return &Minifier{buf: buf, m: state.NewWithDepth(buf, maxDepth)}
}

// Feed advances the minifier by the given bytes. Each surviving byte
// goes into the output buffer as soon as it is consumed; the buffer
// reaches the underlying writer only when it fills or on Flush, so
// output lags input by up to the buffer's capacity, and a write to
// the writer may end in the middle of a token.
func (h *Minifier) Feed(p []byte) error {
	for i := 0; i < len(p); i++ {
		if err := h.m.Step(p[i]); err != nil {
			return err
		}
	}
	return nil
}

// Flush signals end of input, validating that the document is
// complete and draining any buffered output to the writer.
func (h *Minifier) Flush() error {
	if err := h.m.Flush(); err != nil {
		return err
	}
	return h.buf.Flush()
}

// Minify runs the full streaming minifier over a complete in-memory
// input and returns the minified output. This is ECO's
// implementation of the jsonmin.Minify facade.
func Minify(input []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := MinifyToWriter(input, &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// MinifyToWriter runs the streaming minifier over a complete in-memory
// input, writing minified output directly to w.
func MinifyToWriter(input []byte, w io.Writer) error {
	return MinifyToWriterWithDepth(input, w, state.DefaultMaxDepth)
}

// MinifyToWriterWithDepth behaves like MinifyToWriter with an explicit
// context-stack depth limit.
func MinifyToWriterWithDepth(input []byte, w io.Writer, maxDepth int) error {
	h := NewWithDepth(w, buffer.DefaultCapacity, maxDepth)
	if err := h.Feed(input); err != nil {
		return err
	}
	return h.Flush()
}
