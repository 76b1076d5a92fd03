// Package sport implements the SPORT execution strategy (spec
// component C5): a block minifier that elides whitespace outside
// strings using the vectorized primitives in package classify, falling
// back to a byte-by-byte walk only while inside a string literal.
//
// SPORT assumes a complete, already-valid document. The strict variant
// enforces that by running the document through the validator shim
// (package validate) before the fast path; the lenient variant skips
// validation entirely, which — as an incidental consequence of never
// checking grammar — also tolerates trailing commas the strict DFA
// would reject. Per the resolved Open Question (trailing-comma
// handling was ambiguous in the source this spec distills from), the
// default is strict.
package sport

import (
	"bytes"
	"io"

	"go.jacobcolvin.com/jsonmin/buffer"
	"go.jacobcolvin.com/jsonmin/classify"
	"go.jacobcolvin.com/jsonmin/state"
	"go.jacobcolvin.com/jsonmin/validate"
)

// Minify runs the strict SPORT fast path: input is validated against
// the full JSON grammar before any byte is stripped, so strict SPORT
// rejects exactly what the streaming minifier would.
func Minify(input []byte) ([]byte, error) {
	return minify(input, false)
}

// MinifyLenient runs the SPORT fast path without a validation
// pre-pass. Malformed input may produce malformed or partial output
// instead of an error; the only input this realistically tolerates
// beyond strict mode is a trailing comma before `}` or `]`, since the
// whitespace-elision walk below never inspects container grammar.
func MinifyLenient(input []byte) ([]byte, error) {
	return minify(input, true)
}

func minify(input []byte, lenient bool) ([]byte, error) {
	var out bytes.Buffer
	if err := MinifyToWriter(input, &out, lenient); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// MinifyToWriter runs the SPORT fast path, writing minified output
// directly to w.
func MinifyToWriter(input []byte, w io.Writer, lenient bool) error {
	return MinifyToWriterWithDepth(input, w, lenient, state.DefaultMaxDepth)
}

// MinifyToWriterWithDepth behaves like MinifyToWriter, applying an
// explicit depth limit to the strict validation pre-pass (a no-op in
// lenient mode, which never validates).
func MinifyToWriterWithDepth(input []byte, w io.Writer, lenient bool, maxDepth int) error {
	if !lenient {
		if err := validate.ValidateWithDepth(input, maxDepth); err != nil {
			return err
		}
	}
	buf := buffer.New(w, buffer.DefaultCapacity)
	if err := blockMinify(input, buf); err != nil {
		return err
	}
	return buf.Flush()
}

// blockMinify implements the pipeline from spec §4.5: while not inside
// a string, load a V-byte block, find the first quote in it with a
// vectorized scan, copy the non-whitespace prefix, then switch to a
// byte-by-byte walk for the string body until the matching close
// quote is found.
func blockMinify(input []byte, buf *buffer.Buffer) error {
	i, n := 0, len(input)
	vw := classify.VectorWidth()
	for i < n {
		blockLen := vw
		if rem := n - i; blockLen > rem {
			blockLen = rem
		}
		block := input[i : i+blockLen]
		qpos := classify.FindByte(block, '"')
		if qpos < 0 {
			if err := copyNonWhitespace(buf, block); err != nil {
				return err
			}
			i += blockLen
			continue
		}
		if err := copyNonWhitespace(buf, block[:qpos]); err != nil {
			return err
		}
		if err := buf.WriteByte('"'); err != nil {
			return err
		}
		i += qpos + 1
		consumed, err := copyStringBody(buf, input[i:])
		if err != nil {
			return err
		}
		i += consumed
	}
	return nil
}

func copyNonWhitespace(buf *buffer.Buffer, block []byte) error {
	for _, c := range block {
		if classify.IsWhitespace(c) {
			continue
		}
		if err := buf.WriteByte(c); err != nil {
			return err
		}
	}
	return nil
}

// copyStringBody copies bytes verbatim (whitespace included) starting
// just after an opening quote, tracking backslash escapes, until and
// including the matching closing quote. It returns the number of
// input bytes consumed.
func copyStringBody(buf *buffer.Buffer, s []byte) (int, error) {
	escape := false
	for i, c := range s {
		if err := buf.WriteByte(c); err != nil {
			return 0, err
		}
		if escape {
			escape = false
			continue
		}
		if c == '\\' {
			escape = true
			continue
		}
		if c == '"' {
			return i + 1, nil
		}
	}
	return len(s), nil
}
