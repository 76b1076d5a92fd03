// Package validate implements the validator shim (spec component
// C10): a strict pre-pass used by SPORT and TURBO before their fast
// paths run, and exposed directly as jsonmin.Validate. It reuses the
// same DFA as the minifier (package state) rather than maintaining a
// second, independently-written automaton — pointed at a discard sink
// so no output is ever allocated. This guarantees by construction the
// contract spec §4.10 asks for in words ("identical to the set of
// errors the minifier itself would emit"): it is the same code path,
// not a parallel implementation that could drift out of sync.
package validate

import (
	"go.jacobcolvin.com/jsonmin/buffer"
	"go.jacobcolvin.com/jsonmin/state"
)

// DefaultMaxDepth is the context-stack depth limit used by the
// standalone streaming validator, wider than the minifier's limit per
// spec §3 ("depth limit D=32 (64 in streaming validator)").
const DefaultMaxDepth = 64

// Validator is an incremental, output-free validity checker.
type Validator struct {
	m *state.Machine
}

// New constructs a Validator with the default (64) depth limit.
func New() *Validator { return NewWithDepth(DefaultMaxDepth) }

// NewWithDepth constructs a Validator with an explicit depth limit,
// used by SPORT/TURBO's strict pre-pass, which applies the minifier's
// tighter limit (state.DefaultMaxDepth) so that an input SPORT/TURBO
// accepts can always also be fed through ECO.
func NewWithDepth(maxDepth int) *Validator {
	return &Validator{m: state.NewWithDepth(&buffer.Discard{}, maxDepth)}
}

// Write feeds more bytes to the validator.
func (v *Validator) Write(p []byte) error {
	for i := 0; i < len(p); i++ {
		if err := v.m.Step(p[i]); err != nil {
			return err
		}
	}
	return nil
}

// Flush signals end of input and reports whether the document seen so
// far is complete and valid.
func (v *Validator) Flush() error { return v.m.Flush() }

// Validate validates a complete in-memory input against the strict
// JSON grammar, matching the depth limit the minifier itself uses (32)
// so that anything Validate accepts, eco.Minify also accepts.
func Validate(input []byte) error {
	return ValidateWithDepth(input, state.DefaultMaxDepth)
}

// ValidateWithDepth validates a complete in-memory input with an
// explicit depth limit, used by SPORT/TURBO's strict pre-pass when a
// caller supplies a custom limit via config.Config.MaxDepth.
func ValidateWithDepth(input []byte, maxDepth int) error {
	v := NewWithDepth(maxDepth)
	if err := v.Write(input); err != nil {
		return err
	}
	return v.Flush()
}
