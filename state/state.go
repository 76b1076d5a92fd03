// Copyright (c) 2021 Tailscale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package state implements the byte-by-byte DFA over the JSON grammar
// that every execution strategy is ultimately checked against (spec
// component C2). It is the ground-truth oracle: ECO drives it
// directly, and the validator shim (package validate) wraps the same
// machine with a discard sink so that SPORT and TURBO's fast paths
// can be checked against it without a second, hand-duplicated
// automaton to keep in sync.
package state

import (
	"fmt"

	"go.jacobcolvin.com/jsonmin/jerr"
)

// Sink receives the minified output byte-by-byte as the machine
// advances. buffer.Buffer implements this, as does validate's discard
// sink.
type Sink interface {
	WriteByte(b byte) error
}

// Context is an element of the context stack: which grammatical
// container currently encloses parsing.
type Context uint8

const (
	ContextTopLevel Context = iota
	ContextObject
	ContextArray
)

// State is the machine's current position within a JSON production.
type State uint8

const (
	StateTopLevel State = iota // before, or after, the single top-level value
	StateObjectStart
	StateObjectKey
	StateObjectKeyString
	StateObjectKeyStringEscape
	StateObjectKeyStringEscapeUnicode
	StateObjectColon
	StateObjectValue
	StateObjectComma
	StateArrayStart
	StateArrayValue
	StateArrayComma
	StateString
	StateStringEscape
	StateStringEscapeUnicode
	StateNumber
	StateNumberDecimal
	StateNumberExponent
	StateNumberExponentSign
	StateTrue
	StateFalse
	StateNull
	StateError
)

func (s State) String() string {
	switch s {
	case StateTopLevel:
		return "TopLevel"
	case StateObjectStart:
		return "ObjectStart"
	case StateObjectKey:
		return "ObjectKey"
	case StateObjectKeyString:
		return "ObjectKeyString"
	case StateObjectKeyStringEscape:
		return "ObjectKeyStringEscape"
	case StateObjectKeyStringEscapeUnicode:
		return "ObjectKeyStringEscapeUnicode"
	case StateObjectColon:
		return "ObjectColon"
	case StateObjectValue:
		return "ObjectValue"
	case StateObjectComma:
		return "ObjectComma"
	case StateArrayStart:
		return "ArrayStart"
	case StateArrayValue:
		return "ArrayValue"
	case StateArrayComma:
		return "ArrayComma"
	case StateString:
		return "String"
	case StateStringEscape:
		return "StringEscape"
	case StateStringEscapeUnicode:
		return "StringEscapeUnicode"
	case StateNumber:
		return "Number"
	case StateNumberDecimal:
		return "NumberDecimal"
	case StateNumberExponent:
		return "NumberExponent"
	case StateNumberExponentSign:
		return "NumberExponentSign"
	case StateTrue:
		return "True"
	case StateFalse:
		return "False"
	case StateNull:
		return "Null"
	case StateError:
		return "Error"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// DefaultMaxDepth is the context-stack depth limit for the minifying
// machine (spec §3). The streaming validator (package validate) uses
// a deeper limit.
const DefaultMaxDepth = 32

type numPhase uint8

const (
	numIntFirst numPhase = iota // no digit consumed yet after optional '-'
	numIntZero                  // the integer part is a lone '0'
	numIntRest                  // the integer part is [1-9][0-9]*
)

// Machine is a streaming JSON DFA that both validates and minifies:
// every accepted byte is forwarded to Sink unless it is insignificant
// whitespace outside a string. It holds O(1) working memory
// independent of input size (spec §4.4).
type Machine struct {
	sink     Sink
	maxDepth int

	state State
	stack []Context // stack[0] is always ContextTopLevel

	topDone bool // the single top-level value has been fully parsed

	// Auxiliary fields (spec §3): literal-matching progress and the
	// remaining hex-digit count of a \uXXXX escape.
	litWant          string // remaining suffix of true/false/null to match
	unicodeRemaining int    // 0..4

	numPhase      numPhase
	fracSeenDigit bool
	expSeenDigit  bool

	offset int64
	line   int
	column int
}

// New constructs a Machine that writes minified output to sink, with
// the default nesting depth limit.
func New(sink Sink) *Machine {
	return NewWithDepth(sink, DefaultMaxDepth)
}

// NewWithDepth constructs a Machine with an explicit context-stack
// depth limit, used by the streaming validator to apply the wider
// limit specified in spec §3.
func NewWithDepth(sink Sink, maxDepth int) *Machine {
	m := &Machine{
		sink:     sink,
		maxDepth: maxDepth,
		stack:    make([]Context, 1, maxDepth),
		line:     1,
		column:   1,
	}
	m.stack[0] = ContextTopLevel
	return m
}

// State reports the machine's current grammar position, mostly useful
// for diagnostics.
func (m *Machine) State() State { return m.state }

// Depth reports the current context-stack depth (>= 1).
func (m *Machine) Depth() int { return len(m.stack) }

// Offset reports the number of bytes consumed so far.
func (m *Machine) Offset() int64 { return m.offset }

// Done reports whether the single top-level value has completed and
// the stack has unwound to depth 1, i.e. a Flush would succeed
// without needing a pending number to terminate.
func (m *Machine) Done() bool {
	return m.state == StateTopLevel && m.topDone && len(m.stack) == 1
}

func (m *Machine) top() Context { return m.stack[len(m.stack)-1] }

func (m *Machine) push(c Context) error {
	if len(m.stack) >= m.maxDepth {
		return m.fail(jerr.KindNestingTooDeep, "")
	}
	m.stack = append(m.stack, c)
	return nil
}

func (m *Machine) pop() {
	m.stack = m.stack[:len(m.stack)-1]
}

// afterValue transitions the state machine to whatever follows a
// just-completed value (string, number, literal, or closed
// container), based on the current top of the context stack.
func (m *Machine) afterValue() {
	switch m.top() {
	case ContextObject:
		m.state = StateObjectComma
	case ContextArray:
		m.state = StateArrayComma
	default:
		m.state = StateTopLevel
		m.topDone = true
	}
}

// Step advances the machine by one input byte, writing to Sink any
// bytes that survive minification. It must not be called again after
// it has returned a non-nil error.
func (m *Machine) Step(b byte) error {
	redispatch := b
	for {
		next, redo, err := m.step(redispatch)
		if err != nil {
			m.state = StateError
			return err
		}
		if !redo {
			m.offset++
			if b == '\n' {
				m.line++
				m.column = 1
			} else {
				m.column++
			}
			return nil
		}
		redispatch = next
	}
}

// step processes one logical byte. When redo is true, the same byte
// must be redispatched against the new state without consuming
// another input byte (spec §4.2: number/literal terminators).
func (m *Machine) step(b byte) (_ byte, redo bool, err error) {
	switch m.state {
	case StateError:
		return 0, false, m.fail(jerr.KindInvalidJSON, "error-state")

	case StateTopLevel:
		if m.topDone {
			if isWhitespace(b) {
				return 0, false, nil
			}
			return 0, false, m.fail(jerr.KindInvalidJSON, "trailing-data")
		}
		return 0, false, m.beginValue(b)

	case StateObjectStart:
		if isWhitespace(b) {
			return 0, false, nil
		}
		if b == '}' {
			return 0, false, m.closeContainer()
		}
		if b == '"' {
			m.state = StateObjectKeyString
			return 0, false, m.emit(b)
		}
		return 0, false, m.fail(jerr.KindInvalidJSON, "object-key")

	case StateObjectKey:
		if isWhitespace(b) {
			return 0, false, nil
		}
		if b == '"' {
			m.state = StateObjectKeyString
			return 0, false, m.emit(b)
		}
		return 0, false, m.fail(jerr.KindInvalidJSON, "object-key")

	case StateObjectKeyString:
		return m.stepStringBody(b, StateObjectKeyStringEscape, func() { m.state = StateObjectColon })

	case StateObjectKeyStringEscape:
		return m.stepStringEscape(b, StateObjectKeyString, StateObjectKeyStringEscapeUnicode)

	case StateObjectKeyStringEscapeUnicode:
		return m.stepUnicodeEscape(b, StateObjectKeyString)

	case StateObjectColon:
		if isWhitespace(b) {
			return 0, false, nil
		}
		if b != ':' {
			return 0, false, m.fail(jerr.KindInvalidJSON, "object-colon")
		}
		if err := m.emit(b); err != nil {
			return 0, false, err
		}
		m.state = StateObjectValue
		return 0, false, nil

	case StateObjectValue:
		if isWhitespace(b) {
			return 0, false, nil
		}
		return 0, false, m.beginValue(b)

	case StateObjectComma:
		if isWhitespace(b) {
			return 0, false, nil
		}
		switch b {
		case ',':
			if err := m.emit(b); err != nil {
				return 0, false, err
			}
			m.state = StateObjectKey
			return 0, false, nil
		case '}':
			return 0, false, m.closeContainer()
		default:
			return 0, false, m.fail(jerr.KindInvalidJSON, "object-comma")
		}

	case StateArrayStart:
		if isWhitespace(b) {
			return 0, false, nil
		}
		if b == ']' {
			return 0, false, m.closeContainer()
		}
		return 0, false, m.beginValue(b)

	case StateArrayComma:
		if isWhitespace(b) {
			return 0, false, nil
		}
		switch b {
		case ',':
			if err := m.emit(b); err != nil {
				return 0, false, err
			}
			m.state = StateArrayValue
			return 0, false, nil
		case ']':
			return 0, false, m.closeContainer()
		default:
			return 0, false, m.fail(jerr.KindInvalidJSON, "array-comma")
		}

	case StateArrayValue:
		if isWhitespace(b) {
			return 0, false, nil
		}
		return 0, false, m.beginValue(b)

	case StateString:
		return m.stepStringBody(b, StateStringEscape, m.afterValue)

	case StateStringEscape:
		return m.stepStringEscape(b, StateString, StateStringEscapeUnicode)

	case StateStringEscapeUnicode:
		return m.stepUnicodeEscape(b, StateString)

	case StateNumber, StateNumberDecimal, StateNumberExponent, StateNumberExponentSign:
		return m.stepNumber(b)

	case StateTrue:
		return m.stepLiteral(b, "true")
	case StateFalse:
		return m.stepLiteral(b, "false")
	case StateNull:
		return m.stepLiteral(b, "null")
	}
	return 0, false, m.fail(jerr.KindInvalidJSON, "unreachable")
}

// beginValue dispatches on the first byte of a JSON value.
func (m *Machine) beginValue(b byte) error {
	switch {
	case b == '{':
		if err := m.push(ContextObject); err != nil {
			return err
		}
		m.state = StateObjectStart
		return m.emit(b)
	case b == '[':
		if err := m.push(ContextArray); err != nil {
			return err
		}
		m.state = StateArrayStart
		return m.emit(b)
	case b == '"':
		m.state = StateString
		return m.emit(b)
	case b == 't':
		m.state = StateTrue
		m.litWant = "rue"
		return m.emit(b)
	case b == 'f':
		m.state = StateFalse
		m.litWant = "alse"
		return m.emit(b)
	case b == 'n':
		m.state = StateNull
		m.litWant = "ull"
		return m.emit(b)
	case b == '-':
		m.state = StateNumber
		m.numPhase = numIntFirst
		return m.emit(b)
	case isDigit(b):
		m.state = StateNumber
		if b == '0' {
			m.numPhase = numIntZero
		} else {
			m.numPhase = numIntRest
		}
		return m.emit(b)
	default:
		return m.fail(jerr.KindInvalidJSON, "value")
	}
}

func (m *Machine) closeContainer() error {
	closing := byte('}')
	if m.top() == ContextArray {
		closing = ']'
	}
	if err := m.emit(closing); err != nil {
		return err
	}
	m.pop()
	m.afterValue()
	return nil
}

func (m *Machine) stepStringBody(b byte, escapeState State, onClose func()) (byte, bool, error) {
	switch {
	case b == '"':
		if err := m.emit(b); err != nil {
			return 0, false, err
		}
		onClose()
		return 0, false, nil
	case b == '\\':
		m.state = escapeState
		return 0, false, m.emit(b)
	case b < 0x20:
		return 0, false, m.fail(jerr.KindUnescapedControlCharacter, "string")
	default:
		return 0, false, m.emit(b)
	}
}

func (m *Machine) stepStringEscape(b byte, stringState, unicodeState State) (byte, bool, error) {
	if isUnicodeEscapeLead(b) {
		m.state = unicodeState
		m.unicodeRemaining = 4
		return 0, false, m.emit(b)
	}
	if !isValidSingleEscape(b) {
		return 0, false, m.fail(jerr.KindInvalidEscapeSequence, "string-escape")
	}
	m.state = stringState
	return 0, false, m.emit(b)
}

func (m *Machine) stepUnicodeEscape(b byte, stringState State) (byte, bool, error) {
	if !isHexDigit(b) {
		return 0, false, m.fail(jerr.KindInvalidUnicodeEscape, "unicode-escape")
	}
	if err := m.emit(b); err != nil {
		return 0, false, err
	}
	m.unicodeRemaining--
	if m.unicodeRemaining == 0 {
		m.state = stringState
	}
	return 0, false, nil
}

func (m *Machine) stepLiteral(b byte, full string) (byte, bool, error) {
	want := full[len(full)-len(m.litWant):]
	if b != want[0] {
		return 0, false, m.fail(jerr.KindInvalidJSON, "literal")
	}
	if err := m.emit(b); err != nil {
		return 0, false, err
	}
	m.litWant = want[1:]
	if m.litWant == "" {
		m.afterValue()
	}
	return 0, false, nil
}

func (m *Machine) stepNumber(b byte) (byte, bool, error) {
	switch m.state {
	case StateNumber:
		switch {
		case isDigit(b) && m.numPhase == numIntFirst:
			if b == '0' {
				m.numPhase = numIntZero
			} else {
				m.numPhase = numIntRest
			}
			return 0, false, m.emit(b)
		case isDigit(b) && m.numPhase == numIntRest:
			return 0, false, m.emit(b)
		case isDigit(b) && m.numPhase == numIntZero:
			// a leading zero may not be followed by another digit
			return 0, false, m.fail(jerr.KindInvalidNumber, "leading-zero")
		case b == '.' && m.numPhase != numIntFirst:
			m.state = StateNumberDecimal
			m.fracSeenDigit = false
			return 0, false, m.emit(b)
		case (b == 'e' || b == 'E') && m.numPhase != numIntFirst:
			m.state = StateNumberExponent
			m.expSeenDigit = false
			return 0, false, m.emit(b)
		default:
			if m.numPhase == numIntFirst {
				return 0, false, m.fail(jerr.KindInvalidNumber, "number")
			}
			return m.terminateNumber(b)
		}

	case StateNumberDecimal:
		switch {
		case isDigit(b):
			m.fracSeenDigit = true
			return 0, false, m.emit(b)
		case (b == 'e' || b == 'E') && m.fracSeenDigit:
			m.state = StateNumberExponent
			m.expSeenDigit = false
			return 0, false, m.emit(b)
		default:
			if !m.fracSeenDigit {
				return 0, false, m.fail(jerr.KindInvalidNumber, "fraction")
			}
			return m.terminateNumber(b)
		}

	case StateNumberExponent:
		switch {
		case b == '+' || b == '-':
			if m.expSeenDigit {
				return 0, false, m.fail(jerr.KindInvalidNumber, "exponent")
			}
			m.state = StateNumberExponentSign
			return 0, false, m.emit(b)
		case isDigit(b):
			m.expSeenDigit = true
			return 0, false, m.emit(b)
		default:
			if !m.expSeenDigit {
				return 0, false, m.fail(jerr.KindInvalidNumber, "exponent")
			}
			return m.terminateNumber(b)
		}

	case StateNumberExponentSign:
		if isDigit(b) {
			m.expSeenDigit = true
			m.state = StateNumberExponent
			return 0, false, m.emit(b)
		}
		return 0, false, m.fail(jerr.KindInvalidNumber, "exponent-sign")
	}
	return 0, false, m.fail(jerr.KindInvalidJSON, "unreachable-number")
}

func (m *Machine) terminateNumber(b byte) (byte, bool, error) {
	m.afterValue()
	return b, true, nil
}

// Flush signals end of input. It succeeds only if the machine is in a
// state that is a valid document terminator (spec §4.2): the
// top-level value fully parsed, or a pending number at depth 1 that
// has already matched a complete numeric literal.
func (m *Machine) Flush() error {
	if m.state == StateTopLevel && m.topDone {
		return nil
	}
	if len(m.stack) == 1 && m.numberComplete() {
		m.afterValue()
		return nil
	}
	return m.fail(jerr.KindUnexpectedEndOfInput, "")
}

func (m *Machine) numberComplete() bool {
	switch m.state {
	case StateNumber:
		return m.numPhase != numIntFirst
	case StateNumberDecimal:
		return m.fracSeenDigit
	case StateNumberExponent:
		return m.expSeenDigit
	default:
		return false
	}
}

func (m *Machine) emit(b byte) error {
	if err := m.sink.WriteByte(b); err != nil {
		return &jerr.MinifyError{Kind: jerr.KindOutOfMemory, Err: err}
	}
	return nil
}

func (m *Machine) fail(kind jerr.Kind, production string) error {
	return &jerr.MinifyError{
		Kind:        kind,
		Production:  production,
		Offset:      m.offset,
		Line:        m.line,
		Column:      m.column,
		HasPosition: true,
	}
}

func isWhitespace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }
func isDigit(b byte) bool      { return b >= '0' && b <= '9' }
func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
func isUnicodeEscapeLead(b byte) bool { return b == 'u' }
func isValidSingleEscape(b byte) bool {
	switch b {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return true
	default:
		return false
	}
}
