// Package classify implements the branch-free character classification
// and vectorized scan primitives the rest of the minifier is built on
// (spec component C1). Every primitive here is pure: no allocation, no
// side effects, and every "vectorized" entry point is required to
// agree byte-for-byte with a scalar implementation for every input —
// see the _test.go file for the property that pins that contract down.
//
// There is no actual SIMD assembly in this package. The SWAR
// (SIMD-within-a-register) primitives below always process one 8-byte
// word per step; the vector width detected by internal/cpufeature is
// only reported through VectorWidth, as the block size package sport
// scans by. Go's lack of portable intrinsics without per-arch assembly files
// makes word-at-a-time bit tricks the idiomatic fast path here, the
// same technique github.com/minio/simdjson-go falls back to on CPUs
// without AVX512.
package classify

import (
	"math/bits"

	"go.jacobcolvin.com/jsonmin/internal/cpufeature"
)

const (
	lowBits  = 0x0101010101010101
	highBits = 0x8080808080808080
)

// IsWhitespace reports whether b is insignificant JSON whitespace:
// space, tab, newline, or carriage return.
func IsWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// IsDigit reports whether b is an ASCII decimal digit.
func IsDigit(b byte) bool { return b >= '0' && b <= '9' }

// IsHexDigit reports whether b is a hex digit as required inside a
// \uXXXX escape.
func IsHexDigit(b byte) bool {
	return IsDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// IsNumberStart reports whether b can begin a JSON number.
func IsNumberStart(b byte) bool { return b == '-' || IsDigit(b) }

// IsStructural reports whether b is one of the seven JSON structural
// bytes: object/array delimiters, the key/value separator, the member
// separator, or the string quote.
func IsStructural(b byte) bool {
	switch b {
	case '{', '}', '[', ']', ':', ',', '"':
		return true
	default:
		return false
	}
}

// EscapeValue maps a byte following a backslash in a JSON string to
// its unescaped value. ok is false for 'u' (a unicode escape, handled
// separately by the caller) and for any byte that is not a valid
// single-character escape.
func EscapeValue(b byte) (value byte, ok bool) {
	switch b {
	case '"':
		return '"', true
	case '\\':
		return '\\', true
	case '/':
		return '/', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	default:
		return 0, false
	}
}

// IsUnicodeEscapeLead reports whether b introduces a \uXXXX escape.
func IsUnicodeEscapeLead(b byte) bool { return b == 'u' }

// broadcast replicates b into every byte of a 64-bit word.
func broadcast(b byte) uint64 { return uint64(b) * lowBits }

// matchMask returns a word in which the high bit of each byte of word
// that equals b is set, and all other bits are zero. This is the
// carry-free variant of the SWAR "has zero byte" trick, so that it
// locates every match exactly rather than merely detecting one.
func matchMask(word uint64, b byte) uint64 {
	x := word ^ broadcast(b)
	const low7 = 0x7f7f7f7f7f7f7f7f // every bit except each byte's high bit
	t := (x & low7) + low7
	return ^(t | x | low7)
}

// whitespaceMask returns a word in which the high bit of each byte of
// word that is JSON whitespace is set.
func whitespaceMask(word uint64) uint64 {
	return matchMask(word, ' ') | matchMask(word, '\t') | matchMask(word, '\n') | matchMask(word, '\r')
}

// structuralMask returns a word in which the high bit of each byte of
// word that is a JSON structural byte is set.
func structuralMask(word uint64) uint64 {
	m := matchMask(word, '{') | matchMask(word, '}') | matchMask(word, '[') | matchMask(word, ']')
	m |= matchMask(word, ':') | matchMask(word, ',') | matchMask(word, '"')
	return m
}

func loadWord(s []byte) uint64 {
	var w uint64
	for i := 0; i < 8 && i < len(s); i++ {
		w |= uint64(s[i]) << (8 * uint(i))
	}
	return w
}

// FindByte returns the index of the first occurrence of b in s, or -1
// if absent. It processes s eight bytes at a time using the SWAR match
// mask above, matching bytes.IndexByte byte-for-byte.
func FindByte(s []byte, b byte) int {
	i := 0
	for ; i+8 <= len(s); i += 8 {
		word := loadWord(s[i : i+8])
		if mask := matchMask(word, b); mask != 0 {
			return i + bits.TrailingZeros64(mask)/8
		}
	}
	for ; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// CountByte returns the number of occurrences of b in s.
func CountByte(s []byte, b byte) int {
	count := 0
	i := 0
	for ; i+8 <= len(s); i += 8 {
		word := loadWord(s[i : i+8])
		mask := matchMask(word, b)
		count += bits.OnesCount64(mask) // each match contributes exactly one set bit (the top bit of its byte)
	}
	for ; i < len(s); i++ {
		if s[i] == b {
			count++
		}
	}
	return count
}

// AllBytesEqual reports whether every byte of s equals b. An empty
// slice vacuously satisfies this.
func AllBytesEqual(s []byte, b byte) bool {
	i := 0
	for ; i+8 <= len(s); i += 8 {
		word := loadWord(s[i : i+8])
		if word != broadcast(b) {
			return false
		}
	}
	for ; i < len(s); i++ {
		if s[i] != b {
			return false
		}
	}
	return true
}

// SkipWhitespace returns the number of leading JSON whitespace bytes
// in s.
func SkipWhitespace(s []byte) int {
	i := 0
	for ; i+8 <= len(s); i += 8 {
		word := loadWord(s[i : i+8])
		mask := whitespaceMask(word)
		if mask != highBits {
			// Not every byte in this word is whitespace; find the
			// first non-whitespace byte within it.
			for j := 0; j < 8; j++ {
				if (mask>>(8*uint(j)))&0x80 == 0 {
					return i + j
				}
			}
		}
	}
	for ; i < len(s); i++ {
		if !IsWhitespace(s[i]) {
			return i
		}
	}
	return i
}

// FindStructural returns the index of the first structural byte
// (one of `{}[]:,"`) in s, or -1 if none is present.
func FindStructural(s []byte) int {
	i := 0
	for ; i+8 <= len(s); i += 8 {
		word := loadWord(s[i : i+8])
		if mask := structuralMask(word); mask != 0 {
			return i + bits.TrailingZeros64(mask)/8
		}
	}
	for ; i < len(s); i++ {
		if IsStructural(s[i]) {
			return i
		}
	}
	return -1
}

// BlockMasks holds the four classification bitmasks produced for an
// aligned block by Classify: each mask has bit j set when byte j of
// the block belongs to that class.
type BlockMasks struct {
	Whitespace uint64
	Quote      uint64
	Backslash  uint64
	Structural uint64
}

// Classify computes the four classification bitmasks (spec §4.1) for
// up to 8 bytes starting at s. Bit 0 corresponds to s[0]. Callers pass
// len(s) < 8 for a final partial block; unpopulated bits are zero.
func Classify(s []byte) BlockMasks {
	word := loadWord(s)
	var m BlockMasks
	ws := whitespaceMask(word)
	qs := matchMask(word, '"')
	bs := matchMask(word, '\\')
	st := structuralMask(word)
	for j := 0; j < 8 && j < len(s); j++ {
		shift := uint(8 * j)
		if (ws>>shift)&0x80 != 0 {
			m.Whitespace |= 1 << uint(j)
		}
		if (qs>>shift)&0x80 != 0 {
			m.Quote |= 1 << uint(j)
		}
		if (bs>>shift)&0x80 != 0 {
			m.Backslash |= 1 << uint(j)
		}
		if (st>>shift)&0x80 != 0 {
			m.Structural |= 1 << uint(j)
		}
	}
	return m
}

// VectorWidth reports the block size, in bytes, that the block
// minifier (sport) should use for its own coarser-grained quote scan,
// per the CPU feature detection cached in internal/cpufeature.
func VectorWidth() int { return int(cpufeature.VectorWidth()) }
