// Package cpufeature caches the CPU feature detection used to pick a
// vector width for the character classifier and to gate TURBO mode in
// the dispatcher. Detection happens once at process start; nothing in
// this package allocates per call.
package cpufeature

import "github.com/klauspost/cpuid/v2"

// Width is a vector width, in bytes, that the classifier and block
// minifier can assume is efficient to operate on as a unit.
type Width int

const (
	Width8  Width = 8  // plain 64-bit SWAR, always available
	Width16 Width = 16 // SSE4.2-class
	Width32 Width = 32 // AVX2-class
)

var (
	detected   = detect()
	overridden *Width
)

func detect() Width {
	switch {
	case cpuid.CPU.Has(cpuid.AVX2):
		return Width32
	case cpuid.CPU.Has(cpuid.SSE42):
		return Width16
	default:
		return Width8
	}
}

// SetOverride forces VectorWidth/HasSIMD to behave as though the CPU
// had the given width, honored by the JSONMIN_NO_SIMD environment hint
// (spec §6) and by tests. Passing nil reverts to the detected width.
func SetOverride(w *Width) { overridden = w }

// VectorWidth returns the vector width callers should assume, honoring
// any override installed via SetOverride.
func VectorWidth() Width {
	if overridden != nil {
		return *overridden
	}
	return detected
}

// HasSIMD reports whether a wider-than-scalar path is in effect. The
// dispatcher's TURBO gate (spec §4.9) consults this.
func HasSIMD() bool { return VectorWidth() > Width8 }
