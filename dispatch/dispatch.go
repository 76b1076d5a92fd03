// Package dispatch implements the mode dispatcher and adaptive
// chunking policy (spec component C9): given input size, an available
// memory hint, and worker count, it selects one of the three execution
// strategies and, for TURBO, a starting chunk size.
package dispatch

import (
	"go.jacobcolvin.com/jsonmin/internal/cpufeature"
)

// Mode identifies an execution strategy.
type Mode int

const (
	Eco Mode = iota
	Sport
	Turbo
)

func (m Mode) String() string {
	switch m {
	case Eco:
		return "eco"
	case Sport:
		return "sport"
	case Turbo:
		return "turbo"
	default:
		return "unknown"
	}
}

// turboMinInputSize is the input-size floor below which TURBO's
// per-chunk overhead is not worth paying (spec §4.9: "TURBO when
// input_size >= 1 MiB").
const turboMinInputSize = 1 << 20

// Params bundles the dispatcher's inputs (spec §4.9).
type Params struct {
	InputSize       int64
	AvailableMemory int64 // 0 means "unknown/unbounded"; treated as not memory-constrained
	Workers         int
	SIMDAvailable   bool
}

// SelectMode applies spec §4.9's policy: ECO when memory is scarce
// relative to input size, TURBO when the input is large enough to
// amortize chunking overhead and there is both worker and SIMD
// headroom, SPORT otherwise.
func SelectMode(p Params) Mode {
	if p.AvailableMemory > 0 && p.AvailableMemory < p.InputSize/10 {
		return Eco
	}
	if p.InputSize >= turboMinInputSize && p.Workers > 1 && p.SIMDAvailable {
		return Turbo
	}
	return Sport
}

// Select is a convenience wrapper over SelectMode that fills in
// SIMDAvailable from the process-wide CPU feature cache.
func Select(inputSize, availableMemory int64, workers int) Mode {
	return SelectMode(Params{
		InputSize:       inputSize,
		AvailableMemory: availableMemory,
		Workers:         workers,
		SIMDAvailable:   cpufeature.HasSIMD(),
	})
}

// sizeCategory buckets input size for the starting chunk-size table.
type sizeCategory int

const (
	tiny sizeCategory = iota
	small
	medium
	large
	huge
)

func categorize(inputSize int64) sizeCategory {
	switch {
	case inputSize < 64*1024:
		return tiny
	case inputSize < 1024*1024:
		return small
	case inputSize < 16*1024*1024:
		return medium
	case inputSize < 256*1024*1024:
		return large
	default:
		return huge
	}
}

// baseChunkSize is the starting-point chunk size per size category,
// before SIMD alignment and the L2/4 cap are applied.
var baseChunkSize = map[sizeCategory]int{
	tiny:   16 * 1024,
	small:  64 * 1024,
	medium: 256 * 1024,
	large:  1024 * 1024,
	huge:   4 * 1024 * 1024,
}

// defaultL2Cache is the fallback L2 size assumed when no better hint
// is available; a quarter of it bounds chunk size per spec §4.9.
const defaultL2Cache = 1 << 20 // 1 MiB, a conservative per-core L2 estimate

// SelectChunkSize computes a starting TURBO chunk size from input
// size, worker count, and the active SIMD vector width: start from the
// size-category base, align up to the vector width, cap at L2/4, and
// ensure at least 4 chunks per worker.
func SelectChunkSize(inputSize int64, workers int) int {
	if workers < 1 {
		workers = 1
	}
	size := baseChunkSize[categorize(inputSize)]

	vw := int(cpufeature.VectorWidth())
	if vw > 0 {
		size = alignUp(size, vw)
	}

	if cap := defaultL2Cache / 4; size > cap {
		size = alignUp(cap, vw)
	}

	if minChunks := int64(workers) * 4; minChunks > 0 {
		if maxSize := inputSize / minChunks; maxSize > 0 && int64(size) > maxSize {
			size = alignUp(int(maxSize), vw)
		}
	}
	if size < vw {
		size = vw
	}
	return size
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	if r := n % align; r != 0 {
		n += align - r
	}
	return n
}

// AdaptiveChunker records throughput samples across runs and adjusts
// its recommended chunk size via hill climbing, per spec §4.9's
// optional policy. The deterministic SelectChunkSize above remains the
// default; AdaptiveChunker is an opt-in refinement a long-lived caller
// (e.g. a server processing many documents) can keep across calls.
type AdaptiveChunker struct {
	workers    int
	current    int
	bestSize   int
	bestRate   float64 // bytes/sec at bestSize
	step       int
	increasing bool
}

// Backend is the shape a chunk-execution backend must satisfy to be
// registered behind the scheduler (package sched) and TURBO (package
// turbo). Nothing in this module implements or registers a Backend:
// TURBO calls SPORT's block minifier directly. A GPU backend remains
// an open question in spec §9 and is represented here only as an
// extension point, never implemented.
type Backend interface {
	Execute(chunk []byte) ([]byte, error)
}

// NewAdaptiveChunker seeds a chunker from the deterministic policy for
// the given representative input size and worker count.
func NewAdaptiveChunker(inputSize int64, workers int) *AdaptiveChunker {
	size := SelectChunkSize(inputSize, workers)
	return &AdaptiveChunker{
		workers:    workers,
		current:    size,
		bestSize:   size,
		step:       size / 4,
		increasing: true,
	}
}

// ChunkSize returns the chunk size to use for the next run.
func (a *AdaptiveChunker) ChunkSize() int { return a.current }

// Record reports the throughput (bytes/sec) observed using the chunk
// size last returned by ChunkSize, and adjusts the next size via
// simple hill climbing: keep moving in the direction that improved
// throughput, reverse and halve the step otherwise.
func (a *AdaptiveChunker) Record(bytesPerSecond float64) {
	if bytesPerSecond > a.bestRate {
		a.bestRate = bytesPerSecond
		a.bestSize = a.current
	} else {
		a.increasing = !a.increasing
		a.step = max(a.step/2, 1)
	}
	if a.increasing {
		a.current += a.step
	} else {
		a.current -= a.step
	}
	if a.current < 1 {
		a.current = 1
	}
}
