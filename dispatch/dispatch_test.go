package dispatch

import "testing"

func TestSelectModeMemoryConstrained(t *testing.T) {
	mode := SelectMode(Params{InputSize: 10_000_000, AvailableMemory: 100_000, Workers: 8, SIMDAvailable: true})
	if mode != Eco {
		t.Errorf("got %v, want Eco", mode)
	}
}

func TestSelectModeTurbo(t *testing.T) {
	mode := SelectMode(Params{InputSize: 2 << 20, AvailableMemory: 0, Workers: 4, SIMDAvailable: true})
	if mode != Turbo {
		t.Errorf("got %v, want Turbo", mode)
	}
}

func TestSelectModeSportFallback(t *testing.T) {
	cases := []Params{
		{InputSize: 2 << 20, Workers: 1, SIMDAvailable: true},     // only one worker
		{InputSize: 2 << 20, Workers: 4, SIMDAvailable: false},    // no SIMD
		{InputSize: 1024, Workers: 4, SIMDAvailable: true},        // too small
	}
	for _, p := range cases {
		if got := SelectMode(p); got != Sport {
			t.Errorf("SelectMode(%+v) = %v, want Sport", p, got)
		}
	}
}

func TestSelectChunkSizeRespectsMinChunksPerWorker(t *testing.T) {
	inputSize := int64(1 << 20)
	workers := 8
	size := SelectChunkSize(inputSize, workers)
	chunks := inputSize / int64(size)
	if chunks < int64(workers)*4 {
		// Allow rounding slack from vector-width alignment.
		if float64(chunks) < float64(workers)*4*0.9 {
			t.Errorf("only %d chunks for %d workers (size=%d)", chunks, workers, size)
		}
	}
}

func TestSelectChunkSizeGrowsWithInputSize(t *testing.T) {
	small := SelectChunkSize(32*1024, 4)
	large := SelectChunkSize(100*1024*1024, 4)
	if large < small {
		t.Errorf("chunk size for larger input (%d) smaller than for small input (%d)", large, small)
	}
}

func TestAdaptiveChunkerConverges(t *testing.T) {
	a := NewAdaptiveChunker(10*1024*1024, 4)
	start := a.ChunkSize()
	// Simulate throughput peaking near the starting size.
	for i := 0; i < 20; i++ {
		dist := a.ChunkSize() - start
		if dist < 0 {
			dist = -dist
		}
		rate := 1000.0 - float64(dist)
		a.Record(rate)
	}
	if a.bestRate <= 0 {
		t.Error("expected a positive best throughput to be recorded")
	}
	if a.bestSize != start {
		t.Errorf("bestSize = %d, want the throughput peak %d", a.bestSize, start)
	}
}

func TestModeString(t *testing.T) {
	for _, tc := range []struct {
		m    Mode
		want string
	}{{Eco, "eco"}, {Sport, "sport"}, {Turbo, "turbo"}} {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("%v.String() = %q, want %q", tc.m, got, tc.want)
		}
	}
}
