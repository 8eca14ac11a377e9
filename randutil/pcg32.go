// Package randutil provides the seeded random-number primitives the MCTS
// player needs (spec §4.I): a hand-rolled PCG-32 generator (deliberately not
// delegated to a library, since it is itself a named, budgeted core
// component) plus uniform, normal, Dirichlet and shuffle helpers built on
// top of it.
package randutil

import "sync/atomic"

// globalStream is the process-wide atomic counter spec §4.I calls "a
// process-wide atomic counter"; stream 0 passed to NewPCG32 allocates the
// next value from here instead of using stream literally 0.
var globalStream uint64

const (
	pcgMultiplier uint64 = 6364136223846793005
	pcgIncrement  uint64 = 1442695040888963407
)

// PCG32 is a minimal PCG-XSH-RR 32-bit generator with an explicit
// (seed, stream) split: reproducibility requires both to match, and
// different streams from the same seed are uncorrelated.
type PCG32 struct {
	state uint64
	inc   uint64 // odd, derived from the stream
}

// NewPCG32 constructs a generator. A seed of 0 means "derive from platform
// entropy" (spec §4.I); a stream of 0 means "allocate from the process-wide
// atomic counter" rather than literally using stream 0.
func NewPCG32(seed, stream uint64) *PCG32 {
	if seed == 0 {
		seed = entropySeed()
	}
	if stream == 0 {
		stream = atomic.AddUint64(&globalStream, 1)
	}
	g := &PCG32{inc: (stream << 1) | 1}
	g.state = g.state*pcgMultiplier + g.inc
	g.state += seed
	g.state = g.state*pcgMultiplier + g.inc
	return g
}

// Uint32 returns the next 32-bit output.
func (g *PCG32) Uint32() uint32 {
	old := g.state
	g.state = old*pcgMultiplier + g.inc
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Float64 returns a uniform value in [0, 1).
func (g *PCG32) Float64() float64 {
	hi := uint64(g.Uint32())
	lo := uint64(g.Uint32())
	return float64(((hi<<32)|lo)>>11) / (1 << 53)
}

// Float32 returns a uniform value in [0, 1).
func (g *PCG32) Float32() float32 {
	return float32(g.Uint32()>>8) / (1 << 24)
}

// IntRange returns a uniform integer in the closed range [lo, hi].
func (g *PCG32) IntRange(lo, hi int) int {
	if hi < lo {
		panic("randutil: IntRange with hi < lo")
	}
	span := uint64(hi-lo) + 1
	return lo + int(uint64(g.Uint32())%span)
}

// Shuffle permutes data in place using the Fisher-Yates algorithm driven by
// g, mirroring math/rand.Shuffle's algorithm but over our own stream.
func (g *PCG32) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := g.IntRange(0, i)
		swap(i, j)
	}
}
