// Package encoder builds the 17-plane feature tensor MCTS submits to the
// external model (spec §4.D): 16 history planes (8 past positions, each as
// a my-stones/opponent-stones pair, most recent first) plus one
// side-to-play plane.
package encoder

import (
	"github.com/sousei-go/ishi/board"
	"gorgonia.org/tensor"
	"gorgonia.org/vecf32"
)

const (
	// Planes is the total plane count: 8 history pairs plus the
	// side-to-play plane.
	Planes = 17
	// HistoryPairs is the number of (my, opponent) plane pairs carried.
	HistoryPairs = 8
)

// History is the feature buffer for one position. Internally plane-major
// ([]float32 per plane, contiguous) so shifting, filling and copying a
// plane is a single vecf32 call instead of a strided loop; NHWC produces
// the [N,N,17] layout the model contract (spec §6) expects.
type History struct {
	N      int
	planes [Planes][]float32 // each len N*N
}

// NewHistory allocates a zeroed feature buffer for an N×N board.
func NewHistory(n int) *History {
	h := &History{N: n}
	for i := range h.planes {
		h.planes[i] = make([]float32, n*n)
	}
	return h
}

func sideToPlayValue(c board.Color) float32 {
	if c == board.Black {
		return 1
	}
	return 0
}

func stoneIndicators(p *board.Position, my board.Color) (mine, theirs []float32) {
	n := p.N
	mine = make([]float32, n*n)
	theirs = make([]float32, n*n)
	opp := my.Opponent()
	for i, s := range p.Stones {
		switch s.Color {
		case my:
			mine[i] = 1
		case opp:
			theirs[i] = 1
		}
	}
	return
}

// Initialize builds a fresh History from a single position by writing 8
// identical copies of it into the history planes (spec §4.D "Initialize").
func Initialize(p *board.Position) *History {
	h := NewHistory(p.N)
	mine, theirs := stoneIndicators(p, p.ToPlay)
	for k := 0; k < HistoryPairs; k++ {
		copy(h.planes[2*k], mine)
		copy(h.planes[2*k+1], theirs)
	}
	vecf32.Fill(h.planes[2*HistoryPairs], sideToPlayValue(p.ToPlay))
	return h
}

// Update advances prev to the position reached after one move, per spec
// §4.D: shift each history pair two planes forward, swapping my/opponent
// within the pair (the mover alternates every ply), drop the oldest pair,
// and write the new position into planes 0-1.
func Update(prev *History, p *board.Position) *History {
	next := NewHistory(p.N)
	for k := HistoryPairs - 2; k >= 0; k-- {
		copy(next.planes[2*k+2], prev.planes[2*k+1])
		copy(next.planes[2*k+3], prev.planes[2*k])
	}
	mine, theirs := stoneIndicators(p, p.ToPlay)
	copy(next.planes[0], mine)
	copy(next.planes[1], theirs)
	vecf32.Fill(next.planes[2*HistoryPairs], sideToPlayValue(p.ToPlay))
	return next
}

// NHWC materializes the plane-major buffer into the [N,N,17] tensor shape
// the model contract expects, matching the tensor.New(WithBacking,
// WithShape) idiom in agogo.go's prepareExamples.
func (h *History) NHWC() *tensor.Dense {
	n := h.N
	backing := make([]float32, n*n*Planes)
	for plane := 0; plane < Planes; plane++ {
		src := h.planes[plane]
		for point := 0; point < n*n; point++ {
			backing[point*Planes+plane] = src[point]
		}
	}
	return tensor.New(tensor.WithBacking(backing), tensor.WithShape(n, n, Planes))
}

// Plane returns the contiguous N*N buffer for a single plane index, for
// callers that want to inspect or test history construction directly.
func (h *History) Plane(i int) []float32 {
	return h.planes[i]
}
