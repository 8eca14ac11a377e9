// Package model defines the evaluator contract spec §6 specifies ("A model
// is any component with the evaluator contract") and provides two concrete
// implementations: GorgonianModel, a small reference dual-head network, and
// Stub, a deterministic implementation for tests that never touches a real
// network.
package model

import (
	"github.com/sousei-go/ishi/symmetry"
	"gorgonia.org/tensor"
)

// Input is one batch element submitted to an Inferer: the already-symmetry-
// transformed feature tensor plus the symmetry applied, so the caller can
// invert it on the returned policy (spec §6: "the caller applies σ to
// features and σ⁻¹ to returned policy").
type Input struct {
	Features *tensor.Dense
	Symmetry symmetry.Symmetry
}

// Output is one batch element returned by an Inferer.
type Output struct {
	Policy []float32 // length N²+1
	Value  float32   // in [-1, 1], symmetry-invariant
}

// Model is the evaluator capability the core depends on: a name for
// logging plus a factory for per-thread Inferer instances (spec §6 "each
// model implementation exposes a name string... and a new_instance()
// constructor used for multi-threaded fan-out").
type Model interface {
	Name() string
	NewInstance() (Inferer, error)
}

// Inferer runs batched inference. Implementations must be safe to call
// repeatedly from a single owning goroutine; concurrent fan-out is achieved
// by creating one Inferer per worker via Model.NewInstance, not by sharing
// one Inferer across goroutines.
type Inferer interface {
	Run(batch []Input) ([]Output, error)
	Close() error
}
