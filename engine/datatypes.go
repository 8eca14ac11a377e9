// Package engine orchestrates self-play and player-vs-player games: it
// owns the model/search pairing (Player), runs games between two Players
// (Arena), and drives self-play plus checkpointing (Engine). Grounded on
// agogo.go (AZ), arena.go (Arena), agent.go (Agent), and
// datatypes.go (Config, Example, Dualer, Inferer).
package engine

import (
	"github.com/sousei-go/ishi/mcts"
	"github.com/sousei-go/ishi/model"
)

// Config configures an Engine: which model and search settings to use and
// how self-play examples get produced, mirroring datatypes.go's Config
// (minus the training-only fields, since training is out of scope here).
type Config struct {
	Name        string
	BoardSize   int
	ModelConf   model.Config
	MCTSConf    mcts.Config
	MaxExamples int

	Augmenter Augmenter
}

// Augmenter takes a self-play example and derives more from it — board
// symmetries being the obvious source (spec §4.D/§4.G), matching
// datatypes.go's Augmenter hook in shape.
type Augmenter func(Example) []Example

// Example is one training example harvested from self-play: the encoded
// board, the MCTS visit-count policy, and the eventual game outcome from
// the mover's perspective (±1, or 0 for a draw).
type Example struct {
	Board  []float32
	Policy []float32
	Value  float32
}
