// Command evaluate plays two checkpoints against each other for a
// configured number of games and reports the win rate, the "evaluator"
// executable spec §6 names. Grounded on engine.Arena's Wins/Loss/Draw
// bookkeeping (arena.go), which exists for exactly this purpose.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/sousei-go/ishi/board"
	"github.com/sousei-go/ishi/engine"
	"github.com/sousei-go/ishi/mcts"
	"github.com/sousei-go/ishi/model"
	"github.com/sousei-go/ishi/randutil"
)

var (
	boardSize  = flag.Int("board_size", 9, "board size")
	numGames   = flag.Int("games", 10, "number of evaluation games")
	numReadout = flag.Int("readouts", 160, "MCTS readouts per move")
	seed       = flag.Uint64("seed", 1, "RNG seed")
	checkpointA = flag.String("checkpoint_a", "", "optional meta.json directory for player A (empty: fresh stub)")
	checkpointB = flag.String("checkpoint_b", "", "optional meta.json directory for player B (empty: fresh stub)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	n := *boardSize
	board.InitZobrist(int64(*seed), n)
	rng := randutil.NewPCG32(*seed, 1)

	mctsConf := mcts.DefaultConfig(n)
	mctsConf.NumReadouts = *numReadout

	modelA := loadOrFreshModel(*checkpointA, n, rng)
	modelB := loadOrFreshModel(*checkpointB, n, rng)

	a := engine.NewPlayer("A", modelA, mctsConf)
	b := engine.NewPlayer("B", modelB, mctsConf)
	if err := a.SwitchToInference(); err != nil {
		log.Fatalf("evaluate: %s", err)
	}
	if err := b.SwitchToInference(); err != nil {
		log.Fatalf("evaluate: %s", err)
	}
	defer a.Close()
	defer b.Close()

	for g := 0; g < *numGames; g++ {
		arena := engine.NewArena(a, b, n, mctsConf.Komi, rng)
		_, _, winner, err := arena.Play(false)
		if err != nil {
			log.Fatalf("evaluate: game %d: %s", g, err)
		}
		log.Printf("game %d: winner %s (A: %d-%d-%d)", g, winner, a.Wins, a.Loss, a.Draw)
	}

	total := a.Wins + a.Loss + a.Draw
	fmt.Printf("A vs B over %d games: A wins %d, B wins %d, draws %d (A win rate %.1f%%)\n",
		total, a.Wins, a.Loss, a.Draw, 100*float64(a.Wins)/float64(total))
}

// loadOrFreshModel reads a checkpoint's meta.json (action space only —
// no model in this module persists trained weights, see DESIGN.md) when
// dir is non-empty, otherwise builds a fresh DefaultConfig stub.
// Evaluating stubs against each other still exercises the
// Arena/win-rate machinery this command exists to demonstrate.
func loadOrFreshModel(dir string, n int, rng *randutil.PCG32) model.Model {
	if dir == "" {
		return model.NewStub(n*n + 1)
	}
	placeholder := model.NewStub(n*n + 1)
	e, err := engine.LoadCheckpoint(dir, placeholder, rng)
	if err != nil {
		log.Fatalf("evaluate: loading checkpoint %s: %s", dir, err)
	}
	return model.NewStub(e.Conf.ModelConf.ActionSpace)
}
