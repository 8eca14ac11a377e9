// Command selfplay runs the engine against itself for a configured number
// of games, writing one SGF transcript per game and printing a running
// examples count. It is the "self-play" executable spec §6's CLI surface
// names; flag parsing and process bootstrap are themselves out of scope
// for the core, so this is a thin composition shell, grounded on
// cmd/train/main.go's spirit (flag.Parse, log.SetFlags, compose-and-run).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sousei-go/ishi/board"
	"github.com/sousei-go/ishi/engine"
	"github.com/sousei-go/ishi/mcts"
	"github.com/sousei-go/ishi/model"
	"github.com/sousei-go/ishi/randutil"
	"github.com/sousei-go/ishi/sgf"
)

var (
	boardSize  = flag.Int("board_size", 9, "board size (9 or 19)")
	numGames   = flag.Int("games", 1, "number of self-play games")
	numReadout = flag.Int("readouts", 160, "MCTS readouts per move")
	seed       = flag.Uint64("seed", 1, "RNG seed")
	sgfDir     = flag.String("sgf_dir", "", "directory to write per-game SGF files (empty: don't write)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	board.InitZobrist(int64(*seed), *boardSize)
	rng := randutil.NewPCG32(*seed, 1)

	mctsConf := mcts.DefaultConfig(*boardSize)
	mctsConf.NumReadouts = *numReadout

	conf := engine.Config{
		Name:      "ishi-selfplay",
		BoardSize: *boardSize,
		ModelConf: model.DefaultConfig(*boardSize),
		MCTSConf:  mctsConf,
	}
	m := model.NewStub(conf.ModelConf.ActionSpace)
	e := engine.New(conf, m, rng)

	if *sgfDir != "" {
		if err := os.MkdirAll(*sgfDir, 0755); err != nil {
			log.Fatalf("selfplay: making sgf dir: %s", err)
		}
	}

	total := 0
	for g := 0; g < *numGames; g++ {
		examples, moves, winner, err := e.SelfPlayGame()
		if err != nil {
			log.Fatalf("selfplay: game %d: %s", g, err)
		}
		total += len(examples)
		log.Printf("game %d: %d moves, %d examples, winner=%s", g, len(moves), len(examples), winner)

		if *sgfDir != "" {
			w := transcript(moves, *boardSize, mctsConf.Komi, winner)
			path := filepath.Join(*sgfDir, fmt.Sprintf("game_%03d.sgf", g))
			if err := os.WriteFile(path, []byte(w.String()), 0644); err != nil {
				log.Fatalf("selfplay: writing %s: %s", path, err)
			}
		}
	}
	fmt.Printf("played %d games, harvested %d examples\n", *numGames, total)
}

func transcript(moves []sgf.Move, n int, komi float64, winner board.Color) *sgf.Writer {
	result := "Draw"
	switch winner {
	case board.Black:
		result = "B+R"
	case board.White:
		result = "W+R"
	}
	return &sgf.Writer{
		N:           n,
		Komi:        komi,
		Result:      result,
		BlackName:   "ishi-A",
		WhiteName:   "ishi-B",
		GameComment: "self-play game",
		Moves:       moves,
	}
}
