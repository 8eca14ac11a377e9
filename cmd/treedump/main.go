// Command treedump runs a short search and writes the resulting MCTS
// (sub)tree as Graphviz DOT, grounded on mcts.NodeRef.DOT() (mcts/dot.go)
// — ex-post visualization tooling for a previously-unexercised
// gographviz dependency.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sousei-go/ishi/board"
	"github.com/sousei-go/ishi/mcts"
	"github.com/sousei-go/ishi/model"
	"github.com/sousei-go/ishi/randutil"
)

var (
	boardSize  = flag.Int("board_size", 9, "board size")
	numReadout = flag.Int("readouts", 64, "MCTS readouts before dumping")
	seed       = flag.Uint64("seed", 1, "RNG seed")
	out        = flag.String("out", "", "output .dot path (empty: stdout)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	n := *boardSize
	board.InitZobrist(int64(*seed), n)
	rng := randutil.NewPCG32(*seed, 1)

	stub := model.NewStub(n*n + 1)
	inf, err := stub.NewInstance()
	if err != nil {
		log.Fatalf("treedump: %s", err)
	}
	defer inf.Close()

	cfg := mcts.DefaultConfig(n)
	start := board.NewPosition(n)
	player := mcts.NewPlayer(cfg, start, inf, nil, nil, rng)

	if _, err := player.SuggestMove(*numReadout); err != nil {
		log.Fatalf("treedump: %s", err)
	}

	dot := player.Root().DOT()
	if *out == "" {
		fmt.Println(dot)
		return
	}
	if err := os.WriteFile(*out, []byte(dot), 0644); err != nil {
		log.Fatalf("treedump: writing %s: %s", *out, err)
	}
}
