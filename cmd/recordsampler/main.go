// Command recordsampler is spec §6's "record sampler" executable: it
// either runs self-play games and persists the harvested Examples to a
// BadgerDB directory (mode=record), or resamples a fixed-size batch back
// out of an existing one (mode=sample), grounded on
// hailam-chessplay's storage.go usage pattern via internal/recordstore.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/sousei-go/ishi/board"
	"github.com/sousei-go/ishi/engine"
	"github.com/sousei-go/ishi/internal/recordstore"
	"github.com/sousei-go/ishi/mcts"
	"github.com/sousei-go/ishi/model"
	"github.com/sousei-go/ishi/randutil"
)

var (
	dbDir      = flag.String("db", "", "badger database directory (required)")
	mode       = flag.String("mode", "record", "record or sample")
	boardSize  = flag.Int("board_size", 9, "board size")
	numGames   = flag.Int("games", 1, "games to self-play in record mode")
	numReadout = flag.Int("readouts", 160, "MCTS readouts per move in record mode")
	sampleSize = flag.Int("sample_size", 32, "examples to draw in sample mode")
	seed       = flag.Uint64("seed", 1, "RNG seed")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)
	if *dbDir == "" {
		log.Fatal("recordsampler: -db is required")
	}

	store, err := recordstore.Open(*dbDir)
	if err != nil {
		log.Fatalf("recordsampler: %s", err)
	}
	defer store.Close()

	rng := randutil.NewPCG32(*seed, 1)

	switch *mode {
	case "record":
		runRecord(store, rng)
	case "sample":
		runSample(store, rng)
	default:
		log.Fatalf("recordsampler: unknown mode %q", *mode)
	}
}

func runRecord(store *recordstore.Store, rng *randutil.PCG32) {
	board.InitZobrist(int64(*seed), *boardSize)

	mctsConf := mcts.DefaultConfig(*boardSize)
	mctsConf.NumReadouts = *numReadout
	conf := engine.Config{
		Name:      "ishi-recordsampler",
		BoardSize: *boardSize,
		ModelConf: model.DefaultConfig(*boardSize),
		MCTSConf:  mctsConf,
	}
	m := model.NewStub(conf.ModelConf.ActionSpace)
	e := engine.New(conf, m, rng)

	total := 0
	for g := 0; g < *numGames; g++ {
		examples, err := e.SelfPlay()
		if err != nil {
			log.Fatalf("recordsampler: game %d: %s", g, err)
		}
		if err := store.PutAll(examples); err != nil {
			log.Fatalf("recordsampler: storing game %d: %s", g, err)
		}
		total += len(examples)
		log.Printf("game %d: stored %d examples", g, len(examples))
	}
	fmt.Printf("recorded %d examples across %d games\n", total, *numGames)
}

func runSample(store *recordstore.Store, rng *randutil.PCG32) {
	n, err := store.Count()
	if err != nil {
		log.Fatalf("recordsampler: %s", err)
	}
	samples, err := store.Sample(*sampleSize, rng)
	if err != nil {
		log.Fatalf("recordsampler: %s", err)
	}
	var sum float32
	for _, ex := range samples {
		sum += ex.Value
	}
	avg := float32(0)
	if len(samples) > 0 {
		avg = sum / float32(len(samples))
	}
	fmt.Printf("store holds %d examples, sampled %d, mean value %.3f\n", n, len(samples), avg)
}
