// Command play is an interactive human-vs-engine session over stdin,
// grounded on cmd/infer/main.go's shape (flag parsing, a bufio.Scanner
// read loop, ShowBoard-after-every-move). Unlike infer, moves are
// exchanged in the human/GTP coordinate grammar (spec §6) via the sgf
// package rather than chess algebraic notation.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sousei-go/ishi/board"
	"github.com/sousei-go/ishi/engine"
	"github.com/sousei-go/ishi/mcts"
	"github.com/sousei-go/ishi/model"
	"github.com/sousei-go/ishi/randutil"
	"github.com/sousei-go/ishi/sgf"
)

var (
	boardSize  = flag.Int("board_size", 9, "board size (9 or 19)")
	numReadout = flag.Int("readouts", 400, "MCTS readouts per engine move")
	seed       = flag.Uint64("seed", 1, "RNG seed")
	humanSide  = flag.String("human", "black", "side the human plays: black or white")
)

// gameHistory is the board.SuperKoHistory a single interactive game needs;
// same shape as engine's internal Arena history, duplicated here since a
// stand-alone game isn't played through an Arena.
type gameHistory struct {
	seen map[uint64]bool
}

func (h *gameHistory) HasPositionBeenPlayedBefore(hash uint64) bool { return h.seen[hash] }
func (h *gameHistory) record(hash uint64)                          { h.seen[hash] = true }

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	n := *boardSize
	board.InitZobrist(int64(*seed), n)
	rng := randutil.NewPCG32(*seed, 1)

	human := board.Black
	if strings.EqualFold(*humanSide, "white") {
		human = board.White
	}

	mctsConf := mcts.DefaultConfig(n)
	mctsConf.NumReadouts = *numReadout

	m := model.NewStub(n*n + 1)
	ai := engine.NewPlayer("ai", m, mctsConf)
	if err := ai.SwitchToInference(); err != nil {
		log.Fatalf("play: %s", err)
	}
	defer ai.Close()

	start := board.NewPosition(n)
	hist := &gameHistory{seen: map[uint64]bool{start.StoneHash: true}}
	if err := ai.NewGame(start, hist, rng); err != nil {
		log.Fatalf("play: %s", err)
	}

	var moves []sgf.Move
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println(ai.Position().String())

	for !ai.IsTerminal() {
		pos := ai.Position()
		var move board.Coord
		if pos.ToPlay == human {
			fmt.Printf("your move (%s to play): ", human)
			if !scanner.Scan() {
				break
			}
			parsed, err := sgf.ParseHumanCoord(scanner.Text(), n)
			if err != nil {
				fmt.Printf("bad move: %s\n", err)
				continue
			}
			move = parsed
		} else {
			var err error
			move, err = ai.Search()
			if err != nil {
				log.Fatalf("play: engine search: %s", err)
			}
			fmt.Printf("ai plays %s\n", sgf.FormatHumanCoord(move, n))
		}

		moves = append(moves, sgf.Move{Color: pos.ToPlay, Coord: move})
		if err := ai.PlayMove(move); err != nil {
			fmt.Printf("illegal move: %s\n", err)
			moves = moves[:len(moves)-1]
			continue
		}
		hist.record(ai.Position().StoneHash)
		fmt.Println(ai.Position().String())
	}

	score := ai.Position().CalculateScore(mctsConf.Komi)
	fmt.Printf("game over, score (black-white) = %.1f\n", score)

	w := &sgf.Writer{N: n, Komi: mctsConf.Komi, Moves: moves, GameComment: "interactive session"}
	fmt.Println(w.String())
}
