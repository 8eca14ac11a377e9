package engine

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/sousei-go/ishi/board"
	"github.com/sousei-go/ishi/randutil"
	"github.com/sousei-go/ishi/sgf"
)

// Arena plays two Players against each other over a board.Position,
// grounded on agogo.go's Arena.Play. It tracks each player's record
// and, when recording, harvests training Examples.
type Arena struct {
	A, B *Player
	N    int
	Komi float64

	rng *randutil.PCG32

	buf    bytes.Buffer
	logger *log.Logger
}

// NewArena builds an Arena for boardSize boards at the given komi.
func NewArena(a, b *Player, boardSize int, komi float64, rng *randutil.PCG32) *Arena {
	ar := &Arena{A: a, B: b, N: boardSize, Komi: komi, rng: rng}
	ar.logger = log.New(&ar.buf, "", log.Ltime)
	return ar
}

// history is the minimal board.SuperKoHistory a self-play game needs: the
// set of whole-board stone hashes seen so far this game.
type history struct {
	seen map[uint64]bool
}

func newHistory() *history { return &history{seen: map[uint64]bool{}} }

func (h *history) HasPositionBeenPlayedBefore(hash uint64) bool { return h.seen[hash] }
func (h *history) record(hash uint64)                           { h.seen[hash] = true }

// Play plays one game to completion (or until a resignation), returning
// harvested Examples (only when record is true), the move-by-move
// transcript (always, so callers can render SGF), and the winning color
// (board.Empty for a draw), mirroring Arena.Play.
func (a *Arena) Play(record bool) ([]Example, []sgf.Move, board.Color, error) {
	start := board.NewPosition(a.N)
	hist := newHistory()
	hist.record(start.StoneHash)

	a.A.Color = board.Black
	a.B.Color = board.White
	if err := a.A.NewGame(start, hist, a.rng); err != nil {
		return nil, nil, board.Empty, err
	}
	if err := a.B.NewGame(start, hist, a.rng); err != nil {
		return nil, nil, board.Empty, err
	}
	current, other := a.A, a.B

	a.logger.Printf("playing, recording=%t", record)

	var examples []Example
	var moves []sgf.Move
	var resigned board.Color

	for {
		pos := current.Position()
		if pos.MoveNum >= current.Conf.MaxMoves {
			break
		}
		if current.ShouldResign() {
			resigned = current.Color
			break
		}
		move, err := current.Search()
		if err != nil {
			return nil, nil, board.Empty, err
		}
		a.logger.Printf("%s to play %v at move %d", current.Name, move, pos.MoveNum)
		moves = append(moves, sgf.Move{Color: current.Color, Coord: move})

		if record {
			feat := current.Features()
			ex := Example{
				Board:  append([]float32(nil), feat.Data().([]float32)...),
				Policy: current.Policies(),
				// Provisional: the mover's color, resolved to ±1/0 below
				// once the winner is known (same deferred-sign trick
				// documented in Arena.Play).
				Value: float32(pos.ToPlay),
			}
			examples = append(examples, ex)
		}

		if err := current.PlayMove(move); err != nil {
			return nil, nil, board.Empty, err
		}
		if err := other.PlayMove(move); err != nil {
			return nil, nil, board.Empty, err
		}
		hist.record(current.Position().StoneHash)

		if current.search.Root().IsTerminal() {
			break
		}
		current, other = other, current
	}

	winner := a.winner(current, resigned)
	for i := range examples {
		switch {
		case winner == board.Empty:
			examples[i].Value = 0
		case examples[i].Value == float32(winner):
			examples[i].Value = 1
		default:
			examples[i].Value = -1
		}
	}

	switch winner {
	case board.Empty:
		a.A.Draw++
		a.B.Draw++
	case a.A.Color:
		a.A.Wins++
		a.B.Loss++
	case a.B.Color:
		a.B.Wins++
		a.A.Loss++
	}
	return examples, moves, winner, nil
}

func (a *Arena) winner(mover *Player, resigned board.Color) board.Color {
	if resigned != board.Empty {
		return resigned.Opponent()
	}
	pos := mover.Position()
	score := pos.CalculateScore(a.Komi)
	switch {
	case score > 0:
		return board.Black
	case score < 0:
		return board.White
	default:
		return board.Empty
	}
}

// Log writes both players' accumulated search breadcrumbs to w, mirroring
// Arena.Log.
func (a *Arena) Log(w io.Writer) {
	fmt.Fprint(w, a.buf.String())
	fmt.Fprintf(w, "\n%s:\n\n%s\n", a.A.Name, a.A.Log())
	fmt.Fprintf(w, "\n%s:\n\n%s\n", a.B.Name, a.B.Log())
}
