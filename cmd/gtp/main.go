// Command gtp is a minimal GTP (Go Text Protocol) command loop over
// stdin/stdout, the "GTP server" executable spec §6 names. The GTP loop
// itself is an explicit external collaborator (spec §1: "out of scope...
// the GTP command loop"); this is the one reference instance that
// composes the core behind it, grounded on cmd/infer/main.go's
// read-loop shape (bufio.Scanner over stdin, one command per line)
// adapted to GTP's command/response framing instead of a raw chess-move
// prompt.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/sousei-go/ishi/board"
	"github.com/sousei-go/ishi/engine"
	"github.com/sousei-go/ishi/mcts"
	"github.com/sousei-go/ishi/model"
	"github.com/sousei-go/ishi/randutil"
	"github.com/sousei-go/ishi/sgf"
)

var seed = flag.Uint64("seed", 1, "RNG seed")

// gtpHistory is the minimal board.SuperKoHistory a GTP session needs,
// rebuilt whenever boardsize/clear_board resets the game.
type gtpHistory struct {
	seen map[uint64]bool
}

func (h *gtpHistory) HasPositionBeenPlayedBefore(hash uint64) bool { return h.seen[hash] }
func (h *gtpHistory) record(hash uint64)                          { h.seen[hash] = true }

type session struct {
	n     int
	komi  float64
	rng   *randutil.PCG32
	ai    *engine.Player
	model model.Model
	hist  *gtpHistory
}

func newSession(n int, komi float64, rng *randutil.PCG32) *session {
	s := &session{n: n, komi: komi, rng: rng, model: model.NewStub(n*n + 1)}
	s.reset()
	return s
}

func (s *session) reset() {
	if s.ai != nil {
		_ = s.ai.Close()
	}
	board.InitZobrist(int64(*seed), s.n)
	mctsConf := mcts.DefaultConfig(s.n)
	mctsConf.Komi = s.komi
	s.ai = engine.NewPlayer("gtp", s.model, mctsConf)
	if err := s.ai.SwitchToInference(); err != nil {
		panic(err)
	}
	start := board.NewPosition(s.n)
	s.hist = &gtpHistory{seen: map[uint64]bool{start.StoneHash: true}}
	if err := s.ai.NewGame(start, s.hist, s.rng); err != nil {
		panic(err)
	}
}

func main() {
	flag.Parse()
	log.SetFlags(0)

	s := newSession(9, 7.5, randutil.NewPCG32(*seed, 1))
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, cmd, args := splitCommand(line)
		ok, result := s.dispatch(cmd, args)
		respond(id, ok, result)
		if cmd == "quit" {
			return
		}
	}
}

// splitCommand peels an optional leading numeric id off a GTP command
// line, per the protocol's "[id] command_name args..." framing.
func splitCommand(line string) (id string, cmd string, args []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", "", nil
	}
	if _, err := strconv.Atoi(fields[0]); err == nil && len(fields) > 1 {
		return fields[0], fields[1], fields[2:]
	}
	return "", fields[0], fields[1:]
}

func respond(id string, ok bool, result string) {
	tag := "="
	if !ok {
		tag = "?"
	}
	fmt.Printf("%s%s %s\n\n", tag, id, result)
}

func (s *session) dispatch(cmd string, args []string) (bool, string) {
	switch cmd {
	case "name":
		return true, "ishi"
	case "version":
		return true, "0.1"
	case "protocol_version":
		return true, "2"
	case "list_commands":
		return true, "boardsize\nclear_board\nkomi\nplay\ngenmove\nshowboard\nquit"
	case "quit":
		return true, ""
	case "boardsize":
		if len(args) != 1 {
			return false, "syntax error"
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return false, "syntax error"
		}
		s.n = n
		s.reset()
		return true, ""
	case "komi":
		if len(args) != 1 {
			return false, "syntax error"
		}
		k, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return false, "syntax error"
		}
		s.komi = k
		s.reset()
		return true, ""
	case "clear_board":
		s.reset()
		return true, ""
	case "showboard":
		return true, "\n" + s.ai.Position().String()
	case "play":
		if len(args) != 2 {
			return false, "syntax error"
		}
		move, err := sgf.ParseHumanCoord(args[1], s.n)
		if err != nil {
			return false, err.Error()
		}
		if err := s.ai.PlayMove(move); err != nil {
			return false, err.Error()
		}
		s.hist.record(s.ai.Position().StoneHash)
		return true, ""
	case "genmove":
		if len(args) != 1 {
			return false, "syntax error"
		}
		if s.ai.ShouldResign() {
			return true, "resign"
		}
		move, err := s.ai.Search()
		if err != nil {
			return false, err.Error()
		}
		if err := s.ai.PlayMove(move); err != nil {
			return false, err.Error()
		}
		s.hist.record(s.ai.Position().StoneHash)
		return true, sgf.FormatHumanCoord(move, s.n)
	default:
		return false, "unknown command"
	}
}
