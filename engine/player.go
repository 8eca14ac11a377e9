package engine

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/sousei-go/ishi/board"
	"github.com/sousei-go/ishi/cache"
	"github.com/sousei-go/ishi/mcts"
	"github.com/sousei-go/ishi/model"
	"github.com/sousei-go/ishi/randutil"
	"gorgonia.org/tensor"
)

// Player pairs one model.Model with an mcts.Config and tracks that
// player's running record across an Arena's games, renamed from (and
// grounded on) agent.go's Agent. Like Agent, it
// pre-warms a pool of Inferer instances via Model.NewInstance (spec §6:
// "new_instance() constructor used for multi-threaded fan-out") so that
// an Engine running several concurrent self-play games can hand each
// game its own Inferer without contending on one; under spec §5's
// single-threaded-cooperative selection model, a single game only ever
// draws one Inferer from the pool at a time.
type Player struct {
	Name  string
	Model model.Model
	Conf  mcts.Config
	Color board.Color
	Cache *cache.InferenceCache

	// PoolSize is how many Inferer instances SwitchToInference
	// pre-warms. Defaults to 1 when left zero.
	PoolSize int

	Wins, Loss, Draw int

	infers []model.Inferer
	next   int
	search *mcts.Player
}

// NewPlayer builds a Player bound to a model and search configuration.
// Call SwitchToInference before the first NewGame.
func NewPlayer(name string, m model.Model, conf mcts.Config) *Player {
	return &Player{Name: name, Model: m, Conf: conf, PoolSize: 1}
}

// SwitchToInference pre-warms the player's Inferer pool (spec §6's
// new_instance() factory), mirroring Agent.SwitchToInference.
func (p *Player) SwitchToInference() error {
	n := p.PoolSize
	if n <= 0 {
		n = 1
	}
	p.infers = make([]model.Inferer, 0, n)
	for i := 0; i < n; i++ {
		inf, err := p.Model.NewInstance()
		if err != nil {
			return errors.WithMessage(err, "engine: building inferer")
		}
		p.infers = append(p.infers, inf)
	}
	return nil
}

// NewGame starts a fresh search tree rooted at start, ready for Search.
// It draws the next Inferer from the pool round-robin, so concurrent
// games on the same Player each get their own.
func (p *Player) NewGame(start *board.Position, superko board.SuperKoHistory, rng *randutil.PCG32) error {
	if len(p.infers) == 0 {
		return errors.New("engine: SwitchToInference must be called before NewGame")
	}
	inf := p.infers[p.next%len(p.infers)]
	p.next++
	p.search = mcts.NewPlayer(p.Conf, start, inf, p.Cache, superko, rng)
	return nil
}

// Search runs the configured number of readouts and returns the suggested
// move, mirroring Agent.Search.
func (p *Player) Search() (board.Coord, error) {
	return p.search.SuggestMove(p.Conf.NumReadouts)
}

// Features returns the NHWC feature tensor for the search's current root,
// the same input the model itself is evaluated against.
func (p *Player) Features() *tensor.Dense {
	return p.search.Features()
}

// Policies returns the root's visit-count distribution as a normalized
// policy vector, the training target spec's self-play harvesting needs.
func (p *Player) Policies() []float32 {
	root := p.search.Root()
	n := root.Position().N
	out := make([]float32, n*n+1)
	var total float32
	for c := 0; c <= n*n; c++ {
		out[c] = float32(p.search.Root().ChildN(board.Coord(c)))
		total += out[c]
	}
	if total == 0 {
		return out
	}
	for c := range out {
		out[c] /= total
	}
	return out
}

// PlayMove commits move to the search tree.
func (p *Player) PlayMove(move board.Coord) error {
	return p.search.PlayMove(move)
}

// ShouldResign reports whether this player's search thinks it is lost
// beyond the configured resignation threshold.
func (p *Player) ShouldResign() bool {
	return p.search.ShouldResign()
}

// Position returns the search tree's current root position.
func (p *Player) Position() *board.Position {
	return p.search.Root().Position()
}

// IsTerminal reports whether the current root position ends the game
// (both players just passed, or the move limit was hit).
func (p *Player) IsTerminal() bool {
	return p.search.Root().IsTerminal()
}

// Log returns the underlying mcts.Player's accumulated breadcrumbs.
func (p *Player) Log() string {
	if p.search == nil {
		return ""
	}
	return p.search.Log()
}

// Close releases every pooled Inferer, aggregating any close errors the
// way Agent.Close does.
func (p *Player) Close() error {
	var errs error
	for _, inf := range p.infers {
		if err := inf.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}
