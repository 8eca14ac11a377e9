package mcts

import (
	"bytes"
	"fmt"
	"log"
	"math"

	"github.com/chewxy/math32"

	"github.com/sousei-go/ishi/board"
	"github.com/sousei-go/ishi/cache"
	"github.com/sousei-go/ishi/encoder"
	"github.com/sousei-go/ishi/model"
	"github.com/sousei-go/ishi/randutil"
	"github.com/sousei-go/ishi/symmetry"
	"gorgonia.org/tensor"
)

// dirichletBoardSize is the board size spec §4.F's Dirichlet alpha constant
// (0.03) is calibrated for (19x19 Go); injectRootNoise rescales it by
// dirichletBoardSize/N² for other board sizes.
const dirichletBoardSize = 361

// State is the player's lifecycle state machine (spec §4.F), matching
// agent.go's Agent state-machine convention but with
// names drawn from spec's own vocabulary.
type State int

const (
	Fresh State = iota
	Expanded
	Pondered
	Advanced
	Won
	Lost
	Drawn
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Expanded:
		return "expanded"
	case Pondered:
		return "pondered"
	case Advanced:
		return "advanced"
	case Won:
		return "won"
	case Lost:
		return "lost"
	case Drawn:
		return "drawn"
	default:
		return "unknown"
	}
}

// Player drives one side's search: a tree whose root tracks the game so
// far, an inferer to evaluate leaves, an optional bounded cache, an
// optional superko veto, and the rolling history encoding spec §4.D feeds
// the model. Mirrors agent.go's Agent in shape —
// tree+inferer+rng+logger — generalized to PUCT's node/edge model instead
// of that simpler minimax player.
type Player struct {
	cfg   Config
	tree  *Tree
	root  NodeRef
	infer model.Inferer
	cache *cache.InferenceCache
	hist  *encoder.History
	rng   *randutil.PCG32

	state                  State
	resignDisabledThisGame bool

	logger *log.Logger
	buf    bytes.Buffer
}

// NewPlayer starts a fresh search rooted at the given starting position.
// infer and ic (the cache) may be nil; superko may be nil for games that
// don't track it.
func NewPlayer(cfg Config, start *board.Position, infer model.Inferer, ic *cache.InferenceCache, superko board.SuperKoHistory, rng *randutil.PCG32) *Player {
	if superko != nil {
		// Position.Clone propagates SuperKo to every descendant this tree
		// materializes, so setting it once on the root is enough for the
		// whole search (board/position.go's recomputeLegalMoves consults
		// it directly on every future move).
		start.SuperKo = superko
	}
	t, rootID := NewTree(cfg, start)
	p := &Player{
		cfg:    cfg,
		tree:   t,
		root:   NodeRef{T: t, ID: rootID},
		infer: infer,
		cache: ic,
		hist:  encoder.Initialize(start),
		rng:   rng,
		state: Fresh,
	}
	p.logger = log.New(&p.buf, "mcts: ", log.LstdFlags)
	if cfg.DisableResignProbability > 0 && rng.Float64() < cfg.DisableResignProbability {
		p.resignDisabledThisGame = true
		p.logger.Printf("resignation disabled for this game (calibration draw)")
	}
	return p
}

// Log returns accumulated breadcrumbs (spec §7's opt-in logging convention).
func (p *Player) Log() string { return p.buf.String() }

// SuggestMove runs newReadouts additional simulations from the search
// root and returns the move PickMove would currently choose (spec §4.F:
// "SuggestMove(n) runs n additional readouts, then returns PickMove()'s
// result without committing it"). It follows spec §4.F's step order
// exactly: expand an unexpanded root first, then inject noise, then run
// the batched readout loop.
func (p *Player) SuggestMove(newReadouts int) (board.Coord, error) {
	if !p.root.IsExpanded() && !p.root.IsTerminal() {
		if err := p.expandRoot(); err != nil {
			return board.InvalidCoord, err
		}
	}
	if p.cfg.InjectNoise {
		p.injectRootNoise()
	}

	batch := p.cfg.VirtualLosses
	if batch <= 0 {
		batch = 1
	}
	target := p.root.N() + int32(newReadouts)
	for p.root.N() < target {
		want := batch
		if remaining := target - p.root.N(); int32(want) > remaining {
			want = int(remaining)
		}
		if err := p.readoutBatch(want); err != nil {
			return board.InvalidCoord, err
		}
	}
	p.state = Pondered
	return p.PickMove(), nil
}

// expandRoot runs the single, unbatched inference spec §4.F's step 1
// requires before any noise injection or batched search can happen.
func (p *Player) expandRoot() error {
	results, err := p.evaluateLeaves([]NodeRef{p.root})
	if err != nil {
		return err
	}
	e := results[p.root.ID]
	p.root.IncorporateResults(e.Policy, e.Value, p.root)
	return nil
}

// readoutBatch selects up to want leaves (spec §4.F step 3), applying
// virtual loss to each non-terminal selection before any inference so later
// selections in the same batch route around them; the same leaf may be
// selected more than once; terminal leaves back up immediately without
// virtual loss or inference. All distinct non-terminal leaves then share a
// single batched model.Inferer.Run call, after which every original
// selection (duplicates included) reverts its virtual loss and calls
// IncorporateResults once.
func (p *Player) readoutBatch(want int) error {
	selections := make([]NodeRef, want)
	terminal := make([]bool, want)
	for i := 0; i < want; i++ {
		leaf := p.root.SelectLeaf()
		term := leaf.IsTerminal()
		if !term {
			leaf.AddVirtualLoss(p.root)
		}
		selections[i] = leaf
		terminal[i] = term
	}

	var distinct []NodeRef
	seen := map[NodeID]bool{}
	for i, leaf := range selections {
		if terminal[i] || seen[leaf.ID] {
			continue
		}
		seen[leaf.ID] = true
		distinct = append(distinct, leaf)
	}

	results, err := p.evaluateLeaves(distinct)
	if err != nil {
		for i, leaf := range selections {
			if !terminal[i] {
				leaf.RevertVirtualLoss(p.root)
			}
		}
		return err
	}

	for i, leaf := range selections {
		if terminal[i] {
			v := leaf.TerminalValue(p.cfg.Komi)
			leaf.BackupValue(v, p.root)
			continue
		}
		leaf.RevertVirtualLoss(p.root)
		e := results[leaf.ID]
		leaf.IncorporateResults(e.Policy, e.Value, p.root)
	}
	return nil
}

// pendingLeaf is a leaf awaiting a shared batched inference call: its
// features have been computed (symmetrized, if cfg.RandomSymmetry) and it
// missed the cache.
type pendingLeaf struct {
	id   NodeID
	key  cache.Key
	sym  symmetry.Symmetry
	feat *tensor.Dense
	n    int
}

// evaluateLeaves resolves (policy, value) for every distinct leaf in
// leaves, serving cache hits directly and issuing exactly one
// model.Inferer.Run call (spec §4.F: "issue one batched inference to the
// model") for whatever remains, applying and inverting a random symmetry
// per leaf (spec §4.D) when cfg.RandomSymmetry is set.
func (p *Player) evaluateLeaves(leaves []NodeRef) (map[NodeID]cache.Entry, error) {
	results := make(map[NodeID]cache.Entry, len(leaves))
	var pending []pendingLeaf

	for _, leaf := range leaves {
		pos := leaf.Position()
		sym := symmetry.Identity
		if p.cfg.RandomSymmetry {
			sym = symmetry.MixBits(pos.StoneHash, uint64(p.rng.Uint32()))
		}
		key := cache.Key{
			StoneHash:      pos.StoneHash,
			Ko:             pos.Ko,
			ToPlay:         pos.ToPlay,
			OpponentPassed: pos.LastMoveWasPass,
		}
		if p.cache != nil {
			if e, ok := p.cache.Get(key); ok {
				results[leaf.ID] = e
				continue
			}
		}

		n := pos.N
		h := encoder.Update(p.hist, pos)
		if sym != symmetry.Identity {
			for i := 0; i < encoder.Planes; i++ {
				copy(h.Plane(i), symmetry.ApplyPlane(sym, h.Plane(i), n))
			}
		}
		pending = append(pending, pendingLeaf{id: leaf.ID, key: key, sym: sym, feat: h.NHWC(), n: n})
	}

	if len(pending) == 0 {
		return results, nil
	}

	batch := make([]model.Input, len(pending))
	for i, pl := range pending {
		batch[i] = model.Input{Features: pl.feat, Symmetry: pl.sym}
	}
	out, err := p.infer.Run(batch)
	if err != nil {
		return nil, fmt.Errorf("mcts: model run: %w", err)
	}
	for i, pl := range pending {
		o := out[i]
		policy := symmetry.ApplyPolicy(symmetry.Inverse(pl.sym), o.Policy, pl.n)
		entry := cache.Entry{Policy: policy, Value: o.Value}
		if p.cache != nil {
			p.cache.Put(pl.key, entry)
		}
		results[pl.id] = entry
	}
	return results, nil
}

// injectRootNoise mixes Dirichlet noise into the root's priors, restricted
// to legal moves (spec §4.E/§4.I). alpha is spec §4.F step 2's
// 0.03·361/N² scaling, so the noise stays calibrated to AlphaZero's
// reference 19x19 alpha across other board sizes.
func (p *Player) injectRootNoise() {
	nd := p.tree.node(p.root.ID)
	n := len(nd.edges)
	alpha := float64(0.03*dirichletBoardSize) / float64(nd.pos.N*nd.pos.N)
	noise := make([]float32, n)
	p.rng.Dirichlet(alpha, noise)
	p.root.InjectNoise(noise, p.cfg.NoiseMix)
}

// PickMove chooses among the root's children without running further
// readouts: argmax visit count by default, or a visit-count-weighted
// stochastic pick when cfg.SoftPick is set, tempered by
// PolicySoftmaxTemp (spec §4.F, spec §8 scenarios 4-5).
func (p *Player) PickMove() board.Coord {
	nd := p.tree.node(p.root.ID)
	mask := p.root.legalMask()
	visits := make([]float32, len(nd.edges))
	for c, e := range nd.edges {
		if mask[c] {
			visits[c] = float32(e.N)
		}
	}
	if !p.cfg.SoftPick {
		return board.Coord(p.argmaxByVisitsThenScore(nd, mask, visits))
	}

	temp := p.cfg.PolicySoftmaxTemp
	if temp <= 0 {
		temp = 1
	}
	var total float32
	weights := make([]float32, len(visits))
	invTemp := 1 / float64(temp)
	for c, v := range visits {
		w := float32(math.Pow(float64(v), invTemp))
		weights[c] = w
		total += w
	}
	if total <= 0 {
		return board.Coord(p.argmaxByVisitsThenScore(nd, mask, visits))
	}
	r := p.rng.Float32() * total
	var acc float32
	for c, w := range weights {
		acc += w
		if r <= acc {
			return board.Coord(c)
		}
	}
	return board.Coord(len(visits) - 1)
}

// argmaxByVisitsThenScore implements spec §4.F's non-soft-pick rule:
// "argmax over visit counts; ties broken by child action score" — a
// different tie-break than symmetry.ArgMax's generic smallest-index
// contract (spec §8's ArgMax scenario), so PickMove can't just delegate to
// it. Ties compare the same Q(c)*sign+U(c) score bestChild uses.
func (p *Player) argmaxByVisitsThenScore(nd *Node, mask []bool, visits []float32) int {
	sign := float32(1)
	if nd.pos.ToPlay == board.White {
		sign = -1
	}
	var parentN int32
	for _, e := range nd.edges {
		parentN += e.N
	}
	base := float32(parentN) - 1
	if base < 1 {
		base = 1
	}
	sqrtBase := math32.Sqrt(base)

	best := -1
	var bestVisits float32 = -1
	var bestScore float32
	for c, v := range visits {
		if !mask[c] {
			continue
		}
		e := nd.edges[c]
		score := e.Q()*sign + p.cfg.CPUCT*e.P*sqrtBase/(1+float32(e.N))
		switch {
		case best == -1, v > bestVisits:
			best, bestVisits, bestScore = c, v, score
		case v == bestVisits && score > bestScore:
			best, bestScore = c, score
		}
	}
	if best == -1 {
		return symmetry.ArgMax(visits)
	}
	return best
}

// PlayMove commits move as the next move in the game, advancing the search
// root to that child (materializing it if necessary) and pruning every
// sibling subtree (spec §4.F: "PlayMove commits, discarding the rest of
// the tree"). It updates the rolling encoder history and the terminal
// state machine.
func (p *Player) PlayMove(move board.Coord) error {
	nd := p.tree.node(p.root.ID)
	if !move.IsPass(nd.pos.N) && !p.root.legalMask()[move] {
		return fmt.Errorf("mcts: illegal move %d", move)
	}
	child := p.root.ChildOrCreate(move)
	p.root.PruneChildren(move)
	p.hist = encoder.Update(p.hist, child.Position())
	p.root = child
	p.state = Advanced

	if child.IsTerminal() {
		// Won/Lost/Drawn are reported from Black's perspective (CalculateScore's
		// own sign convention); callers tracking a specific seat translate via
		// their own color as needed.
		switch score := child.Position().CalculateScore(p.cfg.Komi); {
		case score == 0:
			p.state = Drawn
		case score > 0:
			p.state = Won
		default:
			p.state = Lost
		}
	}
	return nil
}

// ShouldResign reports whether the root's current value estimate has
// crossed cfg.ResignThreshold, honoring this game's resignation-disabled
// calibration draw (spec §7 Supplemented Features: DisableResignProbability
// periodically forces games to play to the end so the resign threshold
// itself can be validated against ground-truth outcomes).
func (p *Player) ShouldResign() bool {
	if !p.cfg.ResignEnabled || p.resignDisabledThisGame {
		return false
	}
	sign := float32(1)
	if p.root.Position().ToPlay == board.White {
		sign = -1
	}
	return p.root.Q()*sign < p.cfg.ResignThreshold
}

// State returns the player's current lifecycle state.
func (p *Player) State() State { return p.state }

// Root exposes the current search root, primarily for DOT dumps and tests.
func (p *Player) Root() NodeRef { return p.root }

// Features returns the same NHWC feature tensor the root position would be
// evaluated with (identity symmetry), for callers harvesting training
// examples from the search's own rolling history rather than re-deriving
// a separate single-frame encoding.
func (p *Player) Features() *tensor.Dense {
	return encoder.Update(p.hist, p.root.Position()).NHWC()
}
