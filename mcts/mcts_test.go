package mcts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/sousei-go/ishi/board"
	"github.com/sousei-go/ishi/model"
	"github.com/sousei-go/ishi/randutil"
)

func init() {
	board.InitZobrist(7, 9)
}

func newTestPlayer(t *testing.T, cfg Config) (*Player, model.Inferer) {
	t.Helper()
	pos := board.NewPosition(9)
	m := model.NewStub(9*9 + 1)
	inf, err := m.NewInstance()
	require.NoError(t, err)
	p := NewPlayer(cfg, pos, inf, nil, nil, randutil.NewPCG32(1, 1))
	return p, inf
}

func TestSuggestMoveArgmaxPicksMostVisited(t *testing.T) {
	cfg := DefaultConfig(9)
	cfg.NumReadouts = 64
	p, inf := newTestPlayer(t, cfg)
	defer inf.Close()

	move, err := p.SuggestMove(64)
	require.NoError(t, err)
	assert.True(t, move.IsOnBoard(9) || move.IsPass(9))

	// Argmax pick must actually be the most-visited legal edge.
	nd := p.tree.node(p.root.ID)
	var bestN int32 = -1
	var best board.Coord
	for c, e := range nd.edges {
		if nd.pos.LegalMoves[c] && e.N > bestN {
			bestN = e.N
			best = board.Coord(c)
		}
	}
	assert.Equal(t, best, move)
}

func TestSoftPickMatchesVisitDistribution(t *testing.T) {
	cfg := DefaultConfig(9)
	cfg.NumReadouts = 200
	cfg.SoftPick = true
	cfg.PolicySoftmaxTemp = 1.0
	p, inf := newTestPlayer(t, cfg)
	defer inf.Close()

	_, err := p.SuggestMove(200)
	require.NoError(t, err)

	nd := p.tree.node(p.root.ID)
	var totalN float64
	expected := make([]float64, len(nd.edges))
	for c, e := range nd.edges {
		if nd.pos.LegalMoves[c] {
			expected[c] = float64(e.N)
			totalN += float64(e.N)
		}
	}
	if totalN == 0 {
		t.Skip("no readouts landed on a legal edge")
	}
	for c := range expected {
		expected[c] = expected[c] / totalN * 2000
	}

	counts := make([]float64, len(nd.edges))
	const trials = 2000
	for i := 0; i < trials; i++ {
		counts[p.PickMove()]++
	}

	// Only compare support where the tree actually put mass, otherwise
	// ChiSquare divides by a zero expected bin.
	var obs, exp []float64
	for c := range expected {
		if expected[c] > 0 {
			obs = append(obs, counts[c])
			exp = append(exp, expected[c])
		}
	}
	chi2 := stat.ChiSquare(obs, exp)
	assert.Less(t, chi2, float64(3*len(exp)), "soft-pick distribution diverges too far from visit counts")
}

func TestVirtualLossCancelsToZero(t *testing.T) {
	cfg := DefaultConfig(9)
	p, inf := newTestPlayer(t, cfg)
	defer inf.Close()

	leaf := p.root.SelectLeaf()
	leaf.AddVirtualLoss(p.root)
	assert.EqualValues(t, 1, leaf.VirtualLosses())
	leaf.RevertVirtualLoss(p.root)
	assert.EqualValues(t, 0, leaf.VirtualLosses())

	for c, e := range p.tree.node(p.root.ID).edges {
		assert.EqualValues(t, 0, e.N, "edge %d should have no residual visit after virtual loss cancels", c)
		assert.EqualValues(t, 0, e.W, "edge %d should have no residual weight after virtual loss cancels", c)
	}
}

func TestNoLeakEveryVirtualLossReverted(t *testing.T) {
	cfg := DefaultConfig(9)
	cfg.VirtualLosses = 4
	p, inf := newTestPlayer(t, cfg)
	defer inf.Close()

	require.NoError(t, p.expandRoot())
	for i := 0; i < 20; i++ {
		require.NoError(t, p.readoutBatch(cfg.VirtualLosses))
	}
	for id := range p.tree.nodes {
		assert.EqualValues(t, 0, p.tree.nodes[id].virtualLosses, "node %d must have no outstanding virtual loss once every readout batch completes", id)
	}
}

func TestBackupValueAlternatesSign(t *testing.T) {
	cfg := DefaultConfig(9)
	p, inf := newTestPlayer(t, cfg)
	defer inf.Close()

	root := p.root
	child := root.ChildOrCreate(board.CoordAt(4, 4, 9))
	grandchild := child.ChildOrCreate(board.CoordAt(4, 5, 9))

	grandchild.BackupValue(1, root)

	rootEdge := p.tree.node(root.ID).edges[board.CoordAt(4, 4, 9)]
	childEdge := p.tree.node(child.ID).edges[board.CoordAt(4, 5, 9)]
	assert.EqualValues(t, 1, rootEdge.N)
	assert.EqualValues(t, 1, childEdge.N)
	assert.Equal(t, float32(-1), rootEdge.W, "value flips sign every ply during backup")
	assert.Equal(t, float32(1), childEdge.W)
}

func TestPruneChildrenFreesSiblings(t *testing.T) {
	cfg := DefaultConfig(9)
	p, inf := newTestPlayer(t, cfg)
	defer inf.Close()

	a := board.CoordAt(0, 0, 9)
	b := board.CoordAt(0, 1, 9)
	p.root.ChildOrCreate(a)
	p.root.ChildOrCreate(b)
	before := len(p.tree.nodes)

	require.NoError(t, p.PlayMove(a))
	assert.Equal(t, before, len(p.tree.nodes), "pruning must not shrink the arena slice, only recycle it")
	assert.True(t, len(p.tree.free) > 0, "the pruned sibling's node must return to the freelist")
}

func TestShouldResignHonorsCalibrationDraw(t *testing.T) {
	cfg := DefaultConfig(9)
	cfg.ResignThreshold = 0.99 // force the condition true if not disabled
	cfg.DisableResignProbability = 1.0
	p, inf := newTestPlayer(t, cfg)
	defer inf.Close()

	assert.False(t, p.ShouldResign(), "a calibration-disabled game must never resign")
}

func TestDOTIncludesEveryMaterializedNode(t *testing.T) {
	cfg := DefaultConfig(9)
	p, inf := newTestPlayer(t, cfg)
	defer inf.Close()

	p.root.ChildOrCreate(board.CoordAt(2, 2, 9))
	out := p.root.DOT()
	assert.Contains(t, out, "mcts")
}
