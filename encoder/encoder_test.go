package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sousei-go/ishi/board"
)

func init() {
	board.InitZobrist(42, 9)
}

func TestInitializeReplicatesHistory(t *testing.T) {
	p := board.NewPosition(9)
	p.PlayMove(board.CoordAt(4, 4, 9))

	h := Initialize(p)
	for k := 0; k < HistoryPairs; k++ {
		assert.Equal(t, h.Plane(0), h.Plane(2*k), "history pair %d my-plane should match the current position", k)
		assert.Equal(t, h.Plane(1), h.Plane(2*k+1), "history pair %d opponent-plane should match the current position", k)
	}
	assert.Equal(t, float32(0), h.Plane(2*HistoryPairs)[0], "white to play after one move")
}

func TestUpdateShiftsAndSwaps(t *testing.T) {
	p := board.NewPosition(9)
	p.PlayMove(board.CoordAt(4, 4, 9)) // black plays, white to move
	h0 := Initialize(p)

	p.PlayMove(board.CoordAt(2, 2, 9)) // white plays, black to move
	h1 := Update(h0, p)

	// h1's plane 2 (the shifted previous pair's mover plane, i.e. black's
	// stones from h0's position) must equal h0's plane 1 (the same
	// position's opponent-of-white plane, i.e. black's stones as seen while
	// white was to play) — the swap makes the perspective consistent across
	// the side-to-play change.
	require.Equal(t, h0.Plane(1), h1.Plane(2))
	require.Equal(t, h0.Plane(0), h1.Plane(3))
	assert.NotEqual(t, make([]float32, 81), h1.Plane(2), "shifted plane should carry the black stone placed earlier")

	// plane 16 tracks the new side to play.
	assert.Equal(t, float32(1), h1.Plane(2*HistoryPairs)[0], "black to play after white's move")
}

func TestNHWCLayout(t *testing.T) {
	p := board.NewPosition(9)
	h := Initialize(p)
	d := h.NHWC()
	shape := d.Shape()
	require.Equal(t, []int{9, 9, Planes}, []int(shape))
}
