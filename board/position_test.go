package board

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	InitZobrist(42, 9)
	InitZobrist19 = NewZobristTable(42, 19)
}

// InitZobrist19 is a standalone 19x19 table for tests that need that size,
// kept separate from the process-wide 9x9 table InitZobrist installs above
// so the two sizes never collide.
var InitZobrist19 *ZobristTable

func human(col byte, row int, n int) Coord {
	colIdx := int(col - 'A')
	if col >= 'J' {
		colIdx--
	}
	return CoordAt(n-row, colIdx, n)
}

func TestSimpleCapture(t *testing.T) {
	p := NewPosition(9)
	moves := []Coord{
		human('D', 5, 9), human('D', 6, 9), human('E', 6, 9), human('E', 5, 9),
		human('F', 5, 9), human('C', 5, 9),
	}
	for _, m := range moves {
		p.PlayMove(m)
	}
	// White, not Black, plays D4: it fills the black D5 stone's last liberty.
	p.PlayMoveAs(human('D', 4, 9), White)
	assert.Equal(t, Empty, p.Stones[human('D', 5, 9)].Color)
	assert.Equal(t, 1, p.NumCaptures[White])
	assert.Equal(t, InvalidCoord, p.Ko)
}

// TestKo builds the classic single-stone ko shape: a lone white stone at E5
// with its only liberty at E4, which is itself surrounded on its other three
// sides so that Black's recapture leaves exactly one stone with one
// liberty. This is spec §8 scenario 2's mechanism, reconstructed with
// explicit colors (via PlayMoveAs) rather than its move list, since the
// move list's implied coloring can't be recovered from a strict alternating
// read.
func TestKo(t *testing.T) {
	p := NewPosition(9)
	d5, f5, e6 := human('D', 5, 9), human('F', 5, 9), human('E', 6, 9)
	e3, d4, f4 := human('E', 3, 9), human('D', 4, 9), human('F', 4, 9)
	e5, e4 := human('E', 5, 9), human('E', 4, 9)

	p.PlayMoveAs(d5, Black)
	p.PlayMoveAs(e3, White)
	p.PlayMoveAs(f5, Black)
	p.PlayMoveAs(d4, White)
	p.PlayMoveAs(e6, Black)
	p.PlayMoveAs(f4, White)
	p.PlayMoveAs(e5, White) // lone white stone, one liberty at e4

	require.Equal(t, 0, p.NumCaptures[Black])
	p.PlayMoveAs(e4, Black) // captures e5, recapture leaves Black alone with 1 liberty

	assert.Equal(t, 1, p.NumCaptures[Black])
	assert.Equal(t, e5, p.Ko)
	assert.False(t, p.LegalMoves[e5], "simple ko must forbid immediate recapture")

	// ko clears after any other legal move.
	var elsewhere Coord
	for c := 0; c < 9*9; c++ {
		if p.LegalMoves[c] && Coord(c) != e5 {
			elsewhere = Coord(c)
			break
		}
	}
	p.PlayMove(elsewhere)
	assert.Equal(t, InvalidCoord, p.Ko)
}

func TestUndoInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := NewPosition(9)
	for i := 0; i < 40; i++ {
		var legal []Coord
		for c := 0; c < 9*9+1; c++ {
			if p.LegalMoves[c] {
				legal = append(legal, Coord(c))
			}
		}
		if len(legal) == 0 {
			break
		}
		mv := legal[rng.Intn(len(legal))]

		before := p.Clone()
		undo := p.PlayMove(mv)
		p.UndoMove(undo)

		assert.Equal(t, before.Stones, p.Stones)
		assert.Equal(t, before.ToPlay, p.ToPlay)
		assert.Equal(t, before.Ko, p.Ko)
		assert.Equal(t, before.MoveNum, p.MoveNum)
		assert.Equal(t, before.NumCaptures, p.NumCaptures)
		assert.Equal(t, before.StoneHash, p.StoneHash)
		assert.Equal(t, before.LegalMoves, p.LegalMoves)

		p.PlayMove(mv) // replay so the walk actually progresses
	}
}

func TestHashRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	p := NewPosition(9)
	for i := 0; i < 60; i++ {
		var legal []Coord
		for c := 0; c < 9*9+1; c++ {
			if p.LegalMoves[c] {
				legal = append(legal, Coord(c))
			}
		}
		if len(legal) == 0 {
			break
		}
		mv := legal[rng.Intn(len(legal))]
		p.PlayMove(mv)
		assert.Equal(t, p.RecomputeStoneHash(), p.StoneHash)
	}
}

func TestLibertyCorrectness(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := NewPosition(9)
	for i := 0; i < 50; i++ {
		var legal []Coord
		for c := 0; c < 9*9+1; c++ {
			if p.LegalMoves[c] {
				legal = append(legal, Coord(c))
			}
		}
		if len(legal) == 0 {
			break
		}
		mv := legal[rng.Intn(len(legal))]
		p.PlayMove(mv)

		for pt, s := range p.Stones {
			if s.Color == Empty {
				continue
			}
			want := countActualLiberties(p, Coord(pt))
			got := p.groups.get(s.Group).liberties
			assert.Equal(t, want, int(got), "point %d", pt)
		}
	}
}

func countActualLiberties(p *Position, seed Coord) int {
	pts := p.floodGroup(seed)
	libs := map[Coord]bool{}
	var buf [4]Coord
	for _, pt := range pts {
		for _, nb := range neighbors(pt, p.N, buf[:0]) {
			if p.Stones[nb].Color == Empty {
				libs[nb] = true
			}
		}
	}
	return len(libs)
}

func TestCaptureAccounting(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	p := NewPosition(9)
	placed := 0
	for i := 0; i < 80; i++ {
		var legal []Coord
		for c := 0; c < 9*9+1; c++ {
			if p.LegalMoves[c] {
				legal = append(legal, Coord(c))
			}
		}
		if len(legal) == 0 {
			break
		}
		mv := legal[rng.Intn(len(legal))]
		if int(mv) < 9*9 {
			placed++
		}
		p.PlayMove(mv)
	}
	onBoard := 0
	for _, s := range p.Stones {
		if s.Color != Empty {
			onBoard++
		}
	}
	assert.Equal(t, placed-onBoard, p.NumCaptures[Black]+p.NumCaptures[White])
}

func TestLegalMoveSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	p := NewPosition(9)
	for i := 0; i < 60; i++ {
		for c := 0; c < 9*9; c++ {
			class := p.ClassifyMoveIgnoringSuperko(Coord(c))
			if p.LegalMoves[c] {
				assert.NotEqual(t, Illegal, class)
			}
		}
		var legal []Coord
		for c := 0; c < 9*9+1; c++ {
			if p.LegalMoves[c] {
				legal = append(legal, Coord(c))
			}
		}
		if len(legal) == 0 {
			break
		}
		p.PlayMove(legal[rng.Intn(len(legal))])
	}
}

// TestCalculateScore exercises the Tromp-Taylor area-scoring formula
// directly: a fully partitioned board (top 3 rows Black, bottom 6 rows
// White, no empty points) has a score of stones-only difference minus komi,
// matching spec §8 scenario 3's formula even though its exact board layout
// isn't reproducible from the prose alone.
func TestCalculateScore(t *testing.T) {
	p := NewPosition(9)
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			c := CoordAt(row, col, 9)
			if row < 3 {
				p.Stones[c] = Stone{Color: Black, Group: noGroup}
			} else {
				p.Stones[c] = Stone{Color: White, Group: noGroup}
			}
		}
	}
	score := p.CalculateScore(7.5)
	assert.Equal(t, float64(27-54)-7.5, score)
}

// TestCalculatePassAliveRegions builds the textbook two-eyed Benson shape: a
// single black group enclosing two non-adjacent one-point eyes (so neither
// eye can be filled without first spending a move to connect it to the
// other), and checks both eyes end up part of Black's pass-alive region
// while an unrelated lone stone elsewhere does not.
func TestCalculatePassAliveRegions(t *testing.T) {
	p := NewPosition(9)
	const groupID GroupID = 0
	var ring []Coord
	for _, col := range []byte{'A', 'B', 'C', 'D', 'E'} {
		for row := 1; row <= 3; row++ {
			c := human(col, row, 9)
			if (col == 'B' || col == 'D') && row == 2 {
				continue // the two eyes
			}
			ring = append(ring, c)
		}
	}
	for _, c := range ring {
		p.Stones[c] = Stone{Color: Black, Group: groupID}
	}

	lonely := human('H', 8, 9)
	p.Stones[lonely] = Stone{Color: Black, Group: groupID + 1}

	black, _ := p.CalculatePassAliveRegions()
	assert.True(t, black[human('B', 2, 9)], "eye at B2 must be pass-alive territory")
	assert.True(t, black[human('D', 2, 9)], "eye at D2 must be pass-alive territory")
	assert.True(t, black[ring[0]], "the two-eyed group's own points must be pass-alive")
	assert.False(t, black[lonely], "a lone stone with one region is not pass-alive")
}

func TestIsKoish(t *testing.T) {
	p := NewPosition(9)
	center := human('E', 5, 9)
	for _, side := range []Coord{human('D', 5, 9), human('F', 5, 9), human('E', 6, 9), human('E', 4, 9)} {
		p.PlayMove(side)  // black
		p.PlayMove(PassCoord(9)) // white passes, so every side stone is black
	}
	assert.Equal(t, Empty, p.Stones[center].Color)
	assert.Equal(t, Black, p.IsKoish(center))
}
