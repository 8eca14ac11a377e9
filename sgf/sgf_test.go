package sgf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sousei-go/ishi/board"
)

func TestHumanCoordRoundTrip(t *testing.T) {
	n := 19
	for _, s := range []string{"A1", "T19", "Q16", "pass"} {
		c, err := ParseHumanCoord(s, n)
		require.NoError(t, err)
		assert.Equal(t, s, FormatHumanCoord(c, n))
	}
}

func TestHumanCoordSkipsI(t *testing.T) {
	c, err := ParseHumanCoord("J1", 19)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Col(19)) // H=7, I skipped, J=8
}

func TestHumanCoordRejectsBadInput(t *testing.T) {
	_, err := ParseHumanCoord("Z1", 9)
	assert.ErrorIs(t, err, ErrBadCoord)

	_, err = ParseHumanCoord("A99", 9)
	assert.ErrorIs(t, err, ErrBadCoord)
}

func TestSGFCoordRoundTrip(t *testing.T) {
	n := 9
	for _, c := range []board.Coord{board.CoordAt(0, 0, n), board.CoordAt(8, 8, n), board.CoordAt(3, 4, n)} {
		s := FormatSGFCoord(c, n)
		got, err := ParseSGFCoord(s, n)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	pass, err := ParseSGFCoord("", n)
	require.NoError(t, err)
	assert.Equal(t, board.PassCoord(n), pass)
}

func TestWriterProducesParsableSGF(t *testing.T) {
	w := &Writer{
		N:         9,
		BlackName: "Alice",
		WhiteName: "Bob",
		Komi:      7.5,
		Result:    "B+12.5",
		Moves: []Move{
			{Color: board.Black, Coord: board.CoordAt(2, 2, 9)},
			{Color: board.White, Coord: board.CoordAt(3, 3, 9), Comment: "hane"},
			{Color: board.Black, Coord: board.PassCoord(9)},
		},
	}
	out := w.String()
	assert.Contains(t, out, "SZ[9]")
	assert.Contains(t, out, "RU[Chinese]")
	assert.Contains(t, out, "PB[Alice]")
	assert.Contains(t, out, "PW[Bob]")

	records, err := MainLine(out)
	require.NoError(t, err)
	require.Len(t, records, 4) // root + 3 moves

	root := records[0]
	assert.Equal(t, board.Empty, root.Color)
	assert.Equal(t, "9", root.Properties["SZ"])

	first := records[1]
	assert.Equal(t, board.Black, first.Color)
	c, err := ParseSGFCoord(first.RawCoord, 9)
	require.NoError(t, err)
	assert.Equal(t, board.CoordAt(2, 2, 9), c)

	second := records[2]
	assert.Equal(t, "hane", second.Comment)

	third := records[3]
	assert.Equal(t, board.Black, third.Color)
	assert.Equal(t, "", third.RawCoord)
}

func TestMainLineTakesFirstChildOnly(t *testing.T) {
	raw := `(;GM[1]SZ[9];B[cc](;W[dd];B[ee])(;W[ff];B[gg]))`
	records, err := MainLine(raw)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "dd", records[2].RawCoord)
	assert.Equal(t, "ee", records[3].RawCoord)
}

func TestMainLineRejectsMissingOpenParen(t *testing.T) {
	_, err := MainLine("GM[1]")
	assert.Error(t, err)
}
