// Package sgf implements the external SGF/coordinate-grammar boundary:
// human and SGF coordinate formats (spec §6), a move-list Writer, and a
// minimal main-line parser, written directly from spec §6's grammar.
package sgf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sousei-go/ishi/board"
)

// ErrBadCoord tags a coordinate-grammar parse failure (spec §7: "Parse
// errors (SGF, coord grammar): recoverable; return a tagged result").
var ErrBadCoord = errors.New("sgf: malformed coordinate")

// humanCols is the Go board letter column order: A through T, skipping I.
const humanCols = "ABCDEFGHJKLMNOPQRST"

// ParseHumanCoord parses a human coordinate like "Q16" or "pass" on an N×N
// board. Columns run A..H,J..T (I is skipped); rows are counted from the
// bottom, 1-indexed.
func ParseHumanCoord(s string, n int) (board.Coord, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "pass") {
		return board.PassCoord(n), nil
	}
	if strings.EqualFold(s, "resign") {
		return board.ResignCoord(n), nil
	}
	if len(s) < 2 {
		return board.InvalidCoord, errors.Wrapf(ErrBadCoord, "%q: too short", s)
	}
	colLetter := strings.ToUpper(s[:1])
	col := strings.Index(humanCols, colLetter)
	if col < 0 || col >= n {
		return board.InvalidCoord, errors.Wrapf(ErrBadCoord, "%q: bad column", s)
	}
	rowNum, err := strconv.Atoi(s[1:])
	if err != nil || rowNum < 1 || rowNum > n {
		return board.InvalidCoord, errors.Wrapf(ErrBadCoord, "%q: bad row", s)
	}
	row := n - rowNum
	return board.CoordAt(row, col, n), nil
}

// FormatHumanCoord is ParseHumanCoord's inverse.
func FormatHumanCoord(c board.Coord, n int) string {
	if c.IsPass(n) {
		return "pass"
	}
	if c.IsResign(n) {
		return "resign"
	}
	row, col := c.Row(n), c.Col(n)
	return fmt.Sprintf("%c%d", humanCols[col], n-row)
}

// ParseSGFCoord parses an SGF coordinate: two lowercase letters counting
// from the top-left (column then row), or an empty string for pass.
func ParseSGFCoord(s string, n int) (board.Coord, error) {
	if s == "" {
		return board.PassCoord(n), nil
	}
	if len(s) != 2 {
		return board.InvalidCoord, errors.Wrapf(ErrBadCoord, "%q: must be exactly two letters", s)
	}
	col := int(s[0] - 'a')
	row := int(s[1] - 'a')
	if col < 0 || col >= n || row < 0 || row >= n {
		return board.InvalidCoord, errors.Wrapf(ErrBadCoord, "%q: out of range for a %d-board", s, n)
	}
	return board.CoordAt(row, col, n), nil
}

// FormatSGFCoord is ParseSGFCoord's inverse.
func FormatSGFCoord(c board.Coord, n int) string {
	if c.IsPass(n) {
		return ""
	}
	row, col := c.Row(n), c.Col(n)
	return string([]byte{byte('a' + col), byte('a' + row)})
}
